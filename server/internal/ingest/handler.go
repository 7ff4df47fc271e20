package ingest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vitaltrace/vitaltrace/pkg/types"
)

// Handler is the HTTP boundary for reading ingestion, mounted at /ingest.
type Handler struct {
	pipeline *Pipeline
}

// NewHandler creates the ingest HTTP handler.
func NewHandler(p *Pipeline) *Handler {
	return &Handler{pipeline: p}
}

// ingestResponse is the submitter-facing JSON body.
type ingestResponse struct {
	Status      types.Status `json:"status"`
	Fingerprint string       `json:"fingerprint"`
	Cause       *string      `json:"cause"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var reading types.Reading
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&reading); err != nil {
		jsonErr(w, http.StatusBadRequest, "malformed reading: "+err.Error())
		return
	}

	result, err := h.pipeline.Ingest(r.Context(), reading)
	switch {
	case errors.Is(err, ErrInvalidReading):
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("ingest: request failed", "err", err)
		jsonErr(w, http.StatusInternalServerError, "persistence failure")
		return
	}

	resp := ingestResponse{
		Status:      result.Status,
		Fingerprint: result.Fingerprint,
	}
	if result.Cause != "" {
		cause := result.Cause
		resp.Cause = &cause
	}
	jsonResp(w, http.StatusOK, resp)
}

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
