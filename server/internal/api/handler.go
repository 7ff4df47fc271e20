package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vitaltrace/vitaltrace/server/internal/store"
)

// Handler serves the /api/v1/* endpoints.
type Handler struct {
	store         store.Store
	observerCount func() int
	ledgerEnabled bool
	mux           *http.ServeMux
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Records   int64  `json:"records"`
	Observers int    `json:"observers"`
	Ledger    string `json:"ledger"` // "enabled" | "disabled"
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// New creates a Handler and registers all routes.
func New(st store.Store, observerCount func() int, ledgerEnabled bool) http.Handler {
	h := &Handler{
		store:         st,
		observerCount: observerCount,
		ledgerEnabled: ledgerEnabled,
		mux:           http.NewServeMux(),
	}
	h.mux.HandleFunc("/api/v1/health", h.health)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{
		Status:    "ok",
		Observers: h.observerCount(),
		Ledger:    "disabled",
	}
	if h.ledgerEnabled {
		resp.Ledger = "enabled"
	}

	n, err := h.store.Count(r.Context())
	if err != nil {
		slog.Error("api: count records", "err", err)
		jsonErr(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	resp.Records = n

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
