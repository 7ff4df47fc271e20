package ingest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vitaltrace/vitaltrace/server/internal/classify"
	"github.com/vitaltrace/vitaltrace/server/internal/ingest"
	"github.com/vitaltrace/vitaltrace/server/internal/metrics"
)

func newTestServer(t *testing.T) (*httptest.Server, *harness) {
	t.Helper()

	h := &harness{
		store:    &fakeStore{},
		hub:      &fakePublisher{},
		notifier: &fakeNotifier{texts: make(chan string, 16)},
		anchorer: &fakeAnchorer{anchors: make(chan [32]byte, 16)},
	}
	h.pipeline = ingest.NewPipeline(h.store, h.hub, h.notifier, h.anchorer,
		metrics.New(prometheus.NewRegistry()), classify.DefaultThresholds())

	ctx, cancel := context.WithCancel(context.Background())
	go h.pipeline.Run(ctx)

	srv := httptest.NewServer(ingest.NewHandler(h.pipeline))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv, h
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, m
}

func TestHandler_NormalReading(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := post(t, srv.URL,
		`{"timestamp": 1756000000.5, "hr": 100, "spo2": 95, "temp": 37}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if body["status"] != "normal" {
		t.Errorf("status field: got %v", body["status"])
	}
	fp, _ := body["fingerprint"].(string)
	if len(fp) != 64 {
		t.Errorf("fingerprint: got %q", fp)
	}
	cause, present := body["cause"]
	if !present || cause != nil {
		t.Errorf("cause: got %v (present=%v), want null", cause, present)
	}
}

func TestHandler_FatalReading(t *testing.T) {
	srv, h := newTestServer(t)

	resp, body := post(t, srv.URL,
		`{"timestamp": 1756000000.5, "hr": 125, "spo2": 95, "temp": 37}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if body["status"] != "fatal" {
		t.Errorf("status field: got %v", body["status"])
	}
	if body["cause"] != classify.CauseHeartRateSpike {
		t.Errorf("cause: got %v", body["cause"])
	}
	waitText(t, h.notifier.texts)
	waitAnchor(t, h.anchorer.anchors)
}

func TestHandler_MalformedJSON(t *testing.T) {
	srv, h := newTestServer(t)

	resp, body := post(t, srv.URL, `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
	if _, ok := body["error"]; !ok {
		t.Error("error field missing")
	}
	if n, _ := h.store.Count(context.Background()); n != 0 {
		t.Error("malformed request was persisted")
	}
}

func TestHandler_InvalidReadingValues(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := post(t, srv.URL,
		`{"timestamp": 1756000000.5, "hr": -5, "spo2": 95, "temp": 37}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestHandler_UnknownFieldRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := post(t, srv.URL,
		`{"timestamp": 1756000000.5, "hr": 100, "spo2": 95, "temp": 37, "patient": "x"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestHandler_PersistenceFailure(t *testing.T) {
	srv, h := newTestServer(t)
	h.store.err = errors.New("database locked")

	resp, body := post(t, srv.URL,
		`{"timestamp": 1756000000.5, "hr": 100, "spo2": 95, "temp": 37}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", resp.StatusCode)
	}
	if _, ok := body["error"]; !ok {
		t.Error("error field missing")
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
}
