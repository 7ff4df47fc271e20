package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vitaltrace/vitaltrace/pkg/types"
	wsHub "github.com/vitaltrace/vitaltrace/server/internal/ws"
)

// --- helpers ----------------------------------------------------------------

// startHub starts a test HTTP server with the hub as its handler.
// Returns the ws:// URL, the hub, and the cancel for the hub's Run loop.
func startHub(t *testing.T) (wsURL string, hub *wsHub.Hub, cancel func()) {
	t.Helper()

	hub = wsHub.NewHub()
	ctx, cancelFn := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub, cancelFn
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEvent reads one text message from conn with a short deadline.
func readEvent(t *testing.T, conn *websocket.Conn) types.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var ev types.Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("unmarshal %q: %v", msg, err)
	}
	return ev
}

// waitForCount polls hub.Count until it equals want or the deadline passes.
func waitForCount(t *testing.T, hub *wsHub.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Count() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Count: got %d, want %d", hub.Count(), want)
}

func fatalEvent(hr int) types.Event {
	return types.NewEvent(
		types.Reading{Timestamp: 1756000000.5, HR: hr, SpO2: 95.2, Temp: 36.6},
		types.StatusFatal,
		"Heart rate spike detected",
	)
}

// --- tests ------------------------------------------------------------------

func TestHub_PublishReachesSingleObserver(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	conn := dial(t, wsURL)
	waitForCount(t, hub, 1)

	hub.Publish(fatalEvent(130))

	ev := readEvent(t, conn)
	if ev.Status != types.StatusFatal {
		t.Errorf("status: got %q, want fatal", ev.Status)
	}
	if ev.Data.HR != 130 {
		t.Errorf("hr: got %d, want 130", ev.Data.HR)
	}
	if ev.Data.Cause == nil || *ev.Data.Cause != "Heart rate spike detected" {
		t.Errorf("cause: got %v", ev.Data.Cause)
	}
}

func TestHub_NormalEventHasNullCause(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	conn := dial(t, wsURL)
	waitForCount(t, hub, 1)

	hub.Publish(types.NewEvent(
		types.Reading{Timestamp: 1756000000.5, HR: 80, SpO2: 97, Temp: 36.5},
		types.StatusNormal, "",
	))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	data, ok := m["data"].(map[string]any)
	if !ok {
		t.Fatal("data: missing or wrong type")
	}
	cause, present := data["cause"]
	if !present {
		t.Error("cause key missing from event data")
	}
	if cause != nil {
		t.Errorf("cause: got %v, want null", cause)
	}
}

func TestHub_AllObserversReceiveEachEvent(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = dial(t, wsURL)
	}
	waitForCount(t, hub, 3)

	hub.Publish(fatalEvent(125))

	for i, conn := range conns {
		ev := readEvent(t, conn)
		if ev.Data.HR != 125 {
			t.Errorf("observer %d: hr got %d, want 125", i, ev.Data.HR)
		}
	}
}

func TestHub_PerObserverOrderMatchesPublishOrder(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	conn := dial(t, wsURL)
	waitForCount(t, hub, 1)

	for hr := 100; hr < 110; hr++ {
		hub.Publish(fatalEvent(hr))
	}

	for hr := 100; hr < 110; hr++ {
		ev := readEvent(t, conn)
		if ev.Data.HR != hr {
			t.Fatalf("out of order: got hr %d, want %d", ev.Data.HR, hr)
		}
	}
}

func TestHub_DisconnectUnregistersObserver(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	conn := dial(t, wsURL)
	waitForCount(t, hub, 1)

	conn.Close()
	waitForCount(t, hub, 0)
}

func TestHub_FailedObserverDoesNotBlockOthers(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	dead := dial(t, wsURL)
	healthy := dial(t, wsURL)
	waitForCount(t, hub, 2)

	// Kill the first connection's underlying transport, then flood the hub.
	// The dead client must be evicted without the healthy one losing events.
	dead.UnderlyingConn().Close()
	for i := 0; i < 100; i++ {
		hub.Publish(fatalEvent(120 + i%10))
	}

	ev := readEvent(t, healthy)
	if ev.Status != types.StatusFatal {
		t.Errorf("healthy observer: got status %q", ev.Status)
	}
	waitForCount(t, hub, 1)
}

func TestHub_PublishWithNoObserversIsNoop(t *testing.T) {
	_, hub, _ := startHub(t)
	// Must not panic or block.
	hub.Publish(fatalEvent(130))
	if hub.Count() != 0 {
		t.Errorf("Count: got %d, want 0", hub.Count())
	}
}

func TestHub_CancelContextClosesConnections(t *testing.T) {
	wsURL, hub, cancel := startHub(t)

	dial(t, wsURL)
	waitForCount(t, hub, 1)

	cancel()
	waitForCount(t, hub, 0)
}

func TestHub_NonWebSocketRequest_Returns400(t *testing.T) {
	hub := wsHub.NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestHub_ManyObserversConcurrentPublish(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	const observers = 5
	conns := make([]*websocket.Conn, observers)
	for i := range conns {
		conns[i] = dial(t, wsURL)
	}
	waitForCount(t, hub, observers)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			hub.Publish(fatalEvent(121))
		}
	}()

	for i, conn := range conns {
		for j := 0; j < 20; j++ {
			ev := readEvent(t, conn)
			if ev.Data.HR != 121 {
				t.Fatalf("observer %d event %d: hr %d", i, j, ev.Data.HR)
			}
		}
	}
	<-done

	if hub.Count() != observers {
		t.Errorf("Count: got %d, want %d", hub.Count(), observers)
	}
}
