package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cycles/internal/config"
	"cycles/internal/db"
	"cycles/internal/game"
	"cycles/internal/ledger"

	"github.com/gorilla/websocket"
)

type fixture struct {
	session *game.Session
	store   ledger.Store
	hub     *Hub
	server  *httptest.Server
}

func newFixture(t *testing.T, withLedger bool) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session, err := game.NewSession(game.DefaultTuning(), logger)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(logger)
	go hub.Run(ctx)
	session.Subscribe(hub)

	var store ledger.Store
	if withLedger {
		conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "api.db"))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		sqliteStore, err := ledger.NewSQLiteStore(ctx, conn)
		if err != nil {
			t.Fatalf("new store: %v", err)
		}
		t.Cleanup(func() { _ = sqliteStore.Close() })
		store = sqliteStore
	}

	srv := New(config.APIConfig{}, logger, session, store, hub)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &fixture{session: session, store: store, hub: hub, server: ts}
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func TestHealthAndState(t *testing.T) {
	f := newFixture(t, false)

	status, body := f.do(t, http.MethodGet, "/healthz", nil, nil)
	if status != http.StatusOK || body["ok"] != true || body["run_id"] != f.session.RunID() {
		t.Fatalf("status=%d body=%v", status, body)
	}

	status, body = f.do(t, http.MethodGet, "/v1/state", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("status=%d body=%v", status, body)
	}
	rings, _ := body["rings"].([]any)
	if len(rings) != 1 {
		t.Fatalf("got rings=%v", body["rings"])
	}
	wallet, _ := body["wallet"].(map[string]any)
	if wallet["amount"] != "0" {
		t.Fatalf("got wallet=%v", wallet)
	}
}

func TestPurchaseErrors(t *testing.T) {
	f := newFixture(t, false)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unaffordable", `{"upgrade":{"type":"add_socket","level":1},"cost":"4"}`, http.StatusBadRequest},
		{"stale", `{"upgrade":{"type":"add_socket","level":1},"cost":"5"}`, http.StatusConflict},
		{"not offered", `{"upgrade":{"type":"add_ring","level":1},"cost":"500"}`, http.StatusNotFound},
		{"unknown field", `{"upgrade":{"type":"add_socket","level":1},"cost":"4","x":1}`, http.StatusBadRequest},
		{"bad cost", `{"upgrade":{"type":"add_socket","level":1},"cost":"-4"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		resp, err := http.Post(f.server.URL+"/v1/purchase", "application/json", strings.NewReader(tc.body))
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: got=%d want=%d", tc.name, resp.StatusCode, tc.want)
		}
	}
}

func TestPurchaseSucceedsAndIsIdempotent(t *testing.T) {
	f := newFixture(t, false)
	for now := 1.0; now <= 22; now++ {
		if err := f.session.Tick(now); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}

	body := map[string]any{"upgrade": map[string]any{"type": "add_socket", "level": 1}, "cost": "4"}
	headers := map[string]string{"Idempotency-Key": "buy-1"}
	status, first := f.do(t, http.MethodPost, "/v1/purchase", body, headers)
	if status != http.StatusOK {
		t.Fatalf("status=%d body=%v", status, first)
	}
	status, second := f.do(t, http.MethodPost, "/v1/purchase", body, headers)
	if status != http.StatusOK {
		t.Fatalf("replay status=%d body=%v", status, second)
	}
	if got := len(f.session.Snapshot().Rings[0].Sockets); got != 3 {
		t.Fatalf("replayed purchase applied twice? sockets=%d", got)
	}

	status, _ = f.do(t, http.MethodPost, "/v1/purchase", body, nil)
	if status != http.StatusNotFound {
		t.Fatalf("fresh key should hit the engine, got=%d", status)
	}
}

func TestSocketColor(t *testing.T) {
	f := newFixture(t, false)

	status, body := f.do(t, http.MethodPost, "/v1/sockets/color", map[string]any{"ring": 0, "socket": 1, "color": "blue"}, nil)
	if status != http.StatusOK || body["color"] != "blue" {
		t.Fatalf("status=%d body=%v", status, body)
	}
	status, _ = f.do(t, http.MethodPost, "/v1/sockets/color", map[string]any{"ring": 0, "socket": 1, "color": "red"}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("locked color got=%d", status)
	}
	status, _ = f.do(t, http.MethodPost, "/v1/sockets/color", map[string]any{"ring": 3, "socket": 0, "color": "blue"}, nil)
	if status != http.StatusNotFound {
		t.Fatalf("missing ring got=%d", status)
	}
	status, _ = f.do(t, http.MethodPost, "/v1/sockets/color", map[string]any{"ring": 0, "socket": 1, "color": "mauve"}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad color got=%d", status)
	}
}

func TestLedgerEndpoint(t *testing.T) {
	disabled := newFixture(t, false)
	status, _ := disabled.do(t, http.MethodGet, "/v1/ledger", nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("disabled ledger got=%d", status)
	}

	f := newFixture(t, true)
	rec := ledger.NewRecorder(f.store, f.session.RunID(), nil, 16)
	f.session.Subscribe(rec)
	for now := 1.0; now <= 13; now++ {
		if err := f.session.Tick(now); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close recorder: %v", err)
	}

	status, body := f.do(t, http.MethodGet, "/v1/ledger?limit=2", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("status=%d body=%v", status, body)
	}
	entries, _ := body["entries"].([]any)
	if len(entries) != 2 {
		t.Fatalf("got entries=%v", body["entries"])
	}
	status, _ = f.do(t, http.MethodGet, "/v1/ledger?limit=0", nil, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad limit got=%d", status)
	}
	status, _ = f.do(t, http.MethodGet, "/v1/ledger?run_id=not-a-uuid", nil, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad run_id got=%d", status)
	}
}

func TestEventStream(t *testing.T) {
	f := newFixture(t, false)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// registration is asynchronous; keep ticking until a batch arrives
	got := make(chan Message, 1)
	go func() {
		var msg Message
		if err := conn.ReadJSON(&msg); err == nil {
			got <- msg
		}
	}()
	deadline := time.After(3 * time.Second)
	now := 0.0
	for {
		now += 4.5
		if err := f.session.Tick(now); err != nil {
			t.Fatalf("tick: %v", err)
		}
		select {
		case msg := <-got:
			if msg.Type != "events" {
				t.Fatalf("got type=%q", msg.Type)
			}
			return
		case <-deadline:
			t.Fatalf("no events received")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
