package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/freeeve/conquest-table/internal/auth"
	"github.com/freeeve/conquest-table/internal/service"
)

type rawEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type wsHarness struct {
	srv    *httptest.Server
	hub    *Hub
	table  *service.Table
	jwtMgr *auth.JWTManager
}

func newWSHarness(t *testing.T, opts WSOptions) *wsHarness {
	t.Helper()
	hub := NewHub()
	table := service.NewTable(service.TableConfig{Seed: 7}, service.TableDeps{Broadcaster: hub})
	ctx, cancel := context.WithCancel(context.Background())
	go table.Run(ctx)

	jwtMgr := auth.NewJWTManager("test-secret")
	srv := httptest.NewServer(http.HandlerFunc(NewWSHandler(hub, table, jwtMgr, opts).ServeWS))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		table.Dispose()
	})
	return &wsHarness{srv: srv, hub: hub, table: table, jwtMgr: jwtMgr}
}

func (h *wsHarness) dial(t *testing.T, name string) (*websocket.Conn, string) {
	t.Helper()
	sess, err := h.jwtMgr.IssueSession(name)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "?token=" + sess.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, sess.PlayerID
}

func send(t *testing.T, conn *websocket.Conn, in service.Intent) {
	t.Helper()
	if err := conn.WriteJSON(in); err != nil {
		t.Fatalf("write intent: %v", err)
	}
}

// awaitEvent reads frames until one carries an event of the given type that
// satisfies match. Frames may batch several newline-separated events.
func awaitEvent(t *testing.T, conn *websocket.Conn, eventType string, match func(json.RawMessage) bool) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	defer conn.SetReadDeadline(time.Time{})
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", eventType, err)
		}
		for _, line := range bytes.Split(frame, []byte("\n")) {
			var ev rawEvent
			if err := json.Unmarshal(line, &ev); err != nil {
				t.Fatalf("decode frame %q: %v", line, err)
			}
			if ev.Type == eventType && (match == nil || match(ev.Data)) {
				return ev.Data
			}
		}
	}
}

func playerCount(n int) func(json.RawMessage) bool {
	return func(data json.RawMessage) bool {
		var snap service.StateSnapshot
		return json.Unmarshal(data, &snap) == nil && len(snap.Players) == n
	}
}

func TestServeWSRejectsMissingToken(t *testing.T) {
	h := NewWSHandler(NewHub(), &fakeTable{}, auth.NewJWTManager("test-secret"), WSOptions{})

	tests := []struct {
		name  string
		query string
	}{
		{"missing", ""},
		{"invalid", "?token=garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeWS(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ws"+tt.query, nil))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestWSWelcomeAndJoin(t *testing.T) {
	h := newWSHarness(t, WSOptions{})
	conn, playerID := h.dial(t, "Ada")

	awaitEvent(t, conn, service.EventState, playerCount(0))

	send(t, conn, service.Intent{Type: service.IntentJoin, Name: "Ada"})
	data := awaitEvent(t, conn, service.EventState, playerCount(1))
	var snap service.StateSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Players[0].ID != playerID || snap.Players[0].Name != "Ada" {
		t.Errorf("unexpected player: %+v", snap.Players[0])
	}
	awaitEvent(t, conn, service.EventHand, nil)
}

func TestWSRejectedIntentAdvisory(t *testing.T) {
	h := newWSHarness(t, WSOptions{})
	conn, _ := h.dial(t, "Ada")
	awaitEvent(t, conn, service.EventState, nil)

	send(t, conn, service.Intent{Type: service.IntentStartGame})
	data := awaitEvent(t, conn, service.EventRejected, nil)
	var rej service.Rejection
	if err := json.Unmarshal(data, &rej); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rej.Intent != service.IntentStartGame {
		t.Errorf("expected startGame rejection, got %+v", rej)
	}
}

func TestWSMalformedFrameIgnored(t *testing.T) {
	h := newWSHarness(t, WSOptions{})
	conn, _ := h.dial(t, "Ada")
	awaitEvent(t, conn, service.EventState, nil)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	send(t, conn, service.Intent{Type: service.IntentJoin, Name: "Ada"})
	awaitEvent(t, conn, service.EventState, playerCount(1))
}

func TestWSRateLimited(t *testing.T) {
	h := newWSHarness(t, WSOptions{IntentRate: 0.001, IntentBurst: 1})
	conn, _ := h.dial(t, "Ada")
	awaitEvent(t, conn, service.EventState, nil)

	send(t, conn, service.Intent{Type: service.IntentJoin, Name: "Ada"})
	send(t, conn, service.Intent{Type: service.IntentToggleReady})

	data := awaitEvent(t, conn, service.EventRejected, nil)
	var rej service.Rejection
	if err := json.Unmarshal(data, &rej); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rej.Reason != "rate limited" {
		t.Errorf("expected rate limited, got %q", rej.Reason)
	}
}

func TestWSDisconnectRemovesPlayer(t *testing.T) {
	h := newWSHarness(t, WSOptions{})
	conn, _ := h.dial(t, "Ada")
	awaitEvent(t, conn, service.EventState, nil)
	send(t, conn, service.Intent{Type: service.IntentJoin, Name: "Ada"})
	awaitEvent(t, conn, service.EventState, playerCount(1))

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := h.table.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if len(snap.Players) == 0 && h.hub.ConnectionCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("player was not removed after disconnect")
}

func TestWSDisconnectIntent(t *testing.T) {
	h := newWSHarness(t, WSOptions{})
	conn, _ := h.dial(t, "Ada")
	awaitEvent(t, conn, service.EventState, nil)
	send(t, conn, service.Intent{Type: service.IntentJoin, Name: "Ada"})
	awaitEvent(t, conn, service.EventState, playerCount(1))

	send(t, conn, service.Intent{Type: service.IntentDisconnect})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := h.table.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if len(snap.Players) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("player was not removed after disconnect intent")
}

func TestWSCloseAllSendsCloseFrame(t *testing.T) {
	h := newWSHarness(t, WSOptions{})
	conn, _ := h.dial(t, "Ada")
	awaitEvent(t, conn, service.EventState, nil)

	h.hub.BroadcastTableEvent(service.EventForcedReset, service.ForcedReset{Reason: "inactivity"})
	h.hub.CloseAll("inactivity")

	awaitEvent(t, conn, service.EventForcedReset, nil)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		var ce *websocket.CloseError
		if !errors.As(err, &ce) {
			t.Fatalf("expected close error, got %v", err)
		}
		if ce.Code != websocket.CloseNormalClosure || ce.Text != "inactivity" {
			t.Errorf("unexpected close: %d %q", ce.Code, ce.Text)
		}
		return
	}
}
