package handler

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/freeeve/conquest-table/internal/service"
)

func newTestConn(playerID string) *WSConn {
	return newWSConn(nil, playerID, nil) // no real connection for hub tests
}

func recv(t *testing.T, c *WSConn) WSEvent {
	t.Helper()
	select {
	case msg := <-c.send:
		var event WSEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatalf("%s did not receive an event", c.playerID)
	}
	return WSEvent{}
}

func expectNothing(t *testing.T, c *WSConn) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Errorf("%s should not have received %s", c.playerID, msg)
	default:
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	c := newTestConn("p1")

	hub.Register(c)
	if hub.ConnectionCount() != 1 {
		t.Errorf("expected 1 connection, got %d", hub.ConnectionCount())
	}

	if !hub.Unregister(c) {
		t.Error("expected last connection to be reported")
	}
	if hub.ConnectionCount() != 0 {
		t.Errorf("expected 0 connections, got %d", hub.ConnectionCount())
	}
	if hub.Unregister(c) {
		t.Error("second unregister should be a no-op")
	}
}

func TestHubUnregisterReportsLastConnection(t *testing.T) {
	hub := NewHub()
	c1 := newTestConn("p1")
	c2 := newTestConn("p1")
	hub.Register(c1)
	hub.Register(c2)

	if hub.PlayerConnectionCount("p1") != 2 {
		t.Fatalf("expected 2 connections for p1, got %d", hub.PlayerConnectionCount("p1"))
	}
	if hub.Unregister(c1) {
		t.Error("p1 still has a connection")
	}
	if !hub.Unregister(c2) {
		t.Error("expected p1's last connection to be reported")
	}
}

func TestHubBroadcastTableEvent(t *testing.T) {
	hub := NewHub()
	c1 := newTestConn("p1")
	c2 := newTestConn("p2")
	hub.Register(c1)
	hub.Register(c2)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)

	hub.BroadcastTableEvent(service.EventGameOver, service.GameOver{WinnerID: "p1", WinnerName: "Ada"})

	for _, c := range []*WSConn{c1, c2} {
		event := recv(t, c)
		if event.Type != service.EventGameOver {
			t.Errorf("expected gameOver, got %s", event.Type)
		}
	}
}

func TestHubSendPlayerEvent(t *testing.T) {
	hub := NewHub()
	c1 := newTestConn("p1")
	c2 := newTestConn("p1") // same player, two connections
	c3 := newTestConn("p2")
	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)
	defer hub.Unregister(c3)

	hub.SendPlayerEvent("p1", service.EventRejected, service.Rejection{Intent: service.IntentDeploy, Reason: "not your turn"})

	for _, c := range []*WSConn{c1, c2} {
		event := recv(t, c)
		if event.Type != service.EventRejected {
			t.Errorf("expected rejected, got %s", event.Type)
		}
		data, _ := event.Data.(map[string]any)
		if data["reason"] != "not your turn" {
			t.Errorf("unexpected payload: %v", event.Data)
		}
	}
	expectNothing(t, c3)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c := newTestConn("p1")
	hub.Register(c)
	defer hub.Unregister(c)

	for i := 0; i < sendBufSize+10; i++ {
		hub.BroadcastTableEvent(service.EventState, nil)
	}
	if len(c.send) != sendBufSize {
		t.Errorf("expected a full buffer of %d, got %d", sendBufSize, len(c.send))
	}
}

func TestHubCloseAll(t *testing.T) {
	hub := NewHub()
	c1 := newTestConn("p1")
	c2 := newTestConn("p2")
	hub.Register(c1)
	hub.Register(c2)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)

	hub.CloseAll("inactivity")
	hub.CloseAll("again")

	for _, c := range []*WSConn{c1, c2} {
		select {
		case <-c.closed:
		default:
			t.Fatalf("%s was not asked to close", c.playerID)
		}
		if c.closeReason != "inactivity" {
			t.Errorf("expected first reason to stick, got %q", c.closeReason)
		}
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestConn("p1")
			hub.Register(c)
			hub.BroadcastTableEvent("test", nil)
			hub.SendPlayerEvent("p1", "test", nil)
			hub.Unregister(c)
		}()
	}

	wg.Wait()
	if hub.ConnectionCount() != 0 {
		t.Errorf("expected 0 connections after concurrent test, got %d", hub.ConnectionCount())
	}
}
