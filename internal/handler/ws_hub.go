package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// WSEvent is the envelope for all outbound WebSocket messages.
type WSEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// WSConn wraps a WebSocket connection with the player it authenticated as.
type WSConn struct {
	conn     *websocket.Conn
	playerID string
	send     chan []byte
	limiter  *rate.Limiter

	closed      chan struct{}
	closeOnce   sync.Once
	closeReason string
}

func newWSConn(conn *websocket.Conn, playerID string, limiter *rate.Limiter) *WSConn {
	return &WSConn{
		conn:     conn,
		playerID: playerID,
		send:     make(chan []byte, sendBufSize),
		limiter:  limiter,
		closed:   make(chan struct{}),
	}
}

// shutdown asks the write pump to flush, send a close frame and hang up.
func (c *WSConn) shutdown(reason string) {
	c.closeOnce.Do(func() {
		c.closeReason = reason
		close(c.closed)
	})
}

// Hub tracks live connections by player. A player may hold several
// connections; table events go to all of them.
type Hub struct {
	mu      sync.RWMutex
	players map[string]map[*WSConn]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{players: make(map[string]map[*WSConn]bool)}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.players[c.playerID] == nil {
		h.players[c.playerID] = make(map[*WSConn]bool)
	}
	h.players[c.playerID][c] = true
}

// Unregister removes a connection and closes its send channel. It reports
// whether that was the player's last connection.
func (h *Hub) Unregister(c *WSConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.players[c.playerID]
	if !ok || !conns[c] {
		return false
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.players, c.playerID)
		return true
	}
	return false
}

// BroadcastToTable sends an event to every connection.
func (h *Hub) BroadcastToTable(event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event", event.Type).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conns := range h.players {
		for c := range conns {
			h.enqueue(c, data, event.Type)
		}
	}
}

// SendToPlayer sends an event to every connection of one player.
func (h *Hub) SendToPlayer(playerID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("playerId", playerID).Str("event", event.Type).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.players[playerID] {
		h.enqueue(c, data, event.Type)
	}
}

// sendTo delivers an event to a single connection. Used for transport-level
// advisories that never reach the table.
func (h *Hub) sendTo(c *WSConn, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.players[c.playerID][c] {
		h.enqueue(c, data, event.Type)
	}
}

// enqueue must be called with h.mu held.
func (h *Hub) enqueue(c *WSConn, data []byte, eventType string) {
	select {
	case c.send <- data:
	default:
		log.Warn().Str("playerId", c.playerID).Str("event", eventType).Msg("Dropping WebSocket message, buffer full")
	}
}

// CloseAll flushes and closes every connection.
func (h *Hub) CloseAll(reason string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.players {
		for c := range conns {
			c.shutdown(reason)
			n++
		}
	}
	log.Info().Int("connections", n).Str("reason", reason).Msg("Closing all WebSocket connections")
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.players {
		n += len(conns)
	}
	return n
}

// PlayerConnectionCount returns the number of connections held by a player.
func (h *Hub) PlayerConnectionCount(playerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.players[playerID])
}
