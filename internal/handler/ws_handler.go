package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/freeeve/conquest-table/internal/auth"
	"github.com/freeeve/conquest-table/internal/logger"
	"github.com/freeeve/conquest-table/internal/service"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = 54 * time.Second // Must be less than pongWait
	maxMsgSize      = 4096
	sendBufSize     = 256
	dispatchTimeout = 5 * time.Second
)

// TableService is the part of the table the transport drives.
type TableService interface {
	Dispatch(ctx context.Context, playerID string, in service.Intent) error
	Connect(ctx context.Context, playerID string) error
	Disconnect(ctx context.Context, playerID string) error
	Snapshot(ctx context.Context) (service.StateSnapshot, error)
	Hand(ctx context.Context, playerID string) (service.HandSnapshot, error)
}

// WSOptions tunes the WebSocket endpoint.
type WSOptions struct {
	IntentRate     float64 // intents per second per connection
	IntentBurst    int
	AllowedOrigins string // "*" or comma-separated origins
}

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub      *Hub
	table    TableService
	jwtMgr   *auth.JWTManager
	limit    rate.Limit
	burst    int
	upgrader websocket.Upgrader
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(hub *Hub, table TableService, jwtMgr *auth.JWTManager, opts WSOptions) *WSHandler {
	limit := rate.Inf
	if opts.IntentRate > 0 {
		limit = rate.Limit(opts.IntentRate)
	}
	burst := opts.IntentBurst
	if burst <= 0 {
		burst = 1
	}
	return &WSHandler{
		hub:    hub,
		table:  table,
		jwtMgr: jwtMgr,
		limit:  limit,
		burst:  burst,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
	}
}

func originChecker(allowed string) func(r *http.Request) bool {
	if allowed == "" || strings.TrimSpace(allowed) == "*" {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool)
	for _, o := range strings.Split(allowed, ",") {
		set[strings.TrimSpace(o)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// ServeWS handles GET /api/v1/ws and upgrades to WebSocket.
// Auth via ?token= query parameter (WebSocket can't send headers).
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		writeError(w, http.StatusUnauthorized, "missing token parameter")
		return
	}

	claims, err := h.jwtMgr.ValidateToken(tokenStr)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := newWSConn(conn, claims.PlayerID, rate.NewLimiter(h.limit, h.burst))
	h.hub.Register(client)

	go h.writePump(client)

	// The table sends the welcome snapshot through the hub.
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	err = h.table.Connect(ctx, client.playerID)
	cancel()
	if err != nil {
		log.Error().Err(err).Str("playerId", client.playerID).Msg("Table rejected connection")
		client.shutdown("table unavailable")
		go h.readPump(client)
		return
	}

	go h.readPump(client)

	log.Info().Str("playerId", claims.PlayerID).Int("total", h.hub.ConnectionCount()).Msg("WebSocket client connected")
}

// readPump decodes intents from the connection and hands them to the table.
func (h *WSHandler) readPump(c *WSConn) {
	lg := logger.ForPlayer(c.playerID)
	defer func() {
		if h.hub.Unregister(c) {
			ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
			if err := h.table.Disconnect(ctx, c.playerID); err != nil && !errors.Is(err, service.ErrTableClosed) {
				lg.Warn().Err(err).Msg("Table disconnect failed")
			}
			cancel()
		}
		c.conn.Close()
		lg.Info().Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				lg.Warn().Err(err).Msg("WebSocket unexpected close")
			}
			return
		}

		if !c.limiter.Allow() {
			lg.Debug().Msg("Intent rate limited")
			h.hub.sendTo(c, WSEvent{Type: service.EventRejected, Data: service.Rejection{Reason: "rate limited"}})
			continue
		}

		var in service.Intent
		if err := json.Unmarshal(message, &in); err != nil || in.Type == "" {
			lg.Debug().Err(err).Int("bytes", len(message)).Msg("Ignoring malformed frame")
			continue
		}

		if in.Type == service.IntentDisconnect {
			lg.Debug().Msg("Client requested disconnect")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		err = h.table.Dispatch(ctx, c.playerID, in)
		cancel()
		switch {
		case errors.Is(err, service.ErrTableClosed):
			return
		case errors.Is(err, context.DeadlineExceeded):
			lg.Warn().Str("intent", string(in.Type)).Msg("Table did not answer in time")
		}
	}
}

// writePump writes messages to the WebSocket connection.
func (h *WSHandler) writePump(c *WSConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same write
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			h.flush(c)
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, c.closeReason))
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// flush writes whatever is already queued so a final event precedes the close frame.
func (h *WSHandler) flush(c *WSConn) {
	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}
