package handler

import "github.com/freeeve/conquest-table/internal/service"

var _ service.Broadcaster = (*Hub)(nil)

// BroadcastTableEvent implements service.Broadcaster using the WebSocket hub.
func (h *Hub) BroadcastTableEvent(eventType string, data any) {
	h.BroadcastToTable(WSEvent{Type: eventType, Data: data})
}

// SendPlayerEvent implements service.Broadcaster.
func (h *Hub) SendPlayerEvent(playerID, eventType string, data any) {
	h.SendToPlayer(playerID, WSEvent{Type: eventType, Data: data})
}
