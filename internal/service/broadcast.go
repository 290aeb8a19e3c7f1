package service

// Broadcaster sends real-time events to connected clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastTableEvent(eventType string, data any)
	SendPlayerEvent(playerID, eventType string, data any)
	CloseAll(reason string)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastTableEvent(string, any)     {}
func (NoopBroadcaster) SendPlayerEvent(string, string, any) {}
func (NoopBroadcaster) CloseAll(string)                     {}
