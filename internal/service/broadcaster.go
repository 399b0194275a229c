package service

// Broadcaster interface for WebSocket delivery (avoids import cycle with the
// transport package). Implemented by ws.Hub.
type Broadcaster interface {
	// BroadcastAll delivers an event to every live connection, admins included.
	BroadcastAll(event string, payload interface{})
	// SendTo delivers an event to a single connection by its handle.
	SendTo(connID string, event string, payload interface{})
	// BroadcastAdmins delivers an event to admin observer connections only.
	BroadcastAdmins(event string, payload interface{})
	// CloseConn force-closes a connection. The transport reports the resulting
	// disconnect through the usual lifecycle path.
	CloseConn(connID string)
}
