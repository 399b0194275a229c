package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Client-to-server message types
const (
	MsgRequestAccess MessageType = "request-access"
	MsgChatMessage   MessageType = "chat message"
	MsgAdminCommand  MessageType = "admin-command"
)

// Server-to-client message types
const (
	MsgChatHistory       MessageType = "chat-history"
	MsgSystem            MessageType = "system"
	MsgPermissionGranted MessageType = "permission-granted"
	MsgPermissionDenied  MessageType = "permission-denied"
	MsgKicked            MessageType = "kicked"
	MsgOnlineUsers       MessageType = "online-users"
	MsgAdminState        MessageType = "admin-state"
	MsgAccessDenied      MessageType = "access-denied"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages all live WebSocket connections. Delivery, targeted sends, and
// forced closes all funnel through one channel so a notification queued
// before a close is written before the close.
type Hub struct {
	conns map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	outbound   chan *outboundMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	ID      string
	IsAdmin bool // admin observers also receive registry snapshots
	Send    chan []byte
	Hub     *Hub
}

type outboundMessage struct {
	to         string // empty means broadcast
	adminsOnly bool
	close      bool // force-close the target instead of sending
	message    *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		outbound:   make(chan *outboundMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn.ID] = conn
			h.mu.Unlock()
			log.Printf("connection %s registered", conn.ID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.ID]; ok && existing == conn {
				delete(h.conns, conn.ID)
				close(conn.Send)
				log.Printf("connection %s unregistered", conn.ID)
			}
			h.mu.Unlock()

		case msg := <-h.outbound:
			if msg.close {
				h.mu.Lock()
				if conn, ok := h.conns[msg.to]; ok {
					delete(h.conns, msg.to)
					close(conn.Send)
				}
				h.mu.Unlock()
				continue
			}

			h.mu.RLock()
			data, _ := json.Marshal(msg.message)

			if msg.to != "" {
				if conn, ok := h.conns[msg.to]; ok {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			} else {
				for _, conn := range h.conns {
					if msg.adminsOnly && !conn.IsAdmin {
						continue
					}
					select {
					case conn.Send <- data:
					default:
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastAll sends an event to every connection (implements service.Broadcaster)
func (h *Hub) BroadcastAll(event string, payload interface{}) {
	h.outbound <- &outboundMessage{message: envelope(event, payload)}
}

// SendTo sends an event to one connection (implements service.Broadcaster)
func (h *Hub) SendTo(connID string, event string, payload interface{}) {
	h.outbound <- &outboundMessage{to: connID, message: envelope(event, payload)}
}

// BroadcastAdmins sends an event to admin observers only (implements service.Broadcaster)
func (h *Hub) BroadcastAdmins(event string, payload interface{}) {
	h.outbound <- &outboundMessage{adminsOnly: true, message: envelope(event, payload)}
}

// CloseConn force-closes a connection, after any events already queued for it
// (implements service.Broadcaster)
func (h *Hub) CloseConn(connID string) {
	h.outbound <- &outboundMessage{to: connID, close: true}
}

func envelope(event string, payload interface{}) *Message {
	data, _ := json.Marshal(payload)
	return &Message{
		Type:    MessageType(event),
		Payload: data,
	}
}
