package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gatechat/internal/model"
	"gatechat/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub       *Hub
	lifecycle *service.LifecycleService
	chat      *service.ChatService
	admission *service.AdmissionService
	authSvc   *service.AuthService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, lifecycle *service.LifecycleService, chat *service.ChatService, admission *service.AdmissionService, authSvc *service.AuthService) *Handler {
	return &Handler{
		hub:       hub,
		lifecycle: lifecycle,
		chat:      chat,
		admission: admission,
		authSvc:   authSvc,
	}
}

// ChatWS handles GET /v1/ws/chat
func (h *Handler) ChatWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	h.serve(wsConn, false)
}

// AdminWS handles GET /v1/ws/admin. The token only marks the connection as an
// admin observer; admin commands still carry the shared secret on every call.
func (h *Handler) AdminWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateAdminToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("admin %s connected as observer", claims.AdminID)
	h.serve(wsConn, true)
}

func (h *Handler) serve(wsConn *websocket.Conn, isAdmin bool) {
	conn := &Connection{
		ID:      uuid.New().String(),
		IsAdmin: isAdmin,
		Send:    make(chan []byte, 256),
		Hub:     h.hub,
	}

	h.hub.Register(conn)
	sess := h.lifecycle.Connect(conn.ID)

	if isAdmin {
		h.hub.SendTo(conn.ID, string(MsgAdminState), h.admission.Snapshot())
	}

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn, sess)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection, sess *model.Session) {
	defer func() {
		h.hub.Unregister(conn)
		h.lifecycle.Disconnect(sess)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("malformed message from %s: %v", conn.ID, err)
			continue
		}

		h.dispatch(conn, sess, &msg)
	}
}

func (h *Handler) dispatch(conn *Connection, sess *model.Session, msg *Message) {
	switch msg.Type {
	case MsgRequestAccess:
		var name string
		if err := json.Unmarshal(msg.Payload, &name); err != nil {
			return
		}
		h.lifecycle.RequestAccess(sess, name)

	case MsgChatMessage:
		var text string
		if err := json.Unmarshal(msg.Payload, &text); err != nil {
			return
		}
		h.chat.HandleMessage(sess, text)

	case MsgAdminCommand:
		var cmd model.AdminCommand
		if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
			return
		}
		h.admission.HandleAdminCommand(conn.ID, cmd)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
