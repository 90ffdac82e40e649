package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

const (
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventUserOnline     = "userOnline"
	EventUserOffline    = "userOffline"
	EventTyping         = "typing"
)

// Event is the envelope for every frame on the socket.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ChatPayload carries a relayed chat message. Delivery is best effort, at
// most once; the authoritative copy goes through the REST message endpoint.
type ChatPayload struct {
	ConversationID uint   `json:"conversation_id"`
	To             uint   `json:"to"`
	SenderID       uint   `json:"sender_id"`
	Content        string `json:"content"`
	MessageType    string `json:"message_type,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
}

type TypingPayload struct {
	ConversationID uint `json:"conversation_id"`
	To             uint `json:"to"`
	UserID         uint `json:"user_id"`
	IsTyping       bool `json:"is_typing"`
}

type PresencePayload struct {
	UserID uint `json:"user_id"`
}

// Hub tracks connected clients. The clients map is shared between the Run
// goroutine and handler goroutines calling BroadcastToUser, so every access
// goes through mu; channels are only ever closed while holding the write
// lock, which is what makes the lock-free-looking sends in BroadcastToUser
// safe.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// OnPresence, when set, is invoked off the handler path whenever a
	// user's first connection opens or last connection closes.
	OnPresence func(userID uint, online bool)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			first := !h.userConnectedLocked(client.userID)
			h.clients[client] = true
			h.mu.Unlock()
			logrus.WithField("user_id", client.userID).Info("WebSocket client connected")
			if first {
				h.announcePresence(client.userID, true)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			var last bool
			if ok {
				delete(h.clients, client)
				close(client.send)
				last = !h.userConnectedLocked(client.userID)
			}
			h.mu.Unlock()
			if ok {
				logrus.WithField("user_id", client.userID).Info("WebSocket client disconnected")
				if last {
					h.announcePresence(client.userID, false)
				}
			}

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) userConnectedLocked(userID uint) bool {
	for client := range h.clients {
		if client.userID == userID {
			return true
		}
	}
	return false
}

func (h *Hub) announcePresence(userID uint, online bool) {
	event := EventUserOffline
	if online {
		event = EventUserOnline
	}
	if payload, err := Marshal(event, PresencePayload{UserID: userID}); err == nil {
		h.mu.RLock()
		for client := range h.clients {
			select {
			case client.send <- payload:
			default:
			}
		}
		h.mu.RUnlock()
	}
	if h.OnPresence != nil {
		go h.OnPresence(userID, online)
	}
}

// BroadcastToUser delivers a frame to every open connection of one user.
// Frames to clients with a full buffer are dropped rather than evicting the
// client; eviction stays with the Run goroutine.
func (h *Hub) BroadcastToUser(userID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.userID == userID {
			select {
			case client.send <- message:
			default:
			}
		}
	}
}

// Broadcast delivers a frame to every connected client.
func (h *Hub) Broadcast(message []byte) {
	h.broadcast <- message
}

// Marshal wraps a payload in the event envelope.
func Marshal(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Event: event, Data: data})
}

func HandleWebSocket(hub *Hub, c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID.(uint),
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// now is split out so relayed frames carry a consistent timestamp format.
func now() string {
	return time.Now().Format(time.RFC3339)
}
