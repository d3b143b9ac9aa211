package websocket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Notification types
const (
	NotificationTypeConnected      = "connected"
	NotificationTypePaymentSettled = "payment_settled"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// conn is the part of *websocket.Conn the hub writes to
type conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one connected front-desk session
type Client struct {
	UserID string
	Conn   conn
}

// Hub tracks connected operator sessions and fans payment events out to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a notification to every connected session
func (h *Hub) Broadcast(notification Notification) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client := range h.clients {
		if err := client.Conn.WriteJSON(notification); err != nil {
			log.Printf("websocket write failed userId=%s err=%v", client.UserID, err)
			continue
		}
		sent++
	}
	return sent
}

// BroadcastPaymentSettled tells every front desk that an appointment was paid
func (h *Hub) BroadcastPaymentSettled(data interface{}) {
	h.Broadcast(Notification{
		Type:    NotificationTypePaymentSettled,
		Message: "Payment received",
		Data:    data,
	})
}

// ConnectedClients returns the number of live sessions
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var _ conn = (*websocket.Conn)(nil)
