package socket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks live WebSocket connections, keyed by the user's email.
type Hub struct {
	clients map[string]*websocket.Conn
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register adds a client connection. A second connection for the same email
// replaces the first.
func (h *Hub) Register(email string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[email] = conn
	log.Printf("WebSocket client registered: %s", email)
}

// Unregister removes a client from the Hub.
func (h *Hub) Unregister(email string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[email]; ok {
		delete(h.clients, email)
		log.Printf("WebSocket client unregistered: %s", email)
	}
}

// Send delivers a message to one client. An offline client is not an error.
func (h *Hub) Send(email string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[email]
	if !ok {
		log.Printf("WebSocket client not found, could not send message: %s", email)
		return nil
	}

	return conn.WriteMessage(websocket.TextMessage, message)
}

// Broadcast sends a message to every connected client. Write errors are
// logged per client and do not stop the fan-out.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for email, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket broadcast to %s failed: %v", email, err)
		}
	}
}
