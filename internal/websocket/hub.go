// Angel WebSocket Hub
// Streams turn status events to connected interview clients

package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/founderport/angel/internal/interview"
	"github.com/founderport/angel/internal/metrics"
)

// Hub maintains active client connections grouped by interview session and
// broadcasts turn status events to them. It implements
// interview.StatusNotifier.
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Shutdown channel for graceful termination
	shutdown chan struct{}

	mu sync.RWMutex
}

// Message types for WebSocket communication
const (
	MessageTypeTurnStatus = "turn_status"
	MessageTypeError      = "error"
	MessageTypeHeartbeat  = "heartbeat"
)

// Message represents a WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// WebSocket upgrader configuration
// SECURITY: Strict origin checking - no empty origins in production
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		allowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
		var allowedOrigins []string
		if allowedOriginsEnv != "" {
			allowedOrigins = strings.Split(allowedOriginsEnv, ",")
		} else {
			allowedOrigins = []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			}
		}

		for _, allowed := range allowedOrigins {
			if strings.TrimSpace(allowed) == origin {
				return true
			}
		}

		// Only allow empty origin in non-production for testing tools
		env := os.Getenv("ENVIRONMENT")
		if origin == "" && env != "production" {
			return true
		}

		return false
	},
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		shutdown:   make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.shutdown:
			h.mu.Lock()
			for _, clients := range h.sessions {
				for client := range clients {
					close(client.send)
				}
			}
			h.sessions = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			log.Println("WebSocket Hub shutdown complete")
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// Shutdown gracefully stops the hub
func (h *Hub) Shutdown() {
	close(h.shutdown)
}

// registerClient handles client registration
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.SessionID] == nil {
		h.sessions[client.SessionID] = make(map[*Client]bool)
	}
	h.sessions[client.SessionID][client] = true
	metrics.Get().WebSocketConnections.Inc()

	log.Printf("Client registered: UserID=%d, SessionID=%s", client.UserID, client.SessionID)
}

// unregisterClient handles client disconnection
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.sessions[client.SessionID]
	if clients == nil || !clients[client] {
		return
	}

	delete(clients, client)
	if len(clients) == 0 {
		delete(h.sessions, client.SessionID)
	}
	close(client.send)
	metrics.Get().WebSocketConnections.Dec()

	log.Printf("Client unregistered: UserID=%d, SessionID=%s", client.UserID, client.SessionID)
}

// NotifyStatus implements interview.StatusNotifier: it pushes a turn status
// event to every client watching the session. Delivery is best effort.
func (h *Hub) NotifyStatus(sessionID string, status interview.TurnStatus) {
	h.broadcastToSession(sessionID, Message{
		Type:      MessageTypeTurnStatus,
		SessionID: sessionID,
		Data:      status,
		Timestamp: time.Now(),
	})
}

// broadcastToSession sends a message to all clients watching a session
func (h *Hub) broadcastToSession(sessionID string, message Message) {
	h.mu.RLock()
	clients := h.sessions[sessionID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}

	messageData, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for client := range clients {
		select {
		case client.send <- messageData:
		default:
			// Client's send channel is full, drop the event
		}
	}
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, clients := range h.sessions {
		count += len(clients)
	}
	return count
}

// HandleWebSocket handles WebSocket connection upgrades
func (h *Hub) HandleWebSocket(c *gin.Context) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	userID := userIDInterface.(uint)

	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:      conn,
		UserID:    userID,
		SessionID: sessionID,
		send:      make(chan []byte, 64),
		hub:       h,
		lastSeen:  time.Now(),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}
