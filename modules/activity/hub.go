package activity

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
)

// broadcastBuffer bounds the number of activities waiting to be fanned out.
const broadcastBuffer = 256

// Conn is the part of a WebSocket connection the hub writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is a connected feed subscriber.
type Client struct {
	ID   string
	Conn Conn
}

// Hub fans task activity out to every connected client.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Activity
	done       chan struct{}
	mu         sync.RWMutex
	logger     types.Logger
}

// NewHub creates a new Hub.
func NewHub(logger types.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Activity, broadcastBuffer),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop and returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case activity := <-h.broadcast:
			h.handleBroadcast(activity)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// Register adds a client. After the hub stops the connection is closed instead.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		_ = client.Conn.Close()
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues an activity for every client. It never blocks; when the
// queue is full the activity is dropped.
func (h *Hub) Broadcast(activity Activity) {
	select {
	case h.broadcast <- activity:
	default:
		h.logger.Warn("Activity feed queue full, dropping activity",
			"type", activity.Type, "taskID", activity.TaskID)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	h.logger.Debug("Feed client registered", "clientID", client.ID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		h.logger.Debug("Feed client unregistered", "clientID", client.ID)
	}
}

func (h *Hub) handleBroadcast(activity Activity) {
	data, err := json.Marshal(activity)
	if err != nil {
		h.logger.Error("Failed to marshal activity", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn("Failed to send activity", "clientID", client.ID, "error", err)
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
}
