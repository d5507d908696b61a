// Package websocket pushes leaderboard snapshots to connected browsers.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/highscore-board/internal/domain"
)

// Message types
const (
	MessageTypeLeaderboardUpdate = "leaderboard_update"
	MessageTypePing              = "ping"
	MessageTypePong              = "pong"
	MessageTypeError             = "error"
)

// Message represents a WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu     sync.RWMutex
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the hub's main loop; it returns after Stop
func (h *Hub) Run() {
	h.logger.Info("websocket hub started")
	for {
		select {
		case <-h.ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			h.logger.Info("websocket hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", "client_id", client.id)

		case data := <-h.broadcast:
			h.fanOut(data)
		}
	}
}

// Stop stops the hub and closes every client's send channel
func (h *Hub) Stop() {
	h.cancel()
}

func (h *Hub) fanOut(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.enqueue(data) {
			h.logger.Warn("client buffer full, skipping", "client_id", client.id)
		}
	}
}

// BroadcastLeaderboard queues a snapshot for every connected client. It never
// blocks; when the queue is full the update is dropped.
func (h *Hub) BroadcastLeaderboard(snap domain.LeaderboardSnapshot) {
	data, err := encodeSnapshot(snap)
	if err != nil {
		h.logger.Error("failed to marshal leaderboard update", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast channel full, dropping message")
	}
}

// Register adds a client to the hub. It reports false if the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Connections returns the number of connected clients
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func encodeSnapshot(snap domain.LeaderboardSnapshot) ([]byte, error) {
	if snap.Entries == nil {
		snap.Entries = []domain.LeaderboardEntry{}
	}
	return json.Marshal(Message{
		Type:      MessageTypeLeaderboardUpdate,
		Data:      snap,
		Timestamp: time.Now().UTC(),
	})
}
