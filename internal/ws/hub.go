// Package ws pushes newly derived alerts to connected browser clients over
// WebSocket. Each client subscribes for one user; the hub fans a stored
// alert out to every connection subscribed to its user.
package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sharpline/sharpline-alerts/internal/engine"
)

const broadcastBuffer = 256

// Hub maintains the set of active clients and routes alerts to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	broadcast  chan engine.Alert
	register   chan *Client
	unregister chan *Client

	logger *slog.Logger
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan engine.Alert, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run is the hub's main loop. Blocks until ctx is cancelled. Intended to be
// called with `go`.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("WebSocket hub started")
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Info("ws client connected", "user_id", c.userID)

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case alert := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				if c.userID != alert.UserID {
					continue
				}
				select {
				case c.send <- alert:
				default:
					// Slow consumer: drop the connection, not the hub.
					go h.Unregister(c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues an alert for delivery to its user's connections.
// Non-blocking; drops the alert if the hub is saturated.
func (h *Hub) Broadcast(alert engine.Alert) {
	select {
	case h.broadcast <- alert:
	default:
		h.logger.Warn("ws broadcast buffer full, dropping alert", "alert_id", alert.ID)
	}
}

// BroadcastAll queues a batch of alerts.
func (h *Hub) BroadcastAll(alerts []engine.Alert) {
	for _, a := range alerts {
		h.Broadcast(a)
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.logger.Info("WebSocket hub stopped")
}
