// Package hub fans table state out to websocket viewers.
package hub

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Hub manages WebSocket clients and broadcasts messages.
type Hub struct {
	clients    map[*Client]bool
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Register adds a new client to the hub. It returns false once the hub has
// stopped.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return false
	default:
	}
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client connected", "total", n)
	return true
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Players returns the distinct players followed by connected clients.
func (h *Hub) Players() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var players []int
	for c := range h.clients {
		if p := c.Player(); !slices.Contains(players, p) {
			players = append(players, p)
		}
	}
	slices.Sort(players)
	return players
}

// Send queues msg for one client. It reports false if the client is gone or
// its buffer is full.
func (h *Hub) Send(c *Client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return false
	}
	return c.trySend(msg)
}

// BroadcastToPlayer sends a message to all clients following player.
func (h *Hub) BroadcastToPlayer(msg []byte, player int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.Player() != player {
			continue
		}
		if !client.trySend(msg) {
			// Client send buffer full, disconnect
			h.logger.Warn("dropping slow client", "player", player)
			go h.Unregister(client)
		}
	}
}

// Run serves unregister requests until ctx is cancelled, then closes every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mu.Lock()
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			if ok {
				h.logger.Info("client disconnected", "total", n)
			}
		}
	}
}
