// Package ws streams order events to websocket clients, one room per order.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"fulfillment/internal/core/ports"
)

const broadcastBuffer = 256

var _ ports.EventPublisher = (*Hub)(nil)

type roomEvent struct {
	orderCode string
	message   []byte
}

// Hub maintains the clients of every order room and fans events out to them.
type Hub struct {
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan roomEvent
	done       chan struct{}

	mu      sync.RWMutex
	dropped atomic.Int64
	logger  *slog.Logger
}

// NewHub creates a hub with no rooms. Run must be started before clients are
// served.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomEvent, broadcastBuffer),
		done:       make(chan struct{}),
		logger:     logger.With("component", "event_hub"),
	}
}

// Run is the hub loop. It returns when ctx ends, closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.orderCode] == nil {
				h.rooms[client.orderCode] = make(map[*Client]bool)
			}
			h.rooms[client.orderCode][client] = true
			h.mu.Unlock()
			h.logger.DebugContext(ctx, "client joined", "orderCode", client.orderCode, "clientId", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			for client := range h.rooms[event.orderCode] {
				select {
				case client.send <- event.message:
				default:
					// slow consumer
					h.logger.WarnContext(ctx, "dropping slow client", "orderCode", event.orderCode, "clientId", client.id)
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.orderCode]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.orderCode)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for code, clients := range h.rooms {
		for client := range clients {
			close(client.send)
		}
		delete(h.rooms, code)
	}
}

// Publish queues an event for the order's room. It never blocks: when the
// broadcast buffer is full the event is dropped and counted.
func (h *Hub) Publish(ctx context.Context, event ports.OrderEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.ErrorContext(ctx, "encode order event", "orderCode", event.OrderCode, "error", err)
		return
	}

	select {
	case h.broadcast <- roomEvent{orderCode: event.OrderCode, message: message}:
	default:
		h.dropped.Add(1)
		h.logger.WarnContext(ctx, "event buffer full, dropping event", "orderCode", event.OrderCode, "type", event.Type)
	}
}

// RoomSize returns the number of clients following an order.
func (h *Hub) RoomSize(orderCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[orderCode])
}

// Dropped returns how many events were discarded because the buffer was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
