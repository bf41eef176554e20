package ws

import (
	"context"
	"log/slog"
	"sync"

	"perfeval/internal/platform/metrics"
)

// Hub owns the room membership of every local connection.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	broker  Broker
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewHub builds a hub. A nil broker keeps fan-out in process.
func NewHub(broker Broker, logger *slog.Logger, collector *metrics.Collector) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		rooms:   map[string]map[*Client]struct{}{},
		logger:  logger,
		metrics: collector,
	}
	if broker == nil {
		broker = &LocalBroker{deliver: h.deliver}
	}
	h.broker = broker
	return h
}

// Run consumes the broker until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	return h.broker.Run(ctx, h.deliver)
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = map[*Client]struct{}{}
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
}

func (h *Hub) leaveLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Remove drops the client from every room.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range h.rooms {
		h.leaveLocked(c, room)
	}
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) Broadcast(ctx context.Context, room string, frame []byte) error {
	return h.broker.Publish(ctx, room, frame)
}

func (h *Hub) deliver(room string, frame []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if c.closed() {
			continue
		}
		if c.enqueue(frame) {
			h.metrics.MessageRelayed()
			continue
		}
		h.logger.Warn("chat relay: dropping slow client", "user_id", c.identity.UserID, "room", room)
		h.metrics.ClientDropped()
		h.Remove(c)
		c.close()
	}
}
