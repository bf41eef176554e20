package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps process-local counters exposed on /metrics.
type Collector struct {
	totalRequests   atomic.Uint64
	errorRequests   atomic.Uint64
	rateLimited     atomic.Uint64
	totalDurationMs atomic.Uint64

	openSockets     atomic.Int64
	relayedMessages atomic.Uint64
	droppedClients  atomic.Uint64
	sweptGoals      atomic.Uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.totalRequests.Add(1)
	if status >= 500 {
		c.errorRequests.Add(1)
	}
	if status == 429 {
		c.rateLimited.Add(1)
	}
	c.totalDurationMs.Add(uint64(duration.Milliseconds()))
}

func (c *Collector) SocketOpened() {
	if c != nil {
		c.openSockets.Add(1)
	}
}

func (c *Collector) SocketClosed() {
	if c != nil {
		c.openSockets.Add(-1)
	}
}

func (c *Collector) MessageRelayed() {
	if c != nil {
		c.relayedMessages.Add(1)
	}
}

func (c *Collector) ClientDropped() {
	if c != nil {
		c.droppedClients.Add(1)
	}
}

func (c *Collector) GoalsSwept(n int64) {
	if c != nil && n > 0 {
		c.sweptGoals.Add(uint64(n))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := c.totalRequests.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":       total,
		"errorsTotal":         c.errorRequests.Load(),
		"rateLimitedTotal":    c.rateLimited.Load(),
		"avgDurationMs":       avg,
		"totalDurationMs":     totalMs,
		"chatConnectionsOpen": c.openSockets.Load(),
		"chatMessagesRelayed": c.relayedMessages.Load(),
		"chatClientsDropped":  c.droppedClients.Load(),
		"goalsMarkedOverdue":  c.sweptGoals.Load(),
	}
}
