package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)
	c.SocketOpened()
	c.SocketOpened()
	c.SocketClosed()
	c.MessageRelayed()
	c.GoalsSwept(3)
	c.GoalsSwept(-1)

	snap := c.Snapshot()
	if snap["requestsTotal"] != uint64(3) {
		t.Fatalf("unexpected requests total: %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"] != uint64(1) || snap["rateLimitedTotal"] != uint64(1) {
		t.Fatalf("unexpected error counters: %v", snap)
	}
	if snap["avgDurationMs"] != float64(40)/3 {
		t.Fatalf("unexpected average: %v", snap["avgDurationMs"])
	}
	if snap["chatConnectionsOpen"] != int64(1) {
		t.Fatalf("unexpected open sockets: %v", snap["chatConnectionsOpen"])
	}
	if snap["goalsMarkedOverdue"] != uint64(3) {
		t.Fatalf("unexpected swept goals: %v", snap["goalsMarkedOverdue"])
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Record(200, time.Millisecond)
	c.SocketOpened()
	c.MessageRelayed()
}
