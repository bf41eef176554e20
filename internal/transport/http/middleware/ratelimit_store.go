package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateCounter counts hits per key in fixed windows. Hit returns the count
// including this hit and the time left before the window resets.
type RateCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int, time.Duration, error)
}

type window struct {
	count int
	reset time.Time
}

// MemoryRateCounter keeps windows in process memory. Expired windows are
// pruned once the map passes pruneAt entries.
type MemoryRateCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	pruneAt int
	now     func() time.Time
}

func NewMemoryRateCounter() *MemoryRateCounter {
	return &MemoryRateCounter{windows: map[string]*window{}, pruneAt: 10000, now: time.Now}
}

func (c *MemoryRateCounter) Hit(_ context.Context, key string, span time.Duration) (int, time.Duration, error) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.windows) >= c.pruneAt {
		for k, w := range c.windows {
			if now.After(w.reset) {
				delete(c.windows, k)
			}
		}
	}
	w, ok := c.windows[key]
	if !ok || now.After(w.reset) {
		w = &window{reset: now.Add(span)}
		c.windows[key] = w
	}
	w.count++
	return w.count, w.reset.Sub(now), nil
}

func (c *MemoryRateCounter) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.windows)
}

// RedisRateCounter shares windows across instances with INCR and a key
// expiry set on the first hit.
type RedisRateCounter struct {
	client redis.Cmdable
	prefix string
}

func NewRedisRateCounter(client redis.Cmdable) *RedisRateCounter {
	return &RedisRateCounter{client: client, prefix: "perfeval:ratelimit:"}
}

func (c *RedisRateCounter) Hit(ctx context.Context, key string, span time.Duration) (int, time.Duration, error) {
	key = c.prefix + key
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if n == 1 {
		if err := c.client.PExpire(ctx, key, span).Err(); err != nil {
			return 0, 0, err
		}
		return 1, span, nil
	}
	ttl, err := c.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// The expiry was lost (crash between INCR and PEXPIRE); restart the window.
		if err := c.client.PExpire(ctx, key, span).Err(); err != nil {
			return 0, 0, err
		}
		ttl = span
	}
	return int(n), ttl, nil
}
