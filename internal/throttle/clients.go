package throttle

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	sweepEvery = 3 * time.Minute
	staleAfter = 5 * time.Minute
)

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter holds one token bucket per client key, typically a remote IP.
// Idle clients are dropped lazily on access.
type ClientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientEntry
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// PerMinute creates a ClientLimiter allowing n requests per minute per client,
// with a burst of n. A non-positive n disables limiting.
func PerMinute(n int) *ClientLimiter {
	if n <= 0 {
		return NewClientLimiter(rate.Inf, 1)
	}
	return NewClientLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}

// NewClientLimiter creates a per-client limiter with the given rate and burst.
func NewClientLimiter(limit rate.Limit, burst int) *ClientLimiter {
	return &ClientLimiter{
		clients:   make(map[string]*clientEntry),
		limit:     limit,
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether the client may proceed now, consuming a token if so.
func (c *ClientLimiter) Allow(key string) bool {
	return c.limiterFor(key).AllowN(c.now(), 1)
}

// RetryAfter is the number of whole seconds a rejected client should wait.
func (c *ClientLimiter) RetryAfter() int {
	if c.limit == rate.Inf || c.limit <= 0 {
		return 1
	}
	return max(int(math.Round(1.0/float64(c.limit))), 1)
}

func (c *ClientLimiter) limiterFor(key string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) > sweepEvery {
		for k, entry := range c.clients {
			if now.Sub(entry.lastSeen) > staleAfter {
				delete(c.clients, k)
			}
		}
		c.lastSweep = now
	}

	if entry, ok := c.clients[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(c.limit, c.burst)
	c.clients[key] = &clientEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// Len returns the number of tracked clients.
func (c *ClientLimiter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}
