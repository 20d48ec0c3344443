package dedup

import (
	"sync"
	"time"
)

// Cache is the short-horizon dedup store: a TTL-bound in-process set that
// coalesces near-simultaneous webhook re-deliveries. It is not the
// correctness-critical guard (see Guard); losing it on restart is fine.
// sweepThreshold bounds the map without a background sweeper; above it,
// Remember evicts expired entries in place.
const sweepThreshold = 1024

type Cache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]time.Time // key -> expiry
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{
		ttl:   ttl,
		items: make(map[string]time.Time),
	}
}

// Seen reports whether the key was remembered within the TTL window.
func (c *Cache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	exp, ok := c.items[key]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(c.items, key)
		return false
	}
	return true
}

// Remember marks the key as processed. Expired entries are swept
// opportunistically so the map stays bounded without a background goroutine.
func (c *Cache) Remember(key string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = now.Add(c.ttl)

	if len(c.items) > sweepThreshold {
		for k, exp := range c.items {
			if now.After(exp) {
				delete(c.items, k)
			}
		}
	}
}

// Len is used by tests and the metrics endpoint.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
