package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a concurrency-safe in-process cache.
type MemoryCache struct {
	mu sync.RWMutex

	data map[string]entry

	// maxEntries bounds the number of keys (0 = unlimited).
	maxEntries int

	now func() time.Time
}

// NewMemoryCache creates a MemoryCache.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached value for key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, ErrMiss
	}
	return e.value, nil
}

// Set stores value under key for ttl and enforces the entry limit.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry{value: value, expiresAt: now.Add(ttl)}

	// Drop expired entries first, then the soonest to expire.
	if c.maxEntries > 0 && len(c.data) > c.maxEntries {
		for k, e := range c.data {
			if !now.Before(e.expiresAt) {
				delete(c.data, k)
			}
		}
	}
	for c.maxEntries > 0 && len(c.data) > c.maxEntries {
		var (
			oldest   string
			oldestAt time.Time
			found    bool
		)
		for k, e := range c.data {
			if k == key {
				continue
			}
			if !found || e.expiresAt.Before(oldestAt) {
				oldest, oldestAt, found = k, e.expiresAt, true
			}
		}
		if !found {
			break
		}
		delete(c.data, oldest)
	}
	return nil
}
