// Package cache holds the shared in-memory entity cache. Entries are
// best-effort accelerators only: the cache is empty at process start, never
// persisted, and always rebuildable from the remote store.
package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL bounds staleness for every cached entry.
const DefaultTTL = 5 * time.Minute

type entry struct {
	data     any
	cachedAt time.Time
}

// Cache is a TTL map shared by all repositories for the process lifetime.
// Expiry is lazy: an expired entry reads as a miss but stays in place until
// it is overwritten or invalidated.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New returns a cache with the given TTL. A non-positive ttl falls back to
// DefaultTTL.
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock is New with an injectable clock for tests.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached value for key if present and fresh.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		cacheMisses.WithLabelValues(familyOf(key)).Inc()
		return nil, false
	}
	if c.now().Sub(e.cachedAt) > c.ttl {
		cacheExpired.WithLabelValues(familyOf(key)).Inc()
		return nil, false
	}
	cacheHits.WithLabelValues(familyOf(key)).Inc()
	return e.data, true
}

// Put stores value under key with the current timestamp.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{data: value, cachedAt: c.now()}
	c.mu.Unlock()
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidatePrefix removes every entry whose key starts with prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of resident entries, fresh or expired.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func familyOf(key string) string {
	if i := strings.IndexByte(key, '/'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
