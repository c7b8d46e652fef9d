// Package cache stores the results of expensive aggregations so repeated
// renders can reuse them instead of recomputing. Concurrent requests for
// the same missing key share one computation.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value   interface{}
	created time.Time
}

// flight carries a shared computation's result together with whether it
// was served from an entry filled while the flight was being set up.
type flight struct {
	value interface{}
	hit   bool
}

// Stats counts cache traffic for the ops endpoint and the caching lab.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// Cache is a keyed result cache with a fixed TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	group   singleflight.Group
	hits    int64
	misses  int64
}

// New creates a cache whose entries expire after ttl. Zero means entries
// never expire.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// GetOrCompute returns the cached value for key, computing and storing it
// on a miss. Concurrent misses for the same key collapse into a single
// call to compute.
func (c *Cache) GetOrCompute(key string, compute func() (interface{}, error)) (interface{}, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && (c.ttl <= 0 || time.Since(e.created) < c.ttl) {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.value, true, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A racing caller may have filled the entry while we waited.
		c.mu.RLock()
		e, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && (c.ttl <= 0 || time.Since(e.created) < c.ttl) {
			return flight{value: e.value, hit: true}, nil
		}
		value, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = entry{value: value, created: time.Now()}
		c.misses++
		c.mu.Unlock()
		return flight{value: value}, nil
	})
	if err != nil {
		return nil, false, err
	}
	f := v.(flight)
	if f.hit {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
	}
	return f.value, f.hit, nil
}

// Invalidate drops one key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats returns a snapshot of cache traffic.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}
