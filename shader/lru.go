package shader

import "sync"

// lru is a thread-safe cache with a soft limit. When an insert pushes it
// over the limit, the least recently used quarter is evicted.
type lru[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*lruEntry[V]
	softLimit int
	tick      int64

	hits, misses, evictions uint64
}

type lruEntry[V any] struct {
	value V
	atime int64
}

// newLRU creates a cache. A softLimit of 0 means unlimited.
func newLRU[K comparable, V any](softLimit int) *lru[K, V] {
	return &lru[K, V]{
		entries:   make(map[K]*lruEntry[V]),
		softLimit: softLimit,
	}
}

func (c *lru[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.tick++
	e.atime = c.tick
	return e.value, true
}

func (c *lru[K, V]) set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	c.entries[key] = &lruEntry[V]{value: value, atime: c.tick}
	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evictOldest()
	}
}

func (c *lru[K, V]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*lruEntry[V])
	c.tick = 0
}

func (c *lru[K, V]) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Len:       len(c.entries),
		Capacity:  c.softLimit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// evictOldest trims the cache to three quarters of the soft limit.
// Caller must hold c.mu.
func (c *lru[K, V]) evictOldest() {
	target := c.softLimit * 3 / 4
	if target < 1 {
		target = 1
	}
	toEvict := len(c.entries) - target
	if toEvict <= 0 {
		return
	}

	type aged struct {
		key   K
		atime int64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, atime: e.atime})
	}

	// Partial selection sort: only the oldest toEvict entries are ordered.
	for i := 0; i < toEvict; i++ {
		minIdx := i
		for j := i + 1; j < len(all); j++ {
			if all[j].atime < all[minIdx].atime {
				minIdx = j
			}
		}
		all[i], all[minIdx] = all[minIdx], all[i]
		delete(c.entries, all[i].key)
		c.evictions++
	}
}

// CacheStats reports translation cache usage.
type CacheStats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}
