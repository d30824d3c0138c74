package cache

import (
	"hash/maphash"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Default configuration constants.
const (
	// DefaultShardCount is the number of shards for reduced lock contention.
	// Must be a power of 2 for fast modulo via bitwise AND.
	DefaultShardCount = 16

	// shardMask is used for fast shard selection (DefaultShardCount - 1).
	shardMask = DefaultShardCount - 1
)

// Hasher is a function that computes a hash for a key.
// Used by Map for shard selection only; key equality is always exact.
type Hasher[K any] func(K) uint64

// StringHasher computes the xxHash64 of a string key.
func StringHasher(s string) uint64 {
	return xxhash.Sum64String(s)
}

var comparableSeed = maphash.MakeSeed()

// ComparableHasher returns a Hasher for any comparable key, including
// structs with array and pointer fields. Hashes are stable for the life
// of the process.
func ComparableHasher[K comparable]() Hasher[K] {
	return func(k K) uint64 {
		return maphash.Comparable(comparableSeed, k)
	}
}

// Map is a thread-safe, sharded map keyed on structural equality.
//
// Unlike an LRU cache, Map never evicts on its own: an entry is removed
// only through Delete or CompareAndDelete, which lets callers tie entry
// lifetime to a reference count.
//
// Reads take a shard read lock only, so concurrent hits on different or
// identical keys do not serialize on a single mutex.
type Map[K comparable, V comparable] struct {
	shards [DefaultShardCount]*mapShard[K, V]
	hasher Hasher[K]

	// Statistics (atomic for zero-allocation reads)
	hits    atomic.Uint64
	misses  atomic.Uint64
	inserts atomic.Uint64
	removed atomic.Uint64
}

// mapShard is a single shard of the map.
type mapShard[K comparable, V comparable] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// New creates an empty Map. The hasher selects shards; use StringHasher
// for string keys or ComparableHasher for struct keys.
func New[K comparable, V comparable](hasher Hasher[K]) *Map[K, V] {
	if hasher == nil {
		hasher = ComparableHasher[K]()
	}
	m := &Map[K, V]{hasher: hasher}
	for i := range m.shards {
		m.shards[i] = &mapShard[K, V]{entries: make(map[K]V)}
	}
	return m
}

// shard returns the shard for a given key.
func (m *Map[K, V]) shard(key K) *mapShard[K, V] {
	return m.shards[m.hasher(key)&shardMask]
}

// Load returns the value stored for key.
// Returns (value, true) if found, (zero, false) otherwise.
func (m *Map[K, V]) Load(key K) (V, bool) {
	s := m.shard(key)
	s.mu.RLock()
	v, ok := s.entries[key]
	s.mu.RUnlock()

	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return v, ok
}

// LoadOrStore returns the existing value for key if present and reports
// loaded=true. Otherwise it stores value and returns it with loaded=false.
// The check and the store happen under one shard lock.
func (m *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		return existing, true
	}
	s.entries[key] = value
	m.inserts.Add(1)
	return value, false
}

// CompareAndDelete deletes the entry for key only if it currently holds
// old. Returns true if the entry was removed.
func (m *Map[K, V]) CompareAndDelete(key K, old V) bool {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.entries[key]; !ok || cur != old {
		return false
	}
	delete(s.entries, key)
	m.removed.Add(1)
	return true
}

// Delete removes an entry from the map.
// Returns true if the entry was found and removed.
func (m *Map[K, V]) Delete(key K) bool {
	s := m.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	m.removed.Add(1)
	return true
}

// Range calls f for every entry until f returns false.
// Each shard is snapshotted under its read lock and f runs without any
// lock held, so f may call back into the map.
func (m *Map[K, V]) Range(f func(K, V) bool) {
	type kv struct {
		k K
		v V
	}
	for _, s := range m.shards {
		s.mu.RLock()
		snap := make([]kv, 0, len(s.entries))
		for k, v := range s.entries {
			snap = append(snap, kv{k, v})
		}
		s.mu.RUnlock()

		for _, e := range snap {
			if !f(e.k, e.v) {
				return
			}
		}
	}
}

// Clear removes all entries from the map.
func (m *Map[K, V]) Clear() {
	for _, s := range m.shards {
		s.mu.Lock()
		m.removed.Add(uint64(len(s.entries)))
		s.entries = make(map[K]V)
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (m *Map[K, V]) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// ShardLen returns the number of entries in each shard.
// Useful for debugging load distribution.
func (m *Map[K, V]) ShardLen() [DefaultShardCount]int {
	var lens [DefaultShardCount]int
	for i, s := range m.shards {
		s.mu.RLock()
		lens[i] = len(s.entries)
		s.mu.RUnlock()
	}
	return lens
}

// Stats returns current map statistics.
// This operation is mostly lock-free (atomic counters).
func (m *Map[K, V]) Stats() Stats {
	hits := m.hits.Load()
	misses := m.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:     m.Len(),
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
		Inserts: m.inserts.Load(),
		Removed: m.removed.Load(),
	}
}

// ResetStats resets all statistics counters to zero.
func (m *Map[K, V]) ResetStats() {
	m.hits.Store(0)
	m.misses.Store(0)
	m.inserts.Store(0)
	m.removed.Store(0)
}

// Stats contains map statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of Load calls that found an entry.
	Hits uint64
	// Misses is the number of Load calls that found nothing.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Inserts is the number of entries stored by LoadOrStore.
	Inserts uint64
	// Removed is the number of entries deleted.
	Removed uint64
}
