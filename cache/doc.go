// Package cache provides the concurrent structural map behind every
// resource cache of a glcache.Context.
//
// # Map[K, V]
//
// A sharded map designed for high-concurrency lookups. It uses 16 shards,
// each guarded by its own RWMutex, so cache hits on the render path never
// contend on the context mutex.
//
//	m := cache.New[samplerKey, *Handle](nil)
//	h, loaded := m.LoadOrStore(key, fresh)
//	if loaded {
//		// another goroutine won the race; discard fresh
//	}
//
// Keys are compared with Go equality, so any comparable struct works as a
// canonical descriptor. Hashing only selects the shard: StringHasher uses
// xxHash64, ComparableHasher uses the runtime hash of the key.
//
// Map never evicts on its own. Entries leave through CompareAndDelete,
// which lets the owner remove exactly the value whose reference count
// reached zero and never a newer value stored under the same key.
package cache
