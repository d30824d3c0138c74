package glcache

import (
	"github.com/gogpu/glcache/cache"
)

// createOps describes how one cache kind validates and builds its values.
type createOps[V any] struct {
	kind string

	// validate runs before any lock is taken and must not call the driver.
	validate func() error

	// build creates the value. It runs with c.mu held unless unlocked is
	// set; unlocked builds may only acquire other cached objects.
	build func() (V, error)

	// discard destroys a value that lost the insert race and was never
	// published. locked reports whether c.mu is held.
	discard func(v V, locked bool)

	unlocked bool
}

// getOrCreate returns the cached value for key with one use added,
// building it on a miss. At most one live value per key is ever
// published; a built value that loses the race is discarded.
func getOrCreate[K comparable, V refCounted](c *Context, m *cache.Map[K, V], key K, ops createOps[V]) (V, error) {
	var zero V
	if v, ok := m.Load(key); ok && v.tryAcquire() {
		return v, nil
	}
	if ops.validate != nil {
		if err := ops.validate(); err != nil {
			return zero, err
		}
	}
	if err := c.checkLive(); err != nil {
		return zero, err
	}

	if ops.unlocked {
		v, err := ops.build()
		if err != nil {
			return zero, err
		}
		return publish(m, key, v, ops, false), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return zero, err
	}
	return getOrCreateLocked(m, key, ops)
}

// getOrCreateLocked is the miss path of getOrCreate for callers that
// already hold c.mu and validated the descriptor.
func getOrCreateLocked[K comparable, V refCounted](m *cache.Map[K, V], key K, ops createOps[V]) (V, error) {
	if v, ok := m.Load(key); ok && v.tryAcquire() {
		return v, nil
	}
	v, err := ops.build()
	if err != nil {
		var zero V
		return zero, err
	}
	Logger().Debug("glcache: cache miss", "kind", ops.kind)
	return publish(m, key, v, ops, true), nil
}

// publish inserts v or returns the live winner of a concurrent insert.
// Entries whose use count already dropped to zero are replaced.
func publish[K comparable, V refCounted](m *cache.Map[K, V], key K, v V, ops createOps[V], locked bool) V {
	v.setEvict(func() bool { return m.CompareAndDelete(key, v) })
	for {
		prev, loaded := m.LoadOrStore(key, v)
		if !loaded {
			return v
		}
		if prev.tryAcquire() {
			Logger().Debug("glcache: lost create race", "kind", ops.kind)
			if ops.discard != nil {
				ops.discard(v, locked)
			}
			return prev
		}
		m.CompareAndDelete(key, prev)
	}
}

// discardHandle destroys a handle that was never published. locked
// reports whether the caller holds c.mu.
func (c *Context) discardHandle(h *Handle, locked bool) {
	h.uses.Store(0)
	mode := releaseLocked
	if !locked {
		mode = c.syncMode()
	}
	c.destroy(h.id, h.typ, mode)
	for _, d := range h.deps {
		_ = c.releaseHandle(d, mode)
	}
	h.deps = nil
	h.trash.Release()
}
