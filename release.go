package glcache

import (
	"errors"
	"runtime"
	"sync/atomic"
)

type releaseMode uint8

const (
	// releaseLocked deletes immediately; the caller holds c.mu.
	releaseLocked releaseMode = iota
	// releaseSync takes c.mu to delete.
	releaseSync
	// releaseDeferred queues the deletion for the next flush.
	releaseDeferred
)

func (m releaseMode) String() string {
	switch m {
	case releaseLocked:
		return "locked"
	case releaseSync:
		return "sync"
	default:
		return "deferred"
	}
}

// syncMode is the mode used by explicit Release calls.
func (c *Context) syncMode() releaseMode {
	if c.opts.deferredRelease {
		return releaseDeferred
	}
	return releaseSync
}

// releaseHandle drops one use of h. The last use evicts h from its
// cache, deletes the native name and releases its dependencies.
func (c *Context) releaseHandle(h *Handle, mode releaseMode) error {
	last, err := h.release()
	if err != nil || !last {
		return err
	}
	if h.evict != nil {
		h.evict()
	}
	c.destroy(h.id, h.typ, mode)

	deps := h.deps
	h.deps = nil
	var errs []error
	for _, d := range deps {
		if err := c.releaseHandle(d, mode); err != nil {
			errs = append(errs, err)
		}
	}
	h.trash.Release()
	return errors.Join(errs...)
}

// destroy deletes a native name according to mode. Nothing is deleted on
// a lost context.
func (c *Context) destroy(id uint32, typ ObjectType, mode releaseMode) {
	if c.lost.Load() {
		return
	}
	switch mode {
	case releaseLocked:
		c.deleteLocked(id, typ)
	case releaseSync:
		c.mu.Lock()
		if !c.lost.Load() {
			c.deleteLocked(id, typ)
		}
		c.mu.Unlock()
	default:
		if !c.trash.Enqueue(id, typ) {
			Logger().Warn("glcache: deferred deletion dropped", "type", typ, "id", id)
		}
	}
}

// releaseDescriptorSet drops one use of s. At zero the set is evicted
// and its buffers, images and samplers are released.
func (c *Context) releaseDescriptorSet(s *DescriptorSet, mode releaseMode) error {
	last, err := releaseCount(&s.uses)
	if err != nil || !last {
		return err
	}
	if s.evict != nil {
		s.evict()
	}
	c.forgetSlot(mode, func() {
		if c.shadow.set == s {
			c.shadow.set = nil
		}
	})

	var errs []error
	for _, b := range s.uniform {
		errs = append(errs, c.releaseHandle(b.buffer, mode))
	}
	for _, b := range s.storage {
		errs = append(errs, c.releaseHandle(b.buffer, mode))
	}
	for _, b := range s.samplers {
		errs = append(errs, c.releaseHandle(b.image, mode), c.releaseHandle(b.sampler, mode))
	}
	return errors.Join(errs...)
}

// releaseGlobalSettings drops one use of s. At zero it is evicted.
func (c *Context) releaseGlobalSettings(s *GlobalSettings, mode releaseMode) error {
	last, err := releaseCount(&s.uses)
	if err != nil || !last {
		return err
	}
	if s.evict != nil {
		s.evict()
	}
	c.forgetSlot(mode, func() {
		if c.shadow.settings == s {
			c.shadow.settings = nil
		}
	})
	return nil
}

// forgetSlot clears a pointer slot of the shadow when the mode allows
// touching it. Deferred releases leave the slot alone; a dead set or
// settings block can never be bound again, so the stale pointer only
// costs one redundant bind.
func (c *Context) forgetSlot(mode releaseMode, clear func()) {
	switch mode {
	case releaseLocked:
		clear()
	case releaseSync:
		c.mu.Lock()
		clear()
		c.mu.Unlock()
	}
}

// refs is the set of cached objects a consumer object (Buffer, Image,
// ImageFace, Pipeline, Compute) holds. It is allocated separately from
// its owner so a cleanup attached to the owner can release it.
type refs struct {
	c        *Context
	done     atomic.Bool
	handles  []*Handle
	set      *DescriptorSet
	settings *GlobalSettings
}

// release gives every reference back exactly once.
func (r *refs) release(mode releaseMode) error {
	if !r.done.CompareAndSwap(false, true) {
		return ErrHandleReleased
	}
	var errs []error
	for _, h := range r.handles {
		if h != nil {
			errs = append(errs, r.c.releaseHandle(h, mode))
		}
	}
	if r.set != nil {
		errs = append(errs, r.c.releaseDescriptorSet(r.set, mode))
	}
	if r.settings != nil {
		errs = append(errs, r.c.releaseGlobalSettings(r.settings, mode))
	}
	return errors.Join(errs...)
}

func (r *refs) released() bool { return r.done.Load() }

// releaseDropped runs when a consumer object becomes unreachable without
// Release. It never takes the context lock.
func releaseDropped(r *refs) {
	err := r.release(releaseDeferred)
	switch {
	case err == nil:
		Logger().Debug("glcache: dropped object released", "handles", len(r.handles))
	case !errors.Is(err, ErrHandleReleased):
		Logger().Warn("glcache: release of dropped object failed", "err", err)
	}
}

// track attaches the deferred-release fallback to owner.
func track[T any](owner *T, r *refs) runtime.Cleanup {
	return runtime.AddCleanup(owner, releaseDropped, r)
}
