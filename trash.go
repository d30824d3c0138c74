package glcache

import (
	"slices"
	"sync"
	"sync/atomic"
)

// TrashItem is a native name waiting for deletion.
type TrashItem struct {
	ID   uint32
	Type ObjectType
}

// TrashQueue collects native names released away from the context lock.
// Enqueue never touches the context lock; the names are deleted by
// (*Context).FlushTrash at the next frame boundary.
//
// The queue has its own reference count: the Context holds one and every
// live Handle holds one, so handles released after Close still find a
// valid queue. When the last reference goes the queue closes, pending
// items are dropped and further enqueues are only counted.
type TrashQueue struct {
	mu      sync.Mutex
	items   []TrashItem
	initCap int
	closed  bool

	refs    atomic.Int32
	dropped atomic.Int64
}

// NewTrashQueue creates a queue with one reference.
func NewTrashQueue(capacity int) *TrashQueue {
	if capacity < 1 {
		capacity = DefaultTrashCapacity
	}
	q := &TrashQueue{
		items:   make([]TrashItem, 0, capacity),
		initCap: capacity,
	}
	q.refs.Store(1)
	return q
}

// Enqueue appends a name. It reports false if the queue is closed.
func (q *TrashQueue) Enqueue(id uint32, typ ObjectType) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.dropped.Add(1)
		return false
	}
	if len(q.items) == cap(q.items) {
		grown := make([]TrashItem, len(q.items), 2*cap(q.items))
		copy(grown, q.items)
		q.items = grown
	}
	q.items = append(q.items, TrashItem{ID: id, Type: typ})
	return true
}

// Take removes and returns all pending items.
func (q *TrashQueue) Take() []TrashItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = make([]TrashItem, 0, max(q.initCap, cap(out)))
	return out
}

// Len returns the number of pending items.
func (q *TrashQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Retain adds a reference.
func (q *TrashQueue) Retain() {
	q.refs.Add(1)
}

// Release drops a reference. The last release closes the queue.
func (q *TrashQueue) Release() {
	if q.refs.Add(-1) != 0 {
		return
	}
	q.mu.Lock()
	q.dropped.Add(int64(len(q.items)))
	q.items = nil
	q.closed = true
	q.mu.Unlock()
}

// Refs returns the current reference count.
func (q *TrashQueue) Refs() int { return int(q.refs.Load()) }

// Closed reports whether the last reference was released.
func (q *TrashQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Dropped returns the number of items discarded because the queue was
// closed.
func (q *TrashQueue) Dropped() int64 { return q.dropped.Load() }

// FlushTrash deletes every queued name. Deletions are grouped by object
// type. On a lost Context the names are discarded without driver calls.
// It returns the number of names deleted.
func (c *Context) FlushTrash() int {
	items := c.trash.Take()
	if len(items) == 0 {
		return 0
	}
	if c.lost.Load() {
		Logger().Debug("glcache: trash discarded on lost context", "count", len(items))
		return 0
	}
	slices.SortStableFunc(items, func(a, b TrashItem) int {
		return int(a.Type) - int(b.Type)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lost.Load() {
		return 0
	}
	for _, it := range items {
		c.deleteLocked(it.ID, it.Type)
	}
	Logger().Debug("glcache: trash flushed", "count", len(items))
	return len(items)
}
