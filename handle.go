package glcache

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/glcache/backend"
)

// ObjectType tags the kind of native object a Handle names.
type ObjectType uint8

// Native object types.
const (
	ObjectBuffer ObjectType = iota + 1
	ObjectTexture
	ObjectRenderbuffer
	ObjectFramebuffer
	ObjectVertexArray
	ObjectProgram
	ObjectShader
	ObjectSampler
	ObjectQuery
)

var objectTypeNames = [...]string{
	ObjectBuffer:       "buffer",
	ObjectTexture:      "texture",
	ObjectRenderbuffer: "renderbuffer",
	ObjectFramebuffer:  "framebuffer",
	ObjectVertexArray:  "vertex_array",
	ObjectProgram:      "program",
	ObjectShader:       "shader",
	ObjectSampler:      "sampler",
	ObjectQuery:        "query",
}

// String returns the object type name.
func (t ObjectType) String() string {
	if t == 0 || int(t) >= len(objectTypeNames) {
		return fmt.Sprintf("ObjectType(%d)", t)
	}
	return objectTypeNames[t]
}

// Handle is a reference-counted native object name.
//
// A Handle returned by a get-or-create method carries one use for the
// caller; it must be given back with the matching Release method. Once
// the use count reaches zero the Handle is logically dead: it leaves its
// cache and its name is deleted, immediately or at the next frame
// boundary.
type Handle struct {
	id     uint32
	typ    ObjectType
	target uint32
	uses   atomic.Int32

	iface *backend.ProgramInterface
	deps  []*Handle
	evict func() bool
	trash *TrashQueue
}

// newHandle wraps a freshly created name with one use. The handle keeps
// the trash queue alive until it is destroyed.
func newHandle(q *TrashQueue, id uint32, typ ObjectType) *Handle {
	h := &Handle{id: id, typ: typ, trash: q}
	h.uses.Store(1)
	q.Retain()
	return h
}

// ID returns the native name.
func (h *Handle) ID() uint32 { return h.id }

// Type returns the object type.
func (h *Handle) Type() ObjectType { return h.typ }

// Uses returns the current use count.
func (h *Handle) Uses() int { return int(h.uses.Load()) }

// Interface returns the reflected program interface, or nil for
// non-program handles.
func (h *Handle) Interface() *backend.ProgramInterface { return h.iface }

// tryAcquire adds a use unless the handle is already dead.
func (h *Handle) tryAcquire() bool {
	return acquireCount(&h.uses)
}

// release drops a use and reports whether it was the last one.
func (h *Handle) release() (bool, error) {
	return releaseCount(&h.uses)
}

func (h *Handle) setEvict(f func() bool) { h.evict = f }

func (h *Handle) String() string {
	return fmt.Sprintf("%s(%d)", h.typ, h.id)
}

// Object is a read-only view of a handle held by a Buffer, Image,
// ImageFace, Pipeline or Compute. It carries no use of its own, so it
// cannot be released or bound; the owner gives the use back on Release.
// The zero Object names no handle.
type Object struct {
	h *Handle
}

func objectOf(h *Handle) Object { return Object{h: h} }

// Valid reports whether o names a handle.
func (o Object) Valid() bool { return o.h != nil }

// ID returns the native name, or 0.
func (o Object) ID() uint32 {
	if o.h == nil {
		return 0
	}
	return o.h.id
}

// Type returns the object type, or 0.
func (o Object) Type() ObjectType {
	if o.h == nil {
		return 0
	}
	return o.h.typ
}

// Uses returns the use count of the underlying handle.
func (o Object) Uses() int {
	if o.h == nil {
		return 0
	}
	return o.h.Uses()
}

// Interface returns the reflected program interface, or nil.
func (o Object) Interface() *backend.ProgramInterface {
	if o.h == nil {
		return nil
	}
	return o.h.iface
}

func (o Object) String() string {
	if o.h == nil {
		return "none"
	}
	return o.h.String()
}

func acquireCount(n *atomic.Int32) bool {
	for {
		cur := n.Load()
		if cur <= 0 {
			return false
		}
		if n.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

func releaseCount(n *atomic.Int32) (bool, error) {
	for {
		cur := n.Load()
		if cur <= 0 {
			return false, ErrHandleReleased
		}
		if n.CompareAndSwap(cur, cur-1) {
			return cur == 1, nil
		}
	}
}

// refCounted is implemented by every cached value.
type refCounted interface {
	comparable
	tryAcquire() bool
	setEvict(func() bool)
}
