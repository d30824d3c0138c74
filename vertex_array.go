package glcache

import (
	"runtime"

	"github.com/gogpu/glcache/glenum"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// MaxVertexBindings bounds the bindings of one vertex array regardless of
// the driver limit.
const MaxVertexBindings = 32

// VertexBinding feeds one attribute location from a buffer.
type VertexBinding struct {
	Buffer   *Buffer
	Location int
	Offset   int
	Stride   int
	// Divisor is 0 for per-vertex data and n to advance once every n
	// instances.
	Divisor int
	Format  gputypes.VertexFormat
}

// VertexArrayDescriptor describes a vertex array object.
type VertexArrayDescriptor struct {
	Bindings []VertexBinding
	// Index is the optional element buffer.
	Index *Buffer
}

type vertexBindingKey struct {
	buffer   *Handle
	location int32
	offset   int32
	stride   int32
	divisor  int32
	format   gputypes.VertexFormat
}

type vertexArrayKey struct {
	bindings [MaxVertexBindings]vertexBindingKey
	count    uint8
	index    *Handle
}

// VertexArray returns the cached vertex array for desc, creating it on a
// miss. The handle carries one use; give it back with ReleaseVertexArray.
func (c *Context) VertexArray(desc VertexArrayDescriptor) (*Handle, error) {
	key, err := c.vertexArrayKey(desc)
	if err != nil {
		return nil, err
	}
	h, err := getOrCreate(c, c.vertexArrays, key, createOps[*Handle]{
		kind:    "vertex_array",
		build:   func() (*Handle, error) { return c.buildVertexArrayLocked(&key) },
		discard: c.discardHandle,
	})
	runtime.KeepAlive(desc)
	return h, err
}

// ReleaseVertexArray gives back one use of a vertex array.
func (c *Context) ReleaseVertexArray(h *Handle) error {
	if err := c.checkHandle(h, ObjectVertexArray); err != nil {
		return err
	}
	return c.releaseHandle(h, c.syncMode())
}

func (c *Context) vertexArrayKey(desc VertexArrayDescriptor) (vertexArrayKey, error) {
	var key vertexArrayKey
	maxBindings := min(MaxVertexBindings, c.info.Limits.MaxVertexAttribs)
	if len(desc.Bindings) > maxBindings {
		return key, invalidf("%d vertex bindings, max %d", len(desc.Bindings), maxBindings)
	}
	var used [MaxVertexBindings]bool
	for i, b := range desc.Bindings {
		if err := c.checkBuffer(b.Buffer); err != nil {
			return key, err
		}
		switch {
		case b.Location < 0 || b.Location >= maxBindings:
			return key, invalidf("vertex location %d outside [0, %d)", b.Location, maxBindings)
		case used[b.Location]:
			return key, invalidf("vertex location %d bound twice", b.Location)
		case b.Offset < 0 || b.Stride < 0 || b.Divisor < 0:
			return key, invalidf("vertex binding %d has negative offset, stride or divisor", i)
		}
		if _, ok := glenum.VertexFormat(b.Format); !ok {
			return key, invalidf("vertex format %d at location %d", b.Format, b.Location)
		}
		used[b.Location] = true
		key.bindings[i] = vertexBindingKey{
			buffer:   b.Buffer.h,
			location: int32(b.Location),
			offset:   int32(b.Offset),
			stride:   int32(b.Stride),
			divisor:  int32(b.Divisor),
			format:   b.Format,
		}
	}
	key.count = uint8(len(desc.Bindings))
	if desc.Index != nil {
		if err := c.checkBuffer(desc.Index); err != nil {
			return key, err
		}
		key.index = desc.Index.h
	}
	return key, nil
}

func (c *Context) buildVertexArrayLocked(key *vertexArrayKey) (*Handle, error) {
	deps := make([]*Handle, 0, key.count+1)
	for _, b := range key.bindings[:key.count] {
		deps = append(deps, b.buffer)
	}
	if key.index != nil {
		deps = append(deps, key.index)
	}
	if err := c.acquireAll(deps, releaseLocked); err != nil {
		return nil, err
	}
	fail := func(err error) (*Handle, error) {
		for _, d := range deps {
			_ = c.releaseHandle(d, releaseLocked)
		}
		return nil, err
	}

	id := c.drv.GenVertexArray()
	if id == 0 {
		return fail(ErrCreateFailed)
	}
	saved := c.shadow.vertexArray
	c.bindVertexArrayLocked(id)

	for _, b := range key.bindings[:key.count] {
		vf, _ := glenum.VertexFormat(b.format)
		loc := uint32(b.location)
		c.drv.BindBuffer(gl.ARRAY_BUFFER, b.buffer.id)
		if vf.Integer {
			c.drv.VertexAttribIPointer(loc, vf.Size, vf.Type, b.stride, uintptr(b.offset))
		} else {
			c.drv.VertexAttribPointer(loc, vf.Size, vf.Type, vf.Normalized, b.stride, uintptr(b.offset))
		}
		c.drv.VertexAttribDivisor(loc, uint32(b.divisor))
		c.drv.EnableVertexAttribArray(loc)
	}
	if key.index != nil {
		c.drv.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, key.index.id)
	}
	c.restoreVertexArrayLocked(saved)

	h := newHandle(c.trash, id, ObjectVertexArray)
	h.deps = deps
	return h, nil
}
