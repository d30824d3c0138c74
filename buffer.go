package glcache

import (
	"runtime"

	"github.com/gogpu/glcache/glenum"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// BufferDescriptor describes a buffer object.
type BufferDescriptor struct {
	// Size in bytes. Must be positive.
	Size int
	// Access is the expected update frequency.
	Access glenum.Access
	// Index, Uniform and Storage select the initial bind target. The
	// buffer can still be bound to any target later.
	Index   bool
	Uniform bool
	Storage bool
}

// Buffer is a buffer object. It is released by Release or, if dropped,
// at the next frame boundary after it becomes unreachable.
type Buffer struct {
	ctx    *Context
	h      *Handle
	size   int
	target uint32
	usage  uint32

	refs    *refs
	cleanup runtime.Cleanup
}

// NewBuffer allocates an uninitialized buffer of desc.Size bytes.
func (c *Context) NewBuffer(desc BufferDescriptor) (*Buffer, error) {
	if desc.Size <= 0 {
		return nil, invalidf("buffer size %d", desc.Size)
	}
	usage, ok := desc.Access.Usage(desc.Uniform)
	if !ok {
		return nil, invalidf("buffer access %s", desc.Access)
	}
	if desc.Storage && !c.info.Features.Compute {
		return nil, ErrUnsupported
	}
	target := uint32(gl.ARRAY_BUFFER)
	switch {
	case desc.Storage:
		target = gl.SHADER_STORAGE_BUFFER
	case desc.Uniform:
		target = gl.UNIFORM_BUFFER
	case desc.Index:
		target = gl.ELEMENT_ARRAY_BUFFER
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return nil, err
	}
	id := c.drv.GenBuffer()
	if id == 0 {
		return nil, ErrCreateFailed
	}
	if target == gl.ELEMENT_ARRAY_BUFFER {
		// The element binding belongs to the bound vertex array.
		c.bindVertexArrayLocked(0)
	}
	c.drv.BindBuffer(target, id)
	c.drv.BufferData(target, desc.Size, usage)

	h := newHandle(c.trash, id, ObjectBuffer)
	h.target = target
	b := &Buffer{
		ctx:    c,
		h:      h,
		size:   desc.Size,
		target: target,
		usage:  usage,
		refs:   &refs{c: c, handles: []*Handle{h}},
	}
	b.cleanup = track(b, b.refs)
	Logger().Debug("glcache: buffer created", "id", id, "size", desc.Size, "access", desc.Access)
	return b, nil
}

// Object returns the buffer object.
func (b *Buffer) Object() Object { return objectOf(b.h) }

// Size returns the size in bytes.
func (b *Buffer) Size() int { return b.size }

// Released reports whether Release was called.
func (b *Buffer) Released() bool { return b.refs.released() }

// Release gives the buffer back. The native object is deleted once no
// vertex array or descriptor set uses it.
func (b *Buffer) Release() error {
	b.cleanup.Stop()
	return b.refs.release(b.ctx.syncMode())
}

func (b *Buffer) checkRange(offset, size int) error {
	if offset < 0 || size < 0 || offset+size > b.size {
		return invalidf("range [%d, %d) outside %d bytes", offset, offset+size, b.size)
	}
	return nil
}

// Write uploads data at offset. It goes through the copy-write binding
// point, so no vertex array or descriptor set binding is disturbed.
func (b *Buffer) Write(data []byte, offset int) error {
	if err := b.checkRange(offset, len(data)); err != nil {
		return err
	}
	if b.refs.released() {
		return ErrHandleReleased
	}
	if len(data) == 0 {
		return nil
	}
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.drv.BindBuffer(gl.COPY_WRITE_BUFFER, b.h.id)
	c.drv.BufferSubData(gl.COPY_WRITE_BUFFER, offset, data)
	c.drv.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	runtime.KeepAlive(b)
	return nil
}

// Read fills data with the bytes stored at offset.
func (b *Buffer) Read(data []byte, offset int) error {
	if err := b.checkRange(offset, len(data)); err != nil {
		return err
	}
	if b.refs.released() {
		return ErrHandleReleased
	}
	if len(data) == 0 {
		return nil
	}
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.drv.BindBuffer(gl.COPY_READ_BUFFER, b.h.id)
	c.drv.GetBufferSubData(gl.COPY_READ_BUFFER, offset, data)
	c.drv.BindBuffer(gl.COPY_READ_BUFFER, 0)
	runtime.KeepAlive(b)
	return nil
}

// CopyFrom copies size bytes of src starting at srcOffset to dstOffset
// without a round trip through client memory.
func (b *Buffer) CopyFrom(src *Buffer, srcOffset, dstOffset, size int) error {
	c := b.ctx
	if err := c.checkBuffer(src); err != nil {
		return err
	}
	if b.refs.released() {
		return ErrHandleReleased
	}
	if err := src.checkRange(srcOffset, size); err != nil {
		return err
	}
	if err := b.checkRange(dstOffset, size); err != nil {
		return err
	}
	if src == b && srcOffset < dstOffset+size && dstOffset < srcOffset+size {
		return invalidf("overlapping copy within one buffer")
	}
	if size == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.drv.BindBuffer(gl.COPY_READ_BUFFER, src.h.id)
	c.drv.BindBuffer(gl.COPY_WRITE_BUFFER, b.h.id)
	c.drv.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, srcOffset, dstOffset, size)
	c.drv.BindBuffer(gl.COPY_READ_BUFFER, 0)
	c.drv.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	runtime.KeepAlive(src)
	runtime.KeepAlive(b)
	return nil
}

// Bind binds the whole of a storage buffer to a storage binding point,
// outside any descriptor set. The next descriptor set bind restores the
// set's own bindings.
func (b *Buffer) Bind(unit int) error {
	if b.target != gl.SHADER_STORAGE_BUFFER {
		return invalidf("only storage buffers can be bound to a unit")
	}
	if unit < 0 || unit >= MaxStorageBufferBindings {
		return invalidf("storage binding %d outside [0, %d)", unit, MaxStorageBufferBindings)
	}
	if b.refs.released() {
		return ErrHandleReleased
	}
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.shadow.set = nil
	c.drv.BindBufferRange(gl.SHADER_STORAGE_BUFFER, uint32(unit), b.h.id, 0, b.size)
	runtime.KeepAlive(b)
	return nil
}

func (c *Context) checkBuffer(b *Buffer) error {
	switch {
	case b == nil:
		return invalidf("nil buffer")
	case b.ctx != c:
		return ErrForeignObject
	case b.refs.released():
		return ErrHandleReleased
	}
	return nil
}

// acquireAll adds a use to every handle, or to none.
func (c *Context) acquireAll(hs []*Handle, mode releaseMode) error {
	for i, h := range hs {
		if h.tryAcquire() {
			continue
		}
		for _, done := range hs[:i] {
			_ = c.releaseHandle(done, mode)
		}
		return ErrHandleReleased
	}
	return nil
}
