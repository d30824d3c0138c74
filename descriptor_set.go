package glcache

import (
	"runtime"
	"sync/atomic"
)

// Descriptor set bounds.
const (
	MaxUniformBufferBindings = 8
	MaxStorageBufferBindings = 8
	MaxSamplerBindings       = 16
)

// BufferBinding binds a range of a buffer to a uniform or storage
// binding point. A zero Size binds the rest of the buffer.
type BufferBinding struct {
	Binding int
	Buffer  *Buffer
	Offset  int
	Size    int
}

// SamplerBinding binds an image and a sampler to a texture unit.
type SamplerBinding struct {
	Binding int
	Image   *Image
	Sampler SamplerDescriptor
}

// DescriptorSetDescriptor lists the resources bound together for a draw
// or dispatch.
type DescriptorSetDescriptor struct {
	UniformBuffers []BufferBinding
	StorageBuffers []BufferBinding
	Samplers       []SamplerBinding
}

type bufferBindingKey struct {
	buffer       *Handle
	offset, size int
}

type samplerBindingKey struct {
	image   *Handle
	sampler SamplerDescriptor
}

// descriptorSetKey is indexed by binding point; unused points are zero.
type descriptorSetKey struct {
	uniform  [MaxUniformBufferBindings]bufferBindingKey
	storage  [MaxStorageBufferBindings]bufferBindingKey
	samplers [MaxSamplerBindings]samplerBindingKey
}

type boundBuffer struct {
	index        int
	buffer       *Handle
	offset, size int
}

type boundSampler struct {
	index   int
	image   *Handle
	sampler *Handle
}

// DescriptorSet is a cached group of buffer ranges, textures and
// samplers. It holds one use of every object it binds.
type DescriptorSet struct {
	ctx   *Context
	uses  atomic.Int32
	evict func() bool

	uniform  []boundBuffer
	storage  []boundBuffer
	samplers []boundSampler
}

// Uses returns the current use count.
func (s *DescriptorSet) Uses() int { return int(s.uses.Load()) }

// Len returns the number of bindings.
func (s *DescriptorSet) Len() int { return len(s.uniform) + len(s.storage) + len(s.samplers) }

func (s *DescriptorSet) tryAcquire() bool        { return acquireCount(&s.uses) }
func (s *DescriptorSet) setEvict(f func() bool) { s.evict = f }

// DescriptorSet returns the cached set for desc, creating it on a miss.
// Creation makes no driver calls other than for new samplers. Give the
// set back with ReleaseDescriptorSet.
func (c *Context) DescriptorSet(desc DescriptorSetDescriptor) (*DescriptorSet, error) {
	key, err := c.descriptorSetKey(desc)
	if err != nil {
		return nil, err
	}
	s, err := getOrCreate(c, c.descriptorSets, key, createOps[*DescriptorSet]{
		kind:     "descriptor_set",
		build:    func() (*DescriptorSet, error) { return c.buildDescriptorSet(&key) },
		discard:  c.discardDescriptorSet,
		unlocked: true,
	})
	runtime.KeepAlive(desc)
	return s, err
}

// ReleaseDescriptorSet gives back one use of a descriptor set.
func (c *Context) ReleaseDescriptorSet(s *DescriptorSet) error {
	if s == nil {
		return invalidf("nil descriptor set")
	}
	if s.ctx != c {
		return ErrForeignObject
	}
	return c.releaseDescriptorSet(s, c.syncMode())
}

func (c *Context) descriptorSetKey(desc DescriptorSetDescriptor) (descriptorSetKey, error) {
	var key descriptorSetKey
	if err := c.bufferBindingKeys(key.uniform[:], desc.UniformBuffers, "uniform"); err != nil {
		return key, err
	}
	if len(desc.StorageBuffers) > 0 && !c.info.Features.Compute {
		return key, ErrUnsupported
	}
	if err := c.bufferBindingKeys(key.storage[:], desc.StorageBuffers, "storage"); err != nil {
		return key, err
	}

	units := min(MaxSamplerBindings, c.info.Limits.MaxTextureUnits)
	if len(desc.Samplers) > 0 && !c.info.Features.Samplers {
		return key, ErrUnsupported
	}
	for _, b := range desc.Samplers {
		switch {
		case b.Binding < 0 || b.Binding >= units:
			return key, invalidf("sampler binding %d outside [0, %d)", b.Binding, units)
		case key.samplers[b.Binding].image != nil:
			return key, invalidf("sampler binding %d used twice", b.Binding)
		}
		if err := c.checkImage(b.Image); err != nil {
			return key, err
		}
		if b.Image.Renderbuffer() {
			return key, invalidf("sampler binding %d names a renderbuffer", b.Binding)
		}
		sd := b.Sampler.normalize()
		if _, err := sd.params(); err != nil {
			return key, err
		}
		key.samplers[b.Binding] = samplerBindingKey{image: b.Image.h, sampler: sd}
	}
	return key, nil
}

func (c *Context) bufferBindingKeys(dst []bufferBindingKey, bindings []BufferBinding, class string) error {
	for _, b := range bindings {
		switch {
		case b.Binding < 0 || b.Binding >= len(dst):
			return invalidf("%s buffer binding %d outside [0, %d)", class, b.Binding, len(dst))
		case dst[b.Binding].buffer != nil:
			return invalidf("%s buffer binding %d used twice", class, b.Binding)
		case b.Offset < 0 || b.Size < 0:
			return invalidf("%s buffer binding %d has negative range", class, b.Binding)
		}
		if err := c.checkBuffer(b.Buffer); err != nil {
			return err
		}
		size := b.Size
		if size == 0 {
			size = b.Buffer.size - b.Offset
		}
		if size <= 0 || b.Offset+size > b.Buffer.size {
			return invalidf("%s buffer binding %d range [%d, %d) outside %d bytes",
				class, b.Binding, b.Offset, b.Offset+size, b.Buffer.size)
		}
		dst[b.Binding] = bufferBindingKey{buffer: b.Buffer.h, offset: b.Offset, size: size}
	}
	return nil
}

// buildDescriptorSet acquires every bound object. It runs without the
// context lock; samplers are obtained through the sampler cache.
func (c *Context) buildDescriptorSet(key *descriptorSetKey) (*DescriptorSet, error) {
	s := &DescriptorSet{ctx: c}
	s.uses.Store(1)

	fail := func(err error) (*DescriptorSet, error) {
		s.uses.Store(0)
		c.releaseSetContents(s, c.syncMode())
		return nil, err
	}
	for i, k := range key.uniform {
		if k.buffer == nil {
			continue
		}
		if !k.buffer.tryAcquire() {
			return fail(ErrHandleReleased)
		}
		s.uniform = append(s.uniform, boundBuffer{index: i, buffer: k.buffer, offset: k.offset, size: k.size})
	}
	for i, k := range key.storage {
		if k.buffer == nil {
			continue
		}
		if !k.buffer.tryAcquire() {
			return fail(ErrHandleReleased)
		}
		s.storage = append(s.storage, boundBuffer{index: i, buffer: k.buffer, offset: k.offset, size: k.size})
	}
	for i, k := range key.samplers {
		if k.image == nil {
			continue
		}
		if !k.image.tryAcquire() {
			return fail(ErrHandleReleased)
		}
		sampler, err := c.Sampler(k.sampler)
		if err != nil {
			_ = c.releaseHandle(k.image, c.syncMode())
			return fail(err)
		}
		s.samplers = append(s.samplers, boundSampler{index: i, image: k.image, sampler: sampler})
	}
	return s, nil
}

func (c *Context) releaseSetContents(s *DescriptorSet, mode releaseMode) {
	for _, b := range s.uniform {
		_ = c.releaseHandle(b.buffer, mode)
	}
	for _, b := range s.storage {
		_ = c.releaseHandle(b.buffer, mode)
	}
	for _, b := range s.samplers {
		_ = c.releaseHandle(b.image, mode)
		_ = c.releaseHandle(b.sampler, mode)
	}
	s.uniform, s.storage, s.samplers = nil, nil, nil
}

func (c *Context) discardDescriptorSet(s *DescriptorSet, locked bool) {
	s.uses.Store(0)
	mode := c.syncMode()
	if locked {
		mode = releaseLocked
	}
	c.releaseSetContents(s, mode)
}
