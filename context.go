package glcache

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/glcache/cache"
	"github.com/gogpu/glcache/shader"
	"github.com/gogpu/naga/glsl"
)

// Context owns the caches, the state shadow and the trash queue of one
// driver context. All driver calls made through a Context are serialized
// by its mutex; cache hits only touch atomics and shard read locks.
//
// A Context is safe for concurrent use by multiple goroutines.
type Context struct {
	drv  backend.Driver
	info backend.Info
	opts options

	mu        sync.Mutex
	lost      atomic.Bool
	closeOnce sync.Once
	shadow    shadowState

	trash   *TrashQueue
	deleted atomic.Int64

	translator *shader.Translator

	framebuffers   *cache.Map[framebufferKey, *Handle]
	vertexArrays   *cache.Map[vertexArrayKey, *Handle]
	samplers       *cache.Map[SamplerDescriptor, *Handle]
	shaders        *cache.Map[shaderKey, *Handle]
	programs       *cache.Map[programKey, *Handle]
	descriptorSets *cache.Map[descriptorSetKey, *DescriptorSet]
	settings       *cache.Map[GlobalSettingsDescriptor, *GlobalSettings]
}

// NewContext wraps a driver whose context is current on the calling
// goroutine's thread, or which serializes calls itself.
func NewContext(drv backend.Driver, opts ...Option) (*Context, error) {
	if drv == nil {
		return nil, errors.New("glcache: nil driver")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	info := drv.Info()
	if info.Limits == (backend.Limits{}) {
		info.Limits = backend.DefaultLimits()
	}
	if o.glslVersion == (glsl.Version{}) {
		o.glslVersion = defaultGLSLVersion(info)
	}

	c := &Context{
		drv:        drv,
		info:       info,
		opts:       o,
		trash:      NewTrashQueue(o.trashCapacity),
		translator: shader.NewTranslator(o.glslVersion, 0, Logger),

		framebuffers:   cache.New[framebufferKey, *Handle](cache.ComparableHasher[framebufferKey]()),
		vertexArrays:   cache.New[vertexArrayKey, *Handle](cache.ComparableHasher[vertexArrayKey]()),
		samplers:       cache.New[SamplerDescriptor, *Handle](cache.ComparableHasher[SamplerDescriptor]()),
		shaders:        cache.New[shaderKey, *Handle](hashShaderKey),
		programs:       cache.New[programKey, *Handle](hashProgramKey),
		descriptorSets: cache.New[descriptorSetKey, *DescriptorSet](cache.ComparableHasher[descriptorSetKey]()),
		settings:       cache.New[GlobalSettingsDescriptor, *GlobalSettings](cache.ComparableHasher[GlobalSettingsDescriptor]()),
	}
	c.shadow.reset()

	Logger().Info("glcache: context created",
		"vendor", info.Vendor,
		"renderer", info.Renderer,
		"version", info.Version,
		"glsl", o.glslVersion.String(),
	)
	return c, nil
}

func defaultGLSLVersion(info backend.Info) glsl.Version {
	switch {
	case info.GLES && info.Features.Compute:
		return glsl.VersionES310
	case info.GLES:
		return glsl.VersionES300
	case info.Features.Compute:
		return glsl.Version430
	default:
		return glsl.Version330
	}
}

// Info returns the driver capabilities.
func (c *Context) Info() backend.Info { return c.info }

// Driver returns the wrapped driver. Calls made directly on it bypass the
// state shadow; call NewFrame with reset afterwards.
func (c *Context) Driver() backend.Driver { return c.drv }

// TrashQueue returns the context's trash queue.
func (c *Context) TrashQueue() *TrashQueue { return c.trash }

// MarkLost flags the driver context as gone. Every later operation that
// would call the driver returns ErrContextLost; releases still evict
// their cache entries but delete nothing.
func (c *Context) MarkLost() {
	if c.lost.CompareAndSwap(false, true) {
		Logger().Warn("glcache: context lost")
	}
}

// Lost reports whether MarkLost or Close was called.
func (c *Context) Lost() bool { return c.lost.Load() }

// Close flushes pending deletions, marks the context lost and drops the
// context's reference to the trash queue. Objects still alive can be
// released afterwards; they make no driver calls.
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		n := c.FlushTrash()
		c.lost.Store(true)
		c.trash.Release()
		Logger().Info("glcache: context closed", "flushed", n, "deleted", c.deleted.Load())
	})
}

// deleteLocked deletes a native name and forgets any shadowed binding of
// it. Caller must hold c.mu.
func (c *Context) deleteLocked(id uint32, typ ObjectType) {
	switch typ {
	case ObjectBuffer:
		c.drv.DeleteBuffer(id)
	case ObjectTexture:
		c.drv.DeleteTexture(id)
	case ObjectRenderbuffer:
		c.drv.DeleteRenderbuffer(id)
	case ObjectFramebuffer:
		c.drv.DeleteFramebuffer(id)
		c.shadow.forgetFramebuffer(id)
	case ObjectVertexArray:
		c.drv.DeleteVertexArray(id)
		c.shadow.forget(&c.shadow.vertexArray, id)
	case ObjectProgram:
		c.drv.DeleteProgram(id)
		c.shadow.forget(&c.shadow.program, id)
	case ObjectShader:
		c.drv.DeleteShader(id)
	case ObjectSampler:
		c.drv.DeleteSampler(id)
	case ObjectQuery:
		c.drv.DeleteQuery(id)
	default:
		Logger().Warn("glcache: delete of unknown object type", "type", typ, "id", id)
		return
	}
	c.deleted.Add(1)
}

// checkLive returns ErrContextLost once the context is lost.
func (c *Context) checkLive() error {
	if c.lost.Load() {
		return ErrContextLost
	}
	return nil
}

// owns reports whether h was created by c.
func (c *Context) owns(h *Handle) bool {
	return h != nil && h.trash == c.trash
}
