//go:build linux

package gles

import (
	"fmt"
	"sync"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/wgpu/hal/gles/egl"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

func init() {
	backend.Register(backend.BackendGLES, func() backend.Backend {
		return NewBackend()
	})
}

// Option configures the EGL context a Backend creates.
type Option func(*egl.ContextConfig)

// WithGLES requests an OpenGL ES context instead of desktop OpenGL.
func WithGLES(es bool) Option {
	return func(c *egl.ContextConfig) { c.GLES = es }
}

// WithVersion requests a specific context version.
func WithVersion(major, minor int) Option {
	return func(c *egl.ContextConfig) {
		c.GLVersionMajor = major
		c.GLVersionMinor = minor
	}
}

// WithDebug requests a debug context.
func WithDebug(debug bool) Option {
	return func(c *egl.ContextConfig) { c.Debug = debug }
}

// Backend owns a headless EGL context, the OS thread it is current on,
// and the Driver bound to it.
type Backend struct {
	mu     sync.Mutex
	config egl.ContextConfig
	th     *thread
	ctx    *egl.Context
	drv    *Driver
}

// NewBackend returns an uninitialized backend. The default context is
// desktop OpenGL 4.3 core, which has compute and indirect draws.
func NewBackend(opts ...Option) *Backend {
	config := egl.DefaultContextConfig()
	config.GLVersionMajor, config.GLVersionMinor = 4, 3
	config.Surfaceless = true
	for _, opt := range opts {
		opt(&config)
	}
	return &Backend{config: config}
}

// Name returns "gles".
func (b *Backend) Name() string { return backend.BackendGLES }

// Init creates the context on a dedicated locked thread and loads the
// GL entry points. Calling Init again is a no-op.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drv != nil {
		return nil
	}

	th := newThread()
	var (
		ctx *egl.Context
		drv *Driver
		err error
	)
	th.call(func() { ctx, drv, err = b.create() })
	if err != nil {
		th.stop()
		return fmt.Errorf("%w: %w", backend.ErrBackendNotAvailable, err)
	}
	drv.th = th

	b.th, b.ctx, b.drv = th, ctx, drv
	info := drv.info
	backend.Logger().Info("gles: context created",
		"version", info.Version,
		"renderer", info.Renderer,
		"compute", info.Features.Compute,
		"indirect", info.Features.DrawIndirect,
	)
	return nil
}

// create runs on the context thread.
func (b *Backend) create() (*egl.Context, *Driver, error) {
	if err := egl.Init(); err != nil {
		return nil, nil, fmt.Errorf("gles: init EGL: %w", err)
	}
	ctx, err := egl.NewContext(b.config)
	if err != nil {
		return nil, nil, fmt.Errorf("gles: create context: %w", err)
	}
	if err := ctx.MakeCurrent(); err != nil {
		ctx.Destroy()
		return nil, nil, fmt.Errorf("gles: make current: %w", err)
	}

	drv := &Driver{gl: &gl.Context{}, x: &procs{}}
	if err := drv.gl.Load(egl.GetGLProcAddress); err != nil {
		ctx.Destroy()
		return nil, nil, fmt.Errorf("gles: load GL: %w", err)
	}
	if err := drv.x.load(egl.GetGLProcAddress); err != nil {
		ctx.Destroy()
		return nil, nil, err
	}
	drv.info = drv.queryInfo()
	return ctx, drv, nil
}

// Close destroys the context and stops its thread. Driver calls made
// afterwards are dropped.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drv == nil {
		return
	}
	ctx := b.ctx
	b.th.call(func() {
		ctx.Destroy()
	})
	b.th.stop()
	b.th, b.ctx, b.drv = nil, nil, nil
	backend.Logger().Debug("gles: context destroyed")
}

// Driver returns the driver, or nil before Init.
func (b *Backend) Driver() backend.Driver {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drv == nil {
		return nil
	}
	return b.drv
}
