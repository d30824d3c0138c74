package glcache

import (
	"maps"

	"github.com/gogpu/naga/glsl"
)

// Option configures a Context during creation.
//
// Example:
//
//	ctx, err := glcache.NewContext(drv,
//	    glcache.WithDeferredRelease(true),
//	    glcache.WithIncludes(map[string]string{"common": commonGLSL}),
//	)
type Option func(*options)

type options struct {
	defaultFramebuffer uint32
	deferredRelease    bool
	trashCapacity      int
	glslVersion        glsl.Version
	includes           map[string]string
	vertexEntry        string
	fragmentEntry      string
	computeEntry       string
}

// DefaultTrashCapacity is the initial capacity of the trash queue.
const DefaultTrashCapacity = 64

func defaultOptions() options {
	return options{
		trashCapacity: DefaultTrashCapacity,
	}
}

// WithDefaultFramebuffer sets the framebuffer name used for "the screen":
// pipelines without attachments and NewFrame clears draw into it.
// Windowing layers that render into an offscreen swapchain pass its name.
func WithDefaultFramebuffer(id uint32) Option {
	return func(o *options) {
		o.defaultFramebuffer = id
	}
}

// WithDeferredRelease makes every Release queue the native deletion for
// the next frame boundary instead of taking the context lock.
// Use it when Release is called from goroutines that must never block
// on rendering.
func WithDeferredRelease(deferred bool) Option {
	return func(o *options) {
		o.deferredRelease = deferred
	}
}

// WithTrashCapacity sets the initial capacity of the trash queue.
// The queue grows by doubling, so this only avoids early reallocations.
func WithTrashCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.trashCapacity = n
		}
	}
}

// WithGLSLVersion sets the GLSL version WGSL sources are translated to.
// By default it follows the driver: 3.00 es or 3.10 es on GLES, 4.30 on
// desktop drivers with compute support and 3.30 otherwise.
func WithGLSLVersion(v glsl.Version) Option {
	return func(o *options) {
		o.glslVersion = v
	}
}

// WithIncludes sets the snippets available to #include "name" in every
// program that does not pass its own includes.
func WithIncludes(includes map[string]string) Option {
	return func(o *options) {
		o.includes = maps.Clone(includes)
	}
}

// WithShaderEntryPoints sets the WGSL entry points used when a source does
// not name one. Empty names select the first entry point of the stage.
func WithShaderEntryPoints(vertex, fragment, compute string) Option {
	return func(o *options) {
		o.vertexEntry = vertex
		o.fragmentEntry = fragment
		o.computeEntry = compute
	}
}
