package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gogpu/glcache"
	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/glcache/shader"
	"github.com/gogpu/gputypes"
	"golang.org/x/sync/errgroup"
)

const (
	vertexSource = `#version 330 core
in vec3 in_vert;
uniform mat4 mvp;
void main() { gl_Position = mvp * vec4(in_vert, 1.0); }
`
	fragmentSource = `#version 330 core
uniform sampler2D tex;
layout(std140) uniform Common {
    vec4 tint;
};
out vec4 color;
void main() { color = texture(tex, vec2(0.0)) * tint; }
`
	computeSource = `#version 430
layout(local_size_x = 64) in;
layout(std430, binding = 0) buffer Data { float values[]; };
void main() {}
`
)

type config struct {
	workers    int
	iterations int
	deferred   bool
	compute    bool
}

// report summarizes one run.
type report struct {
	Iterations int64
	Frames     int64
	Elapsed    time.Duration
	Stats      glcache.Stats
	// Overlaps counts driver calls that started while another was in
	// flight, or -1 when the driver cannot tell.
	Overlaps int64
}

// overlapCounter is implemented by drivers that detect concurrent calls.
type overlapCounter interface {
	Overlaps() int64
}

// shared holds the objects every worker reads from.
type shared struct {
	vbo, ubo *glcache.Buffer
	src      *glcache.Image
}

func (s *shared) release() {
	for _, r := range []interface{ Release() error }{s.vbo, s.ubo, s.src} {
		_ = r.Release()
	}
}

// run drives cfg.workers goroutines that create, render and drop
// pipelines against one context while a frame loop keeps flushing.
func run(ctx context.Context, drv backend.Driver, cfg config) (report, error) {
	c, err := glcache.NewContext(drv, glcache.WithDeferredRelease(cfg.deferred))
	if err != nil {
		return report{}, err
	}
	defer c.Close()

	s, err := newShared(c)
	if err != nil {
		return report{}, err
	}

	var rep report
	start := time.Now()
	var iterations, frames atomic.Int64

	frameCtx, stopFrames := context.WithCancel(ctx)
	frameDone := make(chan error, 1)
	go func() { frameDone <- frameLoop(frameCtx, c, &frames) }()

	g, gctx := errgroup.WithContext(ctx)
	for w := range cfg.workers {
		g.Go(func() error {
			for i := range cfg.iterations {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := iterate(c, s, w, i, cfg.compute); err != nil {
					return fmt.Errorf("worker %d iteration %d: %w", w, i, err)
				}
				iterations.Add(1)
			}
			return nil
		})
	}
	err = g.Wait()
	stopFrames()
	if ferr := <-frameDone; err == nil {
		err = ferr
	}

	s.release()
	c.FlushTrash()

	rep.Iterations = iterations.Load()
	rep.Frames = frames.Load()
	rep.Elapsed = time.Since(start)
	rep.Stats = c.Stats()
	rep.Overlaps = -1
	if oc, ok := drv.(overlapCounter); ok {
		rep.Overlaps = oc.Overlaps()
	}
	return rep, err
}

func newShared(c *glcache.Context) (*shared, error) {
	vbo, err := c.NewBuffer(glcache.BufferDescriptor{Size: 36})
	if err != nil {
		return nil, err
	}
	ubo, err := c.NewBuffer(glcache.BufferDescriptor{Size: 64, Uniform: true})
	if err != nil {
		_ = vbo.Release()
		return nil, err
	}
	src, err := c.NewImage(glcache.ImageDescriptor{Width: 8, Height: 8})
	if err != nil {
		_ = vbo.Release()
		_ = ubo.Release()
		return nil, err
	}
	return &shared{vbo: vbo, ubo: ubo, src: src}, nil
}

// frameLoop runs empty frames until ctx is done.
func frameLoop(ctx context.Context, c *glcache.Context, frames *atomic.Int64) error {
	for ctx.Err() == nil {
		if err := c.NewFrame(false, true); err != nil {
			return err
		}
		if err := c.EndFrame(true, true); err != nil {
			return err
		}
		frames.Add(1)
	}
	return nil
}

// iterate builds a render target and a pipeline into it, renders once and
// releases both. Target heights cycle through four sizes.
func iterate(c *glcache.Context, s *shared, worker, i int, compute bool) error {
	img, err := c.NewImage(glcache.ImageDescriptor{Width: 16, Height: 16 * (1 + (worker+i)%4)})
	if err != nil {
		return err
	}
	defer img.Release()

	face, err := img.Face(0, 0)
	if err != nil {
		return err
	}

	p, err := c.NewPipeline(glcache.PipelineDescriptor{
		Vertex:   shader.Source{Code: vertexSource},
		Fragment: shader.Source{Code: fragmentSource},
		Resources: glcache.DescriptorSetDescriptor{
			UniformBuffers: []glcache.BufferBinding{{Binding: 0, Buffer: s.ubo, Size: 16}},
			Samplers:       []glcache.SamplerBinding{{Binding: 1, Image: s.src, Sampler: glcache.DefaultSampler()}},
		},
		Uniforms: &glcache.UniformData{
			Layout: []glcache.UniformBinding{{Function: backend.UniformMat4, Count: 1}},
			Data:   make([]byte, 64),
		},
		Framebuffer:   []*glcache.ImageFace{face},
		VertexBuffers: []glcache.VertexBinding{{Buffer: s.vbo, Format: gputypes.VertexFormatFloat32x3, Stride: 12}},
		VertexCount:   3,
	})
	if err != nil {
		return err
	}
	defer p.Release()

	if err := p.Render(); err != nil {
		return err
	}
	if !compute {
		return nil
	}
	return dispatch(c)
}

func dispatch(c *glcache.Context) error {
	ssbo, err := c.NewBuffer(glcache.BufferDescriptor{Size: 256, Storage: true})
	if err != nil {
		return err
	}
	defer ssbo.Release()

	cp, err := c.NewCompute(glcache.ComputeDescriptor{
		Source:    shader.Source{Code: computeSource},
		Resources: glcache.DescriptorSetDescriptor{StorageBuffers: []glcache.BufferBinding{{Buffer: ssbo}}},
	})
	if err != nil {
		return err
	}
	defer cp.Release()
	return cp.Run(1, 1, 1)
}
