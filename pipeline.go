package glcache

import (
	"errors"
	"runtime"
	"sync"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/glcache/glenum"
	"github.com/gogpu/glcache/shader"
	"github.com/gogpu/gputypes"
)

// PipelineDescriptor describes everything one draw needs.
type PipelineDescriptor struct {
	// Template shares the program of an existing pipeline. It excludes
	// Vertex, Fragment, Layout and Includes.
	Template *Pipeline

	Vertex   shader.Source
	Fragment shader.Source
	Layout   []LayoutBinding
	Includes map[string]string

	Resources DescriptorSetDescriptor
	Uniforms  *UniformData

	Depth    DepthState
	Stencil  StencilState
	Blend    BlendState
	CullMode gputypes.CullMode

	// Framebuffer lists the color faces and at most one depth or stencil
	// face. Nil renders to the default framebuffer and requires Viewport.
	Framebuffer []*ImageFace

	VertexBuffers []VertexBinding
	IndexBuffer   *Buffer
	// IndexFormat defaults to 32-bit indices when IndexBuffer is set.
	IndexFormat gputypes.IndexFormat

	Topology      gputypes.PrimitiveTopology
	VertexCount   int
	InstanceCount int
	FirstVertex   int

	// Viewport defaults to the framebuffer size.
	Viewport *Viewport
}

type renderParams struct {
	vertexCount   int32
	instanceCount int32
	firstVertex   int32
	viewport      Viewport
}

// Pipeline is a program, framebuffer, vertex array, descriptor set and
// settings block bound together. Render is safe to call concurrently
// with the setters.
type Pipeline struct {
	ctx *Context

	program     *Handle
	framebuffer *Handle
	vertexArray *Handle
	set         *DescriptorSet
	settings    *GlobalSettings

	topology  uint32
	indexType uint32
	indexSize int
	width     int
	height    int

	mu       sync.Mutex
	params   renderParams
	uniforms *uniformUpload

	refs    *refs
	cleanup runtime.Cleanup
}

// NewPipeline creates a pipeline. Every cached object it needs is
// obtained through the context caches and released with the pipeline.
func (c *Context) NewPipeline(desc PipelineDescriptor) (*Pipeline, error) {
	p := &Pipeline{ctx: c}
	if err := c.checkPipeline(&desc, p); err != nil {
		return nil, err
	}
	uniforms, err := newUniformUpload(desc.Uniforms)
	if err != nil {
		return nil, err
	}
	p.uniforms = uniforms

	r := &refs{c: c}
	fail := func(err error) (*Pipeline, error) {
		_ = r.release(c.syncMode())
		return nil, err
	}

	if desc.Template != nil {
		if !desc.Template.program.tryAcquire() {
			return nil, ErrHandleReleased
		}
		p.program = desc.Template.program
	} else {
		p.program, err = c.Program(ProgramDescriptor{
			Vertex:   desc.Vertex,
			Fragment: desc.Fragment,
			Layout:   desc.Layout,
			Includes: desc.Includes,
		})
		if err != nil {
			return nil, err
		}
	}
	r.handles = append(r.handles, p.program)

	if len(desc.Framebuffer) > 0 {
		p.framebuffer, err = c.Framebuffer(framebufferOf(desc.Framebuffer))
		if err != nil {
			return fail(err)
		}
		r.handles = append(r.handles, p.framebuffer)
	}

	p.vertexArray, err = c.VertexArray(VertexArrayDescriptor{Bindings: desc.VertexBuffers, Index: desc.IndexBuffer})
	if err != nil {
		return fail(err)
	}
	r.handles = append(r.handles, p.vertexArray)

	if r.set, err = c.DescriptorSet(desc.Resources); err != nil {
		return fail(err)
	}
	p.set = r.set

	attachments := 0
	for _, f := range desc.Framebuffer {
		if f.image.info.Color {
			attachments++
		}
	}
	if r.settings, err = c.GlobalSettings(GlobalSettingsDescriptor{
		Attachments: attachments,
		CullMode:    desc.CullMode,
		Depth:       desc.Depth,
		Stencil:     desc.Stencil,
		Blend:       desc.Blend,
	}); err != nil {
		return fail(err)
	}
	p.settings = r.settings

	p.refs = r
	p.cleanup = track(p, r)
	runtime.KeepAlive(desc)
	Logger().Debug("glcache: pipeline created",
		"program", p.program.id, "vertexArray", p.vertexArray.id, "bindings", p.set.Len())
	return p, nil
}

// checkPipeline validates desc and fills the static draw parameters of p.
func (c *Context) checkPipeline(desc *PipelineDescriptor, p *Pipeline) error {
	if t := desc.Template; t != nil {
		switch {
		case t.ctx != c:
			return ErrForeignObject
		case t.refs.released():
			return ErrHandleReleased
		case desc.Vertex.Code != "" || desc.Fragment.Code != "" || len(desc.Layout) > 0 || desc.Includes != nil:
			return invalidf("a template pipeline excludes shader sources, layout and includes")
		}
	}

	topology, ok := glenum.Topology(desc.Topology)
	if !ok {
		return invalidf("topology %d", desc.Topology)
	}
	p.topology = topology

	if desc.IndexBuffer != nil {
		format := desc.IndexFormat
		if format == gputypes.IndexFormatUndefined {
			format = gputypes.IndexFormatUint32
		}
		if p.indexType, p.indexSize, ok = glenum.IndexFormat(format); !ok {
			return invalidf("index format %d", desc.IndexFormat)
		}
	}

	if desc.VertexCount < 0 || desc.InstanceCount < 0 || desc.FirstVertex < 0 {
		return invalidf("negative vertex count, instance count or first vertex")
	}
	p.params = renderParams{
		vertexCount:   int32(desc.VertexCount),
		instanceCount: int32(max(desc.InstanceCount, 1)),
		firstVertex:   int32(desc.FirstVertex),
	}

	depthFaces := 0
	for i, f := range desc.Framebuffer {
		switch {
		case f == nil:
			return invalidf("nil framebuffer face %d", i)
		case f.image.ctx != c:
			return ErrForeignObject
		case f.refs.released() || f.image.refs.released():
			return ErrHandleReleased
		}
		if !f.image.info.Color {
			depthFaces++
		}
		if i == 0 {
			p.width, p.height = f.width, f.height
		}
	}
	if depthFaces > 1 {
		return invalidf("%d depth or stencil faces", depthFaces)
	}

	switch {
	case desc.Viewport != nil:
		if desc.Viewport.Width < 0 || desc.Viewport.Height < 0 {
			return invalidf("negative viewport size")
		}
		p.params.viewport = *desc.Viewport
	case len(desc.Framebuffer) == 0:
		return invalidf("the default framebuffer requires a viewport")
	default:
		p.params.viewport = Viewport{Width: int32(p.width), Height: int32(p.height)}
	}
	return nil
}

func framebufferOf(faces []*ImageFace) FramebufferDescriptor {
	var desc FramebufferDescriptor
	for _, f := range faces {
		a := f.attachment()
		if f.image.info.Color {
			desc.Color = append(desc.Color, a)
		} else {
			desc.Depth = &a
		}
	}
	return desc
}

// Program returns the pipeline's program.
func (p *Pipeline) Program() Object { return objectOf(p.program) }

// Framebuffer returns the framebuffer, or the zero Object for the
// default framebuffer.
func (p *Pipeline) Framebuffer() Object { return objectOf(p.framebuffer) }

// VertexArray returns the vertex array.
func (p *Pipeline) VertexArray() Object { return objectOf(p.vertexArray) }

// Bindings returns the number of resources bound by the pipeline's
// descriptor set.
func (p *Pipeline) Bindings() int { return p.set.Len() }

// GlobalSettings returns the render state the pipeline binds.
func (p *Pipeline) GlobalSettings() GlobalSettingsDescriptor { return p.settings.desc }

// SetViewport replaces the viewport used by later renders.
func (p *Pipeline) SetViewport(v Viewport) error {
	if v.Width < 0 || v.Height < 0 {
		return invalidf("viewport size %dx%d", v.Width, v.Height)
	}
	p.mu.Lock()
	p.params.viewport = v
	p.mu.Unlock()
	return nil
}

// SetRenderParams replaces the vertex count, instance count and first
// vertex. An instance count of 0 means 1.
func (p *Pipeline) SetRenderParams(vertexCount, instanceCount, firstVertex int) error {
	if vertexCount < 0 || instanceCount < 0 || firstVertex < 0 {
		return invalidf("render params %d, %d, %d", vertexCount, instanceCount, firstVertex)
	}
	p.mu.Lock()
	p.params.vertexCount = int32(vertexCount)
	p.params.instanceCount = int32(max(instanceCount, 1))
	p.params.firstVertex = int32(firstVertex)
	p.mu.Unlock()
	return nil
}

// SetUniformData replaces the uniform bytes. The size must match the
// data the pipeline was created with.
func (p *Pipeline) SetUniformData(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, err := p.uniforms.withData(data)
	if err != nil {
		return err
	}
	p.uniforms = u
	return nil
}

// Render binds the pipeline and draws.
func (p *Pipeline) Render() error {
	params, uniforms, err := p.snapshot()
	if err != nil {
		return err
	}
	c := p.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	p.bindLocked(params.viewport, uniforms)

	if params.vertexCount == 0 {
		return nil
	}
	if p.indexType != 0 {
		offset := uintptr(int(params.firstVertex) * p.indexSize)
		c.drv.DrawElementsInstanced(p.topology, params.vertexCount, p.indexType, offset, params.instanceCount)
	} else {
		c.drv.DrawArraysInstanced(p.topology, params.firstVertex, params.vertexCount, params.instanceCount)
	}
	return nil
}

// Indirect command sizes in bytes.
const (
	drawArraysCommandSize   = 16
	drawElementsCommandSize = 20
)

// RenderIndirect issues count draws whose parameters are read from buf
// starting at offset. It requires driver support for indirect draws.
func (p *Pipeline) RenderIndirect(buf *Buffer, offset, count int) error {
	c := p.ctx
	indirect, ok := c.drv.(backend.IndirectDrawer)
	if !ok || !c.info.Features.DrawIndirect {
		Logger().Warn("glcache: indirect draw not supported by driver")
		return ErrUnsupported
	}
	if err := c.checkBuffer(buf); err != nil {
		return err
	}
	stride := drawArraysCommandSize
	if p.indexType != 0 {
		stride = drawElementsCommandSize
	}
	if offset < 0 || count < 0 || offset+count*stride > buf.size {
		return invalidf("%d indirect commands at offset %d exceed %d bytes", count, offset, buf.size)
	}
	params, uniforms, err := p.snapshot()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	p.bindLocked(params.viewport, uniforms)
	c.drv.BindBuffer(backend.DRAW_INDIRECT_BUFFER, buf.h.id)
	for i := range count {
		at := uintptr(offset + i*stride)
		if p.indexType != 0 {
			indirect.DrawElementsIndirect(p.topology, p.indexType, at)
		} else {
			indirect.DrawArraysIndirect(p.topology, at)
		}
	}
	runtime.KeepAlive(buf)
	return nil
}

func (p *Pipeline) snapshot() (renderParams, *uniformUpload, error) {
	if p.refs.released() {
		return renderParams{}, nil, ErrHandleReleased
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params, p.uniforms, nil
}

// bindLocked makes the pipeline current. Caller must hold c.mu.
func (p *Pipeline) bindLocked(v Viewport, uniforms *uniformUpload) {
	c := p.ctx
	c.bindViewportLocked(v)
	c.bindGlobalSettingsLocked(p.settings)
	if p.framebuffer != nil {
		c.bindDrawFramebufferLocked(p.framebuffer.id)
	} else {
		c.bindDrawFramebufferLocked(c.opts.defaultFramebuffer)
	}
	c.bindProgramLocked(p.program.id)
	c.bindVertexArrayLocked(p.vertexArray.id)
	c.bindDescriptorSetLocked(p.set)
	c.uploadLocked(uniforms)
}

// Release gives back every cached object the pipeline holds.
func (p *Pipeline) Release() error {
	p.cleanup.Stop()
	err := p.refs.release(p.ctx.syncMode())
	if err != nil && !errors.Is(err, ErrHandleReleased) {
		Logger().Warn("glcache: pipeline release", "err", err)
	}
	return err
}
