package glcache

import (
	"runtime"
	"sync"

	"github.com/gogpu/glcache/shader"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// ComputeDescriptor describes a compute dispatch.
type ComputeDescriptor struct {
	Source    shader.Source
	Layout    []LayoutBinding
	Includes  map[string]string
	Resources DescriptorSetDescriptor
	Uniforms  *UniformData
}

// Compute is a compute program with its resources.
type Compute struct {
	ctx     *Context
	program *Handle
	set     *DescriptorSet

	mu       sync.Mutex
	uniforms *uniformUpload

	refs    *refs
	cleanup runtime.Cleanup
}

// NewCompute creates a compute object. It requires compute support.
func (c *Context) NewCompute(desc ComputeDescriptor) (*Compute, error) {
	if !c.info.Features.Compute {
		return nil, ErrUnsupported
	}
	uniforms, err := newUniformUpload(desc.Uniforms)
	if err != nil {
		return nil, err
	}
	program, err := c.ComputeProgram(ComputeProgramDescriptor{
		Source:   desc.Source,
		Layout:   desc.Layout,
		Includes: desc.Includes,
	})
	if err != nil {
		return nil, err
	}
	r := &refs{c: c, handles: []*Handle{program}}
	if r.set, err = c.DescriptorSet(desc.Resources); err != nil {
		_ = r.release(c.syncMode())
		return nil, err
	}

	cp := &Compute{
		ctx:      c,
		program:  program,
		set:      r.set,
		uniforms: uniforms,
		refs:     r,
	}
	cp.cleanup = track(cp, r)
	return cp, nil
}

// Program returns the compute program.
func (cp *Compute) Program() Object { return objectOf(cp.program) }

// Bindings returns the number of resources bound by the descriptor set.
func (cp *Compute) Bindings() int { return cp.set.Len() }

// SetUniformData replaces the uniform bytes.
func (cp *Compute) SetUniformData(data []byte) error {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	u, err := cp.uniforms.withData(data)
	if err != nil {
		return err
	}
	cp.uniforms = u
	return nil
}

// Run dispatches x*y*z work groups and waits for their writes to become
// visible to later commands.
func (cp *Compute) Run(x, y, z int) error {
	if x <= 0 || y <= 0 || z <= 0 {
		return invalidf("work group count %dx%dx%d", x, y, z)
	}
	if cp.refs.released() {
		return ErrHandleReleased
	}
	cp.mu.Lock()
	uniforms := cp.uniforms
	cp.mu.Unlock()

	c := cp.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.bindProgramLocked(cp.program.id)
	c.bindDescriptorSetLocked(cp.set)
	c.uploadLocked(uniforms)
	c.drv.DispatchCompute(uint32(x), uint32(y), uint32(z))
	c.drv.MemoryBarrier(gl.ALL_BARRIER_BITS)
	return nil
}

// Release gives back the program and descriptor set.
func (cp *Compute) Release() error {
	cp.cleanup.Stop()
	return cp.refs.release(cp.ctx.syncMode())
}
