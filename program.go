package glcache

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/glcache/cache"
	"github.com/gogpu/glcache/glenum"
	"github.com/gogpu/glcache/shader"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// LayoutBinding assigns a binding point to a sampler uniform or a
// uniform block after link.
type LayoutBinding struct {
	Name    string
	Binding int
}

// ProgramDescriptor describes a render program.
type ProgramDescriptor struct {
	Vertex   shader.Source
	Fragment shader.Source
	Layout   []LayoutBinding
	// Includes resolves #include lines. Nil selects the context's
	// includes.
	Includes map[string]string
}

// ComputeProgramDescriptor describes a compute program.
type ComputeProgramDescriptor struct {
	Source   shader.Source
	Layout   []LayoutBinding
	Includes map[string]string
}

type shaderKey struct {
	source string
	stage  gputypes.ShaderStage
}

// programKey identifies a program by its resolved GLSL. Compute
// programs only set compute.
type programKey struct {
	vertex   string
	fragment string
	compute  string
	layout   string
}

// Shader and program keys are dominated by source text, so their shard
// hash is the xxHash of that text.

func hashShaderKey(k shaderKey) uint64 {
	return cache.StringHasher(k.source) ^ uint64(k.stage)
}

func hashProgramKey(k programKey) uint64 {
	h := cache.StringHasher(k.vertex)
	for _, s := range [...]string{k.fragment, k.compute, k.layout} {
		h = h*31 ^ cache.StringHasher(s)
	}
	return h
}

func stageName(stage gputypes.ShaderStage) string {
	switch stage {
	case gputypes.ShaderStageVertex:
		return "vertex"
	case gputypes.ShaderStageFragment:
		return "fragment"
	case gputypes.ShaderStageCompute:
		return "compute"
	default:
		return "stage(" + strconv.Itoa(int(stage)) + ")"
	}
}

// Shader returns the cached shader object compiled from GLSL source.
// The handle carries one use; give it back with ReleaseShader. Programs
// hold their own uses of the shaders they were linked from.
func (c *Context) Shader(source string, stage gputypes.ShaderStage) (*Handle, error) {
	if _, ok := glenum.ShaderType(stage); !ok {
		return nil, invalidf("shader stage %s", stage)
	}
	if stage == gputypes.ShaderStageCompute && !c.info.Features.Compute {
		return nil, ErrUnsupported
	}
	key := shaderKey{source: source, stage: stage}
	return getOrCreate(c, c.shaders, key, c.shaderOps(key))
}

// ReleaseShader gives back one use of a shader.
func (c *Context) ReleaseShader(h *Handle) error {
	if err := c.checkHandle(h, ObjectShader); err != nil {
		return err
	}
	return c.releaseHandle(h, c.syncMode())
}

// ReleaseShaderCache forgets every cached shader. Shaders still used by
// programs stay alive until those programs are released; later programs
// compile their shaders again. It returns the number of entries dropped.
func (c *Context) ReleaseShaderCache() int {
	n := 0
	c.shaders.Range(func(k shaderKey, h *Handle) bool {
		if c.shaders.CompareAndDelete(k, h) {
			n++
		}
		return true
	})
	c.translator.Purge()
	Logger().Debug("glcache: shader cache released", "entries", n)
	return n
}

func (c *Context) shaderOps(key shaderKey) createOps[*Handle] {
	return createOps[*Handle]{
		kind: "shader",
		build: func() (*Handle, error) {
			id, err := c.compileShaderLocked(key.source, key.stage)
			if err != nil {
				return nil, err
			}
			return newHandle(c.trash, id, ObjectShader), nil
		},
		discard: c.discardHandle,
	}
}

// compileShaderLocked creates and compiles one shader object. On failure
// nothing is left behind.
func (c *Context) compileShaderLocked(source string, stage gputypes.ShaderStage) (uint32, error) {
	typ, _ := glenum.ShaderType(stage)
	id := c.drv.CreateShader(typ)
	if id == 0 {
		return 0, ErrCreateFailed
	}
	c.drv.ShaderSource(id, source)
	c.drv.CompileShader(id)
	var status int32
	c.drv.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == 0 {
		log := c.drv.GetShaderInfoLog(id)
		c.deleteLocked(id, ObjectShader)
		Logger().Debug("glcache: shader compilation failed", "stage", stageName(stage), "log", log)
		return 0, &ShaderError{Stage: stageName(stage), Log: log}
	}
	return id, nil
}

// Program returns the cached program for desc, creating it and its
// shaders on a miss. WGSL sources are translated first. The handle
// carries one use; give it back with ReleaseProgram.
func (c *Context) Program(desc ProgramDescriptor) (*Handle, error) {
	includes := c.includes(desc.Includes)
	vs, err := c.translate(desc.Vertex, gputypes.ShaderStageVertex, includes)
	if err != nil {
		return nil, err
	}
	fs, err := c.translate(desc.Fragment, gputypes.ShaderStageFragment, includes)
	if err != nil {
		return nil, err
	}
	layout, layoutKey, err := normalizeLayout(desc.Layout)
	if err != nil {
		return nil, err
	}
	key := programKey{vertex: vs, fragment: fs, layout: layoutKey}
	return getOrCreate(c, c.programs, key, createOps[*Handle]{
		kind:    "program",
		build:   func() (*Handle, error) { return c.buildProgramLocked(vs, fs, layout) },
		discard: c.discardHandle,
	})
}

// ComputeProgram returns the cached compute program for desc. The handle
// carries one use; give it back with ReleaseProgram.
func (c *Context) ComputeProgram(desc ComputeProgramDescriptor) (*Handle, error) {
	if !c.info.Features.Compute {
		return nil, ErrUnsupported
	}
	cs, err := c.translate(desc.Source, gputypes.ShaderStageCompute, c.includes(desc.Includes))
	if err != nil {
		return nil, err
	}
	layout, layoutKey, err := normalizeLayout(desc.Layout)
	if err != nil {
		return nil, err
	}
	key := programKey{compute: cs, layout: layoutKey}
	return getOrCreate(c, c.programs, key, createOps[*Handle]{
		kind:    "compute_program",
		build:   func() (*Handle, error) { return c.buildComputeProgramLocked(cs, layout) },
		discard: c.discardHandle,
	})
}

// ReleaseProgram gives back one use of a render or compute program.
func (c *Context) ReleaseProgram(h *Handle) error {
	if err := c.checkHandle(h, ObjectProgram); err != nil {
		return err
	}
	return c.releaseHandle(h, c.syncMode())
}

func (c *Context) includes(own map[string]string) map[string]string {
	if own != nil {
		return own
	}
	return c.opts.includes
}

// translate resolves includes and produces GLSL for one stage.
func (c *Context) translate(src shader.Source, stage gputypes.ShaderStage, includes map[string]string) (string, error) {
	if src.Language == shader.WGSL && src.EntryPoint == "" {
		switch stage {
		case gputypes.ShaderStageVertex:
			src.EntryPoint = c.opts.vertexEntry
		case gputypes.ShaderStageFragment:
			src.EntryPoint = c.opts.fragmentEntry
		case gputypes.ShaderStageCompute:
			src.EntryPoint = c.opts.computeEntry
		}
	}
	if strings.TrimSpace(src.Code) == "" {
		return "", invalidf("empty %s shader", stageName(stage))
	}
	out, err := c.translator.Translate(src, stage, includes)
	if err != nil {
		return "", fmt.Errorf("%w: %s shader: %w", ErrInvalidDescriptor, stageName(stage), err)
	}
	return out, nil
}

// normalizeLayout sorts the bindings by name and returns them with their
// canonical key.
func normalizeLayout(layout []LayoutBinding) ([]LayoutBinding, string, error) {
	if len(layout) == 0 {
		return nil, "", nil
	}
	sorted := slices.Clone(layout)
	slices.SortFunc(sorted, func(a, b LayoutBinding) int { return strings.Compare(a.Name, b.Name) })

	var sb strings.Builder
	for i, b := range sorted {
		switch {
		case b.Name == "":
			return nil, "", invalidf("layout binding without a name")
		case b.Binding < 0:
			return nil, "", invalidf("layout binding %q = %d", b.Name, b.Binding)
		case i > 0 && sorted[i-1].Name == b.Name:
			return nil, "", invalidf("layout name %q bound twice", b.Name)
		}
		sb.WriteString(b.Name)
		sb.WriteByte('=')
		sb.WriteString(strconv.Itoa(b.Binding))
		sb.WriteByte(';')
	}
	return sorted, sb.String(), nil
}

func (c *Context) buildProgramLocked(vsSource, fsSource string, layout []LayoutBinding) (*Handle, error) {
	vs, err := getOrCreateLocked(c.shaders, shaderKey{vsSource, gputypes.ShaderStageVertex}, c.shaderOps(shaderKey{vsSource, gputypes.ShaderStageVertex}))
	if err != nil {
		return nil, err
	}
	fs, err := getOrCreateLocked(c.shaders, shaderKey{fsSource, gputypes.ShaderStageFragment}, c.shaderOps(shaderKey{fsSource, gputypes.ShaderStageFragment}))
	if err != nil {
		_ = c.releaseHandle(vs, releaseLocked)
		return nil, err
	}
	deps := []*Handle{vs, fs}
	fail := func(err error) (*Handle, error) {
		for _, d := range deps {
			_ = c.releaseHandle(d, releaseLocked)
		}
		return nil, err
	}

	id := c.drv.CreateProgram()
	if id == 0 {
		return fail(ErrCreateFailed)
	}
	c.drv.AttachShader(id, vs.id)
	c.drv.AttachShader(id, fs.id)
	if err := c.linkLocked(id); err != nil {
		return fail(err)
	}

	h := newHandle(c.trash, id, ObjectProgram)
	h.deps = deps
	c.reflectLocked(h, layout)
	return h, nil
}

func (c *Context) buildComputeProgramLocked(source string, layout []LayoutBinding) (*Handle, error) {
	cs, err := c.compileShaderLocked(source, gputypes.ShaderStageCompute)
	if err != nil {
		return nil, err
	}
	id := c.drv.CreateProgram()
	if id == 0 {
		c.deleteLocked(cs, ObjectShader)
		return nil, ErrCreateFailed
	}
	c.drv.AttachShader(id, cs)
	err = c.linkLocked(id)
	if err == nil {
		c.drv.DetachShader(id, cs)
	}
	c.deleteLocked(cs, ObjectShader)
	if err != nil {
		return nil, err
	}

	h := newHandle(c.trash, id, ObjectProgram)
	c.reflectLocked(h, layout)
	return h, nil
}

// linkLocked links id. On failure the program is deleted.
func (c *Context) linkLocked(id uint32) error {
	c.drv.LinkProgram(id)
	var status int32
	c.drv.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status != 0 {
		return nil
	}
	log := c.drv.GetProgramInfoLog(id)
	c.deleteLocked(id, ObjectProgram)
	Logger().Debug("glcache: program link failed", "log", log)
	return &ShaderError{Stage: stageLink, Log: log}
}

// reflectLocked stores the program interface in h and applies the
// layout bindings.
func (c *Context) reflectLocked(h *Handle, layout []LayoutBinding) {
	iface := c.drv.ProgramInterface(h.id)
	h.iface = &iface
	if len(layout) == 0 {
		return
	}

	saved := c.shadow.program
	c.bindProgramLocked(h.id)
	for _, b := range layout {
		if loc := c.drv.GetUniformLocation(h.id, b.Name); loc >= 0 {
			c.drv.Uniform1i(loc, int32(b.Binding))
			continue
		}
		if idx := c.drv.GetUniformBlockIndex(h.id, b.Name); idx != backend.INVALID_INDEX {
			c.drv.UniformBlockBinding(h.id, idx, uint32(b.Binding))
			continue
		}
		Logger().Debug("glcache: layout binding has no active resource", "program", h.id, "name", b.Name)
	}
	c.restoreProgramLocked(saved)
}
