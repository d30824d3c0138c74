package glcache

import (
	"errors"
	"testing"

	"github.com/gogpu/glcache/backend/recording"
	"github.com/gogpu/glcache/shader"
	"github.com/gogpu/gputypes"
)

func glslProgram(vs, fs string) ProgramDescriptor {
	return ProgramDescriptor{
		Vertex:   shader.Source{Code: vs},
		Fragment: shader.Source{Code: fs},
	}
}

func TestProgramCaching(t *testing.T) {
	c, drv := newTestContext(t)

	a, err := c.Program(glslProgram(vertexGLSL, fragmentGLSL))
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Program(glslProgram(vertexGLSL, fragmentGLSL))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("equal sources produced different programs")
	}
	if got := drv.Created(recording.Program); got != 1 {
		t.Errorf("created %d programs, want 1", got)
	}

	iface := a.Interface()
	if iface == nil {
		t.Fatal("program has no interface")
	}
	if len(iface.Attributes) != 1 || iface.Attributes[0].Name != "in_vert" {
		t.Errorf("attributes = %+v", iface.Attributes)
	}
	if len(iface.Uniforms) != 2 || len(iface.UniformBlocks) != 1 {
		t.Errorf("uniforms = %+v, blocks = %+v", iface.Uniforms, iface.UniformBlocks)
	}

	_ = c.ReleaseProgram(a)
	_ = c.ReleaseProgram(b)
	if got := drv.Live(recording.Program); got != 0 {
		t.Errorf("%d programs live after release", got)
	}
	if got := drv.Live(recording.Shader); got != 0 {
		t.Errorf("%d shaders live after release", got)
	}
}

func TestProgramKeyHashes(t *testing.T) {
	vs := shaderKey{source: vertexGLSL, stage: gputypes.ShaderStageVertex}
	if hashShaderKey(vs) != hashShaderKey(shaderKey{source: vertexGLSL, stage: gputypes.ShaderStageVertex}) {
		t.Error("equal shader keys hash differently")
	}
	if hashShaderKey(vs) == hashShaderKey(shaderKey{source: vertexGLSL, stage: gputypes.ShaderStageFragment}) {
		t.Error("stage does not change the shader hash")
	}

	p := programKey{vertex: vertexGLSL, fragment: fragmentGLSL}
	swapped := programKey{vertex: fragmentGLSL, fragment: vertexGLSL}
	if hashProgramKey(p) != hashProgramKey(programKey{vertex: vertexGLSL, fragment: fragmentGLSL}) {
		t.Error("equal program keys hash differently")
	}
	if hashProgramKey(p) == hashProgramKey(swapped) {
		t.Error("swapping stages does not change the program hash")
	}
	if hashProgramKey(programKey{compute: vertexGLSL}) == hashProgramKey(programKey{vertex: vertexGLSL}) {
		t.Error("compute and vertex sources hash alike")
	}
}

func TestProgramsShareShaders(t *testing.T) {
	c, drv := newTestContext(t)
	const otherFragment = "#version 330 core\nout vec4 color;\nvoid main() { color = vec4(1.0); }\n"

	a, err := c.Program(glslProgram(vertexGLSL, fragmentGLSL))
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Program(glslProgram(vertexGLSL, otherFragment))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("different fragments share a program")
	}
	if got := drv.Created(recording.Shader); got != 3 {
		t.Errorf("created %d shaders, want 3", got)
	}

	vs, err := c.Shader(vertexGLSL, gputypes.ShaderStageVertex)
	if err != nil {
		t.Fatal(err)
	}
	if got := vs.Uses(); got != 3 {
		t.Errorf("vertex shader uses = %d, want 3", got)
	}
	_ = c.ReleaseShader(vs)

	_ = c.ReleaseProgram(a)
	if got := drv.Deleted(recording.Shader); got != 1 {
		t.Errorf("deleted %d shaders after the first program, want 1", got)
	}
	_ = c.ReleaseProgram(b)
	if got := drv.Deleted(recording.Shader); got != 3 {
		t.Errorf("deleted %d shaders, want 3", got)
	}
}

func TestProgramCompileFailure(t *testing.T) {
	c, drv := newTestContext(t)
	drv.FailCompile("tint")

	_, err := c.Program(glslProgram(vertexGLSL, fragmentGLSL))
	if !errors.Is(err, ErrCompileFailed) {
		t.Fatalf("Program = %v, want ErrCompileFailed", err)
	}
	var se *ShaderError
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not a *ShaderError", err)
	}
	if se.Stage != "fragment" || se.Log == "" {
		t.Errorf("ShaderError = %+v", se)
	}
	for _, k := range []recording.Kind{recording.Shader, recording.Program} {
		if got := drv.Live(k); got != 0 {
			t.Errorf("%d %v objects live after failed compile", got, k)
		}
	}
	if c.shaders.Len() != 0 || c.programs.Len() != 0 {
		t.Error("failed compile left cache entries")
	}

	drv.FailCompile("")
	h, err := c.Program(glslProgram(vertexGLSL, fragmentGLSL))
	if err != nil {
		t.Fatalf("Program after fixing the driver: %v", err)
	}
	_ = c.ReleaseProgram(h)
}

func TestProgramLinkFailure(t *testing.T) {
	c, drv := newTestContext(t)
	drv.FailLink(true)

	_, err := c.Program(glslProgram(vertexGLSL, fragmentGLSL))
	if !errors.Is(err, ErrLinkFailed) {
		t.Fatalf("Program = %v, want ErrLinkFailed", err)
	}
	var se *ShaderError
	if !errors.As(err, &se) || se.Stage != "link" {
		t.Errorf("error = %#v, want a link ShaderError", err)
	}
	if got := drv.Live(recording.Program); got != 0 {
		t.Errorf("%d programs live after failed link", got)
	}
	if got := drv.Live(recording.Shader); got != 0 {
		t.Errorf("%d shaders live after failed link", got)
	}
}

func TestProgramLayoutBindings(t *testing.T) {
	c, drv := newTestContextWith(t, recording.New(recording.WithCallLog()))
	desc := glslProgram(vertexGLSL, fragmentGLSL)
	desc.Layout = []LayoutBinding{
		{Name: "tex", Binding: 3},
		{Name: "Common", Binding: 1},
		{Name: "unused", Binding: 7},
	}
	h, err := c.Program(desc)
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseProgram(h)

	var sampler, block bool
	for _, call := range drv.Log() {
		switch call.Name {
		case "Uniform1i":
			sampler = call.Args[1] == int32(3)
		case "UniformBlockBinding":
			block = call.Args[2] == uint32(1)
		}
	}
	if !sampler {
		t.Error("sampler uniform not bound to unit 3")
	}
	if !block {
		t.Error("uniform block not bound to binding 1")
	}

	// Order of layout entries does not matter.
	desc.Layout = []LayoutBinding{desc.Layout[2], desc.Layout[0], desc.Layout[1]}
	same, err := c.Program(desc)
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseProgram(same)
	if same != h {
		t.Error("reordered layout produced a new program")
	}
	plain, err := c.Program(glslProgram(vertexGLSL, fragmentGLSL))
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseProgram(plain)
	if plain == h {
		t.Error("program without layout shares the layout program")
	}
}

func TestProgramValidation(t *testing.T) {
	c, drv := newTestContext(t)
	tests := []struct {
		name string
		desc ProgramDescriptor
	}{
		{"empty vertex", glslProgram("", fragmentGLSL)},
		{"blank fragment", glslProgram(vertexGLSL, " \n\t")},
		{"missing include", glslProgram("#include \"nope\"\n", fragmentGLSL)},
		{"unnamed layout", ProgramDescriptor{
			Vertex: shader.Source{Code: vertexGLSL}, Fragment: shader.Source{Code: fragmentGLSL},
			Layout: []LayoutBinding{{Binding: 1}},
		}},
		{"negative layout", ProgramDescriptor{
			Vertex: shader.Source{Code: vertexGLSL}, Fragment: shader.Source{Code: fragmentGLSL},
			Layout: []LayoutBinding{{Name: "tex", Binding: -1}},
		}},
		{"duplicate layout", ProgramDescriptor{
			Vertex: shader.Source{Code: vertexGLSL}, Fragment: shader.Source{Code: fragmentGLSL},
			Layout: []LayoutBinding{{Name: "tex", Binding: 1}, {Name: "tex", Binding: 2}},
		}},
		{"bad wgsl", ProgramDescriptor{
			Vertex:   shader.Source{Language: shader.WGSL, Code: "fn ("},
			Fragment: shader.Source{Code: fragmentGLSL},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Program(tt.desc); !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("Program = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
	if n := drv.TotalCalls(); n != 0 {
		t.Errorf("invalid programs made %d driver calls", n)
	}
}

func TestProgramIncludes(t *testing.T) {
	includes := map[string]string{"camera": "uniform mat4 view;\n"}
	const vs = "#version 330 core\n#include \"camera\"\nin vec2 pos;\nvoid main() {}\n"

	c, _ := newTestContext(t, WithIncludes(includes))
	h, err := c.Program(glslProgram(vs, fragmentGLSL))
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseProgram(h)
	var found bool
	for _, u := range h.Interface().Uniforms {
		found = found || u.Name == "view"
	}
	if !found {
		t.Errorf("included uniform missing from %+v", h.Interface().Uniforms)
	}

	// Per-program includes replace the context's.
	desc := glslProgram(vs, fragmentGLSL)
	desc.Includes = map[string]string{"other": ""}
	if _, err := c.Program(desc); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("Program with own includes = %v, want ErrInvalidDescriptor", err)
	}
}

func TestProgramFromWGSL(t *testing.T) {
	const wgsl = `
@vertex
fn vs_main(@location(0) pos: vec4<f32>) -> @builtin(position) vec4<f32> {
    return pos;
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`
	c, drv := newTestContext(t)
	desc := ProgramDescriptor{
		Vertex:   shader.Source{Language: shader.WGSL, Code: wgsl},
		Fragment: shader.Source{Language: shader.WGSL, Code: wgsl},
	}
	a, err := c.Program(desc)
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseProgram(a)
	b, err := c.Program(desc)
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseProgram(b)
	if a != b {
		t.Error("WGSL program was not cached")
	}
	if got := drv.Created(recording.Shader); got != 2 {
		t.Errorf("created %d shaders, want 2", got)
	}
}

func TestReleaseShaderCache(t *testing.T) {
	c, drv := newTestContext(t)
	h, err := c.Program(glslProgram(vertexGLSL, fragmentGLSL))
	if err != nil {
		t.Fatal(err)
	}

	if n := c.ReleaseShaderCache(); n != 2 {
		t.Errorf("ReleaseShaderCache() = %d, want 2", n)
	}
	if got := drv.Deleted(recording.Shader); got != 0 {
		t.Errorf("forgetting the cache deleted %d shaders in use", got)
	}

	desc := glslProgram(vertexGLSL, fragmentGLSL)
	desc.Layout = []LayoutBinding{{Name: "tex", Binding: 0}}
	h2, err := c.Program(desc)
	if err != nil {
		t.Fatal(err)
	}
	if got := drv.Created(recording.Shader); got != 4 {
		t.Errorf("created %d shaders, want 4 after the cache was dropped", got)
	}

	_ = c.ReleaseProgram(h)
	_ = c.ReleaseProgram(h2)
	if got := drv.Live(recording.Shader); got != 0 {
		t.Errorf("%d shaders live after releasing both programs", got)
	}
}

func TestComputeProgram(t *testing.T) {
	c, drv := newTestContext(t)
	h, err := c.ComputeProgram(ComputeProgramDescriptor{Source: shader.Source{Code: computeGLSL}})
	if err != nil {
		t.Fatal(err)
	}
	again, err := c.ComputeProgram(ComputeProgramDescriptor{Source: shader.Source{Code: computeGLSL}})
	if err != nil {
		t.Fatal(err)
	}
	if h != again {
		t.Error("compute program was not cached")
	}
	if got := drv.Live(recording.Shader); got != 0 {
		t.Errorf("compute shader object kept alive: %d live", got)
	}
	if got := drv.Live(recording.Program); got != 1 {
		t.Errorf("%d programs live, want 1", got)
	}
	_ = c.ReleaseProgram(h)
	_ = c.ReleaseProgram(again)
	if got := drv.Live(recording.Program); got != 0 {
		t.Errorf("%d programs live after release", got)
	}
}

func TestComputeRequiresSupport(t *testing.T) {
	info := recording.DefaultInfo()
	info.Features.Compute = false
	c, drv := newTestContextWith(t, recording.New(recording.WithInfo(info)))

	if _, err := c.ComputeProgram(ComputeProgramDescriptor{Source: shader.Source{Code: computeGLSL}}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ComputeProgram = %v, want ErrUnsupported", err)
	}
	if _, err := c.Shader(computeGLSL, gputypes.ShaderStageCompute); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Shader(compute) = %v, want ErrUnsupported", err)
	}
	if _, err := c.Shader(vertexGLSL, gputypes.ShaderStagesVertexFragment); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("Shader(multi-stage) = %v, want ErrInvalidDescriptor", err)
	}
	if n := drv.TotalCalls(); n != 0 {
		t.Errorf("rejected requests made %d driver calls", n)
	}
}
