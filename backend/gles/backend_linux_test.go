//go:build linux

package gles

import (
	"testing"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// newTestBackend returns an initialized backend or skips when the host
// has no usable EGL display.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	if testing.Short() {
		t.Skip("needs a GL context")
	}
	b := NewBackend(WithVersion(3, 3))
	if err := b.Init(); err != nil {
		t.Skipf("no GL context: %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func TestBackendRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendGLES) {
		t.Fatal("gles backend not registered")
	}
	if b := NewBackend(); b.Driver() != nil {
		t.Error("Driver() before Init is not nil")
	}
}

func TestDriverObjects(t *testing.T) {
	drv := newTestBackend(t).Driver()
	info := drv.Info()
	if info.Version == "" || info.Limits.MaxVertexAttribs < 16 {
		t.Errorf("Info() = %+v", info)
	}

	buf := drv.GenBuffer()
	if buf == 0 {
		t.Fatal("GenBuffer returned 0")
	}
	drv.BindBuffer(gl.ARRAY_BUFFER, buf)
	drv.BufferData(gl.ARRAY_BUFFER, 64, gl.STATIC_DRAW)
	drv.BufferSubData(gl.ARRAY_BUFFER, 4, []byte{1, 2, 3, 4})
	got := make([]byte, 4)
	drv.GetBufferSubData(gl.ARRAY_BUFFER, 4, got)
	if string(got) != "\x01\x02\x03\x04" {
		t.Errorf("read back %v, want [1 2 3 4]", got)
	}
	drv.BindBuffer(gl.ARRAY_BUFFER, 0)
	drv.DeleteBuffer(buf)

	tex := drv.GenTexture()
	if tex == 0 {
		t.Fatal("GenTexture returned 0")
	}
	drv.DeleteTexture(tex)
}

func TestDriverProgramInterface(t *testing.T) {
	drv := newTestBackend(t).Driver()

	const vs = `#version 330 core
in vec2 in_pos;
uniform vec2 offset;
void main() { gl_Position = vec4(in_pos + offset, 0.0, 1.0); }
`
	const fs = `#version 330 core
layout(std140) uniform Params { vec4 tint; };
out vec4 color;
void main() { color = tint; }
`
	prog := drv.CreateProgram()
	var shaders []uint32
	for _, s := range []struct {
		typ uint32
		src string
	}{{gl.VERTEX_SHADER, vs}, {gl.FRAGMENT_SHADER, fs}} {
		sh := drv.CreateShader(s.typ)
		drv.ShaderSource(sh, s.src)
		drv.CompileShader(sh)
		var ok int32
		drv.GetShaderiv(sh, gl.COMPILE_STATUS, &ok)
		if ok == 0 {
			t.Fatalf("compile: %s", drv.GetShaderInfoLog(sh))
		}
		drv.AttachShader(prog, sh)
		shaders = append(shaders, sh)
	}
	drv.LinkProgram(prog)
	var linked int32
	drv.GetProgramiv(prog, gl.LINK_STATUS, &linked)
	if linked == 0 {
		t.Fatalf("link: %s", drv.GetProgramInfoLog(prog))
	}
	defer func() {
		for _, sh := range shaders {
			drv.DetachShader(prog, sh)
			drv.DeleteShader(sh)
		}
		drv.DeleteProgram(prog)
	}()

	pi := drv.ProgramInterface(prog)
	if _, ok := pi.Lookup("in_pos"); !ok {
		t.Errorf("attribute in_pos missing from %+v", pi)
	}
	if r, ok := pi.Lookup("offset"); !ok || r.Location < 0 {
		t.Errorf("uniform offset = %+v, %v", r, ok)
	}
	if r, ok := pi.Lookup("Params"); !ok || r.Size != 16 {
		t.Errorf("block Params = %+v, %v", r, ok)
	}
	if idx := drv.GetUniformBlockIndex(prog, "Params"); idx == backend.INVALID_INDEX {
		t.Error("GetUniformBlockIndex(Params) is invalid")
	}
}
