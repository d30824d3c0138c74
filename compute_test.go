package glcache

import (
	"errors"
	"testing"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/glcache/backend/recording"
	"github.com/gogpu/glcache/shader"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

func TestComputeRun(t *testing.T) {
	c, drv := newTestContextWith(t, recording.New(recording.WithCallLog()))
	ssbo := newTestBuffer(t, c, BufferDescriptor{Size: 1024, Storage: true})
	defer ssbo.Release()

	cp, err := c.NewCompute(ComputeDescriptor{
		Source:    shader.Source{Code: computeGLSL},
		Resources: DescriptorSetDescriptor{StorageBuffers: []BufferBinding{{Buffer: ssbo}}},
		Uniforms: &UniformData{
			Layout: []UniformBinding{{Function: backend.Uniform1ui, Count: 1}},
			Data:   make([]byte, 4),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer cp.Release()

	if err := cp.Run(16, 1, 1); err != nil {
		t.Fatal(err)
	}
	call, ok := lastCall(drv, "DispatchCompute")
	if !ok {
		t.Fatal("no DispatchCompute call")
	}
	if call.Args[0] != uint32(16) || call.Args[1] != uint32(1) || call.Args[2] != uint32(1) {
		t.Errorf("DispatchCompute%v", call.Args)
	}
	if barrier, _ := lastCall(drv, "MemoryBarrier"); barrier.Args[0] != uint32(gl.ALL_BARRIER_BITS) {
		t.Errorf("MemoryBarrier%v", barrier.Args)
	}
	if bind, _ := lastCall(drv, "BindBufferRange"); bind.Args[0] != uint32(gl.SHADER_STORAGE_BUFFER) || bind.Args[2] != ssbo.Object().ID() {
		t.Errorf("BindBufferRange%v", bind.Args)
	}
	if got := drv.State().Program; got != cp.Program().ID() {
		t.Errorf("bound program = %d, want %d", got, cp.Program().ID())
	}
	if got := drv.Calls("Uniform"); got != 1 {
		t.Errorf("Uniform called %d times, want 1", got)
	}

	drv.ResetCalls()
	if err := cp.SetUniformData([]byte{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := cp.Run(1, 1, 1); err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]int{"UseProgram": 0, "BindBufferRange": 0, "Uniform": 1, "DispatchCompute": 1} {
		if got := drv.Calls(name); got != want {
			t.Errorf("second run: %s called %d times, want %d", name, got, want)
		}
	}
	if err := cp.SetUniformData(nil); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("SetUniformData(nil) = %v, want ErrInvalidDescriptor", err)
	}

	for _, size := range [][3]int{{0, 1, 1}, {1, -1, 1}, {1, 1, 0}} {
		if err := cp.Run(size[0], size[1], size[2]); !errors.Is(err, ErrInvalidDescriptor) {
			t.Errorf("Run%v = %v, want ErrInvalidDescriptor", size, err)
		}
	}
}

func TestComputeRelease(t *testing.T) {
	c, drv := newTestContext(t)
	ssbo := newTestBuffer(t, c, BufferDescriptor{Size: 64, Storage: true})

	cp, err := c.NewCompute(ComputeDescriptor{
		Source:    shader.Source{Code: computeGLSL},
		Resources: DescriptorSetDescriptor{StorageBuffers: []BufferBinding{{Buffer: ssbo}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = ssbo.Release()
	if got := drv.Deleted(recording.Buffer); got != 0 {
		t.Fatal("storage buffer deleted while a compute uses it")
	}

	if err := cp.Release(); err != nil {
		t.Fatal(err)
	}
	if got := drv.Live(recording.Program); got != 0 {
		t.Errorf("%d programs live after release", got)
	}
	if got := drv.Deleted(recording.Buffer); got != 1 {
		t.Errorf("deleted %d buffers, want 1", got)
	}
	if err := cp.Run(1, 1, 1); !errors.Is(err, ErrHandleReleased) {
		t.Errorf("Run after Release = %v, want ErrHandleReleased", err)
	}
	if err := cp.Release(); !errors.Is(err, ErrHandleReleased) {
		t.Errorf("second Release = %v, want ErrHandleReleased", err)
	}
}

func TestComputeFailures(t *testing.T) {
	t.Run("no compute support", func(t *testing.T) {
		info := recording.DefaultInfo()
		info.Features.Compute = false
		c, drv := newTestContextWith(t, recording.New(recording.WithInfo(info)))
		if _, err := c.NewCompute(ComputeDescriptor{Source: shader.Source{Code: computeGLSL}}); !errors.Is(err, ErrUnsupported) {
			t.Errorf("NewCompute = %v, want ErrUnsupported", err)
		}
		if n := drv.TotalCalls(); n != 0 {
			t.Errorf("made %d driver calls", n)
		}
	})

	t.Run("compile failure", func(t *testing.T) {
		c, drv := newTestContext(t)
		drv.FailCompile("local_size")
		_, err := c.NewCompute(ComputeDescriptor{Source: shader.Source{Code: computeGLSL}})
		var se *ShaderError
		if !errors.As(err, &se) || se.Stage != "compute" {
			t.Fatalf("NewCompute = %v, want a compute ShaderError", err)
		}
		if drv.Live(recording.Shader) != 0 || drv.Live(recording.Program) != 0 {
			t.Error("failed compile left objects alive")
		}
	})

	t.Run("bad resources", func(t *testing.T) {
		c, drv := newTestContext(t)
		ssbo := newTestBuffer(t, c, BufferDescriptor{Size: 64, Storage: true})
		defer ssbo.Release()
		_, err := c.NewCompute(ComputeDescriptor{
			Source:    shader.Source{Code: computeGLSL},
			Resources: DescriptorSetDescriptor{StorageBuffers: []BufferBinding{{Buffer: ssbo, Size: 128}}},
		})
		if !errors.Is(err, ErrInvalidDescriptor) {
			t.Fatalf("NewCompute = %v, want ErrInvalidDescriptor", err)
		}
		if got := drv.Live(recording.Program); got != 0 {
			t.Errorf("%d programs live after failed creation", got)
		}
	})

	t.Run("bad uniforms", func(t *testing.T) {
		c, drv := newTestContext(t)
		_, err := c.NewCompute(ComputeDescriptor{
			Source:   shader.Source{Code: computeGLSL},
			Uniforms: &UniformData{Layout: []UniformBinding{{Function: backend.Uniform4f, Count: 2}}, Data: make([]byte, 16)},
		})
		if !errors.Is(err, ErrInvalidDescriptor) {
			t.Fatalf("NewCompute = %v, want ErrInvalidDescriptor", err)
		}
		if n := drv.TotalCalls(); n != 0 {
			t.Errorf("made %d driver calls", n)
		}
	})
}
