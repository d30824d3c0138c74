package glcache

import (
	"errors"
	"testing"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/glcache/backend/recording"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

func TestFrameBaselineToggles(t *testing.T) {
	c, drv := newTestContext(t)

	if err := c.NewFrame(true, false); err != nil {
		t.Fatal(err)
	}
	if got := drv.Calls("Enable"); got != 3 {
		t.Errorf("NewFrame enabled %d features, want 3", got)
	}
	st := drv.State()
	for _, capability := range []uint32{backend.PRIMITIVE_RESTART_FIXED_INDEX, backend.PROGRAM_POINT_SIZE, backend.TEXTURE_CUBE_MAP_SEAMLESS} {
		if !st.Enabled[capability] {
			t.Errorf("capability %#x not enabled", capability)
		}
	}

	if err := c.NewFrame(false, false); err != nil {
		t.Fatal(err)
	}
	if got := drv.Calls("Enable"); got != 3 {
		t.Errorf("second NewFrame re-enabled features: %d Enable calls", got)
	}

	if err := c.EndFrame(true, false); err != nil {
		t.Fatal(err)
	}
	if got := drv.Calls("Disable"); got != 7 {
		t.Errorf("EndFrame disabled %d features, want 7", got)
	}
	binds := drv.Calls("BindFramebuffer") + drv.Calls("UseProgram") + drv.Calls("BindVertexArray")

	if err := c.EndFrame(true, false); err != nil {
		t.Fatal(err)
	}
	if got := drv.Calls("Disable"); got != 7 {
		t.Errorf("second EndFrame disabled again: %d Disable calls", got)
	}
	if got := drv.Calls("BindFramebuffer") + drv.Calls("UseProgram") + drv.Calls("BindVertexArray"); got != binds {
		t.Errorf("second EndFrame rebound objects: %d binds, want %d", got, binds)
	}
	if got := drv.Calls("Flush"); got != 0 {
		t.Errorf("EndFrame without flush called Flush %d times", got)
	}
}

func TestFrameBaselineFollowsDriverProfile(t *testing.T) {
	tests := []struct {
		name string
		info backend.Info
		want int
	}{
		{"desktop", recording.DefaultInfo(), 3},
		{"gles", backend.Info{GLES: true}, 1},
		{"webgl", backend.Info{GLES: true, WebGL: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, drv := newTestContextWith(t, recording.New(recording.WithInfo(tt.info)))
			if err := c.NewFrame(false, false); err != nil {
				t.Fatal(err)
			}
			if got := drv.Calls("Enable"); got != tt.want {
				t.Errorf("NewFrame enabled %d features, want %d", got, tt.want)
			}
		})
	}
}

func TestNewFrameClearsDefaultFramebuffer(t *testing.T) {
	c, drv := newTestContextWith(t, recording.New(recording.WithCallLog()), WithDefaultFramebuffer(42))
	if err := c.NewFrame(false, true); err != nil {
		t.Fatal(err)
	}
	if got := drv.State().DrawFB; got != 42 {
		t.Errorf("draw framebuffer = %d, want 42", got)
	}
	if got := drv.Calls("Clear"); got != 1 {
		t.Fatalf("Clear called %d times, want 1", got)
	}
	for _, call := range drv.Log() {
		if call.Name != "Clear" {
			continue
		}
		want := uint32(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
		if call.Args[0] != want {
			t.Errorf("Clear mask = %v, want %#x", call.Args[0], want)
		}
	}

	if err := c.EndFrame(false, true); err != nil {
		t.Fatal(err)
	}
	if got := drv.Calls("Flush"); got != 1 {
		t.Errorf("Flush called %d times, want 1", got)
	}
}

func TestNewFrameClearOpensMasks(t *testing.T) {
	c, drv := newTestContextWith(t, recording.New(recording.WithCallLog()))
	face := keepStencilFace()
	face.WriteMask = 0x0f
	s, err := c.GlobalSettings(GlobalSettingsDescriptor{
		Depth:   DepthState{Enabled: true, Compare: gputypes.CompareFunctionLessEqual},
		Stencil: StencilState{Enabled: true, Front: face, Back: face},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseGlobalSettings(s)
	if err := c.BindGlobalSettings(s); err != nil {
		t.Fatal(err)
	}

	if err := c.NewFrame(false, true); err != nil {
		t.Fatal(err)
	}
	var depthOpen, stencilOpen, cleared bool
	for _, call := range drv.Log() {
		switch call.Name {
		case "DepthMask":
			depthOpen = call.Args[0] == true
		case "StencilMaskSeparate":
			if call.Args[0] == uint32(gl.FRONT) {
				stencilOpen = call.Args[1] == uint32(0xff)
			}
		case "Clear":
			cleared = true
			if !depthOpen || !stencilOpen {
				t.Errorf("Clear ran with depth write %v, stencil write %v", depthOpen, stencilOpen)
			}
		}
	}
	if !cleared {
		t.Fatal("NewFrame did not clear")
	}
	if c.shadow.settings != nil {
		t.Error("settings block still shadowed after the masks changed")
	}

	if err := c.BindGlobalSettings(s); err != nil {
		t.Fatal(err)
	}
	if st := drv.State(); st.DepthMask || st.StencilMask != 0x0f {
		t.Errorf("rebound settings left depth mask %v, stencil mask %#x", st.DepthMask, st.StencilMask)
	}
}

func TestRedundantBindsAreSkipped(t *testing.T) {
	c, drv := newTestContext(t)

	for range 3 {
		if err := c.BindViewport(Viewport{Width: 64, Height: 64}); err != nil {
			t.Fatal(err)
		}
		if err := c.BindDrawFramebuffer(nil); err != nil {
			t.Fatal(err)
		}
		if err := c.BindReadFramebuffer(nil); err != nil {
			t.Fatal(err)
		}
		if err := c.BindProgram(nil); err != nil {
			t.Fatal(err)
		}
	}
	for name, want := range map[string]int{"Viewport": 1, "BindFramebuffer": 2, "UseProgram": 1} {
		if got := drv.Calls(name); got != want {
			t.Errorf("%s called %d times, want %d", name, got, want)
		}
	}
	if got := drv.State().Viewport; got != [4]int32{0, 0, 64, 64} {
		t.Errorf("viewport = %v", got)
	}

	if err := c.NewFrame(true, false); err != nil {
		t.Fatal(err)
	}
	if err := c.BindViewport(Viewport{Width: 64, Height: 64}); err != nil {
		t.Fatal(err)
	}
	if got := drv.Calls("Viewport"); got != 2 {
		t.Errorf("viewport not rebound after reset: %d calls", got)
	}

	if err := c.BindViewport(Viewport{Width: -1}); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("negative viewport = %v, want ErrInvalidDescriptor", err)
	}
}

func TestBindGlobalSettings(t *testing.T) {
	c, drv := newTestContext(t)
	s, err := c.GlobalSettings(GlobalSettingsDescriptor{
		CullMode: gputypes.CullModeBack,
		Depth:    DepthState{Enabled: true, Compare: gputypes.CompareFunctionLess, Write: true},
		Stencil: StencilState{
			Enabled: true,
			Front:   keepStencilFace(),
			Back:    keepStencilFace(),
		},
		Blend: BlendState{
			Enabled:  true,
			OpColor:  gputypes.BlendOperationAdd,
			OpAlpha:  gputypes.BlendOperationAdd,
			SrcColor: gputypes.BlendFactorSrcAlpha,
			DstColor: gputypes.BlendFactorOneMinusSrcAlpha,
			SrcAlpha: gputypes.BlendFactorOne,
			DstAlpha: gputypes.BlendFactorZero,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseGlobalSettings(s)
	if drv.TotalCalls() != 0 {
		t.Fatalf("creating settings made driver calls: %v", drv.CallNames())
	}

	if err := c.BindGlobalSettings(s); err != nil {
		t.Fatal(err)
	}
	want := map[string]int{
		"Enable":                4,
		"CullFace":              1,
		"DepthFunc":             1,
		"DepthMask":             1,
		"StencilMaskSeparate":   2,
		"StencilFuncSeparate":   2,
		"StencilOpSeparate":     2,
		"BlendEquationSeparate": 1,
		"BlendFuncSeparate":     1,
	}
	for name, n := range want {
		if got := drv.Calls(name); got != n {
			t.Errorf("%s called %d times, want %d", name, got, n)
		}
	}

	total := drv.TotalCalls()
	if err := c.BindGlobalSettings(s); err != nil {
		t.Fatal(err)
	}
	if got := drv.TotalCalls(); got != total {
		t.Errorf("rebinding the same settings made %d calls", got-total)
	}

	off, err := c.GlobalSettings(GlobalSettingsDescriptor{})
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseGlobalSettings(off)
	if err := c.BindGlobalSettings(off); err != nil {
		t.Fatal(err)
	}
	if got := drv.Calls("Disable"); got != 4 {
		t.Errorf("binding disabled settings made %d Disable calls, want 4", got)
	}
}

func TestBindDescriptorSet(t *testing.T) {
	c, drv := newTestContext(t)
	ubo := newTestBuffer(t, c, BufferDescriptor{Size: 256, Uniform: true})
	defer ubo.Release()
	img := newTestImage(t, c, ImageDescriptor{Width: 8, Height: 8})
	defer img.Release()

	set, err := c.DescriptorSet(DescriptorSetDescriptor{
		UniformBuffers: []BufferBinding{{Binding: 1, Buffer: ubo, Offset: 64}},
		Samplers:       []SamplerBinding{{Binding: 2, Image: img, Sampler: DefaultSampler()}},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseDescriptorSet(set)

	drv.ResetCalls()
	if err := c.BindDescriptorSet(set); err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]int{"BindBufferRange": 1, "ActiveTexture": 1, "BindTexture": 1, "BindSampler": 1} {
		if got := drv.Calls(name); got != want {
			t.Errorf("%s called %d times, want %d", name, got, want)
		}
	}
	if got := drv.State().ActiveUnit; got != 2 {
		t.Errorf("active texture unit = %d, want 2", got)
	}

	if err := c.BindDescriptorSet(set); err != nil {
		t.Fatal(err)
	}
	if got := drv.Calls("BindBufferRange"); got != 1 {
		t.Errorf("rebinding the same set made %d BindBufferRange calls", got)
	}
}

func TestBindReleasedObjects(t *testing.T) {
	c, _ := newTestContext(t)
	s, err := c.GlobalSettings(GlobalSettingsDescriptor{})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.ReleaseGlobalSettings(s); err != nil {
		t.Fatal(err)
	}
	if err := c.BindGlobalSettings(s); !errors.Is(err, ErrHandleReleased) {
		t.Errorf("BindGlobalSettings(released) = %v, want ErrHandleReleased", err)
	}
	if err := c.ReleaseGlobalSettings(s); !errors.Is(err, ErrHandleReleased) {
		t.Errorf("second ReleaseGlobalSettings = %v, want ErrHandleReleased", err)
	}
	if err := c.BindDescriptorSet(nil); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("BindDescriptorSet(nil) = %v, want ErrInvalidDescriptor", err)
	}
}

func keepStencilFace() StencilFace {
	return StencilFace{
		FailOp:      gputypes.StencilOperationKeep,
		PassOp:      gputypes.StencilOperationReplace,
		DepthFailOp: gputypes.StencilOperationKeep,
		Compare:     gputypes.CompareFunctionAlways,
		CompareMask: 0xff,
		WriteMask:   0xff,
		Reference:   1,
	}
}
