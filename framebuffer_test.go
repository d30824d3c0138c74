package glcache

import (
	"errors"
	"testing"

	"github.com/gogpu/glcache/backend/recording"
	"github.com/gogpu/gputypes"
)

func TestFramebufferCaching(t *testing.T) {
	c, drv := newTestContext(t)
	color := newTestImage(t, c, ImageDescriptor{Width: 32, Height: 32})
	defer color.Release()
	depth := newTestImage(t, c, ImageDescriptor{Width: 32, Height: 32, Format: gputypes.TextureFormatDepth24PlusStencil8})
	defer depth.Release()

	desc := FramebufferDescriptor{
		Color: []Attachment{{Image: color}},
		Depth: &Attachment{Image: depth},
	}
	a, err := c.Framebuffer(desc)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Framebuffer(FramebufferDescriptor{
		Width: 32, Height: 32,
		Color: []Attachment{{Image: color}},
		Depth: &Attachment{Image: depth},
	})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("equal descriptors produced different framebuffers")
	}
	if got := drv.Created(recording.Framebuffer); got != 1 {
		t.Errorf("created %d framebuffers, want 1", got)
	}
	for name, want := range map[string]int{"FramebufferTexture2D": 2, "DrawBuffers": 1, "ReadBuffer": 1} {
		if got := drv.Calls(name); got != want {
			t.Errorf("%s called %d times, want %d", name, got, want)
		}
	}

	colorOnly, err := c.Framebuffer(FramebufferDescriptor{Color: []Attachment{{Image: color}}})
	if err != nil {
		t.Fatal(err)
	}
	if colorOnly == a {
		t.Error("framebuffer without depth shares the depth framebuffer")
	}

	for _, h := range []*Handle{a, b, colorOnly} {
		if err := c.ReleaseFramebuffer(h); err != nil {
			t.Fatal(err)
		}
	}
	if got := drv.Deleted(recording.Framebuffer); got != 2 {
		t.Errorf("deleted %d framebuffers, want 2", got)
	}
	if n := c.framebuffers.Len(); n != 0 {
		t.Errorf("framebuffer cache holds %d entries", n)
	}
}

func TestFramebufferRestoresBindings(t *testing.T) {
	c, drv := newTestContext(t)
	if err := c.BindDrawFramebuffer(nil); err != nil {
		t.Fatal(err)
	}
	if err := c.BindReadFramebuffer(nil); err != nil {
		t.Fatal(err)
	}
	img := newTestImage(t, c, ImageDescriptor{Width: 8, Height: 8})
	defer img.Release()

	h, err := c.Framebuffer(FramebufferDescriptor{Color: []Attachment{{Image: img}}})
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseFramebuffer(h)

	st := drv.State()
	if st.DrawFB != 0 || st.ReadFB != 0 {
		t.Errorf("bindings after creation = draw %d read %d, want 0 0", st.DrawFB, st.ReadFB)
	}
}

func TestFramebufferHoldsItsImages(t *testing.T) {
	c, drv := newTestContext(t)
	img := newTestImage(t, c, ImageDescriptor{Width: 8, Height: 8})
	h, err := c.Framebuffer(FramebufferDescriptor{Color: []Attachment{{Image: img}}})
	if err != nil {
		t.Fatal(err)
	}

	if err := img.Release(); err != nil {
		t.Fatal(err)
	}
	if got := drv.Deleted(recording.Texture); got != 0 {
		t.Fatalf("texture deleted while a framebuffer uses it")
	}
	if err := c.ReleaseFramebuffer(h); err != nil {
		t.Fatal(err)
	}
	if got := drv.Deleted(recording.Texture); got != 1 {
		t.Errorf("deleted %d textures after the framebuffer, want 1", got)
	}
}

func TestFramebufferValidation(t *testing.T) {
	c, drv := newTestContext(t)
	small := newTestImage(t, c, ImageDescriptor{Width: 8, Height: 8})
	large := newTestImage(t, c, ImageDescriptor{Width: 16, Height: 16})
	depth := newTestImage(t, c, ImageDescriptor{Width: 8, Height: 8, Format: gputypes.TextureFormatDepth32Float})
	msaa := newTestImage(t, c, ImageDescriptor{Width: 8, Height: 8, Samples: 4})
	released := newTestImage(t, c, ImageDescriptor{Width: 8, Height: 8})
	_ = released.Release()
	defer func() {
		for _, img := range []*Image{small, large, depth, msaa} {
			_ = img.Release()
		}
	}()

	nine := make([]Attachment, MaxColorAttachments+1)
	for i := range nine {
		nine[i] = Attachment{Image: small}
	}

	tests := []struct {
		name string
		desc FramebufferDescriptor
		want error
	}{
		{"no attachments", FramebufferDescriptor{}, ErrInvalidDescriptor},
		{"too many colors", FramebufferDescriptor{Color: nine}, ErrInvalidDescriptor},
		{"size mismatch", FramebufferDescriptor{Color: []Attachment{{Image: small}, {Image: large}}}, ErrInvalidDescriptor},
		{"explicit size mismatch", FramebufferDescriptor{Width: 4, Height: 4, Color: []Attachment{{Image: small}}}, ErrInvalidDescriptor},
		{"depth in color slot", FramebufferDescriptor{Color: []Attachment{{Image: depth}}}, ErrInvalidDescriptor},
		{"color in depth slot", FramebufferDescriptor{Depth: &Attachment{Image: small}}, ErrInvalidDescriptor},
		{"level out of range", FramebufferDescriptor{Color: []Attachment{{Image: small, Level: 1}}}, ErrInvalidDescriptor},
		{"sample mismatch", FramebufferDescriptor{Color: []Attachment{{Image: small}, {Image: msaa}}}, ErrInvalidDescriptor},
		{"nil image", FramebufferDescriptor{Color: []Attachment{{}}}, ErrInvalidDescriptor},
		{"released image", FramebufferDescriptor{Color: []Attachment{{Image: released}}}, ErrHandleReleased},
	}
	calls := drv.TotalCalls()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Framebuffer(tt.desc); !errors.Is(err, tt.want) {
				t.Errorf("Framebuffer = %v, want %v", err, tt.want)
			}
		})
	}
	if got := drv.TotalCalls(); got != calls {
		t.Errorf("invalid framebuffers made %d driver calls", got-calls)
	}

	c2, _ := newTestContext(t)
	if _, err := c2.Framebuffer(FramebufferDescriptor{Color: []Attachment{{Image: small}}}); !errors.Is(err, ErrForeignObject) {
		t.Errorf("foreign image = %v, want ErrForeignObject", err)
	}
}

func TestFramebufferCreateFailureReleasesImages(t *testing.T) {
	c, drv := newTestContext(t)
	img := newTestImage(t, c, ImageDescriptor{Width: 8, Height: 8})
	drv.FailGen(recording.Framebuffer, 1)

	if _, err := c.Framebuffer(FramebufferDescriptor{Color: []Attachment{{Image: img}}}); !errors.Is(err, ErrCreateFailed) {
		t.Fatalf("Framebuffer = %v, want ErrCreateFailed", err)
	}
	if got := img.Object().Uses(); got != 1 {
		t.Errorf("image uses after failed creation = %d, want 1", got)
	}
	if err := img.Release(); err != nil {
		t.Fatal(err)
	}
	if got := drv.Deleted(recording.Texture); got != 1 {
		t.Errorf("deleted %d textures, want 1", got)
	}
}
