package glcache

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/glcache/backend/recording"
	"github.com/gogpu/gputypes"
)

func TestSamplerNormalizationSharesEntries(t *testing.T) {
	c, drv := newTestContext(t)

	a, err := c.Sampler(SamplerDescriptor{MinLOD: -1000, MaxLOD: 1000})
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseSampler(a)
	b, err := c.Sampler(DefaultSampler())
	if err != nil {
		t.Fatal(err)
	}
	defer c.ReleaseSampler(b)

	if a != b {
		t.Error("undefined fields did not normalize to the default sampler")
	}
	if got := drv.Created(recording.Sampler); got != 1 {
		t.Errorf("created %d samplers, want 1", got)
	}
}

func TestSamplerParameters(t *testing.T) {
	tests := []struct {
		name string
		desc SamplerDescriptor
		// calls of SamplerParameterf beyond the two LOD limits
		extraf int
		// calls of SamplerParameteri beyond filters and wraps
		extrai int
	}{
		{"default", DefaultSampler(), 0, 0},
		{"lod bias", SamplerDescriptor{LODBias: 0.5}, 1, 0},
		{"anisotropy", SamplerDescriptor{MaxAnisotropy: 8}, 1, 0},
		{"compare", SamplerDescriptor{Compare: gputypes.CompareFunctionLess}, 0, 2},
		{
			"mipmapped clamp",
			SamplerDescriptor{
				MinFilter:    gputypes.FilterModeLinear,
				MipmapFilter: gputypes.MipmapFilterModeLinear,
				WrapS:        gputypes.AddressModeClampToEdge,
			},
			0, 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, drv := newTestContext(t)
			h, err := c.Sampler(tt.desc)
			if err != nil {
				t.Fatal(err)
			}
			defer c.ReleaseSampler(h)
			if got := drv.Calls("SamplerParameterf"); got != 2+tt.extraf {
				t.Errorf("SamplerParameterf called %d times, want %d", got, 2+tt.extraf)
			}
			if got := drv.Calls("SamplerParameteri"); got != 5+tt.extrai {
				t.Errorf("SamplerParameteri called %d times, want %d", got, 5+tt.extrai)
			}
		})
	}
}

func TestSamplerValidation(t *testing.T) {
	c, drv := newTestContext(t)
	nan := float32(math.NaN())
	tests := []struct {
		name string
		desc SamplerDescriptor
	}{
		{"inverted lod", SamplerDescriptor{MinLOD: 2, MaxLOD: 1}},
		{"small anisotropy", SamplerDescriptor{MaxAnisotropy: 0.5}},
		{"unknown wrap", SamplerDescriptor{WrapT: 42}},
		{"unknown mag filter", SamplerDescriptor{MagFilter: 42}},
		{"unknown compare", SamplerDescriptor{Compare: 42}},
		{"nan min lod", SamplerDescriptor{MinLOD: nan, MaxLOD: 1000}},
		{"nan max lod", SamplerDescriptor{MinLOD: -1000, MaxLOD: nan}},
		{"nan lod bias", SamplerDescriptor{LODBias: nan}},
		{"nan anisotropy", SamplerDescriptor{MaxAnisotropy: nan}},
		{"infinite max lod", SamplerDescriptor{MaxLOD: float32(math.Inf(1))}},
		{"infinite anisotropy", SamplerDescriptor{MaxAnisotropy: float32(math.Inf(1))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 2 {
				if _, err := c.Sampler(tt.desc); !errors.Is(err, ErrInvalidDescriptor) {
					t.Errorf("Sampler = %v, want ErrInvalidDescriptor", err)
				}
			}
		})
	}
	if n := drv.TotalCalls(); n != 0 {
		t.Errorf("invalid samplers made %d driver calls", n)
	}
	if n := c.samplers.Len(); n != 0 {
		t.Errorf("invalid samplers left %d cache entries", n)
	}
}

func TestSamplerRequiresSamplerObjects(t *testing.T) {
	c, _ := newTestContextWith(t, recording.New(recording.WithInfo(backend.Info{GLES: true, WebGL: true})))
	if _, err := c.Sampler(DefaultSampler()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Sampler without sampler support = %v, want ErrUnsupported", err)
	}
}

func TestSamplerCreateFailure(t *testing.T) {
	c, drv := newTestContext(t)
	drv.FailGen(recording.Sampler, 1)
	if _, err := c.Sampler(DefaultSampler()); !errors.Is(err, ErrCreateFailed) {
		t.Fatalf("Sampler with failing driver = %v, want ErrCreateFailed", err)
	}
	if n := c.samplers.Len(); n != 0 {
		t.Errorf("failed creation left %d cache entries", n)
	}

	h, err := c.Sampler(DefaultSampler())
	if err != nil {
		t.Fatalf("Sampler after transient failure: %v", err)
	}
	_ = c.ReleaseSampler(h)
}
