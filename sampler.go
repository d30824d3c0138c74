package glcache

import (
	"math"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/glcache/glenum"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// SamplerDescriptor describes a sampler object. It is comparable and is
// used directly as the cache key after normalization.
type SamplerDescriptor struct {
	MinFilter    gputypes.FilterMode
	MagFilter    gputypes.FilterMode
	MipmapFilter gputypes.MipmapFilterMode

	MinLOD  float32
	MaxLOD  float32
	LODBias float32

	WrapS gputypes.AddressMode
	WrapT gputypes.AddressMode
	WrapR gputypes.AddressMode

	// Compare enables depth comparison. Undefined disables it.
	Compare gputypes.CompareFunction

	// MaxAnisotropy of 0 or 1 disables anisotropic filtering.
	MaxAnisotropy float32
}

// DefaultSampler returns linear filtering without mipmaps, repeat
// wrapping and the full LOD range.
func DefaultSampler() SamplerDescriptor {
	return SamplerDescriptor{
		MinFilter:     gputypes.FilterModeLinear,
		MagFilter:     gputypes.FilterModeLinear,
		MinLOD:        -1000,
		MaxLOD:        1000,
		WrapS:         gputypes.AddressModeRepeat,
		WrapT:         gputypes.AddressModeRepeat,
		WrapR:         gputypes.AddressModeRepeat,
		MaxAnisotropy: 1,
	}
}

// normalize fills undefined fields with their defaults so equivalent
// descriptors share one cache entry.
func (d SamplerDescriptor) normalize() SamplerDescriptor {
	if d.MinFilter == gputypes.FilterModeUndefined {
		d.MinFilter = gputypes.FilterModeLinear
	}
	if d.MagFilter == gputypes.FilterModeUndefined {
		d.MagFilter = gputypes.FilterModeLinear
	}
	for _, w := range []*gputypes.AddressMode{&d.WrapS, &d.WrapT, &d.WrapR} {
		if *w == gputypes.AddressModeUndefined {
			*w = gputypes.AddressModeRepeat
		}
	}
	if d.MaxAnisotropy == 0 {
		d.MaxAnisotropy = 1
	}
	return d
}

type samplerParams struct {
	minFilter, magFilter uint32
	wrap                 [3]uint32
	compare              uint32
}

func (d SamplerDescriptor) params() (samplerParams, error) {
	var p samplerParams
	var ok bool
	if p.minFilter, ok = glenum.MinFilter(d.MinFilter, d.MipmapFilter); !ok {
		return p, invalidf("min filter %s with mipmap filter %s", d.MinFilter, d.MipmapFilter)
	}
	if p.magFilter, ok = glenum.MagFilter(d.MagFilter); !ok {
		return p, invalidf("mag filter %s", d.MagFilter)
	}
	for i, w := range [3]gputypes.AddressMode{d.WrapS, d.WrapT, d.WrapR} {
		if p.wrap[i], ok = glenum.Wrap(w); !ok {
			return p, invalidf("wrap mode %s", w)
		}
	}
	if d.Compare != gputypes.CompareFunctionUndefined {
		if p.compare, ok = glenum.Compare(d.Compare); !ok {
			return p, invalidf("compare function %s", d.Compare)
		}
	}
	for _, f := range [...]struct {
		name string
		v    float32
	}{{"min LOD", d.MinLOD}, {"max LOD", d.MaxLOD}, {"LOD bias", d.LODBias}, {"max anisotropy", d.MaxAnisotropy}} {
		// NaN keys never compare equal, so they could never be evicted.
		if v := float64(f.v); math.IsNaN(v) || math.IsInf(v, 0) {
			return p, invalidf("%s %g is not finite", f.name, f.v)
		}
	}
	if d.MinLOD > d.MaxLOD {
		return p, invalidf("min LOD %g above max LOD %g", d.MinLOD, d.MaxLOD)
	}
	if d.MaxAnisotropy < 1 {
		return p, invalidf("max anisotropy %g", d.MaxAnisotropy)
	}
	return p, nil
}

// Sampler returns the cached sampler object for desc, creating it on a
// miss. The handle carries one use; give it back with ReleaseSampler.
func (c *Context) Sampler(desc SamplerDescriptor) (*Handle, error) {
	key := desc.normalize()
	var p samplerParams
	return getOrCreate(c, c.samplers, key, createOps[*Handle]{
		kind: "sampler",
		validate: func() error {
			if !c.info.Features.Samplers {
				return ErrUnsupported
			}
			var err error
			p, err = key.params()
			return err
		},
		build:   func() (*Handle, error) { return c.buildSamplerLocked(key, p) },
		discard: c.discardHandle,
	})
}

// ReleaseSampler gives back one use of a sampler.
func (c *Context) ReleaseSampler(h *Handle) error {
	if err := c.checkHandle(h, ObjectSampler); err != nil {
		return err
	}
	return c.releaseHandle(h, c.syncMode())
}

func (c *Context) buildSamplerLocked(d SamplerDescriptor, p samplerParams) (*Handle, error) {
	id := c.drv.GenSampler()
	if id == 0 {
		return nil, ErrCreateFailed
	}
	c.drv.SamplerParameteri(id, gl.TEXTURE_MIN_FILTER, int32(p.minFilter))
	c.drv.SamplerParameteri(id, gl.TEXTURE_MAG_FILTER, int32(p.magFilter))
	c.drv.SamplerParameterf(id, gl.TEXTURE_MIN_LOD, d.MinLOD)
	c.drv.SamplerParameterf(id, gl.TEXTURE_MAX_LOD, d.MaxLOD)
	if d.LODBias != 0 {
		c.drv.SamplerParameterf(id, backend.TEXTURE_LOD_BIAS, d.LODBias)
	}
	c.drv.SamplerParameteri(id, gl.TEXTURE_WRAP_S, int32(p.wrap[0]))
	c.drv.SamplerParameteri(id, gl.TEXTURE_WRAP_T, int32(p.wrap[1]))
	c.drv.SamplerParameteri(id, gl.TEXTURE_WRAP_R, int32(p.wrap[2]))
	if p.compare != 0 {
		c.drv.SamplerParameteri(id, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
		c.drv.SamplerParameteri(id, gl.TEXTURE_COMPARE_FUNC, int32(p.compare))
	}
	if d.MaxAnisotropy != 1 {
		c.drv.SamplerParameterf(id, gl.TEXTURE_MAX_ANISOTROPY, d.MaxAnisotropy)
	}
	return newHandle(c.trash, id, ObjectSampler), nil
}
