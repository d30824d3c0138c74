package glcache

import (
	"sync/atomic"

	"github.com/gogpu/glcache/glenum"
	"github.com/gogpu/gputypes"
)

// DepthState configures the depth test. Compare and Write are ignored
// when Enabled is false.
type DepthState struct {
	Enabled bool
	Compare gputypes.CompareFunction
	Write   bool
}

// StencilFace configures the stencil test of one face.
type StencilFace struct {
	FailOp      gputypes.StencilOperation
	PassOp      gputypes.StencilOperation
	DepthFailOp gputypes.StencilOperation
	Compare     gputypes.CompareFunction
	CompareMask uint32
	WriteMask   uint32
	Reference   int32
}

// StencilState configures the stencil test. The faces are ignored when
// Enabled is false.
type StencilState struct {
	Enabled     bool
	Front, Back StencilFace
}

// BlendState configures blending. The equation is ignored when Enabled
// is false.
type BlendState struct {
	Enabled  bool
	OpColor  gputypes.BlendOperation
	OpAlpha  gputypes.BlendOperation
	SrcColor gputypes.BlendFactor
	DstColor gputypes.BlendFactor
	SrcAlpha gputypes.BlendFactor
	DstAlpha gputypes.BlendFactor
}

// GlobalSettingsDescriptor is the fixed-function state of a draw.
type GlobalSettingsDescriptor struct {
	// Attachments is the number of color attachments drawn to.
	Attachments int
	CullMode    gputypes.CullMode
	Depth       DepthState
	Stencil     StencilState
	Blend       BlendState
}

// Normalize clears the parameters of disabled features so descriptors
// that only differ there compare equal.
func (d GlobalSettingsDescriptor) Normalize() GlobalSettingsDescriptor {
	if !d.Depth.Enabled {
		d.Depth = DepthState{}
	}
	if !d.Stencil.Enabled {
		d.Stencil = StencilState{}
	}
	if !d.Blend.Enabled {
		d.Blend = BlendState{}
	}
	return d
}

// EncodeGlobalSettings writes d in the positional integer format: the
// parameters of a feature follow its enabled flag only when it is set.
func EncodeGlobalSettings(d GlobalSettingsDescriptor) []int32 {
	out := []int32{int32(d.Attachments), int32(d.CullMode), boolField(d.Depth.Enabled)}
	if d.Depth.Enabled {
		out = append(out, int32(d.Depth.Compare), boolField(d.Depth.Write))
	}
	out = append(out, boolField(d.Stencil.Enabled))
	if d.Stencil.Enabled {
		for _, f := range [2]StencilFace{d.Stencil.Front, d.Stencil.Back} {
			out = append(out,
				int32(f.FailOp), int32(f.PassOp), int32(f.DepthFailOp), int32(f.Compare),
				int32(f.CompareMask), int32(f.WriteMask), f.Reference)
		}
	}
	out = append(out, boolField(d.Blend.Enabled))
	if d.Blend.Enabled {
		b := d.Blend
		out = append(out,
			int32(b.OpColor), int32(b.OpAlpha),
			int32(b.SrcColor), int32(b.DstColor), int32(b.SrcAlpha), int32(b.DstAlpha))
	}
	return out
}

// DecodeGlobalSettings parses the positional format written by
// EncodeGlobalSettings. Truncated input and trailing fields are
// rejected.
func DecodeGlobalSettings(fields []int32) (GlobalSettingsDescriptor, error) {
	r := fieldReader{fields: fields}
	var d GlobalSettingsDescriptor
	d.Attachments = int(r.next())
	d.CullMode = gputypes.CullMode(r.next())
	if d.Depth.Enabled = r.next() != 0; d.Depth.Enabled {
		d.Depth.Compare = gputypes.CompareFunction(r.next())
		d.Depth.Write = r.next() != 0
	}
	if d.Stencil.Enabled = r.next() != 0; d.Stencil.Enabled {
		for _, f := range []*StencilFace{&d.Stencil.Front, &d.Stencil.Back} {
			f.FailOp = gputypes.StencilOperation(r.next())
			f.PassOp = gputypes.StencilOperation(r.next())
			f.DepthFailOp = gputypes.StencilOperation(r.next())
			f.Compare = gputypes.CompareFunction(r.next())
			f.CompareMask = uint32(r.next())
			f.WriteMask = uint32(r.next())
			f.Reference = r.next()
		}
	}
	if d.Blend.Enabled = r.next() != 0; d.Blend.Enabled {
		d.Blend.OpColor = gputypes.BlendOperation(r.next())
		d.Blend.OpAlpha = gputypes.BlendOperation(r.next())
		d.Blend.SrcColor = gputypes.BlendFactor(r.next())
		d.Blend.DstColor = gputypes.BlendFactor(r.next())
		d.Blend.SrcAlpha = gputypes.BlendFactor(r.next())
		d.Blend.DstAlpha = gputypes.BlendFactor(r.next())
	}
	switch {
	case r.short:
		return GlobalSettingsDescriptor{}, invalidf("global settings truncated after %d fields", len(fields))
	case r.pos != len(fields):
		return GlobalSettingsDescriptor{}, invalidf("global settings has %d trailing fields", len(fields)-r.pos)
	}
	return d, nil
}

type fieldReader struct {
	fields []int32
	pos    int
	short  bool
}

func (r *fieldReader) next() int32 {
	if r.pos >= len(r.fields) {
		r.short = true
		return 0
	}
	v := r.fields[r.pos]
	r.pos++
	return v
}

func boolField(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

type stencilFaceGL struct {
	fail, depthFail, pass uint32
	compare               uint32
	compareMask           uint32
	writeMask             uint32
	reference             int32
}

// GlobalSettings is a cached, driver-ready render state block. It makes
// no driver calls until bound.
type GlobalSettings struct {
	ctx   *Context
	uses  atomic.Int32
	evict func() bool
	desc  GlobalSettingsDescriptor

	cullFace uint32
	depth    struct {
		enabled bool
		compare uint32
		write   bool
	}
	stencil struct {
		enabled     bool
		front, back stencilFaceGL
	}
	blend struct {
		enabled                                bool
		opColor, opAlpha                       uint32
		srcColor, dstColor, srcAlpha, dstAlpha uint32
	}
}

// Uses returns the current use count.
func (s *GlobalSettings) Uses() int { return int(s.uses.Load()) }

// Descriptor returns the normalized descriptor.
func (s *GlobalSettings) Descriptor() GlobalSettingsDescriptor { return s.desc }

func (s *GlobalSettings) tryAcquire() bool        { return acquireCount(&s.uses) }
func (s *GlobalSettings) setEvict(f func() bool) { s.evict = f }

// GlobalSettings returns the cached block for desc, creating it on a
// miss. Give it back with ReleaseGlobalSettings.
func (c *Context) GlobalSettings(desc GlobalSettingsDescriptor) (*GlobalSettings, error) {
	key := desc.Normalize()
	return getOrCreate(c, c.settings, key, createOps[*GlobalSettings]{
		kind: "global_settings",
		validate: func() error {
			if key.Attachments < 0 || key.Attachments > MaxColorAttachments {
				return invalidf("%d attachments", key.Attachments)
			}
			return nil
		},
		build:    func() (*GlobalSettings, error) { return c.buildGlobalSettings(key) },
		unlocked: true,
	})
}

// ReleaseGlobalSettings gives back one use of a settings block.
func (c *Context) ReleaseGlobalSettings(s *GlobalSettings) error {
	if s == nil {
		return invalidf("nil global settings")
	}
	if s.ctx != c {
		return ErrForeignObject
	}
	return c.releaseGlobalSettings(s, c.syncMode())
}

func (c *Context) buildGlobalSettings(d GlobalSettingsDescriptor) (*GlobalSettings, error) {
	s := &GlobalSettings{ctx: c, desc: d}
	s.uses.Store(1)

	var ok bool
	if s.cullFace, ok = glenum.CullFace(d.CullMode); !ok {
		return nil, invalidf("cull mode %d", d.CullMode)
	}
	if d.Depth.Enabled {
		s.depth.enabled = true
		s.depth.write = d.Depth.Write
		if s.depth.compare, ok = glenum.Compare(d.Depth.Compare); !ok {
			return nil, invalidf("depth compare %s", d.Depth.Compare)
		}
	}
	if d.Stencil.Enabled {
		s.stencil.enabled = true
		var err error
		if s.stencil.front, err = stencilFace(d.Stencil.Front); err != nil {
			return nil, err
		}
		if s.stencil.back, err = stencilFace(d.Stencil.Back); err != nil {
			return nil, err
		}
	}
	if d.Blend.Enabled {
		b := &s.blend
		b.enabled = true
		if b.opColor, ok = glenum.BlendOp(d.Blend.OpColor); !ok {
			return nil, invalidf("blend color op %d", d.Blend.OpColor)
		}
		if b.opAlpha, ok = glenum.BlendOp(d.Blend.OpAlpha); !ok {
			return nil, invalidf("blend alpha op %d", d.Blend.OpAlpha)
		}
		for _, f := range []struct {
			dst *uint32
			src gputypes.BlendFactor
		}{
			{&b.srcColor, d.Blend.SrcColor},
			{&b.dstColor, d.Blend.DstColor},
			{&b.srcAlpha, d.Blend.SrcAlpha},
			{&b.dstAlpha, d.Blend.DstAlpha},
		} {
			if *f.dst, ok = glenum.BlendFactor(f.src); !ok {
				return nil, invalidf("blend factor %d", f.src)
			}
		}
	}
	return s, nil
}

func stencilFace(f StencilFace) (stencilFaceGL, error) {
	var out stencilFaceGL
	var ok bool
	if out.fail, ok = glenum.StencilOp(f.FailOp); !ok {
		return out, invalidf("stencil fail op %d", f.FailOp)
	}
	if out.pass, ok = glenum.StencilOp(f.PassOp); !ok {
		return out, invalidf("stencil pass op %d", f.PassOp)
	}
	if out.depthFail, ok = glenum.StencilOp(f.DepthFailOp); !ok {
		return out, invalidf("stencil depth fail op %d", f.DepthFailOp)
	}
	if out.compare, ok = glenum.Compare(f.Compare); !ok {
		return out, invalidf("stencil compare %s", f.Compare)
	}
	out.compareMask = f.CompareMask
	out.writeMask = f.WriteMask
	out.reference = f.Reference
	return out, nil
}
