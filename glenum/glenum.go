package glenum

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// GL enumerants not exported by the gl package.
//
//nolint:revive // GL naming
const (
	R8_SNORM                       = 0x8F94
	RG8_SNORM                      = 0x8F95
	RGBA8_SNORM                    = 0x8F97
	R16                            = 0x822A
	RG16                           = 0x822C
	RGBA16                         = 0x805B
	R16_SNORM                      = 0x8F98
	RG16_SNORM                     = 0x8F99
	RGBA16_SNORM                   = 0x8F9B
	RGB10_A2                       = 0x8059
	RGB10_A2UI                     = 0x906F
	R11F_G11F_B10F                 = 0x8C3A
	RGB9_E5                        = 0x8C3D
	STENCIL_INDEX                  = 0x1901
	STENCIL_INDEX8                 = 0x8D48
	DEPTH_COMPONENT32F             = 0x8CAC
	UNSIGNED_INT_2_10_10_10_REV    = 0x8368
	UNSIGNED_INT_10F_11F_11F_REV   = 0x8C3B
	UNSIGNED_INT_5_9_9_9_REV       = 0x8C3E
	FLOAT_32_UNSIGNED_INT_24_8_REV = 0x8DAD
	INT_2_10_10_10_REV             = 0x8D9F
)

// Compare returns the GL comparison function.
func Compare(f gputypes.CompareFunction) (uint32, bool) {
	switch f {
	case gputypes.CompareFunctionNever:
		return gl.NEVER, true
	case gputypes.CompareFunctionLess:
		return gl.LESS, true
	case gputypes.CompareFunctionEqual:
		return gl.EQUAL, true
	case gputypes.CompareFunctionLessEqual:
		return gl.LEQUAL, true
	case gputypes.CompareFunctionGreater:
		return gl.GREATER, true
	case gputypes.CompareFunctionNotEqual:
		return gl.NOTEQUAL, true
	case gputypes.CompareFunctionGreaterEqual:
		return gl.GEQUAL, true
	case gputypes.CompareFunctionAlways:
		return gl.ALWAYS, true
	default:
		return 0, false
	}
}

// StencilOp returns the GL stencil operation.
func StencilOp(op gputypes.StencilOperation) (uint32, bool) {
	switch op {
	case gputypes.StencilOperationKeep:
		return gl.KEEP, true
	case gputypes.StencilOperationZero:
		return gl.ZERO, true
	case gputypes.StencilOperationReplace:
		return gl.REPLACE, true
	case gputypes.StencilOperationInvert:
		return gl.INVERT, true
	case gputypes.StencilOperationIncrementClamp:
		return gl.INCR, true
	case gputypes.StencilOperationDecrementClamp:
		return gl.DECR, true
	case gputypes.StencilOperationIncrementWrap:
		return gl.INCR_WRAP, true
	case gputypes.StencilOperationDecrementWrap:
		return gl.DECR_WRAP, true
	default:
		return 0, false
	}
}

// BlendFactor returns the GL blend factor.
func BlendFactor(f gputypes.BlendFactor) (uint32, bool) {
	switch f {
	case gputypes.BlendFactorZero:
		return gl.ZERO, true
	case gputypes.BlendFactorOne:
		return gl.ONE, true
	case gputypes.BlendFactorSrc:
		return gl.SRC_COLOR, true
	case gputypes.BlendFactorOneMinusSrc:
		return gl.ONE_MINUS_SRC_COLOR, true
	case gputypes.BlendFactorSrcAlpha:
		return gl.SRC_ALPHA, true
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA, true
	case gputypes.BlendFactorDst:
		return gl.DST_COLOR, true
	case gputypes.BlendFactorOneMinusDst:
		return gl.ONE_MINUS_DST_COLOR, true
	case gputypes.BlendFactorDstAlpha:
		return gl.DST_ALPHA, true
	case gputypes.BlendFactorOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA, true
	case gputypes.BlendFactorSrcAlphaSaturated:
		return gl.SRC_ALPHA_SATURATE, true
	case gputypes.BlendFactorConstant:
		return gl.CONSTANT_COLOR, true
	case gputypes.BlendFactorOneMinusConstant:
		return gl.ONE_MINUS_CONSTANT_COLOR, true
	default:
		return 0, false
	}
}

// BlendOp returns the GL blend equation.
func BlendOp(op gputypes.BlendOperation) (uint32, bool) {
	switch op {
	case gputypes.BlendOperationAdd:
		return gl.FUNC_ADD, true
	case gputypes.BlendOperationSubtract:
		return gl.FUNC_SUBTRACT, true
	case gputypes.BlendOperationReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT, true
	case gputypes.BlendOperationMin:
		return gl.MIN, true
	case gputypes.BlendOperationMax:
		return gl.MAX, true
	default:
		return 0, false
	}
}

// CullFace returns the face passed to glCullFace. CullModeNone maps to 0,
// meaning face culling is disabled.
func CullFace(m gputypes.CullMode) (uint32, bool) {
	switch m {
	case gputypes.CullModeNone:
		return 0, true
	case gputypes.CullModeFront:
		return gl.FRONT, true
	case gputypes.CullModeBack:
		return gl.BACK, true
	default:
		return 0, false
	}
}

// MagFilter returns the GL magnification filter.
func MagFilter(f gputypes.FilterMode) (uint32, bool) {
	switch f {
	case gputypes.FilterModeNearest:
		return gl.NEAREST, true
	case gputypes.FilterModeLinear:
		return gl.LINEAR, true
	default:
		return 0, false
	}
}

// MinFilter returns the GL minification filter combining the texel and
// mipmap filters. An undefined mipmap filter disables mipmapping.
func MinFilter(f gputypes.FilterMode, mip gputypes.MipmapFilterMode) (uint32, bool) {
	switch {
	case f == gputypes.FilterModeNearest && mip == gputypes.MipmapFilterModeUndefined:
		return gl.NEAREST, true
	case f == gputypes.FilterModeLinear && mip == gputypes.MipmapFilterModeUndefined:
		return gl.LINEAR, true
	case f == gputypes.FilterModeNearest && mip == gputypes.MipmapFilterModeNearest:
		return gl.NEAREST_MIPMAP_NEAREST, true
	case f == gputypes.FilterModeNearest && mip == gputypes.MipmapFilterModeLinear:
		return gl.NEAREST_MIPMAP_LINEAR, true
	case f == gputypes.FilterModeLinear && mip == gputypes.MipmapFilterModeNearest:
		return gl.LINEAR_MIPMAP_NEAREST, true
	case f == gputypes.FilterModeLinear && mip == gputypes.MipmapFilterModeLinear:
		return gl.LINEAR_MIPMAP_LINEAR, true
	default:
		return 0, false
	}
}

// Wrap returns the GL texture wrap mode.
func Wrap(a gputypes.AddressMode) (uint32, bool) {
	switch a {
	case gputypes.AddressModeClampToEdge:
		return gl.CLAMP_TO_EDGE, true
	case gputypes.AddressModeRepeat:
		return gl.REPEAT, true
	case gputypes.AddressModeMirrorRepeat:
		return gl.MIRRORED_REPEAT, true
	default:
		return 0, false
	}
}

// Topology returns the GL primitive mode.
func Topology(t gputypes.PrimitiveTopology) (uint32, bool) {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return gl.POINTS, true
	case gputypes.PrimitiveTopologyLineList:
		return gl.LINES, true
	case gputypes.PrimitiveTopologyLineStrip:
		return gl.LINE_STRIP, true
	case gputypes.PrimitiveTopologyTriangleList:
		return gl.TRIANGLES, true
	case gputypes.PrimitiveTopologyTriangleStrip:
		return gl.TRIANGLE_STRIP, true
	default:
		return 0, false
	}
}

// IndexFormat returns the GL element type and its size in bytes.
func IndexFormat(f gputypes.IndexFormat) (typ uint32, size int, ok bool) {
	switch f {
	case gputypes.IndexFormatUint16:
		return gl.UNSIGNED_SHORT, 2, true
	case gputypes.IndexFormatUint32:
		return gl.UNSIGNED_INT, 4, true
	default:
		return 0, 0, false
	}
}

// IndexSize maps an element size in bytes to an index format.
func IndexSize(size int) (gputypes.IndexFormat, bool) {
	switch size {
	case 2:
		return gputypes.IndexFormatUint16, true
	case 4:
		return gputypes.IndexFormatUint32, true
	default:
		return gputypes.IndexFormatUndefined, false
	}
}

// ShaderType returns the GL shader object type for a single stage.
func ShaderType(stage gputypes.ShaderStage) (uint32, bool) {
	switch stage {
	case gputypes.ShaderStageVertex:
		return gl.VERTEX_SHADER, true
	case gputypes.ShaderStageFragment:
		return gl.FRAGMENT_SHADER, true
	case gputypes.ShaderStageCompute:
		return gl.COMPUTE_SHADER, true
	default:
		return 0, false
	}
}

// Access is the expected update frequency of a buffer.
type Access uint8

// Buffer access hints.
const (
	AccessDefault Access = iota
	AccessStatic
	AccessDynamic
	AccessStream
)

// Usage returns the glBufferData usage hint. AccessDefault resolves to
// DYNAMIC_DRAW for uniform buffers and STATIC_DRAW otherwise.
func (a Access) Usage(uniform bool) (uint32, bool) {
	switch a {
	case AccessDefault:
		if uniform {
			return gl.DYNAMIC_DRAW, true
		}
		return gl.STATIC_DRAW, true
	case AccessStatic:
		return gl.STATIC_DRAW, true
	case AccessDynamic:
		return gl.DYNAMIC_DRAW, true
	case AccessStream:
		return gl.STREAM_DRAW, true
	default:
		return 0, false
	}
}

// String returns the access name.
func (a Access) String() string {
	switch a {
	case AccessDefault:
		return "default"
	case AccessStatic:
		return "static"
	case AccessDynamic:
		return "dynamic"
	case AccessStream:
		return "stream"
	default:
		return "unknown"
	}
}
