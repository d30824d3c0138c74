package glenum

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// VertexInfo describes how a vertex format is passed to
// glVertexAttribPointer or glVertexAttribIPointer.
type VertexInfo struct {
	// Size is the component count (1-4).
	Size int32
	// Type is the GL component type.
	Type uint32
	// Normalized maps integer components to [0, 1] or [-1, 1].
	Normalized bool
	// Integer attributes must use glVertexAttribIPointer.
	Integer bool
	// Bytes is the size of one attribute in bytes.
	Bytes int
}

type vertexEntry struct {
	size       int32
	typ        uint32
	normalized bool
	integer    bool
}

var vertexFormats = map[gputypes.VertexFormat]vertexEntry{
	gputypes.VertexFormatUint8x2:      {2, gl.UNSIGNED_BYTE, false, true},
	gputypes.VertexFormatUint8x4:      {4, gl.UNSIGNED_BYTE, false, true},
	gputypes.VertexFormatSint8x2:      {2, gl.BYTE, false, true},
	gputypes.VertexFormatSint8x4:      {4, gl.BYTE, false, true},
	gputypes.VertexFormatUnorm8x2:     {2, gl.UNSIGNED_BYTE, true, false},
	gputypes.VertexFormatUnorm8x4:     {4, gl.UNSIGNED_BYTE, true, false},
	gputypes.VertexFormatSnorm8x2:     {2, gl.BYTE, true, false},
	gputypes.VertexFormatSnorm8x4:     {4, gl.BYTE, true, false},
	gputypes.VertexFormatUint16x2:     {2, gl.UNSIGNED_SHORT, false, true},
	gputypes.VertexFormatUint16x4:     {4, gl.UNSIGNED_SHORT, false, true},
	gputypes.VertexFormatSint16x2:     {2, gl.SHORT, false, true},
	gputypes.VertexFormatSint16x4:     {4, gl.SHORT, false, true},
	gputypes.VertexFormatUnorm16x2:    {2, gl.UNSIGNED_SHORT, true, false},
	gputypes.VertexFormatUnorm16x4:    {4, gl.UNSIGNED_SHORT, true, false},
	gputypes.VertexFormatSnorm16x2:    {2, gl.SHORT, true, false},
	gputypes.VertexFormatSnorm16x4:    {4, gl.SHORT, true, false},
	gputypes.VertexFormatFloat16x2:    {2, gl.HALF_FLOAT, false, false},
	gputypes.VertexFormatFloat16x4:    {4, gl.HALF_FLOAT, false, false},
	gputypes.VertexFormatFloat32:      {1, gl.FLOAT, false, false},
	gputypes.VertexFormatFloat32x2:    {2, gl.FLOAT, false, false},
	gputypes.VertexFormatFloat32x3:    {3, gl.FLOAT, false, false},
	gputypes.VertexFormatFloat32x4:    {4, gl.FLOAT, false, false},
	gputypes.VertexFormatUint32:       {1, gl.UNSIGNED_INT, false, true},
	gputypes.VertexFormatUint32x2:     {2, gl.UNSIGNED_INT, false, true},
	gputypes.VertexFormatUint32x3:     {3, gl.UNSIGNED_INT, false, true},
	gputypes.VertexFormatUint32x4:     {4, gl.UNSIGNED_INT, false, true},
	gputypes.VertexFormatSint32:       {1, gl.INT, false, true},
	gputypes.VertexFormatSint32x2:     {2, gl.INT, false, true},
	gputypes.VertexFormatSint32x3:     {3, gl.INT, false, true},
	gputypes.VertexFormatSint32x4:     {4, gl.INT, false, true},
	gputypes.VertexFormatUnorm1010102: {4, UNSIGNED_INT_2_10_10_10_REV, true, false},
}

// VertexFormat returns the attribute layout of f.
func VertexFormat(f gputypes.VertexFormat) (VertexInfo, bool) {
	e, ok := vertexFormats[f]
	if !ok {
		return VertexInfo{}, false
	}
	return VertexInfo{
		Size:       e.size,
		Type:       e.typ,
		Normalized: e.normalized,
		Integer:    e.integer,
		Bytes:      int(f.Size()),
	}, true
}

// ImageInfo describes the storage of a texture format.
type ImageInfo struct {
	// Internal is the sized internal format passed to glTexImage* and
	// glRenderbufferStorage.
	Internal uint32
	// Format and Type describe client pixel data.
	Format uint32
	Type   uint32
	// PixelSize is the size of one texel in bytes.
	PixelSize int

	Color   bool
	Depth   bool
	Stencil bool
	Integer bool
}

type imageEntry struct {
	internal, format, typ uint32
	pixelSize             int
	integer               bool
}

var imageFormats = map[gputypes.TextureFormat]imageEntry{
	gputypes.TextureFormatR8Unorm:     {gl.R8, gl.RED, gl.UNSIGNED_BYTE, 1, false},
	gputypes.TextureFormatR8Snorm:     {R8_SNORM, gl.RED, gl.BYTE, 1, false},
	gputypes.TextureFormatR8Uint:      {gl.R8UI, gl.RED_INTEGER, gl.UNSIGNED_BYTE, 1, true},
	gputypes.TextureFormatR8Sint:      {gl.R8I, gl.RED_INTEGER, gl.BYTE, 1, true},
	gputypes.TextureFormatR16Unorm:    {R16, gl.RED, gl.UNSIGNED_SHORT, 2, false},
	gputypes.TextureFormatR16Snorm:    {R16_SNORM, gl.RED, gl.SHORT, 2, false},
	gputypes.TextureFormatR16Uint:     {gl.R16UI, gl.RED_INTEGER, gl.UNSIGNED_SHORT, 2, true},
	gputypes.TextureFormatR16Sint:     {gl.R16I, gl.RED_INTEGER, gl.SHORT, 2, true},
	gputypes.TextureFormatR16Float:    {gl.R16F, gl.RED, gl.HALF_FLOAT, 2, false},
	gputypes.TextureFormatRG8Unorm:    {gl.RG8, gl.RG, gl.UNSIGNED_BYTE, 2, false},
	gputypes.TextureFormatRG8Snorm:    {RG8_SNORM, gl.RG, gl.BYTE, 2, false},
	gputypes.TextureFormatRG8Uint:     {gl.RG8UI, gl.RG_INTEGER, gl.UNSIGNED_BYTE, 2, true},
	gputypes.TextureFormatRG8Sint:     {gl.RG8I, gl.RG_INTEGER, gl.BYTE, 2, true},
	gputypes.TextureFormatR32Float:    {gl.R32F, gl.RED, gl.FLOAT, 4, false},
	gputypes.TextureFormatR32Uint:     {gl.R32UI, gl.RED_INTEGER, gl.UNSIGNED_INT, 4, true},
	gputypes.TextureFormatR32Sint:     {gl.R32I, gl.RED_INTEGER, gl.INT, 4, true},
	gputypes.TextureFormatRG16Unorm:   {RG16, gl.RG, gl.UNSIGNED_SHORT, 4, false},
	gputypes.TextureFormatRG16Snorm:   {RG16_SNORM, gl.RG, gl.SHORT, 4, false},
	gputypes.TextureFormatRG16Uint:    {gl.RG16UI, gl.RG_INTEGER, gl.UNSIGNED_SHORT, 4, true},
	gputypes.TextureFormatRG16Sint:    {gl.RG16I, gl.RG_INTEGER, gl.SHORT, 4, true},
	gputypes.TextureFormatRG16Float:   {gl.RG16F, gl.RG, gl.HALF_FLOAT, 4, false},
	gputypes.TextureFormatRGBA8Unorm:  {gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, 4, false},
	gputypes.TextureFormatRGBA8Snorm:  {RGBA8_SNORM, gl.RGBA, gl.BYTE, 4, false},
	gputypes.TextureFormatRGBA8Uint:   {gl.RGBA8UI, gl.RGBA_INTEGER, gl.UNSIGNED_BYTE, 4, true},
	gputypes.TextureFormatRGBA8Sint:   {gl.RGBA8I, gl.RGBA_INTEGER, gl.BYTE, 4, true},
	gputypes.TextureFormatBGRA8Unorm:  {gl.RGBA8, gl.BGRA, gl.UNSIGNED_BYTE, 4, false},
	gputypes.TextureFormatRG32Float:   {gl.RG32F, gl.RG, gl.FLOAT, 8, false},
	gputypes.TextureFormatRG32Uint:    {gl.RG32UI, gl.RG_INTEGER, gl.UNSIGNED_INT, 8, true},
	gputypes.TextureFormatRG32Sint:    {gl.RG32I, gl.RG_INTEGER, gl.INT, 8, true},
	gputypes.TextureFormatRGBA16Unorm: {RGBA16, gl.RGBA, gl.UNSIGNED_SHORT, 8, false},
	gputypes.TextureFormatRGBA16Snorm: {RGBA16_SNORM, gl.RGBA, gl.SHORT, 8, false},
	gputypes.TextureFormatRGBA16Uint:  {gl.RGBA16UI, gl.RGBA_INTEGER, gl.UNSIGNED_SHORT, 8, true},
	gputypes.TextureFormatRGBA16Sint:  {gl.RGBA16I, gl.RGBA_INTEGER, gl.SHORT, 8, true},
	gputypes.TextureFormatRGBA16Float: {gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT, 8, false},
	gputypes.TextureFormatRGBA32Float: {gl.RGBA32F, gl.RGBA, gl.FLOAT, 16, false},
	gputypes.TextureFormatRGBA32Uint:  {gl.RGBA32UI, gl.RGBA_INTEGER, gl.UNSIGNED_INT, 16, true},
	gputypes.TextureFormatRGBA32Sint:  {gl.RGBA32I, gl.RGBA_INTEGER, gl.INT, 16, true},

	gputypes.TextureFormatRGBA8UnormSrgb: {gl.SRGB8_ALPHA8, gl.RGBA, gl.UNSIGNED_BYTE, 4, false},
	gputypes.TextureFormatBGRA8UnormSrgb: {gl.SRGB8_ALPHA8, gl.BGRA, gl.UNSIGNED_BYTE, 4, false},
	gputypes.TextureFormatRGB10A2Uint:    {RGB10_A2UI, gl.RGBA_INTEGER, UNSIGNED_INT_2_10_10_10_REV, 4, true},
	gputypes.TextureFormatRGB10A2Unorm:   {RGB10_A2, gl.RGBA, UNSIGNED_INT_2_10_10_10_REV, 4, false},
	gputypes.TextureFormatRG11B10Ufloat:  {R11F_G11F_B10F, gl.RGB, UNSIGNED_INT_10F_11F_11F_REV, 4, false},
	gputypes.TextureFormatRGB9E5Ufloat:   {RGB9_E5, gl.RGB, UNSIGNED_INT_5_9_9_9_REV, 4, false},

	gputypes.TextureFormatStencil8:             {STENCIL_INDEX8, STENCIL_INDEX, gl.UNSIGNED_BYTE, 1, false},
	gputypes.TextureFormatDepth16Unorm:         {gl.DEPTH_COMPONENT16, gl.DEPTH_COMPONENT, gl.UNSIGNED_SHORT, 2, false},
	gputypes.TextureFormatDepth24Plus:          {gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT, 4, false},
	gputypes.TextureFormatDepth24PlusStencil8:  {gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8, 4, false},
	gputypes.TextureFormatDepth32Float:         {DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT, 4, false},
	gputypes.TextureFormatDepth32FloatStencil8: {gl.DEPTH32F_STENCIL8, gl.DEPTH_STENCIL, FLOAT_32_UNSIGNED_INT_24_8_REV, 8, false},
}

// ImageFormat returns the storage description of f. Compressed formats
// are not supported.
func ImageFormat(f gputypes.TextureFormat) (ImageInfo, bool) {
	e, ok := imageFormats[f]
	if !ok {
		return ImageInfo{}, false
	}
	return ImageInfo{
		Internal:  e.internal,
		Format:    e.format,
		Type:      e.typ,
		PixelSize: e.pixelSize,
		Color:     !f.IsDepthStencil(),
		Depth:     f.HasDepth(),
		Stencil:   f.HasStencil(),
		Integer:   e.integer,
	}, true
}

// Attachment returns the framebuffer attachment point for a depth or
// stencil format.
func (i ImageInfo) Attachment() uint32 {
	switch {
	case i.Depth && i.Stencil:
		return gl.DEPTH_STENCIL_ATTACHMENT
	case i.Stencil:
		return gl.STENCIL_ATTACHMENT
	case i.Depth:
		return gl.DEPTH_ATTACHMENT
	default:
		return gl.COLOR_ATTACHMENT0
	}
}
