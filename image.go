package glcache

import (
	"errors"
	"math/bits"
	"runtime"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/glcache/cache"
	"github.com/gogpu/glcache/glenum"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// MaxSamples is the largest accepted sample count.
const MaxSamples = 16

// ImageDescriptor describes a texture or renderbuffer.
type ImageDescriptor struct {
	Width, Height int
	Format        gputypes.TextureFormat
	// Samples is the sample count. Values above 1 create a
	// multisampled renderbuffer.
	Samples int
	// Array is the layer count of an array texture, 0 for none.
	Array   int
	Cubemap bool
	// Renderbuffer requests a renderbuffer even for single-sampled
	// images.
	Renderbuffer bool
	// Levels is the mip level count. 0 means one level and a negative
	// value the full chain.
	Levels int
}

// Image is a texture or renderbuffer together with the framebuffers of
// its faces.
type Image struct {
	ctx     *Context
	h       *Handle
	desc    ImageDescriptor
	info    glenum.ImageInfo
	samples int
	levels  int
	layers  int

	faces *cache.Map[faceIndex, *ImageFace]

	// clear is guarded by ctx.mu.
	clear ClearValue

	refs    *refs
	cleanup runtime.Cleanup
}

// ClearValue is the value Clear writes. Float color formats use Color,
// signed and unsigned integer formats use Int and Uint, and depth and
// stencil formats use Depth and Stencil.
type ClearValue struct {
	Color   [4]float32
	Int     [4]int32
	Uint    [4]uint32
	Depth   float32
	Stencil int32
}

type faceIndex struct {
	layer, level int
}

// NewImage allocates an image with undefined contents.
func (c *Context) NewImage(desc ImageDescriptor) (*Image, error) {
	img, err := c.validateImage(desc)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return nil, err
	}
	var h *Handle
	if desc.Renderbuffer || img.samples > 1 {
		h, err = c.createRenderbufferLocked(img)
	} else {
		h, err = c.createTextureLocked(img)
	}
	if err != nil {
		return nil, err
	}

	img.h = h
	img.refs = &refs{c: c, handles: []*Handle{h}}
	img.cleanup = track(img, img.refs)
	Logger().Debug("glcache: image created",
		"type", h.typ, "id", h.id,
		"width", desc.Width, "height", desc.Height,
		"format", desc.Format.String(), "samples", img.samples, "levels", img.levels)
	return img, nil
}

func (c *Context) validateImage(desc ImageDescriptor) (*Image, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, invalidf("image size %dx%d", desc.Width, desc.Height)
	}
	info, ok := glenum.ImageFormat(desc.Format)
	if !ok {
		return nil, invalidf("image format %s", desc.Format)
	}
	samples := max(desc.Samples, 1)
	if samples > MaxSamples || samples&(samples-1) != 0 {
		return nil, invalidf("sample count %d", desc.Samples)
	}
	if desc.Array < 0 {
		return nil, invalidf("array layers %d", desc.Array)
	}
	if desc.Cubemap && desc.Array > 0 {
		return nil, invalidf("cubemap array images are not supported")
	}
	if desc.Cubemap && desc.Width != desc.Height {
		return nil, invalidf("cubemap faces must be square, got %dx%d", desc.Width, desc.Height)
	}

	maxLevels := bits.Len(uint(max(desc.Width, desc.Height)))
	levels := desc.Levels
	switch {
	case levels == 0:
		levels = 1
	case levels < 0:
		levels = maxLevels
	case levels > maxLevels:
		return nil, invalidf("%d levels for a %dx%d image, max %d", levels, desc.Width, desc.Height, maxLevels)
	}

	if desc.Renderbuffer || samples > 1 {
		if desc.Cubemap || desc.Array > 0 || levels > 1 {
			return nil, invalidf("renderbuffers have one layer and one level")
		}
		samples = min(samples, c.info.Limits.MaxSamples)
	}

	layers := 1
	switch {
	case desc.Cubemap:
		layers = 6
	case desc.Array > 0:
		layers = desc.Array
	}
	img := &Image{
		ctx:     c,
		desc:    desc,
		info:    info,
		samples: samples,
		levels:  levels,
		layers:  layers,
		faces:   cache.New[faceIndex, *ImageFace](cache.ComparableHasher[faceIndex]()),
	}
	if info.Depth {
		img.clear.Depth = 1
	}
	return img, nil
}

func (c *Context) createRenderbufferLocked(img *Image) (*Handle, error) {
	id := c.drv.GenRenderbuffer()
	if id == 0 {
		return nil, ErrCreateFailed
	}
	samples := img.samples
	if samples == 1 {
		samples = 0
	}
	c.drv.BindRenderbuffer(id)
	c.drv.RenderbufferStorage(img.info.Internal, int32(samples), int32(img.desc.Width), int32(img.desc.Height))

	h := newHandle(c.trash, id, ObjectRenderbuffer)
	h.target = gl.RENDERBUFFER
	return h, nil
}

func (c *Context) createTextureLocked(img *Image) (*Handle, error) {
	id := c.drv.GenTexture()
	if id == 0 {
		return nil, ErrCreateFailed
	}
	target := uint32(gl.TEXTURE_2D)
	switch {
	case img.desc.Cubemap:
		target = gl.TEXTURE_CUBE_MAP
	case img.desc.Array > 0:
		target = gl.TEXTURE_2D_ARRAY
	}

	// Texture creation disturbs unit 0 of the bound descriptor set.
	c.shadow.set = nil
	c.drv.ActiveTexture(gl.TEXTURE0)
	c.drv.BindTexture(target, id)
	c.drv.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	c.drv.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	c.drv.TexParameteri(target, gl.TEXTURE_MAX_LEVEL, int32(img.levels-1))

	f := img.info
	for level := range img.levels {
		w, h := img.levelSize(level)
		switch target {
		case gl.TEXTURE_CUBE_MAP:
			for face := range uint32(6) {
				c.drv.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face, int32(level), int32(f.Internal), int32(w), int32(h), f.Format, f.Type)
			}
		case gl.TEXTURE_2D_ARRAY:
			c.drv.TexImage3D(target, int32(level), int32(f.Internal), int32(w), int32(h), int32(img.layers), f.Format, f.Type)
		default:
			c.drv.TexImage2D(target, int32(level), int32(f.Internal), int32(w), int32(h), f.Format, f.Type)
		}
	}

	h := newHandle(c.trash, id, ObjectTexture)
	h.target = target
	return h, nil
}

func (img *Image) levelSize(level int) (width, height int) {
	return max(img.desc.Width>>level, 1), max(img.desc.Height>>level, 1)
}

// Object returns the texture or renderbuffer.
func (img *Image) Object() Object { return objectOf(img.h) }

// Descriptor returns the descriptor the image was created with.
func (img *Image) Descriptor() ImageDescriptor { return img.desc }

// Size returns the size of level 0.
func (img *Image) Size() (width, height int) { return img.desc.Width, img.desc.Height }

// Samples returns the effective sample count.
func (img *Image) Samples() int { return img.samples }

// Levels returns the mip level count.
func (img *Image) Levels() int { return img.levels }

// Layers returns 6 for cubemaps, the layer count for array textures and
// 1 otherwise.
func (img *Image) Layers() int { return img.layers }

// Renderbuffer reports whether the image is a renderbuffer.
func (img *Image) Renderbuffer() bool { return img.h.typ == ObjectRenderbuffer }

// Released reports whether Release was called.
func (img *Image) Released() bool { return img.refs.released() }

// Face returns the framebuffer view of one layer and level. Faces are
// created on first use and live as long as the image.
func (img *Image) Face(layer, level int) (*ImageFace, error) {
	if img.refs.released() {
		return nil, ErrHandleReleased
	}
	if layer < 0 || layer >= img.layers || level < 0 || level >= img.levels {
		return nil, invalidf("face %d/%d outside %d layers and %d levels", layer, level, img.layers, img.levels)
	}
	idx := faceIndex{layer: layer, level: level}
	if f, ok := img.faces.Load(idx); ok {
		return f, nil
	}

	att := Attachment{Image: img, Layer: layer, Level: level}
	desc := FramebufferDescriptor{}
	if img.info.Color {
		desc.Color = []Attachment{att}
	} else {
		desc.Depth = &att
	}
	fb, err := img.ctx.Framebuffer(desc)
	if err != nil {
		return nil, err
	}

	w, h := img.levelSize(level)
	f := &ImageFace{
		image:  img,
		layer:  layer,
		level:  level,
		width:  w,
		height: h,
		fb:     fb,
		refs:   &refs{c: img.ctx, handles: []*Handle{fb}},
	}
	if prev, loaded := img.faces.LoadOrStore(idx, f); loaded {
		_ = f.refs.release(img.ctx.syncMode())
		return prev, nil
	}
	// Release marks the image before it walks the faces, so a face
	// stored after that walk is seen here.
	if img.refs.released() {
		img.faces.CompareAndDelete(idx, f)
		_ = f.release(img.ctx.syncMode())
		return nil, ErrHandleReleased
	}
	f.cleanup = track(f, f.refs)
	return f, nil
}

// Release gives the image and its faces back.
func (img *Image) Release() error {
	img.cleanup.Stop()
	mode := img.ctx.syncMode()
	err := img.refs.release(mode)
	if errors.Is(err, ErrHandleReleased) {
		return err
	}

	errs := []error{err}
	img.faces.Range(func(_ faceIndex, f *ImageFace) bool {
		errs = append(errs, f.release(mode))
		return true
	})
	img.faces.Clear()
	return errors.Join(errs...)
}

// ClearValue returns the value Clear writes.
func (img *Image) ClearValue() ClearValue {
	img.ctx.mu.Lock()
	defer img.ctx.mu.Unlock()
	return img.clear
}

// SetClearValue replaces the value Clear writes. Depth images start
// with a depth of 1, every other value starts at zero.
func (img *Image) SetClearValue(v ClearValue) {
	img.ctx.mu.Lock()
	img.clear = v
	img.ctx.mu.Unlock()
}

// Clear clears level 0 of every layer to the clear value.
func (img *Image) Clear() error {
	if img.refs.released() {
		return ErrHandleReleased
	}
	faces := make([]*ImageFace, 0, img.layers)
	for layer := range img.layers {
		f, err := img.Face(layer, 0)
		if err != nil {
			return err
		}
		faces = append(faces, f)
	}
	return img.ctx.clearFaces(img, faces)
}

// clearFaces clears each face through its framebuffer and restores the
// draw framebuffer binding.
func (c *Context) clearFaces(img *Image, faces []*ImageFace) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	prev := c.shadow.drawFB
	defer c.restoreFramebuffersLocked(prev, -1)
	for _, f := range faces {
		if f.refs.released() {
			return ErrHandleReleased
		}
		c.bindDrawFramebufferLocked(f.fb.id)
		c.clearBoundLocked(img)
	}
	runtime.KeepAlive(faces)
	return nil
}

// clearBoundLocked clears the attachment of img in the bound draw
// framebuffer. Caller must hold c.mu.
func (c *Context) clearBoundLocked(img *Image) {
	info, v := img.info, img.clear
	c.unmaskLocked(info.Depth, info.Stencil)
	switch {
	case info.Depth && info.Stencil:
		c.drv.ClearBufferfi(gl.DEPTH_STENCIL, 0, v.Depth, v.Stencil)
	case info.Depth:
		c.drv.ClearBufferfv(backend.DEPTH, 0, [4]float32{v.Depth})
	case info.Stencil:
		c.drv.ClearBufferiv(backend.STENCIL, 0, [4]int32{v.Stencil})
	case info.Integer && unsignedType(info.Type):
		c.drv.ClearBufferuiv(backend.COLOR, 0, v.Uint)
	case info.Integer:
		c.drv.ClearBufferiv(backend.COLOR, 0, v.Int)
	default:
		c.drv.ClearBufferfv(backend.COLOR, 0, v.Color)
	}
}

func unsignedType(typ uint32) bool {
	switch typ {
	case gl.UNSIGNED_BYTE, gl.UNSIGNED_SHORT, gl.UNSIGNED_INT, glenum.UNSIGNED_INT_2_10_10_10_REV:
		return true
	}
	return false
}

func (c *Context) checkImage(img *Image) error {
	switch {
	case img == nil:
		return invalidf("nil image")
	case img.ctx != c:
		return ErrForeignObject
	case img.refs.released():
		return ErrHandleReleased
	}
	return nil
}

// ImageFace is one layer and level of an image with its framebuffer.
type ImageFace struct {
	image         *Image
	layer, level  int
	width, height int
	fb            *Handle

	refs    *refs
	cleanup runtime.Cleanup
}

// Image returns the owning image.
func (f *ImageFace) Image() *Image { return f.image }

// Layer returns the layer index.
func (f *ImageFace) Layer() int { return f.layer }

// Level returns the mip level.
func (f *ImageFace) Level() int { return f.level }

// Size returns the size of the face's level.
func (f *ImageFace) Size() (width, height int) { return f.width, f.height }

// Framebuffer returns the face's framebuffer.
func (f *ImageFace) Framebuffer() Object { return objectOf(f.fb) }

// Clear clears the face to its image's clear value.
func (f *ImageFace) Clear() error {
	if f.refs.released() || f.image.refs.released() {
		return ErrHandleReleased
	}
	return f.image.ctx.clearFaces(f.image, []*ImageFace{f})
}

func (f *ImageFace) attachment() Attachment {
	return Attachment{Image: f.image, Layer: f.layer, Level: f.level}
}

func (f *ImageFace) release(mode releaseMode) error {
	f.cleanup.Stop()
	err := f.refs.release(mode)
	if errors.Is(err, ErrHandleReleased) {
		return nil
	}
	return err
}
