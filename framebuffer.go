package glcache

import (
	"runtime"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// MaxColorAttachments is the largest number of color attachments of one
// framebuffer.
const MaxColorAttachments = 8

// Attachment selects one layer and mip level of an image.
type Attachment struct {
	Image *Image
	Layer int
	Level int
}

// FramebufferDescriptor describes a framebuffer. A zero Width and Height
// are taken from the attachments.
type FramebufferDescriptor struct {
	Width, Height int
	Color         []Attachment
	Depth         *Attachment
}

type faceKey struct {
	image        *Handle
	layer, level int32
}

type framebufferKey struct {
	width, height int32
	color         [MaxColorAttachments]faceKey
	colorCount    uint8
	depth         faceKey
}

// framebufferPlan is a validated descriptor.
type framebufferPlan struct {
	key   framebufferKey
	color []faceKey
	depth faceKey
	// depthAttachment is the attachment point of the depth image.
	depthAttachment uint32
}

// Framebuffer returns the cached framebuffer for desc, creating it on a
// miss. The handle carries one use; give it back with ReleaseFramebuffer.
func (c *Context) Framebuffer(desc FramebufferDescriptor) (*Handle, error) {
	plan, err := c.planFramebuffer(desc)
	if err != nil {
		return nil, err
	}
	h, err := getOrCreate(c, c.framebuffers, plan.key, createOps[*Handle]{
		kind:    "framebuffer",
		build:   func() (*Handle, error) { return c.buildFramebufferLocked(plan) },
		discard: c.discardHandle,
	})
	runtime.KeepAlive(desc)
	return h, err
}

// ReleaseFramebuffer gives back one use of a framebuffer.
func (c *Context) ReleaseFramebuffer(h *Handle) error {
	if err := c.checkHandle(h, ObjectFramebuffer); err != nil {
		return err
	}
	return c.releaseHandle(h, c.syncMode())
}

func (c *Context) planFramebuffer(desc FramebufferDescriptor) (framebufferPlan, error) {
	var plan framebufferPlan
	maxColor := min(MaxColorAttachments, c.info.Limits.MaxColorAttachments)
	if len(desc.Color) > maxColor {
		return plan, invalidf("%d color attachments, max %d", len(desc.Color), maxColor)
	}
	if len(desc.Color) == 0 && desc.Depth == nil {
		return plan, invalidf("framebuffer without attachments")
	}
	if desc.Width < 0 || desc.Height < 0 {
		return plan, invalidf("framebuffer size %dx%d", desc.Width, desc.Height)
	}

	width, height, samples := desc.Width, desc.Height, 0
	check := func(a Attachment, what string) (faceKey, error) {
		if err := c.checkImage(a.Image); err != nil {
			return faceKey{}, err
		}
		img := a.Image
		if a.Layer < 0 || a.Layer >= img.layers || a.Level < 0 || a.Level >= img.levels {
			return faceKey{}, invalidf("%s attachment face %d/%d out of range", what, a.Layer, a.Level)
		}
		w, h := img.levelSize(a.Level)
		if width == 0 && height == 0 {
			width, height = w, h
		}
		if w != width || h != height {
			return faceKey{}, invalidf("%s attachment is %dx%d, framebuffer is %dx%d", what, w, h, width, height)
		}
		if samples == 0 {
			samples = img.samples
		}
		if img.samples != samples {
			return faceKey{}, invalidf("%s attachment has %d samples, want %d", what, img.samples, samples)
		}
		return faceKey{image: img.h, layer: int32(a.Layer), level: int32(a.Level)}, nil
	}

	for i, a := range desc.Color {
		fk, err := check(a, "color")
		if err != nil {
			return plan, err
		}
		if !a.Image.info.Color {
			return plan, invalidf("color attachment %d has depth format %s", i, a.Image.desc.Format)
		}
		plan.key.color[i] = fk
		plan.color = append(plan.color, fk)
	}
	plan.key.colorCount = uint8(len(desc.Color))
	if desc.Depth != nil {
		fk, err := check(*desc.Depth, "depth")
		if err != nil {
			return plan, err
		}
		if desc.Depth.Image.info.Color {
			return plan, invalidf("depth attachment has color format %s", desc.Depth.Image.desc.Format)
		}
		plan.key.depth = fk
		plan.depth = fk
		plan.depthAttachment = desc.Depth.Image.info.Attachment()
	}
	plan.key.width, plan.key.height = int32(width), int32(height)
	return plan, nil
}

func (c *Context) buildFramebufferLocked(plan framebufferPlan) (*Handle, error) {
	deps := make([]*Handle, 0, len(plan.color)+1)
	for _, fk := range plan.color {
		deps = append(deps, fk.image)
	}
	if plan.depth.image != nil {
		deps = append(deps, plan.depth.image)
	}
	if err := c.acquireAll(deps, releaseLocked); err != nil {
		return nil, err
	}

	id := c.drv.GenFramebuffer()
	if id == 0 {
		for _, d := range deps {
			_ = c.releaseHandle(d, releaseLocked)
		}
		return nil, ErrCreateFailed
	}

	savedDraw, savedRead := c.shadow.drawFB, c.shadow.readFB
	c.bindDrawFramebufferLocked(id)
	c.bindReadFramebufferLocked(id)

	buffers := make([]uint32, len(plan.color))
	for i, fk := range plan.color {
		buffers[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
		c.attachLocked(buffers[i], fk)
	}
	if plan.depth.image != nil {
		c.attachLocked(plan.depthAttachment, plan.depth)
	}
	if len(buffers) > 0 {
		c.drv.DrawBuffers(buffers)
		c.drv.ReadBuffer(gl.COLOR_ATTACHMENT0)
	} else {
		c.drv.DrawBuffers([]uint32{backend.NONE})
		c.drv.ReadBuffer(backend.NONE)
	}
	c.restoreFramebuffersLocked(savedDraw, savedRead)

	h := newHandle(c.trash, id, ObjectFramebuffer)
	h.deps = deps
	return h, nil
}

func (c *Context) attachLocked(attachment uint32, fk faceKey) {
	img := fk.image
	switch {
	case img.typ == ObjectRenderbuffer:
		c.drv.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachment, gl.RENDERBUFFER, img.id)
	case img.target == gl.TEXTURE_CUBE_MAP:
		c.drv.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(fk.layer), img.id, fk.level)
	case img.target == gl.TEXTURE_2D_ARRAY:
		c.drv.FramebufferTextureLayer(gl.FRAMEBUFFER, attachment, img.id, fk.level, fk.layer)
	default:
		c.drv.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, img.id, fk.level)
	}
}
