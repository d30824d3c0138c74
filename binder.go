package glcache

import (
	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// Viewport is a window-space rectangle.
type Viewport struct {
	X, Y, Width, Height int32
}

var unknownViewport = Viewport{-1, -1, -1, -1}

type toggle int8

const (
	toggleUnknown toggle = iota
	toggleOff
	toggleOn
)

type feature uint8

const (
	featureCullFace feature = iota
	featureDepthTest
	featureStencilTest
	featureBlend
	featurePrimitiveRestart
	featureProgramPointSize
	featureSeamlessCubeMap
	featureCount
)

var featureCaps = [featureCount]uint32{
	featureCullFace:         gl.CULL_FACE,
	featureDepthTest:        gl.DEPTH_TEST,
	featureStencilTest:      gl.STENCIL_TEST,
	featureBlend:            gl.BLEND,
	featurePrimitiveRestart: backend.PRIMITIVE_RESTART_FIXED_INDEX,
	featureProgramPointSize: backend.PROGRAM_POINT_SIZE,
	featureSeamlessCubeMap:  backend.TEXTURE_CUBE_MAP_SEAMLESS,
}

// shadowState mirrors the driver bindings so repeated binds are free.
// Handle slots use -1 for "unknown". The shadow holds no references: a
// pointer slot naming a dead set or settings block is never equal to a
// live one.
type shadowState struct {
	program     int64
	vertexArray int64
	readFB      int64
	drawFB      int64
	viewport    Viewport

	set      *DescriptorSet
	settings *GlobalSettings

	toggles     [featureCount]toggle
	depthMask   int8
	stencilMask int64
}

func (s *shadowState) reset() {
	s.program = -1
	s.vertexArray = -1
	s.readFB = -1
	s.drawFB = -1
	s.viewport = unknownViewport
	s.set = nil
	s.settings = nil
	s.toggles = [featureCount]toggle{}
	s.depthMask = -1
	s.stencilMask = -1
}

func (s *shadowState) forget(slot *int64, id uint32) {
	if *slot == int64(id) {
		*slot = -1
	}
}

func (s *shadowState) forgetFramebuffer(id uint32) {
	if s.drawFB == int64(id) || s.readFB == int64(id) {
		s.forget(&s.drawFB, id)
		s.forget(&s.readFB, id)
		s.viewport = unknownViewport
	}
}

func (c *Context) bindProgramLocked(id uint32) {
	if c.shadow.program != int64(id) {
		c.shadow.program = int64(id)
		c.drv.UseProgram(id)
	}
}

func (c *Context) bindVertexArrayLocked(id uint32) {
	if c.shadow.vertexArray != int64(id) {
		c.shadow.vertexArray = int64(id)
		c.drv.BindVertexArray(id)
	}
}

func (c *Context) bindReadFramebufferLocked(id uint32) {
	if c.shadow.readFB != int64(id) {
		c.shadow.readFB = int64(id)
		c.drv.BindFramebuffer(gl.READ_FRAMEBUFFER, id)
	}
}

func (c *Context) bindDrawFramebufferLocked(id uint32) {
	if c.shadow.drawFB != int64(id) {
		c.shadow.drawFB = int64(id)
		c.drv.BindFramebuffer(gl.DRAW_FRAMEBUFFER, id)
	}
}

func (c *Context) bindViewportLocked(v Viewport) {
	if c.shadow.viewport != v {
		c.shadow.viewport = v
		c.drv.Viewport(v.X, v.Y, v.Width, v.Height)
	}
}

func (c *Context) setFeatureLocked(f feature, on bool) {
	want := toggleOff
	if on {
		want = toggleOn
	}
	if c.shadow.toggles[f] == want {
		return
	}
	c.shadow.toggles[f] = want
	if on {
		c.drv.Enable(featureCaps[f])
	} else {
		c.drv.Disable(featureCaps[f])
	}
}

func (c *Context) setDepthMaskLocked(write bool) {
	var want int8
	if write {
		want = 1
	}
	if c.shadow.depthMask != want {
		c.shadow.depthMask = want
		c.drv.DepthMask(write)
	}
}

// unmaskLocked enables depth and stencil writes before a clear. The
// bound settings block no longer matches the masks afterwards, so it is
// dropped from the shadow.
func (c *Context) unmaskLocked(depth, stencil bool) {
	if depth && c.shadow.depthMask != 1 {
		c.shadow.settings = nil
		c.setDepthMaskLocked(true)
	}
	if stencil && c.shadow.stencilMask != 0xff {
		c.shadow.settings = nil
		c.drv.StencilMaskSeparate(gl.FRONT, 0xff)
		c.shadow.stencilMask = 0xff
	}
}

// restoreProgramLocked rebinds a saved program slot if it was known.
func (c *Context) restoreProgramLocked(saved int64) {
	if saved >= 0 {
		c.bindProgramLocked(uint32(saved))
	}
}

func (c *Context) restoreVertexArrayLocked(saved int64) {
	if saved >= 0 {
		c.bindVertexArrayLocked(uint32(saved))
	}
}

func (c *Context) restoreFramebuffersLocked(draw, read int64) {
	if draw >= 0 {
		c.bindDrawFramebufferLocked(uint32(draw))
	}
	if read >= 0 {
		c.bindReadFramebufferLocked(uint32(read))
	}
}

func (c *Context) bindGlobalSettingsLocked(s *GlobalSettings) {
	if c.shadow.settings == s {
		return
	}
	c.shadow.settings = s

	c.setFeatureLocked(featureCullFace, s.cullFace != 0)
	if s.cullFace != 0 {
		c.drv.CullFace(s.cullFace)
	}

	c.setFeatureLocked(featureDepthTest, s.depth.enabled)
	if s.depth.enabled {
		c.drv.DepthFunc(s.depth.compare)
		c.setDepthMaskLocked(s.depth.write)
	}

	c.setFeatureLocked(featureStencilTest, s.stencil.enabled)
	if s.stencil.enabled {
		front, back := &s.stencil.front, &s.stencil.back
		c.drv.StencilMaskSeparate(gl.FRONT, front.writeMask)
		c.drv.StencilMaskSeparate(gl.BACK, back.writeMask)
		c.drv.StencilFuncSeparate(gl.FRONT, front.compare, front.reference, front.compareMask)
		c.drv.StencilFuncSeparate(gl.BACK, back.compare, back.reference, back.compareMask)
		c.drv.StencilOpSeparate(gl.FRONT, front.fail, front.depthFail, front.pass)
		c.drv.StencilOpSeparate(gl.BACK, back.fail, back.depthFail, back.pass)
		c.shadow.stencilMask = int64(front.writeMask)
	}

	c.setFeatureLocked(featureBlend, s.blend.enabled)
	if s.blend.enabled {
		b := &s.blend
		c.drv.BlendEquationSeparate(b.opColor, b.opAlpha)
		c.drv.BlendFuncSeparate(b.srcColor, b.dstColor, b.srcAlpha, b.dstAlpha)
	}
}

func (c *Context) bindDescriptorSetLocked(s *DescriptorSet) {
	if c.shadow.set == s {
		return
	}
	c.shadow.set = s

	for _, b := range s.uniform {
		c.drv.BindBufferRange(gl.UNIFORM_BUFFER, uint32(b.index), b.buffer.id, b.offset, b.size)
	}
	for _, b := range s.storage {
		c.drv.BindBufferRange(gl.SHADER_STORAGE_BUFFER, uint32(b.index), b.buffer.id, b.offset, b.size)
	}
	for _, b := range s.samplers {
		c.drv.ActiveTexture(gl.TEXTURE0 + uint32(b.index))
		c.drv.BindTexture(b.image.target, b.image.id)
		c.drv.BindSampler(uint32(b.index), b.sampler.id)
	}
}

// BindProgram makes h the current program. A nil handle unbinds.
func (c *Context) BindProgram(h *Handle) error {
	id, err := c.bindable(h, ObjectProgram)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.bindProgramLocked(id)
	return nil
}

// BindVertexArray makes h the current vertex array. A nil handle unbinds.
func (c *Context) BindVertexArray(h *Handle) error {
	id, err := c.bindable(h, ObjectVertexArray)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.bindVertexArrayLocked(id)
	return nil
}

// BindReadFramebuffer binds h for reading. A nil handle selects the
// default framebuffer.
func (c *Context) BindReadFramebuffer(h *Handle) error {
	id, err := c.bindableFramebuffer(h)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.bindReadFramebufferLocked(id)
	return nil
}

// BindDrawFramebuffer binds h for drawing. A nil handle selects the
// default framebuffer.
func (c *Context) BindDrawFramebuffer(h *Handle) error {
	id, err := c.bindableFramebuffer(h)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.bindDrawFramebufferLocked(id)
	return nil
}

// BindViewport sets the viewport.
func (c *Context) BindViewport(v Viewport) error {
	if v.Width < 0 || v.Height < 0 {
		return invalidf("negative viewport size %dx%d", v.Width, v.Height)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.bindViewportLocked(v)
	return nil
}

// BindDescriptorSet binds every buffer range, texture and sampler of s.
func (c *Context) BindDescriptorSet(s *DescriptorSet) error {
	if s == nil {
		return invalidf("nil descriptor set")
	}
	if s.ctx != c {
		return ErrForeignObject
	}
	if s.Uses() == 0 {
		return ErrHandleReleased
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.bindDescriptorSetLocked(s)
	return nil
}

// BindGlobalSettings applies the render state of s.
func (c *Context) BindGlobalSettings(s *GlobalSettings) error {
	if s == nil {
		return invalidf("nil global settings")
	}
	if s.ctx != c {
		return ErrForeignObject
	}
	if s.Uses() == 0 {
		return ErrHandleReleased
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLive(); err != nil {
		return err
	}
	c.bindGlobalSettingsLocked(s)
	return nil
}

func (c *Context) bindable(h *Handle, typ ObjectType) (uint32, error) {
	if h == nil {
		return 0, nil
	}
	if err := c.checkHandle(h, typ); err != nil {
		return 0, err
	}
	return h.id, nil
}

func (c *Context) bindableFramebuffer(h *Handle) (uint32, error) {
	if h == nil {
		return c.opts.defaultFramebuffer, nil
	}
	return c.bindable(h, ObjectFramebuffer)
}

func (c *Context) checkHandle(h *Handle, typ ObjectType) error {
	switch {
	case h == nil:
		return invalidf("nil %s handle", typ)
	case !c.owns(h):
		return ErrForeignObject
	case h.typ != typ:
		return invalidf("handle is a %s, want %s", h.typ, typ)
	case h.Uses() == 0:
		return ErrHandleReleased
	}
	return nil
}

// NewFrame prepares the context for a frame. With reset every shadowed
// binding is forgotten, for use after foreign code touched the driver.
// With clear the default framebuffer is cleared. Pending deletions are
// flushed.
func (c *Context) NewFrame(reset, clear bool) error {
	c.mu.Lock()
	if err := c.checkLive(); err != nil {
		c.mu.Unlock()
		return err
	}
	if reset {
		c.shadow.reset()
	}
	if clear {
		c.bindDrawFramebufferLocked(c.opts.defaultFramebuffer)
		c.unmaskLocked(true, true)
		c.drv.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
	}
	c.setBaselineLocked(true)
	c.mu.Unlock()

	c.FlushTrash()
	return nil
}

// EndFrame finishes a frame. With clean the driver is returned to its
// default state so foreign code can render after it. With flush the
// driver command stream is flushed.
func (c *Context) EndFrame(clean, flush bool) error {
	c.mu.Lock()
	if err := c.checkLive(); err != nil {
		c.mu.Unlock()
		return err
	}
	if clean {
		c.bindDrawFramebufferLocked(0)
		c.bindProgramLocked(0)
		c.bindVertexArrayLocked(0)
		c.shadow.set = nil
		c.shadow.settings = nil
		c.drv.ActiveTexture(gl.TEXTURE0)

		c.setFeatureLocked(featureCullFace, false)
		c.setFeatureLocked(featureDepthTest, false)
		c.setFeatureLocked(featureStencilTest, false)
		c.setFeatureLocked(featureBlend, false)
		c.setBaselineLocked(false)
	}
	c.mu.Unlock()

	c.FlushTrash()

	if flush {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.checkLive(); err != nil {
			return err
		}
		c.drv.Flush()
	}
	return nil
}

// setBaselineLocked toggles the features every frame runs with.
func (c *Context) setBaselineLocked(on bool) {
	if !c.info.WebGL {
		c.setFeatureLocked(featurePrimitiveRestart, on)
	}
	if !c.info.GLES {
		c.setFeatureLocked(featureProgramPointSize, on)
		c.setFeatureLocked(featureSeamlessCubeMap, on)
	}
}
