//go:build linux

package gles

import (
	"strings"
	"unsafe"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// Driver implements backend.Driver on a current EGL context. Every call
// is forwarded to the thread the context is current on.
type Driver struct {
	th   *thread
	gl   *gl.Context
	x    *procs
	info backend.Info
}

var (
	_ backend.Driver         = (*Driver)(nil)
	_ backend.IndirectDrawer = (*Driver)(nil)
)

// run executes f on the context thread.
func (d *Driver) run(f func()) {
	if !d.th.call(f) {
		backend.Logger().Warn("gles: call after close dropped")
	}
}

// queryInfo reads the static capabilities. It runs on the context thread.
func (d *Driver) queryInfo() backend.Info {
	info := backend.Info{
		Vendor:   d.gl.GetString(gl.VENDOR),
		Renderer: d.gl.GetString(gl.RENDERER),
		Version:  d.gl.GetString(gl.VERSION),
		Limits:   backend.DefaultLimits(),
	}
	info.GLES = strings.HasPrefix(info.Version, "OpenGL ES")

	for _, q := range []struct {
		pname uint32
		dst   *int
	}{
		{gl.MAX_VERTEX_ATTRIBS, &info.Limits.MaxVertexAttribs},
		{gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &info.Limits.MaxTextureUnits},
		{gl.MAX_COLOR_ATTACHMENTS, &info.Limits.MaxColorAttachments},
		{gl.MAX_SAMPLES, &info.Limits.MaxSamples},
	} {
		if v := d.getInteger(q.pname); v > 0 {
			*q.dst = int(v)
		}
	}

	info.Features = backend.Features{
		Compute:      d.gl.SupportsCompute(),
		Samplers:     d.gl.SupportsSamplerObjects() && d.x.genSamplers.ok(),
		DrawIndirect: d.x.drawArraysIndirect.ok() && d.x.drawElementsIndirect.ok(),
	}
	return info
}

func (d *Driver) getInteger(pname uint32) int32 {
	var v int32
	ptr := unsafe.Pointer(&v)
	d.x.getIntegerv.call(nil, unsafe.Pointer(&pname), unsafe.Pointer(&ptr))
	return v
}

// Info returns the capabilities read when the context was created.
func (d *Driver) Info() backend.Info { return d.info }

// Buffers

func (d *Driver) GenBuffer() (name uint32) {
	d.run(func() { name = d.x.genBuffers.gen() })
	return name
}

func (d *Driver) BindBuffer(target, buffer uint32) {
	d.run(func() { d.gl.BindBuffer(target, buffer) })
}

func (d *Driver) BufferData(target uint32, size int, usage uint32) {
	d.run(func() {
		sz := uint64(size)
		var data unsafe.Pointer
		d.x.bufferData.call(nil, unsafe.Pointer(&target), unsafe.Pointer(&sz), unsafe.Pointer(&data), unsafe.Pointer(&usage))
	})
}

func (d *Driver) BindBufferRange(target, index, buffer uint32, offset, size int) {
	d.run(func() {
		off, sz := uint64(offset), uint64(size)
		d.x.bindBufferRange.call(nil, unsafe.Pointer(&target), unsafe.Pointer(&index), unsafe.Pointer(&buffer),
			unsafe.Pointer(&off), unsafe.Pointer(&sz))
	})
}

func (d *Driver) BufferSubData(target uint32, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	d.run(func() {
		off, sz := uint64(offset), uint64(len(data))
		ptr := unsafe.Pointer(&data[0])
		d.x.bufferSubData.call(nil, unsafe.Pointer(&target), unsafe.Pointer(&off), unsafe.Pointer(&sz), unsafe.Pointer(&ptr))
	})
}

func (d *Driver) GetBufferSubData(target uint32, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	d.run(func() {
		off, sz := uint64(offset), uint64(len(data))
		if d.x.getBufferSubData.ok() {
			ptr := unsafe.Pointer(&data[0])
			d.x.getBufferSubData.call(nil, unsafe.Pointer(&target), unsafe.Pointer(&off), unsafe.Pointer(&sz), unsafe.Pointer(&ptr))
			return
		}
		var mapped unsafe.Pointer
		access := uint32(backend.MAP_READ_BIT)
		d.x.mapBufferRange.call(unsafe.Pointer(&mapped), unsafe.Pointer(&target), unsafe.Pointer(&off), unsafe.Pointer(&sz), unsafe.Pointer(&access))
		if mapped == nil {
			return
		}
		copy(data, unsafe.Slice((*byte)(mapped), len(data)))
		d.gl.UnmapBuffer(target)
	})
}

func (d *Driver) CopyBufferSubData(readTarget, writeTarget uint32, readOffset, writeOffset, size int) {
	d.run(func() {
		ro, wo, sz := uint64(readOffset), uint64(writeOffset), uint64(size)
		d.x.copyBufferSubData.call(nil, unsafe.Pointer(&readTarget), unsafe.Pointer(&writeTarget),
			unsafe.Pointer(&ro), unsafe.Pointer(&wo), unsafe.Pointer(&sz))
	})
}

func (d *Driver) DeleteBuffer(buffer uint32) {
	d.run(func() { d.x.deleteBuffers.del(buffer) })
}

// Textures and renderbuffers

func (d *Driver) GenTexture() (name uint32) {
	d.run(func() { name = d.x.genTextures.gen() })
	return name
}

func (d *Driver) ActiveTexture(unit uint32) {
	d.run(func() { d.gl.ActiveTexture(unit) })
}

func (d *Driver) BindTexture(target, texture uint32) {
	d.run(func() { d.gl.BindTexture(target, texture) })
}

func (d *Driver) TexParameteri(target, pname uint32, param int32) {
	d.run(func() { d.gl.TexParameteri(target, pname, param) })
}

func (d *Driver) TexImage2D(target uint32, level, internalFormat, width, height int32, format, typ uint32) {
	d.run(func() {
		var border int32
		var pixels unsafe.Pointer
		d.x.texImage2D.call(nil, unsafe.Pointer(&target), unsafe.Pointer(&level), unsafe.Pointer(&internalFormat),
			unsafe.Pointer(&width), unsafe.Pointer(&height), unsafe.Pointer(&border),
			unsafe.Pointer(&format), unsafe.Pointer(&typ), unsafe.Pointer(&pixels))
	})
}

func (d *Driver) TexImage3D(target uint32, level, internalFormat, width, height, depth int32, format, typ uint32) {
	d.run(func() {
		var border int32
		var pixels unsafe.Pointer
		d.x.texImage3D.call(nil, unsafe.Pointer(&target), unsafe.Pointer(&level), unsafe.Pointer(&internalFormat),
			unsafe.Pointer(&width), unsafe.Pointer(&height), unsafe.Pointer(&depth), unsafe.Pointer(&border),
			unsafe.Pointer(&format), unsafe.Pointer(&typ), unsafe.Pointer(&pixels))
	})
}

func (d *Driver) DeleteTexture(texture uint32) {
	d.run(func() { d.x.deleteTextures.del(texture) })
}

func (d *Driver) GenRenderbuffer() (name uint32) {
	d.run(func() { name = d.x.genRenderbuffers.gen() })
	return name
}

func (d *Driver) BindRenderbuffer(renderbuffer uint32) {
	d.run(func() { d.gl.BindRenderbuffer(gl.RENDERBUFFER, renderbuffer) })
}

func (d *Driver) RenderbufferStorage(internalFormat uint32, samples, width, height int32) {
	d.run(func() {
		if samples <= 1 {
			d.gl.RenderbufferStorage(gl.RENDERBUFFER, internalFormat, width, height)
			return
		}
		target := uint32(gl.RENDERBUFFER)
		d.x.renderbufferStorageMultisample.call(nil, unsafe.Pointer(&target), unsafe.Pointer(&samples),
			unsafe.Pointer(&internalFormat), unsafe.Pointer(&width), unsafe.Pointer(&height))
	})
}

func (d *Driver) DeleteRenderbuffer(renderbuffer uint32) {
	d.run(func() { d.x.deleteRenderbuffers.del(renderbuffer) })
}

// Framebuffers

func (d *Driver) GenFramebuffer() (name uint32) {
	d.run(func() { name = d.x.genFramebuffers.gen() })
	return name
}

func (d *Driver) BindFramebuffer(target, framebuffer uint32) {
	d.run(func() { d.gl.BindFramebuffer(target, framebuffer) })
}

func (d *Driver) FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32) {
	d.run(func() { d.gl.FramebufferTexture2D(target, attachment, textarget, texture, level) })
}

func (d *Driver) FramebufferTextureLayer(target, attachment, texture uint32, level, layer int32) {
	d.run(func() {
		d.x.framebufferTextureLayer.call(nil, unsafe.Pointer(&target), unsafe.Pointer(&attachment),
			unsafe.Pointer(&texture), unsafe.Pointer(&level), unsafe.Pointer(&layer))
	})
}

func (d *Driver) FramebufferRenderbuffer(target, attachment, renderbufferTarget, renderbuffer uint32) {
	d.run(func() { d.gl.FramebufferRenderbuffer(target, attachment, renderbufferTarget, renderbuffer) })
}

func (d *Driver) DrawBuffers(buffers []uint32) {
	d.run(func() {
		n := int32(len(buffers))
		var ptr unsafe.Pointer
		if n > 0 {
			ptr = unsafe.Pointer(&buffers[0])
		}
		d.x.drawBuffers.call(nil, unsafe.Pointer(&n), unsafe.Pointer(&ptr))
	})
}

func (d *Driver) ReadBuffer(src uint32) {
	d.run(func() { d.x.readBuffer.call(nil, unsafe.Pointer(&src)) })
}

func (d *Driver) DeleteFramebuffer(framebuffer uint32) {
	d.run(func() { d.x.deleteFramebuffers.del(framebuffer) })
}

func (d *Driver) ClearBufferfv(buffer uint32, drawBuffer int32, value [4]float32) {
	d.run(func() {
		ptr := unsafe.Pointer(&value[0])
		d.x.clearBufferfv.call(nil, unsafe.Pointer(&buffer), unsafe.Pointer(&drawBuffer), unsafe.Pointer(&ptr))
	})
}

func (d *Driver) ClearBufferiv(buffer uint32, drawBuffer int32, value [4]int32) {
	d.run(func() {
		ptr := unsafe.Pointer(&value[0])
		d.x.clearBufferiv.call(nil, unsafe.Pointer(&buffer), unsafe.Pointer(&drawBuffer), unsafe.Pointer(&ptr))
	})
}

func (d *Driver) ClearBufferuiv(buffer uint32, drawBuffer int32, value [4]uint32) {
	d.run(func() {
		ptr := unsafe.Pointer(&value[0])
		d.x.clearBufferuiv.call(nil, unsafe.Pointer(&buffer), unsafe.Pointer(&drawBuffer), unsafe.Pointer(&ptr))
	})
}

func (d *Driver) ClearBufferfi(buffer uint32, drawBuffer int32, depth float32, stencil int32) {
	d.run(func() {
		d.x.clearBufferfi.call(nil, unsafe.Pointer(&buffer), unsafe.Pointer(&drawBuffer), unsafe.Pointer(&depth), unsafe.Pointer(&stencil))
	})
}

// Vertex arrays

func (d *Driver) GenVertexArray() (name uint32) {
	d.run(func() { name = d.x.genVertexArrays.gen() })
	return name
}

func (d *Driver) BindVertexArray(array uint32) {
	d.run(func() { d.gl.BindVertexArray(array) })
}

func (d *Driver) VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride int32, offset uintptr) {
	d.run(func() {
		var norm uint8
		if normalized {
			norm = 1
		}
		d.x.vertexAttribPointer.call(nil, unsafe.Pointer(&index), unsafe.Pointer(&size), unsafe.Pointer(&typ),
			unsafe.Pointer(&norm), unsafe.Pointer(&stride), unsafe.Pointer(&offset))
	})
}

func (d *Driver) VertexAttribIPointer(index uint32, size int32, typ uint32, stride int32, offset uintptr) {
	d.run(func() {
		d.x.vertexAttribIPointer.call(nil, unsafe.Pointer(&index), unsafe.Pointer(&size), unsafe.Pointer(&typ),
			unsafe.Pointer(&stride), unsafe.Pointer(&offset))
	})
}

func (d *Driver) VertexAttribDivisor(index, divisor uint32) {
	d.run(func() { d.x.vertexAttribDivisor.call(nil, unsafe.Pointer(&index), unsafe.Pointer(&divisor)) })
}

func (d *Driver) EnableVertexAttribArray(index uint32) {
	d.run(func() { d.gl.EnableVertexAttribArray(index) })
}

func (d *Driver) DeleteVertexArray(array uint32) {
	d.run(func() { d.x.deleteVertexArrays.del(array) })
}

// Samplers

func (d *Driver) GenSampler() (name uint32) {
	d.run(func() { name = d.x.genSamplers.gen() })
	return name
}

func (d *Driver) SamplerParameteri(sampler, pname uint32, param int32) {
	d.run(func() { d.gl.SamplerParameteri(sampler, pname, param) })
}

func (d *Driver) SamplerParameterf(sampler, pname uint32, param float32) {
	d.run(func() { d.gl.SamplerParameterf(sampler, pname, param) })
}

func (d *Driver) BindSampler(unit, sampler uint32) {
	d.run(func() { d.gl.BindSampler(unit, sampler) })
}

func (d *Driver) DeleteSampler(sampler uint32) {
	d.run(func() { d.x.deleteSamplers.del(sampler) })
}

// State

func (d *Driver) Enable(capability uint32) {
	d.run(func() { d.gl.Enable(capability) })
}

func (d *Driver) Disable(capability uint32) {
	d.run(func() { d.gl.Disable(capability) })
}

func (d *Driver) Viewport(x, y, width, height int32) {
	d.run(func() { d.gl.Viewport(x, y, width, height) })
}

func (d *Driver) CullFace(mode uint32) {
	d.run(func() { d.gl.CullFace(mode) })
}

func (d *Driver) DepthFunc(fn uint32) {
	d.run(func() { d.gl.DepthFunc(fn) })
}

func (d *Driver) DepthMask(flag bool) {
	d.run(func() { d.gl.DepthMask(flag) })
}

func (d *Driver) StencilMaskSeparate(face, mask uint32) {
	d.run(func() { d.gl.StencilMaskSeparate(face, mask) })
}

func (d *Driver) StencilFuncSeparate(face, fn uint32, ref int32, mask uint32) {
	d.run(func() { d.gl.StencilFuncSeparate(face, fn, ref, mask) })
}

func (d *Driver) StencilOpSeparate(face, sfail, dpfail, dppass uint32) {
	d.run(func() { d.gl.StencilOpSeparate(face, sfail, dpfail, dppass) })
}

func (d *Driver) BlendEquationSeparate(modeRGB, modeAlpha uint32) {
	d.run(func() { d.gl.BlendEquationSeparate(modeRGB, modeAlpha) })
}

func (d *Driver) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha uint32) {
	d.run(func() { d.gl.BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha) })
}

// Draws

func (d *Driver) Clear(mask uint32) {
	d.run(func() { d.gl.Clear(mask) })
}

func (d *Driver) DrawArraysInstanced(mode uint32, first, count, instanceCount int32) {
	d.run(func() { d.gl.DrawArraysInstanced(mode, first, count, instanceCount) })
}

func (d *Driver) DrawElementsInstanced(mode uint32, count int32, typ uint32, offset uintptr, instanceCount int32) {
	d.run(func() {
		d.x.drawElementsInstanced.call(nil, unsafe.Pointer(&mode), unsafe.Pointer(&count), unsafe.Pointer(&typ),
			unsafe.Pointer(&offset), unsafe.Pointer(&instanceCount))
	})
}

func (d *Driver) DrawArraysIndirect(mode uint32, offset uintptr) {
	d.run(func() { d.x.drawArraysIndirect.call(nil, unsafe.Pointer(&mode), unsafe.Pointer(&offset)) })
}

func (d *Driver) DrawElementsIndirect(mode, typ uint32, offset uintptr) {
	d.run(func() {
		d.x.drawElementsIndirect.call(nil, unsafe.Pointer(&mode), unsafe.Pointer(&typ), unsafe.Pointer(&offset))
	})
}

func (d *Driver) DispatchCompute(x, y, z uint32) {
	d.run(func() { d.gl.DispatchCompute(x, y, z) })
}

func (d *Driver) MemoryBarrier(barriers uint32) {
	d.run(func() { d.gl.MemoryBarrier(barriers) })
}

func (d *Driver) Flush() {
	d.run(d.gl.Flush)
}
