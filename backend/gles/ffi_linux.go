//go:build linux

package gles

import (
	"fmt"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// proc is a GL entry point with its prepared call interface.
//
// Arguments follow goffi conventions: every element of args points at
// the argument value, so a pointer argument is passed as the address of
// a pointer variable.
type proc struct {
	fn  unsafe.Pointer
	cif types.CallInterface
}

func (p *proc) ok() bool { return p.fn != nil }

// call invokes the entry point. Missing optional entry points are no-ops.
func (p *proc) call(ret unsafe.Pointer, args ...unsafe.Pointer) {
	if p.fn == nil {
		return
	}
	_ = ffi.CallFunction(&p.cif, p.fn, ret, args)
}

// gen runs a glGen* entry point for one name.
func (p *proc) gen() uint32 {
	var name uint32
	n := int32(1)
	ptr := unsafe.Pointer(&name)
	p.call(nil, unsafe.Pointer(&n), unsafe.Pointer(&ptr))
	return name
}

// del runs a glDelete* entry point for one name.
func (p *proc) del(name uint32) {
	n := int32(1)
	ptr := unsafe.Pointer(&name)
	p.call(nil, unsafe.Pointer(&n), unsafe.Pointer(&ptr))
}

var (
	tVoid = types.VoidTypeDescriptor
	tU8   = types.UInt8TypeDescriptor
	tU32  = types.UInt32TypeDescriptor
	tS32  = types.SInt32TypeDescriptor
	tU64  = types.UInt64TypeDescriptor
	tF32  = types.FloatTypeDescriptor
	tPtr  = types.PointerTypeDescriptor
)

// procs holds the entry points that take pointer arguments, plus the
// ones the gl package does not load.
type procs struct {
	genBuffers, deleteBuffers             proc
	genTextures, deleteTextures           proc
	genRenderbuffers, deleteRenderbuffers proc
	genFramebuffers, deleteFramebuffers   proc
	genVertexArrays, deleteVertexArrays   proc
	genSamplers, deleteSamplers           proc
	deleteQueries                         proc

	getIntegerv proc

	bufferData                     proc
	bufferSubData                  proc
	getBufferSubData               proc
	mapBufferRange                 proc
	copyBufferSubData              proc
	bindBufferRange                proc
	texImage2D                     proc
	texImage3D                     proc
	renderbufferStorageMultisample proc
	framebufferTextureLayer        proc
	drawBuffers                    proc
	readBuffer                     proc
	clearBufferfv                  proc
	clearBufferiv                  proc
	clearBufferuiv                 proc
	clearBufferfi                  proc
	vertexAttribPointer            proc
	vertexAttribIPointer           proc
	vertexAttribDivisor            proc

	shaderSource      proc
	getShaderiv       proc
	getShaderInfoLog  proc
	detachShader      proc
	getProgramiv      proc
	getProgramInfoLog proc

	getUniformLocation        proc
	getUniformBlockIndex      proc
	getAttribLocation         proc
	getActiveAttrib           proc
	getActiveUniform          proc
	getActiveUniformBlockName proc
	getActiveUniformBlockiv   proc

	drawElementsInstanced proc
	drawArraysIndirect    proc
	drawElementsIndirect  proc

	uniform [backendUniformCount]proc
}

type procSpec struct {
	p    *proc
	name string
	ret  *types.TypeDescriptor
	args []*types.TypeDescriptor
	// Optional entry points may be missing on older contexts.
	optional bool
}

func sig(args ...*types.TypeDescriptor) []*types.TypeDescriptor { return args }

func (x *procs) specs() []procSpec {
	nameList := sig(tS32, tPtr)
	specs := []procSpec{
		{p: &x.genBuffers, name: "glGenBuffers", ret: tVoid, args: nameList},
		{p: &x.deleteBuffers, name: "glDeleteBuffers", ret: tVoid, args: nameList},
		{p: &x.genTextures, name: "glGenTextures", ret: tVoid, args: nameList},
		{p: &x.deleteTextures, name: "glDeleteTextures", ret: tVoid, args: nameList},
		{p: &x.genRenderbuffers, name: "glGenRenderbuffers", ret: tVoid, args: nameList},
		{p: &x.deleteRenderbuffers, name: "glDeleteRenderbuffers", ret: tVoid, args: nameList},
		{p: &x.genFramebuffers, name: "glGenFramebuffers", ret: tVoid, args: nameList},
		{p: &x.deleteFramebuffers, name: "glDeleteFramebuffers", ret: tVoid, args: nameList},
		{p: &x.genVertexArrays, name: "glGenVertexArrays", ret: tVoid, args: nameList},
		{p: &x.deleteVertexArrays, name: "glDeleteVertexArrays", ret: tVoid, args: nameList},
		{p: &x.genSamplers, name: "glGenSamplers", ret: tVoid, args: nameList, optional: true},
		{p: &x.deleteSamplers, name: "glDeleteSamplers", ret: tVoid, args: nameList, optional: true},
		{p: &x.deleteQueries, name: "glDeleteQueries", ret: tVoid, args: nameList, optional: true},

		{p: &x.getIntegerv, name: "glGetIntegerv", ret: tVoid, args: sig(tU32, tPtr)},

		{p: &x.bufferData, name: "glBufferData", ret: tVoid, args: sig(tU32, tU64, tPtr, tU32)},
		{p: &x.bufferSubData, name: "glBufferSubData", ret: tVoid, args: sig(tU32, tU64, tU64, tPtr)},
		// GLES has no glGetBufferSubData; reads fall back to mapping.
		{p: &x.getBufferSubData, name: "glGetBufferSubData", ret: tVoid, args: sig(tU32, tU64, tU64, tPtr), optional: true},
		{p: &x.mapBufferRange, name: "glMapBufferRange", ret: tPtr, args: sig(tU32, tU64, tU64, tU32)},
		{p: &x.copyBufferSubData, name: "glCopyBufferSubData", ret: tVoid, args: sig(tU32, tU32, tU64, tU64, tU64)},
		{p: &x.bindBufferRange, name: "glBindBufferRange", ret: tVoid, args: sig(tU32, tU32, tU32, tU64, tU64)},
		{p: &x.texImage2D, name: "glTexImage2D", ret: tVoid, args: sig(tU32, tS32, tS32, tS32, tS32, tS32, tU32, tU32, tPtr)},
		{p: &x.texImage3D, name: "glTexImage3D", ret: tVoid, args: sig(tU32, tS32, tS32, tS32, tS32, tS32, tS32, tU32, tU32, tPtr)},
		{p: &x.renderbufferStorageMultisample, name: "glRenderbufferStorageMultisample", ret: tVoid, args: sig(tU32, tS32, tU32, tS32, tS32)},
		{p: &x.framebufferTextureLayer, name: "glFramebufferTextureLayer", ret: tVoid, args: sig(tU32, tU32, tU32, tS32, tS32)},
		{p: &x.drawBuffers, name: "glDrawBuffers", ret: tVoid, args: sig(tS32, tPtr)},
		{p: &x.readBuffer, name: "glReadBuffer", ret: tVoid, args: sig(tU32)},
		{p: &x.clearBufferfv, name: "glClearBufferfv", ret: tVoid, args: sig(tU32, tS32, tPtr)},
		{p: &x.clearBufferiv, name: "glClearBufferiv", ret: tVoid, args: sig(tU32, tS32, tPtr)},
		{p: &x.clearBufferuiv, name: "glClearBufferuiv", ret: tVoid, args: sig(tU32, tS32, tPtr)},
		{p: &x.clearBufferfi, name: "glClearBufferfi", ret: tVoid, args: sig(tU32, tS32, tF32, tS32)},
		{p: &x.vertexAttribPointer, name: "glVertexAttribPointer", ret: tVoid, args: sig(tU32, tS32, tU32, tU8, tS32, tPtr)},
		{p: &x.vertexAttribIPointer, name: "glVertexAttribIPointer", ret: tVoid, args: sig(tU32, tS32, tU32, tS32, tPtr)},
		{p: &x.vertexAttribDivisor, name: "glVertexAttribDivisor", ret: tVoid, args: sig(tU32, tU32)},

		{p: &x.shaderSource, name: "glShaderSource", ret: tVoid, args: sig(tU32, tS32, tPtr, tPtr)},
		{p: &x.getShaderiv, name: "glGetShaderiv", ret: tVoid, args: sig(tU32, tU32, tPtr)},
		{p: &x.getShaderInfoLog, name: "glGetShaderInfoLog", ret: tVoid, args: sig(tU32, tS32, tPtr, tPtr)},
		{p: &x.detachShader, name: "glDetachShader", ret: tVoid, args: sig(tU32, tU32)},
		{p: &x.getProgramiv, name: "glGetProgramiv", ret: tVoid, args: sig(tU32, tU32, tPtr)},
		{p: &x.getProgramInfoLog, name: "glGetProgramInfoLog", ret: tVoid, args: sig(tU32, tS32, tPtr, tPtr)},

		{p: &x.getUniformLocation, name: "glGetUniformLocation", ret: tS32, args: sig(tU32, tPtr)},
		{p: &x.getUniformBlockIndex, name: "glGetUniformBlockIndex", ret: tU32, args: sig(tU32, tPtr)},
		{p: &x.getAttribLocation, name: "glGetAttribLocation", ret: tS32, args: sig(tU32, tPtr)},
		{p: &x.getActiveAttrib, name: "glGetActiveAttrib", ret: tVoid, args: sig(tU32, tU32, tS32, tPtr, tPtr, tPtr, tPtr)},
		{p: &x.getActiveUniform, name: "glGetActiveUniform", ret: tVoid, args: sig(tU32, tU32, tS32, tPtr, tPtr, tPtr, tPtr)},
		{p: &x.getActiveUniformBlockName, name: "glGetActiveUniformBlockName", ret: tVoid, args: sig(tU32, tU32, tS32, tPtr, tPtr)},
		{p: &x.getActiveUniformBlockiv, name: "glGetActiveUniformBlockiv", ret: tVoid, args: sig(tU32, tU32, tU32, tPtr)},

		{p: &x.drawElementsInstanced, name: "glDrawElementsInstanced", ret: tVoid, args: sig(tU32, tS32, tU32, tPtr, tS32)},
		{p: &x.drawArraysIndirect, name: "glDrawArraysIndirect", ret: tVoid, args: sig(tU32, tPtr), optional: true},
		{p: &x.drawElementsIndirect, name: "glDrawElementsIndirect", ret: tVoid, args: sig(tU32, tU32, tPtr), optional: true},
	}
	for i, name := range uniformProcNames {
		args := sig(tS32, tS32, tPtr)
		if isMatrixProc(i) {
			args = sig(tS32, tS32, tU8, tPtr)
		}
		specs = append(specs, procSpec{p: &x.uniform[i], name: name, ret: tVoid, args: args})
	}
	return specs
}

// load resolves every entry point through getProcAddr.
func (x *procs) load(getProcAddr gl.ProcAddressFunc) error {
	for _, s := range x.specs() {
		s.p.fn = getProcAddr(s.name)
		if s.p.fn == nil {
			if s.optional {
				continue
			}
			return fmt.Errorf("gles: missing entry point %s", s.name)
		}
		if err := ffi.PrepareCallInterface(&s.p.cif, types.DefaultCall, s.ret, s.args); err != nil {
			return fmt.Errorf("gles: prepare %s: %w", s.name, err)
		}
	}
	return nil
}

// cString returns a NUL-terminated copy of s. The caller keeps the slice
// alive until the call returns.
func cString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
