package backend

// Driver is the OpenGL-style immediate-mode API the resource cache drives.
//
// Object names are uint32 and zero means "no object". Enumerants are the
// native GL values from github.com/gogpu/wgpu/hal/gles/gl plus the few
// extra constants declared in this package.
//
// A Driver is not safe for concurrent use. glcache.Context serializes
// every call under its own mutex; implementations may additionally pin
// calls to one OS thread.
type Driver interface {
	// Info reports static capabilities. It is called once when a context
	// is created and must not issue driver calls afterwards.
	Info() Info

	BufferDriver
	TextureDriver
	FramebufferDriver
	VertexArrayDriver
	SamplerDriver
	ProgramDriver
	StateDriver
	DrawDriver
}

// BufferDriver creates, binds and deletes buffer objects.
type BufferDriver interface {
	GenBuffer() uint32
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, size int, usage uint32)
	BindBufferRange(target, index, buffer uint32, offset, size int)
	// BufferSubData uploads data at offset into the buffer bound to
	// target; GetBufferSubData reads len(data) bytes back.
	BufferSubData(target uint32, offset int, data []byte)
	GetBufferSubData(target uint32, offset int, data []byte)
	CopyBufferSubData(readTarget, writeTarget uint32, readOffset, writeOffset, size int)
	DeleteBuffer(buffer uint32)
}

// TextureDriver creates, binds and deletes textures and renderbuffers.
type TextureDriver interface {
	GenTexture() uint32
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexParameteri(target, pname uint32, param int32)
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, typ uint32)
	TexImage3D(target uint32, level, internalFormat, width, height, depth int32, format, typ uint32)
	DeleteTexture(texture uint32)

	GenRenderbuffer() uint32
	BindRenderbuffer(renderbuffer uint32)
	RenderbufferStorage(internalFormat uint32, samples, width, height int32)
	DeleteRenderbuffer(renderbuffer uint32)
}

// FramebufferDriver creates and configures framebuffer objects.
type FramebufferDriver interface {
	GenFramebuffer() uint32
	BindFramebuffer(target, framebuffer uint32)
	FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32)
	FramebufferTextureLayer(target, attachment, texture uint32, level, layer int32)
	FramebufferRenderbuffer(target, attachment, renderbufferTarget, renderbuffer uint32)
	DrawBuffers(buffers []uint32)
	ReadBuffer(src uint32)
	DeleteFramebuffer(framebuffer uint32)

	// ClearBuffer* clear one attachment of the bound draw framebuffer.
	// buffer is COLOR, DEPTH, STENCIL or DEPTH_STENCIL.
	ClearBufferfv(buffer uint32, drawBuffer int32, value [4]float32)
	ClearBufferiv(buffer uint32, drawBuffer int32, value [4]int32)
	ClearBufferuiv(buffer uint32, drawBuffer int32, value [4]uint32)
	ClearBufferfi(buffer uint32, drawBuffer int32, depth float32, stencil int32)
}

// VertexArrayDriver creates and configures vertex array objects.
type VertexArrayDriver interface {
	GenVertexArray() uint32
	BindVertexArray(array uint32)
	VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride int32, offset uintptr)
	VertexAttribIPointer(index uint32, size int32, typ uint32, stride int32, offset uintptr)
	VertexAttribDivisor(index, divisor uint32)
	EnableVertexAttribArray(index uint32)
	DeleteVertexArray(array uint32)
}

// SamplerDriver creates and configures sampler objects.
type SamplerDriver interface {
	GenSampler() uint32
	SamplerParameteri(sampler, pname uint32, param int32)
	SamplerParameterf(sampler, pname uint32, param float32)
	BindSampler(unit, sampler uint32)
	DeleteSampler(sampler uint32)
}

// ProgramDriver compiles shaders, links programs and reflects them.
type ProgramDriver interface {
	CreateShader(typ uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader, pname uint32, params *int32)
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgramiv(program, pname uint32, params *int32)
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	GetUniformLocation(program uint32, name string) int32
	GetUniformBlockIndex(program uint32, name string) uint32
	UniformBlockBinding(program, blockIndex, blockBinding uint32)
	Uniform1i(location, value int32)
	Uniform(fn UniformFunction, location, count int32, data []byte)

	// ProgramInterface reflects the active attributes, uniforms and
	// uniform blocks of a linked program.
	ProgramInterface(program uint32) ProgramInterface

	DeleteQuery(query uint32)
}

// StateDriver mutates fixed-function state.
type StateDriver interface {
	Enable(capability uint32)
	Disable(capability uint32)
	Viewport(x, y, width, height int32)
	CullFace(mode uint32)
	DepthFunc(fn uint32)
	DepthMask(flag bool)
	StencilMaskSeparate(face, mask uint32)
	StencilFuncSeparate(face, fn uint32, ref int32, mask uint32)
	StencilOpSeparate(face, sfail, dpfail, dppass uint32)
	BlendEquationSeparate(modeRGB, modeAlpha uint32)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha uint32)
}

// DrawDriver issues work.
type DrawDriver interface {
	Clear(mask uint32)
	DrawArraysInstanced(mode uint32, first, count, instanceCount int32)
	DrawElementsInstanced(mode uint32, count int32, typ uint32, offset uintptr, instanceCount int32)
	DispatchCompute(x, y, z uint32)
	MemoryBarrier(barriers uint32)
	Flush()
}

// IndirectDrawer is implemented by drivers that support indirect draws
// (GL 4.3 / ES 3.1). The command buffer must be bound to
// DRAW_INDIRECT_BUFFER before the call.
type IndirectDrawer interface {
	DrawArraysIndirect(mode uint32, offset uintptr)
	DrawElementsIndirect(mode, typ uint32, offset uintptr)
}

// UniformFunction selects the glUniform* entry point used to upload one
// uniform binding. The values match the uniform layout produced by the
// uniform helper.
type UniformFunction uint8

// Uniform upload functions.
const (
	Uniform1i UniformFunction = iota
	Uniform2i
	Uniform3i
	Uniform4i
	Uniform1b
	Uniform2b
	Uniform3b
	Uniform4b
	Uniform1ui
	Uniform2ui
	Uniform3ui
	Uniform4ui
	Uniform1f
	Uniform2f
	Uniform3f
	Uniform4f
	UniformMat2
	UniformMat2x3
	UniformMat2x4
	UniformMat3x2
	UniformMat3
	UniformMat3x4
	UniformMat4x2
	UniformMat4x3
	UniformMat4
)

// Components returns the number of 32-bit scalars one array element of
// this uniform occupies.
func (f UniformFunction) Components() int {
	switch f {
	case Uniform1i, Uniform1b, Uniform1ui, Uniform1f:
		return 1
	case Uniform2i, Uniform2b, Uniform2ui, Uniform2f:
		return 2
	case Uniform3i, Uniform3b, Uniform3ui, Uniform3f:
		return 3
	case Uniform4i, Uniform4b, Uniform4ui, Uniform4f, UniformMat2:
		return 4
	case UniformMat2x3, UniformMat3x2:
		return 6
	case UniformMat2x4, UniformMat4x2:
		return 8
	case UniformMat3:
		return 9
	case UniformMat3x4, UniformMat4x3:
		return 12
	case UniformMat4:
		return 16
	default:
		return 0
	}
}

// Valid reports whether f names a known upload function.
func (f UniformFunction) Valid() bool {
	return f <= UniformMat4
}

// Constants missing from the gl package.
const (
	PRIMITIVE_RESTART_FIXED_INDEX = 0x8D69     //nolint:revive // GL naming
	PROGRAM_POINT_SIZE            = 0x8642     //nolint:revive // GL naming
	TEXTURE_CUBE_MAP_SEAMLESS     = 0x884F     //nolint:revive // GL naming
	TEXTURE_LOD_BIAS              = 0x8501     //nolint:revive // GL naming
	DRAW_INDIRECT_BUFFER          = 0x8F3F     //nolint:revive // GL naming
	ACTIVE_UNIFORM_BLOCKS         = 0x8A36     //nolint:revive // GL naming
	UNIFORM_BLOCK_DATA_SIZE       = 0x8A40     //nolint:revive // GL naming
	INVALID_INDEX                 = 0xFFFFFFFF //nolint:revive // GL naming
	NONE                          = 0          //nolint:revive // GL naming
	COLOR                         = 0x1800     //nolint:revive // GL naming
	DEPTH                         = 0x1801     //nolint:revive // GL naming
	STENCIL                       = 0x1802     //nolint:revive // GL naming
	MAP_READ_BIT                  = 0x0001     //nolint:revive // GL naming
)
