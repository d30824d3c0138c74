//go:build linux

package gles

import (
	"unsafe"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// maxNameLength bounds reflected resource names.
const maxNameLength = 256

func (d *Driver) CreateShader(typ uint32) (name uint32) {
	d.run(func() { name = d.gl.CreateShader(typ) })
	return name
}

func (d *Driver) ShaderSource(shader uint32, source string) {
	d.run(func() {
		src := cString(source)
		count := int32(1)
		str := unsafe.Pointer(&src[0])
		strs := unsafe.Pointer(&str)
		var lengths unsafe.Pointer
		d.x.shaderSource.call(nil, unsafe.Pointer(&shader), unsafe.Pointer(&count), unsafe.Pointer(&strs), unsafe.Pointer(&lengths))
	})
}

func (d *Driver) CompileShader(shader uint32) {
	d.run(func() { d.gl.CompileShader(shader) })
}

func (d *Driver) GetShaderiv(shader, pname uint32, params *int32) {
	d.run(func() { d.getiv(&d.x.getShaderiv, shader, pname, params) })
}

func (d *Driver) GetShaderInfoLog(shader uint32) (log string) {
	d.run(func() { log = d.infoLog(&d.x.getShaderiv, &d.x.getShaderInfoLog, shader) })
	return log
}

func (d *Driver) DeleteShader(shader uint32) {
	d.run(func() { d.gl.DeleteShader(shader) })
}

func (d *Driver) CreateProgram() (name uint32) {
	d.run(func() { name = d.gl.CreateProgram() })
	return name
}

func (d *Driver) AttachShader(program, shader uint32) {
	d.run(func() { d.gl.AttachShader(program, shader) })
}

func (d *Driver) DetachShader(program, shader uint32) {
	d.run(func() { d.x.detachShader.call(nil, unsafe.Pointer(&program), unsafe.Pointer(&shader)) })
}

func (d *Driver) LinkProgram(program uint32) {
	d.run(func() { d.gl.LinkProgram(program) })
}

func (d *Driver) GetProgramiv(program, pname uint32, params *int32) {
	d.run(func() { d.getiv(&d.x.getProgramiv, program, pname, params) })
}

func (d *Driver) GetProgramInfoLog(program uint32) (log string) {
	d.run(func() { log = d.infoLog(&d.x.getProgramiv, &d.x.getProgramInfoLog, program) })
	return log
}

func (d *Driver) UseProgram(program uint32) {
	d.run(func() { d.gl.UseProgram(program) })
}

func (d *Driver) DeleteProgram(program uint32) {
	d.run(func() { d.gl.DeleteProgram(program) })
}

func (d *Driver) GetUniformLocation(program uint32, name string) (loc int32) {
	d.run(func() { loc = d.location(&d.x.getUniformLocation, program, name) })
	return loc
}

func (d *Driver) GetUniformBlockIndex(program uint32, name string) (index uint32) {
	d.run(func() {
		cname := cString(name)
		ptr := unsafe.Pointer(&cname[0])
		d.x.getUniformBlockIndex.call(unsafe.Pointer(&index), unsafe.Pointer(&program), unsafe.Pointer(&ptr))
	})
	return index
}

func (d *Driver) UniformBlockBinding(program, blockIndex, blockBinding uint32) {
	d.run(func() { d.gl.UniformBlockBinding(program, blockIndex, blockBinding) })
}

func (d *Driver) Uniform1i(location, value int32) {
	d.run(func() { d.gl.Uniform1i(location, value) })
}

// Uniform uploads count array elements from data. Short data uploads
// only the whole elements it holds.
func (d *Driver) Uniform(fn backend.UniformFunction, location, count int32, data []byte) {
	if !fn.Valid() {
		return
	}
	n := uniformCount(fn, count, data)
	if n == 0 {
		return
	}
	d.run(func() {
		p := &d.x.uniform[fn]
		ptr := unsafe.Pointer(&data[0])
		if isMatrixProc(int(fn)) {
			var transpose uint8
			p.call(nil, unsafe.Pointer(&location), unsafe.Pointer(&n), unsafe.Pointer(&transpose), unsafe.Pointer(&ptr))
			return
		}
		p.call(nil, unsafe.Pointer(&location), unsafe.Pointer(&n), unsafe.Pointer(&ptr))
	})
}

// ProgramInterface reflects the active attributes, the default-block
// uniforms and the uniform blocks of program.
func (d *Driver) ProgramInterface(program uint32) (pi backend.ProgramInterface) {
	d.run(func() {
		var n int32
		d.getiv(&d.x.getProgramiv, program, gl.ACTIVE_ATTRIBUTES, &n)
		for i := range uint32(max(n, 0)) {
			name, size, typ := d.active(&d.x.getActiveAttrib, program, i)
			loc := d.location(&d.x.getAttribLocation, program, name)
			if loc < 0 {
				continue
			}
			pi.Attributes = append(pi.Attributes, backend.Resource{
				Kind: backend.ResourceAttribute, Name: name, Location: loc, Type: typ, Size: size,
			})
		}

		n = 0
		d.getiv(&d.x.getProgramiv, program, gl.ACTIVE_UNIFORMS, &n)
		for i := range uint32(max(n, 0)) {
			name, size, typ := d.active(&d.x.getActiveUniform, program, i)
			loc := d.location(&d.x.getUniformLocation, program, name)
			if loc < 0 {
				// Block members have no location.
				continue
			}
			pi.Uniforms = append(pi.Uniforms, backend.Resource{
				Kind: backend.ResourceUniform, Name: name, Location: loc, Type: typ, Size: size,
			})
		}

		n = 0
		d.getiv(&d.x.getProgramiv, program, backend.ACTIVE_UNIFORM_BLOCKS, &n)
		for i := range uint32(max(n, 0)) {
			pi.UniformBlocks = append(pi.UniformBlocks, backend.Resource{
				Kind:     backend.ResourceUniformBlock,
				Name:     d.blockName(program, i),
				Location: int32(i),
				Size:     d.blockSize(program, i),
			})
		}
	})
	return pi
}

func (d *Driver) DeleteQuery(query uint32) {
	d.run(func() { d.x.deleteQueries.del(query) })
}

// The helpers below run on the context thread.

func (d *Driver) getiv(p *proc, object, pname uint32, params *int32) {
	ptr := unsafe.Pointer(params)
	p.call(nil, unsafe.Pointer(&object), unsafe.Pointer(&pname), unsafe.Pointer(&ptr))
}

func (d *Driver) infoLog(getiv, getLog *proc, object uint32) string {
	var length int32
	d.getiv(getiv, object, gl.INFO_LOG_LENGTH, &length)
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length)
	var written int32
	lenPtr, bufPtr := unsafe.Pointer(&written), unsafe.Pointer(&buf[0])
	getLog.call(nil, unsafe.Pointer(&object), unsafe.Pointer(&length), unsafe.Pointer(&lenPtr), unsafe.Pointer(&bufPtr))
	return string(buf[:min(max(written, 0), length)])
}

func (d *Driver) location(p *proc, program uint32, name string) int32 {
	cname := cString(name)
	ptr := unsafe.Pointer(&cname[0])
	var loc int32
	p.call(unsafe.Pointer(&loc), unsafe.Pointer(&program), unsafe.Pointer(&ptr))
	return loc
}

func (d *Driver) active(p *proc, program, index uint32) (name string, size int32, typ uint32) {
	buf := make([]byte, maxNameLength)
	bufSize := int32(len(buf))
	var length int32
	lenPtr, sizePtr, typPtr, bufPtr := unsafe.Pointer(&length), unsafe.Pointer(&size), unsafe.Pointer(&typ), unsafe.Pointer(&buf[0])
	p.call(nil, unsafe.Pointer(&program), unsafe.Pointer(&index), unsafe.Pointer(&bufSize),
		unsafe.Pointer(&lenPtr), unsafe.Pointer(&sizePtr), unsafe.Pointer(&typPtr), unsafe.Pointer(&bufPtr))
	return string(buf[:min(max(length, 0), bufSize)]), size, typ
}

func (d *Driver) blockName(program, index uint32) string {
	buf := make([]byte, maxNameLength)
	bufSize := int32(len(buf))
	var length int32
	lenPtr, bufPtr := unsafe.Pointer(&length), unsafe.Pointer(&buf[0])
	d.x.getActiveUniformBlockName.call(nil, unsafe.Pointer(&program), unsafe.Pointer(&index), unsafe.Pointer(&bufSize),
		unsafe.Pointer(&lenPtr), unsafe.Pointer(&bufPtr))
	return string(buf[:min(max(length, 0), bufSize)])
}

func (d *Driver) blockSize(program, index uint32) int32 {
	var size int32
	pname := uint32(backend.UNIFORM_BLOCK_DATA_SIZE)
	ptr := unsafe.Pointer(&size)
	d.x.getActiveUniformBlockiv.call(nil, unsafe.Pointer(&program), unsafe.Pointer(&index), unsafe.Pointer(&pname), unsafe.Pointer(&ptr))
	return size
}
