package recording

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// Kind is the class of a native object tracked by the driver.
type Kind uint8

// Object kinds.
const (
	Buffer Kind = iota + 1
	Texture
	Renderbuffer
	Framebuffer
	VertexArray
	Program
	Shader
	Sampler
	Query
	kindCount
)

var kindNames = [...]string{
	Buffer:       "buffer",
	Texture:      "texture",
	Renderbuffer: "renderbuffer",
	Framebuffer:  "framebuffer",
	VertexArray:  "vertex_array",
	Program:      "program",
	Shader:       "shader",
	Sampler:      "sampler",
	Query:        "query",
}

// String returns the kind name.
func (k Kind) String() string {
	if k == 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindNames[k]
}

// Call is one recorded driver call.
type Call struct {
	Name string
	Args []any
}

// String formats the call as Name(arg, arg).
func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// State is a snapshot of the bindings the driver tracks.
type State struct {
	Program     uint32
	VertexArray uint32
	DrawFB      uint32
	ReadFB      uint32
	ActiveUnit  uint32
	Viewport    [4]int32
	Enabled     map[uint32]bool
	DepthMask   bool
	// StencilMask is the front-face stencil write mask.
	StencilMask uint32
}

type shaderObject struct {
	typ      uint32
	source   string
	compiled bool
	log      string
}

type programObject struct {
	shaders []uint32
	linked  bool
	log     string
	iface   backend.ProgramInterface
}

// Driver is an in-memory backend.Driver.
//
// Every method records the call, updates a small model of GL object and
// binding state, and checks that no other call is in flight. Driver is
// safe for concurrent use so overlapping calls are observed instead of
// corrupting the model.
type Driver struct {
	active   atomic.Int32
	overlaps atomic.Int64

	mu      sync.Mutex
	info    backend.Info
	next    uint32
	live    [kindCount]map[uint32]struct{}
	created [kindCount]int
	deleted [kindCount]int
	invalid int

	calls   map[string]int
	log     []Call
	logging bool

	state    State
	bound    map[uint32]uint32
	buffers  map[uint32][]byte
	shaders  map[uint32]*shaderObject
	programs map[uint32]*programObject

	compileFailure string
	linkFailure    bool
	genFailures    [kindCount]int
}

// Option configures a Driver.
type Option func(*Driver)

// WithInfo replaces the reported capabilities.
func WithInfo(info backend.Info) Option {
	return func(d *Driver) {
		d.info = info
	}
}

// WithCallLog records every call with its arguments, retrievable by Log.
func WithCallLog() Option {
	return func(d *Driver) {
		d.logging = true
	}
}

// DefaultInfo returns the capabilities a new Driver reports.
func DefaultInfo() backend.Info {
	return backend.Info{
		Vendor:   "gogpu",
		Renderer: "recording",
		Version:  "4.6 (recording)",
		Limits:   backend.DefaultLimits(),
		Features: backend.Features{Compute: true, Samplers: true, DrawIndirect: true},
	}
}

// New creates a Driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		info:     DefaultInfo(),
		calls:    make(map[string]int),
		bound:    make(map[uint32]uint32),
		buffers:  make(map[uint32][]byte),
		shaders:  make(map[uint32]*shaderObject),
		programs: make(map[uint32]*programObject),
	}
	for k := range d.live {
		d.live[k] = make(map[uint32]struct{})
	}
	d.state.Enabled = make(map[uint32]bool)
	d.state.DepthMask = true
	d.state.StencilMask = 0xFFFFFFFF
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// enter records a call and must be paired with the returned func.
// The driver mutex is held until then.
func (d *Driver) enter(name string, args ...any) func() {
	if d.active.Add(1) > 1 {
		d.overlaps.Add(1)
	}
	d.mu.Lock()
	d.calls[name]++
	if d.logging {
		d.log = append(d.log, Call{Name: name, Args: args})
	}
	return d.leave
}

func (d *Driver) leave() {
	d.mu.Unlock()
	d.active.Add(-1)
}

func (d *Driver) gen(k Kind) uint32 {
	if d.genFailures[k] > 0 {
		d.genFailures[k]--
		return 0
	}
	d.next++
	d.live[k][d.next] = struct{}{}
	d.created[k]++
	return d.next
}

func (d *Driver) remove(k Kind, id uint32) bool {
	if id == 0 {
		return false
	}
	if _, ok := d.live[k][id]; !ok {
		d.invalid++
		return false
	}
	delete(d.live[k], id)
	d.deleted[k]++
	return true
}

// Inspection

// Overlaps returns how many calls started while another was in flight.
func (d *Driver) Overlaps() int64 { return d.overlaps.Load() }

// Calls returns how many times the named method was called.
func (d *Driver) Calls(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[name]
}

// TotalCalls returns the number of calls of any kind.
func (d *Driver) TotalCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		n += c
	}
	return n
}

// CallNames returns the sorted names of every method called so far.
func (d *Driver) CallNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.calls))
	for n := range d.calls {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Log returns a copy of the call log. It is empty unless WithCallLog was set.
func (d *Driver) Log() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.log...)
}

// ResetCalls clears call counters and the call log.
func (d *Driver) ResetCalls() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = make(map[string]int)
	d.log = nil
}

// Live returns the number of live objects of kind k.
func (d *Driver) Live(k Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live[k])
}

// IsLive reports whether id names a live object of kind k.
func (d *Driver) IsLive(k Kind, id uint32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.live[k][id]
	return ok
}

// Created returns how many objects of kind k were generated.
func (d *Driver) Created(k Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created[k]
}

// Deleted returns how many live objects of kind k were deleted.
func (d *Driver) Deleted(k Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleted[k]
}

// TotalDeleted returns the number of deleted objects of any kind.
func (d *Driver) TotalDeleted() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.deleted {
		n += c
	}
	return n
}

// InvalidDeletes returns how many deletes named an object that was not live.
func (d *Driver) InvalidDeletes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.invalid
}

// State returns a snapshot of the tracked bindings.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.state
	s.Enabled = make(map[uint32]bool, len(d.state.Enabled))
	for k, v := range d.state.Enabled {
		s.Enabled[k] = v
	}
	return s
}

// BufferContents returns a copy of the contents of buffer, or nil if it
// has no storage.
func (d *Driver) BufferContents(buffer uint32) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.buffers[buffer]...)
}

// Fault injection

// FailCompile makes every shader whose source contains substr fail to
// compile. An empty string disables the fault.
func (d *Driver) FailCompile(substr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.compileFailure = substr
}

// FailLink makes every subsequent link fail.
func (d *Driver) FailLink(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.linkFailure = fail
}

// FailGen makes the next n generations of kind k return 0.
func (d *Driver) FailGen(k Kind, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.genFailures[k] = n
}

// GenQuery creates a query object. Queries are not part of the cache,
// so this is not a backend.Driver method.
func (d *Driver) GenQuery() uint32 {
	defer d.enter("GenQuery")()
	return d.gen(Query)
}

// backend.Driver

// Info reports the driver capabilities without recording a call.
func (d *Driver) Info() backend.Info {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info
}

func (d *Driver) GenBuffer() uint32 {
	defer d.enter("GenBuffer")()
	return d.gen(Buffer)
}

func (d *Driver) BindBuffer(target, buffer uint32) {
	defer d.enter("BindBuffer", target, buffer)()
	d.bound[target] = buffer
}

func (d *Driver) BufferData(target uint32, size int, usage uint32) {
	defer d.enter("BufferData", target, size, usage)()
	if id := d.bound[target]; id != 0 {
		d.buffers[id] = make([]byte, size)
	}
}

// span returns the storage of the buffer bound to target in [offset,
// offset+size), or nil when the range is not backed.
func (d *Driver) span(target uint32, offset, size int) []byte {
	buf := d.buffers[d.bound[target]]
	if offset < 0 || size < 0 || offset+size > len(buf) {
		return nil
	}
	return buf[offset : offset+size]
}

func (d *Driver) BufferSubData(target uint32, offset int, data []byte) {
	defer d.enter("BufferSubData", target, offset, len(data))()
	copy(d.span(target, offset, len(data)), data)
}

func (d *Driver) GetBufferSubData(target uint32, offset int, data []byte) {
	defer d.enter("GetBufferSubData", target, offset, len(data))()
	copy(data, d.span(target, offset, len(data)))
}

func (d *Driver) CopyBufferSubData(readTarget, writeTarget uint32, readOffset, writeOffset, size int) {
	defer d.enter("CopyBufferSubData", readTarget, writeTarget, readOffset, writeOffset, size)()
	copy(d.span(writeTarget, writeOffset, size), d.span(readTarget, readOffset, size))
}

func (d *Driver) BindBufferRange(target, index, buffer uint32, offset, size int) {
	defer d.enter("BindBufferRange", target, index, buffer, offset, size)()
}

func (d *Driver) DeleteBuffer(buffer uint32) {
	defer d.enter("DeleteBuffer", buffer)()
	if d.remove(Buffer, buffer) {
		delete(d.buffers, buffer)
		for target, id := range d.bound {
			if id == buffer {
				delete(d.bound, target)
			}
		}
	}
}

func (d *Driver) GenTexture() uint32 {
	defer d.enter("GenTexture")()
	return d.gen(Texture)
}

func (d *Driver) ActiveTexture(unit uint32) {
	defer d.enter("ActiveTexture", unit)()
	d.state.ActiveUnit = unit - gl.TEXTURE0
}

func (d *Driver) BindTexture(target, texture uint32) {
	defer d.enter("BindTexture", target, texture)()
}

func (d *Driver) TexParameteri(target, pname uint32, param int32) {
	defer d.enter("TexParameteri", target, pname, param)()
}

func (d *Driver) TexImage2D(target uint32, level, internalFormat, width, height int32, format, typ uint32) {
	defer d.enter("TexImage2D", target, level, internalFormat, width, height, format, typ)()
}

func (d *Driver) TexImage3D(target uint32, level, internalFormat, width, height, depth int32, format, typ uint32) {
	defer d.enter("TexImage3D", target, level, internalFormat, width, height, depth, format, typ)()
}

func (d *Driver) DeleteTexture(texture uint32) {
	defer d.enter("DeleteTexture", texture)()
	d.remove(Texture, texture)
}

func (d *Driver) GenRenderbuffer() uint32 {
	defer d.enter("GenRenderbuffer")()
	return d.gen(Renderbuffer)
}

func (d *Driver) BindRenderbuffer(renderbuffer uint32) {
	defer d.enter("BindRenderbuffer", renderbuffer)()
}

func (d *Driver) RenderbufferStorage(internalFormat uint32, samples, width, height int32) {
	defer d.enter("RenderbufferStorage", internalFormat, samples, width, height)()
}

func (d *Driver) DeleteRenderbuffer(renderbuffer uint32) {
	defer d.enter("DeleteRenderbuffer", renderbuffer)()
	d.remove(Renderbuffer, renderbuffer)
}

func (d *Driver) GenFramebuffer() uint32 {
	defer d.enter("GenFramebuffer")()
	return d.gen(Framebuffer)
}

func (d *Driver) BindFramebuffer(target, framebuffer uint32) {
	defer d.enter("BindFramebuffer", target, framebuffer)()
	switch target {
	case gl.DRAW_FRAMEBUFFER:
		d.state.DrawFB = framebuffer
	case gl.READ_FRAMEBUFFER:
		d.state.ReadFB = framebuffer
	case gl.FRAMEBUFFER:
		d.state.DrawFB = framebuffer
		d.state.ReadFB = framebuffer
	}
}

func (d *Driver) FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32) {
	defer d.enter("FramebufferTexture2D", target, attachment, textarget, texture, level)()
}

func (d *Driver) FramebufferTextureLayer(target, attachment, texture uint32, level, layer int32) {
	defer d.enter("FramebufferTextureLayer", target, attachment, texture, level, layer)()
}

func (d *Driver) FramebufferRenderbuffer(target, attachment, renderbufferTarget, renderbuffer uint32) {
	defer d.enter("FramebufferRenderbuffer", target, attachment, renderbufferTarget, renderbuffer)()
}

func (d *Driver) DrawBuffers(buffers []uint32) {
	defer d.enter("DrawBuffers", append([]uint32(nil), buffers...))()
}

func (d *Driver) ReadBuffer(src uint32) {
	defer d.enter("ReadBuffer", src)()
}

func (d *Driver) DeleteFramebuffer(framebuffer uint32) {
	defer d.enter("DeleteFramebuffer", framebuffer)()
	if d.remove(Framebuffer, framebuffer) {
		if d.state.DrawFB == framebuffer {
			d.state.DrawFB = 0
		}
		if d.state.ReadFB == framebuffer {
			d.state.ReadFB = 0
		}
	}
}

func (d *Driver) ClearBufferfv(buffer uint32, drawBuffer int32, value [4]float32) {
	defer d.enter("ClearBufferfv", buffer, drawBuffer, value)()
}

func (d *Driver) ClearBufferiv(buffer uint32, drawBuffer int32, value [4]int32) {
	defer d.enter("ClearBufferiv", buffer, drawBuffer, value)()
}

func (d *Driver) ClearBufferuiv(buffer uint32, drawBuffer int32, value [4]uint32) {
	defer d.enter("ClearBufferuiv", buffer, drawBuffer, value)()
}

func (d *Driver) ClearBufferfi(buffer uint32, drawBuffer int32, depth float32, stencil int32) {
	defer d.enter("ClearBufferfi", buffer, drawBuffer, depth, stencil)()
}

func (d *Driver) GenVertexArray() uint32 {
	defer d.enter("GenVertexArray")()
	return d.gen(VertexArray)
}

func (d *Driver) BindVertexArray(array uint32) {
	defer d.enter("BindVertexArray", array)()
	d.state.VertexArray = array
}

func (d *Driver) VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride int32, offset uintptr) {
	defer d.enter("VertexAttribPointer", index, size, typ, normalized, stride, offset)()
}

func (d *Driver) VertexAttribIPointer(index uint32, size int32, typ uint32, stride int32, offset uintptr) {
	defer d.enter("VertexAttribIPointer", index, size, typ, stride, offset)()
}

func (d *Driver) VertexAttribDivisor(index, divisor uint32) {
	defer d.enter("VertexAttribDivisor", index, divisor)()
}

func (d *Driver) EnableVertexAttribArray(index uint32) {
	defer d.enter("EnableVertexAttribArray", index)()
}

func (d *Driver) DeleteVertexArray(array uint32) {
	defer d.enter("DeleteVertexArray", array)()
	if d.remove(VertexArray, array) && d.state.VertexArray == array {
		d.state.VertexArray = 0
	}
}

func (d *Driver) GenSampler() uint32 {
	defer d.enter("GenSampler")()
	return d.gen(Sampler)
}

func (d *Driver) SamplerParameteri(sampler, pname uint32, param int32) {
	defer d.enter("SamplerParameteri", sampler, pname, param)()
}

func (d *Driver) SamplerParameterf(sampler, pname uint32, param float32) {
	defer d.enter("SamplerParameterf", sampler, pname, param)()
}

func (d *Driver) BindSampler(unit, sampler uint32) {
	defer d.enter("BindSampler", unit, sampler)()
}

func (d *Driver) DeleteSampler(sampler uint32) {
	defer d.enter("DeleteSampler", sampler)()
	d.remove(Sampler, sampler)
}

func (d *Driver) CreateShader(typ uint32) uint32 {
	defer d.enter("CreateShader", typ)()
	id := d.gen(Shader)
	if id != 0 {
		d.shaders[id] = &shaderObject{typ: typ}
	}
	return id
}

func (d *Driver) ShaderSource(shader uint32, source string) {
	defer d.enter("ShaderSource", shader, len(source))()
	if s, ok := d.shaders[shader]; ok {
		s.source = source
	}
}

func (d *Driver) CompileShader(shader uint32) {
	defer d.enter("CompileShader", shader)()
	s, ok := d.shaders[shader]
	if !ok {
		return
	}
	if d.compileFailure != "" && strings.Contains(s.source, d.compileFailure) {
		s.compiled = false
		s.log = "ERROR: 0:1: '" + d.compileFailure + "' : syntax error"
		return
	}
	s.compiled = true
	s.log = ""
}

func (d *Driver) GetShaderiv(shader, pname uint32, params *int32) {
	defer d.enter("GetShaderiv", shader, pname)()
	s, ok := d.shaders[shader]
	if !ok {
		*params = 0
		return
	}
	switch pname {
	case gl.COMPILE_STATUS:
		*params = boolInt(s.compiled)
	case gl.INFO_LOG_LENGTH:
		*params = int32(len(s.log))
	case gl.SHADER_SOURCE_LENGTH:
		*params = int32(len(s.source))
	}
}

func (d *Driver) GetShaderInfoLog(shader uint32) string {
	defer d.enter("GetShaderInfoLog", shader)()
	if s, ok := d.shaders[shader]; ok {
		return s.log
	}
	return ""
}

func (d *Driver) DeleteShader(shader uint32) {
	defer d.enter("DeleteShader", shader)()
	if d.remove(Shader, shader) {
		delete(d.shaders, shader)
	}
}

func (d *Driver) CreateProgram() uint32 {
	defer d.enter("CreateProgram")()
	id := d.gen(Program)
	if id != 0 {
		d.programs[id] = &programObject{}
	}
	return id
}

func (d *Driver) AttachShader(program, shader uint32) {
	defer d.enter("AttachShader", program, shader)()
	if p, ok := d.programs[program]; ok {
		p.shaders = append(p.shaders, shader)
	}
}

func (d *Driver) DetachShader(program, shader uint32) {
	defer d.enter("DetachShader", program, shader)()
	p, ok := d.programs[program]
	if !ok {
		return
	}
	for i, s := range p.shaders {
		if s == shader {
			p.shaders = append(p.shaders[:i], p.shaders[i+1:]...)
			return
		}
	}
}

func (d *Driver) LinkProgram(program uint32) {
	defer d.enter("LinkProgram", program)()
	p, ok := d.programs[program]
	if !ok {
		return
	}
	p.linked = false
	if d.linkFailure {
		p.log = "error: linking failed"
		return
	}
	stages := make([]shaderObject, 0, len(p.shaders))
	for _, id := range p.shaders {
		s, ok := d.shaders[id]
		if !ok || !s.compiled {
			p.log = fmt.Sprintf("error: shader %d is not compiled", id)
			return
		}
		stages = append(stages, *s)
	}
	p.iface = reflectStages(stages)
	p.linked = true
	p.log = ""
}

func (d *Driver) GetProgramiv(program, pname uint32, params *int32) {
	defer d.enter("GetProgramiv", program, pname)()
	p, ok := d.programs[program]
	if !ok {
		*params = 0
		return
	}
	switch pname {
	case gl.LINK_STATUS:
		*params = boolInt(p.linked)
	case gl.INFO_LOG_LENGTH:
		*params = int32(len(p.log))
	case gl.ACTIVE_UNIFORMS:
		*params = int32(len(p.iface.Uniforms))
	case gl.ACTIVE_ATTRIBUTES:
		*params = int32(len(p.iface.Attributes))
	case backend.ACTIVE_UNIFORM_BLOCKS:
		*params = int32(len(p.iface.UniformBlocks))
	}
}

func (d *Driver) GetProgramInfoLog(program uint32) string {
	defer d.enter("GetProgramInfoLog", program)()
	if p, ok := d.programs[program]; ok {
		return p.log
	}
	return ""
}

func (d *Driver) UseProgram(program uint32) {
	defer d.enter("UseProgram", program)()
	d.state.Program = program
}

func (d *Driver) DeleteProgram(program uint32) {
	defer d.enter("DeleteProgram", program)()
	if d.remove(Program, program) {
		delete(d.programs, program)
		if d.state.Program == program {
			d.state.Program = 0
		}
	}
}

func (d *Driver) GetUniformLocation(program uint32, name string) int32 {
	defer d.enter("GetUniformLocation", program, name)()
	p, ok := d.programs[program]
	if !ok || !p.linked {
		return -1
	}
	for _, u := range p.iface.Uniforms {
		if u.Name == name {
			return u.Location
		}
	}
	return -1
}

func (d *Driver) GetUniformBlockIndex(program uint32, name string) uint32 {
	defer d.enter("GetUniformBlockIndex", program, name)()
	p, ok := d.programs[program]
	if !ok || !p.linked {
		return backend.INVALID_INDEX
	}
	for _, b := range p.iface.UniformBlocks {
		if b.Name == name {
			return uint32(b.Location)
		}
	}
	return backend.INVALID_INDEX
}

func (d *Driver) UniformBlockBinding(program, blockIndex, blockBinding uint32) {
	defer d.enter("UniformBlockBinding", program, blockIndex, blockBinding)()
}

func (d *Driver) Uniform1i(location, value int32) {
	defer d.enter("Uniform1i", location, value)()
}

func (d *Driver) Uniform(fn backend.UniformFunction, location, count int32, data []byte) {
	defer d.enter("Uniform", fn, location, count, len(data))()
}

// ProgramInterface returns the interface reflected at link time.
func (d *Driver) ProgramInterface(program uint32) backend.ProgramInterface {
	defer d.enter("ProgramInterface", program)()
	p, ok := d.programs[program]
	if !ok {
		return backend.ProgramInterface{}
	}
	return backend.ProgramInterface{
		Attributes:    append([]backend.Resource(nil), p.iface.Attributes...),
		Uniforms:      append([]backend.Resource(nil), p.iface.Uniforms...),
		UniformBlocks: append([]backend.Resource(nil), p.iface.UniformBlocks...),
	}
}

func (d *Driver) DeleteQuery(query uint32) {
	defer d.enter("DeleteQuery", query)()
	d.remove(Query, query)
}

func (d *Driver) Enable(capability uint32) {
	defer d.enter("Enable", capability)()
	d.state.Enabled[capability] = true
}

func (d *Driver) Disable(capability uint32) {
	defer d.enter("Disable", capability)()
	d.state.Enabled[capability] = false
}

func (d *Driver) Viewport(x, y, width, height int32) {
	defer d.enter("Viewport", x, y, width, height)()
	d.state.Viewport = [4]int32{x, y, width, height}
}

func (d *Driver) CullFace(mode uint32) {
	defer d.enter("CullFace", mode)()
}

func (d *Driver) DepthFunc(fn uint32) {
	defer d.enter("DepthFunc", fn)()
}

func (d *Driver) DepthMask(flag bool) {
	defer d.enter("DepthMask", flag)()
	d.state.DepthMask = flag
}

func (d *Driver) StencilMaskSeparate(face, mask uint32) {
	defer d.enter("StencilMaskSeparate", face, mask)()
	if face == gl.FRONT || face == gl.FRONT_AND_BACK {
		d.state.StencilMask = mask
	}
}

func (d *Driver) StencilFuncSeparate(face, fn uint32, ref int32, mask uint32) {
	defer d.enter("StencilFuncSeparate", face, fn, ref, mask)()
}

func (d *Driver) StencilOpSeparate(face, sfail, dpfail, dppass uint32) {
	defer d.enter("StencilOpSeparate", face, sfail, dpfail, dppass)()
}

func (d *Driver) BlendEquationSeparate(modeRGB, modeAlpha uint32) {
	defer d.enter("BlendEquationSeparate", modeRGB, modeAlpha)()
}

func (d *Driver) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha uint32) {
	defer d.enter("BlendFuncSeparate", srcRGB, dstRGB, srcAlpha, dstAlpha)()
}

func (d *Driver) Clear(mask uint32) {
	defer d.enter("Clear", mask)()
}

func (d *Driver) DrawArraysInstanced(mode uint32, first, count, instanceCount int32) {
	defer d.enter("DrawArraysInstanced", mode, first, count, instanceCount)()
}

func (d *Driver) DrawElementsInstanced(mode uint32, count int32, typ uint32, offset uintptr, instanceCount int32) {
	defer d.enter("DrawElementsInstanced", mode, count, typ, offset, instanceCount)()
}

func (d *Driver) DispatchCompute(x, y, z uint32) {
	defer d.enter("DispatchCompute", x, y, z)()
}

func (d *Driver) MemoryBarrier(barriers uint32) {
	defer d.enter("MemoryBarrier", barriers)()
}

func (d *Driver) Flush() {
	defer d.enter("Flush")()
}

// backend.IndirectDrawer

func (d *Driver) DrawArraysIndirect(mode uint32, offset uintptr) {
	defer d.enter("DrawArraysIndirect", mode, offset)()
}

func (d *Driver) DrawElementsIndirect(mode, typ uint32, offset uintptr) {
	defer d.enter("DrawElementsIndirect", mode, typ, offset)()
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

var (
	_ backend.Driver         = (*Driver)(nil)
	_ backend.IndirectDrawer = (*Driver)(nil)
)
