package recording

import (
	"strconv"
	"strings"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

// GLSL type enums reported for reflected resources.
const (
	typeFloatVec2 = 0x8B50
	typeFloatVec3 = 0x8B51
	typeFloatVec4 = 0x8B52
	typeIntVec2   = 0x8B53
	typeIntVec3   = 0x8B54
	typeIntVec4   = 0x8B55
	typeFloatMat2 = 0x8B5A
	typeFloatMat3 = 0x8B5B
	typeFloatMat4 = 0x8B5C
	typeSampler2D = 0x8B5E
	typeSamplerCb = 0x8B60
	typeSampler2A = 0x8DC1
)

var glslTypes = map[string]uint32{
	"float":          gl.FLOAT,
	"int":            gl.INT,
	"uint":           gl.UNSIGNED_INT,
	"vec2":           typeFloatVec2,
	"vec3":           typeFloatVec3,
	"vec4":           typeFloatVec4,
	"ivec2":          typeIntVec2,
	"ivec3":          typeIntVec3,
	"ivec4":          typeIntVec4,
	"mat2":           typeFloatMat2,
	"mat3":           typeFloatMat3,
	"mat4":           typeFloatMat4,
	"sampler2D":      typeSampler2D,
	"samplerCube":    typeSamplerCb,
	"sampler2DArray": typeSampler2A,
}

// reflectStages derives a program interface from GLSL declarations.
// Only single-line declarations are recognized:
//
//	in vec3 in_vert;                   // vertex stage only
//	uniform mat4 mvp;
//	uniform sampler2D textures[4];
//	layout(std140) uniform Common {    // block
func reflectStages(stages []shaderObject) backend.ProgramInterface {
	var pi backend.ProgramInterface
	seen := make(map[string]bool)

	add := func(set *[]backend.Resource, r backend.Resource) {
		key := r.Kind.String() + ":" + r.Name
		if seen[key] {
			return
		}
		seen[key] = true
		r.Location = int32(len(*set))
		*set = append(*set, r)
	}

	for _, s := range stages {
		for _, line := range strings.Split(s.source, "\n") {
			line = stripLayout(strings.TrimSpace(line))
			switch {
			case s.typ == gl.VERTEX_SHADER && strings.HasPrefix(line, "in "):
				typ, name, size, ok := declaration(strings.TrimPrefix(line, "in "))
				if ok {
					add(&pi.Attributes, backend.Resource{Kind: backend.ResourceAttribute, Name: name, Type: typ, Size: size})
				}
			case strings.HasPrefix(line, "uniform "):
				rest := strings.TrimPrefix(line, "uniform ")
				if strings.Contains(rest, "{") || !strings.HasSuffix(rest, ";") {
					fields := strings.Fields(strings.TrimSuffix(strings.TrimSpace(strings.Split(rest, "{")[0]), "{"))
					if len(fields) == 1 {
						add(&pi.UniformBlocks, backend.Resource{Kind: backend.ResourceUniformBlock, Name: fields[0]})
					}
					continue
				}
				typ, name, size, ok := declaration(rest)
				if ok {
					add(&pi.Uniforms, backend.Resource{Kind: backend.ResourceUniform, Name: name, Type: typ, Size: size})
				}
			}
		}
	}
	return pi
}

func stripLayout(line string) string {
	if !strings.HasPrefix(line, "layout") {
		return line
	}
	if i := strings.Index(line, ")"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}

// declaration parses "type name;" or "type name[N];".
func declaration(decl string) (typ uint32, name string, size int32, ok bool) {
	decl = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(decl), ";"))
	fields := strings.Fields(decl)
	if len(fields) < 2 {
		return 0, "", 0, false
	}
	typeName, name := fields[len(fields)-2], fields[len(fields)-1]
	size = 1
	if i := strings.Index(name, "["); i > 0 && strings.HasSuffix(name, "]") {
		n, err := strconv.Atoi(name[i+1 : len(name)-1])
		if err != nil || n <= 0 {
			return 0, "", 0, false
		}
		name, size = name[:i], int32(n)
	}
	return glslTypes[typeName], name, size, true
}
