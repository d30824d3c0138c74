package gles

import "github.com/gogpu/glcache/backend"

const backendUniformCount = int(backend.UniformMat4) + 1

// uniformProcNames maps each backend.UniformFunction to the vector form
// of its glUniform* entry point. Booleans upload through the int forms.
var uniformProcNames = [backendUniformCount]string{
	backend.Uniform1i:     "glUniform1iv",
	backend.Uniform2i:     "glUniform2iv",
	backend.Uniform3i:     "glUniform3iv",
	backend.Uniform4i:     "glUniform4iv",
	backend.Uniform1b:     "glUniform1iv",
	backend.Uniform2b:     "glUniform2iv",
	backend.Uniform3b:     "glUniform3iv",
	backend.Uniform4b:     "glUniform4iv",
	backend.Uniform1ui:    "glUniform1uiv",
	backend.Uniform2ui:    "glUniform2uiv",
	backend.Uniform3ui:    "glUniform3uiv",
	backend.Uniform4ui:    "glUniform4uiv",
	backend.Uniform1f:     "glUniform1fv",
	backend.Uniform2f:     "glUniform2fv",
	backend.Uniform3f:     "glUniform3fv",
	backend.Uniform4f:     "glUniform4fv",
	backend.UniformMat2:   "glUniformMatrix2fv",
	backend.UniformMat2x3: "glUniformMatrix2x3fv",
	backend.UniformMat2x4: "glUniformMatrix2x4fv",
	backend.UniformMat3x2: "glUniformMatrix3x2fv",
	backend.UniformMat3:   "glUniformMatrix3fv",
	backend.UniformMat3x4: "glUniformMatrix3x4fv",
	backend.UniformMat4x2: "glUniformMatrix4x2fv",
	backend.UniformMat4x3: "glUniformMatrix4x3fv",
	backend.UniformMat4:   "glUniformMatrix4fv",
}

// isMatrixProc reports whether the entry point for fn takes a transpose
// flag.
func isMatrixProc(fn int) bool {
	return fn >= int(backend.UniformMat2)
}

// uniformCount clamps count to the elements data actually holds.
func uniformCount(fn backend.UniformFunction, count int32, data []byte) int32 {
	per := fn.Components() * 4
	if per == 0 {
		return 0
	}
	if n := int32(len(data) / per); n < count {
		return n
	}
	return count
}
