// Package shader prepares shader source for the driver.
//
// ResolveIncludes expands #include "name" lines from a map of named
// snippets. Translator turns WGSL into GLSL with naga and caches the
// result; GLSL sources pass through after include resolution.
//
//	tr := shader.NewTranslator(glsl.Version330, 0, nil)
//	code, err := tr.Translate(shader.Source{Language: shader.WGSL, Code: src},
//		gputypes.ShaderStageVertex, nil)
package shader
