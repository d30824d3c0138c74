package shader

import "errors"

var (
	// ErrIncludeNotFound is returned when an #include names a source that
	// is not in the include map.
	ErrIncludeNotFound = errors.New("shader: include not found")

	// ErrIncludeCycle is returned when includes reference each other.
	ErrIncludeCycle = errors.New("shader: include cycle")

	// ErrTranslate wraps WGSL parse, lowering, validation and GLSL
	// generation failures.
	ErrTranslate = errors.New("shader: translation failed")

	// ErrStage is returned for a stage the target GLSL version cannot
	// express, or for a stage that is not a single shader stage.
	ErrStage = errors.New("shader: unsupported stage")
)
