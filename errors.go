package glcache

import (
	"errors"
	"fmt"
)

var (
	// ErrContextLost is returned by every operation that would call the
	// driver after MarkLost or Close.
	ErrContextLost = errors.New("glcache: context lost")

	// ErrInvalidDescriptor is wrapped by all validation failures. A failed
	// validation makes no driver calls.
	ErrInvalidDescriptor = errors.New("glcache: invalid descriptor")

	// ErrCreateFailed is returned when the driver hands out a zero name.
	ErrCreateFailed = errors.New("glcache: object creation failed")

	// ErrCompileFailed is wrapped by *ShaderError for compile failures.
	ErrCompileFailed = errors.New("glcache: shader compilation failed")

	// ErrLinkFailed is wrapped by *ShaderError for link failures.
	ErrLinkFailed = errors.New("glcache: program link failed")

	// ErrHandleReleased is returned when releasing an object whose use
	// count is already zero, or when using an object after Release.
	ErrHandleReleased = errors.New("glcache: handle already released")

	// ErrUnsupported is returned for features the driver does not report.
	ErrUnsupported = errors.New("glcache: unsupported")

	// ErrForeignObject is returned when an object created by one Context
	// is passed to another.
	ErrForeignObject = errors.New("glcache: object belongs to another context")
)

// ShaderError carries the driver log of a failed compile or link.
type ShaderError struct {
	// Stage is "vertex", "fragment", "compute" or "link".
	Stage string
	Log   string
}

func (e *ShaderError) Error() string {
	if e.Stage == stageLink {
		return fmt.Sprintf("glcache: program link failed: %s", e.Log)
	}
	return fmt.Sprintf("glcache: %s shader compilation failed: %s", e.Stage, e.Log)
}

// Unwrap returns ErrLinkFailed or ErrCompileFailed.
func (e *ShaderError) Unwrap() error {
	if e.Stage == stageLink {
		return ErrLinkFailed
	}
	return ErrCompileFailed
}

const stageLink = "link"

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidDescriptor}, args...)...)
}
