package backend

import (
	"errors"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when Driver is called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend is the interface for driver backends.
// It abstracts how a native graphics context is obtained, allowing the
// resource cache to run against a real GL context or an in-memory
// recording driver.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type Backend interface {
	// Name returns the backend identifier (e.g., "gles", "recording").
	Name() string

	// Init creates the native context.
	// This must be called before Driver.
	Init() error

	// Close destroys the native context.
	// The backend and its driver must not be used after Close is called.
	Close()

	// Driver returns the driver bound to the native context.
	// It returns nil before Init.
	Driver() Driver
}

// Info describes a driver's static capabilities.
type Info struct {
	Vendor   string
	Renderer string
	Version  string

	// GLES is set for OpenGL ES contexts, WebGL for browser contexts.
	// Frame setup skips desktop-only toggles on these.
	GLES  bool
	WebGL bool

	Limits   Limits
	Features Features
}

// Limits are the implementation limits the cache validates against.
type Limits struct {
	MaxVertexAttribs    int
	MaxTextureUnits     int
	MaxColorAttachments int
	MaxSamples          int
}

// Features reports optional capabilities.
type Features struct {
	Compute      bool
	Samplers     bool
	DrawIndirect bool
}

// DefaultLimits returns the limits every GL 3.3 / ES 3.0 context guarantees.
func DefaultLimits() Limits {
	return Limits{
		MaxVertexAttribs:    16,
		MaxTextureUnits:     16,
		MaxColorAttachments: 8,
		MaxSamples:          4,
	}
}

// ResourceKind classifies a reflected program resource.
type ResourceKind uint8

// Resource kinds.
const (
	ResourceAttribute ResourceKind = iota + 1
	ResourceUniform
	ResourceUniformBlock
)

// String returns the kind name.
func (k ResourceKind) String() string {
	switch k {
	case ResourceAttribute:
		return "attribute"
	case ResourceUniform:
		return "uniform"
	case ResourceUniformBlock:
		return "uniform_block"
	default:
		return "unknown"
	}
}

// Resource is one active program resource.
type Resource struct {
	Kind     ResourceKind
	Name     string
	Location int32
	// Type is the GL type enum for attributes and uniforms.
	Type uint32
	// Size is the array length, or the data size in bytes for blocks.
	Size int32
}

// ProgramInterface is the reflected interface of a linked program.
type ProgramInterface struct {
	Attributes    []Resource
	Uniforms      []Resource
	UniformBlocks []Resource
}

// Lookup returns the resource with the given name across all classes.
func (pi *ProgramInterface) Lookup(name string) (Resource, bool) {
	if pi == nil {
		return Resource{}, false
	}
	for _, set := range [][]Resource{pi.Attributes, pi.Uniforms, pi.UniformBlocks} {
		for _, r := range set {
			if r.Name == name {
				return r, true
			}
		}
	}
	return Resource{}, false
}

// Len returns the total number of reflected resources.
func (pi *ProgramInterface) Len() int {
	if pi == nil {
		return 0
	}
	return len(pi.Attributes) + len(pi.Uniforms) + len(pi.UniformBlocks)
}
