package backend

import (
	"github.com/gogpu/gpucontext"
)

// Backend names.
const (
	// BackendGLES is the EGL + OpenGL (ES) driver on a locked OS thread.
	BackendGLES = "gles"

	// BackendRecording is the in-memory driver used by tests and tooling.
	BackendRecording = "recording"
)

// Factory creates a new backend instance.
type Factory func() Backend

// backends holds registered backends.
// Priority order for backend selection (first available wins):
// a real GL context beats the recording driver.
var backends = gpucontext.NewRegistry[Backend](
	gpucontext.WithPriority(BackendGLES, BackendRecording),
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	backends.Register(name, factory)
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	backends.Unregister(name)
}

// Available returns a list of registered backend names.
func Available() []string {
	return backends.Available()
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return backends.Has(name)
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) Backend {
	return backends.Get(name)
}

// Default returns the best available backend based on priority.
// Priority order: gles > recording
// Returns nil if no backends are registered.
func Default() Backend {
	b := backends.Best()
	if b != nil {
		Logger().Info("backend: selected", "name", backends.BestName())
	}
	return b
}

// MustDefault returns the default backend or panics.
func MustDefault() Backend {
	b := Default()
	if b == nil {
		panic("backend: no backend available")
	}
	return b
}

// InitDefault initializes the default backend based on availability.
func InitDefault() (Backend, error) {
	b := Default()
	if b == nil {
		return nil, ErrBackendNotAvailable
	}

	if err := b.Init(); err != nil {
		return nil, err
	}

	return b, nil
}
