package recording

import (
	"sync"

	"github.com/gogpu/glcache/backend"
)

func init() {
	backend.Register(backend.BackendRecording, func() backend.Backend {
		return NewBackend()
	})
}

// Backend wraps a Driver as a backend.Backend.
type Backend struct {
	mu   sync.Mutex
	opts []Option
	drv  *Driver
}

// NewBackend creates a recording backend. The options are applied to the
// driver created by Init.
func NewBackend(opts ...Option) *Backend {
	return &Backend{opts: opts}
}

// Name returns "recording".
func (b *Backend) Name() string { return backend.BackendRecording }

// Init creates the driver. It never fails.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drv == nil {
		b.drv = New(b.opts...)
		backend.Logger().Debug("recording: driver created")
	}
	return nil
}

// Close drops the driver.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drv = nil
}

// Driver returns the driver, or nil before Init.
func (b *Backend) Driver() backend.Driver {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drv == nil {
		return nil
	}
	return b.drv
}

// Recorder returns the concrete driver for inspection.
func (b *Backend) Recorder() *Driver {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drv
}
