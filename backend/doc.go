// Package backend defines the driver abstraction the resource cache runs on.
//
// A [Driver] is the OpenGL-style immediate-mode API: object generation,
// binding, state toggles, draws and program reflection. It is never called
// concurrently; glcache.Context serializes access.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime:
//
//	import _ "github.com/gogpu/glcache/backend/gles"      // real GL context
//	import _ "github.com/gogpu/glcache/backend/recording" // in-memory driver
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	b, err := backend.InitDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	ctx, err := glcache.NewContext(b.Driver())
//
// # Available Backends
//
// - "gles": EGL + OpenGL on Linux, every call pinned to one OS thread
// - "recording": counts and logs calls, detects overlapping calls
//
// # Optional Capabilities
//
// Drivers that support indirect draws also implement [IndirectDrawer].
// Callers detect it with a type assertion.
package backend
