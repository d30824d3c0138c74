// Package gles provides a backend.Driver over a real OpenGL or OpenGL ES
// context.
//
// The context is created headless through EGL and made current on one
// locked OS thread. Every driver call is queued to that thread, so a
// Driver may be used from any goroutine as long as calls are serialized,
// which glcache.Context does.
//
// GL entry points are resolved at runtime with eglGetProcAddress and
// invoked through goffi; no cgo is involved. The backend registers itself
// as "gles" on Linux:
//
//	import _ "github.com/gogpu/glcache/backend/gles"
//
//	b := backend.Get(backend.BackendGLES)
//	if err := b.Init(); err != nil {
//		// no usable EGL display
//	}
//	defer b.Close()
//	ctx, err := glcache.NewContext(b.Driver())
package gles
