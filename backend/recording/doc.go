// Package recording provides an in-memory backend.Driver.
//
// The driver keeps a model of object names and bindings, counts every
// call, optionally logs call arguments and can inject faults (compile and
// link failures, zero names from Gen*). It also counts calls that start
// while another call is in flight, which is how tests check that
// glcache.Context never issues overlapping driver calls.
//
//	d := recording.New(recording.WithCallLog())
//	ctx, _ := glcache.NewContext(d)
//	...
//	if d.Overlaps() != 0 {
//		t.Fatal("overlapping driver calls")
//	}
//
// Program reflection recognizes single-line GLSL declarations of vertex
// inputs, uniforms and uniform blocks.
package recording
