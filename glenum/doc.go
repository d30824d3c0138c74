// Package glenum maps gputypes descriptors to OpenGL enumerants.
//
// Every lookup returns an ok flag instead of a silent default, so callers
// can reject unknown values as invalid descriptors before touching the
// driver:
//
//	fn, ok := glenum.Compare(gputypes.CompareFunctionLess)
//	if !ok {
//		return fmt.Errorf("%w: depth compare %d", glcache.ErrInvalidDescriptor, f)
//	}
//
// VertexFormat and ImageFormat describe attribute layouts and texture
// storage. Compressed texture formats have no entry.
package glenum
