package glcache

import (
	"slices"

	"github.com/gogpu/glcache/backend"
)

// UniformBinding uploads Count array elements starting at Offset bytes
// of the uniform data to Location with Function.
type UniformBinding struct {
	Function backend.UniformFunction
	Location int32
	Count    int32
	Offset   int
}

// UniformData is a uniform layout together with the bytes it reads.
type UniformData struct {
	Layout []UniformBinding
	Data   []byte
}

type uniformUpload struct {
	layout []UniformBinding
	data   []byte
}

// newUniformUpload validates u and copies it.
func newUniformUpload(u *UniformData) (*uniformUpload, error) {
	if u == nil {
		return nil, nil
	}
	if err := checkUniformLayout(u.Layout, len(u.Data)); err != nil {
		return nil, err
	}
	return &uniformUpload{layout: slices.Clone(u.Layout), data: slices.Clone(u.Data)}, nil
}

func checkUniformLayout(layout []UniformBinding, size int) error {
	for i, b := range layout {
		if !b.Function.Valid() {
			return invalidf("uniform %d has unknown function %d", i, b.Function)
		}
		if b.Count <= 0 || b.Offset < 0 {
			return invalidf("uniform %d has count %d at offset %d", i, b.Count, b.Offset)
		}
		end := b.Offset + int(b.Count)*b.Function.Components()*4
		if end > size {
			return invalidf("uniform %d reads [%d, %d) of %d bytes", i, b.Offset, end, size)
		}
	}
	return nil
}

// withData returns a copy of u reading data instead.
func (u *uniformUpload) withData(data []byte) (*uniformUpload, error) {
	if u == nil {
		return nil, invalidf("object has no uniform layout")
	}
	if len(data) != len(u.data) {
		return nil, invalidf("uniform data is %d bytes, layout needs %d", len(data), len(u.data))
	}
	return &uniformUpload{layout: u.layout, data: slices.Clone(data)}, nil
}

// uploadLocked writes the uniforms of the bound program.
func (c *Context) uploadLocked(u *uniformUpload) {
	if u == nil {
		return
	}
	for _, b := range u.layout {
		end := b.Offset + int(b.Count)*b.Function.Components()*4
		c.drv.Uniform(b.Function, b.Location, b.Count, u.data[b.Offset:end])
	}
}
