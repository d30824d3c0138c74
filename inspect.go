package glcache

import (
	"fmt"

	"github.com/gogpu/glcache/backend"
	"github.com/gogpu/glcache/cache"
	"github.com/gogpu/glcache/shader"
)

// Report describes the native objects behind a consumer object.
type Report struct {
	Type string

	Buffer       uint32
	Texture      uint32
	Renderbuffer uint32
	Framebuffer  uint32
	VertexArray  uint32
	Program      uint32

	// Interface is the reflected program interface of pipelines and
	// computes.
	Interface *backend.ProgramInterface
	Resources []ResourceReport
}

// ResourceReport is one binding of a descriptor set.
type ResourceReport struct {
	// Kind is "uniform_buffer", "storage_buffer" or "sampler".
	Kind    string
	Binding int
	// Object is the buffer or texture name.
	Object uint32
	// Sampler is the sampler name of sampler bindings.
	Sampler uint32
	Offset  int
	Size    int
}

// Inspect reports the native names used by a *Buffer, *Image,
// *ImageFace, *Pipeline or *Compute.
func (c *Context) Inspect(obj any) (Report, error) {
	switch o := obj.(type) {
	case *Buffer:
		if err := c.checkBuffer(o); err != nil {
			return Report{}, err
		}
		return Report{Type: "buffer", Buffer: o.h.id}, nil
	case *Image:
		if err := c.checkImage(o); err != nil {
			return Report{}, err
		}
		r := Report{Type: "image"}
		if o.Renderbuffer() {
			r.Renderbuffer = o.h.id
		} else {
			r.Texture = o.h.id
		}
		return r, nil
	case *ImageFace:
		if err := c.checkImage(o.image); err != nil {
			return Report{}, err
		}
		r, _ := c.Inspect(o.image)
		r.Type = "image_face"
		r.Framebuffer = o.fb.id
		return r, nil
	case *Pipeline:
		if o.ctx != c {
			return Report{}, ErrForeignObject
		}
		if o.refs.released() {
			return Report{}, ErrHandleReleased
		}
		r := Report{
			Type:        "pipeline",
			Framebuffer: c.opts.defaultFramebuffer,
			VertexArray: o.vertexArray.id,
			Program:     o.program.id,
			Interface:   o.program.iface,
			Resources:   o.set.report(),
		}
		if o.framebuffer != nil {
			r.Framebuffer = o.framebuffer.id
		}
		return r, nil
	case *Compute:
		if o.ctx != c {
			return Report{}, ErrForeignObject
		}
		if o.refs.released() {
			return Report{}, ErrHandleReleased
		}
		return Report{
			Type:      "compute",
			Program:   o.program.id,
			Interface: o.program.iface,
			Resources: o.set.report(),
		}, nil
	default:
		return Report{}, invalidf("cannot inspect %T", obj)
	}
}

func (s *DescriptorSet) report() []ResourceReport {
	out := make([]ResourceReport, 0, s.Len())
	for _, b := range s.uniform {
		out = append(out, ResourceReport{Kind: "uniform_buffer", Binding: b.index, Object: b.buffer.id, Offset: b.offset, Size: b.size})
	}
	for _, b := range s.storage {
		out = append(out, ResourceReport{Kind: "storage_buffer", Binding: b.index, Object: b.buffer.id, Offset: b.offset, Size: b.size})
	}
	for _, b := range s.samplers {
		out = append(out, ResourceReport{Kind: "sampler", Binding: b.index, Object: b.image.id, Sampler: b.sampler.id})
	}
	return out
}

// Stats is a snapshot of the context caches.
type Stats struct {
	Framebuffers   cache.Stats
	VertexArrays   cache.Stats
	Samplers       cache.Stats
	Shaders        cache.Stats
	Programs       cache.Stats
	DescriptorSets cache.Stats
	GlobalSettings cache.Stats

	// Translations reports the WGSL translation cache.
	Translations shader.CacheStats

	PendingTrash int
	DroppedTrash int64
	// Deleted counts native names deleted through the context.
	Deleted int64
}

// Live returns the number of cached entries across all caches.
func (s Stats) Live() int {
	return s.Framebuffers.Len + s.VertexArrays.Len + s.Samplers.Len + s.Shaders.Len +
		s.Programs.Len + s.DescriptorSets.Len + s.GlobalSettings.Len
}

func (s Stats) String() string {
	return fmt.Sprintf("live=%d fb=%d vao=%d sampler=%d shader=%d program=%d set=%d settings=%d pending=%d dropped=%d deleted=%d",
		s.Live(), s.Framebuffers.Len, s.VertexArrays.Len, s.Samplers.Len, s.Shaders.Len,
		s.Programs.Len, s.DescriptorSets.Len, s.GlobalSettings.Len,
		s.PendingTrash, s.DroppedTrash, s.Deleted)
}

// Stats returns cache sizes and hit counts.
func (c *Context) Stats() Stats {
	return Stats{
		Framebuffers:   c.framebuffers.Stats(),
		VertexArrays:   c.vertexArrays.Stats(),
		Samplers:       c.samplers.Stats(),
		Shaders:        c.shaders.Stats(),
		Programs:       c.programs.Stats(),
		DescriptorSets: c.descriptorSets.Stats(),
		GlobalSettings: c.settings.Stats(),
		Translations:   c.translator.Stats(),
		PendingTrash:   c.trash.Len(),
		DroppedTrash:   c.trash.Dropped(),
		Deleted:        c.deleted.Load(),
	}
}
