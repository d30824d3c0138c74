// Package glcache caches and manages the lifetime of OpenGL objects.
//
// # Overview
//
// glcache sits between a renderer and an OpenGL-style driver. Every
// framebuffer, vertex array, sampler, shader, program, descriptor set and
// render-state block is keyed by its canonical descriptor, so equal
// descriptors share one native object. Objects are reference counted and
// deleted when the last user gives them back.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/glcache"
//		"github.com/gogpu/glcache/backend/recording"
//	)
//
//	ctx, err := glcache.NewContext(recording.New())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	img, _ := ctx.NewImage(glcache.ImageDescriptor{
//		Width: 256, Height: 256, Format: gputypes.TextureFormatRGBA8Unorm,
//	})
//	face, _ := img.Face(0, 0)
//	p, err := ctx.NewPipeline(glcache.PipelineDescriptor{
//		Vertex:      shader.Source{Code: vertexGLSL},
//		Fragment:    shader.Source{Code: fragmentGLSL},
//		Framebuffer: []*glcache.ImageFace{face},
//		VertexCount: 3,
//	})
//
//	ctx.NewFrame(false, false)
//	p.Render()
//	ctx.EndFrame(true, true)
//
// # Concurrency
//
// A Context may be used from any number of goroutines. Cache hits take
// only a shard read lock and an atomic increment. Misses, binds and
// draws serialize on the context mutex, so the driver never sees two
// calls at once.
//
// # Release
//
// Every get-or-create method returns an object carrying one use, given
// back with the matching Release method. Consumer objects (Buffer, Image,
// ImageFace, Pipeline, Compute) that are dropped without Release are
// released by a runtime cleanup: their native names go to the trash queue
// and are deleted at the next NewFrame or EndFrame.
//
// # Context Loss
//
// After MarkLost or Close every call that would reach the driver returns
// ErrContextLost. Releases still leave the caches consistent but delete
// nothing.
package glcache
