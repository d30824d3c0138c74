// Command glstress hammers a glcache context from many goroutines and
// reports cache statistics.
//
// By default it runs against the in-memory recording driver, which also
// counts overlapping driver calls. Use -backend=gles to run on a real
// EGL context.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/glcache"
	"github.com/gogpu/glcache/backend"
	_ "github.com/gogpu/glcache/backend/gles"
	_ "github.com/gogpu/glcache/backend/recording"
)

func main() {
	var (
		name       = flag.String("backend", backend.BackendRecording, "driver backend (recording or gles)")
		workers    = flag.Int("workers", 8, "concurrent workers")
		iterations = flag.Int("iterations", 200, "iterations per worker")
		deferred   = flag.Bool("deferred", false, "queue releases for the frame loop")
		compute    = flag.Bool("compute", true, "also dispatch compute when supported")
		timeout    = flag.Duration("timeout", time.Minute, "abort after this long")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	glcache.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	b := backend.Get(*name)
	if b == nil {
		log.Fatalf("unknown backend %q (available: %v)", *name, backend.Available())
	}
	if err := b.Init(); err != nil {
		log.Fatalf("init %s: %v", *name, err)
	}
	defer b.Close()
	drv := b.Driver()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	rep, err := run(ctx, drv, config{
		workers:    *workers,
		iterations: *iterations,
		deferred:   *deferred,
		compute:    *compute && drv.Info().Features.Compute,
	})

	slog.Info("glstress: done",
		"backend", *name,
		"iterations", rep.Iterations,
		"frames", rep.Frames,
		"elapsed", rep.Elapsed,
		"overlaps", rep.Overlaps,
	)
	log.Printf("stats: %s", rep.Stats)
	if err != nil {
		log.Fatalf("run: %v", err)
	}
	if rep.Overlaps > 0 {
		log.Fatalf("%d overlapping driver calls", rep.Overlaps)
	}
}
