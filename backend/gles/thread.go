package gles

import (
	"runtime"
	"sync"
)

// funcRun is one queued call. done is closed once f has returned.
type funcRun struct {
	f    func()
	done chan struct{}
}

// thread runs functions on a single locked OS thread. GL contexts are
// current on exactly one thread, so every driver call goes through it.
type thread struct {
	queue chan funcRun
	quit  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// newThread starts the loop and returns once the OS thread is locked.
func newThread() *thread {
	t := &thread{
		queue: make(chan funcRun),
		quit:  make(chan struct{}),
	}
	started := make(chan struct{})
	t.wg.Add(1)
	go t.loop(started)
	<-started
	return t
}

func (t *thread) loop(started chan<- struct{}) {
	defer t.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	close(started)
	for {
		select {
		case r := <-t.queue:
			r.f()
			close(r.done)
		case <-t.quit:
			return
		}
	}
}

// call runs f on the locked thread and waits for it. It reports false
// without running f once the thread has been stopped.
func (t *thread) call(f func()) bool {
	r := funcRun{f: f, done: make(chan struct{})}
	select {
	case t.queue <- r:
	case <-t.quit:
		return false
	}
	<-r.done
	return true
}

// stop ends the loop after the call in flight, if any. It is idempotent.
func (t *thread) stop() {
	t.once.Do(func() { close(t.quit) })
	t.wg.Wait()
}
