package core

import (
	"context"
	"sync"
	"time"
)

// fakeScheduler is an in-memory Scheduler for exercising the resume loop
// without the dispatch package. It records every submission's traits, runs
// worker submissions on fresh goroutines, serializes main submissions on a
// single goroutine, and can hold submissions back for cancellation tests.
type fakeScheduler struct {
	mu          sync.Mutex
	workerPosts []TaskTraits
	mainPosts   int
	delayPosts  []time.Duration
	panics      []any

	hold bool
	held []Task

	runner    *fakeMainRunner
	mainQueue chan Task
	done      chan struct{}
	stopped   chan struct{}
}

type fakeMainRunner struct {
	s *fakeScheduler
}

func (r *fakeMainRunner) PostTask(task Task) {
	r.s.mainQueue <- task
}

func (r *fakeMainRunner) PostDelayedTask(task Task, delay time.Duration) {
	time.AfterFunc(delay, func() { r.PostTask(task) })
}

func newFakeScheduler() *fakeScheduler {
	s := &fakeScheduler{
		mainQueue: make(chan Task, 256),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	s.runner = &fakeMainRunner{s: s}
	go s.mainLoop()
	return s
}

func (s *fakeScheduler) mainLoop() {
	defer close(s.stopped)
	ctx := WithTaskRunner(context.Background(), s.runner)
	for {
		select {
		case task := <-s.mainQueue:
			s.runProtected(ctx, task)
		case <-s.done:
			return
		}
	}
}

// runProtected mirrors the real main runner: a panicking closure must not
// kill the loop.
func (s *fakeScheduler) runProtected(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.panics = append(s.panics, r)
			s.mu.Unlock()
		}
	}()
	task(ctx)
}

func (s *fakeScheduler) PostMain(task Task) {
	s.mu.Lock()
	s.mainPosts++
	s.mu.Unlock()
	s.mainQueue <- task
}

func (s *fakeScheduler) Post(task Task, traits TaskTraits) {
	s.mu.Lock()
	s.workerPosts = append(s.workerPosts, traits)
	if s.hold {
		s.held = append(s.held, task)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	go task(context.Background())
}

func (s *fakeScheduler) PostDelayed(task Task, delay time.Duration, traits TaskTraits) {
	s.mu.Lock()
	s.delayPosts = append(s.delayPosts, delay)
	s.mu.Unlock()
	time.AfterFunc(delay, func() { task(context.Background()) })
}

// releaseHeld runs submissions held back while hold was set, synchronously.
func (s *fakeScheduler) releaseHeld() {
	s.mu.Lock()
	held := s.held
	s.held = nil
	s.hold = false
	s.mu.Unlock()
	for _, task := range held {
		task(context.Background())
	}
}

func (s *fakeScheduler) workerTraits() []TaskTraits {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskTraits, len(s.workerPosts))
	copy(out, s.workerPosts)
	return out
}

func (s *fakeScheduler) recordedPanics() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]any, len(s.panics))
	copy(out, s.panics)
	return out
}

func (s *fakeScheduler) Stop() {
	close(s.done)
	<-s.stopped
}

// Instrumented: keep panic output out of test logs and record the panics.

func (s *fakeScheduler) PanicHandler() PanicHandler { return (*recordingPanicHandler)(s) }
func (s *fakeScheduler) Metrics() Metrics           { return &NilMetrics{} }

type recordingPanicHandler fakeScheduler

func (h *recordingPanicHandler) HandlePanic(ctx context.Context, contextName string, workerID int, panicInfo any, stackTrace []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, panicInfo)
}
