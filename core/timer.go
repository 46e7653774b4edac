package core

import (
	"context"
	"sync/atomic"
	"time"
)

// Timer is a Future that completes after a duration has elapsed on the host
// scheduler's clock, without busy-polling: the first poll registers a
// one-shot delayed callback with the Scheduler and yields; the callback
// marks the timer finished and wakes the task; the next poll completes.
//
// Precision is whatever the host scheduler provides; drift equal to its
// scheduling latency is expected. A zero or negative duration resolves on
// the next available resume opportunity, never inline.
type Timer struct {
	sched    Scheduler
	duration time.Duration
	started  bool
	finished atomic.Bool
}

var _ Future[struct{}] = (*Timer)(nil)

// After returns a Timer that completes once duration has elapsed, counted
// from the first poll.
func After(s Scheduler, duration time.Duration) *Timer {
	return &Timer{sched: s, duration: duration}
}

// AfterSecs is After expressed in whole seconds.
func AfterSecs(s Scheduler, secs uint64) *Timer {
	return After(s, time.Duration(secs)*time.Second)
}

// Poll implements Future. Polls are sequential per task, so the started
// flag needs no synchronization; the finished flag crosses goroutines and
// is atomic.
func (t *Timer) Poll(w Waker) (struct{}, bool) {
	if t.finished.Load() {
		return struct{}{}, true
	}

	if !t.started {
		t.started = true
		finished := &t.finished
		t.sched.PostDelayed(func(context.Context) {
			finished.Store(true)
			w.Wake()
		}, t.duration, DefaultTaskTraits())
	}

	return struct{}{}, false
}

// Sleep blocks the calling goroutine until secs seconds have elapsed on the
// host scheduler, or ctx is done. It is the convenience for plain closures
// that are not running as a polled computation; inside one, await a Timer
// instead.
func Sleep(ctx context.Context, s Scheduler, secs uint64) error {
	done := make(chan struct{})
	s.PostDelayed(func(context.Context) {
		close(done)
	}, time.Duration(secs)*time.Second, DefaultTaskTraits())

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
