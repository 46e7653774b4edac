package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// =============================================================================
// wakeBridge: The resume loop driving a Future to completion
// =============================================================================

// Resume-loop states. The bridge guarantees that resume attempts for one
// task are strictly sequential: a new submission happens only on the
// idle -> scheduled transition, or from the single in-flight resume when a
// wake arrived mid-poll (repoll).
const (
	bridgeIdle      int32 = iota // suspended, waiting for a wake
	bridgeScheduled              // a resume attempt is queued on the scheduler
	bridgeRunning                // a poll is in flight
	bridgeRepoll                 // a poll is in flight and a wake arrived
	bridgeDone                   // completed, cancelled or panicked
)

// wakeBridge turns "a suspended computation became ready" into "submit one
// resume attempt to the host scheduler at the task's traits". It is the
// Waker handed to every poll of its Future.
type wakeBridge[T any] struct {
	state atomic.Int32

	sched  Scheduler
	traits TaskTraits

	// Local tasks: resume attempts are posted to runner instead of sched,
	// and gid is asserted before every poll.
	runner TaskRunner
	gid    uint64

	fut  Future[T]
	slot *resultSlot[T]

	name    string
	panics  PanicHandler
	metrics Metrics
}

func newWakeBridge[T any](
	sched Scheduler,
	runner TaskRunner,
	fut Future[T],
	traits TaskTraits,
	slot *resultSlot[T],
	name string,
) *wakeBridge[T] {
	b := &wakeBridge[T]{
		sched:   sched,
		traits:  traits,
		runner:  runner,
		fut:     fut,
		slot:    slot,
		name:    name,
		panics:  &DefaultPanicHandler{},
		metrics: &NilMetrics{},
	}
	if runner != nil {
		b.gid = goroutineID()
	}

	var src any = sched
	if runner != nil {
		src = runner
	}
	if in, ok := src.(Instrumented); ok {
		if ph := in.PanicHandler(); ph != nil {
			b.panics = ph
		}
		if m := in.Metrics(); m != nil {
			b.metrics = m
		}
	}
	return b
}

// start submits the first resume attempt. Called exactly once, at spawn.
func (b *wakeBridge[T]) start() {
	b.state.Store(bridgeScheduled)
	b.submit()
}

// Wake reschedules the task. Safe from any goroutine; redundant wakes are
// coalesced so at most one resume attempt is ever queued or running.
func (b *wakeBridge[T]) Wake() {
	for {
		switch s := b.state.Load(); s {
		case bridgeIdle:
			if b.state.CompareAndSwap(bridgeIdle, bridgeScheduled) {
				b.submit()
				return
			}
		case bridgeRunning:
			if b.state.CompareAndSwap(bridgeRunning, bridgeRepoll) {
				return
			}
		default:
			// Already scheduled, already flagged for repoll, or done.
			return
		}
	}
}

// submit hands one resume attempt to the host at the task's pinned
// context and priority. Every resume attempt that is not the final one
// causes exactly one such submission.
func (b *wakeBridge[T]) submit() {
	switch {
	case b.runner != nil:
		b.runner.PostTask(b.resume)
	case b.traits.Context == ContextMain:
		b.sched.PostMain(b.resume)
	default:
		b.sched.Post(b.resume, b.traits)
	}
}

// resume is one resume attempt: poll the computation once, then either
// finish, go back to sleep, or resubmit when a wake raced the poll.
func (b *wakeBridge[T]) resume(ctx context.Context) {
	if !b.slot.pending() {
		// Cancelled (or already resolved): drop the computation without
		// polling it again.
		b.state.Store(bridgeDone)
		b.fut = nil
		return
	}

	if b.runner != nil {
		if gid := goroutineID(); gid != b.gid {
			panic(fmt.Sprintf(
				"local task resumed on goroutine %d, but it is pinned to goroutine %d",
				gid, b.gid))
		}
	}

	b.state.Store(bridgeRunning)

	start := time.Now()
	pending := b.pollOnce(ctx)
	b.metrics.RecordResumeDuration(b.name, b.traits.Priority, time.Since(start))

	if !pending {
		return
	}

	if !b.state.CompareAndSwap(bridgeRunning, bridgeIdle) {
		// A wake arrived while polling; schedule the next attempt ourselves
		// since the waker saw bridgeRunning and did not submit.
		b.state.Store(bridgeScheduled)
		b.submit()
	}
}

// pollOnce polls the computation a single time, recovering panics so that
// an irrecoverable failure resolves this task's slot without corrupting the
// resume loop for unrelated tasks. It reports whether the computation is
// still pending.
func (b *wakeBridge[T]) pollOnce(ctx context.Context) (pending bool) {
	defer func() {
		if r := recover(); r != nil {
			b.state.Store(bridgeDone)
			b.fut = nil
			stack := debug.Stack()
			b.metrics.RecordTaskPanic(b.name, r)
			b.panics.HandlePanic(ctx, b.name, -1, r, stack)
			b.slot.fail(slotPanicked, &PanicError{Value: r, Stack: stack})
			pending = false
		}
	}()

	value, ready := b.fut.Poll(b)
	if !ready {
		return true
	}

	b.state.Store(bridgeDone)
	b.fut = nil
	b.slot.fill(value)
	return false
}
