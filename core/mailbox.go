package core

import (
	"context"
	"runtime/debug"
)

// Mailbox owns a value that is only ever touched inside closures scheduled
// onto the main context, regardless of which goroutine requests access.
// The main context's single-threaded execution serializes the closures, so
// no locking on T is needed inside them.
//
// Access always routes through normal scheduling, even when the caller is
// already on the main context: executing inline would reorder the closure
// ahead of work already queued there and open reentrancy hazards, at the
// cost of one scheduling hop.
type Mailbox[T any] struct {
	sched Scheduler
	value T // touched only inside main-context closures
}

// NewMailbox wraps value for main-context-confined access through s.
func NewMailbox[T any](s Scheduler, value T) *Mailbox[T] {
	return &Mailbox[T]{sched: s, value: value}
}

// Handle schedules f to run on the main context with exclusive access to
// the contained value. It is fire-and-forget; use Call to observe a result.
func (m *Mailbox[T]) Handle(f func(*T)) {
	m.sched.PostMain(func(context.Context) {
		f(&m.value)
	})
}

// Call schedules f onto the main context and returns a handle that resolves
// with f's return value once it has run. Concurrent calls are each
// independently scheduled and execute in main-context submission order.
//
// Call is a package function because Go methods cannot introduce the result
// type parameter R.
func Call[T, R any](m *Mailbox[T], f func(*T) R) *TaskHandle[R] {
	slot := newResultSlot[R]()
	m.sched.PostMain(func(context.Context) {
		defer func() {
			if r := recover(); r != nil {
				slot.fail(slotPanicked, &PanicError{Value: r, Stack: debug.Stack()})
				panic(r) // let the main runner's handler see it too
			}
		}()
		slot.fill(f(&m.value))
	})
	return &TaskHandle[R]{slot: slot}
}
