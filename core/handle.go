package core

import (
	"context"
	"sync"
)

// =============================================================================
// resultSlot: The shared result sink between spawner and resume loop
// =============================================================================

type slotState int

const (
	slotPending slotState = iota
	slotFilled
	slotCancelled
	slotPanicked
)

// resultSlot is the only state shared across threads per task (besides the
// resume-loop state word). It transitions empty -> filled/cancelled/panicked
// exactly once; the transition closes the done channel and notifies every
// registered waker, which establishes the happens-before edge awaiters rely
// on.
type resultSlot[T any] struct {
	mu     sync.Mutex
	state  slotState
	value  T
	err    error
	done   chan struct{}
	wakers []Waker
}

func newResultSlot[T any]() *resultSlot[T] {
	return &resultSlot[T]{done: make(chan struct{})}
}

// resolve performs the single state transition. It returns false when the
// slot was already resolved, in which case nothing is observable.
func (s *resultSlot[T]) resolve(state slotState, value T, err error) bool {
	s.mu.Lock()
	if s.state != slotPending {
		s.mu.Unlock()
		return false
	}
	s.state = state
	s.value = value
	s.err = err
	wakers := s.wakers
	s.wakers = nil
	s.mu.Unlock()

	close(s.done)
	for _, w := range wakers {
		w.Wake()
	}
	return true
}

func (s *resultSlot[T]) fill(value T) bool {
	return s.resolve(slotFilled, value, nil)
}

func (s *resultSlot[T]) fail(state slotState, err error) bool {
	var zero T
	return s.resolve(state, zero, err)
}

func (s *resultSlot[T]) pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == slotPending
}

// poll reads the slot as a Future; while pending it registers w to be woken
// on resolution. All registered wakers are notified, in unspecified order.
func (s *resultSlot[T]) poll(w Waker) (Result[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == slotPending {
		if w != nil {
			s.wakers = append(s.wakers, w)
		}
		return Result[T]{}, false
	}
	return Result[T]{Value: s.value, Err: s.err}, true
}

func (s *resultSlot[T]) tryResult() (T, error, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == slotPending {
		var zero T
		return zero, nil, false
	}
	return s.value, s.err, true
}

// =============================================================================
// TaskHandle: Cross-thread-safe handle for an in-flight computation
// =============================================================================

// TaskHandle represents an in-flight computation. It is shared between the
// spawner and the resume loop and is safe for concurrent use from any
// goroutine. Dropping a handle without awaiting lets the computation run to
// completion with its result discarded.
//
// A TaskHandle is itself a Future[Result[T]], so one task can await another.
type TaskHandle[T any] struct {
	slot *resultSlot[T]
}

var _ Future[Result[int]] = (*TaskHandle[int])(nil)

// Poll reads the task's outcome, registering w to be woken on completion
// while the task is still running.
func (h *TaskHandle[T]) Poll(w Waker) (Result[T], bool) {
	return h.slot.poll(w)
}

// Done returns a channel closed when the task completes, is cancelled, or
// panics.
func (h *TaskHandle[T]) Done() <-chan struct{} {
	return h.slot.done
}

// TryResult reports the outcome without blocking. ok is false while the
// task is still running.
func (h *TaskHandle[T]) TryResult() (value T, err error, ok bool) {
	return h.slot.tryResult()
}

// Result blocks the calling goroutine until the task completes or ctx is
// done. It is the awaiting surface for code that is not itself running as a
// task; inside a computation, poll the handle instead.
//
// err is ErrTaskCancelled for cancelled tasks and a *PanicError when the
// computation panicked.
func (h *TaskHandle[T]) Result(ctx context.Context) (T, error) {
	select {
	case <-h.slot.done:
		value, err, _ := h.slot.tryResult()
		return value, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel requests cancellation. It is idempotent and has no effect once the
// task has completed. Awaiters observe ErrTaskCancelled immediately; the
// resume loop drops the computation on its next resume attempt without
// polling it again. Cancellation is cooperative: an in-flight poll is not
// preempted.
func (h *TaskHandle[T]) Cancel() {
	h.slot.fail(slotCancelled, ErrTaskCancelled)
}

// =============================================================================
// LocalTaskHandle: Thread-affine variant
// =============================================================================

// LocalTaskHandle is a TaskHandle whose computation is not safe to resume
// from an arbitrary goroutine: every resume step is posted back to the
// serialized runner the task was spawned on, and the resume loop fatally
// asserts the goroutine identity before each poll.
//
// The handle itself may be held and awaited from any goroutine.
type LocalTaskHandle[T any] struct {
	TaskHandle[T]
}
