package core

// Waker is the signal that reschedules a suspended computation.
// Wake is safe to call from any goroutine and any number of times; calls
// are coalesced so that at most one resume attempt is in flight per task.
type Waker interface {
	Wake()
}

// A Future is a suspend/resume state machine representing deferred work.
//
// Poll attempts to drive the computation to its final value. It returns
// (value, true) when the computation is complete. It returns (zero, false)
// when the computation is still pending; in that case Poll is responsible
// for arranging that w.Wake is called once progress is possible (a timer
// elapsing, another task completing, an external event).
//
// Poll is never invoked concurrently for the same task: resume attempts are
// strictly sequential. Poll must not block; offload blocking work to the
// scheduler instead.
type Future[T any] interface {
	Poll(w Waker) (T, bool)
}

// FutureFunc adapts an ordinary function to the Future interface.
type FutureFunc[T any] func(w Waker) (T, bool)

func (f FutureFunc[T]) Poll(w Waker) (T, bool) { return f(w) }

// Ready returns a Future that completes with v on its first poll.
func Ready[T any](v T) Future[T] {
	return FutureFunc[T](func(Waker) (T, bool) { return v, true })
}

// Result is the outcome a task delivers to its awaiters: either a value, or
// a terminal error (ErrTaskCancelled, or a *PanicError when the computation
// failed irrecoverably).
type Result[T any] struct {
	Value T
	Err   error
}
