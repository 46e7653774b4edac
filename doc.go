// Package nativexec bridges a polled-future computation model onto a host
// scheduling facility: a priority worker pool plus one serialized main
// context.
//
// User code expresses deferred work as a suspend/resume state machine (a
// core.Future) and hands it to a spawn entry point together with an
// execution context and a priority class. The returned handle can be
// awaited or cancelled from any goroutine. Whenever the computation yields,
// its next resume step is resubmitted to the host scheduler at the traits
// fixed at spawn time; the executor never busy-polls and never creates its
// own goroutines for resume work.
//
// # Quick Start
//
//	d := dispatch.New(4) // 4 workers
//	d.Start(context.Background())
//	defer d.Stop()
//
//	timer := nativexec.AfterSecs(d, 1)
//	handle := nativexec.Spawn(d, core.FutureFunc[int](func(w core.Waker) (int, bool) {
//		if _, ready := timer.Poll(w); !ready {
//			return 0, false
//		}
//		return 42, true
//	}))
//
//	v, err := handle.Result(context.Background())
//
// # Key Concepts
//
// Scheduler: the narrow host capability the executor depends on. It runs a
// closure now on the main context, now on a priority-tagged worker, or on a
// worker after a delay. dispatch.Dispatcher is the goroutine-backed
// implementation; tests can substitute a fake.
//
// TaskHandle: a cross-goroutine-safe handle for an in-flight computation,
// awaitable by blocking (Result) or by polling (it is itself a Future).
// LocalTaskHandle pins resume steps to the serialized runner it was spawned
// on.
//
// Value containers: LocalValue enforces goroutine affinity at every access,
// OnceValue enforces single consumption, and Mailbox confines a value to
// main-context closures so it needs no locking.
package nativexec
