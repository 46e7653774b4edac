package core

import (
	"context"
	"time"
)

// =============================================================================
// Scheduler: The host scheduling capability the executor bridges onto
// =============================================================================

// Scheduler is the narrow interface the executor requires from the host
// scheduling facility. An implementation owns a multi-threaded worker pool
// plus one serialized main context; the executor itself never creates
// goroutines.
//
// A Scheduler is initialized once before any spawn or timer call and stays
// valid for the process lifetime. It is passed explicitly into every spawn
// and timer call so the executor can be tested against a fake.
//
// Implementations must be safe for concurrent use.
type Scheduler interface {
	// PostMain enqueues task for single-threaded execution on the main
	// context. Nothing is observed synchronously.
	PostMain(task Task)

	// Post enqueues task on a worker context honoring the priority class
	// carried in traits.
	Post(task Task, traits TaskTraits)

	// PostDelayed enqueues task to run no earlier than delay from now,
	// on a worker context.
	PostDelayed(task Task, delay time.Duration, traits TaskTraits)
}

// Instrumented is optionally implemented by Schedulers that carry a panic
// handler and a metrics sink. The resume loop picks these up at spawn time;
// otherwise it falls back to DefaultPanicHandler and NilMetrics.
type Instrumented interface {
	PanicHandler() PanicHandler
	Metrics() Metrics
}

// =============================================================================
// TaskRunner: Posting handle for one serialized execution context
// =============================================================================

// TaskRunner posts closures to one serialized execution context. Runners
// inject themselves into the context passed to their tasks, which is how
// SpawnLocal discovers the context it must pin resume steps to.
type TaskRunner interface {
	PostTask(task Task)
	PostDelayedTask(task Task, delay time.Duration)
}

// =============================================================================
// Context Helper
// =============================================================================

type taskRunnerKeyType struct{}

var taskRunnerKey taskRunnerKeyType

// WithTaskRunner returns a context carrying r. Serialized runners call this
// before invoking each task.
func WithTaskRunner(ctx context.Context, r TaskRunner) context.Context {
	return context.WithValue(ctx, taskRunnerKey, r)
}

// RunnerFromContext returns the TaskRunner executing the current task,
// or nil when the context does not belong to a serialized runner.
func RunnerFromContext(ctx context.Context) TaskRunner {
	if v := ctx.Value(taskRunnerKey); v != nil {
		return v.(TaskRunner)
	}
	return nil
}
