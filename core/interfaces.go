package core

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling computation panics
// =============================================================================

// PanicHandler is called when a computation panics during a resume attempt,
// or when a raw closure panics inside a host runner.
//
// Implementations must be thread-safe; they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called after the panic has been recovered.
	//
	// Parameters:
	// - ctx: The context of the panicked closure (may carry the runner)
	// - contextName: Which execution context the panic occurred on
	// - workerID: Worker index for pool workers, -1 for serialized contexts
	// - panicInfo: The recovered panic value
	// - stackTrace: The stack at the time of panic
	HandlePanic(ctx context.Context, contextName string, workerID int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler prints panic information to stdout.
type DefaultPanicHandler struct{}

func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, contextName string, workerID int, panicInfo any, stackTrace []byte) {
	if workerID >= 0 {
		fmt.Printf("[Worker %d @ %s] Panic: %v\nStack trace:\n%s",
			workerID, contextName, panicInfo, stackTrace)
	} else {
		fmt.Printf("[%s] Panic: %v\nStack trace:\n%s",
			contextName, panicInfo, stackTrace)
	}
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics collects execution metrics from the resume loop and the host
// scheduler. Implementations can forward to monitoring systems
// (Prometheus, StatsD, etc.).
//
// Methods must be non-blocking and fast; they sit on the resume path.
type Metrics interface {
	// RecordResumeDuration records how long one resume attempt (a single
	// poll of a computation, or one raw closure) took to execute.
	RecordResumeDuration(contextName string, priority TaskPriority, duration time.Duration)

	// RecordTaskPanic records that a computation panicked.
	RecordTaskPanic(contextName string, panicInfo any)

	// RecordQueueDepth records the current depth of a submission queue.
	RecordQueueDepth(contextName string, depth int)

	// RecordTaskRejected records that a submission was rejected
	// (e.g. during shutdown).
	RecordTaskRejected(contextName string, reason string)
}

// NilMetrics is the no-op default when no metrics sink is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordResumeDuration(contextName string, priority TaskPriority, duration time.Duration) {
}

func (m *NilMetrics) RecordTaskPanic(contextName string, panicInfo any) {}

func (m *NilMetrics) RecordQueueDepth(contextName string, depth int) {}

func (m *NilMetrics) RecordTaskRejected(contextName string, reason string) {}

// =============================================================================
// RejectedTaskHandler: Interface for handling rejected submissions
// =============================================================================

// RejectedTaskHandler is called when the host scheduler refuses a
// submission, typically because it is shutting down.
//
// Implementations must be thread-safe.
type RejectedTaskHandler interface {
	HandleRejectedTask(contextName string, reason string)
}

// DefaultRejectedTaskHandler logs rejected submissions to stdout.
type DefaultRejectedTaskHandler struct{}

func (h *DefaultRejectedTaskHandler) HandleRejectedTask(contextName string, reason string) {
	fmt.Printf("[%s] Task rejected: %s\n", contextName, reason)
}
