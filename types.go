package nativexec

import (
	"context"
	"time"

	"github.com/averau/go-native-executor/core"
)

// Re-export commonly used types and entry points from core so that most
// users only import this package.

// Task is the unit of work (Closure).
type Task = core.Task

// TaskTraits pins a task's priority and execution context.
type TaskTraits = core.TaskTraits

// TaskPriority is the worker priority class.
type TaskPriority = core.TaskPriority

// ExecutionContext selects the worker pool or the main context.
type ExecutionContext = core.ExecutionContext

// Scheduler is the host scheduling capability.
type Scheduler = core.Scheduler

// TaskRunner is a posting handle for one serialized context.
type TaskRunner = core.TaskRunner

// Waker reschedules a suspended computation.
type Waker = core.Waker

// Timer is a future that completes after a host-scheduled delay.
type Timer = core.Timer

// PanicError is the outcome of a computation that panicked mid-poll.
type PanicError = core.PanicError

// Future is a suspend/resume state machine representing deferred work.
type Future[T any] = core.Future[T]

// FutureFunc adapts an ordinary function to the Future interface.
type FutureFunc[T any] = core.FutureFunc[T]

// Result is the outcome a task delivers to its awaiters.
type Result[T any] = core.Result[T]

// TaskHandle is a cross-goroutine-safe handle for an in-flight computation.
type TaskHandle[T any] = core.TaskHandle[T]

// LocalTaskHandle is a TaskHandle pinned to a serialized runner.
type LocalTaskHandle[T any] = core.LocalTaskHandle[T]

// LocalValue holds a value usable only on the goroutine that created it.
type LocalValue[T any] = core.LocalValue[T]

// OnceValue holds a value that can be taken at most once.
type OnceValue[T any] = core.OnceValue[T]

// Mailbox holds a value confined to main-context closures.
type Mailbox[T any] = core.Mailbox[T]

// ErrTaskCancelled is the outcome of an awaited cancelled task.
var ErrTaskCancelled = core.ErrTaskCancelled

// Priority constants.
const (
	PriorityBackground      TaskPriority = core.PriorityBackground
	PriorityUtility         TaskPriority = core.PriorityUtility
	PriorityDefault         TaskPriority = core.PriorityDefault
	PriorityUserInitiated   TaskPriority = core.PriorityUserInitiated
	PriorityUserInteractive TaskPriority = core.PriorityUserInteractive
)

// Execution context constants.
const (
	ContextWorker ExecutionContext = core.ContextWorker
	ContextMain   ExecutionContext = core.ContextMain
)

// Convenience constructors for TaskTraits.
var (
	DefaultTaskTraits     = core.DefaultTaskTraits
	TraitsBackground      = core.TraitsBackground
	TraitsUtility         = core.TraitsUtility
	TraitsUserInitiated   = core.TraitsUserInitiated
	TraitsUserInteractive = core.TraitsUserInteractive
)

// RunnerFromContext retrieves the serialized runner executing the current
// task, if any.
var RunnerFromContext = core.RunnerFromContext

// Spawn schedules fut on the worker pool at default priority.
func Spawn[T any](s Scheduler, fut core.Future[T]) *core.TaskHandle[T] {
	return core.Spawn(s, fut)
}

// SpawnWithPriority schedules fut on the worker pool at the given priority.
func SpawnWithPriority[T any](s Scheduler, fut core.Future[T], priority TaskPriority) *core.TaskHandle[T] {
	return core.SpawnWithPriority(s, fut, priority)
}

// SpawnMain schedules fut on the serialized main context.
func SpawnMain[T any](s Scheduler, fut core.Future[T]) *core.TaskHandle[T] {
	return core.SpawnMain(s, fut)
}

// SpawnLocal schedules fut pinned to the serialized runner executing the
// current task.
func SpawnLocal[T any](ctx context.Context, fut core.Future[T]) *core.LocalTaskHandle[T] {
	return core.SpawnLocal(ctx, fut)
}

// After returns a Timer that completes once duration has elapsed.
func After(s Scheduler, duration time.Duration) *Timer {
	return core.After(s, duration)
}

// AfterSecs is After expressed in whole seconds.
func AfterSecs(s Scheduler, secs uint64) *Timer {
	return core.AfterSecs(s, secs)
}

// Sleep blocks the calling goroutine until secs have elapsed on the host
// scheduler or ctx is done.
func Sleep(ctx context.Context, s Scheduler, secs uint64) error {
	return core.Sleep(ctx, s, secs)
}

// NewLocalValue wraps value for goroutine-affine access.
func NewLocalValue[T any](value T) *core.LocalValue[T] {
	return core.NewLocalValue(value)
}

// NewOnceValue wraps value for single consumption.
func NewOnceValue[T any](value T) *core.OnceValue[T] {
	return core.NewOnceValue(value)
}

// NewMailbox wraps value for main-context-confined access.
func NewMailbox[T any](s Scheduler, value T) *core.Mailbox[T] {
	return core.NewMailbox(s, value)
}

// MailboxCall schedules f onto the main context with exclusive access to
// the mailbox value and returns a handle resolving with f's return value.
func MailboxCall[T, R any](m *core.Mailbox[T], f func(*T) R) *core.TaskHandle[R] {
	return core.Call(m, f)
}
