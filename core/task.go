package core

import "context"

// Task is the unit of work submitted to a Scheduler (a closure).
type Task func(ctx context.Context)

// =============================================================================
// TaskPriority / ExecutionContext: Define where and how urgently a task runs
// =============================================================================

// TaskPriority selects the worker priority class a task's resume steps are
// submitted with. It is attached at spawn time and never changes afterwards.
type TaskPriority int

const (
	// PriorityBackground: Lowest priority. Background tasks may be delayed
	// arbitrarily relative to the other classes.
	PriorityBackground TaskPriority = iota

	// PriorityUtility: Deferred maintenance work, above Background.
	PriorityUtility

	// PriorityDefault: Standard priority for most tasks.
	PriorityDefault

	// PriorityUserInitiated: Work the user is actively waiting on.
	PriorityUserInitiated

	// PriorityUserInteractive: Highest priority, keeps the app responsive.
	PriorityUserInteractive
)

// String returns a stable label for metrics and diagnostics.
func (p TaskPriority) String() string {
	switch p {
	case PriorityBackground:
		return "background"
	case PriorityUtility:
		return "utility"
	case PriorityDefault:
		return "default"
	case PriorityUserInitiated:
		return "user_initiated"
	case PriorityUserInteractive:
		return "user_interactive"
	default:
		return "unknown"
	}
}

// ExecutionContext selects which scheduling operation carries a task's
// resume steps: the concurrent worker pool or the serialized main context.
type ExecutionContext int

const (
	// ContextWorker: Resume steps run on the worker pool.
	ContextWorker ExecutionContext = iota

	// ContextMain: Resume steps run on the single serialized main context.
	ContextMain
)

// TaskTraits travel with every resume submission of a task.
// They are fixed at spawn time; every resume step of the same task is
// submitted with exactly these traits.
type TaskTraits struct {
	Priority TaskPriority
	Context  ExecutionContext
}

func DefaultTaskTraits() TaskTraits {
	return TaskTraits{Priority: PriorityDefault}
}

func TraitsBackground() TaskTraits {
	return TaskTraits{Priority: PriorityBackground}
}

func TraitsUtility() TaskTraits {
	return TaskTraits{Priority: PriorityUtility}
}

func TraitsUserInitiated() TaskTraits {
	return TaskTraits{Priority: PriorityUserInitiated}
}

func TraitsUserInteractive() TaskTraits {
	return TaskTraits{Priority: PriorityUserInteractive}
}
