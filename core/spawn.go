package core

import "context"

// Spawn schedules fut on the worker pool at default priority and returns
// immediately with a handle to the in-flight computation.
func Spawn[T any](s Scheduler, fut Future[T]) *TaskHandle[T] {
	return SpawnWithPriority(s, fut, PriorityDefault)
}

// SpawnWithPriority schedules fut on the worker pool at the given priority.
// Every resume step of the task is submitted with exactly this priority.
func SpawnWithPriority[T any](s Scheduler, fut Future[T], priority TaskPriority) *TaskHandle[T] {
	slot := newResultSlot[T]()
	b := newWakeBridge(s, nil, fut, TaskTraits{Priority: priority, Context: ContextWorker}, slot, "worker")
	b.start()
	return &TaskHandle[T]{slot: slot}
}

// SpawnMain schedules fut so that every resume step runs on the serialized
// main context.
func SpawnMain[T any](s Scheduler, fut Future[T]) *TaskHandle[T] {
	slot := newResultSlot[T]()
	b := newWakeBridge(s, nil, fut, TaskTraits{Priority: PriorityDefault, Context: ContextMain}, slot, "main")
	b.start()
	return &TaskHandle[T]{slot: slot}
}

// SpawnLocal schedules a computation whose resume steps are pinned to the
// serialized runner executing the current task. It must be called from
// inside a task running on such a runner (the runner is discovered through
// ctx); it panics otherwise. If the pinned runner ever resumes the task on
// a different goroutine, the resume loop fails fatally.
func SpawnLocal[T any](ctx context.Context, fut Future[T]) *LocalTaskHandle[T] {
	runner := RunnerFromContext(ctx)
	if runner == nil {
		panic("SpawnLocal: context does not carry a serialized task runner")
	}
	slot := newResultSlot[T]()
	b := newWakeBridge(nil, runner, fut, DefaultTaskTraits(), slot, "local")
	b.start()
	return &LocalTaskHandle[T]{TaskHandle[T]{slot: slot}}
}
