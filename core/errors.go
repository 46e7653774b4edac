package core

import (
	"errors"
	"fmt"
)

// ErrTaskCancelled is the outcome delivered to awaiters of a task that was
// cancelled before completing. It is a normal, recoverable outcome, not a
// failure of the executor.
var ErrTaskCancelled = errors.New("task cancelled")

// PanicError is delivered to awaiters when the wrapped computation panicked
// mid-poll. The resume loop recovers the panic so unrelated tasks keep
// running; callers that never await the task observe nothing.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}
