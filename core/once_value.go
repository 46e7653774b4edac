package core

import "sync"

// OnceValue holds a value that can be read any number of times but taken at
// most once. Taking invalidates all further reads. The consumed
// check-and-flip is a single indivisible operation, so two concurrent Take
// calls can never both succeed: exactly one wins and the other fails
// fatally. Double consumption is a caller logic bug, reported by panic.
type OnceValue[T any] struct {
	mu       sync.Mutex
	value    T
	consumed bool
}

// NewOnceValue wraps value for single consumption.
func NewOnceValue[T any](value T) *OnceValue[T] {
	return &OnceValue[T]{value: value}
}

// Get returns the contained value without consuming it.
// Panics if the value has already been taken.
func (o *OnceValue[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.consumed {
		panic("attempted to read a OnceValue that has already been taken")
	}
	return o.value
}

// Take moves the value out, flipping the consumed flag in the same critical
// section. Panics if called twice.
func (o *OnceValue[T]) Take() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.consumed {
		panic("attempted to take a OnceValue twice")
	}
	o.consumed = true
	value := o.value
	var zero T
	o.value = zero
	return value
}

// Consumed reports whether the value has been taken.
func (o *OnceValue[T]) Consumed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.consumed
}
