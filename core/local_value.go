package core

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
)

// goroutineID extracts the current goroutine ID from runtime.Stack.
// The first line of a single-goroutine stack dump is
// "goroutine 123 [running]:".
func goroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return 0
	}
	buf = buf[len(prefix):]
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		return 0
	}
	gid, err := strconv.ParseUint(string(buf[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// =============================================================================
// LocalValue: A value usable only on the goroutine that created it
// =============================================================================

// LocalValue holds a value that may only be accessed on the goroutine where
// it was created. Every accessor validates the goroutine identity at
// runtime and panics on mismatch: crossing this boundary is a logic bug in
// the caller, not a recoverable condition, so the check is a deliberate
// fail-fast assertion rather than synchronization.
type LocalValue[T any] struct {
	created uint64
	value   T
}

// NewLocalValue records the constructing goroutine and wraps value.
func NewLocalValue[T any](value T) *LocalValue[T] {
	return &LocalValue[T]{created: goroutineID(), value: value}
}

// OnLocal reports whether the current goroutine is the one that created the
// value.
func (l *LocalValue[T]) OnLocal() bool {
	return goroutineID() == l.created
}

func (l *LocalValue[T]) assertLocal(op string) {
	if gid := goroutineID(); gid != l.created {
		panic(fmt.Sprintf(
			"attempted to %s a LocalValue on goroutine %d, created on goroutine %d",
			op, gid, l.created))
	}
}

// Get returns the contained value. Panics off the creating goroutine.
func (l *LocalValue[T]) Get() T {
	l.assertLocal("access")
	return l.value
}

// Set replaces the contained value. Panics off the creating goroutine.
func (l *LocalValue[T]) Set(value T) {
	l.assertLocal("mutate")
	l.value = value
}

// Update mutates the contained value in place. Panics off the creating
// goroutine.
func (l *LocalValue[T]) Update(f func(*T)) {
	l.assertLocal("mutate")
	f(&l.value)
}
