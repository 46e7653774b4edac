package dispatch

import (
	"context"
	"testing"

	"github.com/averau/go-native-executor/core"
)

// TestPriorityQueue_PopsHighestFirst tests priority ordering
// Main test items:
// 1. Push submissions at all five priority classes
// 2. Pop returns them from highest to lowest priority
func TestPriorityQueue_PopsHighestFirst(t *testing.T) {
	q := newPriorityQueue()

	priorities := []core.TaskPriority{
		core.PriorityBackground,
		core.PriorityUserInteractive,
		core.PriorityDefault,
		core.PriorityUtility,
		core.PriorityUserInitiated,
	}
	for _, p := range priorities {
		q.Push(func(ctx context.Context) {}, core.TaskTraits{Priority: p})
	}

	expected := []core.TaskPriority{
		core.PriorityUserInteractive,
		core.PriorityUserInitiated,
		core.PriorityDefault,
		core.PriorityUtility,
		core.PriorityBackground,
	}
	for i, want := range expected {
		item, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d: queue unexpectedly empty", i)
		}
		if item.traits.Priority != want {
			t.Errorf("Pop %d: expected %v, got %v", i, want, item.traits.Priority)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("Queue should be empty after popping everything")
	}
}

// TestPriorityQueue_FIFOWithinPriority tests stability
// Main test items:
// 1. Push many submissions at the same priority
// 2. Pop returns them in submission order
func TestPriorityQueue_FIFOWithinPriority(t *testing.T) {
	q := newPriorityQueue()

	const n = 50
	results := make([]int, 0, n)
	for i := 0; i < n; i++ {
		id := i
		q.Push(func(ctx context.Context) {
			results = append(results, id)
		}, core.DefaultTaskTraits())
	}

	for i := 0; i < n; i++ {
		item, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d: queue unexpectedly empty", i)
		}
		item.task(context.Background())
	}

	for i := 0; i < n; i++ {
		if results[i] != i {
			t.Fatalf("FIFO order broken at %d: got %d", i, results[i])
		}
	}
}

// TestPriorityQueue_Clear tests clearing
// Main test items:
// 1. Clear empties the queue and resets its length
func TestPriorityQueue_Clear(t *testing.T) {
	q := newPriorityQueue()
	for i := 0; i < 10; i++ {
		q.Push(func(ctx context.Context) {}, core.DefaultTaskTraits())
	}

	if q.Len() != 10 {
		t.Fatalf("Expected length 10, got %d", q.Len())
	}

	q.Clear()

	if q.Len() != 0 {
		t.Errorf("Expected empty queue after Clear, got %d", q.Len())
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop after Clear should report empty")
	}
}
