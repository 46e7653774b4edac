package core

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

// TestSpawn_DeliversResult tests basic spawn and await
// Main test items:
// 1. Spawn a computation that is ready on its first poll
// 2. Result returns the produced value with no error
// 3. The resume attempt ran on the worker context
func TestSpawn_DeliversResult(t *testing.T) {
	s := newFakeScheduler()
	defer s.Stop()

	handle := Spawn(s, Ready(42))

	v, err := handle.Result(context.Background())
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if v != 42 {
		t.Errorf("Expected 42, got %d", v)
	}

	traits := s.workerTraits()
	if len(traits) != 1 {
		t.Fatalf("Expected exactly 1 worker submission, got %d", len(traits))
	}
	if traits[0].Context != ContextWorker {
		t.Errorf("Expected worker context, got %v", traits[0].Context)
	}
}

// TestSpawn_TraitsInvariantAcrossResumes tests priority pinning
// Main test items:
// 1. Spawn a computation that yields several times before completing
// 2. Every resume attempt produces exactly one scheduler submission
// 3. Every submission carries the priority and context fixed at spawn time
func TestSpawn_TraitsInvariantAcrossResumes(t *testing.T) {
	s := newFakeScheduler()
	defer s.Stop()

	var polls atomic.Int32
	fut := FutureFunc[int](func(w Waker) (int, bool) {
		if polls.Add(1) < 4 {
			w.Wake()
			return 0, false
		}
		return 42, true
	})

	handle := SpawnWithPriority(s, fut, PriorityBackground)

	v, err := handle.Result(context.Background())
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if v != 42 {
		t.Errorf("Expected 42, got %d", v)
	}
	if got := polls.Load(); got != 4 {
		t.Errorf("Expected 4 polls, got %d", got)
	}

	traits := s.workerTraits()
	if len(traits) != 4 {
		t.Fatalf("Expected 4 submissions (one per resume), got %d", len(traits))
	}
	for i, tr := range traits {
		if tr.Priority != PriorityBackground {
			t.Errorf("Submission %d: expected PriorityBackground, got %v", i, tr.Priority)
		}
		if tr.Context != ContextWorker {
			t.Errorf("Submission %d: expected worker context, got %v", i, tr.Context)
		}
	}
}

// TestSpawnMain_RunsOnMainContext tests main-context spawning
// Main test items:
// 1. Spawn a multi-step computation onto the main context
// 2. Every poll runs on the main loop goroutine
// 3. No worker submissions are made
func TestSpawnMain_RunsOnMainContext(t *testing.T) {
	s := newFakeScheduler()
	defer s.Stop()

	// Learn the main loop's goroutine ID first.
	gidCh := make(chan uint64, 1)
	s.PostMain(func(ctx context.Context) {
		gidCh <- goroutineID()
	})
	mainGID := <-gidCh

	gids := make(map[uint64]bool)
	var polls int
	fut := FutureFunc[string](func(w Waker) (string, bool) {
		gids[goroutineID()] = true
		polls++
		if polls < 3 {
			w.Wake()
			return "", false
		}
		return "done", true
	})

	handle := SpawnMain(s, fut)

	v, err := handle.Result(context.Background())
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if v != "done" {
		t.Errorf("Expected \"done\", got %q", v)
	}

	if len(gids) != 1 || !gids[mainGID] {
		t.Errorf("Expected all polls on main goroutine %d, got %v", mainGID, gids)
	}
	if got := s.workerTraits(); len(got) != 0 {
		t.Errorf("Expected no worker submissions for a main task, got %d", len(got))
	}
}

// TestSpawn_SequentialResumes tests that polls never overlap
// Main test items:
// 1. An external goroutine hammers the waker while the task is in flight
// 2. A reentrancy counter inside Poll never observes two concurrent polls
// 3. The computation still completes with the right value
func TestSpawn_SequentialResumes(t *testing.T) {
	s := newFakeScheduler()
	defer s.Stop()

	var inPoll atomic.Int32
	var overlap atomic.Bool
	var polls atomic.Int32
	var waker atomic.Value // Waker

	fut := FutureFunc[int](func(w Waker) (int, bool) {
		if inPoll.Add(1) != 1 {
			overlap.Store(true)
		}
		defer inPoll.Add(-1)

		waker.Store(w)
		if polls.Add(1) < 50 {
			return 0, false
		}
		return 7, true
	})

	handle := Spawn(s, fut)

	// Hammer the waker from outside until the task completes.
	stop := make(chan struct{})
	hammerDone := make(chan struct{})
	go func() {
		defer close(hammerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if w, ok := waker.Load().(Waker); ok {
				w.Wake()
			}
			runtime.Gosched()
		}
	}()

	v, err := handle.Result(context.Background())
	close(stop)
	<-hammerDone

	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if v != 7 {
		t.Errorf("Expected 7, got %d", v)
	}
	if overlap.Load() {
		t.Error("Observed two concurrent polls of the same task")
	}
}

// TestSpawnLocal_PinsToRunner tests goroutine-pinned spawning
// Main test items:
// 1. SpawnLocal from inside a main-context task discovers the runner via ctx
// 2. Every poll of the local task runs on the runner's goroutine
// 3. The result is awaitable from an unrelated goroutine
func TestSpawnLocal_PinsToRunner(t *testing.T) {
	s := newFakeScheduler()
	defer s.Stop()

	gidCh := make(chan uint64, 1)
	s.PostMain(func(ctx context.Context) {
		gidCh <- goroutineID()
	})
	mainGID := <-gidCh

	gids := make(map[uint64]bool)
	handleCh := make(chan *LocalTaskHandle[int], 1)

	s.PostMain(func(ctx context.Context) {
		var polls int
		handleCh <- SpawnLocal(ctx, FutureFunc[int](func(w Waker) (int, bool) {
			gids[goroutineID()] = true
			polls++
			if polls < 3 {
				w.Wake()
				return 0, false
			}
			return 99, true
		}))
	})

	handle := <-handleCh
	v, err := handle.Result(context.Background())
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if v != 99 {
		t.Errorf("Expected 99, got %d", v)
	}
	if len(gids) != 1 || !gids[mainGID] {
		t.Errorf("Expected all polls pinned to goroutine %d, got %v", mainGID, gids)
	}
}

// TestSpawnLocal_RequiresRunner tests the missing-runner failure mode
// Main test items:
// 1. SpawnLocal with a context that carries no serialized runner
// 2. The call panics instead of silently spawning an unpinned task
func TestSpawnLocal_RequiresRunner(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected SpawnLocal to panic without a runner in ctx")
		}
	}()
	SpawnLocal(context.Background(), Ready(1))
}

// TestSpawn_ManyConcurrentTasks tests independent tasks in parallel
// Main test items:
// 1. Spawn many computations concurrently
// 2. Each handle resolves with its own value
func TestSpawn_ManyConcurrentTasks(t *testing.T) {
	s := newFakeScheduler()
	defer s.Stop()

	const n = 100
	handles := make([]*TaskHandle[int], n)
	for i := 0; i < n; i++ {
		handles[i] = Spawn(s, Ready(i))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i, h := range handles {
		v, err := h.Result(ctx)
		if err != nil {
			t.Fatalf("Task %d returned error: %v", i, err)
		}
		if v != i {
			t.Errorf("Task %d: expected %d, got %d", i, i, v)
		}
	}
}
