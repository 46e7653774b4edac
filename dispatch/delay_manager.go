package dispatch

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/averau/go-native-executor/core"
)

// delayedTask is a submission scheduled for the future.
type delayedTask struct {
	runAt  time.Time
	task   core.Task
	traits core.TaskTraits
	index  int // for heap interface
}

type delayedTaskHeap []*delayedTask

func (h delayedTaskHeap) Len() int           { return len(h) }
func (h delayedTaskHeap) Less(i, j int) bool { return h[i].runAt.Before(h[j].runAt) }
func (h delayedTaskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *delayedTaskHeap) Push(x any) {
	n := len(*h)
	item := x.(*delayedTask)
	item.index = n
	*h = append(*h, item)
}

func (h *delayedTaskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *delayedTaskHeap) Peek() *delayedTask {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// delayManager holds deadline-ordered submissions and forwards each to the
// post callback once its deadline has passed, never earlier. A single timer
// goroutine sleeps until the nearest deadline; adding a sooner entry wakes
// it to recalculate.
type delayManager struct {
	pq      delayedTaskHeap
	mu      sync.Mutex
	wakeup  chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	post    func(task core.Task, traits core.TaskTraits)
}

func newDelayManager(post func(task core.Task, traits core.TaskTraits)) *delayManager {
	ctx, cancel := context.WithCancel(context.Background())
	dm := &delayManager{
		pq:      make(delayedTaskHeap, 0),
		wakeup:  make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		post:    post,
	}
	heap.Init(&dm.pq)
	go dm.loop()
	return dm
}

func (dm *delayManager) Add(task core.Task, delay time.Duration, traits core.TaskTraits) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	item := &delayedTask{
		runAt:  time.Now().Add(delay),
		task:   task,
		traits: traits,
	}
	heap.Push(&dm.pq, item)

	if item.index == 0 {
		select {
		case dm.wakeup <- struct{}{}:
		default:
		}
	}
}

func (dm *delayManager) loop() {
	defer close(dm.stopped)

	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		nextRun := dm.nextRunIn()
		if nextRun == 0 {
			// Empty heap, wait for an Add
			nextRun = 1000 * time.Hour
		}
		timer.Reset(nextRun)

		select {
		case <-dm.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			dm.postExpired()
		case <-dm.wakeup:
			// A sooner entry arrived, recalculate
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
	}
}

// nextRunIn returns how long until the earliest deadline, a nanosecond when
// that deadline has already passed, or 0 when the heap is empty.
func (dm *delayManager) nextRunIn() time.Duration {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	item := dm.pq.Peek()
	if item == nil {
		return 0
	}
	now := time.Now()
	if item.runAt.Before(now) {
		return time.Nanosecond
	}
	return item.runAt.Sub(now)
}

func (dm *delayManager) postExpired() {
	dm.mu.Lock()

	now := time.Now()
	var expired []*delayedTask
	for dm.pq.Len() > 0 {
		item := dm.pq.Peek()
		if item.runAt.After(now) {
			break
		}
		heap.Pop(&dm.pq)
		expired = append(expired, item)
	}

	dm.mu.Unlock()

	// Post outside the lock
	for _, item := range expired {
		dm.post(item.task, item.traits)
	}
}

// Stop terminates the timer loop and drops all pending entries.
// It returns after the loop goroutine has exited.
func (dm *delayManager) Stop() {
	dm.cancel()
	<-dm.stopped

	dm.mu.Lock()
	dm.pq = make(delayedTaskHeap, 0)
	heap.Init(&dm.pq)
	dm.mu.Unlock()
}

func (dm *delayManager) Len() int {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return len(dm.pq)
}
