package dispatch

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/averau/go-native-executor/core"
)

const workerPoolName = "worker-pool"

// workerPool pulls submissions from a stable priority queue and executes
// them on a fixed set of worker goroutines. Delayed submissions sit in a
// delayManager until due, then re-enter the queue at their original traits.
type workerPool struct {
	workers int
	queue   *priorityQueue
	signal  chan struct{}
	delay   *delayManager
	cfg     Config

	g      *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	running   bool
	runningMu sync.RWMutex

	queued       atomic.Int32 // waiting in the ready queue
	active       atomic.Int32 // executing on a worker
	shuttingDown atomic.Bool
}

func newWorkerPool(workers int, cfg Config) *workerPool {
	if workers < 1 {
		workers = 1
	}
	p := &workerPool{
		workers: workers,
		queue:   newPriorityQueue(),
		signal:  make(chan struct{}, workers*2),
		cfg:     cfg,
	}
	p.delay = newDelayManager(p.Post)
	return p
}

// Start launches the worker goroutines. Idempotent while running.
func (p *workerPool) Start(ctx context.Context) {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()

	if p.running {
		return
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.g = new(errgroup.Group)
	p.running = true

	for i := 0; i < p.workers; i++ {
		id := i
		p.g.Go(func() error {
			p.workerLoop(id)
			return nil
		})
	}
}

// Post enqueues a submission at its priority class. Submissions posted
// during shutdown are rejected, observably through the rejected-task
// handler and metrics.
func (p *workerPool) Post(task core.Task, traits core.TaskTraits) {
	if p.shuttingDown.Load() {
		p.cfg.RejectedTaskHandler.HandleRejectedTask(workerPoolName, "shutting down")
		p.cfg.Metrics.RecordTaskRejected(workerPoolName, "shutting down")
		return
	}

	p.queue.Push(task, traits)
	depth := p.queued.Add(1)
	p.cfg.Metrics.RecordQueueDepth(workerPoolName, int(depth))

	select {
	case p.signal <- struct{}{}:
	default:
		// Signal channel full; the task is already queued and some worker
		// will observe it.
	}
}

// PostDelayed enqueues a submission to run no earlier than delay from now.
func (p *workerPool) PostDelayed(task core.Task, delay time.Duration, traits core.TaskTraits) {
	if p.shuttingDown.Load() {
		p.cfg.RejectedTaskHandler.HandleRejectedTask(workerPoolName, "shutting down")
		p.cfg.Metrics.RecordTaskRejected(workerPoolName, "shutting down")
		return
	}
	p.delay.Add(task, delay, traits)
}

func (p *workerPool) workerLoop(id int) {
	stopCh := p.ctx.Done()

	for {
		item, ok := p.getWork(stopCh)
		if !ok {
			return
		}

		p.active.Add(1)
		func() {
			defer func() {
				p.active.Add(-1)
				if r := recover(); r != nil {
					p.cfg.Metrics.RecordTaskPanic(workerPoolName, r)
					p.cfg.PanicHandler.HandlePanic(p.ctx, workerPoolName, id, r, debug.Stack())
				}
			}()
			item.task(p.ctx)
		}()
	}
}

func (p *workerPool) getWork(stopCh <-chan struct{}) (taskItem, bool) {
	for {
		if item, ok := p.queue.Pop(); ok {
			depth := p.queued.Add(-1)
			p.cfg.Metrics.RecordQueueDepth(workerPoolName, int(depth))
			return item, true
		}

		select {
		case <-p.signal:
			continue
		case <-stopCh:
			return taskItem{}, false
		}
	}
}

// Stop rejects further submissions, stops the delay manager, cancels the
// workers and waits for them to exit, then clears the queue.
func (p *workerPool) Stop() {
	p.shuttingDown.Store(true)
	p.delay.Stop()

	p.runningMu.Lock()
	running := p.running
	p.running = false
	p.runningMu.Unlock()

	if running {
		p.cancel()
		_ = p.g.Wait()
	}
	p.queue.Clear()
	p.queued.Store(0)
}

// StopGraceful waits up to timeout for queued and active work to drain
// before stopping. Returns an error when the timeout elapsed first.
func (p *workerPool) StopGraceful(timeout time.Duration) error {
	p.shuttingDown.Store(true)
	p.delay.Stop()

	deadline := time.After(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			p.Stop()
			return context.DeadlineExceeded
		case <-ticker.C:
			if p.QueuedTaskCount() == 0 && p.ActiveTaskCount() == 0 {
				p.Stop()
				return nil
			}
		}
	}
}

func (p *workerPool) IsRunning() bool {
	p.runningMu.RLock()
	defer p.runningMu.RUnlock()
	return p.running
}

func (p *workerPool) WorkerCount() int      { return p.workers }
func (p *workerPool) QueuedTaskCount() int  { return int(p.queued.Load()) }
func (p *workerPool) ActiveTaskCount() int  { return int(p.active.Load()) }
func (p *workerPool) DelayedTaskCount() int { return p.delay.Len() }
