package dispatch

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/averau/go-native-executor/core"
)

const mainRunnerName = "main"

// MainRunner binds one dedicated goroutine and executes tasks on it
// sequentially. It is the serialized main context of a Dispatcher: all
// closures posted through core.Scheduler.PostMain land here, in submission
// order, on the same goroutine.
//
// MainRunner implements core.TaskRunner and injects itself into each task's
// context, so computations running on it can pin further work to it with
// core.SpawnLocal.
type MainRunner struct {
	workQueue chan core.Task

	ctx    context.Context
	cancel context.CancelFunc

	stopped chan struct{}
	once    sync.Once
	closed  atomic.Bool

	cfg Config
}

var (
	_ core.TaskRunner   = (*MainRunner)(nil)
	_ core.Instrumented = (*MainRunner)(nil)
)

// NewMainRunner creates the runner and immediately starts its dedicated
// goroutine.
func NewMainRunner(cfg *Config) *MainRunner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &MainRunner{
		workQueue: make(chan core.Task, 100), // buffered so posters rarely block
		ctx:       ctx,
		cancel:    cancel,
		stopped:   make(chan struct{}),
		cfg:       cfg.withDefaults(),
	}
	go r.runLoop()
	return r
}

// PostTask submits a closure for sequential execution on the dedicated
// goroutine. Tasks posted after Stop are dropped and reported as rejected.
func (r *MainRunner) PostTask(task core.Task) {
	if r.closed.Load() {
		r.cfg.RejectedTaskHandler.HandleRejectedTask(mainRunnerName, "stopped")
		r.cfg.Metrics.RecordTaskRejected(mainRunnerName, "stopped")
		return
	}

	select {
	case <-r.ctx.Done():
		r.cfg.RejectedTaskHandler.HandleRejectedTask(mainRunnerName, "stopped")
		r.cfg.Metrics.RecordTaskRejected(mainRunnerName, "stopped")
	case r.workQueue <- task:
	}
}

// PostDelayedTask submits a closure to run on the dedicated goroutine no
// earlier than delay from now. The timer is independent of the worker
// pool's delay manager so main-context timing is unaffected by pool load.
func (r *MainRunner) PostDelayedTask(task core.Task, delay time.Duration) {
	if r.closed.Load() {
		return
	}

	select {
	case <-r.ctx.Done():
	default:
		time.AfterFunc(delay, func() {
			r.PostTask(task)
		})
	}
}

// runLoop occupies the dedicated goroutine for the runner's lifetime.
func (r *MainRunner) runLoop() {
	defer close(r.stopped)

	runCtx := core.WithTaskRunner(r.ctx, r)

	for {
		select {
		case task := <-r.workQueue:
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						r.cfg.Metrics.RecordTaskPanic(mainRunnerName, rec)
						r.cfg.PanicHandler.HandlePanic(runCtx, mainRunnerName, -1, rec, debug.Stack())
					}
				}()
				task(runCtx)
			}()

		case <-r.ctx.Done():
			return
		}
	}
}

// WaitIdle blocks until every task posted before the call has executed.
// Implemented with a barrier task; tasks posted afterwards are not waited
// for.
func (r *MainRunner) WaitIdle(ctx context.Context) error {
	if r.IsClosed() {
		return errors.New("main runner is stopped")
	}

	done := make(chan struct{})
	r.PostTask(func(context.Context) {
		close(done)
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// core.Instrumented: local tasks pinned to this runner pick up the
// configured panic handler and metrics sink instead of the defaults.

func (r *MainRunner) PanicHandler() core.PanicHandler { return r.cfg.PanicHandler }
func (r *MainRunner) Metrics() core.Metrics           { return r.cfg.Metrics }

// IsClosed reports whether Stop has been called.
func (r *MainRunner) IsClosed() bool {
	return r.closed.Load()
}

// Stop terminates the run loop after the current task finishes and waits
// for the dedicated goroutine to exit. Queued tasks that have not started
// are dropped.
func (r *MainRunner) Stop() {
	r.once.Do(func() {
		r.closed.Store(true)
		r.cancel()
		<-r.stopped
	})
}
