package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/averau/go-native-executor/core"
)

// Dispatcher is the goroutine-backed host scheduler: a priority worker pool
// plus a dedicated serialized main context. It implements core.Scheduler
// and core.Instrumented, so the resume loop picks up its panic handler and
// metrics sink automatically.
//
// A Dispatcher is created once at process start and passed explicitly into
// every spawn and timer call; there is no package-level instance.
type Dispatcher struct {
	cfg  Config
	pool *workerPool

	mu      sync.Mutex
	main    *MainRunner
	started bool
	stopped bool
}

var (
	_ core.Scheduler    = (*Dispatcher)(nil)
	_ core.Instrumented = (*Dispatcher)(nil)
)

// New creates a Dispatcher with the given worker count and default
// collaborators. Call Start before posting.
func New(workers int) *Dispatcher {
	return NewWithConfig(workers, DefaultConfig())
}

// NewWithConfig creates a Dispatcher with injected collaborators.
func NewWithConfig(workers int, cfg *Config) *Dispatcher {
	resolved := cfg.withDefaults()
	return &Dispatcher{
		cfg:  resolved,
		pool: newWorkerPool(workers, resolved),
	}
}

// Start launches the main-context goroutine and the worker pool.
// Idempotent while running. A Dispatcher cannot be restarted: Start after
// Stop or StopGraceful panics, since the pool permanently rejects
// submissions once shut down. Create a new Dispatcher instead.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		panic("dispatch: Dispatcher cannot be restarted after Stop")
	}
	if d.started {
		return
	}
	d.main = NewMainRunner(&d.cfg)
	d.pool.Start(ctx)
	d.started = true

	d.cfg.Logger.Info("dispatcher started", core.F("workers", d.pool.WorkerCount()))
}

// Stop terminates the worker pool and the main context. Queued work that
// has not started is dropped; posting afterwards is rejected. The
// Dispatcher cannot be started again.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	main := d.main
	started := d.started
	d.started = false
	d.stopped = true
	d.mu.Unlock()

	if !started {
		return
	}
	d.pool.Stop()
	main.Stop()

	d.cfg.Logger.Info("dispatcher stopped")
}

// StopGraceful waits up to timeout for queued and active pool work to
// drain before stopping. The main context is drained with a barrier task.
func (d *Dispatcher) StopGraceful(timeout time.Duration) error {
	d.mu.Lock()
	main := d.main
	started := d.started
	d.started = false
	d.stopped = true
	d.mu.Unlock()

	if !started {
		return nil
	}

	err := d.pool.StopGraceful(timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if idleErr := main.WaitIdle(ctx); err == nil {
		err = idleErr
	}
	main.Stop()

	return err
}

// =============================================================================
// core.Scheduler
// =============================================================================

// PostMain enqueues task on the serialized main context.
func (d *Dispatcher) PostMain(task core.Task) {
	d.mainRunner().PostTask(task)
}

// Post enqueues task on the worker pool at the priority class in traits.
func (d *Dispatcher) Post(task core.Task, traits core.TaskTraits) {
	d.pool.Post(task, traits)
}

// PostDelayed enqueues task to run on the worker pool no earlier than delay
// from now.
func (d *Dispatcher) PostDelayed(task core.Task, delay time.Duration, traits core.TaskTraits) {
	d.pool.PostDelayed(task, delay, traits)
}

// =============================================================================
// core.Instrumented
// =============================================================================

func (d *Dispatcher) PanicHandler() core.PanicHandler { return d.cfg.PanicHandler }
func (d *Dispatcher) Metrics() core.Metrics           { return d.cfg.Metrics }

// Main returns the serialized main context runner. Valid after Start.
func (d *Dispatcher) Main() *MainRunner {
	return d.mainRunner()
}

func (d *Dispatcher) mainRunner() *MainRunner {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.main == nil {
		panic("dispatch: Dispatcher used before Start")
	}
	return d.main
}

// Stats accessors for pollers and tests.

func (d *Dispatcher) WorkerCount() int      { return d.pool.WorkerCount() }
func (d *Dispatcher) QueuedTaskCount() int  { return d.pool.QueuedTaskCount() }
func (d *Dispatcher) ActiveTaskCount() int  { return d.pool.ActiveTaskCount() }
func (d *Dispatcher) DelayedTaskCount() int { return d.pool.DelayedTaskCount() }
