package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// DispatcherSnapshotProvider provides current dispatcher stats snapshots.
// *dispatch.Dispatcher satisfies it.
type DispatcherSnapshotProvider interface {
	WorkerCount() int
	QueuedTaskCount() int
	ActiveTaskCount() int
	DelayedTaskCount() int
}

// SnapshotPoller periodically exports dispatcher stats into Prometheus
// gauges, complementing the event-driven MetricsExporter.
type SnapshotPoller struct {
	interval time.Duration

	mu          sync.RWMutex
	dispatchers map[string]DispatcherSnapshotProvider

	poolQueued  *prom.GaugeVec
	poolActive  *prom.GaugeVec
	poolDelayed *prom.GaugeVec
	poolWorkers *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(namespace string, reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if namespace == "" {
		namespace = "nativexec"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	labels := []string{"dispatcher"}
	queued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_queued_tasks",
		Help:      "Submissions waiting in the worker pool queue.",
	}, labels)
	active := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_active_tasks",
		Help:      "Submissions currently executing on a worker.",
	}, labels)
	delayed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_delayed_tasks",
		Help:      "Submissions waiting on a deadline.",
	}, labels)
	workers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_workers",
		Help:      "Configured worker count.",
	}, labels)

	var err error
	if queued, err = registerCollector(reg, queued); err != nil {
		return nil, err
	}
	if active, err = registerCollector(reg, active); err != nil {
		return nil, err
	}
	if delayed, err = registerCollector(reg, delayed); err != nil {
		return nil, err
	}
	if workers, err = registerCollector(reg, workers); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:    interval,
		dispatchers: make(map[string]DispatcherSnapshotProvider),
		poolQueued:  queued,
		poolActive:  active,
		poolDelayed: delayed,
		poolWorkers: workers,
	}, nil
}

// Register adds a dispatcher under the given label.
func (p *SnapshotPoller) Register(name string, d DispatcherSnapshotProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dispatchers[name] = d
}

// Start launches the polling loop. Idempotent while running.
func (p *SnapshotPoller) Start() {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	go p.loop(ctx)
}

// Stop terminates the polling loop and waits for it to exit.
func (p *SnapshotPoller) Stop() {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if !p.running {
		return
	}
	p.cancel()
	<-p.done
	p.running = false
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.snapshot()
		}
	}
}

// Snapshot exports one round of stats immediately.
func (p *SnapshotPoller) Snapshot() {
	p.snapshot()
}

func (p *SnapshotPoller) snapshot() {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for name, d := range p.dispatchers {
		p.poolQueued.WithLabelValues(name).Set(float64(d.QueuedTaskCount()))
		p.poolActive.WithLabelValues(name).Set(float64(d.ActiveTaskCount()))
		p.poolDelayed.WithLabelValues(name).Set(float64(d.DelayedTaskCount()))
		p.poolWorkers.WithLabelValues(name).Set(float64(d.WorkerCount()))
	}
}
