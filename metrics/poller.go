package metrics

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolStats is the subset of pool.Stats this poller exports, duplicated here
// (rather than importing the pool package) to keep metrics a leaf dependency
// pool itself can import.
type PoolStats struct {
	Workers int
	Queued  int
	Active  int
	Closed  bool
}

// PoolStatsFunc lets a caller wire any pool's Stats() method in without this
// package importing the pool package: p.AddPool("workers", func() metrics.PoolStats {
//	s := pool.Stats(); return metrics.PoolStats{Workers: s.Workers, ...}
// }).
type PoolStatsFunc func() PoolStats

// SnapshotPoller periodically exports registered pools' Stats() snapshots as
// Prometheus gauges, independent of whatever per-task metrics the pool
// itself already reports through the Metrics interface. Adapted from the
// teacher's observability/prometheus.SnapshotPoller, dropping the
// runner/sequence half (no sequenced-runner concept in this library) and the
// delayed-task gauge (no delayed scheduling).
type SnapshotPoller struct {
	interval time.Duration

	mu    sync.RWMutex
	pools map[string]PoolStatsFunc

	queued  *prom.GaugeVec
	active  *prom.GaugeVec
	workers *prom.GaugeVec
	closed  *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors
// against reg (prom.DefaultRegisterer if nil), polling every interval
// (1 second if non-positive).
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	queued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "tasksched",
		Name:      "pool_queued",
		Help:      "Queued tasks per pool, at last poll.",
	}, []string{"pool"})
	active := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "tasksched",
		Name:      "pool_active",
		Help:      "Active (currently running) tasks per pool, at last poll.",
	}, []string{"pool"})
	workers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "tasksched",
		Name:      "pool_workers",
		Help:      "Worker count per pool.",
	}, []string{"pool"})
	closed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "tasksched",
		Name:      "pool_closed",
		Help:      "Pool closed state (1=closed, 0=open), at last poll.",
	}, []string{"pool"})

	var err error
	if queued, err = registerCollector(reg, queued); err != nil {
		return nil, err
	}
	if active, err = registerCollector(reg, active); err != nil {
		return nil, err
	}
	if workers, err = registerCollector(reg, workers); err != nil {
		return nil, err
	}
	if closed, err = registerCollector(reg, closed); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval: interval,
		pools:    make(map[string]PoolStatsFunc),
		queued:   queued,
		active:   active,
		workers:  workers,
		closed:   closed,
	}, nil
}

// AddPool adds or replaces a pool stats source by name.
func (p *SnapshotPoller) AddPool(name string, source PoolStatsFunc) {
	if p == nil || source == nil {
		return
	}
	name = normalizeLabel(name)
	p.mu.Lock()
	p.pools[name] = source
	p.mu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops until Stop.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for name, source := range p.pools {
		stats := source()
		p.queued.WithLabelValues(name).Set(float64(stats.Queued))
		p.active.WithLabelValues(name).Set(float64(stats.Active))
		p.workers.WithLabelValues(name).Set(float64(stats.Workers))
		if stats.Closed {
			p.closed.WithLabelValues(name).Set(1)
		} else {
			p.closed.WithLabelValues(name).Set(0)
		}
	}
}
