// Package pool implements the thread pool at the center of tasksched: N
// worker goroutines each owning a work queue, submissions spread via
// round-robin-plus-try-push, and workers that steal from their neighbors
// before blocking on their own queue.
//
// "Thread" throughout this package means "goroutine" — the Go stand-in for
// the design's OS thread, created through a caller-supplied ThreadFactory so
// callers can adapt a worker (pin it, attach it to another runtime) before
// its loop starts, exactly as the design's thread-factory hook intends.
package pool

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corewrk/tasksched/metrics"
	"github.com/corewrk/tasksched/payload"
	"github.com/corewrk/tasksched/queue"
	"github.com/corewrk/tasksched/support"
)

// stealRounds is the design constant R from the steal loop: a worker tries
// up to N*R non-blocking pops, walking queues starting at its own index,
// before falling back to a blocking pop on its own queue.
const stealRounds = 8

// ErrClosed is returned by Submit/SubmitWith once the pool has been closed.
var ErrClosed = errors.New("pool: closed")

// Handle is returned by a ThreadFactory for a newly created worker. Join
// must block until that worker has returned from run.
type Handle interface {
	Join()
}

// ThreadFactory creates the goroutine (or, via a custom factory, an
// OS-thread-pinned goroutine) that will run worker. index is the worker's
// queue index; q is that worker's own queue, handed to the factory so
// advanced factories can inspect it before run starts.
type ThreadFactory func(index int, q *queue.Queue, run func()) Handle

type goroutineHandle struct{ wg sync.WaitGroup }

func (h *goroutineHandle) Join() { h.wg.Wait() }

// defaultThreadFactory spawns a plain goroutine per worker.
func defaultThreadFactory(_ int, _ *queue.Queue, run func()) Handle {
	h := &goroutineHandle{}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		run()
	}()
	return h
}

type config struct {
	name            string
	factory         ThreadFactory
	panicHandler    support.PanicHandler
	rejectedHandler support.RejectedTaskHandler
	metrics         metrics.Metrics
	logger          support.Logger
	stealRounds     int
}

func defaultConfig() config {
	return config{
		name:            "pool",
		factory:         defaultThreadFactory,
		panicHandler:    support.DefaultPanicHandler{},
		rejectedHandler: support.DefaultRejectedTaskHandler{},
		metrics:         metrics.Nil{},
		logger:          support.NoOpLogger{},
		stealRounds:     stealRounds,
	}
}

// Option configures a Pool at construction time.
type Option func(*config)

// WithName sets the pool's name, used only in logging and metrics labels.
func WithName(name string) Option { return func(c *config) { c.name = name } }

// WithThreadFactory overrides how each worker's goroutine is created.
func WithThreadFactory(f ThreadFactory) Option {
	return func(c *config) {
		if f != nil {
			c.factory = f
		}
	}
}

// WithPanicHandler overrides the panic handler invoked before a worker
// re-panics on its own goroutine.
func WithPanicHandler(h support.PanicHandler) Option {
	return func(c *config) {
		if h != nil {
			c.panicHandler = h
		}
	}
}

// WithRejectedTaskHandler overrides the handler invoked when a submission
// is rejected.
func WithRejectedTaskHandler(h support.RejectedTaskHandler) Option {
	return func(c *config) {
		if h != nil {
			c.rejectedHandler = h
		}
	}
}

// WithMetrics overrides the Metrics sink.
func WithMetrics(m metrics.Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger overrides the Logger.
func WithLogger(l support.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStealRounds overrides the design constant R (default 8).
func WithStealRounds(r int) Option {
	return func(c *config) {
		if r > 0 {
			c.stealRounds = r
		}
	}
}

// Pool owns N worker goroutines and N queues.
type Pool struct {
	cfg     config
	queues  []*queue.Queue
	handles []Handle
	next    atomic.Uint64
	active  atomic.Int64
	closed  atomic.Bool

	workerGoroutines sync.Map // goroutineID -> struct{}, populated by each worker
}

// New creates a Pool with n workers using the default goroutine thread
// factory. n <= 0 defaults to runtime.NumCPU(), the hardware concurrency
// hint, matching the design's "N set at construction from a user value
// (default = hardware concurrency hint)"; the result is always clamped to
// at least 1. Use NewWithFactory to supply a custom factory, or pass
// Options for everything else.
func New(n int, opts ...Option) (*Pool, error) {
	return newPool(n, opts...)
}

// NewWithFactory is equivalent to New with WithThreadFactory(factory)
// prepended, matching the design's "(thread_factory, N)" constructor form.
func NewWithFactory(factory ThreadFactory, n int, opts ...Option) (*Pool, error) {
	return newPool(n, append([]Option{WithThreadFactory(factory)}, opts...)...)
}

func newPool(n int, opts ...Option) (*Pool, error) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Pool{cfg: cfg}
	p.queues = make([]*queue.Queue, n)
	for i := range p.queues {
		p.queues[i] = queue.New()
	}

	p.handles = make([]Handle, 0, n)
	for i := 0; i < n; i++ {
		i := i
		handle, err := p.startWorker(i)
		if err != nil {
			// Thread-factory failure: signal and join whatever already
			// started, then propagate the error, per the design's
			// construction-failure policy.
			cfg.logger.Error("thread factory failed", support.F("pool", cfg.name), support.F("worker", i), support.F("err", err))
			for _, q := range p.queues {
				q.Done()
			}
			for _, h := range p.handles {
				h.Join()
			}
			return nil, fmt.Errorf("pool: starting worker %d: %w", i, err)
		}
		p.handles = append(p.handles, handle)
	}
	return p, nil
}

func (p *Pool) startWorker(i int) (handle Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("thread factory panicked: %v", r)
		}
	}()
	handle = p.cfg.factory(i, p.queues[i], func() { p.worker(i) })
	if handle == nil {
		return nil, errors.New("thread factory returned a nil handle")
	}
	return handle, nil
}

// Submit wraps fn in a payload.Task using the default allocator and submits
// it. See SubmitWith for the full submission algorithm.
func (p *Pool) Submit(fn func()) error {
	return p.SubmitWith(nil, fn)
}

// SubmitWith wraps fn using alloc (nil selects payload.DefaultAllocator) and
// submits it: read-and-increment the round-robin counter to get a starting
// index s, try a non-blocking push on each of the N queues starting at s;
// if all fail, fall back to a blocking push on queue s.
func (p *Pool) SubmitWith(alloc payload.Allocator, fn func()) error {
	if p.closed.Load() {
		p.cfg.logger.Warn("task rejected", support.F("pool", p.cfg.name), support.F("reason", "pool closed"))
		p.cfg.rejectedHandler.HandleRejectedTask(p.cfg.name, "pool closed")
		p.cfg.metrics.RecordTaskRejected(p.cfg.name, "pool closed")
		return ErrClosed
	}

	task := payload.New(alloc, fn)
	n := len(p.queues)
	start := int(p.next.Add(1)-1) % n
	if start < 0 {
		start += n
	}

	for k := 0; k < n; k++ {
		idx := (start + k) % n
		if p.queues[idx].TryPush(&task) {
			p.cfg.metrics.RecordQueueDepth(p.cfg.name, idx, p.queues[idx].Len())
			return nil
		}
	}

	// Every queue was momentarily contended; block on the starting queue
	// to guarantee liveness.
	p.queues[start].Push(&task)
	p.cfg.metrics.RecordQueueDepth(p.cfg.name, start, p.queues[start].Len())
	return nil
}

// worker implements a single worker's loop: steal across queues for
// stealRounds passes, then block on its own queue, then invoke and repeat.
func (p *Pool) worker(i int) {
	goid := currentGoroutineID()
	p.workerGoroutines.Store(goid, struct{}{})
	defer p.workerGoroutines.Delete(goid)

	n := len(p.queues)
	for {
		task, stole, ok := p.tryStealOrBlock(i, n)
		if !ok {
			return
		}
		if stole {
			p.cfg.metrics.RecordSteal(p.cfg.name, i)
		}
		p.cfg.metrics.RecordQueueDepth(p.cfg.name, i, p.queues[i].Len())
		p.runTask(i, task)
	}
}

func (p *Pool) tryStealOrBlock(i, n int) (task *payload.Task, stole bool, ok bool) {
	for round := 0; round < p.cfg.stealRounds; round++ {
		for j := 0; j < n; j++ {
			idx := (i + j) % n
			if t, ok := p.queues[idx].TryPop(); ok {
				return t, idx != i, true
			}
		}
	}
	t, ok := p.queues[i].Pop()
	return t, false, ok
}

func (p *Pool) runTask(i int, task *payload.Task) {
	p.active.Add(1)
	defer p.active.Add(-1)

	start := time.Now()
	defer func() {
		p.cfg.metrics.RecordTaskDuration(p.cfg.name, i, time.Since(start))
		if r := recover(); r != nil {
			stack := debug.Stack()
			p.cfg.logger.Error("task panicked", support.F("pool", p.cfg.name), support.F("worker", i), support.F("panic", r))
			p.cfg.metrics.RecordTaskPanic(p.cfg.name, i, r)
			p.cfg.panicHandler.HandlePanic(p.cfg.name, i, r, stack)
			// Workers are not exception firewalls: forward the panic on
			// the worker's own goroutine after the handler has observed
			// it, per the design's recommended termination policy.
			panic(r)
		}
	}()
	_ = task.Invoke()
}

// Close signals every queue done, joins every worker, and drops any
// payloads still queued without invoking them. It must not be called from a
// goroutine owned by this pool — doing so panics instead of deadlocking on
// the join of the calling worker.
func (p *Pool) Close() {
	if _, onWorker := p.workerGoroutines.Load(currentGoroutineID()); onWorker {
		panic("pool: Close called from a goroutine owned by this pool")
	}
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	for _, q := range p.queues {
		q.Done()
	}
	for _, h := range p.handles {
		h.Join()
	}
	for _, q := range p.queues {
		for _, task := range q.Drain() {
			task.Drop()
		}
	}
}

// CloseGraceful waits up to timeout for every queue to drain and every
// active task to finish before closing, matching the design's graceful
// shutdown extension. If the timeout elapses first, it forcibly closes and
// returns an error.
func (p *Pool) CloseGraceful(timeout time.Duration) error {
	deadline := time.After(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			p.Close()
			return fmt.Errorf("pool: graceful close timed out after %v", timeout)
		case <-ticker.C:
			if p.QueuedCount() == 0 && p.active.Load() == 0 {
				p.Close()
				return nil
			}
		}
	}
}

// Stats is a point-in-time snapshot of pool occupancy.
type Stats struct {
	Workers int
	Queued  int
	Active  int
	Closed  bool
}

// Stats returns a snapshot, summing every worker queue's depth.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers: len(p.queues),
		Queued:  p.QueuedCount(),
		Active:  int(p.active.Load()),
		Closed:  p.closed.Load(),
	}
}

// QueuedCount sums the current depth of every worker queue.
func (p *Pool) QueuedCount() int {
	total := 0
	for _, q := range p.queues {
		total += q.Len()
	}
	return total
}

// WorkerCount returns N, fixed at construction.
func (p *Pool) WorkerCount() int { return len(p.queues) }

// currentGoroutineID extracts the calling goroutine's ID by parsing the
// "goroutine NNN [running]:" header runtime.Stack always emits first. It is
// called once at each worker's start and on the Close() precondition check,
// never in the hot submit/steal loop, so its cost is immaterial.
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	// Format is "goroutine 123 [running]:\n..."
	const prefix = "goroutine "
	line := string(buf[:n])
	if len(line) <= len(prefix) {
		return 0
	}
	line = line[len(prefix):]
	for _, c := range line {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
