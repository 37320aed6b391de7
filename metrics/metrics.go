// Package metrics defines the optional observability hook pools report
// through, plus a Prometheus adapter. Adapted
// from the teacher's observability/prometheus package, re-keyed from
// runner/priority labels to pool/worker labels since this library has no
// priority concept.
package metrics

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics collects pool execution metrics. All methods must be fast and
// non-blocking; implementations should tolerate being called concurrently
// from every worker goroutine at once.
type Metrics interface {
	// RecordTaskDuration records how long a task took to run.
	RecordTaskDuration(poolName string, workerID int, duration time.Duration)
	// RecordTaskPanic records that a task panicked.
	RecordTaskPanic(poolName string, workerID int, panicInfo any)
	// RecordQueueDepth records a single worker queue's current depth.
	RecordQueueDepth(poolName string, workerID int, depth int)
	// RecordTaskRejected records a rejected submission.
	RecordTaskRejected(poolName string, reason string)
	// RecordSteal records that a worker obtained a task by stealing from
	// another worker's queue rather than its own.
	RecordSteal(poolName string, workerID int)
}

// Nil is a no-op Metrics, the default when none is configured.
type Nil struct{}

func (Nil) RecordTaskDuration(string, int, time.Duration) {}
func (Nil) RecordTaskPanic(string, int, any)               {}
func (Nil) RecordQueueDepth(string, int, int)               {}
func (Nil) RecordTaskRejected(string, string)               {}
func (Nil) RecordSteal(string, int)                         {}

// PrometheusExporter adapts Metrics to Prometheus collectors.
type PrometheusExporter struct {
	taskDurationSeconds *prom.HistogramVec
	taskPanicTotal      *prom.CounterVec
	taskRejectedTotal   *prom.CounterVec
	queueDepth          *prom.GaugeVec
	stealTotal          *prom.CounterVec
}

var _ Metrics = (*PrometheusExporter)(nil)

// NewPrometheusExporter creates and registers Prometheus collectors under
// namespace (default "tasksched" if empty), against reg (default
// prom.DefaultRegisterer if nil).
func NewPrometheusExporter(namespace string, reg prom.Registerer, buckets []float64) (*PrometheusExporter, error) {
	if namespace == "" {
		namespace = "tasksched"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"pool", "worker"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of task panics.",
	}, []string{"pool", "worker"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Total number of rejected submissions.",
	}, []string{"pool", "reason"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current per-worker queue depth.",
	}, []string{"pool", "worker"})
	stealVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "steal_total",
		Help:      "Total number of tasks obtained by stealing from another worker's queue.",
	}, []string{"pool", "worker"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}
	if stealVec, err = registerCollector(reg, stealVec); err != nil {
		return nil, err
	}

	return &PrometheusExporter{
		taskDurationSeconds: durationVec,
		taskPanicTotal:      panicVec,
		taskRejectedTotal:   rejectedVec,
		queueDepth:          queueDepthVec,
		stealTotal:          stealVec,
	}, nil
}

func (m *PrometheusExporter) RecordTaskDuration(poolName string, workerID int, duration time.Duration) {
	m.taskDurationSeconds.WithLabelValues(normalizeLabel(poolName), workerLabel(workerID)).Observe(duration.Seconds())
}

func (m *PrometheusExporter) RecordTaskPanic(poolName string, workerID int, panicInfo any) {
	m.taskPanicTotal.WithLabelValues(normalizeLabel(poolName), workerLabel(workerID)).Inc()
}

func (m *PrometheusExporter) RecordQueueDepth(poolName string, workerID int, depth int) {
	m.queueDepth.WithLabelValues(normalizeLabel(poolName), workerLabel(workerID)).Set(float64(depth))
}

func (m *PrometheusExporter) RecordTaskRejected(poolName string, reason string) {
	m.taskRejectedTotal.WithLabelValues(normalizeLabel(poolName), normalizeLabel(reason)).Inc()
}

func (m *PrometheusExporter) RecordSteal(poolName string, workerID int) {
	m.stealTotal.WithLabelValues(normalizeLabel(poolName), workerLabel(workerID)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func workerLabel(id int) string {
	if id < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d", id)
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var already prom.AlreadyRegisteredError
	if errors.As(err, &already) {
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("metrics: collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
