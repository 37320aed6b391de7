package metrics

import (
	"context"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSnapshotPoller_CollectsPoolStats(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddPool("pool-a", func() PoolStats {
		return PoolStats{Queued: 4, Active: 2, Workers: 8, Closed: false}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	assertEventually(t, 2*time.Second, func() bool {
		active := testutil.ToFloat64(poller.active.WithLabelValues("pool-a"))
		queued := testutil.ToFloat64(poller.queued.WithLabelValues("pool-a"))
		return active == 2 && queued == 4
	})

	if got := testutil.ToFloat64(poller.workers.WithLabelValues("pool-a")); got != 8 {
		t.Fatalf("workers gauge = %v, want 8", got)
	}
	if got := testutil.ToFloat64(poller.closed.WithLabelValues("pool-a")); got != 0 {
		t.Fatalf("closed gauge = %v, want 0", got)
	}
}

func TestSnapshotPoller_ReflectsClosedPool(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddPool("pool-b", func() PoolStats {
		return PoolStats{Workers: 4, Closed: true}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	assertEventually(t, 2*time.Second, func() bool {
		return testutil.ToFloat64(poller.closed.WithLabelValues("pool-b")) == 1
	})
}

func TestSnapshotPoller_StartStopIdempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)
	poller.Start(ctx)
	poller.Stop()
	poller.Stop()
}

func assertEventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
