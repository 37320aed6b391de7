package tasksched_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/corewrk/tasksched"
	"github.com/corewrk/tasksched/pool"
)

// TestPoolSatisfiesScheduler verifies *pool.Pool implements the library's
// uniform Scheduler interface, so client code can depend on the interface
// rather than the concrete pool type.
func TestPoolSatisfiesScheduler(t *testing.T) {
	var _ tasksched.Scheduler = (*pool.Pool)(nil)
}

// TestMainThreadScheduler_DeliversInFIFOOrderOnPump verifies spec scenario
// 6: pushing three payloads then driving the event loop trampoline three
// times invokes them once each, in FIFO order, via PumpMainQueueOnce.
func TestMainThreadScheduler_DeliversInFIFOOrderOnPump(t *testing.T) {
	var signalCount atomic.Int64
	signal := signalCounter{count: &signalCount}

	s := tasksched.NewMainThreadScheduler(signal)
	defer s.Close()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		if err := s.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	if got := signalCount.Load(); got != 3 {
		t.Fatalf("signal count = %d, want 3 (one per push)", got)
	}

	for i := 0; i < 3; i++ {
		tasksched.PumpMainQueueOnce()
	}

	if len(order) != 3 {
		t.Fatalf("len(order) = %d, want 3", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want FIFO 0,1,2", order)
		}
	}
}

// TestMainThreadScheduler_CloseClearsUndelivered verifies Close drops
// payloads the event loop never got around to delivering.
func TestMainThreadScheduler_CloseClearsUndelivered(t *testing.T) {
	s := tasksched.NewMainThreadScheduler(nil)

	calls := 0
	if err := s.Submit(func() { calls++ }); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	s.Close()

	tasksched.PumpMainQueueOnce() // queue should already be empty
	if calls != 0 {
		t.Fatalf("calls = %d, want 0 (Close must clear undelivered payloads)", calls)
	}
}

type signalCounter struct {
	count *atomic.Int64
}

func (s signalCounter) Signal()     { s.count.Add(1) }
func (s signalCounter) Unregister() {}
