package mainqueue

import (
	"testing"

	"github.com/corewrk/tasksched/payload"
)

func taskFor(fn func()) *payload.Task {
	t := payload.New(nil, fn)
	return &t
}

// TestQueue_FIFODelivery verifies spec scenario 6: pushing several payloads
// and then draining them with TryPop delivers them in FIFO order.
func TestQueue_FIFODelivery(t *testing.T) {
	q := &Queue{}
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		q.Push(taskFor(func() { order = append(order, i) }))
	}

	for i := 0; i < 3; i++ {
		task, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop %d: queue unexpectedly empty", i)
		}
		if err := task.Invoke(); err != nil {
			t.Fatalf("Invoke: %v", err)
		}
	}

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want FIFO 0,1,2", order)
		}
	}
}

// TestQueue_TryPopOnEmptyDoesNotBlock verifies TryPop never waits on
// emptiness, since the main thread must never stall inside this queue.
func TestQueue_TryPopOnEmptyDoesNotBlock(t *testing.T) {
	q := &Queue{}
	if _, ok := q.TryPop(); ok {
		t.Fatal("TryPop on empty queue should return false")
	}
}

// TestQueue_ClearDropsWithoutInvoking verifies Clear releases pending
// payloads without running them.
func TestQueue_ClearDropsWithoutInvoking(t *testing.T) {
	q := &Queue{}
	calls := 0
	q.Push(taskFor(func() { calls++ }))
	q.Push(taskFor(func() { calls++ }))

	q.Clear()

	if calls != 0 {
		t.Fatalf("calls = %d, want 0 (Clear must not invoke)", calls)
	}
	if q.Len() != 0 {
		t.Fatalf("Len = %d, want 0 after Clear", q.Len())
	}
}

// TestMainQueue_SingletonIdentity verifies MainQueue() always returns the
// same process-wide instance.
func TestMainQueue_SingletonIdentity(t *testing.T) {
	a := MainQueue()
	b := MainQueue()
	if a != b {
		t.Fatal("MainQueue() should return the same singleton instance")
	}
}
