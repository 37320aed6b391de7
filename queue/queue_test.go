package queue

import (
	"testing"
	"time"

	"github.com/corewrk/tasksched/payload"
)

func noopTask() *payload.Task {
	t := payload.New(nil, func() {})
	return &t
}

// TestQueue_FIFOOrder verifies Push/Pop preserve FIFO order within a single
// queue, as required regardless of the pool's cross-queue ordering policy.
func TestQueue_FIFOOrder(t *testing.T) {
	q := New()
	order := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		i := i
		task := payload.New(nil, func() { order = append(order, i) })
		q.Push(&task)
	}

	for i := 0; i < 3; i++ {
		item, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d: queue unexpectedly empty", i)
		}
		if err := item.Invoke(); err != nil {
			t.Fatalf("Invoke: %v", err)
		}
	}

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want FIFO 0,1,2", order)
		}
	}
}

// TestQueue_TryPushLeavesPayloadOnFailure verifies the documented asymmetry:
// a failed TryPush does not consume its argument.
func TestQueue_TryPushLeavesPayloadOnFailure(t *testing.T) {
	q := New()

	q.mu.Lock() // simulate contention by holding the lock ourselves
	task := noopTask()
	ok := q.TryPush(task)
	q.mu.Unlock()

	if ok {
		t.Fatal("TryPush succeeded while lock was held")
	}
	if task.Empty() {
		t.Fatal("TryPush must not consume the payload on failure")
	}

	// The caller can still use the payload, e.g. retry on the same queue.
	if !q.TryPush(task) {
		t.Fatal("retry TryPush should succeed once the lock is free")
	}
}

// TestQueue_PopBlocksThenWakesOnPush verifies Pop blocks on an empty queue
// and returns once a Push arrives.
func TestQueue_PopBlocksThenWakesOnPush(t *testing.T) {
	q := New()
	result := make(chan bool, 1)

	go func() {
		_, ok := q.Pop()
		result <- ok
	}()

	time.Sleep(20 * time.Millisecond) // let the goroutine block in Pop
	q.Push(noopTask())

	select {
	case ok := <-result:
		if !ok {
			t.Fatal("Pop returned false after a Push")
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after Push")
	}
}

// TestQueue_PopReturnsFalseAfterDone verifies a blocking Pop on a drained,
// done queue returns (nil, false) rather than blocking forever.
func TestQueue_PopReturnsFalseAfterDone(t *testing.T) {
	q := New()
	q.Done()

	item, ok := q.Pop()
	if ok || item != nil {
		t.Fatalf("Pop on empty+done queue = (%v, %v), want (nil, false)", item, ok)
	}
}

// TestQueue_TryPopDrainsPreDoneItems verifies TryPop can still retrieve
// items enqueued before Done was called.
func TestQueue_TryPopDrainsPreDoneItems(t *testing.T) {
	q := New()
	q.Push(noopTask())
	q.Done()

	item, ok := q.TryPop()
	if !ok || item == nil {
		t.Fatal("TryPop should still return the pre-Done item")
	}

	_, ok = q.TryPop()
	if ok {
		t.Fatal("queue should now be empty")
	}
}

// TestQueue_DrainReturnsWithoutInvoking verifies Drain hands back every
// remaining task without running them, as happens at pool tear-down.
func TestQueue_DrainReturnsWithoutInvoking(t *testing.T) {
	q := New()
	calls := 0
	for i := 0; i < 5; i++ {
		task := payload.New(nil, func() { calls++ })
		q.Push(&task)
	}

	drained := q.Drain()
	if len(drained) != 5 {
		t.Fatalf("len(drained) = %d, want 5", len(drained))
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0 (Drain must not invoke)", calls)
	}
	if q.Len() != 0 {
		t.Fatalf("queue Len = %d, want 0 after Drain", q.Len())
	}
}
