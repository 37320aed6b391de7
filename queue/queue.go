// Package queue implements the per-worker work queue: a bounded-contention
// FIFO of *payload.Task with blocking Pop, non-blocking TryPop/TryPush, and
// a terminal Done signal. This is the primitive the thread pool shards
// across its workers.
package queue

import (
	"sync"

	eapache "github.com/eapache/queue"

	"github.com/corewrk/tasksched/payload"
)

// Queue is an unbounded FIFO of *payload.Task guarded by a mutex and a
// condition variable, with a terminal done flag. It backs its storage with
// eapache/queue's ring buffer rather than a hand-rolled slice, since that's
// exactly the data structure a per-worker FIFO needs.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  *eapache.Queue
	done bool
}

// New creates an empty, open Queue.
func New() *Queue {
	q := &Queue{buf: eapache.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends t to the queue and wakes one waiter. It always succeeds
// (short of the allocator failure inside the ring buffer's own growth,
// which this queue treats as fatal per the design's failure model).
func (q *Queue) Push(t *payload.Task) {
	q.mu.Lock()
	q.buf.Add(t)
	q.cond.Signal()
	q.mu.Unlock()
}

// TryPush attempts to acquire the queue's lock without blocking. On success
// it appends t, wakes one waiter, and returns true. On failure it returns
// false and leaves t untouched — the caller retains ownership and may retry
// on a different queue. This asymmetry with Push (which always consumes) is
// intentional: it's what lets a submitter's round-robin retry loop try the
// same payload on the next queue.
func (q *Queue) TryPush(t *payload.Task) bool {
	if !q.mu.TryLock() {
		return false
	}
	q.buf.Add(t)
	q.cond.Signal()
	q.mu.Unlock()
	return true
}

// Pop blocks while the queue is empty and not done. It returns (task, true)
// once a task is available, or (nil, false) once the queue is empty and
// Done has been called. Spurious wakeups are tolerated by the empty-check
// loop.
func (q *Queue) Pop() (*payload.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.buf.Length() == 0 && !q.done {
		q.cond.Wait()
	}
	if q.buf.Length() == 0 {
		return nil, false
	}
	return q.popFrontLocked(), true
}

// TryPop attempts to acquire the lock without blocking; on failure or an
// empty queue it returns (nil, false). It is legal for TryPop to return
// items enqueued before Done was called, even after done is set.
func (q *Queue) TryPop() (*payload.Task, bool) {
	if !q.mu.TryLock() {
		return nil, false
	}
	defer q.mu.Unlock()
	if q.buf.Length() == 0 {
		return nil, false
	}
	return q.popFrontLocked(), true
}

func (q *Queue) popFrontLocked() *payload.Task {
	v := q.buf.Peek()
	q.buf.Remove()
	return v.(*payload.Task)
}

// Done marks the queue terminal and wakes every waiter. Once set it stays
// set. Subsequent TryPop calls may still drain items that were enqueued
// before Done; the blocking Pop returns false once the queue is empty.
func (q *Queue) Done() {
	q.mu.Lock()
	q.done = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Len reports the current number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Length()
}

// Drain removes and returns every remaining task without invoking any of
// them, for use at pool tear-down when payloads still in queues must be
// destroyed rather than run.
func (q *Queue) Drain() []*payload.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.buf.Length()
	if n == 0 {
		return nil
	}
	out := make([]*payload.Task, 0, n)
	for q.buf.Length() > 0 {
		out = append(out, q.popFrontLocked())
	}
	return out
}
