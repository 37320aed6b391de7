// Package mainqueue implements the process-wide main-thread task queue: a
// single FIFO, read only by whatever trampoline the host event loop calls,
// that main-thread schedulers push onto and signal an external event loop
// about. It never blocks, because the main thread already runs its own
// event loop and must never stall inside this library.
//
// Modeled on the teacher's global-thread-pool singleton
// (InitGlobalThreadPool/GetGlobalThreadPool in pool.go): a lazily
// initialized, process-wide instance that outlives every scheduler built
// over it.
package mainqueue

import (
	"sync"

	"github.com/corewrk/tasksched/payload"
)

// Queue is a mutex-protected FIFO of *payload.Task. None of its operations
// block on emptiness.
type Queue struct {
	mu    sync.Mutex
	tasks []*payload.Task
}

var (
	singleton     *Queue
	singletonOnce sync.Once
)

// MainQueue returns the process-wide singleton, constructing it on first
// use. It must be constructed before any main-thread scheduler references
// it, and it is never destroyed — some external event loop may still hold a
// pending signal pointing at it after every scheduler built over it has
// been closed.
func MainQueue() *Queue {
	singletonOnce.Do(func() {
		singleton = &Queue{}
	})
	return singleton
}

// Push appends t. Callers are expected to signal their external event loop
// exactly once per successful Push.
func (q *Queue) Push(t *payload.Task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
}

// TryPop removes and returns the front task, if any, without blocking. This
// is what the event-loop trampoline calls exactly once per delivery
// attempt.
func (q *Queue) TryPop() (*payload.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, false
	}
	t := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return t, true
}

// Clear drops every pending task without invoking it. Main-thread scheduler
// destructors call this to release payloads the external loop may never
// get around to delivering; the Queue object itself is never destroyed.
func (q *Queue) Clear() {
	q.mu.Lock()
	pending := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for _, t := range pending {
		t.Drop()
	}
}

// Len reports the number of tasks currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
