package tasksched

import (
	"errors"
	"sync"

	"github.com/corewrk/tasksched/mainqueue"
	"github.com/corewrk/tasksched/payload"
)

// Scheduler is the library's uniform submission surface: any object that
// accepts a zero-argument callable and arranges for its later execution.
type Scheduler interface {
	// Submit wraps fn with the default allocator and submits it.
	Submit(fn func()) error
	// SubmitWith wraps fn with alloc and submits it.
	SubmitWith(alloc payload.Allocator, fn func()) error
}

// ErrSchedulerUnavailable is wrapped in the error a platform backend's
// constructor returns when that backend's Available constant is false.
var ErrSchedulerUnavailable = errors.New("tasksched: scheduler unavailable on this build")

// ErrSchedulerClosed is returned once a scheduler has been closed.
var ErrSchedulerClosed = errors.New("tasksched: scheduler closed")

// EventLoopSignal is the contract a main-thread scheduler consumes from its
// host event loop: Signal is called exactly once per successful Push, and
// must eventually cause the loop to invoke a trampoline that calls the main
// queue's TryPop once and runs whatever it returns, on the main thread.
// Unregister is called when the scheduler built over this signal is closed.
type EventLoopSignal interface {
	Signal()
	Unregister()
}

// NoOpEventLoopSignal is a signal with no backing event loop: Signal is a
// no-op, so pushed payloads will only ever be delivered if something else
// drains the main queue. Useful for tests and for drivers that pump the
// main queue manually.
type NoOpEventLoopSignal struct{}

func (NoOpEventLoopSignal) Signal()     {}
func (NoOpEventLoopSignal) Unregister() {}

// MainThreadScheduler is a submit-only Scheduler over the process-wide
// main-thread queue: it builds a payload, pushes it, and signals the event
// loop exactly once per push. On Close it unregisters from the event loop
// and clears the main queue of payloads this scheduler may have pushed but
// that the external loop will now never deliver.
type MainThreadScheduler struct {
	signal EventLoopSignal
	closed bool
	mu     sync.Mutex
}

var _ Scheduler = (*MainThreadScheduler)(nil)

// NewMainThreadScheduler builds a scheduler over the process-wide main
// queue and signal. If signal is nil, NoOpEventLoopSignal is used.
func NewMainThreadScheduler(signal EventLoopSignal) *MainThreadScheduler {
	if signal == nil {
		signal = NoOpEventLoopSignal{}
	}
	return &MainThreadScheduler{signal: signal}
}

func (s *MainThreadScheduler) Submit(fn func()) error {
	return s.SubmitWith(nil, fn)
}

func (s *MainThreadScheduler) SubmitWith(alloc payload.Allocator, fn func()) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSchedulerClosed
	}

	task := payload.New(alloc, fn)
	mainqueue.MainQueue().Push(&task)
	s.signal.Signal()
	return nil
}

// Close unregisters from the event loop and clears the main queue. Per the
// design, the main queue itself outlives Close — only pending payloads are
// dropped.
func (s *MainThreadScheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.signal.Unregister()
	mainqueue.MainQueue().Clear()
}

// PumpMainQueueOnce is the trampoline body a host event loop calls in
// response to EventLoopSignal.Signal: it calls TryPop exactly once and, on
// success, invokes the popped payload on the calling (main) thread.
func PumpMainQueueOnce() {
	task, ok := mainqueue.MainQueue().TryPop()
	if !ok {
		return
	}
	_ = task.Invoke()
}
