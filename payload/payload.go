// Package payload implements the move-only, allocator-aware task container
// that backs every queue and pool in tasksched: a one-shot wrapper around a
// zero-argument callable.
//
// Go gives closures none of the manual memory control a systems language
// would — the compiler alone decides whether a captured environment lives
// on the stack or the heap. So the "small-buffer-optimization" of the
// original design is realized here as node pooling rather than inline
// storage: New asks an alloc.Allocator[node] for a wrapper node, and the
// default allocator (a sync.Pool) makes the steady-state path allocation
// free without requiring unsafe tricks. The one-shot, move-then-invoke
// contract is enforced at runtime with a consumed flag.
package payload

import (
	"errors"

	"github.com/corewrk/tasksched/alloc"
)

// ErrConsumed is returned by Invoke when the task has already been invoked
// or was constructed empty.
var ErrConsumed = errors.New("payload: task already consumed or empty")

// node is the pooled wrapper around the callable. It is never exposed
// outside this package; alloc.Allocator[node] is instantiated here only.
type node struct {
	fn func()
}

// DefaultAllocator is the package-wide sync.Pool-backed allocator used when
// callers don't supply their own. Sharing one pool across all default-path
// tasks is what keeps the steady-state submission path allocation free.
var DefaultAllocator = alloc.NewPoolAllocator[node]()

// Allocator is the node allocator type consumers of this package depend on.
// It is a type alias so callers can write payload.Allocator without
// reaching into the alloc package directly.
type Allocator = alloc.Allocator[node]

// Task is a one-shot, move-only container for a func(). The zero Task is
// empty. A Task must be invoked or dropped exactly once; invoking a
// consumed or empty Task runs nothing and returns ErrConsumed, while Move
// and New panic on misuse, matching the "programmer error" policy for
// invalid submissions described in the design.
type Task struct {
	alloc Allocator
	n     *node
	// consumed guards against double-invoke. It is not an atomic.Bool
	// because a Task must never be shared across goroutines before it has
	// been handed to exactly one invoker; the queue's mutex is what
	// provides the happens-before edge that makes a plain bool safe here.
	consumed bool
}

// New constructs a Task wrapping fn, drawing its internal node from alloc.
// fn must be non-nil. If alloc is nil, DefaultAllocator is used.
func New(a Allocator, fn func()) Task {
	if fn == nil {
		panic("payload: New called with nil callable")
	}
	if a == nil {
		a = DefaultAllocator
	}
	n := a.Get()
	n.fn = fn
	return Task{alloc: a, n: n}
}

// Empty reports whether the Task holds no callable. A zero-value Task, a
// moved-from Task, and a post-Invoke Task are all empty.
func (t *Task) Empty() bool {
	return t.n == nil || t.consumed
}

// Move transfers ownership of the callable from src to the receiver. src
// becomes empty. The destination must already be empty and src must be
// non-empty; violating either precondition is a programmer error and
// panics, mirroring the assignment precondition in the design.
func (t *Task) Move(src *Task) {
	if !t.Empty() {
		panic("payload: Move into a non-empty Task")
	}
	if src.Empty() {
		panic("payload: Move from an empty Task")
	}
	t.alloc = src.alloc
	t.n = src.n
	t.consumed = false
	src.n = nil
	src.alloc = nil
	src.consumed = true
}

// Invoke consumes the Task, running its callable exactly once. After Invoke
// returns (normally or via panic propagating from the callable) the Task is
// empty and its wrapper node has been returned to its allocator. Invoking
// an already-empty Task returns ErrConsumed without running anything.
func (t *Task) Invoke() error {
	if t.Empty() {
		return ErrConsumed
	}
	n := t.n
	a := t.alloc
	fn := n.fn
	t.n = nil
	t.consumed = true
	defer a.Put(n)
	fn()
	return nil
}

// Drop destroys the Task without invoking its callable, returning its node
// to its allocator. This is what a queue or pool does to payloads still
// present at tear-down: they are destroyed, never run.
func (t *Task) Drop() {
	if t.Empty() {
		return
	}
	n := t.n
	a := t.alloc
	t.n = nil
	t.consumed = true
	a.Put(n)
}
