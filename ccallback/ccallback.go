// Package ccallback implements the C-callback packager: it converts an
// owned zero-argument callable into a (function, opaque data) pair suitable
// for legacy C-style callback APIs, with ownership and cleanup guarantees
// under both normal and exceptional completion.
//
// Go has no function-pointer-plus-void-star ABI of its own, so FnPtr here
// is a Go func(unsafe.Pointer) value rather than a literal C function
// pointer — the piece a cgo call site would export and hand to C, were
// this library linked into one. The three strategies from the design map
// onto Go as follows:
//
//   - Reference: the caller already owns a *Ref and is keeping it alive;
//     no allocation, no allocator call.
//   - Elidable: the caller asserts, via Inline, that fn captures nothing
//     and is safe to invoke directly without a heap node. The no-capture
//     func value is bit-copied straight into the data word — no
//     allocator call, no cgo.Handle, no registry lookup — mirroring
//     package_task_as_c_callback.hpp's elidable case, which stores the
//     callable in the pointer-sized slot rather than boxing it.
//   - Allocated: the default path. A node holding fn is obtained from
//     alloc (which the release closure keeps hold of) and registered behind a runtime/cgo.Handle, the
//     stdlib's own safe Go-value-to-C-handle registry — using it here
//     instead of a hand-rolled unsafe map is the "library over bespoke"
//     choice for this concern.
package ccallback

import (
	"runtime/cgo"
	"sync"
	"unsafe"

	"github.com/corewrk/tasksched/alloc"
)

// FnPtr is the Go stand-in for a C function pointer: a function taking the
// opaque data word and invoking whatever it identifies.
type FnPtr func(unsafe.Pointer)

// Ref is a caller-owned wrapper around a callable, used for the reference
// strategy: the caller keeps Ref alive for as long as the resulting Handle
// might be called, so packaging it never needs to allocate or take
// ownership.
type Ref struct {
	Fn func()
}

// Inline marks fn as safe for the elidable strategy: the caller asserts fn
// captures no state that requires heap-node bookkeeping to keep alive.
type Inline func()

type node struct {
	fn func()
}

// Allocator is the node allocator type for the heap strategy.
type Allocator = alloc.Allocator[node]

// DefaultAllocator is used when callers don't supply their own.
var DefaultAllocator = alloc.NewPoolAllocator[node]()

// Handle owns the resource backing one (FnPtr, data) pair. Exactly one of
// {Handle's destructor obligation, an explicit Call/Release} releases that
// resource — never both, never neither. Release transfers the release
// obligation to the caller; after Release, the Handle itself no longer owns
// anything.
type Handle struct {
	fn   FnPtr
	data unsafe.Pointer

	releaseOnce sync.Once
	release     func()
}

// Get returns the (fn, data) pair without transferring ownership: the
// Handle is still responsible for releasing the resource when it is
// dropped (callers should call Release or Call instead if they intend to
// invoke fn(data) themselves).
func (h *Handle) Get() (FnPtr, unsafe.Pointer) {
	return h.fn, h.data
}

// Release returns the (fn, data) pair and transfers the release obligation
// to the caller: calling fn(data) exactly once now performs the release as
// a side effect. Calling Release more than once is a programmer error.
func (h *Handle) Release() (FnPtr, unsafe.Pointer) {
	release := h.release
	if release == nil {
		return h.fn, h.data
	}
	// Disarm the Handle so a later Drop releases nothing; the returned fn
	// performs the release itself, on normal and panicking return alike.
	h.release = nil
	fn := h.fn
	return func(p unsafe.Pointer) {
		defer release()
		fn(p)
	}, h.data
}

// Call is release-then-invoke: it calls fn(data), which performs the
// release as part of invocation, exactly as if the caller had done Release
// followed by calling the pair themselves. Calling the raw FnPtr more than
// once, whether via Call or directly, is undefined.
func (h *Handle) Call() {
	h.fn(h.data)
}

// drop is invoked by the Handle's owner if it is discarded without ever
// being invoked; it performs the release exactly once, whether Call ran or
// not.
func (h *Handle) drop() {
	h.releaseOnce.Do(func() {
		if h.release != nil {
			h.release()
		}
	})
}

// FromRef packages a *Ref using the reference strategy: no allocation, no
// allocator call. The caller must keep ref alive for as long as the
// returned Handle's FnPtr might still be called.
func FromRef(ref *Ref) *Handle {
	if ref == nil || ref.Fn == nil {
		panic("ccallback: FromRef called with a nil Ref or nil Fn")
	}
	return &Handle{
		fn:   refTrampoline,
		data: unsafe.Pointer(ref),
	}
}

func refTrampoline(p unsafe.Pointer) {
	(*Ref)(p).Fn()
}

// FromInline packages fn using the elidable strategy: fn must capture
// nothing that needs heap-node bookkeeping to outlive this call — the
// caller asserts that by wrapping it as Inline. No allocator is consulted,
// and no registry (cgo.Handle or otherwise) is involved: fn's single-word
// representation is bit-copied directly into the data slot, and read back
// the same way on invocation. There is nothing to release — a bit-copied
// word has no separate resource — so Drop on a Handle built this way is a
// no-op, matching the elidable strategy's destructor in the design.
func FromInline(fn Inline) *Handle {
	if fn == nil {
		panic("ccallback: FromInline called with a nil Inline")
	}
	return &Handle{
		fn:   inlineTrampoline,
		data: *(*unsafe.Pointer)(unsafe.Pointer(&fn)),
	}
}

func inlineTrampoline(p unsafe.Pointer) {
	fn := *(*Inline)(unsafe.Pointer(&p))
	fn()
}

// FromFunc packages fn using the allocated strategy: a node holding fn is
// obtained from alloc (DefaultAllocator if nil) and registered behind a
// cgo.Handle. Both normal and panicking invocation release the node and
// delete the handle exactly once.
func FromFunc(a Allocator, fn func()) *Handle {
	if fn == nil {
		panic("ccallback: FromFunc called with a nil callable")
	}
	if a == nil {
		a = DefaultAllocator
	}
	n := a.Get()
	n.fn = fn

	h := cgo.NewHandle(n)
	handle := &Handle{
		data: unsafe.Pointer(h),
	}
	handle.release = func() {
		h.Delete()
		a.Put(n)
	}
	// A per-handle closure, rather than one package-level trampoline, so
	// the node's release can reach the allocator it was drawn from — both
	// normal return and a panic unwinding through n.fn() still run the
	// deferred releases.
	handle.fn = func(p unsafe.Pointer) {
		defer handle.drop()
		cgo.Handle(p).Value().(*node).fn()
	}
	return handle
}

// Drop releases h's resource without invoking it, for callers that decide
// not to hand the pair to C after all. It is safe to call Drop after Call —
// the second release is a no-op.
func (h *Handle) Drop() {
	h.drop()
}
