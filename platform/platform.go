// Package platform ships the contracts (and build-tag-gated stand-ins) for
// the host event loops a main-thread scheduler can be wired to: Apple's GCD
// main queue, the Win32 default thread pool, a web runtime's async
// scheduling, and Android's ALooper. None of these are real bindings — the
// design treats them as external collaborators named only by the interface
// they must satisfy (spec.md §1 "Out of scope") — so every backend here
// compiles on every platform but is only constructible where Available is
// true, following the `_linux.go`/`_nocgo.go` build-tag split in
// momentics-hioload-ws's internal/concurrency package.
package platform

import (
	"fmt"

	"github.com/corewrk/tasksched"
)

// Backend names one of the host event-loop integrations below, for logging
// and error messages.
type Backend string

const (
	BackendGCD     Backend = "gcd"
	BackendWin32   Backend = "win32"
	BackendWasm    Backend = "wasm"
	BackendALooper Backend = "alooper"
)

// Scheduler is a *tasksched.MainThreadScheduler bound to one named host
// backend. Every concrete constructor below (NewGCDScheduler,
// NewWin32Scheduler, ...) returns one of these, erroring first if its
// backend's Available constant is false.
type Scheduler struct {
	backend Backend
	*tasksched.MainThreadScheduler
}

// Backend reports which host integration this scheduler was built for.
func (s *Scheduler) Backend() Backend { return s.backend }

func newScheduler(backend Backend, available bool, signal tasksched.EventLoopSignal) (*Scheduler, error) {
	if !available {
		return nil, fmt.Errorf("platform: %s backend: %w", backend, tasksched.ErrSchedulerUnavailable)
	}
	return &Scheduler{
		backend:             backend,
		MainThreadScheduler: tasksched.NewMainThreadScheduler(signal),
	}, nil
}
