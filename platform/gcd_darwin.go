//go:build darwin

package platform

import "github.com/corewrk/tasksched"

// GCDAvailable is true on darwin builds: GCD's main queue is presumed present.
const GCDAvailable = true

// NewGCDScheduler binds a main-thread scheduler to GCD's main queue. signal
// must be supplied by the caller's cgo/Objective-C bridge (this package
// ships no such bridge); nil falls back to tasksched.NoOpEventLoopSignal.
func NewGCDScheduler(signal tasksched.EventLoopSignal) (*Scheduler, error) {
	return newScheduler(BackendGCD, GCDAvailable, signal)
}
