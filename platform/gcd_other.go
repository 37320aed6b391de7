//go:build !darwin

package platform

import "github.com/corewrk/tasksched"

// GCDAvailable is false on every non-darwin build.
const GCDAvailable = false

// NewGCDScheduler always fails off-darwin: GCD has no presence here.
func NewGCDScheduler(signal tasksched.EventLoopSignal) (*Scheduler, error) {
	return newScheduler(BackendGCD, GCDAvailable, signal)
}
