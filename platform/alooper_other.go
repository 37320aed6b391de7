//go:build !android

package platform

import "github.com/corewrk/tasksched"

// ALooperAvailable is false on every non-android build.
const ALooperAvailable = false

// NewALooperScheduler always fails off-android.
func NewALooperScheduler(signal tasksched.EventLoopSignal) (*Scheduler, error) {
	return newScheduler(BackendALooper, ALooperAvailable, signal)
}
