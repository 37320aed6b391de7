//go:build android

package platform

import "github.com/corewrk/tasksched"

// ALooperAvailable is true on android builds: an ALooper attached to the
// calling thread is presumed present.
const ALooperAvailable = true

// NewALooperScheduler binds a main-thread scheduler to an Android ALooper.
// signal must be supplied by the caller's own JNI/cgo glue that owns the
// ALooper file descriptor and its callback registration.
func NewALooperScheduler(signal tasksched.EventLoopSignal) (*Scheduler, error) {
	return newScheduler(BackendALooper, ALooperAvailable, signal)
}
