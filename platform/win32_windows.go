//go:build windows

package platform

import "github.com/corewrk/tasksched"

// Win32Available is true on windows builds: the default Win32 thread pool
// (or a message-only window's pump) is presumed present.
const Win32Available = true

// NewWin32Scheduler binds a main-thread scheduler to the Win32 default
// thread pool's work-item dispatch. signal must be supplied by the caller's
// own Win32 message-pump integration.
func NewWin32Scheduler(signal tasksched.EventLoopSignal) (*Scheduler, error) {
	return newScheduler(BackendWin32, Win32Available, signal)
}
