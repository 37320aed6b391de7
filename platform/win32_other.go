//go:build !windows

package platform

import "github.com/corewrk/tasksched"

// Win32Available is false on every non-windows build.
const Win32Available = false

// NewWin32Scheduler always fails off-windows.
func NewWin32Scheduler(signal tasksched.EventLoopSignal) (*Scheduler, error) {
	return newScheduler(BackendWin32, Win32Available, signal)
}
