//go:build js && wasm

package platform

import "github.com/corewrk/tasksched"

// WasmAvailable is true under GOOS=js GOARCH=wasm: the runtime's event loop
// (setTimeout/microtask queue) is presumed present.
const WasmAvailable = true

// NewWasmScheduler binds a main-thread scheduler to the browser's event
// loop. signal must be supplied by the caller's own syscall/js glue (this
// package ships no such glue, since that always needs project-specific JS
// interop code).
func NewWasmScheduler(signal tasksched.EventLoopSignal) (*Scheduler, error) {
	return newScheduler(BackendWasm, WasmAvailable, signal)
}
