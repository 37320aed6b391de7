//go:build !(js && wasm)

package platform

import "github.com/corewrk/tasksched"

// WasmAvailable is false outside GOOS=js GOARCH=wasm builds.
const WasmAvailable = false

// NewWasmScheduler always fails outside js/wasm.
func NewWasmScheduler(signal tasksched.EventLoopSignal) (*Scheduler, error) {
	return newScheduler(BackendWasm, WasmAvailable, signal)
}
