//go:build linux

package platform

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/corewrk/tasksched/pool"
	"github.com/corewrk/tasksched/queue"
)

// NewLinuxThreadFactory returns a pool.ThreadFactory that locks each
// worker's goroutine to its OS thread and names that thread
// "<namePrefix>-<index>" via unix.Prctl(PR_SET_NAME, ...), so pstack/perf/top
// show worker threads by role instead of as anonymous entries. Locking is
// required here: prctl names the calling thread, and without
// runtime.LockOSThread the Go scheduler is free to move the goroutine to a
// different thread right after naming it.
func NewLinuxThreadFactory(namePrefix string) pool.ThreadFactory {
	return func(index int, _ *queue.Queue, run func()) pool.Handle {
		h := &namedHandle{}
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			runtime.LockOSThread()
			nameWorkerThread(fmt.Sprintf("%s-%d", namePrefix, index))
			run()
		}()
		return h
	}
}

type namedHandle struct{ wg sync.WaitGroup }

func (h *namedHandle) Join() { h.wg.Wait() }

func nameWorkerThread(name string) {
	if len(name) > 15 {
		name = name[:15] // TASK_COMM_LEN - 1
	}
	buf := make([]byte, len(name)+1)
	copy(buf, name)
	_ = unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&buf[0])), 0, 0, 0)
	runtime.KeepAlive(buf)
}
