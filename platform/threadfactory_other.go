//go:build !linux

package platform

import "github.com/corewrk/tasksched/pool"

// NewLinuxThreadFactory is unavailable off-linux; it returns nil so callers
// that unconditionally wire it on Linux and fall back to the pool's default
// factory elsewhere can do so with a single nil check.
func NewLinuxThreadFactory(namePrefix string) pool.ThreadFactory {
	return nil
}
