package platform

import (
	"errors"
	"testing"

	"github.com/corewrk/tasksched"
)

// TestUnavailableBackendsReturnError verifies that on whatever platform this
// test runs, every backend whose Available constant is false fails
// construction with ErrSchedulerUnavailable rather than panicking or
// silently degrading to a no-op.
func TestUnavailableBackendsReturnError(t *testing.T) {
	cases := []struct {
		name      string
		available bool
		construct func() (*Scheduler, error)
	}{
		{"gcd", GCDAvailable, func() (*Scheduler, error) { return NewGCDScheduler(nil) }},
		{"win32", Win32Available, func() (*Scheduler, error) { return NewWin32Scheduler(nil) }},
		{"wasm", WasmAvailable, func() (*Scheduler, error) { return NewWasmScheduler(nil) }},
		{"alooper", ALooperAvailable, func() (*Scheduler, error) { return NewALooperScheduler(nil) }},
	}

	for _, c := range cases {
		s, err := c.construct()
		if c.available {
			if err != nil {
				t.Errorf("%s: Available=true but construction failed: %v", c.name, err)
			}
			if s == nil {
				t.Errorf("%s: Available=true but got a nil Scheduler", c.name)
			}
			continue
		}
		if err == nil {
			t.Errorf("%s: Available=false but construction succeeded", c.name)
		}
		if !errors.Is(err, tasksched.ErrSchedulerUnavailable) {
			t.Errorf("%s: err = %v, want wrapping ErrSchedulerUnavailable", c.name, err)
		}
		if s != nil {
			t.Errorf("%s: expected nil Scheduler on unavailable backend", c.name)
		}
	}
}

// TestSchedulerSatisfiesTaskschedScheduler verifies the embedding gives
// *Scheduler the library's uniform Submit/SubmitWith surface.
func TestSchedulerSatisfiesTaskschedScheduler(t *testing.T) {
	var _ tasksched.Scheduler = (*Scheduler)(nil)
}
