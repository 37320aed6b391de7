// Package tasksched is a composable task-scheduling toolkit: a move-only
// task container, a work-stealing thread pool, a main-thread queue for
// handing work back to an owning event loop, and a packager that turns an
// owned Go callable into a (function pointer, opaque data) pair for legacy
// C-style callback APIs.
//
// # Quick Start
//
// Start a worker pool and submit work to it:
//
//	p, err := pool.New(4) // 4 workers
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer p.Close()
//
//	p.Submit(func() {
//		// runs on one of the pool's workers
//	})
//
// Hand work back to a UI/main thread from a worker:
//
//	main := tasksched.NewMainThreadScheduler(signal) // signal drives your event loop
//	p.Submit(func() {
//		result := doWork()
//		main.Submit(func() { updateUI(result) })
//	})
//
// Your event loop's callback then calls tasksched.PumpMainQueueOnce() once
// per signal.
//
// # Key Concepts
//
// Scheduler: the uniform Submit/SubmitWith surface every component in this
// module implements — *pool.Pool, *tasksched.MainThreadScheduler, and every
// *platform.Scheduler backend.
//
// payload.Task: a move-only, single-invocation task container. Once
// invoked, moved from, or dropped, it is consumed — invoking it again runs
// nothing and returns payload.ErrConsumed, so the misuse is reported rather
// than silently ignored.
//
// pool.Pool: N worker goroutines, each with its own queue, fed by
// round-robin submission with a try-push-then-blocking-push fallback.
// Idle workers steal from their neighbors before blocking on their own
// queue, so short-lived bursts on one queue drain onto idle workers instead
// of waiting.
//
// ccallback.Handle: packages a callable as a (FnPtr, unsafe.Pointer) pair
// for a C callback site, guaranteeing the backing resource is released
// exactly once whether the pair is invoked or discarded.
//
// # Thread Safety
//
// Every exported type in this module is safe for concurrent use unless its
// doc comment says otherwise. payload.Task is the one deliberate exception:
// it is move-only and single-invocation by design, not because it is
// unsafe for concurrent access — concurrent Invoke/Move/Drop calls on the
// same Task race on its consumed flag exactly as concurrent writes to any
// other unsynchronized Go value would.
package tasksched
