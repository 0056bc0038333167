package monix

// A FrameID is a depth counter carried through a chain of synchronous
// combinator continuations. It bounds stack usage the way the teacher
// library's Executor bounds coroutine reentrancy: not by recursing deeper
// and deeper, but by switching to a fresh call stack once a batch of work has
// run, instead of on every single hop.
type FrameID uint32

// batchThreshold is the number of synchronous frames a chain is allowed to
// advance on the current goroutine before step forces a fresh one via the
// Scheduler. 128 matches typical "reasonable stack headroom" batch sizes used
// by comparable trampolines; it's a constant rather than configurable
// because nothing in this package's public surface has a reason to expose it.
const batchThreshold FrameID = 128

// step is the single place every combinator goes through to hand control to
// its continuation k. If active is already canceled, k is not called at all:
// cancelation is observed between frames, not preemptively inside one.
// Otherwise, if frame is still within the batch, k runs immediately, on the
// current goroutine, with frame incremented; once the batch is exhausted, k
// is resubmitted to sched as a fresh runnable with the counter reset.
//
// The count only advances along continuations that keep passing on the frame
// step gave them, as a recursive FlatMap continuation or a retry loop does.
// Map does not call step, and a chain built by nesting combinators directly
// (Map(Map(...)), FlatMap(FlatMap(...))) hands every level the frame it was
// entered with, so such a chain never reaches batchThreshold and runs by
// plain recursion, its stack depth growing with its length.
func step(sched Scheduler, active CancelToken, frame FrameID, k func(FrameID)) {
	if active.IsCanceled() {
		return
	}
	if frame < batchThreshold {
		k(frame + 1)
		return
	}
	sched.Execute(func() { k(0) })
}

// start schedules k(0) according to sched's default policy: synchronously on
// the calling goroutine unless sched.IsAlwaysAsync, in which case it behaves
// like startAsync.
func start(sched Scheduler, k func(FrameID)) {
	if sched.IsAlwaysAsync() {
		startAsync(sched, k)
		return
	}
	startNow(k)
}

// startNow invokes k(0) on the current goroutine, unconditionally.
func startNow(k func(FrameID)) {
	k(0)
}

// startAsync forces k(0) to run on a fresh goroutine submitted through sched,
// regardless of the batch threshold or sched's async policy.
func startAsync(sched Scheduler, k func(FrameID)) {
	sched.Execute(func() { k(0) })
}
