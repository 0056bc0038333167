package monix

// A Task is a lazy, immutable description of an asynchronous computation
// that produces either a value of type T or a failure. A Task has no
// identity: two syntactically distinct Tasks with equivalent behavior are
// interchangeable, and running the same Task twice re-executes its effect —
// Tasks are not memoized.
//
// Nothing happens until [RunAsync] (or one of its siblings) is called.
// Constructing, storing, or passing around a Task has no observable effect.
//
// The zero Task[T] is not meaningful; build one with [Now], [Error], [Eval],
// or one of the other factories, or by composing an existing Task with a
// combinator such as [Map] or [FlatMap].
type Task[T any] struct {
	// immediate is true for Tasks built by Now or Error: a short-circuit at
	// RunAsync returns an already-completed outcome without touching the
	// Scheduler at all.
	immediate bool
	value     T
	err       error

	// run is nil for immediate Tasks. Otherwise it is the single observable
	// operation of a Task: start executing, given a Scheduler, the
	// active *MultiAssignment in-flight work should bind sub-handles into,
	// the current trampoline frame, and a Callback to deliver the outcome
	// to.
	//
	// active is always the *MultiAssignment currently "live" for this branch
	// of the task graph: a leaf operation that owns a cancelable resource
	// (a pending timer, a create-registered bridge) assigns into it directly.
	// A combinator that needs to run more than one thing concurrently
	// installs a fresh *Composite into active and hands each concurrent
	// branch its own child *MultiAssignment instead (see race.go/join.go).
	run func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T])
}

// unsafeRun is the dispatch point every combinator goes through to run a
// source Task: it is "unsafe" in the sense that cb is assumed to already obey
// the at-most-once Callback discipline (only the outermost RunAsync call
// installs a [SafeCallback]).
func unsafeRun[T any](t Task[T], sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T]) {
	if t.immediate {
		if t.err != nil {
			cb.OnError(t.err)
		} else {
			cb.OnSuccess(t.value)
		}
		return
	}
	t.run(sched, active, frame, cb)
}

// Now returns a Task that completes successfully with v as soon as it is
// run, without ever touching a Scheduler.
func Now[T any](v T) Task[T] {
	return Task[T]{immediate: true, value: v}
}

// Error returns a Task that fails with err as soon as it is run, without
// ever touching a Scheduler.
func Error[T any](err error) Task[T] {
	return Task[T]{immediate: true, err: err}
}

// Unit is a Task that immediately succeeds with struct{}{}, useful wherever
// only the completion of an effect matters, not its value.
var Unit = Now(struct{}{})

// Eval returns a Task that, each time it is run, synchronously evaluates
// thunk on the run loop's current frame. If thunk panics, the panic is
// quarantined and delivered as the Task's error, matching the behavior of
// every other combinator that wraps user code.
//
// Unlike [Now], Eval re-evaluates thunk on every run.
func Eval[T any](thunk func() T) Task[T] {
	return Task[T]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T]) {
			if active.IsCanceled() {
				return
			}
			var v T
			if err, ok := quarantine(func() { v = thunk() }); !ok {
				cb.OnError(err)
				return
			}
			cb.OnSuccess(v)
		},
	}
}

// Defer returns a Task that, each time it is run, calls producer to obtain
// the actual Task to run. This is how a Task can be built lazily from state
// that isn't known until run time; it's equivalent to evaluating producer
// and then flattening the result, but without allocating the intermediate
// Task[Task[T]].
func Defer[T any](producer func() Task[T]) Task[T] {
	return Task[T]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T]) {
			if active.IsCanceled() {
				return
			}
			var next Task[T]
			if err, ok := quarantine(func() { next = producer() }); !ok {
				cb.OnError(err)
				return
			}
			step(sched, active, frame, func(frame FrameID) {
				unsafeRun(next, sched, active, frame, cb)
			})
		},
	}
}

// Fork returns a Task that forces an asynchronous boundary — via
// Scheduler.Execute — before running inner, regardless of the batch
// threshold or the Scheduler's own async policy. Use Fork to make sure a
// chain doesn't hog the calling goroutine even for its very first step.
func Fork[T any](inner Task[T]) Task[T] {
	return Task[T]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T]) {
			startAsync(sched, func(frame FrameID) {
				unsafeRun(inner, sched, active, frame, cb)
			})
		},
	}
}

// Create returns a Task that bridges a callback-style API into this package.
// When run, register is called with a Callback to invoke on completion and
// the Scheduler the Task is running on; register returns a CancelToken for
// aborting the bridged operation, which Create assigns into the Task's
// active handle so that canceling the surrounding Task cancels it too.
//
// If register panics synchronously, the panic is quarantined and delivered
// through cb as an error instead of propagating.
func Create[T any](register func(cb Callback[T], sched Scheduler) CancelToken) Task[T] {
	return Task[T]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T]) {
			if active.IsCanceled() {
				return
			}
			var handle CancelToken
			err, ok := quarantine(func() { handle = register(cb, sched) })
			if !ok {
				cb.OnError(err)
				return
			}
			active.Assign(handle)
		},
	}
}
