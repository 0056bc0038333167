package monix

import "time"

// Map returns a Task whose result is f applied to the result of t. Map is
// Task's functor operation: Map(t, identity) behaves like t, and
// Map(Map(t, f), g) behaves like Map(t, compose(g, f)).
//
// f runs under error quarantine: a panic inside f is delivered through
// OnError, the same as any other user-code failure. A failure from t itself
// is forwarded unchanged — f is never called in that case.
//
// Map is a package-level function, not a method, because Go forbids a method
// from introducing a type parameter the receiver doesn't already have.
func Map[T, U any](t Task[T], f func(T) U) Task[U] {
	return Task[U]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[U]) {
			unsafeRun(t, sched, active, frame, CallbackFunc[T]{
				Success: func(v T) {
					var u U
					if err, ok := quarantine(func() { u = f(v) }); !ok {
						cb.OnError(err)
						return
					}
					cb.OnSuccess(u)
				},
				Error: cb.OnError,
			})
		},
	}
}

// FlatMap returns a Task that, on success of t, runs k(v) and forwards its
// outcome. FlatMap is Task's monadic bind: Now(x).FlatMap(k) behaves like
// k(x) (left identity), t.FlatMap(Now) behaves like t (right identity), and
// FlatMap is associative.
//
// k runs under error quarantine the same way Map's f does. A failure from t
// is forwarded unchanged without calling k.
func FlatMap[T, U any](t Task[T], k func(T) Task[U]) Task[U] {
	return Task[U]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[U]) {
			unsafeRun(t, sched, active, frame, CallbackFunc[T]{
				Success: func(v T) {
					var next Task[U]
					if err, ok := quarantine(func() { next = k(v) }); !ok {
						cb.OnError(err)
						return
					}
					step(sched, active, frame, func(frame FrameID) {
						unsafeRun(next, sched, active, frame, cb)
					})
				},
				Error: cb.OnError,
			})
		},
	}
}

// Flatten collapses a Task of a Task into a single Task, running the outer
// Task and then the Task it produces. Flatten(t) is equivalent to
// FlatMap(t, identity).
func Flatten[T any](t Task[Task[T]]) Task[T] {
	return FlatMap(t, func(inner Task[T]) Task[T] { return inner })
}

// Pair is the value produced by [Zip].
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip runs a and b concurrently and, once both succeed, completes with both
// results paired up. Zip(a, b) is Map2(a, b) combined with the Pair
// constructor.
func Zip[A, B any](a Task[A], b Task[B]) Task[Pair[A, B]] {
	return Map2(a, b, func(x A, y B) Pair[A, B] { return Pair[A, B]{First: x, Second: y} })
}

// DelayExecution returns a Task that waits d before running t. The wait
// itself is scheduled via Scheduler.ScheduleOnce; canceling the surrounding
// Task during the wait aborts it before t ever starts.
func DelayExecution[T any](t Task[T], d time.Duration) Task[T] {
	return Task[T]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T]) {
			if active.IsCanceled() {
				return
			}
			handle := sched.ScheduleOnce(d, func() {
				startNow(func(frame FrameID) {
					unsafeRun(t, sched, active, frame, cb)
				})
			})
			active.Assign(handle)
		},
	}
}

// DelayResult runs t and, on success, delays delivering the result by d. A
// failure from t is delivered immediately — per §8's error-path-never-delayed
// invariant, errors are never subject to DelayResult's wait.
func DelayResult[T any](t Task[T], d time.Duration) Task[T] {
	return Task[T]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T]) {
			unsafeRun(t, sched, active, frame, CallbackFunc[T]{
				Success: func(v T) {
					handle := sched.ScheduleOnce(d, func() { cb.OnSuccess(v) })
					active.Assign(handle)
				},
				Error: cb.OnError,
			})
		},
	}
}

// Failed transposes t's outcome: a failure from t becomes a successful
// result carrying the error, and a success from t becomes a failure
// (ErrNoSuchElement) — there is no error to transpose when t didn't fail.
func Failed[T any](t Task[T]) Task[error] {
	return Task[error]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[error]) {
			unsafeRun(t, sched, active, frame, CallbackFunc[T]{
				Success: func(T) { cb.OnError(ErrNoSuchElement) },
				Error:   cb.OnSuccess,
			})
		},
	}
}

// OnErrorRecover returns a Task that, when t fails, calls recoverFn(err) to
// decide whether to replace the failure with a successful value. recoverFn
// returns ok=false to leave the original error undisturbed.
//
// A panic from recoverFn follows the report-original/deliver-new rule: the
// original error is reported to the Scheduler's uncaught-exception sink,
// while the panic recoverFn raised is delivered downstream as the new error.
func OnErrorRecover[T any](t Task[T], recoverFn func(err error) (T, bool)) Task[T] {
	return OnErrorRecoverWith(t, func(err error) (Task[T], bool) {
		v, ok := recoverFn(err)
		if !ok {
			return Task[T]{}, false
		}
		return Now(v), true
	})
}

// OnErrorRecoverWith is like [OnErrorRecover] but the replacement is itself a
// Task, allowing recovery to perform further asynchronous work.
func OnErrorRecoverWith[T any](t Task[T], recoverFn func(err error) (Task[T], bool)) Task[T] {
	return Task[T]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T]) {
			unsafeRun(t, sched, active, frame, CallbackFunc[T]{
				Success: cb.OnSuccess,
				Error: func(original error) {
					var (
						replacement Task[T]
						defined     bool
					)
					err, ok := quarantine(func() { replacement, defined = recoverFn(original) })
					if !ok {
						sched.ReportFailure(original)
						cb.OnError(err)
						return
					}
					if !defined {
						cb.OnError(original)
						return
					}
					step(sched, active, frame, func(frame FrameID) {
						unsafeRun(replacement, sched, active, frame, cb)
					})
				},
			})
		},
	}
}

// OnErrorFallbackTo returns a Task that, when t fails, runs producer() and
// forwards its outcome instead. If producer itself panics, the original
// error is reported and the new panic is delivered, the same
// report-original/deliver-new rule [OnErrorRecoverWith] follows.
func OnErrorFallbackTo[T any](t Task[T], producer func() Task[T]) Task[T] {
	return OnErrorRecoverWith(t, func(error) (Task[T], bool) {
		return producer(), true
	})
}

// OnErrorRetry returns a Task that, when t fails, retries up to n additional
// times (n+1 total executions), short-circuiting on the first success. If
// every attempt fails, the last attempt's error is delivered.
func OnErrorRetry[T any](t Task[T], n int) Task[T] {
	return OnErrorRetryIf(t, func(error) bool { return true }, n)
}

// OnErrorRetryIf returns a Task that, when t fails, retries so long as
// pred(err) reports true, stopping after n retries regardless (n+1 total
// executions). If pred panics, the original error is reported and the panic
// is delivered as the new error.
func OnErrorRetryIf[T any](t Task[T], pred func(err error) bool, n int) Task[T] {
	var attempt func(remaining int) Task[T]
	attempt = func(remaining int) Task[T] {
		return Task[T]{
			run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T]) {
				unsafeRun(t, sched, active, frame, CallbackFunc[T]{
					Success: cb.OnSuccess,
					Error: func(original error) {
						if remaining <= 0 {
							cb.OnError(original)
							return
						}
						var retry bool
						err, ok := quarantine(func() { retry = pred(original) })
						if !ok {
							sched.ReportFailure(original)
							cb.OnError(err)
							return
						}
						if !retry {
							cb.OnError(original)
							return
						}
						step(sched, active, frame, func(frame FrameID) {
							unsafeRun(attempt(remaining-1), sched, active, frame, cb)
						})
					},
				})
			},
		}
	}
	return attempt(n)
}
