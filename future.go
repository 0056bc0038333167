package monix

// A CancelableFuture is a handle to a Task already running in the
// background: it carries both the CancelToken that can abort the run and a
// blocking Wait for callers that would rather poll for a result than supply
// a Callback up front.
//
// A CancelableFuture is completed at most once, following the same
// at-most-once discipline every Callback in this package observes.
type CancelableFuture[T any] struct {
	CancelToken
	gate   gate
	signal *signal
	value  T
	err    error
}

func (f *CancelableFuture[T]) complete(v T, err error) {
	if !f.gate.flip() {
		return
	}
	f.value = v
	f.err = err
	f.signal.Notify()
}

// Wait blocks the calling goroutine until f's Task has completed or been
// canceled, then returns its outcome. If f was canceled before the Task
// produced an outcome, Wait returns the zero value of T and [ErrCancelation].
func (f *CancelableFuture[T]) Wait() (T, error) {
	f.signal.Wait()
	return f.value, f.err
}

// RunAsync starts t on sched, delivering its outcome to cb as soon as it is
// known, and returns a CancelToken for aborting the run. RunAsync installs
// the one and only [SafeCallback] wrapper in a given run: every combinator
// downstream of this entry point assumes cb already behaves as at-most-once.
func RunAsync[T any](t Task[T], sched Scheduler, cb Callback[T]) CancelToken {
	active := NewMultiAssignment()
	safe := NewSafeCallback[T](cb, sched.ReportFailure)
	if t.immediate {
		unsafeRun(t, sched, active, 0, safe)
		return active
	}
	start(sched, func(frame FrameID) {
		unsafeRun(t, sched, active, frame, safe)
	})
	return active
}

// RunToFuture starts t on sched and returns a [CancelableFuture] immediately,
// without requiring the caller to supply a Callback. The returned future's
// Wait method blocks until t completes or is canceled; canceling the future
// before t produces an outcome unblocks Wait with [ErrCancelation].
func RunToFuture[T any](t Task[T], sched Scheduler) *CancelableFuture[T] {
	future := &CancelableFuture[T]{gate: newGate(), signal: newSignal()}
	token := RunAsync(t, sched, CallbackFunc[T]{
		Success: func(v T) { future.complete(v, nil) },
		Error:   func(err error) { future.complete(*new(T), err) },
	})
	future.CancelToken = cancelNotifyingFuture[T]{inner: token, future: future}
	return future
}

// cancelNotifyingFuture wraps the CancelToken RunAsync returns so that
// canceling the future also completes its Wait, rather than leaving any
// caller blocked in Wait forever when the Task never gets the chance to
// signal for itself.
type cancelNotifyingFuture[T any] struct {
	inner  CancelToken
	future *CancelableFuture[T]
}

func (c cancelNotifyingFuture[T]) Cancel() {
	c.inner.Cancel()
	c.future.complete(*new(T), ErrCancelation)
}

func (c cancelNotifyingFuture[T]) IsCanceled() bool { return c.inner.IsCanceled() }

// RunSync starts t on sched and blocks the calling goroutine until it
// completes, returning its outcome directly. RunSync is a thin convenience
// over [RunToFuture] for callers that have no use for early cancelation.
func RunSync[T any](t Task[T], sched Scheduler) (T, error) {
	return RunToFuture(t, sched).Wait()
}
