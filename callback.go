package monix

import "sync/atomic"

// A Callback is a two-arm sink for the outcome of a [Task]: exactly one of
// OnSuccess or OnError is meant to be invoked, at most once.
//
// Combinators that install their own completion handler downstream of a
// source Task may assume their installed Callback is invoked correctly (at
// most once, on the thread the run loop resumes on) and must not double-wrap
// it. Only the [RunAsync] boundary wraps the caller's Callback in a
// [SafeCallback].
type Callback[T any] interface {
	OnSuccess(value T)
	OnError(err error)
}

// CallbackFunc adapts a pair of plain functions to the [Callback] interface.
// Either field may be nil, in which case the corresponding arm does nothing.
type CallbackFunc[T any] struct {
	Success func(T)
	Error   func(error)
}

func (f CallbackFunc[T]) OnSuccess(value T) {
	if f.Success != nil {
		f.Success(value)
	}
}

func (f CallbackFunc[T]) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// A SafeCallback wraps any [Callback] with a single-shot gate enforcing
// at-most-once delivery: the first call to OnSuccess or OnError flips the
// gate and forwards; every subsequent call, from either arm, is silently
// dropped.
//
// If the wrapped callback itself panics, there is no surviving listener to
// propagate to, so the panic is converted to an error and handed to
// reportFailure instead of being re-raised. When the original signal being
// delivered was itself an error and the listener also panics while handling
// it, both errors reach reportFailure — the original is not discarded just
// because the listener misbehaved.
//
// SafeCallback is used exactly once per [RunAsync] call, at the
// outermost boundary; it is not meant to be nested.
type SafeCallback[T any] struct {
	inner         Callback[T]
	reportFailure func(error)
	delivered     atomic.Bool
}

// NewSafeCallback wraps cb so that at most one of OnSuccess/OnError reaches
// it, ever. Panics raised by cb are reported via reportFailure (which may be
// nil, in which case they are dropped — callers normally pass a
// [Scheduler.ReportFailure]).
func NewSafeCallback[T any](cb Callback[T], reportFailure func(error)) *SafeCallback[T] {
	return &SafeCallback[T]{inner: cb, reportFailure: reportFailure}
}

func (s *SafeCallback[T]) OnSuccess(value T) {
	if !s.delivered.CompareAndSwap(false, true) {
		return
	}
	if err, ok := quarantine(func() { s.inner.OnSuccess(value) }); !ok {
		s.report(err)
	}
}

func (s *SafeCallback[T]) OnError(err error) {
	if !s.delivered.CompareAndSwap(false, true) {
		return
	}
	if listenerErr, ok := quarantine(func() { s.inner.OnError(err) }); !ok {
		// The listener itself panicked while handling an error: report both,
		// the original outcome had nowhere else to go once the listener failed.
		s.report(err)
		s.report(listenerErr)
	}
}

func (s *SafeCallback[T]) report(err error) {
	if s.reportFailure != nil {
		s.reportFailure(err)
	}
}
