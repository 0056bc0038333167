package monix

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned (wrapped in a [TimeoutError] carrying the configured
// duration) by [Timeout] when the source doesn't complete in time and no backup task
// was given.
var ErrTimeout = errors.New("monix: task timed out")

// ErrCancelation is the error a [CancelableFuture] fails with when its
// CancelToken is invoked before the underlying Task completes.
var ErrCancelation = errors.New("monix: task was canceled")

// ErrNoSuchElement is the error produced by [Failed] when the source Task it
// wraps completes successfully — there is no element to fail with.
var ErrNoSuchElement = errors.New("monix: predecessor completed without an error")

// A TimeoutError reports that a Task did not complete within the configured
// duration. It wraps ErrTimeout so callers can test with errors.Is(err,
// ErrTimeout).
type TimeoutError struct {
	After string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("monix: task timed-out after %s", e.After)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// An IllegalStateError reports a protocol violation: a join or race branch
// signaled its outer callback more than once. This can only be caused by a
// bug in a combinator implementation or a misused [Create] registration, not
// by ordinary task failures.
type IllegalStateError struct {
	Message string
}

func (e *IllegalStateError) Error() string { return "monix: illegal state: " + e.Message }

// NonFatal reports whether err is safe to quarantine inside effectful user
// code, as opposed to a fatal condition (stack overflow, out-of-memory, a
// runtime-level failure) that must keep propagating.
//
// Go surfaces fatal runtime conditions as process death, not as a recoverable
// panic value, so in practice every panic value reaching [quarantine] is
// non-fatal by construction; NonFatal exists so that a custom
// [UncaughtExceptionReporter] or recovery predicate can still make the
// distinction explicit for its own panic values (e.g. a sentinel meaning
// "abort everything").
func NonFatal(err error) bool {
	return err != nil
}
