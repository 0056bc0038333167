package monix

import (
	"fmt"
	"runtime/debug"
)

// quarantine runs f and converts a recovered panic into an error, the way
// user code passed to eval, map, flatMap, recovery and retry predicates is
// never allowed to bring down the run loop.
//
// Unlike the teacher library this package started from — where a Coroutine
// accumulates a whole stack of recovered panics across nested transitions —
// a Task combinator only ever guards one user closure at a time before
// forwarding a single outcome to a [Callback], so there is no stack to keep:
// just the one recovered value, converted to an error and stamped with a
// stack trace for diagnostics.
//
// quarantine does not catch runtime.Goexit: a goroutine that exits via
// runtime.Goexit inside quarantined code re-panics with errGoexitUnsupported instead
// of silently reporting ok.
func quarantine(f func()) (err error, ok bool) {
	defer func() {
		if ok {
			return
		}
		v := recover()
		if v == nil {
			panic(errGoexitUnsupported)
		}
		err = asPanicError(v)
	}()
	f()
	return nil, true
}

var errGoexitUnsupported = fmt.Errorf("monix: a quarantined closure called runtime.Goexit, which monix does not support")

// asPanicError turns an arbitrary recovered panic value into an error,
// attaching a stack trace unless the value is already an error (in which
// case it is returned unwrapped, so that errors.Is/errors.As keep working
// against the original sentinel).
func asPanicError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return &panicError{value: v, stack: debug.Stack()}
}

// panicError wraps a non-error value recovered from a panic inside
// quarantined user code.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("monix: panic: %v\n\n%s", e.value, e.stack)
}
