package monix

import (
	"sync"
	"time"
)

// Map2 runs a and b concurrently and, once both have succeeded, combines
// their results with f. If either fails, the other is canceled and the
// failure is delivered as soon as it is known — Map2 does not wait for the
// slower branch once one side has already failed.
//
// Map2 installs a single *Composite into active and gives each branch its
// own child *MultiAssignment; once both results (or a failure) are known,
// active is left referencing only the Composite, which by then has no more
// live children to cancel.
func Map2[A, B, C any](a Task[A], b Task[B], f func(A, B) C) Task[C] {
	return Task[C]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[C]) {
			if active.IsCanceled() {
				return
			}

			composite := NewComposite()
			active.Assign(composite)

			state := newMap2State[A, B, C](f, cb, sched.ReportFailure, composite)

			aChild := NewMultiAssignment()
			composite.Add(aChild)
			bChild := NewMultiAssignment()
			composite.Add(bChild)

			start(sched, func(frame FrameID) {
				unsafeRun(a, sched, aChild, frame, CallbackFunc[A]{
					Success: func(v A) { state.succeedA(v) },
					Error:   func(err error) { state.fail(err) },
				})
			})
			start(sched, func(frame FrameID) {
				unsafeRun(b, sched, bChild, frame, CallbackFunc[B]{
					Success: func(v B) { state.succeedB(v) },
					Error:   func(err error) { state.fail(err) },
				})
			})
		},
	}
}

// map2State arbitrates the two branches of a Map2: it delivers exactly once,
// either with f(a, b) once both sides have succeeded, or with the first
// failure observed from either side.
type map2State[A, B, C any] struct {
	gate          gate
	f             func(A, B) C
	cb            Callback[C]
	reportFailure func(error)
	composite     *Composite

	mu    sync.Mutex
	aDone bool
	bDone bool
	aVal  A
	bVal  B
}

func newMap2State[A, B, C any](f func(A, B) C, cb Callback[C], reportFailure func(error), composite *Composite) *map2State[A, B, C] {
	return &map2State[A, B, C]{f: f, cb: cb, reportFailure: reportFailure, composite: composite, gate: newGate()}
}

func (s *map2State[A, B, C]) succeedA(v A) {
	s.mu.Lock()
	if s.aDone {
		s.mu.Unlock()
		s.protocolViolation()
		return
	}
	s.aDone = true
	s.aVal = v
	ready := s.bDone
	bVal := s.bVal
	s.mu.Unlock()

	if !ready {
		return
	}
	s.deliver(v, bVal)
}

func (s *map2State[A, B, C]) succeedB(v B) {
	s.mu.Lock()
	if s.bDone {
		s.mu.Unlock()
		s.protocolViolation()
		return
	}
	s.bDone = true
	s.bVal = v
	ready := s.aDone
	aVal := s.aVal
	s.mu.Unlock()

	if !ready {
		return
	}
	s.deliver(aVal, v)
}

func (s *map2State[A, B, C]) deliver(a A, b B) {
	if !s.gate.flip() {
		return
	}
	s.composite.Cancel()
	var c C
	if err, ok := quarantine(func() { c = s.f(a, b) }); !ok {
		s.cb.OnError(err)
		return
	}
	s.cb.OnSuccess(c)
}

func (s *map2State[A, B, C]) fail(err error) {
	if !s.gate.flip() {
		return
	}
	s.composite.Cancel()
	s.cb.OnError(err)
}

func (s *map2State[A, B, C]) protocolViolation() {
	err := &IllegalStateError{Message: "Map2 branch signaled more than once"}
	s.reportFailure(err)
	if s.gate.flip() {
		s.composite.Cancel()
		s.cb.OnError(err)
	}
}

// gate is an at-most-once latch: flip reports true exactly the first time it
// is called and false on every call after. The zero value is not ready to
// use; construct one with newGate.
type gate struct {
	ch chan struct{}
}

func newGate() gate {
	return gate{ch: make(chan struct{}, 1)}
}

func (g *gate) flip() bool {
	select {
	case g.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// AmbWith races t against others, delivering whichever Task produces an
// outcome (success or failure) first, and canceling every other branch.
// AmbWith always races at least t, so unlike [Amb] it never panics for lack
// of input.
func AmbWith[T any](t Task[T], others ...Task[T]) Task[T] {
	return Amb(append([]Task[T]{t}, others...)...)
}

// Amb races every Task in tasks, delivering whichever one produces an
// outcome first and canceling the rest. Amb panics if tasks is empty.
func Amb[T any](tasks ...Task[T]) Task[T] {
	if len(tasks) == 0 {
		panic("monix: Amb requires at least one Task")
	}
	return Task[T]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T]) {
			if active.IsCanceled() {
				return
			}

			composite := NewComposite()
			active.Assign(composite)

			g := newGate()

			for _, task := range tasks {
				task := task
				child := NewMultiAssignment()
				composite.Add(child)
				start(sched, func(frame FrameID) {
					unsafeRun(task, sched, child, frame, CallbackFunc[T]{
						Success: func(v T) {
							if g.flip() {
								composite.Cancel()
								cb.OnSuccess(v)
							}
						},
						Error: func(err error) {
							if g.flip() {
								composite.Cancel()
								cb.OnError(err)
							}
						},
					})
				})
			}
		},
	}
}

// Timeout returns a Task that fails with a *TimeoutError if t has not
// produced an outcome within d. If t completes first, its outcome is
// delivered and the timer is canceled; if the timer fires first, t is
// canceled and the TimeoutError is delivered instead.
func Timeout[T any](t Task[T], d time.Duration) Task[T] {
	return TimeoutTo(t, d, Error[T](&TimeoutError{After: d.String()}))
}

// TimeoutTo is like [Timeout], but on expiry runs backup instead of failing
// with a *TimeoutError.
func TimeoutTo[T any](t Task[T], d time.Duration, backup Task[T]) Task[T] {
	return Task[T]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[T]) {
			if active.IsCanceled() {
				return
			}

			composite := NewComposite()
			active.Assign(composite)

			g := newGate()

			mainChild := NewMultiAssignment()
			composite.Add(mainChild)

			timerChild := NewMultiAssignment()
			composite.Add(timerChild)

			timerHandle := sched.ScheduleOnce(d, func() {
				if !g.flip() {
					return
				}
				mainChild.Cancel()
				start(sched, func(frame FrameID) {
					unsafeRun(backup, sched, timerChild, frame, cb)
				})
			})
			timerChild.Assign(timerHandle)

			start(sched, func(frame FrameID) {
				unsafeRun(t, sched, mainChild, frame, CallbackFunc[T]{
					Success: func(v T) {
						if g.flip() {
							timerChild.Cancel()
							cb.OnSuccess(v)
						}
					},
					Error: func(err error) {
						if g.flip() {
							timerChild.Cancel()
							cb.OnError(err)
						}
					},
				})
			})
		},
	}
}
