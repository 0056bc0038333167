package monix

import "sync"

// signal is a thread-safe, fire-once completion broadcaster: Notify wakes
// every goroutine currently blocked in Wait, and any Wait call arriving
// after Notify returns immediately. It is the goroutine-based replacement
// for the teacher library's reactive Signal, which resumed watching
// Coroutines from inside a single-threaded run loop instead.
//
// signal backs [CancelableFuture]'s blocking Wait: a future fired from a
// Callback running on some arbitrary Scheduler goroutine notifies, and any
// number of goroutines calling Wait concurrently all unblock together.
type signal struct {
	mu   sync.Mutex
	cond *sync.Cond
	done bool
}

func newSignal() *signal {
	s := &signal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Notify marks s done and wakes every goroutine blocked in Wait. Notifying
// an already-done signal has no effect.
func (s *signal) Notify() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Wait blocks until s has been notified.
func (s *signal) Wait() {
	s.mu.Lock()
	for !s.done {
		s.cond.Wait()
	}
	s.mu.Unlock()
}
