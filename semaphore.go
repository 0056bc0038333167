package monix

import "sync"

// Semaphore bounds concurrent access to a resource by weight. Unlike the
// teacher library's single-goroutine Semaphore built for its Coroutine
// scheduler, this one is safe for concurrent use from multiple goroutines,
// which is what [ParSequenceN] needs to cap how many branches of a join run
// at once.
//
// The zero value is not ready to use; construct one with [NewSemaphore].
type Semaphore struct {
	mu      sync.Mutex
	size    int64
	cur     int64
	waiters []*semWaiter
}

type semWaiter struct {
	n      int64
	notify func()
}

// NewSemaphore returns a ready-to-use Semaphore with the given maximum
// combined weight. NewSemaphore panics if n is not positive.
func NewSemaphore(n int64) *Semaphore {
	if n <= 0 {
		panic("monix: Semaphore size must be positive")
	}
	return &Semaphore{size: n}
}

// Acquire returns a Task that completes once a weight of n has been granted
// by s. Acquire panics if n is negative. If n exceeds s's total size, the
// returned Task fails with an *IllegalStateError when run — such a request
// could never be satisfied.
func (s *Semaphore) Acquire(n int64) Task[struct{}] {
	if n < 0 {
		panic("monix: Semaphore.Acquire: negative weight")
	}
	return Create(func(cb Callback[struct{}], sched Scheduler) CancelToken {
		if n > s.size {
			cb.OnError(&IllegalStateError{Message: "Semaphore.Acquire: weight exceeds semaphore size"})
			return Empty()
		}

		s.mu.Lock()
		if s.size-s.cur >= n {
			s.cur += n
			s.mu.Unlock()
			cb.OnSuccess(struct{}{})
			return Empty()
		}

		w := &semWaiter{n: n}
		delivered := false
		w.notify = func() {
			s.mu.Lock()
			if delivered {
				s.mu.Unlock()
				return
			}
			delivered = true
			s.mu.Unlock()
			cb.OnSuccess(struct{}{})
		}
		s.waiters = append(s.waiters, w)
		s.mu.Unlock()

		return Cancelable(func() {
			s.mu.Lock()
			if delivered {
				s.mu.Unlock()
				return
			}
			delivered = true
			for i, other := range s.waiters {
				if other == w {
					s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
		})
	})
}

// Release releases a weight of n back to s, waking any waiters that can now
// be satisfied. Release panics if n is negative or would release more than
// is currently held.
func (s *Semaphore) Release(n int64) {
	if n < 0 {
		panic("monix: Semaphore.Release: negative weight")
	}
	s.mu.Lock()
	s.cur -= n
	if s.cur < 0 {
		s.mu.Unlock()
		panic("monix: Semaphore.Release: released more than held")
	}
	granted := 0
	var woken []func()
	for granted < len(s.waiters) {
		w := s.waiters[granted]
		if s.size-s.cur < w.n {
			break
		}
		s.cur += w.n
		woken = append(woken, w.notify)
		granted++
	}
	s.waiters = s.waiters[granted:]
	s.mu.Unlock()

	for _, notify := range woken {
		notify()
	}
}
