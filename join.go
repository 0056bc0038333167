package monix

import "sync"

// Gather runs every Task in tasks concurrently and, once all have succeeded,
// completes with their results in the same order tasks were given. The first
// failure observed from any branch cancels the rest and is delivered;
// Gather does not wait for stragglers once one branch has failed.
//
// Gather is the N-ary generalization of [Zip], modeled on the teacher
// library's Join combinator.
func Gather[T any](tasks ...Task[T]) Task[[]T] {
	if len(tasks) == 0 {
		return Now[[]T](nil)
	}
	return ParSequenceN(len(tasks), tasks...)
}

// ParSequenceN runs tasks concurrently, bounded to at most concurrency
// branches in flight at once, and completes with their results in the same
// order tasks was given. The first failure observed from any running branch
// cancels the rest (including anything still waiting for a slot) and is
// delivered.
//
// ParSequenceN panics if concurrency is not positive. ParSequenceN with
// concurrency >= len(tasks) behaves like [Gather]: every branch starts at
// once, bounded only by the Scheduler.
func ParSequenceN[T any](concurrency int, tasks ...Task[T]) Task[[]T] {
	if concurrency <= 0 {
		panic("monix: ParSequenceN requires a positive concurrency")
	}
	return Task[[]T]{
		run: func(sched Scheduler, active *MultiAssignment, frame FrameID, cb Callback[[]T]) {
			if active.IsCanceled() {
				return
			}
			if len(tasks) == 0 {
				cb.OnSuccess(nil)
				return
			}

			composite := NewComposite()
			active.Assign(composite)

			g := newGate()

			results := make([]T, len(tasks))

			var mu sync.Mutex
			remaining := len(tasks)

			sem := NewSemaphore(int64(concurrency))

			for i, task := range tasks {
				i, task := i, task
				child := NewMultiAssignment()
				composite.Add(child)

				// A permit acquired here is released from the Success/Error
				// callbacks below; a branch canceled after acquiring but
				// before completing holds its permit until the semaphore
				// itself is garbage, same as the composite's own children.
				gated := FlatMap(sem.Acquire(1), func(struct{}) Task[T] {
					return task
				})

				start(sched, func(frame FrameID) {
					unsafeRun(gated, sched, child, frame, CallbackFunc[T]{
						Success: func(v T) {
							sem.Release(1)
							mu.Lock()
							results[i] = v
							remaining--
							done := remaining == 0
							mu.Unlock()
							if done && g.flip() {
								cb.OnSuccess(results)
							}
						},
						Error: func(err error) {
							sem.Release(1)
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
