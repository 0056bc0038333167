package monix

import (
	"sync"
	"time"
)

// VirtualScheduler is a [Scheduler] whose notion of time is entirely
// simulated: Execute and ScheduleOnce never touch a real goroutine or timer,
// and nothing runs until the test calls [VirtualScheduler.Tick] or
// [VirtualScheduler.Advance]. This is what lets tests exercise timeouts,
// races and delayed results deterministically instead of sleeping and hoping.
//
// VirtualScheduler is grounded on the teacher library's single-threaded
// Executor: like the Executor's run loop draining a priority queue of ready
// coroutines, VirtualScheduler drains a priority queue of due runnables, but
// ordered by simulated deadline instead of spawn order, and driven by the
// test rather than by an internal loop.
//
// The zero value is not ready to use; construct one with [NewVirtualScheduler].
type VirtualScheduler struct {
	reporter UncaughtExceptionReporter

	mu      sync.Mutex
	now     time.Time
	pq      priorityqueue[*timerEntry]
	nextSeq uint64
	pending []func() // runnables submitted via Execute, FIFO
	errs    []error
}

// NewVirtualScheduler returns a ready-to-use VirtualScheduler with its clock
// set to an arbitrary fixed epoch. If reporter is nil, failures are recorded
// internally and can be retrieved with [VirtualScheduler.Errors].
func NewVirtualScheduler(reporter UncaughtExceptionReporter) *VirtualScheduler {
	s := &VirtualScheduler{reporter: reporter, now: time.Unix(0, 0)}
	return s
}

func (s *VirtualScheduler) Execute(run func()) {
	s.mu.Lock()
	s.pending = append(s.pending, run)
	s.mu.Unlock()
}

func (s *VirtualScheduler) ScheduleOnce(d time.Duration, run func()) CancelToken {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	entry := &timerEntry{deadline: s.now.Add(d), seq: s.nextSeq, run: run}
	s.nextSeq++
	s.pq.Push(entry)
	s.mu.Unlock()

	return Cancelable(func() {
		s.mu.Lock()
		entry.canceled = true
		s.mu.Unlock()
	})
}

func (s *VirtualScheduler) ReportFailure(err error) {
	if s.reporter != nil {
		s.reporter.ReportFailure(err)
		return
	}
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

func (s *VirtualScheduler) IsAlwaysAsync() bool { return false }

// Errors returns every failure reported to s since construction, in the
// order they were reported. Only meaningful when s was constructed with a
// nil reporter.
func (s *VirtualScheduler) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

// Tick drains every runnable currently pending (submitted via Execute, or
// due at the current simulated time via ScheduleOnce), without advancing the
// clock. Newly-submitted runnables produced as a side effect of draining are
// drained too, until none are left. Tick is what a test calls after
// constructing and starting a Task to let its synchronous and
// already-due-asynchronous steps play out.
func (s *VirtualScheduler) Tick() {
	for {
		run, ok := s.popOne()
		if !ok {
			return
		}
		run()
	}
}

func (s *VirtualScheduler) popOne() (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) > 0 {
		run := s.pending[0]
		s.pending = s.pending[1:]
		return run, true
	}
	for !s.pq.Empty() && !s.pq.Peek().deadline.After(s.now) {
		entry := s.pq.Pop()
		if !entry.canceled {
			return entry.run, true
		}
	}
	return nil, false
}

// Advance moves s's simulated clock forward by d, then calls Tick so that
// any timers that became due (and anything they in turn schedule) run to
// quiescence.
func (s *VirtualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	s.mu.Unlock()
	s.Tick()
}

// Now returns s's current simulated time.
func (s *VirtualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
