package monix

import "testing"

func TestSemaphoreAcquireGrantsImmediatelyWhenFree(t *testing.T) {
	sem := NewSemaphore(2)
	v, err := runSync(sem.Acquire(2))
	if err != nil || v != struct{}{} {
		t.Fatalf("got (%v, %v)", v, err)
	}
}

func TestSemaphoreAcquireWaitsForRelease(t *testing.T) {
	sem := NewSemaphore(1)
	sched := NewVirtualScheduler(nil)

	// Hold the only permit.
	holderDone := make(chan struct{})
	RunAsync(sem.Acquire(1), sched, CallbackFunc[struct{}]{
		Success: func(struct{}) { close(holderDone) },
	})
	sched.Tick()
	<-holderDone

	// A second Acquire(1) must not be granted until the first is released.
	granted := false
	RunAsync(sem.Acquire(1), sched, CallbackFunc[struct{}]{
		Success: func(struct{}) { granted = true },
	})
	sched.Tick()
	if granted {
		t.Fatal("second Acquire was granted while the only permit was still held")
	}

	sem.Release(1)
	if !granted {
		t.Fatal("second Acquire should have been granted once the permit was released")
	}
}

func TestNewSemaphoreNonPositiveSizePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected NewSemaphore(0) to panic")
		}
	}()
	NewSemaphore(0)
}

func TestSemaphoreAcquireMoreThanSizeFails(t *testing.T) {
	sem := NewSemaphore(1)
	_, err := runSync(sem.Acquire(2))
	if err == nil {
		t.Fatal("expected acquiring more weight than the semaphore holds to fail")
	}
}

func TestSemaphoreReleaseMoreThanHeldPanics(t *testing.T) {
	sem := NewSemaphore(1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected releasing more than held to panic")
		}
	}()
	sem.Release(1)
}
