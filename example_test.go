package monix_test

import (
	"errors"
	"fmt"
	"time"

	"github.com/kevinwkc/monix"
)

func Example() {
	task := monix.Map(monix.Now(21), func(x int) int { return x * 2 })

	sched := monix.NewDefaultScheduler(nil)
	v, err := monix.RunSync(task, sched)
	fmt.Println(v, err)
	// Output:
	// 42 <nil>
}

func Example_flatMap() {
	greet := func(name string) monix.Task[string] {
		return monix.Now("hello, " + name)
	}

	task := monix.FlatMap(monix.Now("world"), greet)

	sched := monix.NewDefaultScheduler(nil)
	v, _ := monix.RunSync(task, sched)
	fmt.Println(v)
	// Output:
	// hello, world
}

func Example_onErrorRecover() {
	boom := errors.New("connection refused")

	task := monix.OnErrorRecover(monix.Error[int](boom), func(err error) (int, bool) {
		return -1, true
	})

	sched := monix.NewDefaultScheduler(nil)
	v, err := monix.RunSync(task, sched)
	fmt.Println(v, err)
	// Output:
	// -1 <nil>
}

func Example_timeout() {
	sched := monix.NewVirtualScheduler(nil)

	// never completes on its own
	hangs := monix.Create(func(cb monix.Callback[int], s monix.Scheduler) monix.CancelToken {
		return monix.Empty()
	})

	future := monix.RunToFuture(monix.Timeout(hangs, time.Second), sched)
	sched.Tick()
	sched.Advance(time.Second)

	_, err := future.Wait()
	fmt.Println(err)
	// Output:
	// monix: task timed-out after 1s
}

func Example_gather() {
	sched := monix.NewDefaultScheduler(nil)
	task := monix.Gather(monix.Now(1), monix.Now(2), monix.Now(3))
	vs, _ := monix.RunSync(task, sched)
	fmt.Println(vs)
	// Output:
	// [1 2 3]
}
