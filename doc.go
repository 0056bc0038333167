// Package monix is a library for lazy, cancelable asynchronous programming.
//
// A [Task][T] is a description of a computation, not the computation itself:
// building one, mapping over it, or passing it around does nothing. Nothing
// runs until [RunAsync], [RunToFuture] or [RunSync] is called, and running
// the same Task twice runs it twice — Tasks are not memoized.
//
// # Why Not Just Goroutines And Channels
//
// Goroutines are eager: `go f()` starts running the instant it's called.
// That's the right default for most Go code, but it makes a few things
// awkward to compose: canceling work that's already started, racing two
// alternatives and discarding the loser, retrying on failure, bounding how
// many things run at once. Each of these ends up reinvented ad hoc around a
// context.Context and a handful of channels every time it's needed.
//
// Task pulls those patterns out into combinators instead: [Map], [FlatMap],
// [Map2], [Amb], [Timeout], [OnErrorRetry] and friends all describe a
// computation before it runs, so the description can be built up once and
// reused, and the actual concurrency (goroutines, timers, semaphores) lives
// entirely inside the [Scheduler] and the combinators, not in caller code.
//
// # Running A Task
//
// RunAsync is the one true entry point: every other way of running a Task
// goes through it. It takes a [Scheduler] and a [Callback], starts the Task,
// and returns a [CancelToken] for aborting it early. [RunToFuture] wraps
// that in a [CancelableFuture] for callers that would rather block on a
// result than supply a Callback. [RunSync] is RunToFuture plus an immediate
// Wait, for the simplest call sites.
//
// Only RunAsync installs a [SafeCallback]: downstream of it, every
// combinator can assume its own Callback is invoked at most once, so none of
// them need to re-guard against duplicate delivery themselves.
//
// # Cancelation
//
// A running Task is tracked by a [CancelToken] hierarchy rooted at a
// [MultiAssignment], the handle RunAsync hands back. As execution descends
// through combinators, each level reassigns the MultiAssignment to
// reference whatever sub-operation is actually in flight — a pending timer,
// a bridged callback registration, or a [Composite] fanning out to several
// concurrent children — so that canceling the outer handle always reaches
// whatever is live right now, and completed branches become garbage instead
// of being kept alive by a long chain of defunct handles.
//
// # The Run Loop
//
// Continuations handed to [step] run on the calling goroutine while their
// frame count is below a fixed batch size; once it is reached, step
// resubmits the continuation to the [Scheduler] with the counter reset. This
// bounds the stack of a chain that produces its next Task from inside a
// continuation (a recursive FlatMap, a retry loop). It does not bound a
// chain built by nesting combinators directly (map.map.flatMap...): Map does
// not go through step, and such a chain is entered and completed by plain
// recursion, so its stack depth grows with its length. [Fork] forces that
// async boundary
// unconditionally, for a Task that shouldn't hog the calling goroutine even
// on its very first step.
//
// # Errors
//
// User code supplied to a Task (a map function, a predicate, an Eval thunk)
// runs under a recover-based quarantine: a panic there is converted to an
// error and delivered through the same error channel a Task's own failure
// would use, rather than propagating up through the Scheduler's goroutine
// and taking it down. [NonFatal] and the sentinel errors in errors.go
// describe the resulting taxonomy: timeouts, cancelation, and the
// protocol-violation errors a buggy Create registration or race combinator
// can produce.
package monix
