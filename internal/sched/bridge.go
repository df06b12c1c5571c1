package sched

import "context"

// Operation is a suspending operation handed to the bridge. It typically
// awaits one or more futures before producing its value.
type Operation = Task

// RunToCompletion drives op from a call site that cannot itself suspend.
//
// When no loop is active on the calling goroutine, a fresh loop is created,
// op runs on it, and the loop is torn down before returning, on success and
// failure alike.
//
// When the calling goroutine is already executing a loop task, nesting a
// second loop there would deadlock. Instead op runs on exactly one dedicated
// worker goroutine with its own loop, and the result comes back over a
// single-use handoff. The original error value is returned as-is, so
// errors.Is and errors.As keep matching across the thread hop.
//
// The bridge has no cancellation of its own: a caller that races this call
// against a deadline must accept that the worker keeps running to completion
// in the background.
func RunToCompletion(ctx context.Context, op Operation) (any, error) {
	if _, active := FromContext(ctx); !active {
		loop := New()
		defer loop.Close()
		return loop.Submit(ctx, op).Await(ctx)
	}

	handoff := make(chan result, 1)
	go func() {
		loop := New()
		defer loop.Close()
		v, err := loop.Submit(ctx, op).Await(context.Background())
		handoff <- result{value: v, err: err}
	}()
	r := <-handoff
	return r.value, r.err
}
