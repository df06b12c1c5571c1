package sched

import (
	"context"
	"sync"
)

type result struct {
	value any
	err   error
}

// Future is a single-use handoff for the result of deferred work. It is
// completed exactly once by the producer; Await may be called repeatedly and
// keeps returning the same result once it is in.
type Future struct {
	ch chan result

	mu       sync.Mutex
	resolved bool
	res      result
}

func newFuture() *Future {
	return &Future{ch: make(chan result, 1)}
}

func (f *Future) complete(v any, err error) {
	f.ch <- result{value: v, err: err}
}

// Completed returns a future that is already resolved. Providers and tools
// use it when a nominally deferred result is available immediately.
func Completed(v any, err error) *Future {
	f := newFuture()
	f.complete(v, err)
	return f
}

// Await blocks until the result is in or ctx is cancelled. The producer keeps
// running after a cancelled Await; its result is delivered to a later Await.
func (f *Future) Await(ctx context.Context) (any, error) {
	f.mu.Lock()
	if f.resolved {
		res := f.res
		f.mu.Unlock()
		return res.value, res.err
	}
	f.mu.Unlock()

	select {
	case r := <-f.ch:
		f.mu.Lock()
		f.resolved = true
		f.res = r
		f.mu.Unlock()
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Go runs task on its own goroutine and returns the future carrying its
// result. This is how deferred provider calls and deferred tools are made.
func Go(ctx context.Context, task Task) *Future {
	f := newFuture()
	go func() {
		f.complete(task(ctx))
	}()
	return f
}
