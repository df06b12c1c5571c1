// Package sched provides a single-goroutine cooperative scheduler and the
// bridge that lets blocking call sites drive deferred work to completion.
package sched

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopClosed is returned for work submitted to a loop after Close.
var ErrLoopClosed = errors.New("sched: loop closed")

// Task is a unit of work driven by a Loop. The context it receives is
// tagged with the loop, so nested bridging can detect re-entrancy.
type Task func(ctx context.Context) (any, error)

type submission struct {
	ctx  context.Context
	task Task
	fut  *Future
}

// Loop runs submitted tasks one at a time on a goroutine it owns. It is the
// execution context for deferred operations: at most one task makes progress
// at any moment, and a task never runs concurrently with itself.
type Loop struct {
	tasks     chan submission
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New starts a loop. The caller must Close it when done.
func New() *Loop {
	l := &Loop{
		tasks: make(chan submission),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case s := <-l.tasks:
			v, err := s.task(WithLoop(s.ctx, l))
			s.fut.complete(v, err)
		}
	}
}

// Submit enqueues a task and returns the future that will carry its result.
// Submitting to a closed loop completes the future with ErrLoopClosed.
func (l *Loop) Submit(ctx context.Context, task Task) *Future {
	fut := newFuture()
	select {
	case l.tasks <- submission{ctx: ctx, task: task, fut: fut}:
	case <-l.quit:
		fut.complete(nil, ErrLoopClosed)
	}
	return fut
}

// Close stops the loop and waits for the in-flight task, if any, to finish.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.quit) })
	<-l.done
}

type contextKey int

const loopKey contextKey = iota

// WithLoop tags ctx with the loop currently driving it.
func WithLoop(ctx context.Context, l *Loop) context.Context {
	return context.WithValue(ctx, loopKey, l)
}

// FromContext reports the loop driving the current task, if any.
func FromContext(ctx context.Context) (*Loop, bool) {
	l, ok := ctx.Value(loopKey).(*Loop)
	return l, ok
}
