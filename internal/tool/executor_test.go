package tool

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"conduit/internal/sched"
)

func testExecutor(tools ...Tool) *Executor {
	return NewExecutor(NewRegistry(tools...), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExecuteUnknownTool(t *testing.T) {
	e := testExecutor()

	_, err := e.Execute(context.Background(), "does-not-exist", map[string]any{})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %T %v", err, err)
	}
	if nf.Name != "does-not-exist" {
		t.Fatalf("Name = %q", nf.Name)
	}
}

func TestExecuteImmediateResult(t *testing.T) {
	e := testExecutor(&stubTool{
		name: "echo",
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			return args["text"], nil
		},
	})

	v, err := e.Execute(context.Background(), "echo", map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if v != "hi" {
		t.Fatalf("value = %v", v)
	}
}

func TestExecuteForwardsDeferredResult(t *testing.T) {
	e := testExecutor(&stubTool{
		name: "slow",
		invoke: func(ctx context.Context, args map[string]any) (any, error) {
			return sched.Go(ctx, func(ctx context.Context) (any, error) {
				return "eventually", nil
			}), nil
		},
	})

	v, err := e.Execute(context.Background(), "slow", nil)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// The executor must not resolve the future itself.
	fut, ok := v.(*sched.Future)
	if !ok {
		t.Fatalf("value = %T, want *sched.Future", v)
	}

	resolved, err := Resolve(context.Background(), fut)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != "eventually" {
		t.Fatalf("resolved = %v", resolved)
	}
}

func TestResolvePassesImmediateValuesThrough(t *testing.T) {
	v, err := Resolve(context.Background(), "plain")
	if err != nil || v != "plain" {
		t.Fatalf("resolve = %v, %v", v, err)
	}
}
