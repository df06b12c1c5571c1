package tool

import (
	"context"
	"testing"
)

type stubTool struct {
	name   string
	desc   string
	schema map[string]any
	invoke func(ctx context.Context, args map[string]any) (any, error)
}

func (s *stubTool) Name() string                { return s.name }
func (s *stubTool) Description() string         { return s.desc }
func (s *stubTool) InputSchema() map[string]any { return s.schema }

func (s *stubTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if s.invoke == nil {
		return nil, nil
	}
	return s.invoke(ctx, args)
}

func TestConvertEmptyReturnsNil(t *testing.T) {
	if got := Convert(nil); got != nil {
		t.Fatalf("Convert(nil) = %v", got)
	}
	if got := Convert([]Tool{}); got != nil {
		t.Fatalf("Convert(empty) = %v", got)
	}
}

func TestConvertPreservesOrderAndNames(t *testing.T) {
	in := []Tool{
		&stubTool{name: "web", desc: "search", schema: map[string]any{"type": "object"}},
		&stubTool{name: "file", desc: "files"},
		&stubTool{name: "web", desc: "duplicate kept as-is"},
	}

	got := Convert(in)
	if len(got) != len(in) {
		t.Fatalf("len = %d, want %d", len(got), len(in))
	}
	for i, s := range got {
		if s.Name != in[i].Name() {
			t.Fatalf("schema[%d].Name = %s, want %s", i, s.Name, in[i].Name())
		}
		if s.Description != in[i].Description() {
			t.Fatalf("schema[%d].Description = %s", i, s.Description)
		}
	}
	// Duplicate names pass through unmodified.
	if got[0].Name != "web" || got[2].Name != "web" {
		t.Fatalf("duplicates altered: %+v", got)
	}
}

func TestRegistryScope(t *testing.T) {
	r := NewRegistry(
		&stubTool{name: "web"},
		&stubTool{name: "file"},
		&stubTool{name: "delegate"},
	)

	scoped := r.Scope([]string{"file", "missing"})
	if _, ok := scoped.Get("file"); !ok {
		t.Fatal("file missing from scoped registry")
	}
	if _, ok := scoped.Get("web"); ok {
		t.Fatal("web leaked into scoped registry")
	}

	if got := r.Scope(nil); got != r {
		t.Fatal("empty scope should keep the registry")
	}
}
