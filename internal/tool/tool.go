// Package tool defines the callable-tool contract, the schema converter and
// the executor that invokes tools uniformly whether they return immediately
// or hand back deferred work.
package tool

import "context"

// Tool is a named callable. Invoke may return a plain value or a
// *sched.Future when the tool's work completes later; callers that need the
// final value resolve it with Resolve.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]any
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// Registry is a read-only name-to-tool mapping, built once at construction.
// Registering two tools with the same name keeps the last one; rejecting or
// merging duplicates is the caller's call, not the registry's.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, seen := r.tools[t.Name()]; !seen {
			r.order = append(r.order, t.Name())
		}
		r.tools[t.Name()] = t
	}
	return r
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns the tools in registration order.
func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Scope returns a registry restricted to the named tools. An empty name
// list keeps everything.
func (r *Registry) Scope(names []string) *Registry {
	if len(names) == 0 {
		return r
	}
	var scoped []Tool
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			scoped = append(scoped, t)
		}
	}
	return NewRegistry(scoped...)
}
