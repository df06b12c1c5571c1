package tool

import (
	"context"
	"fmt"
	"log/slog"

	"conduit/internal/sched"
	"conduit/internal/trace"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// NotFoundError reports an execute request for a name absent from the
// registry.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Name)
}

// Executor resolves tools by name and invokes them. It forwards whatever
// kind of result the tool produces: an immediate value comes back as-is, a
// deferred one comes back as a *sched.Future for the caller to resolve.
type Executor struct {
	registry *Registry
	log      *slog.Logger
}

func NewExecutor(registry *Registry, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{registry: registry, log: log}
}

func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	t, ok := e.registry.Get(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}

	ctx, span := trace.Tracer().Start(ctx, name,
		oteltrace.WithAttributes(attribute.String("gen_ai.tool.name", name)),
	)
	defer span.End()

	e.log.Debug("executing tool", "name", name)
	v, err := t.Invoke(ctx, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return v, nil
}

// Resolve awaits a deferred tool result; immediate values pass through
// untouched. Callers compose this with the bridge only when they sit on a
// plain call stack.
func Resolve(ctx context.Context, v any) (any, error) {
	if f, ok := v.(*sched.Future); ok {
		return f.Await(ctx)
	}
	return v, nil
}
