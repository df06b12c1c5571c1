package provider

import (
	"context"
	"fmt"
	"log/slog"

	"conduit/internal/message"
	"conduit/internal/sched"
	"conduit/internal/tool"
	"conduit/internal/trace"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Adapter composes normalization, schema conversion and dispatch into the
// uniform call contract. It holds no per-call mutable state: just the
// backend reference, the capability negotiated at construction and the
// injected diagnostic sink.
type Adapter struct {
	backend    any
	capability Capability
	normalizer *message.Normalizer
	log        *slog.Logger
}

type AdapterOption func(*Adapter)

// WithLogger sets the diagnostic sink. The default is slog.Default.
func WithLogger(log *slog.Logger) AdapterOption {
	return func(a *Adapter) { a.log = log }
}

// NewAdapter negotiates the backend's calling convention. A backend that
// exposes none of the capability interfaces is a configuration fault and is
// rejected here rather than degraded at call time.
func NewAdapter(backend any, opts ...AdapterOption) (*Adapter, error) {
	a := &Adapter{backend: backend, capability: probe(backend)}
	for _, opt := range opts {
		opt(a)
	}
	if a.capability == CapabilityNone {
		return nil, fmt.Errorf("provider %T exposes no usable calling convention", backend)
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	a.normalizer = message.NewNormalizer(a.log)
	a.log.Debug("provider capability negotiated", "capability", a.capability.String())
	return a, nil
}

// Capability reports the convention negotiated at construction.
func (a *Adapter) Capability() Capability {
	return a.capability
}

// Call invokes the backend from a plain call stack. Messages are normalized,
// tools converted (nil schema when none are supplied) and options merged
// before dispatch. A deferred-only backend is driven through the bridge.
//
// Error policy: the raw synchronous path re-raises backend failures
// unchanged; every other path degrades to an "Error: "-prefixed assistant
// response so orchestration loops that expect a response object keep
// functioning.
func (a *Adapter) Call(ctx context.Context, msgs []any, tools []tool.Tool, opts Options) (*Response, error) {
	req := a.buildRequest(msgs, tools, opts)

	ctx, span := trace.Tracer().Start(ctx, "provider.call",
		oteltrace.WithAttributes(
			attribute.String("provider.capability", a.capability.String()),
			attribute.Int("provider.messages", len(req.Messages)),
			attribute.Int("provider.tools", len(req.Tools)),
		),
	)
	defer span.End()

	switch a.capability {
	case CapabilityRawGenerate:
		raw, err := a.backend.(RawGenerator).GenerateRaw(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		return raw.response(), nil

	case CapabilityGenerate:
		resp, err := a.backend.(Generator).Generate(ctx, req)
		if err != nil {
			return a.degrade(span, err), nil
		}
		return resp, nil

	case CapabilityDeferredChat:
		v, err := sched.RunToCompletion(ctx, func(ctx context.Context) (any, error) {
			return a.backend.(DeferredChatter).ChatDeferred(ctx, req).Await(ctx)
		})
		if err != nil {
			return a.degrade(span, err), nil
		}
		return v.(*Response), nil

	default: // CapabilityChat
		resp, err := a.backend.(Chatter).Chat(ctx, req)
		if err != nil {
			return a.degrade(span, err), nil
		}
		return resp, nil
	}
}

// CallDeferred is the deferred counterpart of Call: the reply arrives
// through a future. A deferred-capable backend is invoked natively; the
// synchronous conventions run on their own worker. All failures on this
// entry point degrade, the raw path included.
func (a *Adapter) CallDeferred(ctx context.Context, msgs []any, tools []tool.Tool, opts Options) *sched.Future {
	req := a.buildRequest(msgs, tools, opts)

	if a.capability == CapabilityDeferredChat {
		return a.backend.(DeferredChatter).ChatDeferred(ctx, req)
	}

	return sched.Go(ctx, func(ctx context.Context) (any, error) {
		resp, err := a.dispatchSync(ctx, req)
		if err != nil {
			a.log.Error("deferred call failed", "capability", a.capability.String(), "error", err)
			return &Response{Role: message.RoleAssistant, Content: "Error: " + err.Error()}, nil
		}
		return resp, nil
	})
}

func (a *Adapter) dispatchSync(ctx context.Context, req Request) (*Response, error) {
	switch a.capability {
	case CapabilityRawGenerate:
		raw, err := a.backend.(RawGenerator).GenerateRaw(ctx, req)
		if err != nil {
			return nil, err
		}
		return raw.response(), nil
	case CapabilityGenerate:
		return a.backend.(Generator).Generate(ctx, req)
	default:
		return a.backend.(Chatter).Chat(ctx, req)
	}
}

func (a *Adapter) buildRequest(msgs []any, tools []tool.Tool, opts Options) Request {
	return Request{
		Messages: a.normalizer.Normalize(msgs),
		Tools:    tool.Convert(tools),
		Options:  opts,
	}
}

// degrade wraps a dispatch failure into a response-shaped reply.
func (a *Adapter) degrade(span oteltrace.Span, err error) *Response {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	a.log.Error("provider call failed, degrading to error response", "capability", a.capability.String(), "error", err)
	return &Response{Role: message.RoleAssistant, Content: "Error: " + err.Error()}
}
