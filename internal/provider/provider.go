// Package provider adapts heterogeneous language-model backends to one
// uniform call contract. Backends advertise their calling convention through
// the capability interfaces below; the adapter negotiates one at
// construction and dispatches every call through it.
package provider

import (
	"context"

	"conduit/internal/message"
	"conduit/internal/sched"
	"conduit/internal/tool"
)

// Options are the caller-tunable sampling settings merged into every
// provider request.
type Options struct {
	Temperature *float64
	MaxTokens   int64
	Stop        []string
	ToolChoice  string
}

// Request is the preprocessed input handed to a backend: canonical
// messages, converted tool schemas (nil when no tools were supplied) and
// merged options.
type Request struct {
	Messages []message.Message
	Tools    []tool.Schema
	Options  Options
}

// Response is the canonical reply shape. Degraded replies carry an
// "Error: "-prefixed Content and are otherwise indistinguishable from
// normal ones.
type Response struct {
	Role      string             `json:"role"`
	Content   string             `json:"content"`
	ToolCalls []message.ToolCall `json:"tool_calls,omitempty"`
}

// RawReply is an unconverted backend reply from the raw synchronous path.
// Raw keeps the backend-specific payload for callers that inspect it.
type RawReply struct {
	Role      string
	Content   string
	ToolCalls []message.ToolCall
	Raw       any
}

func (r *RawReply) response() *Response {
	return &Response{Role: r.Role, Content: r.Content, ToolCalls: r.ToolCalls}
}

// The capability interfaces, in probe priority order. A backend implements
// whichever convention it natively speaks; the adapter takes the first one
// that matches.

// RawGenerator is the raw synchronous batch convention. Failures on this
// path propagate to the caller unchanged.
type RawGenerator interface {
	GenerateRaw(ctx context.Context, req Request) (*RawReply, error)
}

// Generator is the plain synchronous convention.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// DeferredChatter is the deferred chat convention: the reply arrives through
// a future. Synchronous callers reach it through the bridge.
type DeferredChatter interface {
	ChatDeferred(ctx context.Context, req Request) *sched.Future
}

// Chatter is the synchronous chat convention, probed last.
type Chatter interface {
	Chat(ctx context.Context, req Request) (*Response, error)
}

// Capability identifies the calling convention negotiated with a backend.
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityRawGenerate
	CapabilityGenerate
	CapabilityDeferredChat
	CapabilityChat
)

func (c Capability) String() string {
	switch c {
	case CapabilityRawGenerate:
		return "raw_generate"
	case CapabilityGenerate:
		return "generate"
	case CapabilityDeferredChat:
		return "deferred_chat"
	case CapabilityChat:
		return "chat"
	default:
		return "none"
	}
}

// probe resolves the backend's capability once, first match wins.
func probe(backend any) Capability {
	if _, ok := backend.(RawGenerator); ok {
		return CapabilityRawGenerate
	}
	if _, ok := backend.(Generator); ok {
		return CapabilityGenerate
	}
	if _, ok := backend.(DeferredChatter); ok {
		return CapabilityDeferredChat
	}
	if _, ok := backend.(Chatter); ok {
		return CapabilityChat
	}
	return CapabilityNone
}
