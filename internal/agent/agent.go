package agent

import (
	"context"

	"conduit/internal/provider"
)

type EventType string

const (
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventDone       EventType = "done"
	EventError      EventType = "error"
)

type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

type Runner interface {
	Run(ctx context.Context, sessionID string, query string, emit func(Event)) (*provider.Response, error)
}
