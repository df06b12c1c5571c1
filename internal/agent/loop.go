package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"conduit/internal/message"
	"conduit/internal/provider"
	"conduit/internal/tool"
	"conduit/internal/trace"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const defaultSystemPrompt = "You are a helpful assistant. Use the available tools when they get the job done better than answering from memory."

const defaultMaxTurns = 12

type LoopOption func(*LoopRunner)

func WithSystemPrompt(s string) LoopOption {
	return func(r *LoopRunner) { r.systemPrompt = s }
}

func WithOptions(opts provider.Options) LoopOption {
	return func(r *LoopRunner) { r.options = opts }
}

func WithMaxTurns(n int) LoopOption {
	return func(r *LoopRunner) { r.maxTurns = n }
}

func WithLoopLogger(log *slog.Logger) LoopOption {
	return func(r *LoopRunner) { r.log = log }
}

// LoopRunner drives the provider adapter in a think/act cycle: call the
// model, execute whatever tools it asked for, feed the results back, repeat
// until the model stops asking for tools.
type LoopRunner struct {
	adapter      *provider.Adapter
	executor     *tool.Executor
	tools        []tool.Tool
	systemPrompt string
	options      provider.Options
	maxTurns     int
	log          *slog.Logger
}

func NewLoopRunner(adapter *provider.Adapter, executor *tool.Executor, tools []tool.Tool, opts ...LoopOption) *LoopRunner {
	r := &LoopRunner{
		adapter:      adapter,
		executor:     executor,
		tools:        tools,
		systemPrompt: defaultSystemPrompt,
		maxTurns:     defaultMaxTurns,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	return r
}

func (r *LoopRunner) Run(ctx context.Context, sessionID, query string, emit func(Event)) (*provider.Response, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx = ContextWithSessionID(ctx, sessionID)
	ctx = ContextWithEmit(ctx, emit)

	ctx, span := trace.Tracer().Start(ctx, "agent.run",
		oteltrace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("provider.capability", r.adapter.Capability().String()),
		),
	)
	defer span.End()

	msgs := []any{
		message.Message{Role: message.RoleSystem, Content: r.systemPrompt},
		message.Message{Role: message.RoleUser, Content: query},
	}

	for turn := 0; ; turn++ {
		if err := ctx.Err(); err != nil {
			emit(Event{Type: EventError, Data: "run cancelled"})
			return nil, err
		}
		if turn >= r.maxTurns {
			err := fmt.Errorf("agent exceeded %d turns", r.maxTurns)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			emit(Event{Type: EventError, Data: err.Error()})
			return nil, err
		}

		resp, err := r.adapter.Call(ctx, msgs, r.tools, r.options)
		if err != nil {
			// Only the raw synchronous path surfaces errors; every other
			// capability degrades inside the adapter.
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			emit(Event{Type: EventError, Data: err.Error()})
			return nil, err
		}

		if len(resp.ToolCalls) == 0 {
			emit(Event{Type: EventDone, Data: resp.Content})
			return resp, nil
		}

		msgs = append(msgs, message.Message{
			Role:      message.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		msgs = append(msgs, r.act(ctx, resp.ToolCalls, emit)...)
	}
}

// act executes tool calls in parallel and renders the results as function
// messages for the next turn. Tool failures go back into context as text so
// the model can adapt instead of the run aborting.
func (r *LoopRunner) act(ctx context.Context, calls []message.ToolCall, emit func(Event)) []any {
	for _, call := range calls {
		emit(Event{Type: EventToolCall, Data: map[string]any{
			"name":      call.Name,
			"arguments": call.Arguments,
		}})
	}

	var wg sync.WaitGroup
	results := make([]any, len(calls))

	for i, call := range calls {
		wg.Add(1)
		go func(i int, call message.ToolCall) {
			defer wg.Done()

			content := r.invoke(ctx, call)
			results[i] = message.Message{
				Role:       message.RoleFunction,
				Name:       call.Name,
				Content:    content,
				ToolCallID: call.ID,
			}
			emit(Event{Type: EventToolResult, Data: map[string]string{
				"name":    call.Name,
				"content": content,
			}})
		}(i, call)
	}

	wg.Wait()
	return results
}

func (r *LoopRunner) invoke(ctx context.Context, call message.ToolCall) string {
	v, err := r.executor.Execute(ctx, call.Name, call.Arguments)
	if err == nil {
		// Deferred tools hand back a future; resolve it here, where
		// blocking is fine.
		v, err = tool.Resolve(ctx, v)
	}
	if err != nil {
		r.log.Warn("tool execution failed", "name", call.Name, "error", err)
		return "error: " + err.Error()
	}
	return fmt.Sprint(v)
}
