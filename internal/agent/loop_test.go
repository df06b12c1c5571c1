package agent

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"conduit/internal/message"
	"conduit/internal/provider"
	"conduit/internal/sched"
	"conduit/internal/tool"
)

// scriptedBackend replays canned responses, one per call.
type scriptedBackend struct {
	mu      sync.Mutex
	replies []*provider.Response
	calls   int
	seen    []provider.Request
}

func (b *scriptedBackend) Chat(ctx context.Context, req provider.Request) (*provider.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seen = append(b.seen, req)
	resp := b.replies[b.calls]
	b.calls++
	return resp, nil
}

type recordingTool struct {
	name     string
	deferred bool
	mu       sync.Mutex
	gotArgs  map[string]any
}

func (r *recordingTool) Name() string                { return r.name }
func (r *recordingTool) Description() string         { return "test tool" }
func (r *recordingTool) InputSchema() map[string]any { return map[string]any{"type": "object"} }

func (r *recordingTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	r.mu.Lock()
	r.gotArgs = args
	r.mu.Unlock()
	if r.deferred {
		return sched.Go(ctx, func(ctx context.Context) (any, error) {
			return "deferred result", nil
		}), nil
	}
	return "immediate result", nil
}

func newTestRunner(t *testing.T, backend any, tools ...tool.Tool) *LoopRunner {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	adapter, err := provider.NewAdapter(backend, provider.WithLogger(log))
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	registry := tool.NewRegistry(tools...)
	return NewLoopRunner(adapter, tool.NewExecutor(registry, log), registry.All(), WithLoopLogger(log))
}

func TestLoopRunnerToolRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		deferred bool
	}{
		{name: "immediate tool"},
		{name: "deferred tool", deferred: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &scriptedBackend{replies: []*provider.Response{
				{
					Role: message.RoleAssistant,
					ToolCalls: []message.ToolCall{
						{ID: "call-1", Name: "probe", Arguments: map[string]any{"key": "value"}},
					},
				},
				{Role: message.RoleAssistant, Content: "all done"},
			}}
			probe := &recordingTool{name: "probe", deferred: tt.deferred}
			runner := newTestRunner(t, backend, probe)

			var events []Event
			resp, err := runner.Run(context.Background(), "s1", "do the thing", func(ev Event) {
				events = append(events, ev)
			})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if resp.Content != "all done" {
				t.Fatalf("content = %q", resp.Content)
			}
			if probe.gotArgs["key"] != "value" {
				t.Fatalf("tool args = %v", probe.gotArgs)
			}

			// Second turn must carry the function message with the tool
			// call id and a non-empty name.
			second := backend.seen[1]
			var fn *message.Message
			for i := range second.Messages {
				if second.Messages[i].Role == message.RoleFunction {
					fn = &second.Messages[i]
				}
			}
			if fn == nil {
				t.Fatalf("no function message in second turn: %+v", second.Messages)
			}
			if fn.ToolCallID != "call-1" || fn.Name == "" {
				t.Fatalf("function message = %+v", fn)
			}
			want := "immediate result"
			if tt.deferred {
				want = "deferred result"
			}
			if fn.Content != want {
				t.Fatalf("function content = %q, want %q", fn.Content, want)
			}

			var types []EventType
			for _, ev := range events {
				types = append(types, ev.Type)
			}
			wantTypes := []EventType{EventToolCall, EventToolResult, EventDone}
			if len(types) != len(wantTypes) {
				t.Fatalf("events = %v", types)
			}
			for i := range wantTypes {
				if types[i] != wantTypes[i] {
					t.Fatalf("events = %v, want %v", types, wantTypes)
				}
			}
		})
	}
}

func TestLoopRunnerUnknownToolFeedsErrorBack(t *testing.T) {
	backend := &scriptedBackend{replies: []*provider.Response{
		{
			Role: message.RoleAssistant,
			ToolCalls: []message.ToolCall{
				{ID: "call-1", Name: "ghost", Arguments: map[string]any{}},
			},
		},
		{Role: message.RoleAssistant, Content: "recovered"},
	}}
	runner := newTestRunner(t, backend)

	resp, err := runner.Run(context.Background(), "s1", "use a tool", func(Event) {})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if resp.Content != "recovered" {
		t.Fatalf("content = %q", resp.Content)
	}

	second := backend.seen[1]
	found := false
	for _, m := range second.Messages {
		if m.Role == message.RoleFunction && m.ToolCallID == "call-1" {
			found = true
			if m.Content == "" || m.Content[:6] != "error:" {
				t.Fatalf("function content = %q", m.Content)
			}
		}
	}
	if !found {
		t.Fatal("tool failure never fed back to the model")
	}
}

func TestLoopRunnerTurnLimit(t *testing.T) {
	// A model that asks for the same tool forever must hit the turn limit
	// instead of spinning.
	loopReply := &provider.Response{
		Role: message.RoleAssistant,
		ToolCalls: []message.ToolCall{
			{ID: "call-x", Name: "probe", Arguments: map[string]any{}},
		},
	}
	replies := make([]*provider.Response, 0, 16)
	for i := 0; i < 16; i++ {
		replies = append(replies, loopReply)
	}
	backend := &scriptedBackend{replies: replies}
	runner := newTestRunner(t, backend, &recordingTool{name: "probe"})

	if _, err := runner.Run(context.Background(), "s1", "never stop", func(Event) {}); err == nil {
		t.Fatal("expected turn limit error")
	}
}
