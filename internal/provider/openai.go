package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"conduit/internal/message"
	"conduit/internal/sched"
	"conduit/internal/tool"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// OpenAI is a deferred-chat backend on the OpenAI Responses API. Any
// OpenAI-compatible endpoint works through baseURL.
type OpenAI struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

func NewOpenAI(baseURL, apiKey, model string, log *slog.Logger) *OpenAI {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, option.WithHTTPClient(&http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}))
	client := openai.NewClient(opts...)
	if log == nil {
		log = slog.Default()
	}
	return &OpenAI{client: &client, model: model, log: log}
}

// ChatDeferred satisfies DeferredChatter: the HTTP round trip runs in the
// background and the reply lands in the returned future.
func (o *OpenAI) ChatDeferred(ctx context.Context, req Request) *sched.Future {
	return sched.Go(ctx, func(ctx context.Context) (any, error) {
		return o.chat(ctx, req)
	})
}

func (o *OpenAI) chat(ctx context.Context, req Request) (*Response, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(o.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems(req.Messages),
		},
		Tools: toolParams(req.Tools),
	}
	if req.Options.Temperature != nil {
		params.Temperature = openai.Float(*req.Options.Temperature)
	}
	if req.Options.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(req.Options.MaxTokens)
	}
	// The Responses API has no stop-sequence parameter; Options.Stop is for
	// backends that support it.

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("responses api: %w", err)
	}

	out := &Response{
		Role:    message.RoleAssistant,
		Content: resp.OutputText(),
	}
	for _, item := range resp.Output {
		if item.Type != "function_call" {
			continue
		}
		fc := item.AsFunctionCall()
		out.ToolCalls = append(out.ToolCalls, message.ToolCall{
			ID:        fc.CallID,
			Name:      fc.Name,
			Arguments: parseArguments(fc.Arguments, o.log),
		})
	}
	return out, nil
}

// inputItems maps canonical messages onto Responses API input items.
// Function-role messages become function call outputs keyed by their tool
// call id; assistant tool calls are replayed as function call items so the
// model sees its own prior actions.
func inputItems(msgs []message.Message) []responses.ResponseInputItemUnionParam {
	var items []responses.ResponseInputItemUnionParam
	for _, m := range msgs {
		switch m.Role {
		case message.RoleSystem:
			items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, "developer"))
		case message.RoleFunction, message.RoleTool:
			callID := m.ToolCallID
			if callID == "" {
				callID = m.Name
			}
			items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(callID, m.Content))
		case message.RoleAssistant:
			if m.Content != "" || len(m.ToolCalls) == 0 {
				items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, "assistant"))
			}
			for _, tc := range m.ToolCalls {
				args, _ := json.Marshal(tc.Arguments)
				items = append(items, responses.ResponseInputItemParamOfFunctionCall(string(args), tc.ID, tc.Name))
			}
		default:
			items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, "user"))
		}
	}
	return items
}

func toolParams(schemas []tool.Schema) []responses.ToolUnionParam {
	var out []responses.ToolUnionParam
	for _, s := range schemas {
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        s.Name,
				Description: openai.String(s.Description),
				Parameters:  s.Parameters,
				Strict:      openai.Bool(true),
			},
		})
	}
	return out
}

// parseArguments decodes the model's JSON argument string. Malformed
// arguments come back as an empty map with a diagnostic; the tool sees the
// call either way.
func parseArguments(raw string, log *slog.Logger) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		log.Warn("unparseable tool call arguments", "raw", raw, "error", err)
		return map[string]any{}
	}
	return args
}
