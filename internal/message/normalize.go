package message

import (
	"fmt"
	"log/slog"
	"strings"
)

// Normalizer canonicalizes raw message sequences. It holds no per-call
// state; the logger is the diagnostic sink for lenient repairs.
type Normalizer struct {
	log *slog.Logger
}

func NewNormalizer(log *slog.Logger) *Normalizer {
	if log == nil {
		log = slog.Default()
	}
	return &Normalizer{log: log}
}

// Normalize maps each raw element to a canonical Message, preserving input
// order. Accepted shapes: a canonical Message (value or pointer), a plain
// map, or anything implementing Mapper. Elements of any other shape are
// dropped with a diagnostic rather than failing the call.
func (n *Normalizer) Normalize(raw []any) []Message {
	out := make([]Message, 0, len(raw))
	for i, r := range raw {
		var m Message
		switch v := r.(type) {
		case Message:
			m = fromMessage(v)
		case *Message:
			m = fromMessage(*v)
		case map[string]any:
			m = fromMap(v)
		case Mapper:
			m = fromMap(v.MessageMap())
		default:
			n.log.Warn("dropping message of unsupported shape", "index", i, "type", fmt.Sprintf("%T", r))
			continue
		}
		out = append(out, n.repair(m))
	}
	return out
}

// repair enforces the name invariant: function-category messages always
// carry a name. Missing names are synthesized, never rejected.
func (n *Normalizer) repair(m Message) Message {
	if m.Role != RoleFunction && m.Role != RoleTool {
		return m
	}
	if m.Name != "" {
		return m
	}
	if m.ToolCallID != "" {
		m.Name = "function_for_" + m.ToolCallID
	} else {
		m.Name = DefaultFunctionName
	}
	n.log.Warn("synthesized missing name on function message", "role", m.Role, "name", m.Name)
	return m
}

func fromMessage(m Message) Message {
	m.Role = remapRole(m.Role)
	return m
}

func fromMap(v map[string]any) Message {
	m := Message{
		Role:    remapRole(stringField(v, "role")),
		Content: flattenContent(v["content"]),
		Name:    stringField(v, "name"),
	}
	if id := stringField(v, "tool_call_id"); id != "" {
		m.ToolCallID = id
	}
	if calls, ok := v["tool_calls"]; ok {
		m.ToolCalls = toolCallsFrom(calls)
	}
	return m
}

// remapRole folds the tool-response input role into the function category.
func remapRole(role string) string {
	if role == RoleToolResponse {
		return RoleFunction
	}
	return role
}

// flattenContent derives text content from the shapes callers send: nil
// becomes empty text, block lists keep only text-typed blocks joined by a
// single space, in block order.
func flattenContent(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case []any:
		var parts []string
		for _, b := range c {
			block, ok := b.(map[string]any)
			if !ok {
				continue
			}
			if stringField(block, "type") != "text" {
				continue
			}
			parts = append(parts, stringField(block, "text"))
		}
		return strings.Join(parts, " ")
	case map[string]any:
		// Nested {text: ...} content from serialized model values.
		if t, ok := c["text"].(string); ok {
			return t
		}
		return ""
	default:
		return fmt.Sprint(c)
	}
}

func toolCallsFrom(v any) []ToolCall {
	switch calls := v.(type) {
	case []ToolCall:
		return calls
	case []any:
		var out []ToolCall
		for _, c := range calls {
			switch tc := c.(type) {
			case ToolCall:
				out = append(out, tc)
			case map[string]any:
				call := ToolCall{
					ID:   stringField(tc, "id"),
					Name: stringField(tc, "name"),
				}
				if args, ok := tc["arguments"].(map[string]any); ok {
					call.Arguments = args
				}
				out = append(out, call)
			}
		}
		return out
	default:
		return nil
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
