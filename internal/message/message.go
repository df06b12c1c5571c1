// Package message defines the canonical conversation record and the
// normalizer that maps heterogeneous caller representations onto it.
package message

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
	RoleTool      = "tool"

	// RoleToolResponse is accepted on input only; normalization remaps it
	// to RoleFunction.
	RoleToolResponse = "tool-response"
)

// DefaultFunctionName is the fallback name for function messages that arrive
// without one and carry no tool call id to derive a name from.
const DefaultFunctionName = "function_call"

// ToolCall is a tool invocation requested by an assistant message.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Message is the canonical wire shape. Content is never absent: missing
// content normalizes to the empty string.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Mapper is implemented by message-like values that can render themselves as
// a flat key/value map, the third accepted input shape next to canonical
// Message values and plain maps.
type Mapper interface {
	MessageMap() map[string]any
}
