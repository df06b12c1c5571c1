package tool

// Schema is the uniform calling-schema wire shape handed to providers.
type Schema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Convert derives schemas from the tools' declared surface, preserving
// order. A nil or empty input returns nil so callers can tell "no tools
// supplied" apart from an empty filtered list. Duplicate names pass through
// untouched; deduplication is left to the caller.
func Convert(tools []Tool) []Schema {
	if len(tools) == 0 {
		return nil
	}
	out := make([]Schema, 0, len(tools))
	for _, t := range tools {
		out = append(out, Schema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.InputSchema(),
		})
	}
	return out
}
