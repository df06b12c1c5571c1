package tools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type File struct{}

func (f *File) Name() string        { return "file" }
func (f *File) Description() string { return "Read or write files" }

func (f *File) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"read", "write"},
				"description": "Operation to perform",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "File path",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "File content for write; empty string for read",
			},
		},
		"required":             []string{"action", "path", "content"},
		"additionalProperties": false,
	}
}

func (f *File) Invoke(ctx context.Context, input map[string]any) (any, error) {
	var args struct {
		Action  string `json:"action"`
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := decodeArgs(input, &args); err != nil {
		return nil, fmt.Errorf("parsing file input: %w", err)
	}

	args.Path = expandHome(args.Path)

	switch args.Action {
	case "read":
		slog.Debug("file: reading", "path", args.Path)
		data, err := os.ReadFile(args.Path)
		if err != nil {
			return nil, fmt.Errorf("reading file: %w", err)
		}
		return truncate(data), nil

	case "write":
		slog.Debug("file: writing", "path", args.Path, "bytes", len(args.Content))
		if err := os.MkdirAll(filepath.Dir(args.Path), 0755); err != nil {
			return nil, fmt.Errorf("creating parent dirs: %w", err)
		}
		content := []byte(args.Content)
		if err := os.WriteFile(args.Path, content, 0644); err != nil {
			return nil, fmt.Errorf("writing file: %w", err)
		}
		return fmt.Sprintf("wrote %d bytes to %s", len(content), args.Path), nil

	default:
		return nil, fmt.Errorf("unknown action: %s", args.Action)
	}
}
