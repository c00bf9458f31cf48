package tool

import (
	"fmt"
	"strings"

	"github.com/hupe1980/deeprun/core"
)

// Filesystem tool names exposed to models.
const (
	NameLs        = "ls"
	NameReadFile  = "read_file"
	NameWriteFile = "write_file"
	NameEditFile  = "edit_file"
)

// FilesystemTools builds the four storage tools over the ToolContext's
// filesystem layer. Each delegated sub-execution receives its own layer
// instance, so these tools need no configuration beyond the schema.
func FilesystemTools() []Tool {
	return []Tool{lsTool(), readFileTool(), writeFileTool(), editFileTool()}
}

func lsTool() Tool {
	return NewFunctionTool(
		NameLs,
		"List the entries directly under a path. Container entries carry a trailing slash.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string", "description": "Container path to list"},
			},
			"required": []string{"path"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			entries, err := tc.FS().Ls(tc.Context(), path)
			if err != nil {
				return nil, err
			}
			return strings.Join(entries, "\n"), nil
		},
	)
}

func readFileTool() Tool {
	return NewFunctionTool(
		NameReadFile,
		"Read a file's content, optionally narrowed to an inclusive 1-based line range.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":       map[string]any{"type": "string", "description": "File path to read"},
				"start_line": map[string]any{"type": "integer", "description": "First line to include (1-based)"},
				"end_line":   map[string]any{"type": "integer", "description": "Last line to include (inclusive)"},
			},
			"required": []string{"path"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			var rng *core.LineRange
			start := intArg(args, "start_line")
			end := intArg(args, "end_line")
			if start > 0 || end > 0 {
				rng = &core.LineRange{Start: start, End: end}
			}
			return tc.FS().ReadFile(tc.Context(), path, rng)
		},
	)
}

func writeFileTool() Tool {
	return NewFunctionTool(
		NameWriteFile,
		"Write content to a path, creating any implicit parent structure. Overwrites existing content.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":    map[string]any{"type": "string", "description": "File path to write"},
				"content": map[string]any{"type": "string", "description": "Full content to store"},
			},
			"required": []string{"path", "content"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			content, _ := args["content"].(string)
			if err := tc.FS().WriteFile(tc.Context(), path, content); err != nil {
				return nil, err
			}
			return fmt.Sprintf("Wrote %d bytes to %s", len(content), path), nil
		},
	)
}

func editFileTool() Tool {
	return NewFunctionTool(
		NameEditFile,
		"Replace an occurrence of a string in a file. When the string occurs more than once, an occurrence index is required.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":       map[string]any{"type": "string", "description": "File path to edit"},
				"old_string": map[string]any{"type": "string", "description": "Exact string to replace"},
				"new_string": map[string]any{"type": "string", "description": "Replacement string"},
				"occurrence": map[string]any{"type": "integer", "description": "1-based match to replace when ambiguous"},
			},
			"required": []string{"path", "old_string", "new_string"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			oldStr, _ := args["old_string"].(string)
			newStr, _ := args["new_string"].(string)
			occurrence := intArg(args, "occurrence")
			if err := tc.FS().EditFile(tc.Context(), path, oldStr, newStr, occurrence); err != nil {
				return nil, err
			}
			return fmt.Sprintf("Edited %s", path), nil
		},
	)
}

// intArg reads an integer argument tolerating the float64 produced by JSON
// decoding.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
