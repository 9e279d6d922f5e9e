package agentapi

import (
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/forgeloop/forgeloop/internal/toolsurface"
)

// codingToolDefinitions returns the file-manipulation tools the agent uses
// to implement a feature, mirroring what the subprocess backend's CLI
// already exposes.
func codingToolDefinitions() []anthropic.ToolUnionParam {
	return []anthropic.ToolUnionParam{
		{
			OfTool: &anthropic.ToolParam{
				Name:        "Read",
				Description: anthropic.String("Read a file from the filesystem. Returns file contents with line numbers."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"file_path": map[string]any{"type": "string", "description": "Absolute path to the file to read"},
						"offset":    map[string]any{"type": "integer", "description": "Line number to start reading from (1-indexed, optional)"},
						"limit":     map[string]any{"type": "integer", "description": "Maximum number of lines to read (optional)"},
					},
					Required: []string{"file_path"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "Write",
				Description: anthropic.String("Write content to a file. Creates parent directories if needed."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"file_path": map[string]any{"type": "string", "description": "Absolute path to the file to write"},
						"content":   map[string]any{"type": "string", "description": "Content to write to the file"},
					},
					Required: []string{"file_path", "content"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "Edit",
				Description: anthropic.String("Edit a file by replacing text. old_string must be unique unless replace_all is true."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"file_path":   map[string]any{"type": "string", "description": "Absolute path to the file to edit"},
						"old_string":  map[string]any{"type": "string", "description": "The exact text to find and replace"},
						"new_string":  map[string]any{"type": "string", "description": "The text to replace it with"},
						"replace_all": map[string]any{"type": "boolean", "description": "If true, replace all occurrences (default false)"},
					},
					Required: []string{"file_path", "old_string", "new_string"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "Bash",
				Description: anthropic.String("Execute a bash command and return the output."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"command": map[string]any{"type": "string", "description": "The bash command to execute"},
						"timeout": map[string]any{"type": "integer", "description": "Timeout in milliseconds (optional, default 120000)"},
					},
					Required: []string{"command"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "Glob",
				Description: anthropic.String("Find files matching a glob pattern."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"pattern": map[string]any{"type": "string", "description": "Glob pattern to match"},
						"path":    map[string]any{"type": "string", "description": "Directory to search in (optional)"},
					},
					Required: []string{"pattern"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "Grep",
				Description: anthropic.String("Search file contents using regex patterns."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"pattern": map[string]any{"type": "string", "description": "Regex pattern to search for"},
						"path":    map[string]any{"type": "string", "description": "File or directory to search in (optional)"},
						"glob":    map[string]any{"type": "string", "description": "Glob pattern to filter files (optional)"},
						"context": map[string]any{"type": "integer", "description": "Context lines around matches (optional)"},
					},
					Required: []string{"pattern"},
				},
			},
		},
	}
}

// toolDefinitions returns the full tool set offered to the model: coding
// tools plus the Control Tool Surface.
func toolDefinitions() []anthropic.ToolUnionParam {
	return append(codingToolDefinitions(), toolsurface.Definitions()...)
}
