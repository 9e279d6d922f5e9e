// Package toolsurface is the Control Tool Surface: the only write path
// from the agent subprocess back into the Store, and the read path for
// notes, stats, and feature listings. Seven operations, each a typed
// input schema and a typed result, per spec.md §4.6.
package toolsurface

import (
	"github.com/anthropics/anthropic-sdk-go"
)

// Definitions returns the tool schemas exposed to the agent, in the shape
// the Anthropic SDK expects for MessageNewParams.Tools.
func Definitions() []anthropic.ToolUnionParam {
	return []anthropic.ToolUnionParam{
		{
			OfTool: &anthropic.ToolParam{
				Name: "feature_status",
				Description: anthropic.String(
					"Report a feature's status. Mark in_progress before starting work on it, " +
						"completed once its verification steps pass. Marking it pending requests a " +
						"retry and increments the feature's retry counter; past the retry limit the " +
						"feature is auto-failed."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"id": map[string]any{
							"type":        "integer",
							"description": "Feature id",
						},
						"status": map[string]any{
							"type":        "string",
							"enum":        []string{"in_progress", "completed", "pending"},
							"description": "New status for the feature",
						},
					},
					Required: []string{"id", "status"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "feature_note",
				Description: anthropic.String("Attach a free-text note to a specific feature."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"id":      map[string]any{"type": "integer", "description": "Feature id"},
						"content": map[string]any{"type": "string", "description": "Note content"},
					},
					Required: []string{"id", "content"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "category_note",
				Description: anthropic.String("Attach a free-text note to every feature sharing a category."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"category": map[string]any{"type": "string", "description": "Category slug"},
						"content":  map[string]any{"type": "string", "description": "Note content"},
					},
					Required: []string{"category", "content"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "global_note",
				Description: anthropic.String("Attach a free-text note visible across the whole run."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"content": map[string]any{"type": "string", "description": "Note content"},
					},
					Required: []string{"content"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "get_notes",
				Description: anthropic.String("Read notes scoped to a feature, a category, or global."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"id":       map[string]any{"type": "integer", "description": "Feature id (optional)"},
						"category": map[string]any{"type": "string", "description": "Category slug (optional)"},
					},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "get_stats",
				Description: anthropic.String("Read the current kanban counts: total and per-status, optionally broken down by category."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"by_category": map[string]any{"type": "boolean", "description": "Include per-category breakdown"},
					},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "list_features",
				Description: anthropic.String("List features, optionally filtered by status, truncated to a limit."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{
						"status": map[string]any{
							"type":        "string",
							"enum":        []string{"pending", "in_progress", "completed", "failed"},
							"description": "Status filter (default pending)",
						},
						"limit": map[string]any{
							"type":        "integer",
							"description": "Maximum features to return (default 10)",
						},
					},
				},
			},
		},
	}
}

// Names lists the Control Tool Surface operation names, for routing
// decisions by callers that need to distinguish them from coding tools.
var Names = []string{
	"feature_status", "feature_note", "category_note", "global_note",
	"get_notes", "get_stats", "list_features",
}

// IsSurfaceTool reports whether name is one of the seven operations above.
func IsSurfaceTool(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}
