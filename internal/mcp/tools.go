package mcp

import (
	"context"
	"encoding/json"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var metricsSchema = map[string]any{
	"type":        "object",
	"description": "Factor scores in [0.01, 10] keyed by L, I, F, E, X, Fg, Omega. Missing factors default to 5.",
	"additionalProperties": map[string]any{
		"type": "number",
	},
}

var snapshotFormProperties = map[string]any{
	"project_id": map[string]any{
		"type":        "string",
		"description": "Project ID (omit to use the active project)",
	},
	"label": map[string]any{
		"type":        "string",
		"description": "Snapshot label (defaults to 'Snapshot DD/MM/YYYY')",
	},
	"date": map[string]any{
		"type":        "string",
		"description": "Snapshot date as YYYY-MM-DD (defaults to now)",
	},
	"metrics": metricsSchema,
	"metric_comments": map[string]any{
		"type":                 "object",
		"description":          "Free-text notes keyed by factor",
		"additionalProperties": map[string]any{"type": "string"},
	},
	"indicators": map[string]any{
		"type":        "array",
		"description": "Realized-outcome indicators",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":      map[string]any{"type": "integer"},
				"name":    map[string]any{"type": "string"},
				"value":   map[string]any{"type": "number"},
				"comment": map[string]any{"type": "string"},
			},
			"required": []string{"value"},
		},
	},
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func withProperty(base map[string]any, name string, prop any) map[string]any {
	out := make(map[string]any, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out[name] = prop
	return out
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	projectScope := map[string]any{
		"project_id": map[string]any{
			"type":        "string",
			"description": "Project ID (omit to use the active project)",
		},
	}
	projectID := map[string]any{
		"id": map[string]any{
			"type":        "string",
			"description": "Project ID",
		},
	}

	return []ToolDefinition{
		// Scoring
		{
			Name:        "compute_scores",
			Description: "Compute Re and Rx for a metric set and indicator values without saving anything",
			InputSchema: objectSchema(map[string]any{
				"metrics": metricsSchema,
				"indicators": map[string]any{
					"type":        "array",
					"description": "Indicator values in [0.01, 10]",
					"items":       map[string]any{"type": "number"},
				},
			}),
		},
		{
			Name:        "classify_point",
			Description: "Classify an (Re, Rx) point into a quadrant",
			InputSchema: objectSchema(map[string]any{
				"x": map[string]any{"type": "number", "description": "reLog in [0, 5.52]"},
				"y": map[string]any{"type": "number", "description": "rxScaled in [0, 5.52]"},
			}, "x", "y"),
		},

		// Projects
		{
			Name:        "list_projects",
			Description: "List projects, newest first, with snapshot counts and latest quadrant",
			InputSchema: objectSchema(map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Case-insensitive name filter",
				},
			}),
		},
		{
			Name:        "get_project",
			Description: "Get a project with its snapshots",
			InputSchema: objectSchema(map[string]any{
				"id": map[string]any{
					"type":        "string",
					"description": "Project ID (omit to get the active project)",
				},
			}),
		},
		{
			Name:        "create_project",
			Description: "Create a new empty project and make it active",
			InputSchema: objectSchema(map[string]any{
				"name": map[string]any{"type": "string", "description": "Project display name"},
			}, "name"),
		},
		{
			Name:        "rename_project",
			Description: "Rename a project",
			InputSchema: objectSchema(withProperty(projectID, "name", map[string]any{
				"type":        "string",
				"description": "New display name",
			}), "id", "name"),
		},
		{
			Name:        "delete_project",
			Description: "Delete a project and all of its snapshots. The last project cannot be deleted.",
			InputSchema: objectSchema(projectID, "id"),
		},
		{
			Name:        "set_active_project",
			Description: "Make a project the active one",
			InputSchema: objectSchema(projectID, "id"),
		},

		// Snapshots
		{
			Name:        "save_snapshot",
			Description: "Freeze the current metrics and indicators into a new snapshot with computed scores",
			InputSchema: objectSchema(snapshotFormProperties),
		},
		{
			Name:        "update_snapshot",
			Description: "Replace a snapshot's label, metrics, comments and indicators and recompute its scores",
			InputSchema: objectSchema(withProperty(snapshotFormProperties, "snapshot_id", map[string]any{
				"type":        "string",
				"description": "Snapshot ID",
			}), "snapshot_id"),
		},
		{
			Name:        "delete_snapshot",
			Description: "Delete a snapshot",
			InputSchema: objectSchema(withProperty(projectScope, "snapshot_id", map[string]any{
				"type":        "string",
				"description": "Snapshot ID",
			}), "snapshot_id"),
		},

		// History
		{
			Name:        "get_history",
			Description: "List a project's snapshots in time order with their quadrant",
			InputSchema: objectSchema(projectScope),
		},
		{
			Name:        "get_forecast",
			Description: "Extrapolate the next (Re, Rx) point from the two most recent snapshots",
			InputSchema: objectSchema(projectScope),
		},
		{
			Name:        "list_activity",
			Description: "List recent changes, newest first",
			InputSchema: objectSchema(withProperty(withProperty(withProperty(withProperty(projectScope,
				"snapshot_id", map[string]any{"type": "string"}),
				"type", map[string]any{"type": "string", "description": "Activity type, e.g. snapshot_saved"}),
				"limit", map[string]any{"type": "integer", "description": "Maximum entries (default 50)"}),
				"offset", map[string]any{"type": "integer"})),
		},
	}
}

func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, name, args)
			if err != nil {
				return toolError(err), nil
			}
			return toolResult(result)
		})
	}
}

func toolResult(result any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(err error) *sdkmcp.CallToolResult {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	data, marshalErr := json.Marshal(apiErr)
	if marshalErr != nil {
		data = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
