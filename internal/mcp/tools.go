package mcp

import (
	"context"
	"encoding/json"
	"errors"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes one MCP tool. Every tool maps to the Handle
// method of the same name.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func idSchema(description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":        "integer",
				"description": description,
			},
		},
		"required": []string{"id"},
	}
}

func emptySchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

var statusEnum = []string{"todo", "in_progress", "done"}
var priorityEnum = []string{"low", "medium", "high"}

var toolCatalog = []ToolDefinition{
	// Projects
	{
		Name:        "fetch_projects",
		Description: "Reload the project list from storage and return the store state",
		InputSchema: emptySchema(),
	},
	{
		Name:        "list_projects",
		Description: "Return the in-memory project list with loading and error state",
		InputSchema: emptySchema(),
	},
	{
		Name:        "get_project",
		Description: "Get a project by ID",
		InputSchema: idSchema("Project ID"),
	},
	{
		Name:        "create_project",
		Description: "Create a new project; ID and createdAt are assigned by the store",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Project display name",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "Project description",
				},
				"color": map[string]any{
					"type":        "string",
					"description": "Display color, e.g. #3b82f6",
				},
			},
			"required": []string{"name"},
		},
	},
	{
		Name:        "update_project",
		Description: "Merge the given fields into a project; omitted fields are unchanged",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{
					"type":        "integer",
					"description": "Project ID",
				},
				"name": map[string]any{
					"type":        "string",
					"description": "New name",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "New description",
				},
				"color": map[string]any{
					"type":        "string",
					"description": "New color",
				},
			},
			"required": []string{"id"},
		},
	},
	{
		Name:        "delete_project",
		Description: "Delete a project; tasks referencing it are kept. Unknown IDs are a no-op",
		InputSchema: idSchema("Project ID"),
	},

	// Tasks
	{
		Name:        "fetch_tasks",
		Description: "Reload the task list from storage and return the store state",
		InputSchema: emptySchema(),
	},
	{
		Name:        "list_tasks",
		Description: "Return tasks in board order, optionally only those of one project",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"project_id": map[string]any{
					"type":        "integer",
					"description": "Only return tasks of this project",
				},
			},
		},
	},
	{
		Name:        "get_task",
		Description: "Get a task by ID",
		InputSchema: idSchema("Task ID"),
	},
	{
		Name:        "create_task",
		Description: "Create a task in a project; status defaults to todo and priority to medium",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"project_id": map[string]any{
					"type":        "integer",
					"description": "Owning project ID",
				},
				"title": map[string]any{
					"type":        "string",
					"description": "Task title",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "Task description",
				},
				"status": map[string]any{
					"type": "string",
					"enum": statusEnum,
				},
				"priority": map[string]any{
					"type": "string",
					"enum": priorityEnum,
				},
			},
			"required": []string{"project_id", "title"},
		},
	},
	{
		Name:        "update_task",
		Description: "Merge the given fields into a task and stamp updatedAt",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{
					"type":        "integer",
					"description": "Task ID",
				},
				"project_id": map[string]any{
					"type":        "integer",
					"description": "Move the task to this project",
				},
				"title": map[string]any{
					"type": "string",
				},
				"description": map[string]any{
					"type": "string",
				},
				"status": map[string]any{
					"type": "string",
					"enum": statusEnum,
				},
				"priority": map[string]any{
					"type": "string",
					"enum": priorityEnum,
				},
			},
			"required": []string{"id"},
		},
	},
	{
		Name:        "delete_task",
		Description: "Delete a task. Unknown IDs are a no-op",
		InputSchema: idSchema("Task ID"),
	},
	{
		Name:        "update_task_order",
		Description: "Replace a project's tasks with the given ordered list. Tasks not listed are removed from the project",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"project_id": map[string]any{
					"type":        "integer",
					"description": "Project whose tasks are reordered",
				},
				"task_ids": map[string]any{
					"type":        "array",
					"description": "IDs of existing tasks in their new order",
					"items":       map[string]any{"type": "integer"},
				},
				"tasks": map[string]any{
					"type":        "array",
					"description": "Full task objects in their new order (alternative to task_ids)",
					"items":       map[string]any{"type": "object"},
				},
			},
			"required": []string{"project_id"},
		},
	},

	// Activity
	{
		Name:        "recent_activity",
		Description: "List recent store changes, newest first",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"collection": map[string]any{
					"type": "string",
					"enum": []string{"projects", "tasks"},
				},
				"entity_id": map[string]any{
					"type":        "integer",
					"description": "Project or task ID",
				},
				"type": map[string]any{
					"type":        "string",
					"description": "Activity type, e.g. task_created",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of entries (default 50)",
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "Offset for pagination",
				},
			},
		},
	},
}

func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range toolCatalog {
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
	payload := MapError(err)
	if payload == nil {
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr):
			payload = apiErr
		case errors.Is(err, ErrInvalidParams):
			payload = &APIError{Code: "INVALID_PARAMS", Message: err.Error()}
		default:
			payload = &APIError{Code: "INTERNAL", Message: err.Error()}
		}
	}
	data, _ := json.Marshal(payload)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
