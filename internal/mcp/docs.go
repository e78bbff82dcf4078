package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `flowboard keeps a kanban board as two ordered lists: Projects and Tasks.

Core concepts:
- Project: {id, name, description, color, createdAt}. IDs are millisecond timestamps assigned by the server.
- Task: {id, projectId, title, description, status, priority, createdAt, updatedAt}. status is todo|in_progress|done, priority is low|medium|high.
- Every mutation is written through to storage immediately; fetch_* reloads from storage.
- Deleting a project does not delete its tasks.

Workflow:
1) Orient: list_projects, then list_tasks with project_id.
2) Write: create_*/update_*/delete_*. Updates merge only the fields you pass.
3) Reorder: update_task_order with the project's full task list in the new order. Tasks you leave out are removed.
4) Audit: recent_activity.

Docs:
- flowboard://docs/index
- flowboard://docs/data-model
- flowboard://docs/reordering
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "flowboard://docs/index",
		Name:        "docs_index",
		Title:       "flowboard docs index",
		Description: "Entry point: what the board stores and which tools to use.",
		Content: `# flowboard: Docs Index

## Tools

| Tool | Purpose |
|---|---|
| fetch_projects / fetch_tasks | Reload a list from storage |
| list_projects / list_tasks | Read the in-memory lists |
| get_project / get_task | Look up one item by id |
| create_* / update_* / delete_* | Mutate and persist |
| update_task_order | Reorder one project's tasks |
| recent_activity | Change log, newest first |

## Error codes

- PROJECT_NOT_FOUND, TASK_NOT_FOUND: the id isn't in the list.
- INVALID_INPUT: blank name/title, unknown status or priority, bad reorder list.
- LOAD_FAILED: stored data couldn't be read; the in-memory list was kept.
- PERSIST_FAILED: the change is in memory but storage rejected it.

Read next: flowboard://docs/data-model
`,
	},
	{
		URI:         "flowboard://docs/data-model",
		Name:        "docs_data_model",
		Title:       "Data model",
		Description: "Fields, defaults and storage layout for projects and tasks.",
		Content: `# Data model

Projects and tasks live in two storage slots, "projects" and "tasks", each a JSON array in board order.

## Project
- id: integer, unique, assigned at creation
- name: required
- description, color: optional
- createdAt: RFC 3339 timestamp, never changes

## Task
- id: integer, unique, assigned at creation
- projectId: owning project; not checked against the project list
- title: required
- status: todo (default), in_progress, done
- priority: medium (default), low, high
- createdAt: never changes
- updatedAt: set on every update

Updates never change id or createdAt, even if passed.
`,
	},
	{
		URI:         "flowboard://docs/reordering",
		Name:        "docs_reordering",
		Title:       "Reordering tasks",
		Description: "How update_task_order places a project's tasks.",
		Content: `# Reordering tasks

update_task_order(project_id, task_ids | tasks) replaces every task of project_id with the given list.

- The new block is placed where the project's first task used to be.
- If the project had no tasks, the block is appended.
- Tasks of other projects keep their positions.
- Tasks of project_id that you leave out are dropped.
- Every listed task must belong to project_id and appear once.

An empty list removes all of the project's tasks.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
