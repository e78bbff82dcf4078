package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/flowboard/internal/app"
	"github.com/rpggio/flowboard/internal/domain/activity"
	"github.com/rpggio/flowboard/internal/domain/project"
	"github.com/rpggio/flowboard/internal/domain/task"
)

// ProjectStore defines project operations needed by MCP.
type ProjectStore interface {
	Fetch(ctx context.Context) error
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Update(ctx context.Context, id int64, req project.UpdateRequest) (*project.Project, error)
	Delete(ctx context.Context, id int64) error
	Get(id int64) (*project.Project, error)
	Snapshot() project.State
}

// TaskStore defines task operations needed by MCP.
type TaskStore interface {
	Fetch(ctx context.Context) error
	Create(ctx context.Context, req task.CreateRequest) (*task.Task, error)
	Update(ctx context.Context, id int64, req task.UpdateRequest) (*task.Task, error)
	Delete(ctx context.Context, id int64) error
	UpdateOrder(ctx context.Context, projectID int64, reordered []task.Task) error
	UpdateOrderIDs(ctx context.Context, projectID int64, ids []int64) error
	Get(id int64) (*task.Task, error)
	ByProject(projectID int64) []task.Task
	Snapshot() task.State
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Handler dispatches MCP commands.
type Handler struct {
	projects ProjectStore
	tasks    TaskStore
	activity ActivityService
}

// NewHandler creates a new MCP handler. activitySvc may be nil.
func NewHandler(projects ProjectStore, tasks TaskStore, activitySvc ActivityService) *Handler {
	return &Handler{
		projects: projects,
		tasks:    tasks,
		activity: activitySvc,
	}
}

// NewAppHandler creates a handler over the stores of a.
func NewAppHandler(a *app.App) *Handler {
	var activitySvc ActivityService
	if a.Activity != nil {
		activitySvc = a.Activity
	}
	return NewHandler(a.Projects, a.Tasks, activitySvc)
}

// Methods lists every method Handle accepts.
func Methods() []string {
	names := make([]string, 0, len(toolCatalog))
	for _, def := range toolCatalog {
		names = append(names, def.Name)
	}
	return names
}

// Handle dispatches MCP requests to the stores.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "fetch_projects":
		if err := h.projects.Fetch(ctx); err != nil {
			return nil, mapError(err)
		}
		return h.projects.Snapshot(), nil
	case "list_projects":
		return h.projects.Snapshot(), nil
	case "get_project":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := requireID("id", req.ID); err != nil {
			return nil, err
		}
		proj, err := h.projects.Get(req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.projects.Create(ctx, project.CreateRequest{
			Name:        req.Name,
			Description: req.Description,
			Color:       req.Color,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "update_project":
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := requireID("id", req.ID); err != nil {
			return nil, err
		}
		proj, err := h.projects.Update(ctx, req.ID, project.UpdateRequest{
			Name:        req.Name,
			Description: req.Description,
			Color:       req.Color,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "delete_project":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := requireID("id", req.ID); err != nil {
			return nil, err
		}
		if err := h.projects.Delete(ctx, req.ID); err != nil {
			return nil, mapError(err)
		}
		return DeleteResponse{ID: req.ID, Deleted: true}, nil
	case "fetch_tasks":
		if err := h.tasks.Fetch(ctx); err != nil {
			return nil, mapError(err)
		}
		return TaskListResponse{State: h.tasks.Snapshot()}, nil
	case "list_tasks":
		var req ListTasksParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		state := h.tasks.Snapshot()
		if req.ProjectID != nil {
			state.Tasks = h.tasks.ByProject(*req.ProjectID)
		}
		return TaskListResponse{State: state, ProjectID: req.ProjectID}, nil
	case "get_task":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := requireID("id", req.ID); err != nil {
			return nil, err
		}
		t, err := h.tasks.Get(req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return t, nil
	case "create_task":
		var req CreateTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		t, err := h.tasks.Create(ctx, task.CreateRequest{
			ProjectID:   req.ProjectID,
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return t, nil
	case "update_task":
		var req UpdateTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := requireID("id", req.ID); err != nil {
			return nil, err
		}
		t, err := h.tasks.Update(ctx, req.ID, task.UpdateRequest{
			ProjectID:   req.ProjectID,
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
			Priority:    req.Priority,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return t, nil
	case "delete_task":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := requireID("id", req.ID); err != nil {
			return nil, err
		}
		if err := h.tasks.Delete(ctx, req.ID); err != nil {
			return nil, mapError(err)
		}
		return DeleteResponse{ID: req.ID, Deleted: true}, nil
	case "update_task_order":
		var req UpdateTaskOrderParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		var err error
		switch {
		case len(req.TaskIDs) > 0 && len(req.Tasks) > 0:
			return nil, fmt.Errorf("%w: pass either tasks or task_ids", ErrInvalidParams)
		case len(req.TaskIDs) > 0:
			err = h.tasks.UpdateOrderIDs(ctx, req.ProjectID, req.TaskIDs)
		default:
			err = h.tasks.UpdateOrder(ctx, req.ProjectID, req.Tasks)
		}
		if err != nil {
			return nil, mapError(err)
		}
		return TaskListResponse{
			State:     h.tasks.Snapshot(),
			ProjectID: &req.ProjectID,
		}, nil
	case "recent_activity":
		var req RecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if h.activity == nil {
			return []ActivityEntryResponse{}, nil
		}
		entries, err := h.activity.GetRecentActivity(ctx, activity.ListActivityOptions{
			Collection:   req.Collection,
			EntityID:     req.EntityID,
			ActivityType: req.Type,
			Limit:        req.Limit,
			Offset:       req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]ActivityEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ActivityEntryResponse{
				ID:         entry.ID,
				Timestamp:  entry.CreatedAt,
				Collection: entry.Collection,
				Type:       entry.ActivityType,
				EntityID:   entry.EntityID,
				Summary:    entry.Summary,
				Details:    entry.Details,
			})
		}
		return resp, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(bytes.TrimSpace(params)) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func requireID(field string, id int64) error {
	if id == 0 {
		return fmt.Errorf("%w: %s is required", ErrInvalidParams, field)
	}
	return nil
}
