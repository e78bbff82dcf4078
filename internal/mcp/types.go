package mcp

import (
	"time"

	"github.com/rpggio/flowboard/internal/domain/activity"
	"github.com/rpggio/flowboard/internal/domain/task"
)

type IDParams struct {
	ID int64 `json:"id"`
}

type CreateProjectParams struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

type UpdateProjectParams struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

type ListTasksParams struct {
	ProjectID *int64 `json:"project_id,omitempty"`
}

type CreateTaskParams struct {
	ProjectID   int64         `json:"project_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      task.Status   `json:"status,omitempty"`
	Priority    task.Priority `json:"priority,omitempty"`
}

type UpdateTaskParams struct {
	ID          int64          `json:"id"`
	ProjectID   *int64         `json:"project_id,omitempty"`
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *task.Status   `json:"status,omitempty"`
	Priority    *task.Priority `json:"priority,omitempty"`
}

// UpdateTaskOrderParams carries the new order of a project's tasks, either
// as full task objects or as IDs of tasks already in the store.
type UpdateTaskOrderParams struct {
	ProjectID int64       `json:"project_id"`
	Tasks     []task.Task `json:"tasks,omitempty"`
	TaskIDs   []int64     `json:"task_ids,omitempty"`
}

type RecentActivityParams struct {
	Collection string                 `json:"collection,omitempty"`
	EntityID   *int64                 `json:"entity_id,omitempty"`
	Type       *activity.ActivityType `json:"type,omitempty"`
	Limit      int                    `json:"limit,omitempty"`
	Offset     int                    `json:"offset,omitempty"`
}

type DeleteResponse struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

type TaskListResponse struct {
	task.State
	ProjectID *int64 `json:"project_id,omitempty"`
}

type ActivityEntryResponse struct {
	ID         string                `json:"id"`
	Timestamp  time.Time             `json:"timestamp"`
	Collection string                `json:"collection"`
	Type       activity.ActivityType `json:"type"`
	EntityID   *int64                `json:"entity_id,omitempty"`
	Summary    string                `json:"summary"`
	Details    string                `json:"details,omitempty"`
}
