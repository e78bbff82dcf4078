package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectsLoaded ActivityType = "projects_loaded"
	TypeProjectCreated ActivityType = "project_created"
	TypeProjectUpdated ActivityType = "project_updated"
	TypeProjectDeleted ActivityType = "project_deleted"
	TypeTasksLoaded    ActivityType = "tasks_loaded"
	TypeTaskCreated    ActivityType = "task_created"
	TypeTaskUpdated    ActivityType = "task_updated"
	TypeTaskDeleted    ActivityType = "task_deleted"
	TypeTasksReordered ActivityType = "tasks_reordered"
)

// Collections recorded in the activity log.
const (
	CollectionProjects = "projects"
	CollectionTasks    = "tasks"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           string       `json:"id"`
	Collection   string       `json:"collection"`
	EntityID     *int64       `json:"entity_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
