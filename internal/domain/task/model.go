package task

import (
	"encoding/json"
	"time"

	"github.com/rpggio/flowboard/internal/clock"
	"github.com/rpggio/flowboard/internal/repository"
)

// Status is the board column a task sits in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Priority ranks tasks within a column.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is a unit of work owned by a project. ProjectID is not checked
// against the project store.
//
// Extra holds stored fields this package does not model; they are written
// back unchanged.
type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var taskKeys = map[string]bool{
	"id": true, "projectId": true, "title": true, "description": true,
	"status": true, "priority": true, "createdAt": true, "updatedAt": true,
}

type taskJSON struct {
	ID          int64    `json:"id"`
	ProjectID   int64    `json:"projectId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   *string  `json:"updatedAt,omitempty"`
}

// MarshalJSON writes timestamps in clock.TimestampLayout and merges Extra.
func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   clock.FormatTimestamp(t.CreatedAt),
	}
	if t.UpdatedAt != nil {
		updated := clock.FormatTimestamp(*t.UpdatedAt)
		out.UpdatedAt = &updated
	}
	return repository.MarshalWithExtra(out, t.Extra)
}

// UnmarshalJSON decodes the modeled fields and keeps the rest in Extra.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := repository.ExtraFields(data, taskKeys)
	if err != nil {
		return err
	}
	*t = Task(decoded)
	t.Extra = extra
	return nil
}

// State is a point-in-time copy of the store's observable fields.
type State struct {
	Tasks   []Task             `json:"tasks"`
	Loading bool               `json:"loading"`
	Error   string             `json:"error,omitempty"`
	Outcome repository.Outcome `json:"outcome,omitempty"`
}

// Listener receives the store state after every change.
type Listener func(State)
