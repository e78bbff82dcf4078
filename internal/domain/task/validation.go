package task

import (
	"fmt"
	"strings"
)

// CreateRequest defines task creation inputs. Status and Priority default
// to todo and medium.
type CreateRequest struct {
	ProjectID   int64    `json:"projectId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
}

// UpdateRequest carries the fields to merge into an existing task.
// Nil fields are left unchanged.
type UpdateRequest struct {
	ProjectID   *int64    `json:"projectId,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
}

// ValidateCreateInput validates fields required to create a task.
func ValidateCreateInput(req CreateRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return ErrTitleRequired
	}
	if req.Status != "" && !req.Status.Valid() {
		return ErrInvalidStatus
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// ValidateUpdateInput validates the fields present in an update.
func ValidateUpdateInput(req UpdateRequest) error {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return ErrTitleRequired
	}
	if req.Status != nil && !req.Status.Valid() {
		return ErrInvalidStatus
	}
	if req.Priority != nil && !req.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// ValidateOrder checks that every task in reordered has a positive ID,
// belongs to projectID, and that no ID repeats or collides with a task of
// another project.
func ValidateOrder(current []Task, projectID int64, reordered []Task) error {
	others := make(map[int64]bool, len(current))
	for _, t := range current {
		if t.ProjectID != projectID {
			others[t.ID] = true
		}
	}

	seen := make(map[int64]bool, len(reordered))
	for _, t := range reordered {
		if t.ID <= 0 {
			return fmt.Errorf("%w: task id %d must be positive", ErrInvalidOrder, t.ID)
		}
		if t.ProjectID != projectID {
			return fmt.Errorf("%w: task %d belongs to project %d", ErrInvalidOrder, t.ID, t.ProjectID)
		}
		if seen[t.ID] || others[t.ID] {
			return fmt.Errorf("%w: duplicate task id %d", ErrInvalidOrder, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (r UpdateRequest) apply(t *Task) {
	if r.ProjectID != nil {
		t.ProjectID = *r.ProjectID
	}
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
}
