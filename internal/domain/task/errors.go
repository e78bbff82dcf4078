package task

import (
	"fmt"

	"github.com/rpggio/flowboard/internal/repository"
)

var (
	// ErrTaskNotFound indicates the task doesn't exist.
	ErrTaskNotFound = fmt.Errorf("task %w", repository.ErrNotFound)
	// ErrTitleRequired indicates a blank task title.
	ErrTitleRequired = fmt.Errorf("%w: task title is required", repository.ErrInvalidInput)
	// ErrInvalidStatus indicates an unknown task status.
	ErrInvalidStatus = fmt.Errorf("%w: unknown task status", repository.ErrInvalidInput)
	// ErrInvalidPriority indicates an unknown task priority.
	ErrInvalidPriority = fmt.Errorf("%w: unknown task priority", repository.ErrInvalidInput)
	// ErrInvalidOrder indicates a reordered list that doesn't fit the project.
	ErrInvalidOrder = fmt.Errorf("%w: invalid task order", repository.ErrInvalidInput)
)

// Messages set on State.Error when an operation fails.
const (
	MsgLoadFailed    = "Failed to load tasks"
	MsgCreateFailed  = "Failed to create task"
	MsgUpdateFailed  = "Failed to update task"
	MsgDeleteFailed  = "Failed to delete task"
	MsgReorderFailed = "Failed to reorder tasks"
)
