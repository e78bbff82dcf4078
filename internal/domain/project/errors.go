package project

import (
	"fmt"

	"github.com/rpggio/flowboard/internal/repository"
)

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = fmt.Errorf("project %w", repository.ErrNotFound)
	// ErrNameRequired indicates a blank project name.
	ErrNameRequired = fmt.Errorf("%w: project name is required", repository.ErrInvalidInput)
)

// Messages set on State.Error when an operation fails.
const (
	MsgLoadFailed   = "Failed to load projects"
	MsgCreateFailed = "Failed to create project"
	MsgUpdateFailed = "Failed to update project"
	MsgDeleteFailed = "Failed to delete project"
)
