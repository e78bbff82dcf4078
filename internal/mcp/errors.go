package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/flowboard/internal/domain/project"
	"github.com/rpggio/flowboard/internal/domain/task"
	"github.com/rpggio/flowboard/internal/repository"
)

var (
	// ErrUnknownMethod is returned by Handle for unsupported method names.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrInvalidParams is returned by Handle when params can't be decoded.
	ErrInvalidParams = errors.New("invalid params")
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid IDs"}
	case errors.Is(err, task.ErrTaskNotFound):
		return &APIError{Code: "TASK_NOT_FOUND", Message: "task not found", RecoveryHint: "Call list_tasks for valid IDs"}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "not found"}
	case errors.Is(err, repository.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check required fields and allowed values"}
	case errors.Is(err, repository.ErrLoadFailed):
		return &APIError{Code: "LOAD_FAILED", Message: "stored data could not be loaded", RecoveryHint: "Inspect the storage slot; the in-memory list was kept"}
	case errors.Is(err, repository.ErrPersistFailed):
		return &APIError{Code: "PERSIST_FAILED", Message: "change applied in memory but not persisted", RecoveryHint: "Retry once storage is reachable"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
