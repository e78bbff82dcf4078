package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrLoadFailed is returned when a storage slot can't be read or decoded
	ErrLoadFailed = errors.New("load failed")

	// ErrPersistFailed is returned when a collection can't be encoded or written
	ErrPersistFailed = errors.New("persist failed")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// Outcome tags the result of a store operation.
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeLoadFailed    Outcome = "load_failed"
	OutcomeNotFound      Outcome = "not_found"
	OutcomePersistFailed Outcome = "persist_failed"
	OutcomeInvalidInput  Outcome = "invalid_input"
	OutcomeFailed        Outcome = "failed"
)

// OutcomeOf classifies err into an Outcome. A nil error is OutcomeOK.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrLoadFailed):
		return OutcomeLoadFailed
	case errors.Is(err, ErrPersistFailed):
		return OutcomePersistFailed
	case errors.Is(err, ErrInvalidInput):
		return OutcomeInvalidInput
	default:
		return OutcomeFailed
	}
}
