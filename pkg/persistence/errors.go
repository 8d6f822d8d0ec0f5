// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrRunNotFound      = errors.New("workflow run not found")
	ErrTriggerNotFound  = errors.New("trigger not found")
	ErrScoreNotFound    = errors.New("trust score not found")
	ErrConsentNotFound  = errors.New("consent not found")
	ErrProviderNotFound = errors.New("provider not found")
)

// StoreError wraps a repository error with the operation and entity it
// concerns.
type StoreError struct {
	Op       string
	EntityID string
	Err      error
}

func (e *StoreError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.EntityID, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op, entityID string, err error) *StoreError {
	return &StoreError{Op: op, EntityID: entityID, Err: err}
}

func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

func IsTriggerNotFound(err error) bool {
	return errors.Is(err, ErrTriggerNotFound)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrRunNotFound) ||
		errors.Is(err, ErrTriggerNotFound) ||
		errors.Is(err, ErrScoreNotFound) ||
		errors.Is(err, ErrConsentNotFound) ||
		errors.Is(err, ErrProviderNotFound)
}
