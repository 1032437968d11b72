// Package qerrors defines the error taxonomy of the quality engine. All four
// kinds propagate to the API layer unchanged; only ConcurrencyError is
// retryable, by re-running the whole operation from a fresh status read.
package qerrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/provalon/quality-engine/internal/domain/transition"
)

// ValidationError carries every accumulated validation failure plus the
// structured hints a form needs to highlight all missing requirements at once.
type ValidationError struct {
	Errors          []string
	RequiredActions transition.RequiredActions
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// NewValidationError builds a ValidationError from a validator result.
func NewValidationError(result transition.Result) *ValidationError {
	return &ValidationError{
		Errors:          result.Errors,
		RequiredActions: result.RequiredActions,
	}
}

// NotFoundError indicates the referenced entity does not exist. A sequence
// key unseen before first use is not a NotFoundError; counters are created
// lazily.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// PermissionError indicates the actor lacks the role a gated action requires.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

// ConcurrencyError indicates the entity's current status changed between the
// validation read and the commit. The operation may be retried from a fresh
// status read.
type ConcurrencyError struct {
	EntityType string
	EntityID   string
	Expected   string
	Actual     string
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrent status change on %s %s: expected %s, found %s",
		e.EntityType, e.EntityID, e.Expected, e.Actual)
}

// Retryable reports that re-running the operation from a fresh read may succeed.
func (e *ConcurrencyError) Retryable() bool { return true }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsPermission reports whether err is (or wraps) a PermissionError.
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsConcurrency reports whether err is (or wraps) a ConcurrencyError.
func IsConcurrency(err error) bool {
	var ce *ConcurrencyError
	return errors.As(err, &ce)
}
