/*
errors.go - Error taxonomy for the revenue engine

ERROR CATEGORIES:
  1. Validation errors - non-positive targets, invalid period indices
  2. Authorization errors - role or department scope violations
  3. Not found errors - target id absent in the caller's firm
  4. Conflict errors - duplicate-key race on stores without native upsert

Absence of data is never an error: a missing target surfaces as the
no_target status, an empty payment range as a zero actual.

USAGE:
  if errors.Is(err, revenue.ErrUnauthorized) {
      // halt, show the caller why
  }

  var verr *revenue.ValidationError
  if errors.As(err, &verr) {
      log.Printf("bad field %s", verr.Field)
  }
*/
package revenue

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("not authorized")
	ErrNotFound     = errors.New("not found")

	// ErrConflict is returned by stores that cannot upsert atomically and
	// lost a race on the same target key.
	ErrConflict = errors.New("conflict")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError names the role, the attempted action and the
// department that was out of scope.
type AuthorizationError struct {
	Role         Role
	Action       Action
	DepartmentID DepartmentID
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q may not %s %s", e.Role, e.Action, e.DepartmentID)
}

func (e *AuthorizationError) Unwrap() error { return ErrUnauthorized }

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type ConflictError struct {
	Key TargetKey
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent write on target %s/%d/%s",
		e.Key.LawFirmID, e.Key.Year, e.Key.DepartmentID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the caller must change the request.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrUnauthorized)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsRetryable returns true if the same request might succeed on retry.
func IsRetryable(err error) bool { return errors.Is(err, ErrConflict) }
