package common

import (
	"fmt"
	"strings"
)

// UserID is the identity-provider subject that owns every row in the store.
type UserID string

// String returns the string representation of the UserID
func (id UserID) String() string {
	return string(id)
}

// IsValid reports whether the id is usable as an owner key
func (id UserID) IsValid() bool {
	return strings.TrimSpace(string(id)) != ""
}

// Common error types
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

type InternalError struct {
	Message string
	Cause   error
}

func (e InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e InternalError) Unwrap() error {
	return e.Cause
}

// Truncate shortens s to max runes, appending "..." when something was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
