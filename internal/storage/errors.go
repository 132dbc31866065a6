package storage

import (
	"errors"
	"fmt"

	"autoposter-api/internal/common"
)

const ErrCodeRepository = "REPOSITORY_ERROR"

// RepositoryError represents database operation failures
type RepositoryError struct {
	Operation string
	Details   string
	Cause     error
}

func (e RepositoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repository error during %s: %s (caused by: %v)", e.Operation, e.Details, e.Cause)
	}
	return fmt.Sprintf("repository error during %s: %s", e.Operation, e.Details)
}

func (e RepositoryError) Code() string {
	return ErrCodeRepository
}

func (e RepositoryError) Message() string {
	return e.Details
}

func (e RepositoryError) Temporary() bool {
	return true
}

func (e RepositoryError) Unwrap() error {
	return e.Cause
}

// WrapRepositoryError wraps an error as a RepositoryError
func WrapRepositoryError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return RepositoryError{
		Operation: operation,
		Details:   "database operation failed",
		Cause:     err,
	}
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	var notFound common.NotFoundError
	return errors.As(err, &notFound)
}

// IsRepositoryError checks if the error is a repository error
func IsRepositoryError(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr)
}
