package social

import (
	"errors"
	"fmt"
)

// Operation names used in PublishError
const (
	OperationPublish        = "publish"
	OperationPostMetrics    = "post_metrics"
	OperationAccountMetrics = "account_metrics"
)

// PublishError is returned by Publisher methods. Its text is safe to show to end
// users; the cause chain is for server-side logs.
type PublishError struct {
	Operation string
	Cause     error
}

func (e PublishError) Error() string {
	switch e.Operation {
	case OperationPostMetrics:
		return "failed to fetch post metrics"
	case OperationAccountMetrics:
		return "failed to fetch account metrics"
	default:
		return "failed to post to X"
	}
}

func (e PublishError) Code() string {
	return "PUBLISH_ERROR"
}

func (e PublishError) Message() string {
	return e.Error()
}

// Temporary reports whether the platform signalled a transient failure
func (e PublishError) Temporary() bool {
	var apiErr APIError
	if errors.As(e.Cause, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return e.Cause != nil
}

func (e PublishError) Unwrap() error {
	return e.Cause
}

// APIError is a non-2xx answer from the platform
type APIError struct {
	StatusCode int
	Body       string
}

func (e APIError) Error() string {
	return fmt.Sprintf("X API error (HTTP %d): %s", e.StatusCode, e.Body)
}

// ConfigurationError represents missing or invalid credentials
type ConfigurationError struct {
	Field    string
	ErrorMsg string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for field '%s': %s", e.Field, e.ErrorMsg)
}

// IsPublishError checks if the error is a publish error
func IsPublishError(err error) bool {
	var publishErr PublishError
	return errors.As(err, &publishErr)
}
