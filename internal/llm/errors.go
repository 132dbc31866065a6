package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// LLMError defines the interface for LLM-specific errors
type LLMError interface {
	error
	Code() string    // Error code for categorization
	Message() string // Human-readable error message
	Temporary() bool // Whether the error is temporary and retryable
}

// GenerationError is what ContentGenerator methods return. Its text is safe to
// show to end users; the cause chain is for server-side logs.
type GenerationError struct {
	Operation string
	Cause     error
}

func (e GenerationError) Error() string {
	switch e.Operation {
	case OperationEnhance:
		return "failed to enhance post with AI"
	case OperationHashtags:
		return "failed to generate hashtags with AI"
	default:
		return "failed to generate content with AI"
	}
}

func (e GenerationError) Code() string {
	return "GENERATION_ERROR"
}

func (e GenerationError) Message() string {
	return e.Error()
}

func (e GenerationError) Temporary() bool {
	return IsRetryable(e.Cause)
}

func (e GenerationError) Unwrap() error {
	return e.Cause
}

// APIError represents a non-2xx answer from the completions API
type APIError struct {
	HTTPStatus int    `json:"http_status"`
	ErrorCode  string `json:"error_code"`
	ErrorMsg   string `json:"error_message"`
	Details    string `json:"details"`
	Retryable  bool   `json:"retryable"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s - %s", e.HTTPStatus, e.ErrorCode, e.ErrorMsg)
}

func (e APIError) Code() string {
	return e.ErrorCode
}

func (e APIError) Message() string {
	return e.ErrorMsg
}

func (e APIError) Temporary() bool {
	return e.Retryable
}

// NetworkError represents connection and timeout issues
type NetworkError struct {
	Operation string `json:"operation"`
	ErrorMsg  string `json:"error_message"`
	Wrapped   error  `json:"-"`
}

func (e NetworkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("network error during %s: %s (wrapped: %v)", e.Operation, e.ErrorMsg, e.Wrapped)
	}
	return fmt.Sprintf("network error during %s: %s", e.Operation, e.ErrorMsg)
}

func (e NetworkError) Code() string {
	return "NETWORK_ERROR"
}

func (e NetworkError) Message() string {
	return e.ErrorMsg
}

func (e NetworkError) Temporary() bool {
	return true
}

func (e NetworkError) Unwrap() error {
	return e.Wrapped
}

// ResponseError means the API answered 200 with a body we could not use
type ResponseError struct {
	ErrorMsg string `json:"error_message"`
	Details  string `json:"details"`
}

func (e ResponseError) Error() string {
	return fmt.Sprintf("invalid model response: %s", e.ErrorMsg)
}

func (e ResponseError) Code() string {
	return ErrorCodeInvalidResponse
}

func (e ResponseError) Message() string {
	return e.ErrorMsg
}

func (e ResponseError) Temporary() bool {
	return false
}

// ConfigurationError represents invalid configuration
type ConfigurationError struct {
	Field    string `json:"field"`
	ErrorMsg string `json:"error_message"`
	Details  string `json:"details"`
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for field '%s': %s", e.Field, e.ErrorMsg)
}

func (e ConfigurationError) Code() string {
	return "CONFIGURATION_ERROR"
}

func (e ConfigurationError) Message() string {
	return e.ErrorMsg
}

func (e ConfigurationError) Temporary() bool {
	return false
}

// RateLimitError represents API rate limiting
type RateLimitError struct {
	RetryAfter int    `json:"retry_after_seconds"`
	ErrorMsg   string `json:"error_message"`
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s (retry after %d seconds)", e.ErrorMsg, e.RetryAfter)
}

func (e RateLimitError) Code() string {
	return "RATE_LIMIT_EXCEEDED"
}

func (e RateLimitError) Message() string {
	return e.ErrorMsg
}

func (e RateLimitError) Temporary() bool {
	return true
}

// Error creation helpers

// NewAPIError creates a new API error with appropriate retry logic
func NewAPIError(httpStatus int, errorCode, message, details string) APIError {
	return APIError{
		HTTPStatus: httpStatus,
		ErrorCode:  errorCode,
		ErrorMsg:   message,
		Details:    details,
		Retryable:  isRetryableHTTPStatus(httpStatus),
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(operation, message string, wrapped error) NetworkError {
	return NetworkError{
		Operation: operation,
		ErrorMsg:  message,
		Wrapped:   wrapped,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field, message, details string) ConfigurationError {
	return ConfigurationError{
		Field:    field,
		ErrorMsg: message,
		Details:  details,
	}
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(retryAfter int, message string) RateLimitError {
	return RateLimitError{
		RetryAfter: retryAfter,
		ErrorMsg:   message,
	}
}

// Error classification helpers

// IsRetryable reports whether err, or anything it wraps, is a temporary LLM error
func IsRetryable(err error) bool {
	var llmErr LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Temporary()
	}
	return false
}

// isRetryableHTTPStatus determines if an HTTP status code indicates a retryable error
func isRetryableHTTPStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// Error constants for common scenarios
const (
	ErrorCodeInvalidAPIKey      = "INVALID_API_KEY"
	ErrorCodeModelNotFound      = "MODEL_NOT_FOUND"
	ErrorCodeInsufficientQuota  = "INSUFFICIENT_QUOTA"
	ErrorCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrorCodeInvalidRequest     = "INVALID_REQUEST"
	ErrorCodeInvalidResponse    = "INVALID_RESPONSE"
	ErrorCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeUnknown            = "UNKNOWN_ERROR"
)
