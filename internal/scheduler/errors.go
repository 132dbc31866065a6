package scheduler

import (
	"errors"
	"fmt"
)

// SchedulerError defines the interface for scheduler-specific errors
type SchedulerError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// schedulerError implements the SchedulerError interface
type schedulerError struct {
	code      string
	message   string
	temporary bool
}

func (e *schedulerError) Error() string {
	return fmt.Sprintf("scheduler error [%s]: %s", e.code, e.message)
}

func (e *schedulerError) Code() string {
	return e.code
}

func (e *schedulerError) Message() string {
	return e.message
}

func (e *schedulerError) Temporary() bool {
	return e.temporary
}

// Error constants
const (
	ErrSchedulerNotRunning     = "scheduler_not_running"
	ErrSchedulerAlreadyRunning = "scheduler_already_running"
	ErrInvalidConfiguration    = "invalid_configuration"
	ErrUnknownJob              = "unknown_job"
	ErrJobFailed               = "job_failed"
	ErrShutdownTimeout         = "shutdown_timeout"
)

// JobError reports a cycle that could not run, or in which some users failed
type JobError struct {
	schedulerError
	Job    string
	Failed int
	Total  int
	Cause  error
}

func (e *JobError) Unwrap() error {
	return e.Cause
}

type ShutdownError struct {
	schedulerError
	TimeoutSeconds int
}

type ConfigurationError struct {
	schedulerError
	Field string
	Value interface{}
}

// Constructor functions
func NewSchedulerError(code, message string) error {
	return &schedulerError{
		code:      code,
		message:   message,
		temporary: false,
	}
}

// NewJobError wraps a failure that stopped the job before any user was processed
func NewJobError(job, operation string, err error) error {
	return &JobError{
		schedulerError: schedulerError{
			code:      ErrJobFailed,
			message:   fmt.Sprintf("job %s failed during %s: %v", job, operation, err),
			temporary: true,
		},
		Job:   job,
		Cause: err,
	}
}

// NewPartialJobError reports a cycle in which failed of total users errored
func NewPartialJobError(job string, failed, total int) error {
	return &JobError{
		schedulerError: schedulerError{
			code:      ErrJobFailed,
			message:   fmt.Sprintf("job %s failed for %d of %d users", job, failed, total),
			temporary: true,
		},
		Job:    job,
		Failed: failed,
		Total:  total,
	}
}

func NewShutdownError(message string, timeoutSeconds int) error {
	return &ShutdownError{
		schedulerError: schedulerError{
			code:      ErrShutdownTimeout,
			message:   message,
			temporary: false,
		},
		TimeoutSeconds: timeoutSeconds,
	}
}

func NewConfigurationError(field string, value interface{}, message string) error {
	return &ConfigurationError{
		schedulerError: schedulerError{
			code:      ErrInvalidConfiguration,
			message:   fmt.Sprintf("invalid configuration for field %s (value: %v): %s", field, value, message),
			temporary: false,
		},
		Field: field,
		Value: value,
	}
}

// Error classification helpers
func IsTemporaryError(err error) bool {
	var schedErr SchedulerError
	if errors.As(err, &schedErr) {
		return schedErr.Temporary()
	}
	return false
}

func IsConfigurationError(err error) bool {
	return hasCode(err, ErrInvalidConfiguration)
}

func IsAlreadyRunning(err error) bool {
	return hasCode(err, ErrSchedulerAlreadyRunning)
}

func hasCode(err error, code string) bool {
	var schedErr SchedulerError
	if errors.As(err, &schedErr) {
		return schedErr.Code() == code
	}
	return false
}
