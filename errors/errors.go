package errors

import (
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// ExitStatus is the status the CLI exits with for this error.
	ExitStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with retryable and exit status derived from the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		ExitStatus: ExitStatusFor(code),
		Retryable:  IsRetryableCode(code),
	}
}

// --- Supervision constructors ---

// LaunchFailed creates an AppError for a command that could not be started.
func LaunchFailed(binary string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeLaunchFailed, Message: fmt.Sprintf("Unable to start %s.", binary),
		ExitStatus: ExitFailure, Retryable: false,
		Details: map[string]any{"binary": binary}, Cause: cause,
	}
}

// CommandNotFound creates an AppError for an executable that does not resolve.
func CommandNotFound(binary string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("Command %s was not found.", binary),
		ExitStatus: ExitCommandMissing, Retryable: false,
		Details: map[string]any{"binary": binary}, Cause: cause,
	}
}

// PermissionDenied creates an AppError for an executable that cannot be run.
func PermissionDenied(binary string, cause error) *AppError {
	return &AppError{
		Code: ErrCodePermissionDenied, Message: fmt.Sprintf("Command %s cannot be executed.", binary),
		ExitStatus: ExitCannotExecute, Retryable: false,
		Details: map[string]any{"binary": binary}, Cause: cause,
	}
}

// SignalFailed creates an AppError for a signal that could not be delivered.
func SignalFailed(signal string, pid int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSignalFailed, Message: fmt.Sprintf("Unable to deliver %s to process %d.", signal, pid),
		ExitStatus: ExitFailure, Retryable: false,
		Details: map[string]any{"signal": signal, "pid": pid}, Cause: cause,
	}
}

// Timeout creates an AppError for a command terminated at its deadline.
func Timeout(binary, signal string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("Command %s timed out and was stopped with %s.", binary, signal),
		ExitStatus: ExitTimedOut, Retryable: true,
		Details: map[string]any{"binary": binary, "signal": signal},
	}
}

// ServiceUnavailable creates an AppError for a runner that is temporarily refusing calls.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		ExitStatus: ExitFailure, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// --- Validation constructors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		ExitStatus: ExitFailure, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		ExitStatus: ExitFailure, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		ExitStatus: ExitFailure, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// InvalidConfig creates a new AppError for configuration that failed to load or validate.
func InvalidConfig(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: "The configuration is invalid.",
		ExitStatus: ExitFailure, Retryable: false, Cause: cause,
	}
}

// Internal creates a new AppError for an unexpected error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		ExitStatus: ExitFailure, Retryable: false, Cause: cause,
	}
}
