package errors

import (
	stderrors "errors"
)

// Report is the JSON structure the CLI prints for a failed run.
type Report struct {
	Error ReportBody `json:"error"`
}

// ReportBody contains the error details.
type ReportBody struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Retryable  bool                   `json:"retryable"`
	ExitStatus int                    `json:"exit_status"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// ToReport converts an AppError to a Report for JSON serialization.
func (e *AppError) ToReport() Report {
	return Report{
		Error: ReportBody{
			Code:       e.Code,
			Message:    e.Message,
			Retryable:  e.Retryable,
			ExitStatus: e.ExitStatus,
			Details:    e.Details,
		},
	}
}

// Coder is implemented by domain errors that know their AppError form.
type Coder interface {
	AppError() *AppError
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromError returns the AppError form of err. Domain errors implementing Coder
// are converted first, then wrapped AppErrors are unwrapped, and anything else
// becomes an internal error. A nil err returns nil.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var coder Coder
	if stderrors.As(err, &coder) {
		return coder.AppError()
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
