package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Supervision errors
const (
	// ErrCodeLaunchFailed indicates the child process could not be started.
	ErrCodeLaunchFailed ErrorCode = "LAUNCH_FAILED"
	// ErrCodeNotFound indicates the executable could not be resolved.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodePermissionDenied indicates the executable exists but cannot be run.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeSignalFailed indicates a signal could not be delivered to a live process.
	ErrCodeSignalFailed ErrorCode = "SIGNAL_FAILED"
	// ErrCodeTimeout indicates the deadline elapsed and the child was terminated.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a runner refused the call, e.g. an open circuit.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidConfig indicates configuration could not be loaded or is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Exit statuses follow the convention of coreutils timeout(1).
const (
	ExitTimedOut       = 124
	ExitFailure        = 125
	ExitCannotExecute  = 126
	ExitCommandMissing = 127
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeLaunchFailed:       false,
	ErrCodeSignalFailed:       false,
	ErrCodeInternal:           false,
}

var exitStatuses = map[ErrorCode]int{
	ErrCodeTimeout:          ExitTimedOut,
	ErrCodeNotFound:         ExitCommandMissing,
	ErrCodePermissionDenied: ExitCannotExecute,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// ExitStatusFor returns the process exit status associated with a code.
func ExitStatusFor(code ErrorCode) int {
	if s, ok := exitStatuses[code]; ok {
		return s
	}
	return ExitFailure
}
