package process

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"time"

	apperrors "github.com/kbukum/watchdog/errors"
)

// Sentinels matched by the error types below through errors.Is.
var (
	ErrLaunch     = errors.New("process: launch failed")
	ErrSupervisor = errors.New("process: signal delivery failed")
	ErrTimeout    = errors.New("process: timeout exceeded")
)

// LaunchError reports a command that could not be started.
type LaunchError struct {
	Binary string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("process: launch %s: %v", e.Binary, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

func (e *LaunchError) Is(target error) bool { return target == ErrLaunch }

// AppError classifies the failure for callers and the CLI exit status.
func (e *LaunchError) AppError() *apperrors.AppError {
	switch {
	case errors.Is(e.Err, exec.ErrNotFound), errors.Is(e.Err, fs.ErrNotExist):
		return apperrors.CommandNotFound(e.Binary, e)
	case errors.Is(e.Err, fs.ErrPermission):
		return apperrors.PermissionDenied(e.Binary, e)
	default:
		return apperrors.LaunchFailed(e.Binary, e)
	}
}

// SupervisorError reports a signal that could not be delivered to a child
// that was still running.
type SupervisorError struct {
	PID    int
	Signal os.Signal
	Err    error
}

func (e *SupervisorError) Error() string {
	return fmt.Sprintf("process: send %s to pid %d: %v", SignalName(e.Signal), e.PID, e.Err)
}

func (e *SupervisorError) Unwrap() error { return e.Err }

func (e *SupervisorError) Is(target error) bool { return target == ErrSupervisor }

func (e *SupervisorError) AppError() *apperrors.AppError {
	return apperrors.SignalFailed(SignalName(e.Signal), e.PID, e)
}

// TimeoutExceeded reports that the deadline elapsed and the child was
// stopped. Signal is the signal that finally ended it.
type TimeoutExceeded struct {
	Binary      string
	Timeout     time.Duration
	GracePeriod time.Duration
	Signal      os.Signal
	// Forced is set when the graceful signal was not enough.
	Forced  bool
	Elapsed time.Duration
	// Cause is the context error when cancellation, not the deadline,
	// started the escalation.
	Cause error
}

func (e *TimeoutExceeded) Error() string {
	reason := fmt.Sprintf("timed out after %s", e.Timeout)
	if e.Cause != nil {
		reason = fmt.Sprintf("cancelled (%v)", e.Cause)
	}
	return fmt.Sprintf("process: %s %s, stopped by %s after %s",
		e.Binary, reason, SignalName(e.Signal), e.Elapsed.Round(time.Millisecond))
}

func (e *TimeoutExceeded) Unwrap() error { return e.Cause }

func (e *TimeoutExceeded) Is(target error) bool { return target == ErrTimeout }

func (e *TimeoutExceeded) AppError() *apperrors.AppError {
	return apperrors.Timeout(e.Binary, SignalName(e.Signal)).
		WithCause(e).
		WithDetail("forced", e.Forced).
		WithDetail("elapsed_ms", e.Elapsed.Milliseconds())
}
