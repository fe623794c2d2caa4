package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_DerivesFromCode(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out")
	if err.Code != ErrCodeTimeout {
		t.Errorf("expected code %s, got %s", ErrCodeTimeout, err.Code)
	}
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	if err.ExitStatus != ExitTimedOut {
		t.Errorf("expected exit status %d, got %d", ExitTimedOut, err.ExitStatus)
	}

	err = New(ErrCodeSignalFailed, "no signal")
	if err.Retryable {
		t.Error("SIGNAL_FAILED should not be retryable")
	}
	if err.ExitStatus != ExitFailure {
		t.Errorf("expected exit status %d, got %d", ExitFailure, err.ExitStatus)
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	cause := fmt.Errorf("boom")
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"LaunchFailed", LaunchFailed("sleep", cause), ErrCodeLaunchFailed, ExitFailure, false},
		{"CommandNotFound", CommandNotFound("nope", cause), ErrCodeNotFound, ExitCommandMissing, false},
		{"PermissionDenied", PermissionDenied("/etc/passwd", cause), ErrCodePermissionDenied, ExitCannotExecute, false},
		{"SignalFailed", SignalFailed("SIGTERM", 10, cause), ErrCodeSignalFailed, ExitFailure, false},
		{"Timeout", Timeout("sleep", "SIGKILL"), ErrCodeTimeout, ExitTimedOut, true},
		{"ServiceUnavailable", ServiceUnavailable("runner"), ErrCodeServiceUnavailable, ExitFailure, true},
		{"InvalidInput", InvalidInput("timeout", "must not be negative"), ErrCodeInvalidInput, ExitFailure, false},
		{"MissingField", MissingField("binary"), ErrCodeMissingField, ExitFailure, false},
		{"InvalidConfig", InvalidConfig(cause), ErrCodeInvalidConfig, ExitFailure, false},
		{"Internal", Internal(cause), ErrCodeInternal, ExitFailure, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.ExitStatus != tc.status {
				t.Errorf("expected exit status %d, got %d", tc.status, tc.err.ExitStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestAppError_SignalFailed_Details(t *testing.T) {
	err := SignalFailed("SIGKILL", 42, stderrors.New("operation not permitted"))
	if err.Details["signal"] != "SIGKILL" {
		t.Errorf("expected signal=SIGKILL, got %v", err.Details["signal"])
	}
	if err.Details["pid"] != 42 {
		t.Errorf("expected pid=42, got %v", err.Details["pid"])
	}
	if !strings.Contains(err.Error(), "operation not permitted") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_InvalidInput_EmptyField(t *testing.T) {
	err := InvalidInput("", "bad")
	if _, ok := err.Details["field"]; ok {
		t.Error("expected no 'field' key in details when field is empty")
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := CommandNotFound("nope", nil).WithDetails(map[string]any{
		"path": "/usr/bin",
	})
	if err.Details["path"] != "/usr/bin" {
		t.Errorf("expected path=/usr/bin in details")
	}
	if err.Details["binary"] != "nope" {
		t.Error("expected original details to be preserved")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized")
	}
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Unwrap_Success(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Internal(cause)
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if Timeout("x", "SIGTERM").Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestExitStatusFor_UnknownCode(t *testing.T) {
	if got := ExitStatusFor(ErrorCode("SOMETHING_ELSE")); got != ExitFailure {
		t.Errorf("expected %d for unknown code, got %d", ExitFailure, got)
	}
}

type codedError struct{}

func (codedError) Error() string       { return "coded" }
func (codedError) AppError() *AppError { return Timeout("sleep", "SIGTERM") }

func TestFromError(t *testing.T) {
	if FromError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}

	wrapped := fmt.Errorf("run: %w", codedError{})
	if got := FromError(wrapped); got.Code != ErrCodeTimeout {
		t.Errorf("expected TIMEOUT from Coder, got %s", got.Code)
	}

	app := MissingField("binary")
	if got := FromError(fmt.Errorf("wrap: %w", app)); got != app {
		t.Error("expected wrapped AppError to be returned as-is")
	}

	plain := stderrors.New("plain")
	got := FromError(plain)
	if got.Code != ErrCodeInternal || got.Cause != plain {
		t.Errorf("expected INTERNAL_ERROR wrapping cause, got %+v", got)
	}
}

func TestAppError_ToReport(t *testing.T) {
	report := Timeout("sleep", "SIGKILL").ToReport()
	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"code":"TIMEOUT"`, `"exit_status":124`, `"retryable":true`, `"signal":"SIGKILL"`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
}
