//go:build !windows

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	apperrors "github.com/kbukum/watchdog/errors"
	"github.com/kbukum/watchdog/process"
)

// execute runs the root command with args and returns the exit status and
// what was written to stdout and stderr.
func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	root, a := newRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))

	cfgPath := filepath.Join(t.TempDir(), "watchdog.yml")
	if err := os.WriteFile(cfgPath, []byte("logging:\n  level: disabled\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	root.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := root.Execute()
	a.shutdown()
	return a.report(&stderr, err), stdout.String(), stderr.String()
}

func TestVersionCommand(t *testing.T) {
	code, out, _ := execute(t, "version")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.HasPrefix(out, "watchdog ") {
		t.Errorf("unexpected output %q", out)
	}

	code, out, _ = execute(t, "--json", "version")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if info["version"] == nil {
		t.Errorf("expected version key in %v", info)
	}
}

func TestRunPassesExitCodeThrough(t *testing.T) {
	code, out, _ := execute(t, "run", "-t", "5s", "--", "sh", "-c", "echo hi; exit 3")
	if code != 3 {
		t.Fatalf("expected exit 3, got %d", code)
	}
	if out != "hi\n" {
		t.Errorf("expected child output on stdout, got %q", out)
	}
}

func TestRunSuccess(t *testing.T) {
	code, _, stderr := execute(t, "run", "true")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (%s)", code, stderr)
	}
}

func TestRunTimeout(t *testing.T) {
	code, _, stderr := execute(t, "run", "-t", "100ms", "-k", "100ms", "sleep", "10")
	if code != apperrors.ExitTimedOut {
		t.Fatalf("expected exit %d, got %d", apperrors.ExitTimedOut, code)
	}
	if !strings.Contains(stderr, "SIGTERM") {
		t.Errorf("expected the signal in the report, got %q", stderr)
	}
}

func TestRunTimeoutJSON(t *testing.T) {
	code, _, stderr := execute(t, "--json", "run", "--timeout", "100ms", "sleep", "10")
	if code != apperrors.ExitTimedOut {
		t.Fatalf("expected exit %d, got %d", apperrors.ExitTimedOut, code)
	}
	for _, want := range []string{`"result": "timed_out"`, `"code": "TIMEOUT"`} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected %s in %s", want, stderr)
		}
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"not found", []string{"run", "watchdog-no-such-binary"}, apperrors.ExitCommandMissing},
		{"negative timeout", []string{"run", "-t", "-1s", "true"}, apperrors.ExitFailure},
		{"unknown signal", []string{"run", "-s", "NOPE", "true"}, apperrors.ExitFailure},
		{"bad retries", []string{"run", "--retries", "0", "true"}, apperrors.ExitFailure},
		{"no command", []string{"run"}, apperrors.ExitFailure},
		{"bad log level", []string{"--log-level", "loud", "run", "true"}, apperrors.ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := execute(t, tc.args...)
			if code != tc.want {
				t.Fatalf("expected exit %d, got %d (%s)", tc.want, code, stderr)
			}
			if !strings.HasPrefix(stderr, "watchdog: ") {
				t.Errorf("expected an error report, got %q", stderr)
			}
		})
	}
}

func TestRunMissingConfigFile(t *testing.T) {
	root, a := newRootCommand()
	root.SetArgs([]string{"--config", "/nonexistent/watchdog.yml", "run", "true"})
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	if code := a.report(&stderr, root.Execute()); code != apperrors.ExitFailure {
		t.Fatalf("expected exit %d, got %d", apperrors.ExitFailure, code)
	}
}

func TestOutcomeStatus(t *testing.T) {
	completed := &process.Outcome{ExitCode: 0}
	if err := outcomeStatus(completed, nil); err != nil {
		t.Errorf("expected nil for exit 0, got %v", err)
	}

	var es *exitStatus
	if err := outcomeStatus(&process.Outcome{ExitCode: 2}, nil); !errors.As(err, &es) || es.code != 2 || es.err != nil {
		t.Errorf("expected silent exit 2, got %v", err)
	}

	timedOut := &process.TimeoutExceeded{Binary: "sleep", Signal: syscall.SIGKILL}
	if err := outcomeStatus(&process.Outcome{ExitCode: 137}, timedOut); !errors.As(err, &es) || es.code != apperrors.ExitTimedOut {
		t.Errorf("expected exit 124, got %v", err)
	}

	interrupted := &process.TimeoutExceeded{Binary: "sleep", Signal: syscall.SIGTERM, Cause: errors.New("canceled")}
	if err := outcomeStatus(&process.Outcome{ExitCode: 143}, interrupted); !errors.As(err, &es) || es.code != 143 {
		t.Errorf("expected the child's status when interrupted, got %v", err)
	}

	launch := &process.LaunchError{Binary: "x", Err: errors.New("boom")}
	if err := outcomeStatus(nil, launch); err != launch {
		t.Errorf("expected launch error to pass through, got %v", err)
	}
}
