package process

import (
	"encoding/json"
	"os"
	"time"
)

// State is a step of the watchdog's escalation.
type State int

const (
	// StateRunning: the deadline has not elapsed.
	StateRunning State = iota
	// StateGracePeriod: the graceful signal was sent.
	StateGracePeriod
	// StateForceKilled: the forcible signal was sent.
	StateForceKilled
	// StateExited: the child has exited.
	StateExited
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateGracePeriod:
		return "grace_period"
	case StateForceKilled:
		return "force_killed"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the terminal result of a supervised run. The child is never
// alive when an Outcome is returned.
type Outcome struct {
	// RunID identifies the run in logs and traces.
	RunID string
	// Binary is the command that was run.
	Binary string
	// PID was the child's process id.
	PID int
	// State is the escalation step in effect when the child's exit was
	// observed: StateRunning for a natural exit, StateGracePeriod when it
	// exited after the graceful signal, StateForceKilled otherwise.
	State State
	// ExitCode is the child's exit code, or 128+n when signal n killed it.
	ExitCode int
	// Signal is the last signal delivered by the watchdog, nil if none.
	Signal os.Signal
	// Duration is the wall-clock time from launch to reaping.
	Duration time.Duration
	// Stdout and Stderr hold output captured when the Command had no
	// writers of its own.
	Stdout []byte
	Stderr []byte
}

// TimedOut reports whether the deadline path was taken.
func (o *Outcome) TimedOut() bool {
	return o.Signal != nil
}

// Completed reports whether the child exited on its own before any signal.
func (o *Outcome) Completed() bool {
	return o.Signal == nil
}

// Forced reports whether the child had to be stopped with the forcible signal.
func (o *Outcome) Forced() bool {
	return o.State == StateForceKilled
}

// result labels the outcome for metrics and reports.
func (o *Outcome) result() string {
	switch {
	case o.Forced():
		return "force_killed"
	case o.TimedOut():
		return "timed_out"
	default:
		return "completed"
	}
}

type outcomeJSON struct {
	RunID      string `json:"run_id"`
	Binary     string `json:"binary"`
	PID        int    `json:"pid"`
	Result     string `json:"result"`
	State      State  `json:"state"`
	ExitCode   int    `json:"exit_code"`
	Signal     string `json:"signal"`
	DurationMs int64  `json:"duration_ms"`
}

// MarshalJSON renders the outcome without captured output.
func (o *Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(outcomeJSON{
		RunID:      o.RunID,
		Binary:     o.Binary,
		PID:        o.PID,
		Result:     o.result(),
		State:      o.State,
		ExitCode:   o.ExitCode,
		Signal:     SignalName(o.Signal),
		DurationMs: o.Duration.Milliseconds(),
	})
}
