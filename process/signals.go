package process

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// errProcessGone means the signal found no process to deliver to.
	errProcessGone = errors.New("process already exited")
	// errSignalUnsupported means the platform cannot deliver the signal.
	errSignalUnsupported = errors.New("signal not supported on this platform")
)

// Signals is the per-run signal configuration used by the watchdog.
type Signals struct {
	// Graceful is sent when the deadline elapses. The child may handle it.
	Graceful os.Signal
	// Forcible is sent when the grace period elapses. It must be a signal
	// the child cannot catch or ignore.
	Forcible os.Signal
}

// DefaultSignals returns SIGTERM/SIGKILL on unix and os.Interrupt/os.Kill on
// Windows.
func DefaultSignals() Signals {
	return Signals{Graceful: defaultGraceful, Forcible: defaultForcible}
}

func (s Signals) withDefaults() Signals {
	if s.Graceful == nil {
		s.Graceful = defaultGraceful
	}
	if s.Forcible == nil {
		s.Forcible = defaultForcible
	}
	return s
}

// ParseSignal resolves a signal from a name ("TERM", "SIGTERM", "sigint") or
// a number ("15").
func ParseSignal(name string) (os.Signal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("process: empty signal name")
	}
	sig, ok := lookupSignal(name)
	if !ok {
		return nil, fmt.Errorf("process: unknown signal %q", name)
	}
	return sig, nil
}

// ParseSignals builds a Signals from names. Empty names keep the platform
// defaults.
func ParseSignals(graceful, forcible string) (Signals, error) {
	s := DefaultSignals()
	if graceful != "" {
		sig, err := ParseSignal(graceful)
		if err != nil {
			return Signals{}, err
		}
		s.Graceful = sig
	}
	if forcible != "" {
		sig, err := ParseSignal(forcible)
		if err != nil {
			return Signals{}, err
		}
		s.Forcible = sig
	}
	return s, nil
}

// SignalName returns the conventional name of sig ("SIGTERM"), or "none"
// for nil.
func SignalName(sig os.Signal) string {
	if sig == nil {
		return "none"
	}
	return signalName(sig)
}

// target is the watchdog's handle on a child: enough to signal it, never
// enough to wait on it.
type target struct {
	pid  int
	proc *os.Process
}
