package process

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/kbukum/watchdog/logger"
	"github.com/kbukum/watchdog/observability"
)

// verdict is what the watchdog decided about a run.
type verdict struct {
	state  State
	signal os.Signal
	cause  error
}

// watchdog drives escalation for one child. It holds only a signalling
// target and never waits on the child itself.
type watchdog struct {
	target   target
	signals  Signals
	timeout  time.Duration
	grace    time.Duration
	log      *logger.Logger
	deliver  func(target, os.Signal) error
	onSignal func(os.Signal)
}

// run blocks until exited is closed, escalating once the timeout elapses or
// ctx is done. A zero timeout disables the deadline.
func (w *watchdog) run(ctx context.Context, exited <-chan struct{}) (v verdict, err error) {
	v = verdict{state: StateRunning}
	defer func() {
		if err == nil {
			w.transition(verdict{state: StateExited})
		}
	}()

	var deadline <-chan time.Time
	if w.timeout > 0 {
		t := time.NewTimer(w.timeout)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case <-exited:
		return v, nil
	case <-deadline:
		w.log.Debug("deadline elapsed", logger.Fields(logger.FieldTimeout, w.timeout.String()))
	case <-ctx.Done():
		v.cause = ctx.Err()
		w.log.Debug("context done", logger.ErrorFields("run", v.cause))
	}

	// An exit that raced the deadline wins.
	select {
	case <-exited:
		return v, nil
	default:
	}

	_, span := observability.StartSpan(ctx, observability.SpanEscalate)
	defer func() { observability.EndSpan(span, err) }()

	delivered, err := w.send(w.signals.Graceful)
	switch {
	case errors.Is(err, errSignalUnsupported):
		w.log.Warn("graceful signal unsupported, escalating", logger.Fields(
			logger.FieldSignal, SignalName(w.signals.Graceful)))
	case err != nil:
		return v, err
	case !delivered:
		<-exited
		return v, nil
	default:
		v.signal = w.signals.Graceful
		v.state = StateGracePeriod
		w.transition(v)
		// A stopped group would hold the graceful signal pending until
		// the forcible one arrives.
		w.target.resume()

		grace := time.NewTimer(w.grace)
		defer grace.Stop()
		select {
		case <-exited:
			return v, nil
		case <-grace.C:
		}
	}

	delivered, err = w.send(w.signals.Forcible)
	if err != nil {
		return v, err
	}
	if delivered {
		v.signal = w.signals.Forcible
		v.state = StateForceKilled
		w.transition(v)
	}
	<-exited
	return v, nil
}

// send delivers sig to the target's group. A target that is already gone
// yields (false, nil).
func (w *watchdog) send(sig os.Signal) (bool, error) {
	deliver := w.deliver
	if deliver == nil {
		deliver = target.signal
	}
	err := deliver(w.target, sig)
	switch {
	case err == nil:
		w.log.Info("signal sent", logger.Fields(
			logger.FieldSignal, SignalName(sig), logger.FieldPID, w.target.pid))
		if w.onSignal != nil {
			w.onSignal(sig)
		}
		return true, nil
	case errors.Is(err, errProcessGone):
		w.log.Debug("signal target already exited", logger.Fields(logger.FieldSignal, SignalName(sig)))
		return false, nil
	case errors.Is(err, errSignalUnsupported) && sig != w.signals.Forcible:
		return false, err
	default:
		return false, &SupervisorError{PID: w.target.pid, Signal: sig, Err: err}
	}
}

func (w *watchdog) transition(v verdict) {
	w.log.Debug("watchdog state changed", logger.Fields(
		logger.FieldState, v.state.String(),
		logger.FieldGracePeriod, w.grace.String(),
	))
}
