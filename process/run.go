package process

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/watchdog/errors"
	"github.com/kbukum/watchdog/logger"
	"github.com/kbukum/watchdog/observability"
	"github.com/kbukum/watchdog/timer"
	"github.com/kbukum/watchdog/validation"
)

const (
	// NoTimeout disables the deadline: the command runs to completion.
	NoTimeout time.Duration = 0
	// DefaultGracePeriod is the wait between the graceful and the forcible
	// signal when none is configured.
	DefaultGracePeriod = 5 * time.Second
)

type options struct {
	grace   time.Duration
	signals Signals
	log     *logger.Logger
	metrics *observability.Metrics
	dir     string
	env     []string
	// deliver replaces group signalling in tests.
	deliver func(target, os.Signal) error
}

// Option configures a run.
type Option func(*options)

// WithGracePeriod sets the wait between the graceful and the forcible signal.
func WithGracePeriod(d time.Duration) Option {
	return func(o *options) { o.grace = d }
}

// WithSignals sets the graceful and forcible signals. Nil fields keep the
// platform defaults.
func WithSignals(s Signals) Option {
	return func(o *options) { o.signals = s }
}

// WithLogger sets the logger. The global logger is used otherwise.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records run metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithDir sets the working directory for commands that do not set one.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithEnv adds environment variables (key=value) ahead of the command's own.
func WithEnv(env ...string) Option {
	return func(o *options) { o.env = append(o.env, env...) }
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger()
	}
	o.signals = o.signals.withDefaults()
	return o
}

// CallWithTimeout runs argv with the child's stdout and stderr connected to
// this process's, and returns its exit code. A non-zero exit code is not an
// error. When the deadline elapses the child is stopped and the returned
// error is a *TimeoutExceeded naming the signal that ended it; the exit code
// is then -1. A timeout of NoTimeout lets the command run to completion.
func CallWithTimeout(argv []string, timeout time.Duration, opts ...Option) (int, error) {
	if err := validation.New().NotEmpty("argv", argv).Err(); err != nil {
		return -1, err
	}
	out, err := Run(context.Background(), Command{
		Binary: argv[0],
		Args:   argv[1:],
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, timeout, opts...)
	if err != nil {
		return -1, err
	}
	return out.ExitCode, nil
}

// Run starts cmd and supervises it until it exits, escalating once timeout
// elapses or ctx is done. It returns only after the child has been reaped
// and its process group swept.
//
// On the deadline path Run returns the Outcome together with a
// *TimeoutExceeded. A *LaunchError is returned when the command could not be
// started, and a *SupervisorError when a signal could not be delivered to a
// live child.
func Run(ctx context.Context, cmd Command, timeout time.Duration, opts ...Option) (*Outcome, error) {
	o := newOptions(opts)
	if cmd.Dir == "" {
		cmd.Dir = o.dir
	}
	if len(o.env) > 0 {
		cmd.Env = append(append([]string{}, o.env...), cmd.Env...)
	}

	grace := cmd.GracePeriod
	if grace == 0 {
		grace = o.grace
	}
	if err := validateRun(cmd, timeout, grace, o.signals); err != nil {
		return nil, err
	}
	if grace == 0 {
		grace = DefaultGracePeriod
	}

	runID := uuid.NewString()
	ctx, span := observability.StartSpan(ctx, observability.SpanRun, trace.WithAttributes(
		attribute.String(observability.AttrRunID, runID),
		attribute.String(observability.AttrBinary, cmd.Binary),
		attribute.Int64(observability.AttrTimeoutMs, timeout.Milliseconds()),
		attribute.Int64(observability.AttrGraceMs, grace.Milliseconds()),
	))
	log := o.log.WithContext(ctx).WithComponent("process").WithFields(logger.Fields(
		logger.FieldRunID, runID,
		logger.FieldBinary, cmd.Binary,
	))

	out := &Outcome{RunID: runID, Binary: cmd.Binary, State: StateRunning}
	var stdout, stderr bytes.Buffer
	so, se := cmd.Stdout, cmd.Stderr
	if so == nil {
		so = &stdout
	}
	if se == nil {
		se = &stderr
	}

	clock := timer.Start()
	ch, err := launch(cmd, grace, so, se, log)
	if err != nil {
		o.metrics.RecordFailure(ctx, cmd.Binary, string(apperrors.FromError(err).Code))
		log.Error("launch failed", logger.ErrorFields("launch", err))
		observability.EndSpan(span, err)
		return nil, err
	}
	out.PID = ch.pid
	span.SetAttributes(attribute.Int(observability.AttrPID, ch.pid))
	o.metrics.RecordStart(ctx, cmd.Binary)
	log.Debug("child started", logger.Fields(
		logger.FieldPID, ch.pid,
		logger.FieldArgs, cmd.Args,
		logger.FieldTimeout, timeout.String(),
	))

	wd := &watchdog{
		target:  ch.target(),
		signals: o.signals,
		timeout: timeout,
		grace:   grace,
		log:     log,
		deliver: o.deliver,
		onSignal: func(sig os.Signal) {
			name := SignalName(sig)
			o.metrics.RecordSignal(ctx, cmd.Binary, name)
			span.AddEvent("signal", trace.WithAttributes(attribute.String(observability.AttrSignal, name)))
		},
	}
	v, werr := wd.run(ctx, ch.exited)
	if werr != nil {
		log.Error("supervision failed, killing child directly", logger.ErrorFields("signal", werr))
		o.metrics.RecordFailure(ctx, cmd.Binary, string(apperrors.FromError(werr).Code))
		if !ch.killDirect(grace) {
			out.Duration = clock.Elapsed()
			observability.EndSpan(span, werr)
			return out, werr
		}
	}

	ch.sweep(o.signals.Forcible)
	code, rerr := ch.reap()
	out.Duration, _ = clock.Stop()
	out.State = v.state
	out.Signal = v.signal
	out.ExitCode = code
	if cmd.Stdout == nil {
		out.Stdout = stdout.Bytes()
	}
	if cmd.Stderr == nil {
		out.Stderr = stderr.Bytes()
	}

	o.metrics.RecordOutcome(ctx, cmd.Binary, out.result(), out.Duration)
	span.SetAttributes(
		attribute.Int(observability.AttrExitCode, code),
		attribute.String(observability.AttrOutcome, out.result()),
	)
	log.Debug("child exited", logger.Fields(
		logger.FieldPID, out.PID,
		logger.FieldExitCode, code,
		logger.FieldState, out.State.String(),
		logger.FieldSignal, SignalName(out.Signal),
		logger.FieldDuration, out.Duration.Milliseconds(),
	))

	var runErr error
	switch {
	case werr != nil:
		runErr = werr
	case rerr != nil:
		runErr = apperrors.Internal(rerr)
	case out.TimedOut():
		runErr = &TimeoutExceeded{
			Binary:      cmd.Binary,
			Timeout:     timeout,
			GracePeriod: grace,
			Signal:      out.Signal,
			Forced:      out.Forced(),
			Elapsed:     out.Duration,
			Cause:       v.cause,
		}
	}
	observability.EndSpan(span, runErr)
	return out, runErr
}

func validateRun(cmd Command, timeout, grace time.Duration, sigs Signals) error {
	return validation.New().
		Required("binary", cmd.Binary).
		NonNegative("timeout", timeout).
		NonNegative("grace_period", grace).
		Custom(isUncatchable(sigs.Forcible), "signals.forcible",
			"must be a signal that cannot be caught or ignored").
		Err()
}
