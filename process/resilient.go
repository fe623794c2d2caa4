package process

import (
	"context"
	"errors"

	apperrors "github.com/kbukum/watchdog/errors"
	"github.com/kbukum/watchdog/logger"
	"github.com/kbukum/watchdog/resilience"
)

// RunnerConfig selects the resilience applied by a Runner. Nil fields are
// skipped.
type RunnerConfig struct {
	Retry          *resilience.RetryConfig          `yaml:"retry" mapstructure:"retry"`
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
}

// Runner wraps a Supervisor with retry and circuit breaking. The breaker
// state persists across calls, so commands that keep timing out trip it.
// Supervision itself never retries; a Runner is how a caller opts in.
type Runner struct {
	sup     *Supervisor
	retry   *resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewRunner creates a Runner. An empty config makes Run equivalent to
// sup.Run.
func NewRunner(sup *Supervisor, cfg RunnerConfig) *Runner {
	r := &Runner{sup: sup, retry: cfg.Retry}
	if cfg.CircuitBreaker != nil {
		cb := *cfg.CircuitBreaker
		if cb.Name == "" {
			cb.Name = sup.Name()
		}
		r.breaker = resilience.NewCircuitBreaker(cb)
	}
	return r
}

// Run supervises cmd through the resilience chain. The Outcome of the last
// attempt is returned even when it failed.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Outcome, error) {
	attempt := 0
	call := func() (*Outcome, error) {
		attempt++
		if attempt > 1 {
			r.sup.log.Debug("retrying run", logger.Fields(
				logger.FieldBinary, cmd.Binary, logger.FieldAttempt, attempt))
		}
		return r.once(ctx, cmd)
	}

	if r.retry == nil {
		return call()
	}
	cfg := *r.retry
	if cfg.RetryIf == nil {
		cfg.RetryIf = Retryable
	}
	return resilience.Retry(ctx, cfg, call)
}

func (r *Runner) once(ctx context.Context, cmd Command) (*Outcome, error) {
	if r.breaker == nil {
		return r.sup.Run(ctx, cmd)
	}
	var out *Outcome
	err := r.breaker.Execute(func() error {
		var err error
		out, err = r.sup.Run(ctx, cmd)
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, apperrors.ServiceUnavailable(r.sup.Name()).WithCause(err)
	}
	return out, err
}

// Retryable reports whether a failed run may be attempted again. Launch and
// signal-delivery failures are never retried, nor is a cancelled context.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLaunch) || errors.Is(err, ErrSupervisor) {
		return false
	}
	if !resilience.DefaultRetryIf(err) {
		return false
	}
	return apperrors.FromError(err).Retryable
}
