package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/kbukum/watchdog/errors"
	"github.com/kbukum/watchdog/process"
	"github.com/kbukum/watchdog/resilience"
)

type runFlags struct {
	timeout     time.Duration
	gracePeriod time.Duration
	signal      string
	retries     int
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [flags] [--] command [args...]",
		Short: "Run a command under a deadline",
		Long: `Run a command under a deadline.

When the timeout elapses the command's process group receives the graceful
signal; if it is still running after the grace period it is killed.

Exit status is the command's own, or:
  124  the command timed out
  125  watchdog itself failed
  126  the command could not be executed
  127  the command was not found`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, f, args)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().DurationVarP(&f.timeout, "timeout", "t", 0, "Deadline for the command (0 disables it)")
	cmd.Flags().DurationVarP(&f.gracePeriod, "grace-period", "k", 0, "Wait between the graceful signal and the kill")
	cmd.Flags().StringVarP(&f.signal, "signal", "s", "", "Graceful signal sent on timeout (default TERM)")
	cmd.Flags().IntVar(&f.retries, "retries", 0, "Attempts for commands that time out")

	return cmd
}

func (a *app) run(cmd *cobra.Command, f runFlags, args []string) error {
	cfg := a.cfg.Supervisor
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if flags.Changed("grace-period") {
		cfg.GracePeriod = f.gracePeriod
	}
	if flags.Changed("signal") {
		cfg.Signal = f.signal
	}

	sup, err := process.New(cfg,
		process.WithLogger(a.log),
		process.WithMetrics(a.metrics),
	)
	if err != nil {
		return err
	}

	runnerCfg := a.cfg.Runner
	if flags.Changed("retries") {
		if f.retries < 1 {
			return apperrors.InvalidInput("retries", "must be at least 1")
		}
		retry := resilience.DefaultRetryConfig()
		if runnerCfg.Retry != nil {
			retry = *runnerCfg.Retry
		}
		retry.MaxAttempts = f.retries
		runnerCfg.Retry = &retry
	}
	runner := process.NewRunner(sup, runnerCfg)

	out, runErr := runner.Run(cmd.Context(), process.Command{
		Binary: args[0],
		Args:   args[1:],
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})

	if a.jsonOutput && out != nil {
		_ = writeJSON(cmd.ErrOrStderr(), out)
	}
	return outcomeStatus(out, runErr)
}

// outcomeStatus maps a run to the CLI exit status. A run stopped because
// watchdog itself was interrupted exits with the child's own status.
func outcomeStatus(out *process.Outcome, err error) error {
	var te *process.TimeoutExceeded
	switch {
	case err == nil:
		if out.ExitCode == 0 {
			return nil
		}
		return &exitStatus{code: out.ExitCode}
	case errors.As(err, &te) && te.Cause != nil && out != nil:
		return &exitStatus{code: out.ExitCode}
	case errors.As(err, &te):
		return &exitStatus{code: apperrors.ExitTimedOut, err: err}
	default:
		return err
	}
}
