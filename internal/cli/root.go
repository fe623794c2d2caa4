package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/watchdog/config"
	apperrors "github.com/kbukum/watchdog/errors"
	"github.com/kbukum/watchdog/logger"
	"github.com/kbukum/watchdog/observability"
)

// app holds state shared by the subcommands.
type app struct {
	configFile string
	logLevel   string
	jsonOutput bool

	cfg       *config.Config
	log       *logger.Logger
	telemetry *observability.Telemetry
	metrics   *observability.Metrics
}

// NewRootCmd returns the watchdog command tree.
func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "watchdog",
		Short: "Run a command with a deadline and make sure it is gone afterwards",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Print reports as JSON")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newVersionCmd(a))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, a
}

// Execute runs the CLI entrypoint and returns the process exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, a := newRootCommand()
	err := root.ExecuteContext(ctx)
	a.shutdown()
	return a.report(root.ErrOrStderr(), err)
}

func (a *app) setup(cmd *cobra.Command) error {
	var opts []config.LoaderOption
	if a.configFile != "" {
		if _, err := os.Stat(a.configFile); err != nil {
			return apperrors.InvalidConfig(err)
		}
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		if err := cfg.Logging.Validate(); err != nil {
			return apperrors.InvalidInput("log-level", err.Error())
		}
	}
	a.cfg = cfg

	logOut := cmd.ErrOrStderr()
	if cfg.Logging.Output == "stdout" {
		logOut = cmd.OutOrStdout()
	}
	a.log = logger.NewWithWriter(&cfg.Logging, cfg.Name, logOut)
	logger.SetGlobalLogger(a.log)

	tel, err := observability.Init(cmd.Context(), cfg.Telemetry)
	if err != nil {
		a.log.Warn("telemetry disabled", logger.ErrorFields("telemetry", err))
		tel = &observability.Telemetry{}
	}
	a.telemetry = tel

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return apperrors.Internal(err)
	}
	a.metrics = metrics
	return nil
}

func (a *app) shutdown() {
	if !a.telemetry.Enabled() {
		return
	}
	ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 5*time.Second)
	defer cancel()
	if err := a.telemetry.Shutdown(ctx); err != nil && a.log != nil {
		a.log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
	}
}

// exitStatus asks Execute to exit with code. err, if set, is reported first.
type exitStatus struct {
	code int
	err  error
}

func (e *exitStatus) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitStatus) Unwrap() error { return e.err }

// report prints err, if any, and returns the exit status for it.
func (a *app) report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	code := -1
	var es *exitStatus
	if errors.As(err, &es) {
		code = es.code
		err = es.err
	}
	if err != nil {
		appErr := apperrors.FromError(err)
		if code < 0 {
			code = appErr.ExitStatus
		}
		a.printError(w, appErr)
	}
	return code
}

func (a *app) printError(w io.Writer, appErr *apperrors.AppError) {
	if a.jsonOutput {
		_ = writeJSON(w, appErr.ToReport())
		return
	}
	fmt.Fprintf(w, "watchdog: %v\n", appErr)
}
