package process

import (
	"context"
	"time"

	"github.com/kbukum/watchdog/logger"
	"github.com/kbukum/watchdog/validation"
)

func init() {
	if err := validation.RegisterRule("signal", func(name string) bool {
		_, err := ParseSignal(name)
		return err == nil
	}); err != nil {
		panic(err)
	}
}

// Config holds the defaults a Supervisor applies to every run.
type Config struct {
	// Name identifies the supervisor in logs.
	Name string `yaml:"name" mapstructure:"name"`
	// Timeout is the deadline for each run. Zero means no deadline.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0s"`
	// GracePeriod is the wait between the graceful and the forcible signal.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period" validate:"gte=0s"`
	// Signal is the graceful signal name. Empty uses the platform default.
	// The forcible signal is always the platform's uncatchable kill.
	Signal string `yaml:"signal" mapstructure:"signal" validate:"omitempty,signal"`
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "watchdog"
	}
	if c.GracePeriod == 0 {
		c.GracePeriod = DefaultGracePeriod
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Supervisor runs commands with a fixed, validated configuration.
type Supervisor struct {
	cfg  Config
	opts []Option
	log  *logger.Logger
}

// New creates a Supervisor. opts are applied after the configuration, so an
// explicit WithGracePeriod or WithSignals wins over cfg.
func New(cfg Config, opts ...Option) (*Supervisor, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sigs, err := ParseSignals(cfg.Signal, "")
	if err != nil {
		return nil, err
	}

	base := []Option{WithGracePeriod(cfg.GracePeriod), WithSignals(sigs)}
	all := append(base, opts...)
	return &Supervisor{
		cfg:  cfg,
		opts: all,
		log:  newOptions(all).log.WithComponent("runner"),
	}, nil
}

// Name returns the supervisor name.
func (s *Supervisor) Name() string { return s.cfg.Name }

// Config returns the effective configuration.
func (s *Supervisor) Config() Config { return s.cfg }

// Run supervises cmd with the configured timeout. See Run.
func (s *Supervisor) Run(ctx context.Context, cmd Command) (*Outcome, error) {
	return Run(ctx, cmd, s.cfg.Timeout, s.opts...)
}

// Call runs argv with inherited stdio and returns its exit code. See
// CallWithTimeout.
func (s *Supervisor) Call(argv []string) (int, error) {
	return CallWithTimeout(argv, s.cfg.Timeout, s.opts...)
}
