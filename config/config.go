package config

import (
	"fmt"

	"github.com/kbukum/watchdog/logger"
	"github.com/kbukum/watchdog/observability"
	"github.com/kbukum/watchdog/process"
	"github.com/kbukum/watchdog/validation"
)

// DefaultName is the service name used for file lookup and telemetry.
const DefaultName = "watchdog"

// Config is the complete watchdog configuration.
type Config struct {
	Name        string               `yaml:"name" mapstructure:"name"`
	Environment string               `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Logging     logger.Config        `yaml:"logging" mapstructure:"logging"`
	Supervisor  process.Config       `yaml:"supervisor" mapstructure:"supervisor"`
	Runner      process.RunnerConfig `yaml:"runner" mapstructure:"runner"`
	Telemetry   observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies default values to every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Supervisor.Name == "" {
		c.Supervisor.Name = c.Name
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
	c.Logging.ApplyDefaults()
	c.Supervisor.ApplyDefaults()
	c.Telemetry.ApplyDefaults(c.Name)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return validation.Validate(c)
}
