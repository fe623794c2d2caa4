// Package validation checks commands and configuration before anything is
// started.
//
// It supports struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as an
// errors.AppError with code INVALID_INPUT.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Timeout        time.Duration `mapstructure:"timeout" validate:"gte=0s"`
//	    GracefulSignal string        `mapstructure:"graceful_signal" validate:"omitempty,signal"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.NotEmpty("argv", argv).NonNegative("timeout", timeout)
//	err := v.Validate()
package validation
