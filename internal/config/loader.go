// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone to prevent drift bugs.
//  2. Load .env file via godotenv (non-fatal if absent).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Validate the struct using go-playground/validator.
//
// Validation failures report the offending field paths only, never their
// values, and secrets are SecretString, so the startup error dump is safe
// to print verbatim.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigErrorType categorizes configuration failures for diagnostics.
type ConfigErrorType string

const (
	// ErrParsing indicates an environment value could not be parsed into
	// its target field type (e.g. a non-numeric AMQP_PORT).
	ErrParsing ConfigErrorType = "parsing"

	// ErrValidation indicates a required value is missing or out of range.
	ErrValidation ConfigErrorType = "validation"
)

// ConfigError is the diagnostic error type returned by Load.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load loads and validates the worker configuration from the environment.
// The process must not start consuming without a complete configuration, so
// callers treat any returned error as fatal.
func Load() (*Config, error) {
	// Step 1: Enforce UTC to keep log timestamps and any future scheduling
	// logic consistent across deployments.
	time.Local = time.UTC

	// Step 2: Load .env if present. godotenv does not override variables
	// that are already set, and silently succeeds when no file exists.
	_ = godotenv.Load()

	// Step 3: Process envconfig tags. The empty prefix means tags are read
	// verbatim (envconfig:"AMQP_HOST" reads AMQP_HOST directly).
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	// Step 4: Validate the populated struct.
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, nil
}
