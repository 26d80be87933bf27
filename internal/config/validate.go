package config

import "errors"

// Validation errors.
var (
	ErrInvalidLevel    = errors.New("config: invalid log level")
	ErrInvalidFormat   = errors.New("config: invalid log format")
	ErrMissingRulesDir = errors.New("config: rules dir must not be empty")
	ErrMissingCipsoDir = errors.New("config: cipso dir must not be empty")
	ErrInvalidDebounce = errors.New("config: watch debounce must not be negative")
)

// Validate checks the configuration for values the tools cannot work
// with.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLevel
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return ErrInvalidFormat
	}

	if c.Rules.Dir == "" {
		return ErrMissingRulesDir
	}
	if c.Cipso.Dir == "" {
		return ErrMissingCipsoDir
	}
	if c.Rules.WatchDebounce.Duration < 0 {
		return ErrInvalidDebounce
	}
	return nil
}
