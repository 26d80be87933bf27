// Package config loads and validates the smackctl configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where smackctl looks for its configuration when no
// path is given.
const DefaultPath = "/etc/smack/smackctl.toml"

// Load errors.
var (
	// ErrFileNotFound is returned when the configuration file does not
	// exist.
	ErrFileNotFound = errors.New("config: file not found")

	// ErrInvalidTOML is returned when the file does not parse.
	ErrInvalidTOML = errors.New("config: invalid TOML")
)

// Config is the smackctl configuration.
type Config struct {
	Smackfs SmackfsConfig `toml:"smackfs"`
	Rules   RulesConfig   `toml:"rules"`
	Cipso   CipsoConfig   `toml:"cipso"`
	Logging LogConfig     `toml:"logging"`
}

// SmackfsConfig selects the control surface.
type SmackfsConfig struct {
	// Path overrides mount point discovery. Empty means probe the
	// conventional smackfs mount points.
	Path string `toml:"path"`
}

// RulesConfig locates the access rule files.
type RulesConfig struct {
	// Dir is the directory of rule files applied by "smackctl apply"
	// and watched by "smackctl watch".
	Dir string `toml:"dir"`

	// WatchDebounce is the quiet period before the watcher re-applies
	// changed rules.
	WatchDebounce Duration `toml:"watch_debounce"`
}

// CipsoConfig locates the CIPSO mapping files.
type CipsoConfig struct {
	// Dir is the directory of mapping files applied by
	// "smackctl apply".
	Dir string `toml:"dir"`
}

// LogConfig controls smackctl logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Duration is a time.Duration that unmarshals from TOML strings like
// "200ms" or "2s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Load reads and validates the configuration file at path. Missing
// values take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTOML, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the configuration at path, falling back to the
// defaults when the file does not exist. Any other failure is an error.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, ErrFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}
