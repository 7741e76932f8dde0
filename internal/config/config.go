// Package config loads Gremlin settings from defaults, a TOML file and the
// environment.
//
// Sources, highest precedence first:
//  1. Command-line flags (applied by the caller after Load)
//  2. GREMLIN_* environment variables
//  3. The config file: --config, else $XDG_CONFIG_HOME/gremlin/config.toml,
//     else ~/.config/gremlin/config.toml
//  4. Built-in defaults
//
// A missing file at the default location is not an error. A missing file
// named explicitly is.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/integrations"
	"github.com/matzehuels/gremlin/pkg/integrations/npms"
)

// Themes understood by the TUI.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Default values.
const (
	DefaultDebounce = 350 * time.Millisecond
	DefaultTheme    = ThemeDark
)

// Environment variable names.
const (
	EnvBaseURL  = "GREMLIN_BASE_URL"
	EnvPageSize = "GREMLIN_PAGE_SIZE"
	EnvDebounce = "GREMLIN_DEBOUNCE"
	EnvTimeout  = "GREMLIN_TIMEOUT"
	EnvTheme    = "GREMLIN_THEME"
)

// MaxPageSize is the largest page size the suggestions endpoint accepts.
const MaxPageSize = npms.MaxPageSize

// Config holds the effective settings.
type Config struct {
	BaseURL   string   `toml:"base_url"`
	PageSize  int      `toml:"page_size"`
	Debounce  Duration `toml:"debounce"`
	Timeout   Duration `toml:"timeout"`
	Theme     string   `toml:"theme"`
	UserAgent string   `toml:"user_agent,omitempty"`
}

// Duration is a time.Duration written as a Go duration string ("350ms").
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

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL:  npms.DefaultBaseURL,
		PageSize: npms.DefaultPageSize,
		Debounce: Duration{DefaultDebounce},
		Timeout:  Duration{integrations.DefaultTimeout},
		Theme:    DefaultTheme,
	}
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gremlin", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gremlin", "config.toml")
}

// Load builds a Config from defaults, the file at path (or [DefaultPath]
// when path is empty) and the environment. It returns the config and the
// file actually read, which is empty when no file was found.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	used := ""
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
			used = path
		} else if explicit {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, used, nil
}

// applyEnv overrides cfg with any GREMLIN_* variables that are set.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s must be an integer", EnvPageSize)
		}
		cfg.PageSize = n
	}
	if v := os.Getenv(EnvDebounce); v != "" {
		if err := cfg.Debounce.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s must be a duration", EnvDebounce)
		}
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if err := cfg.Timeout.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s must be a duration", EnvTimeout)
		}
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Theme = strings.ToLower(strings.TrimSpace(v))
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := errors.ValidateURL(c.BaseURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "base_url")
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return errors.New(errors.ErrCodeInvalidConfig, "page_size must be between 1 and %d, got %d", MaxPageSize, c.PageSize)
	}
	if c.Debounce.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "debounce cannot be negative")
	}
	if c.Timeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout cannot be negative")
	}
	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "theme must be %q or %q, got %q", ThemeDark, ThemeLight, c.Theme)
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
