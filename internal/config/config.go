package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all configurable devtick settings.
type Config struct {
	// DataDir is the directory holding the tracking data file. Empty means
	// the XDG data directory; set it to "." to keep the data file in the
	// workspace root.
	DataDir string `json:"data_dir"`

	DurationIntervalSec  int `json:"duration_interval_seconds"`
	HeartbeatIntervalSec int `json:"heartbeat_interval_seconds"`
	KeystrokeIntervalSec int `json:"keystroke_interval_seconds"`

	// IgnorePatterns are glob patterns excluded from the workspace watcher.
	IgnorePatterns []string `json:"ignore_patterns"`

	LogLevel string `json:"log_level"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		DurationIntervalSec:  10,
		HeartbeatIntervalSec: 10,
		KeystrokeIntervalSec: 10,
		IgnorePatterns:       []string{},
		LogLevel:             "INFO",
	}
}

// LoadGlobal reads ~/.config/devtick/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "devtick", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .devtickconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".devtickconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()

	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.DataDir != "" {
			result.DataDir = c.DataDir
		}
		if c.DurationIntervalSec > 0 {
			result.DurationIntervalSec = c.DurationIntervalSec
		}
		if c.HeartbeatIntervalSec > 0 {
			result.HeartbeatIntervalSec = c.HeartbeatIntervalSec
		}
		if c.KeystrokeIntervalSec > 0 {
			result.KeystrokeIntervalSec = c.KeystrokeIntervalSec
		}
		if len(c.IgnorePatterns) > 0 {
			result.IgnorePatterns = c.IgnorePatterns
		}
		if c.LogLevel != "" {
			result.LogLevel = c.LogLevel
		}
	}

	return result
}

// ApplyEnv overlays environment variables on cfg. Variables are read from the
// process environment, which the caller may have seeded from a .env file.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("DEVTICK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DEVTICK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DEVTICK_HEARTBEAT_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HeartbeatIntervalSec = n
		}
	}
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
