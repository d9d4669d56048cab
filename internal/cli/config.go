package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the yaml application configuration. Every field has a
// working default; a missing config file is not an error.
type Config struct {
	// DataDir holds the database and the key/value file.
	DataDir string `yaml:"data_dir"`

	Onset struct {
		// Threshold is the mean-magnitude energy threshold (0-255).
		Threshold float64 `yaml:"threshold"`
		// DebounceMs is the minimum spacing between onsets.
		DebounceMs int `yaml:"debounce_ms"`
	} `yaml:"onset"`

	// FlushDebounceMs is the counter's dirty-flush delay.
	FlushDebounceMs int `yaml:"flush_debounce_ms"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	var cfg Config
	cfg.DataDir = defaultDataDir()
	cfg.Onset.Threshold = 30
	cfg.Onset.DebounceMs = 500
	cfg.FlushDebounceMs = 250
	return cfg
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".leveller"
	}
	return filepath.Join(home, ".leveller")
}

// LoadConfig reads the yaml file at path, overlaying the defaults.
// An empty path loads <data_dir>/config.yaml; a missing file yields
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DBPath returns the SQLite database location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "leveller.db")
}

// KVPath returns the key/value file location.
func (c Config) KVPath() string {
	return filepath.Join(c.DataDir, "kv.json")
}

// OnsetDebounce returns the onset debounce as a duration.
func (c Config) OnsetDebounce() time.Duration {
	return time.Duration(c.Onset.DebounceMs) * time.Millisecond
}

// FlushDebounce returns the counter flush delay as a duration.
func (c Config) FlushDebounce() time.Duration {
	return time.Duration(c.FlushDebounceMs) * time.Millisecond
}
