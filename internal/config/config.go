// Package config loads taskcli settings from defaults, TOML files and the
// environment. CLI flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultDataFile  = "tasks.json"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config holds taskcli settings.
type Config struct {
	DataFile     string `toml:"data_file"`
	AtomicWrites bool   `toml:"atomic_writes"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
	NoColor      bool   `toml:"no_color"`

	// DryRun is only set from the command line.
	DryRun bool `toml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DataFile:  DefaultDataFile,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// Load resolves configuration in priority order:
// 1. Defaults
// 2. User config file (<user config dir>/taskcli/config.toml)
// 3. Project config file (taskcli.toml or .taskcli.toml), or explicitPath if set
// 4. Environment variables
func Load(explicitPath string) (*Config, error) {
	cfg := Default()

	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	if explicitPath != "" {
		if err := loadConfigFile(cfg, explicitPath); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", explicitPath, err)
		}
	} else if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be caught by TOML decoding.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataFile) == "" {
		return errors.New("data_file cannot be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log_format %q", c.LogFormat)
	}
	return nil
}

func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func findUserConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "taskcli", "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func findProjectConfigFile() string {
	for _, name := range []string{"taskcli.toml", ".taskcli.toml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// loadFromEnv overrides cfg from TASKCLI_* variables and NO_COLOR.
func loadFromEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("TASKCLI_FILE"); ok && v != "" {
		cfg.DataFile = v
	}
	if v, ok := lookup("TASKCLI_ATOMIC_WRITES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TASKCLI_ATOMIC_WRITES: %w", err)
		}
		cfg.AtomicWrites = b
	}
	if v, ok := lookup("TASKCLI_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup("TASKCLI_LOG_FORMAT"); ok && v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	// https://no-color.org: any non-empty value disables color.
	if v, ok := lookup("NO_COLOR"); ok && v != "" {
		cfg.NoColor = true
	}
	return nil
}
