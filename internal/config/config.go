// Package config loads and writes the .cwf/config.yaml settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the project-local config location.
const DefaultConfigPath = ".cwf/config.yaml"

// Config is the full settings tree. Zero values fall back to defaults at
// the accessor level, so a partial config file is always valid.
type Config struct {
	DB       DBConfig       `yaml:"db" mapstructure:"db"`
	Autosave AutosaveConfig `yaml:"autosave" mapstructure:"autosave"`
	UI       UIConfig       `yaml:"ui" mapstructure:"ui"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	User     UserConfig     `yaml:"user" mapstructure:"user"`
}

// DBConfig locates the shared database file.
type DBConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AutosaveConfig carries the editor timings in milliseconds. They are
// empirical constants from field use, kept as configuration on purpose.
type AutosaveConfig struct {
	DelayMS       int `yaml:"delay_ms" mapstructure:"delay_ms"`
	BlurGraceMS   int `yaml:"blur_grace_ms" mapstructure:"blur_grace_ms"`
	SavedLingerMS int `yaml:"saved_linger_ms" mapstructure:"saved_linger_ms"`
}

// UIConfig holds display toggles.
type UIConfig struct {
	ShowStatusBar bool `yaml:"show_status_bar" mapstructure:"show_status_bar"`
	ShowCounts    bool `yaml:"show_counts" mapstructure:"show_counts"`
}

// LogConfig enables the debug log file.
type LogConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Level string `yaml:"level" mapstructure:"level"`
}

// UserConfig identifies the operator for first-touch assignment.
type UserConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
}

// Default timing values, matching the autosave package defaults.
const (
	defaultDelayMS       = 5000
	defaultBlurGraceMS   = 100
	defaultSavedLingerMS = 1500
)

// Delay returns the debounce delay with defaults applied.
func (c AutosaveConfig) Delay() time.Duration {
	if c.DelayMS <= 0 {
		return defaultDelayMS * time.Millisecond
	}
	return time.Duration(c.DelayMS) * time.Millisecond
}

// BlurGrace returns the blur grace period with defaults applied.
func (c AutosaveConfig) BlurGrace() time.Duration {
	if c.BlurGraceMS <= 0 {
		return defaultBlurGraceMS * time.Millisecond
	}
	return time.Duration(c.BlurGraceMS) * time.Millisecond
}

// SavedLinger returns the Saved indicator linger with defaults applied.
func (c AutosaveConfig) SavedLinger() time.Duration {
	if c.SavedLingerMS <= 0 {
		return defaultSavedLingerMS * time.Millisecond
	}
	return time.Duration(c.SavedLingerMS) * time.Millisecond
}

// DBPath returns the database path with the project-local default applied.
func (c DBConfig) DBPath() string {
	if c.Path == "" {
		return filepath.Join(".cwf", "cwf.db")
	}
	return c.Path
}

// Username returns the configured operator, falling back to $USER.
func (c UserConfig) Username() string {
	if c.Name != "" {
		return c.Name
	}
	return os.Getenv("USER")
}

// Default returns the settings written by `cwf init`.
func Default() Config {
	return Config{
		DB: DBConfig{Path: filepath.Join(".cwf", "cwf.db")},
		Autosave: AutosaveConfig{
			DelayMS:       defaultDelayMS,
			BlurGraceMS:   defaultBlurGraceMS,
			SavedLingerMS: defaultSavedLingerMS,
		},
		UI:  UIConfig{ShowStatusBar: true, ShowCounts: true},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the config file. An explicit path must exist; with an empty
// path the project-local location is tried, then the home fallback, and a
// missing file yields Default(). Returns the config and the path it came
// from ("" when defaults were used).
func Load(path string) (Config, string, error) {
	if path != "" {
		cfg, err := read(path)
		if err != nil {
			return Config{}, "", err
		}
		return cfg, path, nil
	}

	for _, candidate := range []string{DefaultConfigPath, homeConfigPath()} {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		cfg, err := read(candidate)
		if err != nil {
			return Config{}, "", err
		}
		return cfg, candidate, nil
	}

	return Default(), "", nil
}

func read(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteDefaultConfig creates path with the default settings. Fails if the
// file already exists.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cwf", "config.yaml")
}
