// Package config loads and validates vtmuxd's global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// Config holds the server-wide defaults for new sessions plus daemon
// settings like where attach sockets and logs live.
type Config struct {
	DefaultRows     int    `yaml:"default_rows"`
	DefaultCols     int    `yaml:"default_cols"`
	DefaultShell    string `yaml:"default_shell"`
	Term            string `yaml:"term"`
	ScrollbackLimit int    `yaml:"scrollback_limit"`
	PromptPattern   string `yaml:"prompt_pattern"`
	MaxSessions     int    `yaml:"max_sessions"`
	SocketDir       string `yaml:"socket_dir"`
	LogPath         string `yaml:"log_path"`
}

// Default returns the built-in configuration, matching what vtmuxd runs
// with if no config.yaml is present.
func Default() *Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}
	return &Config{
		DefaultRows:     24,
		DefaultCols:     80,
		DefaultShell:    shell,
		Term:            "xterm-256color",
		ScrollbackLimit: 10000,
		PromptPattern:   `\$\s*$|#\s*$|>\s*$`,
		MaxSessions:     10,
		SocketDir:       "/tmp/terminal",
		LogPath:         filepath.Join(ConfigDir(), "vtmuxd.log"),
	}
}

// ConfigDir returns the vtmuxd configuration directory (~/.vtmux/).
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".vtmux")
	}
	return filepath.Join(home, ".vtmux")
}

// Load reads the config from ~/.vtmux/config.yaml, falling back to
// defaults for anything unset.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(ConfigDir(), "config.yaml"))
}

// LoadFrom reads the config from the given path. If the file does not
// exist, it returns the built-in defaults with no error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to ~/.vtmux/config.yaml, holding an advisory file lock
// for the duration of the write so a concurrent `vtmuxd` process editing
// the same file can't interleave writes.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), "config.yaml"))
}

// SaveTo writes cfg to path under an advisory lock on path+".lock".
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("config: lock %s: %w", path, err)
	}
	defer lock.Unlock()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) validate() error {
	if c.DefaultRows <= 0 {
		return fmt.Errorf("config: default_rows must be positive")
	}
	if c.DefaultCols <= 0 {
		return fmt.Errorf("config: default_cols must be positive")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("config: max_sessions must be positive")
	}
	if c.ScrollbackLimit <= 0 {
		return fmt.Errorf("config: scrollback_limit must be positive")
	}
	if _, err := regexp.Compile(c.PromptPattern); err != nil {
		return fmt.Errorf("config: prompt_pattern: %w", err)
	}
	return nil
}
