// Package config assembles worklog's settings from the config file, the
// environment and command-line flags
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ayoisaiah/worklog/internal/pathutil"
)

type (
	// Config holds all configuration settings.
	Config struct {
		Jira    JiraConfig    `mapstructure:"jira"`
		Tempo   TempoConfig   `mapstructure:"tempo"`
		Server  ServerConfig  `mapstructure:"server"`
		Log     LogConfig     `mapstructure:"log"`
		State   StateConfig   `mapstructure:"state"`
		Submit  SubmitConfig  `mapstructure:"submit"`
		Display DisplayConfig `mapstructure:"display"`
		// ConfigPath is the file the settings were read from.
		ConfigPath string `mapstructure:"-"`
	}

	// ServerConfig holds the HTTP listener settings.
	ServerConfig struct {
		Address string `mapstructure:"address"`
		Port    int    `mapstructure:"port"`
	}

	// StateConfig selects and locates the durable tracker store.
	StateConfig struct {
		Driver      string        `mapstructure:"driver"`
		File        string        `mapstructure:"file"`
		DBFile      string        `mapstructure:"db_file"`
		ReloadDelay time.Duration `mapstructure:"reload_delay"`
		Watch       bool          `mapstructure:"watch"`
	}

	// JiraConfig holds the credentials used to resolve issue keys.
	JiraConfig struct {
		BaseURL  string `mapstructure:"base_url"`
		Email    string `mapstructure:"email"`
		APIToken string `mapstructure:"api_token"`
	}

	// TempoConfig holds the credentials used to submit worklogs.
	TempoConfig struct {
		BaseURL   string `mapstructure:"base_url"`
		APIToken  string `mapstructure:"api_token"`
		AccountID string `mapstructure:"account_id"`
	}

	// SubmitConfig holds settings for the submit operation.
	SubmitConfig struct {
		// Cmd runs after a successful submission.
		Cmd string `mapstructure:"cmd"`
	}

	// LogConfig holds logging settings.
	LogConfig struct {
		File       string `mapstructure:"file"`
		Level      string `mapstructure:"level"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		JSON       bool   `mapstructure:"json"`
	}

	// DisplayConfig holds terminal output settings.
	DisplayConfig struct {
		DarkTheme bool `mapstructure:"dark_theme"`
		NoColor   bool `mapstructure:"no_color"`
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v0.3.0"

// Storage drivers.
const (
	DriverJSON = "json"
	DriverBolt = "bolt"
)

var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// New creates a Config whose file locations default to paths and applies
// opts in order. The result is validated.
func New(paths *pathutil.Paths, opts ...Option) (*Config, error) {
	cfg := &Config{
		ConfigPath: paths.ConfigFile,
		State: StateConfig{
			File:   paths.StateFile,
			DBFile: paths.DBFile,
		},
		Log: LogConfig{
			File: paths.LogFile,
		},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, errConfigOption.Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.State.File, &c.State.DBFile, &c.Log.File} {
		if *p == "" {
			continue
		}

		expanded, err := pathutil.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding path: %w", err)
		}

		*p = expanded
	}

	return nil
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
