package config

import (
	"net/url"
	"slices"
	"strings"
)

var (
	minPort = 1
	maxPort = 65535

	drivers   = []string{DriverJSON, DriverBolt}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if c.Server.Port < minPort || c.Server.Port > maxPort {
		return errInvalidPort.Fmt(c.Server.Port, minPort, maxPort)
	}

	if err := c.validateState(); err != nil {
		return err
	}

	if err := c.validateCredentials(); err != nil {
		return err
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return errInvalidLogLevel.Fmt(c.Log.Level, strings.Join(logLevels, ", "))
	}

	return nil
}

func (c *Config) validateState() error {
	if !slices.Contains(drivers, c.State.Driver) {
		return errInvalidDriver.Fmt(c.State.Driver, strings.Join(drivers, ", "))
	}

	if c.State.Driver == DriverJSON && strings.TrimSpace(c.State.File) == "" {
		return errEmptyPath.Fmt("state file")
	}

	if c.State.Driver == DriverBolt && strings.TrimSpace(c.State.DBFile) == "" {
		return errEmptyPath.Fmt("database file")
	}

	if c.State.ReloadDelay < 0 {
		return errNegativeReloadDelay.Fmt(c.State.ReloadDelay)
	}

	return nil
}

// validateCredentials checks that each upstream service is either fully
// configured or not configured at all.
func (c *Config) validateCredentials() error {
	if c.Jira.APIToken != "" {
		if c.Jira.Email == "" {
			return errMissingSetting.Fmt("jira.email", "jira.api_token")
		}

		if err := validateBaseURL("jira.base_url", c.Jira.BaseURL); err != nil {
			return err
		}
	}

	if c.Tempo.APIToken != "" {
		// worklogs are booked against numeric issue ids only Jira can resolve
		if c.Jira.APIToken == "" {
			return errMissingSetting.Fmt("jira.api_token", "tempo.api_token")
		}

		if c.Tempo.AccountID == "" {
			return errMissingSetting.Fmt("tempo.account_id", "tempo.api_token")
		}

		if err := validateBaseURL("tempo.base_url", c.Tempo.BaseURL); err != nil {
			return err
		}
	}

	return nil
}

func validateBaseURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errInvalidURL.Fmt(key, raw)
	}

	return nil
}

// JiraEnabled reports whether issue keys can be resolved against Jira.
func (c *Config) JiraEnabled() bool {
	return c.Jira.APIToken != ""
}

// TempoEnabled reports whether worklogs can be submitted to Tempo.
func (c *Config) TempoEnabled() bool {
	return c.Tempo.APIToken != ""
}
