package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ayoisaiah/worklog/internal/osutil"
)

// viperKeys defines the mapping between config keys and their Viper counterparts.
const (
	keyServerAddress  = "server.address"
	keyServerPort     = "server.port"
	keyStateDriver    = "state.driver"
	keyStateFile      = "state.file"
	keyStateDBFile    = "state.db_file"
	keyStateReload    = "state.reload_delay"
	keyStateWatch     = "state.watch"
	keyJiraBaseURL    = "jira.base_url"
	keyJiraEmail      = "jira.email"
	keyJiraAPIToken   = "jira.api_token"
	keyTempoBaseURL   = "tempo.base_url"
	keyTempoAPIToken  = "tempo.api_token"
	keyTempoAccountID = "tempo.account_id"
	keySubmitCmd      = "submit.cmd"
	keyLogFile        = "log.file"
	keyLogLevel       = "log.level"
	keyLogJSON        = "log.json"
	keyLogMaxSize     = "log.max_size_mb"
	keyLogMaxBackups  = "log.max_backups"
	keyDisplayDark    = "display.dark_theme"
	keyDisplayNoColor = "display.no_color"
)

const defaultTempoAPIURL = "https://api.tempo.io"

// envBindings maps config keys to the environment variables that override
// them.
var envBindings = map[string]string{
	keyServerPort:     "TRACKER_PORT",
	keyStateFile:      "JSON_FILE",
	keyJiraBaseURL:    "JIRA_BASE_URL",
	keyJiraEmail:      "JIRA_EMAIL",
	keyJiraAPIToken:   "JIRA_API_TOKEN",
	keyTempoBaseURL:   "TEMPO_BASE_URL",
	keyTempoAPIToken:  "TEMPO_API_TOKEN",
	keyTempoAccountID: "JIRA_ACCOUNT_ID",
}

// WithViperConfig returns an Option that loads configuration from the YAML
// file at configPath, writing the defaults there first if it does not exist.
// Environment variables take precedence over the file.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setupViper(v, c)

		err := v.ReadInConfig()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return errReadConfig.Wrap(err)
			}

			// written before the environment is bound so credentials from
			// the environment never end up in the file
			err = os.MkdirAll(filepath.Dir(configPath), osutil.DirPermission)
			if err != nil {
				return errWriteConfig.Wrap(err)
			}

			if err = v.WriteConfig(); err != nil {
				return errWriteConfig.Wrap(err)
			}
		}

		for key, env := range envBindings {
			if err = v.BindEnv(key, env); err != nil {
				return err
			}
		}

		c.ConfigPath = configPath

		return loadViperConfig(v, c)
	}
}

// setupViper registers the defaults. File locations default to whatever c
// already holds.
func setupViper(v *viper.Viper, c *Config) {
	v.SetDefault(keyServerAddress, "127.0.0.1")
	v.SetDefault(keyServerPort, 8080)
	v.SetDefault(keyStateDriver, DriverJSON)
	v.SetDefault(keyStateFile, c.State.File)
	v.SetDefault(keyStateDBFile, c.State.DBFile)
	v.SetDefault(keyStateReload, "1s")
	v.SetDefault(keyStateWatch, true)
	v.SetDefault(keyJiraBaseURL, "")
	v.SetDefault(keyJiraEmail, "")
	v.SetDefault(keyJiraAPIToken, "")
	v.SetDefault(keyTempoBaseURL, defaultTempoAPIURL)
	v.SetDefault(keyTempoAPIToken, "")
	v.SetDefault(keyTempoAccountID, "")
	v.SetDefault(keySubmitCmd, "")
	v.SetDefault(keyLogFile, c.Log.File)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogJSON, false)
	v.SetDefault(keyLogMaxSize, 10)
	v.SetDefault(keyLogMaxBackups, 3)
	v.SetDefault(keyDisplayDark, true)
	v.SetDefault(keyDisplayNoColor, false)
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	if err := v.Unmarshal(c); err != nil {
		return errReadConfig.Wrap(err)
	}

	return nil
}
