package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/worklog/internal/config"
	"github.com/ayoisaiah/worklog/internal/pathutil"
)

var envVars = []string{
	"TRACKER_PORT",
	"JSON_FILE",
	"JIRA_BASE_URL",
	"JIRA_EMAIL",
	"JIRA_API_TOKEN",
	"JIRA_ACCOUNT_ID",
	"TEMPO_BASE_URL",
	"TEMPO_API_TOKEN",
}

func clearEnv(t *testing.T) {
	t.Helper()

	for _, name := range envVars {
		t.Setenv(name, "")
	}
}

func testPaths(t *testing.T) *pathutil.Paths {
	t.Helper()

	dir := t.TempDir()

	return &pathutil.Paths{
		ConfigFile: filepath.Join(dir, "config", "config.yml"),
		StateFile:  filepath.Join(dir, "data", "state.json"),
		DBFile:     filepath.Join(dir, "data", "worklog.db"),
		LogFile:    filepath.Join(dir, "data", "log", "worklog.log"),
	}
}

// defaultConfig returns a new Config instance with default values.
func defaultConfig(paths *pathutil.Paths) *config.Config {
	return &config.Config{
		ConfigPath: paths.ConfigFile,
		Server: config.ServerConfig{
			Address: "127.0.0.1",
			Port:    8080,
		},
		State: config.StateConfig{
			Driver:      config.DriverJSON,
			File:        paths.StateFile,
			DBFile:      paths.DBFile,
			ReloadDelay: time.Second,
			Watch:       true,
		},
		Tempo: config.TempoConfig{
			BaseURL: "https://api.tempo.io",
		},
		Log: config.LogConfig{
			File:       paths.LogFile,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Display: config.DisplayConfig{
			DarkTheme: true,
		},
	}
}

func TestViperWriteConfig(t *testing.T) {
	clearEnv(t)

	paths := testPaths(t)

	cfg, err := config.New(paths, config.WithViperConfig(paths.ConfigFile))
	require.NoError(t, err)

	assert.Equal(t, defaultConfig(paths), cfg)
	assert.FileExists(t, paths.ConfigFile)

	// the written defaults read back to the same config
	again, err := config.New(paths, config.WithViperConfig(paths.ConfigFile))
	require.NoError(t, err)

	assert.Equal(t, cfg, again)
}

func TestViperReadConfig(t *testing.T) {
	clearEnv(t)

	paths := testPaths(t)

	yml := `server:
  port: 3000
state:
  driver: bolt
  reload_delay: 250ms
  watch: false
jira:
  base_url: https://example.atlassian.net
  email: dev@example.com
  api_token: jira-secret
tempo:
  api_token: tempo-secret
  account_id: 5b10ac8d82e05b22cc7d4ef5
submit:
  cmd: notify-send "worklogs submitted"
log:
  level: debug
`

	require.NoError(t, os.MkdirAll(filepath.Dir(paths.ConfigFile), 0o755))
	require.NoError(t, os.WriteFile(paths.ConfigFile, []byte(yml), 0o600))

	cfg, err := config.New(paths, config.WithViperConfig(paths.ConfigFile))
	require.NoError(t, err)

	want := defaultConfig(paths)
	want.Server.Port = 3000
	want.State.Driver = config.DriverBolt
	want.State.ReloadDelay = 250 * time.Millisecond
	want.State.Watch = false
	want.Jira.BaseURL = "https://example.atlassian.net"
	want.Jira.Email = "dev@example.com"
	want.Jira.APIToken = "jira-secret"
	want.Tempo.APIToken = "tempo-secret"
	want.Tempo.AccountID = "5b10ac8d82e05b22cc7d4ef5"
	want.Submit.Cmd = `notify-send "worklogs submitted"`
	want.Log.Level = "debug"

	assert.Equal(t, want, cfg)
	assert.True(t, cfg.TempoEnabled())
	assert.True(t, cfg.JiraEnabled())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)

	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Setenv("TRACKER_PORT", "9090")
	t.Setenv("JSON_FILE", "~/worklog/state.json")
	t.Setenv("JIRA_BASE_URL", "https://example.atlassian.net")
	t.Setenv("JIRA_EMAIL", "dev@example.com")
	t.Setenv("JIRA_API_TOKEN", "jira-secret")
	t.Setenv("JIRA_ACCOUNT_ID", "5b10ac8d82e05b22cc7d4ef5")
	t.Setenv("TEMPO_API_TOKEN", "tempo-secret")

	paths := testPaths(t)

	cfg, err := config.New(paths, config.WithViperConfig(paths.ConfigFile))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, filepath.Join(home, "worklog", "state.json"), cfg.State.File)
	assert.Equal(t, "dev@example.com", cfg.Jira.Email)
	assert.Equal(t, "jira-secret", cfg.Jira.APIToken)
	assert.Equal(t, "5b10ac8d82e05b22cc7d4ef5", cfg.Tempo.AccountID)
	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddr())

	written, err := os.ReadFile(paths.ConfigFile)
	require.NoError(t, err)

	assert.NotContains(t, string(written), "jira-secret")
	assert.NotContains(t, string(written), "tempo-secret")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	clearEnv(t)

	cases := map[string]string{
		"port out of range":  "server:\n  port: 70000\n",
		"unknown driver":     "state:\n  driver: sqlite\n",
		"negative delay":     "state:\n  reload_delay: -1s\n",
		"tempo account":      "tempo:\n  api_token: secret\n",
		"tempo without jira": "tempo:\n  api_token: secret\n  account_id: 5b10ac8d82e05b22cc7d4ef5\n",
		"jira email":         "jira:\n  api_token: secret\n  base_url: https://example.atlassian.net\n",
		"jira url":           "jira:\n  api_token: secret\n  email: dev@example.com\n  base_url: example.atlassian.net\n",
		"log level":          "log:\n  level: chatty\n",
		"malformed yaml":     "server: [\n",
	}

	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			paths := testPaths(t)

			require.NoError(t, os.MkdirAll(filepath.Dir(paths.ConfigFile), 0o755))
			require.NoError(t, os.WriteFile(paths.ConfigFile, []byte(yml), 0o600))

			_, err := config.New(paths, config.WithViperConfig(paths.ConfigFile))
			assert.Error(t, err)
		})
	}
}
