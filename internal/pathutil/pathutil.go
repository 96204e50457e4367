// Package pathutil manages application file paths and locations
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const envName = "WORKLOG_ENV"

// Paths holds all application path configurations.
type Paths struct {
	configDir      string
	configFileName string
	stateFileName  string
	dbFileName     string
	logFileName    string

	// Computed absolute paths
	ConfigFile string
	StateFile  string
	DBFile     string
	LogFile    string
}

// Resolve computes the default locations of the config, state and log files.
func Resolve() (*Paths, error) {
	p := &Paths{
		configDir:      "worklog",
		configFileName: "config.yml",
		stateFileName:  "state.json",
		dbFileName:     "worklog.db",
		logFileName:    "worklog.log",
	}

	p.applyEnvironmentOverrides()

	if err := p.computePaths(); err != nil {
		return nil, err
	}

	return p, nil
}

// Dir returns the name of the application directory.
func (p *Paths) Dir() string {
	return p.configDir
}

func (p *Paths) applyEnvironmentOverrides() {
	env := strings.TrimSpace(os.Getenv(envName))
	if env != "" {
		p.configFileName = fmt.Sprintf("config_%s.yml", env)
		p.stateFileName = fmt.Sprintf("state_%s.json", env)
		p.dbFileName = fmt.Sprintf("worklog_%s.db", env)
		p.logFileName = fmt.Sprintf("worklog_%s.log", env)
	}
}

func (p *Paths) computePaths() error {
	var err error

	relPath := filepath.Join(p.configDir, p.configFileName)

	p.ConfigFile, err = xdg.ConfigFile(relPath)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	dataDir, err := xdg.DataFile(p.configDir)
	if err != nil {
		return fmt.Errorf("resolving data dir: %w", err)
	}

	p.StateFile = filepath.Join(dataDir, p.stateFileName)

	p.DBFile = filepath.Join(dataDir, p.dbFileName)

	p.LogFile = filepath.Join(dataDir, "log", p.logFileName)

	return nil
}

// Expand performs shell-like expansion of a leading ~ and of $VAR references.
func Expand(path string) (string, error) {
	path = os.ExpandEnv(path)

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", path, err)
		}

		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	return path, nil
}

// StripExtension returns the input file name without its extension.
func StripExtension(fileName string) string {
	return fileName[:len(fileName)-len(filepath.Ext(fileName))]
}
