package config

import (
	"os"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "obo2rdf.yaml"
	// UserConfigDir is the directory for user-level config, relative to the home directory
	UserConfigDir = ".config/obo2rdf"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	fs     afero.Fs
	logger log.Logger

	// HomeDir and WorkDir default to the process' home and working directories
	HomeDir string
	WorkDir string
}

// NewLoader creates a loader reading from fs
func NewLoader(fs afero.Fs, logger log.Logger) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	l := &Loader{fs: fs, logger: logger}
	if home, err := os.UserHomeDir(); err == nil {
		l.HomeDir = home
	}
	if cwd, err := os.Getwd(); err == nil {
		l.WorkDir = cwd
	}
	return l
}

// Load loads configuration with layered precedence:
//  1. Default config
//  2. User config (~/.config/obo2rdf/config.yaml)
//  3. Project config (obo2rdf.yaml in the working directory or a parent), or
//     explicitPath when it is set
//  4. overrides, typically built from command line flags
//
// The result is validated.
func (l *Loader) Load(explicitPath string, overrides *Config) (*Config, error) {
	config := DefaultConfig()

	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		userConfig, err := decodeFile(l.fs, userConfigPath, &Config{})
		switch {
		case err == nil:
			level.Debug(l.logger).Log("msg", "loaded user config", "path", userConfigPath)
			config.Merge(userConfig)
		case !os.IsNotExist(errors.Cause(err)):
			level.Warn(l.logger).Log("msg", "failed to load user config", "path", userConfigPath, "err", err)
		}
	}

	projectConfigPath := explicitPath
	if projectConfigPath == "" {
		projectConfigPath = l.findProjectConfig()
	}
	if projectConfigPath != "" {
		projectConfig, err := decodeFile(l.fs, projectConfigPath, &Config{})
		if err != nil {
			if explicitPath != "" {
				return nil, err
			}
			level.Warn(l.logger).Log("msg", "failed to load project config", "path", projectConfigPath, "err", err)
		} else {
			level.Debug(l.logger).Log("msg", "loaded project config", "path", projectConfigPath)
			config.Merge(projectConfig)
		}
	} else {
		level.Debug(l.logger).Log("msg", "no project config found")
	}

	config.Merge(overrides)

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return config, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	if l.HomeDir == "" {
		return ""
	}
	return filepath.Join(l.HomeDir, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for obo2rdf.yaml in the working directory and its parents
func (l *Loader) findProjectConfig() string {
	if l.WorkDir == "" {
		return ""
	}

	dir := l.WorkDir
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if ok, _ := afero.Exists(l.fs, configPath); ok {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
