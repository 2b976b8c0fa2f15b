// SPDX-License-Identifier: MPL-2.0

// Package config loads and persists arbor's own tool configuration: fetch
// defaults, the external build tool, and the post-deploy hook. Program
// trees carry their separate key=value config, which lives in
// internal/repo.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "arbor"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix namespaces the environment variables read into the
	// configuration (ARBOR_PROTOCOL, ARBOR_BUILD_TOOL, ...).
	EnvPrefix = "ARBOR"
)

type (
	// Config is arbor's tool configuration.
	Config struct {
		// Protocol rewrites remote URLs on clone: "ssh", "http" or
		// "https". Empty infers the protocol from each URL.
		Protocol string `mapstructure:"protocol" toml:"protocol"`

		// Depth limits fetched history on clone; zero fetches everything.
		Depth int `mapstructure:"depth" toml:"depth"`

		// Verbose enables debug output unless overridden by the flag.
		Verbose bool `mapstructure:"verbose" toml:"verbose"`

		Build BuildConfig `mapstructure:"build" toml:"build"`
		Hooks HooksConfig `mapstructure:"hooks" toml:"hooks"`
	}

	// BuildConfig names the external build tool deploy/build hand off to.
	BuildConfig struct {
		// Tool is the executable invoked by the build command.
		Tool string `mapstructure:"tool" toml:"tool"`
		// Dir is the build output directory, relative to the program root.
		Dir string `mapstructure:"dir" toml:"dir"`
	}

	// HooksConfig holds shell snippets run at traversal boundaries.
	HooksConfig struct {
		// PostDeploy runs in the program root after deploy finishes
		// materializing the tree.
		PostDeploy string `mapstructure:"post_deploy" toml:"post_deploy"`
	}
)

// configFilePathOverride allows --config to bypass the default location.
var configFilePathOverride string

// SetConfigFilePathOverride points Load at an explicit config file.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{Dir: ".build"},
	}
}

// ConfigDir returns the arbor configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the path of the active config file.
func ConfigFilePath() (string, error) {
	if configFilePathOverride != "" {
		return configFilePathOverride, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load reads the configuration: defaults, then the config file if present,
// then ARBOR_* environment variables. A `.env` file in the current
// directory is loaded into the environment first, best-effort.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // a missing .env is the normal case

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("protocol", defaults.Protocol)
	v.SetDefault("depth", defaults.Depth)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("build.tool", defaults.Build.Tool)
	v.SetDefault("build.dir", defaults.Build.Dir)
	v.SetDefault("hooks.post_deploy", defaults.Hooks.PostDeploy)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFilePathOverride != "" {
		v.SetConfigFile(configFilePathOverride)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the active config file as TOML,
// creating the directory when needed.
func Save(cfg *Config) error {
	path, err := ConfigFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
