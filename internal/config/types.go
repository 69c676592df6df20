// Package config provides configuration loading for shipward.
//
// Configuration is loaded with Viper, supporting a YAML config file and
// environment variable overrides. Defaults from [DefaultConfig] work out of
// the box with an empty workspace.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (SHIPWARD_ prefix)
//  2. Config file named by SHIPWARD_CONFIG_PATH
//  3. shipward.yaml in the platform user config dir
//  4. ./shipward.yaml
//  5. [DefaultConfig] defaults
package config

import "path/filepath"

// Config is the root configuration container.
type Config struct {
	// Workspace is the directory holding record files and extensions.
	Workspace string `mapstructure:"workspace"`

	// Release configures the release pipeline engine.
	Release ReleaseConfig `mapstructure:"release"`

	// Log configures logging level and format.
	Log LogConfig `mapstructure:"log"`
}

// ReleaseConfig holds release pipeline defaults.
type ReleaseConfig struct {
	// Strict makes run fail fast on a dirty worktree before any step starts.
	Strict bool `mapstructure:"strict"`

	// TagPrefix is prepended to the version to form the release tag.
	TagPrefix string `mapstructure:"tag_prefix"`

	// CommitMessage is the default message for synthesized and unconfigured
	// git.commit steps. Supports {{release.version}} style placeholders.
	CommitMessage string `mapstructure:"commit_message"`

	// Defaults are the module-default settings, the lowest-priority scope
	// in the settings merge (project and component scopes override them).
	Defaults map[string]any `mapstructure:"defaults"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is a zerolog level name. Default "info".
	Level string `mapstructure:"level"`

	// Format is "console" or "json". Default "console".
	Format string `mapstructure:"format"`
}

// ExtensionsDir returns the directory extensions are discovered from.
func (c *Config) ExtensionsDir() string {
	return filepath.Join(c.Workspace, "extensions")
}

// DefaultConfig returns a [Config] with defaults that work without any
// configuration file.
func DefaultConfig() *Config {
	return &Config{
		Workspace: ".shipward",
		Release: ReleaseConfig{
			TagPrefix:     "v",
			CommitMessage: "chore(release): {{release.version}}",
			Defaults:      map[string]any{"remote": "origin"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
