package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configName = "shipward"
	envPrefix  = "SHIPWARD"
)

// Load reads configuration from the environment and the first config file
// found. A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	setDefaults(v)

	if path := os.Getenv(envPrefix + "_CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		if userDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(userDir, configName))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers [DefaultConfig] values with viper so env overrides
// of individual keys work even without a config file.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("workspace", d.Workspace)
	v.SetDefault("release.strict", d.Release.Strict)
	v.SetDefault("release.tag_prefix", d.Release.TagPrefix)
	v.SetDefault("release.commit_message", d.Release.CommitMessage)
	v.SetDefault("release.defaults", d.Release.Defaults)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
