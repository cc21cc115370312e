/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/gsf/pkg/index"
	"github.com/ssargent/gsf/pkg/store"
)

// Config holds the engine defaults used by the gsf command
type Config struct {
	BufferSize   int     `yaml:"buffer_size"`
	MaxOpenFiles int     `yaml:"max_open_files"`
	Checksum     bool    `yaml:"checksum"`
	Index        Index   `yaml:"index"`
	Logging      Logging `yaml:"logging"`
}

// Index configures the direct access index sidecar
type Index struct {
	Suffix string `yaml:"suffix"`
	Sync   bool   `yaml:"sync"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		BufferSize:   store.DefaultBufferSize,
		MaxOpenFiles: store.DefaultMaxOpenFiles,
		Checksum:     true,
		Index: Index{
			Suffix: index.DefaultSuffix,
			Sync:   false,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path. Settings the file
// leaves out keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "invalid config path")
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate rejects settings the engine cannot run with
func (c *Config) Validate() error {
	if c.BufferSize <= 0 {
		return errors.Errorf("buffer_size must be positive, got %d", c.BufferSize)
	}
	if c.MaxOpenFiles <= 0 {
		return errors.Errorf("max_open_files must be positive, got %d", c.MaxOpenFiles)
	}
	if c.Index.Suffix == "" || strings.ContainsRune(c.Index.Suffix, filepath.Separator) {
		return errors.Errorf("invalid index suffix %q", c.Index.Suffix)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses the configured log level. An empty level means info.
func (c *Config) Level() (zerolog.Level, error) {
	if c.Logging.Level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid logging level %q", c.Logging.Level)
	}
	return lvl, nil
}

// StoreOptions maps the configuration onto engine options
func (c *Config) StoreOptions(logger *zerolog.Logger) store.Options {
	return store.Options{
		MaxOpenFiles: c.MaxOpenFiles,
		BufferSize:   c.BufferSize,
		Index: index.Options{
			Suffix: c.Index.Suffix,
			Sync:   c.Index.Sync,
			Logger: logger,
		},
		Logger: logger,
	}
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./gsf.yaml"
	}

	// ~/.config/gsf/config.yaml on Linux and macOS
	return filepath.Join(homeDir, ".config", "gsf", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
