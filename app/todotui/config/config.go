// Package config loads the terminal client's settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	DefaultServerURL = "http://localhost:3000/api/v1"
	DefaultPageSize  = 20
)

// Config is the terminal client configuration.
type Config struct {
	ServerURL string  `mapstructure:"server_url"`
	PageSize  int     `mapstructure:"page_size"`
	Keyring   Keyring `mapstructure:"keyring"`
}

// Keyring controls where the session token is kept.
type Keyring struct {
	// Disabled keeps the token in memory only.
	Disabled bool `mapstructure:"disabled"`

	// FileDir is used when no system keyring is available.
	FileDir string `mapstructure:"file_dir"`

	// Account names the entry the token is stored under.
	Account string `mapstructure:"account"`
}

// Dir returns ~/.config/todolist.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "todolist")
}

// DefaultPath returns the default location of the config file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the YAML file at path. A missing file yields the defaults.
// TODOLIST_* environment variables override file values.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server_url", DefaultServerURL)
	v.SetDefault("page_size", DefaultPageSize)
	v.SetDefault("keyring.file_dir", filepath.Join(Dir(), "keyring"))
	v.SetDefault("keyring.account", "default")

	v.SetEnvPrefix("TODOLIST")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		return Config{}, fmt.Errorf("page_size must be between 1 and 100, got %d", cfg.PageSize)
	}

	return cfg, nil
}
