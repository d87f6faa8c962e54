// Package config loads the mapprefs CLI configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-mapprefs/pkg/activity"
	"github.com/goliatone/go-mapprefs/pkg/store"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Environment overrides, applied after the config file.
const (
	EnvStoreDriver = "MAPPREFS_STORE_DRIVER"
	EnvStorePath   = "MAPPREFS_STORE_PATH"
	EnvSeedZone    = "MAPPREFS_SEED_ZONE"
	EnvLogLevel    = "MAPPREFS_LOG_LEVEL"

	EnvActivityJournal = "MAPPREFS_ACTIVITY_JOURNAL"
)

// Config holds the CLI configuration.
type Config struct {
	Store    StoreConfig     `yaml:"store"`
	SeedZone string          `yaml:"seed_zone"`
	Log      LogConfig       `yaml:"log"`
	Activity activity.Config `yaml:"activity"`
}

// StoreConfig selects the preference backend.
type StoreConfig struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:    DriverSQLite,
			Path:      "data/mapprefs.db",
			Namespace: store.DefaultNamespace,
		},
		Log: LogConfig{Level: "info"},
		Activity: activity.Config{
			Enabled: false,
			Channel: activity.DefaultChannel,
		},
	}
}

// Load reads path over the defaults, then applies a .env file from the
// working directory (if any) and the MAPPREFS_* environment. A missing config
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	// godotenv.Load never overrides variables already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvStoreDriver)); v != "" {
		c.Store.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorePath)); v != "" {
		c.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSeedZone)); v != "" {
		c.SeedZone = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvActivityJournal)); v != "" {
		c.Activity.Journal = v
	}
}

// Validate checks the driver and its required settings.
func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case DriverSQLite, DriverFile:
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("config: store.path is required for driver %q", c.Store.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if strings.TrimSpace(c.Store.Namespace) == "" {
		c.Store.Namespace = store.DefaultNamespace
	}
	return nil
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
