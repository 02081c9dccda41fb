// ABOUTME: lift configuration loaded with viper from YAML and LIFT_* environment variables.
// ABOUTME: Resolves store paths, logging options and optional seed document paths.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamsatar/lift/internal/storage"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LIFT_LOG_LEVEL for log.level.
const EnvPrefix = "LIFT"

// Config stores lift configuration.
type Config struct {
	// DataDir is the directory holding both store files.
	// Supports ~ expansion. Defaults to ~/.local/share/lift.
	DataDir string `mapstructure:"data_dir"`

	// CatalogDB and LogDB override the individual store paths.
	CatalogDB string `mapstructure:"catalog_db"`
	LogDB     string `mapstructure:"log_db"`

	Log  LogConfig  `mapstructure:"log"`
	Seed SeedConfig `mapstructure:"seed"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	JSON  bool   `mapstructure:"json"`
}

// SeedConfig points at custom seed documents. Empty paths use the built-in catalog.
type SeedConfig struct {
	Equipment    string `mapstructure:"equipment"`
	MuscleGroups string `mapstructure:"muscle_groups"`
	Catalog      string `mapstructure:"catalog"`
}

// HasCustomSeed reports whether all three seed documents are configured.
func (s SeedConfig) HasCustomSeed() bool {
	return s.Equipment != "" && s.MuscleGroups != "" && s.Catalog != ""
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// CatalogDBPath returns the catalog store path.
func (c *Config) CatalogDBPath() string {
	if c.CatalogDB != "" {
		return ExpandPath(c.CatalogDB)
	}
	return filepath.Join(c.GetDataDir(), storage.CatalogFileName)
}

// LogDBPath returns the log store path.
func (c *Config) LogDBPath() string {
	if c.LogDB != "" {
		return ExpandPath(c.LogDB)
	}
	return filepath.Join(c.GetDataDir(), storage.LogFileName)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the default config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "lift", "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("catalog_db", "")
	v.SetDefault("log_db", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)
	v.SetDefault("seed.equipment", "")
	v.SetDefault("seed.muscle_groups", "")
	v.SetDefault("seed.catalog", "")
}

// Load reads config from path, or from GetConfigPath when path is empty.
// A missing default file yields defaults; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = GetConfigPath()
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigFile(ExpandPath(path))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case !explicit && errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// OpenStores opens the catalog and log stores at their configured paths.
func (c *Config) OpenStores() (*storage.Stores, error) {
	return storage.OpenStores(c.CatalogDBPath(), c.LogDBPath())
}
