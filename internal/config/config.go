// Package config provides configuration management for lakecat.
//
// Configuration is loaded from multiple sources with the following precedence:
//  1. Command-line flags (highest priority)
//  2. Environment variables (LAKECAT_* prefix)
//  3. Configuration file (lakecat.yaml)
//  4. Default values (lowest priority)
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for a lakecat catalog instance.
type Config struct {
	// Warehouse is the root directory table locations are derived under.
	Warehouse string `mapstructure:"warehouse"`

	// MetastorePath is the directory of the embedded metastore.
	MetastorePath string `mapstructure:"metastore_path"`

	// LocationInProperties stores table locations in metastore properties
	// instead of deriving them from the warehouse root. Fixed per catalog
	// instance.
	LocationInProperties bool `mapstructure:"location_in_properties"`

	// Lock configures the catalog lock.
	Lock LockConfig `mapstructure:"lock"`

	// Format configures table formats.
	Format FormatConfig `mapstructure:"format"`
}

// LockConfig configures the catalog lock.
type LockConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"`
}

// FormatConfig configures table format defaults.
type FormatConfig struct {
	// Default is the file format for tables created without an explicit
	// file.format option.
	Default string `mapstructure:"default"`

	// FieldDelimiter is the default CSV field delimiter.
	FieldDelimiter string `mapstructure:"field_delimiter"`
}

// Options are command-line overrides applied on top of file and environment
// configuration.
type Options struct {
	Warehouse     string
	MetastorePath string
}

// Load loads configuration from file and applies command line options.
func Load(configPath string, opts Options) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		// Try standard locations; absence is fine.
		v.SetConfigName("lakecat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/lakecat")
		v.AddConfigPath("$HOME/.lakecat")

		_ = v.ReadInConfig()
	}

	// Environment variables override
	v.SetEnvPrefix("LAKECAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Apply command line options
	if opts.Warehouse != "" {
		v.Set("warehouse", opts.Warehouse)
	}

	if opts.MetastorePath != "" {
		v.Set("metastore_path", opts.MetastorePath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("warehouse", "./warehouse")
	v.SetDefault("metastore_path", "./metastore")
	v.SetDefault("location_in_properties", false)

	v.SetDefault("lock.enabled", true)
	v.SetDefault("lock.acquire_timeout", 10*time.Second)

	v.SetDefault("format.default", "csv")
	v.SetDefault("format.field_delimiter", ",")
}

func (c *Config) validate() error {
	if c.Warehouse == "" {
		return errors.New("warehouse root must be configured")
	}

	if c.MetastorePath == "" {
		return errors.New("metastore path must be configured")
	}

	return nil
}
