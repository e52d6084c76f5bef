// =============================================================================
// BKHD to UpSSE Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Two layers exist:
//   1. Main config (upsse.yaml + UPSSE_* environment variables): where the
//      reference workbooks live, where output goes, how to log.
//   2. Policy (policy.go): the business constants of the conversion, built in
//      and optionally overridden by a YAML file named in the main config.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MainConfig holds the global application configuration.
type MainConfig struct {
	// Reference names the three reference workbooks.
	Reference ReferenceConfig `mapstructure:"reference"`

	// OutputDir is where UpSSE workbooks and archives are written.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir"`

	// OutputNameFormat is the file name pattern for generated workbooks.
	// Placeholders:
	//   {name}     - base name ("UpSSE", "UpSSE_gia_cu", ...)
	//   {location} - selected location
	//   {date}     - resolved transaction date (YYYYMMDD)
	//   {uuid}     - a random UUID
	// Default: "{name}"
	OutputNameFormat string `mapstructure:"output_name_format"`

	// PolicyFile optionally overrides the built-in conversion policy.
	PolicyFile string `mapstructure:"policy_file"`

	// CacheTTL is how long a loaded reference bundle stays cached.
	// Default: 10m
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// Log holds logger settings.
	Log LogConfig `mapstructure:"log"`
}

// ReferenceConfig holds the reference workbook paths.
type ReferenceConfig struct {
	DataFile     string `mapstructure:"data_file"`
	ProductFile  string `mapstructure:"product_file"`
	CustomerFile string `mapstructure:"customer_file"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LoadMainConfig loads the main configuration.
//
// A missing file at configPath is not an error: defaults and environment
// variables still apply. Environment variables use the UPSSE_ prefix with
// dots replaced by underscores, e.g. UPSSE_REFERENCE_DATA_FILE.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("UPSSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg MainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("reference.data_file", "Data.xlsx")
	v.SetDefault("reference.product_file", "MaHH.xlsx")
	v.SetDefault("reference.customer_file", "DSKH.xlsx")

	v.SetDefault("output_dir", "./output")
	v.SetDefault("output_name_format", "{name}")
	v.SetDefault("policy_file", "")
	v.SetDefault("cache_ttl", 10*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_path", "stderr")
}

// Validate validates the configuration and creates the output directory.
func (c *MainConfig) Validate() error {
	if c.Reference.DataFile == "" {
		return fmt.Errorf("reference.data_file is required")
	}
	if c.Reference.ProductFile == "" {
		return fmt.Errorf("reference.product_file is required")
	}
	if c.Reference.CustomerFile == "" {
		return fmt.Errorf("reference.customer_file is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive")
	}

	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.OutputDir, err)
	}

	return nil
}
