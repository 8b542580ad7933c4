// Package config provides configuration management for the chartline application.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	apperrors "chartline-trader/internal/errors"
	"chartline-trader/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Pipeline models.PipelineParams `mapstructure:"pipeline"`
	Extract  ExtractConfig         `mapstructure:"extract"`
	Store    StoreConfig           `mapstructure:"store"`
	Logging  LoggingConfig         `mapstructure:"logging"`
	Batch    BatchConfig           `mapstructure:"batch"`
}

// ExtractConfig holds candle extraction settings.
type ExtractConfig struct {
	RedColor   string `mapstructure:"red_color"`   // hex, e.g. "#ff0000"
	GreenColor string `mapstructure:"green_color"` // hex, e.g. "#00ff00"
	Tolerance  int    `mapstructure:"tolerance"`   // per channel, 0-255
	MinArea    int    `mapstructure:"min_area"`    // pixels
	Finder     string `mapstructure:"finder"`      // "label" or "opencv"
	CropX      int    `mapstructure:"crop_x"`
	CropY      int    `mapstructure:"crop_y"`
	CropWidth  int    `mapstructure:"crop_width"` // 0 disables cropping
	CropHeight int    `mapstructure:"crop_height"`
}

// StoreConfig holds run persistence settings.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// BatchConfig holds fan-out settings for multi-snapshot runs.
type BatchConfig struct {
	Workers int `mapstructure:"workers"` // 0 means one per CPU
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/chartline"
	}
	return filepath.Join(home, ".config", "chartline")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is created from the template and then loaded.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default(configDir string) *Config {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	v := viper.New()
	setDefaults(v, configDir)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper, configDir string) {
	p := models.DefaultPipelineParams()
	v.SetDefault("pipeline.start_number", p.StartNumber)
	v.SetDefault("pipeline.left_required", p.LeftRequired)
	v.SetDefault("pipeline.right_required", p.RightRequired)
	v.SetDefault("pipeline.main_trendline_position", p.MainTrendlinePosition)
	v.SetDefault("pipeline.distance_threshold", p.DistanceThreshold)
	v.SetDefault("pipeline.num_contracts", p.NumContracts)
	v.SetDefault("pipeline.allow_trailing", p.AllowTrailing)

	v.SetDefault("extract.red_color", "#ff0000")
	v.SetDefault("extract.green_color", "#00ff00")
	v.SetDefault("extract.tolerance", 60)
	v.SetDefault("extract.min_area", 6)
	v.SetDefault("extract.finder", "label")

	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", filepath.Join(configDir, "chartline.db"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "chartline.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)

	v.SetDefault("batch.workers", 0)
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		if err := createTemplateConfig(configDir, name); err != nil {
			return err
		}
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHARTLINE_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("CHARTLINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CHARTLINE_FINDER"); v != "" {
		cfg.Extract.Finder = v
	}
	if v := os.Getenv("CHARTLINE_START_NUMBER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.StartNumber = n
		}
	}
	if v := os.Getenv("CHARTLINE_DISTANCE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.DistanceThreshold = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}

	if c.Extract.Tolerance < 0 || c.Extract.Tolerance > 255 {
		return apperrors.NewValidationError("extract.tolerance", c.Extract.Tolerance, "must be between 0 and 255")
	}
	if c.Extract.MinArea < 0 {
		return apperrors.NewValidationError("extract.min_area", c.Extract.MinArea, "must be non-negative")
	}
	if c.Extract.CropWidth < 0 || c.Extract.CropHeight < 0 {
		return apperrors.NewValidationError("extract.crop", fmt.Sprintf("%dx%d", c.Extract.CropWidth, c.Extract.CropHeight),
			"crop size must be non-negative")
	}

	if c.Batch.Workers < 0 {
		return apperrors.NewValidationError("batch.workers", c.Batch.Workers, "must be non-negative")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return apperrors.NewValidationError("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}

	return nil
}
