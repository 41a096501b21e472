package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/sqldumpfix/internal/errors"
	"github.com/dshills/sqldumpfix/internal/feature"
	"github.com/dshills/sqldumpfix/internal/log"
	"github.com/dshills/sqldumpfix/internal/rewrite"
	"github.com/dshills/sqldumpfix/internal/textenc"
)

// Config represents the complete tool configuration.
type Config struct {
	// File configuration
	Input    string `json:"input" yaml:"input"`
	Output   string `json:"output" yaml:"output"`
	Encoding string `json:"encoding" yaml:"encoding"`

	// Logging configuration
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`

	// Rewrite configuration
	Rewrite RewriteConfig `json:"rewrite" yaml:"rewrite"`

	// Feature flag overrides, keyed by flag name
	Features map[string]bool `json:"features" yaml:"features"`
}

// RewriteConfig selects the statements and field to rewrite.
type RewriteConfig struct {
	Table       string `json:"table" yaml:"table"`
	Column      string `json:"column" yaml:"column"`
	ColumnIndex int    `json:"column_index" yaml:"column_index"` // 0-based
	Provider    string `json:"provider" yaml:"provider"`
	JSONKey     string `json:"json_key" yaml:"json_key"`
	CastType    string `json:"cast_type" yaml:"cast_type"`
	Strategy    string `json:"strategy" yaml:"strategy"` // "pattern", "positional"
}

// DefaultConfig returns a configuration matching the original migration:
// neon_backup.sql is rewritten into neon_backup_fixed.sql (see OutputPath).
func DefaultConfig() *Config {
	return &Config{
		Input:     "neon_backup.sql",
		Encoding:  textenc.DefaultEncoding,
		LogLevel:  "info",
		LogFormat: "text",
		Rewrite: RewriteConfig{
			Table:       "tools",
			Column:      "description",
			ColumnIndex: 3,
			Provider:    "gemini",
			JSONKey:     "vi",
			CastType:    "jsonb",
			Strategy:    string(rewrite.StrategyPattern),
		},
	}
}

// LoadFromFile loads configuration from a JSON or YAML file. The format is
// chosen by extension: .yaml and .yml are YAML, anything else JSON.
func LoadFromFile(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileError(err, "read", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.ConfigFileParseError(path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Overrides holds command-line values. Empty strings and negative indexes
// leave the configuration unchanged.
type Overrides struct {
	Input       string
	Output      string
	Encoding    string
	LogLevel    string
	LogFormat   string
	Table       string
	Column      string
	ColumnIndex int
	Provider    string
	JSONKey     string
	Strategy    string
	Features    map[string]bool
}

// NoOverrides returns Overrides that change nothing.
func NoOverrides() Overrides {
	return Overrides{ColumnIndex: -1}
}

// LoadFromFlags merges command-line flags into the configuration.
func (c *Config) LoadFromFlags(o Overrides) {
	setString(&c.Input, o.Input)
	setString(&c.Output, o.Output)
	setString(&c.Encoding, o.Encoding)
	setString(&c.LogLevel, o.LogLevel)
	setString(&c.LogFormat, o.LogFormat)
	setString(&c.Rewrite.Table, o.Table)
	setString(&c.Rewrite.Column, o.Column)
	setString(&c.Rewrite.Provider, o.Provider)
	setString(&c.Rewrite.JSONKey, o.JSONKey)
	setString(&c.Rewrite.Strategy, o.Strategy)
	if o.ColumnIndex >= 0 {
		c.Rewrite.ColumnIndex = o.ColumnIndex
	}
	for name, enabled := range o.Features {
		c.setFeature(name, enabled)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.InvalidConfigError("input path must not be empty")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
		// Valid
	default:
		return errors.InvalidConfigError("invalid log level: %s", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
		// Valid
	default:
		return errors.InvalidConfigError("invalid log format: %s", c.LogFormat)
	}

	if _, err := textenc.Lookup(c.Encoding); err != nil {
		return err
	}

	if err := c.validateRewrite(); err != nil {
		return fmt.Errorf("invalid rewrite configuration: %w", err)
	}

	for name := range c.Features {
		if _, ok := feature.GetMetadata(feature.Flag(strings.ToLower(name))); !ok {
			return errors.InvalidConfigError("unknown feature flag: %s", name)
		}
	}

	return nil
}

// validateRewrite validates rewrite-specific configuration
func (c *Config) validateRewrite() error {
	opts, err := c.ToRewriteOptions()
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return errors.InvalidConfigError("%s", err.Error())
	}
	return nil
}

// setFeature records a feature override, replacing any earlier entry for
// the same flag regardless of case.
func (c *Config) setFeature(name string, enabled bool) {
	if c.Features == nil {
		c.Features = make(map[string]bool)
	}
	for existing := range c.Features {
		if strings.EqualFold(existing, name) {
			delete(c.Features, existing)
		}
	}
	c.Features[strings.ToLower(name)] = enabled
}

// ApplyFeatures pushes the configured feature overrides into the global
// feature flag manager.
func (c *Config) ApplyFeatures() error {
	names := make([]string, 0, len(c.Features))
	for name := range c.Features {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := feature.Set(name, c.Features[name]); err != nil {
			return errors.InvalidConfigError("%s", err.Error())
		}
	}
	return nil
}

// ToRewriteOptions converts to rewrite.Options. Boolean switches come from
// the feature flags, so ApplyFeatures should run first.
func (c *Config) ToRewriteOptions() (rewrite.Options, error) {
	strategy, err := rewrite.ParseStrategy(c.Rewrite.Strategy)
	if err != nil {
		return rewrite.Options{}, errors.InvalidConfigError("%s", err.Error())
	}

	opts := rewrite.DefaultOptions()
	opts.Table = c.Rewrite.Table
	opts.Column = c.Rewrite.Column
	opts.ColumnIndex = c.Rewrite.ColumnIndex
	opts.Provider = c.Rewrite.Provider
	opts.JSONKey = c.Rewrite.JSONKey
	opts.CastType = c.Rewrite.CastType
	opts.Strategy = strategy
	return opts, nil
}

// ToLogConfig converts to log.Config.
func (c *Config) ToLogConfig() log.Config {
	return log.Config{
		Level:  c.LogLevel,
		Format: c.LogFormat,
	}
}

// OutputPath returns the configured output path, falling back to
// "<input>_fixed<ext>" next to the input.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	ext := filepath.Ext(c.Input)
	return strings.TrimSuffix(c.Input, ext) + "_fixed" + ext
}
