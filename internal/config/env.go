package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	qerrors "github.com/dshills/sqldumpfix/internal/errors"
	"github.com/dshills/sqldumpfix/internal/feature"
)

// Environment variables read by LoadFromEnv.
const (
	EnvInput     = "SQLDUMPFIX_INPUT"
	EnvOutput    = "SQLDUMPFIX_OUTPUT"
	EnvEncoding  = "SQLDUMPFIX_ENCODING"
	EnvLogLevel  = "SQLDUMPFIX_LOG_LEVEL"
	EnvLogFormat = "SQLDUMPFIX_LOG_FORMAT"
	EnvTable     = "SQLDUMPFIX_TABLE"
	EnvColumn    = "SQLDUMPFIX_COLUMN"
	EnvColumnIdx = "SQLDUMPFIX_COLUMN_INDEX"
	EnvProvider  = "SQLDUMPFIX_PROVIDER"
	EnvJSONKey   = "SQLDUMPFIX_JSON_KEY"
	EnvCastType  = "SQLDUMPFIX_CAST_TYPE"
	EnvStrategy  = "SQLDUMPFIX_STRATEGY"
)

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error. Feature flags are re-read afterwards.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return qerrors.ConfigFileParseError(path, err)
	}
	feature.Reload()
	return nil
}

// LoadFromEnv overlays SQLDUMPFIX_* environment variables onto the
// configuration. SQLDUMPFIX_FEATURE_* values replace feature settings from
// the config file.
func (c *Config) LoadFromEnv() {
	envString(&c.Input, EnvInput)
	envString(&c.Output, EnvOutput)
	envString(&c.Encoding, EnvEncoding)
	envString(&c.LogLevel, EnvLogLevel)
	envString(&c.LogFormat, EnvLogFormat)
	envString(&c.Rewrite.Table, EnvTable)
	envString(&c.Rewrite.Column, EnvColumn)
	envString(&c.Rewrite.Provider, EnvProvider)
	envString(&c.Rewrite.JSONKey, EnvJSONKey)
	envString(&c.Rewrite.CastType, EnvCastType)
	envString(&c.Rewrite.Strategy, EnvStrategy)

	if val := os.Getenv(EnvColumnIdx); val != "" {
		if idx, err := strconv.Atoi(val); err == nil && idx >= 0 {
			c.Rewrite.ColumnIndex = idx
		}
	}

	for name, enabled := range feature.EnvOverrides() {
		c.setFeature(name, enabled)
	}
}

func envString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}
