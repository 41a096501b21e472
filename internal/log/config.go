package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config represents logging configuration.
type Config struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// DefaultConfig returns default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
	}
}

// ParseLevel parses string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Configure sets up the default logger based on config. Output goes to
// stderr so stdout stays free for command output.
func Configure(cfg Config) Logger {
	return ConfigureWriter(cfg, os.Stderr)
}

// ConfigureWriter is Configure with an explicit destination.
func ConfigureWriter(cfg Config, w io.Writer) Logger {
	level := ParseLevel(cfg.Level)

	var logger Logger
	switch strings.ToLower(cfg.Format) {
	case "json":
		logger = NewJSONLogger(w, level)
	default:
		logger = NewTextLogger(w, level)
	}

	SetDefault(logger)
	return logger
}
