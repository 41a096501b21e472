package rewrite

import (
	"fmt"
	"strings"

	"github.com/dshills/sqldumpfix/internal/feature"
)

// Strategy selects how the description field is located in a statement.
type Strategy string

const (
	// StrategyPattern finds the field by the literal text around it:
	// , '<text>', <number>, '<provider>...
	StrategyPattern Strategy = "pattern"

	// StrategyPositional tokenizes the VALUES list and picks the field by
	// column position (or by name when the INSERT lists its columns).
	StrategyPositional Strategy = "positional"
)

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyPattern:
		return StrategyPattern, nil
	case StrategyPositional:
		return StrategyPositional, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want %q or %q)", s, StrategyPattern, StrategyPositional)
	}
}

// Options controls which statements and which field get rewritten.
type Options struct {
	Table       string   // Target table; lines must start with "INSERT INTO <Table>"
	Column      string   // Column name used when the INSERT lists its columns
	ColumnIndex int      // 0-based position of the column in a VALUES tuple
	Provider    string   // Prefix of the string that follows the numeric column (pattern strategy)
	JSONKey     string   // Key of the single-entry JSON object
	CastType    string   // Type appended as ::<CastType>
	Strategy    Strategy // Field location strategy

	EscapeJSON       bool // JSON-escape the text before wrapping it
	ColumnListLookup bool // Honour an explicit column list (positional strategy)
}

// DefaultOptions returns the options for the tools/description migration.
// Feature flags decide the boolean switches.
func DefaultOptions() Options {
	return Options{
		Table:            "tools",
		Column:           "description",
		ColumnIndex:      3,
		Provider:         "gemini",
		JSONKey:          "vi",
		CastType:         "jsonb",
		Strategy:         StrategyPattern,
		EscapeJSON:       feature.IsEnabled(feature.JSONEscape),
		ColumnListLookup: feature.IsEnabled(feature.ColumnListLookup),
	}
}

// Validate checks that the options are usable.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Table) == "" {
		return fmt.Errorf("table must not be empty")
	}
	if o.JSONKey == "" {
		return fmt.Errorf("json key must not be empty")
	}
	if o.CastType == "" {
		return fmt.Errorf("cast type must not be empty")
	}
	switch o.Strategy {
	case StrategyPattern:
		if o.Provider == "" {
			return fmt.Errorf("provider must not be empty for the %s strategy", StrategyPattern)
		}
	case StrategyPositional:
		if o.ColumnIndex < 0 {
			return fmt.Errorf("column index must not be negative: %d", o.ColumnIndex)
		}
	default:
		return fmt.Errorf("unknown strategy %q", o.Strategy)
	}
	return nil
}

// prefix returns the statement prefix identifying target lines.
func (o Options) prefix() string {
	return "INSERT INTO " + o.Table
}
