package feature

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Flag represents a feature flag
type Flag string

// Feature flags for sqldumpfix
const (
	// Rewrite Flags
	JSONEscape       Flag = "json_escape"
	ColumnListLookup Flag = "column_list_lookup"

	// Output Flags
	ColouredDiff Flag = "coloured_diff"
)

// EnvPrefix is prepended to the upper-cased flag name to form its
// environment variable.
const EnvPrefix = "SQLDUMPFIX_FEATURE_"

// FlagMetadata contains metadata about a feature flag
type FlagMetadata struct {
	Name         Flag
	Description  string
	DefaultValue bool
	Category     string
	Stability    string // "stable", "beta", "experimental"
}

// Manager manages feature flags
type Manager struct {
	flags    map[Flag]*flagState
	mu       sync.RWMutex
	metadata map[Flag]*FlagMetadata
}

// flagState represents the state of a single flag
type flagState struct {
	enabled    atomic.Bool
	overridden bool
	envVar     string
}

// Global feature flag manager
var globalManager = newManager()

// newManager creates a new feature flag manager
func newManager() *Manager {
	m := &Manager{
		flags:    make(map[Flag]*flagState),
		metadata: make(map[Flag]*FlagMetadata),
	}

	m.registerFlags()
	m.loadFromEnvironment()

	return m
}

// registerFlags registers all feature flags with their metadata
func (m *Manager) registerFlags() {
	m.register(JSONEscape, &FlagMetadata{
		Name:         JSONEscape,
		Description:  "Escape description text as a JSON string before wrapping it",
		DefaultValue: true,
		Category:     "rewrite",
		Stability:    "stable",
	})

	m.register(ColumnListLookup, &FlagMetadata{
		Name:         ColumnListLookup,
		Description:  "Locate the description column by name when the INSERT lists its columns",
		DefaultValue: true,
		Category:     "rewrite",
		Stability:    "beta",
	})

	m.register(ColouredDiff, &FlagMetadata{
		Name:         ColouredDiff,
		Description:  "Colour added and removed lines in diff output",
		DefaultValue: true,
		Category:     "output",
		Stability:    "stable",
	})
}

// register adds a flag to the manager
func (m *Manager) register(flag Flag, metadata *FlagMetadata) {
	state := &flagState{
		envVar: flagToEnvVar(flag),
	}
	state.enabled.Store(metadata.DefaultValue)

	m.flags[flag] = state
	m.metadata[flag] = metadata
}

// loadFromEnvironment loads flag values from environment variables
func (m *Manager) loadFromEnvironment() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, state := range m.flags {
		if val := os.Getenv(state.envVar); val != "" {
			if enabled, err := strconv.ParseBool(val); err == nil {
				state.enabled.Store(enabled)
				state.overridden = true
			}
		}
	}
}

// EnvOverrides returns the flags that have a valid value in the
// environment, keyed by flag name.
func EnvOverrides() map[string]bool {
	return globalManager.EnvOverrides()
}

// EnvOverrides returns the flags that have a valid value in the
// environment, keyed by flag name.
func (m *Manager) EnvOverrides() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]bool)
	for flag, state := range m.flags {
		if val := os.Getenv(state.envVar); val != "" {
			if enabled, err := strconv.ParseBool(val); err == nil {
				result[string(flag)] = enabled
			}
		}
	}
	return result
}

// Reload re-reads flag overrides from the environment, e.g. after a
// .env file has been loaded.
func Reload() {
	globalManager.loadFromEnvironment()
}

// IsEnabled checks if a feature flag is enabled
func IsEnabled(flag Flag) bool {
	return globalManager.IsEnabled(flag)
}

// IsEnabled checks if a feature flag is enabled
func (m *Manager) IsEnabled(flag Flag) bool {
	m.mu.RLock()
	state, exists := m.flags[flag]
	m.mu.RUnlock()

	if !exists {
		return false
	}

	return state.enabled.Load()
}

// Enable enables a feature flag
func Enable(flag Flag) {
	globalManager.Enable(flag)
}

// Enable enables a feature flag
func (m *Manager) Enable(flag Flag) {
	m.setFlag(flag, true)
}

// Disable disables a feature flag
func Disable(flag Flag) {
	globalManager.Disable(flag)
}

// Disable disables a feature flag
func (m *Manager) Disable(flag Flag) {
	m.setFlag(flag, false)
}

// Set enables or disables a feature flag by name.
func Set(name string, enabled bool) error {
	return globalManager.Set(name, enabled)
}

// Set enables or disables a feature flag by name.
func (m *Manager) Set(name string, enabled bool) error {
	flag := Flag(strings.ToLower(strings.TrimSpace(name)))
	m.mu.RLock()
	_, exists := m.flags[flag]
	m.mu.RUnlock()
	if !exists {
		return fmt.Errorf("unknown feature flag: %s", name)
	}
	m.setFlag(flag, enabled)
	return nil
}

// setFlag sets a flag value
func (m *Manager) setFlag(flag Flag, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, exists := m.flags[flag]
	if !exists {
		return
	}
	state.enabled.Store(enabled)
	state.overridden = true
}

// GetMetadata returns metadata for a flag
func GetMetadata(flag Flag) (*FlagMetadata, bool) {
	return globalManager.GetMetadata(flag)
}

// GetMetadata returns metadata for a flag
func (m *Manager) GetMetadata(flag Flag) (*FlagMetadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metadata, exists := m.metadata[flag]
	return metadata, exists
}

// Reset resets all flags to their default values
func Reset() {
	globalManager.Reset()
}

// Reset resets all flags to their default values
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for flag, state := range m.flags {
		if metadata, exists := m.metadata[flag]; exists {
			state.enabled.Store(metadata.DefaultValue)
			state.overridden = false
		}
	}
}

// flagToEnvVar converts a flag name to an environment variable name
func flagToEnvVar(flag Flag) string {
	return EnvPrefix + strings.ToUpper(string(flag))
}

// DebugString returns a debug string with all flag states
func DebugString() string {
	return globalManager.DebugString()
}

// DebugString returns a debug string with all flag states
func (m *Manager) DebugString() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	flags := make([]Flag, 0, len(m.metadata))
	for flag := range m.metadata {
		flags = append(flags, flag)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })

	var b strings.Builder
	b.WriteString("Feature Flags:\n")
	for _, flag := range flags {
		state := m.flags[flag]
		metadata := m.metadata[flag]

		status := "disabled"
		if state.enabled.Load() {
			status = "enabled"
		}

		override := ""
		if state.overridden {
			override = " (overridden)"
		}

		fmt.Fprintf(&b, "  %-20s: %-8s [%s]%s - %s\n",
			flag, status, metadata.Stability, override, metadata.Description)
	}

	return b.String()
}
