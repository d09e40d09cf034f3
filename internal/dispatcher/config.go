package dispatcher

import (
	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/engine/settings"
)

// DefaultMaxMacroDepth bounds macro nesting.
const DefaultMaxMacroDepth = 32

// DefaultPageSize is the FORWARD/BACKWARD scroll amount when no display
// size is known.
const DefaultPageSize = 20

// Config holds dispatcher configuration options.
type Config struct {
	// EnableMetrics enables dispatch timing and statistics collection.
	EnableMetrics bool

	// RecoverFromPanic turns a panicking handler into a return code 1.
	RecoverFromPanic bool

	// MaxMacroDepth limits how deeply macros may invoke macros.
	MaxMacroDepth int

	// PageSize is the number of lines FORWARD and BACKWARD scroll.
	PageSize int

	// Settings are given to every newly opened file.
	Settings settings.Settings

	// MaxUndoEntries bounds the undo log of each file.
	MaxUndoEntries int

	// ProfileMacro runs after each file is added to the ring. Empty
	// disables it.
	ProfileMacro string
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableMetrics:    false,
		RecoverFromPanic: true,
		MaxMacroDepth:    DefaultMaxMacroDepth,
		PageSize:         DefaultPageSize,
		Settings:         settings.Default(),
		MaxUndoEntries:   engine.DefaultMaxUndoEntries,
		ProfileMacro:     "PROFILE",
	}
}

// WithMetrics returns a copy of the config with metrics enabled.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(recover bool) Config {
	c.RecoverFromPanic = recover
	return c
}

// WithMaxMacroDepth returns a copy of the config with the macro depth limit set.
func (c Config) WithMaxMacroDepth(depth int) Config {
	c.MaxMacroDepth = depth
	return c
}

// WithSettings returns a copy of the config with the settings of new files set.
func (c Config) WithSettings(s settings.Settings) Config {
	c.Settings = s
	return c
}

// WithProfile returns a copy of the config with the profile macro name set.
func (c Config) WithProfile(name string) Config {
	c.ProfileMacro = name
	return c
}

// WithPageSize returns a copy of the config with the page size set.
func (c Config) WithPageSize(n int) Config {
	c.PageSize = n
	return c
}
