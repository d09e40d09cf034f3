package engine

import (
	"github.com/dshills/xedit/internal/engine/history"
	"github.com/dshills/xedit/internal/engine/settings"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = history.DefaultMaxEntries
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLines sets the initial content of the engine.
func WithLines(lines []string) Option {
	return func(e *Engine) {
		e.initLines = lines
	}
}

// WithSettings sets the initial settings.
func WithSettings(s settings.Settings) Option {
	return func(e *Engine) {
		e.settings = s
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithReadOnly marks the file as read-only. Edits are allowed; saving is not.
func WithReadOnly(readOnly bool) Option {
	return func(e *Engine) {
		e.readOnly = readOnly
	}
}
