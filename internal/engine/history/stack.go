package history

import (
	"errors"
	"fmt"

	"github.com/dshills/xedit/internal/engine/buffer"
	"github.com/dshills/xedit/internal/engine/settings"
	"github.com/dshills/xedit/internal/xerr"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = xerr.ErrNothingToUndo
	ErrNothingToRedo = xerr.ErrNothingToRedo
	ErrNoGroup       = errors.New("no transaction open")
)

// DefaultMaxEntries bounds the undo stack when no limit is given.
const DefaultMaxEntries = 100

// Marker is the editor state restored with an undo entry.
type Marker struct {
	Current  int
	Column   int
	AltCount int
	Settings settings.Settings
}

// undoEntry wraps a transaction with metadata.
type undoEntry struct {
	command *CompoundCommand
	before  Marker
	after   Marker
}

// History manages undo/redo state for one buffer.
type History struct {
	undoStack []*undoEntry
	redoStack []*undoEntry

	// Grouping state
	group *undoEntry

	// Configuration
	maxEntries int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// Begin opens a transaction. Nested calls are ignored; the outermost
// transaction collects every command.
func (h *History) Begin(name string, before Marker) {
	if h.group != nil {
		return
	}
	h.group = &undoEntry{
		command: NewCompoundCommand(name),
		before:  before,
	}
}

// IsGrouping returns true if a transaction is open.
func (h *History) IsGrouping() bool {
	return h.group != nil
}

// Execute runs a command and records it in the open transaction.
func (h *History) Execute(cmd Command, buf *buffer.Buffer) error {
	if h.group == nil {
		return fmt.Errorf("execute %s: %w", cmd.Description(), ErrNoGroup)
	}
	if err := cmd.Execute(buf); err != nil {
		return err
	}
	h.group.command.Add(cmd)
	return nil
}

// Commit closes the open transaction. A transaction with no commands
// leaves the stacks untouched.
func (h *History) Commit(after Marker) {
	if h.group == nil {
		return
	}
	entry := h.group
	h.group = nil
	if entry.command.IsEmpty() {
		return
	}
	entry.after = after
	h.push(entry)
}

// Rollback reverses every command of the open transaction, discards it and
// returns the state to restore.
func (h *History) Rollback(buf *buffer.Buffer) (Marker, error) {
	if h.group == nil {
		return Marker{}, ErrNoGroup
	}
	entry := h.group
	h.group = nil
	if err := entry.command.Undo(buf); err != nil {
		return entry.before, fmt.Errorf("rollback %s: %w", entry.command.Description(), err)
	}
	return entry.before, nil
}

func (h *History) push(entry *undoEntry) {
	h.undoStack = append(h.undoStack, entry)

	// Clear redo stack
	h.redoStack = nil

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverses the most recent transaction and returns the state recorded
// before it.
func (h *History) Undo(buf *buffer.Buffer) (Marker, error) {
	if len(h.undoStack) == 0 {
		return Marker{}, ErrNothingToUndo
	}

	entry := h.undoStack[len(h.undoStack)-1]
	if err := entry.command.Undo(buf); err != nil {
		return Marker{}, err
	}
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, entry)
	return entry.before, nil
}

// Redo replays the most recently undone transaction and returns the state
// recorded after it.
func (h *History) Redo(buf *buffer.Buffer) (Marker, error) {
	if len(h.redoStack) == 0 {
		return Marker{}, ErrNothingToRedo
	}

	entry := h.redoStack[len(h.redoStack)-1]
	if err := entry.command.Execute(buf); err != nil {
		return Marker{}, err
	}
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, entry)
	return entry.after, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	return len(h.redoStack)
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.group = nil
}

// PeekUndo returns the name of the transaction Undo would reverse.
func (h *History) PeekUndo() (string, bool) {
	if len(h.undoStack) == 0 {
		return "", false
	}
	return h.undoStack[len(h.undoStack)-1].command.Description(), true
}
