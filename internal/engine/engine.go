package engine

import (
	"errors"

	"github.com/dshills/xedit/internal/engine/buffer"
	"github.com/dshills/xedit/internal/engine/history"
	"github.com/dshills/xedit/internal/engine/settings"
	"github.com/dshills/xedit/internal/engine/target"
)

// Re-export commonly used types for convenience.
type (
	// Command is an undoable edit command.
	Command = history.Command

	// Marker is the state restored by undo.
	Marker = history.Marker

	// Span is an inclusive range of lines.
	Span = target.Span
)

// Engine is the editing session of one open file.
type Engine struct {
	// Core components
	buf      *buffer.Buffer
	history  *history.History
	settings settings.Settings

	column   int
	filtered bool
	depth    int

	// Configuration
	maxUndoEntries int
	readOnly       bool

	// Initialization
	initLines []string
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		settings:       settings.Default(),
		maxUndoEntries: DefaultMaxUndoEntries,
		column:         1,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.buf = buffer.NewBufferFromLines(e.initLines)
	e.initLines = nil
	e.history = history.NewHistory(e.maxUndoEntries)
	return e
}

// Buffer returns the line store. Callers mutate it only through Apply.
func (e *Engine) Buffer() *buffer.Buffer {
	return e.buf
}

// History returns the undo log.
func (e *Engine) History() *history.History {
	return e.history
}

// Settings returns a copy of the current settings.
func (e *Engine) Settings() settings.Settings {
	return e.settings
}

// SetSettings replaces the settings.
func (e *Engine) SetSettings(s settings.Settings) {
	e.settings = s
}

// ReadOnly returns true if the file may not be written back.
func (e *Engine) ReadOnly() bool {
	return e.readOnly
}

// Current returns the current line address.
func (e *Engine) Current() int {
	return e.buf.Current()
}

// SetCurrent moves the current line.
func (e *Engine) SetCurrent(addr int) error {
	return e.buf.SetCurrent(addr)
}

// Column returns the 1-based cursor column.
func (e *Engine) Column() int {
	return e.column
}

// SetColumn moves the cursor column. Values below 1 become 1.
func (e *Engine) SetColumn(col int) {
	if col < 1 {
		col = 1
	}
	e.column = col
}

// Matcher returns the string matcher configured by the current settings.
func (e *Engine) Matcher() target.Matcher {
	m := target.Matcher{
		CaseRespect: e.settings.CaseRespect,
		ZoneLeft:    e.settings.ZoneLeft,
		ZoneRight:   e.settings.ZoneRight,
	}
	if e.settings.ArbOn {
		m.ArbChar = e.settings.ArbChar
	}
	return m
}

// TargetOptions returns the resolver options for the current settings and
// ALL filter.
func (e *Engine) TargetOptions() target.Options {
	opts := target.Options{Matcher: e.Matcher()}
	if e.filtered {
		opts.Visible = e.Visible
	}
	return opts
}

// Resolve resolves t from the current line.
func (e *Engine) Resolve(t target.Target) (int, error) {
	return target.Resolve(e.buf.Current(), t, e.buf, e.TargetOptions())
}

// Range resolves t as a line-range operand from the current line.
func (e *Engine) Range(t target.Target) (Span, error) {
	return target.Range(e.buf.Current(), t, e.buf, e.TargetOptions())
}

// Marker captures the state restored by undo.
func (e *Engine) Marker() Marker {
	return Marker{
		Current:  e.buf.Current(),
		Column:   e.column,
		AltCount: e.buf.AltCount(),
		Settings: e.settings,
	}
}

func (e *Engine) restore(m Marker) {
	if !e.buf.IsValid(m.Current) {
		m.Current = e.buf.EOF()
	}
	_ = e.buf.SetCurrent(m.Current)
	e.SetColumn(m.Column)
	e.buf.SetAltCount(m.AltCount)
	e.settings = m.Settings
}

// Change runs fn as one undo transaction. If fn fails, every edit it made
// is rolled back and the state before the transaction is restored. Nested
// calls join the enclosing transaction.
func (e *Engine) Change(name string, fn func() error) error {
	if e.depth > 0 {
		e.depth++
		defer func() { e.depth-- }()
		return fn()
	}

	e.depth = 1
	defer func() { e.depth = 0 }()

	e.history.Begin(name, e.Marker())
	defer func() {
		if r := recover(); r != nil {
			m, _ := e.history.Rollback(e.buf)
			e.restore(m)
			panic(r)
		}
	}()
	if err := fn(); err != nil {
		m, rerr := e.history.Rollback(e.buf)
		e.restore(m)
		if rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	e.history.Commit(e.Marker())
	return nil
}

// InChange returns true while a transaction is open.
func (e *Engine) InChange() bool {
	return e.depth > 0
}

// Apply executes cmd and records it. Outside Change it forms its own
// transaction.
func (e *Engine) Apply(cmd Command) error {
	if e.depth == 0 {
		return e.Change(cmd.Description(), func() error {
			return e.history.Execute(cmd, e.buf)
		})
	}
	return e.history.Execute(cmd, e.buf)
}

// Undo reverses the most recent transaction.
func (e *Engine) Undo() error {
	m, err := e.history.Undo(e.buf)
	if err != nil {
		return err
	}
	e.restore(m)
	return nil
}

// Redo replays the most recently undone transaction.
func (e *Engine) Redo() error {
	m, err := e.history.Redo(e.buf)
	if err != nil {
		return err
	}
	e.restore(m)
	return nil
}

// SetFilter selects the lines for which keep returns true and hides the
// rest from targets and the display.
func (e *Engine) SetFilter(keep func(text string) bool) int {
	n := 0
	for addr := 1; addr <= e.buf.LineCount(); addr++ {
		sel := keep(e.buf.Text(addr))
		_ = e.buf.SetSelected(addr, sel)
		if sel {
			n++
		}
	}
	e.filtered = true
	return n
}

// ClearFilter shows every line again.
func (e *Engine) ClearFilter() {
	e.buf.ClearSelection()
	e.filtered = false
}

// Filtered returns true while an ALL filter is active.
func (e *Engine) Filtered() bool {
	return e.filtered
}

// Visible returns true if addr is shown under the current filter.
// Sentinels are always visible.
func (e *Engine) Visible(addr int) bool {
	if !e.filtered || !e.buf.IsLine(addr) {
		return true
	}
	return e.buf.Selected(addr)
}

// Runs splits span into the maximal runs of visible lines, in order.
// Without a filter the span is returned whole.
func (e *Engine) Runs(span Span) []Span {
	if !e.filtered {
		return []Span{span}
	}
	var runs []Span
	for addr := span.Start; addr <= span.End; addr++ {
		if !e.Visible(addr) {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].End == addr-1 {
			runs[n-1].End = addr
			continue
		}
		runs = append(runs, Span{Start: addr, End: addr})
	}
	return runs
}

// VisibleLines returns the text of the visible lines of span.
func (e *Engine) VisibleLines(span Span) []string {
	var out []string
	for _, r := range e.Runs(span) {
		out = append(out, e.buf.Range(r.Start, r.End)...)
	}
	return out
}

// MarkSaved records that the content matches the file on disk.
func (e *Engine) MarkSaved() {
	e.buf.MarkSaved()
}
