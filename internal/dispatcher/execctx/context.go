// Package execctx provides the execution context for command handlers.
package execctx

import (
	"context"
	"fmt"

	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/ring"
	"github.com/dshills/xedit/internal/xerr"
)

// FileSystem is the storage the editor reads and writes files through.
// Identities are opaque: the editor only compares and displays them.
type FileSystem interface {
	// Identify builds an identity from command operands. Components not
	// given are taken from base, which may be nil.
	Identify(words []string, base fmt.Stringer) (fmt.Stringer, error)

	// Read returns the lines of a file.
	Read(id fmt.Stringer) ([]string, error)

	// Write replaces the content of a file.
	Write(id fmt.Stringer, lines []string) error

	// Exists reports whether the file is present.
	Exists(id fmt.Stringer) bool
}

// ReadOnlyChecker is implemented by file systems that can tell in advance
// that a file cannot be written back.
type ReadOnlyChecker interface {
	ReadOnly(id fmt.Stringer) bool
}

// EngineFactory creates the editing session of a newly opened file.
type EngineFactory func(lines []string, readOnly bool) *engine.Engine

// ExecutionContext carries everything a handler may touch.
type ExecutionContext struct {
	// Context bounds blocking work such as macros.
	Context context.Context

	// Ring is the set of open files.
	Ring *ring.Ring

	// Entry is the current file, nil when the ring is empty.
	Entry *ring.Entry

	// Files reads and writes files. Nil disables file commands.
	Files FileSystem

	// NewEngine creates engines for files opened by XEDIT.
	NewEngine EngineFactory

	// Keys holds the PF key definitions, by key number.
	Keys map[int]string

	// PageSize is the number of lines FORWARD and BACKWARD scroll.
	PageSize int

	// Depth is the macro nesting level the command runs at.
	Depth int
}

// New creates a context for the current entry of r.
func New(ctx context.Context, r *ring.Ring) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &ExecutionContext{Context: ctx, Ring: r, PageSize: 1}
	c.Refresh()
	return c
}

// Refresh re-reads the current entry after the ring changed.
func (c *ExecutionContext) Refresh() {
	c.Entry = nil
	if c.Ring == nil {
		return
	}
	if e, err := c.Ring.Current(); err == nil {
		c.Entry = e
	}
}

// HasFile returns true if a file is open.
func (c *ExecutionContext) HasFile() bool {
	return c.Entry != nil
}

// Engine returns the engine of the current file.
func (c *ExecutionContext) Engine() (*engine.Engine, error) {
	if c.Entry == nil {
		return nil, xerr.ErrNoActiveFile
	}
	return c.Entry.Engine, nil
}

// RequireFiles fails when no file system is configured.
func (c *ExecutionContext) RequireFiles() error {
	if c.Files == nil {
		return ErrNoFileSystem
	}
	return nil
}

// Identity returns the identity of the current file, nil when none is open.
func (c *ExecutionContext) Identity() fmt.Stringer {
	if c.Entry == nil {
		return nil
	}
	return c.Entry.Identity
}

// ReadOnly reports whether id is known to be unwritable.
func (c *ExecutionContext) ReadOnly(id fmt.Stringer) bool {
	if ro, ok := c.Files.(ReadOnlyChecker); ok {
		return ro.ReadOnly(id)
	}
	return false
}

// Open adds a file to the ring and makes it current. A file already in the
// ring is selected instead and added is false.
func (c *ExecutionContext) Open(id fmt.Stringer, lines []string, readOnly bool) (*ring.Entry, bool) {
	if i, ok := c.Ring.Find(id); ok {
		_ = c.Ring.Select(i)
		c.Refresh()
		return c.Entry, false
	}
	factory := c.NewEngine
	if factory == nil {
		factory = func(lines []string, readOnly bool) *engine.Engine {
			return engine.New(engine.WithLines(lines), engine.WithReadOnly(readOnly))
		}
	}
	_, added := c.Ring.Open(id, factory(lines, readOnly))
	c.Refresh()
	return c.Entry, added
}

// Close removes the current file from the ring.
func (c *ExecutionContext) Close() error {
	if c.Entry == nil {
		return xerr.ErrNoActiveFile
	}
	if err := c.Ring.Close(c.Ring.Index()); err != nil {
		return err
	}
	c.Refresh()
	return nil
}
