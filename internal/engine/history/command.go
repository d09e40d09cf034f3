package history

import (
	"fmt"

	"github.com/dshills/xedit/internal/engine/buffer"
)

// Command represents a reversible line edit.
type Command interface {
	// Execute performs the command and returns an error if it fails.
	Execute(buf *buffer.Buffer) error

	// Undo reverses the command and returns an error if it fails.
	Undo(buf *buffer.Buffer) error

	// Description returns a human-readable description of the command.
	Description() string
}

// InsertCommand inserts lines after an anchor.
type InsertCommand struct {
	After int
	Lines []string
	at    int
}

// NewInsertCommand creates a new insert command.
func NewInsertCommand(after int, lines ...string) *InsertCommand {
	return &InsertCommand{After: after, Lines: lines}
}

// Execute inserts the lines.
func (c *InsertCommand) Execute(buf *buffer.Buffer) error {
	if len(c.Lines) == 0 {
		return nil
	}
	at, err := buf.InsertLines(c.After, c.Lines)
	if err != nil {
		return fmt.Errorf("insert after %d: %w", c.After, err)
	}
	c.at = at
	return nil
}

// Undo removes the inserted lines.
func (c *InsertCommand) Undo(buf *buffer.Buffer) error {
	if len(c.Lines) == 0 {
		return nil
	}
	if _, err := buf.DeleteRange(c.at, c.at+len(c.Lines)-1); err != nil {
		return fmt.Errorf("undo insert: %w", err)
	}
	return nil
}

// At returns the address of the first inserted line after Execute.
func (c *InsertCommand) At() int {
	return c.at
}

// Description returns a human-readable description.
func (c *InsertCommand) Description() string {
	return fmt.Sprintf("Insert %d line(s)", len(c.Lines))
}

// DeleteCommand deletes lines Start through End.
type DeleteCommand struct {
	Start, End int
	removed    []buffer.Line
}

// NewDeleteCommand creates a new delete command.
func NewDeleteCommand(start, end int) *DeleteCommand {
	return &DeleteCommand{Start: start, End: end}
}

// Execute deletes the block.
func (c *DeleteCommand) Execute(buf *buffer.Buffer) error {
	removed, err := buf.RemoveLines(c.Start, c.End)
	if err != nil {
		return fmt.Errorf("delete %d-%d: %w", c.Start, c.End, err)
	}
	c.removed = removed
	return nil
}

// Undo puts the deleted lines back with their identities and ALL flags.
func (c *DeleteCommand) Undo(buf *buffer.Buffer) error {
	if _, err := buf.RestoreLines(c.Start-1, c.removed); err != nil {
		return fmt.Errorf("undo delete: %w", err)
	}
	return nil
}

// Description returns a human-readable description.
func (c *DeleteCommand) Description() string {
	return fmt.Sprintf("Delete %d line(s)", c.End-c.Start+1)
}

// ReplaceCommand replaces the text of one line.
type ReplaceCommand struct {
	Addr int
	Text string
	old  string
}

// NewReplaceCommand creates a new replace command.
func NewReplaceCommand(addr int, text string) *ReplaceCommand {
	return &ReplaceCommand{Addr: addr, Text: text}
}

// Execute replaces the line.
func (c *ReplaceCommand) Execute(buf *buffer.Buffer) error {
	old, err := buf.Replace(c.Addr, c.Text)
	if err != nil {
		return fmt.Errorf("replace %d: %w", c.Addr, err)
	}
	c.old = old
	return nil
}

// Undo restores the previous text.
func (c *ReplaceCommand) Undo(buf *buffer.Buffer) error {
	if _, err := buf.Replace(c.Addr, c.old); err != nil {
		return fmt.Errorf("undo replace: %w", err)
	}
	return nil
}

// Description returns a human-readable description.
func (c *ReplaceCommand) Description() string {
	return fmt.Sprintf("Replace line %d", c.Addr)
}

// MoveCommand moves lines Start through End after Dest.
type MoveCommand struct {
	Start, End, Dest int
	newStart         int
	moved            bool
}

// NewMoveCommand creates a new move command.
func NewMoveCommand(start, end, dest int) *MoveCommand {
	return &MoveCommand{Start: start, End: end, Dest: dest}
}

// Execute moves the block.
func (c *MoveCommand) Execute(buf *buffer.Buffer) error {
	anchor := c.Dest
	if anchor > buf.LineCount() {
		anchor = buf.LineCount()
	}
	if err := buf.MoveBlock(c.Start, c.End, c.Dest); err != nil {
		return fmt.Errorf("move %d-%d: %w", c.Start, c.End, err)
	}
	c.moved = anchor != c.End && anchor != c.Start-1
	switch {
	case !c.moved:
		c.newStart = c.Start
	case anchor > c.End:
		c.newStart = anchor - (c.End - c.Start)
	default:
		c.newStart = anchor + 1
	}
	return nil
}

// Undo moves the block back to where it came from.
func (c *MoveCommand) Undo(buf *buffer.Buffer) error {
	if !c.moved {
		return nil
	}
	size := c.End - c.Start + 1
	back := c.Start - 1
	if c.newStart < c.Start {
		back = c.End
	}
	if err := buf.MoveBlock(c.newStart, c.newStart+size-1, back); err != nil {
		return fmt.Errorf("undo move: %w", err)
	}
	return nil
}

// NewStart returns the address of the first moved line after Execute.
func (c *MoveCommand) NewStart() int {
	return c.newStart
}

// Description returns a human-readable description.
func (c *MoveCommand) Description() string {
	return fmt.Sprintf("Move %d line(s)", c.End-c.Start+1)
}

// CopyCommand copies lines Start through End after Dest.
type CopyCommand struct {
	Start, End, Dest int
	at               int
}

// NewCopyCommand creates a new copy command.
func NewCopyCommand(start, end, dest int) *CopyCommand {
	return &CopyCommand{Start: start, End: end, Dest: dest}
}

// Execute inserts the copies.
func (c *CopyCommand) Execute(buf *buffer.Buffer) error {
	at, err := buf.CopyBlock(c.Start, c.End, c.Dest)
	if err != nil {
		return fmt.Errorf("copy %d-%d: %w", c.Start, c.End, err)
	}
	c.at = at
	return nil
}

// Undo removes the copies.
func (c *CopyCommand) Undo(buf *buffer.Buffer) error {
	if _, err := buf.DeleteRange(c.at, c.at+c.End-c.Start); err != nil {
		return fmt.Errorf("undo copy: %w", err)
	}
	return nil
}

// At returns the address of the first copy after Execute.
func (c *CopyCommand) At() int {
	return c.at
}

// Description returns a human-readable description.
func (c *CopyCommand) Description() string {
	return fmt.Sprintf("Copy %d line(s)", c.End-c.Start+1)
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order.
func (c *CompoundCommand) Execute(buf *buffer.Buffer) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(buf); err != nil {
			// On error, try to undo what we've done
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(buf)
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo(buf *buffer.Buffer) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(buf); err != nil {
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
