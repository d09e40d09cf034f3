package buffer

import (
	"fmt"

	"github.com/dshills/xedit/internal/xerr"
)

// Errors returned by buffer operations.
var (
	ErrOutOfRange = xerr.ErrOutOfRange
	ErrEmptyBlock = xerr.ErrEmptyBlock
)

// TOF is the address of the top-of-file sentinel.
const TOF = 0

// LineID identifies a line for as long as it exists in one buffer.
// IDs are assigned in increasing order and are never persisted.
type LineID uint64

// Line is a copy of one stored line.
type Line struct {
	ID       LineID
	Text     string
	Selected bool
}

// Buffer is an ordered, mutable sequence of lines.
type Buffer struct {
	lines   []Line
	nextID  LineID
	current int
	alt     int
}

// NewBuffer creates a new empty buffer positioned at TOF.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{nextID: 1}
	for _, opt := range opts {
		opt(b)
	}
	b.current = b.clamp(b.current)
	return b
}

// NewBufferFromLines creates a buffer holding a copy of lines.
func NewBufferFromLines(lines []string, opts ...Option) *Buffer {
	return NewBuffer(append([]Option{WithLines(lines)}, opts...)...)
}

func (b *Buffer) newLine(text string) Line {
	id := b.nextID
	b.nextID++
	return Line{ID: id, Text: text}
}

func (b *Buffer) clamp(addr int) int {
	if addr < TOF {
		return TOF
	}
	if addr > b.EOF() {
		return b.EOF()
	}
	return addr
}

// LineCount returns the number of real lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// IsEmpty returns true if the buffer holds no lines.
func (b *Buffer) IsEmpty() bool {
	return len(b.lines) == 0
}

// EOF returns the address of the end-of-file sentinel.
func (b *Buffer) EOF() int {
	return len(b.lines) + 1
}

// IsLine returns true if addr names a real line.
func (b *Buffer) IsLine(addr int) bool {
	return addr >= 1 && addr <= len(b.lines)
}

// IsValid returns true if addr is a line or a sentinel.
func (b *Buffer) IsValid(addr int) bool {
	return addr >= TOF && addr <= b.EOF()
}

func (b *Buffer) checkLine(addr int) error {
	if !b.IsLine(addr) {
		return fmt.Errorf("line %d of %d: %w", addr, len(b.lines), ErrOutOfRange)
	}
	return nil
}

func (b *Buffer) checkBlock(start, end int) error {
	if start > end {
		return fmt.Errorf("block %d-%d: %w", start, end, ErrEmptyBlock)
	}
	if err := b.checkLine(start); err != nil {
		return err
	}
	return b.checkLine(end)
}

// anchor converts an insertion anchor to the index after which to insert.
func (b *Buffer) anchor(after int) (int, error) {
	if !b.IsValid(after) {
		return 0, fmt.Errorf("anchor %d of %d: %w", after, len(b.lines), ErrOutOfRange)
	}
	if after > len(b.lines) {
		after = len(b.lines)
	}
	return after, nil
}

// Current returns the current-line pointer.
func (b *Buffer) Current() int {
	return b.current
}

// SetCurrent moves the current-line pointer. Sentinels are accepted.
func (b *Buffer) SetCurrent(addr int) error {
	if !b.IsValid(addr) {
		return fmt.Errorf("current %d of %d: %w", addr, len(b.lines), ErrOutOfRange)
	}
	b.current = addr
	return nil
}

// AtTOF returns true if the current line is the top-of-file sentinel.
func (b *Buffer) AtTOF() bool {
	return b.current == TOF
}

// AtEOF returns true if the current line is the end-of-file sentinel.
func (b *Buffer) AtEOF() bool {
	return b.current == b.EOF()
}

// Read returns the text of a line.
func (b *Buffer) Read(addr int) (string, error) {
	if err := b.checkLine(addr); err != nil {
		return "", err
	}
	return b.lines[addr-1].Text, nil
}

// Text returns the text of a line, or "" for sentinels and invalid addresses.
func (b *Buffer) Text(addr int) string {
	if !b.IsLine(addr) {
		return ""
	}
	return b.lines[addr-1].Text
}

// Line returns a copy of a stored line.
func (b *Buffer) Line(addr int) (Line, error) {
	if err := b.checkLine(addr); err != nil {
		return Line{}, err
	}
	return b.lines[addr-1], nil
}

// ID returns the identity of the line at addr.
func (b *Buffer) ID(addr int) (LineID, error) {
	if err := b.checkLine(addr); err != nil {
		return 0, err
	}
	return b.lines[addr-1].ID, nil
}

// Find returns the address of the line with the given identity.
func (b *Buffer) Find(id LineID) (int, bool) {
	for i := range b.lines {
		if b.lines[i].ID == id {
			return i + 1, true
		}
	}
	return 0, false
}

// Lines returns a copy of every line's text in order.
func (b *Buffer) Lines() []string {
	return b.Range(1, len(b.lines))
}

// Range returns the text of lines start through end inclusive.
// Invalid bounds are clipped; an empty result is returned for an empty range.
func (b *Buffer) Range(start, end int) []string {
	if start < 1 {
		start = 1
	}
	if end > len(b.lines) {
		end = len(b.lines)
	}
	if start > end {
		return nil
	}
	out := make([]string, 0, end-start+1)
	for _, l := range b.lines[start-1 : end] {
		out = append(out, l.Text)
	}
	return out
}

// Insert adds a line after the anchor and returns its address.
// TOF inserts at the top; EOF appends at the bottom.
func (b *Buffer) Insert(after int, text string) (int, error) {
	return b.InsertLines(after, []string{text})
}

// InsertLines adds lines after the anchor and returns the address of the first one.
func (b *Buffer) InsertLines(after int, texts []string) (int, error) {
	at, err := b.anchor(after)
	if err != nil {
		return 0, err
	}
	if len(texts) == 0 {
		return at, nil
	}

	added := make([]Line, len(texts))
	for i, text := range texts {
		added[i] = b.newLine(text)
	}
	b.lines = append(b.lines[:at], append(added, b.lines[at:]...)...)

	if b.current > at {
		b.current += len(texts)
	}
	b.alt++
	return at + 1, nil
}

// Delete removes a line and returns its text.
func (b *Buffer) Delete(addr int) (string, error) {
	removed, err := b.DeleteRange(addr, addr)
	if err != nil {
		return "", err
	}
	return removed[0], nil
}

// DeleteRange removes lines start through end inclusive and returns their text.
// A current line inside the range moves to the line that followed it.
func (b *Buffer) DeleteRange(start, end int) ([]string, error) {
	removed, err := b.RemoveLines(start, end)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(removed))
	for i, l := range removed {
		texts[i] = l.Text
	}
	return texts, nil
}

// RemoveLines is DeleteRange returning the removed lines whole, for
// RestoreLines to put back.
func (b *Buffer) RemoveLines(start, end int) ([]Line, error) {
	if err := b.checkBlock(start, end); err != nil {
		return nil, err
	}

	removed := append([]Line(nil), b.lines[start-1:end]...)
	b.lines = append(b.lines[:start-1], b.lines[end:]...)

	n := end - start + 1
	switch {
	case b.current > end:
		b.current -= n
	case b.current >= start:
		b.current = start
	}
	b.current = b.clamp(b.current)
	b.alt++
	return removed, nil
}

// RestoreLines inserts lines after the anchor keeping their identities and
// selection flags, and returns the address of the first one. The lines
// must have come from RemoveLines on this buffer.
func (b *Buffer) RestoreLines(after int, lines []Line) (int, error) {
	at, err := b.anchor(after)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return at, nil
	}
	for _, l := range lines {
		if l.ID == 0 || l.ID >= b.nextID {
			return 0, fmt.Errorf("restore line %d: unknown identity: %w", l.ID, ErrOutOfRange)
		}
	}

	restored := append([]Line(nil), lines...)
	b.lines = append(b.lines[:at], append(restored, b.lines[at:]...)...)

	if b.current > at {
		b.current += len(lines)
	}
	b.alt++
	return at + 1, nil
}

// Replace sets the text of a line and returns the previous text.
// The line keeps its identity and selection flag.
func (b *Buffer) Replace(addr int, text string) (string, error) {
	if err := b.checkLine(addr); err != nil {
		return "", err
	}
	old := b.lines[addr-1].Text
	b.lines[addr-1].Text = text
	b.alt++
	return old, nil
}

// MoveBlock moves lines start through end to follow dest, where dest is
// addressed before the move. A destination inside the block is rejected;
// destinations adjacent to the block leave the buffer unchanged.
// Moved lines keep their identities.
func (b *Buffer) MoveBlock(start, end, dest int) error {
	if err := b.checkBlock(start, end); err != nil {
		return err
	}
	at, err := b.anchor(dest)
	if err != nil {
		return err
	}
	if at >= start && at < end {
		return fmt.Errorf("move %d-%d after %d: destination inside block: %w", start, end, dest, ErrOutOfRange)
	}
	if at == end || at == start-1 {
		return nil
	}

	var curID LineID
	if b.IsLine(b.current) {
		curID = b.lines[b.current-1].ID
	}

	block := append([]Line(nil), b.lines[start-1:end]...)
	rest := append(append([]Line(nil), b.lines[:start-1]...), b.lines[end:]...)
	if at > end {
		at -= len(block)
	}
	b.lines = append(rest[:at], append(block, rest[at:]...)...)

	if curID != 0 {
		b.current, _ = b.Find(curID)
	}
	b.alt++
	return nil
}

// CopyBlock inserts copies of lines start through end after dest and returns
// the address of the first copy. Copies receive new identities.
func (b *Buffer) CopyBlock(start, end, dest int) (int, error) {
	if err := b.checkBlock(start, end); err != nil {
		return 0, err
	}
	if _, err := b.anchor(dest); err != nil {
		return 0, err
	}
	return b.InsertLines(dest, b.Range(start, end))
}

// Selected returns the ALL-view flag of a line.
func (b *Buffer) Selected(addr int) bool {
	if !b.IsLine(addr) {
		return false
	}
	return b.lines[addr-1].Selected
}

// SetSelected sets the ALL-view flag of a line.
// Selection is display state and does not count as an alteration.
func (b *Buffer) SetSelected(addr int, selected bool) error {
	if err := b.checkLine(addr); err != nil {
		return err
	}
	b.lines[addr-1].Selected = selected
	return nil
}

// ClearSelection resets the ALL-view flag of every line.
func (b *Buffer) ClearSelection() {
	for i := range b.lines {
		b.lines[i].Selected = false
	}
}

// AltCount returns the number of alterations since the last save.
func (b *Buffer) AltCount() int {
	return b.alt
}

// SetAltCount restores a previously observed alteration count.
func (b *Buffer) SetAltCount(n int) {
	if n < 0 {
		n = 0
	}
	b.alt = n
}

// MarkSaved resets the alteration count.
func (b *Buffer) MarkSaved() {
	b.alt = 0
}

// Modified returns true if the buffer has unsaved alterations.
func (b *Buffer) Modified() bool {
	return b.alt > 0
}
