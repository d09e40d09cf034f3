package prefix

import (
	"sort"

	"github.com/dshills/xedit/internal/engine/buffer"
	"github.com/dshills/xedit/internal/xerr"
)

// State is the lifecycle state of a batch.
type State uint8

const (
	Idle State = iota
	Accumulating
	Committing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case Committing:
		return "committing"
	default:
		return "unknown"
	}
}

// position identifies the line an annotation was typed on. Real lines are
// tracked by identity so that edits made between entry and commit do not
// move the annotation to another line.
type position struct {
	id  buffer.LineID
	eof bool // Zero id: TOF unless eof
}

func positionOf(buf *buffer.Buffer, addr int) position {
	if addr == buffer.TOF {
		return position{}
	}
	if addr == buf.EOF() {
		return position{eof: true}
	}
	id, _ := buf.ID(addr)
	return position{id: id}
}

// resolve returns the current address of p, or false if its line is gone.
func (p position) resolve(buf *buffer.Buffer) (int, bool) {
	switch {
	case p.id != 0:
		return buf.Find(p.id)
	case p.eof:
		return buf.EOF(), true
	default:
		return buffer.TOF, true
	}
}

type entry struct {
	pos position
	Annotation
}

// Pending is an annotation with its current address.
type Pending struct {
	Addr int
	Annotation
}

// Batch is the set of prefix commands pending for one file.
type Batch struct {
	entries    []entry
	committing bool
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// State returns the lifecycle state.
func (b *Batch) State() State {
	switch {
	case b.committing:
		return Committing
	case len(b.entries) > 0:
		return Accumulating
	default:
		return Idle
	}
}

// Len returns the number of pending annotations.
func (b *Batch) Len() int {
	return len(b.entries)
}

// Add records the prefix text typed on line addr, replacing anything
// pending there. Blank text clears the line. Only the syntax of the text
// and its placement on TOF or EOF are checked; the batch as a whole is
// validated by Commit.
func (b *Batch) Add(buf *buffer.Buffer, addr int, text string) error {
	if !buf.IsValid(addr) {
		return xerr.ErrOutOfRange
	}
	if isBlank(text) {
		b.Clear(buf, addr)
		return nil
	}
	a, err := Parse(text)
	if err != nil {
		return err
	}
	info := verbs[a.Verb]
	if (addr == buffer.TOF && !info.onTOF) || (addr == buf.EOF() && !info.onEOF) {
		return xerr.Syntax("prefix command %q not allowed on %s", a.Text, sentinelName(buf, addr))
	}

	pos := positionOf(buf, addr)
	for i := range b.entries {
		if b.entries[i].pos == pos {
			b.entries[i].Annotation = a
			return nil
		}
	}
	b.entries = append(b.entries, entry{pos: pos, Annotation: a})
	return nil
}

// Clear removes the annotation on line addr.
func (b *Batch) Clear(buf *buffer.Buffer, addr int) {
	pos := positionOf(buf, addr)
	for i := range b.entries {
		if b.entries[i].pos == pos {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return
		}
	}
}

// Reset discards every pending annotation.
func (b *Batch) Reset() {
	b.entries = nil
}

// Text returns the prefix text pending on line addr, if any.
func (b *Batch) Text(buf *buffer.Buffer, addr int) (string, bool) {
	pos := positionOf(buf, addr)
	for _, e := range b.entries {
		if e.pos == pos {
			return e.Text, true
		}
	}
	return "", false
}

// Pending returns the annotations whose lines still exist, in address order.
func (b *Batch) Pending(buf *buffer.Buffer) []Pending {
	out := make([]Pending, 0, len(b.entries))
	for _, e := range b.entries {
		if addr, ok := e.pos.resolve(buf); ok {
			out = append(out, Pending{Addr: addr, Annotation: e.Annotation})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '=' {
			return false
		}
	}
	return true
}

func sentinelName(buf *buffer.Buffer, addr int) string {
	if addr == buffer.TOF {
		return "top of file"
	}
	return "end of file"
}
