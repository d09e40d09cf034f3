// Package ring holds the files open in an editing session. The ring is
// cyclic: moving past the last entry returns to the first.
//
// Each entry owns its engine, undo log and pending prefix batch. Switching
// entries only changes which one receives subsequent commands.
package ring

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/prefix"
	"github.com/dshills/xedit/internal/xerr"
)

// ErrNoEntry is returned for an index or id that names no entry.
var ErrNoEntry = fmt.Errorf("no such ring entry: %w", xerr.ErrOutOfRange)

// Identity names the file behind an entry. The ring only compares and
// displays identities; two identities are the same file when their
// display forms are equal.
type Identity = fmt.Stringer

// Entry is one open file.
type Entry struct {
	ID       uuid.UUID
	Identity Identity
	Engine   *engine.Engine
	Prefix   *prefix.Batch

	// Changed is set when the file changed on disk after it was read.
	Changed bool
}

// Name returns the display form of the identity.
func (e *Entry) Name() string {
	if e.Identity == nil {
		return ""
	}
	return e.Identity.String()
}

// Ring is the ordered collection of open files.
type Ring struct {
	entries []*Entry
	current int // -1 when empty
}

// New creates an empty ring.
func New() *Ring {
	return &Ring{current: -1}
}

// Len returns the number of open files.
func (r *Ring) Len() int {
	return len(r.entries)
}

// IsEmpty returns true if no file is open.
func (r *Ring) IsEmpty() bool {
	return len(r.entries) == 0
}

// Open adds a file after the current entry and makes it current. If the
// identity is already in the ring, that entry becomes current instead and
// added is false.
func (r *Ring) Open(id Identity, e *engine.Engine) (idx int, added bool) {
	if i, ok := r.Find(id); ok {
		r.current = i
		return i, false
	}
	entry := &Entry{
		ID:       uuid.New(),
		Identity: id,
		Engine:   e,
		Prefix:   prefix.NewBatch(),
	}
	at := r.current + 1
	r.entries = append(r.entries[:at], append([]*Entry{entry}, r.entries[at:]...)...)
	r.current = at
	return at, true
}

// Close removes entry i. The entry after it becomes current if i was
// current; closing the last entry leaves the ring empty.
func (r *Ring) Close(i int) error {
	if i < 0 || i >= len(r.entries) {
		return ErrNoEntry
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	switch {
	case len(r.entries) == 0:
		r.current = -1
	case i < r.current:
		r.current--
	case i == r.current:
		r.current = i % len(r.entries)
	}
	return nil
}

// Index returns the index of the current entry, or -1 when empty.
func (r *Ring) Index() int {
	return r.current
}

// Current returns the current entry.
func (r *Ring) Current() (*Entry, error) {
	if r.current < 0 {
		return nil, xerr.ErrNoActiveFile
	}
	return r.entries[r.current], nil
}

// Select makes entry i current.
func (r *Ring) Select(i int) error {
	if i < 0 || i >= len(r.entries) {
		return ErrNoEntry
	}
	r.current = i
	return nil
}

// Next makes the following entry current, wrapping past the last.
func (r *Ring) Next() (int, error) {
	return r.step(1)
}

// Prev makes the preceding entry current, wrapping past the first.
func (r *Ring) Prev() (int, error) {
	return r.step(-1)
}

func (r *Ring) step(delta int) (int, error) {
	n := len(r.entries)
	if n == 0 {
		return -1, xerr.ErrNoActiveFile
	}
	r.current = ((r.current+delta)%n + n) % n
	return r.current, nil
}

// Entry returns entry i.
func (r *Ring) Entry(i int) (*Entry, error) {
	if i < 0 || i >= len(r.entries) {
		return nil, ErrNoEntry
	}
	return r.entries[i], nil
}

// Entries returns the entries in ring order.
func (r *Ring) Entries() []*Entry {
	return append([]*Entry(nil), r.entries...)
}

// Find returns the index of the entry for id.
func (r *Ring) Find(id Identity) (int, bool) {
	if id == nil {
		return -1, false
	}
	name := id.String()
	for i, e := range r.entries {
		if e.Name() == name {
			return i, true
		}
	}
	return -1, false
}

// ByID returns the index of the entry with the given id.
func (r *Ring) ByID(id uuid.UUID) (int, error) {
	for i, e := range r.entries {
		if e.ID == id {
			return i, nil
		}
	}
	return -1, ErrNoEntry
}

// Modified returns the entries with unsaved changes.
func (r *Ring) Modified() []*Entry {
	var out []*Entry
	for _, e := range r.entries {
		if e.Engine != nil && e.Engine.Buffer().Modified() {
			out = append(out, e)
		}
	}
	return out
}
