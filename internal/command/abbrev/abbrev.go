// Package abbrev resolves IBM-style abbreviations: each name carries a
// minimum length, and an input matches every name it is a prefix of once it
// is at least that long.
package abbrev

import (
	"sort"
	"strings"

	"github.com/dshills/xedit/internal/xerr"
)

// Entry is one name in a table.
type Entry struct {
	Name string // Canonical upper-case name
	Min  int    // Shortest accepted abbreviation
}

// Table is a static set of abbreviable names.
type Table struct {
	entries []Entry
}

// New creates a table. Names are stored upper-case and sorted.
func New(entries ...Entry) *Table {
	t := &Table{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		e.Name = strings.ToUpper(e.Name)
		if e.Min <= 0 || e.Min > len(e.Name) {
			e.Min = len(e.Name)
		}
		t.entries = append(t.entries, e)
	}
	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].Name < t.entries[j].Name })
	return t
}

// Match returns every name input abbreviates.
func (t *Table) Match(input string) []string {
	input = strings.ToUpper(input)
	if input == "" {
		return nil
	}
	var out []string
	for _, e := range t.entries {
		if e.Name == input {
			return []string{e.Name}
		}
		if len(input) >= e.Min && strings.HasPrefix(e.Name, input) {
			out = append(out, e.Name)
		}
	}
	return out
}

// Resolve returns the single name input abbreviates. It fails with
// xerr.UnknownError when nothing matches and xerr.AmbiguousError when
// several names do.
func (t *Table) Resolve(input string) (string, error) {
	matches := t.Match(input)
	switch len(matches) {
	case 0:
		return "", &xerr.UnknownError{Verb: strings.ToUpper(input)}
	case 1:
		return matches[0], nil
	default:
		return "", &xerr.AmbiguousError{Input: strings.ToUpper(input), Candidates: matches}
	}
}

// Names returns every canonical name in sorted order.
func (t *Table) Names() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Name
	}
	return out
}

// Entries returns a copy of the table.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}
