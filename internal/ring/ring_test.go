package ring

import (
	"errors"
	"testing"

	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/xerr"
)

type name string

func (n name) String() string { return string(n) }

func open(t *testing.T, r *Ring, names ...string) {
	t.Helper()
	for _, n := range names {
		if _, added := r.Open(name(n), engine.New()); !added {
			t.Fatalf("Open(%s) reused an entry", n)
		}
	}
}

func names(r *Ring) []string {
	var out []string
	for _, e := range r.Entries() {
		out = append(out, e.Name())
	}
	return out
}

func TestEmptyRing(t *testing.T) {
	r := New()
	if _, err := r.Current(); !errors.Is(err, xerr.ErrNoActiveFile) {
		t.Errorf("Current() error = %v, want no active file", err)
	}
	if _, err := r.Next(); !errors.Is(err, xerr.ErrNoActiveFile) {
		t.Errorf("Next() error = %v, want no active file", err)
	}
	if r.Index() != -1 {
		t.Errorf("Index() = %d, want -1", r.Index())
	}
}

func TestOpenInsertsAfterCurrent(t *testing.T) {
	r := New()
	open(t, r, "A", "B")
	if err := r.Select(0); err != nil {
		t.Fatal(err)
	}
	open(t, r, "C")

	got := names(r)
	want := []string{"A", "C", "B"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("ring = %v, want %v", got, want)
		}
	}
	if r.Index() != 1 {
		t.Errorf("Index() = %d, want 1", r.Index())
	}

	idx, added := r.Open(name("B"), engine.New())
	if added || idx != 2 || r.Len() != 3 {
		t.Errorf("Open(B) = %d, %v (len %d), want existing entry 2", idx, added, r.Len())
	}
}

func TestNextPrevWrap(t *testing.T) {
	r := New()
	open(t, r, "A", "B", "C")

	tests := []struct {
		step func() (int, error)
		want int
	}{
		{r.Next, 0},
		{r.Next, 1},
		{r.Prev, 0},
		{r.Prev, 2},
	}
	for i, tt := range tests {
		got, err := tt.step()
		if err != nil || got != tt.want {
			t.Errorf("step %d = %d, %v, want %d", i, got, err, tt.want)
		}
	}
}

func TestClose(t *testing.T) {
	r := New()
	open(t, r, "A", "B", "C")
	_ = r.Select(1)

	if err := r.Close(1); err != nil {
		t.Fatal(err)
	}
	if e, _ := r.Current(); e.Name() != "C" {
		t.Errorf("Current() = %s, want C", e.Name())
	}
	if err := r.Close(0); err != nil {
		t.Fatal(err)
	}
	if r.Index() != 0 {
		t.Errorf("Index() = %d, want 0", r.Index())
	}
	if err := r.Close(0); err != nil {
		t.Fatal(err)
	}
	if !r.IsEmpty() || r.Index() != -1 {
		t.Errorf("ring not empty after closing every entry")
	}
	if err := r.Close(0); !errors.Is(err, ErrNoEntry) {
		t.Errorf("Close() on empty ring error = %v", err)
	}
}

func TestEntriesHaveOwnState(t *testing.T) {
	r := New()
	open(t, r, "A", "B")
	a, _ := r.Entry(0)
	b, _ := r.Entry(1)
	if a.ID == b.ID {
		t.Error("entries share an id")
	}
	if a.Prefix == b.Prefix || a.Engine == b.Engine {
		t.Error("entries share state")
	}
	if i, err := r.ByID(b.ID); err != nil || i != 1 {
		t.Errorf("ByID() = %d, %v, want 1", i, err)
	}

	if err := a.Engine.SetCurrent(0); err != nil {
		t.Fatal(err)
	}
	if len(r.Modified()) != 0 {
		t.Errorf("Modified() = %d entries, want 0", len(r.Modified()))
	}
}
