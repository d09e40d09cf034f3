package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/xedit/internal/engine/history"
	"github.com/dshills/xedit/internal/engine/target"
	"github.com/dshills/xedit/internal/xerr"
)

func TestNew(t *testing.T) {
	e := New(WithLines([]string{"A", "B"}), WithMaxUndoEntries(5), WithReadOnly(true))

	if e.Buffer().LineCount() != 2 {
		t.Errorf("LineCount() = %d, want 2", e.Buffer().LineCount())
	}
	if e.Current() != 0 {
		t.Errorf("Current() = %d, want TOF", e.Current())
	}
	if e.History().MaxEntries() != 5 {
		t.Errorf("MaxEntries() = %d, want 5", e.History().MaxEntries())
	}
	if !e.ReadOnly() {
		t.Error("expected read-only engine")
	}
	if e.Column() != 1 {
		t.Errorf("Column() = %d, want 1", e.Column())
	}
}

func TestChangeUndoRestoresState(t *testing.T) {
	e := New(WithLines([]string{"A", "B", "C"}))
	e.SetCurrent(2)

	err := e.Change("edit", func() error {
		s := e.Settings()
		s.Trunc = 40
		e.SetSettings(s)
		if err := e.Apply(history.NewDeleteCommand(1, 1)); err != nil {
			return err
		}
		return e.SetCurrent(2)
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.Buffer().AltCount() != 1 {
		t.Errorf("AltCount() = %d, want 1", e.Buffer().AltCount())
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := e.Buffer().Lines(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("Lines() = %v", got)
	}
	if e.Current() != 2 || e.Settings().Trunc != 72 || e.Buffer().Modified() {
		t.Errorf("state after undo: current %d, trunc %d, alt %d", e.Current(), e.Settings().Trunc, e.Buffer().AltCount())
	}

	if err := e.Redo(); err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if e.Current() != 2 || e.Settings().Trunc != 40 || e.Buffer().Text(1) != "B" {
		t.Errorf("state after redo: current %d, trunc %d", e.Current(), e.Settings().Trunc)
	}
}

func TestChangeRollsBackOnError(t *testing.T) {
	e := New(WithLines([]string{"A", "B", "C"}))
	e.SetCurrent(1)

	boom := errors.New("boom")
	err := e.Change("batch", func() error {
		if err := e.Apply(history.NewInsertCommand(0, "X")); err != nil {
			return err
		}
		if err := e.Apply(history.NewReplaceCommand(2, "Y")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Change() error = %v, want boom", err)
	}
	if got := e.Buffer().Lines(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("Lines() = %v", got)
	}
	if e.Current() != 1 || e.Buffer().Modified() {
		t.Errorf("current %d alt %d after rollback", e.Current(), e.Buffer().AltCount())
	}
	if e.History().CanUndo() {
		t.Error("rolled back change should not be undoable")
	}
}

func TestChangeRollsBackOnPanic(t *testing.T) {
	e := New(WithLines([]string{"A"}))

	func() {
		defer func() { recover() }()
		e.Change("panic", func() error {
			e.Apply(history.NewInsertCommand(1, "B"))
			panic("boom")
		})
	}()

	if got := e.Buffer().Lines(); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("Lines() = %v", got)
	}
	if e.InChange() || e.History().IsGrouping() {
		t.Error("transaction should be closed after a panic")
	}
}

func TestNestedChangeJoins(t *testing.T) {
	e := New(WithLines([]string{"A"}))
	e.Change("outer", func() error {
		e.Apply(history.NewInsertCommand(1, "B"))
		return e.Change("inner", func() error {
			return e.Apply(history.NewInsertCommand(2, "C"))
		})
	})
	if e.History().UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", e.History().UndoCount())
	}
}

func TestApplyOutsideChange(t *testing.T) {
	e := New(WithLines([]string{"A"}))
	if err := e.Apply(history.NewInsertCommand(1, "B")); err != nil {
		t.Fatal(err)
	}
	if e.History().UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", e.History().UndoCount())
	}
}

func TestUndoNothing(t *testing.T) {
	e := New()
	if err := e.Undo(); !errors.Is(err, xerr.ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
}

func TestResolveUsesSettings(t *testing.T) {
	e := New(WithLines([]string{"abc", "ABC"}))

	addr, err := e.Resolve(target.Find("ABC"))
	if err != nil || addr != 1 {
		t.Errorf("Resolve() = %d, %v, want 1", addr, err)
	}

	s := e.Settings()
	s.CaseRespect = true
	e.SetSettings(s)
	addr, err = e.Resolve(target.Find("ABC"))
	if err != nil || addr != 2 {
		t.Errorf("Resolve() with CASE RESPECT = %d, %v, want 2", addr, err)
	}
}

func TestFilter(t *testing.T) {
	e := New(WithLines([]string{"apple", "banana", "avocado"}))

	n := e.SetFilter(func(text string) bool { return text[0] == 'a' })
	if n != 2 || !e.Filtered() {
		t.Fatalf("SetFilter() = %d, want 2", n)
	}
	if e.Visible(2) || !e.Visible(3) || !e.Visible(0) {
		t.Error("unexpected visibility")
	}

	addr, err := e.Resolve(target.Offset(2))
	if err != nil || addr != 3 {
		t.Errorf("Resolve(+2) = %d, %v, want 3", addr, err)
	}

	e.ClearFilter()
	if e.Filtered() || !e.Visible(2) {
		t.Error("ClearFilter should show every line")
	}
}

func TestRuns(t *testing.T) {
	e := New(WithLines([]string{"a1", "x", "a2", "a3", "y", "z", "a4"}))
	span := Span{Start: 1, End: 6}

	if got := e.Runs(span); !reflect.DeepEqual(got, []Span{span}) {
		t.Errorf("unfiltered Runs() = %v", got)
	}

	e.SetFilter(func(text string) bool { return text[0] == 'a' })
	want := []Span{{Start: 1, End: 1}, {Start: 3, End: 4}}
	if got := e.Runs(span); !reflect.DeepEqual(got, want) {
		t.Errorf("Runs() = %v, want %v", got, want)
	}
	if got := e.VisibleLines(span); !reflect.DeepEqual(got, []string{"a1", "a2", "a3"}) {
		t.Errorf("VisibleLines() = %q", got)
	}
	if got := e.Runs(Span{Start: 5, End: 6}); len(got) != 0 {
		t.Errorf("hidden span Runs() = %v", got)
	}
}

func TestUndoDeleteKeepsLineState(t *testing.T) {
	e := New(WithLines([]string{"A1", "x", "A2"}))
	e.SetFilter(func(text string) bool { return text[0] == 'A' })
	id, _ := e.Buffer().ID(3)

	if err := e.Apply(history.NewDeleteCommand(3, 3)); err != nil {
		t.Fatal(err)
	}
	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if !e.Visible(3) || e.Visible(2) {
		t.Error("undo lost the ALL flags")
	}
	if got, _ := e.Buffer().ID(3); got != id {
		t.Errorf("ID(3) = %d, want %d", got, id)
	}
}

func TestTextHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"truncate", Truncate("abcdef", 4), "abcd"},
		{"truncate short", Truncate("ab", 4), "ab"},
		{"truncate off", Truncate("abcdef", 0), "abcdef"},
		{"shift right", Shift("abc", 2, false, 72), "  abc"},
		{"shift right trunc", Shift("abcd", 2, false, 4), "  ab"},
		{"shift left", Shift("  abc", 3, true, 72), "bc"},
		{"shift left all", Shift("ab", 5, true, 72), ""},
		{"fold zone", Fold("hello world", true, 1, 5), "HELLO world"},
		{"fold lower", Fold("ABC", false, 2, 0), "Abc"},
		{"fold empty zone", Fold("abc", true, 5, 9), "abc"},
		{"upper", Upper("straße"), "STRASSE"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
