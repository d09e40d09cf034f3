package buffer

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer()

	if !b.IsEmpty() {
		t.Error("new buffer should be empty")
	}
	if b.EOF() != 1 {
		t.Errorf("EOF() = %d, want 1", b.EOF())
	}
	if !b.AtTOF() {
		t.Error("new buffer should be positioned at TOF")
	}
}

func TestNewBufferFromLines(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B", "C"}, WithCurrent(2))

	if b.LineCount() != 3 {
		t.Errorf("LineCount() = %d, want 3", b.LineCount())
	}
	if b.Current() != 2 {
		t.Errorf("Current() = %d, want 2", b.Current())
	}
	if b.Modified() {
		t.Error("loaded buffer should not be modified")
	}

	clamped := NewBufferFromLines([]string{"A"}, WithCurrent(10))
	if clamped.Current() != clamped.EOF() {
		t.Errorf("Current() = %d, want EOF %d", clamped.Current(), clamped.EOF())
	}
}

func TestBufferInsert(t *testing.T) {
	tests := []struct {
		name   string
		after  int
		want   []string
		wantAt int
	}{
		{"at TOF", 0, []string{"X", "A", "B"}, 1},
		{"middle", 1, []string{"A", "X", "B"}, 2},
		{"after last", 2, []string{"A", "B", "X"}, 3},
		{"at EOF", 3, []string{"A", "B", "X"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBufferFromLines([]string{"A", "B"})
			at, err := b.Insert(tt.after, "X")
			if err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
			if at != tt.wantAt {
				t.Errorf("Insert() = %d, want %d", at, tt.wantAt)
			}
			if got := b.Lines(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lines() = %v, want %v", got, tt.want)
			}
			if b.AltCount() != 1 {
				t.Errorf("AltCount() = %d, want 1", b.AltCount())
			}
		})
	}
}

func TestBufferInsertOutOfRange(t *testing.T) {
	b := NewBufferFromLines([]string{"A"})
	for _, after := range []int{-1, 3} {
		if _, err := b.Insert(after, "X"); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Insert(%d) error = %v, want ErrOutOfRange", after, err)
		}
	}
}

func TestBufferInsertShiftsCurrent(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B"}, WithCurrent(2))
	if _, err := b.InsertLines(0, []string{"X", "Y"}); err != nil {
		t.Fatal(err)
	}
	if b.Current() != 4 || b.Text(b.Current()) != "B" {
		t.Errorf("current = %d (%q), want 4 (B)", b.Current(), b.Text(b.Current()))
	}
}

func TestBufferDelete(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B", "C"}, WithCurrent(2))

	text, err := b.Delete(2)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if text != "B" {
		t.Errorf("Delete() = %q, want B", text)
	}
	if got := b.Lines(); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("Lines() = %v", got)
	}
	if b.Current() != 2 {
		t.Errorf("Current() = %d, want 2", b.Current())
	}
}

func TestBufferDeleteSentinels(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B"})
	for _, addr := range []int{TOF, b.EOF()} {
		if _, err := b.Delete(addr); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Delete(%d) error = %v, want ErrOutOfRange", addr, err)
		}
	}
	if b.AltCount() != 0 {
		t.Error("failed deletes should not count as alterations")
	}
}

func TestBufferDeleteRange(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B", "C", "D"}, WithCurrent(4))

	removed, err := b.DeleteRange(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(removed, []string{"B", "C"}) {
		t.Errorf("removed = %v", removed)
	}
	if b.Current() != 2 || b.Text(2) != "D" {
		t.Errorf("current = %d, want 2", b.Current())
	}

	if _, err := b.DeleteRange(2, 1); !errors.Is(err, ErrEmptyBlock) {
		t.Errorf("DeleteRange(2, 1) error = %v, want ErrEmptyBlock", err)
	}
}

func TestBufferRestoreLines(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B", "C", "D"}, WithCurrent(4))
	_ = b.SetSelected(3, true)
	idB, _ := b.ID(2)

	removed, err := b.RemoveLines(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if at, err := b.RestoreLines(1, removed); err != nil || at != 2 {
		t.Fatalf("RestoreLines() = %d, %v, want 2", at, err)
	}
	if !reflect.DeepEqual(b.Lines(), []string{"A", "B", "C", "D"}) {
		t.Errorf("lines = %q", b.Lines())
	}
	if id, _ := b.ID(2); id != idB {
		t.Errorf("ID(2) = %d, want %d", id, idB)
	}
	if b.Selected(2) || !b.Selected(3) {
		t.Error("selection flags not restored")
	}
	if b.Current() != 4 {
		t.Errorf("current = %d, want 4", b.Current())
	}

	if _, err := b.RestoreLines(0, []Line{{ID: 99, Text: "X"}}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("foreign line error = %v, want ErrOutOfRange", err)
	}
}

func TestBufferDeleteLastLineMovesToEOF(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B"}, WithCurrent(2))
	if _, err := b.Delete(2); err != nil {
		t.Fatal(err)
	}
	if !b.AtEOF() {
		t.Errorf("Current() = %d, want EOF %d", b.Current(), b.EOF())
	}
}

func TestBufferReplace(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B"})
	id, _ := b.ID(1)
	b.SetSelected(1, true)

	old, err := b.Replace(1, "X")
	if err != nil {
		t.Fatal(err)
	}
	if old != "A" {
		t.Errorf("Replace() = %q, want A", old)
	}
	line, _ := b.Line(1)
	if line.Text != "X" || line.ID != id || !line.Selected {
		t.Errorf("Line(1) = %+v, want text X with id %d and selection kept", line, id)
	}
}

func TestBufferMoveBlock(t *testing.T) {
	tests := []struct {
		name              string
		start, end, dest int
		want              []string
	}{
		{"down", 1, 2, 4, []string{"C", "D", "A", "B", "E"}},
		{"up", 4, 5, 1, []string{"A", "D", "E", "B", "C"}},
		{"to top", 3, 3, 0, []string{"C", "A", "B", "D", "E"}},
		{"to bottom", 1, 1, 6, []string{"B", "C", "D", "E", "A"}},
		{"adjacent after", 2, 3, 3, []string{"A", "B", "C", "D", "E"}},
		{"adjacent before", 2, 3, 1, []string{"A", "B", "C", "D", "E"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBufferFromLines([]string{"A", "B", "C", "D", "E"})
			if err := b.MoveBlock(tt.start, tt.end, tt.dest); err != nil {
				t.Fatalf("MoveBlock() error = %v", err)
			}
			if got := b.Lines(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lines() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBufferMoveBlockErrors(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B", "C", "D"})

	if err := b.MoveBlock(1, 3, 2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("destination inside block: error = %v, want ErrOutOfRange", err)
	}
	if err := b.MoveBlock(3, 1, 4); !errors.Is(err, ErrEmptyBlock) {
		t.Errorf("reversed block: error = %v, want ErrEmptyBlock", err)
	}
	if err := b.MoveBlock(0, 1, 4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("block from TOF: error = %v, want ErrOutOfRange", err)
	}
}

func TestBufferMoveBlockKeepsCurrentLine(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B", "C", "D"}, WithCurrent(1))
	if err := b.MoveBlock(1, 1, 3); err != nil {
		t.Fatal(err)
	}
	if b.Text(b.Current()) != "A" {
		t.Errorf("current line = %q, want A", b.Text(b.Current()))
	}
}

func TestBufferCopyBlock(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B", "C"})
	origID, _ := b.ID(1)

	at, err := b.CopyBlock(1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if at != 3 {
		t.Errorf("CopyBlock() = %d, want 3", at)
	}
	if got := b.Lines(); !reflect.DeepEqual(got, []string{"A", "B", "A", "B", "C"}) {
		t.Errorf("Lines() = %v", got)
	}
	copyID, _ := b.ID(3)
	if copyID == origID {
		t.Error("copied line should receive a new identity")
	}
}

func TestBufferFind(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B", "C"})
	id, _ := b.ID(3)
	b.Delete(1)

	addr, ok := b.Find(id)
	if !ok || addr != 2 {
		t.Errorf("Find() = %d, %v, want 2, true", addr, ok)
	}
}

func TestBufferSetCurrent(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B"})

	for _, addr := range []int{0, 1, 2, 3} {
		if err := b.SetCurrent(addr); err != nil {
			t.Errorf("SetCurrent(%d) error = %v", addr, err)
		}
	}
	if err := b.SetCurrent(4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetCurrent(4) error = %v, want ErrOutOfRange", err)
	}
}

func TestBufferAltCount(t *testing.T) {
	b := NewBufferFromLines([]string{"A"})
	b.Insert(1, "B")
	b.Replace(1, "X")
	if b.AltCount() != 2 || !b.Modified() {
		t.Errorf("AltCount() = %d, want 2", b.AltCount())
	}
	b.MarkSaved()
	if b.Modified() {
		t.Error("MarkSaved should clear the modified state")
	}
	b.SetAltCount(-3)
	if b.AltCount() != 0 {
		t.Errorf("SetAltCount(-3) gave %d, want 0", b.AltCount())
	}
}

func TestBufferRange(t *testing.T) {
	b := NewBufferFromLines([]string{"A", "B", "C"})
	if got := b.Range(0, 10); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("Range(0, 10) = %v", got)
	}
	if got := b.Range(3, 2); got != nil {
		t.Errorf("Range(3, 2) = %v, want nil", got)
	}
}
