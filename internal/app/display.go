package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/engine/buffer"
	"github.com/dshills/xedit/internal/engine/history"
	"github.com/dshills/xedit/internal/engine/settings"
	"github.com/dshills/xedit/internal/ring"
)

// Sentinel line texts.
const (
	TOFText = "* * * Top of File * * *"
	EOFText = "* * * End of File * * *"
)

// RowKind says what a window row shows.
type RowKind uint8

const (
	RowBlank RowKind = iota // Above TOF or below EOF
	RowLine
	RowTOF
	RowEOF
)

// Row is one line of the window.
type Row struct {
	Kind     RowKind
	Addr     int // -1 for blank rows
	Text     string
	Current  bool
	Selected bool   // Matched by ALL
	Modified bool   // Differs from the file as read or last saved
	Prefix   string // Pending prefix command
}

// Window is what a renderer draws for the current file.
type Window struct {
	ID        uuid.UUID
	File      string
	Rows      []Row
	Current   int
	Column    int
	Size      int
	Alt       int
	Modified  bool
	Changed   bool // The file changed on disk
	ReadOnly  bool
	Filtered  bool
	InputMode bool
	Message   string
	Settings  settings.Settings
}

// View returns a window of rows lines around the current line. The
// current line sits on the CURLINE row, the middle one by default. Lines
// hidden by ALL are skipped.
func (s *Session) View(rows int) (Window, error) {
	entry, err := s.Ring().Current()
	if err != nil {
		return Window{Message: s.message}, err
	}
	if rows < 1 {
		rows = 1
	}

	e := entry.Engine
	buf := e.Buffer()
	st := e.Settings()
	base := s.baselineOf(entry)

	w := Window{
		ID:        entry.ID,
		File:      entry.Name(),
		Rows:      make([]Row, rows),
		Current:   e.Current(),
		Column:    e.Column(),
		Size:      buf.LineCount(),
		Alt:       buf.AltCount(),
		Modified:  buf.Modified(),
		Changed:   entry.Changed,
		ReadOnly:  e.ReadOnly(),
		Filtered:  e.Filtered(),
		InputMode: s.inputMode,
		Message:   s.message,
		Settings:  st,
	}

	cur := rows / 2
	if st.CurLine > 0 {
		cur = min(st.CurLine-1, rows-1)
	}

	w.Rows[cur] = s.row(entry, base, w.Current)
	w.Rows[cur].Current = true
	addr := w.Current
	for i := cur - 1; i >= 0; i-- {
		addr = prevVisible(e, addr)
		w.Rows[i] = s.row(entry, base, addr)
	}
	addr = w.Current
	for i := cur + 1; i < rows; i++ {
		addr = nextVisible(e, addr)
		w.Rows[i] = s.row(entry, base, addr)
	}
	return w, nil
}

func (s *Session) row(entry *ring.Entry, base *baseline, addr int) Row {
	buf := entry.Engine.Buffer()
	if addr < 0 || addr > buf.EOF() {
		return Row{Kind: RowBlank, Addr: -1}
	}

	r := Row{Addr: addr}
	r.Prefix, _ = entry.Prefix.Text(buf, addr)
	switch {
	case addr == buffer.TOF:
		r.Kind, r.Text = RowTOF, TOFText
	case addr == buf.EOF():
		r.Kind, r.Text = RowEOF, EOFText
	default:
		line, _ := buf.Line(addr)
		r.Kind, r.Text = RowLine, line.Text
		r.Selected = entry.Engine.Filtered() && line.Selected
		if buf.Modified() {
			text, ok := base.lines[line.ID]
			r.Modified = !ok || text != line.Text
		}
	}
	return r
}

func prevVisible(e *engine.Engine, addr int) int {
	if addr < 0 {
		return -1
	}
	for a := addr - 1; a >= buffer.TOF; a-- {
		if e.Visible(a) {
			return a
		}
	}
	return -1
}

func nextVisible(e *engine.Engine, addr int) int {
	eof := e.Buffer().EOF()
	if addr < 0 || addr >= eof {
		return eof + 1
	}
	for a := addr + 1; a <= eof; a++ {
		if e.Visible(a) {
			return a
		}
	}
	return eof + 1
}

// baseline is the text of each line when the file was last unmodified.
type baseline struct {
	buf   *buffer.Buffer
	lines map[buffer.LineID]string
	clean bool
}

// baselineOf returns the entry's baseline, taking a new one when the file
// is unmodified or its buffer was replaced.
func (s *Session) baselineOf(entry *ring.Entry) *baseline {
	buf := entry.Engine.Buffer()
	b, ok := s.baseline[entry.ID]
	if ok && b.buf == buf && (b.clean || buf.Modified()) {
		b.clean = !buf.Modified()
		return b
	}

	b = &baseline{buf: buf, lines: make(map[buffer.LineID]string, buf.LineCount()), clean: !buf.Modified()}
	for addr := 1; addr <= buf.LineCount(); addr++ {
		if line, err := buf.Line(addr); err == nil {
			b.lines[line.ID] = line.Text
		}
	}
	s.baseline[entry.ID] = b
	return b
}

// trackBaselines keeps every baseline current after a command.
func (s *Session) trackBaselines() {
	for _, e := range s.Ring().Entries() {
		s.baselineOf(e)
	}
}

// Input is what the user submits in one interaction: prefix commands
// typed next to lines, the command line, or both. Prefix commands are
// applied first.
type Input struct {
	Prefix  map[int]string // Address to prefix text
	Command string
}

// Apply commits user input. Pending prefix text is added to the current
// file's batch and the batch is committed; the command line then runs if
// the batch succeeded.
func (s *Session) Apply(ctx context.Context, in Input) handler.Result {
	if s.closed {
		return handler.Error(ErrClosed)
	}
	if len(in.Prefix) > 0 {
		result := s.commitPrefix(in.Prefix)
		if !result.IsOK() || in.Command == "" {
			s.after(result)
			return result
		}
	}
	if in.Command == "" {
		return handler.NoOp()
	}
	return s.Execute(ctx, in.Command)
}

func (s *Session) commitPrefix(prefix map[int]string) handler.Result {
	entry, err := s.Ring().Current()
	if err != nil {
		return handler.Error(err)
	}
	e := entry.Engine
	buf := e.Buffer()

	addrs := make([]int, 0, len(prefix))
	for addr := range prefix {
		addrs = append(addrs, addr)
	}
	sort.Ints(addrs)
	for _, addr := range addrs {
		if err := entry.Prefix.Add(buf, addr, prefix[addr]); err != nil {
			entry.Prefix.Reset()
			return handler.Error(fmt.Errorf("prefix %q on line %d: %w", prefix[addr], addr, err))
		}
	}

	res, err := entry.Prefix.Commit(e)
	if err != nil {
		s.logger.Debug("prefix batch rejected: %v", err)
		return handler.Error(err)
	}
	if res.Applied == 0 {
		return handler.NoOp()
	}
	s.logger.Debug("%d prefix operation(s) applied to %s", res.Applied, entry.Name())
	return handler.Successf("%d prefix %s applied", res.Applied, handler.Plural(res.Applied, "command"))
}

// Input inserts a line typed in input mode after the current line. An
// empty line ends input mode.
func (s *Session) Input(text string) handler.Result {
	if !s.inputMode {
		return handler.NoOp()
	}
	if text == "" {
		s.inputMode = false
		result := handler.SuccessWithMessage("Edit mode")
		s.after(result)
		return result
	}

	entry, err := s.Ring().Current()
	if err != nil {
		s.inputMode = false
		result := handler.Error(err)
		s.after(result)
		return result
	}
	e := entry.Engine
	text = handler.InputText(e, text)
	err = e.Change("INPUT", func() error {
		cmd := history.NewInsertCommand(e.Current(), text)
		if err := e.Apply(cmd); err != nil {
			return err
		}
		return e.SetCurrent(cmd.At())
	})
	result := handler.Error(err)
	s.after(result)
	return result
}

// PF runs the command assigned to PF key n.
func (s *Session) PF(ctx context.Context, n int) handler.Result {
	text, ok := s.dispatcher.Key(n)
	if !ok || text == "" {
		result := handler.Error(fmt.Errorf("PF%d: %w", n, ErrUndefinedKey))
		s.after(result)
		return result
	}
	return s.Execute(ctx, text)
}
