package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/xedit/internal/dispatcher/handler"
)

// Line-mode escapes. Anything else is a command line, or text in input
// mode.
const (
	EscapePrefix = "#P"  // #P addr text [; addr text]...  prefix commands
	EscapeKey    = "#PF" // #PF n  press a PF key
	EscapeView   = "#V"  // #V [rows]  show a window
)

// DefaultViewRows is the window height of #V without operand.
const DefaultViewRows = 11

// LoopOptions configures Run.
type LoopOptions struct {
	// Prompt is written before each line is read. Empty writes nothing.
	Prompt string
	// InputPrompt is written before each line in input mode.
	InputPrompt string
	// Verify echoes the current line after each command.
	Verify bool
}

// Run reads lines from in until the last file is closed, in is
// exhausted or ctx is cancelled. Messages and verified lines go to out.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer, opts LoopOptions) error {
	sc := bufio.NewScanner(in)
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		prompt := opts.Prompt
		if s.inputMode {
			prompt = opts.InputPrompt
		}
		if prompt != "" {
			fmt.Fprint(out, prompt)
		}
		if !sc.Scan() {
			return sc.Err()
		}

		line := sc.Text()
		var result handler.Result
		switch {
		case s.inputMode:
			result = s.Input(line)
		default:
			var handled bool
			result, handled = s.escape(ctx, line, out)
			if !handled {
				result = s.Execute(ctx, line)
			}
		}
		s.report(out, result, opts)
	}
	return nil
}

// escape runs a line-mode escape. It reports false for ordinary lines.
func (s *Session) escape(ctx context.Context, line string, out io.Writer) (handler.Result, bool) {
	word, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch strings.ToUpper(word) {
	case EscapeKey:
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return s.fail(fmt.Errorf("%s needs a key number: %w", EscapeKey, ErrUndefinedKey)), true
		}
		return s.PF(ctx, n), true
	case EscapePrefix:
		prefix, err := ParsePrefixLine(rest)
		if err != nil {
			return s.fail(err), true
		}
		return s.Apply(ctx, Input{Prefix: prefix}), true
	case EscapeView:
		rows := DefaultViewRows
		if r := strings.TrimSpace(rest); r != "" {
			n, err := strconv.Atoi(r)
			if err != nil || n < 1 {
				return s.fail(fmt.Errorf("%s needs a row count", EscapeView)), true
			}
			rows = n
		}
		w, err := s.View(rows)
		if err != nil {
			return s.fail(err), true
		}
		s.message = ""
		WriteWindow(out, w)
		return handler.NoOp(), true
	}
	return handler.Result{}, false
}

func (s *Session) fail(err error) handler.Result {
	result := handler.Error(err)
	s.after(result)
	return result
}

func (s *Session) report(out io.Writer, result handler.Result, opts LoopOptions) {
	if s.message != "" {
		fmt.Fprintln(out, s.message)
	}
	if !opts.Verify || s.Done() || s.inputMode || result.Status == handler.StatusNoOp {
		return
	}
	w, err := s.View(1)
	if err != nil {
		return
	}
	fmt.Fprintln(out, FormatRow(w.Rows[0]))
}

// ParsePrefixLine reads "addr text; addr text" into prefix annotations.
func ParsePrefixLine(s string) (map[int]string, error) {
	prefix := make(map[int]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		num, text, ok := strings.Cut(part, " ")
		addr, err := strconv.Atoi(num)
		if !ok || err != nil || addr < 0 {
			return nil, fmt.Errorf("bad prefix entry %q: want line number and text", part)
		}
		prefix[addr] = strings.TrimSpace(text)
	}
	if len(prefix) == 0 {
		return nil, fmt.Errorf("no prefix entries")
	}
	return prefix, nil
}

// FormatRow renders a row as a prefix area and the line text.
func FormatRow(r Row) string {
	if r.Kind == RowBlank {
		return ""
	}
	area := fmt.Sprintf("%05d", r.Addr)
	if r.Prefix != "" {
		area = fmt.Sprintf("%-5s", r.Prefix)
	}
	mark := ' '
	switch {
	case r.Current:
		mark = '>'
	case r.Modified:
		mark = '*'
	}
	return fmt.Sprintf("%s%c%s", area, mark, r.Text)
}

// WriteWindow prints a window with a status line.
func WriteWindow(out io.Writer, w Window) {
	status := fmt.Sprintf("%s  Size=%d Line=%d Col=%d Alt=%d", w.File, w.Size, w.Current, w.Column, w.Alt)
	if w.ReadOnly {
		status += " RO"
	}
	if w.Changed {
		status += " CHANGED"
	}
	fmt.Fprintln(out, status)
	for _, r := range w.Rows {
		fmt.Fprintln(out, FormatRow(r))
	}
}
