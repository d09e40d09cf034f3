// Package search provides handlers for the string commands CHANGE, COUNT
// and ALL.
package search

import (
	"fmt"

	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/engine/history"
	"github.com/dshills/xedit/internal/engine/target"
	"github.com/dshills/xedit/internal/xerr"
)

// Handler handles the string verbs.
type Handler struct{}

// NewHandler creates the string handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Verbs returns the handlers by verb.
func (h *Handler) Verbs() map[command.Verb]handler.Handler {
	return map[command.Verb]handler.Handler{
		command.VerbChange: handler.HandlerFunc(h.change),
		command.VerbCount:  handler.HandlerFunc(h.count),
		command.VerbAll:    handler.HandlerFunc(h.all),
	}
}

func notFound(s string) error {
	return fmt.Errorf("%q: %w", s, xerr.ErrTargetNotFound)
}

// change replaces occurrences of a string in every visible line of the
// range. Nothing changed anywhere is return code 2.
func (h *Handler) change(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	args, err := command.ParseChange(inv.Args)
	if err != nil {
		return handler.Error(err)
	}
	span, err := handler.LineRange(e, args.Target)
	if err != nil {
		return handler.Error(err)
	}

	s := e.Settings()
	replacement := args.New
	if s.CaseUpper {
		replacement = engine.Upper(replacement)
	}
	m := e.Matcher()
	buf := e.Buffer()

	lines, total := 0, 0
	err = e.Change("CHANGE", func() error {
		last := 0
		for addr := span.Start; addr <= span.End; addr++ {
			if !e.Visible(addr) {
				continue
			}
			text, n := Replace(m, buf.Text(addr), args.Old, replacement, args.Count, args.Start)
			if n == 0 {
				continue
			}
			if err := e.Apply(history.NewReplaceCommand(addr, engine.Truncate(text, s.Trunc))); err != nil {
				return err
			}
			lines++
			total += n
			last = addr
		}
		if total == 0 {
			return notFound(args.Old)
		}
		if !s.Stay {
			return e.SetCurrent(last)
		}
		return nil
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.Successf("%d %s changed on %d %s",
		total, handler.Plural(total, "occurrence"), lines, handler.Plural(lines, "line")).
		WithData(handler.DataCount, total)
}

// Replace changes up to count occurrences of old in line, starting with
// occurrence start (1-based). count is command.All for every occurrence.
// An empty old string inserts replacement at the start of the zone.
// It returns the new line and the number of occurrences changed.
func Replace(m target.Matcher, line, old, replacement string, count, start int) (string, int) {
	runes, pat, rep := []rune(line), []rune(old), []rune(replacement)

	if len(pat) == 0 {
		at, _, ok := m.Index(runes, pat, 0)
		if !ok || start > 1 {
			return line, 0
		}
		out := append(append(append([]rune(nil), runes[:at]...), rep...), runes[at:]...)
		return string(out), 1
	}

	var out []rune
	pos, seen, changed := 0, 0, 0
	for count == command.All || changed < count {
		s, end, ok := m.Index(runes, pat, pos)
		if !ok || end <= s {
			break
		}
		seen++
		if seen >= start {
			out = append(out, runes[pos:s]...)
			out = append(out, rep...)
			changed++
		} else {
			out = append(out, runes[pos:end]...)
		}
		pos = end
	}
	if changed == 0 {
		return line, 0
	}
	out = append(out, runes[pos:]...)
	return string(out), changed
}

// Occurrences counts the non-overlapping occurrences of s in line.
func Occurrences(m target.Matcher, line, s string) int {
	runes, pat := []rune(line), []rune(s)
	if len(pat) == 0 {
		return 0
	}
	n, pos := 0, 0
	for {
		start, end, ok := m.Index(runes, pat, pos)
		if !ok || end <= start {
			return n
		}
		n++
		pos = end
	}
}

// count reports how often a string occurs in the range.
func (h *Handler) count(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	s, rest, err := command.ParseString(inv.Args)
	if err == nil && s == "" {
		err = xerr.Syntax("COUNT needs a string")
	}
	if err != nil {
		return handler.Error(err)
	}
	t, rest, err := command.ParseTarget(rest)
	if err == nil {
		err = command.NoMore(rest)
	}
	if err != nil {
		return handler.Error(err)
	}
	span, err := handler.LineRange(e, t)
	if err != nil {
		return handler.Error(err)
	}

	m := e.Matcher()
	buf := e.Buffer()
	n := 0
	for addr := span.Start; addr <= span.End; addr++ {
		if e.Visible(addr) {
			n += Occurrences(m, buf.Text(addr), s)
		}
	}
	if n == 0 {
		return handler.Error(notFound(s)).WithData(handler.DataCount, 0)
	}
	return handler.Successf("%d %s", n, handler.Plural(n, "occurrence")).WithData(handler.DataCount, n)
}

// all shows only the lines containing a string. Without operands every
// line is shown again.
func (h *Handler) all(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	if inv.Args == "" {
		e.ClearFilter()
		return handler.SuccessWithMessage("All lines displayed").WithData(handler.DataRefresh, true)
	}
	s, rest, err := command.ParseString(inv.Args)
	if err == nil {
		err = command.NoMore(rest)
	}
	if err != nil {
		return handler.Error(err)
	}

	m := e.Matcher()
	buf := e.Buffer()
	first := 0
	for addr := buf.LineCount(); addr >= 1; addr-- {
		if m.Contains(buf.Text(addr), s) {
			first = addr
		}
	}
	if first == 0 {
		return handler.Error(notFound(s))
	}

	n := e.SetFilter(func(text string) bool { return m.Contains(text, s) })
	if !e.Visible(e.Current()) {
		_ = e.SetCurrent(first)
	}
	return handler.Successf("%d %s selected", n, handler.Plural(n, "line")).
		WithData(handler.DataCount, n).
		WithData(handler.DataRefresh, true)
}
