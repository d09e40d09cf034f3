package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/engine/buffer"
	"github.com/dshills/xedit/internal/engine/history"
)

// copy inserts a copy of the range given by the first target after the
// line given by the second. The last copied line becomes current.
func (h *Handler) copy(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return transfer(inv, ctx, false)
}

// move is copy followed by deletion of the source lines.
func (h *Handler) move(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return transfer(inv, ctx, true)
}

func transfer(inv command.Invocation, ctx *execctx.ExecutionContext, move bool) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	src, dst, err := command.ParseTwoTargets(inv.Args)
	if err != nil {
		return handler.Error(err)
	}
	span, err := e.Range(src)
	if err != nil {
		return handler.Error(err)
	}
	dest, err := e.Resolve(dst)
	if err != nil {
		return handler.Error(err)
	}

	var n int
	err = e.Change(inv.Name, func() error {
		if move {
			last, err := moveRuns(e, e.Runs(span), dest)
			if err != nil {
				return err
			}
			n = last.n
			return e.SetCurrent(last.addr)
		}
		lines := e.VisibleLines(span)
		n = len(lines)
		cmd := history.NewInsertCommand(dest, lines...)
		if err := e.Apply(cmd); err != nil {
			return err
		}
		return e.SetCurrent(cmd.At() + n - 1)
	})
	if err != nil {
		return handler.Error(err)
	}
	verb := "copied"
	if move {
		verb = "moved"
	}
	return handler.Successf("%d %s %s", n, handler.Plural(n, "line"), verb)
}

type moved struct {
	addr, n int
}

// moveRuns moves each run in turn to follow the previously moved one,
// starting after dest. Runs are tracked by line identity since every move
// renumbers the lines between source and destination.
func moveRuns(e *engine.Engine, runs []engine.Span, dest int) (moved, error) {
	buf := e.Buffer()
	firsts := make([]buffer.LineID, len(runs))
	for i, r := range runs {
		id, err := buf.ID(r.Start)
		if err != nil {
			return moved{}, err
		}
		firsts[i] = id
	}

	var res moved
	var prev buffer.LineID
	for i, r := range runs {
		start, _ := buf.Find(firsts[i])
		anchor := dest
		if prev != 0 {
			anchor, _ = buf.Find(prev)
		}
		cmd := history.NewMoveCommand(start, start+r.Len()-1, anchor)
		if err := e.Apply(cmd); err != nil {
			return moved{}, err
		}
		res.addr = cmd.NewStart() + r.Len() - 1
		res.n += r.Len()
		id, err := buf.ID(res.addr)
		if err != nil {
			return moved{}, err
		}
		prev = id
	}
	return res, nil
}

// shift moves the text of the range left or right.
func (h *Handler) shift(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	args, err := command.ParseShift(inv.Args)
	if err != nil {
		return handler.Error(err)
	}
	span, err := handler.LineRange(e, args.Target)
	if err != nil {
		return handler.Error(err)
	}
	trunc := e.Settings().Trunc
	n, err := rewrite(e, "SHIFT", span, func(text string) string {
		return engine.Shift(text, args.N, args.Left, trunc)
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.Successf("%d %s shifted", n, handler.Plural(n, "line"))
}

func (h *Handler) uppercase(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return fold(inv, ctx, true)
}

func (h *Handler) lowercase(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return fold(inv, ctx, false)
}

// fold changes the case of the zone of every line in the range.
func fold(inv command.Invocation, ctx *execctx.ExecutionContext, upper bool) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	t, rest, err := command.ParseTarget(inv.Args)
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
	s := e.Settings()
	n, err := rewrite(e, inv.Name, span, func(text string) string {
		return engine.Fold(text, upper, s.ZoneLeft, s.ZoneRight)
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.Successf("%d %s changed", n, handler.Plural(n, "line"))
}

// rewrite replaces every visible line of span whose text fn changes and
// returns how many it replaced.
func rewrite(e *engine.Engine, name string, span engine.Span, fn func(string) string) (int, error) {
	buf := e.Buffer()
	n := 0
	err := e.Change(name, func() error {
		for _, r := range e.Runs(span) {
			for addr := r.Start; addr <= r.End; addr++ {
				old := buf.Text(addr)
				text := fn(old)
				if text == old {
					continue
				}
				if err := e.Apply(history.NewReplaceCommand(addr, text)); err != nil {
					return err
				}
				n++
			}
		}
		return nil
	})
	return n, err
}

// sort orders the visible lines of the range by the given columns. Hidden
// lines keep their places.
func (h *Handler) sort(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	args, err := command.ParseSort(inv.Args)
	if err != nil {
		return handler.Error(err)
	}
	span, err := handler.LineRange(e, args.Target)
	if err != nil {
		return handler.Error(err)
	}

	sorted := e.VisibleLines(span)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sortKey(sorted[i], args.Col1, args.Col2), sortKey(sorted[j], args.Col1, args.Col2)
		if args.Descending {
			return strings.Compare(a, b) > 0
		}
		return strings.Compare(a, b) < 0
	})

	next := 0
	n, err := rewrite(e, "SORT", span, func(string) string {
		text := sorted[next]
		next++
		return text
	})
	if err != nil {
		return handler.Error(err)
	}
	if n == 0 {
		return handler.NoOpWithMessage(fmt.Sprintf("%d %s already in order", len(sorted), handler.Plural(len(sorted), "line")))
	}
	return handler.Successf("%d %s sorted", len(sorted), handler.Plural(len(sorted), "line"))
}

// sortKey returns columns col1 through col2 of s, or all of s when col1
// is 0. Lines shorter than col1 have an empty key.
func sortKey(s string, col1, col2 int) string {
	if col1 == 0 {
		return s
	}
	r := []rune(s)
	if col1 > len(r) {
		return ""
	}
	return string(r[col1-1 : min(col2, len(r))])
}

// undo reverses the last n transactions.
func (h *Handler) undo(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return replay(inv, ctx, "undone", func(e *engine.Engine) error { return e.Undo() })
}

// redo replays the last n undone transactions.
func (h *Handler) redo(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return replay(inv, ctx, "redone", func(e *engine.Engine) error { return e.Redo() })
}

func replay(inv command.Invocation, ctx *execctx.ExecutionContext, what string, step func(*engine.Engine) error) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	n, rest, err := command.ParseCount(inv.Args, 1)
	if err == nil {
		err = command.NoMore(rest)
	}
	if err != nil {
		return handler.Error(err)
	}
	done := 0
	for n == command.All || done < n {
		if err := step(e); err != nil {
			if done == 0 {
				return handler.Error(err)
			}
			break
		}
		done++
	}
	if done == 0 {
		return handler.NoOp()
	}
	return handler.Successf("%d %s %s", done, handler.Plural(done, "change"), what)
}
