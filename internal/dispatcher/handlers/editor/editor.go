// Package editor provides handlers for commands that change lines.
//
// Line-range verbs take a target that denotes the lines from the current
// line up to but not including the target line. Under an ALL filter they
// act on the visible lines of that range only. Every command runs as one
// undo transaction.
package editor

import (
	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/engine/history"
	"github.com/dshills/xedit/internal/xerr"
)

// Handler handles the editing verbs.
type Handler struct{}

// NewHandler creates the editing handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Verbs returns the handlers by verb.
func (h *Handler) Verbs() map[command.Verb]handler.Handler {
	return map[command.Verb]handler.Handler{
		command.VerbAdd:       handler.HandlerFunc(h.add),
		command.VerbInput:     handler.HandlerFunc(h.input),
		command.VerbReplace:   handler.HandlerFunc(h.replace),
		command.VerbDelete:    handler.HandlerFunc(h.delete),
		command.VerbDuplicate: handler.HandlerFunc(h.duplicate),
		command.VerbCopy:      handler.HandlerFunc(h.copy),
		command.VerbMove:      handler.HandlerFunc(h.move),
		command.VerbShift:     handler.HandlerFunc(h.shift),
		command.VerbSort:      handler.HandlerFunc(h.sort),
		command.VerbUppercase: handler.HandlerFunc(h.uppercase),
		command.VerbLowercase: handler.HandlerFunc(h.lowercase),
		command.VerbUndo:      handler.HandlerFunc(h.undo),
		command.VerbRedo:      handler.HandlerFunc(h.redo),
	}
}

// add inserts blank lines after the current line.
func (h *Handler) add(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	n, rest, err := command.ParseCount(inv.Args, 1)
	if err == nil {
		err = command.NoMore(rest)
	}
	if err == nil && n == command.All {
		err = xerr.Syntax("ADD needs a number")
	}
	if err != nil {
		return handler.Error(err)
	}
	if n == 0 {
		return handler.NoOp()
	}

	err = e.Change("ADD", func() error {
		cmd := history.NewInsertCommand(e.Current(), make([]string, n)...)
		if err := e.Apply(cmd); err != nil {
			return err
		}
		return e.SetCurrent(cmd.At() + n - 1)
	})
	return handler.Error(err)
}

// input inserts one line of text after the current line. Without text the
// caller switches to input mode.
func (h *Handler) input(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	if inv.Args == "" {
		return handler.NoOpWithMessage("Input mode").WithData(handler.DataInput, true)
	}

	text := handler.InputText(e, inv.Args)
	err = e.Change("INPUT", func() error {
		cmd := history.NewInsertCommand(e.Current(), text)
		if err := e.Apply(cmd); err != nil {
			return err
		}
		return e.SetCurrent(cmd.At())
	})
	return handler.Error(err)
}

// replace sets the text of the current line.
func (h *Handler) replace(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	return handler.Error(e.Apply(history.NewReplaceCommand(e.Current(), handler.InputText(e, inv.Args))))
}

// delete removes the visible lines of the range. The line that followed
// the range becomes current.
func (h *Handler) delete(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
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

	runs := e.Runs(span)
	n := 0
	err = e.Change("DELETE", func() error {
		// Last run first so earlier addresses stay put.
		for i := len(runs) - 1; i >= 0; i-- {
			if err := e.Apply(history.NewDeleteCommand(runs[i].Start, runs[i].End)); err != nil {
				return err
			}
			n += runs[i].Len()
		}
		return e.SetCurrent(span.End + 1 - n)
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.Successf("%d %s deleted", n, handler.Plural(n, "line"))
}

// duplicate inserts n copies of the visible lines of the range after it.
// The last line of the last copy becomes current.
func (h *Handler) duplicate(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	n, rest, err := command.ParseCount(inv.Args, 1)
	if err == nil && n == command.All {
		err = xerr.Syntax("DUPLICATE needs a number")
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
	if n == 0 {
		return handler.NoOp()
	}

	block := e.VisibleLines(span)
	copies := make([]string, 0, n*len(block))
	for i := 0; i < n; i++ {
		copies = append(copies, block...)
	}
	err = e.Change("DUPLICATE", func() error {
		cmd := history.NewInsertCommand(span.End, copies...)
		if err := e.Apply(cmd); err != nil {
			return err
		}
		return e.SetCurrent(cmd.At() + len(copies) - 1)
	})
	return handler.Error(err)
}
