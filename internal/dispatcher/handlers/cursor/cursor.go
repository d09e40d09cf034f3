// Package cursor provides handlers for commands that move the current line
// and column without changing the file.
package cursor

import (
	"errors"

	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/engine/target"
	"github.com/dshills/xedit/internal/xerr"
)

// Errors for movement that stopped at a sentinel.
var (
	ErrTOFReached = errors.New("TOF reached")
	ErrEOFReached = errors.New("EOF reached")
)

// Handler handles the navigation verbs.
type Handler struct{}

// NewHandler creates the navigation handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Verbs returns the handlers by verb.
func (h *Handler) Verbs() map[command.Verb]handler.Handler {
	return map[command.Verb]handler.Handler{
		command.VerbUp:       handler.HandlerFunc(h.up),
		command.VerbDown:     handler.HandlerFunc(h.down),
		command.VerbNext:     handler.HandlerFunc(h.down),
		command.VerbTop:      handler.HandlerFunc(h.top),
		command.VerbBottom:   handler.HandlerFunc(h.bottom),
		command.VerbForward:  handler.HandlerFunc(h.forward),
		command.VerbBackward: handler.HandlerFunc(h.backward),
		command.VerbLeft:     handler.HandlerFunc(h.left),
		command.VerbRight:    handler.HandlerFunc(h.right),
		command.VerbLocate:   handler.HandlerFunc(h.locate),
	}
}

func (h *Handler) up(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return lines(inv, ctx, true, 1)
}

func (h *Handler) down(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return lines(inv, ctx, false, 1)
}

func (h *Handler) forward(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return lines(inv, ctx, false, ctx.PageSize)
}

func (h *Handler) backward(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return lines(inv, ctx, true, ctx.PageSize)
}

// lines moves n*unit lines. * goes straight to the sentinel.
func lines(inv command.Invocation, ctx *execctx.ExecutionContext, up bool, unit int) handler.Result {
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
	if unit < 1 {
		unit = 1
	}
	if n != command.All {
		n *= unit
	}
	return handler.Error(Move(e, n, up))
}

// Move moves the current line n visible lines up or down. A move that
// would pass a sentinel stops on it and fails with ErrTOFReached or
// ErrEOFReached. command.All goes straight to the sentinel.
func Move(e *engine.Engine, n int, up bool) error {
	buf := e.Buffer()
	switch {
	case n == 0:
		return nil
	case n == command.All && up:
		return e.SetCurrent(0)
	case n == command.All:
		return e.SetCurrent(buf.EOF())
	}
	delta := n
	if up {
		delta = -n
	}
	addr, err := e.Resolve(target.Offset(delta))
	if err == nil {
		return e.SetCurrent(addr)
	}
	if !errors.Is(err, xerr.ErrTargetNotFound) {
		return err
	}
	if up {
		_ = e.SetCurrent(0)
		return ErrTOFReached
	}
	_ = e.SetCurrent(buf.EOF())
	return ErrEOFReached
}

func (h *Handler) top(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err == nil {
		err = command.NoMore(inv.Args)
	}
	if err != nil {
		return handler.Error(err)
	}
	return handler.Error(e.SetCurrent(0))
}

func (h *Handler) bottom(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err == nil {
		err = command.NoMore(inv.Args)
	}
	if err != nil {
		return handler.Error(err)
	}
	return handler.Error(e.SetCurrent(e.Buffer().LineCount()))
}

func (h *Handler) left(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return column(inv, ctx, -1)
}

func (h *Handler) right(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return column(inv, ctx, 1)
}

func column(inv command.Invocation, ctx *execctx.ExecutionContext, sign int) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	n, rest, err := command.ParseCount(inv.Args, 1)
	if err == nil {
		err = command.NoMore(rest)
	}
	if err == nil && n == command.All {
		err = xerr.Syntax("%s needs a number", inv.Name)
	}
	if err != nil {
		return handler.Error(err)
	}
	e.SetColumn(e.Column() + sign*n)
	return handler.Success()
}

func (h *Handler) locate(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	t, rest, err := command.ParseTarget(inv.Args)
	if err != nil {
		return handler.Error(err)
	}
	if t == nil {
		return handler.Error(xerr.Syntax("LOCATE requires a target"))
	}
	if err := command.NoMore(rest); err != nil {
		return handler.Error(err)
	}
	addr, err := e.Resolve(*t)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Error(e.SetCurrent(addr))
}
