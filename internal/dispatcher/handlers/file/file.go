// Package file provides handlers for the commands that move text between
// the ring and the file system: XEDIT, GET, SAVE, FILE, QUIT and QQUIT.
package file

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/engine/history"
	"github.com/dshills/xedit/internal/engine/settings"
	"github.com/dshills/xedit/internal/xerr"
)

// Errors returned by the file verbs.
var (
	ErrFileChanged = errors.New("File has been changed")
	ErrReadOnly    = fmt.Errorf("file is read-only: %w", xerr.ErrFileIO)
	ErrInRing      = errors.New("file is already in the ring")
)

// Handler handles the file verbs.
type Handler struct{}

// NewHandler creates the file handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Verbs returns the handlers by verb.
func (h *Handler) Verbs() map[command.Verb]handler.Handler {
	return map[command.Verb]handler.Handler{
		command.VerbXedit: handler.HandlerFunc(h.xedit),
		command.VerbGet:   handler.HandlerFunc(h.get),
		command.VerbSave:  handler.HandlerFunc(h.save),
		command.VerbFile:  handler.HandlerFunc(h.file),
		command.VerbQuit:  handler.HandlerFunc(h.quit),
		command.VerbQQuit: handler.HandlerFunc(h.qquit),
	}
}

// xedit opens a file, or switches to it when it is already in the ring.
// Without operands it switches to the next file.
func (h *Handler) xedit(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	words, err := command.ParseFileSpec(inv.Args)
	if err != nil {
		return handler.Error(err)
	}
	if len(words) == 0 {
		if _, err := ctx.Ring.Next(); err != nil {
			return handler.Error(xerr.Syntax("no file specified"))
		}
		ctx.Refresh()
		return handler.SuccessWithMessage(ctx.Entry.Name())
	}
	if err := ctx.RequireFiles(); err != nil {
		return handler.Error(err)
	}
	id, err := ctx.Files.Identify(words, ctx.Identity())
	if err != nil {
		return handler.Error(fmt.Errorf("%w: %w", err, xerr.ErrBadSyntax))
	}
	if i, ok := ctx.Ring.Find(id); ok {
		_ = ctx.Ring.Select(i)
		ctx.Refresh()
		return handler.SuccessWithMessage(ctx.Entry.Name())
	}

	var lines []string
	msg := ""
	if ctx.Files.Exists(id) {
		if lines, err = ctx.Files.Read(id); err != nil {
			return handler.Error(err)
		}
	} else {
		msg = "New file"
	}
	_, added := ctx.Open(id, lines, ctx.ReadOnly(id))
	r := handler.SuccessWithMessage(msg).WithData(handler.DataRefresh, true)
	r.Opened = added
	return r
}

// get inserts the lines of another file after the current line.
func (h *Handler) get(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err == nil {
		err = ctx.RequireFiles()
	}
	if err != nil {
		return handler.Error(err)
	}
	words, err := command.ParseFileSpec(inv.Args)
	if err == nil && len(words) == 0 {
		err = xerr.Syntax("GET needs a file")
	}
	if err != nil {
		return handler.Error(err)
	}
	id, err := ctx.Files.Identify(words, ctx.Identity())
	if err != nil {
		return handler.Error(fmt.Errorf("%w: %w", err, xerr.ErrBadSyntax))
	}
	lines, err := ctx.Files.Read(id)
	if err != nil {
		return handler.Error(err)
	}
	if len(lines) == 0 {
		return handler.NoOpWithMessage(id.String() + " is empty")
	}

	err = e.Change("GET", func() error {
		cmd := history.NewInsertCommand(e.Current(), lines...)
		if err := e.Apply(cmd); err != nil {
			return err
		}
		return e.SetCurrent(cmd.At() + len(lines) - 1)
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.Successf("%d %s inserted", len(lines), handler.Plural(len(lines), "line"))
}

// save writes the current file. Operands give it a new identity.
func (h *Handler) save(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	return handler.Error(write(inv, ctx))
}

// file saves and closes the current file.
func (h *Handler) file(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	if err := write(inv, ctx); err != nil {
		return handler.Error(err)
	}
	return handler.Error(ctx.Close())
}

func write(inv command.Invocation, ctx *execctx.ExecutionContext) error {
	e, err := ctx.Engine()
	if err == nil {
		err = ctx.RequireFiles()
	}
	if err != nil {
		return err
	}
	words, err := command.ParseFileSpec(inv.Args)
	if err != nil {
		return err
	}

	id := ctx.Identity()
	renamed := false
	if len(words) > 0 {
		if id, err = ctx.Files.Identify(words, id); err != nil {
			return fmt.Errorf("%w: %w", err, xerr.ErrBadSyntax)
		}
		renamed = id.String() != ctx.Entry.Name()
		if _, ok := ctx.Ring.Find(id); ok && renamed {
			return fmt.Errorf("%s: %w", id, ErrInRing)
		}
	}
	if !renamed && e.ReadOnly() {
		return fmt.Errorf("%s: %w", id, ErrReadOnly)
	}

	if err := ctx.Files.Write(id, Records(e.Buffer().Lines(), e.Settings())); err != nil {
		return err
	}
	e.MarkSaved()
	ctx.Entry.Changed = false
	if renamed {
		ctx.Entry.Identity = id
	}
	return nil
}

// Records formats lines for writing. Fixed-length records are padded
// with blanks to the record length.
func Records(lines []string, s settings.Settings) []string {
	if s.RECFM != "F" || s.LRECL <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		l = engine.Truncate(l, s.LRECL)
		if n := s.LRECL - len([]rune(l)); n > 0 {
			l += strings.Repeat(" ", n)
		}
		out[i] = l
	}
	return out
}

// quit closes the current file unless it has unsaved changes.
func (h *Handler) quit(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	e, err := ctx.Engine()
	if err == nil {
		err = command.NoMore(inv.Args)
	}
	if err != nil {
		return handler.Error(err)
	}
	if e.Buffer().Modified() {
		return handler.Error(ErrFileChanged)
	}
	return handler.Error(ctx.Close())
}

// qquit closes the current file and discards its changes.
func (h *Handler) qquit(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	if err := command.NoMore(inv.Args); err != nil {
		return handler.Error(err)
	}
	return handler.Error(ctx.Close())
}
