// Package view provides handlers for SET, QUERY, HELP and REFRESH.
package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/command/abbrev"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/engine/settings"
	"github.com/dshills/xedit/internal/xerr"
)

// MaxPFKey is the highest program function key.
const MaxPFKey = 24

// Subjects QUERY answers besides the settings.
var subjects = abbrev.New(
	abbrev.Entry{Name: "SIZE", Min: 2},
	abbrev.Entry{Name: "LINE", Min: 1},
	abbrev.Entry{Name: "COLUMN", Min: 3},
	abbrev.Entry{Name: "ALT", Min: 3},
	abbrev.Entry{Name: "RING", Min: 4},
	abbrev.Entry{Name: "MODIFIED", Min: 3},
	abbrev.Entry{Name: "CHANGED", Min: 4},
	abbrev.Entry{Name: "UNDO", Min: 4},
)

// Handler handles the display and settings verbs.
type Handler struct{}

// NewHandler creates the settings handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Verbs returns the handlers by verb.
func (h *Handler) Verbs() map[command.Verb]handler.Handler {
	return map[command.Verb]handler.Handler{
		command.VerbSet:     handler.HandlerFunc(h.set),
		command.VerbQuery:   handler.HandlerFunc(h.query),
		command.VerbHelp:    handler.HandlerFunc(h.help),
		command.VerbRefresh: handler.HandlerFunc(h.refresh),
	}
}

// PFKey returns the key number named by s ("PF1" through "PF24").
func PFKey(s string) (int, bool) {
	s = strings.ToUpper(s)
	if !strings.HasPrefix(s, "PF") {
		return 0, false
	}
	n, err := strconv.Atoi(s[2:])
	if err != nil || n < 1 || n > MaxPFKey {
		return 0, false
	}
	return n, true
}

func unknownSetting(err error) error {
	if errors.Is(err, settings.ErrUnknownSetting) {
		return fmt.Errorf("%w: %w", err, xerr.ErrBadSyntax)
	}
	return err
}

// set changes a setting of the current file or defines a PF key.
func (h *Handler) set(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	subject, rest := split(inv.Args)
	if subject == "" {
		return handler.Error(xerr.Syntax("SET needs a subject"))
	}
	if n, ok := PFKey(subject); ok {
		if ctx.Keys == nil {
			return handler.Error(xerr.Syntax("PF keys are not available"))
		}
		if rest == "" {
			delete(ctx.Keys, n)
		} else {
			ctx.Keys[n] = rest
		}
		return handler.Success()
	}

	e, err := ctx.Engine()
	if err != nil {
		return handler.Error(err)
	}
	s, err := e.Settings().Set(subject, command.Words(rest))
	if err != nil {
		return handler.Error(unknownSetting(err))
	}
	e.SetSettings(s)
	return handler.Success().WithData(handler.DataRefresh, true)
}

// split separates the first word of s from the rest.
func split(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

// query reports the value of a subject. The values are returned as data
// and the message reads "SUBJECT v1 v2 ...".
func (h *Handler) query(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	words := command.Words(inv.Args)
	if len(words) != 1 {
		return handler.Error(xerr.Syntax("QUERY needs one subject"))
	}
	subject, values, err := h.values(words[0], ctx)
	if err != nil {
		return handler.Error(err)
	}
	msg := strings.TrimSpace(subject + " " + strings.Join(values, " "))
	return handler.SuccessWithMessage(msg).WithData(handler.DataValues, values)
}

func (h *Handler) values(name string, ctx *execctx.ExecutionContext) (string, []string, error) {
	if n, ok := PFKey(name); ok {
		return fmt.Sprintf("PF%d", n), []string{ctx.Keys[n]}, nil
	}
	subject, err := subjects.Resolve(name)
	if err == nil && subject == "RING" {
		var names []string
		for _, entry := range ctx.Ring.Entries() {
			names = append(names, entry.Name())
		}
		return subject, append([]string{strconv.Itoa(len(names))}, names...), nil
	}

	e, eerr := ctx.Engine()
	if eerr != nil {
		return "", nil, eerr
	}
	buf := e.Buffer()
	switch subject {
	case "SIZE":
		return subject, []string{strconv.Itoa(buf.LineCount())}, nil
	case "LINE":
		return subject, []string{strconv.Itoa(e.Current())}, nil
	case "COLUMN":
		return subject, []string{strconv.Itoa(e.Column())}, nil
	case "ALT":
		return subject, []string{strconv.Itoa(buf.AltCount())}, nil
	case "MODIFIED":
		return subject, []string{settings.OnOff(buf.Modified())}, nil
	case "CHANGED":
		return subject, []string{settings.OnOff(ctx.Entry.Changed)}, nil
	case "UNDO":
		hist := e.History()
		values := []string{strconv.Itoa(hist.UndoCount()), strconv.Itoa(hist.RedoCount())}
		if name, ok := hist.PeekUndo(); ok {
			values = append(values, name)
		}
		return subject, values, nil
	}
	subject, values, err := e.Settings().Query(name)
	if err != nil {
		return "", nil, unknownSetting(err)
	}
	return subject, values, nil
}

// help shows the syntax of a verb, or every verb name.
func (h *Handler) help(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	words := command.Words(inv.Args)
	switch len(words) {
	case 0:
		names := command.Names()
		return handler.SuccessWithMessage(strings.Join(names, " ")).WithData(handler.DataValues, names)
	case 1:
		info, err := command.Lookup(words[0])
		if err != nil {
			return handler.Error(err)
		}
		return handler.SuccessWithMessage(info.Syntax).WithData(handler.DataValues, []string{info.Syntax})
	}
	return handler.Error(xerr.Syntax("HELP takes one verb"))
}

func (h *Handler) refresh(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	if err := command.NoMore(inv.Args); err != nil {
		return handler.Error(err)
	}
	return handler.Success().WithData(handler.DataRefresh, true)
}
