package dispatcher

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/macro"
	"github.com/dshills/xedit/internal/xerr"
)

func (d *Dispatcher) macroExists(name string) bool {
	return d.macros != nil && name != "" && d.macros.Lookup(name)
}

// runMacro runs a macro at the depth of ctx. Commands the macro issues run
// one level deeper.
func (d *Dispatcher) runMacro(ctx *execctx.ExecutionContext, name, args string) handler.Result {
	if !d.macroExists(name) {
		return handler.Error(&xerr.UnknownError{Verb: name, Suggestions: command.Suggest(name)})
	}
	if ctx.Depth >= d.config.MaxMacroDepth {
		return handler.Error(fmt.Errorf("%s at depth %d: %w", name, ctx.Depth, xerr.ErrMacroRecursionLimit))
	}

	env := &macroEnv{d: d, ctx: ctx, depth: ctx.Depth + 1, snap: d.capture(ctx)}
	if d.logger != nil {
		d.logger.Debug("running macro %s %q (depth %d)", name, args, env.depth)
	}
	rc, err := d.macros.Run(ctx.Context, name, args, env)
	if err != nil {
		r := handler.Error(err)
		r.Code = rc
		if rc == xerr.RCOK {
			r.Code = xerr.Code(err)
		}
		return r
	}
	r := handler.Success().WithCode(rc)
	if env.lastMsg != "" {
		r.Message = env.lastMsg
	}
	return r
}

// Snapshot captures the EXTRACT variables of the current state.
func (d *Dispatcher) Snapshot() *macro.Snapshot {
	return d.capture(execctx.New(context.Background(), d.ring))
}

func (d *Dispatcher) capture(ctx *execctx.ExecutionContext) *macro.Snapshot {
	st := macro.State{LastMessage: d.lastMsg}
	for _, e := range d.ring.Entries() {
		st.Ring = append(st.Ring, e.Name())
	}
	if ctx.Entry != nil {
		st.Engine = ctx.Entry.Engine
		st.File = macro.FileInfoOf(ctx.Entry.Identity)
		st.Changed = ctx.Entry.Changed
	}
	snap := macro.Capture(st)

	keys := make([]int, 0, len(d.keys))
	for n := range d.keys {
		keys = append(keys, n)
	}
	sort.Ints(keys)
	for _, n := range keys {
		snap.Set(fmt.Sprintf("PF%d", n), d.keys[n])
	}
	return snap
}

// macroEnv is the capability handed to a running macro.
type macroEnv struct {
	d       *Dispatcher
	ctx     *execctx.ExecutionContext
	depth   int
	snap    *macro.Snapshot
	lastMsg string
}

// Command runs text one macro level deeper. EXTRACT is answered from the
// snapshot taken when the macro started.
func (m *macroEnv) Command(text string) (xerr.ReturnCode, string) {
	if operand, ok := extractOperand(text); ok {
		vars, err := m.snap.Extract(operand)
		if err != nil {
			m.lastMsg = err.Error()
			return xerr.Code(err), m.lastMsg
		}
		m.lastMsg = formatVars(vars)
		return xerr.RCOK, m.lastMsg
	}
	r := m.d.execute(m.ctx.Context, text, m.depth)
	if IsRecursionLimit(r) && m.d.logger != nil {
		m.d.logger.Warn("macro stopped at depth %d: %s", m.depth, r.Message)
	}
	m.lastMsg = r.Message
	return r.Code, r.Message
}

func (m *macroEnv) Snapshot() *macro.Snapshot {
	return m.snap
}

// extractOperand recognizes EXTRACT and its abbreviations down to EXT.
func extractOperand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	verb, rest, _ := strings.Cut(text, " ")
	if i := strings.IndexAny(verb, "/:"); i > 0 {
		verb, rest = verb[:i], text[i:]
	}
	verb = strings.ToUpper(verb)
	if len(verb) < 3 || !strings.HasPrefix("EXTRACT", verb) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func formatVars(vars map[string][]string) string {
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + "=" + strings.Join(vars[n], " ")
	}
	return strings.Join(parts, " ")
}
