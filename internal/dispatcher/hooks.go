package dispatcher

import (
	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
	"github.com/dshills/xedit/internal/dispatcher/handler"
)

// PreDispatchHook is called before a command runs.
// Returning false cancels the command.
type PreDispatchHook interface {
	// PreDispatch may modify the invocation or context.
	PreDispatch(inv *command.Invocation, ctx *execctx.ExecutionContext) bool
}

// PostDispatchHook is called after a command ran.
type PostDispatchHook interface {
	// PostDispatch may inspect or modify the result.
	PostDispatch(inv *command.Invocation, ctx *execctx.ExecutionContext, result *handler.Result)
}

// PreDispatchFunc is a function adapter for PreDispatchHook.
type PreDispatchFunc func(inv *command.Invocation, ctx *execctx.ExecutionContext) bool

// PreDispatch implements PreDispatchHook.
func (f PreDispatchFunc) PreDispatch(inv *command.Invocation, ctx *execctx.ExecutionContext) bool {
	return f(inv, ctx)
}

// PostDispatchFunc is a function adapter for PostDispatchHook.
type PostDispatchFunc func(inv *command.Invocation, ctx *execctx.ExecutionContext, result *handler.Result)

// PostDispatch implements PostDispatchHook.
func (f PostDispatchFunc) PostDispatch(inv *command.Invocation, ctx *execctx.ExecutionContext, result *handler.Result) {
	f(inv, ctx, result)
}

// Logger receives dispatcher log output. Messages are printf formats.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LoggingHook logs every command and its outcome.
type LoggingHook struct {
	Logger Logger
}

// NewLoggingHook creates a logging hook.
func NewLoggingHook(l Logger) *LoggingHook {
	return &LoggingHook{Logger: l}
}

// PreDispatch logs the command being run.
func (h *LoggingHook) PreDispatch(inv *command.Invocation, ctx *execctx.ExecutionContext) bool {
	if h.Logger != nil {
		h.Logger.Debug("dispatching %s %q (depth %d)", inv.Name, inv.Args, ctx.Depth)
	}
	return true
}

// PostDispatch logs the result. Failures are logged as warnings.
func (h *LoggingHook) PostDispatch(inv *command.Invocation, ctx *execctx.ExecutionContext, result *handler.Result) {
	if h.Logger == nil {
		return
	}
	if result.Code != 0 {
		h.Logger.Warn("%s: rc %d: %s", inv.Name, int(result.Code), result.Message)
		return
	}
	h.Logger.Debug("%s: %s", inv.Name, result.Status)
}
