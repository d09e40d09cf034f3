package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/dispatcher/handlers/cursor"
	"github.com/dshills/xedit/internal/dispatcher/handlers/editor"
	"github.com/dshills/xedit/internal/dispatcher/handlers/file"
	"github.com/dshills/xedit/internal/dispatcher/handlers/search"
	"github.com/dshills/xedit/internal/dispatcher/handlers/view"
	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/macro"
	"github.com/dshills/xedit/internal/ring"
	"github.com/dshills/xedit/internal/xerr"
)

// Dispatcher parses command lines and runs them against the current file.
// It is not safe for concurrent use; macros re-enter it as nested calls
// on the same goroutine.
type Dispatcher struct {
	// Core components
	registry *Registry
	ring     *ring.Ring

	// Collaborators
	files  execctx.FileSystem
	macros macro.Host
	logger Logger

	// Configuration
	config Config

	// Metrics
	metrics *Metrics

	// Hooks
	preHooks  []PreDispatchHook
	postHooks []PostDispatchHook

	// Session state
	keys    map[int]string
	last    string
	lastMsg string
}

// New creates a dispatcher with an empty ring and no handlers.
func New(config Config) *Dispatcher {
	if config.MaxMacroDepth <= 0 {
		config.MaxMacroDepth = DefaultMaxMacroDepth
	}
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	d := &Dispatcher{
		registry: NewRegistry(),
		ring:     ring.New(),
		config:   config,
		keys:     make(map[int]string),
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// NewWithDefaults creates a dispatcher with the default configuration and
// every built-in verb registered.
func NewWithDefaults() *Dispatcher {
	d := New(DefaultConfig())
	d.RegisterDefaults()
	return d
}

// RegisterDefaults registers the handlers of every built-in verb.
func (d *Dispatcher) RegisterDefaults() {
	d.registry.RegisterNamespace(cursor.NewHandler())
	d.registry.RegisterNamespace(editor.NewHandler())
	d.registry.RegisterNamespace(search.NewHandler())
	d.registry.RegisterNamespace(file.NewHandler())
	d.registry.RegisterNamespace(view.NewHandler())
}

// SetFileSystem sets the storage used by file commands.
func (d *Dispatcher) SetFileSystem(fs execctx.FileSystem) {
	d.files = fs
}

// SetMacroHost sets where unknown verbs are looked up as macros.
func (d *Dispatcher) SetMacroHost(h macro.Host) {
	d.macros = h
}

// SetLogger sets the logger for macro and panic reports.
func (d *Dispatcher) SetLogger(l Logger) {
	d.logger = l
}

// SetPageSize changes how far FORWARD and BACKWARD scroll.
func (d *Dispatcher) SetPageSize(n int) {
	if n > 0 {
		d.config.PageSize = n
	}
}

// Ring returns the open files.
func (d *Dispatcher) Ring() *ring.Ring {
	return d.ring
}

// Registry returns the handler registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Metrics returns the metrics collector, nil when disabled.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}

// Key returns the definition of PF key n.
func (d *Dispatcher) Key(n int) (string, bool) {
	text, ok := d.keys[n]
	return text, ok
}

// SetKey defines PF key n. Empty text removes the definition.
func (d *Dispatcher) SetKey(n int, text string) {
	if text == "" {
		delete(d.keys, n)
		return
	}
	d.keys[n] = text
}

// Last returns the last command entered at top level.
func (d *Dispatcher) Last() string {
	return d.last
}

// LastMessage returns the message of the last command.
func (d *Dispatcher) LastMessage() string {
	return d.lastMsg
}

// NewEngine creates the editing session of a newly opened file with the
// configured defaults.
func (d *Dispatcher) NewEngine(lines []string, readOnly bool) *engine.Engine {
	return engine.New(
		engine.WithLines(lines),
		engine.WithSettings(d.config.Settings),
		engine.WithMaxUndoEntries(d.config.MaxUndoEntries),
		engine.WithReadOnly(readOnly),
	)
}

// Execute runs one command line typed by the user.
func (d *Dispatcher) Execute(ctx context.Context, line string) handler.Result {
	return d.execute(ctx, line, 0)
}

func (d *Dispatcher) execute(ctx context.Context, line string, depth int) handler.Result {
	startTime := time.Now()

	switch strings.TrimSpace(line) {
	case "=":
		if d.last == "" {
			return d.finish(handler.Error(ErrNoPrevious))
		}
		line = d.last
	case "?":
		if d.last == "" {
			return d.finish(handler.Error(ErrNoPrevious))
		}
		return d.finish(handler.SuccessWithMessage(d.last).WithData(handler.DataRecall, d.last))
	default:
		if depth == 0 {
			d.last = line
		}
	}

	xctx := d.buildContext(ctx, depth)
	if err := xctx.Context.Err(); err != nil {
		return d.finish(d.withCurrent(handler.Error(err), xctx))
	}

	inv, err := command.Parse(line)
	if err != nil && !(inv.Macro && d.macroExists(inv.Name)) {
		return d.finish(d.withCurrent(handler.Error(err), xctx))
	}

	if !d.runPreHooks(&inv, xctx) {
		return d.finish(d.withCurrent(handler.Cancelled("cancelled by hook"), xctx))
	}

	var result handler.Result
	if inv.Macro {
		result = d.runMacro(xctx, inv.Name, inv.Args)
	} else {
		result = d.runBuiltin(inv, xctx)
	}

	d.processResult(result, xctx)
	result = d.withCurrent(result, xctx)
	d.runPostHooks(&inv, xctx, &result)

	if d.metrics != nil {
		d.metrics.RecordDispatch(inv.Name, inv.Macro, time.Since(startTime), result.Code)
	}
	return d.finish(result)
}

// finish records the message a later EXTRACT reports.
func (d *Dispatcher) finish(result handler.Result) handler.Result {
	d.lastMsg = result.Message
	return result
}

func (d *Dispatcher) withCurrent(result handler.Result, ctx *execctx.ExecutionContext) handler.Result {
	ctx.Refresh()
	result.Current = -1
	if ctx.Entry != nil {
		result.Current = ctx.Entry.Engine.Current()
	}
	return result
}

func (d *Dispatcher) runBuiltin(inv command.Invocation, ctx *execctx.ExecutionContext) handler.Result {
	if inv.Verb.Info().NeedsFile && ctx.Entry == nil {
		return handler.Error(fmt.Errorf("%s: %w", inv.Name, xerr.ErrNoActiveFile))
	}
	h := d.registry.Get(inv.Verb)
	if h == nil {
		return handler.Error(fmt.Errorf("%s: %w", inv.Name, ErrNoHandler))
	}
	if d.config.RecoverFromPanic {
		return d.executeWithRecovery(h, inv, ctx)
	}
	return h.Handle(inv, ctx)
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(h handler.Handler, inv command.Invocation, ctx *execctx.ExecutionContext) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			if d.logger != nil {
				d.logger.Error("panic in %s: %v\n%s", inv.Name, r, stack[:n])
			}
			result = handler.Error(fmt.Errorf("%s: %v: %w", inv.Name, r, ErrPanic))
			if d.metrics != nil {
				d.metrics.RecordPanic(inv.Name)
			}
		}
	}()
	return h.Handle(inv, ctx)
}

// buildContext builds an execution context from the current state.
func (d *Dispatcher) buildContext(ctx context.Context, depth int) *execctx.ExecutionContext {
	xctx := execctx.New(ctx, d.ring)
	xctx.Files = d.files
	xctx.NewEngine = d.NewEngine
	xctx.Keys = d.keys
	xctx.PageSize = d.config.PageSize
	xctx.Depth = depth
	return xctx
}

// processResult runs the profile macro for a newly opened file.
func (d *Dispatcher) processResult(result handler.Result, ctx *execctx.ExecutionContext) {
	if !result.Opened || d.config.ProfileMacro == "" || !d.macroExists(d.config.ProfileMacro) {
		return
	}
	ctx.Refresh()
	pr := d.runMacro(ctx, d.config.ProfileMacro, "")
	if pr.Code != xerr.RCOK && d.logger != nil {
		d.logger.Warn("profile macro %s: rc %d: %s", d.config.ProfileMacro, int(pr.Code), pr.Message)
	}
}

// RegisterHandler registers a handler for a verb.
func (d *Dispatcher) RegisterHandler(v command.Verb, h handler.Handler) {
	d.registry.Register(v, h)
}

// RegisterHandlerFunc registers a handler function for a verb.
func (d *Dispatcher) RegisterHandlerFunc(v command.Verb, fn func(command.Invocation, *execctx.ExecutionContext) handler.Result) {
	d.registry.Register(v, handler.HandlerFunc(fn))
}

// RegisterPreHook registers a pre-dispatch hook.
func (d *Dispatcher) RegisterPreHook(hook PreDispatchHook) {
	d.preHooks = append(d.preHooks, hook)
}

// RegisterPostHook registers a post-dispatch hook.
func (d *Dispatcher) RegisterPostHook(hook PostDispatchHook) {
	d.postHooks = append(d.postHooks, hook)
}

// runPreHooks runs all pre-dispatch hooks.
// Returns false if any hook cancels the command.
func (d *Dispatcher) runPreHooks(inv *command.Invocation, ctx *execctx.ExecutionContext) bool {
	for _, hook := range d.preHooks {
		if !hook.PreDispatch(inv, ctx) {
			return false
		}
	}
	return true
}

// runPostHooks runs all post-dispatch hooks.
func (d *Dispatcher) runPostHooks(inv *command.Invocation, ctx *execctx.ExecutionContext, result *handler.Result) {
	for _, hook := range d.postHooks {
		hook.PostDispatch(inv, ctx, result)
	}
}

// IsRecursionLimit reports whether a result failed on the macro depth guard.
func IsRecursionLimit(r handler.Result) bool {
	return errors.Is(r.Error, xerr.ErrMacroRecursionLimit)
}
