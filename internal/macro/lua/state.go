// Package lua runs editor macros written in Lua.
//
// Each macro invocation gets a fresh sandboxed interpreter with only the
// base, table, string and math libraries. The editor is reached through
// the xedit module:
//
//	local rc, msg = xedit.command("LOCATE /total/")
//	local v = xedit.extract("/CURLINE/SIZE/")
//	print(v.CURLINE[3], EXTRACT.SIZE[1], ARG)
//	return rc
//
// The number returned by the chunk is the macro's return code.
package lua

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds one macro run.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps a gopher-lua state for one macro run. It is not safe for
// concurrent use.
type State struct {
	L *lua.LState

	executionTimeout time.Duration
	output           io.Writer

	sandbox *Sandbox
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the time limit of Run. Zero disables it.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// WithOutput sets where print writes.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.output = w
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		executionTimeout: DefaultExecutionTimeout,
		output:           io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)

	s.sandbox = NewSandbox(s.L, s.output)
	s.sandbox.Install()
	return s
}

// openSafeLibraries opens only the libraries without host access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// Run compiles and executes src and returns the chunk's first result.
func (s *State) Run(ctx context.Context, name, src string) (lua.LValue, error) {
	if s.closed {
		return lua.LNil, ErrStateClosed
	}
	if s.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.executionTimeout)
		defer cancel()
	}

	fn, err := s.L.Load(strings.NewReader(src), name)
	if err != nil {
		return lua.LNil, fmt.Errorf("%s: %v: %w", name, err, ErrCompile)
	}

	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	top := s.L.GetTop()
	s.L.Push(fn)
	if err := s.call(); err != nil {
		if ctx.Err() != nil {
			return lua.LNil, fmt.Errorf("%s: %w", name, ErrExecutionTimeout)
		}
		return lua.LNil, fmt.Errorf("%s: %w", name, err)
	}
	ret := s.L.Get(top + 1)
	s.L.SetTop(top)
	return ret, nil
}

// call runs the function on top of the stack with panic recovery.
func (s *State) call() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return s.L.PCall(0, 1, nil)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// RegisterModule registers a global table of functions.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, s.L.SetFuncs(s.L.NewTable(), funcs))
}

// Close releases the interpreter.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}
