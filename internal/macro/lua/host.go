package lua

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/xedit/internal/macro"
	"github.com/dshills/xedit/internal/vfs"
	"github.com/dshills/xedit/internal/xerr"
)

// Extension is the file extension of macro files.
const Extension = ".xedit"

// Host finds macros as files on a search path and runs them in Lua.
// A macro named CENTER is the file center.xedit in the first directory
// of the path that has one.
type Host struct {
	fs      vfs.VFS
	path    []string
	timeout time.Duration
	output  io.Writer
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithTimeout bounds each macro run.
func WithTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		h.timeout = d
	}
}

// WithPrintOutput sets where macros print.
func WithPrintOutput(w io.Writer) HostOption {
	return func(h *Host) {
		h.output = w
	}
}

// NewHost creates a host searching path on fs.
func NewHost(fs vfs.VFS, path []string, opts ...HostOption) *Host {
	h := &Host{
		fs:      fs,
		path:    append([]string(nil), path...),
		timeout: DefaultExecutionTimeout,
		output:  io.Discard,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Path returns the search path.
func (h *Host) Path() []string {
	return append([]string(nil), h.path...)
}

func (h *Host) find(name string) (string, bool) {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", false
	}
	file := strings.ToLower(name) + Extension
	for _, dir := range h.path {
		p := h.fs.Join(dir, file)
		if h.fs.Exists(p) {
			return p, true
		}
	}
	return "", false
}

// Lookup reports whether a macro named name exists on the path.
func (h *Host) Lookup(name string) bool {
	_, ok := h.find(name)
	return ok
}

// Run executes the macro with args. EXTRACT variables are those of the
// env's snapshot.
func (h *Host) Run(ctx context.Context, name, args string, env macro.Env) (xerr.ReturnCode, error) {
	path, ok := h.find(name)
	if !ok {
		return xerr.RCBadSyntax, fmt.Errorf("%s: %w", strings.ToUpper(name), macro.ErrNotFound)
	}
	src, err := h.fs.ReadFile(path)
	if err != nil {
		return xerr.RCFileIO, xerr.NewOperationError("read macro", path, err)
	}

	st := NewState(WithExecutionTimeout(h.timeout), WithOutput(h.output))
	defer st.Close()
	install(st, env, args)

	ret, err := st.Run(ctx, strings.ToUpper(name), string(src))
	if err != nil {
		return xerr.Code(err), err
	}
	return xerr.ReturnCode(NewBridge(st.L).ReturnCode(ret)), nil
}

// install publishes the editor to the macro: the xedit module, the EXTRACT
// table, ARG and RC.
func install(st *State, env macro.Env, args string) {
	b := NewBridge(st.L)
	snap := env.Snapshot()

	all := make(map[string][]string)
	for _, n := range snap.Names() {
		all[n], _ = snap.Get(n)
	}
	st.SetGlobal("EXTRACT", b.Stems(all))
	st.SetGlobal("ARG", lua.LString(args))
	st.SetGlobal("RC", lua.LNumber(0))

	st.RegisterModule("xedit", map[string]lua.LGFunction{
		"command": func(L *lua.LState) int {
			rc, msg := env.Command(L.CheckString(1))
			L.SetGlobal("RC", lua.LNumber(rc))
			L.Push(lua.LNumber(rc))
			L.Push(lua.LString(msg))
			return 2
		},
		"extract": func(L *lua.LState) int {
			vars, err := snap.Extract(L.CheckString(1))
			if err != nil {
				L.RaiseError("%s", err.Error())
				return 0
			}
			L.Push(b.Stems(vars))
			return 1
		},
	})
}
