// Package macro defines how macros drive the editor.
//
// A macro runs against an Env: a snapshot of editor state taken once before
// the macro starts, and a Command function that executes editor commands
// exactly as if they had been typed. The snapshot does not change while the
// macro runs, even when its commands change the file.
//
// A Host finds and runs macros. The editor offers every verb it does not
// know to the host before reporting an unknown command.
package macro

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/xedit/internal/xerr"
)

// ErrNotFound is returned by Run for a macro the host does not have.
var ErrNotFound = fmt.Errorf("macro not found: %w", xerr.ErrUnknownCommand)

// Env is the capability a running macro holds.
type Env interface {
	// Command executes an editor command and returns its return code and
	// status message.
	Command(text string) (xerr.ReturnCode, string)

	// Snapshot returns the state captured before the macro started.
	Snapshot() *Snapshot
}

// Host finds and runs macros.
type Host interface {
	// Lookup reports whether a macro named name exists.
	Lookup(name string) bool

	// Run executes the macro and returns its return code.
	Run(ctx context.Context, name, args string, env Env) (xerr.ReturnCode, error)
}

// Func is a macro implemented in Go.
type Func func(ctx context.Context, args string, env Env) (xerr.ReturnCode, error)

// Funcs is a Host serving Go macros by upper-case name.
type Funcs map[string]Func

// Lookup reports whether a macro named name exists.
func (f Funcs) Lookup(name string) bool {
	_, ok := f[strings.ToUpper(name)]
	return ok
}

// Run executes the macro.
func (f Funcs) Run(ctx context.Context, name, args string, env Env) (xerr.ReturnCode, error) {
	fn, ok := f[strings.ToUpper(name)]
	if !ok {
		return xerr.RCBadSyntax, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return fn(ctx, args, env)
}

// Chain tries each host in order.
type Chain []Host

// Lookup reports whether any host has the macro.
func (c Chain) Lookup(name string) bool {
	for _, h := range c {
		if h.Lookup(name) {
			return true
		}
	}
	return false
}

// Run executes the macro on the first host that has it.
func (c Chain) Run(ctx context.Context, name, args string, env Env) (xerr.ReturnCode, error) {
	for _, h := range c {
		if h.Lookup(name) {
			return h.Run(ctx, name, args, env)
		}
	}
	return xerr.RCBadSyntax, fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Snapshot holds EXTRACT variables. Each variable is a stem of values:
// stem.0 is the number of values, stem.1 the first value, and so on.
type Snapshot struct {
	vars map[string][]string
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{vars: make(map[string][]string)}
}

// Set records the values of a variable.
func (s *Snapshot) Set(name string, values ...string) {
	s.vars[strings.ToUpper(name)] = append([]string(nil), values...)
}

// Get returns the values of a variable.
func (s *Snapshot) Get(name string) ([]string, bool) {
	v, ok := s.vars[strings.ToUpper(name)]
	return v, ok
}

// Value returns value i of a variable using stem numbering: 0 is the
// count. Missing values are empty.
func (s *Snapshot) Value(name string, i int) string {
	v, ok := s.Get(name)
	switch {
	case !ok:
		return ""
	case i == 0:
		return fmt.Sprint(len(v))
	case i > len(v):
		return ""
	default:
		return v[i-1]
	}
}

// Names returns the variable names in order.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.vars))
	for n := range s.vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ErrUnknownVariable is returned by Extract for a name the snapshot lacks.
var ErrUnknownVariable = errors.New("unknown EXTRACT variable")

// Extract parses an EXTRACT operand such as /CURLINE/SIZE/ and returns the
// requested variables. Names may be separated by any delimiter character
// or by blanks.
func (s *Snapshot) Extract(operand string) (map[string][]string, error) {
	names := splitNames(operand)
	if len(names) == 0 {
		return nil, xerr.Syntax("EXTRACT needs a variable name")
	}
	out := make(map[string][]string, len(names))
	for _, n := range names {
		v, ok := s.Get(n)
		if !ok {
			return nil, fmt.Errorf("%s: %w: %w", strings.ToUpper(n), ErrUnknownVariable, xerr.ErrBadSyntax)
		}
		out[strings.ToUpper(n)] = v
	}
	return out, nil
}

func splitNames(operand string) []string {
	operand = strings.TrimSpace(operand)
	if operand == "" {
		return nil
	}
	delim := rune(operand[0])
	if isNameChar(delim) {
		return strings.Fields(operand)
	}
	var names []string
	for _, part := range strings.Split(operand, string(delim)) {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

func isNameChar(r rune) bool {
	return r == '_' || r == '$' || r == '#' || r == '@' ||
		(r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
