package command

import (
	"errors"
	"strings"

	"github.com/dshills/xedit/internal/engine/target"
	"github.com/dshills/xedit/internal/xerr"
)

// Invocation is a parsed command line.
type Invocation struct {
	// Verb is the resolved built-in, or VerbNone for a macro candidate.
	Verb Verb

	// Name is the verb as typed, upper-cased. For macros it is the macro name.
	Name string

	// Args is the operand text with leading blanks removed.
	Args string

	// Macro is true when the verb should be looked up as a macro.
	Macro bool

	// Forced is true when COMMAND or MACRO selected the resolution.
	Forced bool

	// Line is the original command line.
	Line string
}

// IsBuiltin returns true if the invocation resolved to a built-in verb.
func (inv Invocation) IsBuiltin() bool {
	return inv.Verb != VerbNone
}

// Parse splits a command line into verb and operands.
//
// A line that starts with a target is LOCATE. COMMAND forces built-in
// resolution and MACRO forces macro resolution. When the verb is not a
// built-in the invocation is returned with Macro set together with the
// lookup error, so the caller can try a macro before reporting it.
func Parse(line string) (Invocation, error) {
	trimmed := strings.TrimSpace(line)
	inv := Invocation{Line: line}
	if trimmed == "" {
		return inv, xerr.Syntax("empty command")
	}

	if startsTarget(trimmed) {
		inv.Verb = VerbLocate
		inv.Name = VerbLocate.String()
		inv.Args = trimmed
		return inv, nil
	}

	name, args := splitVerb(trimmed)
	if name == "" {
		return inv, xerr.Syntax("invalid command %q", trimmed)
	}
	inv.Name = strings.ToUpper(name)
	inv.Args = args

	info, err := Lookup(name)
	if err != nil {
		inv.Macro = true
		var unknown *xerr.UnknownError
		if errors.As(err, &unknown) {
			unknown.Suggestions = Suggest(name)
		}
		return inv, err
	}

	switch info.Verb {
	case VerbCommand:
		if args == "" {
			return inv, xerr.Syntax("COMMAND requires a verb")
		}
		forced, err := Parse(args)
		forced.Line = line
		forced.Forced = true
		forced.Macro = false
		if err != nil {
			return forced, err
		}
		return forced, nil
	case VerbMacro:
		if args == "" {
			return inv, xerr.Syntax("MACRO requires a name")
		}
		macroName, macroArgs := splitWord(args)
		return Invocation{
			Name:   strings.ToUpper(macroName),
			Args:   macroArgs,
			Macro:  true,
			Forced: true,
			Line:   line,
		}, nil
	}

	inv.Verb = info.Verb
	inv.Name = info.Name
	return inv, nil
}

// startsTarget reports whether a command line begins with a target.
func startsTarget(s string) bool {
	switch s[0] {
	case '/', ':', '+', '-', '*', '~':
		return true
	}
	if s[0] >= '0' && s[0] <= '9' {
		return true
	}
	return strings.HasPrefix(s, "¬")
}

// splitVerb separates the verb token from its operands. A verb is a letter
// followed by letters, digits or $#@_, so C/a/b/ splits as C and /a/b/.
func splitVerb(s string) (string, string) {
	if !isLetter(s[0]) {
		return "", s
	}
	i := 1
	for i < len(s) && isVerbChar(s[i]) {
		i++
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}

func splitWord(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isVerbChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '$' || c == '#' || c == '@' || c == '_'
}

// Words splits operands on blanks.
func Words(args string) []string {
	return strings.Fields(args)
}

// ParseTarget reads an optional leading target from args. A nil target
// means none was given.
func ParseTarget(args string) (*target.Target, string, error) {
	trimmed := strings.TrimLeft(args, " \t")
	if trimmed == "" || !startsTarget(trimmed) {
		return nil, trimmed, nil
	}
	t, rest, err := target.Parse(trimmed)
	if err != nil {
		return nil, args, err
	}
	return &t, strings.TrimLeft(rest, " \t"), nil
}
