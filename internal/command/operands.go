package command

import (
	"strconv"
	"strings"

	"github.com/dshills/xedit/internal/engine/target"
	"github.com/dshills/xedit/internal/xerr"
)

// All is the count written as *.
const All = -1

// ParseCount reads an optional count operand: a positive integer or *.
// The default is returned when args is blank.
func ParseCount(args string, def int) (int, string, error) {
	word, rest := splitWord(args)
	if word == "" {
		return def, "", nil
	}
	if word == "*" {
		return All, rest, nil
	}
	n, err := strconv.Atoi(word)
	if err != nil || n < 0 {
		return 0, args, xerr.Syntax("invalid count %q", word)
	}
	return n, rest, nil
}

// ParseInt reads one required integer operand.
func ParseInt(args string) (int, string, error) {
	word, rest := splitWord(args)
	if word == "" {
		return 0, args, xerr.Syntax("missing number")
	}
	n, err := strconv.Atoi(word)
	if err != nil {
		return 0, args, xerr.Syntax("invalid number %q", word)
	}
	return n, rest, nil
}

// NoMore fails when operands remain.
func NoMore(rest string) error {
	if rest = strings.TrimSpace(rest); rest != "" {
		return xerr.Syntax("unexpected operand %q", rest)
	}
	return nil
}

// ChangeArgs holds the operands of CHANGE.
type ChangeArgs struct {
	Old    string
	New    string
	Target *target.Target // nil means the current line
	Count  int            // Occurrences per line; All for every one
	Start  int            // First occurrence to change, 1-based
}

// ParseChange reads /old/new/ [target [n|* [p]]]. Any non-blank,
// non-alphanumeric character may serve as delimiter; the closing one may
// be omitted.
func ParseChange(args string) (ChangeArgs, error) {
	out := ChangeArgs{Count: 1, Start: 1}
	s := strings.TrimLeft(args, " \t")
	if s == "" {
		return out, xerr.Syntax("CHANGE requires /old/new/")
	}
	delim := s[0]
	if isVerbChar(delim) || delim == ' ' {
		return out, xerr.Syntax("invalid delimiter %q", delim)
	}
	s = s[1:]
	i := strings.IndexByte(s, delim)
	if i < 0 {
		return out, xerr.Syntax("CHANGE requires a replacement string")
	}
	out.Old = s[:i]
	s = s[i+1:]
	if j := strings.IndexByte(s, delim); j >= 0 {
		out.New = s[:j]
		s = s[j+1:]
	} else {
		out.New = s
		s = ""
	}

	t, rest, err := ParseTarget(s)
	if err != nil {
		return out, err
	}
	out.Target = t
	if t == nil {
		return out, NoMore(rest)
	}

	if out.Count, rest, err = ParseCount(rest, 1); err != nil {
		return out, err
	}
	if out.Count == 0 {
		return out, xerr.Syntax("occurrence count must be positive")
	}
	if out.Start, rest, err = ParseCount(rest, 1); err != nil {
		return out, err
	}
	if out.Start < 1 {
		return out, xerr.Syntax("invalid starting occurrence")
	}
	return out, NoMore(rest)
}

// ParseString reads a delimited string such as /abc/ from the front of
// args. The closing delimiter is optional.
func ParseString(args string) (string, string, error) {
	s := strings.TrimLeft(args, " \t")
	if s == "" {
		return "", args, xerr.Syntax("missing string")
	}
	delim := s[0]
	if isVerbChar(delim) {
		return "", args, xerr.Syntax("invalid delimiter %q", delim)
	}
	s = s[1:]
	if i := strings.IndexByte(s, delim); i >= 0 {
		return s[:i], strings.TrimLeft(s[i+1:], " \t"), nil
	}
	return s, "", nil
}

// ShiftArgs holds the operands of SHIFT.
type ShiftArgs struct {
	Left   bool
	N      int
	Target *target.Target
}

// ParseShift reads LEFT|RIGHT [n [target]].
func ParseShift(args string) (ShiftArgs, error) {
	out := ShiftArgs{N: 1}
	dir, rest := splitWord(args)
	switch {
	case dir == "":
		return out, xerr.Syntax("SHIFT requires LEFT or RIGHT")
	case prefixOf(dir, "LEFT", 1):
		out.Left = true
	case prefixOf(dir, "RIGHT", 1):
	default:
		return out, xerr.Syntax("invalid direction %q", dir)
	}
	var err error
	if out.N, rest, err = ParseCount(rest, 1); err != nil {
		return out, err
	}
	if out.N == All {
		return out, xerr.Syntax("shift amount must be a number")
	}
	if out.Target, rest, err = ParseTarget(rest); err != nil {
		return out, err
	}
	return out, NoMore(rest)
}

// SortArgs holds the operands of SORT.
type SortArgs struct {
	Target     *target.Target
	Descending bool
	Col1, Col2 int // 1-based inclusive sort field; zero means whole line
}

// ParseSort reads [target] [A|D] [col1 col2].
func ParseSort(args string) (SortArgs, error) {
	var out SortArgs
	t, rest, err := ParseTarget(args)
	if err != nil {
		return out, err
	}
	out.Target = t
	word, after := splitWord(rest)
	switch {
	case prefixOf(word, "ASCENDING", 1):
		rest = after
	case prefixOf(word, "DESCENDING", 1):
		out.Descending = true
		rest = after
	}
	if strings.TrimSpace(rest) == "" {
		return out, nil
	}
	if out.Col1, rest, err = ParseInt(rest); err != nil {
		return out, err
	}
	if out.Col2, rest, err = ParseInt(rest); err != nil {
		return out, err
	}
	if out.Col1 < 1 || out.Col2 < out.Col1 {
		return out, xerr.Syntax("invalid sort columns %d %d", out.Col1, out.Col2)
	}
	return out, NoMore(rest)
}

// ParseTwoTargets reads the source and destination of COPY and MOVE.
func ParseTwoTargets(args string) (target.Target, target.Target, error) {
	src, rest, err := ParseTarget(args)
	if err != nil {
		return target.Target{}, target.Target{}, err
	}
	if src == nil {
		return target.Target{}, target.Target{}, xerr.Syntax("missing source target")
	}
	dst, rest, err := ParseTarget(rest)
	if err != nil {
		return target.Target{}, target.Target{}, err
	}
	if dst == nil {
		return target.Target{}, target.Target{}, xerr.Syntax("missing destination target")
	}
	return *src, *dst, NoMore(rest)
}

// ParseFileSpec reads up to three file identity words.
func ParseFileSpec(args string) ([]string, error) {
	words := Words(args)
	if len(words) > 3 {
		return nil, xerr.Syntax("too many file operands")
	}
	return words, nil
}

// prefixOf reports whether word abbreviates name to at least min characters.
func prefixOf(word, name string, min int) bool {
	word = strings.ToUpper(word)
	return len(word) >= min && strings.HasPrefix(name, word)
}
