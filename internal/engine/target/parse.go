package target

import (
	"strconv"
	"strings"

	"github.com/dshills/xedit/internal/xerr"
)

// Delimiter ends a search string.
const Delimiter = '/'

// Parse reads one target expression from the front of s and returns it
// with the unconsumed remainder. Leading blanks are skipped.
func Parse(s string) (Target, string, error) {
	t, rest, err := parseTerm(s)
	if err != nil {
		return Target{}, s, err
	}
	for {
		trimmed := strings.TrimLeft(rest, " \t")
		if trimmed == "" || (trimmed[0] != '&' && trimmed[0] != '|') {
			return t, rest, nil
		}
		kind := And
		if trimmed[0] == '|' {
			kind = Or
		}
		right, after, err := parseTerm(trimmed[1:])
		if err != nil {
			return Target{}, s, err
		}
		left := t
		t = Target{Kind: kind, Left: &left, Right: &right}
		rest = after
	}
}

// ParseAll parses s as exactly one target expression.
func ParseAll(s string) (Target, error) {
	t, rest, err := Parse(s)
	if err != nil {
		return Target{}, err
	}
	if strings.TrimSpace(rest) != "" {
		return Target{}, xerr.Syntax("unexpected %q after target", strings.TrimSpace(rest))
	}
	return t, nil
}

// IsTarget returns true if s starts with something Parse would accept.
func IsTarget(s string) bool {
	_, _, err := Parse(s)
	return err == nil
}

func parseTerm(s string) (Target, string, error) {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return Target{}, s, xerr.Syntax("missing target")
	}

	switch s[0] {
	case ':':
		n, rest, ok := number(s[1:])
		if !ok {
			return Target{}, s, xerr.Syntax("invalid line number %q", s)
		}
		return Line(n), rest, nil
	case '*':
		return Target{Kind: Star}, s[1:], nil
	case '+', '-':
		backward := s[0] == '-'
		body := s[1:]
		if body == "" {
			return Target{}, s, xerr.Syntax("incomplete target %q", s)
		}
		if body[0] == '*' {
			return Target{Kind: Star, Backward: backward}, body[1:], nil
		}
		if isSearchStart(body) {
			t, rest := parseSearch(body)
			t.Backward = backward
			return t, rest, nil
		}
		n, rest, ok := number(body)
		if !ok {
			return Target{}, s, xerr.Syntax("invalid target %q", s)
		}
		if backward {
			n = -n
		}
		return Offset(n), rest, nil
	}

	if isSearchStart(s) {
		t, rest := parseSearch(s)
		return t, rest, nil
	}
	if n, rest, ok := number(s); ok {
		return Offset(n), rest, nil
	}
	return Target{}, s, xerr.Syntax("invalid target %q", s)
}

func isSearchStart(s string) bool {
	if strings.HasPrefix(s, "~") {
		s = s[1:]
	} else if strings.HasPrefix(s, "¬") {
		s = s[len("¬"):]
	}
	return s != "" && s[0] == Delimiter
}

// parseSearch reads [~]/text[/]. A missing closing delimiter takes the
// rest of the input as the search string.
func parseSearch(s string) (Target, string) {
	t := Target{Kind: Search}
	if strings.HasPrefix(s, "~") {
		t.Not = true
		s = s[1:]
	} else if strings.HasPrefix(s, "¬") {
		t.Not = true
		s = s[len("¬"):]
	}
	s = s[1:]
	end := strings.IndexByte(s, Delimiter)
	if end < 0 {
		t.Text = s
		return t, ""
	}
	t.Text = s[:end]
	return t, s[end+1:]
}

func number(s string) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}
