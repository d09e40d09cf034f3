// Package target parses and resolves target expressions, the addressing
// sublanguage shared by LOCATE, range operands and the command line.
//
// Forms:
//
//	:n          absolute line n (0 is TOF, LineCount()+1 is EOF)
//	+n -n n     relative line count
//	*  -*       EOF, or TOF when written backward
//	/s/ -/s/    next line forward or backward containing s
//	~/s/        next line not containing s (¬ is accepted too)
//	A & B       both resolve to the same line
//	A | B       the first of A and B that resolves
//
// A target is a parsed value with no cached position; it is resolved afresh
// every time it is used.
package target

import (
	"strconv"
	"strings"
)

// Kind identifies the form of a target.
type Kind uint8

const (
	Absolute Kind = iota
	Relative
	Star
	Search
	And
	Or
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	case Star:
		return "star"
	case Search:
		return "search"
	case And:
		return "and"
	case Or:
		return "or"
	default:
		return "unknown"
	}
}

// Target is a parsed target expression.
type Target struct {
	Kind     Kind
	N        int    // Absolute line or signed relative count
	Text     string // Search string
	Backward bool   // Search or Star direction
	Not      bool   // Search matches lines not containing Text
	Left     *Target
	Right    *Target
}

// Line returns an absolute target.
func Line(n int) Target {
	return Target{Kind: Absolute, N: n}
}

// Offset returns a relative target.
func Offset(n int) Target {
	return Target{Kind: Relative, N: n}
}

// Find returns a forward search target.
func Find(text string) Target {
	return Target{Kind: Search, Text: text}
}

// IsBackward returns true if the target resolves toward TOF from the
// current line. Compound targets take the direction of their left side.
func (t Target) IsBackward() bool {
	switch t.Kind {
	case Relative:
		return t.N < 0
	case Search, Star:
		return t.Backward
	case And, Or:
		return t.Left.IsBackward()
	default:
		return false
	}
}

// String formats the target in the syntax Parse accepts.
func (t Target) String() string {
	switch t.Kind {
	case Absolute:
		return ":" + strconv.Itoa(t.N)
	case Relative:
		if t.N < 0 {
			return strconv.Itoa(t.N)
		}
		return "+" + strconv.Itoa(t.N)
	case Star:
		if t.Backward {
			return "-*"
		}
		return "*"
	case Search:
		var sb strings.Builder
		if t.Backward {
			sb.WriteByte('-')
		}
		if t.Not {
			sb.WriteByte('~')
		}
		sb.WriteByte('/')
		sb.WriteString(t.Text)
		sb.WriteByte('/')
		return sb.String()
	case And:
		return t.Left.String() + " & " + t.Right.String()
	case Or:
		return t.Left.String() + " | " + t.Right.String()
	default:
		return "?"
	}
}
