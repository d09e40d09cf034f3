// Package prefix implements prefix commands: per-line edit requests typed in
// the prefix column, collected into a pending batch and applied together.
//
// A batch is validated as a whole before anything changes. It then runs as
// one undo transaction in a fixed order: block operations and transfers
// first, then single-line operations, then the current-line marker. Within
// each class operations run in ascending line order as captured when the
// batch was validated.
package prefix

import (
	"strconv"
	"strings"

	"github.com/dshills/xedit/internal/xerr"
)

// Verb is a prefix command.
type Verb uint8

const (
	VerbNone Verb = iota
	SetCurrent
	Delete
	DeleteBlock
	Insert
	Add
	Dup
	DupBlock
	Copy
	CopyBlock
	Move
	MoveBlock
	Following
	Preceding
	ShiftRight
	ShiftLeft
	ShiftRightBlock
	ShiftLeftBlock
)

type verbInfo struct {
	token    string
	counted  bool // Accepts a count
	defCount int
	block    bool // Paired with a second marker
	onTOF    bool
	onEOF    bool
}

var verbs = map[Verb]verbInfo{
	SetCurrent:      {token: "/", onTOF: true, onEOF: true},
	Delete:          {token: "d", counted: true, defCount: 1},
	DeleteBlock:     {token: "dd", block: true},
	Insert:          {token: "i", counted: true, defCount: 1, onTOF: true},
	Add:             {token: "a", counted: true, defCount: 1, onTOF: true},
	Dup:             {token: `"`, counted: true, defCount: 1},
	DupBlock:        {token: `""`, counted: true, defCount: 1, block: true},
	Copy:            {token: "c", counted: true, defCount: 1},
	CopyBlock:       {token: "cc", block: true},
	Move:            {token: "m", counted: true, defCount: 1},
	MoveBlock:       {token: "mm", block: true},
	Following:       {token: "f", onTOF: true},
	Preceding:       {token: "p", onEOF: true},
	ShiftRight:      {token: ">", counted: true, defCount: 2},
	ShiftLeft:       {token: "<", counted: true, defCount: 2},
	ShiftRightBlock: {token: ">>", counted: true, defCount: 2, block: true},
	ShiftLeftBlock:  {token: "<<", counted: true, defCount: 2, block: true},
}

var byToken = func() map[string]Verb {
	m := make(map[string]Verb, len(verbs))
	for v, info := range verbs {
		m[info.token] = v
	}
	return m
}()

// String returns the prefix token of the verb.
func (v Verb) String() string {
	if info, ok := verbs[v]; ok {
		return info.token
	}
	return "?"
}

// IsBlock returns true for verbs that take two markers.
func (v Verb) IsBlock() bool {
	return verbs[v].block
}

// isSource reports copy and move sources.
func (v Verb) isSource() bool {
	switch v {
	case Copy, CopyBlock, Move, MoveBlock:
		return true
	}
	return false
}

func (v Verb) isDest() bool {
	return v == Following || v == Preceding
}

// Annotation is one pending prefix command.
type Annotation struct {
	Verb  Verb
	Count int    // Repeat, line or column count
	Text  string // As typed
}

// Parse reads prefix text such as d, 3d, d3, dd, "" or >>4. The count may
// precede or follow the verb.
func Parse(text string) (Annotation, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return Annotation{}, xerr.Syntax("empty prefix command")
	}

	lead := digits(s)
	s = s[len(lead):]
	tok := strings.TrimRight(s, "0123456789")
	trail := s[len(tok):]
	if lead != "" && trail != "" {
		return Annotation{}, xerr.Syntax("invalid prefix command %q", text)
	}

	v, ok := byToken[tok]
	if !ok {
		return Annotation{}, xerr.Syntax("unknown prefix command %q", text)
	}
	info := verbs[v]
	a := Annotation{Verb: v, Count: info.defCount, Text: strings.TrimSpace(text)}

	num := lead + trail
	if num == "" {
		return a, nil
	}
	if !info.counted {
		return Annotation{}, xerr.Syntax("prefix command %q takes no count", tok)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return Annotation{}, xerr.Syntax("invalid count in %q", text)
	}
	a.Count = n
	return a, nil
}

func digits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
