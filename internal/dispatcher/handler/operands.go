package handler

import (
	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/engine/target"
)

// LineRange resolves the range operand of a line-range verb. A nil target
// means the current line alone.
func LineRange(e *engine.Engine, t *target.Target) (engine.Span, error) {
	if t == nil {
		one := target.Offset(1)
		t = &one
	}
	return e.Range(*t)
}

// InputText prepares typed text for the file: upper-cased under
// CASE UPPER and cut at the truncation column.
func InputText(e *engine.Engine, text string) string {
	s := e.Settings()
	if s.CaseUpper {
		text = engine.Upper(text)
	}
	return engine.Truncate(text, s.Trunc)
}

// Plural returns "line" or "lines" style suffixes.
func Plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
