package target

import (
	"fmt"

	"github.com/dshills/xedit/internal/xerr"
)

// ErrTargetNotFound is returned when a target does not resolve.
var ErrTargetNotFound = xerr.ErrTargetNotFound

// Reader is the read-only view of a line store the resolver needs.
type Reader interface {
	LineCount() int
	Text(addr int) string
}

// Options controls how string targets match.
type Options struct {
	Matcher

	// Visible, when set, hides lines excluded by an ALL filter from
	// relative movement and searches. Sentinels are always visible.
	Visible func(addr int) bool
}

// Resolve evaluates t from the current address and returns the address it
// names. Failure leaves nothing changed and wraps ErrTargetNotFound.
func Resolve(from int, t Target, r Reader, opts Options) (int, error) {
	eof := r.LineCount() + 1
	switch t.Kind {
	case Absolute:
		if t.N < 0 || t.N > eof {
			return 0, notFound(t)
		}
		return t.N, nil

	case Relative:
		return relative(from, t, eof, opts)

	case Star:
		if t.Backward {
			return 0, nil
		}
		return eof, nil

	case Search:
		step := 1
		if t.Backward {
			step = -1
		}
		for addr := from + step; addr >= 1 && addr < eof; addr += step {
			if !opts.visible(addr) {
				continue
			}
			if opts.Contains(r.Text(addr), t.Text) != t.Not {
				return addr, nil
			}
		}
		return 0, notFound(t)

	case And:
		a, errA := Resolve(from, *t.Left, r, opts)
		b, errB := Resolve(from, *t.Right, r, opts)
		if errA != nil || errB != nil || a != b {
			return 0, notFound(t)
		}
		return a, nil

	case Or:
		if a, err := Resolve(from, *t.Left, r, opts); err == nil {
			return a, nil
		}
		if b, err := Resolve(from, *t.Right, r, opts); err == nil {
			return b, nil
		}
		return 0, notFound(t)
	}
	return 0, notFound(t)
}

// relative moves |N| visible lines. Landing on a sentinel is allowed,
// crossing one is not.
func relative(from int, t Target, eof int, opts Options) (int, error) {
	if opts.Visible == nil {
		to := from + t.N
		if to < 0 || to > eof {
			return 0, notFound(t)
		}
		return to, nil
	}

	step, n := 1, t.N
	if n < 0 {
		step, n = -1, -n
	}
	addr := from
	for n > 0 {
		addr += step
		if addr < 0 || addr > eof {
			return 0, notFound(t)
		}
		if addr == 0 || addr == eof || opts.Visible(addr) {
			n--
		}
	}
	return addr, nil
}

func (o Options) visible(addr int) bool {
	return o.Visible == nil || o.Visible(addr)
}

func notFound(t Target) error {
	return fmt.Errorf("%s: %w", t, ErrTargetNotFound)
}

// Span is an inclusive range of real lines.
type Span struct {
	Start, End int
}

// Len returns the number of lines in the span.
func (s Span) Len() int {
	return s.End - s.Start + 1
}

// Range resolves t as the operand of a line-range command. A forward target
// covers the lines from the current line up to but not including the
// resolved line; a backward target covers the lines after the resolved line
// through the current line. Sentinels are clipped; an empty range wraps
// xerr.ErrOutOfRange.
func Range(from int, t Target, r Reader, opts Options) (Span, error) {
	to, err := Resolve(from, t, r, opts)
	if err != nil {
		return Span{}, err
	}
	var s Span
	if to >= from && !t.IsBackward() {
		s = Span{Start: from, End: to - 1}
	} else if to < from {
		s = Span{Start: to + 1, End: from}
	} else {
		s = Span{Start: to, End: from}
	}
	if s.Start < 1 {
		s.Start = 1
	}
	if s.End > r.LineCount() {
		s.End = r.LineCount()
	}
	if s.Start > s.End {
		return Span{}, fmt.Errorf("%s from line %d: no lines in range: %w", t, from, xerr.ErrOutOfRange)
	}
	return s, nil
}
