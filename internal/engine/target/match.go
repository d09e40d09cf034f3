package target

import "unicode"

// Matcher finds a search string inside a line, honoring case sensitivity,
// the column zone and the arbitrary character.
type Matcher struct {
	CaseRespect bool
	ArbChar     rune // 0 disables arbitrary-character matching
	ZoneLeft    int  // First column searched, 1-based; 0 means column 1
	ZoneRight   int  // Last column searched; 0 means end of line
}

// Contains returns true if pattern occurs within the zone of line.
// An empty pattern matches every line.
func (m Matcher) Contains(line, pattern string) bool {
	_, _, ok := m.Index([]rune(line), []rune(pattern), 0)
	return ok
}

// Index returns the rune span [start, end) of the first match of pattern in
// line at or after rune index from. The match lies entirely within the zone.
func (m Matcher) Index(line, pattern []rune, from int) (int, int, bool) {
	lo, hi := m.zone(len(line))
	if from < lo {
		from = lo
	}
	if len(pattern) == 0 {
		return from, from, from <= hi
	}

	pieces := m.split(pattern)
	for start := from; start <= hi; start++ {
		if end, ok := m.matchAt(line[:hi], pieces, start); ok {
			return start, end, true
		}
	}
	return 0, 0, false
}

// zone converts the 1-based inclusive zone to rune bounds [lo, hi).
func (m Matcher) zone(n int) (int, int) {
	lo := 0
	if m.ZoneLeft > 1 {
		lo = m.ZoneLeft - 1
	}
	hi := n
	if m.ZoneRight > 0 && m.ZoneRight < n {
		hi = m.ZoneRight
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// split breaks pattern at arbitrary characters. Empty pieces are dropped,
// except that a pattern made only of arbitrary characters yields none.
func (m Matcher) split(pattern []rune) [][]rune {
	if m.ArbChar == 0 {
		return [][]rune{pattern}
	}
	var pieces [][]rune
	cur := []rune{}
	for _, r := range pattern {
		if r == m.ArbChar {
			if len(cur) > 0 {
				pieces = append(pieces, cur)
			}
			cur = []rune{}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		pieces = append(pieces, cur)
	}
	return pieces
}

// matchAt reports whether the first piece matches at start and every later
// piece follows it in order, returning the end of the last piece.
func (m Matcher) matchAt(line []rune, pieces [][]rune, start int) (int, bool) {
	if len(pieces) == 0 {
		return start, true
	}
	if !m.equalAt(line, pieces[0], start) {
		return 0, false
	}
	pos := start + len(pieces[0])
	for _, p := range pieces[1:] {
		found := false
		for ; pos+len(p) <= len(line); pos++ {
			if m.equalAt(line, p, pos) {
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
		pos += len(p)
	}
	return pos, true
}

func (m Matcher) equalAt(line, piece []rune, at int) bool {
	if at+len(piece) > len(line) {
		return false
	}
	for i, r := range piece {
		if !m.runeEqual(line[at+i], r) {
			return false
		}
	}
	return true
}

func (m Matcher) runeEqual(a, b rune) bool {
	if a == b {
		return true
	}
	if m.CaseRespect {
		return false
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}
