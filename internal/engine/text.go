package engine

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Truncate cuts s to at most width display columns. A width below 1
// leaves s unchanged.
func Truncate(s string, width int) string {
	if width < 1 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "")
}

// Shift moves text n columns right, padding with blanks and truncating at
// trunc, or n columns left, dropping the leading columns.
func Shift(s string, n int, left bool, trunc int) string {
	if n <= 0 {
		return s
	}
	if !left {
		return Truncate(strings.Repeat(" ", n)+s, trunc)
	}
	width := 0
	for i, r := range s {
		if width >= n {
			return s[i:]
		}
		width += runewidth.RuneWidth(r)
	}
	return ""
}

// Fold upper- or lower-cases the runes of s in columns left through right
// (1-based, inclusive). A right column below 1 means the end of the line.
func Fold(s string, upper bool, left, right int) string {
	caser := cases.Lower(language.Und)
	if upper {
		caser = cases.Upper(language.Und)
	}
	runes := []rune(s)
	if left < 1 {
		left = 1
	}
	if right < 1 || right > len(runes) {
		right = len(runes)
	}
	if left > right {
		return s
	}
	zone := caser.String(string(runes[left-1 : right]))
	return string(runes[:left-1]) + zone + string(runes[right:])
}

// Upper returns s in upper case.
func Upper(s string) string {
	return cases.Upper(language.Und).String(s)
}
