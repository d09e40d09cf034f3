// Package cms implements the CMS file layer: `fn ft fm` file identities,
// minidisks mapped onto directories, and line-oriented file access.
package cms

import (
	"fmt"
	"strings"

	"github.com/dshills/xedit/internal/xerr"
)

// Errors.
var (
	ErrInvalidFileSpec = fmt.Errorf("invalid file specification: %w", xerr.ErrBadSyntax)
	ErrFileNotFound    = fmt.Errorf("file not found: %w", xerr.ErrFileIO)
	ErrDiskNotAccessed = fmt.Errorf("disk not accessed: %w", xerr.ErrFileIO)
	ErrFileExists      = fmt.Errorf("file already exists: %w", xerr.ErrFileIO)
	ErrReadOnly        = fmt.Errorf("disk is read-only: %w", xerr.ErrFileIO)
)

// Wildcard matches any filename, filetype or disk letter.
const Wildcard = "*"

// FileSpec is a CMS file identity: FILENAME FILETYPE FILEMODE.
//
// Name and Type are 1-8 characters from [A-Z0-9$#@], or *. The mode is a
// disk letter A-Z (or * to search every disk) and a digit 0-6. FileSpec
// values are comparable with ==.
type FileSpec struct {
	Name   string
	Type   string
	Letter byte
	Number uint8
}

// NewFileSpec validates and upper-cases the three components. An empty
// filemode defaults to A1.
func NewFileSpec(fn, ft, fm string) (FileSpec, error) {
	spec := FileSpec{Name: strings.ToUpper(fn), Type: strings.ToUpper(ft)}
	if err := validComponent(spec.Name, "filename"); err != nil {
		return FileSpec{}, err
	}
	if err := validComponent(spec.Type, "filetype"); err != nil {
		return FileSpec{}, err
	}
	letter, number, err := parseMode(strings.ToUpper(fm))
	if err != nil {
		return FileSpec{}, err
	}
	spec.Letter, spec.Number = letter, number
	return spec, nil
}

// ParseFileSpec parses "fn ft [fm]".
func ParseFileSpec(s string) (FileSpec, error) {
	words := strings.Fields(s)
	switch len(words) {
	case 2:
		return NewFileSpec(words[0], words[1], "")
	case 3:
		return NewFileSpec(words[0], words[1], words[2])
	default:
		return FileSpec{}, fmt.Errorf("expected 'fn ft [fm]', got %q: %w", s, ErrInvalidFileSpec)
	}
}

// Mode returns the filemode, e.g. "A1".
func (s FileSpec) Mode() string {
	return fmt.Sprintf("%c%d", s.Letter, s.Number)
}

// String returns "FN FT FM".
func (s FileSpec) String() string {
	return s.Name + " " + s.Type + " " + s.Mode()
}

// HasWildcards reports a * filename or filetype. A * disk letter is a
// search directive and does not count.
func (s FileSpec) HasWildcards() bool {
	return s.Name == Wildcard || s.Type == Wildcard
}

// Matches reports whether other matches s, treating * in s as any value.
func (s FileSpec) Matches(other FileSpec) bool {
	return (s.Name == Wildcard || s.Name == other.Name) &&
		(s.Type == Wildcard || s.Type == other.Type) &&
		(s.Letter == '*' || s.Letter == other.Letter)
}

// DiskName is the lower-case fn.ft name used on the host.
func (s FileSpec) DiskName() string {
	return strings.ToLower(s.Name) + "." + strings.ToLower(s.Type)
}

// IsReadOnly reports a mode digit that forbids writing.
func (s FileSpec) IsReadOnly() bool {
	return AccessFromDigit(s.Number) == ReadOnly
}

func validComponent(s, label string) error {
	if s == Wildcard {
		return nil
	}
	if s == "" || len(s) > 8 {
		return fmt.Errorf("%s must be 1-8 characters, got %q: %w", label, s, ErrInvalidFileSpec)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '$' || c == '#' || c == '@' {
			continue
		}
		return fmt.Errorf("%s contains invalid character %q: %w", label, c, ErrInvalidFileSpec)
	}
	return nil
}

func parseMode(fm string) (byte, uint8, error) {
	if fm == "" {
		return 'A', 1, nil
	}
	if len(fm) > 2 {
		return 0, 0, fmt.Errorf("filemode too long: %q: %w", fm, ErrInvalidFileSpec)
	}
	letter := fm[0]
	if letter != '*' && (letter < 'A' || letter > 'Z') {
		return 0, 0, fmt.Errorf("filemode letter must be A-Z, got %q: %w", letter, ErrInvalidFileSpec)
	}
	if len(fm) == 1 {
		return letter, 1, nil
	}
	d := fm[1]
	if d < '0' || d > '6' {
		return 0, 0, fmt.Errorf("filemode digit must be 0-6, got %q: %w", d, ErrInvalidFileSpec)
	}
	return letter, d - '0', nil
}
