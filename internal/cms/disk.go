package cms

import (
	"fmt"
	"strings"
)

// Access is the access mode of a minidisk.
type Access uint8

const (
	ReadWrite Access = iota
	ReadOnly
)

// String returns "RW" or "RO".
func (a Access) String() string {
	if a == ReadOnly {
		return "RO"
	}
	return "RW"
}

// ParseAccess reads RW or RO. Blank means RW.
func ParseAccess(s string) (Access, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "RW":
		return ReadWrite, nil
	case "RO", "R":
		return ReadOnly, nil
	default:
		return ReadWrite, fmt.Errorf("invalid access mode %q: %w", s, ErrInvalidFileSpec)
	}
}

// AccessFromDigit maps a filemode digit to an access mode: 0 and 1 are
// read-write, 2 to 6 read-only.
func AccessFromDigit(d uint8) Access {
	if d <= 1 {
		return ReadWrite
	}
	return ReadOnly
}

// Disk maps a filemode letter to a host directory.
type Disk struct {
	Letter byte
	Path   string
	Access Access
}

// Writable reports whether files on the disk may be written.
func (d Disk) Writable() bool {
	return d.Access == ReadWrite
}
