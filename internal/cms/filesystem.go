package cms

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/dshills/xedit/internal/vfs"
	"github.com/dshills/xedit/internal/xerr"
)

// FileSystem is a set of minidisks on top of a VFS. Identities handed to
// and returned from its line-oriented methods are FileSpec values.
type FileSystem struct {
	vfs   vfs.VFS
	disks map[byte]Disk
}

// NewFileSystem creates a file system with no disks accessed.
func NewFileSystem(v vfs.VFS) *FileSystem {
	return &FileSystem{vfs: v, disks: make(map[byte]Disk)}
}

// Access mounts a directory as the disk with the given letter, creating
// the directory if needed.
func (f *FileSystem) Access(letter byte, path string, access Access) error {
	letter = upper(letter)
	if letter < 'A' || letter > 'Z' {
		return fmt.Errorf("disk letter must be A-Z, got %q: %w", letter, ErrInvalidFileSpec)
	}
	if err := f.vfs.MkdirAll(path, 0o755); err != nil {
		return xerr.NewOperationError("access", string(letter), err)
	}
	f.disks[letter] = Disk{Letter: letter, Path: path, Access: access}
	return nil
}

// Release unmounts a disk.
func (f *FileSystem) Release(letter byte) {
	delete(f.disks, upper(letter))
}

// Disk returns a mounted disk.
func (f *FileSystem) Disk(letter byte) (Disk, bool) {
	d, ok := f.disks[upper(letter)]
	return d, ok
}

// Disks returns the mounted disks in letter order.
func (f *FileSystem) Disks() []Disk {
	out := make([]Disk, 0, len(f.disks))
	for _, d := range f.disks {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Letter < out[j].Letter })
	return out
}

// Identify builds a file identity from up to three words. Missing
// components are taken from base, then from the defaults (filemode A1).
// A * disk letter is resolved to the first disk holding the file, or to
// A when none does.
func (f *FileSystem) Identify(words []string, base fmt.Stringer) (fmt.Stringer, error) {
	prev, _ := base.(FileSpec)
	var fn, ft, fm string
	switch len(words) {
	case 0:
		if prev.Name == "" {
			return nil, fmt.Errorf("no file specified: %w", ErrInvalidFileSpec)
		}
		return prev, nil
	case 1:
		fn, ft, fm = words[0], prev.Type, prev.Mode()
	case 2:
		fn, ft = words[0], words[1]
		if prev.Letter != 0 {
			fm = prev.Mode()
		}
	case 3:
		fn, ft, fm = words[0], words[1], words[2]
	default:
		return nil, fmt.Errorf("expected 'fn ft [fm]': %w", ErrInvalidFileSpec)
	}
	if ft == "" {
		return nil, fmt.Errorf("filetype required: %w", ErrInvalidFileSpec)
	}
	spec, err := NewFileSpec(fn, ft, fm)
	if err != nil {
		return nil, err
	}
	if spec.HasWildcards() {
		return nil, fmt.Errorf("%s: wildcards not allowed: %w", spec, ErrInvalidFileSpec)
	}
	if spec.Letter == '*' {
		spec.Letter = 'A'
		if found, err := f.locate(spec); err == nil {
			spec.Letter = found.Letter
		}
	}
	return spec, nil
}

// Read returns the lines of a file. Line terminators are removed; a final
// newline does not produce an empty last line.
func (f *FileSystem) Read(id fmt.Stringer) ([]string, error) {
	spec, err := asSpec(id)
	if err != nil {
		return nil, err
	}
	disk, err := f.locate(spec)
	if err != nil {
		return nil, xerr.NewOperationError("read", spec.String(), err)
	}
	data, err := f.vfs.ReadFile(f.vfs.Join(disk.Path, spec.DiskName()))
	if err != nil {
		return nil, xerr.NewOperationError("read", spec.String(), err)
	}
	return SplitLines(string(data)), nil
}

// Write replaces the content of a file with lines.
func (f *FileSystem) Write(id fmt.Stringer, lines []string) error {
	spec, err := asSpec(id)
	if err != nil {
		return err
	}
	if spec.HasWildcards() || spec.Letter == '*' {
		return fmt.Errorf("%s: cannot write a wildcard: %w", spec, ErrInvalidFileSpec)
	}
	disk, ok := f.disks[spec.Letter]
	if !ok {
		return xerr.NewOperationError("write", spec.String(), ErrDiskNotAccessed)
	}
	if !disk.Writable() || spec.IsReadOnly() {
		return xerr.NewOperationError("write", spec.String(), ErrReadOnly)
	}
	if err := f.vfs.WriteFile(f.vfs.Join(disk.Path, spec.DiskName()), []byte(JoinLines(lines)), 0o644); err != nil {
		return xerr.NewOperationError("write", spec.String(), err)
	}
	return nil
}

// Exists reports whether the file is present on its disk.
func (f *FileSystem) Exists(id fmt.Stringer) bool {
	spec, err := asSpec(id)
	if err != nil {
		return false
	}
	_, err = f.locate(spec)
	return err == nil
}

// ReadOnly reports whether the file cannot be written back.
func (f *FileSystem) ReadOnly(id fmt.Stringer) bool {
	spec, err := asSpec(id)
	if err != nil {
		return true
	}
	disk, ok := f.disks[spec.Letter]
	return !ok || !disk.Writable() || spec.IsReadOnly()
}

// Path returns the host path of a file.
func (f *FileSystem) Path(id fmt.Stringer) (string, error) {
	spec, err := asSpec(id)
	if err != nil {
		return "", err
	}
	disk, ok := f.disks[spec.Letter]
	if !ok {
		return "", ErrDiskNotAccessed
	}
	return f.vfs.Join(disk.Path, spec.DiskName()), nil
}

// locate finds the disk holding spec, searching A-Z for a * letter.
func (f *FileSystem) locate(spec FileSpec) (Disk, error) {
	var candidates []Disk
	if spec.Letter == '*' {
		candidates = f.Disks()
	} else if d, ok := f.disks[spec.Letter]; ok {
		candidates = []Disk{d}
	}
	if len(candidates) == 0 {
		return Disk{}, ErrDiskNotAccessed
	}
	for _, d := range candidates {
		info, err := f.vfs.Stat(f.vfs.Join(d.Path, spec.DiskName()))
		if err == nil && !info.IsDir() {
			return d, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Disk{}, err
		}
	}
	return Disk{}, ErrFileNotFound
}

func asSpec(id fmt.Stringer) (FileSpec, error) {
	spec, ok := id.(FileSpec)
	if !ok {
		return FileSpec{}, fmt.Errorf("%v: not a CMS file identity: %w", id, ErrInvalidFileSpec)
	}
	return spec, nil
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// SplitLines splits file content into lines, accepting LF and CRLF.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// JoinLines renders lines as file content with a final newline.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
