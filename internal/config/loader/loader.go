// Package loader reads configuration sources into generic maps.
//
// A source is a TOML file or the process environment. Sources are merged
// with DeepMerge, later sources overriding earlier ones, before the result
// is decoded into the typed configuration.
package loader

import (
	"errors"
	"io/fs"
)

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns a map.
	// Returns nil, nil if the source doesn't exist (not an error).
	Load() (map[string]any, error)
}

// FileSystem is the part of the editor's file system the loaders need.
// vfs.VFS satisfies it.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

func notExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
