package loader

import (
	"errors"
	"fmt"
	"path"

	"github.com/pelletier/go-toml/v2"
)

// IncludeKey lists further TOML files to read. Values in the including
// file win over values in the files it includes.
const IncludeKey = "include"

// ErrIncludeDepth is returned when includes nest too deeply.
var ErrIncludeDepth = errors.New("include depth exceeded")

var (
	_ Loader = (*TOMLLoader)(nil)
	_ Loader = (*EnvLoader)(nil)
)

// TOMLLoader reads one TOML file through a FileSystem.
type TOMLLoader struct {
	fs   FileSystem
	path string
}

// NewTOMLLoader returns a loader for the file at path.
func NewTOMLLoader(fs FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{fs: fs, path: path}
}

// Load reads the loader's file. A missing file yields nil, nil.
func (l *TOMLLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads the file at file. A missing file yields nil, nil.
func (l *TOMLLoader) LoadFrom(file string) (map[string]any, error) {
	data, err := l.fs.ReadFile(file)
	switch {
	case notExist(err):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		perr := &ParseError{Path: file, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	return values, nil
}

// LoadWithIncludes reads file and, depth first, every file its include
// key names. Relative include paths are taken from the including file's
// directory. Nesting deeper than maxDepth fails with ErrIncludeDepth.
func (l *TOMLLoader) LoadWithIncludes(file string, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%s: %w", file, ErrIncludeDepth)
	}
	values, err := l.LoadFrom(file)
	if err != nil || values == nil {
		return nil, err
	}

	includes, err := includeList(file, values)
	if err != nil {
		return nil, err
	}
	delete(values, IncludeKey)

	for _, inc := range includes {
		if !path.IsAbs(inc) {
			inc = path.Join(path.Dir(file), inc)
		}
		base, err := l.LoadWithIncludes(inc, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("include %s: %w", inc, err)
		}
		values = DeepMerge(base, values)
	}
	return values, nil
}

// includeList returns the include key of values as a list of paths.
func includeList(file string, values map[string]any) ([]string, error) {
	switch v := values[IncludeKey].(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: %s entries must be strings, got %T", file, IncludeKey, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: %s must be a string or a list of strings, got %T", file, IncludeKey, v)
	}
}

// ParseError reports malformed TOML. Line and Column are 1-based and zero
// when the decoder gave no position.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeepMerge copies src into dst and returns dst. Nested tables merge key
// by key; any other src value replaces the dst value.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, sv := range src {
		sm, srcTable := sv.(map[string]any)
		dm, dstTable := dst[key].(map[string]any)
		if srcTable && dstTable {
			dst[key] = DeepMerge(dm, sm)
			continue
		}
		dst[key] = sv
	}
	return dst
}
