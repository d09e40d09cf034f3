package loader

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of the editor's environment variables.
const DefaultEnvPrefix = "XEDIT_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "XEDIT_")
	mapping map[string]string // Env var -> config path
	lists   map[string]bool   // Config paths holding path lists
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "XEDIT_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(),
		lists:   map[string]bool{"macro.path": true},
		environ: os.Environ,
	}
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	l := NewEnvLoader(prefix)
	l.mapping = mapping
	return l
}

func defaultEnvMapping() map[string]string {
	return map[string]string{
		"XEDIT_LOG_LEVEL":  "log.level",
		"XEDIT_LOG_FILE":   "log.file",
		"XEDIT_MACRO_PATH": "macro.path",
		"XEDIT_PROFILE":    "macro.profile",
		"XEDIT_UNDO_DEPTH": "editor.undo_depth",
	}
}

// Load reads environment variables and returns a configuration map.
// Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		if l.lists[path] {
			SetPath(config, path, splitList(value))
			continue
		}
		SetPath(config, path, parseValue(value))
	}

	return config, nil
}

// SetEnviron replaces the environment source, os.Environ by default.
func (l *EnvLoader) SetEnviron(environ func() []string) {
	l.environ = environ
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// envToPath converts XEDIT_EDITOR_UNDO_DEPTH to editor.undo_depth: the
// first word is the section and the rest the key.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	return section + "." + key
}

func splitList(s string) []any {
	var out []any
	for _, p := range filepath.SplitList(s) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseValue converts booleans and integers; anything else stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func SetPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}

	current[parts[len(parts)-1]] = value
}
