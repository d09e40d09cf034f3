package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/xedit/internal/cms"
	"github.com/dshills/xedit/internal/config/loader"
	"github.com/dshills/xedit/internal/engine"
	"github.com/dshills/xedit/internal/engine/settings"
)

// DefaultFile is the configuration file read when no path is given.
const DefaultFile = "xedit.toml"

// MaxIncludeDepth limits nested include directives.
const MaxIncludeDepth = 8

// Config is the editor configuration.
type Config struct {
	Log      LogConfig             `toml:"log"`
	Editor   EditorConfig          `toml:"editor"`
	Macro    MacroConfig           `toml:"macro"`
	Settings map[string]any        `toml:"settings"`
	Disks    map[string]DiskConfig `toml:"disks"`
	Keys     map[string]string     `toml:"keys"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// EditorConfig holds limits of the command engine.
type EditorConfig struct {
	UndoDepth  int  `toml:"undo_depth"`
	MacroDepth int  `toml:"macro_depth"`
	PageSize   int  `toml:"page_size"`
	Watch      bool `toml:"watch"`
}

// MacroConfig configures the macro interpreter.
type MacroConfig struct {
	Path    []string `toml:"path"`
	Profile string   `toml:"profile"`
	Timeout string   `toml:"timeout"`
}

// DiskConfig maps a filemode letter to a directory.
type DiskConfig struct {
	Path   string `toml:"path"`
	Access string `toml:"access"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "warn"},
		Editor: EditorConfig{
			UndoDepth:  engine.DefaultMaxUndoEntries,
			MacroDepth: 32,
			PageSize:   20,
			Watch:      true,
		},
		Macro: MacroConfig{
			Path:    []string{"."},
			Profile: "PROFILE",
			Timeout: "5s",
		},
		Settings: map[string]any{},
		Disks: map[string]DiskConfig{
			"A": {Path: ".", Access: "RW"},
		},
		Keys: map[string]string{
			"PF1": "HELP",
			"PF3": "QUIT",
			"PF7": "BACKWARD",
			"PF8": "FORWARD",
		},
	}
}

// Validate checks values the decoder cannot.
func (c Config) Validate() error {
	var errs ValidationErrors

	if _, err := c.EditorSettings(); err != nil {
		errs = append(errs, ValidationError{Path: "settings", Message: err.Error()})
	}
	if c.Editor.UndoDepth < 0 {
		errs = append(errs, ValidationError{Path: "editor.undo_depth", Value: c.Editor.UndoDepth, Message: "must not be negative"})
	}
	if c.Editor.MacroDepth < 1 {
		errs = append(errs, ValidationError{Path: "editor.macro_depth", Value: c.Editor.MacroDepth, Message: "must be at least 1"})
	}
	if c.Editor.PageSize < 1 {
		errs = append(errs, ValidationError{Path: "editor.page_size", Value: c.Editor.PageSize, Message: "must be at least 1"})
	}
	if _, err := c.MacroTimeout(); err != nil {
		errs = append(errs, ValidationError{Path: "macro.timeout", Value: c.Macro.Timeout, Message: err.Error()})
	}
	if !validLevel(c.Log.Level) {
		errs = append(errs, ValidationError{Path: "log.level", Value: c.Log.Level, Message: "must be debug, info, warn or error"})
	}
	for _, letter := range sortedKeys(c.Disks) {
		d := c.Disks[letter]
		path := "disks." + letter
		if len(letter) != 1 || !isLetter(letter[0]) {
			errs = append(errs, ValidationError{Path: path, Message: "disk name must be a single letter"})
		}
		if d.Path == "" {
			errs = append(errs, ValidationError{Path: path + ".path", Message: "required"})
		}
		if _, err := cms.ParseAccess(d.Access); err != nil {
			errs = append(errs, ValidationError{Path: path + ".access", Value: d.Access, Message: err.Error()})
		}
	}
	for _, name := range sortedKeys(c.Keys) {
		if _, ok := PFKey(name); !ok {
			errs = append(errs, ValidationError{Path: "keys." + name, Message: "not a PF key"})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// EditorSettings applies the settings table to the default settings.
// LRECL and TRUNC go first since other columns are checked against them.
func (c Config) EditorSettings() (settings.Settings, error) {
	s := settings.Default()
	if len(c.Settings) == 0 {
		return s, nil
	}

	byName := make(map[string]any, len(c.Settings))
	for name, v := range c.Settings {
		subject, err := settings.Subject(name)
		if err != nil {
			return s, err
		}
		byName[subject] = v
	}

	order := []string{"LRECL", "TRUNC"}
	for _, name := range settings.Subjects() {
		if name != "LRECL" && name != "TRUNC" {
			order = append(order, name)
		}
	}
	for _, name := range order {
		v, ok := byName[name]
		if !ok {
			continue
		}
		next, err := s.Set(name, operands(v))
		if err != nil {
			return s, fmt.Errorf("%s: %w", name, err)
		}
		s = next
	}
	return s, nil
}

// MacroTimeout parses the macro timeout. Empty means no limit.
func (c Config) MacroTimeout() (time.Duration, error) {
	if c.Macro.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Macro.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %s", d)
	}
	return d, nil
}

// PFKeys returns the key table by key number.
func (c Config) PFKeys() map[int]string {
	keys := make(map[int]string, len(c.Keys))
	for name, text := range c.Keys {
		if n, ok := PFKey(name); ok {
			keys[n] = text
		}
	}
	return keys
}

// PFKey reads a key name such as PF3.
func PFKey(name string) (int, bool) {
	name = strings.ToUpper(name)
	if !strings.HasPrefix(name, "PF") {
		return 0, false
	}
	n, err := strconv.Atoi(name[2:])
	if err != nil || n < 1 || n > 24 {
		return 0, false
	}
	return n, true
}

// operands converts a TOML value into SET operands.
func operands(v any) []string {
	switch x := v.(type) {
	case bool:
		if x {
			return []string{"ON"}
		}
		return []string{"OFF"}
	case int64:
		return []string{strconv.FormatInt(x, 10)}
	case int:
		return []string{strconv.Itoa(x)}
	case string:
		return strings.Fields(x)
	case []any:
		var out []string
		for _, item := range x {
			out = append(out, operands(item)...)
		}
		return out
	default:
		return strings.Fields(fmt.Sprint(x))
	}
}

// Options for Load.
type loadOptions struct {
	fs        loader.FileSystem
	path      string
	env       bool
	envPrefix string
	environ   func() []string
	overrides map[string]any
}

// Option configures Load.
type Option func(*loadOptions)

// WithFileSystem sets where the configuration file is read from.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(o *loadOptions) {
		o.fs = fs
	}
}

// WithPath sets the configuration file path.
func WithPath(path string) Option {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithEnv enables environment overrides. A nil environ reads the process
// environment.
func WithEnv(environ func() []string) Option {
	return func(o *loadOptions) {
		o.env = true
		o.environ = environ
	}
}

// WithOverrides applies values given on the command line, keyed by
// dotted path such as "log.level".
func WithOverrides(values map[string]any) Option {
	return func(o *loadOptions) {
		o.overrides = values
	}
}

// Load builds the configuration from defaults, the TOML file, the
// environment and overrides, in increasing priority.
func Load(opts ...Option) (Config, error) {
	o := loadOptions{path: DefaultFile, envPrefix: loader.DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	merged, err := toMap(Default())
	if err != nil {
		return Config{}, err
	}

	if o.fs != nil && o.path != "" {
		file, err := loader.NewTOMLLoader(o.fs, o.path).LoadWithIncludes(o.path, MaxIncludeDepth)
		if err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", o.path, err)
		}
		merged = loader.DeepMerge(merged, file)
	}

	if o.env {
		env := loader.NewEnvLoader(o.envPrefix)
		if o.environ != nil {
			env.SetEnviron(o.environ)
		}
		values, err := env.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, values)
	}

	if len(o.overrides) > 0 {
		flags := make(map[string]any)
		for path, v := range o.overrides {
			loader.SetPath(flags, path, v)
		}
		merged = loader.DeepMerge(merged, flags)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func toMap(c Config) (map[string]any, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding defaults: %w", err)
	}
	return m, nil
}

func fromMap(m map[string]any) (Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return Config{}, fmt.Errorf("encoding config: %w", err)
	}
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func validLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
