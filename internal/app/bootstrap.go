package app

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dshills/xedit/internal/cms"
	"github.com/dshills/xedit/internal/config"
	"github.com/dshills/xedit/internal/dispatcher"
	"github.com/dshills/xedit/internal/macro/lua"
	"github.com/dshills/xedit/internal/vfs"
)

// watchBuffer bounds undelivered file change events.
const watchBuffer = 64

// bootstrapper handles component initialization with cleanup on failure.
type bootstrapper struct {
	s         *Session
	opts      Options
	initOrder []string
}

func newBootstrapper(s *Session) *bootstrapper {
	return &bootstrapper{
		s:         s,
		opts:      s.opts,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it closes already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"logger", b.initLogger},
		{"file system", b.initFileSystem},
		{"macros", b.initMacros},
		{"dispatcher", b.initDispatcher},
		{"watcher", b.initWatcher},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	b.s.logger.Debug("session ready: %s", strings.Join(b.initOrder, ", "))
	return nil
}

func (b *bootstrapper) cleanup() {
	_ = b.s.Close()
}

func (b *bootstrapper) initConfig() error {
	if b.opts.FS == nil {
		b.s.fs = vfs.NewOSFS()
	} else {
		b.s.fs = b.opts.FS
	}

	overrides := make(map[string]any, len(b.opts.Overrides)+1)
	for k, v := range b.opts.Overrides {
		overrides[k] = v
	}
	if b.opts.LogLevel != "" {
		overrides["log.level"] = b.opts.LogLevel
	}

	path := b.opts.ConfigPath
	if path == "" {
		path = config.DefaultFile
	}
	opts := []config.Option{
		config.WithFileSystem(b.s.fs),
		config.WithPath(path),
		config.WithOverrides(overrides),
	}
	if b.opts.Environ != nil {
		opts = append(opts, config.WithEnv(b.opts.Environ))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}
	b.s.cfg = cfg
	return nil
}

func (b *bootstrapper) initLogger() error {
	out := b.opts.LogOutput
	if out == nil && b.s.cfg.Log.File != "" {
		f, err := os.OpenFile(b.s.cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		b.s.closers = append(b.s.closers, f)
		out = f
	}

	// Without a log file the terminal belongs to the editor.
	if out == nil {
		out = io.Discard
	}

	cfg := DefaultLoggerConfig()
	cfg.Level = ParseLogLevel(b.s.cfg.Log.Level)
	cfg.Output = out
	b.s.logger = NewLogger(cfg)
	return nil
}

func (b *bootstrapper) initFileSystem() error {
	b.s.files = cms.NewFileSystem(b.s.fs)

	letters := make([]string, 0, len(b.s.cfg.Disks))
	for letter := range b.s.cfg.Disks {
		letters = append(letters, letter)
	}
	sort.Strings(letters)
	for _, letter := range letters {
		d := b.s.cfg.Disks[letter]
		access, err := cms.ParseAccess(d.Access)
		if err != nil {
			return err
		}
		l := strings.ToUpper(letter)[0]
		if err := b.s.files.Access(l, d.Path, access); err != nil {
			return fmt.Errorf("disk %c: %w", l, err)
		}
		b.s.logger.Debug("disk %c is %s (%s)", l, d.Path, access)
	}
	return nil
}

func (b *bootstrapper) initMacros() error {
	timeout, err := b.s.cfg.MacroTimeout()
	if err != nil {
		return err
	}
	out := b.opts.Output
	if out == nil {
		out = io.Discard
	}
	opts := []lua.HostOption{lua.WithPrintOutput(out)}
	if timeout > 0 {
		opts = append(opts, lua.WithTimeout(timeout))
	}
	b.s.macros = lua.NewHost(b.s.fs, b.s.cfg.Macro.Path, opts...)
	return nil
}

func (b *bootstrapper) initDispatcher() error {
	st, err := b.s.cfg.EditorSettings()
	if err != nil {
		return err
	}

	cfg := dispatcher.DefaultConfig().
		WithMetrics().
		WithSettings(st).
		WithMaxMacroDepth(b.s.cfg.Editor.MacroDepth).
		WithPageSize(b.s.cfg.Editor.PageSize).
		WithProfile(b.s.cfg.Macro.Profile)
	cfg.MaxUndoEntries = b.s.cfg.Editor.UndoDepth

	d := dispatcher.New(cfg)
	d.RegisterDefaults()
	d.SetFileSystem(b.s.files)
	d.SetMacroHost(b.s.macros)

	log := b.s.logger.WithComponent("dispatcher")
	d.SetLogger(log)
	hook := dispatcher.NewLoggingHook(log)
	d.RegisterPreHook(hook)
	d.RegisterPostHook(hook)

	for n, text := range b.s.cfg.PFKeys() {
		d.SetKey(n, text)
	}
	b.s.dispatcher = d
	return nil
}

// initWatcher starts the change watcher. Only host files can be watched.
func (b *bootstrapper) initWatcher() error {
	if !b.s.cfg.Editor.Watch {
		return nil
	}
	if _, ok := b.s.fs.(*vfs.OSFS); !ok {
		return nil
	}
	w, err := vfs.NewWatcher(watchBuffer)
	if err != nil {
		b.s.logger.Warn("file watcher unavailable: %v", err)
		return nil
	}
	b.s.watcher = w
	b.s.closers = append(b.s.closers, w)
	return nil
}
