// Package app wires the editor together into a session and exposes the
// display and input interface a renderer drives.
//
// A Session owns the dispatcher with its file ring, the CMS file system
// built from the configured disks, the Lua macro host and an optional
// watcher that notices files changed on disk. The renderer reads the
// session through View and commits user input through Apply; it keeps no
// buffer state of its own.
package app

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/dshills/xedit/internal/cms"
	"github.com/dshills/xedit/internal/config"
	"github.com/dshills/xedit/internal/dispatcher"
	"github.com/dshills/xedit/internal/dispatcher/handler"
	"github.com/dshills/xedit/internal/macro/lua"
	"github.com/dshills/xedit/internal/ring"
	"github.com/dshills/xedit/internal/vfs"
)

// Session is one editing session. It is not safe for concurrent use.
type Session struct {
	opts Options
	cfg  config.Config

	logger     *Logger
	fs         vfs.VFS
	files      *cms.FileSystem
	macros     *lua.Host
	dispatcher *dispatcher.Dispatcher
	watcher    *vfs.Watcher

	// Host path of each watched file and the entry showing it
	watched map[string]uuid.UUID

	// Line text when each entry was last unmodified, for per-line flags
	baseline map[uuid.UUID]*baseline

	inputMode bool
	message   string
	closers   []io.Closer
	closed    bool
}

// Options configures a session.
type Options struct {
	// ConfigPath is the configuration file. Empty means config.DefaultFile.
	ConfigPath string

	// Files are opened at startup, each as the operands of XEDIT.
	Files []string

	// LogLevel overrides the configured log level when set.
	LogLevel string

	// LogOutput receives log lines. Nil uses the configured log file, or
	// discards them when none is configured.
	LogOutput io.Writer

	// Output receives text printed by macros.
	Output io.Writer

	// FS is the file system. Defaults to the host file system.
	FS vfs.VFS

	// Environ supplies XEDIT_* variables. Nil skips the environment.
	Environ func() []string

	// Overrides are configuration values keyed by dotted path.
	Overrides map[string]any
}

// New creates a session and opens Options.Files.
func New(opts Options) (*Session, error) {
	s := &Session{
		opts:     opts,
		watched:  make(map[string]uuid.UUID),
		baseline: make(map[uuid.UUID]*baseline),
	}
	if err := newBootstrapper(s).bootstrap(); err != nil {
		return nil, err
	}
	if err := s.OpenFiles(context.Background(), opts.Files...); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Config returns the configuration the session was built from.
func (s *Session) Config() config.Config {
	return s.cfg
}

// Logger returns the session logger.
func (s *Session) Logger() *Logger {
	return s.logger
}

// Dispatcher returns the command dispatcher.
func (s *Session) Dispatcher() *dispatcher.Dispatcher {
	return s.dispatcher
}

// Ring returns the open files.
func (s *Session) Ring() *ring.Ring {
	return s.dispatcher.Ring()
}

// Files returns the CMS file system.
func (s *Session) Files() *cms.FileSystem {
	return s.files
}

// Done reports whether the last file has been closed.
func (s *Session) Done() bool {
	return s.Ring().IsEmpty()
}

// InputMode reports whether lines typed are inserted as text.
func (s *Session) InputMode() bool {
	return s.inputMode
}

// Message returns the message of the last command.
func (s *Session) Message() string {
	return s.message
}

// Execute runs one command line.
func (s *Session) Execute(ctx context.Context, line string) handler.Result {
	if s.closed {
		return handler.Error(ErrClosed)
	}
	s.Poll()
	result := s.dispatcher.Execute(ctx, line)
	s.after(result)
	return result
}

// after updates session state from a command result.
func (s *Session) after(result handler.Result) {
	s.message = result.Message
	if result.Error != nil && result.Message == "" {
		s.message = result.Error.Error()
	}
	if result.Flag(handler.DataInput) {
		s.inputMode = true
	}
	if result.Opened {
		if e, err := s.Ring().Current(); err == nil {
			s.logger.Info("opened %s", e.Name())
		}
	}
	s.syncWatches()
	s.prune()
	s.trackBaselines()
}

// prune drops per-line state of entries no longer in the ring.
func (s *Session) prune() {
	live := make(map[uuid.UUID]bool, s.Ring().Len())
	for _, e := range s.Ring().Entries() {
		live[e.ID] = true
	}
	for id := range s.baseline {
		if !live[id] {
			delete(s.baseline, id)
		}
	}
}

// Close releases the watcher and log file.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
