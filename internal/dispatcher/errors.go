package dispatcher

import (
	"errors"
	"fmt"

	"github.com/dshills/xedit/internal/xerr"
)

// Dispatcher errors.
var (
	// ErrNoHandler indicates a built-in verb with no registered handler.
	ErrNoHandler = errors.New("dispatcher: no handler for command")

	// ErrPanic indicates the handler panicked.
	ErrPanic = errors.New("dispatcher: handler panic")

	// ErrNoPrevious indicates = or ? before any command was entered.
	ErrNoPrevious = fmt.Errorf("no previous command: %w", xerr.ErrBadSyntax)
)
