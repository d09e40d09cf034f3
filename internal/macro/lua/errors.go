package lua

import (
	"errors"
	"fmt"

	"github.com/dshills/xedit/internal/xerr"
)

// Errors for macro execution.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a macro runs past its deadline.
	ErrExecutionTimeout = errors.New("macro execution timeout")

	// ErrCompile is returned for a macro that does not parse.
	ErrCompile = fmt.Errorf("macro does not compile: %w", xerr.ErrBadSyntax)
)
