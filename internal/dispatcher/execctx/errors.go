package execctx

import (
	"fmt"

	"github.com/dshills/xedit/internal/xerr"
)

// Context errors.
var (
	// ErrNoFileSystem indicates a file command without a configured file system.
	ErrNoFileSystem = fmt.Errorf("execution context: no file system: %w", xerr.ErrFileIO)
)
