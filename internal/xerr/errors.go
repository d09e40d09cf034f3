// Package xerr defines the error kinds shared by every layer of the editor
// and the mapping from those kinds to return codes.
//
// Packages wrap these sentinels with fmt.Errorf("...: %w", ...) so that a
// caller can classify any error with errors.Is, however deeply it is wrapped.
package xerr

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds.
var (
	// ErrOutOfRange indicates an address that is not a valid line for the operation.
	ErrOutOfRange = errors.New("out of range")

	// ErrEmptyBlock indicates a block whose start is after its end.
	ErrEmptyBlock = errors.New("empty block")

	// ErrTargetNotFound indicates a target expression did not resolve.
	ErrTargetNotFound = errors.New("target not found")

	// ErrUnknownCommand indicates a verb that is neither built in nor a macro.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrAmbiguousAbbreviation indicates a verb abbreviation matching several commands.
	ErrAmbiguousAbbreviation = errors.New("ambiguous abbreviation")

	// ErrBadSyntax indicates malformed operands.
	ErrBadSyntax = errors.New("bad syntax")

	// ErrConflictingPrefix indicates a pending prefix batch that cannot be applied as a unit.
	ErrConflictingPrefix = errors.New("conflicting prefix commands")

	// ErrNothingToUndo indicates the undo log is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates there is no undone transaction to replay.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrNoActiveFile indicates a buffer-scoped command with an empty ring.
	ErrNoActiveFile = errors.New("no active file")

	// ErrMacroRecursionLimit indicates nested macro commands exceeded the depth guard.
	ErrMacroRecursionLimit = errors.New("macro recursion limit exceeded")

	// ErrFileIO indicates a failure reported by the file system.
	ErrFileIO = errors.New("file I/O error")
)

// ReturnCode is the numeric status a command yields to macros.
type ReturnCode int

// Return codes.
const (
	RCOK        ReturnCode = 0
	RCError     ReturnCode = 1
	RCNotFound  ReturnCode = 2
	RCBadSyntax ReturnCode = 3
	RCFileIO    ReturnCode = 5
)

// String returns the numeric form.
func (rc ReturnCode) String() string {
	return fmt.Sprintf("%d", int(rc))
}

// Code classifies err into a return code.
func Code(err error) ReturnCode {
	switch {
	case err == nil:
		return RCOK
	case errors.Is(err, ErrTargetNotFound):
		return RCNotFound
	case errors.Is(err, ErrUnknownCommand),
		errors.Is(err, ErrAmbiguousAbbreviation),
		errors.Is(err, ErrBadSyntax):
		return RCBadSyntax
	case errors.Is(err, ErrFileIO):
		return RCFileIO
	default:
		return RCError
	}
}

// Syntax wraps ErrBadSyntax with a formatted detail.
func Syntax(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrBadSyntax)
}

// AmbiguousError reports an abbreviation and the commands it matches.
type AmbiguousError struct {
	Input      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s: %q matches %s", ErrAmbiguousAbbreviation, e.Input, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousError) Unwrap() error {
	return ErrAmbiguousAbbreviation
}

// UnknownError reports an unresolved verb with optional suggestions.
type UnknownError struct {
	Verb        string
	Suggestions []string
}

func (e *UnknownError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("%s: %s", ErrUnknownCommand, e.Verb)
	}
	return fmt.Sprintf("%s: %s (did you mean %s?)", ErrUnknownCommand, e.Verb, strings.Join(e.Suggestions, ", "))
}

func (e *UnknownError) Unwrap() error {
	return ErrUnknownCommand
}

// OperationError represents a failed file operation.
type OperationError struct {
	Op     string // Operation name (e.g., "read", "write")
	Target string // File identity as displayed
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports ErrFileIO for every operation error so that collaborator
// failures map to the file I/O return code without further wrapping.
func (e *OperationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if target == ErrFileIO {
		return true
	}
	return errors.Is(e.Err, target)
}
