package xerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ReturnCode
	}{
		{"nil", nil, RCOK},
		{"not found", ErrTargetNotFound, RCNotFound},
		{"wrapped not found", fmt.Errorf("locate: %w", ErrTargetNotFound), RCNotFound},
		{"unknown", ErrUnknownCommand, RCBadSyntax},
		{"ambiguous", &AmbiguousError{Input: "S", Candidates: []string{"SAVE", "SET"}}, RCBadSyntax},
		{"syntax", Syntax("bad %s", "operand"), RCBadSyntax},
		{"file", NewOperationError("read", "A B A1", fs.ErrNotExist), RCFileIO},
		{"range", ErrOutOfRange, RCError},
		{"empty ring", ErrNoActiveFile, RCError},
		{"recursion", ErrMacroRecursionLimit, RCError},
		{"conflict", ErrConflictingPrefix, RCError},
		{"other", errors.New("boom"), RCError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAmbiguousError(t *testing.T) {
	err := &AmbiguousError{Input: "S", Candidates: []string{"SAVE", "SET"}}
	if !errors.Is(err, ErrAmbiguousAbbreviation) {
		t.Error("AmbiguousError should match ErrAmbiguousAbbreviation")
	}
	want := `ambiguous abbreviation: "S" matches SAVE, SET`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestUnknownError(t *testing.T) {
	err := &UnknownError{Verb: "LOCAT", Suggestions: []string{"LOCATE"}}
	if !errors.Is(err, ErrUnknownCommand) {
		t.Error("UnknownError should match ErrUnknownCommand")
	}
	if err.Error() != "unknown command: LOCAT (did you mean LOCATE?)" {
		t.Errorf("Error() = %q", err.Error())
	}

	bare := &UnknownError{Verb: "FOO"}
	if bare.Error() != "unknown command: FOO" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestOperationError(t *testing.T) {
	err := NewOperationError("write", "PROFILE XEDIT A1", fs.ErrPermission)
	if err.Error() != "write PROFILE XEDIT A1: permission denied" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrFileIO) {
		t.Error("OperationError should match ErrFileIO")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("OperationError should match the wrapped error")
	}

	var nilErr *OperationError
	if nilErr.Error() != "" || nilErr.Unwrap() != nil {
		t.Error("nil OperationError should be empty")
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	all := []error{
		ErrOutOfRange, ErrEmptyBlock, ErrTargetNotFound, ErrUnknownCommand,
		ErrAmbiguousAbbreviation, ErrBadSyntax, ErrConflictingPrefix,
		ErrNothingToUndo, ErrNothingToRedo, ErrNoActiveFile,
		ErrMacroRecursionLimit, ErrFileIO,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("errors %d and %d should be distinct", i, j)
			}
		}
	}
}
