package handler

import (
	"errors"
	"fmt"

	"github.com/dshills/xedit/internal/xerr"
)

// ResultStatus indicates the outcome of a command.
type ResultStatus uint8

const (
	// StatusOK indicates successful execution.
	StatusOK ResultStatus = iota
	// StatusNoOp indicates the command had no effect.
	StatusNoOp
	// StatusError indicates an error occurred.
	StatusError
	// StatusCancelled indicates a hook cancelled the command.
	StatusCancelled
)

// String returns a string representation of the status.
func (s ResultStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoOp:
		return "no-op"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Data keys set by handlers.
const (
	DataCount   = "count"   // int: occurrences or lines counted
	DataValues  = "values"  // []string: QUERY values
	DataInput   = "input"   // bool: INPUT without text, the caller enters input mode
	DataRefresh = "refresh" // bool: the display should be redrawn
	DataRecall  = "recall"  // string: the command recalled by ?
)

// Result is the outcome of a command.
type Result struct {
	// Status indicates the result status.
	Status ResultStatus

	// Code is the return code a macro sees.
	Code xerr.ReturnCode

	// Error contains any error that occurred.
	Error error

	// Message is the status line text.
	Message string

	// Current is the current line after the command, or -1 when no file
	// is open.
	Current int

	// Opened is set when the command added a file to the ring.
	Opened bool

	// Data holds handler-specific return data.
	Data map[string]any
}

// IsOK returns true if the command succeeded.
func (r Result) IsOK() bool {
	return r.Code == xerr.RCOK && r.Status != StatusError && r.Status != StatusCancelled
}

// IsError returns true if the result carries an error.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// Success creates a successful result.
func Success() Result {
	return Result{Status: StatusOK}
}

// SuccessWithMessage creates a successful result with a message.
func SuccessWithMessage(msg string) Result {
	return Result{Status: StatusOK, Message: msg}
}

// Successf creates a successful result with a formatted message.
func Successf(format string, args ...any) Result {
	return SuccessWithMessage(fmt.Sprintf(format, args...))
}

// NoOp creates a result for a command that changed nothing.
func NoOp() Result {
	return Result{Status: StatusNoOp}
}

// NoOpWithMessage creates a no-op result with a message.
func NoOpWithMessage(msg string) Result {
	return Result{Status: StatusNoOp, Message: msg}
}

// Error creates an error result. The return code is derived from the
// kind of err.
func Error(err error) Result {
	if err == nil {
		return Success()
	}
	return Result{
		Status:  StatusError,
		Code:    xerr.Code(err),
		Error:   err,
		Message: err.Error(),
	}
}

// Errorf creates an error result from a formatted message. The error
// classifies as a plain command error unless args wrap a kind with %w.
func Errorf(format string, args ...any) Result {
	return Error(fmt.Errorf(format, args...))
}

// Cancelled creates a result for a command stopped by a hook.
func Cancelled(msg string) Result {
	return Result{
		Status:  StatusCancelled,
		Code:    xerr.RCError,
		Error:   errors.New(msg),
		Message: msg,
	}
}

// WithCode returns a copy of the result with the return code set.
func (r Result) WithCode(rc xerr.ReturnCode) Result {
	r.Code = rc
	return r
}

// WithMessage returns a copy of the result with the message set.
func (r Result) WithMessage(msg string) Result {
	r.Message = msg
	return r
}

// WithData returns a copy of the result with a data entry added.
func (r Result) WithData(key string, value any) Result {
	data := make(map[string]any, len(r.Data)+1)
	for k, v := range r.Data {
		data[k] = v
	}
	data[key] = value
	r.Data = data
	return r
}

// GetData returns a data entry.
func (r Result) GetData(key string) (any, bool) {
	if r.Data == nil {
		return nil, false
	}
	v, ok := r.Data[key]
	return v, ok
}

// Flag returns a boolean data entry, false when absent.
func (r Result) Flag(key string) bool {
	v, _ := r.GetData(key)
	b, _ := v.(bool)
	return b
}
