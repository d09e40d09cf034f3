// Package handler provides the handler interface and result type for
// command dispatch.
package handler

import (
	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher/execctx"
)

// Handler executes one built-in verb.
type Handler interface {
	// Handle executes the invocation and returns a result.
	Handle(inv command.Invocation, ctx *execctx.ExecutionContext) Result
}

// HandlerFunc is a function adapter for the Handler interface.
type HandlerFunc func(inv command.Invocation, ctx *execctx.ExecutionContext) Result

// Handle implements Handler.
func (f HandlerFunc) Handle(inv command.Invocation, ctx *execctx.ExecutionContext) Result {
	if f == nil {
		return Errorf("handler function is nil")
	}
	return f(inv, ctx)
}

// Namespace groups the handlers of related verbs.
type Namespace interface {
	// Verbs returns the handlers of the namespace by verb.
	Verbs() map[command.Verb]Handler
}
