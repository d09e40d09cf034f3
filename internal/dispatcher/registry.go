package dispatcher

import (
	"sort"

	"github.com/dshills/xedit/internal/command"
	"github.com/dshills/xedit/internal/dispatcher/handler"
)

// Registry maps built-in verbs to their handlers.
type Registry struct {
	handlers map[command.Verb]handler.Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[command.Verb]handler.Handler)}
}

// Register sets the handler of a verb, replacing any previous one.
func (r *Registry) Register(v command.Verb, h handler.Handler) {
	r.handlers[v] = h
}

// RegisterNamespace registers every verb of ns.
func (r *Registry) RegisterNamespace(ns handler.Namespace) {
	for v, h := range ns.Verbs() {
		r.Register(v, h)
	}
}

// Unregister removes the handler of a verb.
func (r *Registry) Unregister(v command.Verb) {
	delete(r.handlers, v)
}

// Get returns the handler of a verb, or nil.
func (r *Registry) Get(v command.Verb) handler.Handler {
	return r.handlers[v]
}

// Has returns true if a handler is registered for the verb.
func (r *Registry) Has(v command.Verb) bool {
	_, ok := r.handlers[v]
	return ok
}

// Verbs returns the registered verbs in name order.
func (r *Registry) Verbs() []command.Verb {
	out := make([]command.Verb, 0, len(r.handlers))
	for v := range r.handlers {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Count returns the number of registered verbs.
func (r *Registry) Count() int {
	return len(r.handlers)
}
