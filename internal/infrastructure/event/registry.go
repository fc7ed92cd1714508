// Package event provides the in-process domain event bus.
package event

import (
	"slices"
	"sync"

	"github.com/farmerp/backend/internal/domain/shared"
)

// HandlerRegistry maps event types to subscribed handlers. Handlers are
// returned in subscription order and a handler is never listed twice for the
// same type.
type HandlerRegistry struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	catchAll []shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{byType: make(map[string][]shared.EventHandler)}
}

// Register subscribes handler to eventTypes. With no types the handler
// receives every event.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.catchAll = appendUnique(r.catchAll, handler)
		return
	}
	for _, eventType := range eventTypes {
		r.byType[eventType] = appendUnique(r.byType[eventType], handler)
	}
}

// Unregister drops handler from every subscription
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catchAll = without(r.catchAll, handler)
	for eventType, handlers := range r.byType {
		remaining := without(handlers, handler)
		if len(remaining) == 0 {
			delete(r.byType, eventType)
			continue
		}
		r.byType[eventType] = remaining
	}
}

// HandlersFor returns the handlers for eventType followed by the catch-all
// handlers. A handler subscribed both ways appears once.
func (r *HandlerRegistry) HandlersFor(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := slices.Clone(r.byType[eventType])
	for _, h := range r.catchAll {
		out = appendUnique(out, h)
	}
	return out
}

// Len reports how many distinct handlers are registered
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var seen []shared.EventHandler
	for _, h := range r.catchAll {
		seen = appendUnique(seen, h)
	}
	for _, handlers := range r.byType {
		for _, h := range handlers {
			seen = appendUnique(seen, h)
		}
	}
	return len(seen)
}

func appendUnique(handlers []shared.EventHandler, h shared.EventHandler) []shared.EventHandler {
	if slices.Contains(handlers, h) {
		return handlers
	}
	return append(handlers, h)
}

func without(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	return slices.DeleteFunc(slices.Clone(handlers), func(h shared.EventHandler) bool { return h == target })
}
