// Package debate holds the shared debate-level types: the registry of
// active debates and the run states of the orchestration state machine.
package debate

import (
	"context"
	"sync"
)

// Registry tracks the debates currently in flight. It is the only state
// shared across debates; its lock is held for registry mutation only,
// never across an agent call. Clearing the registry cancels every
// registered debate's context, which the orchestrator observes at the next
// round boundary.
type Registry struct {
	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]context.CancelFunc)}
}

// Register marks a debate active. The cancel function fires when the
// debate is cleared.
func (r *Registry) Register(id string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[id] = cancel
}

// Deregister removes a debate without cancelling it.
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
}

// IsActive reports whether a debate is still registered. A debate whose id
// is gone must treat itself as cancelled.
func (r *Registry) IsActive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[id]
	return ok
}

// Count returns the number of active debates.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Clear cancels and removes every active debate, returning how many were
// cleared.
func (r *Registry) Clear() int {
	r.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(r.active))
	for _, cancel := range r.active {
		cancels = append(cancels, cancel)
	}
	count := len(r.active)
	r.active = make(map[string]context.CancelFunc)
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return count
}
