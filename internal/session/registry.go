package session

import "sync"

// Registry hands out one Controller per scorekeeper session id.  A
// session that never comes back simply leaves an idle controller
// behind; controllers hold only ephemeral prompt state, so the
// registry is trimmed wholesale when a game ends rather than tracked
// per entry.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]*Controller)}
}

// For returns the controller owned by the given session, creating it
// on first use.
func (r *Registry) For(sessionID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[sessionID]
	if !ok {
		c = NewController()
		r.controllers[sessionID] = c
	}
	return c
}

// Drop discards a session's controller and its pending state.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, sessionID)
}
