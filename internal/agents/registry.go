package agents

import "sync"

// Registry stores agents by their ID for quick lookup.
type Registry struct {
	agents map[AgentID]Agent
	mu     sync.RWMutex
}

// NewRegistry constructs an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[AgentID]Agent)}
}

// Register adds or replaces an agent entry.
func (r *Registry) Register(ag Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[ag.ID()] = ag
}

// Get retrieves an agent by ID.
func (r *Registry) Get(id AgentID) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ag, ok := r.agents[id]
	return ag, ok
}

// List returns registered agent IDs.
func (r *Registry) List() []AgentID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]AgentID, 0, len(r.agents))
	for id := range r.agents {
		res = append(res, id)
	}

	return res
}
