package agent

import (
	"fmt"
	"sync"
)

// Registry maps agent names to agents. It is built once at startup from
// configuration; registration after that point only happens in tests.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
	names  []string // insertion order, for stable router prompts
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds an agent. Duplicate names are rejected.
func (r *Registry) Register(a Agent) error {
	if a == nil {
		return fmt.Errorf("agent cannot be nil")
	}
	if a.Name() == "" {
		return fmt.Errorf("agent name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[a.Name()]; exists {
		return fmt.Errorf("agent %q is already registered", a.Name())
	}
	r.agents[a.Name()] = a
	r.names = append(r.names, a.Name())
	return nil
}

// Lookup finds an agent by name.
func (r *Registry) Lookup(name string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	return a, ok
}

// Names returns all registered agent names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Descriptions returns the name to description mapping in registration
// order, as (name, description) pairs.
func (r *Registry) Descriptions() []NameDescription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]NameDescription, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, NameDescription{Name: name, Description: r.agents[name].Description()})
	}
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// NameDescription is one registry entry for router prompt construction.
type NameDescription struct {
	Name        string
	Description string
}
