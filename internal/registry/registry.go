// Package registry tracks the last-known state of each guardian agent.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

// Registry holds one AgentState per agent name. Registrations overwrite
// wholesale; last write wins, no merge.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]types.AgentState
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{agents: make(map[string]types.AgentState)}
}

// Register upserts the state for an agent and stamps LastUpdate.
func (r *Registry) Register(state types.AgentState) {
	state.LastUpdate = time.Now().UTC()
	r.mu.Lock()
	r.agents[state.AgentName] = state
	r.mu.Unlock()
}

// Get returns the state for an agent name, if registered.
func (r *Registry) Get(name string) (types.AgentState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.agents[name]
	return state, ok
}

// All returns a copy of every registered state, ordered by agent name.
func (r *Registry) All() []types.AgentState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.AgentState, 0, len(r.agents))
	for _, state := range r.agents {
		out = append(out, state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentName < out[j].AgentName })
	return out
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
