package agent

import (
	"sync"

	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// Registry tracks registered agents. It owns all agent bookkeeping; agents
// are created and removed only through registry calls. Iteration order is
// registration order, which keeps strategy tie-breaking deterministic.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*Agent
	order  []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		agents: make(map[string]*Agent),
		order:  make([]string, 0),
	}
}

// Register adds an agent to the registry. Registering an existing id
// replaces the previous agent in place, keeping its original position.
func (r *Registry) Register(a *Agent) error {
	if a == nil || a.ID == "" {
		return shared.NewConfigurationError("agent id is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[a.ID]; !exists {
		r.order = append(r.order, a.ID)
	}
	r.agents[a.ID] = a
	r.recomputeCentralityLocked()
	return nil
}

// Remove deletes an agent by id. It fails with NotFoundError when the id
// is unknown.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[id]; !exists {
		return shared.NewNotFoundError("agent not found", map[string]interface{}{"agentId": id})
	}

	delete(r.agents, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.recomputeCentralityLocked()
	return nil
}

// Find returns an agent by id, or NotFoundError.
func (r *Registry) Find(id string) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.agents[id]
	if !exists {
		return nil, shared.NewNotFoundError("agent not found", map[string]interface{}{"agentId": id})
	}
	return a, nil
}

// FindEligible returns agents whose capability set is a superset of the
// requirement, in registration order. An empty requirement matches all.
func (r *Registry) FindEligible(required []string) []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	eligible := make([]*Agent, 0, len(r.order))
	for _, id := range r.order {
		a := r.agents[id]
		if a.HasCapabilities(required) {
			eligible = append(eligible, a)
		}
	}
	return eligible
}

// List returns all agents in registration order.
func (r *Registry) List() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]*Agent, 0, len(r.order))
	for _, id := range r.order {
		agents = append(agents, r.agents[id])
	}
	return agents
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// AverageWorkload returns the mean workload across all agents, 0 when empty.
func (r *Registry) AverageWorkload() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.agents) == 0 {
		return 0
	}

	var sum float64
	for _, a := range r.agents {
		sum += a.Workload()
	}
	return sum / float64(len(r.agents))
}

// recomputeCentralityLocked derives network centrality from shared
// capabilities: agents reachable through more capability overlaps with the
// rest of the swarm score higher. Single-agent swarms score 0.
func (r *Registry) recomputeCentralityLocked() {
	n := len(r.order)
	if n < 2 {
		for _, a := range r.agents {
			a.SetNetworkCentrality(0)
		}
		return
	}

	for _, id := range r.order {
		a := r.agents[id]
		connected := 0
		for _, otherID := range r.order {
			if otherID == id {
				continue
			}
			if a.CapabilityMatches(r.agents[otherID].Capabilities) > 0 {
				connected++
			}
		}
		a.SetNetworkCentrality(float64(connected) / float64(n-1))
	}
}
