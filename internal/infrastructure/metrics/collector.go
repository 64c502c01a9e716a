// Package metrics provides the swarm metrics collector.
package metrics

import (
	"sync"

	"github.com/aliasghar-rao/synapse-go/internal/domain/agent"
	"github.com/aliasghar-rao/synapse-go/internal/domain/task"
	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// Collector derives aggregate counters from agent and task state. It is
// refreshed on every terminal task transition and on agent add/remove.
type Collector struct {
	mu        sync.RWMutex
	registry  *agent.Registry
	store     *task.Store
	active    map[string]bool
	behaviors []string
}

// NewCollector creates a Collector over the given registry and store.
func NewCollector(registry *agent.Registry, store *task.Store) *Collector {
	return &Collector{
		registry:  registry,
		store:     store,
		active:    make(map[string]bool),
		behaviors: make([]string, 0),
	}
}

// MarkActive records that an agent has work in flight.
func (c *Collector) MarkActive(agentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[agentID] = true
}

// MarkIdle records that an agent has no work in flight.
func (c *Collector) MarkIdle(agentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, agentID)
}

// RecordBehavior appends a detected emergent behavior. Detection itself is
// an external hook; the collector only accumulates what it is told.
func (c *Collector) RecordBehavior(description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.behaviors = append(c.behaviors, description)
}

// Snapshot computes the current swarm metrics.
func (c *Collector) Snapshot() shared.SwarmMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	submitted := c.store.Submitted()
	completed := c.store.Completed()

	efficiency := 0.0
	if submitted > 0 {
		efficiency = float64(completed) / float64(submitted)
	}

	behaviors := make([]string, len(c.behaviors))
	copy(behaviors, c.behaviors)

	return shared.SwarmMetrics{
		TotalAgents:         c.registry.Count(),
		ActiveAgents:        len(c.active),
		AverageWorkload:     c.registry.AverageWorkload(),
		TasksSubmitted:      submitted,
		TasksCompleted:      completed,
		AverageResponseTime: c.store.AverageResponseTime(),
		SwarmEfficiency:     efficiency,
		EmergentBehaviors:   behaviors,
	}
}
