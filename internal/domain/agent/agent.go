// Package agent provides the Agent domain entity and registry.
package agent

import (
	"sync"

	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// DefaultHistoryWindow bounds the performance history kept per agent.
const DefaultHistoryWindow = 50

// Agent represents a registered swarm agent. All mutation goes through
// Registry or the methods below; workload never goes negative.
type Agent struct {
	mu                sync.RWMutex
	ID                string
	Type              string
	Capabilities      []string
	workload          float64
	trustScore        float64 // 0..100
	networkCentrality float64 // 0..1
	history           []shared.PerformanceRecord
	historyWindow     int
	Executor          shared.AgentExecutor
	Metadata          map[string]interface{}
	CreatedAt         int64
	lastActive        int64
}

// New creates a new Agent from the given configuration.
func New(config shared.AgentConfig, executor shared.AgentExecutor) *Agent {
	now := shared.Now()
	capabilities := config.Capabilities
	if capabilities == nil {
		capabilities = []string{}
	}
	metadata := config.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	trust := config.TrustScore
	if trust < 0 {
		trust = 0
	}
	if trust > 100 {
		trust = 100
	}
	centrality := config.Centrality
	if centrality < 0 {
		centrality = 0
	}
	if centrality > 1 {
		centrality = 1
	}

	return &Agent{
		ID:                config.ID,
		Type:              config.Type,
		Capabilities:      capabilities,
		trustScore:        trust,
		networkCentrality: centrality,
		history:           make([]shared.PerformanceRecord, 0),
		historyWindow:     DefaultHistoryWindow,
		Executor:          executor,
		Metadata:          metadata,
		CreatedAt:         now,
		lastActive:        now,
	}
}

// HasCapabilities reports whether the agent's capability set is a superset
// of the requirement. An empty requirement matches every agent.
func (a *Agent) HasCapabilities(required []string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, req := range required {
		found := false
		for _, cap := range a.Capabilities {
			if cap == req {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CapabilityMatches counts how many required capabilities the agent has.
func (a *Agent) CapabilityMatches(required []string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	capSet := make(map[string]bool, len(a.Capabilities))
	for _, cap := range a.Capabilities {
		capSet[cap] = true
	}

	matches := 0
	for _, req := range required {
		if capSet[req] {
			matches++
		}
	}
	return matches
}

// IncrementWorkload adds one unit of in-flight work.
func (a *Agent) IncrementWorkload() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.workload++
	a.lastActive = shared.Now()
}

// DecrementWorkload removes one unit of in-flight work. Workload never
// goes negative.
func (a *Agent) DecrementWorkload() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.workload > 0 {
		a.workload--
	}
	a.lastActive = shared.Now()
}

// Workload returns the current workload.
func (a *Agent) Workload() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.workload
}

// TrustScore returns the agent's trust score (0..100).
func (a *Agent) TrustScore() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.trustScore
}

// NetworkCentrality returns the derived centrality value (0..1).
func (a *Agent) NetworkCentrality() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.networkCentrality
}

// SetNetworkCentrality updates the derived centrality value, clamped to 0..1.
func (a *Agent) SetNetworkCentrality(v float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	a.networkCentrality = v
}

// RecordPerformance appends an entry to the bounded history window,
// newest last.
func (a *Agent) RecordPerformance(record shared.PerformanceRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = append(a.history, record)
	if len(a.history) > a.historyWindow {
		a.history = a.history[len(a.history)-a.historyWindow:]
	}
	a.lastActive = shared.Now()
}

// AverageAccuracy averages accuracy over the last n history entries.
// Returns 0 when the history is empty.
func (a *Agent) AverageAccuracy(n int) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	recent := a.recentLocked(n)
	if len(recent) == 0 {
		return 0
	}

	var sum float64
	for _, r := range recent {
		sum += r.Accuracy
	}
	return sum / float64(len(recent))
}

// AverageCompletionTime averages completion time over the last n history
// entries. Returns 0 when the history is empty.
func (a *Agent) AverageCompletionTime(n int) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	recent := a.recentLocked(n)
	if len(recent) == 0 {
		return 0
	}

	var sum float64
	for _, r := range recent {
		sum += r.CompletionTime
	}
	return sum / float64(len(recent))
}

// HistoryLen returns the number of recorded performance entries.
func (a *Agent) HistoryLen() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.history)
}

func (a *Agent) recentLocked(n int) []shared.PerformanceRecord {
	if n <= 0 || n > len(a.history) {
		n = len(a.history)
	}
	return a.history[len(a.history)-n:]
}

// ToShared converts the Agent to a shared.Agent snapshot.
func (a *Agent) ToShared() shared.Agent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	capabilities := make([]string, len(a.Capabilities))
	copy(capabilities, a.Capabilities)

	return shared.Agent{
		ID:                a.ID,
		Type:              a.Type,
		Capabilities:      capabilities,
		Workload:          a.workload,
		TrustScore:        a.trustScore,
		NetworkCentrality: a.networkCentrality,
		Metadata:          a.Metadata,
		CreatedAt:         a.CreatedAt,
		LastActive:        a.lastActive,
	}
}
