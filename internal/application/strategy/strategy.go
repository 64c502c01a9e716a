// Package strategy provides pure agent-selection functions for task
// assignment. Every strategy returns exactly one agent id or fails with
// NoEligibleAgentError when the eligible set is empty; callers treat that
// as "no assignment".
package strategy

import (
	"fmt"

	"github.com/aliasghar-rao/synapse-go/internal/domain/agent"
	"github.com/aliasghar-rao/synapse-go/internal/domain/task"
	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// Name identifies an assignment strategy.
type Name string

const (
	RoundRobin      Name = "round_robin"
	LeastLoaded     Name = "least_loaded"
	CapabilityBased Name = "capability_based"
	Intelligent     Name = "intelligent"
	AuctionBased    Name = "auction_based"
)

// historySample bounds the performance entries consulted by the
// intelligent strategy.
const historySample = 10

// Valid reports whether the name is a known strategy.
func Valid(name Name) bool {
	switch name {
	case RoundRobin, LeastLoaded, CapabilityBased, Intelligent, AuctionBased:
		return true
	}
	return false
}

// Select picks one agent from the eligible set using the named strategy.
// completedCount is the swarm's monotonic completed-task counter, consumed
// by round_robin. AuctionBased selection is bid-driven and handled by the
// consensus engine, not here.
func Select(name Name, eligible []*agent.Agent, t *task.Task, completedCount int64) (string, error) {
	if len(eligible) == 0 {
		return "", shared.NewNoEligibleAgentError(map[string]interface{}{
			"taskId":   t.ID,
			"strategy": string(name),
		})
	}

	switch name {
	case RoundRobin:
		return selectRoundRobin(eligible, completedCount), nil
	case LeastLoaded:
		return selectLeastLoaded(eligible), nil
	case CapabilityBased:
		return selectCapabilityBased(eligible, t.RequiredCapabilities), nil
	case Intelligent:
		return selectIntelligent(eligible, t.RequiredCapabilities), nil
	default:
		return "", shared.NewConfigurationError(
			fmt.Sprintf("unknown assignment strategy %q", name),
			map[string]interface{}{"strategy": string(name)},
		)
	}
}

// selectRoundRobin returns eligible[completedCount mod len(eligible)],
// deterministic given the monotonic counter.
func selectRoundRobin(eligible []*agent.Agent, completedCount int64) string {
	idx := int(completedCount % int64(len(eligible)))
	if idx < 0 {
		idx += len(eligible)
	}
	return eligible[idx].ID
}

// selectLeastLoaded returns the agent with minimum workload; ties resolve
// to the first in input order.
func selectLeastLoaded(eligible []*agent.Agent) string {
	best := eligible[0]
	bestLoad := best.Workload()
	for _, a := range eligible[1:] {
		if load := a.Workload(); load < bestLoad {
			best = a
			bestLoad = load
		}
	}
	return best.ID
}

// selectCapabilityBased returns the agent with the most required
// capabilities present; ties resolve to the first in input order.
func selectCapabilityBased(eligible []*agent.Agent, required []string) string {
	best := eligible[0]
	bestMatches := best.CapabilityMatches(required)
	for _, a := range eligible[1:] {
		if matches := a.CapabilityMatches(required); matches > bestMatches {
			best = a
			bestMatches = matches
		}
	}
	return best.ID
}

// selectIntelligent scores each agent and returns the highest; ties
// resolve to the first in input order.
func selectIntelligent(eligible []*agent.Agent, required []string) string {
	best := eligible[0]
	bestScore := IntelligentScore(best, required)
	for _, a := range eligible[1:] {
		if score := IntelligentScore(a, required); score > bestScore {
			best = a
			bestScore = score
		}
	}
	return best.ID
}

// IntelligentScore computes the weighted assignment score:
//
//	0.40 * capabilityMatches/requiredCount
//	0.20 * avgAccuracy(last 10) / 10
//	0.10 * max(0, 10 - avgCompletionTime/1000)
//	0.20 * networkCentrality
//	0.10 * trustScore/100
//
// Performance terms contribute 0 when the history is empty; the capability
// term contributes 0 when no capabilities are required.
func IntelligentScore(a *agent.Agent, required []string) float64 {
	var capabilityTerm float64
	if len(required) > 0 {
		capabilityTerm = float64(a.CapabilityMatches(required)) / float64(len(required))
	}

	var accuracyTerm, speedTerm float64
	if a.HistoryLen() > 0 {
		accuracyTerm = a.AverageAccuracy(historySample) / 10
		speed := 10 - a.AverageCompletionTime(historySample)/1000
		if speed > 0 {
			speedTerm = speed
		}
	}

	return 0.40*capabilityTerm +
		0.20*accuracyTerm +
		0.10*speedTerm +
		0.20*a.NetworkCentrality() +
		0.10*a.TrustScore()/100
}
