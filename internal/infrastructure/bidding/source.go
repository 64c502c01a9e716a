// Package bidding defines the bid source port for auction-based
// allocation. Bid generation is an external collaborator concern; the
// registry-derived source here is a deterministic reference, never a
// stand-in for a real agent bidding protocol.
package bidding

import (
	"context"

	"github.com/aliasghar-rao/synapse-go/internal/domain/agent"
	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// Source supplies one slice of bids per allocation round.
type Source interface {
	Bids(ctx context.Context, taskID string, culturalContext string, eligible []*agent.Agent) ([]shared.AgentBid, error)
}

// StaticSource returns a fixed bid set, keyed by task id. Useful for tests
// and replaying recorded rounds.
type StaticSource struct {
	ByTask map[string][]shared.AgentBid
}

// Bids implements Source.
func (s *StaticSource) Bids(ctx context.Context, taskID string, culturalContext string, eligible []*agent.Agent) ([]shared.AgentBid, error) {
	return s.ByTask[taskID], nil
}

// RegistrySource derives deterministic bids from current agent state:
// confidence from trust, expertise from recent accuracy, estimated time
// and resource cost from workload.
type RegistrySource struct{}

// Bids implements Source.
func (s *RegistrySource) Bids(ctx context.Context, taskID string, culturalContext string, eligible []*agent.Agent) ([]shared.AgentBid, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	bids := make([]shared.AgentBid, 0, len(eligible))
	for _, a := range eligible {
		expertise := a.AverageAccuracy(10) / 10
		if a.HistoryLen() == 0 {
			expertise = 0.5
		}
		bids = append(bids, shared.AgentBid{
			AgentID:           a.ID,
			TaskID:            taskID,
			Confidence:        a.TrustScore() / 100,
			Expertise:         expertise,
			CulturalRelevance: 0.5,
			EstimatedTime:     (a.Workload() + 1) * 1000,
			ResourceCost:      a.Workload() + 1,
		})
	}
	return bids, nil
}
