// Package consensus provides the swarm consensus engine: auction-based
// allocation, expertise-weighted voting, peer review, adaptive strategy
// selection, and the learned expertise/cultural weighting tables.
package consensus

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// DefaultThreshold is the default consensus threshold.
const DefaultThreshold = 0.7

const (
	defaultExpertise      = 0.5
	minExpertise          = 0.1
	maxExpertise          = 1.0
	defaultCulturalWeight = 1.0
	minCulturalWeight     = 0.5
	maxCulturalWeight     = 2.0
)

// DefaultSelectedAgent is the sentinel selected agent for an empty-bid
// auction round.
const DefaultSelectedAgent = "default"

// Reviewer evaluates content for peer review. Implementations are external
// collaborators; review failures are excluded, never escalated.
type Reviewer interface {
	Review(ctx context.Context, reviewerID string, content interface{}, culturalContext string) (shared.Review, error)
}

// Engine owns the learned weighting tables and the append-only decision
// history. All fields are instance state; there are no package-level
// singletons.
type Engine struct {
	mu              sync.RWMutex
	threshold       float64
	culturalWeights map[string]float64
	agentExpertise  map[string]float64
	history         []shared.SwarmDecision
	logger          *zap.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithThreshold sets the consensus threshold (clamped to 0..1).
func WithThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold < 0 {
			threshold = 0
		}
		if threshold > 1 {
			threshold = 1
		}
		e.threshold = threshold
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a new consensus Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		threshold:       DefaultThreshold,
		culturalWeights: make(map[string]float64),
		agentExpertise:  make(map[string]float64),
		history:         make([]shared.SwarmDecision, 0),
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the configured consensus threshold.
func (e *Engine) Threshold() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.threshold
}

// ============================================================================
// Auction-Based Allocation
// ============================================================================

// AuctionBasedAllocation scores the bids and selects the winner. An empty
// bid set returns the documented no-op sentinel result: selectedAgent
// "default", consensusScore 0, no reports. This is an explicit contract,
// not a silent failure; callers needing a real assignment must treat the
// sentinel as "no eligible agent". Callers are expected to feed the
// outcome back via UpdateAgentExpertise.
func (e *Engine) AuctionBasedAllocation(taskID string, bids []shared.AgentBid, culturalContext string) shared.ConsensusResult {
	if len(bids) == 0 {
		return shared.ConsensusResult{
			SelectedAgent:       DefaultSelectedAgent,
			ConsensusScore:      0,
			MinorityReports:     []string{},
			CulturalAdaptations: map[string]interface{}{},
		}
	}

	e.mu.RLock()
	weight := e.culturalWeightLocked(culturalContext)
	scores := make([]float64, len(bids))
	for i, bid := range bids {
		scores[i] = e.bidScoreLocked(bid, weight)
	}
	e.mu.RUnlock()

	// Winner and runner-up, ties to the first bid in input order.
	winner := 0
	for i := 1; i < len(bids); i++ {
		if scores[i] > scores[winner] {
			winner = i
		}
	}

	var second float64
	for i, score := range scores {
		if i != winner && score > second {
			second = score
		}
	}

	consensusScore := clamp((scores[winner]-second)*weight, 0, 1)

	// Up to 3 runner-up bids with score > 0.6 become minority reports,
	// strongest first, for auditability.
	type ranked struct {
		bid   shared.AgentBid
		score float64
	}
	runnersUp := make([]ranked, 0, len(bids)-1)
	for i, bid := range bids {
		if i != winner && scores[i] > 0.6 {
			runnersUp = append(runnersUp, ranked{bid: bid, score: scores[i]})
		}
	}
	sort.SliceStable(runnersUp, func(i, j int) bool {
		return runnersUp[i].score > runnersUp[j].score
	})
	if len(runnersUp) > 3 {
		runnersUp = runnersUp[:3]
	}

	reports := make([]string, 0, len(runnersUp))
	for _, r := range runnersUp {
		reports = append(reports, fmt.Sprintf("Agent %s: Alternative approach with %.2f confidence", r.bid.AgentID, r.bid.Confidence))
	}

	e.logger.Debug("auction allocation",
		zap.String("taskId", taskID),
		zap.String("selectedAgent", bids[winner].AgentID),
		zap.Float64("consensusScore", consensusScore),
		zap.Int("bids", len(bids)))

	return shared.ConsensusResult{
		SelectedAgent:   bids[winner].AgentID,
		ConsensusScore:  consensusScore,
		MinorityReports: reports,
		CulturalAdaptations: map[string]interface{}{
			"culturalContext": culturalContext,
			"culturalWeight":  weight,
		},
	}
}

// bidScoreLocked computes the composite auction score for a bid.
func (e *Engine) bidScoreLocked(bid shared.AgentBid, culturalWeight float64) float64 {
	var timeTerm, costTerm float64
	if bid.EstimatedTime > 0 {
		timeTerm = 1 / bid.EstimatedTime
	}
	if bid.ResourceCost > 0 {
		costTerm = 1 / bid.ResourceCost
	}

	return 0.30*bid.Confidence +
		0.25*bid.Expertise +
		0.20*bid.CulturalRelevance*culturalWeight +
		0.15*timeTerm +
		0.10*costTerm +
		0.10*e.agentExpertiseLocked(bid.AgentID)
}

// BidScore exposes the composite score computation for a single bid.
func (e *Engine) BidScore(bid shared.AgentBid, culturalContext string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bidScoreLocked(bid, e.culturalWeightLocked(culturalContext))
}

// ============================================================================
// Expertise-Weighted Voting
// ============================================================================

// ExpertiseWeightedVoting weighs each proposal by learned expertise,
// cultural weight and confidence, and records the winning decision. An
// empty proposal set yields a nil decision with zero confidence and no
// participants, and is not recorded.
func (e *Engine) ExpertiseWeightedVoting(taskID string, proposals []shared.Proposal, culturalContext string) shared.SwarmDecision {
	if len(proposals) == 0 {
		return shared.SwarmDecision{
			TaskID:              taskID,
			Decision:            nil,
			Confidence:          0,
			ParticipatingAgents: []string{},
			CulturalContext:     culturalContext,
			Timestamp:           shared.Now(),
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	weight := e.culturalWeightLocked(culturalContext)

	var totalWeight float64
	winner := 0
	var winnerWeight float64
	participants := make([]string, 0, len(proposals))

	for i, p := range proposals {
		w := e.agentExpertiseLocked(p.AgentID) * weight * p.Confidence
		totalWeight += w
		participants = append(participants, p.AgentID)
		if i == 0 || w > winnerWeight {
			winner = i
			winnerWeight = w
		}
	}

	confidence := 0.0
	if totalWeight > 0 {
		confidence = winnerWeight / totalWeight
	}

	decision := shared.SwarmDecision{
		TaskID:              taskID,
		Decision:            proposals[winner].Proposal,
		Confidence:          confidence,
		ParticipatingAgents: participants,
		CulturalContext:     culturalContext,
		Timestamp:           shared.Now(),
	}
	e.history = append(e.history, decision)

	return decision
}

// RecordDecision appends an externally produced decision to the history.
func (e *Engine) RecordDecision(decision shared.SwarmDecision) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if decision.Timestamp == 0 {
		decision.Timestamp = shared.Now()
	}
	e.history = append(e.history, decision)
}

// ============================================================================
// Peer Review
// ============================================================================

// PeerReviewConsensus has each reviewer independently evaluate the content.
// Approval requires approvals/len(reviewers) >= threshold. A reviewer error
// counts as neither approval nor score and is logged, never escalated.
func (e *Engine) PeerReviewConsensus(ctx context.Context, content interface{}, reviewers []string, culturalContext string, reviewer Reviewer) shared.ReviewOutcome {
	outcome := shared.ReviewOutcome{Feedback: []string{}}
	if len(reviewers) == 0 {
		return outcome
	}

	approvals := 0
	scored := 0
	var scoreSum float64

	for _, id := range reviewers {
		review, err := reviewer.Review(ctx, id, content, culturalContext)
		if err != nil {
			e.logger.Warn("peer review failed",
				zap.String("reviewerId", id),
				zap.Error(err))
			continue
		}
		if review.Approved {
			approvals++
		}
		scoreSum += review.Score
		scored++
		if review.Comment != "" {
			outcome.Feedback = append(outcome.Feedback, review.Comment)
		}
	}

	if scored > 0 {
		outcome.CulturalScore = scoreSum / float64(scored)
	}
	outcome.Approved = float64(approvals)/float64(len(reviewers)) >= e.Threshold()

	return outcome
}

// ============================================================================
// Adaptive Consensus
// ============================================================================

// AdaptiveConsensus selects a consensus method by task complexity. Experts
// are ranked by agentExpertise(id) * culturalWeight(context) descending,
// ties keeping input order.
func (e *Engine) AdaptiveConsensus(complexity shared.TaskComplexity, agents []string, culturalContext string) shared.ConsensusPlan {
	ranked := e.rankByExpertise(agents, culturalContext)

	switch complexity {
	case shared.ComplexitySimple:
		return shared.ConsensusPlan{
			Method:       shared.MethodSingleExpert,
			Threshold:    0.6,
			Participants: topN(ranked, 1),
		}
	case shared.ComplexityModerate:
		return shared.ConsensusPlan{
			Method:       shared.MethodExpertiseWeighted,
			Threshold:    0.7,
			Participants: topN(ranked, 3),
		}
	default:
		all := make([]string, len(agents))
		copy(all, agents)
		return shared.ConsensusPlan{
			Method:       shared.MethodFullSwarmConsensus,
			Threshold:    0.8,
			Participants: all,
		}
	}
}

func (e *Engine) rankByExpertise(agents []string, culturalContext string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	weight := e.culturalWeightLocked(culturalContext)
	ranked := make([]string, len(agents))
	copy(ranked, agents)
	sort.SliceStable(ranked, func(i, j int) bool {
		return e.agentExpertiseLocked(ranked[i])*weight > e.agentExpertiseLocked(ranked[j])*weight
	})
	return ranked
}

func topN(agents []string, n int) []string {
	if n > len(agents) {
		n = len(agents)
	}
	top := make([]string, n)
	copy(top, agents[:n])
	return top
}

// ============================================================================
// Learning Updates
// ============================================================================

// UpdateAgentExpertise folds a performance observation into the learned
// expertise table by exponential moving average and returns the new value,
// always within [0.1, 1.0].
func (e *Engine) UpdateAgentExpertise(agentID string, performance float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	old := e.agentExpertiseLocked(agentID)
	updated := clamp(0.8*old+0.2*performance, minExpertise, maxExpertise)
	e.agentExpertise[agentID] = updated
	return updated
}

// UpdateCulturalWeights folds an effectiveness observation into the learned
// cultural weight table by exponential moving average and returns the new
// value, always within [0.5, 2.0].
func (e *Engine) UpdateCulturalWeights(culturalContext string, effectiveness float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	old := e.culturalWeightLocked(culturalContext)
	updated := clamp(0.9*old+0.1*effectiveness, minCulturalWeight, maxCulturalWeight)
	e.culturalWeights[culturalContext] = updated
	return updated
}

// AgentExpertise returns the learned expertise for an agent, defaulting
// to 0.5 before the first update.
func (e *Engine) AgentExpertise(agentID string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.agentExpertiseLocked(agentID)
}

// CulturalWeight returns the learned weight for a context key, defaulting
// to 1.0 before the first update.
func (e *Engine) CulturalWeight(culturalContext string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.culturalWeightLocked(culturalContext)
}

func (e *Engine) agentExpertiseLocked(agentID string) float64 {
	if v, exists := e.agentExpertise[agentID]; exists {
		return v
	}
	return defaultExpertise
}

func (e *Engine) culturalWeightLocked(culturalContext string) float64 {
	if v, exists := e.culturalWeights[culturalContext]; exists {
		return v
	}
	return defaultCulturalWeight
}

// ============================================================================
// Metrics
// ============================================================================

// Metrics summarizes the decision history. AverageConfidence is 0 for an
// empty history; cultural coverage counts distinct non-empty context keys.
func (e *Engine) Metrics() shared.ConsensusMetrics {
	e.mu.RLock()
	defer e.mu.RUnlock()

	metrics := shared.ConsensusMetrics{
		TotalDecisions: len(e.history),
	}
	if len(e.history) == 0 {
		return metrics
	}

	var confidenceSum float64
	contexts := make(map[string]bool)
	for _, d := range e.history {
		confidenceSum += d.Confidence
		if d.CulturalContext != "" {
			contexts[d.CulturalContext] = true
		}
	}

	metrics.AverageConfidence = confidenceSum / float64(len(e.history))
	metrics.CulturalCoverage = len(contexts)
	return metrics
}

// History returns a copy of the append-only decision history.
func (e *Engine) History() []shared.SwarmDecision {
	e.mu.RLock()
	defer e.mu.RUnlock()

	history := make([]shared.SwarmDecision, len(e.history))
	copy(history, e.history)
	return history
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
