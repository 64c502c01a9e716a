package consensus

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

func bid(agentID string, confidence, expertise float64) shared.AgentBid {
	return shared.AgentBid{
		AgentID:           agentID,
		TaskID:            "t1",
		Confidence:        confidence,
		Expertise:         expertise,
		CulturalRelevance: 0.5,
		EstimatedTime:     1000,
		ResourceCost:      2,
	}
}

// ============================================================================
// Auction
// ============================================================================

func TestAuctionSelectsHighestScore(t *testing.T) {
	e := NewEngine()

	result := e.AuctionBasedAllocation("t1", []shared.AgentBid{
		bid("a1", 0.4, 0.4),
		bid("a2", 0.9, 0.9),
		bid("a3", 0.6, 0.6),
	}, "")

	if result.SelectedAgent != "a2" {
		t.Fatalf("selected %q, expected a2", result.SelectedAgent)
	}
	if result.ConsensusScore < 0 || result.ConsensusScore > 1 {
		t.Fatalf("consensus score %v out of range", result.ConsensusScore)
	}
}

func TestAuctionEmptyBidsSentinel(t *testing.T) {
	e := NewEngine()

	result := e.AuctionBasedAllocation("t1", nil, "mena")
	if result.SelectedAgent != DefaultSelectedAgent {
		t.Fatalf("selected %q, expected sentinel %q", result.SelectedAgent, DefaultSelectedAgent)
	}
	if result.ConsensusScore != 0 {
		t.Fatalf("consensus score = %v, expected 0", result.ConsensusScore)
	}
	if len(result.MinorityReports) != 0 {
		t.Fatalf("minority reports = %v, expected none", result.MinorityReports)
	}
}

func TestAuctionScoreRecomputedAfterLearning(t *testing.T) {
	e := NewEngine()
	bids := []shared.AgentBid{bid("a1", 0.5, 0.5), bid("a2", 0.5, 0.5)}

	first := e.AuctionBasedAllocation("t1", bids, "")
	if first.SelectedAgent != "a1" {
		t.Fatalf("tie selected %q, expected first bid a1", first.SelectedAgent)
	}

	// Learned expertise changes the composite score on the next round.
	e.UpdateAgentExpertise("a2", 1.0)
	e.UpdateAgentExpertise("a2", 1.0)

	second := e.AuctionBasedAllocation("t1", bids, "")
	if second.SelectedAgent != "a2" {
		t.Fatalf("after learning selected %q, expected a2", second.SelectedAgent)
	}
}

func TestAuctionMinorityReports(t *testing.T) {
	e := NewEngine()

	// Five strong runner-up bids; reports cap at 3, strongest first.
	bids := []shared.AgentBid{
		bid("winner", 1.0, 1.0),
		bid("r1", 0.95, 0.95),
		bid("r2", 0.85, 0.85),
		bid("r3", 0.9, 0.9),
		bid("r4", 0.8, 0.8),
		bid("weak", 0.05, 0.05),
	}

	result := e.AuctionBasedAllocation("t1", bids, "")
	if result.SelectedAgent != "winner" {
		t.Fatalf("selected %q, expected winner", result.SelectedAgent)
	}
	if len(result.MinorityReports) != 3 {
		t.Fatalf("minority reports = %d, expected 3", len(result.MinorityReports))
	}

	expected := []string{
		"Agent r1: Alternative approach with 0.95 confidence",
		"Agent r3: Alternative approach with 0.90 confidence",
		"Agent r2: Alternative approach with 0.85 confidence",
	}
	for i, want := range expected {
		if result.MinorityReports[i] != want {
			t.Fatalf("report %d = %q, expected %q", i, result.MinorityReports[i], want)
		}
	}
}

// ============================================================================
// Expertise-Weighted Voting
// ============================================================================

func TestVotingWinnerAndConfidence(t *testing.T) {
	e := NewEngine()
	e.UpdateAgentExpertise("expert", 1.0) // 0.6 after one EMA step

	decision := e.ExpertiseWeightedVoting("t1", []shared.Proposal{
		{AgentID: "novice", Proposal: "A", Confidence: 0.5},
		{AgentID: "expert", Proposal: "B", Confidence: 0.5},
	}, "")

	if decision.Decision != "B" {
		t.Fatalf("decision = %v, expected B", decision.Decision)
	}

	// novice weight 0.5*1*0.5 = 0.25, expert weight 0.6*1*0.5 = 0.30
	expected := 0.30 / 0.55
	if math.Abs(decision.Confidence-expected) > 1e-9 {
		t.Fatalf("confidence = %v, expected %v", decision.Confidence, expected)
	}
	if len(decision.ParticipatingAgents) != 2 {
		t.Fatalf("participants = %v, expected both agents", decision.ParticipatingAgents)
	}
}

func TestVotingTieFirstSeen(t *testing.T) {
	e := NewEngine()

	decision := e.ExpertiseWeightedVoting("t1", []shared.Proposal{
		{AgentID: "a1", Proposal: "A", Confidence: 0.45},
		{AgentID: "a2", Proposal: "B", Confidence: 0.45},
	}, "")

	if decision.Decision != "A" {
		t.Fatalf("tie decision = %v, expected first-seen A", decision.Decision)
	}
	if math.Abs(decision.Confidence-0.5) > 1e-9 {
		t.Fatalf("tie confidence = %v, expected 0.5", decision.Confidence)
	}
}

func TestVotingWeightTieFirstSeen(t *testing.T) {
	e := NewEngine()
	// Lift B's expertise to 0.9; A stays at the 0.5 default.
	e.UpdateAgentExpertise("B", 2.5)

	decision := e.ExpertiseWeightedVoting("t1", []shared.Proposal{
		{AgentID: "A", Proposal: "p1", Confidence: 0.9},
		{AgentID: "B", Proposal: "p2", Confidence: 0.5},
	}, "ctx")

	// weight(A) = 0.5*1.0*0.9 = 0.45, weight(B) = 0.9*1.0*0.5 = 0.45.
	if decision.Decision != "p1" {
		t.Fatalf("tie decision = %v, expected first-seen p1", decision.Decision)
	}
	if math.Abs(decision.Confidence-0.5) > 1e-9 {
		t.Fatalf("confidence = %v, expected 0.5", decision.Confidence)
	}
}

func TestVotingEmptyProposals(t *testing.T) {
	e := NewEngine()

	decision := e.ExpertiseWeightedVoting("t1", nil, "mena")
	if decision.Decision != nil {
		t.Fatalf("decision = %v, expected nil", decision.Decision)
	}
	if decision.Confidence != 0 {
		t.Fatalf("confidence = %v, expected 0", decision.Confidence)
	}
	if len(decision.ParticipatingAgents) != 0 {
		t.Fatalf("participants = %v, expected none", decision.ParticipatingAgents)
	}

	// An empty vote is not recorded in the history.
	if got := e.Metrics().TotalDecisions; got != 0 {
		t.Fatalf("total decisions = %d, expected 0", got)
	}
}

func TestVotingAppendsHistory(t *testing.T) {
	e := NewEngine()

	e.ExpertiseWeightedVoting("t1", []shared.Proposal{{AgentID: "a1", Proposal: "A", Confidence: 1}}, "mena")
	e.ExpertiseWeightedVoting("t2", []shared.Proposal{{AgentID: "a1", Proposal: "B", Confidence: 1}}, "sea")

	history := e.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, expected 2", len(history))
	}
	if history[0].TaskID != "t1" || history[1].TaskID != "t2" {
		t.Fatalf("history order wrong: %q then %q", history[0].TaskID, history[1].TaskID)
	}
}

// ============================================================================
// Peer Review
// ============================================================================

type scriptedReviewer struct {
	reviews map[string]shared.Review
	errs    map[string]error
}

func (s *scriptedReviewer) Review(ctx context.Context, reviewerID string, content interface{}, culturalContext string) (shared.Review, error) {
	if err, exists := s.errs[reviewerID]; exists {
		return shared.Review{}, err
	}
	return s.reviews[reviewerID], nil
}

func TestPeerReviewBelowThreshold(t *testing.T) {
	e := NewEngine() // threshold 0.7

	reviewer := &scriptedReviewer{reviews: map[string]shared.Review{
		"r1": {ReviewerID: "r1", Approved: true, Score: 0.9},
		"r2": {ReviewerID: "r2", Approved: true, Score: 0.8},
		"r3": {ReviewerID: "r3", Approved: false, Score: 0.3, Comment: "needs work"},
	}}

	outcome := e.PeerReviewConsensus(context.Background(), "content", []string{"r1", "r2", "r3"}, "", reviewer)
	if outcome.Approved {
		t.Fatal("2/3 approvals below threshold 0.7 should not approve")
	}
	if len(outcome.Feedback) != 1 || outcome.Feedback[0] != "needs work" {
		t.Fatalf("feedback = %v, expected [needs work]", outcome.Feedback)
	}

	expected := (0.9 + 0.8 + 0.3) / 3
	if math.Abs(outcome.CulturalScore-expected) > 1e-9 {
		t.Fatalf("cultural score = %v, expected %v", outcome.CulturalScore, expected)
	}
}

func TestPeerReviewMeetsThreshold(t *testing.T) {
	e := NewEngine(WithThreshold(0.5))

	reviewer := &scriptedReviewer{reviews: map[string]shared.Review{
		"r1": {ReviewerID: "r1", Approved: true, Score: 0.9},
		"r2": {ReviewerID: "r2", Approved: false, Score: 0.2},
	}}

	outcome := e.PeerReviewConsensus(context.Background(), "content", []string{"r1", "r2"}, "", reviewer)
	if !outcome.Approved {
		t.Fatal("1/2 approvals at threshold 0.5 should approve")
	}
}

func TestPeerReviewErroredReviewerExcluded(t *testing.T) {
	e := NewEngine(WithThreshold(0.5))

	reviewer := &scriptedReviewer{
		reviews: map[string]shared.Review{
			"r1": {ReviewerID: "r1", Approved: true, Score: 1.0},
		},
		errs: map[string]error{
			"r2": errors.New("reviewer offline"),
		},
	}

	outcome := e.PeerReviewConsensus(context.Background(), "content", []string{"r1", "r2"}, "", reviewer)

	// Approval denominator stays len(reviewers): 1/2 >= 0.5.
	if !outcome.Approved {
		t.Fatal("errored reviewer should not block approval at 0.5 threshold")
	}
	// Score mean excludes the errored reviewer.
	if outcome.CulturalScore != 1.0 {
		t.Fatalf("cultural score = %v, expected 1.0", outcome.CulturalScore)
	}
}

func TestPeerReviewNoReviewers(t *testing.T) {
	e := NewEngine()

	outcome := e.PeerReviewConsensus(context.Background(), "content", nil, "", &scriptedReviewer{})
	if outcome.Approved {
		t.Fatal("no reviewers should not approve")
	}
}

// ============================================================================
// Adaptive Consensus
// ============================================================================

func TestAdaptiveConsensus(t *testing.T) {
	e := NewEngine()
	e.UpdateAgentExpertise("expert", 1.0)
	agents := []string{"a1", "expert", "a2", "a3"}

	tests := []struct {
		name         string
		complexity   shared.TaskComplexity
		method       shared.ConsensusMethod
		threshold    float64
		participants int
	}{
		{name: "simple", complexity: shared.ComplexitySimple, method: shared.MethodSingleExpert, threshold: 0.6, participants: 1},
		{name: "moderate", complexity: shared.ComplexityModerate, method: shared.MethodExpertiseWeighted, threshold: 0.7, participants: 3},
		{name: "complex", complexity: shared.ComplexityComplex, method: shared.MethodFullSwarmConsensus, threshold: 0.8, participants: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := e.AdaptiveConsensus(tt.complexity, agents, "")
			if plan.Method != tt.method {
				t.Fatalf("method = %q, expected %q", plan.Method, tt.method)
			}
			if plan.Threshold != tt.threshold {
				t.Fatalf("threshold = %v, expected %v", plan.Threshold, tt.threshold)
			}
			if len(plan.Participants) != tt.participants {
				t.Fatalf("participants = %d, expected %d", len(plan.Participants), tt.participants)
			}
		})
	}

	// The ranked expert leads the simple plan.
	simple := e.AdaptiveConsensus(shared.ComplexitySimple, agents, "")
	if simple.Participants[0] != "expert" {
		t.Fatalf("top expert = %q, expected expert", simple.Participants[0])
	}
}

func TestAdaptiveConsensusUnknownComplexityFullSwarm(t *testing.T) {
	e := NewEngine()

	plan := e.AdaptiveConsensus("weird", []string{"a1", "a2"}, "")
	if plan.Method != shared.MethodFullSwarmConsensus {
		t.Fatalf("method = %q, expected full swarm", plan.Method)
	}
}

// ============================================================================
// Learning Updates
// ============================================================================

func TestUpdateAgentExpertiseEMA(t *testing.T) {
	e := NewEngine()

	// First update from the 0.5 default: 0.8*0.5 + 0.2*1.0 = 0.6
	if got := e.UpdateAgentExpertise("a1", 1.0); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("expertise after first update = %v, expected 0.6", got)
	}

	// Repeated zero performance clamps at the floor.
	for i := 0; i < 50; i++ {
		e.UpdateAgentExpertise("a1", 0)
	}
	if got := e.AgentExpertise("a1"); got != 0.1 {
		t.Fatalf("expertise floor = %v, expected 0.1", got)
	}

	// Repeated perfect performance clamps at the ceiling.
	for i := 0; i < 200; i++ {
		e.UpdateAgentExpertise("a1", 1.0)
	}
	if got := e.AgentExpertise("a1"); got > 1.0 {
		t.Fatalf("expertise ceiling exceeded: %v", got)
	}
}

func TestUpdateCulturalWeightsEMA(t *testing.T) {
	e := NewEngine()

	// First update from the 1.0 default: 0.9*1.0 + 0.1*2.0 = 1.1
	if got := e.UpdateCulturalWeights("mena", 2.0); math.Abs(got-1.1) > 1e-9 {
		t.Fatalf("weight after first update = %v, expected 1.1", got)
	}

	for i := 0; i < 200; i++ {
		e.UpdateCulturalWeights("mena", 0)
	}
	if got := e.CulturalWeight("mena"); got != 0.5 {
		t.Fatalf("weight floor = %v, expected 0.5", got)
	}

	for i := 0; i < 500; i++ {
		e.UpdateCulturalWeights("mena", 5.0)
	}
	if got := e.CulturalWeight("mena"); got > 2.0 {
		t.Fatalf("weight ceiling exceeded: %v", got)
	}
}

func TestDefaultsBeforeFirstUpdate(t *testing.T) {
	e := NewEngine()

	if got := e.AgentExpertise("unseen"); got != 0.5 {
		t.Fatalf("default expertise = %v, expected 0.5", got)
	}
	if got := e.CulturalWeight("unseen"); got != 1.0 {
		t.Fatalf("default cultural weight = %v, expected 1.0", got)
	}
}

// ============================================================================
// Metrics
// ============================================================================

func TestMetricsEmptyHistory(t *testing.T) {
	e := NewEngine()

	m := e.Metrics()
	if m.TotalDecisions != 0 || m.AverageConfidence != 0 || m.CulturalCoverage != 0 {
		t.Fatalf("empty metrics = %+v, expected zeros", m)
	}
}

func TestMetrics(t *testing.T) {
	e := NewEngine()
	e.RecordDecision(shared.SwarmDecision{TaskID: "t1", Confidence: 0.8, CulturalContext: "mena"})
	e.RecordDecision(shared.SwarmDecision{TaskID: "t2", Confidence: 0.4, CulturalContext: "mena"})
	e.RecordDecision(shared.SwarmDecision{TaskID: "t3", Confidence: 0.6, CulturalContext: "sea"})
	e.RecordDecision(shared.SwarmDecision{TaskID: "t4", Confidence: 1.0})

	m := e.Metrics()
	if m.TotalDecisions != 4 {
		t.Fatalf("total decisions = %d, expected 4", m.TotalDecisions)
	}
	if math.Abs(m.AverageConfidence-0.7) > 1e-9 {
		t.Fatalf("average confidence = %v, expected 0.7", m.AverageConfidence)
	}
	if m.CulturalCoverage != 2 {
		t.Fatalf("cultural coverage = %d, expected 2", m.CulturalCoverage)
	}
}

func TestThresholdClamped(t *testing.T) {
	if got := NewEngine(WithThreshold(1.5)).Threshold(); got != 1 {
		t.Fatalf("threshold = %v, expected clamp to 1", got)
	}
	if got := NewEngine(WithThreshold(-0.2)).Threshold(); got != 0 {
		t.Fatalf("threshold = %v, expected clamp to 0", got)
	}
}
