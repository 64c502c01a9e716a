// Package shared provides shared types used across all modules in synapse-go.
package shared

import (
	"context"
	"time"
)

// ============================================================================
// Agent Types
// ============================================================================

// AgentConfig holds configuration for registering an agent.
type AgentConfig struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`
	Capabilities []string               `json:"capabilities,omitempty"`
	TrustScore   float64                `json:"trustScore,omitempty"`
	Centrality   float64                `json:"centrality,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Agent is a read-only snapshot of an agent's state.
type Agent struct {
	ID                string                 `json:"id"`
	Type              string                 `json:"type"`
	Capabilities      []string               `json:"capabilities"`
	Workload          float64                `json:"workload"`
	TrustScore        float64                `json:"trustScore"`
	NetworkCentrality float64                `json:"networkCentrality"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt         int64                  `json:"createdAt"`
	LastActive        int64                  `json:"lastActive"`
}

// PerformanceRecord is one entry in an agent's bounded performance history.
type PerformanceRecord struct {
	Accuracy       float64 `json:"accuracy"`
	CompletionTime float64 `json:"completionTime"` // milliseconds
}

// AgentInvocation is the payload handed to an agent's execution contract.
type AgentInvocation struct {
	TaskID               string      `json:"taskId"`
	TaskType             TaskType    `json:"taskType"`
	Payload              interface{} `json:"payload"`
	RequiredCapabilities []string    `json:"requiredCapabilities,omitempty"`
	Collaborators        []string    `json:"collaborators,omitempty"`
	CulturalContext      string      `json:"culturalContext,omitempty"`
}

// AgentOutput is what an agent returns from a successful invocation.
type AgentOutput struct {
	Value      interface{} `json:"value"`
	Confidence float64     `json:"confidence"`
}

// AgentExecutor is the external execution contract for agents. The core
// treats an agent as a black box that accepts a task payload and produces
// a result or fails.
type AgentExecutor interface {
	Execute(ctx context.Context, inv AgentInvocation) (AgentOutput, error)
}

// ============================================================================
// Task Types
// ============================================================================

// TaskType determines the execution mode of a task.
type TaskType string

const (
	TaskTypeIndividual    TaskType = "individual"
	TaskTypeCollaborative TaskType = "collaborative"
	TaskTypeDistributed   TaskType = "distributed"
)

// TaskStatus represents the current status of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskPriority represents the priority of a task.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// IntToPriority maps a 0-10 numeric priority onto the priority levels.
func IntToPriority(n int) TaskPriority {
	switch {
	case n >= 8:
		return PriorityHigh
	case n >= 4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// TaskConfig holds configuration for submitting a task.
type TaskConfig struct {
	ID                   string       `json:"id,omitempty"`
	Type                 TaskType     `json:"type"`
	Priority             TaskPriority `json:"priority,omitempty"`
	RequiredCapabilities []string     `json:"requiredCapabilities,omitempty"`
	Payload              interface{}  `json:"payload,omitempty"`
	Deadline             int64        `json:"deadline,omitempty"`
	Dependencies         []string     `json:"dependencies,omitempty"`
	CulturalContext      string       `json:"culturalContext,omitempty"`
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	TaskID     string            `json:"taskId"`
	Status     TaskStatus        `json:"status"`
	Result     interface{}       `json:"result,omitempty"`
	Error      string            `json:"error,omitempty"`
	Duration   int64             `json:"duration,omitempty"`
	Agents     []string          `json:"agents,omitempty"`
	Validation *ValidationRecord `json:"validation,omitempty"`
}

// ============================================================================
// Consensus Types
// ============================================================================

// AgentBid is an ephemeral bid produced once per allocation round.
type AgentBid struct {
	AgentID           string  `json:"agentId"`
	TaskID            string  `json:"taskId"`
	Confidence        float64 `json:"confidence"`        // 0..1
	Expertise         float64 `json:"expertise"`         // 0..1
	CulturalRelevance float64 `json:"culturalRelevance"` // 0..1
	EstimatedTime     float64 `json:"estimatedTime"`     // > 0, milliseconds
	ResourceCost      float64 `json:"resourceCost"`      // > 0
}

// ConsensusResult is the outcome of an auction allocation round.
type ConsensusResult struct {
	SelectedAgent       string                 `json:"selectedAgent"`
	ConsensusScore      float64                `json:"consensusScore"`
	MinorityReports     []string               `json:"minorityReports"`
	CulturalAdaptations map[string]interface{} `json:"culturalAdaptations,omitempty"`
}

// Proposal is one agent's proposal in an expertise-weighted vote.
type Proposal struct {
	AgentID    string      `json:"agentId"`
	Proposal   interface{} `json:"proposal"`
	Confidence float64     `json:"confidence"`
}

// SwarmDecision is an entry in the append-only decision history.
type SwarmDecision struct {
	TaskID              string      `json:"taskId"`
	Decision            interface{} `json:"decision"`
	Confidence          float64     `json:"confidence"`
	ParticipatingAgents []string    `json:"participatingAgents"`
	CulturalContext     string      `json:"culturalContext,omitempty"`
	Timestamp           int64       `json:"timestamp"`
}

// Review is one reviewer's verdict in a peer review round.
type Review struct {
	ReviewerID string  `json:"reviewerId"`
	Approved   bool    `json:"approved"`
	Score      float64 `json:"score"`
	Comment    string  `json:"comment,omitempty"`
}

// ReviewOutcome is the aggregate result of a peer review round.
type ReviewOutcome struct {
	Approved      bool     `json:"approved"`
	Feedback      []string `json:"feedback"`
	CulturalScore float64  `json:"culturalScore"`
}

// TaskComplexity drives adaptive consensus strategy selection.
type TaskComplexity string

const (
	ComplexitySimple   TaskComplexity = "simple"
	ComplexityModerate TaskComplexity = "moderate"
	ComplexityComplex  TaskComplexity = "complex"
)

// ConsensusMethod names an adaptive consensus strategy.
type ConsensusMethod string

const (
	MethodSingleExpert       ConsensusMethod = "single_expert"
	MethodExpertiseWeighted  ConsensusMethod = "expertise_weighted"
	MethodFullSwarmConsensus ConsensusMethod = "full_swarm_consensus"
)

// ConsensusPlan is the strategy selected by adaptive consensus.
type ConsensusPlan struct {
	Method       ConsensusMethod `json:"method"`
	Threshold    float64         `json:"threshold"`
	Participants []string        `json:"participants"`
}

// ConsensusMetrics summarizes the decision history.
type ConsensusMetrics struct {
	TotalDecisions    int     `json:"totalDecisions"`
	AverageConfidence float64 `json:"averageConfidence"`
	CulturalCoverage  int     `json:"culturalCoverage"`
}

// ============================================================================
// Execution Result Types
// ============================================================================

// CollaborativeResult is the reconciled output of a collaborative batch.
type CollaborativeResult struct {
	Decision           interface{}   `json:"decision"`
	AgreementLevel     float64       `json:"agreementLevel"`
	Confidence         float64       `json:"confidence"`
	DissentingOpinions []interface{} `json:"dissentingOpinions"`
	Participants       []string      `json:"participants"`
}

// DistributedResult is the aggregated output of a distributed batch.
type DistributedResult struct {
	Result     string   `json:"result"`
	Confidence float64  `json:"confidence"`
	Subtasks   []string `json:"subtasks"`
	Agents     []string `json:"agents"`
}

// ============================================================================
// Validation Types
// ============================================================================

// ValidationReport is returned by the cultural validation port.
type ValidationReport struct {
	Passed           bool     `json:"passed"`
	Confidence       float64  `json:"confidence"`
	CulturalAccuracy float64  `json:"culturalAccuracy"`
	Feedback         []string `json:"feedback,omitempty"`
	Improvements     []string `json:"improvements,omitempty"`
	RiskLevel        string   `json:"riskLevel"`
}

// ValidationRecord is attached to a task result after validation. A failed
// or errored validation degrades the record instead of failing the task.
type ValidationRecord struct {
	ValidationReport
	Degraded bool `json:"degraded"`
}

// ============================================================================
// Metrics Types
// ============================================================================

// SwarmMetrics holds aggregate counters derived from task and agent state.
type SwarmMetrics struct {
	TotalAgents         int      `json:"totalAgents"`
	ActiveAgents        int      `json:"activeAgents"`
	AverageWorkload     float64  `json:"averageWorkload"`
	TasksSubmitted      int      `json:"tasksSubmitted"`
	TasksCompleted      int      `json:"tasksCompleted"`
	AverageResponseTime float64  `json:"averageResponseTime"`
	SwarmEfficiency     float64  `json:"swarmEfficiency"`
	EmergentBehaviors   []string `json:"emergentBehaviors,omitempty"`
}

// ============================================================================
// Event Types
// ============================================================================

// EventType represents the type of an event.
type EventType string

const (
	EventAgentRegistered  EventType = "agent:registered"
	EventAgentRemoved     EventType = "agent:removed"
	EventTaskSubmitted    EventType = "task:submitted"
	EventTaskStarted      EventType = "task:started"
	EventTaskCompleted    EventType = "task:completed"
	EventTaskFailed       EventType = "task:failed"
	EventDecisionRecorded EventType = "decision:recorded"
)

// Event represents a generic event in the system.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp int64                  `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// ============================================================================
// Utility Functions
// ============================================================================

// Now returns the current time in milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}
