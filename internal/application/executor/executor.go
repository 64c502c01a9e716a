// Package executor drives the three task execution modes (individual,
// collaborative, distributed) on top of the agent registry and the
// consensus engine, handling partial failure and result shaping.
package executor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliasghar-rao/synapse-go/internal/domain/agent"
	"github.com/aliasghar-rao/synapse-go/internal/domain/task"
	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// Assigner selects one agent for a task. The coordinator supplies its
// configured strategy here so subtask assignment and parent assignment
// share one path.
type Assigner func(ctx context.Context, t *task.Task) (string, error)

// Config holds configuration for creating an Executor.
type Config struct {
	Registry *agent.Registry
	Assigner Assigner
	Logger   *zap.Logger
}

// Executor invokes agents and reconciles their outputs per task type.
type Executor struct {
	registry *agent.Registry
	assigner Assigner
	logger   *zap.Logger
}

// New creates a new Executor.
func New(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		registry: cfg.Registry,
		assigner: cfg.Assigner,
		logger:   logger,
	}
}

// agentResult pairs one agent's output with its submission-order index.
type agentResult struct {
	agentID string
	output  shared.AgentOutput
	err     error
}

// ============================================================================
// Individual Execution
// ============================================================================

// ExecuteIndividual invokes the single assigned agent. It fails fast when
// no agent is assigned or the agent is unknown.
func (e *Executor) ExecuteIndividual(ctx context.Context, t *task.Task) (shared.AgentOutput, error) {
	assigned := t.AssignedAgents()
	if len(assigned) == 0 {
		return shared.AgentOutput{}, shared.NewNoAgentAssignedError(t.ID)
	}

	return e.invoke(ctx, assigned[0], t, nil)
}

// ============================================================================
// Collaborative Execution
// ============================================================================

// ExecuteCollaborative invokes every assigned agent concurrently and
// reconciles the successful outputs into one decision. A failing agent is
// logged and excluded, never aborting the batch; if all agents fail the
// batch yields NoResultsError.
func (e *Executor) ExecuteCollaborative(ctx context.Context, t *task.Task) (shared.CollaborativeResult, error) {
	assigned := t.AssignedAgents()
	if len(assigned) == 0 {
		return shared.CollaborativeResult{}, shared.NewNoAgentAssignedError(t.ID)
	}

	results := e.fanOut(ctx, assigned, t)
	return e.reconcile(t, results)
}

// fanOut invokes the agents concurrently. Result slots follow submission
// order regardless of response arrival; per-agent errors are captured in
// their slot, never returned through the group.
func (e *Executor) fanOut(ctx context.Context, agentIDs []string, t *task.Task) []agentResult {
	results := make([]agentResult, len(agentIDs))
	g, gctx := errgroup.WithContext(ctx)

	for i, id := range agentIDs {
		i, id := i, id
		collaborators := othersOf(agentIDs, id)
		g.Go(func() error {
			output, err := e.invoke(gctx, id, t, collaborators)
			results[i] = agentResult{agentID: id, output: output, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// reconcile counts structurally equal results and picks the most frequent,
// ties broken by first-seen key in submission order.
func (e *Executor) reconcile(t *task.Task, results []agentResult) (shared.CollaborativeResult, error) {
	type bucket struct {
		count int
		first int // submission-order index of first occurrence
	}

	keys := make([]string, len(results))
	buckets := make(map[string]*bucket)
	successes := 0

	for i, r := range results {
		if r.err != nil {
			e.logger.Warn("collaborative agent failed",
				zap.String("taskId", t.ID),
				zap.String("agentId", r.agentID),
				zap.Error(r.err))
			continue
		}
		successes++
		key := canonicalKey(r.output.Value)
		keys[i] = key
		if b, exists := buckets[key]; exists {
			b.count++
		} else {
			buckets[key] = &bucket{count: 1, first: i}
		}
	}

	if successes == 0 {
		return shared.CollaborativeResult{}, shared.NewNoResultsError(t.ID)
	}

	var winnerKey string
	winner := &bucket{first: len(results)}
	for key, b := range buckets {
		if b.count > winner.count || (b.count == winner.count && b.first < winner.first) {
			winner = b
			winnerKey = key
		}
	}

	agreement := float64(winner.count) / float64(successes)
	result := shared.CollaborativeResult{
		Decision:           results[winner.first].output.Value,
		AgreementLevel:     agreement,
		Confidence:         agreement,
		DissentingOpinions: []interface{}{},
		Participants:       []string{},
	}

	// Dissenting entries follow submission order, not response arrival.
	for i, r := range results {
		if r.err != nil {
			continue
		}
		result.Participants = append(result.Participants, r.agentID)
		if keys[i] != winnerKey {
			result.DissentingOpinions = append(result.DissentingOpinions, r.output.Value)
		}
	}

	return result, nil
}

// ============================================================================
// Distributed Execution
// ============================================================================

// PlanDistributed decomposes the task into one subtask per required
// capability and assigns each through the injected assigner. Subtasks
// whose assignment fails are skipped, not fatal; an empty plan yields
// NoResultsError. Planning before execution lets the caller know the
// serving agents up front.
func (e *Executor) PlanDistributed(ctx context.Context, t *task.Task) ([]*task.Task, error) {
	subtasks := t.Decompose()
	if len(subtasks) == 0 {
		return nil, shared.NewNoResultsError(t.ID)
	}

	assigned := make([]*task.Task, 0, len(subtasks))
	for _, st := range subtasks {
		agentID, err := e.assigner(ctx, st)
		if err != nil {
			e.logger.Warn("subtask assignment skipped",
				zap.String("taskId", t.ID),
				zap.String("subtaskId", st.ID),
				zap.Error(err))
			continue
		}
		st.Assign([]string{agentID})
		assigned = append(assigned, st)
	}

	if len(assigned) == 0 {
		return nil, shared.NewNoResultsError(t.ID)
	}
	return assigned, nil
}

// ExecuteDistributed runs the planned subtasks concurrently and aggregates
// the outputs in plan order.
func (e *Executor) ExecuteDistributed(ctx context.Context, t *task.Task, assigned []*task.Task) (shared.DistributedResult, error) {
	if len(assigned) == 0 {
		return shared.DistributedResult{}, shared.NewNoResultsError(t.ID)
	}

	results := make([]agentResult, len(assigned))
	g, gctx := errgroup.WithContext(ctx)
	for i, st := range assigned {
		i, st := i, st
		g.Go(func() error {
			agentID := st.AssignedAgents()[0]
			output, err := e.invoke(gctx, agentID, st, nil)
			results[i] = agentResult{agentID: agentID, output: output, err: err}
			return nil
		})
	}
	_ = g.Wait()

	// Aggregate in subtask submission order: textual results joined by a
	// single space, confidence averaged with missing treated as 0.
	parts := make([]string, 0, len(assigned))
	subtaskIDs := make([]string, 0, len(assigned))
	var confidenceSum float64
	successes := 0

	for i, st := range assigned {
		subtaskIDs = append(subtaskIDs, st.ID)
		r := results[i]
		if r.err != nil {
			e.logger.Warn("subtask failed",
				zap.String("taskId", t.ID),
				zap.String("subtaskId", st.ID),
				zap.String("agentId", r.agentID),
				zap.Error(r.err))
			continue
		}
		successes++
		if text := asText(r.output.Value); text != "" {
			parts = append(parts, text)
		}
		confidenceSum += r.output.Confidence
	}

	if successes == 0 {
		return shared.DistributedResult{}, shared.NewNoResultsError(t.ID)
	}

	return shared.DistributedResult{
		Result:     strings.Join(parts, " "),
		Confidence: confidenceSum / float64(len(assigned)),
		Subtasks:   subtaskIDs,
		Agents:     SubtaskAgents(assigned),
	}, nil
}

// SubtaskAgents returns the distinct agent ids serving the planned
// subtasks, in plan order.
func SubtaskAgents(assigned []*task.Task) []string {
	seen := make(map[string]bool, len(assigned))
	agents := make([]string, 0, len(assigned))
	for _, st := range assigned {
		for _, id := range st.AssignedAgents() {
			if !seen[id] {
				seen[id] = true
				agents = append(agents, id)
			}
		}
	}
	return agents
}

// ============================================================================
// Agent Invocation
// ============================================================================

// invoke runs one agent against a task, tracking workload for the duration
// of the call. Workload is decremented even on failure.
func (e *Executor) invoke(ctx context.Context, agentID string, t *task.Task, collaborators []string) (shared.AgentOutput, error) {
	a, err := e.registry.Find(agentID)
	if err != nil {
		return shared.AgentOutput{}, shared.NewAgentNotFoundError(agentID)
	}
	if a.Executor == nil {
		return shared.AgentOutput{}, shared.NewAgentNotFoundError(agentID)
	}

	a.IncrementWorkload()
	defer a.DecrementWorkload()

	started := shared.Now()
	output, err := a.Executor.Execute(ctx, t.Invocation(collaborators))
	elapsed := float64(shared.Now() - started)

	if err != nil {
		a.RecordPerformance(shared.PerformanceRecord{Accuracy: 0, CompletionTime: elapsed})
		return shared.AgentOutput{}, err
	}

	// Accuracy on a 0..10 scale, derived from the agent's own confidence.
	a.RecordPerformance(shared.PerformanceRecord{
		Accuracy:       output.Confidence * 10,
		CompletionTime: elapsed,
	})
	return output, nil
}

func othersOf(agentIDs []string, self string) []string {
	others := make([]string, 0, len(agentIDs)-1)
	for _, id := range agentIDs {
		if id != self {
			others = append(others, id)
		}
	}
	return others
}

func asText(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
