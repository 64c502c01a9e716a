// Package coordinator provides the SwarmCoordinator, the single entry
// point tying together agent registry, task store, assignment strategies,
// consensus engine, executor, metrics and the event bus. All state is
// instance state; callers create coordinators, never share globals.
package coordinator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliasghar-rao/synapse-go/internal/application/consensus"
	"github.com/aliasghar-rao/synapse-go/internal/application/executor"
	"github.com/aliasghar-rao/synapse-go/internal/application/strategy"
	"github.com/aliasghar-rao/synapse-go/internal/config"
	"github.com/aliasghar-rao/synapse-go/internal/domain/agent"
	"github.com/aliasghar-rao/synapse-go/internal/domain/task"
	"github.com/aliasghar-rao/synapse-go/internal/infrastructure/bidding"
	"github.com/aliasghar-rao/synapse-go/internal/infrastructure/events"
	"github.com/aliasghar-rao/synapse-go/internal/infrastructure/metrics"
	"github.com/aliasghar-rao/synapse-go/internal/infrastructure/validation"
	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// SwarmCoordinator orchestrates agents and tasks. It is the only publish
// point for swarm events and the only caller of task lifecycle transitions.
type SwarmCoordinator struct {
	cfg       config.Config
	registry  *agent.Registry
	store     *task.Store
	factory   *agent.Factory
	engine    *consensus.Engine
	executor  *executor.Executor
	bus       *events.Bus
	collector *metrics.Collector
	bids      bidding.Source
	validator validation.Port
	logger    *zap.Logger
}

// Option configures the SwarmCoordinator.
type Option func(*SwarmCoordinator)

// WithLogger sets the coordinator logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *SwarmCoordinator) {
		c.logger = logger
	}
}

// WithBiddingSource sets the bid source used by auction-based assignment.
func WithBiddingSource(source bidding.Source) Option {
	return func(c *SwarmCoordinator) {
		c.bids = source
	}
}

// WithValidator sets the cultural validation port. Without one, results
// are published unvalidated.
func WithValidator(v validation.Port) Option {
	return func(c *SwarmCoordinator) {
		c.validator = v
	}
}

// WithFactory replaces the default agent factory.
func WithFactory(f *agent.Factory) Option {
	return func(c *SwarmCoordinator) {
		c.factory = f
	}
}

// New creates a SwarmCoordinator from the given configuration.
func New(cfg config.Config, opts ...Option) (*SwarmCoordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &SwarmCoordinator{
		cfg:      cfg,
		registry: agent.NewRegistry(),
		store:    task.NewStore(),
		factory:  agent.NewFactory(),
		bus:      events.New(),
		bids:     &bidding.RegistrySource{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.engine = consensus.NewEngine(
		consensus.WithThreshold(cfg.ConsensusThreshold),
		consensus.WithLogger(c.logger),
	)
	c.executor = executor.New(executor.Config{
		Registry: c.registry,
		Assigner: c.assignOne,
		Logger:   c.logger,
	})
	c.collector = metrics.NewCollector(c.registry, c.store)

	// The configuration surface can enable validation without code; an
	// explicit WithValidator option still takes precedence.
	if cfg.ValidationEnabled && c.validator == nil {
		c.validator = validation.NewThresholdValidator(cfg.ConsensusThreshold)
	}

	return c, nil
}

// ============================================================================
// Agent Management
// ============================================================================

// RegisterAgent creates an agent through the factory and adds it to the
// registry. Registration beyond the configured maximum fails.
func (c *SwarmCoordinator) RegisterAgent(config shared.AgentConfig) (shared.Agent, error) {
	if c.registry.Count() >= c.cfg.MaxAgents {
		return shared.Agent{}, shared.NewConfigurationError(
			fmt.Sprintf("maximum number of agents (%d) reached", c.cfg.MaxAgents),
			map[string]interface{}{"maxAgents": c.cfg.MaxAgents},
		)
	}

	a, err := c.factory.New(config)
	if err != nil {
		return shared.Agent{}, err
	}
	if err := c.registry.Register(a); err != nil {
		return shared.Agent{}, err
	}

	c.bus.EmitAgentRegistered(a.ID, a.Type)
	c.logger.Info("agent registered",
		zap.String("agentId", a.ID),
		zap.String("type", a.Type))

	return a.ToShared(), nil
}

// RegisterAgentType adds an executor builder for a new agent type tag.
func (c *SwarmCoordinator) RegisterAgentType(typeTag string, builder agent.Builder) {
	c.factory.RegisterType(typeTag, builder)
}

// RemoveAgent removes an agent from the registry.
func (c *SwarmCoordinator) RemoveAgent(agentID string) error {
	if err := c.registry.Remove(agentID); err != nil {
		return err
	}

	c.collector.MarkIdle(agentID)
	c.bus.EmitAgentRemoved(agentID)
	c.logger.Info("agent removed", zap.String("agentId", agentID))
	return nil
}

// Agents returns snapshots of all registered agents in registration order.
func (c *SwarmCoordinator) Agents() []shared.Agent {
	registered := c.registry.List()
	agents := make([]shared.Agent, 0, len(registered))
	for _, a := range registered {
		agents = append(agents, a.ToShared())
	}
	return agents
}

// ============================================================================
// Task Lifecycle
// ============================================================================

// SubmitTask records a new pending task and returns its id. Submission
// never assigns or executes.
func (c *SwarmCoordinator) SubmitTask(config shared.TaskConfig) (string, error) {
	t, err := task.New(config)
	if err != nil {
		return "", err
	}
	if err := c.store.Put(t); err != nil {
		return "", err
	}

	c.bus.EmitTaskSubmitted(t.ID, t.Type)
	c.logger.Info("task submitted",
		zap.String("taskId", t.ID),
		zap.String("type", string(t.Type)))

	return t.ID, nil
}

// TaskResult returns the current state of a task shaped as a result.
func (c *SwarmCoordinator) TaskResult(taskID string) (shared.TaskResult, error) {
	t, err := c.store.Get(taskID)
	if err != nil {
		return shared.TaskResult{}, err
	}
	return t.ToResult(), nil
}

// ExecuteTask assigns and runs a pending task to a terminal state. An
// assignment failure or an execution failure moves the task to failed and
// returns the error; a cancelled context discards the work the same way.
func (c *SwarmCoordinator) ExecuteTask(ctx context.Context, taskID string) (shared.TaskResult, error) {
	t, err := c.store.Get(taskID)
	if err != nil {
		return shared.TaskResult{}, err
	}

	subtasks, err := c.assign(ctx, t)
	if err != nil {
		return c.failTask(t, err)
	}

	if err := c.store.Start(taskID); err != nil {
		return shared.TaskResult{}, err
	}

	assigned := t.AssignedAgents()
	c.bus.EmitTaskStarted(taskID, assigned)
	for _, id := range assigned {
		c.collector.MarkActive(id)
	}
	defer func() {
		for _, id := range assigned {
			c.collector.MarkIdle(id)
		}
	}()

	result, confidence, err := c.run(ctx, t, subtasks)
	if cerr := ctx.Err(); cerr != nil {
		// Cancelled work is discarded, never published as a decision.
		return c.failTask(t, cerr)
	}
	if err != nil {
		return c.failTask(t, err)
	}

	decision := shared.SwarmDecision{
		TaskID:              taskID,
		Decision:            result,
		Confidence:          confidence,
		ParticipatingAgents: assigned,
		CulturalContext:     t.CulturalContext,
	}

	record := c.validate(ctx, t, decision)

	if err := c.store.Complete(taskID, result); err != nil {
		return shared.TaskResult{}, err
	}

	c.engine.RecordDecision(decision)
	c.learn(assigned, t.CulturalContext, confidence)

	c.bus.EmitTaskCompleted(taskID, t.Duration())
	c.bus.EmitDecisionRecorded(taskID, confidence)
	c.logger.Info("task completed",
		zap.String("taskId", taskID),
		zap.Float64("confidence", confidence),
		zap.Int64("duration", t.Duration()))

	taskResult := t.ToResult()
	taskResult.Validation = record
	return taskResult, nil
}

// assign selects agents for the task per its type. Collaborative tasks get
// every eligible agent; individual tasks get exactly one by the configured
// strategy; distributed tasks get a per-subtask plan whose serving agents
// are assigned back to the parent. The returned subtasks are non-nil only
// for distributed tasks.
func (c *SwarmCoordinator) assign(ctx context.Context, t *task.Task) ([]*task.Task, error) {
	switch t.Type {
	case shared.TaskTypeCollaborative:
		eligible := c.registry.FindEligible(t.RequiredCapabilities)
		if len(eligible) == 0 {
			return nil, shared.NewNoEligibleAgentError(map[string]interface{}{"taskId": t.ID})
		}
		ids := make([]string, 0, len(eligible))
		for _, a := range eligible {
			ids = append(ids, a.ID)
		}
		t.Assign(ids)
		return nil, nil

	case shared.TaskTypeDistributed:
		subtasks, err := c.executor.PlanDistributed(ctx, t)
		if err != nil {
			return nil, err
		}
		t.Assign(executor.SubtaskAgents(subtasks))
		return subtasks, nil

	default:
		agentID, err := c.assignOne(ctx, t)
		if err != nil {
			return nil, err
		}
		t.Assign([]string{agentID})
		return nil, nil
	}
}

// assignOne selects a single agent using the configured strategy. It also
// serves as the executor's subtask assigner.
func (c *SwarmCoordinator) assignOne(ctx context.Context, t *task.Task) (string, error) {
	eligible := c.registry.FindEligible(t.RequiredCapabilities)

	name := strategy.Name(c.cfg.LoadBalancingStrategy)
	if name != strategy.AuctionBased {
		return strategy.Select(name, eligible, t, c.store.CompletedCount())
	}

	bids, err := c.bids.Bids(ctx, t.ID, t.CulturalContext, eligible)
	if err != nil {
		return "", err
	}

	result := c.engine.AuctionBasedAllocation(t.ID, bids, t.CulturalContext)
	if result.SelectedAgent == consensus.DefaultSelectedAgent {
		return "", shared.NewNoEligibleAgentError(map[string]interface{}{
			"taskId":   t.ID,
			"strategy": string(name),
		})
	}

	c.logger.Debug("auction assignment",
		zap.String("taskId", t.ID),
		zap.String("agentId", result.SelectedAgent),
		zap.Float64("consensusScore", result.ConsensusScore))

	return result.SelectedAgent, nil
}

// run executes the task per its type and returns the raw result value and
// the overall confidence of the outcome. subtasks carries the distributed
// plan produced by assign and is nil for the other types.
func (c *SwarmCoordinator) run(ctx context.Context, t *task.Task, subtasks []*task.Task) (interface{}, float64, error) {
	switch t.Type {
	case shared.TaskTypeCollaborative:
		result, err := c.executor.ExecuteCollaborative(ctx, t)
		if err != nil {
			return nil, 0, err
		}
		return result, result.Confidence, nil

	case shared.TaskTypeDistributed:
		result, err := c.executor.ExecuteDistributed(ctx, t, subtasks)
		if err != nil {
			return nil, 0, err
		}
		return result, result.Confidence, nil

	default:
		output, err := c.executor.ExecuteIndividual(ctx, t)
		if err != nil {
			return nil, 0, err
		}
		return output.Value, output.Confidence, nil
	}
}

// validate runs the cultural validation port when one is configured and the
// task carries a cultural context. A failed or errored validation yields a
// degraded record attached to the result; the task still completes.
func (c *SwarmCoordinator) validate(ctx context.Context, t *task.Task, decision shared.SwarmDecision) *shared.ValidationRecord {
	if c.validator == nil || t.CulturalContext == "" {
		return nil
	}

	report, err := c.validator.Validate(ctx, decision, t.CulturalContext)
	if err != nil {
		c.logger.Warn("cultural validation errored",
			zap.String("taskId", t.ID),
			zap.Error(err))
		return validation.DegradedRecord(err.Error())
	}
	if !report.Passed {
		c.logger.Warn("cultural validation failed",
			zap.String("taskId", t.ID),
			zap.String("riskLevel", report.RiskLevel))
	}
	return &shared.ValidationRecord{ValidationReport: report}
}

// learn feeds the task outcome back into the engine's learned tables.
func (c *SwarmCoordinator) learn(agentIDs []string, culturalContext string, confidence float64) {
	for _, id := range agentIDs {
		c.engine.UpdateAgentExpertise(id, confidence)
	}
	if culturalContext != "" {
		c.engine.UpdateCulturalWeights(culturalContext, confidence)
	}
}

// failTask moves a task to failed, emits the failure, and returns the
// original error alongside the failed result.
func (c *SwarmCoordinator) failTask(t *task.Task, cause error) (shared.TaskResult, error) {
	if t.Status() == shared.TaskStatusPending {
		// Assignment failures happen before Start; move through
		// in_progress so the state machine stays legal.
		if err := c.store.Start(t.ID); err != nil {
			return shared.TaskResult{}, err
		}
	}
	if err := c.store.Fail(t.ID, cause.Error()); err != nil {
		return shared.TaskResult{}, err
	}

	c.bus.EmitTaskFailed(t.ID, cause.Error())
	c.logger.Warn("task failed",
		zap.String("taskId", t.ID),
		zap.Error(cause))

	return t.ToResult(), cause
}

// ============================================================================
// Consensus Passthrough
// ============================================================================

// Vote runs an expertise-weighted vote over proposals for a task and emits
// the recorded decision.
func (c *SwarmCoordinator) Vote(taskID string, proposals []shared.Proposal, culturalContext string) shared.SwarmDecision {
	decision := c.engine.ExpertiseWeightedVoting(taskID, proposals, culturalContext)
	if len(proposals) > 0 {
		c.bus.EmitDecisionRecorded(taskID, decision.Confidence)
	}
	return decision
}

// Review runs a peer review round over content with the given reviewers.
func (c *SwarmCoordinator) Review(ctx context.Context, content interface{}, reviewers []string, culturalContext string, reviewer consensus.Reviewer) shared.ReviewOutcome {
	return c.engine.PeerReviewConsensus(ctx, content, reviewers, culturalContext, reviewer)
}

// PlanConsensus selects a consensus strategy for the given complexity over
// the currently registered agents.
func (c *SwarmCoordinator) PlanConsensus(complexity shared.TaskComplexity, culturalContext string) shared.ConsensusPlan {
	registered := c.registry.List()
	ids := make([]string, 0, len(registered))
	for _, a := range registered {
		ids = append(ids, a.ID)
	}
	return c.engine.AdaptiveConsensus(complexity, ids, culturalContext)
}

// ============================================================================
// Introspection
// ============================================================================

// Metrics returns the current swarm metrics snapshot.
func (c *SwarmCoordinator) Metrics() shared.SwarmMetrics {
	return c.collector.Snapshot()
}

// ConsensusMetrics summarizes the engine's decision history.
func (c *SwarmCoordinator) ConsensusMetrics() shared.ConsensusMetrics {
	return c.engine.Metrics()
}

// Engine exposes the consensus engine for direct consensus operations.
func (c *SwarmCoordinator) Engine() *consensus.Engine {
	return c.engine
}

// EventBus exposes the bus for subscriptions. Emission stays inside the
// coordinator.
func (c *SwarmCoordinator) EventBus() *events.Bus {
	return c.bus
}

// Shutdown closes the event bus. Tasks in flight finish against a closed
// bus without publishing.
func (c *SwarmCoordinator) Shutdown() {
	c.bus.Close()
	c.logger.Info("coordinator shut down")
}
