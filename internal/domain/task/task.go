// Package task provides the SwarmTask domain entity and store.
package task

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// Task represents a unit of work submitted to the swarm. Status moves
// exactly once pending -> in_progress, then exactly once in_progress ->
// {completed, failed}; terminal states are immutable.
type Task struct {
	mu                   sync.RWMutex
	ID                   string
	Type                 shared.TaskType
	Priority             shared.TaskPriority
	RequiredCapabilities []string
	Payload              interface{}
	assignedAgents       []string
	status               shared.TaskStatus
	result               interface{}
	errMsg               string
	CreatedAt            int64
	completedAt          int64
	startedAt            int64
	Deadline             int64
	Dependencies         []string
	CulturalContext      string
	ParentTaskID         string
}

// New creates a pending Task from the given configuration. A task is
// created only by submission.
func New(config shared.TaskConfig) (*Task, error) {
	switch config.Type {
	case shared.TaskTypeIndividual, shared.TaskTypeCollaborative, shared.TaskTypeDistributed:
	default:
		return nil, shared.NewConfigurationError(
			fmt.Sprintf("invalid task type %q", config.Type),
			map[string]interface{}{"type": string(config.Type)},
		)
	}

	id := config.ID
	if id == "" {
		id = uuid.NewString()
	}
	priority := config.Priority
	if priority == "" {
		priority = shared.PriorityMedium
	}
	required := config.RequiredCapabilities
	if required == nil {
		required = []string{}
	}

	return &Task{
		ID:                   id,
		Type:                 config.Type,
		Priority:             priority,
		RequiredCapabilities: required,
		Payload:              config.Payload,
		assignedAgents:       []string{},
		status:               shared.TaskStatusPending,
		CreatedAt:            shared.Now(),
		Deadline:             config.Deadline,
		Dependencies:         config.Dependencies,
		CulturalContext:      config.CulturalContext,
	}, nil
}

// Assign records the ordered agent ids assigned to the task.
func (t *Task) Assign(agentIDs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	assigned := make([]string, len(agentIDs))
	copy(assigned, agentIDs)
	t.assignedAgents = assigned
}

// AssignedAgents returns a copy of the ordered assigned agent ids.
func (t *Task) AssignedAgents() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	agents := make([]string, len(t.assignedAgents))
	copy(agents, t.assignedAgents)
	return agents
}

// Start transitions pending -> in_progress. Any other transition is illegal.
func (t *Task) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != shared.TaskStatusPending {
		return shared.NewConfigurationError(
			fmt.Sprintf("illegal transition %s -> in_progress for task %s", t.status, t.ID),
			map[string]interface{}{"taskId": t.ID, "status": string(t.status)},
		)
	}
	t.status = shared.TaskStatusInProgress
	t.startedAt = shared.Now()
	return nil
}

// Complete transitions in_progress -> completed and records the result.
func (t *Task) Complete(result interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != shared.TaskStatusInProgress {
		return shared.NewConfigurationError(
			fmt.Sprintf("illegal transition %s -> completed for task %s", t.status, t.ID),
			map[string]interface{}{"taskId": t.ID, "status": string(t.status)},
		)
	}
	t.status = shared.TaskStatusCompleted
	t.result = result
	t.completedAt = shared.Now()
	return nil
}

// Fail transitions in_progress -> failed and records the captured error.
// The task remains inspectable but is not retried automatically.
func (t *Task) Fail(errMsg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != shared.TaskStatusInProgress {
		return shared.NewConfigurationError(
			fmt.Sprintf("illegal transition %s -> failed for task %s", t.status, t.ID),
			map[string]interface{}{"taskId": t.ID, "status": string(t.status)},
		)
	}
	t.status = shared.TaskStatusFailed
	t.errMsg = errMsg
	t.completedAt = shared.Now()
	return nil
}

// Status returns the current status.
func (t *Task) Status() shared.TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// IsTerminal reports whether the task reached a terminal state.
func (t *Task) IsTerminal() bool {
	s := t.Status()
	return s == shared.TaskStatusCompleted || s == shared.TaskStatusFailed
}

// Result returns the recorded result, nil until completion.
func (t *Task) Result() interface{} {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.result
}

// ErrMsg returns the captured failure message, empty until failure.
func (t *Task) ErrMsg() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.errMsg
}

// Duration returns the time from start to terminal state in milliseconds.
func (t *Task) Duration() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.startedAt > 0 && t.completedAt > 0 {
		return t.completedAt - t.startedAt
	}
	return 0
}

// Invocation builds the agent invocation payload for this task.
func (t *Task) Invocation(collaborators []string) shared.AgentInvocation {
	t.mu.RLock()
	defer t.mu.RUnlock()

	required := make([]string, len(t.RequiredCapabilities))
	copy(required, t.RequiredCapabilities)

	return shared.AgentInvocation{
		TaskID:               t.ID,
		TaskType:             t.Type,
		Payload:              t.Payload,
		RequiredCapabilities: required,
		Collaborators:        collaborators,
		CulturalContext:      t.CulturalContext,
	}
}

// Decompose splits a distributed task into one subtask per required
// capability, order preserved. Each subtask inherits priority, deadline,
// dependencies and cultural context, carries the parent task id, and
// requires exactly its single capability.
func (t *Task) Decompose() []*Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	subtasks := make([]*Task, 0, len(t.RequiredCapabilities))
	for _, capability := range t.RequiredCapabilities {
		subtasks = append(subtasks, &Task{
			ID:                   uuid.NewString(),
			Type:                 shared.TaskTypeIndividual,
			Priority:             t.Priority,
			RequiredCapabilities: []string{capability},
			Payload:              t.Payload,
			assignedAgents:       []string{},
			status:               shared.TaskStatusPending,
			CreatedAt:            shared.Now(),
			Deadline:             t.Deadline,
			Dependencies:         t.Dependencies,
			CulturalContext:      t.CulturalContext,
			ParentTaskID:         t.ID,
		})
	}
	return subtasks
}

// ToResult shapes the task's current state as a TaskResult.
func (t *Task) ToResult() shared.TaskResult {
	t.mu.RLock()
	defer t.mu.RUnlock()

	agents := make([]string, len(t.assignedAgents))
	copy(agents, t.assignedAgents)

	return shared.TaskResult{
		TaskID:   t.ID,
		Status:   t.status,
		Result:   t.result,
		Error:    t.errMsg,
		Duration: t.durationLocked(),
		Agents:   agents,
	}
}

func (t *Task) durationLocked() int64 {
	if t.startedAt > 0 && t.completedAt > 0 {
		return t.completedAt - t.startedAt
	}
	return 0
}
