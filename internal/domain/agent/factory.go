package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// Builder constructs an agent executor for a type tag.
type Builder func(config shared.AgentConfig) shared.AgentExecutor

// Factory resolves agent executors from a closed set of registered type
// tags, instead of any dynamic class lookup.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewFactory creates a Factory with the default executor variants.
func NewFactory() *Factory {
	f := &Factory{
		builders: make(map[string]Builder),
	}

	f.RegisterType("echo", func(config shared.AgentConfig) shared.AgentExecutor {
		return &echoExecutor{agentID: config.ID}
	})

	return f
}

// RegisterType registers a builder for a type tag.
func (f *Factory) RegisterType(typeTag string, builder Builder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[typeTag] = builder
}

// New resolves the builder for the config's type tag and creates an Agent.
func (f *Factory) New(config shared.AgentConfig) (*Agent, error) {
	f.mu.RLock()
	builder, exists := f.builders[config.Type]
	f.mu.RUnlock()

	if !exists {
		return nil, shared.NewConfigurationError(
			fmt.Sprintf("unknown agent type %q", config.Type),
			map[string]interface{}{"type": config.Type},
		)
	}
	return New(config, builder(config)), nil
}

// echoExecutor is the reference executor variant: it returns the task
// payload unchanged with full confidence. Real agents are external and
// plug in through RegisterType.
type echoExecutor struct {
	agentID string
}

func (e *echoExecutor) Execute(ctx context.Context, inv shared.AgentInvocation) (shared.AgentOutput, error) {
	select {
	case <-ctx.Done():
		return shared.AgentOutput{}, ctx.Err()
	default:
	}

	value := inv.Payload
	if value == nil {
		value = fmt.Sprintf("task %s handled by %s", inv.TaskID, e.agentID)
	}
	return shared.AgentOutput{Value: value, Confidence: 1.0}, nil
}
