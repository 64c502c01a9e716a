// Package events provides a channel-based publish-subscribe event bus.
// Subscribers register once at startup; the coordinator owns the publish
// point for all task and agent notifications.
package events

import (
	"context"
	"sync"

	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// Handler is a function that handles events.
type Handler func(event shared.Event)

// Bus provides a publish-subscribe event system using Go channels.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[shared.EventType][]chan shared.Event
	handlers    map[shared.EventType][]Handler
	bufferSize  int
	closed      bool
}

// Option configures the Bus.
type Option func(*Bus)

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(b *Bus) {
		b.bufferSize = size
	}
}

// New creates a new Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[shared.EventType][]chan shared.Event),
		handlers:    make(map[shared.EventType][]Handler),
		bufferSize:  100,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe creates a channel to receive events of the given type.
func (b *Bus) Subscribe(eventType shared.EventType) <-chan shared.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan shared.Event, b.bufferSize)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a channel to receive all events.
func (b *Bus) SubscribeAll() <-chan shared.Event {
	return b.Subscribe("*")
}

// Unsubscribe removes a subscription channel and closes it.
func (b *Bus) Unsubscribe(eventType shared.EventType, ch <-chan shared.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[eventType]
	for i, sub := range subs {
		if (<-chan shared.Event)(sub) == ch {
			b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// On registers a handler for events of the given type. Handlers run
// synchronously on the emitting goroutine.
func (b *Bus) On(eventType shared.EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all subscribers and handlers. Full subscriber
// channels are skipped rather than blocking the publisher.
func (b *Bus) Emit(event shared.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = shared.Now()
	}

	for _, ch := range b.subscribers[event.Type] {
		select {
		case ch <- event:
		default:
		}
	}
	for _, ch := range b.subscribers["*"] {
		select {
		case ch <- event:
		default:
		}
	}

	for _, handler := range b.handlers[event.Type] {
		handler(event)
	}
	for _, handler := range b.handlers["*"] {
		handler(event)
	}
}

// EmitWithContext publishes an event unless the context is done.
func (b *Bus) EmitWithContext(ctx context.Context, event shared.Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		b.Emit(event)
		return nil
	}
}

// Close closes all subscriber channels and stops the bus.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subscribers = make(map[shared.EventType][]chan shared.Event)
	b.handlers = make(map[shared.EventType][]Handler)
}

// ============================================================================
// Helper Emitters
// ============================================================================

// EmitAgentRegistered emits an agent registered event.
func (b *Bus) EmitAgentRegistered(agentID, agentType string) {
	b.Emit(shared.Event{
		Type: shared.EventAgentRegistered,
		Payload: map[string]interface{}{
			"agentId": agentID,
			"type":    agentType,
		},
	})
}

// EmitAgentRemoved emits an agent removed event.
func (b *Bus) EmitAgentRemoved(agentID string) {
	b.Emit(shared.Event{
		Type: shared.EventAgentRemoved,
		Payload: map[string]interface{}{
			"agentId": agentID,
		},
	})
}

// EmitTaskSubmitted emits a task submitted event.
func (b *Bus) EmitTaskSubmitted(taskID string, taskType shared.TaskType) {
	b.Emit(shared.Event{
		Type: shared.EventTaskSubmitted,
		Payload: map[string]interface{}{
			"taskId": taskID,
			"type":   string(taskType),
		},
	})
}

// EmitTaskStarted emits a task started event.
func (b *Bus) EmitTaskStarted(taskID string, agentIDs []string) {
	b.Emit(shared.Event{
		Type: shared.EventTaskStarted,
		Payload: map[string]interface{}{
			"taskId": taskID,
			"agents": agentIDs,
		},
	})
}

// EmitTaskCompleted emits a task completed event.
func (b *Bus) EmitTaskCompleted(taskID string, duration int64) {
	b.Emit(shared.Event{
		Type: shared.EventTaskCompleted,
		Payload: map[string]interface{}{
			"taskId":   taskID,
			"duration": duration,
		},
	})
}

// EmitTaskFailed emits a task failed event.
func (b *Bus) EmitTaskFailed(taskID, errMsg string) {
	b.Emit(shared.Event{
		Type: shared.EventTaskFailed,
		Payload: map[string]interface{}{
			"taskId": taskID,
			"error":  errMsg,
		},
	})
}

// EmitDecisionRecorded emits a decision recorded event.
func (b *Bus) EmitDecisionRecorded(taskID string, confidence float64) {
	b.Emit(shared.Event{
		Type: shared.EventDecisionRecorded,
		Payload: map[string]interface{}{
			"taskId":     taskID,
			"confidence": confidence,
		},
	})
}
