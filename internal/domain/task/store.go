package task

import (
	"sync"

	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

// Store holds submitted tasks and serializes their lifecycle transitions.
// No two transitions for the same task may be in flight concurrently; the
// store lock is the single-writer point for all task state changes.
type Store struct {
	mu             sync.RWMutex
	tasks          map[string]*Task
	order          []string
	submitted      int
	completed      int
	failed         int
	totalDuration  int64
	completedCount int64 // monotonic counter driving round-robin
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		tasks: make(map[string]*Task),
		order: make([]string, 0),
	}
}

// Put adds a submitted task to the store.
func (s *Store) Put(t *Task) error {
	if t == nil || t.ID == "" {
		return shared.NewConfigurationError("task id is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.ID]; !exists {
		s.order = append(s.order, t.ID)
		s.submitted++
	}
	s.tasks[t.ID] = t
	return nil
}

// Get returns a task by id, or NotFoundError.
func (s *Store) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tasks[id]
	if !exists {
		return nil, shared.NewNotFoundError("task not found", map[string]interface{}{"taskId": id})
	}
	return t, nil
}

// List returns all tasks in submission order.
func (s *Store) List() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*Task, 0, len(s.order))
	for _, id := range s.order {
		tasks = append(tasks, s.tasks[id])
	}
	return tasks
}

// Start transitions a task to in_progress under the store lock.
func (s *Store) Start(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tasks[id]
	if !exists {
		return shared.NewNotFoundError("task not found", map[string]interface{}{"taskId": id})
	}
	return t.Start()
}

// Complete transitions a task to completed under the store lock and
// advances the completed-task counter.
func (s *Store) Complete(id string, result interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tasks[id]
	if !exists {
		return shared.NewNotFoundError("task not found", map[string]interface{}{"taskId": id})
	}
	if err := t.Complete(result); err != nil {
		return err
	}
	s.completed++
	s.completedCount++
	s.totalDuration += t.Duration()
	return nil
}

// Fail transitions a task to failed under the store lock.
func (s *Store) Fail(id string, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tasks[id]
	if !exists {
		return shared.NewNotFoundError("task not found", map[string]interface{}{"taskId": id})
	}
	if err := t.Fail(errMsg); err != nil {
		return err
	}
	s.failed++
	s.totalDuration += t.Duration()
	return nil
}

// Submitted returns the number of tasks ever put into the store.
func (s *Store) Submitted() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitted
}

// Completed returns the number of completed tasks.
func (s *Store) Completed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed
}

// Failed returns the number of failed tasks.
func (s *Store) Failed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failed
}

// CompletedCount returns the monotonic completed-task counter used by
// round-robin assignment.
func (s *Store) CompletedCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completedCount
}

// AverageResponseTime returns the mean duration of terminal tasks in
// milliseconds, 0 when none have finished.
func (s *Store) AverageResponseTime() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terminal := s.completed + s.failed
	if terminal == 0 {
		return 0
	}
	return float64(s.totalDuration) / float64(terminal)
}
