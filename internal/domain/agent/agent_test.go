package agent

import (
	"testing"

	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

func newTestAgent(id string, capabilities ...string) *Agent {
	return New(shared.AgentConfig{
		ID:           id,
		Type:         "echo",
		Capabilities: capabilities,
		TrustScore:   50,
	}, nil)
}

func TestHasCapabilities(t *testing.T) {
	tests := []struct {
		name     string
		have     []string
		required []string
		expected bool
	}{
		{name: "empty requirement matches all", have: []string{"go"}, required: nil, expected: true},
		{name: "exact match", have: []string{"go", "rust"}, required: []string{"go", "rust"}, expected: true},
		{name: "superset matches", have: []string{"go", "rust", "sql"}, required: []string{"go"}, expected: true},
		{name: "missing capability", have: []string{"go"}, required: []string{"go", "rust"}, expected: false},
		{name: "no capabilities", have: nil, required: []string{"go"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAgent("a1", tt.have...)
			if got := a.HasCapabilities(tt.required); got != tt.expected {
				t.Fatalf("HasCapabilities(%v) = %v, expected %v", tt.required, got, tt.expected)
			}
		})
	}
}

func TestCapabilityMatches(t *testing.T) {
	a := newTestAgent("a1", "go", "rust")

	if got := a.CapabilityMatches([]string{"go", "sql", "rust"}); got != 2 {
		t.Fatalf("CapabilityMatches = %d, expected 2", got)
	}
	if got := a.CapabilityMatches(nil); got != 0 {
		t.Fatalf("CapabilityMatches(nil) = %d, expected 0", got)
	}
}

func TestWorkloadNeverNegative(t *testing.T) {
	a := newTestAgent("a1")

	a.DecrementWorkload()
	if got := a.Workload(); got != 0 {
		t.Fatalf("workload after decrement at zero = %v, expected 0", got)
	}

	a.IncrementWorkload()
	a.IncrementWorkload()
	a.DecrementWorkload()
	if got := a.Workload(); got != 1 {
		t.Fatalf("workload = %v, expected 1", got)
	}
}

func TestPerformanceHistoryBounded(t *testing.T) {
	a := newTestAgent("a1")

	for i := 0; i < DefaultHistoryWindow+10; i++ {
		a.RecordPerformance(shared.PerformanceRecord{Accuracy: float64(i)})
	}

	if got := a.HistoryLen(); got != DefaultHistoryWindow {
		t.Fatalf("history length = %d, expected %d", got, DefaultHistoryWindow)
	}

	// Newest entries survive; the most recent accuracy is window+9.
	if got := a.AverageAccuracy(1); got != float64(DefaultHistoryWindow+9) {
		t.Fatalf("latest accuracy = %v, expected %v", got, float64(DefaultHistoryWindow+9))
	}
}

func TestAveragesEmptyHistory(t *testing.T) {
	a := newTestAgent("a1")

	if got := a.AverageAccuracy(10); got != 0 {
		t.Fatalf("AverageAccuracy on empty history = %v, expected 0", got)
	}
	if got := a.AverageCompletionTime(10); got != 0 {
		t.Fatalf("AverageCompletionTime on empty history = %v, expected 0", got)
	}
}

func TestAverageAccuracyRecentWindow(t *testing.T) {
	a := newTestAgent("a1")
	a.RecordPerformance(shared.PerformanceRecord{Accuracy: 2})
	a.RecordPerformance(shared.PerformanceRecord{Accuracy: 4})
	a.RecordPerformance(shared.PerformanceRecord{Accuracy: 6})

	if got := a.AverageAccuracy(2); got != 5 {
		t.Fatalf("AverageAccuracy(2) = %v, expected 5", got)
	}
	if got := a.AverageAccuracy(100); got != 4 {
		t.Fatalf("AverageAccuracy(100) = %v, expected 4", got)
	}
}

func TestTrustScoreClamped(t *testing.T) {
	over := New(shared.AgentConfig{ID: "a1", TrustScore: 150}, nil)
	if got := over.TrustScore(); got != 100 {
		t.Fatalf("trust score = %v, expected 100", got)
	}

	under := New(shared.AgentConfig{ID: "a2", TrustScore: -5}, nil)
	if got := under.TrustScore(); got != 0 {
		t.Fatalf("trust score = %v, expected 0", got)
	}
}

func TestToSharedSnapshot(t *testing.T) {
	a := newTestAgent("a1", "go")
	a.IncrementWorkload()

	snapshot := a.ToShared()
	if snapshot.ID != "a1" || snapshot.Workload != 1 || snapshot.TrustScore != 50 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}

	// Mutating the snapshot's capability slice must not touch the agent.
	snapshot.Capabilities[0] = "mutated"
	if a.Capabilities[0] != "go" {
		t.Fatalf("snapshot mutation leaked into agent capabilities")
	}
}
