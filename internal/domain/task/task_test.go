package task

import (
	"testing"

	"github.com/aliasghar-rao/synapse-go/internal/shared"
)

func newTestTask(t *testing.T, config shared.TaskConfig) *Task {
	t.Helper()
	tk, err := New(config)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tk
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		taskType shared.TaskType
		wantErr  bool
	}{
		{name: "individual", taskType: shared.TaskTypeIndividual},
		{name: "collaborative", taskType: shared.TaskTypeCollaborative},
		{name: "distributed", taskType: shared.TaskTypeDistributed},
		{name: "unknown type", taskType: "parallel", wantErr: true},
		{name: "empty type", taskType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(shared.TaskConfig{Type: tt.taskType})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.taskType, err, tt.wantErr)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	tk := newTestTask(t, shared.TaskConfig{Type: shared.TaskTypeIndividual})

	if tk.ID == "" {
		t.Fatal("expected generated id")
	}
	if tk.Priority != shared.PriorityMedium {
		t.Fatalf("priority = %q, expected medium", tk.Priority)
	}
	if tk.Status() != shared.TaskStatusPending {
		t.Fatalf("status = %q, expected pending", tk.Status())
	}
}

func TestLifecycleTransitions(t *testing.T) {
	tk := newTestTask(t, shared.TaskConfig{Type: shared.TaskTypeIndividual})

	// pending -> completed is illegal.
	if err := tk.Complete("r"); err == nil {
		t.Fatal("Complete from pending should fail")
	}
	// pending -> failed is illegal.
	if err := tk.Fail("boom"); err == nil {
		t.Fatal("Fail from pending should fail")
	}

	if err := tk.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	// Double start is illegal.
	if err := tk.Start(); err == nil {
		t.Fatal("Start from in_progress should fail")
	}

	if err := tk.Complete("r"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	// Terminal state is immutable.
	if err := tk.Fail("boom"); err == nil {
		t.Fatal("Fail from completed should fail")
	}
	if err := tk.Complete("again"); err == nil {
		t.Fatal("Complete from completed should fail")
	}

	if tk.Result() != "r" {
		t.Fatalf("result = %v, expected r", tk.Result())
	}
	if !tk.IsTerminal() {
		t.Fatal("completed task should be terminal")
	}
}

func TestFailRecordsError(t *testing.T) {
	tk := newTestTask(t, shared.TaskConfig{Type: shared.TaskTypeIndividual})
	tk.Start()

	if err := tk.Fail("agent exploded"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	if tk.Status() != shared.TaskStatusFailed {
		t.Fatalf("status = %q, expected failed", tk.Status())
	}
	if tk.ErrMsg() != "agent exploded" {
		t.Fatalf("errMsg = %q, expected captured message", tk.ErrMsg())
	}
}

func TestAssignCopies(t *testing.T) {
	tk := newTestTask(t, shared.TaskConfig{Type: shared.TaskTypeIndividual})

	ids := []string{"a1", "a2"}
	tk.Assign(ids)
	ids[0] = "mutated"

	assigned := tk.AssignedAgents()
	if assigned[0] != "a1" {
		t.Fatal("Assign should copy the input slice")
	}

	assigned[1] = "mutated"
	if tk.AssignedAgents()[1] != "a2" {
		t.Fatal("AssignedAgents should return a copy")
	}
}

func TestDecompose(t *testing.T) {
	tk := newTestTask(t, shared.TaskConfig{
		Type:                 shared.TaskTypeDistributed,
		Priority:             shared.PriorityHigh,
		RequiredCapabilities: []string{"a", "b", "c"},
		Payload:              "work",
		CulturalContext:      "south-asia",
	})

	subtasks := tk.Decompose()
	if len(subtasks) != 3 {
		t.Fatalf("subtask count = %d, expected 3", len(subtasks))
	}

	for i, expected := range []string{"a", "b", "c"} {
		st := subtasks[i]
		if st.Type != shared.TaskTypeIndividual {
			t.Fatalf("subtask %d type = %q, expected individual", i, st.Type)
		}
		if len(st.RequiredCapabilities) != 1 || st.RequiredCapabilities[0] != expected {
			t.Fatalf("subtask %d capabilities = %v, expected [%s]", i, st.RequiredCapabilities, expected)
		}
		if st.ParentTaskID != tk.ID {
			t.Fatalf("subtask %d parent = %q, expected %q", i, st.ParentTaskID, tk.ID)
		}
		if st.Priority != shared.PriorityHigh || st.CulturalContext != "south-asia" {
			t.Fatalf("subtask %d did not inherit priority and context", i)
		}
		if st.Status() != shared.TaskStatusPending {
			t.Fatalf("subtask %d status = %q, expected pending", i, st.Status())
		}
	}
}

func TestDecomposeNoCapabilities(t *testing.T) {
	tk := newTestTask(t, shared.TaskConfig{Type: shared.TaskTypeDistributed})

	if subtasks := tk.Decompose(); len(subtasks) != 0 {
		t.Fatalf("subtask count = %d, expected 0", len(subtasks))
	}
}

func TestInvocation(t *testing.T) {
	tk := newTestTask(t, shared.TaskConfig{
		Type:                 shared.TaskTypeCollaborative,
		RequiredCapabilities: []string{"go"},
		Payload:              42,
		CulturalContext:      "mena",
	})

	inv := tk.Invocation([]string{"a2", "a3"})
	if inv.TaskID != tk.ID || inv.TaskType != shared.TaskTypeCollaborative {
		t.Fatalf("unexpected invocation identity: %+v", inv)
	}
	if inv.Payload != 42 || inv.CulturalContext != "mena" {
		t.Fatalf("unexpected invocation payload: %+v", inv)
	}
	if len(inv.Collaborators) != 2 {
		t.Fatalf("collaborators = %v, expected 2 entries", inv.Collaborators)
	}
}
