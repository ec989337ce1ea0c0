package workflow

import (
	"testing"
)

func TestResolveInputsOverlaysContext(t *testing.T) {
	ec := NewExecutionContext()
	ec.Set("invoice_amount", 500)

	s := &Step{
		ID:           "create",
		Parameters:   map[string]any{"object_type": "opportunity", "stage": "open"},
		InputMapping: map[string]string{"invoice_amount": "amount"},
	}

	params := ec.ResolveInputs(s)
	if params["amount"] != 500 {
		t.Errorf("amount = %v, want 500", params["amount"])
	}
	if params["stage"] != "open" {
		t.Errorf("literal parameter lost: %v", params["stage"])
	}
	// Originals untouched.
	if _, ok := s.Parameters["amount"]; ok {
		t.Error("ResolveInputs mutated the step's parameters")
	}
}

func TestResolveInputsSkipsMissingKeys(t *testing.T) {
	ec := NewExecutionContext()

	s := &Step{
		ID:           "create",
		Parameters:   map[string]any{"stage": "open"},
		InputMapping: map[string]string{"never_set": "amount"},
	}

	params := ec.ResolveInputs(s)
	if _, ok := params["amount"]; ok {
		t.Error("missing context key should be skipped, not injected")
	}
}

func TestResolveInputsMappingWinsOverLiteral(t *testing.T) {
	ec := NewExecutionContext()
	ec.Set("ctx_stage", "won")

	s := &Step{
		ID:           "update",
		Parameters:   map[string]any{"stage": "open"},
		InputMapping: map[string]string{"ctx_stage": "stage"},
	}

	params := ec.ResolveInputs(s)
	if params["stage"] != "won" {
		t.Errorf("stage = %v, want context value to win", params["stage"])
	}
}

func TestPublishOutputs(t *testing.T) {
	ec := NewExecutionContext()

	s := &Step{
		ID:            "create",
		OutputMapping: map[string]string{"record_id": "opp_id", "amount": "opp_amount"},
	}
	res := &StepResult{
		Success:  true,
		RecordID: "006-1",
		Data:     map[string]any{"amount": 1500},
	}
	ec.PublishOutputs(s, res)

	if v, _ := ec.Get("opp_id"); v != "006-1" {
		t.Errorf("opp_id = %v, want 006-1", v)
	}
	if v, _ := ec.Get("opp_amount"); v != 1500 {
		t.Errorf("opp_amount = %v, want 1500", v)
	}
	if v, ok := ec.Get(ResultKey("create")); !ok || v != res {
		t.Error("full result not stored under the engine key")
	}
}

func TestPublishOutputsSkipsAbsentFields(t *testing.T) {
	ec := NewExecutionContext()

	s := &Step{
		ID:            "search",
		OutputMapping: map[string]string{"nonexistent": "dest"},
	}
	ec.PublishOutputs(s, &StepResult{Success: true})

	if _, ok := ec.Get("dest"); ok {
		t.Error("absent result field should not publish")
	}
}

func TestResultKey(t *testing.T) {
	if got := ResultKey("fetch"); got != "step_fetch_result" {
		t.Errorf("ResultKey = %q", got)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	ec := NewExecutionContext()
	ec.Set("k", "v")

	snap := ec.Snapshot()
	snap["k"] = "mutated"

	if v, _ := ec.Get("k"); v != "v" {
		t.Error("snapshot mutation leaked into context")
	}
}

func TestClear(t *testing.T) {
	ec := NewExecutionContext()
	ec.Set("a", 1)
	ec.Set("b", 2)
	ec.Clear()
	if ec.Len() != 0 {
		t.Errorf("len after clear = %d", ec.Len())
	}
}
