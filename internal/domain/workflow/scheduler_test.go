package workflow

import (
	"errors"
	"testing"

	"github.com/enterprisearena/arena/internal/domain/platform"
)

func steps(ids ...string) []Step {
	out := make([]Step, len(ids))
	for i, id := range ids {
		out[i] = Step{ID: id, Platform: platform.TypeSalesforce, Action: platform.ActionQuery}
	}
	return out
}

func TestOrderLinearChain(t *testing.T) {
	order, err := Order(steps("a", "b", "c"), map[string][]string{
		"b": {"a"},
		"c": {"b"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestOrderPreservesDeclarationOrder(t *testing.T) {
	// No dependencies at all: declaration order is execution order.
	order, err := Order(steps("z", "m", "a"), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"z", "m", "a"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestOrderDiamondTieBreak(t *testing.T) {
	// b and c both unlock after a; c is declared first so it runs first.
	order, err := Order(steps("d", "c", "b", "a"), map[string][]string{
		"b": {"a"},
		"c": {"a"},
		"d": {"b", "c"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "c", "b", "d"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestOrderIsDeterministic(t *testing.T) {
	deps := map[string][]string{
		"s2": {"s1"}, "s3": {"s1"}, "s4": {"s1"},
		"s5": {"s2", "s3"}, "s6": {"s4"},
	}
	first, err := Order(steps("s1", "s2", "s3", "s4", "s5", "s6"), deps)
	if err != nil {
		t.Fatal(err)
	}
	for range 50 {
		again, err := Order(steps("s1", "s2", "s3", "s4", "s5", "s6"), deps)
		if err != nil {
			t.Fatal(err)
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("order changed: %v vs %v", first, again)
			}
		}
	}
}

func TestOrderDetectsCycle(t *testing.T) {
	_, err := Order(steps("a", "b"), map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle, got %v", err)
	}
}

func TestOrderDetectsSelfCycle(t *testing.T) {
	_, err := Order(steps("a"), map[string][]string{"a": {"a"}})
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle, got %v", err)
	}
}

func TestOrderRejectsUnknownDep(t *testing.T) {
	_, err := Order(steps("a"), map[string][]string{"a": {"ghost"}})
	if !errors.Is(err, ErrUnknownStepRef) {
		t.Fatalf("expected ErrUnknownStepRef, got %v", err)
	}
}

func TestOrderRejectsUnknownKey(t *testing.T) {
	_, err := Order(steps("a"), map[string][]string{"ghost": {"a"}})
	if !errors.Is(err, ErrUnknownStepRef) {
		t.Fatalf("expected ErrUnknownStepRef, got %v", err)
	}
}

func TestOrderEmpty(t *testing.T) {
	order, err := Order(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 0 {
		t.Fatalf("expected empty order, got %v", order)
	}
}
