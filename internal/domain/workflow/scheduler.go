package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrDependencyCycle is returned when the dependency graph contains a cycle.
	ErrDependencyCycle = errors.New("dependency cycle detected")
	// ErrUnknownStepRef is returned when a dependency names a step that does
	// not exist in the task.
	ErrUnknownStepRef = errors.New("dependency references unknown step")
)

// ValidateDependencies checks that every id appearing in deps, as key or
// value, names a declared step. It runs before any step executes so a bad
// reference fails the task with zero side effects.
func ValidateDependencies(steps []Step, deps map[string][]string) error {
	known := make(map[string]bool, len(steps))
	for i := range steps {
		known[steps[i].ID] = true
	}

	for stepID, list := range deps {
		if !known[stepID] {
			return fmt.Errorf("step %q: %w", stepID, ErrUnknownStepRef)
		}
		for _, dep := range list {
			if !known[dep] {
				return fmt.Errorf("step %q depends on %q: %w", stepID, dep, ErrUnknownStepRef)
			}
		}
	}
	return nil
}

// Order produces a dependency-respecting execution order using Kahn's
// algorithm. Among steps whose dependencies are all satisfied it preserves
// declaration order (FIFO queue seeded in declaration order), so the result
// is deterministic for a given task, which benchmark repeatability requires.
//
// Order validates references first and returns ErrUnknownStepRef or
// ErrDependencyCycle without a partial result. Ordering is purely
// topological: it does not consider step status, so dependents of skipped
// or failed steps still appear after their dependencies.
func Order(steps []Step, deps map[string][]string) ([]string, error) {
	if err := ValidateDependencies(steps, deps); err != nil {
		return nil, err
	}

	// Build edges by walking steps in declaration order, not by ranging over
	// the deps map: map iteration order would leak into the adjacency lists
	// and break run-to-run determinism.
	inDegree := make(map[string]int, len(steps))
	adj := make(map[string][]string, len(steps))
	for i := range steps {
		inDegree[steps[i].ID] = 0
	}
	for i := range steps {
		id := steps[i].ID
		for _, dep := range deps[id] {
			adj[dep] = append(adj[dep], id)
			inDegree[id]++
		}
	}

	queue := make([]string, 0, len(steps))
	for i := range steps {
		if inDegree[steps[i].ID] == 0 {
			queue = append(queue, steps[i].ID)
		}
	}

	order := make([]string, 0, len(steps))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dependent := range adj[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(steps) {
		return nil, fmt.Errorf("%d of %d steps unreachable: %w", len(steps)-len(order), len(steps), ErrDependencyCycle)
	}
	return order, nil
}
