package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/enterprisearena/arena/internal/domain/platform"
)

var (
	ErrTaskIDRequired   = errors.New("task_id is required")
	ErrStepIDRequired   = errors.New("step_id is required")
	ErrDuplicateStepID  = errors.New("duplicate step_id")
	ErrInvalidPlatform  = errors.New("invalid platform")
	ErrInvalidAction    = errors.New("invalid action")
	ErrUndeclaredTarget = errors.New("step targets a platform not declared on the task")
)

// Status represents the lifecycle state of a task execution.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Task is one cross-platform workflow: an ordered list of steps plus a
// dependency graph. Declaration order is not execution order; the scheduler
// produces the execution order from Dependencies, breaking ties by
// declaration order.
//
// Dependencies maps step_id → the step_ids that must reach a terminal state
// before it may start. Every id appearing as a key or value must name a
// declared step, and the relation must be acyclic; both are checked before
// any step executes.
type Task struct {
	ID           string              `yaml:"task_id" json:"task_id"`
	Name         string              `yaml:"name,omitempty" json:"name,omitempty"`
	Description  string              `yaml:"description,omitempty" json:"description,omitempty"`
	Category     string              `yaml:"category,omitempty" json:"category,omitempty"`
	Complexity   string              `yaml:"complexity,omitempty" json:"complexity,omitempty"`
	Platforms    []platform.Type     `yaml:"platforms,omitempty" json:"platforms,omitempty"`
	Steps        []Step              `yaml:"steps" json:"steps"`
	Dependencies map[string][]string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Timeout      Duration            `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	Status    Status    `yaml:"-" json:"status"`
	StartedAt time.Time `yaml:"-" json:"started_at,omitzero"`
	EndedAt   time.Time `yaml:"-" json:"ended_at,omitzero"`
}

// Validate checks the task definition for structural correctness: ids,
// platform/action enums, declared-platform coverage, and the dependency
// graph (unknown references and cycles).
func (t *Task) Validate() error {
	if t.ID == "" {
		return ErrTaskIDRequired
	}
	if len(t.Steps) == 0 && len(t.Dependencies) > 0 {
		return fmt.Errorf("task %s: dependencies without steps: %w", t.ID, ErrUnknownStepRef)
	}

	declared := make(map[platform.Type]bool, len(t.Platforms))
	for _, p := range t.Platforms {
		if !p.IsValid() {
			return fmt.Errorf("task %s: platform %q: %w", t.ID, p, ErrInvalidPlatform)
		}
		declared[p] = true
	}

	seen := make(map[string]bool, len(t.Steps))
	for i := range t.Steps {
		s := &t.Steps[i]
		if s.ID == "" {
			return fmt.Errorf("task %s: step %d: %w", t.ID, i, ErrStepIDRequired)
		}
		if seen[s.ID] {
			return fmt.Errorf("task %s: step %q: %w", t.ID, s.ID, ErrDuplicateStepID)
		}
		seen[s.ID] = true
		if !s.Platform.IsValid() {
			return fmt.Errorf("task %s: step %q: platform %q: %w", t.ID, s.ID, s.Platform, ErrInvalidPlatform)
		}
		if !s.Action.IsValid() {
			return fmt.Errorf("task %s: step %q: action %q: %w", t.ID, s.ID, s.Action, ErrInvalidAction)
		}
		if len(declared) > 0 && !declared[s.Platform] {
			return fmt.Errorf("task %s: step %q targets %q: %w", t.ID, s.ID, s.Platform, ErrUndeclaredTarget)
		}
		switch s.ErrorHandling.Strategy {
		case "", StrategyFail, StrategySkip, StrategyRetry, StrategyContinue:
		default:
			return fmt.Errorf("task %s: step %q: unknown error strategy %q", t.ID, s.ID, s.ErrorHandling.Strategy)
		}
	}

	// Order runs the reference check and Kahn's completeness check, so a
	// cyclic definition is rejected here and not first at execution time.
	_, err := Order(t.Steps, t.Dependencies)
	return err
}

// StepByID returns the step with the given id, or nil.
func (t *Task) StepByID(id string) *Step {
	for i := range t.Steps {
		if t.Steps[i].ID == id {
			return &t.Steps[i]
		}
	}
	return nil
}
