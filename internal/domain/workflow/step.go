// Package workflow defines the cross-platform task domain: steps, tasks,
// dependency scheduling, the per-execution context, and task results.
package workflow

import (
	"time"

	"github.com/enterprisearena/arena/internal/domain/platform"
)

// StepStatus represents the lifecycle state of an individual step.
//
// A step moves pending → running → {completed, failed, skipped}; a retried
// step re-enters running from failed. StepStatusReady exists for wire
// compatibility with task definitions but is never assigned by the engine.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusReady     StepStatus = "ready"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// IsTerminal returns true if the step is in a final state.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusCompleted, StepStatusFailed, StepStatusSkipped:
		return true
	}
	return false
}

// RuleType identifies a step result validation rule.
type RuleType string

const (
	// RuleSuccessRequired fails the step when the result's success flag is false.
	RuleSuccessRequired RuleType = "success_required"
	// RuleDataRequired fails the step when the result carries no data payload.
	RuleDataRequired RuleType = "data_required"
	// RuleFieldRequired fails the step when the named field is absent from
	// the result payload.
	RuleFieldRequired RuleType = "field_required"
)

// ValidationRule is one check applied to a step's platform result.
// Rules run in declaration order; the first failure fails the step.
type ValidationRule struct {
	Type  RuleType `yaml:"type" json:"type"`
	Field string   `yaml:"field,omitempty" json:"field,omitempty"`
}

// Strategy selects how a step failure affects the rest of the task.
type Strategy string

const (
	// StrategyFail aborts the whole task immediately.
	StrategyFail Strategy = "fail"
	// StrategySkip marks the step skipped and continues.
	StrategySkip Strategy = "skip"
	// StrategyRetry re-attempts the step up to MaxRetries times.
	StrategyRetry Strategy = "retry"
	// StrategyContinue leaves the step failed but continues; its output
	// mapping is not applied.
	StrategyContinue Strategy = "continue"
)

// ErrorHandling is a step's declared failure policy.
//
// OnExhausted selects the disposition once retries run out: StrategyFail
// (default, aborts the task) or StrategySkip (retry-then-skip).
type ErrorHandling struct {
	Strategy    Strategy `yaml:"strategy" json:"strategy"`
	MaxRetries  int      `yaml:"max_retries,omitempty" json:"max_retries,omitempty"`
	RetryDelay  Duration `yaml:"retry_delay,omitempty" json:"retry_delay,omitempty"`
	OnExhausted Strategy `yaml:"on_exhausted,omitempty" json:"on_exhausted,omitempty"`
}

// DefaultErrorHandling matches the reference behavior: retry up to 3 times
// with a 1s delay, then fail the task.
func DefaultErrorHandling() ErrorHandling {
	return ErrorHandling{
		Strategy:    StrategyRetry,
		MaxRetries:  3,
		RetryDelay:  Duration(time.Second),
		OnExhausted: StrategyFail,
	}
}

// Step is the atomic unit of work: one action against one platform.
//
// Parameters hold literal action arguments. InputMapping (context key →
// parameter name) overlays context values onto a copy of Parameters just
// before dispatch; missing context keys are skipped silently. OutputMapping
// (result field → context key) publishes result values after completion.
//
// Status, Result, Error, RetryCount and the timestamps are engine-owned
// execution state; definitions leave them zero.
type Step struct {
	ID              string            `yaml:"step_id" json:"step_id"`
	Name            string            `yaml:"name,omitempty" json:"name,omitempty"`
	Platform        platform.Type     `yaml:"platform" json:"platform"`
	Action          platform.Action   `yaml:"action" json:"action"`
	Parameters      map[string]any    `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	InputMapping    map[string]string `yaml:"input_mapping,omitempty" json:"input_mapping,omitempty"`
	OutputMapping   map[string]string `yaml:"output_mapping,omitempty" json:"output_mapping,omitempty"`
	ValidationRules []ValidationRule  `yaml:"validation_rules,omitempty" json:"validation_rules,omitempty"`
	ErrorHandling   ErrorHandling     `yaml:"error_handling,omitempty" json:"error_handling"`
	Timeout         Duration          `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	Status     StepStatus  `yaml:"-" json:"status"`
	Result     *StepResult `yaml:"-" json:"result,omitempty"`
	Error      string      `yaml:"-" json:"error,omitempty"`
	RetryCount int         `yaml:"-" json:"retry_count"`
	StartedAt  time.Time   `yaml:"-" json:"started_at,omitzero"`
	EndedAt    time.Time   `yaml:"-" json:"ended_at,omitzero"`
}

// StepResult is the structured outcome stored for a completed step.
type StepResult struct {
	Success       bool           `json:"success"`
	Data          map[string]any `json:"data,omitempty"`
	RecordID      string         `json:"record_id,omitempty"`
	ExecutionTime time.Duration  `json:"execution_time"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}
