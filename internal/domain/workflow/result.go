package workflow

import "time"

// TaskResult is the single object callers receive for any task execution,
// whether it succeeded, partially succeeded or aborted. Status plus the
// per-category counts make the outcome machine-checkable; there is no
// silent partial success.
type TaskResult struct {
	ExecutionID    string                 `json:"execution_id"`
	TaskID         string                 `json:"task_id"`
	Name           string                 `json:"name,omitempty"`
	Status         Status                 `json:"status"`
	Error          string                 `json:"error,omitempty"`
	ExecutionTime  time.Duration          `json:"execution_time"`
	StepsCompleted int                    `json:"steps_completed"`
	StepsFailed    int                    `json:"steps_failed"`
	StepsSkipped   int                    `json:"steps_skipped"`
	TotalSteps     int                    `json:"total_steps"`
	Results        map[string]*StepResult `json:"results,omitempty"`
	Context        map[string]any         `json:"context,omitempty"`
	StartedAt      time.Time              `json:"started_at,omitzero"`
	EndedAt        time.Time              `json:"ended_at,omitzero"`
}

// CountSteps tallies the per-category step counts from current step state.
func CountSteps(steps []Step) (completed, failed, skipped int) {
	for i := range steps {
		switch steps[i].Status {
		case StepStatusCompleted:
			completed++
		case StepStatusFailed:
			failed++
		case StepStatusSkipped:
			skipped++
		}
	}
	return completed, failed, skipped
}

// ExecutionStatus is the polling view of an in-flight or finished execution.
// Progress is (completed+skipped)/total, 1.0 for an empty task.
type ExecutionStatus struct {
	ExecutionID string    `json:"execution_id"`
	TaskID      string    `json:"task_id"`
	Status      Status    `json:"status"`
	CurrentStep string    `json:"current_step,omitempty"`
	Progress    float64   `json:"progress"`
	StartedAt   time.Time `json:"started_at,omitzero"`
}
