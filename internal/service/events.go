package service

// Event types published on task and step lifecycle transitions.
const (
	EventTaskStarted   = "task.started"
	EventTaskCompleted = "task.completed"
	EventTaskFailed    = "task.failed"
	EventTaskCancelled = "task.cancelled"
	EventStepStatus    = "step.status"
)

// TaskEvent is the payload for task lifecycle events.
type TaskEvent struct {
	ExecutionID    string  `json:"execution_id"`
	TaskID         string  `json:"task_id"`
	Status         string  `json:"status"`
	Error          string  `json:"error,omitempty"`
	StepsCompleted int     `json:"steps_completed,omitempty"`
	StepsFailed    int     `json:"steps_failed,omitempty"`
	StepsSkipped   int     `json:"steps_skipped,omitempty"`
	Progress       float64 `json:"progress"`
}

// StepEvent is the payload for step status events.
type StepEvent struct {
	ExecutionID string `json:"execution_id"`
	TaskID      string `json:"task_id"`
	StepID      string `json:"step_id"`
	Platform    string `json:"platform"`
	Action      string `json:"action"`
	Status      string `json:"status"`
	RetryCount  int    `json:"retry_count,omitempty"`
	Error       string `json:"error,omitempty"`
}
