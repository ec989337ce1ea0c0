package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "arena"

// Metrics holds all arena metric instruments.
type Metrics struct {
	TasksStarted   metric.Int64Counter
	TasksCompleted metric.Int64Counter
	TasksFailed    metric.Int64Counter
	StepRetries    metric.Int64Counter
	TaskDuration   metric.Float64Histogram
	StepDuration   metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TasksStarted, err = meter.Int64Counter("arena.tasks.started",
		metric.WithDescription("Number of task executions started"))
	if err != nil {
		return nil, err
	}

	m.TasksCompleted, err = meter.Int64Counter("arena.tasks.completed",
		metric.WithDescription("Number of task executions completed"))
	if err != nil {
		return nil, err
	}

	m.TasksFailed, err = meter.Int64Counter("arena.tasks.failed",
		metric.WithDescription("Number of task executions failed"))
	if err != nil {
		return nil, err
	}

	m.StepRetries, err = meter.Int64Counter("arena.steps.retries",
		metric.WithDescription("Number of step retry attempts"))
	if err != nil {
		return nil, err
	}

	m.TaskDuration, err = meter.Float64Histogram("arena.task.duration_seconds",
		metric.WithDescription("Task execution duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.StepDuration, err = meter.Float64Histogram("arena.step.duration_seconds",
		metric.WithDescription("Step execution duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
