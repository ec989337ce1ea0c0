package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "arena"

// StartTaskSpan starts a span for a task execution.
func StartTaskSpan(ctx context.Context, executionID, taskID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "task",
		trace.WithAttributes(
			attribute.String("execution.id", executionID),
			attribute.String("task.id", taskID),
		),
	)
}

// StartStepSpan starts a span for a step within a task execution.
func StartStepSpan(ctx context.Context, stepID, platform, action string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "step",
		trace.WithAttributes(
			attribute.String("step.id", stepID),
			attribute.String("step.platform", platform),
			attribute.String("step.action", action),
		),
	)
}
