// Package history defines the execution-history store port.
package history

import (
	"context"

	"github.com/enterprisearena/arena/internal/domain/workflow"
)

// Store records past task results for introspection. History is diagnostic:
// the engine does not read it back during execution.
type Store interface {
	// Save appends a finished task result.
	Save(ctx context.Context, result *workflow.TaskResult) error
	// Get returns the result for an execution id, or domain.ErrNotFound.
	Get(ctx context.Context, executionID string) (*workflow.TaskResult, error)
	// List returns up to limit most recent results, newest first.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]workflow.TaskResult, error)
	// Clear removes all recorded results.
	Clear(ctx context.Context) error
}
