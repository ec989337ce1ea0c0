package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enterprisearena/arena/internal/domain"
	"github.com/enterprisearena/arena/internal/domain/workflow"
)

// Store implements history.Store using PostgreSQL. Scalar columns carry
// the queryable outcome fields; the full TaskResult is kept as JSONB so
// step results and the final context survive round trips intact.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Save(ctx context.Context, result *workflow.TaskResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO task_results
		   (execution_id, task_id, name, status, error, execution_ms,
		    steps_completed, steps_failed, steps_skipped, total_steps,
		    result, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (execution_id) DO UPDATE SET
		   status = EXCLUDED.status,
		   error = EXCLUDED.error,
		   execution_ms = EXCLUDED.execution_ms,
		   steps_completed = EXCLUDED.steps_completed,
		   steps_failed = EXCLUDED.steps_failed,
		   steps_skipped = EXCLUDED.steps_skipped,
		   result = EXCLUDED.result,
		   ended_at = EXCLUDED.ended_at`,
		result.ExecutionID, result.TaskID, result.Name, result.Status,
		result.Error, result.ExecutionTime.Milliseconds(),
		result.StepsCompleted, result.StepsFailed, result.StepsSkipped,
		result.TotalSteps, payload, result.StartedAt, nullTime(result.EndedAt))
	if err != nil {
		return fmt.Errorf("save result %s: %w", result.ExecutionID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, executionID string) (*workflow.TaskResult, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM task_results WHERE execution_id = $1`, executionID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get result %s: %w", executionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get result %s: %w", executionID, err)
	}

	var result workflow.TaskResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result %s: %w", executionID, err)
	}
	return &result, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]workflow.TaskResult, error) {
	query := `SELECT result FROM task_results ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []workflow.TaskResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		var result workflow.TaskResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM task_results`); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

// nullTime converts a zero time to nil for nullable DB columns.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
