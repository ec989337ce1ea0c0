// Package memory provides an in-memory history store for runs without
// a PostgreSQL backend.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/enterprisearena/arena/internal/domain"
	"github.com/enterprisearena/arena/internal/domain/workflow"
)

// History implements history.Store with a bounded in-memory ring.
// When the limit is reached the oldest entry is evicted.
type History struct {
	mu      sync.RWMutex
	limit   int
	order   []string
	results map[string]*workflow.TaskResult
}

// NewHistory creates a History keeping at most limit entries.
// limit <= 0 means unbounded.
func NewHistory(limit int) *History {
	return &History{
		limit:   limit,
		results: make(map[string]*workflow.TaskResult),
	}
}

func (h *History) Save(_ context.Context, result *workflow.TaskResult) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.results[result.ExecutionID]; !exists {
		h.order = append(h.order, result.ExecutionID)
		if h.limit > 0 && len(h.order) > h.limit {
			oldest := h.order[0]
			h.order = h.order[1:]
			delete(h.results, oldest)
		}
	}
	cp := *result
	h.results[result.ExecutionID] = &cp
	return nil
}

func (h *History) Get(_ context.Context, executionID string) (*workflow.TaskResult, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result, ok := h.results[executionID]
	if !ok {
		return nil, fmt.Errorf("get result %s: %w", executionID, domain.ErrNotFound)
	}
	cp := *result
	return &cp, nil
}

func (h *History) List(_ context.Context, limit int) ([]workflow.TaskResult, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.order)
	if limit > 0 && limit < n {
		n = limit
	}

	results := make([]workflow.TaskResult, 0, n)
	for i := len(h.order) - 1; i >= 0 && len(results) < n; i-- {
		results = append(results, *h.results[h.order[i]])
	}
	return results, nil
}

func (h *History) Clear(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.order = nil
	h.results = make(map[string]*workflow.TaskResult)
	return nil
}
