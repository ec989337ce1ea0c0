package workflow

import (
	"fmt"
	"sync"
)

// ExecutionContext is the per-execution key-value store that carries data
// between steps. It is created empty when a task execution begins, mutated
// after each completed step, and discarded at task end. One context belongs
// to exactly one in-flight execution; the lock exists so status polling can
// snapshot it while the step loop runs.
type ExecutionContext struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewExecutionContext returns an empty context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{values: make(map[string]any)}
}

// ResultKey is the engine-internal context key holding a step's full result.
func ResultKey(stepID string) string {
	return fmt.Sprintf("step_%s_result", stepID)
}

// Get returns the value stored under key.
func (c *ExecutionContext) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Set stores value under key, overwriting any previous value.
func (c *ExecutionContext) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// ResolveInputs returns the step's literal parameters overlaid with context
// values per its input mapping (context key → parameter name). Context keys
// that are absent are skipped silently: a dependent of a skipped or failed
// step simply runs with its literals. The step's own Parameters map is
// never mutated.
func (c *ExecutionContext) ResolveInputs(step *Step) map[string]any {
	params := make(map[string]any, len(step.Parameters)+len(step.InputMapping))
	for k, v := range step.Parameters {
		params[k] = v
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for contextKey, paramKey := range step.InputMapping {
		if v, ok := c.values[contextKey]; ok {
			params[paramKey] = v
		}
	}
	return params
}

// PublishOutputs applies the step's output mapping (result field → context
// key) and stores the full result under ResultKey(step.ID).
func (c *ExecutionContext) PublishOutputs(step *Step, result *StepResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for field, contextKey := range step.OutputMapping {
		if v, ok := resultField(result, field); ok {
			c.values[contextKey] = v
		}
	}
	c.values[ResultKey(step.ID)] = result
}

// resultField looks up a field on a step result for output mapping.
func resultField(r *StepResult, name string) (any, bool) {
	switch name {
	case "record_id":
		if r.RecordID != "" {
			return r.RecordID, true
		}
	case "success":
		return r.Success, true
	}
	v, ok := r.Data[name]
	return v, ok
}

// Snapshot returns a shallow copy of the current contents.
func (c *ExecutionContext) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Clear removes all values.
func (c *ExecutionContext) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.values)
}

// Len returns the number of stored keys.
func (c *ExecutionContext) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}
