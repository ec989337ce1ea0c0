package workflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a single Task definition from a YAML file.
func LoadFromFile(path string) (*Task, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		return nil, fmt.Errorf("read task file %s: %w", path, err)
	}

	var t Task
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse task file %s: %w", path, err)
	}

	applyDefaults(&t)

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validate task file %s: %w", path, err)
	}

	return &t, nil
}

// LoadFromDirectory reads all .yaml/.yml task definitions from a directory.
// A missing directory returns an empty slice, not an error.
func LoadFromDirectory(dir string) ([]Task, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read task directory %s: %w", dir, err)
	}

	var tasks []Task
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		t, err := LoadFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}

	return tasks, nil
}

// applyDefaults fills zero-value execution policy fields on a loaded task.
func applyDefaults(t *Task) {
	t.Status = StatusPending
	for i := range t.Steps {
		s := &t.Steps[i]
		s.Status = StepStatusPending
		if s.ErrorHandling.Strategy == "" {
			s.ErrorHandling = DefaultErrorHandling()
		}
		if s.ErrorHandling.Strategy == StrategyRetry && s.ErrorHandling.OnExhausted == "" {
			s.ErrorHandling.OnExhausted = StrategyFail
		}
	}
}
