package service

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/enterprisearena/arena/internal/domain"
	"github.com/enterprisearena/arena/internal/domain/workflow"
)

// Library holds the known task definitions: the builtin presets plus any
// YAML definitions loaded from the configured task directory. Definitions
// are templates; execution always works on a copy.
type Library struct {
	tasks map[string]workflow.Task
	order []string
}

// NewLibrary creates a Library with the builtin tasks and, when dir is
// non-empty, the YAML definitions found there. Directory definitions
// override builtins with the same id.
func NewLibrary(dir string, log *slog.Logger) (*Library, error) {
	l := &Library{tasks: make(map[string]workflow.Task)}

	for _, t := range workflow.BuiltinTasks() {
		l.add(t)
	}

	if dir != "" {
		loaded, err := workflow.LoadFromDirectory(dir)
		if err != nil {
			return nil, fmt.Errorf("load task library: %w", err)
		}
		for _, t := range loaded {
			if _, exists := l.tasks[t.ID]; exists {
				log.Info("task definition overridden", "task_id", t.ID, "dir", dir)
			}
			l.add(t)
		}
		log.Info("task library loaded", "dir", dir, "loaded", len(loaded), "total", len(l.tasks))
	}

	return l, nil
}

func (l *Library) add(t workflow.Task) {
	if _, exists := l.tasks[t.ID]; !exists {
		l.order = append(l.order, t.ID)
	}
	l.tasks[t.ID] = t
}

// Get returns a copy of the task definition with the given id.
// The copy has its own step slice so executions never share state.
func (l *Library) Get(id string) (*workflow.Task, error) {
	t, ok := l.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
	}
	cp := t
	cp.Steps = make([]workflow.Step, len(t.Steps))
	copy(cp.Steps, t.Steps)
	return &cp, nil
}

// List returns all task definitions sorted by id.
func (l *Library) List() []workflow.Task {
	ids := make([]string, len(l.order))
	copy(ids, l.order)
	sort.Strings(ids)

	tasks := make([]workflow.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, l.tasks[id])
	}
	return tasks
}
