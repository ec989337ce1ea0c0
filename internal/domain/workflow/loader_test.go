package workflow

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleTask = `
task_id: sync_invoice
name: Sync Invoice
platforms: [quickbooks, salesforce]
timeout: 2m
steps:
  - step_id: fetch
    platform: quickbooks
    action: query
    parameters:
      query: "SELECT * FROM invoice"
    output_mapping:
      total_amount: invoice_amount
  - step_id: create
    platform: salesforce
    action: create
    parameters:
      object_type: opportunity
    input_mapping:
      invoice_amount: amount
    error_handling:
      strategy: retry
      max_retries: 2
      retry_delay: 500ms
dependencies:
  create: [fetch]
`

func writeTask(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeTask(t, t.TempDir(), "task.yaml", sampleTask)

	task, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if task.ID != "sync_invoice" {
		t.Errorf("task_id = %q", task.ID)
	}
	if task.Timeout != Duration(2*time.Minute) {
		t.Errorf("timeout = %v", task.Timeout)
	}
	if len(task.Steps) != 2 {
		t.Fatalf("steps = %d", len(task.Steps))
	}

	fetch := task.Steps[0]
	if fetch.Status != StepStatusPending {
		t.Errorf("status = %s, want pending", fetch.Status)
	}
	if fetch.OutputMapping["total_amount"] != "invoice_amount" {
		t.Errorf("output_mapping = %v", fetch.OutputMapping)
	}
	// Defaulted error handling on a step that declared none.
	if fetch.ErrorHandling.Strategy != StrategyRetry || fetch.ErrorHandling.MaxRetries != 3 {
		t.Errorf("default error handling = %+v", fetch.ErrorHandling)
	}

	create := task.Steps[1]
	if create.ErrorHandling.MaxRetries != 2 || create.ErrorHandling.RetryDelay != Duration(500*time.Millisecond) {
		t.Errorf("error handling = %+v", create.ErrorHandling)
	}
	if create.ErrorHandling.OnExhausted != StrategyFail {
		t.Errorf("on_exhausted = %q, want fail", create.ErrorHandling.OnExhausted)
	}

	if deps := task.Dependencies["create"]; len(deps) != 1 || deps[0] != "fetch" {
		t.Errorf("dependencies = %v", task.Dependencies)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	bad := `
task_id: broken
steps:
  - step_id: a
    platform: oracle
    action: query
`
	path := writeTask(t, t.TempDir(), "bad.yaml", bad)
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadFromFileCyclic(t *testing.T) {
	cyclic := `
task_id: cyclic
steps:
  - step_id: a
    platform: salesforce
    action: query
  - step_id: b
    platform: salesforce
    action: query
dependencies:
  a: [b]
  b: [a]
`
	path := writeTask(t, t.TempDir(), "cyclic.yaml", cyclic)
	if _, err := LoadFromFile(path); !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle, got %v", err)
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTask(t, dir, "one.yaml", sampleTask)
	writeTask(t, dir, "ignore.txt", "not yaml")

	tasks, err := LoadFromDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
}

func TestLoadFromDirectoryMissing(t *testing.T) {
	tasks, err := LoadFromDirectory("/nonexistent/tasks")
	if err != nil {
		t.Fatal(err)
	}
	if tasks != nil {
		t.Errorf("expected nil, got %v", tasks)
	}
}
