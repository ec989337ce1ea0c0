package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/enterprisearena/arena/internal/domain"
	"github.com/enterprisearena/arena/internal/domain/workflow"
)

func TestLibraryBuiltins(t *testing.T) {
	lib, err := NewLibrary("", testLogger())
	if err != nil {
		t.Fatal(err)
	}

	tasks := lib.List()
	if len(tasks) == 0 {
		t.Fatal("expected builtin tasks")
	}

	got, err := lib.Get("invoice_to_opportunity")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Steps) == 0 {
		t.Error("expected steps on builtin task")
	}
}

func TestLibraryGetMissing(t *testing.T) {
	lib, err := NewLibrary("", testLogger())
	if err != nil {
		t.Fatal(err)
	}

	_, err = lib.Get("no-such-task")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLibraryGetReturnsCopy(t *testing.T) {
	lib, err := NewLibrary("", testLogger())
	if err != nil {
		t.Fatal(err)
	}

	first, err := lib.Get("invoice_to_opportunity")
	if err != nil {
		t.Fatal(err)
	}
	first.Steps[0].Status = workflow.StepStatusCompleted

	second, err := lib.Get("invoice_to_opportunity")
	if err != nil {
		t.Fatal(err)
	}
	if second.Steps[0].Status == workflow.StepStatusCompleted {
		t.Error("library returned shared step state")
	}
}

func TestLibraryLoadsDirectory(t *testing.T) {
	dir := t.TempDir()
	def := `
task_id: custom_task
name: Custom
platforms: [salesforce]
steps:
  - step_id: only
    platform: salesforce
    action: query
    parameters:
      query: "SELECT * FROM account"
`
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(def), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := NewLibrary(dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	got, err := lib.Get("custom_task")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Custom" {
		t.Errorf("name = %q, want Custom", got.Name)
	}
}
