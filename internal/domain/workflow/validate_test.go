package workflow

import (
	"errors"
	"strings"
	"testing"

	"github.com/enterprisearena/arena/internal/domain/platform"
)

func TestCheckResultSuccessRequired(t *testing.T) {
	s := &Step{ID: "s", ValidationRules: []ValidationRule{{Type: RuleSuccessRequired}}}

	if err := CheckResult(s, &platform.Result{Success: true}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckResult(s, &platform.Result{Success: false}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestCheckResultDataRequired(t *testing.T) {
	s := &Step{ID: "s", ValidationRules: []ValidationRule{{Type: RuleDataRequired}}}

	if err := CheckResult(s, &platform.Result{Success: true}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed for empty result, got %v", err)
	}
	if err := CheckResult(s, &platform.Result{Data: map[string]any{"k": 1}}); err != nil {
		t.Errorf("unexpected error with data: %v", err)
	}
	if err := CheckResult(s, &platform.Result{Records: []platform.Record{{"id": "1"}}}); err != nil {
		t.Errorf("unexpected error with records: %v", err)
	}
}

func TestCheckResultFieldRequired(t *testing.T) {
	s := &Step{ID: "s", ValidationRules: []ValidationRule{{Type: RuleFieldRequired, Field: "amount"}}}

	if err := CheckResult(s, &platform.Result{Data: map[string]any{"amount": 10}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckResult(s, &platform.Result{Data: map[string]any{"other": 1}}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestCheckResultRulesRunInOrder(t *testing.T) {
	s := &Step{ID: "s", ValidationRules: []ValidationRule{
		{Type: RuleSuccessRequired},
		{Type: RuleFieldRequired, Field: "amount"},
	}}

	err := CheckResult(s, &platform.Result{Success: false})
	if err == nil || !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected failure, got %v", err)
	}
	// First rule's message, not the second's.
	if got := err.Error(); got == "" || !strings.Contains(got, "success required") {
		t.Errorf("expected first-rule failure, got %q", got)
	}
}

func TestCheckResultUnknownRule(t *testing.T) {
	s := &Step{ID: "s", ValidationRules: []ValidationRule{{Type: "made_up"}}}
	if err := CheckResult(s, &platform.Result{Success: true}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestCheckResultNoRules(t *testing.T) {
	s := &Step{ID: "s"}
	if err := CheckResult(s, &platform.Result{Success: false}); err != nil {
		t.Errorf("no rules should pass, got %v", err)
	}
}
