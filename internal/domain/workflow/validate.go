package workflow

import (
	"errors"
	"fmt"

	"github.com/enterprisearena/arena/internal/domain/platform"
)

// ErrValidationFailed is the sentinel wrapped by every validation-rule failure.
var ErrValidationFailed = errors.New("step result validation failed")

// CheckResult applies the step's validation rules to a platform result in
// declaration order and returns the first failure.
func CheckResult(step *Step, res *platform.Result) error {
	for _, rule := range step.ValidationRules {
		switch rule.Type {
		case RuleSuccessRequired:
			if !res.Success {
				return fmt.Errorf("step %q: success required: %w", step.ID, ErrValidationFailed)
			}
		case RuleDataRequired:
			if len(res.Data) == 0 && len(res.Records) == 0 {
				return fmt.Errorf("step %q: data required: %w", step.ID, ErrValidationFailed)
			}
		case RuleFieldRequired:
			if _, ok := res.Field(rule.Field); !ok {
				return fmt.Errorf("step %q: field %q required: %w", step.ID, rule.Field, ErrValidationFailed)
			}
		default:
			return fmt.Errorf("step %q: unknown validation rule %q: %w", step.ID, rule.Type, ErrValidationFailed)
		}
	}
	return nil
}
