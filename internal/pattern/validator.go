package pattern

import (
	"fmt"
	"strings"

	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/model"
)

// RuleValidationError describes why a rule was rejected at authoring time.
type RuleValidationError struct {
	Err    error
	Field  string
	Reason string
}

func (e *RuleValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rule field %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("rule field %s: %s", e.Field, e.Reason)
}

// Unwrap lets callers test for common.ErrInvalidRule.
func (e *RuleValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{common.ErrInvalidRule, e.Err}
	}
	return []error{common.ErrInvalidRule}
}

// ValidateRule checks a rule before it is stored.
func ValidateRule(rule Rule) error {
	if strings.TrimSpace(rule.FromPattern) == "" {
		return &RuleValidationError{Field: "from_pattern", Reason: "must not be empty"}
	}
	if strings.TrimSpace(rule.ToCategory) == "" {
		return &RuleValidationError{Field: "to_category", Reason: "must not be empty"}
	}
	if !rule.MatchType.IsValid() {
		return &RuleValidationError{Field: "match_type", Reason: fmt.Sprintf("unknown match type %q", rule.MatchType)}
	}
	if !rule.Scope.IsValid() {
		return &RuleValidationError{Field: "scope", Reason: fmt.Sprintf("unknown scope %q", rule.Scope)}
	}

	if rule.MatchType == model.MatchRegex {
		if _, err := CompileRegex(rule.FromPattern); err != nil {
			return &RuleValidationError{Field: "from_pattern", Reason: "cannot be compiled", Err: err}
		}
	}

	return nil
}
