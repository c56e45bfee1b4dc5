package engine

import (
	"sort"

	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/pattern"
)

// Match is the outcome of a successful rule lookup.
type Match struct {
	RuleID   string
	Category string
}

type compiledRule struct {
	pred pattern.Predicate
	rule model.NormalizationRule
}

// RuleSet is an immutable, precedence-ordered snapshot of the active rules.
// It is safe for concurrent use.
type RuleSet struct {
	rules []compiledRule
}

// NewRuleSet compiles the active rules and orders them by precedence.
// Inactive rules are dropped; rules whose pattern cannot be compiled are kept
// but never match.
func NewRuleSet(rules []model.NormalizationRule) *RuleSet {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if !r.Active {
			continue
		}
		pred, err := pattern.Compile(r.MatchType, r.FromPattern)
		if err != nil {
			common.LogDebug("Rule will never match", common.Fields{
				"rule_id": r.ID,
				"reason":  err.Error(),
			})
		}
		compiled = append(compiled, compiledRule{rule: r, pred: pred})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return Precedes(compiled[i].rule, compiled[j].rule)
	})

	return &RuleSet{rules: compiled}
}

// Precedes reports whether rule a outranks rule b: higher priority first, then
// the more recently updated rule, then the lower identifier.
func Precedes(a, b model.NormalizationRule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID < b.ID
}

// Len returns the number of active rules in the set.
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Rules returns the active rules in precedence order.
func (s *RuleSet) Rules() []model.NormalizationRule {
	if s == nil {
		return nil
	}
	out := make([]model.NormalizationRule, len(s.rules))
	for i, c := range s.rules {
		out[i] = c.rule
	}
	return out
}

// Resolve returns the highest-precedence rule in scope that matches label.
func (s *RuleSet) Resolve(label string, scope model.Scope) (Match, bool) {
	if s == nil || label == "" {
		return Match{}, false
	}

	normalized := pattern.Normalize(label)
	if normalized == "" {
		return Match{}, false
	}

	for _, c := range s.rules {
		if !c.rule.Scope.Covers(scope) {
			continue
		}
		if c.pred.Match(label, normalized) {
			return Match{RuleID: c.rule.ID, Category: c.rule.ToCategory}, true
		}
	}

	return Match{}, false
}

// ResolveCategoryByRules selects the winning rule for label out of rules,
// supplied active or inactive and in any order.
func ResolveCategoryByRules(rules []model.NormalizationRule, label string, scope model.Scope) (Match, bool) {
	return NewRuleSet(rules).Resolve(label, scope)
}
