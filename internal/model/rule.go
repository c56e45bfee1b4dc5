package model

import (
	"time"
)

// MatchType selects how a rule pattern is compared against a label.
type MatchType string

// Match type constants.
const (
	MatchExact    MatchType = "EXACT"
	MatchContains MatchType = "CONTAINS"
	MatchRegex    MatchType = "REGEX"
)

// IsValid reports whether m is a known match type.
func (m MatchType) IsValid() bool {
	switch m {
	case MatchExact, MatchContains, MatchRegex:
		return true
	}
	return false
}

// Scope restricts a rule or a query to expense rows, income rows, or both.
type Scope string

// Scope constants.
const (
	ScopeExpense Scope = "EXPENSE"
	ScopeIncome  Scope = "INCOME"
	ScopeBoth    Scope = "BOTH"
)

// IsValid reports whether s is a known scope.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeExpense, ScopeIncome, ScopeBoth:
		return true
	}
	return false
}

// Covers reports whether a rule with scope s applies to a request for scope
// requested. A BOTH rule applies to every request. A BOTH request accepts
// every rule: records always request EXPENSE or INCOME through
// RecordKind.Scope, so only the kind-agnostic rule tester
// ("ledger rules test --scope all") asks with BOTH, and there the question is
// which rule would win for either kind.
func (s Scope) Covers(requested Scope) bool {
	if s == ScopeBoth || requested == ScopeBoth {
		return true
	}
	return s == requested
}

// Includes reports whether a record of the given kind falls inside query scope s.
func (s Scope) Includes(kind RecordKind) bool {
	switch s {
	case ScopeExpense:
		return kind == KindExpense
	case ScopeIncome:
		return kind == KindIncome
	default:
		return true
	}
}

// NormalizationRule maps labels matching FromPattern onto ToCategory.
type NormalizationRule struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	FromPattern string    `json:"from_pattern"`
	MatchType   MatchType `json:"match_type"`
	Scope       Scope     `json:"scope"`
	ToCategory  string    `json:"to_category"`
	Priority    int       `json:"priority"`
	Active      bool      `json:"active"`
}
