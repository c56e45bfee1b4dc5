// Package pattern provides text normalization and the predicates used to match
// normalization rule patterns against ledger labels.
package pattern

import "github.com/Veraticus/fleet-ledger/internal/model"

// Size limits applied to regular expression matching.
const (
	MaxRegexPatternLength = 200
	MaxRegexTextLength    = 500
)

// Predicate reports whether a rule pattern matches a label. The normalized form
// of the label is used by EXACT and CONTAINS, the raw form by REGEX.
type Predicate interface {
	Match(raw, normalized string) bool
}

// Rule is an alias to the model.NormalizationRule type for convenience.
type Rule = model.NormalizationRule
