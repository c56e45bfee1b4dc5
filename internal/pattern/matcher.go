package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/fleet-ledger/internal/model"
)

type exactPredicate struct {
	pattern string
}

func (p exactPredicate) Match(_, normalized string) bool {
	return p.pattern != "" && normalized == p.pattern
}

type containsPredicate struct {
	pattern string
}

func (p containsPredicate) Match(_, normalized string) bool {
	return p.pattern != "" && strings.Contains(normalized, p.pattern)
}

type regexPredicate struct {
	re *regexp.Regexp
}

func (p regexPredicate) Match(raw, _ string) bool {
	return matchCompiled(p.re, raw)
}

// never matches anything; used for rules whose pattern cannot be compiled.
type never struct{}

func (never) Match(_, _ string) bool { return false }

// Compile builds the predicate for a rule. An unusable pattern yields a
// predicate that never matches, together with the reason.
func Compile(matchType model.MatchType, pattern string) (Predicate, error) {
	switch matchType {
	case model.MatchExact:
		return exactPredicate{pattern: Normalize(pattern)}, nil
	case model.MatchContains:
		return containsPredicate{pattern: Normalize(pattern)}, nil
	case model.MatchRegex:
		re, err := CompileRegex(pattern)
		if err != nil {
			return never{}, err
		}
		return regexPredicate{re: re}, nil
	default:
		return never{}, fmt.Errorf("unknown match type %q", matchType)
	}
}

// CompileRegex compiles a rule pattern case-insensitively, enforcing the
// pattern length cap.
func CompileRegex(pattern string) (*regexp.Regexp, error) {
	if utf8.RuneCountInString(pattern) > MaxRegexPatternLength {
		return nil, fmt.Errorf("pattern exceeds %d characters", MaxRegexPatternLength)
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression: %w", err)
	}
	return re, nil
}

func matchCompiled(re *regexp.Regexp, text string) bool {
	if re == nil || utf8.RuneCountInString(text) > MaxRegexTextLength {
		return false
	}
	return re.MatchString(text)
}

// MatchExact reports whether pattern and text are equal after normalization.
func MatchExact(pattern, text string) bool {
	return exactPredicate{pattern: Normalize(pattern)}.Match(text, Normalize(text))
}

// MatchContains reports whether the normalized text contains the normalized pattern.
func MatchContains(pattern, text string) bool {
	return containsPredicate{pattern: Normalize(pattern)}.Match(text, Normalize(text))
}

// MatchRegex tests pattern against the raw text. Compilation failures and size
// limit violations are reported as no match.
func MatchRegex(pattern, text string) bool {
	re, err := CompileRegex(pattern)
	if err != nil {
		return false
	}
	return matchCompiled(re, text)
}

// Matches evaluates a single pattern of the given type against text.
func Matches(matchType model.MatchType, pattern, text string) bool {
	pred, err := Compile(matchType, pattern)
	if err != nil {
		return false
	}
	return pred.Match(text, Normalize(text))
}
