package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/pattern"
)

// RulesFile is the on-disk layout of a normalization rules file:
//
//	rules:
//	  - id: fuel
//	    from: posto
//	    to: Combustível
//	    match: contains
//	    scope: expense
//	    priority: 10
type RulesFile struct {
	Rules []RuleEntry `yaml:"rules"`
}

// RuleEntry is one rule as written in a rules file. Match defaults to
// CONTAINS, scope to BOTH and active to true.
type RuleEntry struct {
	Active   *bool  `yaml:"active"`
	ID       string `yaml:"id"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Match    string `yaml:"match"`
	Scope    string `yaml:"scope"`
	Priority int    `yaml:"priority"`
}

// Rule converts the entry into a normalization rule.
func (e RuleEntry) Rule() model.NormalizationRule {
	rule := model.NormalizationRule{
		ID:          strings.TrimSpace(e.ID),
		FromPattern: e.From,
		ToCategory:  strings.TrimSpace(e.To),
		MatchType:   model.MatchType(strings.ToUpper(strings.TrimSpace(e.Match))),
		Scope:       model.Scope(strings.ToUpper(strings.TrimSpace(e.Scope))),
		Priority:    e.Priority,
		Active:      true,
	}
	if rule.MatchType == "" {
		rule.MatchType = model.MatchContains
	}
	if rule.Scope == "" {
		rule.Scope = model.ScopeBoth
	}
	if e.Active != nil {
		rule.Active = *e.Active
	}
	return rule
}

// ParseRules decodes and validates a rules document. Unknown keys are
// rejected so that typos do not silently drop a condition.
func ParseRules(r io.Reader) ([]model.NormalizationRule, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file RulesFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not parse rules file: %w", err)
	}

	rules := make([]model.NormalizationRule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		rule := entry.Rule()
		if err := pattern.ValidateRule(rule); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, describe(rule), err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadRulesFile reads and validates the rules file at path.
func LoadRulesFile(path string) ([]model.NormalizationRule, error) {
	f, err := os.Open(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("could not read rules file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseRules(f)
}

func describe(rule model.NormalizationRule) string {
	if rule.ID != "" {
		return rule.ID
	}
	return fmt.Sprintf("%q -> %q", rule.FromPattern, rule.ToCategory)
}
