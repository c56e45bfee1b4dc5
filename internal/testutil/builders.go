package testutil

import (
	"time"

	"github.com/Veraticus/fleet-ledger/internal/model"
)

// RecordBuilder builds raw records. New records are pending expenses.
type RecordBuilder struct {
	rec model.RawRecord
}

// NewRecord starts a record with the given ID.
func NewRecord(id string) *RecordBuilder {
	return &RecordBuilder{rec: model.RawRecord{
		ID:     id,
		Kind:   model.KindExpense,
		Status: model.StatusPending,
	}}
}

// Income marks the record as income.
func (b *RecordBuilder) Income() *RecordBuilder {
	b.rec.Kind = model.KindIncome
	return b
}

// Settled marks the record as settled.
func (b *RecordBuilder) Settled() *RecordBuilder {
	b.rec.Status = model.StatusSettled
	return b
}

// Canceled marks the record as canceled.
func (b *RecordBuilder) Canceled() *RecordBuilder {
	b.rec.Status = model.StatusCanceled
	return b
}

// Due sets the due date.
func (b *RecordBuilder) Due(date string) *RecordBuilder {
	b.rec.DueDate = date
	return b
}

// PlannedOn sets the planned date.
func (b *RecordBuilder) PlannedOn(date string) *RecordBuilder {
	b.rec.PlannedDate = date
	return b
}

// PaidOn sets the actual settlement date.
func (b *RecordBuilder) PaidOn(date string) *RecordBuilder {
	b.rec.ActualDate = date
	return b
}

// Planned sets the planned amount.
func (b *RecordBuilder) Planned(amount float64) *RecordBuilder {
	b.rec.PlannedAmount = model.Float(amount)
	return b
}

// Actual sets the actual amount.
func (b *RecordBuilder) Actual(amount float64) *RecordBuilder {
	b.rec.ActualAmount = model.Float(amount)
	return b
}

// Gross sets the gross amount.
func (b *RecordBuilder) Gross(amount float64) *RecordBuilder {
	b.rec.GrossAmount = model.Float(amount)
	return b
}

// Described sets the description.
func (b *RecordBuilder) Described(text string) *RecordBuilder {
	b.rec.Description = text
	return b
}

// From sets the counterparty.
func (b *RecordBuilder) From(counterparty string) *RecordBuilder {
	b.rec.Counterparty = counterparty
	return b
}

// Labeled sets the raw category label.
func (b *RecordBuilder) Labeled(label string) *RecordBuilder {
	b.rec.CategoryLabel = label
	return b
}

// Noted sets free-form notes.
func (b *RecordBuilder) Noted(notes string) *RecordBuilder {
	b.rec.Notes = notes
	return b
}

// Manual pins the record to category.
func (b *RecordBuilder) Manual(category string) *RecordBuilder {
	b.rec.Assignment = model.CategoryAssignment{Category: category, Provenance: model.ProvenanceManual}
	return b
}

// Build returns the record.
func (b *RecordBuilder) Build() model.RawRecord {
	return b.rec
}

// RuleBuilder builds normalization rules. New rules are active CONTAINS rules
// for both scopes.
type RuleBuilder struct {
	rule model.NormalizationRule
}

// NewRule starts a rule mapping labels containing from onto to.
func NewRule(from, to string) *RuleBuilder {
	return &RuleBuilder{rule: model.NormalizationRule{
		FromPattern: from,
		ToCategory:  to,
		MatchType:   model.MatchContains,
		Scope:       model.ScopeBoth,
		Active:      true,
	}}
}

// WithID sets the rule ID.
func (b *RuleBuilder) WithID(id string) *RuleBuilder {
	b.rule.ID = id
	return b
}

// Exact switches the rule to exact matching.
func (b *RuleBuilder) Exact() *RuleBuilder {
	b.rule.MatchType = model.MatchExact
	return b
}

// Regex switches the rule to regular expression matching.
func (b *RuleBuilder) Regex() *RuleBuilder {
	b.rule.MatchType = model.MatchRegex
	return b
}

// Scoped restricts the rule to scope.
func (b *RuleBuilder) Scoped(scope model.Scope) *RuleBuilder {
	b.rule.Scope = scope
	return b
}

// Priority sets the rule priority.
func (b *RuleBuilder) Priority(p int) *RuleBuilder {
	b.rule.Priority = p
	return b
}

// UpdatedAt sets the rule's last update time.
func (b *RuleBuilder) UpdatedAt(t time.Time) *RuleBuilder {
	b.rule.UpdatedAt = t
	return b
}

// Inactive deactivates the rule.
func (b *RuleBuilder) Inactive() *RuleBuilder {
	b.rule.Active = false
	return b
}

// Build returns the rule.
func (b *RuleBuilder) Build() model.NormalizationRule {
	return b.rule
}
