// Package model defines the core data structures for the ledger application.
package model

// SettlementStatus indicates whether an obligation has actually been paid or received.
type SettlementStatus string

// Settlement status constants.
const (
	StatusPending  SettlementStatus = "PENDING"
	StatusSettled  SettlementStatus = "SETTLED"
	StatusCanceled SettlementStatus = "CANCELED"
)

// IsSettled reports whether money actually moved for the record.
func (s SettlementStatus) IsSettled() bool {
	return s == StatusSettled
}

// IsValid reports whether s is a known settlement status.
func (s SettlementStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusSettled, StatusCanceled:
		return true
	}
	return false
}

// RecordKind distinguishes expense rows from income rows.
type RecordKind string

// Record kind constants.
const (
	KindExpense RecordKind = "EXPENSE"
	KindIncome  RecordKind = "INCOME"
)

// IsValid reports whether k is a known record kind.
func (k RecordKind) IsValid() bool {
	return k == KindExpense || k == KindIncome
}

// Scope returns the rule scope a record of this kind is normalized under.
func (k RecordKind) Scope() Scope {
	switch k {
	case KindIncome:
		return ScopeIncome
	case KindExpense:
		return ScopeExpense
	default:
		return ScopeBoth
	}
}

// RawRecord is a ledger row as handed over by the persistence layer.
// Candidate dates are kept as the strings found in the row so that malformed
// values can be told apart from absent ones.
type RawRecord struct {
	PlannedAmount *float64           `json:"planned_amount,omitempty"`
	ActualAmount  *float64           `json:"actual_amount,omitempty"`
	GrossAmount   *float64           `json:"gross_amount,omitempty"`
	ID            string             `json:"id"`
	Kind          RecordKind         `json:"kind"`
	Status        SettlementStatus   `json:"status"`
	DueDate       string             `json:"due_date,omitempty"`
	PlannedDate   string             `json:"planned_date,omitempty"`
	ActualDate    string             `json:"actual_date,omitempty"`
	CategoryLabel string             `json:"category_label,omitempty"`
	Description   string             `json:"description,omitempty"`
	Counterparty  string             `json:"counterparty,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Assignment    CategoryAssignment `json:"assignment"`
}

// Float returns a pointer to f, for populating optional amounts.
func Float(f float64) *float64 {
	return &f
}
