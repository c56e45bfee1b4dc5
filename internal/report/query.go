package report

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fleet-ledger/internal/extract"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/period"
)

// Query selects the records an aggregation runs over.
type Query struct {
	Range period.DateRange
	Scope model.Scope
	View  extract.View
}

func (q Query) scope() model.Scope {
	if q.Scope == "" {
		return model.ScopeBoth
	}
	return q.Scope
}

// matches applies scope and payer view, but not the date range.
func (q Query) matches(rec model.CanonicalRecord) bool {
	if rec.Status == model.StatusCanceled {
		return false
	}
	if !q.scope().Includes(rec.Kind) {
		return false
	}
	if q.View != "" && !q.View.Includes(rec.Payer) {
		return false
	}
	return true
}

// inRange reports whether rec has a canonical date inside r.
func inRange(rec model.CanonicalRecord, r period.DateRange) bool {
	return rec.Date != nil && r.Contains(*rec.Date)
}

// signed returns the amount with the sign used for totals: when both kinds are
// in scope, expenses count against income.
func (q Query) signed(rec model.CanonicalRecord) decimal.Decimal {
	amount := decimal.NewFromFloat(rec.Amount)
	if q.scope() == model.ScopeBoth && rec.Kind == model.KindExpense {
		return amount.Neg()
	}
	return amount
}

// Select returns the records that match q and fall inside its range.
func Select(records []model.CanonicalRecord, q Query) []model.CanonicalRecord {
	var out []model.CanonicalRecord
	for _, rec := range records {
		if q.matches(rec) && inRange(rec, q.Range) {
			out = append(out, rec)
		}
	}
	return out
}
