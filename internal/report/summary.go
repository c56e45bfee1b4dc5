package report

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fleet-ledger/internal/metrics"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/period"
)

// Summary compares the total of a range with the immediately preceding range
// of equal length.
type Summary struct {
	DeltaPct   *float64         `json:"delta_pct"`
	Margin     *float64         `json:"margin,omitempty"`
	Current    period.DateRange `json:"current"`
	Previous   period.DateRange `json:"previous"`
	Total      float64          `json:"total"`
	PrevTotal  float64          `json:"prev_total"`
	DeltaValue float64          `json:"delta_value"`
	Income     float64          `json:"income"`
	Expense    float64          `json:"expense"`
	Count      int              `json:"count"`
	PrevCount  int              `json:"prev_count"`
}

type tally struct {
	total   decimal.Decimal
	income  decimal.Decimal
	expense decimal.Decimal
	count   int
}

func (t *tally) add(q Query, rec model.CanonicalRecord) {
	amount := decimal.NewFromFloat(rec.Amount)
	t.total = t.total.Add(q.signed(rec))
	if rec.Kind == model.KindIncome {
		t.income = t.income.Add(amount)
	} else {
		t.expense = t.expense.Add(amount)
	}
	t.count++
}

// Summarize totals and counts the records of q.Range and its previous period.
// Margin is reported only when both kinds are in scope.
func Summarize(records []model.CanonicalRecord, q Query) Summary {
	previous := period.CalculatePreviousPeriod(q.Range)

	var cur, prev tally
	for _, rec := range records {
		if !q.matches(rec) || rec.Date == nil {
			continue
		}
		switch {
		case q.Range.Contains(*rec.Date):
			cur.add(q, rec)
		case previous.Contains(*rec.Date):
			prev.add(q, rec)
		}
	}

	total := cur.total.InexactFloat64()
	prevTotal := prev.total.InexactFloat64()
	cmp := metrics.Compare(total, prevTotal)

	s := Summary{
		Current:    q.Range,
		Previous:   previous,
		Total:      total,
		Count:      cur.count,
		PrevTotal:  prevTotal,
		PrevCount:  prev.count,
		DeltaValue: cmp.DeltaValue,
		DeltaPct:   cmp.DeltaPct,
		Income:     cur.income.InexactFloat64(),
		Expense:    cur.expense.InexactFloat64(),
	}
	if q.scope() == model.ScopeBoth {
		s.Margin = metrics.Margin(s.Total, s.Income)
	}
	return s
}
