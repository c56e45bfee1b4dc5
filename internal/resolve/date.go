// Package resolve derives the canonical date and amount of a ledger record by
// walking a fixed fallback chain, and reports which step produced the value.
package resolve

import (
	"time"

	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/period"
)

// DateResolution is a resolved civil date together with its provenance.
type DateResolution struct {
	Date   time.Time
	Source model.DateSource
}

// Resolved reports whether a date was found.
func (r DateResolution) Resolved() bool {
	return r.Source != model.DateUnresolved
}

// Ptr returns the date, or nil when unresolved.
func (r DateResolution) Ptr() *time.Time {
	if !r.Resolved() {
		return nil
	}
	d := r.Date
	return &d
}

// Date resolves the canonical date of rec: the due date, else the planned
// date, else the actual date when the record is settled. Malformed candidates
// are skipped as if absent.
func Date(rec model.RawRecord, loc *time.Location) DateResolution {
	if d, ok := parse(rec.DueDate, loc); ok {
		return DateResolution{Date: d, Source: model.DateFromDue}
	}
	if d, ok := parse(rec.PlannedDate, loc); ok {
		return DateResolution{Date: d, Source: model.DateFromPlanned}
	}
	if rec.Status.IsSettled() {
		if d, ok := parse(rec.ActualDate, loc); ok {
			return DateResolution{Date: d, Source: model.DateFromActual}
		}
	}
	return DateResolution{Source: model.DateUnresolved}
}

func parse(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := period.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
