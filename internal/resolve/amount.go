package resolve

import (
	"math"

	"github.com/Veraticus/fleet-ledger/internal/model"
)

// AmountResolution is a resolved amount together with its provenance.
type AmountResolution struct {
	Source model.AmountSource
	Amount float64
}

// Amount resolves the canonical amount of rec. A settled record prefers its
// actual amount, but a zero actual amount counts as missing and never
// overrides the planned amount. Then planned, then gross, then zero.
func Amount(rec model.RawRecord) AmountResolution {
	if rec.Status.IsSettled() {
		if v, ok := present(rec.ActualAmount); ok && v != 0 {
			return AmountResolution{Amount: v, Source: model.AmountFromActual}
		}
	}
	if v, ok := present(rec.PlannedAmount); ok {
		return AmountResolution{Amount: v, Source: model.AmountFromPlanned}
	}
	if v, ok := present(rec.GrossAmount); ok {
		return AmountResolution{Amount: v, Source: model.AmountFromGross}
	}
	return AmountResolution{Amount: 0, Source: model.AmountDefaulted}
}

// present treats nil, NaN and infinite values as absent.
func present(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}
