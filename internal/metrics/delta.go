// Package metrics computes period-over-period deltas and margins. A nil
// percentage means "not applicable" and must never be rendered as zero.
package metrics

import "math"

// DeltaPct returns the change from previous to current as a percentage of the
// magnitude of previous, or nil when previous is zero.
func DeltaPct(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	pct := (current - previous) / math.Abs(previous) * 100
	return &pct
}

// Margin returns profit as a percentage of income, or nil when income is zero.
func Margin(profit, income float64) *float64 {
	if income == 0 {
		return nil
	}
	m := profit / income * 100
	return &m
}

// Comparison holds a current value against its previous-period counterpart.
type Comparison struct {
	DeltaPct   *float64 `json:"delta_pct"`
	Current    float64  `json:"current"`
	Previous   float64  `json:"previous"`
	DeltaValue float64  `json:"delta_value"`
}

// Compare builds the comparison of current against previous.
func Compare(current, previous float64) Comparison {
	return Comparison{
		Current:    current,
		Previous:   previous,
		DeltaValue: current - previous,
		DeltaPct:   DeltaPct(current, previous),
	}
}
