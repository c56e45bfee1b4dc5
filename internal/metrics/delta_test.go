package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeltaPct(t *testing.T) {
	tests := []struct {
		want     *float64
		name     string
		current  float64
		previous float64
	}{
		{name: "growth", current: 150, previous: 100, want: ptr(50)},
		{name: "decline", current: 50, previous: 100, want: ptr(-50)},
		{name: "negative previous keeps intuitive sign", current: -50, previous: -100, want: ptr(50)},
		{name: "negative to positive", current: 100, previous: -100, want: ptr(200)},
		{name: "unchanged", current: 100, previous: 100, want: ptr(0)},
		{name: "zero previous", current: 100, previous: 0, want: nil},
		{name: "zero previous negative current", current: -100, previous: 0, want: nil},
		{name: "both zero", current: 0, previous: 0, want: nil},
		{name: "negative zero previous", current: 10, previous: math.Copysign(0, -1), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeltaPct(tt.current, tt.previous)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestDeltaPct_NeverNaNForFiniteInputs(t *testing.T) {
	values := []float64{0, 1, -1, 0.01, -0.01, 1e12, -1e12}
	for _, cur := range values {
		for _, prev := range values {
			got := DeltaPct(cur, prev)
			if prev == 0 {
				assert.Nil(t, got)
				continue
			}
			require.NotNil(t, got)
			assert.False(t, math.IsNaN(*got))
		}
	}
}

func TestMargin(t *testing.T) {
	assert.Nil(t, Margin(100, 0))
	got := Margin(25, 200)
	require.NotNil(t, got)
	assert.InDelta(t, 12.5, *got, 1e-9)

	neg := Margin(-50, 100)
	require.NotNil(t, neg)
	assert.InDelta(t, -50, *neg, 1e-9)
}

func TestCompare(t *testing.T) {
	c := Compare(80, 0)
	assert.Equal(t, 80.0, c.DeltaValue, "delta value is defined even when pct is not")
	assert.Nil(t, c.DeltaPct)

	c = Compare(80, 100)
	assert.Equal(t, -20.0, c.DeltaValue)
	require.NotNil(t, c.DeltaPct)
	assert.InDelta(t, -20, *c.DeltaPct, 1e-9)
}

func ptr(f float64) *float64 { return &f }
