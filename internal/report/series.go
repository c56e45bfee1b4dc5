package report

import (
	"time"

	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/period"
)

// Point is one bucket of a time series. Every bucket of the range is present,
// with zero values when it had no activity.
type Point struct {
	BucketStart time.Time `json:"bucket_start"`
	BucketLabel string    `json:"bucket_label"`
	Income      float64   `json:"income"`
	Expense     float64   `json:"expense"`
	Net         float64   `json:"net"`
	Total       float64   `json:"total"`
	Count       int       `json:"count"`
}

// Series is a bucketed view of a range.
type Series struct {
	Granularity period.Granularity `json:"granularity"`
	Points      []Point            `json:"points"`
}

// TimeSeries buckets the records of q. An empty granularity is chosen from the
// length of the range.
func TimeSeries(records []model.CanonicalRecord, q Query, g period.Granularity) Series {
	if g == "" {
		g = period.ChooseGranularity(q.Range.From, q.Range.To)
	}

	buckets := period.GenerateBuckets(q.Range.From, q.Range.To, g)
	tallies := make([]tally, len(buckets))
	index := make(map[time.Time]int, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
	}

	for _, rec := range Select(records, q) {
		i, ok := index[period.BucketKey(*rec.Date, g)]
		if !ok {
			continue
		}
		tallies[i].add(q, rec)
	}

	points := make([]Point, len(buckets))
	for i, b := range buckets {
		t := tallies[i]
		points[i] = Point{
			BucketStart: b.Key,
			BucketLabel: b.Label,
			Income:      t.income.InexactFloat64(),
			Expense:     t.expense.InexactFloat64(),
			Net:         t.income.Sub(t.expense).InexactFloat64(),
			Total:       t.total.InexactFloat64(),
			Count:       t.count,
		}
	}

	return Series{Granularity: g, Points: points}
}

// Values extracts one scalar metric per point, in bucket order.
func (s Series) Values(metric Metric) []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value(metric)
	}
	return out
}

// Metric names a scalar carried by a series point.
type Metric string

// Metric constants.
const (
	MetricIncome  Metric = "income"
	MetricExpense Metric = "expense"
	MetricNet     Metric = "net"
	MetricTotal   Metric = "total"
	MetricCount   Metric = "count"
)

// Value returns the requested metric of p.
func (p Point) Value(metric Metric) float64 {
	switch metric {
	case MetricIncome:
		return p.Income
	case MetricExpense:
		return p.Expense
	case MetricNet:
		return p.Net
	case MetricCount:
		return float64(p.Count)
	default:
		return p.Total
	}
}
