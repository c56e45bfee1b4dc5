package report

import (
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/fleet-ledger/internal/engine"
	"github.com/Veraticus/fleet-ledger/internal/extract"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var january = period.MustRange("2026-01-01", "2026-01-31")

func fixtureRecords() []model.RawRecord {
	return []model.RawRecord{
		{
			ID: "fuel-jan", Kind: model.KindExpense, Status: model.StatusSettled,
			DueDate: "2026-01-05", ActualAmount: model.Float(100), PlannedAmount: model.Float(90),
			Description: "Posto Shell ABC-1234", CategoryLabel: "Diversos",
		},
		{
			ID: "fine-jan", Kind: model.KindExpense, Status: model.StatusPending,
			DueDate: "2026-01-20", PlannedAmount: model.Float(50),
			Description: "Multa AIT 123456789 placa BRA2E19 motorista", CategoryLabel: "Multas",
		},
		{
			ID: "rent-jan", Kind: model.KindIncome, Status: model.StatusSettled,
			DueDate: "2026-01-10", ActualAmount: model.Float(1000),
			Description: "Aluguel semanal ABC1234", CategoryLabel: "Aluguel",
		},
		{
			ID: "fuel-dec", Kind: model.KindExpense, Status: model.StatusSettled,
			DueDate: "2025-12-15", ActualAmount: model.Float(80),
			Description: "Posto Shell ABC1234",
		},
		{
			ID: "undated", Kind: model.KindExpense, Status: model.StatusPending,
			PlannedAmount: model.Float(30), CategoryLabel: "Diversos",
		},
		{
			ID: "canceled", Kind: model.KindExpense, Status: model.StatusCanceled,
			DueDate: "2026-01-07", PlannedAmount: model.Float(500), CategoryLabel: "Diversos",
		},
		{
			ID: "rent-dec", Kind: model.KindIncome, Status: model.StatusSettled,
			DueDate: "2025-12-10", ActualAmount: model.Float(500), CategoryLabel: "Aluguel",
		},
	}
}

func fixture(t *testing.T) []model.CanonicalRecord {
	t.Helper()
	rules := engine.NewRuleSet([]model.NormalizationRule{{
		ID:          "r-fuel",
		FromPattern: "shell",
		MatchType:   model.MatchContains,
		Scope:       model.ScopeExpense,
		ToCategory:  "Combustível",
		Priority:    10,
		Active:      true,
	}})
	c := Canonicalizer{Location: time.UTC, Rules: rules}
	return c.CanonicalizeAll(fixtureRecords())
}

func TestCanonicalize(t *testing.T) {
	recs := fixture(t)
	require.Len(t, recs, 7)

	fine := recs[1]
	require.NotNil(t, fine.Date)
	assert.Equal(t, "2026-01-20", fine.Date.Format(period.DateLayout))
	assert.Equal(t, model.DateFromDue, fine.DateSource)
	assert.Equal(t, 50.0, fine.Amount)
	assert.Equal(t, model.AmountFromPlanned, fine.AmountSource)
	assert.Equal(t, "BRA2E19", fine.Plate)
	assert.Equal(t, "123456789", fine.CitationNumber)
	assert.Equal(t, model.PayerOperator, fine.Payer)
	assert.Equal(t, model.CategoryAssignment{Category: "Multas", Provenance: model.ProvenanceRaw}, fine.Category)
	assert.Equal(t, 1, fine.Index)

	fuel := recs[0]
	assert.Equal(t, model.CategoryAssignment{Category: "Combustível", Provenance: model.ProvenanceRule, RuleID: "r-fuel"}, fuel.Category)
	assert.Equal(t, "ABC1234", fuel.Plate)
	assert.Equal(t, 100.0, fuel.Amount)

	assert.Nil(t, recs[4].Date)
	assert.Equal(t, model.DateUnresolved, recs[4].DateSource)
	assert.Nil(t, recs[4].DueDate)

	require.NotNil(t, fine.DueDate)
	assert.Equal(t, "2026-01-20", fine.DueDate.Format(period.DateLayout))
}

func TestCanonicalize_DueDateIndependentOfWinningDate(t *testing.T) {
	c := Canonicalizer{Location: time.UTC}

	rec := c.Canonicalize(model.RawRecord{
		ID: "bad-due", Kind: model.KindExpense, Status: model.StatusPending,
		DueDate: "2026-02-30", PlannedDate: "2026-02-10", PlannedAmount: model.Float(10),
	}, 0)
	assert.Nil(t, rec.DueDate)
	require.NotNil(t, rec.Date)
	assert.Equal(t, model.DateFromPlanned, rec.DateSource)
}

func TestSummarize(t *testing.T) {
	recs := fixture(t)

	tests := []struct {
		wantPct       *float64
		name          string
		query         Query
		wantTotal     float64
		wantPrevTotal float64
		wantDelta     float64
		wantCount     int
		wantPrevCount int
	}{
		{
			name:          "expenses",
			query:         Query{Range: january, Scope: model.ScopeExpense},
			wantTotal:     150,
			wantCount:     2,
			wantPrevTotal: 80,
			wantPrevCount: 1,
			wantDelta:     70,
			wantPct:       f(87.5),
		},
		{
			name:          "income",
			query:         Query{Range: january, Scope: model.ScopeIncome},
			wantTotal:     1000,
			wantCount:     1,
			wantPrevTotal: 500,
			wantPrevCount: 1,
			wantDelta:     500,
			wantPct:       f(100),
		},
		{
			name:          "no previous activity",
			query:         Query{Range: period.MustRange("2025-12-01", "2025-12-31"), Scope: model.ScopeExpense},
			wantTotal:     80,
			wantCount:     1,
			wantPrevTotal: 0,
			wantPrevCount: 0,
			wantDelta:     80,
			wantPct:       nil,
		},
		{
			name:          "operator view includes unattributed",
			query:         Query{Range: january, Scope: model.ScopeExpense, View: extract.ViewOperator},
			wantTotal:     150,
			wantCount:     2,
			wantPrevTotal: 80,
			wantPrevCount: 1,
			wantDelta:     70,
			wantPct:       f(87.5),
		},
		{
			name:      "owner view",
			query:     Query{Range: january, Scope: model.ScopeExpense, View: extract.ViewOwner},
			wantTotal: 0,
			wantPct:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(recs, tt.query)
			assert.InDelta(t, tt.wantTotal, s.Total, 1e-9)
			assert.Equal(t, tt.wantCount, s.Count)
			assert.InDelta(t, tt.wantPrevTotal, s.PrevTotal, 1e-9)
			assert.Equal(t, tt.wantPrevCount, s.PrevCount)
			assert.InDelta(t, tt.wantDelta, s.DeltaValue, 1e-9)
			if tt.wantPct == nil {
				assert.Nil(t, s.DeltaPct)
			} else {
				require.NotNil(t, s.DeltaPct)
				assert.InDelta(t, *tt.wantPct, *s.DeltaPct, 1e-9)
			}
			assert.Nil(t, s.Margin, "margin only applies when both kinds are in scope")
			assert.Equal(t, s.Current.Days(), s.Previous.Days())
		})
	}
}

func TestSummarize_BothScopes(t *testing.T) {
	s := Summarize(fixture(t), Query{Range: january})

	assert.InDelta(t, 850, s.Total, 1e-9)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 420, s.PrevTotal, 1e-9)
	assert.InDelta(t, 1000, s.Income, 1e-9)
	assert.InDelta(t, 150, s.Expense, 1e-9)
	require.NotNil(t, s.Margin)
	assert.InDelta(t, 85, *s.Margin, 1e-9)
	assert.Equal(t, "2025-12-01..2025-12-31", s.Previous.String())
}

func TestTimeSeries(t *testing.T) {
	recs := fixture(t)

	daily := TimeSeries(recs, Query{Range: january, Scope: model.ScopeExpense}, "")
	assert.Equal(t, period.GranularityDay, daily.Granularity)
	require.Len(t, daily.Points, 31)
	assert.Equal(t, 100.0, daily.Points[4].Expense)
	assert.Equal(t, 1, daily.Points[4].Count)
	assert.Equal(t, 50.0, daily.Points[19].Expense)
	assert.Zero(t, daily.Points[0].Count, "empty buckets are present with zero values")

	var count int
	for _, p := range daily.Points {
		count += p.Count
	}
	assert.Equal(t, 2, count)

	weekly := TimeSeries(recs, Query{Range: january}, period.GranularityWeek)
	require.Len(t, weekly.Points, 5)
	assert.Equal(t, "2025-12-29", weekly.Points[0].BucketStart.Format(period.DateLayout))
	assert.Zero(t, weekly.Points[0].Count)

	week := weekly.Points[1]
	assert.Equal(t, "Week of 05/01", week.BucketLabel)
	assert.Equal(t, 1000.0, week.Income)
	assert.Equal(t, 100.0, week.Expense)
	assert.Equal(t, 900.0, week.Net)
	assert.Equal(t, 900.0, week.Total)

	assert.Equal(t, []float64{0, 900, 0, -50, 0}, weekly.Values(MetricNet))
	assert.Equal(t, []float64{0, 2, 0, 1, 0}, weekly.Values(MetricCount))
}

func TestRank(t *testing.T) {
	recs := fixture(t)

	byValue := Rank(recs, Query{Scope: model.ScopeExpense}, RankByCategory, SortByValue, 10)
	assert.Equal(t, []RankEntry{
		{Key: "Combustível", Label: "Combustível", Total: 180, Count: 2},
		{Key: "Multas", Label: "Multas", Total: 50, Count: 1},
		{Key: "Diversos", Label: "Diversos", Total: 30, Count: 1},
	}, byValue)

	byCount := Rank(recs, Query{Scope: model.ScopeExpense}, RankByCategory, SortByCount, 2)
	require.Len(t, byCount, 2)
	assert.Equal(t, "Combustível", byCount[0].Key)
	assert.Equal(t, "Multas", byCount[1].Key, "ties keep first-discovery order")

	plates := Rank(recs, Query{Range: january}, RankByPlate, SortByValue, 0)
	assert.Equal(t, []RankEntry{
		{Key: "ABC1234", Label: "ABC-1234", Total: 1100, Count: 2},
		{Key: "BRA2E19", Label: "BRA2E19", Total: 50, Count: 1},
	}, plates)
}

func TestRank_TiesFollowDiscoveryOrder(t *testing.T) {
	recs := []model.CanonicalRecord{
		{Kind: model.KindExpense, Amount: 10, Category: model.CategoryAssignment{Category: "Zeta"}},
		{Kind: model.KindExpense, Amount: 10, Category: model.CategoryAssignment{Category: "Alpha"}},
		{Kind: model.KindExpense, Amount: 10},
	}

	got := Rank(recs, Query{}, RankByCategory, SortByValue, 0)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Zeta", "Alpha", UncategorizedLabel}, []string{got[0].Label, got[1].Label, got[2].Label})
}

func TestAggregations_SkipCanceled(t *testing.T) {
	c := Canonicalizer{Location: time.UTC}
	recs := c.CanonicalizeAll([]model.RawRecord{
		{
			ID: "voided", Kind: model.KindExpense, Status: model.StatusCanceled,
			DueDate: "2026-01-07", PlannedAmount: model.Float(100),
			Description: "Multa anulada ABC-1234", CategoryLabel: "Multas",
		},
		{
			ID: "open", Kind: model.KindExpense, Status: model.StatusPending,
			DueDate: "2026-01-08", PlannedAmount: model.Float(50),
			Description: "Pedágio BRA2E19", CategoryLabel: "Pedágio",
		},
		{
			ID: "voided-dec", Kind: model.KindExpense, Status: model.StatusCanceled,
			DueDate: "2025-12-07", PlannedAmount: model.Float(70), CategoryLabel: "Multas",
		},
	})
	require.Len(t, recs, 3)
	assert.Equal(t, 100.0, recs[0].Amount, "canceled records still canonicalize")
	assert.Equal(t, "ABC1234", recs[0].Plate)

	q := Query{Range: january, Scope: model.ScopeExpense}

	s := Summarize(recs, q)
	assert.Equal(t, 50.0, s.Total)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 0.0, s.PrevTotal)
	assert.Equal(t, 0, s.PrevCount)
	assert.Nil(t, s.DeltaPct)

	series := TimeSeries(recs, q, period.GranularityMonth)
	require.Len(t, series.Points, 1)
	assert.Equal(t, 50.0, series.Points[0].Total)
	assert.Equal(t, 1, series.Points[0].Count)

	byPlate := Rank(recs, q, RankByPlate, SortByValue, 0)
	require.Len(t, byPlate, 1)
	assert.Equal(t, "BRA2E19", byPlate[0].Key)

	byCategory := Rank(recs, Query{Scope: model.ScopeExpense}, RankByCategory, SortByValue, 0)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Pedágio", byCategory[0].Label)

	selected := Select(recs, q)
	require.Len(t, selected, 1)
	assert.Equal(t, "open", selected[0].ID)
}

func TestAggregations_ConcurrentUse(t *testing.T) {
	recs := fixture(t)
	want := Summarize(recs, Query{Range: january})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Summarize(recs, Query{Range: january}))
			assert.Len(t, TimeSeries(recs, Query{Range: january}, "").Points, 31)
		}()
	}
	wg.Wait()
}

func TestParseRankKeyAndSort(t *testing.T) {
	k, err := ParseRankKey("plate")
	require.NoError(t, err)
	assert.Equal(t, RankByPlate, k)
	_, err = ParseRankKey("vendor")
	assert.Error(t, err)

	s, err := ParseSortBy("count")
	require.NoError(t, err)
	assert.Equal(t, SortByCount, s)
	_, err = ParseSortBy("name")
	assert.Error(t, err)
}

func f(v float64) *float64 { return &v }
