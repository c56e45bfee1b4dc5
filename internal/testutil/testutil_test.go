package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/pattern"
	"github.com/Veraticus/fleet-ledger/internal/service"
)

func TestSetupTestDB_SeedsFixtures(t *testing.T) {
	db := SetupTestDB(t, TestDBOptions{
		Rules:   FleetRules(),
		Records: FleetRecords(),
	})

	rules, err := db.Storage.ListRules(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, rules, 3)
	assert.Equal(t, "fines", rules[0].ID)

	records, err := db.Storage.ListRecords(context.Background(), service.RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, records, len(FleetRecords()))

	fine := db.MustGetRecord("fine-jan")
	assert.Equal(t, 195.23, *fine.PlannedAmount)
}

func TestFleetRules_AreValid(t *testing.T) {
	for _, rule := range FleetRules() {
		assert.NoError(t, pattern.ValidateRule(rule), rule.ID)
	}
}

func TestBuilders(t *testing.T) {
	rec := NewRecord("x").Income().Settled().PaidOn("2026-02-01").Actual(10).Manual("Outros").Build()
	assert.Equal(t, model.KindIncome, rec.Kind)
	assert.Equal(t, model.StatusSettled, rec.Status)
	assert.Equal(t, "2026-02-01", rec.ActualDate)
	assert.True(t, rec.Assignment.IsManual())

	rule := NewRule("a", "B").Exact().Inactive().Build()
	assert.Equal(t, model.MatchExact, rule.MatchType)
	assert.False(t, rule.Active)
}

func TestSetupTestDB_CustomSetup(t *testing.T) {
	var called bool
	SetupTestDB(t, TestDBOptions{
		CustomSetup: func(ctx context.Context, s service.Storage) error {
			called = true
			v, err := s.SchemaVersion(ctx)
			assert.Positive(t, v)
			return err
		},
	})
	assert.True(t, called)
}
