package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/config"
	"github.com/Veraticus/fleet-ledger/internal/engine"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/period"
	"github.com/Veraticus/fleet-ledger/internal/report"
	"github.com/Veraticus/fleet-ledger/internal/service"
	"github.com/Veraticus/fleet-ledger/internal/storage"
)

// loadSettings resolves the effective configuration.
func loadSettings() (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Settings{}, common.NewUserError("invalid configuration", err)
	}
	return settings, nil
}

// initStorage opens the configured database and migrates it.
func initStorage(ctx context.Context, settings config.Settings) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadCanonical loads stored records and active rules concurrently and
// derives the canonical view of every record.
func loadCanonical(ctx context.Context, store service.Storage, settings config.Settings, filter service.RecordFilter) ([]model.CanonicalRecord, error) {
	var (
		rules   []model.NormalizationRule
		records []model.RawRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rules, err = store.ListRules(gctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = store.ListRecords(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := report.Canonicalizer{
		Location: settings.Location,
		Rules:    engine.NewRuleSet(rules),
	}
	return c.CanonicalizeAll(records), nil
}

// parseScope accepts all/both, expense or income in any case.
func parseScope(s string) (model.Scope, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ALL", "BOTH":
		return model.ScopeBoth, nil
	case "EXPENSE", "EXPENSES":
		return model.ScopeExpense, nil
	case "INCOME":
		return model.ScopeIncome, nil
	default:
		return "", common.NewUserError(fmt.Sprintf("unknown scope %q (use all, expense or income)", s), nil)
	}
}

// resolveRange turns --from/--to into a range. Missing bounds default to the
// current month up to today in the configured timezone.
func resolveRange(from, to string, now time.Time, loc *time.Location) (period.DateRange, error) {
	today := period.Today(now, loc)
	if to == "" {
		to = today.Format(period.DateLayout)
	}
	if from == "" {
		from = period.Day(today.Year(), today.Month(), 1).Format(period.DateLayout)
	}

	r, err := period.ParseRange(from, to)
	if err != nil {
		return period.DateRange{}, common.NewUserError("invalid date range", err)
	}
	return r, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
