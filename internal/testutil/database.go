// Package testutil provides test utilities for the ledger: an isolated
// in-memory database and fluent builders for rules and records.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/service"
	"github.com/Veraticus/fleet-ledger/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Rules          []model.NormalizationRule
	Records        []model.RawRecord
	SkipMigrations bool
}

// SetupTestDB creates a new migrated in-memory database seeded with rules and
// records. Cleanup is registered on t.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.TestDBOptions{
//		Rules:   []model.NormalizationRule{testutil.NewRule("posto", "Combustível").Build()},
//		Records: testutil.FleetRecords(),
//	})
func SetupTestDB(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	db := &TestDB{Storage: store, t: t}
	db.SeedRules(opts.Rules...)
	db.SeedRecords(opts.Records...)

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}

// SeedRules stores rules, failing the test on error.
func (db *TestDB) SeedRules(rules ...model.NormalizationRule) {
	db.t.Helper()
	if len(rules) == 0 {
		return
	}
	if err := db.Storage.ImportRules(context.Background(), rules); err != nil {
		db.t.Fatalf("failed to seed rules: %v", err)
	}
}

// SeedRecords stores records, failing the test on error.
func (db *TestDB) SeedRecords(records ...model.RawRecord) {
	db.t.Helper()
	if len(records) == 0 {
		return
	}
	if err := db.Storage.SaveRecords(context.Background(), records); err != nil {
		db.t.Fatalf("failed to seed records: %v", err)
	}
}

// MustGetRecord returns the stored record with id or fails the test.
func (db *TestDB) MustGetRecord(id string) model.RawRecord {
	db.t.Helper()
	rec, err := db.Storage.GetRecord(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to get record %q: %v", id, err)
	}
	return *rec
}
