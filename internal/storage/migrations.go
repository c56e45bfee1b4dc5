package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS normalization_rules (
					id TEXT PRIMARY KEY,
					from_pattern TEXT NOT NULL,
					match_type TEXT NOT NULL CHECK (match_type IN ('EXACT', 'CONTAINS', 'REGEX')),
					scope TEXT NOT NULL CHECK (scope IN ('EXPENSE', 'INCOME', 'BOTH')),
					to_category TEXT NOT NULL,
					priority INTEGER NOT NULL DEFAULT 0,
					active INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_rules_precedence ON normalization_rules(active, priority DESC, updated_at DESC, id)`,

				`CREATE TABLE IF NOT EXISTS raw_records (
					id TEXT PRIMARY KEY,
					kind TEXT NOT NULL CHECK (kind IN ('EXPENSE', 'INCOME')),
					status TEXT NOT NULL CHECK (status IN ('PENDING', 'SETTLED', 'CANCELED')),
					due_date TEXT,
					planned_date TEXT,
					actual_date TEXT,
					planned_amount REAL,
					actual_amount REAL,
					gross_amount REAL,
					category_label TEXT,
					description TEXT,
					counterparty TEXT,
					notes TEXT,
					imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_raw_records_kind ON raw_records(kind, status)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add category assignment to records",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE raw_records ADD COLUMN category TEXT`,
				`ALTER TABLE raw_records ADD COLUMN category_provenance TEXT NOT NULL DEFAULT 'RAW'
					CHECK (category_provenance IN ('RAW', 'RULE', 'MANUAL'))`,
				`ALTER TABLE raw_records ADD COLUMN category_rule_id TEXT`,
				`UPDATE raw_records SET category = category_label`,
				`CREATE INDEX idx_raw_records_provenance ON raw_records(category_provenance)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Record when assignments change",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`ALTER TABLE raw_records ADD COLUMN assigned_at DATETIME`); err != nil {
				return fmt.Errorf("failed to add assigned_at column: %w", err)
			}
			return nil
		},
	},
}

// SchemaVersion returns the version the database is currently at.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
