package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/service"
)

const recordColumns = `id, kind, status, due_date, planned_date, actual_date,
	planned_amount, actual_amount, gross_amount,
	category_label, description, counterparty, notes,
	category, category_provenance, category_rule_id`

// SaveRecords inserts or updates records by ID in a single transaction.
// Records without an ID get a generated one, written back into the slice.
// Re-importing a record refreshes its raw fields; its category assignment is
// only replaced while it still mirrors the raw label.
func (s *SQLiteStorage) SaveRecords(ctx context.Context, records []model.RawRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO raw_records (`+recordColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				kind = excluded.kind,
				status = excluded.status,
				due_date = excluded.due_date,
				planned_date = excluded.planned_date,
				actual_date = excluded.actual_date,
				planned_amount = excluded.planned_amount,
				actual_amount = excluded.actual_amount,
				gross_amount = excluded.gross_amount,
				category_label = excluded.category_label,
				description = excluded.description,
				counterparty = excluded.counterparty,
				notes = excluded.notes,
				category = CASE WHEN raw_records.category_provenance = 'RAW'
					THEN excluded.category ELSE raw_records.category END,
				category_rule_id = CASE WHEN raw_records.category_provenance = 'RAW'
					THEN excluded.category_rule_id ELSE raw_records.category_rule_id END,
				category_provenance = CASE WHEN raw_records.category_provenance = 'RAW'
					THEN excluded.category_provenance ELSE raw_records.category_provenance END`)
		if err != nil {
			return fmt.Errorf("failed to prepare record insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i := range records {
			rec := &records[i]
			if rec.ID == "" {
				rec.ID = uuid.NewString()
			}
			assignment := rec.Assignment
			if assignment.Provenance == "" {
				assignment = model.CategoryAssignment{Category: rec.CategoryLabel, Provenance: model.ProvenanceRaw}
			}

			if _, err := stmt.ExecContext(ctx,
				rec.ID, rec.Kind, rec.Status,
				nullString(rec.DueDate), nullString(rec.PlannedDate), nullString(rec.ActualDate),
				nullFloat(rec.PlannedAmount), nullFloat(rec.ActualAmount), nullFloat(rec.GrossAmount),
				nullString(rec.CategoryLabel), nullString(rec.Description),
				nullString(rec.Counterparty), nullString(rec.Notes),
				nullString(assignment.Category), assignment.Provenance, nullString(assignment.RuleID),
			); err != nil {
				return fmt.Errorf("failed to save record %q: %w", rec.ID, err)
			}
		}
		return nil
	})
}

// GetRecord retrieves a record by ID.
func (s *SQLiteStorage) GetRecord(ctx context.Context, id string) (*model.RawRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM raw_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %q: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return &rec, nil
}

// ListRecords returns records in import order.
func (s *SQLiteStorage) ListRecords(ctx context.Context, filter service.RecordFilter) ([]model.RawRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Provenance != "" {
		where = append(where, "category_provenance = ?")
		args = append(args, filter.Provenance)
	}

	query := `SELECT ` + recordColumns + ` FROM raw_records`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY rowid ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.RawRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// UpdateAssignments persists the category assignment of each record. Manual
// assignments, whether in the input or already stored, are never overwritten.
// It returns the number of records whose assignment was written.
func (s *SQLiteStorage) UpdateAssignments(ctx context.Context, records []model.RawRecord) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	for i := range records {
		if err := validateAssignment(records[i].Assignment); err != nil {
			return 0, fmt.Errorf("record %q: %w", records[i].ID, err)
		}
	}

	var updated int
	now := time.Now().UTC()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			UPDATE raw_records
			SET category = ?, category_provenance = ?, category_rule_id = ?, assigned_at = ?
			WHERE id = ? AND category_provenance != 'MANUAL'`)
		if err != nil {
			return fmt.Errorf("failed to prepare assignment update: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, rec := range records {
			if rec.Assignment.IsManual() {
				continue
			}
			result, err := stmt.ExecContext(ctx,
				nullString(rec.Assignment.Category), rec.Assignment.Provenance,
				nullString(rec.Assignment.RuleID), now, rec.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to update assignment of %q: %w", rec.ID, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			updated += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// SetManualCategory pins a record to category. Normalization never changes it
// afterwards.
func (s *SQLiteStorage) SetManualCategory(ctx context.Context, id, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE raw_records
		SET category = ?, category_provenance = 'MANUAL', category_rule_id = NULL, assigned_at = ?
		WHERE id = ?`,
		strings.TrimSpace(category), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set manual category: %w", err)
	}
	return requireRow(result, "record", id)
}

// ClearManualCategory returns a record to its raw label so that the next
// normalization pass may assign it again.
func (s *SQLiteStorage) ClearManualCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE raw_records
		SET category = category_label, category_provenance = 'RAW', category_rule_id = NULL, assigned_at = ?
		WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to clear manual category: %w", err)
	}
	return requireRow(result, "record", id)
}

func requireRow(result sql.Result, kind, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, common.ErrNotFound)
	}
	return nil
}

func scanRecord(row scanner) (model.RawRecord, error) {
	var (
		rec                                      model.RawRecord
		dueDate, plannedDate, actualDate         sql.NullString
		plannedAmount, actualAmount, grossAmount sql.NullFloat64
		categoryLabel, description, counterparty sql.NullString
		notes, category, ruleID                  sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.Kind, &rec.Status, &dueDate, &plannedDate, &actualDate,
		&plannedAmount, &actualAmount, &grossAmount,
		&categoryLabel, &description, &counterparty, &notes,
		&category, &rec.Assignment.Provenance, &ruleID,
	)
	if err != nil {
		return model.RawRecord{}, err
	}

	rec.DueDate = dueDate.String
	rec.PlannedDate = plannedDate.String
	rec.ActualDate = actualDate.String
	rec.PlannedAmount = floatPtr(plannedAmount)
	rec.ActualAmount = floatPtr(actualAmount)
	rec.GrossAmount = floatPtr(grossAmount)
	rec.CategoryLabel = categoryLabel.String
	rec.Description = description.String
	rec.Counterparty = counterparty.String
	rec.Notes = notes.String
	rec.Assignment.Category = category.String
	rec.Assignment.RuleID = ruleID.String
	return rec, nil
}
