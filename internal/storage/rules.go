package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/pattern"
)

const ruleColumns = `id, from_pattern, match_type, scope, to_category, priority, active, created_at, updated_at`

// CreateRule stores a new normalization rule. An empty ID is replaced with a
// generated one; timestamps are set to now.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.NormalizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := pattern.ValidateRule(*rule); err != nil {
		return err
	}

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO normalization_rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.FromPattern, rule.MatchType, rule.Scope, rule.ToCategory,
		rule.Priority, rule.Active, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("rule %q: %w", rule.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// GetRule retrieves a rule by ID.
func (s *SQLiteStorage) GetRule(ctx context.Context, id string) (*model.NormalizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM normalization_rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rule %q: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &rule, nil
}

// ListRules returns rules in precedence order. When activeOnly is set,
// deactivated rules are left out.
func (s *SQLiteStorage) ListRules(ctx context.Context, activeOnly bool) ([]model.NormalizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + ruleColumns + ` FROM normalization_rules`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY priority DESC, updated_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.NormalizationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// UpdateRule replaces an existing rule and bumps its UpdatedAt.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.NormalizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := validateString(rule.ID, "rule.ID"); err != nil {
		return err
	}
	if err := pattern.ValidateRule(*rule); err != nil {
		return err
	}

	updatedAt := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE normalization_rules SET
			from_pattern = ?, match_type = ?, scope = ?, to_category = ?,
			priority = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		rule.FromPattern, rule.MatchType, rule.Scope, rule.ToCategory,
		rule.Priority, rule.Active, updatedAt, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("rule %q: %w", rule.ID, common.ErrNotFound)
	}

	rule.UpdatedAt = updatedAt
	return nil
}

// DeleteRule removes a rule. Records previously assigned by it keep their
// category until the next normalization pass.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM normalization_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("rule %q: %w", id, common.ErrNotFound)
	}
	return nil
}

// ImportRules creates or replaces rules by ID in a single transaction. Every
// rule is validated before anything is written. Existing rules whose content
// is unchanged keep their timestamps, so re-importing a file does not alter
// tie-break order. On return each rule carries its stored timestamps.
func (s *SQLiteStorage) ImportRules(ctx context.Context, rules []model.NormalizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(rules) == 0 {
		return fmt.Errorf("%w: rules", ErrEmptySlice)
	}
	for i := range rules {
		if err := pattern.ValidateRule(rules[i]); err != nil {
			return fmt.Errorf("rule at index %d: %w", i, err)
		}
	}

	now := time.Now().UTC()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO normalization_rules (`+ruleColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				from_pattern = excluded.from_pattern,
				match_type = excluded.match_type,
				scope = excluded.scope,
				to_category = excluded.to_category,
				priority = excluded.priority,
				active = excluded.active,
				updated_at = excluded.updated_at
			WHERE from_pattern IS NOT excluded.from_pattern
				OR match_type IS NOT excluded.match_type
				OR scope IS NOT excluded.scope
				OR to_category IS NOT excluded.to_category
				OR priority IS NOT excluded.priority
				OR active IS NOT excluded.active`)
		if err != nil {
			return fmt.Errorf("failed to prepare rule import: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		stamps, err := tx.PrepareContext(ctx,
			`SELECT created_at, updated_at FROM normalization_rules WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare rule import: %w", err)
		}
		defer func() { _ = stamps.Close() }()

		for i := range rules {
			rule := &rules[i]
			if rule.ID == "" {
				rule.ID = uuid.NewString()
			}
			if _, err := stmt.ExecContext(ctx,
				rule.ID, rule.FromPattern, rule.MatchType, rule.Scope, rule.ToCategory,
				rule.Priority, rule.Active, now, now,
			); err != nil {
				return fmt.Errorf("failed to import rule %q: %w", rule.ID, err)
			}
			if err := stamps.QueryRowContext(ctx, rule.ID).Scan(&rule.CreatedAt, &rule.UpdatedAt); err != nil {
				return fmt.Errorf("failed to read back rule %q: %w", rule.ID, err)
			}
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(row scanner) (model.NormalizationRule, error) {
	var rule model.NormalizationRule
	err := row.Scan(
		&rule.ID, &rule.FromPattern, &rule.MatchType, &rule.Scope, &rule.ToCategory,
		&rule.Priority, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt,
	)
	return rule, err
}
