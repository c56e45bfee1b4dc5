package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/fleet-ledger/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrEmptySlice        = errors.New("slice cannot be empty")
	ErrInvalidRecord     = errors.New("invalid record")
	ErrInvalidAssignment = errors.New("invalid category assignment")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecords validates a slice of records.
func validateRecords(records []model.RawRecord) error {
	if records == nil {
		return fmt.Errorf("%w: records", ErrNilParameter)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}

	for i := range records {
		if err := validateRecord(&records[i]); err != nil {
			return fmt.Errorf("record at index %d: %w", i, err)
		}
	}
	return nil
}

// validateRecord validates a single record. A missing ID is allowed; one is
// generated on save.
func validateRecord(rec *model.RawRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if !rec.Kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, rec.Kind)
	}
	if !rec.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, rec.Status)
	}
	for name, amount := range map[string]*float64{
		"planned_amount": rec.PlannedAmount,
		"actual_amount":  rec.ActualAmount,
		"gross_amount":   rec.GrossAmount,
	} {
		if amount != nil && (math.IsNaN(*amount) || math.IsInf(*amount, 0)) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidRecord, name)
		}
	}
	if rec.Assignment.Provenance != "" {
		return validateAssignment(rec.Assignment)
	}
	return nil
}

// validateAssignment validates a category assignment.
func validateAssignment(a model.CategoryAssignment) error {
	if !a.Provenance.IsValid() {
		return fmt.Errorf("%w: unknown provenance %q", ErrInvalidAssignment, a.Provenance)
	}
	if a.Provenance == model.ProvenanceRule && a.RuleID == "" {
		return fmt.Errorf("%w: rule assignment without rule ID", ErrInvalidAssignment)
	}
	if a.Provenance == model.ProvenanceManual && strings.TrimSpace(a.Category) == "" {
		return fmt.Errorf("%w: manual assignment without category", ErrInvalidAssignment)
	}
	return nil
}
