// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/fleet-ledger/internal/model"
)

// RecordFilter defines filtering options for record queries. Zero fields
// do not filter.
type RecordFilter struct {
	Kind       model.RecordKind
	Status     model.SettlementStatus
	Provenance model.CategoryProvenance
	Limit      int
	Offset     int
}

// RuleStore persists normalization rules.
type RuleStore interface {
	CreateRule(ctx context.Context, rule *model.NormalizationRule) error
	GetRule(ctx context.Context, id string) (*model.NormalizationRule, error)
	ListRules(ctx context.Context, activeOnly bool) ([]model.NormalizationRule, error)
	UpdateRule(ctx context.Context, rule *model.NormalizationRule) error
	DeleteRule(ctx context.Context, id string) error
	ImportRules(ctx context.Context, rules []model.NormalizationRule) error
}

// RecordStore persists raw ledger records and their category assignments.
type RecordStore interface {
	SaveRecords(ctx context.Context, records []model.RawRecord) error
	GetRecord(ctx context.Context, id string) (*model.RawRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.RawRecord, error)
	UpdateAssignments(ctx context.Context, records []model.RawRecord) (int, error)
	SetManualCategory(ctx context.Context, id, category string) error
	ClearManualCategory(ctx context.Context, id string) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	RuleStore
	RecordStore

	// Database management
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}

// NormalizeStats shows the results of a normalization run.
type NormalizeStats struct {
	TotalRecords int
	Reassigned   int
	Manual       int
	ActiveRules  int
	Duration     time.Duration
}
