package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/service"
)

// DefaultBatchSize is how many reassigned records are written per transaction.
const DefaultBatchSize = 500

// Progress is called after each written batch.
type Progress func(done, total int)

// NormalizeStored reloads the rule snapshot, recomputes the category
// assignment of every stored record and writes back the ones that changed.
func NormalizeStored(ctx context.Context, store service.RecordStore, cache *SnapshotCache, batchSize int, progress Progress) (service.NormalizeStats, error) {
	start := time.Now()
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	set, err := cache.Reload(ctx)
	if err != nil {
		return service.NormalizeStats{}, err
	}

	records, err := store.ListRecords(ctx, service.RecordFilter{})
	if err != nil {
		return service.NormalizeStats{}, fmt.Errorf("failed to load records: %w", err)
	}

	stats := service.NormalizeStats{
		TotalRecords: len(records),
		ActiveRules:  set.Len(),
	}
	for _, rec := range records {
		if rec.Assignment.IsManual() {
			stats.Manual++
		}
	}

	changed := NewNormalizer(set).ApplyAll(records)
	for lo := 0; lo < len(changed); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		hi := min(lo+batchSize, len(changed))

		updated, err := store.UpdateAssignments(ctx, changed[lo:hi])
		if err != nil {
			common.LogError(err, "Batch write failed", common.Fields{
				"offset":  lo,
				"written": stats.Reassigned,
			})
			return stats, fmt.Errorf("failed to write assignments: %w", err)
		}
		stats.Reassigned += updated

		if progress != nil {
			progress(hi, len(changed))
		}
	}

	stats.Duration = time.Since(start)
	slog.Info("Normalization complete",
		"records", stats.TotalRecords,
		"reassigned", stats.Reassigned,
		"manual", stats.Manual,
		"rules", stats.ActiveRules,
		"duration", stats.Duration)

	return stats, nil
}
