// Package report aggregates canonical ledger records into summaries, time
// series and rankings. It performs no I/O and holds no shared mutable state,
// so every function is safe for concurrent use.
package report

import (
	"time"

	"github.com/Veraticus/fleet-ledger/internal/engine"
	"github.com/Veraticus/fleet-ledger/internal/extract"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/period"
	"github.com/Veraticus/fleet-ledger/internal/resolve"
)

// Canonicalizer turns raw records into canonical ones. The zero value resolves
// dates in UTC, applies no rules and uses the default plate exclusions.
type Canonicalizer struct {
	Location *time.Location
	Rules    *engine.RuleSet
	Plates   *extract.PlateExtractor
}

// Canonicalize derives the canonical view of a single record. index is the
// record's position in the input collection.
func (c Canonicalizer) Canonicalize(rec model.RawRecord, index int) model.CanonicalRecord {
	date := resolve.Date(rec, c.location())
	amount := resolve.Amount(rec)
	text := engine.BuildLabel(rec.Description, rec.Counterparty, rec.Notes)

	plates := c.Plates
	if plates == nil {
		plates = extract.NewPlateExtractor(extract.DefaultPlateExclusions)
	}

	return model.CanonicalRecord{
		ID:             rec.ID,
		Index:          index,
		Kind:           rec.Kind,
		Status:         rec.Status,
		Date:           date.Ptr(),
		DueDate:        dueDate(rec.DueDate, c.location()),
		DateSource:     date.Source,
		Amount:         amount.Amount,
		AmountSource:   amount.Source,
		Category:       engine.NewNormalizer(c.Rules).Assign(rec),
		Plate:          plates.Extract(text),
		CitationNumber: extract.ExtractCitationNumber(text),
		Payer:          extract.DerivePayer(text),
	}
}

// CanonicalizeAll derives canonical records for a whole collection, keeping
// input order.
func (c Canonicalizer) CanonicalizeAll(records []model.RawRecord) []model.CanonicalRecord {
	if c.Plates == nil {
		c.Plates = extract.NewPlateExtractor(extract.DefaultPlateExclusions)
	}
	out := make([]model.CanonicalRecord, len(records))
	for i, rec := range records {
		out[i] = c.Canonicalize(rec, i)
	}
	return out
}

func dueDate(s string, loc *time.Location) *time.Time {
	if s == "" {
		return nil
	}
	d, err := period.ParseDate(s, loc)
	if err != nil {
		return nil
	}
	return &d
}

func (c Canonicalizer) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
