// Package engine implements the category normalization rule engine: building
// the match label of a record, selecting the winning rule and applying it
// without overriding manual corrections.
package engine

import (
	"strings"

	"github.com/Veraticus/fleet-ledger/internal/model"
)

// LabelSeparator joins the descriptive fields of a record into one label.
const LabelSeparator = " | "

// BuildLabel concatenates the non-blank fields in the order given.
func BuildLabel(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, LabelSeparator)
}

// LabelFor builds the match label of a record from counterparty, description,
// raw category label and notes. The derived category is never part of it.
func LabelFor(rec model.RawRecord) string {
	return BuildLabel(rec.Counterparty, rec.Description, rec.CategoryLabel, rec.Notes)
}
