package engine

import "github.com/Veraticus/fleet-ledger/internal/model"

// Normalizer derives category assignments from a rule snapshot.
type Normalizer struct {
	rules *RuleSet
}

// NewNormalizer creates a normalizer bound to one rule snapshot.
func NewNormalizer(rules *RuleSet) *Normalizer {
	return &Normalizer{rules: rules}
}

// Assign computes the category assignment for rec. Manual assignments are
// returned untouched. Otherwise the winning rule's category is used, falling
// back to the raw category label.
func (n *Normalizer) Assign(rec model.RawRecord) model.CategoryAssignment {
	if rec.Assignment.IsManual() {
		return rec.Assignment
	}

	if m, ok := n.rules.Resolve(LabelFor(rec), rec.Kind.Scope()); ok {
		return model.CategoryAssignment{
			Category:   m.Category,
			Provenance: model.ProvenanceRule,
			RuleID:     m.RuleID,
		}
	}

	return model.CategoryAssignment{
		Category:   rec.CategoryLabel,
		Provenance: model.ProvenanceRaw,
	}
}

// Apply returns rec with its assignment recomputed, and whether it changed.
// Only the assignment is written; the fields the label is built from are not.
func (n *Normalizer) Apply(rec model.RawRecord) (model.RawRecord, bool) {
	next := n.Assign(rec)
	if next == rec.Assignment {
		return rec, false
	}
	rec.Assignment = next
	return rec, true
}

// ApplyAll renormalizes every record and returns the ones that changed.
func (n *Normalizer) ApplyAll(records []model.RawRecord) []model.RawRecord {
	var changed []model.RawRecord
	for _, rec := range records {
		if updated, ok := n.Apply(rec); ok {
			changed = append(changed, updated)
		}
	}
	return changed
}
