package model

import "time"

// CanonicalRecord is the derived, always recomputable view of a RawRecord.
// Date is nil when no candidate date could be resolved. DueDate is the
// record's own due date when it is a valid calendar day, whatever date won.
type CanonicalRecord struct {
	Date           *time.Time         `json:"date,omitempty"`
	DueDate        *time.Time         `json:"due_date,omitempty"`
	ID             string             `json:"id"`
	Kind           RecordKind         `json:"kind"`
	Status         SettlementStatus   `json:"status"`
	DateSource     DateSource         `json:"date_source"`
	AmountSource   AmountSource       `json:"amount_source"`
	Plate          string             `json:"plate,omitempty"`
	CitationNumber string             `json:"citation_number,omitempty"`
	Payer          Payer              `json:"payer"`
	Category       CategoryAssignment `json:"category"`
	Amount         float64            `json:"amount"`
	// Position of the source row in the input collection.
	Index int `json:"index"`
}

// HasDate reports whether the record can take part in date-keyed views.
func (c CanonicalRecord) HasDate() bool {
	return c.Date != nil
}
