package model

// DateSource records which fallback step produced a canonical date.
type DateSource string

// Date source constants, in resolution order.
const (
	DateFromDue     DateSource = "DUE_DATE"
	DateFromPlanned DateSource = "PLANNED_DATE"
	DateFromActual  DateSource = "ACTUAL_DATE"
	DateUnresolved  DateSource = "UNRESOLVED"
)

// AmountSource records which fallback step produced a canonical amount.
type AmountSource string

// Amount source constants, in resolution order.
const (
	AmountFromActual  AmountSource = "ACTUAL_AMOUNT"
	AmountFromPlanned AmountSource = "PLANNED_AMOUNT"
	AmountFromGross   AmountSource = "GROSS_AMOUNT"
	AmountDefaulted   AmountSource = "DEFAULT_ZERO"
)

// CategoryProvenance indicates how a record's category was obtained.
type CategoryProvenance string

// Category provenance constants.
const (
	ProvenanceRaw    CategoryProvenance = "RAW"
	ProvenanceRule   CategoryProvenance = "RULE"
	ProvenanceManual CategoryProvenance = "MANUAL"
)

// IsValid reports whether p is one of the known provenance tags.
func (p CategoryProvenance) IsValid() bool {
	switch p {
	case ProvenanceRaw, ProvenanceRule, ProvenanceManual:
		return true
	}
	return false
}

// CategoryAssignment is the derived category of a record together with how it
// was obtained. A zero value means nothing has been assigned yet.
type CategoryAssignment struct {
	Category   string             `json:"category,omitempty"`
	Provenance CategoryProvenance `json:"provenance,omitempty"`
	RuleID     string             `json:"rule_id,omitempty"`
}

// IsManual reports whether the assignment is a human correction. Manual
// assignments are never replaced by automatic normalization.
func (a CategoryAssignment) IsManual() bool {
	return a.Provenance == ProvenanceManual
}

// Payer identifies which party economically bears a cost.
type Payer string

// Payer constants.
const (
	PayerOwner    Payer = "owner"
	PayerOperator Payer = "operator"
	PayerUnknown  Payer = "unknown"
)
