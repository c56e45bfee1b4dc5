// Package extract pulls vehicle plates, citation numbers and the paying party
// out of free-text ledger fields. Every heuristic is driven by a data table so
// that keyword and exclusion lists can grow without touching control flow.
package extract

import (
	"regexp"
	"strings"
)

// DefaultPlateExclusions lists prefixes of reference codes that happen to have
// the shape of a plate, e.g. "LOC-3422" for a rental contract.
var DefaultPlateExclusions = []string{
	"LOC", // locação contract numbers
	"REF",
	"DOC",
	"PED",
	"NFE",
	"NFS",
	"FAT",
	"CTR",
	"BOL",
}

// MonthAbbreviations are Portuguese and English month prefixes. Unlabeled
// legacy-shaped tokens made of one of these and a year, e.g. "jan2026" or
// "DEZ2025", are billing periods rather than plates.
var MonthAbbreviations = []string{
	"JAN", "FEV", "MAR", "ABR", "MAI", "JUN", "JUL", "AGO", "SET", "OUT", "NOV", "DEZ",
	"FEB", "APR", "MAY", "AUG", "SEP", "OCT", "DEC",
}

var yearDigits = regexp.MustCompile(`^(?:19|20)[0-9]{2}$`)

const plateShape = `[A-Z]{3}-?[0-9][A-Z0-9][0-9]{2}`

var (
	labeledPlate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:placa|plate|ve[ií]culo|vehicle)\s*:\s*(` + plateShape + `)\b`),
		regexp.MustCompile(`(?i)\bAIT\b\s*:?[^\n]*?\b(?:placa|plate)\s*:?\s*(` + plateShape + `)\b`),
	}
	currentPlate = regexp.MustCompile(`(?i)\b[A-Z]{3}-?[0-9][A-Z][0-9]{2}\b`)
	legacyPlate  = regexp.MustCompile(`(?i)\b[A-Z]{3}-?[0-9]{4}\b`)
)

// PlateExtractor finds vehicle plates in free text.
type PlateExtractor struct {
	exclusions []string
	months     map[string]bool
}

// NewPlateExtractor creates an extractor that rejects plates starting with any
// of the given prefixes.
func NewPlateExtractor(exclusions []string) *PlateExtractor {
	normalized := make([]string, 0, len(exclusions))
	for _, e := range exclusions {
		if e = NormalizePlate(e); e != "" {
			normalized = append(normalized, e)
		}
	}
	months := make(map[string]bool, len(MonthAbbreviations))
	for _, m := range MonthAbbreviations {
		months[m] = true
	}
	return &PlateExtractor{exclusions: normalized, months: months}
}

var defaultPlates = NewPlateExtractor(DefaultPlateExclusions)

// ExtractPlate finds a plate using the default exclusion list.
func ExtractPlate(text string) string {
	return defaultPlates.Extract(text)
}

// Extract returns the normalized plate found in text, or "" when none is found.
// Labeled plates take precedence, then the current plate format, then the
// legacy one. Unlabeled legacy matches that read as a month and year are
// skipped.
func (p *PlateExtractor) Extract(text string) string {
	if text == "" {
		return ""
	}

	for _, re := range labeledPlate {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if plate, ok := p.accept(m[1]); ok {
				return plate
			}
		}
	}

	for _, m := range currentPlate.FindAllString(text, -1) {
		if plate, ok := p.accept(m); ok {
			return plate
		}
	}

	for _, m := range legacyPlate.FindAllString(text, -1) {
		plate, ok := p.accept(m)
		if ok && !p.isMonthYear(plate) {
			return plate
		}
	}

	return ""
}

func (p *PlateExtractor) accept(candidate string) (string, bool) {
	plate := NormalizePlate(candidate)
	if plate == "" {
		return "", false
	}
	for _, prefix := range p.exclusions {
		if strings.HasPrefix(plate, prefix) {
			return "", false
		}
	}
	return plate, true
}

func (p *PlateExtractor) isMonthYear(plate string) bool {
	return len(plate) == 7 && p.months[plate[:3]] && yearDigits.MatchString(plate[3:])
}

// NormalizePlate upper-cases a plate and strips hyphens and spaces.
func NormalizePlate(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", " ", "").Replace(s)
}
