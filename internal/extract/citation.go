package extract

import "regexp"

// CitationMarker is a label that introduces a traffic citation number.
type CitationMarker struct {
	Pattern *regexp.Regexp
	Name    string
}

func citationMarker(name, marker string) CitationMarker {
	return CitationMarker{
		Name:    name,
		Pattern: regexp.MustCompile(`(?i)` + marker + `[^0-9\n]{0,20}?([0-9]{6,15})\b`),
	}
}

// CitationMarkers is tried in order; the first marker with a match wins.
var CitationMarkers = []CitationMarker{
	citationMarker("AIT", `\bAIT\b`),
	citationMarker("AUTO", `\bAUTO\b`),
	citationMarker("NUMBER", `(?:\bn[º°]|\bnr\.?|\bnum\.?|\bn[uú]mero\b|#)`),
}

// ExtractCitationNumber returns the first citation number found after one of
// the markers, or "" when there is none.
func ExtractCitationNumber(text string) string {
	for _, marker := range CitationMarkers {
		if m := marker.Pattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
