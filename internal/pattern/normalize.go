package pattern

import "strings"

// Normalize trims, lowercases and collapses internal whitespace so that two
// labels differing only in case or spacing compare equal.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
