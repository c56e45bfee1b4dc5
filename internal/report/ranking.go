package report

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fleet-ledger/internal/model"
)

// RankKey selects what records are grouped by.
type RankKey string

// Rank key constants.
const (
	RankByCategory RankKey = "category"
	RankByPlate    RankKey = "plate"
	RankByPayer    RankKey = "payer"
)

// SortBy selects the ranking dimension.
type SortBy string

// Sort dimension constants.
const (
	SortByValue SortBy = "value"
	SortByCount SortBy = "count"
)

// ParseRankKey validates a rank key name.
func ParseRankKey(s string) (RankKey, error) {
	switch k := RankKey(s); k {
	case RankByCategory, RankByPlate, RankByPayer:
		return k, nil
	}
	return "", fmt.Errorf("unknown ranking key %q", s)
}

// ParseSortBy validates a sort dimension name.
func ParseSortBy(s string) (SortBy, error) {
	switch v := SortBy(s); v {
	case SortByValue, SortByCount:
		return v, nil
	}
	return "", fmt.Errorf("unknown sort dimension %q", s)
}

// UncategorizedLabel is shown for records without a category.
const UncategorizedLabel = "Uncategorized"

// RankEntry is one group of a ranking.
type RankEntry struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type group struct {
	key   string
	label string
	total decimal.Decimal
	count int
}

// Rank groups the records of q by key and returns the top limit groups,
// sorted descending by the requested dimension. Ties keep the order in which
// groups were first seen in the input. A zero range ranks every record that
// matches scope and view, dated or not. A non-positive limit returns all groups.
func Rank(records []model.CanonicalRecord, q Query, key RankKey, by SortBy, limit int) []RankEntry {
	var groups []*group
	byKey := make(map[string]*group)

	for _, rec := range records {
		if !q.matches(rec) {
			continue
		}
		if !q.Range.IsZero() && !inRange(rec, q.Range) {
			continue
		}

		k, label, ok := groupKey(rec, key)
		if !ok {
			continue
		}

		g, seen := byKey[k]
		if !seen {
			g = &group{key: k, label: label}
			byKey[k] = g
			groups = append(groups, g)
		}
		g.total = g.total.Add(decimal.NewFromFloat(rec.Amount))
		g.count++
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if by == SortByCount {
			return groups[i].count > groups[j].count
		}
		return groups[i].total.GreaterThan(groups[j].total)
	})

	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	entries := make([]RankEntry, len(groups))
	for i, g := range groups {
		entries[i] = RankEntry{
			Key:   g.key,
			Label: g.label,
			Total: g.total.InexactFloat64(),
			Count: g.count,
		}
	}
	return entries
}

func groupKey(rec model.CanonicalRecord, key RankKey) (string, string, bool) {
	switch key {
	case RankByPlate:
		if rec.Plate == "" {
			return "", "", false
		}
		return rec.Plate, formatPlate(rec.Plate), true
	case RankByPayer:
		return string(rec.Payer), string(rec.Payer), true
	default:
		if rec.Category.Category == "" {
			return "", UncategorizedLabel, true
		}
		return rec.Category.Category, rec.Category.Category, true
	}
}

// formatPlate renders a normalized plate the way it is painted: legacy plates
// with a hyphen, current ones without.
func formatPlate(plate string) string {
	if len(plate) == 7 && plate[4] >= '0' && plate[4] <= '9' {
		return plate[:3] + "-" + plate[3:]
	}
	return plate
}
