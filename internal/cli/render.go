package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/period"
	"github.com/Veraticus/fleet-ledger/internal/report"
)

// newTable returns a bordered table whose columns listed in numeric are
// right-aligned.
func newTable(headers []string, numeric ...int) *table.Table {
	right := make(map[int]bool, len(numeric))
	for _, col := range numeric {
		right[col] = true
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(BorderColor)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case right[col]:
				return NumberCellStyle
			default:
				return TableCellStyle
			}
		})
}

func writeLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary writes a period comparison.
func RenderSummary(w io.Writer, s report.Summary, scope model.Scope) error {
	t := newTable([]string{"", "Current", "Previous"}, 1, 2).
		Row("Period", s.Current.String(), s.Previous.String()).
		Row("Total", FormatMoney(s.Total), FormatMoney(s.PrevTotal)).
		Row("Records", strconv.Itoa(s.Count), strconv.Itoa(s.PrevCount))

	lines := []string{
		FormatTitle(fmt.Sprintf("Summary (%s)", scopeName(scope))),
		t.Render(),
		fmt.Sprintf("Change: %s (%s)", FormatMoney(s.DeltaValue), FormatPercent(s.DeltaPct)),
	}
	if scope == "" || scope == model.ScopeBoth {
		lines = append(lines, fmt.Sprintf("Income %s · Expense %s · Margin %s",
			FormatMoney(s.Income), FormatMoney(s.Expense), FormatPercent(s.Margin)))
	}
	return writeLines(w, lines...)
}

// RenderSeries writes one row per bucket.
func RenderSeries(w io.Writer, s report.Series) error {
	t := newTable([]string{"Bucket", "Income", "Expense", "Net", "Records"}, 1, 2, 3, 4)
	for _, p := range s.Points {
		t.Row(p.BucketLabel, FormatMoney(p.Income), FormatMoney(p.Expense), FormatMoney(p.Net), strconv.Itoa(p.Count))
	}

	return writeLines(w,
		FormatTitle(fmt.Sprintf("%s Series by %s", ChartIcon, s.Granularity)),
		t.Render(),
	)
}

// RenderRanking writes ranked groups.
func RenderRanking(w io.Writer, entries []report.RankEntry, key report.RankKey) error {
	if len(entries) == 0 {
		return writeLines(w, FormatInfo("Nothing to rank for this selection"))
	}

	t := newTable([]string{"#", headerFor(key), "Total", "Records"}, 0, 2, 3)
	for i, e := range entries {
		t.Row(strconv.Itoa(i+1), e.Label, FormatMoney(e.Total), strconv.Itoa(e.Count))
	}

	return writeLines(w,
		FormatTitle("Top "+headerFor(key)),
		t.Render(),
	)
}

// RenderRules writes rules in the order given.
func RenderRules(w io.Writer, rules []model.NormalizationRule) error {
	if len(rules) == 0 {
		return writeLines(w, FormatInfo("No normalization rules defined"))
	}

	t := newTable([]string{"ID", "Match", "Pattern", "Category", "Scope", "Priority", "Active"}, 5)
	for _, r := range rules {
		active := SuccessIcon
		if !r.Active {
			active = SubtleStyle.Render("off")
		}
		t.Row(r.ID, string(r.MatchType), r.FromPattern, r.ToCategory, string(r.Scope), strconv.Itoa(r.Priority), active)
	}
	return writeLines(w, t.Render())
}

// RenderRecords writes canonical records with their provenance tags.
func RenderRecords(w io.Writer, records []model.CanonicalRecord) error {
	if len(records) == 0 {
		return writeLines(w, FormatInfo("No records found"))
	}

	t := newTable([]string{"ID", "Date", "Kind", "Amount", "Category", "Plate", "Payer", "Sources"}, 3)
	for _, r := range records {
		date := NotAvailable
		if r.HasDate() {
			date = r.Date.Format(period.DateLayout)
		}
		category := r.Category.Category
		if category == "" {
			category = report.UncategorizedLabel
		}
		t.Row(r.ID, date, string(r.Kind), FormatMoney(r.Amount),
			category+" "+SubtleStyle.Render(string(r.Category.Provenance)),
			r.Plate, string(r.Payer),
			SubtleStyle.Render(string(r.DateSource)+"/"+string(r.AmountSource)))
	}
	return writeLines(w, t.Render())
}

func headerFor(key report.RankKey) string {
	switch key {
	case report.RankByPlate:
		return "Plate"
	case report.RankByPayer:
		return "Payer"
	default:
		return "Category"
	}
}

func scopeName(scope model.Scope) string {
	switch scope {
	case model.ScopeExpense:
		return "expenses"
	case model.ScopeIncome:
		return "income"
	default:
		return "net"
	}
}
