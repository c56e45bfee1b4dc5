package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fleet-ledger/internal/common"
	"github.com/Veraticus/fleet-ledger/internal/model"
	"github.com/Veraticus/fleet-ledger/internal/period"
)

const testRecords = `[
  {"id": "fuel-jan", "kind": "EXPENSE", "status": "SETTLED", "actual_date": "2026-01-10",
   "actual_amount": 150, "category_label": "Combustivel", "description": "Posto Shell ABC-1234"},
  {"id": "fuel-dec", "kind": "EXPENSE", "status": "SETTLED", "actual_date": "2025-12-10",
   "actual_amount": 80, "category_label": "Combustivel", "description": "Posto Shell ABC-1234"},
  {"id": "rent-jan", "kind": "INCOME", "status": "SETTLED", "actual_date": "2026-01-05",
   "actual_amount": 1000, "category_label": "Aluguel", "description": "Aluguel semanal"},
  {"id": "ipva-jan", "kind": "EXPENSE", "status": "PENDING", "due_date": "2026-01-20",
   "planned_amount": 300, "category_label": "Impostos", "description": "IPVA"}
]`

// run executes the root command against dbPath and returns its stdout.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(bytes.NewReader(nil))
	cmd.SetArgs(append([]string{"--db", dbPath, "--timezone", "UTC", "--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setupCLI(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	recordsPath := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(recordsPath, []byte(testRecords), 0o600))

	dbPath := filepath.Join(dir, "ledger.db")
	out, err := run(t, dbPath, "records", "import", recordsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 4 records")
	return dbPath
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		input   string
		want    model.Scope
		wantErr bool
	}{
		{"", model.ScopeBoth, false},
		{"all", model.ScopeBoth, false},
		{"BOTH", model.ScopeBoth, false},
		{"expense", model.ScopeExpense, false},
		{" Income ", model.ScopeIncome, false},
		{"revenue", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseScope(tt.input)
			if tt.wantErr {
				var userErr *common.UserError
				assert.True(t, errors.As(err, &userErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRange(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		from    string
		to      string
		want    string
		wantErr bool
	}{
		{name: "defaults to month to date", want: "2026-01-01..2026-01-15"},
		{name: "explicit bounds", from: "2025-12-01", to: "2025-12-31", want: "2025-12-01..2025-12-31"},
		{name: "only from", from: "2026-01-10", want: "2026-01-10..2026-01-15"},
		{name: "inverted", from: "2026-02-01", to: "2026-01-01", wantErr: true},
		{name: "malformed", from: "01/01/2026", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRange(tt.from, tt.to, now, time.UTC)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestResolveRange_UsesCivilToday(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:00 UTC on Feb 1 is still Jan 31 in Sao Paulo.
	now := time.Date(2026, 2, 1, 1, 0, 0, 0, time.UTC)
	got, err := resolveRange("", "", now, loc)
	require.NoError(t, err)
	assert.Equal(t, period.MustRange("2026-01-01", "2026-01-31"), got)
}

func TestParseGranularity(t *testing.T) {
	g, err := parseGranularity("auto")
	require.NoError(t, err)
	assert.Empty(t, g)

	g, err = parseGranularity("week")
	require.NoError(t, err)
	assert.Equal(t, period.GranularityWeek, g)

	_, err = parseGranularity("fortnight")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	out, err := run(t, filepath.Join(t.TempDir(), "ledger.db"), "version")
	require.NoError(t, err)
	assert.Equal(t, "ledger dev\n", out)
}

func TestMigrateStatus(t *testing.T) {
	dbPath := setupCLI(t)

	out, err := run(t, dbPath, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 3")
}

func TestRulesAndNormalize(t *testing.T) {
	dbPath := setupCLI(t)

	_, err := run(t, dbPath, "rules", "add", "--id", "fuel", "--from", "shell", "--to", "Combustível", "--scope", "expense", "--priority", "10")
	require.NoError(t, err)

	out, err := run(t, dbPath, "rules", "test", "Posto Shell", "--scope", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Combustível")
	assert.Contains(t, out, "fuel")

	out, err = run(t, dbPath, "rules", "test", "Posto Shell", "--scope", "income")
	require.NoError(t, err)
	assert.Contains(t, out, "No active rule matches")

	out, err = run(t, dbPath, "rules", "test", "Posto Shell", "--scope", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Combustível")

	out, err = run(t, dbPath, "normalize", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Normalization complete")

	out, err = run(t, dbPath, "records", "list", "--kind", "expense", "--json")
	require.NoError(t, err)

	var records []model.CanonicalRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 3)
	for _, rec := range records {
		if rec.ID == "ipva-jan" {
			assert.Equal(t, model.ProvenanceRaw, rec.Category.Provenance)
			continue
		}
		assert.Equal(t, "Combustível", rec.Category.Category, rec.ID)
		assert.Equal(t, model.ProvenanceRule, rec.Category.Provenance, rec.ID)
		assert.Equal(t, "fuel", rec.Category.RuleID, rec.ID)
	}
}

func TestCategorizeSurvivesNormalize(t *testing.T) {
	dbPath := setupCLI(t)

	_, err := run(t, dbPath, "rules", "add", "--id", "fuel", "--from", "shell", "--to", "Combustível")
	require.NoError(t, err)

	_, err = run(t, dbPath, "records", "categorize", "fuel-jan", "Manutenção")
	require.NoError(t, err)

	_, err = run(t, dbPath, "normalize", "-q")
	require.NoError(t, err)

	out, err := run(t, dbPath, "records", "list", "--manual", "--json")
	require.NoError(t, err)

	var records []model.CanonicalRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "fuel-jan", records[0].ID)
	assert.Equal(t, "Manutenção", records[0].Category.Category)
	assert.Equal(t, model.ProvenanceManual, records[0].Category.Provenance)

	_, err = run(t, dbPath, "records", "categorize", "fuel-jan", "--clear")
	require.NoError(t, err)

	out, err = run(t, dbPath, "records", "list", "--manual", "--json")
	require.NoError(t, err)
	records = nil
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Empty(t, records)
}

func TestReportSummary(t *testing.T) {
	dbPath := setupCLI(t)

	out, err := run(t, dbPath, "report", "summary", "--from", "2026-01-01", "--to", "2026-01-31", "--scope", "expense", "--json")
	require.NoError(t, err)

	var summary struct {
		DeltaPct  *float64 `json:"delta_pct"`
		Current   string   `json:"current"`
		Previous  string   `json:"previous"`
		Total     float64  `json:"total"`
		PrevTotal float64  `json:"prev_total"`
		Count     int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))

	// The pending IPVA falls back to its due date and planned amount.
	assert.InDelta(t, 450, summary.Total, 0.001)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 80, summary.PrevTotal, 0.001)
	assert.Equal(t, "2025-12-01..2025-12-31", summary.Previous)
	require.NotNil(t, summary.DeltaPct)
	assert.InDelta(t, 462.5, *summary.DeltaPct, 0.001)
}

func TestReportRankingByPlate(t *testing.T) {
	dbPath := setupCLI(t)

	out, err := run(t, dbPath, "report", "ranking", "--from", "2025-12-01", "--to", "2026-01-31",
		"--scope", "expense", "--by", "plate", "--json")
	require.NoError(t, err)

	var entries []struct {
		Label string  `json:"label"`
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "ABC-1234", entries[0].Label)
	assert.InDelta(t, 230, entries[0].Total, 0.001)
	assert.Equal(t, 2, entries[0].Count)
}

func TestReportOverview(t *testing.T) {
	dbPath := setupCLI(t)

	out, err := run(t, dbPath, "report", "overview", "--from", "2026-01-01", "--to", "2026-01-31", "--json")
	require.NoError(t, err)

	var ov struct {
		Summary map[string]any   `json:"summary"`
		Series  map[string]any   `json:"series"`
		Ranking []map[string]any `json:"ranking"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &ov))
	assert.Equal(t, "2026-01-01..2026-01-31", ov.Summary["current"])
	assert.Equal(t, "day", ov.Series["granularity"])
	assert.NotEmpty(t, ov.Ranking)

	_, err = run(t, dbPath, "report", "overview", "--view", "everyone")
	assert.Error(t, err)
}

func TestRecordsImport_InvalidFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "x", "kind": "EXPENSE", "colour": "red"}]`), 0o600))

	_, err := run(t, filepath.Join(dir, "ledger.db"), "records", "import", path)
	var userErr *common.UserError
	assert.True(t, errors.As(err, &userErr))
}

func TestOverdueRecords(t *testing.T) {
	day := func(s string) *time.Time {
		d := period.MustRange(s, s).From
		return &d
	}
	records := []model.CanonicalRecord{
		{ID: "late", Status: model.StatusPending, DueDate: day("2026-01-10")},
		{ID: "paid", Status: model.StatusSettled, DueDate: day("2026-01-10")},
		{ID: "voided", Status: model.StatusCanceled, DueDate: day("2026-01-10")},
		{ID: "due-today", Status: model.StatusPending, DueDate: day("2026-01-15")},
		{ID: "no-due", Status: model.StatusPending},
	}
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	got := overdueRecords(records, now, time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, "late", got[0].ID)
}

func TestRecordsListOverdue(t *testing.T) {
	dbPath := setupCLI(t)

	out, err := run(t, dbPath, "records", "list", "--overdue", "--json")
	require.NoError(t, err)

	var records []model.CanonicalRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "ipva-jan", records[0].ID)
	require.NotNil(t, records[0].DueDate)
	assert.Equal(t, "2026-01-20", records[0].DueDate.Format(period.DateLayout))
}
