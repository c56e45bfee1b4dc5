package testutil

import "github.com/Veraticus/fleet-ledger/internal/model"

// FleetRules is a small rule set for a rental fleet ledger.
func FleetRules() []model.NormalizationRule {
	return []model.NormalizationRule{
		NewRule("posto", "Combustível").WithID("fuel").Scoped(model.ScopeExpense).Priority(10).Build(),
		NewRule(`\bmulta\b`, "Multas").WithID("fines").Regex().Scoped(model.ScopeExpense).Priority(20).Build(),
		NewRule("aluguel", "Locação").WithID("rent").Scoped(model.ScopeIncome).Build(),
	}
}

// FleetRecords covers two months of a two-vehicle fleet: rent income, fuel,
// a traffic fine billed to the driver, an owner tax and a canceled charge.
func FleetRecords() []model.RawRecord {
	return []model.RawRecord{
		NewRecord("rent-dec").Income().Settled().Due("2025-12-08").Actual(1200).
			Described("Aluguel semanal ABC-1234").Build(),
		NewRecord("fuel-dec").Settled().Due("2025-12-12").Actual(250).
			Described("Posto Shell ABC1234").Labeled("Diversos").Build(),
		NewRecord("rent-jan").Income().Settled().Due("2026-01-05").Actual(1500).
			Described("Aluguel semanal BRA2E19").Build(),
		NewRecord("fuel-jan").Settled().Due("2026-01-09").Actual(300).Planned(280).
			Described("Posto Ipiranga BRA2E19").Labeled("Diversos").Build(),
		NewRecord("fine-jan").Due("2026-01-20").Planned(195.23).
			Described("Multa AIT 987654321 placa: BRA2E19").Noted("cobrar do motorista").Build(),
		NewRecord("ipva-jan").Settled().PlannedOn("2026-01-25").Gross(1000).
			Described("IPVA 2026 ABC-1234").Labeled("Impostos").Build(),
		NewRecord("canceled-jan").Canceled().Due("2026-01-15").Planned(999).
			Described("Seguro duplicado").Build(),
		NewRecord("undated").Planned(50).Described("Lavagem").Labeled("Limpeza").Build(),
	}
}
