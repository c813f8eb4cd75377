package simulator

import (
	"solar_savings/internal/config"
	"solar_savings/internal/energy"
	"solar_savings/internal/model"
)

// Report compares a completed month against the same household buying all
// of its electricity from the grid.
type Report struct {
	OldMonthlyBill float64 `json:"old_monthly_bill"`
	NewMonthlyBill float64 `json:"new_monthly_bill"`
	MonthlySavings float64 `json:"monthly_savings"`

	SolarKWh      float64 `json:"solar_kwh"`
	ConsumedKWh   float64 `json:"consumed_kwh"`
	SelfUseKWh    float64 `json:"self_use_kwh"`
	GridImportKWh float64 `json:"grid_import_kwh"`
	GridExportKWh float64 `json:"grid_export_kwh"`
	StoredKWh     float64 `json:"stored_kwh"`

	// Value of exported energy beyond its feed-in credit, priced at the
	// blended grid rate. Never negative.
	LostExportValue float64 `json:"lost_export_value"`
	BatteryAdvised  bool    `json:"battery_advised"`
}

// DeriveReport builds the end-of-month report from accumulated totals. The
// baseline bill prices the projected usage at the flat rate, the same rate
// the accumulated grid cost is built on.
func DeriveReport(acc Progress, audit model.AuditInput, p config.Pricing) Report {
	oldBill := audit.ProjectedUsageKWh() * p.FlatRatePerKWh
	newBill := acc.GridCost

	lost := acc.GridExportKWh * (p.BlendedGridRate - p.NEMExportRate)
	if lost < 0 {
		lost = 0
	}

	return Report{
		OldMonthlyBill: oldBill,
		NewMonthlyBill: newBill,
		MonthlySavings: oldBill - newBill,

		SolarKWh:      acc.SolarKWh,
		ConsumedKWh:   acc.ConsumedKWh,
		SelfUseKWh:    acc.SelfUseKWh,
		GridImportKWh: acc.GridImportKWh,
		GridExportKWh: acc.GridExportKWh,
		StoredKWh:     acc.StoredKWh,

		LostExportValue: lost,
		BatteryAdvised:  lost > p.BatteryAdviceThreshold,
	}
}

// Summarize runs a full month synchronously and returns the daily flows
// together with the final report. It walks the same tick path as the
// animated engine.
func Summarize(audit model.AuditInput, strategy model.StrategyConfig, p config.Pricing) (energy.Flows, Report) {
	flows := energy.Allocate(audit, strategy, p)

	var acc Progress
	for acc.Tick < TotalTicks {
		addTick(&acc, flows)
	}
	return flows, DeriveReport(acc, audit, p)
}
