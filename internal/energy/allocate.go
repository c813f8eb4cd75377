package energy

import (
	"math"

	"solar_savings/internal/config"
	"solar_savings/internal/model"
	"solar_savings/internal/solar"
)

// DaysPerMonth converts between daily and monthly figures. Daily cost is
// the unit of truth; monthly values are always daily × 30.
const DaysPerMonth = 30

// Flows is one day of energy allocation for a fixed household and system
// configuration.
type Flows struct {
	DayUseKWh          float64 `json:"day_use_kwh"`
	NightUseKWh        float64 `json:"night_use_kwh"`
	SolarKWh           float64 `json:"solar_kwh"`
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh"`

	SelfUseKWh    float64 `json:"self_use_kwh"`
	StoredKWh     float64 `json:"stored_kwh"`
	ExportKWh     float64 `json:"export_kwh"`
	GridImportKWh float64 `json:"grid_import_kwh"`
	BilledKWh     float64 `json:"billed_kwh"`

	DailyCost   float64 `json:"daily_cost"`
	MonthlyCost float64 `json:"monthly_cost"`
}

// Allocate computes one day of energy flows and the resulting grid cost at
// the flat rate. Results are derived fresh on every call; inputs are
// assumed range-checked by the caller.
//
// Export is always worth less than import: surplus sold without a battery
// earns a fraction of the flat rate, and surplus left over after charging a
// battery earns a smaller fraction still. Stored energy offsets night load
// before any billing.
func Allocate(audit model.AuditInput, strategy model.StrategyConfig, p config.Pricing) Flows {
	usage := audit.ProjectedUsageKWh()
	dayDaily := usage * strategy.DayFraction() / DaysPerMonth
	nightDaily := usage * (1 - strategy.DayFraction()) / DaysPerMonth

	arr := solar.Array{Count: strategy.PanelCount, PanelKW: strategy.PanelKW()}
	solarDaily := arr.DailyYieldKWh(p.SolarYieldPerKW)

	f := Flows{
		DayUseKWh:          dayDaily,
		NightUseKWh:        nightDaily,
		SolarKWh:           solarDaily,
		BatteryCapacityKWh: strategy.BatteryCapacityKWh(p.BatteryUnitCapacityKWh),
	}

	rate := p.FlatRatePerKWh

	if dayDaily > solarDaily {
		// Solar cannot cover the daytime load: the night load and the
		// daytime shortfall are both bought from the grid.
		f.SelfUseKWh = solarDaily
		f.GridImportKWh = nightDaily + (dayDaily - solarDaily)
		f.BilledKWh = f.GridImportKWh
		f.DailyCost = f.GridImportKWh * rate
	} else {
		excess := solarDaily - dayDaily
		f.SelfUseKWh = dayDaily

		if f.BatteryCapacityKWh > 0 {
			// Surplus charges the battery first; only the overflow is
			// exported, at the reduced post-battery credit.
			f.StoredKWh = math.Min(excess, f.BatteryCapacityKWh)
			f.ExportKWh = math.Max(0, excess-f.BatteryCapacityKWh)
			nightUnmet := math.Max(0, nightDaily-f.StoredKWh)
			f.GridImportKWh = nightUnmet
			credit := f.ExportKWh * rate * p.ExportCreditFactorWithBattery
			f.DailyCost = math.Max(0, nightUnmet*rate-credit)
		} else {
			f.ExportKWh = excess
			f.GridImportKWh = nightDaily
			credit := excess * rate * p.ExportCreditFactorNoBattery
			f.DailyCost = math.Max(0, nightDaily*rate-credit)
		}
		f.BilledKWh = f.DailyCost / rate
	}

	f.MonthlyCost = f.DailyCost * DaysPerMonth
	return f
}

// BatteryFillPct returns how full the battery ends the day, guarding the
// zero-capacity case.
func (f Flows) BatteryFillPct() float64 {
	if f.BatteryCapacityKWh <= 0 {
		return 0
	}
	return f.StoredKWh / f.BatteryCapacityKWh * 100
}
