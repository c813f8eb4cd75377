package energy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"solar_savings/internal/config"
	"solar_savings/internal/model"
)

func TestAllocate_NoBatteryExport(t *testing.T) {
	audit := model.AuditInput{UsageKWh: 900}
	strategy := model.StrategyConfig{
		DayUsagePct: 60,
		PanelWatts:  615,
		PanelCount:  12,
	}

	f := Allocate(audit, strategy, config.Default())

	assert.InDelta(t, 18, f.DayUseKWh, 1e-9)    // 900 × 0.6 / 30
	assert.InDelta(t, 12, f.NightUseKWh, 1e-9)  // 900 × 0.4 / 30
	assert.InDelta(t, 25.83, f.SolarKWh, 1e-9)  // 12 × 0.615 × 3.5
	assert.InDelta(t, 18, f.SelfUseKWh, 1e-9)   // daytime load fully covered
	assert.InDelta(t, 7.83, f.ExportKWh, 1e-9)  // 25.83 - 18
	assert.Equal(t, 0.0, f.StoredKWh)
	assert.Equal(t, 0.0, f.BatteryCapacityKWh)
	assert.InDelta(t, 12, f.GridImportKWh, 1e-9)

	// credit = 7.83 × 0.5 × 0.7 = 2.7405
	// daily cost = 12 × 0.5 - 2.7405 = 3.2595
	assert.InDelta(t, 3.2595, f.DailyCost, 1e-9)
	assert.InDelta(t, 6.519, f.BilledKWh, 1e-9)
	assert.InDelta(t, 97.785, f.MonthlyCost, 1e-9)
}

func TestAllocate_WithBattery(t *testing.T) {
	audit := model.AuditInput{UsageKWh: 900}
	strategy := model.StrategyConfig{
		DayUsagePct:    60,
		PanelWatts:     615,
		PanelCount:     12,
		BatteryEnabled: true,
		BatteryUnits:   1,
	}

	f := Allocate(audit, strategy, config.Default())

	// The whole 7.83 kWh surplus fits into the 10 kWh unit.
	assert.InDelta(t, 10, f.BatteryCapacityKWh, 1e-9)
	assert.InDelta(t, 7.83, f.StoredKWh, 1e-9)
	assert.Equal(t, 0.0, f.ExportKWh)

	// night unmet = 12 - 7.83 = 4.17, cost = 4.17 × 0.5 = 2.085
	assert.InDelta(t, 4.17, f.GridImportKWh, 1e-9)
	assert.InDelta(t, 2.085, f.DailyCost, 1e-9)
	assert.InDelta(t, 62.55, f.MonthlyCost, 1e-9)

	noBattery := strategy
	noBattery.BatteryEnabled = false
	noBattery.BatteryUnits = 0
	assert.Less(t, f.MonthlyCost, Allocate(audit, noBattery, config.Default()).MonthlyCost,
		"battery must beat exporting the same surplus")
}

func TestAllocate_SolarShortfall(t *testing.T) {
	audit := model.AuditInput{UsageKWh: 900}
	strategy := model.StrategyConfig{
		DayUsagePct: 60,
		PanelWatts:  615,
		PanelCount:  6,
	}

	f := Allocate(audit, strategy, config.Default())

	// solar = 6 × 0.615 × 3.5 = 12.915, shortfall = 18 - 12.915 = 5.085
	assert.InDelta(t, 12.915, f.SolarKWh, 1e-9)
	assert.InDelta(t, 12.915, f.SelfUseKWh, 1e-9)
	assert.InDelta(t, 17.085, f.GridImportKWh, 1e-9) // 12 + 5.085
	assert.Equal(t, 0.0, f.ExportKWh)
	assert.Equal(t, 0.0, f.StoredKWh)
	assert.InDelta(t, 8.5425, f.DailyCost, 1e-9)
	assert.InDelta(t, 256.275, f.MonthlyCost, 1e-9)
}

func TestAllocate_ZeroSolar(t *testing.T) {
	// The form enforces a minimum panel count; a zero-panel configuration
	// must still degenerate to billing the full usage at the flat rate.
	audit := model.AuditInput{UsageKWh: 600}
	strategy := model.StrategyConfig{DayUsagePct: 50, PanelWatts: 615}

	f := Allocate(audit, strategy, config.Default())

	assert.Equal(t, 0.0, f.SolarKWh)
	assert.Equal(t, 0.0, f.SelfUseKWh)
	assert.Equal(t, 0.0, f.ExportKWh)
	assert.Equal(t, 0.0, f.StoredKWh)
	assert.InDelta(t, 20, f.GridImportKWh, 1e-9) // 600 / 30
	assert.InDelta(t, 10, f.DailyCost, 1e-9)
	assert.InDelta(t, 300, f.MonthlyCost, 1e-9) // 600 × 0.5
}

func TestAllocate_SolarMatchesDaytime(t *testing.T) {
	// 840 kWh at a 50% split is 14 kWh/day; 10 × 0.7 kW × 2.0 yield = 14.
	p := config.Default()
	p.SolarYieldPerKW = 2.0
	audit := model.AuditInput{UsageKWh: 840}
	strategy := model.StrategyConfig{
		DayUsagePct: 50,
		PanelWatts:  700,
		PanelCount:  10,
	}

	f := Allocate(audit, strategy, p)

	assert.InDelta(t, 14, f.SolarKWh, 1e-9)
	assert.Equal(t, 0.0, f.ExportKWh)
	assert.Equal(t, 0.0, f.StoredKWh)
	// Bill is exactly the night load: 14 × 0.5 = 7.
	assert.InDelta(t, 7, f.DailyCost, 1e-9)

	withBattery := strategy
	withBattery.BatteryEnabled = true
	withBattery.BatteryUnits = 1
	fb := Allocate(audit, withBattery, p)
	assert.Equal(t, 0.0, fb.StoredKWh)
	assert.InDelta(t, 7, fb.DailyCost, 1e-9)
}

func TestAllocate_BatteryOverflow(t *testing.T) {
	audit := model.AuditInput{UsageKWh: 900}
	strategy := model.StrategyConfig{
		DayUsagePct:    60,
		PanelWatts:     615,
		PanelCount:     20,
		BatteryEnabled: true,
		BatteryUnits:   1,
	}

	f := Allocate(audit, strategy, config.Default())

	// solar = 20 × 0.615 × 3.5 = 43.05, excess = 25.05 over a 10 kWh unit
	assert.InDelta(t, 10, f.StoredKWh, 1e-9)
	assert.InDelta(t, 15.05, f.ExportKWh, 1e-9)
	assert.InDelta(t, 2, f.GridImportKWh, 1e-9) // 12 - 10

	// The post-battery export credit (15.05 × 0.5 × 0.3 = 2.2575) exceeds
	// the 1.00 night cost; the bill clamps at zero after subtraction.
	assert.Equal(t, 0.0, f.DailyCost)
	assert.Equal(t, 0.0, f.MonthlyCost)
}

func TestAllocate_CreditExceedsNightCost(t *testing.T) {
	audit := model.AuditInput{UsageKWh: 900}
	strategy := model.StrategyConfig{
		DayUsagePct: 60,
		PanelWatts:  615,
		PanelCount:  30,
	}

	f := Allocate(audit, strategy, config.Default())

	// credit = (64.575 - 18) × 0.5 × 0.7 = 16.30, night cost only 6.
	assert.Equal(t, 0.0, f.DailyCost)
	assert.Equal(t, 0.0, f.BilledKWh)
	assert.Equal(t, 0.0, f.MonthlyCost)
}

func TestAllocate_FutureLoads(t *testing.T) {
	audit := model.AuditInput{UsageKWh: 900, HasEV: true}
	strategy := model.StrategyConfig{
		DayUsagePct: 60,
		PanelWatts:  615,
		PanelCount:  12,
	}

	f := Allocate(audit, strategy, config.Default())

	// projected usage = 900 × 1.3 = 1170
	assert.InDelta(t, 23.4, f.DayUseKWh, 1e-9)   // 1170 × 0.6 / 30
	assert.InDelta(t, 15.6, f.NightUseKWh, 1e-9) // 1170 × 0.4 / 30
}

func TestBatteryFillPct(t *testing.T) {
	assert.Equal(t, 0.0, Flows{StoredKWh: 5}.BatteryFillPct())

	f := Flows{StoredKWh: 7.83, BatteryCapacityKWh: 10}
	assert.InDelta(t, 78.3, f.BatteryFillPct(), 1e-9)
}
