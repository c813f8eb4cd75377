package main

import (
	"flag"
	"fmt"
	"log"

	"solar_savings/internal/config"
	"solar_savings/internal/model"
	"solar_savings/internal/simulator"
)

type result struct {
	units  int
	report simulator.Report
}

func main() {
	configPath := flag.String("config", "", "pricing config file (YAML); empty uses published defaults")
	usage := flag.Float64("usage", 900, "current monthly usage in kWh")
	hasEV := flag.Bool("ev", false, "planned EV charger")
	hasPool := flag.Bool("pool", false, "planned pool pump")
	hasPond := flag.Bool("pond", false, "planned pond filter")
	dayPct := flag.Float64("day-pct", 60, "share of usage during daylight hours (percent)")
	panelWatts := flag.Int("panel-watts", model.DefaultPanelWatts, "panel model wattage")
	panels := flag.Int("panels", 12, "number of panels")
	maxUnits := flag.Int("max-units", model.MaxBatteryUnits, "largest unit count to sweep")
	flag.Parse()

	pricing, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Loading config: %v", err)
	}

	audit := model.AuditInput{
		UsageKWh: *usage,
		HasEV:    *hasEV,
		HasPool:  *hasPool,
		HasPond:  *hasPond,
	}.Normalize()

	base := model.StrategyConfig{
		DayUsagePct: *dayPct,
		PanelWatts:  *panelWatts,
		PanelCount:  *panels,
	}.Normalize()

	units := *maxUnits
	if units < model.MinBatteryUnits {
		units = model.MinBatteryUnits
	}
	if units > model.MaxBatteryUnits {
		units = model.MaxBatteryUnits
	}

	results := sweep(audit, base, units, pricing)
	printTable(results, audit, base, pricing)
}

// sweep runs one full month per unit count, 0 meaning no battery.
func sweep(audit model.AuditInput, base model.StrategyConfig, maxUnits int, pricing config.Pricing) []result {
	results := make([]result, 0, maxUnits+1)
	for units := 0; units <= maxUnits; units++ {
		s := base
		if units > 0 {
			s.BatteryEnabled = true
			s.BatteryUnits = units
		}
		_, report := simulator.Summarize(audit, s, pricing)
		results = append(results, result{units: units, report: report})
	}
	return results
}

func printTable(results []result, audit model.AuditInput, base model.StrategyConfig, p config.Pricing) {
	if len(results) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("Battery Size Comparison")
	fmt.Printf("  Usage: %.0f kWh/month projected, %.0f%% daytime, %d x %d W panels\n",
		audit.ProjectedUsageKWh(), base.DayUsagePct, base.PanelCount, base.PanelWatts)
	fmt.Printf("  Unit size: %.0f kWh\n", p.BatteryUnitCapacityKWh)
	fmt.Println()

	fmt.Printf(" %5s │ %8s │ %12s │ %9s │ %9s │ %10s │ %8s\n",
		"Units", "Capacity", "Monthly bill", "Savings", "Export", "Lost val.", "Marginal")
	fmt.Printf("───────┼──────────┼──────────────┼───────────┼───────────┼────────────┼──────────\n")

	for i, r := range results {
		marginal := "-"
		if i > 0 {
			m := r.report.MonthlySavings - results[i-1].report.MonthlySavings
			marginal = fmt.Sprintf("%.2f", m)
		}
		fmt.Printf(" %5d │ %4.0f kWh │ %12.2f │ %9.2f │ %5.1f kWh │ %10.2f │ %8s\n",
			r.units,
			float64(r.units)*p.BatteryUnitCapacityKWh,
			r.report.NewMonthlyBill,
			r.report.MonthlySavings,
			r.report.GridExportKWh,
			r.report.LostExportValue,
			marginal,
		)
	}
	fmt.Println()

	noBattery := results[0].report
	if noBattery.BatteryAdvised {
		fmt.Printf("Battery advised: %.2f/month of export value is lost without storage.\n",
			noBattery.LostExportValue)
	} else {
		fmt.Printf("No battery advised: %.2f/month of export value is at stake.\n",
			noBattery.LostExportValue)
	}
	fmt.Println()
}
