package main

import (
	"flag"
	"fmt"
	"log"

	"solar_savings/internal/config"
	"solar_savings/internal/model"
	"solar_savings/internal/simulator"
)

type shareResult struct {
	dayPct      float64
	solar       simulator.Report
	withBattery simulator.Report
}

func (r shareResult) margin() float64 {
	return r.withBattery.MonthlySavings - r.solar.MonthlySavings
}

func main() {
	configPath := flag.String("config", "", "pricing config file (YAML); empty uses published defaults")
	usage := flag.Float64("usage", 900, "current monthly usage in kWh")
	hasEV := flag.Bool("ev", false, "planned EV charger")
	hasPool := flag.Bool("pool", false, "planned pool pump")
	hasPond := flag.Bool("pond", false, "planned pond filter")
	panelWatts := flag.Int("panel-watts", model.DefaultPanelWatts, "panel model wattage")
	panels := flag.Int("panels", 12, "number of panels")
	batteryUnits := flag.Int("battery-units", 1, "battery units in the storage scenario")
	step := flag.Int("step", 10, "daytime share step in percent")
	flag.Parse()

	if *step <= 0 {
		log.Fatal("step must be positive")
	}

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

	units := *batteryUnits
	if units < model.MinBatteryUnits {
		units = model.MinBatteryUnits
	}
	if units > model.MaxBatteryUnits {
		units = model.MaxBatteryUnits
	}

	// Snap the array flags to a known panel model and valid count up front
	// so the heading matches what every row actually simulates.
	base := model.StrategyConfig{
		DayUsagePct: 50,
		PanelWatts:  *panelWatts,
		PanelCount:  *panels,
	}.Normalize()

	results := sweepShares(audit, base.PanelWatts, base.PanelCount, units, *step, pricing)
	if len(results) == 0 {
		log.Fatal("No shares in sweep range")
	}

	solarKWp := float64(base.PanelCount) * float64(base.PanelWatts) / 1000

	fmt.Println()
	fmt.Println("Daytime Share Analysis")
	fmt.Printf("  Usage: %.0f kWh/month projected   Array: %d x %d W (%.2f kWp)\n",
		audit.ProjectedUsageKWh(), base.PanelCount, base.PanelWatts, solarKWp)
	fmt.Printf("  Storage scenario: %d x %.0f kWh\n", units, pricing.BatteryUnitCapacityKWh)
	fmt.Println()

	printShareTable(results)

	fmt.Println()
	printAdviceSummary(results)
	fmt.Println()
}

// sweepShares runs both scenarios for every daytime share from 10% to 90%.
func sweepShares(audit model.AuditInput, panelWatts, panels, batteryUnits, step int, pricing config.Pricing) []shareResult {
	results := make([]shareResult, 0, 90/step)
	for pct := 10; pct <= 90; pct += step {
		solarOnly := model.StrategyConfig{
			DayUsagePct: float64(pct),
			PanelWatts:  panelWatts,
			PanelCount:  panels,
		}.Normalize()

		withBattery := model.StrategyConfig{
			DayUsagePct:    float64(pct),
			PanelWatts:     panelWatts,
			PanelCount:     panels,
			BatteryEnabled: true,
			BatteryUnits:   batteryUnits,
		}.Normalize()

		_, solarReport := simulator.Summarize(audit, solarOnly, pricing)
		_, batteryReport := simulator.Summarize(audit, withBattery, pricing)

		results = append(results, shareResult{
			dayPct:      solarOnly.DayUsagePct,
			solar:       solarReport,
			withBattery: batteryReport,
		})
	}
	return results
}

func printShareTable(results []shareResult) {
	// Find where storage adds the most on top of panels alone
	var maxMarginIdx int
	for i, r := range results {
		if r.margin() > results[maxMarginIdx].margin() {
			maxMarginIdx = i
		}
	}

	fmt.Printf(" %5s │ %21s │ %21s │ %8s\n", "", "Solar only", "Solar + battery", "")
	fmt.Printf(" %5s │ %10s │ %8s │ %10s │ %8s │ %8s\n",
		"Share", "Bill", "Savings", "Bill", "Savings", "Margin")
	fmt.Printf("───────┼────────────┼──────────┼────────────┼──────────┼──────────\n")

	for i, r := range results {
		marker := ""
		if i == maxMarginIdx && r.margin() > 0 {
			marker = " ← battery helps most"
		}
		fmt.Printf(" %4.0f%% │ %10.2f │ %8.2f │ %10.2f │ %8.2f │ %8.2f%s\n",
			r.dayPct,
			r.solar.NewMonthlyBill, r.solar.MonthlySavings,
			r.withBattery.NewMonthlyBill, r.withBattery.MonthlySavings,
			r.margin(), marker)
	}
}

func printAdviceSummary(results []shareResult) {
	// Export shrinks as the daytime share grows, so the advisory flips at most once
	advisedUpTo := -1.0
	for _, r := range results {
		if r.solar.BatteryAdvised {
			advisedUpTo = r.dayPct
		}
	}
	if advisedUpTo < 0 {
		fmt.Println("No share in the sweep loses enough export value to advise a battery.")
		return
	}
	fmt.Printf("Battery advised at daytime shares up to %.0f%%.\n", advisedUpTo)
}
