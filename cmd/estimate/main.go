package main

import (
	"flag"
	"fmt"
	"log"

	"solar_savings/internal/config"
	"solar_savings/internal/energy"
	"solar_savings/internal/model"
	"solar_savings/internal/simulator"
	"solar_savings/internal/solar"
)

func main() {
	configPath := flag.String("config", "", "pricing config file (YAML); empty uses published defaults")
	usage := flag.Float64("usage", 900, "current monthly usage in kWh")
	hasEV := flag.Bool("ev", false, "planned EV charger")
	hasPool := flag.Bool("pool", false, "planned pool pump")
	hasPond := flag.Bool("pond", false, "planned pond filter")
	dayPct := flag.Float64("day-pct", 60, "share of usage during daylight hours (percent)")
	panelWatts := flag.Int("panel-watts", model.DefaultPanelWatts, "panel model wattage")
	panels := flag.Int("panels", 12, "number of panels")
	units := flag.Int("battery-units", 1, "battery units in the storage scenario")
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

	solarOnly := model.StrategyConfig{
		DayUsagePct: *dayPct,
		PanelWatts:  *panelWatts,
		PanelCount:  *panels,
	}.Normalize()

	withBattery := solarOnly
	withBattery.BatteryEnabled = true
	withBattery.BatteryUnits = *units
	withBattery = withBattery.Normalize()

	flows, solarReport := simulator.Summarize(audit, solarOnly, pricing)
	batteryFlows, batteryReport := simulator.Summarize(audit, withBattery, pricing)

	array := solar.Array{Count: solarOnly.PanelCount, PanelKW: solarOnly.PanelKW()}

	fmt.Println()
	fmt.Println("Monthly Savings Estimate")
	fmt.Printf("  Usage: %.0f kWh/month", audit.UsageKWh)
	if projected := audit.ProjectedUsageKWh(); projected != audit.UsageKWh {
		fmt.Printf(" (projected %.0f with future loads)", projected)
	}
	fmt.Printf(", %.0f%% daytime\n", solarOnly.DayUsagePct)
	fmt.Printf("  Array: %d x %d W (%.2f kWp), %.2f kWh/day\n",
		solarOnly.PanelCount, solarOnly.PanelWatts, array.KWp(), flows.SolarKWh)
	fmt.Printf("  Storage scenario: %d x %.0f kWh\n", withBattery.BatteryUnits, pricing.BatteryUnitCapacityKWh)
	fmt.Println()

	fmt.Println("Daily flows (solar only)")
	fmt.Printf("  Day use %.2f kWh, night use %.2f kWh, solar %.2f kWh\n",
		flows.DayUseKWh, flows.NightUseKWh, flows.SolarKWh)
	fmt.Printf("  Self-used %.2f kWh, exported %.2f kWh, imported %.2f kWh\n",
		flows.SelfUseKWh, flows.ExportKWh, flows.GridImportKWh)
	fmt.Println()

	fmt.Printf(" %-16s │ %12s │ %12s │ %11s │ %11s\n",
		"Scenario", "Monthly bill", "Savings", "Import", "Export")
	fmt.Printf("──────────────────┼──────────────┼──────────────┼─────────────┼─────────────\n")
	printScenario("Grid only", solarReport.OldMonthlyBill, 0, audit.ProjectedUsageKWh(), 0)
	printScenario("Solar", solarReport.NewMonthlyBill, solarReport.MonthlySavings,
		solarReport.GridImportKWh, solarReport.GridExportKWh)
	printScenario("Solar + battery", batteryReport.NewMonthlyBill, batteryReport.MonthlySavings,
		batteryReport.GridImportKWh, batteryReport.GridExportKWh)
	fmt.Println()

	// Bills above use the flat reference rate; show what the same grid-only
	// consumption costs on the block tariff for comparison.
	schedule := pricing.Tariff()
	projected := audit.ProjectedUsageKWh()
	fmt.Printf("Block tariff grid-only bill: %.2f (avg %.3f/kWh, next kWh at %.3f)\n",
		schedule.Bill(projected), schedule.AverageRate(projected), schedule.MarginalRate(projected))
	fmt.Println()

	if solarReport.BatteryAdvised {
		fmt.Printf("Battery advised: %.2f/month of export value is lost without storage.\n",
			solarReport.LostExportValue)
		extra := batteryReport.MonthlySavings - solarReport.MonthlySavings
		fmt.Printf("The storage scenario keeps %.2f/month more of it (fills to %.1f%%).\n",
			extra, batteryFlows.BatteryFillPct())
		fmt.Println()
	}

	dayDaily := projected * solarOnly.DayFraction() / energy.DaysPerMonth
	if cover := solar.PanelsToCover(dayDaily, solarOnly.PanelKW(), pricing.SolarYieldPerKW); cover != solarOnly.PanelCount {
		fmt.Printf("Note: %d panels would cover the %.2f kWh daytime load.\n", cover, dayDaily)
		fmt.Println()
	}
}

func printScenario(title string, bill, savings, imp, exp float64) {
	fmt.Printf(" %-16s │ %12.2f │ %12.2f │ %7.1f kWh │ %7.1f kWh\n",
		title, bill, savings, imp, exp)
}
