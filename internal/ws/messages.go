package ws

import (
	"encoding/json"
	"sort"

	"solar_savings/internal/config"
	"solar_savings/internal/energy"
	"solar_savings/internal/model"
	"solar_savings/internal/simulator"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> Server messages

type AuditPayload struct {
	UsageKWh float64 `json:"usage_kwh"`
	HasEV    bool    `json:"has_ev"`
	HasPool  bool    `json:"has_pool"`
	HasPond  bool    `json:"has_pond"`
}

type StrategyPayload struct {
	DayUsagePct    float64 `json:"day_usage_pct"`
	PanelWatts     int     `json:"panel_watts"`
	PanelCount     int     `json:"panel_count"`
	BatteryEnabled bool    `json:"battery_enabled"`
	BatteryUnits   int     `json:"battery_units"`
}

type SetSpeedPayload struct {
	Speed float64 `json:"speed"`
}

// Server -> Client messages

type SimStatePayload struct {
	Tick    int     `json:"tick"`
	Day     float64 `json:"day"`
	Speed   float64 `json:"speed"`
	Running bool    `json:"running"`
	Done    bool    `json:"done"`
}

type FlowsPayload struct {
	DayUseKWh          float64 `json:"day_use_kwh"`
	NightUseKWh        float64 `json:"night_use_kwh"`
	SolarKWh           float64 `json:"solar_kwh"`
	BatteryCapacityKWh float64 `json:"battery_capacity_kwh"`
	SelfUseKWh         float64 `json:"self_use_kwh"`
	StoredKWh          float64 `json:"stored_kwh"`
	ExportKWh          float64 `json:"export_kwh"`
	GridImportKWh      float64 `json:"grid_import_kwh"`
	BilledKWh          float64 `json:"billed_kwh"`
	DailyCost          float64 `json:"daily_cost"`
	MonthlyCost        float64 `json:"monthly_cost"`
}

type ProgressPayload struct {
	Tick           int     `json:"tick"`
	Day            float64 `json:"day"`
	SolarKWh       float64 `json:"solar_kwh"`
	ConsumedKWh    float64 `json:"consumed_kwh"`
	SelfUseKWh     float64 `json:"self_use_kwh"`
	GridImportKWh  float64 `json:"grid_import_kwh"`
	GridExportKWh  float64 `json:"grid_export_kwh"`
	StoredKWh      float64 `json:"stored_kwh"`
	GridCost       float64 `json:"grid_cost"`
	BatteryFillPct float64 `json:"battery_fill_pct"`
}

type ReportPayload struct {
	OldMonthlyBill  float64 `json:"old_monthly_bill"`
	NewMonthlyBill  float64 `json:"new_monthly_bill"`
	MonthlySavings  float64 `json:"monthly_savings"`
	SolarKWh        float64 `json:"solar_kwh"`
	ConsumedKWh     float64 `json:"consumed_kwh"`
	SelfUseKWh      float64 `json:"self_use_kwh"`
	GridImportKWh   float64 `json:"grid_import_kwh"`
	GridExportKWh   float64 `json:"grid_export_kwh"`
	StoredKWh       float64 `json:"stored_kwh"`
	LostExportValue float64 `json:"lost_export_value"`
	BatteryAdvised  bool    `json:"battery_advised"`
}

type PanelOption struct {
	Watts int     `json:"watts"`
	Name  string  `json:"name"`
	KW    float64 `json:"kw"`
}

type RangeInfo struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type TariffTier struct {
	LimitKWh   float64 `json:"limit_kwh"`
	RatePerKWh float64 `json:"rate_per_kwh"`
}

type OptionsPayload struct {
	Panels            []PanelOption `json:"panels"`
	DefaultPanelWatts int           `json:"default_panel_watts"`
	UsageRange        RangeInfo     `json:"usage_range"`
	DayUsagePctRange  RangeInfo     `json:"day_usage_pct_range"`
	PanelCountRange   RangeInfo     `json:"panel_count_range"`
	BatteryUnitsRange RangeInfo     `json:"battery_units_range"`
	BatteryUnitKWh    float64       `json:"battery_unit_kwh"`
	Tariff            []TariffTier  `json:"tariff"`
	FlatRatePerKWh    float64       `json:"flat_rate_per_kwh"`
	SolarYieldPerKW   float64       `json:"solar_yield_per_kw"`
}

// Message type constants
const (
	// Client -> Server
	TypeAuditSet    = "audit:set"
	TypeStrategySet = "strategy:set"
	TypeSimStart    = "sim:start"
	TypeSimPause    = "sim:pause"
	TypeSimReset    = "sim:reset"
	TypeSimSetSpeed = "sim:set_speed"

	// Server -> Client
	TypeOptionsLoaded = "options:loaded"
	TypeSimState      = "sim:state"
	TypeFormulaUpdate = "formula:update"
	TypeSimProgress   = "sim:progress"
	TypeReportFinal   = "report:final"
)

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func SimStateFromEngine(s simulator.State) SimStatePayload {
	return SimStatePayload{
		Tick:    s.Tick,
		Day:     s.Day,
		Speed:   s.Speed,
		Running: s.Running,
		Done:    s.Done,
	}
}

func FlowsFromEngine(f energy.Flows) FlowsPayload {
	return FlowsPayload{
		DayUseKWh:          f.DayUseKWh,
		NightUseKWh:        f.NightUseKWh,
		SolarKWh:           f.SolarKWh,
		BatteryCapacityKWh: f.BatteryCapacityKWh,
		SelfUseKWh:         f.SelfUseKWh,
		StoredKWh:          f.StoredKWh,
		ExportKWh:          f.ExportKWh,
		GridImportKWh:      f.GridImportKWh,
		BilledKWh:          f.BilledKWh,
		DailyCost:          f.DailyCost,
		MonthlyCost:        f.MonthlyCost,
	}
}

func ProgressFromEngine(p simulator.Progress) ProgressPayload {
	return ProgressPayload{
		Tick:           p.Tick,
		Day:            p.Day,
		SolarKWh:       p.SolarKWh,
		ConsumedKWh:    p.ConsumedKWh,
		SelfUseKWh:     p.SelfUseKWh,
		GridImportKWh:  p.GridImportKWh,
		GridExportKWh:  p.GridExportKWh,
		StoredKWh:      p.StoredKWh,
		GridCost:       p.GridCost,
		BatteryFillPct: p.BatteryFillPct,
	}
}

func ReportFromEngine(r simulator.Report) ReportPayload {
	return ReportPayload{
		OldMonthlyBill:  r.OldMonthlyBill,
		NewMonthlyBill:  r.NewMonthlyBill,
		MonthlySavings:  r.MonthlySavings,
		SolarKWh:        r.SolarKWh,
		ConsumedKWh:     r.ConsumedKWh,
		SelfUseKWh:      r.SelfUseKWh,
		GridImportKWh:   r.GridImportKWh,
		GridExportKWh:   r.GridExportKWh,
		StoredKWh:       r.StoredKWh,
		LostExportValue: r.LostExportValue,
		BatteryAdvised:  r.BatteryAdvised,
	}
}

// NewOptionsPayload assembles the catalog and form bounds sent on connect.
// Panels are sorted by wattage for stable output.
func NewOptionsPayload(p config.Pricing) OptionsPayload {
	watts := make([]int, 0, len(model.PanelCatalog))
	for w := range model.PanelCatalog {
		watts = append(watts, w)
	}
	sort.Ints(watts)

	panels := make([]PanelOption, 0, len(watts))
	for _, w := range watts {
		spec := model.PanelCatalog[w]
		panels = append(panels, PanelOption{Watts: w, Name: spec.Name, KW: spec.KW})
	}

	tiers := make([]TariffTier, len(p.TariffTiers))
	for i, t := range p.TariffTiers {
		tiers[i] = TariffTier{LimitKWh: t.LimitKWh, RatePerKWh: t.RatePerKWh}
	}

	return OptionsPayload{
		Panels:            panels,
		DefaultPanelWatts: model.DefaultPanelWatts,
		UsageRange:        RangeInfo{Min: model.MinUsageKWh, Max: model.MaxUsageKWh},
		DayUsagePctRange:  RangeInfo{Min: model.MinDayUsagePct, Max: model.MaxDayUsagePct},
		PanelCountRange:   RangeInfo{Min: model.MinPanelCount, Max: model.MaxPanelCount},
		BatteryUnitsRange: RangeInfo{Min: model.MinBatteryUnits, Max: model.MaxBatteryUnits},
		BatteryUnitKWh:    p.BatteryUnitCapacityKWh,
		Tariff:            tiers,
		FlatRatePerKWh:    p.FlatRatePerKWh,
		SolarYieldPerKW:   p.SolarYieldPerKW,
	}
}
