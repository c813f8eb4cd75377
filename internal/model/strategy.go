package model

// Configuration bounds enforced by the intake form.
const (
	MinDayUsagePct = 10.0
	MaxDayUsagePct = 90.0

	MinPanelCount = 6
	MaxPanelCount = 40

	MinBatteryUnits = 1
	MaxBatteryUnits = 6
)

// DefaultPanelWatts is the panel model offered when none is chosen.
const DefaultPanelWatts = 615

// PanelSpec holds display name and kW rating for an orderable panel model.
type PanelSpec struct {
	Name string
	KW   float64
}

// PanelCatalog maps nameplate watts to every orderable panel model.
var PanelCatalog = map[int]PanelSpec{
	615: {Name: "615 W Mono", KW: 0.615},
	700: {Name: "700 W Mono", KW: 0.700},
}

// StrategyConfig describes the solar and battery system being priced.
type StrategyConfig struct {
	DayUsagePct    float64 `json:"day_usage_pct"`
	PanelWatts     int     `json:"panel_watts"`
	PanelCount     int     `json:"panel_count"`
	BatteryEnabled bool    `json:"battery_enabled"`
	BatteryUnits   int     `json:"battery_units"`
}

// DayFraction returns the day-usage share as a 0..1 fraction.
func (s StrategyConfig) DayFraction() float64 {
	return s.DayUsagePct / 100
}

// PanelKW returns the per-panel kW rating from the catalog, falling back to
// the default model for unknown wattages.
func (s StrategyConfig) PanelKW() float64 {
	if spec, ok := PanelCatalog[s.PanelWatts]; ok {
		return spec.KW
	}
	return PanelCatalog[DefaultPanelWatts].KW
}

// Normalize clamps the record into the form's ranges, snaps unknown panel
// models to the default, and zeroes the unit count when no battery is
// selected.
func (s StrategyConfig) Normalize() StrategyConfig {
	if s.DayUsagePct < MinDayUsagePct {
		s.DayUsagePct = MinDayUsagePct
	}
	if s.DayUsagePct > MaxDayUsagePct {
		s.DayUsagePct = MaxDayUsagePct
	}
	if _, ok := PanelCatalog[s.PanelWatts]; !ok {
		s.PanelWatts = DefaultPanelWatts
	}
	if s.PanelCount < MinPanelCount {
		s.PanelCount = MinPanelCount
	}
	if s.PanelCount > MaxPanelCount {
		s.PanelCount = MaxPanelCount
	}
	if !s.BatteryEnabled {
		s.BatteryUnits = 0
		return s
	}
	if s.BatteryUnits < MinBatteryUnits {
		s.BatteryUnits = MinBatteryUnits
	}
	if s.BatteryUnits > MaxBatteryUnits {
		s.BatteryUnits = MaxBatteryUnits
	}
	return s
}

// BatteryCapacityKWh returns total storage for the chosen unit count, 0
// when no battery is selected.
func (s StrategyConfig) BatteryCapacityKWh(unitKWh float64) float64 {
	if !s.BatteryEnabled {
		return 0
	}
	return float64(s.BatteryUnits) * unitKWh
}
