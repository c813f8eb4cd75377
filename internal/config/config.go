package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"solar_savings/internal/tariff"
)

// TierSpec is the on-disk shape of one tariff block.
type TierSpec struct {
	LimitKWh   float64 `yaml:"limit_kwh"`
	RatePerKWh float64 `yaml:"rate_per_kwh"`
}

// Pricing holds every rate constant the calculator uses. It is loaded once
// at startup and passed around as a value.
type Pricing struct {
	TariffTiers []TierSpec `yaml:"tariff_tiers"`

	SolarYieldPerKW float64 `yaml:"solar_yield_per_kw"`
	FlatRatePerKWh  float64 `yaml:"flat_rate_per_kwh"`

	ExportCreditFactorNoBattery   float64 `yaml:"export_credit_factor_no_battery"`
	ExportCreditFactorWithBattery float64 `yaml:"export_credit_factor_with_battery"`

	BatteryUnitCapacityKWh float64 `yaml:"battery_unit_capacity_kwh"`

	NEMExportRate   float64 `yaml:"nem_export_rate"`
	BlendedGridRate float64 `yaml:"blended_grid_rate"`

	BatteryAdviceThreshold float64 `yaml:"battery_advice_threshold"`
}

// Default returns the reference pricing constants.
func Default() Pricing {
	tiers := tariff.DefaultSchedule()
	specs := make([]TierSpec, len(tiers))
	for i, t := range tiers {
		specs[i] = TierSpec{LimitKWh: t.LimitKWh, RatePerKWh: t.RatePerKWh}
	}
	return Pricing{
		TariffTiers:                   specs,
		SolarYieldPerKW:               3.5,
		FlatRatePerKWh:                0.5,
		ExportCreditFactorNoBattery:   0.7,
		ExportCreditFactorWithBattery: 0.3,
		BatteryUnitCapacityKWh:        10,
		NEMExportRate:                 0.35,
		BlendedGridRate:               0.509,
		BatteryAdviceThreshold:        50,
	}
}

// Load reads pricing from a YAML file and validates it. Fields absent from
// the file keep their default values; an empty path returns the defaults
// unchanged.
func Load(path string) (Pricing, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Pricing{}, fmt.Errorf("reading pricing config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Pricing{}, fmt.Errorf("parsing pricing config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Pricing{}, err
	}
	return p, nil
}

// Validate checks the configuration invariants the engines rely on.
// Violations are fatal at load time, never runtime error paths.
func (p Pricing) Validate() error {
	if p.FlatRatePerKWh <= 0 {
		return errors.New("flat_rate_per_kwh must be positive")
	}
	if p.SolarYieldPerKW <= 0 {
		return errors.New("solar_yield_per_kw must be positive")
	}
	if p.ExportCreditFactorNoBattery < 0 || p.ExportCreditFactorNoBattery > 1 {
		return errors.New("export_credit_factor_no_battery must be within [0, 1]")
	}
	if p.ExportCreditFactorWithBattery < 0 || p.ExportCreditFactorWithBattery > 1 {
		return errors.New("export_credit_factor_with_battery must be within [0, 1]")
	}
	if p.BatteryUnitCapacityKWh <= 0 {
		return errors.New("battery_unit_capacity_kwh must be positive")
	}
	if p.NEMExportRate < 0 {
		return errors.New("nem_export_rate must not be negative")
	}
	if p.BlendedGridRate <= p.NEMExportRate {
		return errors.New("blended_grid_rate must exceed nem_export_rate")
	}
	if p.BatteryAdviceThreshold < 0 {
		return errors.New("battery_advice_threshold must not be negative")
	}
	if len(p.TariffTiers) == 0 {
		return errors.New("tariff_tiers must not be empty")
	}
	for i, t := range p.TariffTiers {
		if t.LimitKWh < 0 {
			return fmt.Errorf("tariff tier %d: limit_kwh must not be negative", i)
		}
		if t.RatePerKWh <= 0 {
			return fmt.Errorf("tariff tier %d: rate_per_kwh must be positive", i)
		}
	}
	return nil
}

// Tariff converts the configured tiers into a billable schedule.
func (p Pricing) Tariff() tariff.Schedule {
	s := make(tariff.Schedule, len(p.TariffTiers))
	for i, t := range p.TariffTiers {
		s[i] = tariff.Tier{LimitKWh: t.LimitKWh, RatePerKWh: t.RatePerKWh}
	}
	return s
}
