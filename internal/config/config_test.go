package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())

	assert.InDelta(t, 3.5, p.SolarYieldPerKW, 0.0001)
	assert.InDelta(t, 0.5, p.FlatRatePerKWh, 0.0001)
	assert.Len(t, p.TariffTiers, 5)
	assert.Equal(t, 0.0, p.TariffTiers[4].LimitKWh) // open-ended top block
}

func TestLoad_EmptyPath(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
flat_rate_per_kwh: 0.45
nem_export_rate: 0.31
tariff_tiers:
  - limit_kwh: 300
    rate_per_kwh: 0.2
  - limit_kwh: 0
    rate_per_kwh: 0.4
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.45, p.FlatRatePerKWh, 0.0001)
	assert.InDelta(t, 0.31, p.NEMExportRate, 0.0001)
	require.Len(t, p.TariffTiers, 2)
	assert.InDelta(t, 0.2, p.TariffTiers[0].RatePerKWh, 0.0001)

	// Untouched fields keep their defaults.
	assert.InDelta(t, 3.5, p.SolarYieldPerKW, 0.0001)
	assert.InDelta(t, 10, p.BatteryUnitCapacityKWh, 0.0001)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "flat_rate_per_kwh: [not a number")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Pricing)
	}{
		{"zero flat rate", func(p *Pricing) { p.FlatRatePerKWh = 0 }},
		{"negative yield", func(p *Pricing) { p.SolarYieldPerKW = -1 }},
		{"export factor above one", func(p *Pricing) { p.ExportCreditFactorNoBattery = 1.5 }},
		{"negative battery export factor", func(p *Pricing) { p.ExportCreditFactorWithBattery = -0.1 }},
		{"zero unit capacity", func(p *Pricing) { p.BatteryUnitCapacityKWh = 0 }},
		{"nem above blended", func(p *Pricing) { p.NEMExportRate = 0.6 }},
		{"negative threshold", func(p *Pricing) { p.BatteryAdviceThreshold = -5 }},
		{"no tiers", func(p *Pricing) { p.TariffTiers = nil }},
		{"negative tier width", func(p *Pricing) { p.TariffTiers[0].LimitKWh = -10 }},
		{"zero tier rate", func(p *Pricing) { p.TariffTiers[1].RatePerKWh = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestTariffConversion(t *testing.T) {
	s := Default().Tariff()
	require.Len(t, s, 5)

	// Published boundary: 200 kWh at the first-block rate.
	assert.InDelta(t, 43.6, s.Bill(200), 0.0001)
}
