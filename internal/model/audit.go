package model

// Future-load surcharge fractions applied to projected monthly usage.
const (
	EVLoadFactor   = 0.30
	PoolLoadFactor = 0.20
	PondLoadFactor = 0.15
)

// Usage bounds enforced by the intake form.
const (
	MinUsageKWh = 200.0
	MaxUsageKWh = 3000.0
)

// AuditInput captures the household's current monthly consumption and the
// planned future loads that inflate it.
type AuditInput struct {
	UsageKWh float64 `json:"usage_kwh"`
	HasEV    bool    `json:"has_ev"`
	HasPool  bool    `json:"has_pool"`
	HasPond  bool    `json:"has_pond"`
}

// LoadMultiplier combines the future-load surcharges additively over a 1.0
// base. Flags never compound against each other.
func (a AuditInput) LoadMultiplier() float64 {
	m := 1.0
	if a.HasEV {
		m += EVLoadFactor
	}
	if a.HasPool {
		m += PoolLoadFactor
	}
	if a.HasPond {
		m += PondLoadFactor
	}
	return m
}

// ProjectedUsageKWh applies the future-load multiplier once to base usage.
func (a AuditInput) ProjectedUsageKWh() float64 {
	return a.UsageKWh * a.LoadMultiplier()
}

// Normalize clamps usage into the form's range and returns the adjusted
// record.
func (a AuditInput) Normalize() AuditInput {
	if a.UsageKWh < MinUsageKWh {
		a.UsageKWh = MinUsageKWh
	}
	if a.UsageKWh > MaxUsageKWh {
		a.UsageKWh = MaxUsageKWh
	}
	return a
}
