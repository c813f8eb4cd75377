package tariff

// Tier is one block of a progressive tariff. LimitKWh is the width of the
// block in kWh; a width <= 0 marks an open-ended final block that prices
// unlimited consumption at its rate.
type Tier struct {
	LimitKWh   float64 `json:"limit_kwh"`
	RatePerKWh float64 `json:"rate_per_kwh"`
}

// Schedule is an ordered list of tariff blocks, cheapest first. Consumption
// is priced by consuming blocks in order.
type Schedule []Tier

// DefaultSchedule returns the published domestic tariff blocks.
func DefaultSchedule() Schedule {
	return Schedule{
		{LimitKWh: 200, RatePerKWh: 0.218},
		{LimitKWh: 100, RatePerKWh: 0.334},
		{LimitKWh: 300, RatePerKWh: 0.516},
		{LimitKWh: 300, RatePerKWh: 0.546},
		{LimitKWh: 0, RatePerKWh: 0.571},
	}
}

// Bill prices totalKWh across the blocks in order. Each block charges its
// rate for at most its width; an open-ended block absorbs the remainder.
// Bill(0) is 0 and the result is monotonically non-decreasing in totalKWh.
func (s Schedule) Bill(totalKWh float64) float64 {
	remaining := totalKWh
	var cost float64
	for _, t := range s {
		if remaining <= 0 {
			break
		}
		take := remaining
		if t.LimitKWh > 0 && take > t.LimitKWh {
			take = t.LimitKWh
		}
		cost += take * t.RatePerKWh
		remaining -= take
	}
	return cost
}

// MarginalRate returns the rate charged for the next kWh beyond totalKWh.
func (s Schedule) MarginalRate(totalKWh float64) float64 {
	if len(s) == 0 {
		return 0
	}
	remaining := totalKWh
	for _, t := range s {
		if t.LimitKWh <= 0 || remaining < t.LimitKWh {
			return t.RatePerKWh
		}
		remaining -= t.LimitKWh
	}
	return s[len(s)-1].RatePerKWh
}

// AverageRate returns the effective per-kWh price at totalKWh, 0 at zero
// consumption.
func (s Schedule) AverageRate(totalKWh float64) float64 {
	if totalKWh <= 0 {
		return 0
	}
	return s.Bill(totalKWh) / totalKWh
}
