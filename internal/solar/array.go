package solar

import "math"

// Array is a rooftop PV array of identical panels.
type Array struct {
	Count   int
	PanelKW float64
}

// KWp returns the array's nameplate capacity in kilowatt-peak.
func (a Array) KWp() float64 {
	return float64(a.Count) * a.PanelKW
}

// DailyYieldKWh returns expected generation for one average day, given a
// site yield in kWh per kWp per day.
func (a Array) DailyYieldKWh(yieldPerKWp float64) float64 {
	return a.KWp() * yieldPerKWp
}

// PanelsToCover returns the smallest panel count whose daily yield meets
// dailyKWh, or 0 when the panel rating or yield is not positive.
func PanelsToCover(dailyKWh, panelKW, yieldPerKWp float64) int {
	perPanel := panelKW * yieldPerKWp
	if perPanel <= 0 || dailyKWh <= 0 {
		return 0
	}
	return int(math.Ceil(dailyKWh / perPanel))
}
