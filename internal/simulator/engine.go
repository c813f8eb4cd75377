package simulator

import (
	"sync"
	"time"

	"solar_savings/internal/config"
	"solar_savings/internal/energy"
	"solar_savings/internal/model"
)

// One simulated month is replayed as two ticks per day.
const (
	TicksPerDay = 2
	SimDays     = 30
	TotalTicks  = TicksPerDay * SimDays
)

// State represents the current simulation state.
type State struct {
	Tick    int     `json:"tick"`
	Day     float64 `json:"day"`
	Speed   float64 `json:"speed"`
	Running bool    `json:"running"`
	Done    bool    `json:"done"`
}

// Progress holds running energy and cost totals for the month so far.
type Progress struct {
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

// Callback receives simulation events.
type Callback interface {
	OnState(state State)
	OnFlows(flows energy.Flows)
	OnProgress(progress Progress)
	OnReport(report Report)
}

// Engine replays one month of household energy flows at configurable speed.
// Speed only affects the tick cadence, never the accumulated result.
type Engine struct {
	mu       sync.Mutex
	callback Callback
	pricing  config.Pricing

	audit    model.AuditInput
	strategy model.StrategyConfig
	flows    energy.Flows

	running bool
	speed   float64
	acc     Progress
	report  *Report

	stopCh chan struct{}
}

func New(pricing config.Pricing, cb Callback) *Engine {
	e := &Engine{
		pricing:  pricing,
		callback: cb,
		speed:    1,
	}
	e.flows = energy.Allocate(e.audit, e.strategy, e.pricing)
	return e
}

// State returns the current simulation state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Tick:    e.acc.Tick,
		Day:     e.acc.Day,
		Speed:   e.speed,
		Running: e.running,
		Done:    e.report != nil,
	}
}

// Flows returns the daily allocation for the current configuration.
func (e *Engine) Flows() energy.Flows {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flows
}

// Progress returns the totals accumulated so far.
func (e *Engine) Progress() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acc
}

// Report returns the report of the last completed run. ok is false until a
// run finishes, and again after any reset or configuration change.
func (e *Engine) Report() (Report, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.report == nil {
		return Report{}, false
	}
	return *e.report, true
}

// Audit returns the current household record.
func (e *Engine) Audit() model.AuditInput {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.audit
}

// Strategy returns the current system configuration.
func (e *Engine) Strategy() model.StrategyConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strategy
}

// SetAudit replaces the household record. Any run in progress is discarded.
func (e *Engine) SetAudit(a model.AuditInput) {
	e.Pause()
	e.mu.Lock()
	e.audit = a
	e.reconfigure()
	e.mu.Unlock()

	e.broadcastConfig()
}

// SetStrategy replaces the system configuration. Any run in progress is
// discarded.
func (e *Engine) SetStrategy(s model.StrategyConfig) {
	e.Pause()
	e.mu.Lock()
	e.strategy = s
	e.reconfigure()
	e.mu.Unlock()

	e.broadcastConfig()
}

// SetSpeed sets the animation speed multiplier.
func (e *Engine) SetSpeed(speed float64) {
	if speed < 0.1 {
		speed = 0.1
	}
	if speed > 60 {
		speed = 60
	}

	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()

	e.broadcastState()
}

// Start begins or resumes the animation loop. Starting after a completed
// run restarts from tick zero.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	if e.report != nil {
		e.resetAccumulators()
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.mu.Unlock()

	e.broadcastState()
	go e.loop()
}

// Pause stops the animation loop. Accumulated totals are kept, so Start
// resumes mid-month.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	e.mu.Unlock()

	e.broadcastState()
}

// Reset discards the run in progress and the report, keeping the
// configuration.
func (e *Engine) Reset() {
	e.Pause()
	e.mu.Lock()
	e.resetAccumulators()
	e.mu.Unlock()

	e.broadcastState()
	e.broadcastProgress()
}

// reconfigure recomputes the daily flows from the current inputs and
// discards any partial run. Must be called with mu held.
func (e *Engine) reconfigure() {
	e.flows = energy.Allocate(e.audit, e.strategy, e.pricing)
	e.resetAccumulators()
}

// resetAccumulators zeroes the running totals and drops the report. Must be
// called with mu held.
func (e *Engine) resetAccumulators() {
	e.acc = Progress{}
	e.report = nil
}

// Step advances the simulation by one half-day tick and returns true once
// the month is complete. The report is derived exactly once, on the final
// tick; stepping a completed run is a no-op.
// Useful for deterministic testing. Does not require Start().
func (e *Engine) Step() bool {
	e.mu.Lock()
	if e.acc.Tick >= TotalTicks {
		e.mu.Unlock()
		return true
	}

	addTick(&e.acc, e.flows)
	progress := e.acc

	finished := e.acc.Tick >= TotalTicks
	var report Report
	if finished {
		report = DeriveReport(e.acc, e.audit, e.pricing)
		e.report = &report
		e.running = false
	}
	e.mu.Unlock()

	e.callback.OnProgress(progress)
	e.broadcastState()
	if finished {
		e.callback.OnReport(report)
	}
	return finished
}

const baseTickInterval = 500 * time.Millisecond

func (e *Engine) loop() {
	for {
		e.mu.Lock()
		delay := time.Duration(float64(baseTickInterval) / e.speed)
		stopCh := e.stopCh
		e.mu.Unlock()

		select {
		case <-stopCh:
			return
		case <-time.After(delay):
			if e.Step() {
				return
			}
		}
	}
}

// addTick folds one half-day share of the daily flows into the totals. A
// full run is exactly TotalTicks equal increments, so the final totals never
// depend on pausing, resuming, or speed changes along the way.
func addTick(acc *Progress, f energy.Flows) {
	acc.Tick++
	acc.Day = float64(acc.Tick) / TicksPerDay
	acc.SolarKWh += f.SolarKWh / TicksPerDay
	acc.ConsumedKWh += (f.DayUseKWh + f.NightUseKWh) / TicksPerDay
	acc.SelfUseKWh += f.SelfUseKWh / TicksPerDay
	acc.GridImportKWh += f.GridImportKWh / TicksPerDay
	acc.GridExportKWh += f.ExportKWh / TicksPerDay
	acc.StoredKWh += f.StoredKWh / TicksPerDay
	acc.GridCost += f.DailyCost / TicksPerDay
	acc.BatteryFillPct = f.BatteryFillPct()
}

func (e *Engine) broadcastState() {
	e.mu.Lock()
	s := State{
		Tick:    e.acc.Tick,
		Day:     e.acc.Day,
		Speed:   e.speed,
		Running: e.running,
		Done:    e.report != nil,
	}
	e.mu.Unlock()
	e.callback.OnState(s)
}

func (e *Engine) broadcastProgress() {
	e.mu.Lock()
	p := e.acc
	e.mu.Unlock()
	e.callback.OnProgress(p)
}

func (e *Engine) broadcastConfig() {
	e.mu.Lock()
	f := e.flows
	e.mu.Unlock()

	e.callback.OnFlows(f)
	e.broadcastState()
	e.broadcastProgress()
}
