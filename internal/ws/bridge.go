package ws

import (
	"solar_savings/internal/energy"
	"solar_savings/internal/logger"
	"solar_savings/internal/simulator"
)

// Bridge implements simulator.Callback and broadcasts events to the
// WebSocket hub.
type Bridge struct {
	hub *Hub
	log *logger.Logger
}

func NewBridge(hub *Hub, log *logger.Logger) *Bridge {
	return &Bridge{hub: hub, log: log}
}

func (b *Bridge) OnState(s simulator.State) {
	msg, err := NewEnvelope(TypeSimState, SimStateFromEngine(s))
	if err != nil {
		b.log.Errorf("marshal sim state: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}

func (b *Bridge) OnFlows(f energy.Flows) {
	msg, err := NewEnvelope(TypeFormulaUpdate, FlowsFromEngine(f))
	if err != nil {
		b.log.Errorf("marshal flows: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}

func (b *Bridge) OnProgress(p simulator.Progress) {
	msg, err := NewEnvelope(TypeSimProgress, ProgressFromEngine(p))
	if err != nil {
		b.log.Errorf("marshal progress: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}

func (b *Bridge) OnReport(r simulator.Report) {
	msg, err := NewEnvelope(TypeReportFinal, ReportFromEngine(r))
	if err != nil {
		b.log.Errorf("marshal report: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}
