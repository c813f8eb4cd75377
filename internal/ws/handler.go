package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"solar_savings/internal/config"
	"solar_savings/internal/logger"
	"solar_savings/internal/model"
	"solar_savings/internal/simulator"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages WebSocket connections and routes messages to the engine.
type Handler struct {
	hub     *Hub
	engine  *simulator.Engine
	pricing config.Pricing
	log     *logger.Logger
}

func NewHandler(hub *Hub, engine *simulator.Engine, pricing config.Pricing, log *logger.Logger) *Handler {
	return &Handler{hub: hub, engine: engine, pricing: pricing, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	// Send the catalog and form bounds, then the current sim state
	h.sendOptions(client)
	h.sendSimState(client)

	// Read messages from client
	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("websocket read: %v", err)
			}
			return
		}

		h.handleMessage(msg)
	}
}

func (h *Handler) handleMessage(msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		h.log.Warnf("invalid message: %v", err)
		return
	}

	switch env.Type {
	case TypeAuditSet:
		var p AuditPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.log.Warnf("invalid audit:set payload: %v", err)
			return
		}
		audit := model.AuditInput{
			UsageKWh: p.UsageKWh,
			HasEV:    p.HasEV,
			HasPool:  p.HasPool,
			HasPond:  p.HasPond,
		}
		h.engine.SetAudit(audit.Normalize())

	case TypeStrategySet:
		var p StrategyPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.log.Warnf("invalid strategy:set payload: %v", err)
			return
		}
		strategy := model.StrategyConfig{
			DayUsagePct:    p.DayUsagePct,
			PanelWatts:     p.PanelWatts,
			PanelCount:     p.PanelCount,
			BatteryEnabled: p.BatteryEnabled,
			BatteryUnits:   p.BatteryUnits,
		}
		h.engine.SetStrategy(strategy.Normalize())

	case TypeSimStart:
		h.engine.Start()

	case TypeSimPause:
		h.engine.Pause()

	case TypeSimReset:
		h.engine.Reset()

	case TypeSimSetSpeed:
		var p SetSpeedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.log.Warnf("invalid set_speed payload: %v", err)
			return
		}
		h.engine.SetSpeed(p.Speed)

	default:
		h.log.Warnf("unknown message type: %s", env.Type)
	}
}

func (h *Handler) sendOptions(c *Client) {
	msg, err := NewEnvelope(TypeOptionsLoaded, NewOptionsPayload(h.pricing))
	if err != nil {
		h.log.Errorf("marshal options: %v", err)
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (h *Handler) sendSimState(c *Client) {
	state := h.engine.State()
	msg, err := NewEnvelope(TypeSimState, SimStateFromEngine(state))
	if err != nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
