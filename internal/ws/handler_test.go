package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar_savings/internal/simulator"
)

// testHandler wires an engine to a fresh handler. The engine's callback
// bridge gets its own hub so broadcasts do not interleave with the dialed
// client's reads.
func testHandler() (*Handler, *simulator.Engine) {
	bridge := NewBridge(NewHub(testLogger()), testLogger())
	engine := simulator.New(testPricing(), bridge)
	handler := NewHandler(NewHub(testLogger()), engine, testPricing(), testLogger())
	return handler, engine
}

// dialHandler sets up a test server with the handler and returns a WS connection.
func dialHandler(t *testing.T, handler *Handler) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

// readJSON reads the next JSON message from the connection.
func readJSON(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

// sendJSON sends a JSON message on the connection.
func sendJSON(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	data, err := NewEnvelope(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestHandler_InitialMessages(t *testing.T) {
	handler, _ := testHandler()

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	// First message should be options:loaded
	env1 := readJSON(t, conn)
	assert.Equal(t, TypeOptionsLoaded, env1.Type)

	var opts OptionsPayload
	require.NoError(t, json.Unmarshal(env1.Payload, &opts))
	assert.NotEmpty(t, opts.Panels)
	assert.Equal(t, 615, opts.DefaultPanelWatts)
	assert.Equal(t, 10.0, opts.BatteryUnitKWh)

	// Second message should be sim:state
	env2 := readJSON(t, conn)
	assert.Equal(t, TypeSimState, env2.Type)

	var ss SimStatePayload
	require.NoError(t, json.Unmarshal(env2.Payload, &ss))
	assert.False(t, ss.Running)
	assert.Equal(t, 0, ss.Tick)
	assert.Equal(t, 1.0, ss.Speed)
}

func TestHandler_AuditSet(t *testing.T) {
	handler, engine := testHandler()

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	// Drain initial messages
	readJSON(t, conn) // options:loaded
	readJSON(t, conn) // sim:state

	sendJSON(t, conn, TypeAuditSet, AuditPayload{UsageKWh: 900, HasEV: true})
	time.Sleep(50 * time.Millisecond)

	audit := engine.Audit()
	assert.Equal(t, 900.0, audit.UsageKWh)
	assert.True(t, audit.HasEV)
	assert.False(t, audit.HasPool)
}

func TestHandler_AuditSetClampsUsage(t *testing.T) {
	handler, engine := testHandler()

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	sendJSON(t, conn, TypeAuditSet, AuditPayload{UsageKWh: 50})
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 200.0, engine.Audit().UsageKWh)
}

func TestHandler_StrategySet(t *testing.T) {
	handler, engine := testHandler()

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	sendJSON(t, conn, TypeStrategySet, StrategyPayload{
		DayUsagePct:    60,
		PanelWatts:     700,
		PanelCount:     10,
		BatteryEnabled: true,
		BatteryUnits:   2,
	})
	time.Sleep(50 * time.Millisecond)

	s := engine.Strategy()
	assert.Equal(t, 60.0, s.DayUsagePct)
	assert.Equal(t, 700, s.PanelWatts)
	assert.Equal(t, 10, s.PanelCount)
	assert.True(t, s.BatteryEnabled)
	assert.Equal(t, 2, s.BatteryUnits)
}

func TestHandler_StrategySetNormalizes(t *testing.T) {
	handler, engine := testHandler()

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	// Unknown panel model, out-of-range share and count
	sendJSON(t, conn, TypeStrategySet, StrategyPayload{
		DayUsagePct: 5,
		PanelWatts:  999,
		PanelCount:  100,
	})
	time.Sleep(50 * time.Millisecond)

	s := engine.Strategy()
	assert.Equal(t, 10.0, s.DayUsagePct)
	assert.Equal(t, 615, s.PanelWatts)
	assert.Equal(t, 40, s.PanelCount)
	assert.Equal(t, 0, s.BatteryUnits)
}

func TestHandler_StartPause(t *testing.T) {
	handler, engine := testHandler()

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	sendJSON(t, conn, TypeSimStart, nil)
	time.Sleep(50 * time.Millisecond)
	assert.True(t, engine.State().Running)

	sendJSON(t, conn, TypeSimPause, nil)
	time.Sleep(50 * time.Millisecond)
	assert.False(t, engine.State().Running)
}

func TestHandler_Reset(t *testing.T) {
	handler, engine := testHandler()

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	engine.Step()
	engine.Step()
	require.Equal(t, 2, engine.State().Tick)

	sendJSON(t, conn, TypeSimReset, nil)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, engine.State().Tick)
}

func TestHandler_SetSpeed(t *testing.T) {
	handler, engine := testHandler()

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	sendJSON(t, conn, TypeSimSetSpeed, SetSpeedPayload{Speed: 4})
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 4.0, engine.State().Speed)
}

func TestHandler_InvalidMessage(t *testing.T) {
	handler, engine := testHandler()

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	// Send invalid JSON; connection stays up and engine is untouched
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	time.Sleep(50 * time.Millisecond)

	assert.False(t, engine.State().Running)
}

func TestHandler_UnknownType(t *testing.T) {
	handler, engine := testHandler()

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	sendJSON(t, conn, "bogus:type", nil)
	time.Sleep(50 * time.Millisecond)

	assert.False(t, engine.State().Running)
	assert.Equal(t, 0, engine.State().Tick)
}
