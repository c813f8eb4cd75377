package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/NYTimes/gziphandler"
	"github.com/rs/cors"

	"solar_savings/internal/config"
	"solar_savings/internal/logger"
	"solar_savings/internal/model"
	"solar_savings/internal/simulator"
	"solar_savings/internal/ws"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", "", "pricing config file (YAML); empty uses published defaults")
	frontendDir := flag.String("frontend-dir", "frontend/build", "directory containing frontend build")
	logLevel := flag.String("log-level", logger.InfoLevel, "log level (debug, info, warn, error)")
	allowOrigin := flag.String("allow-origin", "", "allowed CORS origin; empty disables CORS")
	flag.Parse()

	log := logger.Get(*logLevel)

	pricing, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Set up WebSocket hub and simulator
	hub := ws.NewHub(log)
	bridge := ws.NewBridge(hub, log)
	engine := simulator.New(pricing, bridge)

	// Scenario shown before the first client submits the intake form
	engine.SetAudit(model.AuditInput{UsageKWh: 900})
	engine.SetStrategy(model.StrategyConfig{
		DayUsagePct: 60,
		PanelWatts:  model.DefaultPanelWatts,
		PanelCount:  12,
	})

	handler := ws.NewHandler(hub, engine, pricing, log)
	mux := buildMux(handler, pricing, *frontendDir, log)

	log.Infof("listening on %s", *addr)
	if err := http.ListenAndServe(*addr, withMiddleware(mux, *allowOrigin)); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func buildMux(wsHandler http.Handler, pricing config.Pricing, frontendDir string, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("GET /api/options", handleOptions(pricing, log))
	mux.HandleFunc("POST /api/estimate", handleEstimate(pricing, log))
	mux.Handle("/ws", wsHandler)

	// Serve frontend static files
	if frontendDir != "" {
		if _, err := os.Stat(frontendDir); err == nil {
			log.Infof("serving frontend from %s", frontendDir)
			mux.Handle("/", http.FileServer(http.Dir(frontendDir)))
		}
	}

	return mux
}

// withMiddleware wraps the mux with gzip compression and, when an origin is
// configured, CORS for browser clients on another host.
func withMiddleware(h http.Handler, allowOrigin string) http.Handler {
	if allowOrigin != "" {
		c := cors.New(cors.Options{
			AllowedOrigins: []string{allowOrigin},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		})
		h = c.Handler(h)
	}
	return gziphandler.GzipHandler(h)
}

type estimateRequest struct {
	Audit    ws.AuditPayload    `json:"audit"`
	Strategy ws.StrategyPayload `json:"strategy"`
}

type estimateResponse struct {
	Flows  ws.FlowsPayload  `json:"flows"`
	Report ws.ReportPayload `json:"report"`
}

func handleOptions(pricing config.Pricing, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ws.NewOptionsPayload(pricing)); err != nil {
			log.Errorf("encode options: %v", err)
		}
	}
}

// handleEstimate runs one full month synchronously for clients that want a
// result without driving the animated WebSocket path.
func handleEstimate(pricing config.Pricing, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req estimateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		audit := model.AuditInput{
			UsageKWh: req.Audit.UsageKWh,
			HasEV:    req.Audit.HasEV,
			HasPool:  req.Audit.HasPool,
			HasPond:  req.Audit.HasPond,
		}.Normalize()
		strategy := model.StrategyConfig{
			DayUsagePct:    req.Strategy.DayUsagePct,
			PanelWatts:     req.Strategy.PanelWatts,
			PanelCount:     req.Strategy.PanelCount,
			BatteryEnabled: req.Strategy.BatteryEnabled,
			BatteryUnits:   req.Strategy.BatteryUnits,
		}.Normalize()

		flows, report := simulator.Summarize(audit, strategy, pricing)

		w.Header().Set("Content-Type", "application/json")
		resp := estimateResponse{
			Flows:  ws.FlowsFromEngine(flows),
			Report: ws.ReportFromEngine(report),
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Errorf("encode estimate response: %v", err)
		}
	}
}
