// Package server provides the HTTP server and API handlers for the
// guardian service.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/config"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/correlation"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/scaling"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/version"
)

// Server is the HTTP server for the guardian API.
type Server struct {
	cfg        config.GuardianConfig
	correlator *correlation.Service
	engine     *scaling.Engine
	log        *logrus.Logger
	httpServer *http.Server
}

// New creates the HTTP server over the correlation service and scaling engine.
func New(cfg config.GuardianConfig, correlator *correlation.Service, engine *scaling.Engine, log *logrus.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{cfg: cfg, correlator: correlator, engine: engine, log: log}
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/explain/event", s.handleEvent)
	mux.HandleFunc("/explain/multi-agent-event", s.handleEventBatch)
	mux.HandleFunc("/explain/correlations/", s.handleCorrelation)
	mux.HandleFunc("/explain/register-agent-state", s.handleRegisterAgentState)
	mux.HandleFunc("/explain/agent-states", s.handleAgentStates)
	mux.HandleFunc("/scaling/decision", s.handleDecision)
	mux.HandleFunc("/scaling/manual", s.handleManualScale)
	mux.HandleFunc("/monitoring/start", s.handleMonitoringStart)
	mux.HandleFunc("/monitoring/stop", s.handleMonitoringStop)
	mux.HandleFunc("/monitoring/status", s.handleMonitoringStatus)
	mux.HandleFunc("/coordination/pause", s.handlePause)
	mux.HandleFunc("/coordination/resume", s.handleResume)
	mux.HandleFunc("/coordination/status", s.handleCoordinationStatus)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// ListenAndServe starts the HTTP server. It blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.cfg.HTTPAddr).Info("Guardian service listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	paused, _ := s.engine.Paused()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":             "guardian-agent",
		"status":              "healthy",
		"version":             version.Version,
		"monitoring_active":   s.engine.MonitoringActive(),
		"coordination_paused": paused,
		"active_correlations": s.correlator.ActiveCorrelations(),
		"registered_agents":   len(s.correlator.AgentStates()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func correlationID(path string) string {
	return strings.TrimPrefix(path, "/explain/correlations/")
}
