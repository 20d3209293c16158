package server

import (
	"encoding/json"
	"net/http"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var event types.AgentEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	explanation, err := s.correlator.Submit(r.Context(), event)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, explanation)
}

func (s *Server) handleEventBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var events []types.AgentEvent
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	explanation, err := s.correlator.SubmitBatch(r.Context(), events)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, explanation)
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := correlationID(r.URL.Path)
	if id == "" {
		writeError(w, http.StatusBadRequest, "correlation id required")
		return
	}
	events, agents := s.correlator.Correlation(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"correlation_id":  id,
		"events":          events,
		"count":           len(events),
		"involved_agents": agents,
	})
}

func (s *Server) handleRegisterAgentState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var state types.AgentState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := s.correlator.RegisterAgentState(state); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "registered", "agent": state.AgentName})
}

func (s *Server) handleAgentStates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"agent_states":          s.correlator.AgentStates(),
		"buffered_correlations": s.correlator.ActiveCorrelations(),
	})
}

type decisionRequest struct {
	ServiceName string                 `json:"service_name"`
	Metrics     *types.ServiceMetrics  `json:"metrics"`
	History     []types.ServiceMetrics `json:"history,omitempty"`
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ServiceName == "" {
		writeError(w, http.StatusBadRequest, "service_name required")
		return
	}
	if req.Metrics == nil {
		writeError(w, http.StatusBadRequest, "metrics required")
		return
	}
	history := req.History
	if history == nil {
		history = s.engine.History(req.ServiceName)
	}
	decision, err := s.engine.Decide(r.Context(), req.ServiceName, *req.Metrics, history)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	paused, _ := s.engine.Paused()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":          req.ServiceName,
		"scaling_decision": decision,
		"will_execute":     !paused,
	})
}

type manualScaleRequest struct {
	ServiceName    string `json:"service_name"`
	TargetReplicas *int   `json:"target_replicas"`
}

func (s *Server) handleManualScale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req manualScaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ServiceName == "" || req.TargetReplicas == nil {
		writeError(w, http.StatusBadRequest, "service_name and target_replicas required")
		return
	}
	applied, err := s.engine.ManualScale(r.Context(), req.ServiceName, *req.TargetReplicas)
	if err != nil {
		if !s.engine.Monitored(req.ServiceName) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "success",
		"service":         req.ServiceName,
		"target_replicas": applied,
	})
}

func (s *Server) handleMonitoringStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.engine.StartMonitoring(r.Context()) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_running"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "monitoring_started"})
}

func (s *Server) handleMonitoringStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.engine.StopMonitoring()
	writeJSON(w, http.StatusOK, map[string]string{"status": "monitoring_stopped"})
}

func (s *Server) handleMonitoringStatus(w http.ResponseWriter, r *http.Request) {
	paused, reason := s.engine.Paused()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"monitoring_active":   s.engine.MonitoringActive(),
		"coordination_paused": paused,
		"pause_reason":        reason,
		"monitored_services":  s.engine.MonitoredServices(),
		"recent_decisions":    s.engine.RecentDecisions(10),
	})
}

type pauseRequest struct {
	Reason string `json:"reason"`
	SetBy  string `json:"set_by,omitempty"`
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req pauseRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Reason == "" {
		req.Reason = "Manual coordination request"
	}
	if req.SetBy == "" {
		req.SetBy = "operator"
	}
	s.engine.Pause(r.Context(), req.Reason, req.SetBy)
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused", "reason": req.Reason})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.engine.Resume(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

func (s *Server) handleCoordinationStatus(w http.ResponseWriter, r *http.Request) {
	paused, reason := s.engine.Paused()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"paused": paused,
		"reason": reason,
	})
}
