// Package correlation provides the top-level orchestration of agent event
// ingestion, correlation grouping, and explanation synthesis.
package correlation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/eventstore"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/explain"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/registry"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

// Prometheus metrics (registered once).
var (
	eventsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_events_received_total",
			Help: "Total agent events received",
		},
		[]string{"type", "severity", "source"},
	)
	explanationsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_explanations_generated_total",
			Help: "Total explanations generated",
		},
		[]string{"type"},
	)
	activeCorrelations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "guardian_active_correlations",
			Help: "Number of correlation groups currently buffered",
		},
	)
)

func init() {
	prometheus.MustRegister(eventsReceived)
	prometheus.MustRegister(explanationsGenerated)
	prometheus.MustRegister(activeCorrelations)
}

// Service receives agent events, buffers correlated ones, and returns a
// synthesized explanation per submission.
type Service struct {
	log      *logrus.Logger
	store    *eventstore.Store
	registry *registry.Registry
	synth    *explain.Synthesizer
}

// New creates a correlation service over the given store and registry.
func New(store *eventstore.Store, reg *registry.Registry, log *logrus.Logger) *Service {
	return &Service{
		log:      log,
		store:    store,
		registry: reg,
		synth:    explain.New(),
	}
}

// Submit validates and ingests one event, then returns its explanation.
// Correlation activates retroactively: the first event of a pair is
// explained as single-agent at submission time, and only the arrival of a
// second event with the same correlation id upgrades the group. Callers
// needing the upgraded view re-query by correlation id.
func (s *Service) Submit(ctx context.Context, event types.AgentEvent) (types.Explanation, error) {
	if err := event.Validate(); err != nil {
		return types.Explanation{}, fmt.Errorf("invalid event: %w", err)
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	eventsReceived.WithLabelValues(event.Type, event.Severity, event.SourceAgent).Inc()

	group := []types.AgentEvent{event}
	if event.CorrelationID != "" {
		s.store.Insert(event)
		if live := s.store.GroupFor(event.CorrelationID); len(live) > 1 {
			group = live
		}
		activeCorrelations.Set(float64(s.store.ActiveCorrelations()))
	}

	explanation := s.synth.Explain(group, event)
	explanationsGenerated.WithLabelValues(explanation.Type).Inc()

	s.log.WithFields(logrus.Fields{
		"event_id":         event.ID,
		"event_type":       event.Type,
		"explanation_id":   explanation.ID,
		"explanation_type": explanation.Type,
		"involved_agents":  explanation.InvolvedAgents,
	}).Info("Event explained")

	return explanation, nil
}

// SubmitBatch assigns a shared correlation id to any event missing one,
// submits each in order, and returns the explanation for the final event,
// which is the most informed one given monotonic group growth.
func (s *Service) SubmitBatch(ctx context.Context, events []types.AgentEvent) (types.Explanation, error) {
	if len(events) == 0 {
		return types.Explanation{}, fmt.Errorf("invalid batch: no events")
	}

	correlationID := events[0].CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	var last types.Explanation
	for i := range events {
		if events[i].CorrelationID == "" {
			events[i].CorrelationID = correlationID
		}
		explanation, err := s.Submit(ctx, events[i])
		if err != nil {
			return types.Explanation{}, err
		}
		last = explanation
	}
	return last, nil
}

// GetGroup returns the live members of a correlation group after eviction.
// An empty group is valid and means nothing is currently correlated.
func (s *Service) GetGroup(correlationID string) []types.AgentEvent {
	return s.store.GroupFor(correlationID)
}

// Correlation returns the live group plus its involved agents, as exposed
// to dashboards inspecting a live correlation.
func (s *Service) Correlation(correlationID string) ([]types.AgentEvent, []string) {
	group := s.store.GroupFor(correlationID)
	return group, explain.InvolvedAgents(group)
}

// RegisterAgentState upserts the last-known state of a guardian agent.
func (s *Service) RegisterAgentState(state types.AgentState) error {
	if state.AgentName == "" {
		return fmt.Errorf("invalid agent state: agent_name is required")
	}
	s.registry.Register(state)
	s.log.WithFields(logrus.Fields{
		"agent":  state.AgentName,
		"status": state.Status,
	}).Info("Agent state registered")
	return nil
}

// AgentStates returns every registered agent state.
func (s *Service) AgentStates() []types.AgentState {
	return s.registry.All()
}

// ActiveCorrelations returns the number of buffered correlation groups.
func (s *Service) ActiveCorrelations() int {
	return s.store.ActiveCorrelations()
}
