// Package scaling provides the scaling decision engine: metrics
// measurement, AI-assisted prediction with a deterministic rule fallback,
// cross-agent arbitration, and execution against the cluster.
package scaling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/config"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/coordination"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

// Domain is the coordination domain arbitrating scaling against active
// fraud investigations.
const Domain = "scaling-vs-fraud"

const (
	metricsHistoryLimit  = 100
	decisionHistoryLimit = 50
)

// Prometheus metrics (registered once).
var (
	scalingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guardian_scaling_decisions_total",
			Help: "Scaling decisions by outcome",
		},
		[]string{"service", "outcome"},
	)
	predictionFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guardian_prediction_fallbacks_total",
			Help: "AI predictions that fell back to the rule-based path",
		},
	)
)

func init() {
	prometheus.MustRegister(scalingDecisions)
	prometheus.MustRegister(predictionFallbacks)
}

// Predictor is the AI-assisted verdict collaborator. Any error, timeout,
// or malformed response is treated identically: fall back to rules.
type Predictor interface {
	Predict(ctx context.Context, metrics types.ServiceMetrics, history []types.ServiceMetrics) (types.ScalingDecision, error)
}

// Cluster reads service metrics and applies replica changes.
type Cluster interface {
	CollectMetrics(ctx context.Context, service string) (types.ServiceMetrics, error)
	ApplyReplicaCount(ctx context.Context, service string, replicas int) error
}

// InvestigationCounter reports active fraud investigations; a nonzero
// count defers any verdict flagged for coordination.
type InvestigationCounter interface {
	CountActiveInvestigations(ctx context.Context) (int, error)
}

// Notifier emits agent notifications. Fire-and-forget: implementations
// log failures and never propagate them.
type Notifier interface {
	Notify(ctx context.Context, event types.AgentEvent)
}

// Config holds the engine's tunables.
type Config struct {
	MonitoredServices []string
	MonitorInterval   time.Duration
	PredictTimeout    time.Duration
	Thresholds        config.ScalingThresholds
}

// Engine turns metrics snapshots into scaling verdicts and executes them,
// deferring to the fraud domain when arbitration requires it. One engine
// instance serializes all scaling cycles.
type Engine struct {
	cfg       Config
	log       *logrus.Logger
	cluster   Cluster
	predictor Predictor
	counter   InvestigationCounter
	notifier  Notifier
	coord     *coordination.State

	mu             sync.Mutex
	thresholds     config.ScalingThresholds
	metricsHistory map[string][]types.ServiceMetrics
	decisions      []types.ScalingDecision

	loopMu sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	now func() time.Time // overridable in tests
}

// New creates a scaling engine. The predictor may be nil, in which case
// every decision takes the rule-based path.
func New(cfg Config, cluster Cluster, predictor Predictor, counter InvestigationCounter, notifier Notifier, coord *coordination.State, log *logrus.Logger) *Engine {
	if cfg.MonitorInterval <= 0 {
		cfg.MonitorInterval = 30 * time.Second
	}
	if cfg.PredictTimeout <= 0 {
		cfg.PredictTimeout = 10 * time.Second
	}
	zero := config.ScalingThresholds{}
	if cfg.Thresholds == zero {
		cfg.Thresholds = config.DefaultThresholds()
	}
	return &Engine{
		cfg:            cfg,
		log:            log,
		cluster:        cluster,
		predictor:      predictor,
		counter:        counter,
		notifier:       notifier,
		coord:          coord,
		thresholds:     cfg.Thresholds,
		metricsHistory: make(map[string][]types.ServiceMetrics),
		now:            time.Now,
	}
}

// SetThresholds swaps the rule thresholds, e.g. after a config reload.
func (e *Engine) SetThresholds(t config.ScalingThresholds) {
	e.mu.Lock()
	e.thresholds = t
	e.mu.Unlock()
}

func (e *Engine) currentThresholds() config.ScalingThresholds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.thresholds
}

// Monitored reports whether a service name is under management.
func (e *Engine) Monitored(service string) bool {
	for _, s := range e.cfg.MonitoredServices {
		if s == service {
			return true
		}
	}
	return false
}

// MonitoredServices returns the managed service names.
func (e *Engine) MonitoredServices() []string {
	out := make([]string, len(e.cfg.MonitoredServices))
	copy(out, e.cfg.MonitoredServices)
	return out
}

// Decide produces a verdict for one service from a metrics snapshot and
// recent history. The AI path is attempted first; on any failure or
// malformed response the deterministic rules take over. AI verdicts are
// clamped to the valid replica and confidence ranges regardless of what
// the model returned. Unknown service names are rejected.
func (e *Engine) Decide(ctx context.Context, service string, metrics types.ServiceMetrics, history []types.ServiceMetrics) (types.ScalingDecision, error) {
	if !e.Monitored(service) {
		return types.ScalingDecision{}, fmt.Errorf("service %q is not monitored", service)
	}
	metrics.ServiceName = service

	thresholds := e.currentThresholds()
	if e.predictor != nil {
		predictCtx, cancel := context.WithTimeout(ctx, e.cfg.PredictTimeout)
		decision, err := e.predictor.Predict(predictCtx, metrics, history)
		cancel()
		if err == nil {
			return clampDecision(decision, thresholds), nil
		}
		predictionFallbacks.Inc()
		e.log.WithError(err).WithField("service", service).Warn("AI prediction failed, falling back to rules")
	}
	return ruleBasedDecision(metrics, thresholds, e.now()), nil
}

func clampDecision(d types.ScalingDecision, t config.ScalingThresholds) types.ScalingDecision {
	d.TargetReplicas = max(t.MinReplicas, min(t.MaxReplicas, d.TargetReplicas))
	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 1 {
		d.Confidence = 1
	}
	return d
}

// execute arbitrates and applies one verdict. A verdict whose target
// equals the current replica count is a skip: no mutation, no
// notification. A coordination-flagged verdict is deferred when the
// domain is paused or fraud investigations are active; deferral emits a
// coordination notification instead of a scaling event.
func (e *Engine) execute(ctx context.Context, decision types.ScalingDecision) {
	if decision.TargetReplicas == decision.CurrentReplicas {
		scalingDecisions.WithLabelValues(decision.ServiceName, "skip").Inc()
		return
	}

	if decision.CoordinationNeeded {
		if blocked, reason := e.arbitrate(ctx); blocked {
			scalingDecisions.WithLabelValues(decision.ServiceName, "defer").Inc()
			e.log.WithFields(logrus.Fields{
				"service": decision.ServiceName,
				"reason":  reason,
			}).Info("Scaling deferred")
			e.notifier.Notify(ctx, deferredEvent(decision, reason))
			return
		}
	}

	if err := e.cluster.ApplyReplicaCount(ctx, decision.ServiceName, decision.TargetReplicas); err != nil {
		scalingDecisions.WithLabelValues(decision.ServiceName, "error").Inc()
		e.log.WithError(err).WithField("service", decision.ServiceName).Error("Failed to scale service")
		return
	}

	scalingDecisions.WithLabelValues(decision.ServiceName, "execute").Inc()
	e.recordDecision(decision)
	e.log.WithFields(logrus.Fields{
		"service": decision.ServiceName,
		"from":    decision.CurrentReplicas,
		"to":      decision.TargetReplicas,
		"reason":  decision.Reason,
	}).Info("Service scaled")
	e.notifier.Notify(ctx, executedEvent(decision))
}

// arbitrate reports whether execution must be deferred, with the
// individually reportable reason. The explicit pause flag and the fraud
// investigation override block independently.
func (e *Engine) arbitrate(ctx context.Context) (bool, string) {
	if paused, reason := e.coord.IsPaused(Domain); paused {
		if reason == "" {
			reason = "Scaling coordination paused"
		}
		return true, reason
	}
	count, err := e.counter.CountActiveInvestigations(ctx)
	if err != nil {
		// Collaborator failure is recovered locally: treat as no
		// active investigations rather than blocking the cycle.
		e.log.WithError(err).Warn("Could not check fraud investigations")
		return false, ""
	}
	if count > 0 {
		return true, "Active fraud investigations take priority"
	}
	return false, ""
}

// ManualScale applies an operator-requested replica count, clamped to the
// valid range. Unknown services are rejected.
func (e *Engine) ManualScale(ctx context.Context, service string, target int) (int, error) {
	if !e.Monitored(service) {
		return 0, fmt.Errorf("service %q is not monitored", service)
	}
	t := e.currentThresholds()
	target = max(t.MinReplicas, min(t.MaxReplicas, target))
	if err := e.cluster.ApplyReplicaCount(ctx, service, target); err != nil {
		return 0, fmt.Errorf("failed to scale %s: %w", service, err)
	}
	e.notifier.Notify(ctx, manualEvent(service, target))
	return target, nil
}

// Pause suspends coordinated scaling for the domain and announces it.
func (e *Engine) Pause(ctx context.Context, reason, setBy string) {
	e.coord.Pause(Domain, reason, setBy)
	e.log.WithField("reason", reason).Info("Scaling operations paused")
	e.notifier.Notify(ctx, coordinationEvent("scaling_paused", "Scaling operations paused", reason))
}

// Resume lifts the pause flag and announces it.
func (e *Engine) Resume(ctx context.Context) {
	e.coord.Resume(Domain)
	e.log.Info("Scaling operations resumed")
	e.notifier.Notify(ctx, coordinationEvent("scaling_resumed", "Scaling operations resumed", ""))
}

// Paused reports the domain pause flag and reason.
func (e *Engine) Paused() (bool, string) {
	return e.coord.IsPaused(Domain)
}

func (e *Engine) recordMetrics(m types.ServiceMetrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := append(e.metricsHistory[m.ServiceName], m)
	if len(h) > metricsHistoryLimit {
		h = h[len(h)-metricsHistoryLimit:]
	}
	e.metricsHistory[m.ServiceName] = h
}

func (e *Engine) recordDecision(d types.ScalingDecision) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.decisions = append(e.decisions, d)
	if len(e.decisions) > decisionHistoryLimit {
		e.decisions = e.decisions[len(e.decisions)-decisionHistoryLimit:]
	}
}

// History returns the buffered metrics snapshots for a service.
func (e *Engine) History(service string) []types.ServiceMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.metricsHistory[service]
	out := make([]types.ServiceMetrics, len(h))
	copy(out, h)
	return out
}

// RecentDecisions returns up to n of the most recent executed decisions.
func (e *Engine) RecentDecisions(n int) []types.ScalingDecision {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n <= 0 || n > len(e.decisions) {
		n = len(e.decisions)
	}
	out := make([]types.ScalingDecision, n)
	copy(out, e.decisions[len(e.decisions)-n:])
	return out
}

func executedEvent(d types.ScalingDecision) types.AgentEvent {
	return types.AgentEvent{
		Type:          types.EventSystemScaling,
		CorrelationID: uuid.NewString(),
		Severity:      types.SeverityMedium,
		Audience:      types.AudienceOperator,
		Scaling: &types.ScalingContext{
			ServiceName:          d.ServiceName,
			FromReplicas:         d.CurrentReplicas,
			ToReplicas:           d.TargetReplicas,
			Trigger:              d.Reason,
			PredictionConfidence: d.Confidence,
		},
	}
}

func deferredEvent(d types.ScalingDecision, reason string) types.AgentEvent {
	return types.AgentEvent{
		Type:          types.EventAgentCoordination,
		CorrelationID: uuid.NewString(),
		Severity:      types.SeverityMedium,
		Audience:      types.AudienceOperator,
		Coordination: &types.CoordinationContext{
			CoordinationType: types.CoordinationPriorityConflict,
			InvolvedAgents:   []string{"financial-guardian", "ops-guardian"},
			Decision:         fmt.Sprintf("Deferred scaling of %s from %d to %d replicas", d.ServiceName, d.CurrentReplicas, d.TargetReplicas),
			Reasoning:        reason,
		},
	}
}

func manualEvent(service string, target int) types.AgentEvent {
	return types.AgentEvent{
		Type:          types.EventSystemScaling,
		CorrelationID: uuid.NewString(),
		Severity:      types.SeverityMedium,
		Audience:      types.AudienceOperator,
		Scaling: &types.ScalingContext{
			ServiceName: service,
			ToReplicas:  target,
			Trigger:     "manual_request",
		},
	}
}

func coordinationEvent(coordinationType, decision, reasoning string) types.AgentEvent {
	return types.AgentEvent{
		Type:          types.EventAgentCoordination,
		CorrelationID: uuid.NewString(),
		Severity:      types.SeverityMedium,
		Audience:      types.AudienceOperator,
		Coordination: &types.CoordinationContext{
			CoordinationType: coordinationType,
			InvolvedAgents:   []string{"financial-guardian", "ops-guardian"},
			Decision:         decision,
			Reasoning:        reasoning,
		},
	}
}
