// Package types defines shared API types for agent events, explanations,
// and scaling decisions used by the guardian HTTP API and internal processing.
package types

import (
	"fmt"
	"time"
)

// Event types emitted by guardian agents.
const (
	EventFraudDetection    = "fraud_detection"
	EventSystemScaling     = "system_scaling"
	EventAgentCoordination = "agent_coordination"
)

// Severity levels for agent events.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Audience values gating how much detail an explanation exposes.
const (
	AudienceUser     = "user"
	AudienceOperator = "operator"
	AudienceBoth     = "both"
)

// AgentEvent is the HTTP/API representation of an action taken by a
// guardian agent. Events are immutable after creation; exactly one of the
// typed context payloads is expected to be set for the matching event type.
type AgentEvent struct {
	ID            string                 `json:"event_id"`
	Type          string                 `json:"event_type"`
	SourceAgent   string                 `json:"source_agent"`
	Timestamp     time.Time              `json:"timestamp"`
	Severity      string                 `json:"severity"`
	Audience      string                 `json:"audience"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Fraud         *FraudContext          `json:"fraud,omitempty"`
	Scaling       *ScalingContext        `json:"scaling,omitempty"`
	Coordination  *CoordinationContext   `json:"coordination,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// FraudContext is fraud-detection payload in an agent event.
type FraudContext struct {
	TransactionID string   `json:"transaction_id,omitempty"`
	AccountID     string   `json:"account_id,omitempty"`
	FraudScore    float64  `json:"fraud_score"`
	RiskLevel     string   `json:"risk_level,omitempty"`
	ActionTaken   string   `json:"action_taken,omitempty"`
	RedFlags      []string `json:"red_flags,omitempty"`
}

// ScalingContext is system-scaling payload in an agent event.
type ScalingContext struct {
	ServiceName          string  `json:"service_name"`
	FromReplicas         int     `json:"from_replicas"`
	ToReplicas           int     `json:"to_replicas"`
	Trigger              string  `json:"trigger,omitempty"`
	PredictionConfidence float64 `json:"prediction_confidence,omitempty"`
	EstimatedDuration    string  `json:"estimated_duration,omitempty"`
}

// CoordinationContext is agent-coordination payload in an agent event.
type CoordinationContext struct {
	CoordinationType  string   `json:"coordination_type,omitempty"`
	InvolvedAgents    []string `json:"involved_agents,omitempty"`
	Decision          string   `json:"decision,omitempty"`
	Reasoning         string   `json:"reasoning,omitempty"`
	EstimatedDuration string   `json:"estimated_duration,omitempty"`
}

// CoordinationPriorityConflict marks a coordination event that resolves
// conflicting agent intents through the priority hierarchy.
const CoordinationPriorityConflict = "priority_conflict"

var validSeverities = map[string]bool{
	SeverityLow: true, SeverityMedium: true, SeverityHigh: true, SeverityCritical: true,
}

var validAudiences = map[string]bool{
	AudienceUser: true, AudienceOperator: true, AudienceBoth: true,
}

// Validate checks the required fields of an incoming event. Missing
// required fields are rejected at ingestion, never silently defaulted.
func (e *AgentEvent) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("event_type is required")
	}
	if e.SourceAgent == "" {
		return fmt.Errorf("source_agent is required")
	}
	if !validSeverities[e.Severity] {
		return fmt.Errorf("invalid severity %q", e.Severity)
	}
	if !validAudiences[e.Audience] {
		return fmt.Errorf("invalid audience %q", e.Audience)
	}
	return nil
}

// AgentState is the last-known state of a named guardian agent.
// Registrations overwrite wholesale; last write wins.
type AgentState struct {
	AgentName    string                 `json:"agent_name"`
	Status       string                 `json:"status"`
	Capabilities []string               `json:"capabilities,omitempty"`
	Metrics      map[string]interface{} `json:"metrics,omitempty"`
	LastUpdate   time.Time              `json:"last_update"`
}
