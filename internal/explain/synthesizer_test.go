package explain

import (
	"strings"
	"testing"
	"time"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

func fraudEvent(audience string) types.AgentEvent {
	return types.AgentEvent{
		ID:          "ev-fraud",
		Type:        types.EventFraudDetection,
		SourceAgent: "financial-guardian",
		Timestamp:   time.Now(),
		Severity:    types.SeverityHigh,
		Audience:    audience,
		Fraud: &types.FraudContext{
			TransactionID: "tx_123",
			FraudScore:    0.95,
			RiskLevel:     "CRITICAL",
			ActionTaken:   "BLOCK",
			RedFlags:      []string{"amount 12.0x larger than average"},
		},
	}
}

func TestExplain_FraudUserAudienceHidesScoreAndRedFlags(t *testing.T) {
	s := New()
	ev := fraudEvent(types.AudienceUser)
	got := s.Explain([]types.AgentEvent{ev}, ev)

	if got.Type != types.ExplanationSingleAgent {
		t.Errorf("explanation_type: want single_agent, got %s", got.Type)
	}
	payload := got.Explanation
	for _, field := range []string{payload.Title, payload.Summary, payload.Details, payload.Reasoning} {
		if strings.Contains(field, "0.95") {
			t.Errorf("user explanation leaks fraud score: %q", field)
		}
		if strings.Contains(field, "larger than average") {
			t.Errorf("user explanation leaks red flags: %q", field)
		}
	}
	if payload.Title != "Security Alert" {
		t.Errorf("title: want Security Alert, got %q", payload.Title)
	}
}

func TestExplain_FraudOperatorAudienceExposesDetail(t *testing.T) {
	s := New()
	ev := fraudEvent(types.AudienceOperator)
	got := s.Explain([]types.AgentEvent{ev}, ev)

	payload := got.Explanation
	if !strings.Contains(payload.Details, "Fraud Score: 0.95") {
		t.Errorf("operator details missing fraud score: %q", payload.Details)
	}
	if !strings.Contains(payload.Details, "Risk Level: CRITICAL") {
		t.Errorf("operator details missing risk level: %q", payload.Details)
	}
	if !strings.Contains(payload.Details, "larger than average") {
		t.Errorf("operator details missing red flags: %q", payload.Details)
	}
	if payload.Confidence != 0.95 {
		t.Errorf("confidence: want 0.95, got %v", payload.Confidence)
	}
}

func TestExplain_FraudMissingContextUsesDefaults(t *testing.T) {
	s := New()
	ev := types.AgentEvent{
		ID: "e1", Type: types.EventFraudDetection, SourceAgent: "financial-guardian",
		Severity: types.SeverityLow, Audience: types.AudienceOperator,
	}
	got := s.Explain([]types.AgentEvent{ev}, ev)
	if got.Explanation.Confidence != 0.5 {
		t.Errorf("default confidence: want 0.5, got %v", got.Explanation.Confidence)
	}
	if got.Explanation.Details != "Fraud analysis completed" {
		t.Errorf("default details: got %q", got.Explanation.Details)
	}
}

func TestExplain_ScalingEvent(t *testing.T) {
	s := New()
	ev := types.AgentEvent{
		ID: "e1", Type: types.EventSystemScaling, SourceAgent: "ops-guardian",
		Severity: types.SeverityMedium, Audience: types.AudienceOperator,
		Scaling: &types.ScalingContext{
			ServiceName:          "frontend",
			FromReplicas:         2,
			ToReplicas:           3,
			Trigger:              "High CPU",
			PredictionConfidence: 0.9,
		},
	}
	got := s.Explain([]types.AgentEvent{ev}, ev)

	if got.Explanation.Summary != "Scaled frontend from 2 to 3 replicas" {
		t.Errorf("summary: got %q", got.Explanation.Summary)
	}
	if got.Explanation.Reasoning != "Triggered by High CPU" {
		t.Errorf("reasoning: got %q", got.Explanation.Reasoning)
	}
	if got.Explanation.Confidence != 0.9 {
		t.Errorf("confidence: want 0.9, got %v", got.Explanation.Confidence)
	}
}

func TestExplain_GenericFallbackIsTotal(t *testing.T) {
	s := New()
	ev := types.AgentEvent{
		ID: "e1", Type: "something_new", SourceAgent: "mystery-agent",
		Severity: types.SeverityLow, Audience: types.AudienceBoth,
	}
	got := s.Explain([]types.AgentEvent{ev}, ev)

	if got.Explanation.Title != "System Event" {
		t.Errorf("title: got %q", got.Explanation.Title)
	}
	if got.Explanation.Summary != "mystery-agent generated something_new event" {
		t.Errorf("summary: got %q", got.Explanation.Summary)
	}
	if got.Explanation.Confidence != 0.7 {
		t.Errorf("confidence: want 0.7, got %v", got.Explanation.Confidence)
	}
}

func TestExplain_PriorityConflictGroup(t *testing.T) {
	s := New()
	base := time.Now()
	fraud := fraudEvent(types.AudienceOperator)
	fraud.Timestamp = base
	fraud.CorrelationID = "c1"
	coord := types.AgentEvent{
		ID: "ev-coord", Type: types.EventAgentCoordination, SourceAgent: "coordinator-agent",
		Timestamp: base.Add(time.Second), Severity: types.SeverityMedium,
		Audience: types.AudienceOperator, CorrelationID: "c1",
		Coordination: &types.CoordinationContext{
			CoordinationType: types.CoordinationPriorityConflict,
			InvolvedAgents:   []string{"financial-guardian", "ops-guardian"},
			Decision:         "pause_scaling_during_investigation",
		},
	}

	got := s.Explain([]types.AgentEvent{fraud, coord}, coord)
	if got.Type != types.ExplanationCoordination {
		t.Fatalf("explanation_type: want coordination, got %s", got.Type)
	}
	if got.Explanation.Title != "Agent Priority Resolution" {
		t.Errorf("title: got %q", got.Explanation.Title)
	}
	if got.Explanation.Confidence != 0.95 {
		t.Errorf("confidence: want 0.95, got %v", got.Explanation.Confidence)
	}
	// No reasoning supplied: the generic system-priority statement applies.
	if got.Explanation.Reasoning != "Coordinator decision based on system priorities" {
		t.Errorf("reasoning: got %q", got.Explanation.Reasoning)
	}
	if !strings.Contains(got.Explanation.Details, "Decision: pause_scaling_during_investigation") {
		t.Errorf("details: got %q", got.Explanation.Details)
	}
}

func TestExplain_CoordinationGroupWithoutConflict(t *testing.T) {
	s := New()
	base := time.Now()
	scalingEv := types.AgentEvent{
		ID: "e1", Type: types.EventSystemScaling, SourceAgent: "ops-guardian",
		Timestamp: base, Severity: types.SeverityMedium, Audience: types.AudienceOperator,
		CorrelationID: "c1",
	}
	coord := types.AgentEvent{
		ID: "e2", Type: types.EventAgentCoordination, SourceAgent: "coordinator-agent",
		Timestamp: base.Add(time.Second), Severity: types.SeverityMedium,
		Audience: types.AudienceOperator, CorrelationID: "c1",
		Coordination: &types.CoordinationContext{CoordinationType: "fraud_response"},
	}

	got := s.Explain([]types.AgentEvent{scalingEv, coord}, coord)
	if got.Type != types.ExplanationCoordination {
		t.Fatalf("explanation_type: want coordination, got %s", got.Type)
	}
	if got.Explanation.Title != "Multi-Agent Coordination" {
		t.Errorf("title: got %q", got.Explanation.Title)
	}
	if got.Explanation.Confidence != 0.9 {
		t.Errorf("confidence: want 0.9, got %v", got.Explanation.Confidence)
	}
}

func TestExplain_MultiAgentTimeline(t *testing.T) {
	s := New()
	base := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	e1 := types.AgentEvent{
		ID: "e1", Type: types.EventFraudDetection, SourceAgent: "financial-guardian",
		Timestamp: base, Severity: types.SeverityHigh, Audience: types.AudienceOperator,
		CorrelationID: "c1",
	}
	e2 := types.AgentEvent{
		ID: "e2", Type: types.EventSystemScaling, SourceAgent: "ops-guardian",
		Timestamp: base.Add(42 * time.Second), Severity: types.SeverityMedium,
		Audience: types.AudienceOperator, CorrelationID: "c1",
	}

	// Deliberately out of order: the timeline must sort by timestamp.
	got := s.Explain([]types.AgentEvent{e2, e1}, e2)
	if got.Type != types.ExplanationMultiAgent {
		t.Fatalf("explanation_type: want multi_agent, got %s", got.Type)
	}
	wantDetails := "1. [14:30:00] financial-guardian: fraud_detection\n2. [14:30:42] ops-guardian: system_scaling"
	if got.Explanation.Details != wantDetails {
		t.Errorf("timeline:\nwant %q\ngot  %q", wantDetails, got.Explanation.Details)
	}
	if got.Explanation.Confidence != 0.85 {
		t.Errorf("confidence: want 0.85, got %v", got.Explanation.Confidence)
	}
}

func TestInvolvedAgents_Dedupes(t *testing.T) {
	group := []types.AgentEvent{
		{SourceAgent: "ops-guardian"},
		{SourceAgent: "financial-guardian"},
		{SourceAgent: "ops-guardian"},
	}
	got := InvolvedAgents(group)
	if len(got) != 2 || got[0] != "ops-guardian" || got[1] != "financial-guardian" {
		t.Errorf("InvolvedAgents: got %v", got)
	}
}
