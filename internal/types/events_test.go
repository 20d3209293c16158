package types

import "testing"

func TestAgentEvent_Validate(t *testing.T) {
	valid := AgentEvent{
		Type:        EventFraudDetection,
		SourceAgent: "financial-guardian",
		Severity:    SeverityHigh,
		Audience:    AudienceOperator,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid event rejected: %v", err)
	}

	tests := []struct {
		name  string
		event AgentEvent
	}{
		{"missing type", AgentEvent{SourceAgent: "a", Severity: SeverityLow, Audience: AudienceUser}},
		{"missing source", AgentEvent{Type: EventSystemScaling, Severity: SeverityLow, Audience: AudienceUser}},
		{"bad severity", AgentEvent{Type: EventSystemScaling, SourceAgent: "a", Severity: "urgent", Audience: AudienceUser}},
		{"bad audience", AgentEvent{Type: EventSystemScaling, SourceAgent: "a", Severity: SeverityLow, Audience: "everyone"}},
	}
	for _, tt := range tests {
		if err := tt.event.Validate(); err == nil {
			t.Errorf("%s: want validation error", tt.name)
		}
	}
}
