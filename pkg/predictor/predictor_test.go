package predictor

import (
	"strings"
	"testing"
	"time"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

func TestParseVerdict_PlainJSON(t *testing.T) {
	got, err := parseVerdict(`{"should_scale": true, "target_replicas": 4, "confidence": 0.9, "reason": "rising load", "coordination_needed": false, "estimated_impact": "reduced latency"}`)
	if err != nil {
		t.Fatalf("parseVerdict: %v", err)
	}
	if !got.ShouldScale || got.TargetReplicas != 4 {
		t.Errorf("verdict: got %+v", got)
	}
	if got.Confidence != 0.9 || got.Reason != "rising load" {
		t.Errorf("verdict: got %+v", got)
	}
}

func TestParseVerdict_CodeFence(t *testing.T) {
	text := "Here is my analysis.\n```json\n{\"should_scale\": false, \"target_replicas\": 2, \"confidence\": 0.7}\n```\nLet me know if you need more."
	got, err := parseVerdict(text)
	if err != nil {
		t.Fatalf("parseVerdict: %v", err)
	}
	if got.ShouldScale {
		t.Error("should_scale: want false")
	}
	if got.TargetReplicas != 2 {
		t.Errorf("target_replicas: want 2, got %d", got.TargetReplicas)
	}
}

func TestParseVerdict_Malformed(t *testing.T) {
	for _, text := range []string{
		"I cannot decide without more data.",
		"```json\nnot json at all\n```",
		"",
	} {
		if _, err := parseVerdict(text); err == nil {
			t.Errorf("parseVerdict(%q): want error", text)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	m := types.ServiceMetrics{
		ServiceName:     "frontend",
		CPUUsage:        82.5,
		MemoryUsage:     60,
		ResponseTimeAvg: 340,
		RequestRate:     120,
		ErrorRate:       1.2,
		CurrentReplicas: 2,
	}
	history := make([]types.ServiceMetrics, 8)
	for i := range history {
		history[i] = types.ServiceMetrics{
			ServiceName: "frontend",
			CPUUsage:    float64(40 + i),
			Timestamp:   time.Date(2025, 6, 4, 14, i, 0, 0, time.UTC),
		}
	}

	prompt := buildPrompt(m, history)
	if !strings.Contains(prompt, "Service: frontend") {
		t.Error("prompt missing service name")
	}
	if !strings.Contains(prompt, "CPU Usage: 82.5%") {
		t.Error("prompt missing cpu usage")
	}
	if !strings.Contains(prompt, `"should_scale"`) {
		t.Error("prompt missing JSON response instruction")
	}
	// History is truncated to the most recent five entries.
	if strings.Contains(prompt, "CPU 40.0%") {
		t.Error("prompt should drop history older than the last five samples")
	}
	if !strings.Contains(prompt, "CPU 47.0%") {
		t.Error("prompt missing the most recent history sample")
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{APIKey: "test-key"}, nil)
	if c.model == "" {
		t.Error("model should default when unset")
	}
	if c.maxTokens != 1024 {
		t.Errorf("maxTokens: want 1024, got %d", c.maxTokens)
	}
}
