// Package predictor provides the AI-assisted scaling verdict collaborator
// backed by the Anthropic Messages API.
package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

// Config for the Anthropic predictor.
type Config struct {
	APIKey    string
	Model     anthropic.Model
	MaxTokens int64
}

// Client wraps the Anthropic Messages API behind the scaling engine's
// Predict boundary: it returns a typed verdict or an error, never a
// partially parsed response.
type Client struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
	log       *logrus.Logger
}

// New creates an Anthropic-backed predictor.
func New(cfg Config, log *logrus.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = anthropic.ModelClaude3_5Sonnet20241022
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	var clientOpts []option.RequestOption
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Client{
		client:    &client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		log:       log,
	}
}

// verdict is the JSON shape the model is asked to produce.
type verdict struct {
	ShouldScale        bool    `json:"should_scale"`
	TargetReplicas     int     `json:"target_replicas"`
	Confidence         float64 `json:"confidence"`
	Reason             string  `json:"reason"`
	CoordinationNeeded bool    `json:"coordination_needed"`
	EstimatedImpact    string  `json:"estimated_impact"`
}

// Predict asks the model for a scaling verdict. Transport failures and
// malformed responses surface as errors; the engine falls back to its
// rule-based path on any of them.
func (c *Client) Predict(ctx context.Context, metrics types.ServiceMetrics, history []types.ServiceMetrics) (types.ScalingDecision, error) {
	prompt := buildPrompt(metrics, history)

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return types.ScalingDecision{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	v, err := parseVerdict(text.String())
	if err != nil {
		return types.ScalingDecision{}, err
	}

	target := metrics.CurrentReplicas
	if v.ShouldScale {
		target = v.TargetReplicas
	}
	reason := v.Reason
	if reason == "" {
		reason = "AI-based scaling decision"
	}
	impact := v.EstimatedImpact
	if impact == "" {
		impact = "Improved performance expected"
	}

	return types.ScalingDecision{
		ServiceName:        metrics.ServiceName,
		CurrentReplicas:    metrics.CurrentReplicas,
		TargetReplicas:     target,
		Reason:             reason,
		Confidence:         v.Confidence,
		CoordinationNeeded: v.CoordinationNeeded,
		EstimatedImpact:    impact,
		Timestamp:          time.Now().UTC(),
	}, nil
}

// parseVerdict extracts the JSON verdict from a model response, tolerating
// a markdown code fence around it.
func parseVerdict(text string) (verdict, error) {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	var v verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return verdict{}, fmt.Errorf("malformed model response: %w", err)
	}
	return v, nil
}

func buildPrompt(m types.ServiceMetrics, history []types.ServiceMetrics) string {
	now := time.Now()
	hour := now.Hour()
	businessHours := "off hours"
	if hour >= 9 && hour <= 17 {
		businessHours = "business hours"
	}
	day := "Weekday"
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		day = "Weekend"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert DevOps engineer analyzing whether to scale a banking service.\n\n")
	fmt.Fprintf(&b, "Service: %s\n", m.ServiceName)
	fmt.Fprintf(&b, "Current State:\n")
	fmt.Fprintf(&b, "- CPU Usage: %.1f%%\n", m.CPUUsage)
	fmt.Fprintf(&b, "- Memory Usage: %.1f%%\n", m.MemoryUsage)
	fmt.Fprintf(&b, "- Response Time: %.1fms\n", m.ResponseTimeAvg)
	fmt.Fprintf(&b, "- Request Rate: %.1f req/s\n", m.RequestRate)
	fmt.Fprintf(&b, "- Error Rate: %.1f%%\n", m.ErrorRate)
	fmt.Fprintf(&b, "- Current Replicas: %d\n\n", m.CurrentReplicas)
	fmt.Fprintf(&b, "Time Context:\n- Hour: %d:00 (%s)\n- Day: %s\n\n", hour, businessHours, day)
	if n := len(history); n > 0 {
		fmt.Fprintf(&b, "Recent History (most recent last):\n")
		start := 0
		if n > 5 {
			start = n - 5
		}
		for _, h := range history[start:] {
			fmt.Fprintf(&b, "- [%s] CPU %.1f%%, Memory %.1f%%, Errors %.1f%%\n",
				h.Timestamp.Format("15:04:05"), h.CPUUsage, h.MemoryUsage, h.ErrorRate)
		}
		b.WriteString("\n")
	}
	b.WriteString("Banking Context:\n")
	b.WriteString("- High availability is critical for financial services\n")
	b.WriteString("- Scale up early to prevent customer impact\n")
	b.WriteString("- Consider typical banking traffic patterns (lunch rush, end-of-month, paydays)\n")
	b.WriteString("- Error rates above 1% are concerning for banking\n\n")
	b.WriteString("Decide if scaling is needed and respond with JSON only:\n")
	b.WriteString(`{"should_scale": true|false, "target_replicas": number, "confidence": 0.0-1.0, "reason": "brief explanation", "coordination_needed": true|false, "estimated_impact": "description of expected outcome"}`)
	return b.String()
}
