package explain

import (
	"fmt"
	"strings"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

// fraudPayload branches on audience. A user-facing explanation never
// reveals the numeric fraud score or the red-flag list that an
// operator-facing one exposes; this field suppression is a privacy
// boundary, not formatting.
func fraudPayload(event types.AgentEvent) types.ExplanationPayload {
	confidence := 0.5
	if event.Fraud != nil {
		confidence = event.Fraud.FraudScore
	}

	if event.Audience == types.AudienceUser {
		return types.ExplanationPayload{
			Title:      "Security Alert",
			Summary:    "Transaction security check completed",
			Details:    "We reviewed your transaction for security and took appropriate action based on our analysis.",
			Reasoning:  "Our security systems protect your account from suspicious activity",
			NextSteps:  []string{"Check your account activity", "Contact support if you have questions"},
			Confidence: confidence,
		}
	}

	summary := "Fraud analysis completed with score unknown"
	if event.Fraud != nil {
		summary = fmt.Sprintf("Fraud analysis completed with score %.2f", event.Fraud.FraudScore)
	}
	return types.ExplanationPayload{
		Title:      "Fraud Detection Alert",
		Summary:    summary,
		Details:    fraudDetails(event.Fraud),
		Reasoning:  "AI-powered fraud detection based on transaction patterns",
		NextSteps:  []string{"Review fraud analysis", "Monitor user account"},
		Confidence: confidence,
	}
}

func fraudDetails(ctx *types.FraudContext) string {
	if ctx == nil {
		return "Fraud analysis completed"
	}
	var lines []string
	lines = append(lines, fmt.Sprintf("Fraud Score: %.2f", ctx.FraudScore))
	if ctx.RiskLevel != "" {
		lines = append(lines, fmt.Sprintf("Risk Level: %s", ctx.RiskLevel))
	}
	if ctx.ActionTaken != "" {
		lines = append(lines, fmt.Sprintf("Action: %s", ctx.ActionTaken))
	}
	if len(ctx.RedFlags) > 0 {
		lines = append(lines, fmt.Sprintf("Red Flags: %s", strings.Join(ctx.RedFlags, "; ")))
	}
	return joinLines(lines)
}

func scalingPayload(event types.AgentEvent) types.ExplanationPayload {
	ctx := event.Scaling

	service := "service"
	from, to := "?", "?"
	trigger := "system conditions"
	confidence := 0.8
	if ctx != nil {
		if ctx.ServiceName != "" {
			service = ctx.ServiceName
		}
		from = fmt.Sprintf("%d", ctx.FromReplicas)
		to = fmt.Sprintf("%d", ctx.ToReplicas)
		if ctx.Trigger != "" {
			trigger = ctx.Trigger
		}
		if ctx.PredictionConfidence > 0 {
			confidence = ctx.PredictionConfidence
		}
	}

	return types.ExplanationPayload{
		Title:      "System Scaling",
		Summary:    fmt.Sprintf("Scaled %s from %s to %s replicas", service, from, to),
		Details:    scalingDetails(ctx),
		Reasoning:  fmt.Sprintf("Triggered by %s", trigger),
		NextSteps:  []string{"Monitor scaling impact", "Review performance metrics"},
		Confidence: confidence,
	}
}

func scalingDetails(ctx *types.ScalingContext) string {
	if ctx == nil {
		return "System scaling completed"
	}
	var lines []string
	if ctx.Trigger != "" {
		lines = append(lines, fmt.Sprintf("Trigger: %s", ctx.Trigger))
	}
	if ctx.PredictionConfidence > 0 {
		lines = append(lines, fmt.Sprintf("Confidence: %.0f%%", ctx.PredictionConfidence*100))
	}
	if ctx.EstimatedDuration != "" {
		lines = append(lines, fmt.Sprintf("Duration: %s", ctx.EstimatedDuration))
	}
	if len(lines) == 0 {
		return "System scaling completed"
	}
	return joinLines(lines)
}

func coordinationPayload(event types.AgentEvent) types.ExplanationPayload {
	ctx := event.Coordination

	involved := 0
	details := "Coordination decision made"
	reasoning := "Multi-agent coordination required"
	if ctx != nil {
		involved = len(ctx.InvolvedAgents)
		if ctx.Decision != "" {
			details = ctx.Decision
		}
		if ctx.Reasoning != "" {
			reasoning = ctx.Reasoning
		}
	}

	return types.ExplanationPayload{
		Title:      "Agent Coordination",
		Summary:    fmt.Sprintf("Coordinated %d agents", involved),
		Details:    details,
		Reasoning:  reasoning,
		NextSteps:  []string{"Monitor coordination outcome"},
		Confidence: confidenceCoordination,
	}
}

// genericPayload is the fallback template for unknown event types. It is
// total over any validated event, so explanation failures never propagate
// past it.
func genericPayload(event types.AgentEvent) types.ExplanationPayload {
	return types.ExplanationPayload{
		Title:      "System Event",
		Summary:    fmt.Sprintf("%s generated %s event", event.SourceAgent, event.Type),
		Details:    fmt.Sprintf("Event processed with %s severity", event.Severity),
		Reasoning:  "Automated system response",
		NextSteps:  []string{"Review event details"},
		Confidence: 0.7,
	}
}

func coordinationDetails(coordEvent types.AgentEvent) string {
	ctx := coordEvent.Coordination
	if ctx == nil {
		return "Coordination decision made"
	}
	lines := []string{
		fmt.Sprintf("Conflict: %s", valueOr(ctx.CoordinationType, "Unknown conflict")),
		fmt.Sprintf("Decision: %s", valueOr(ctx.Decision, "Coordination decision made")),
	}
	if len(ctx.InvolvedAgents) > 0 {
		lines = append(lines, fmt.Sprintf("Affected Agents: %s", strings.Join(ctx.InvolvedAgents, ", ")))
	}
	if ctx.Reasoning != "" {
		lines = append(lines, fmt.Sprintf("Reasoning: %s", ctx.Reasoning))
	}
	return joinLines(lines)
}

func coordinationNextSteps(coordEvent types.AgentEvent) []string {
	if ctx := coordEvent.Coordination; ctx != nil && ctx.EstimatedDuration != "" {
		return []string{
			fmt.Sprintf("Monitor coordination for %s", ctx.EstimatedDuration),
			"Review outcome when complete",
		}
	}
	return []string{"Monitor coordination progress", "Review coordination outcome"}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
