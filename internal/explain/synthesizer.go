// Package explain synthesizes human-readable explanations for single
// agent events and correlated multi-agent incidents.
package explain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

// Confidence assigned per group scenario.
const (
	confidencePriorityConflict = 0.95
	confidenceCoordination     = 0.9
	confidenceMultiAgent       = 0.85
)

// Synthesizer maps events to explanations. Synthesis is a total function
// over any validated event: every missing optional context field has a
// named default, so it never fails.
type Synthesizer struct{}

// New creates a synthesizer.
func New() *Synthesizer {
	return &Synthesizer{}
}

// Explain produces an explanation for a correlation group. A group of one
// is explained exactly like an uncorrelated single event. The triggering
// event supplies the audience and correlation id of the response.
func (s *Synthesizer) Explain(group []types.AgentEvent, trigger types.AgentEvent) types.Explanation {
	if len(group) <= 1 {
		return s.explainSingle(trigger)
	}
	return s.explainGroup(group, trigger)
}

func (s *Synthesizer) explainSingle(event types.AgentEvent) types.Explanation {
	var payload types.ExplanationPayload
	switch event.Type {
	case types.EventFraudDetection:
		payload = fraudPayload(event)
	case types.EventSystemScaling:
		payload = scalingPayload(event)
	case types.EventAgentCoordination:
		payload = coordinationPayload(event)
	default:
		payload = genericPayload(event)
	}
	return types.Explanation{
		ID:             uuid.NewString(),
		EventIDs:       []string{event.ID},
		CorrelationID:  event.CorrelationID,
		Audience:       event.Audience,
		Type:           types.ExplanationSingleAgent,
		InvolvedAgents: []string{event.SourceAgent},
		Explanation:    payload,
		GeneratedAt:    time.Now().UTC(),
	}
}

func (s *Synthesizer) explainGroup(group []types.AgentEvent, trigger types.AgentEvent) types.Explanation {
	explanationType := types.ExplanationMultiAgent
	var coordEvent *types.AgentEvent
	for i := range group {
		if group[i].Type == types.EventAgentCoordination {
			explanationType = types.ExplanationCoordination
			if coordEvent == nil {
				coordEvent = &group[i]
			}
		}
	}

	var payload types.ExplanationPayload
	if explanationType == types.ExplanationCoordination {
		payload = coordinationGroupPayload(*coordEvent, group)
	} else {
		payload = multiAgentPayload(group)
	}

	eventIDs := make([]string, len(group))
	for i, e := range group {
		eventIDs[i] = e.ID
	}
	return types.Explanation{
		ID:             uuid.NewString(),
		EventIDs:       eventIDs,
		CorrelationID:  trigger.CorrelationID,
		Audience:       trigger.Audience,
		Type:           explanationType,
		InvolvedAgents: InvolvedAgents(group),
		Explanation:    payload,
		GeneratedAt:    time.Now().UTC(),
	}
}

func coordinationGroupPayload(coordEvent types.AgentEvent, group []types.AgentEvent) types.ExplanationPayload {
	others := 0
	for _, e := range group {
		if e.Type != types.EventAgentCoordination {
			others++
		}
	}

	ctx := coordEvent.Coordination
	if ctx != nil && ctx.CoordinationType == types.CoordinationPriorityConflict {
		reasoning := ctx.Reasoning
		if reasoning == "" {
			reasoning = "Coordinator decision based on system priorities"
		}
		return types.ExplanationPayload{
			Title:      "Agent Priority Resolution",
			Summary:    fmt.Sprintf("Resolved conflict between %d agents", others),
			Details:    coordinationDetails(coordEvent),
			Reasoning:  reasoning,
			Impact:     fmt.Sprintf("Coordinated response involving %d agents", others),
			NextSteps:  coordinationNextSteps(coordEvent),
			Confidence: confidencePriorityConflict,
		}
	}
	return types.ExplanationPayload{
		Title:      "Multi-Agent Coordination",
		Summary:    fmt.Sprintf("Coordinated action involving %d agents", len(group)),
		Details:    timeline(group),
		Reasoning:  "Multi-agent coordination for optimal system response",
		Impact:     fmt.Sprintf("Multi-agent response with %d coordinated actions", len(group)),
		NextSteps:  []string{"Monitor coordinated response progress"},
		Confidence: confidenceCoordination,
	}
}

func multiAgentPayload(group []types.AgentEvent) types.ExplanationPayload {
	return types.ExplanationPayload{
		Title:      "Multi-Agent Response",
		Summary:    fmt.Sprintf("Coordinated response from %d agents", len(InvolvedAgents(group))),
		Details:    timeline(group),
		Reasoning:  "Multiple agents responded to related system conditions",
		Impact:     fmt.Sprintf("Multi-agent response with %d coordinated actions", len(group)),
		NextSteps:  []string{"Monitor multi-agent response progress"},
		Confidence: confidenceMultiAgent,
	}
}

// timeline builds a chronological one-line-per-event narrative.
func timeline(group []types.AgentEvent) string {
	sorted := make([]types.AgentEvent, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	lines := make([]string, len(sorted))
	for i, e := range sorted {
		lines[i] = fmt.Sprintf("%d. [%s] %s: %s", i+1, e.Timestamp.Format("15:04:05"), e.SourceAgent, e.Type)
	}
	return joinLines(lines)
}

// InvolvedAgents returns the deduplicated source agents of a group in
// first-seen order.
func InvolvedAgents(group []types.AgentEvent) []string {
	seen := make(map[string]bool, len(group))
	var agents []string
	for _, e := range group {
		if !seen[e.SourceAgent] {
			seen[e.SourceAgent] = true
			agents = append(agents, e.SourceAgent)
		}
	}
	return agents
}
