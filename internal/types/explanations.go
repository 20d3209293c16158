package types

import "time"

// Explanation types.
const (
	ExplanationSingleAgent  = "single_agent"
	ExplanationMultiAgent   = "multi_agent"
	ExplanationCoordination = "coordination"
)

// ExplanationPayload carries the human-readable content of an explanation.
type ExplanationPayload struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Details    string   `json:"details"`
	Reasoning  string   `json:"reasoning"`
	Impact     string   `json:"impact,omitempty"`
	NextSteps  []string `json:"next_steps"`
	Confidence float64  `json:"confidence"`
}

// Explanation is the response generated for one event or one correlated
// group of events. Created fresh per request and never mutated; callers
// that want history must store it externally.
type Explanation struct {
	ID             string             `json:"explanation_id"`
	EventIDs       []string           `json:"event_ids"`
	CorrelationID  string             `json:"correlation_id,omitempty"`
	Audience       string             `json:"audience"`
	Type           string             `json:"explanation_type"`
	InvolvedAgents []string           `json:"involved_agents"`
	Explanation    ExplanationPayload `json:"explanation"`
	GeneratedAt    time.Time          `json:"generated_at"`
}
