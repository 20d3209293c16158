package correlation

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

// EventNotifier feeds scaling-engine notifications back into the
// correlation pipeline as ops-guardian events. Notification is
// fire-and-forget: errors are logged, never retried, never propagated.
type EventNotifier struct {
	svc *Service
	log *logrus.Logger
}

// NewEventNotifier creates a notifier that submits into the given service.
func NewEventNotifier(svc *Service, log *logrus.Logger) *EventNotifier {
	return &EventNotifier{svc: svc, log: log}
}

// Notify converts an engine notification into an agent event and submits
// it. Scaling executions become system_scaling events; pause, resume, and
// defer notifications become agent_coordination events.
func (n *EventNotifier) Notify(ctx context.Context, event types.AgentEvent) {
	event.SourceAgent = "ops-guardian"
	if event.Severity == "" {
		event.Severity = types.SeverityMedium
	}
	if event.Audience == "" {
		event.Audience = types.AudienceOperator
	}
	if _, err := n.svc.Submit(ctx, event); err != nil {
		n.log.WithError(err).WithField("event_type", event.Type).Debug("Could not notify explainer pipeline")
	}
}
