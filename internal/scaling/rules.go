package scaling

import (
	"fmt"
	"time"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/config"
	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

// ruleBasedDecision is the deterministic fallback when the AI path is
// unavailable. It must stay reproducible from the configured thresholds
// alone, independent of any AI availability.
func ruleBasedDecision(m types.ServiceMetrics, t config.ScalingThresholds, now time.Time) types.ScalingDecision {
	shouldScaleUp := m.CPUUsage > t.CPUScaleUp ||
		m.MemoryUsage > t.MemoryScaleUp ||
		m.ResponseTimeAvg > t.ResponseTimeScaleUp ||
		m.ErrorRate > t.ErrorRateScaleUp

	shouldScaleDown := m.CPUUsage < t.CPUScaleDown &&
		m.MemoryUsage < t.MemoryScaleDown &&
		m.ResponseTimeAvg < t.ResponseTimeScaleDown &&
		m.ErrorRate < t.ErrorRateScaleDown &&
		m.CurrentReplicas > t.MinReplicas

	target := m.CurrentReplicas
	reason := "Metrics within acceptable ranges"
	coordinationNeeded := false

	switch {
	case shouldScaleUp:
		target = min(t.MaxReplicas, m.CurrentReplicas+1)
		reason = fmt.Sprintf("High resource usage detected (CPU: %.1f%%, Memory: %.1f%%)", m.CPUUsage, m.MemoryUsage)
		// Coordinate with the fraud domain when errors are already elevated.
		coordinationNeeded = m.ErrorRate > t.ErrorRateCoordination
	case shouldScaleDown && !isBusinessHours(now):
		target = max(t.MinReplicas, m.CurrentReplicas-1)
		reason = fmt.Sprintf("Low resource usage during off-hours (CPU: %.1f%%)", m.CPUUsage)
	}

	impact := "Expected to optimize performance"
	if target > m.CurrentReplicas {
		impact = "Expected to improve performance"
	}

	return types.ScalingDecision{
		ServiceName:        m.ServiceName,
		CurrentReplicas:    m.CurrentReplicas,
		TargetReplicas:     target,
		Reason:             reason,
		Confidence:         0.8,
		CoordinationNeeded: coordinationNeeded,
		EstimatedImpact:    impact,
		Timestamp:          time.Now().UTC(),
	}
}

// isBusinessHours reports whether now falls in 09:00-17:59 Monday-Friday.
// Scale-downs are suppressed during business hours.
func isBusinessHours(now time.Time) bool {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour := now.Hour()
	return hour >= 9 && hour <= 17
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
