package types

import "time"

// ServiceMetrics is a point-in-time metrics snapshot for one monitored
// Bank of Anthos service.
type ServiceMetrics struct {
	ServiceName     string    `json:"service_name"`
	CPUUsage        float64   `json:"cpu_usage"`
	MemoryUsage     float64   `json:"memory_usage"`
	CurrentReplicas int       `json:"current_replicas"`
	DesiredReplicas int       `json:"desired_replicas"`
	ResponseTimeAvg float64   `json:"response_time_avg"`
	RequestRate     float64   `json:"request_rate"`
	ErrorRate       float64   `json:"error_rate"`
	Timestamp       time.Time `json:"timestamp"`
}

// ScalingDecision is the engine's verdict for one service and one cycle.
type ScalingDecision struct {
	ServiceName        string    `json:"service_name"`
	CurrentReplicas    int       `json:"current_replicas"`
	TargetReplicas     int       `json:"target_replicas"`
	Reason             string    `json:"reason"`
	Confidence         float64   `json:"confidence"`
	CoordinationNeeded bool      `json:"coordination_needed"`
	EstimatedImpact    string    `json:"estimated_impact"`
	Timestamp          time.Time `json:"timestamp"`
}
