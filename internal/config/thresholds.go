package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScalingThresholds are the rule-based scaling boundaries. The defaults
// are the contract for the deterministic fallback path; the file override
// exists for operator tuning.
type ScalingThresholds struct {
	CPUScaleUp          float64 `yaml:"cpu_scale_up"`
	MemoryScaleUp       float64 `yaml:"memory_scale_up"`
	ResponseTimeScaleUp float64 `yaml:"response_time_scale_up"`
	ErrorRateScaleUp    float64 `yaml:"error_rate_scale_up"`

	ErrorRateCoordination float64 `yaml:"error_rate_coordination"`

	CPUScaleDown          float64 `yaml:"cpu_scale_down"`
	MemoryScaleDown       float64 `yaml:"memory_scale_down"`
	ResponseTimeScaleDown float64 `yaml:"response_time_scale_down"`
	ErrorRateScaleDown    float64 `yaml:"error_rate_scale_down"`

	MinReplicas int `yaml:"min_replicas"`
	MaxReplicas int `yaml:"max_replicas"`
}

// DefaultThresholds returns the contractual rule boundaries.
func DefaultThresholds() ScalingThresholds {
	return ScalingThresholds{
		CPUScaleUp:          75,
		MemoryScaleUp:       80,
		ResponseTimeScaleUp: 500,
		ErrorRateScaleUp:    1.0,

		ErrorRateCoordination: 2.0,

		CPUScaleDown:          30,
		MemoryScaleDown:       40,
		ResponseTimeScaleDown: 200,
		ErrorRateScaleDown:    0.1,

		MinReplicas: 1,
		MaxReplicas: 10,
	}
}

// LoadThresholds reads a thresholds YAML file. Fields left unset in the
// file keep their defaults.
func LoadThresholds(path string) (ScalingThresholds, error) {
	t := DefaultThresholds()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	return t, nil
}
