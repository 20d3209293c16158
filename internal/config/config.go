// Package config provides configuration loading from environment and
// defaults for the guardian service, plus the scaling thresholds file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the value of key from the environment, or defaultValue if unset or empty.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return defaultValue
}

// GetEnvDuration returns the duration for key, or defaultValue if unset/invalid.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

// GetEnvBool returns the boolean for key, or defaultValue if unset/invalid.
func GetEnvBool(key string, defaultValue bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return defaultValue
	}
	return b
}

// GuardianConfig holds configuration for the guardian service.
type GuardianConfig struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	CorrelationWindow time.Duration

	MonitorInterval    time.Duration
	MonitoredServices  []string
	Namespace          string
	DisableAutoScaling bool

	AnthropicAPIKey string
	AnthropicModel  string
	PredictTimeout  time.Duration

	FinancialGuardianURL     string
	FinancialGuardianTimeout time.Duration

	ClusterAPIURL    string
	ClusterTokenFile string
	ClusterCAFile    string
	ClusterTimeout   time.Duration

	ThresholdsFile string
}

// DefaultGuardianConfig returns guardian config from environment with defaults.
func DefaultGuardianConfig() GuardianConfig {
	return GuardianConfig{
		HTTPAddr:        GetEnv("HTTP_ADDR", ":8082"),
		ShutdownTimeout: GetEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		CorrelationWindow: GetEnvDuration("CORRELATION_WINDOW", 300*time.Second),

		MonitorInterval:    GetEnvDuration("MONITOR_INTERVAL", 30*time.Second),
		MonitoredServices:  monitoredServices(),
		Namespace:          GetEnv("MONITOR_NAMESPACE", "default"),
		DisableAutoScaling: GetEnvBool("DISABLE_AUTO_SCALING", true),

		AnthropicAPIKey: GetEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  GetEnv("ANTHROPIC_MODEL", ""),
		PredictTimeout:  GetEnvDuration("PREDICT_TIMEOUT", 10*time.Second),

		FinancialGuardianURL:     GetEnv("FINANCIAL_GUARDIAN_URL", "http://financial-guardian:8081"),
		FinancialGuardianTimeout: GetEnvDuration("FINANCIAL_GUARDIAN_TIMEOUT", 5*time.Second),

		ClusterAPIURL:    GetEnv("CLUSTER_API_URL", "https://kubernetes.default.svc"),
		ClusterTokenFile: GetEnv("CLUSTER_TOKEN_FILE", "/var/run/secrets/kubernetes.io/serviceaccount/token"),
		ClusterCAFile:    GetEnv("CLUSTER_CA_FILE", "/var/run/secrets/kubernetes.io/serviceaccount/ca.crt"),
		ClusterTimeout:   GetEnvDuration("CLUSTER_TIMEOUT", 10*time.Second),

		ThresholdsFile: GetEnv("SCALING_THRESHOLDS_FILE", ""),
	}
}

func monitoredServices() []string {
	raw := GetEnv("MONITORED_SERVICES",
		"frontend,balancereader,ledgerwriter,transactionhistory,userservice,contacts")
	parts := strings.Split(raw, ",")
	services := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			services = append(services, s)
		}
	}
	return services
}
