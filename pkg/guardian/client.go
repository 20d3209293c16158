// Package guardian provides the HTTP client for the financial-guardian
// agent, used to check active fraud investigations before scaling.
package guardian

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Config for the financial-guardian client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the financial-guardian fraud API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewClient creates a financial-guardian client.
func NewClient(cfg Config, log *logrus.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

type fraudAlert struct {
	ID       string `json:"alert_id"`
	Priority string `json:"priority"`
}

type fraudAlertsResponse struct {
	Alerts []fraudAlert `json:"alerts"`
}

// CountActiveInvestigations returns the number of high-priority fraud
// alerts currently open with the financial guardian.
func (c *Client) CountActiveInvestigations(ctx context.Context) (int, error) {
	if c.baseURL == "" {
		return 0, fmt.Errorf("financial guardian client not configured")
	}

	url := fmt.Sprintf("%s/fraud/alerts", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to check fraud investigations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body fraudAlertsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode fraud alerts: %w", err)
	}

	count := 0
	for _, alert := range body.Alerts {
		if alert.Priority == "high" {
			count++
		}
	}

	c.log.WithFields(logrus.Fields{
		"alerts": len(body.Alerts),
		"active": count,
	}).Debug("Checked fraud investigations")
	return count, nil
}

// HealthCheck checks if the financial guardian is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.baseURL == "" {
		return fmt.Errorf("financial guardian client not configured")
	}

	url := fmt.Sprintf("%s/healthy", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to check health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}
