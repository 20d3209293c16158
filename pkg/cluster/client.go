// Package cluster reads replica counts from the Kubernetes API server and
// applies scale changes to monitored deployments.
package cluster

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	appsv1 "k8s.io/api/apps/v1"
	k8stypes "k8s.io/apimachinery/pkg/types"

	"github.com/futureaiitofficial/anthos-guardian-agent/internal/types"
)

// Config for the cluster client. Defaults suit in-cluster use with a
// mounted service account.
type Config struct {
	APIURL    string
	TokenFile string
	CAFile    string
	Namespace string
	Timeout   time.Duration
}

// Client talks to the Kubernetes apiserver over its REST API.
type Client struct {
	apiURL     string
	token      string
	namespace  string
	httpClient *http.Client
	log        *logrus.Logger
}

// New creates a cluster client. A missing token or CA file is tolerated so
// the client also works against unauthenticated local API proxies.
func New(cfg Config, log *logrus.Logger) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "default"
	}

	var token string
	if cfg.TokenFile != "" {
		if data, err := os.ReadFile(cfg.TokenFile); err == nil {
			token = string(bytes.TrimSpace(data))
		} else {
			log.WithError(err).Debug("No service account token available")
		}
	}

	transport := http.DefaultTransport
	if cfg.CAFile != "" {
		if pem, err := os.ReadFile(cfg.CAFile); err == nil {
			pool := x509.NewCertPool()
			if pool.AppendCertsFromPEM(pem) {
				transport = &http.Transport{TLSClientConfig: &tls.Config{RootCAs: pool}}
			}
		} else {
			log.WithError(err).Debug("No cluster CA certificate available")
		}
	}

	return &Client{
		apiURL:    cfg.APIURL,
		token:     token,
		namespace: cfg.Namespace,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		log: log,
	}, nil
}

// Deployment fetches one deployment in the configured namespace.
func (c *Client) Deployment(ctx context.Context, name string) (*appsv1.Deployment, error) {
	url := fmt.Sprintf("%s/apis/apps/v1/namespaces/%s/deployments/%s", c.apiURL, c.namespace, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deployment %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for deployment %s", resp.StatusCode, name)
	}

	var deployment appsv1.Deployment
	if err := json.NewDecoder(resp.Body).Decode(&deployment); err != nil {
		return nil, fmt.Errorf("failed to decode deployment %s: %w", name, err)
	}
	return &deployment, nil
}

// ApplyReplicaCount patches a deployment's replica count with a strategic
// merge patch, mirroring a kubectl scale.
func (c *Client) ApplyReplicaCount(ctx context.Context, service string, replicas int) error {
	url := fmt.Sprintf("%s/apis/apps/v1/namespaces/%s/deployments/%s", c.apiURL, c.namespace, service)
	patch := fmt.Sprintf(`{"spec":{"replicas":%d}}`, replicas)

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewBufferString(patch))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", string(k8stypes.StrategicMergePatchType))
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to scale %s: %w", service, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code %d scaling %s", resp.StatusCode, service)
	}

	c.log.WithFields(logrus.Fields{
		"service":  service,
		"replicas": replicas,
	}).Info("Scaled deployment")
	return nil
}

// CollectMetrics builds a metrics snapshot for a service. Replica counts
// come from the deployment; utilization figures are derived
// deterministically from the service name and wall clock until a
// metrics-server integration replaces them.
// TODO: read pod utilization from the metrics.k8s.io API when available.
func (c *Client) CollectMetrics(ctx context.Context, service string) (types.ServiceMetrics, error) {
	deployment, err := c.Deployment(ctx, service)
	if err != nil {
		return types.ServiceMetrics{}, err
	}

	current := int(deployment.Status.ReadyReplicas)
	desired := 1
	if deployment.Spec.Replicas != nil {
		desired = int(*deployment.Spec.Replicas)
	}

	now := time.Now()
	cpu := simulate(service, now.Unix()/60, 80, 10, 85)
	memory := simulate(service, now.Unix()/30, 75, 15, 90)
	responseTime := 100 + float64(hashOf(service)%50) + (cpu-50)*2
	requestRate := 50 + float64(hashOf(fmt.Sprintf("%s%d", service, now.Unix()/120))%100)
	if requestRate < 10 {
		requestRate = 10
	}
	errorRate := 0.0
	if cpu > 70 {
		errorRate = (cpu - 70) * 0.5
		if errorRate > 5 {
			errorRate = 5
		}
	}

	return types.ServiceMetrics{
		ServiceName:     service,
		CPUUsage:        cpu,
		MemoryUsage:     memory,
		CurrentReplicas: current,
		DesiredReplicas: desired,
		ResponseTimeAvg: responseTime,
		RequestRate:     requestRate,
		ErrorRate:       errorRate,
		Timestamp:       now.UTC(),
	}, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
}

func simulate(service string, bucket int64, span, floor, ceil float64) float64 {
	v := float64(hashOf(fmt.Sprintf("%s%d", service, bucket))%uint32(span)) + floor
	if v > ceil {
		return ceil
	}
	return v
}

func hashOf(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
