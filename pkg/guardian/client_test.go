package guardian

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestCountActiveInvestigations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fraud/alerts" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"alerts":[
			{"alert_id":"a1","priority":"high"},
			{"alert_id":"a2","priority":"low"},
			{"alert_id":"a3","priority":"high"},
			{"alert_id":"a4","priority":"medium"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, quietLog())
	got, err := c.CountActiveInvestigations(context.Background())
	if err != nil {
		t.Fatalf("CountActiveInvestigations: %v", err)
	}
	if got != 2 {
		t.Errorf("want 2 high-priority alerts, got %d", got)
	}
}

func TestCountActiveInvestigations_NoAlerts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"alerts":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, quietLog())
	got, err := c.CountActiveInvestigations(context.Background())
	if err != nil {
		t.Fatalf("CountActiveInvestigations: %v", err)
	}
	if got != 0 {
		t.Errorf("want 0, got %d", got)
	}
}

func TestCountActiveInvestigations_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, quietLog())
	if _, err := c.CountActiveInvestigations(context.Background()); err == nil {
		t.Fatal("want error on 500 response")
	}
}

func TestCountActiveInvestigations_Unconfigured(t *testing.T) {
	c := NewClient(Config{}, quietLog())
	if _, err := c.CountActiveInvestigations(context.Background()); err == nil {
		t.Fatal("want error when base URL is unset")
	}
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthy" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, quietLog())
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}

	bad := NewClient(Config{BaseURL: srv.URL + "/missing"}, quietLog())
	if err := bad.HealthCheck(context.Background()); err == nil {
		t.Error("want error for non-200 health response")
	}
}
