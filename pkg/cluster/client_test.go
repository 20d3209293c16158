package cluster

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func int32ptr(v int32) *int32 { return &v }

func fakeAPIServer(t *testing.T, patches chan<- string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apis/apps/v1/namespaces/default/deployments/frontend" {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			d := appsv1.Deployment{
				ObjectMeta: metav1.ObjectMeta{Name: "frontend", Namespace: "default"},
				Spec:       appsv1.DeploymentSpec{Replicas: int32ptr(3)},
				Status:     appsv1.DeploymentStatus{ReadyReplicas: 2},
			}
			json.NewEncoder(w).Encode(d)
		case http.MethodPatch:
			if ct := r.Header.Get("Content-Type"); ct != "application/strategic-merge-patch+json" {
				t.Errorf("Content-Type: got %q", ct)
			}
			body, _ := io.ReadAll(r.Body)
			if patches != nil {
				patches <- string(body)
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))
}

func TestDeployment(t *testing.T) {
	srv := fakeAPIServer(t, nil)
	defer srv.Close()

	c, err := New(Config{APIURL: srv.URL}, quietLog())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d, err := c.Deployment(context.Background(), "frontend")
	if err != nil {
		t.Fatalf("Deployment: %v", err)
	}
	if d.Name != "frontend" {
		t.Errorf("name: got %q", d.Name)
	}
	if d.Spec.Replicas == nil || *d.Spec.Replicas != 3 {
		t.Errorf("spec replicas: got %v", d.Spec.Replicas)
	}
	if d.Status.ReadyReplicas != 2 {
		t.Errorf("ready replicas: got %d", d.Status.ReadyReplicas)
	}
}

func TestDeployment_NotFound(t *testing.T) {
	srv := fakeAPIServer(t, nil)
	defer srv.Close()

	c, err := New(Config{APIURL: srv.URL}, quietLog())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Deployment(context.Background(), "missing"); err == nil {
		t.Fatal("want error for unknown deployment")
	}
}

func TestApplyReplicaCount(t *testing.T) {
	patches := make(chan string, 1)
	srv := fakeAPIServer(t, patches)
	defer srv.Close()

	c, err := New(Config{APIURL: srv.URL}, quietLog())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.ApplyReplicaCount(context.Background(), "frontend", 5); err != nil {
		t.Fatalf("ApplyReplicaCount: %v", err)
	}
	if got := <-patches; got != `{"spec":{"replicas":5}}` {
		t.Errorf("patch body: got %s", got)
	}
}

func TestCollectMetrics(t *testing.T) {
	srv := fakeAPIServer(t, nil)
	defer srv.Close()

	c, err := New(Config{APIURL: srv.URL}, quietLog())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m, err := c.CollectMetrics(context.Background(), "frontend")
	if err != nil {
		t.Fatalf("CollectMetrics: %v", err)
	}
	if m.ServiceName != "frontend" {
		t.Errorf("service name: got %q", m.ServiceName)
	}
	if m.CurrentReplicas != 2 {
		t.Errorf("current replicas: want 2 (ready), got %d", m.CurrentReplicas)
	}
	if m.DesiredReplicas != 3 {
		t.Errorf("desired replicas: want 3, got %d", m.DesiredReplicas)
	}
	if m.CPUUsage < 0 || m.CPUUsage > 100 {
		t.Errorf("cpu usage out of range: %v", m.CPUUsage)
	}
	if m.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestAuthorize_BearerToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenFile, []byte("secret-token\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(appsv1.Deployment{})
	}))
	defer srv.Close()

	c, err := New(Config{APIURL: srv.URL, TokenFile: tokenFile}, quietLog())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Deployment(context.Background(), "frontend"); err != nil {
		t.Fatalf("Deployment: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization: got %q", gotAuth)
	}
}
