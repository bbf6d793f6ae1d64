package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/version"
	fakediscovery "k8s.io/client-go/discovery/fake"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/rest"
	k8stesting "k8s.io/client-go/testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func node(name string) *corev1.Node {
	return &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: name}}
}

// newFakeClient returns a client backed by a fake clientset reporting v1.28.0
func newFakeClient(name string, objects ...runtime.Object) *Client {
	fakeClient := fake.NewSimpleClientset(objects...)
	fakeClient.Discovery().(*fakediscovery.FakeDiscovery).FakedServerVersion = &version.Info{
		Major:      "1",
		Minor:      "28",
		GitVersion: "v1.28.0",
	}

	return &Client{
		Name:       name,
		Context:    name,
		Clientset:  fakeClient,
		RestConfig: &rest.Config{Host: "https://localhost:6443"},
	}
}

func failVersion(c *Client) {
	c.Clientset.(*fake.Clientset).Discovery().(*fakediscovery.FakeDiscovery).PrependReactor("get", "version",
		func(action k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, fmt.Errorf("connection refused")
		})
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name       string
		restConfig *rest.Config
		wantErr    bool
	}{
		{"valid config", &rest.Config{Host: "https://localhost:6443"}, false},
		{"nil rest config", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient("test-cluster", "test-context", tt.restConfig, testLogger())

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.Name != "test-cluster" || client.Context != "test-context" {
				t.Errorf("unexpected client %v", client)
			}
			if client.IsHealthy() {
				t.Error("expected client to be unhealthy before a probe")
			}
		})
	}
}

func TestClient_Probe(t *testing.T) {
	client := newFakeClient("prod", node("n1"), node("n2"), node("n3"))

	status := client.Probe(context.Background())

	if status.Error != nil {
		t.Fatalf("unexpected error: %v", status.Error)
	}
	if !status.Healthy || !client.IsHealthy() {
		t.Error("expected healthy status")
	}
	if status.Nodes != 3 {
		t.Errorf("expected 3 nodes, got %d", status.Nodes)
	}
	if !strings.Contains(status.ServerVersion, "v1.28.0") {
		t.Errorf("unexpected version %q", status.ServerVersion)
	}
	if status.Message != "" {
		t.Errorf("expected no message, got %q", status.Message)
	}
}

func TestClient_ProbeVersionFailure(t *testing.T) {
	client := newFakeClient("prod", node("n1"))
	failVersion(client)

	status := client.Probe(context.Background())

	if status.Healthy || client.IsHealthy() {
		t.Error("expected unhealthy status")
	}
	if !strings.Contains(status.Message, "connection refused") {
		t.Errorf("expected error message, got %q", status.Message)
	}
}

func TestClient_ProbeNodeListFailure(t *testing.T) {
	client := newFakeClient("prod")
	client.Clientset.(*fake.Clientset).PrependReactor("list", "nodes",
		func(action k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, fmt.Errorf("forbidden")
		})

	status := client.Probe(context.Background())

	if status.Healthy {
		t.Error("expected unhealthy status")
	}
	if !strings.Contains(status.Message, "failed to list nodes") {
		t.Errorf("unexpected message %q", status.Message)
	}
}

func TestClient_ProbeCancelled(t *testing.T) {
	client := newFakeClient("prod")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status := client.Probe(ctx)

	if status.Healthy {
		t.Error("expected unhealthy status for cancelled context")
	}
	if status.Error == nil {
		t.Error("expected an error")
	}
}

func TestClient_String(t *testing.T) {
	client := newFakeClient("prod")
	str := client.String()

	for _, want := range []string{"prod", "false"} {
		if !strings.Contains(str, want) {
			t.Errorf("expected %q in %q", want, str)
		}
	}
}
