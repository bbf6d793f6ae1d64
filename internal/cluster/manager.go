package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/aryankumar/fanout/internal/config"
	"github.com/aryankumar/fanout/internal/executor"
	"github.com/aryankumar/fanout/internal/util"
)

// Manager manages connections to multiple Kubernetes clusters
// Connecting and probing fan out over an executor, one task per cluster
type Manager struct {
	// clients is a map of cluster name to client
	clients map[string]*Client

	// mu protects clients and closed
	mu sync.RWMutex

	// loader builds REST configs from kubeconfig
	loader *config.KubeconfigLoader

	// exec runs per-cluster work
	exec *executor.Executor

	// logger for structured logging
	logger *slog.Logger

	// closed indicates if the manager has been closed
	closed bool
}

// NewManager creates a new cluster manager
// A nil exec uses the process-wide executor
func NewManager(loader *config.KubeconfigLoader, exec *executor.Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	if exec == nil {
		exec = executor.Default()
	}

	return &Manager{
		clients: make(map[string]*Client),
		loader:  loader,
		exec:    exec,
		logger:  logger,
	}
}

// connectTarget is one element of a Connect batch
type connectTarget struct {
	name   string
	client *Client
}

// Connect builds clients for the named contexts in parallel.
// Clusters that connect are kept even if others fail; failures are
// returned together.
func (m *Manager) Connect(ctx context.Context, clusterNames []string) error {
	if len(clusterNames) == 0 {
		return fmt.Errorf("no cluster names provided")
	}

	m.logger.Info("connecting to clusters",
		"count", len(clusterNames),
		"workers", m.exec.Capacity())

	targets := make([]connectTarget, len(clusterNames))
	for i, name := range clusterNames {
		targets[i] = connectTarget{name: name}
	}

	batch := executor.ForEach(m.exec, targets, func(t *connectTarget) error {
		if err := ctx.Err(); err != nil {
			return util.WrapClusterError(t.name, err)
		}

		m.logger.Debug("connecting to cluster", "cluster", t.name)

		restConfig, err := m.loader.BuildClientConfig(t.name)
		if err != nil {
			return util.WrapClusterError(t.name, fmt.Errorf("%w: %v", util.ErrConnectionFailed, err))
		}

		client, err := NewClient(t.name, t.name, restConfig, m.logger)
		if err != nil {
			return util.WrapClusterError(t.name, fmt.Errorf("%w: %v", util.ErrConnectionFailed, err))
		}

		t.client = client
		return nil
	})

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("manager is closed")
	}
	for _, t := range targets {
		if t.client != nil {
			m.clients[t.name] = t.client
		}
	}
	m.mu.Unlock()

	failed := executor.CountFailed(batch.Outcomes)
	if failed > 0 {
		m.logger.Warn("some cluster connections failed",
			"total", len(clusterNames),
			"failed", failed,
			"succeeded", len(clusterNames)-failed)

		if err := batch.Err(); err != nil {
			return fmt.Errorf("failed to connect to %d/%d clusters: %w", failed, len(clusterNames), err)
		}
		return fmt.Errorf("failed to connect to %d/%d clusters: %w", failed, len(clusterNames), util.ErrPoolShutdown)
	}

	m.logger.Info("successfully connected to all clusters", "count", len(clusterNames))
	return nil
}

// ConnectAll connects to every context in the kubeconfig
func (m *Manager) ConnectAll(ctx context.Context) error {
	contexts, err := m.loader.GetContexts()
	if err != nil {
		return fmt.Errorf("failed to get contexts: %w", err)
	}

	if len(contexts) == 0 {
		return fmt.Errorf("no contexts found in kubeconfig")
	}

	m.logger.Debug("discovered contexts", "count", len(contexts))
	return m.Connect(ctx, contexts)
}

// AddClient registers an already built client
func (m *Manager) AddClient(client *Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("manager is closed")
	}

	m.clients[client.Name] = client
	return nil
}

// GetClient returns the client for a specific cluster
func (m *Manager) GetClient(name string) (*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("manager is closed")
	}

	client, ok := m.clients[name]
	if !ok {
		return nil, util.WrapClusterError(name, util.ErrClusterNotFound)
	}

	return client, nil
}

// Names returns all connected cluster names, sorted
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Count returns the number of connected clusters
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.clients)
}

// probeTarget is one element of a HealthCheck batch
type probeTarget struct {
	client *Client
	status HealthStatus
}

// HealthCheck probes every connected cluster in parallel.
// The report is sorted by cluster name; the batch carries per-cluster outcomes.
func (m *Manager) HealthCheck(ctx context.Context) (Report, *executor.Batch) {
	m.mu.RLock()
	targets := make([]probeTarget, 0, len(m.clients))
	for _, c := range m.clients {
		if c != nil {
			targets = append(targets, probeTarget{client: c})
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(targets, func(a, b probeTarget) int {
		return strings.Compare(a.client.Name, b.client.Name)
	})

	if len(targets) == 0 {
		m.logger.Warn("no clients to health check")
	}

	batch := executor.ForEach(m.exec, targets, func(t *probeTarget) error {
		m.logger.Debug("health checking cluster", "cluster", t.client.Name)
		t.status = t.client.Probe(ctx)
		return t.status.Error
	})

	report := make(Report, len(targets))
	for i, t := range targets {
		report[i] = t.status
		if !batch.Outcomes[i].OK && t.status.ClusterName == "" {
			// The probe never produced a status (refused or panicked)
			report[i] = HealthStatus{
				ClusterName: t.client.Name,
				Error:       batch.Outcomes[i].Err,
				Message:     batch.Outcomes[i].Err.Error(),
			}
		}
	}

	m.logger.Info("health checks completed",
		"total", len(report),
		"healthy", report.Healthy())

	return report, batch
}

// Close drops all clients and marks the manager as closed
// The executor is not closed; its owner tears it down
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.logger.Debug("closing cluster manager", "clients", len(m.clients))

	m.clients = make(map[string]*Client)
	m.closed = true
}

// IsClosed returns true if the manager has been closed
func (m *Manager) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
