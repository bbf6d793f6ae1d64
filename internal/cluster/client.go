package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// probeTimeout caps a single probe when the caller's context has no deadline
const probeTimeout = 10 * time.Second

// NewClient creates a new cluster client from a REST config
func NewClient(name string, contextName string, restConfig *rest.Config, logger *slog.Logger) (*Client, error) {
	if restConfig == nil {
		return nil, fmt.Errorf("rest config cannot be nil")
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("created cluster client",
		"cluster", name,
		"context", contextName,
		"server", restConfig.Host)

	return &Client{
		Name:       name,
		Context:    contextName,
		Clientset:  clientset,
		RestConfig: restConfig,
	}, nil
}

// Probe asks the API server for its version and node count in parallel.
// The cluster is healthy only if both calls succeed.
func (c *Client) Probe(ctx context.Context) HealthStatus {
	startTime := time.Now()
	status := HealthStatus{ClusterName: c.Name}

	if err := ctx.Err(); err != nil {
		return c.finish(status, fmt.Errorf("probe cancelled: %w", err), startTime)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, probeTimeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		version, err := c.ServerVersion(gctx)
		if err != nil {
			return err
		}
		status.ServerVersion = version
		return nil
	})

	g.Go(func() error {
		nodes, err := c.Clientset.CoreV1().Nodes().List(gctx, metav1.ListOptions{})
		if err != nil {
			return fmt.Errorf("failed to list nodes: %w", err)
		}
		status.Nodes = len(nodes.Items)
		return nil
	})

	return c.finish(status, g.Wait(), startTime)
}

func (c *Client) finish(status HealthStatus, err error, startTime time.Time) HealthStatus {
	status.Duration = time.Since(startTime)
	status.Error = err
	status.Healthy = err == nil
	if err != nil {
		status.Message = err.Error()
	}
	c.healthy.Store(status.Healthy)
	return status
}

// ServerVersion returns the Kubernetes server version
// The discovery call takes no context, so it runs in a goroutine raced against ctx
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	type result struct {
		version string
		err     error
	}
	resultCh := make(chan result, 1)

	go func() {
		version, err := c.Clientset.Discovery().ServerVersion()
		if err != nil {
			resultCh <- result{err: fmt.Errorf("failed to get server version: %w", err)}
			return
		}
		resultCh <- result{version: version.String()}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("get server version: %w", ctx.Err())
	case res := <-resultCh:
		return res.version, res.err
	}
}

// IsHealthy returns the result of the last probe
func (c *Client) IsHealthy() bool {
	return c.healthy.Load()
}

// String returns a string representation of the client
func (c *Client) String() string {
	return fmt.Sprintf("Client{Name: %s, Context: %s, Healthy: %v}", c.Name, c.Context, c.IsHealthy())
}
