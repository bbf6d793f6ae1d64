package cluster

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aryankumar/fanout/internal/util"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Client represents a connection to a single Kubernetes cluster
type Client struct {
	// Name is a friendly identifier for the cluster
	Name string

	// Context is the kubeconfig context name
	Context string

	// Clientset is the Kubernetes client interface
	Clientset kubernetes.Interface

	// RestConfig is the underlying REST configuration
	RestConfig *rest.Config

	// healthy records the result of the last probe
	healthy atomic.Bool
}

// HealthStatus is the result of probing one cluster
type HealthStatus struct {
	// ClusterName is the name of the cluster
	ClusterName string `json:"cluster" yaml:"cluster"`

	// Healthy indicates if the cluster answered every probe
	Healthy bool `json:"healthy" yaml:"healthy"`

	// ServerVersion is the Kubernetes server version (if healthy)
	ServerVersion string `json:"serverVersion,omitempty" yaml:"serverVersion,omitempty"`

	// Nodes is the number of nodes reported by the API server
	Nodes int `json:"nodes" yaml:"nodes"`

	// Duration is how long the probe took
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Message is the error text, for encoders
	Message string `json:"error,omitempty" yaml:"error,omitempty"`

	// Error contains any probe error
	Error error `json:"-" yaml:"-"`
}

// Report is the ordered result of a health sweep
type Report []HealthStatus

// Headers implements output.Tabular
func (r Report) Headers() []string {
	return []string{"CLUSTER", "HEALTHY", "VERSION", "NODES", "DURATION", "ERROR"}
}

// Rows implements output.Tabular
func (r Report) Rows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, s := range r {
		rows = append(rows, []string{
			util.ShortClusterName(s.ClusterName),
			fmt.Sprintf("%t", s.Healthy),
			s.ServerVersion,
			fmt.Sprintf("%d", s.Nodes),
			s.Duration.Round(time.Millisecond).String(),
			s.Message,
		})
	}
	return rows
}

// Healthy returns the number of healthy clusters in the report
func (r Report) Healthy() int {
	count := 0
	for _, s := range r {
		if s.Healthy {
			count++
		}
	}
	return count
}
