package config

import "time"

// Config represents the fanout configuration file structure
type Config struct {
	// Executor configures the worker pool
	Executor ExecutorConfig `yaml:"executor,omitempty" json:"executor,omitempty" mapstructure:"executor"`

	// Clusters is a map of cluster names to their configurations
	Clusters map[string]ClusterConfig `yaml:"clusters,omitempty" json:"clusters,omitempty" mapstructure:"clusters"`

	// Defaults contains default settings for commands
	Defaults DefaultsConfig `yaml:"defaults,omitempty" json:"defaults,omitempty" mapstructure:"defaults"`
}

// ExecutorConfig configures the parallel executor
type ExecutorConfig struct {
	// Workers is the fixed worker pool capacity
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty" mapstructure:"workers"`

	// ShutdownTimeout bounds how long teardown waits for queued tasks
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty" json:"shutdownTimeout,omitempty" mapstructure:"shutdownTimeout"`
}

// ClusterConfig represents configuration for a single cluster
type ClusterConfig struct {
	// Context is the kubeconfig context name
	Context string `yaml:"context" json:"context" mapstructure:"context"`

	// Labels for selecting clusters
	Labels map[string]string `yaml:"labels,omitempty" json:"labels,omitempty" mapstructure:"labels"`

	// Enabled indicates if this cluster should be included in sweeps
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
}

// DefaultsConfig contains default configuration values
type DefaultsConfig struct {
	// Timeout for a single task
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" mapstructure:"timeout"`

	// OutputFormat is the default output format (table, json, yaml)
	OutputFormat string `yaml:"outputFormat,omitempty" json:"outputFormat,omitempty" mapstructure:"outputFormat"`

	// NoColor disables colored output
	NoColor bool `yaml:"noColor,omitempty" json:"noColor,omitempty" mapstructure:"noColor"`
}

// ClusterInfo represents information about a cluster from kubeconfig
type ClusterInfo struct {
	// Name is the cluster name from kubeconfig
	Name string `json:"name"`

	// Context is the context name
	Context string `json:"context"`

	// Server is the API server URL
	Server string `json:"server"`

	// Namespace is the default namespace
	Namespace string `json:"namespace"`

	// Current indicates if this is the current context
	Current bool `json:"current"`
}
