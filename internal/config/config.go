package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aryankumar/fanout/internal/util"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = ".fanout"
	defaultConfigDir  = ".fanout"

	// DefaultWorkers matches executor.DefaultCapacity
	DefaultWorkers = 10

	// DefaultTimeout bounds a single task
	DefaultTimeout = 30 * time.Second

	// DefaultShutdownTimeout bounds teardown
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultOutputFormat is used when no format is configured
	DefaultOutputFormat = "table"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// Manager loads fanout configuration
type Manager struct {
	configPath string
	config     *Config
	viper      *viper.Viper
}

// NewManager creates a new configuration manager
// An empty configPath searches ~/.fanout/ and ~/ for .fanout.yaml
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		viper:      viper.New(),
		config:     &Config{},
	}
}

// Load reads the configuration file and environment
// A missing config file is not an error; defaults are applied
func (m *Manager) Load() (*Config, error) {
	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		// Check ~/.fanout/.fanout.yaml, then ~/.fanout.yaml
		m.viper.AddConfigPath(filepath.Join(home, defaultConfigDir))
		m.viper.AddConfigPath(home)
		m.viper.SetConfigName(defaultConfigName)
		m.viper.SetConfigType("yaml")
	}

	// FANOUT_EXECUTOR_WORKERS etc.
	m.viper.SetEnvPrefix("FANOUT")
	m.viper.SetEnvKeyReplacer(envKeyReplacer)
	m.viper.AutomaticEnv()
	m.viper.SetDefault("executor.workers", DefaultWorkers)
	m.viper.SetDefault("executor.shutdownTimeout", DefaultShutdownTimeout)
	m.viper.SetDefault("defaults.timeout", DefaultTimeout)
	m.viper.SetDefault("defaults.outputFormat", DefaultOutputFormat)
	m.viper.SetDefault("defaults.noColor", false)

	m.config = &Config{}

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := m.viper.Unmarshal(m.config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	m.applyDefaults()

	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	return m.config, nil
}

// BindFlag lets a command-line flag override key. Call it before Load.
// Flags only win when set explicitly; otherwise env, file and defaults apply.
func (m *Manager) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind to %q", key)
	}
	return m.viper.BindPFlag(key, flag)
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// ConfigFileUsed returns the file the configuration was read from, if any
func (m *Manager) ConfigFileUsed() string {
	return m.viper.ConfigFileUsed()
}

// GetEnabledClusters returns the sorted contexts of enabled clusters
func (m *Manager) GetEnabledClusters() []string {
	return m.GetClustersByLabel(nil)
}

// GetClustersByLabel returns the sorted contexts of enabled clusters matching labels
func (m *Manager) GetClustersByLabel(labels map[string]string) []string {
	if m.config.Clusters == nil {
		return nil
	}

	matching := make([]string, 0)
	for _, cluster := range m.config.Clusters {
		if !cluster.Enabled {
			continue
		}

		if matchesLabels(cluster.Labels, labels) {
			matching = append(matching, cluster.Context)
		}
	}

	slices.Sort(matching)
	return matching
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if c.Executor.Workers < 0 {
		return util.WrapErrorf(util.ErrInvalidConfig, "executor.workers must be >= 0, got %d", c.Executor.Workers)
	}

	switch c.Defaults.OutputFormat {
	case "table", "json", "yaml":
	default:
		return util.WrapErrorf(util.ErrInvalidConfig, "unknown output format %q", c.Defaults.OutputFormat)
	}

	for name, cluster := range c.Clusters {
		if cluster.Context == "" {
			return util.WrapErrorf(util.ErrInvalidConfig, "cluster %q has no context", name)
		}
	}

	return nil
}

// applyDefaults sets default values for configuration
func (m *Manager) applyDefaults() {
	if m.config == nil {
		return
	}

	if m.config.Executor.Workers == 0 {
		m.config.Executor.Workers = DefaultWorkers
	}

	if m.config.Executor.ShutdownTimeout == 0 {
		m.config.Executor.ShutdownTimeout = DefaultShutdownTimeout
	}

	if m.config.Defaults.Timeout == 0 {
		m.config.Defaults.Timeout = DefaultTimeout
	}

	if m.config.Defaults.OutputFormat == "" {
		m.config.Defaults.OutputFormat = DefaultOutputFormat
	}

	// A cluster entry without a context targets the context of the same name
	for name, cluster := range m.config.Clusters {
		if cluster.Context == "" {
			cluster.Context = name
		}
		m.config.Clusters[name] = cluster
	}
}

// matchesLabels checks if cluster labels match the required labels
func matchesLabels(clusterLabels, requiredLabels map[string]string) bool {
	if len(requiredLabels) == 0 {
		return true
	}

	for key, value := range requiredLabels {
		clusterValue, exists := clusterLabels[key]
		if !exists || clusterValue != value {
			return false
		}
	}

	return true
}
