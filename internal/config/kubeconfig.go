package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/aryankumar/fanout/internal/util"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"
)

// KubeconfigLoader loads and merges kubeconfig files
// It is safe for concurrent use; the merged config is read once
type KubeconfigLoader struct {
	paths []string

	once   sync.Once
	loaded *api.Config
	err    error
}

// NewKubeconfigLoader creates a new kubeconfig loader
// Sources, in order of precedence:
// 1. Explicit path (--kubeconfig flag)
// 2. KUBECONFIG environment variable (list separated by os.PathListSeparator)
// 3. Default ~/.kube/config
func NewKubeconfigLoader(explicitPath string) *KubeconfigLoader {
	loader := &KubeconfigLoader{
		paths: make([]string, 0),
	}

	if explicitPath != "" {
		if expandedPath, err := expandPath(explicitPath); err == nil {
			loader.paths = append(loader.paths, expandedPath)
		}
		return loader
	}

	if kubeconfigEnv := os.Getenv("KUBECONFIG"); kubeconfigEnv != "" {
		for _, path := range strings.Split(kubeconfigEnv, string(os.PathListSeparator)) {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			if expandedPath, err := expandPath(path); err == nil {
				loader.paths = append(loader.paths, expandedPath)
			}
		}
	}

	if len(loader.paths) == 0 {
		if home, err := os.UserHomeDir(); err == nil {
			loader.paths = append(loader.paths, filepath.Join(home, ".kube", "config"))
		}
	}

	return loader
}

// Load returns the merged kubeconfig from all sources
func (l *KubeconfigLoader) Load() (*api.Config, error) {
	l.once.Do(func() {
		if len(l.paths) == 0 {
			l.err = fmt.Errorf("no kubeconfig paths available")
			return
		}

		loadingRules := &clientcmd.ClientConfigLoadingRules{
			Precedence: l.paths,
		}

		config, err := loadingRules.Load()
		if err != nil {
			l.err = fmt.Errorf("failed to load kubeconfig: %w", err)
			return
		}

		l.loaded = config
	})

	return l.loaded, l.err
}

// GetContexts returns all context names, sorted
func (l *KubeconfigLoader) GetContexts() ([]string, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	contexts := make([]string, 0, len(config.Contexts))
	for name := range config.Contexts {
		contexts = append(contexts, name)
	}
	slices.Sort(contexts)

	return contexts, nil
}

// GetClusterInfo returns information about a specific context
func (l *KubeconfigLoader) GetClusterInfo(contextName string) (*ClusterInfo, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	context, exists := config.Contexts[contextName]
	if !exists || context == nil {
		return nil, util.WrapClusterError(contextName, util.ErrClusterNotFound)
	}

	cluster := config.Clusters[context.Cluster]
	if cluster == nil {
		return nil, util.WrapClusterError(contextName,
			fmt.Errorf("cluster %q: %w", context.Cluster, util.ErrClusterNotFound))
	}

	info := &ClusterInfo{
		Name:      context.Cluster,
		Context:   contextName,
		Server:    cluster.Server,
		Namespace: context.Namespace,
		Current:   contextName == config.CurrentContext,
	}

	if info.Namespace == "" {
		info.Namespace = "default"
	}

	return info, nil
}

// BuildClientConfig creates a rest.Config for a specific context
func (l *KubeconfigLoader) BuildClientConfig(contextName string) (*rest.Config, error) {
	if len(l.paths) == 0 {
		return nil, fmt.Errorf("no kubeconfig paths available")
	}

	loadingRules := &clientcmd.ClientConfigLoadingRules{
		Precedence: l.paths,
	}

	configOverrides := &clientcmd.ConfigOverrides{}
	if contextName != "" {
		configOverrides.CurrentContext = contextName
	}

	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules,
		configOverrides,
	)

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create client config for context %q: %w", contextName, err)
	}

	return restConfig, nil
}

// GetPaths returns the kubeconfig paths being used
func (l *KubeconfigLoader) GetPaths() []string {
	return l.paths
}

// expandPath expands ~ and environment variables
func expandPath(path string) (string, error) {
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	return filepath.Clean(path), nil
}
