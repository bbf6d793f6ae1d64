package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aryankumar/fanout/internal/cluster"
	"github.com/aryankumar/fanout/internal/config"
	"github.com/aryankumar/fanout/internal/util"
	"github.com/spf13/cobra"
)

// newClustersCmd creates the clusters parent command
func newClustersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clusters",
		Aliases: []string{"cluster"},
		Short:   "Sweep Kubernetes clusters from your kubeconfig",
		Long: `Inspect the Kubernetes clusters in your kubeconfig.

Clusters can be grouped with labels in the fanout config file:

  clusters:
    prod-east:
      context: arn:aws:eks:us-east-1:123456789012:cluster/prod
      labels: {env: prod}
      enabled: true`,
	}

	cmd.AddCommand(newClustersListCmd(a))
	cmd.AddCommand(newClustersHealthCmd(a))

	return cmd
}

// contextTable lists kubeconfig contexts
type contextTable struct {
	infos  []config.ClusterInfo
	labels map[string]map[string]string
}

func (t contextTable) Headers() []string {
	return []string{"CURRENT", "CONTEXT", "CLUSTER", "SERVER", "NAMESPACE", "LABELS"}
}

func (t contextTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.infos))
	for _, info := range t.infos {
		current := ""
		if info.Current {
			current = "*"
		}
		rows = append(rows, []string{
			current,
			info.Context,
			util.ShortClusterName(info.Name),
			info.Server,
			info.Namespace,
			formatLabels(t.labels[info.Context]),
		})
	}
	return rows
}

func newClustersListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List kubeconfig contexts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewKubeconfigLoader(a.kubeconfigPath)
			a.logger.Debug("using kubeconfig paths", "paths", strings.Join(loader.GetPaths(), ", "))

			contexts, err := loader.GetContexts()
			if err != nil {
				return err
			}

			table := contextTable{
				infos:  make([]config.ClusterInfo, 0, len(contexts)),
				labels: a.contextLabels(),
			}
			for _, name := range contexts {
				info, err := loader.GetClusterInfo(name)
				if err != nil {
					a.logger.Warn("skipping context", "context", name, "error", err)
					continue
				}
				table.infos = append(table.infos, *info)
			}

			w := cmd.OutOrStdout()
			f, err := a.formatter(false)
			if err != nil {
				return err
			}

			if a.config.Defaults.OutputFormat == "table" {
				return f.Format(w, table)
			}
			return f.Format(w, table.infos)
		},
	}
}

func newClustersHealthCmd(a *app) *cobra.Command {
	var selector map[string]string

	cmd := &cobra.Command{
		Use:   "health [CONTEXT...]",
		Short: "Probe the API server of every selected cluster in parallel",
		Long: `Probe each cluster's API server for its version and node count.

Clusters are chosen from the CONTEXT arguments; otherwise from enabled
clusters in the config file matching --selector; otherwise every context
in the kubeconfig. The command fails if any cluster is unhealthy.`,
		Example: `  # Every context in the kubeconfig
  fanout clusters health

  # Production clusters from the config file, as JSON
  fanout clusters health --selector env=prod -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(cmd, a, args, selector)
		},
	}

	cmd.Flags().StringToStringVarP(&selector, "selector", "l", nil, "select configured clusters by label (key=value,...)")

	return cmd
}

func runHealth(cmd *cobra.Command, a *app, contexts []string, selector map[string]string) error {
	ctx := cmd.Context()

	mgr := cluster.NewManager(config.NewKubeconfigLoader(a.kubeconfigPath), a.executor(), a.logger)
	defer mgr.Close()

	if err := a.connect(ctx, mgr, contexts, selector); err != nil {
		a.logger.Warn("some cluster connections failed", "error", err)
	}

	if mgr.Count() == 0 {
		return fmt.Errorf("no clusters connected")
	}

	probeCtx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()

	report, _ := mgr.HealthCheck(probeCtx)

	w := cmd.OutOrStdout()
	f, err := a.formatter(false)
	if err != nil {
		return err
	}
	if err := f.Format(w, report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if unhealthy := len(report) - report.Healthy(); unhealthy > 0 {
		return fmt.Errorf("%d of %d clusters unhealthy", unhealthy, len(report))
	}
	return nil
}

// connect resolves the target clusters and connects to them
func (a *app) connect(ctx context.Context, mgr *cluster.Manager, contexts []string, selector map[string]string) error {
	if len(contexts) > 0 {
		return mgr.Connect(ctx, contexts)
	}

	if configured := a.configMgr.GetClustersByLabel(selector); len(configured) > 0 {
		return mgr.Connect(ctx, configured)
	}

	if len(selector) > 0 {
		return fmt.Errorf("no enabled clusters match selector %s", formatLabels(selector))
	}

	return mgr.ConnectAll(ctx)
}

// contextLabels maps kubeconfig contexts to labels from the config file
func (a *app) contextLabels() map[string]map[string]string {
	labels := make(map[string]map[string]string)
	for _, c := range a.config.Clusters {
		labels[c.Context] = c.Labels
	}
	return labels
}

// formatLabels renders labels as sorted key=value pairs
func formatLabels(labels map[string]string) string {
	keys := slices.Sorted(maps.Keys(labels))
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+labels[k])
	}
	return strings.Join(pairs, ",")
}
