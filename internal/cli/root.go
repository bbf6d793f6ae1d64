package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aryankumar/fanout/internal/config"
	"github.com/aryankumar/fanout/internal/executor"
	"github.com/aryankumar/fanout/internal/output"
	"github.com/aryankumar/fanout/internal/singleton"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand of one invocation
type app struct {
	cfgFile        string
	kubeconfigPath string
	verbose        bool

	configMgr *config.Manager
	config    *config.Config
	logger    *slog.Logger
	exec      *executor.Executor
}

// Execute runs the root command with the provided context.
// It also returns how long process-wide teardown may take, from
// executor.shutdownTimeout, so main can bound singleton.Process().Close.
func Execute(ctx context.Context) (time.Duration, error) {
	a := &app{}
	err := newRootCmdFor(a).ExecuteContext(ctx)
	return a.shutdownTimeout(), err
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{})
}

func newRootCmdFor(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fanout",
		Short: "Fanout - run work over a bounded pool of workers",
		Long: `Fanout runs one task per item over a fixed-size worker pool and reports
a success flag for every item, in input order.

It can run a shell command for each item of a list, or sweep the health of
every Kubernetes cluster in your kubeconfig.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.fanout/.fanout.yaml or $HOME/.fanout.yaml)")
	flags.StringVar(&a.kubeconfigPath, "kubeconfig", "", "path to kubeconfig file (default is $HOME/.kube/config)")
	flags.StringP("output", "o", "", "output format (table, json, yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output with debug logging")
	flags.Bool("no-color", false, "disable colored output")
	flags.Duration("timeout", config.DefaultTimeout, "timeout for a single task")
	flags.IntP("workers", "w", executor.DefaultCapacity, "number of parallel workers")

	rootCmd.AddCommand(newVersionCmd(a))
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newEachCmd(a))
	rootCmd.AddCommand(newClustersCmd(a))

	return rootCmd
}

// flagKeys maps persistent flags to configuration keys
var flagKeys = map[string]string{
	"workers":  "executor.workers",
	"timeout":  "defaults.timeout",
	"output":   "defaults.outputFormat",
	"no-color": "defaults.noColor",
}

// init loads configuration and logging before any subcommand runs
func (a *app) init(cmd *cobra.Command) error {
	a.logger = setupLogging(cmd.ErrOrStderr(), a.verbose)

	a.configMgr = config.NewManager(a.cfgFile)
	for name, key := range flagKeys {
		if err := a.configMgr.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}

	cfg, err := a.configMgr.Load()
	if err != nil {
		return err
	}
	a.config = cfg

	if used := a.configMgr.ConfigFileUsed(); used != "" {
		a.logger.Debug("loaded configuration", "file", used)
	}

	return nil
}

// executor returns the executor sized by --workers / executor.workers.
// The default size shares the process-wide executor; other sizes get their
// own, torn down with the process lifecycle.
func (a *app) executor() *executor.Executor {
	if a.exec != nil {
		return a.exec
	}

	workers := a.config.Executor.Workers
	if workers == executor.DefaultCapacity {
		a.exec = executor.Default()
		return a.exec
	}

	e := executor.New(workers, a.logger)
	if err := singleton.Process().Register(fmt.Sprintf("executor-%d", workers), e.Close); err != nil {
		a.logger.Warn("executor will not be torn down at exit", "error", err)
	}
	a.exec = e
	return a.exec
}

// formatter builds the output formatter from the resolved configuration
func (a *app) formatter(wide bool) (output.Formatter, error) {
	format, err := output.ParseFormat(a.config.Defaults.OutputFormat)
	if err != nil {
		return nil, err
	}

	return output.NewFormatter(format,
		output.WithNoColor(a.config.Defaults.NoColor),
		output.WithWide(wide),
	), nil
}

// timeout returns the per-task timeout
func (a *app) timeout() time.Duration {
	if a.config == nil || a.config.Defaults.Timeout <= 0 {
		return config.DefaultTimeout
	}
	return a.config.Defaults.Timeout
}

// shutdownTimeout bounds process teardown; the default applies when no
// configuration was loaded (help, completion, flag errors)
func (a *app) shutdownTimeout() time.Duration {
	if a.config == nil || a.config.Executor.ShutdownTimeout <= 0 {
		return config.DefaultShutdownTimeout
	}
	return a.config.Executor.ShutdownTimeout
}

// setupLogging configures structured logging with slog
func setupLogging(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if os.Getenv("FANOUT_LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	logger.Debug("verbose logging enabled")
	return logger
}
