package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/aryankumar/fanout/internal/util"
	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestManager_Load(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantErr      error
		wantWorkers  int
		wantTimeout  time.Duration
		wantFormat   string
		wantClusters int
	}{
		{
			name: "full config",
			content: `
executor:
  workers: 4
  shutdownTimeout: 2s
clusters:
  prod:
    context: prod-context
    enabled: true
    labels:
      env: production
  staging:
    enabled: true
defaults:
  timeout: 60s
  outputFormat: json
`,
			wantWorkers:  4,
			wantTimeout:  60 * time.Second,
			wantFormat:   "json",
			wantClusters: 2,
		},
		{
			name:        "empty config uses defaults",
			content:     "",
			wantWorkers: DefaultWorkers,
			wantTimeout: DefaultTimeout,
			wantFormat:  DefaultOutputFormat,
		},
		{
			name: "negative workers rejected",
			content: `
executor:
  workers: -2
`,
			wantErr: util.ErrInvalidConfig,
		},
		{
			name: "unknown output format rejected",
			content: `
defaults:
  outputFormat: xml
`,
			wantErr: util.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(writeConfig(t, tt.content))
			cfg, err := m.Load()

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if cfg.Executor.Workers != tt.wantWorkers {
				t.Errorf("workers = %d, want %d", cfg.Executor.Workers, tt.wantWorkers)
			}
			if cfg.Defaults.Timeout != tt.wantTimeout {
				t.Errorf("timeout = %v, want %v", cfg.Defaults.Timeout, tt.wantTimeout)
			}
			if cfg.Defaults.OutputFormat != tt.wantFormat {
				t.Errorf("format = %q, want %q", cfg.Defaults.OutputFormat, tt.wantFormat)
			}
			if len(cfg.Clusters) != tt.wantClusters {
				t.Errorf("clusters = %d, want %d", len(cfg.Clusters), tt.wantClusters)
			}
			if cfg.Executor.ShutdownTimeout == 0 {
				t.Error("expected a shutdown timeout")
			}
			if m.GetConfig() != cfg {
				t.Error("GetConfig should return the loaded config")
			}
		})
	}
}

func TestManager_LoadMissingFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("missing config should not be an error, got %v", err)
	}
	if cfg.Executor.Workers != DefaultWorkers {
		t.Errorf("expected default workers, got %d", cfg.Executor.Workers)
	}
}

func TestManager_LoadInvalidYAML(t *testing.T) {
	m := NewManager(writeConfig(t, "executor: [unclosed"))

	if _, err := m.Load(); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestManager_EnvOverride(t *testing.T) {
	t.Setenv("FANOUT_EXECUTOR_WORKERS", "7")

	m := NewManager(writeConfig(t, "executor:\n  workers: 3\n"))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Executor.Workers != 7 {
		t.Errorf("expected env to override workers, got %d", cfg.Executor.Workers)
	}
}

func TestManager_BindFlag(t *testing.T) {
	newFlags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.Int("workers", DefaultWorkers, "")
		fs.Duration("timeout", DefaultTimeout, "")
		return fs
	}

	t.Run("unset flag leaves file value", func(t *testing.T) {
		fs := newFlags()
		m := NewManager(writeConfig(t, "executor:\n  workers: 3\n"))
		if err := m.BindFlag("executor.workers", fs.Lookup("workers")); err != nil {
			t.Fatalf("bind failed: %v", err)
		}

		cfg, err := m.Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Executor.Workers != 3 {
			t.Errorf("expected file value 3, got %d", cfg.Executor.Workers)
		}
	})

	t.Run("set flag wins", func(t *testing.T) {
		fs := newFlags()
		if err := fs.Parse([]string{"--workers", "5", "--timeout", "2s"}); err != nil {
			t.Fatal(err)
		}

		m := NewManager(writeConfig(t, "executor:\n  workers: 3\n"))
		m.BindFlag("executor.workers", fs.Lookup("workers"))
		m.BindFlag("defaults.timeout", fs.Lookup("timeout"))

		cfg, err := m.Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Executor.Workers != 5 {
			t.Errorf("expected flag value 5, got %d", cfg.Executor.Workers)
		}
		if cfg.Defaults.Timeout != 2*time.Second {
			t.Errorf("expected 2s timeout, got %s", cfg.Defaults.Timeout)
		}
	})

	t.Run("missing flag", func(t *testing.T) {
		m := NewManager("")
		if err := m.BindFlag("executor.workers", nil); err == nil {
			t.Error("expected error for nil flag")
		}
	})
}

func TestManager_GetClustersByLabel(t *testing.T) {
	m := NewManager(writeConfig(t, `
clusters:
  prod-east:
    context: ctx-prod-east
    enabled: true
    labels:
      env: production
      region: east
  prod-west:
    context: ctx-prod-west
    enabled: true
    labels:
      env: production
      region: west
  staging:
    context: ctx-staging
    enabled: true
    labels:
      env: staging
  retired:
    context: ctx-retired
    enabled: false
    labels:
      env: production
`))
	if _, err := m.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		labels map[string]string
		want   []string
	}{
		{"no labels returns all enabled", nil, []string{"ctx-prod-east", "ctx-prod-west", "ctx-staging"}},
		{"single label", map[string]string{"env": "production"}, []string{"ctx-prod-east", "ctx-prod-west"}},
		{"two labels", map[string]string{"env": "production", "region": "west"}, []string{"ctx-prod-west"}},
		{"no match", map[string]string{"env": "dev"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.GetClustersByLabel(tt.labels)
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if got := m.GetEnabledClusters(); len(got) != 3 {
		t.Errorf("expected 3 enabled clusters, got %v", got)
	}
}

func TestManager_NoClusters(t *testing.T) {
	m := NewManager(writeConfig(t, ""))
	if _, err := m.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := m.GetEnabledClusters(); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
