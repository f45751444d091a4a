package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"clerk/internal/clients"
	"clerk/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The source directory exists; the destination does not.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "inbox")
	cfgVal.Paths.DestDir = filepath.Join(base, "clients")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.ClientsFile = filepath.Join(base, "config", "clients.toml")
	cfgVal.Organize.Workers = 2
	cfgVal.Logging.Console = false
	if err := os.MkdirAll(cfgVal.Paths.SourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithMove switches the config from copying to moving.
func WithMove() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.Move = true
	}
}

// WithDryRun enables dry-run placement.
func WithDryRun() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.DryRun = true
	}
}

// WithWorkers overrides the worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.Workers = n
	}
}

// WithClients writes a clients file holding names in order.
func WithClients(names ...string) ConfigOption {
	return func(b *configBuilder) {
		reg := clients.NewRegistry()
		for _, name := range names {
			if _, err := reg.Add(name); err != nil {
				b.t.Fatalf("add client %q: %v", name, err)
			}
		}
		if err := os.MkdirAll(filepath.Dir(b.cfg.Paths.ClientsFile), 0o755); err != nil {
			b.t.Fatalf("mkdir clients dir: %v", err)
		}
		if err := clients.SaveFile(b.cfg.Paths.ClientsFile, reg); err != nil {
			b.t.Fatalf("save clients: %v", err)
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SourceDir)
}
