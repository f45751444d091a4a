package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"clerk/internal/classify"
	"clerk/internal/clients"
	"clerk/internal/config"
	"clerk/internal/discover"
	"clerk/internal/extract"
	"clerk/internal/faults"
	"clerk/internal/history"
	"clerk/internal/logging"
	"clerk/internal/matcher"
	"clerk/internal/organize"
)

// runFlags are the per-invocation overrides shared by organize and watch.
type runFlags struct {
	source  string
	dest    string
	move    bool
	dryRun  bool
	workers int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.source, "source", "s", "", "Directory holding the documents to organize")
	cmd.Flags().StringVarP(&f.dest, "dest", "d", "", "Directory receiving one folder per client")
	cmd.Flags().BoolVar(&f.move, "move", false, "Move files instead of copying them")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Report destinations without touching the filesystem")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Parallel workers (0 uses the configured value)")
}

// apply returns a copy of cfg with the flags the user set layered on top.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	out := *cfg
	changed := cmd.Flags().Changed
	if changed("source") {
		path, err := config.ExpandPath(strings.TrimSpace(f.source))
		if err != nil {
			return nil, fmt.Errorf("resolve --source: %w", err)
		}
		out.Paths.SourceDir = path
	}
	if changed("dest") {
		path, err := config.ExpandPath(strings.TrimSpace(f.dest))
		if err != nil {
			return nil, fmt.Errorf("resolve --dest: %w", err)
		}
		out.Paths.DestDir = path
	}
	if changed("move") {
		out.Organize.Move = f.move
	}
	if changed("dry-run") {
		out.Organize.DryRun = f.dryRun
	}
	if changed("workers") {
		if f.workers < 0 {
			return nil, faults.Wrap(faults.ErrValidation, "cli", "parse flags", "--workers must be >= 0", nil)
		}
		if f.workers > 0 {
			out.Organize.Workers = f.workers
		}
	}
	return &out, nil
}

func discoverOptions(cfg *config.Config) discover.Options {
	return discover.Options{
		Extensions: cfg.Organize.Extensions,
		Exclude:    cfg.Organize.Exclude,
		SkipDirs:   []string{cfg.Paths.DestDir},
	}
}

func newClassifier(cfg *config.Config, reg *clients.Registry, logger *slog.Logger) (*classify.Classifier, error) {
	mode, err := matcher.ParseMode(cfg.Matcher.Mode)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "cli", "build matcher", err.Error(), err)
	}
	m := matcher.New(reg.Clients(),
		matcher.WithMode(mode),
		matcher.WithIndexThreshold(cfg.Matcher.IndexThreshold),
	)
	return classify.New(classify.Options{
		Matcher:   m,
		Folders:   reg.FolderMapping(),
		DestRoot:  cfg.Paths.DestDir,
		Move:      cfg.Organize.Move,
		DryRun:    cfg.Organize.DryRun,
		Extractor: extract.New(cfg.Extract.MaxTextBytes, logger),
		Logger:    logger,
	}), nil
}

// requireClients loads the registry and refuses to run without clients:
// every file would come out unmatched.
func (c *commandContext) requireClients(cfg *config.Config, logger *slog.Logger) (*clients.Registry, error) {
	reg, err := c.loadRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}
	if reg.Len() == 0 {
		return nil, faults.Wrap(faults.ErrConfiguration, "cli", "load clients",
			fmt.Sprintf("no clients registered in %s; add one with `clerk clients add`", cfg.Paths.ClientsFile), nil)
	}
	return reg, nil
}

// acquireRunLock keeps a second organize or watch from placing files into
// the same state directory at the same time.
func acquireRunLock(cfg *config.Config) (func(), error) {
	lock := flock.New(cfg.RunLockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another clerk organize or watch is running (lock %s)", cfg.RunLockPath())
	}
	return func() { _ = lock.Unlock() }, nil
}

// runSinks opens the history store and failure log. Both are optional: a
// run still proceeds when either cannot be opened.
type runSinks struct {
	store    *history.Store
	failures *logging.FailureLog
}

func openRunSinks(cfg *config.Config, logger *slog.Logger) runSinks {
	var sinks runSinks
	store, err := history.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.String("path", cfg.HistoryPath()),
			logging.Error(err),
		)
	} else {
		sinks.store = store
	}
	failures, err := logging.NewFailureLog(cfg.FailureLogPath())
	if err != nil {
		logging.WarnWithContext(logger, "failure log unavailable", "failure_log_open_failed",
			logging.String("path", cfg.FailureLogPath()),
			logging.Error(err),
		)
	} else {
		sinks.failures = failures
	}
	return sinks
}

func (s runSinks) sink() organize.ResultSink {
	if s.store == nil {
		return nil
	}
	return s.store
}

func (s runSinks) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.failures != nil {
		_ = s.failures.Close()
	}
}

func newRunner(cfg *config.Config, classifier *classify.Classifier, observer organize.Observer, sinks runSinks, logger *slog.Logger) *organize.Runner {
	return organize.New(organize.Options{
		Classifier: classifier,
		Workers:    cfg.EffectiveWorkers(),
		Observer:   observer,
		Sink:       sinks.sink(),
		Logger:     logger,
		FailureLog: sinks.failures,
	})
}
