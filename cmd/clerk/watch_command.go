package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"clerk/internal/discover"
	"clerk/internal/history"
	"clerk/internal/logging"
	"clerk/internal/preflight"
	"clerk/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var debounce time.Duration
	var initial bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Organize documents as they arrive in the source directory",
		Long: "Watch the source directory and organize new or changed documents once the\n" +
			"tree has been quiet for the debounce interval. The client list is re-read\n" +
			"before every batch, so clients added meanwhile are matched immediately.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			if err := cfg.ValidateRun(); err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg, true)
			if err != nil {
				return err
			}
			unlock, err := acquireRunLock(cfg)
			if err != nil {
				return err
			}
			defer unlock()

			if _, err := ctx.requireClients(cfg, logger); err != nil {
				return err
			}
			if err := preflight.Err(preflight.RunAll(cfg, 0)); err != nil {
				return err
			}
			filter, err := discover.NewFilter(cfg.Paths.SourceDir, discoverOptions(cfg))
			if err != nil {
				return err
			}

			sinks := openRunSinks(cfg, logger)
			defer sinks.Close()
			out := cmd.OutOrStdout()
			console := newConsoleObserver(out, cmd.ErrOrStderr())

			handle := func(runCtx context.Context, files []string) {
				if !cfg.Organize.Move {
					files = skipPlaced(runCtx, sinks.store, files, logger)
					if len(files) == 0 {
						return
					}
				}
				reg, err := ctx.requireClients(cfg, logger)
				if err != nil {
					logging.WarnWithContext(logger, "batch skipped", "watch_batch_skipped", logging.Error(err))
					return
				}
				classifier, err := newClassifier(cfg, reg, logger)
				if err != nil {
					logging.WarnWithContext(logger, "batch skipped", "watch_batch_skipped", logging.Error(err))
					return
				}
				runner := newRunner(cfg, classifier, console, sinks, logger)
				stopSignals := watchPauseSignals(runCtx, runner, cmd.ErrOrStderr())
				runner.Run(runCtx, files)
				stopSignals()
				console.finish()
			}

			watcher, err := watch.New(watch.Options{
				Filter:   filter,
				Debounce: debounce,
				Initial:  initial,
				Handle:   handle,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", cfg.Paths.SourceDir)
			if err := watcher.Run(cmd.Context()); err != nil {
				return fmt.Errorf("watch %s: %w", cfg.Paths.SourceDir, err)
			}
			fmt.Fprintln(out, "Stopped watching")
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before a batch of new files is organized")
	cmd.Flags().BoolVar(&initial, "initial", true, "Organize the files already present before watching")
	return cmd
}

// skipPlaced drops files an earlier copy run already placed and that have not
// changed since, so restarting watch does not copy them again.
func skipPlaced(ctx context.Context, store *history.Store, files []string, logger *slog.Logger) []string {
	if store == nil {
		return files
	}
	kept := files[:0:0]
	for _, f := range files {
		placed, err := store.AlreadyPlaced(ctx, f)
		if err != nil {
			logging.WarnWithContext(logger, "placement lookup failed", "history_lookup_failed",
				logging.String(logging.FieldFile, f),
				logging.Error(err),
			)
		}
		if placed {
			logger.Debug("already organized, skipping", logging.String(logging.FieldFile, f))
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
