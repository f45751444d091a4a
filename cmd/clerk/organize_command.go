package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clerk/internal/clients"
	"clerk/internal/config"
	"clerk/internal/discover"
	"clerk/internal/organize"
	"clerk/internal/preflight"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Classify every document in the source directory and file it by client",
		Long: "Classify every document in the source directory and copy (or move) it into\n" +
			"its client's folder under the destination.\n\n" +
			"While a run is in progress, SIGUSR1 pauses dispatch and SIGUSR2 resumes it.\n" +
			"Interrupting the run lets files already being processed finish.",
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
			return runOrganize(cmd, ctx, cfg, jsonOutput)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

func runOrganize(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, jsonOutput bool) error {
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

	reg, err := ctx.requireClients(cfg, logger)
	if err != nil {
		return err
	}
	files, err := discover.Discover(cfg.Paths.SourceDir, discoverOptions(cfg))
	if err != nil {
		return err
	}

	var required uint64
	if !cfg.Organize.Move {
		required = preflight.RequiredBytes(files)
	}
	checks := preflight.RunAll(cfg, required)
	if err := preflight.Err(checks); err != nil {
		if !jsonOutput {
			for _, line := range renderPreflight(checks, shouldColorize(cmd.ErrOrStderr())) {
				fmt.Fprintln(cmd.ErrOrStderr(), line)
			}
		}
		return err
	}
	if !jsonOutput {
		printAdvisories(cmd.ErrOrStderr(), checks)
	}

	out := cmd.OutOrStdout()
	var observer organize.Observer = organize.NopObserver{}
	var console *consoleObserver
	if !jsonOutput {
		printMapping(out, reg)
		fmt.Fprintln(out)
		console = newConsoleObserver(out, cmd.ErrOrStderr())
		observer = console
	}

	classifier, err := newClassifier(cfg, reg, logger)
	if err != nil {
		return err
	}
	sinks := openRunSinks(cfg, logger)
	defer sinks.Close()

	runner := newRunner(cfg, classifier, observer, sinks, logger)
	stopSignals := watchPauseSignals(cmd.Context(), runner, cmd.ErrOrStderr())
	summary := runner.Run(cmd.Context(), files)
	stopSignals()
	if console != nil {
		console.finish()
	}

	if jsonOutput {
		if err := writeJSON(cmd, summaryView(summary)); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderSummary(summary))
		fmt.Fprintf(out, "Run %s\n", summary.RunID)
		if summary.Stats.Errors > 0 && sinks.failures != nil {
			fmt.Fprintf(out, "Failed files are listed in %s\n", sinks.failures.Path())
		}
	}

	if summary.State == organize.StateStopped {
		return context.Canceled
	}
	return nil
}

// watchPauseSignals maps SIGUSR1 and SIGUSR2 onto Pause and Resume for the
// lifetime of one run. The returned func stops listening.
func watchPauseSignals(ctx context.Context, runner *organize.Runner, notify io.Writer) func() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR1, syscall.SIGUSR2)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case sig := <-signals:
				if sig == syscall.SIGUSR1 {
					runner.Pause()
					fmt.Fprintln(notify, "Dispatch paused; send SIGUSR2 to resume")
				} else {
					runner.Resume()
					fmt.Fprintln(notify, "Dispatch resumed")
				}
			}
		}
	}()
	return func() {
		signal.Stop(signals)
		close(done)
		<-exited
	}
}

func printMapping(out io.Writer, reg *clients.Registry) {
	fmt.Fprintln(out, "Client folders:")
	fmt.Fprintln(out, renderMapping(reg))
}

func renderMapping(reg *clients.Registry) string {
	folders := reg.FolderMapping()
	rows := make([][]string, 0, reg.Len())
	for _, c := range reg.Clients() {
		rows = append(rows, []string{clients.DisplayName(c), folders[c]})
	}
	return renderTable([]string{"Client", "Folder"}, rows, nil)
}

func renderSummary(summary organize.Summary) string {
	s := summary.Stats
	rows := [][]string{
		{"Matched by filename", fmt.Sprint(s.Filename)},
		{"Matched by content", fmt.Sprint(s.Content)},
		{"No match", fmt.Sprint(s.NoMatch)},
		{"Errors", fmt.Sprint(s.Errors)},
	}
	if s.Cancelled > 0 {
		rows = append(rows, []string{"Cancelled", fmt.Sprint(s.Cancelled)})
	}
	return tableSpec{
		headers: []string{"Result", "Files"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignRight},
		footer:  []string{summaryFooter(summary), fmt.Sprint(summary.Total)},
	}.render()
}

func summaryFooter(summary organize.Summary) string {
	return fmt.Sprintf("%s (%s, %s)", summary.State, runMode(summary.Move, summary.DryRun), summary.Duration().Round(time.Millisecond))
}

// printAdvisories shows preflight results that failed without blocking the run.
func printAdvisories(w io.Writer, checks []preflight.Result) {
	var advisories []preflight.Result
	for _, c := range checks {
		if !c.Passed && !c.Blocking() {
			advisories = append(advisories, c)
		}
	}
	for _, line := range renderPreflight(advisories, shouldColorize(w)) {
		fmt.Fprintln(w, line)
	}
}
