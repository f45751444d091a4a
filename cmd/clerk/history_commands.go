package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clerk/internal/clients"
	"clerk/internal/faults"
	"clerk/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List past organize runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					views := make([]runView, 0, len(runs))
					for _, run := range runs {
						views = append(views, historyView(run, nil))
					}
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRuns(runs))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 lists all)")
	historyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show every file of one run (a unique ID prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				run, err := store.FindRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				outcomes, err := store.Outcomes(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, historyView(run, outcomes))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "State:    %s\n", run.State)
				fmt.Fprintf(out, "Mode:     %s\n", runMode(run.Move, run.DryRun))
				fmt.Fprintf(out, "Started:  %s\n", formatLocal(run.Started))
				fmt.Fprintf(out, "Finished: %s\n", formatLocal(run.Finished))
				fmt.Fprintf(out, "Files:    %d (%d matched, %d unmatched, %d errors, %d cancelled)\n",
					run.Total, run.Stats.Matched(), run.Stats.NoMatch, run.Stats.Errors, run.Stats.Cancelled)
				if len(outcomes) > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderOutcomes(outcomes))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return faults.Wrap(faults.ErrValidation, "history", "prune", "--keep must be >= 0", nil)
			}
			return withHistory(ctx, func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 50, "Number of runs to keep")
	return cmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func renderRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			formatLocal(run.Started),
			run.State.String(),
			runMode(run.Move, run.DryRun),
			fmt.Sprint(run.Total),
			fmt.Sprint(run.Stats.Matched()),
			fmt.Sprint(run.Stats.NoMatch),
			fmt.Sprint(run.Stats.Errors),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "State", "Mode", "Files", "Matched", "No match", "Errors"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderOutcomes(outcomes []history.Outcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		detail := o.Destination
		if o.Error != "" {
			detail = o.Error
		}
		rows = append(rows, []string{filepath.Base(o.Source), o.Kind, displayClient(o.Client), detail})
	}
	return renderTable([]string{"File", "Result", "Client", "Destination"}, rows, nil)
}

func displayClient(stored string) string {
	if strings.TrimSpace(stored) == "" {
		return ""
	}
	c, err := clients.Parse(stored)
	if err != nil {
		return stored
	}
	return clients.DisplayName(c)
}

func runMode(move, dryRun bool) string {
	mode := "copy"
	if move {
		mode = "move"
	}
	if dryRun {
		mode += " (dry run)"
	}
	return mode
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatLocal(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(historyTimeLayout)
}
