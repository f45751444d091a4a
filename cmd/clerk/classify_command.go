package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clerk/internal/classify"
	"clerk/internal/clients"
	"clerk/internal/config"
	"clerk/internal/faults"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "classify <file>...",
		Short: "Show which client each file belongs to without moving anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			cfg.Organize.DryRun = true

			logger, err := ctx.logger(cmd, &cfg, true)
			if err != nil {
				return err
			}
			reg, err := ctx.loadRegistry(&cfg, logger)
			if err != nil {
				return err
			}
			classifier, err := newClassifier(&cfg, reg, logger)
			if err != nil {
				return err
			}

			views := make([]fileView, 0, len(args))
			for _, arg := range args {
				views = append(views, classifyPath(cmd, classifier, arg))
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderClassifications(views, reg))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the decisions as JSON")
	return cmd
}

func classifyPath(cmd *cobra.Command, classifier *classify.Classifier, arg string) fileView {
	path, err := config.ExpandPath(arg)
	if err != nil {
		return fileView{Source: arg, Result: classify.KindError.String(), Error: err.Error()}
	}
	if err := requireRegularFile(path); err != nil {
		return fileView{Source: path, Result: classify.KindError.String(), Error: err.Error()}
	}
	return resultView(classifier.Classify(cmd.Context(), path))
}

func requireRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return faults.Wrap(faults.ErrFileOperation, "cli", "stat", "cannot read file", err)
	}
	if !info.Mode().IsRegular() {
		return faults.Wrap(faults.ErrValidation, "cli", "stat", "not a regular file", nil)
	}
	return nil
}

func renderClassifications(views []fileView, reg *clients.Registry) string {
	display := make(map[string]string, reg.Len())
	for _, c := range reg.Clients() {
		display[c.String()] = clients.DisplayName(c)
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		client := display[v.Client]
		detail := v.Destination
		if v.Error != "" {
			detail = v.Error
		}
		rows = append(rows, []string{v.Source, v.Result, client, detail})
	}
	return renderTable([]string{"File", "Result", "Client", "Destination"}, rows, nil)
}
