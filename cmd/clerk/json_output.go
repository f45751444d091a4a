package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"clerk/internal/classify"
	"clerk/internal/history"
	"clerk/internal/organize"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type runView struct {
	RunID    string         `json:"run_id"`
	State    string         `json:"state"`
	DryRun   bool           `json:"dry_run"`
	Move     bool           `json:"move"`
	Total    int            `json:"total"`
	Stats    organize.Stats `json:"stats"`
	Started  time.Time      `json:"started"`
	Finished *time.Time     `json:"finished,omitempty"`
	Files    []fileView     `json:"files,omitempty"`
}

type fileView struct {
	Source      string `json:"source"`
	Result      string `json:"result"`
	Client      string `json:"client,omitempty"`
	Folder      string `json:"folder,omitempty"`
	Destination string `json:"destination,omitempty"`
	Error       string `json:"error,omitempty"`
}

func summaryView(summary organize.Summary) runView {
	view := runView{
		RunID:   summary.RunID,
		State:   summary.State.String(),
		DryRun:  summary.DryRun,
		Move:    summary.Move,
		Total:   summary.Total,
		Stats:   summary.Stats,
		Started: summary.Started,
	}
	if !summary.Finished.IsZero() {
		finished := summary.Finished
		view.Finished = &finished
	}
	view.Files = make([]fileView, 0, len(summary.Results))
	for _, res := range summary.Results {
		view.Files = append(view.Files, resultView(res))
	}
	return view
}

func resultView(res classify.Result) fileView {
	view := fileView{
		Source:      res.Source,
		Result:      res.Kind.String(),
		Folder:      res.Folder,
		Destination: res.Destination,
	}
	if !res.Client.IsZero() {
		view.Client = res.Client.String()
	}
	if res.Err != nil {
		view.Error = res.Err.Error()
	}
	return view
}

func historyView(run history.Run, outcomes []history.Outcome) runView {
	view := runView{
		RunID:   run.ID,
		State:   run.State.String(),
		DryRun:  run.DryRun,
		Move:    run.Move,
		Total:   run.Total,
		Stats:   run.Stats,
		Started: run.Started,
	}
	if !run.Finished.IsZero() {
		finished := run.Finished
		view.Finished = &finished
	}
	for _, o := range outcomes {
		view.Files = append(view.Files, fileView{
			Source:      o.Source,
			Result:      o.Kind,
			Client:      o.Client,
			Folder:      o.Folder,
			Destination: o.Destination,
			Error:       o.Error,
		})
	}
	return view
}
