package main

import (
	"encoding/json"
	"errors"
	"testing"

	"clerk/internal/history"
	"clerk/internal/testsupport"
)

func organizeOnce(t *testing.T, env *cliTestEnv) runView {
	t.Helper()
	out, _, err := env.run(t, "organize", "--json")
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	var view runView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	return view
}

func TestHistoryListAndShow(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithClients("John Doe", "Jane Marie Smith"))

	out, _, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	seedInbox(t, env)
	first := organizeOnce(t, env)
	second := organizeOnce(t, env)

	out, _, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, shortID(first.RunID))
	requireContains(t, out, shortID(second.RunID))
	requireContains(t, out, "COMPLETED")

	out, _, err = env.run(t, "history", "--limit", "1", "--json")
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var runs []runView
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != second.RunID {
		t.Fatalf("expected newest run only, got %+v", runs)
	}
	if runs[0].Stats.Filename != 1 || runs[0].Stats.Content != 1 || runs[0].Stats.NoMatch != 1 {
		t.Fatalf("unexpected stored stats: %+v", runs[0].Stats)
	}

	out, _, err = env.run(t, "history", "show", first.RunID[:8])
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Run:      "+first.RunID)
	requireContains(t, out, "contract_john_doe.txt")
	requireContains(t, out, "Jane Marie Smith")
	requireContains(t, out, "NO_MATCH")

	out, _, err = env.run(t, "history", "show", second.RunID, "--json")
	if err != nil {
		t.Fatalf("history show --json: %v", err)
	}
	var shown runView
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if len(shown.Files) != 3 {
		t.Fatalf("expected 3 outcomes, got %+v", shown.Files)
	}
}

func TestHistoryShowUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := env.run(t, "history", "show", "deadbeef")
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryPrune(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithClients("John Doe"))
	testsupport.WriteText(t, env.cfg.Paths.SourceDir, "john_doe.txt", "x")
	organizeOnce(t, env)
	organizeOnce(t, env)
	latest := organizeOnce(t, env)

	out, _, err := env.run(t, "history", "prune", "--keep", "1")
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Removed 2 runs")

	out, _, err = env.run(t, "history", "--json")
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var runs []runView
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != latest.RunID {
		t.Fatalf("expected only the latest run, got %+v", runs)
	}
}
