package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"clerk/internal/organize"
	"clerk/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Source directory", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Source directory:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Source directory", statusOK, "ok", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderPreflight(t *testing.T) {
	lines := renderPreflight([]preflight.Result{
		{Name: "Source directory", Passed: true, Detail: "/in (read ok)"},
		{Name: "Destination directory", Detail: "/out (error: is not a directory)"},
	}, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	requireContains(t, lines[0], "[OK] /in (read ok)")
	requireContains(t, lines[1], "[ERROR] /out")
}

func TestRenderPreflightAdvisoryIsWarning(t *testing.T) {
	lines := renderPreflight([]preflight.Result{
		{Name: "Destination free space", Advisory: true, Detail: "1 KiB free, up to 2 KiB needed"},
	}, false)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	requireContains(t, lines[0], "[WARN] 1 KiB free")

	var buf bytes.Buffer
	printAdvisories(&buf, []preflight.Result{
		{Name: "Source directory", Passed: true, Detail: "/in (read ok)"},
		{Name: "Destination free space", Advisory: true, Detail: "short"},
	})
	requireContains(t, buf.String(), "[WARN] short")
	requireNotContains(t, buf.String(), "Source directory")
}

func TestConsoleObserverWithoutTerminal(t *testing.T) {
	var out, progress bytes.Buffer
	obs := newConsoleObserver(&out, &progress)

	obs.OnLog("Processing: a.txt", organize.CategoryFile)
	obs.OnProgress(1, 2)
	obs.OnLog("Copied: a.txt → Doe_John/a.txt", organize.CategorySuccess)
	obs.finish()

	if got := out.String(); got != "Processing: a.txt\nCopied: a.txt → Doe_John/a.txt\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if progress.Len() != 0 {
		t.Fatalf("progress bar drawn on a non-terminal: %q", progress.String())
	}
}

func TestRenderSummaryListsCancelled(t *testing.T) {
	summary := organize.Summary{
		State: organize.StateStopped,
		Total: 5,
		Stats: organize.Stats{Filename: 1, Cancelled: 4},
	}
	got := renderSummary(summary)
	requireContains(t, got, "Matched by filename")
	requireContains(t, got, "Cancelled")

	summary.Stats = organize.Stats{NoMatch: 5}
	requireNotContains(t, renderSummary(summary), "Cancelled")
}
