package preflight

import (
	"strings"

	"clerk/internal/config"
	"clerk/internal/faults"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Advisory failures are reported but do not block a run.
	Advisory bool
}

// Blocking reports whether r should stop a run.
func (r Result) Blocking() bool {
	return !r.Passed && !r.Advisory
}

// RunAll checks the source and destination named by cfg. required is an
// upper bound on the bytes the run will write into the destination; zero
// skips the free-space comparison but still reports what is available. A
// shortfall is advisory since unmatched files are never written.
func RunAll(cfg *config.Config, required uint64) []Result {
	if cfg == nil {
		return nil
	}
	sourceMode := Read
	if cfg.Organize.Move && !cfg.Organize.DryRun {
		sourceMode = ReadWrite
	}
	results := []Result{
		CheckDirectoryAccess("Source directory", cfg.Paths.SourceDir, sourceMode),
		CheckCreatable("Destination directory", cfg.Paths.DestDir),
	}
	if !cfg.Organize.DryRun {
		results = append(results, CheckFreeSpace("Destination free space", cfg.Paths.DestDir, required))
	}
	return results
}

// Err folds failed results into one configuration error, or returns nil.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if r.Blocking() {
			failed = append(failed, r.Name+": "+r.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return faults.Wrap(faults.ErrConfiguration, "preflight", "", strings.Join(failed, "; "), nil)
}
