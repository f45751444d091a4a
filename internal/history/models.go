package history

import (
	"time"

	"clerk/internal/organize"
)

// Run is one organize invocation.
type Run struct {
	ID       string
	State    organize.State
	DryRun   bool
	Move     bool
	Total    int
	Stats    organize.Stats
	Started  time.Time
	Finished time.Time
}

// Outcome is the recorded result for one file of a run.
type Outcome struct {
	ID          int64
	RunID       string
	Source      string
	Kind        string
	Client      string
	Folder      string
	Destination string
	Error       string
	RecordedAt  time.Time
}
