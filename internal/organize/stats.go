package organize

import (
	"time"

	"clerk/internal/classify"
)

// State is the lifecycle of a Runner.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateCompleted:
		return "COMPLETED"
	case StateStopped:
		return "STOPPED"
	default:
		return "IDLE"
	}
}

// ParseState is the inverse of State.String.
func ParseState(value string) State {
	for _, s := range []State{StateRunning, StateCompleted, StateStopped} {
		if s.String() == value {
			return s
		}
	}
	return StateIdle
}

// Stats counts outcomes by kind for one run.
type Stats struct {
	Filename  int `json:"filename"`
	Content   int `json:"content"`
	NoMatch   int `json:"no_match"`
	Errors    int `json:"errors"`
	Cancelled int `json:"cancelled"`
}

func (s *Stats) add(kind classify.Kind) {
	switch kind {
	case classify.KindFilename:
		s.Filename++
	case classify.KindContent:
		s.Content++
	case classify.KindNoMatch:
		s.NoMatch++
	case classify.KindError:
		s.Errors++
	case classify.KindCancelled:
		s.Cancelled++
	}
}

// Count returns the counter for kind.
func (s Stats) Count(kind classify.Kind) int {
	switch kind {
	case classify.KindFilename:
		return s.Filename
	case classify.KindContent:
		return s.Content
	case classify.KindNoMatch:
		return s.NoMatch
	case classify.KindError:
		return s.Errors
	case classify.KindCancelled:
		return s.Cancelled
	}
	return 0
}

// Matched is the number of files placed in a client folder.
func (s Stats) Matched() int { return s.Filename + s.Content }

// Processed counts files a worker handled; cancelled files are excluded.
func (s Stats) Processed() int { return s.Filename + s.Content + s.NoMatch + s.Errors }

// Summary is the outcome of one Run.
type Summary struct {
	RunID    string
	State    State
	Stats    Stats
	Results  []classify.Result
	Total    int
	DryRun   bool
	Move     bool
	Started  time.Time
	Finished time.Time
}

// Duration is the wall time of the run.
func (s Summary) Duration() time.Duration {
	if s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}
