package organize

import (
	"context"

	"clerk/internal/classify"
)

// Category tags a log line for display.
type Category string

const (
	CategoryInfo    Category = "info"
	CategorySuccess Category = "success"
	CategoryError   Category = "error"
	CategoryFile    Category = "file"
)

// Observer receives human-readable progress. Calls are never concurrent.
type Observer interface {
	OnLog(message string, category Category)
	OnProgress(done, total int)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) OnLog(string, Category) {}
func (NopObserver) OnProgress(int, int)    {}

// ResultSink stores per-file outcomes. The run ID is available from ctx via
// logging.RunIDFromContext. Errors are logged and otherwise ignored.
type ResultSink interface {
	Record(ctx context.Context, res classify.Result) error
}

// RunRecorder is implemented by sinks that also track runs as a whole.
type RunRecorder interface {
	BeginRun(ctx context.Context, summary Summary) error
	EndRun(ctx context.Context, summary Summary) error
}
