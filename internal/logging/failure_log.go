package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"clerk/internal/faults"
)

// FailureLog appends one JSON line per failed document. It is kept apart
// from the main log so operators can re-run exactly the files that failed.
type FailureLog struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	file *os.File
}

// NewFailureLog opens (or creates) the failure log at path in append mode.
func NewFailureLog(path string) (*FailureLog, error) {
	file, err := openLogFile(path)
	if err != nil {
		return nil, err
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelError)
	return &FailureLog{
		path:   path,
		logger: slog.New(newJSONHandler(file, levelVar, false)),
		file:   file,
	}, nil
}

// Path reports where failures are written.
func (f *FailureLog) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Record writes a failure entry for source. A nil FailureLog discards it.
func (f *FailureLog) Record(ctx context.Context, source string, err error) {
	if f == nil {
		return
	}
	attrs := []Attr{String(FieldFile, source), Error(err)}
	if kind := faults.Kind(err); kind != "" {
		attrs = append(attrs, String(FieldErrorKind, kind))
	}
	if id, ok := RunIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldRunID, id))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logger.Error("file failed", Args(attrs...)...)
}

// Close releases the underlying file.
func (f *FailureLog) Close() error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
