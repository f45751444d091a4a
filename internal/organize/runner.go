package organize

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clerk/internal/classify"
	"clerk/internal/faults"
	"clerk/internal/logging"
)

// Options configures a Runner.
type Options struct {
	Classifier *classify.Classifier
	// Workers bounds concurrent files; 0 means one per CPU.
	Workers    int
	Observer   Observer
	Sink       ResultSink
	Logger     *slog.Logger
	FailureLog *logging.FailureLog
}

// Runner dispatches files to the classifier. Runs on one Runner are
// serialised; Pause, Resume and State may be called from any goroutine.
type Runner struct {
	classifier *classify.Classifier
	workers    int
	observer   Observer
	sink       ResultSink
	logger     *slog.Logger
	failures   *logging.FailureLog

	runMu sync.Mutex

	mu       sync.Mutex
	state    State
	paused   bool
	resumeCh chan struct{}
}

// New builds a Runner in StateIdle.
func New(opts Options) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	return &Runner{
		classifier: opts.Classifier,
		workers:    workers,
		observer:   observer,
		sink:       opts.Sink,
		logger:     logging.NewComponentLogger(opts.Logger, "organize"),
		failures:   opts.FailureLog,
	}
}

// Workers returns the effective pool size.
func (r *Runner) Workers() int { return r.workers }

// State returns the lifecycle state of the current or last run.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Pause stops new files from being dispatched. Files already with a worker
// finish normally.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused {
		return
	}
	r.paused = true
	r.resumeCh = make(chan struct{})
	r.logger.Info("dispatch paused")
}

// Resume undoes Pause.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.paused {
		return
	}
	r.paused = false
	close(r.resumeCh)
	r.logger.Info("dispatch resumed")
}

// Paused reports whether dispatch is paused.
func (r *Runner) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// waitWhilePaused blocks until dispatch may continue. It returns false when
// ctx ends first.
func (r *Runner) waitWhilePaused(ctx context.Context) bool {
	for {
		r.mu.Lock()
		if !r.paused {
			r.mu.Unlock()
			return ctx.Err() == nil
		}
		ch := r.resumeCh
		r.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return false
		}
	}
}

// event is one unit of observer traffic. done is closed once the reporter
// has delivered it.
type event struct {
	message  string
	category Category
	result   *classify.Result
	done     chan struct{}
}

// Run classifies files and returns when every dispatched file has finished.
// Cancelling ctx stops dispatch; it does not interrupt files in flight.
func (r *Runner) Run(ctx context.Context, files []string) Summary {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	summary := Summary{
		RunID:   uuid.NewString(),
		Total:   len(files),
		Started: time.Now(),
		Results: make([]classify.Result, len(files)),
	}
	if r.classifier != nil {
		summary.DryRun = r.classifier.DryRun()
		summary.Move = r.classifier.Moves()
	}
	ctx = logging.WithRunID(ctx, summary.RunID)
	// Workers and the sink outlive a cancellation so in-flight files finish
	// and their outcomes are recorded.
	workCtx := context.WithoutCancel(ctx)
	logger := logging.WithContext(ctx, r.logger)

	r.setState(StateRunning)
	summary.State = StateRunning
	r.beginRun(workCtx, summary)
	logger.Info("organize run started",
		logging.Int("files", len(files)),
		logging.Int("workers", r.workers),
		logging.Bool("dry_run", summary.DryRun),
		logging.Bool("move", summary.Move),
	)

	events := make(chan event, r.workers)
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		r.report(workCtx, events, &summary)
	}()

	emit := func(message string, category Category) {
		events <- event{message: message, category: category}
	}

	if len(files) == 0 {
		emit("No supported files found in source directory", CategoryError)
	} else {
		emit(fmt.Sprintf("Found %d files to process", len(files)), CategoryInfo)
	}

	dispatched := r.dispatch(ctx, workCtx, files, summary.Results, events)

	for i := dispatched; i < len(files); i++ {
		summary.Results[i] = classify.Result{Kind: classify.KindCancelled, Source: files[i]}
	}
	stopped := dispatched < len(files)
	if stopped {
		emit("Processing stopped by user", CategoryError)
	}
	close(events)
	<-reporterDone

	summary.Stats.Cancelled = len(files) - dispatched
	summary.State = StateCompleted
	if stopped {
		summary.State = StateStopped
	} else if len(files) > 0 {
		s := summary.Stats
		r.observer.OnLog(fmt.Sprintf("Processing complete: %d matched (%d by filename, %d by content), %d unmatched, %d errors",
			s.Matched(), s.Filename, s.Content, s.NoMatch, s.Errors), CategorySuccess)
	}
	summary.Finished = time.Now()
	r.setState(summary.State)
	r.endRun(workCtx, summary)

	logger.Info("organize run finished",
		logging.String("state", summary.State.String()),
		logging.Int("filename", summary.Stats.Filename),
		logging.Int("content", summary.Stats.Content),
		logging.Int("no_match", summary.Stats.NoMatch),
		logging.Int("errors", summary.Stats.Errors),
		logging.Int("cancelled", summary.Stats.Cancelled),
		logging.Duration("duration", summary.Duration()),
	)
	return summary
}

// dispatch hands files to workers in order and returns how many were handed
// out. A slot is freed only after the reporter delivered the file's
// progress, so a cancel issued from OnProgress is seen before the next file.
func (r *Runner) dispatch(ctx, workCtx context.Context, files []string, results []classify.Result, events chan<- event) int {
	var g errgroup.Group
	slots := make(chan struct{}, r.workers)

	next := 0
	for ; next < len(files); next++ {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil || !r.waitWhilePaused(ctx) {
			break
		}
		i := next
		events <- event{message: "Processing: " + filepath.Base(files[i]), category: CategoryFile}
		g.Go(func() error {
			defer func() { <-slots }()
			res := r.classifyOne(workCtx, files[i])
			results[i] = res
			done := make(chan struct{})
			events <- event{result: &res, done: done}
			<-done
			return nil
		})
	}
	_ = g.Wait()
	return next
}

func (r *Runner) classifyOne(ctx context.Context, path string) (res classify.Result) {
	defer func() {
		if p := recover(); p != nil {
			res = classify.Result{
				Kind:   classify.KindError,
				Source: path,
				Err:    faults.Wrap(faults.ErrFileOperation, "organize", "classify", fmt.Sprintf("panic: %v", p), nil),
			}
		}
	}()
	if r.classifier == nil {
		return classify.Result{Kind: classify.KindNoMatch, Source: path}
	}
	return r.classifier.Classify(ctx, path)
}

// report is the only goroutine that calls the observer or the sink.
func (r *Runner) report(ctx context.Context, events <-chan event, summary *Summary) {
	done := 0
	for ev := range events {
		if ev.result == nil {
			r.observer.OnLog(ev.message, ev.category)
			continue
		}
		res := *ev.result
		summary.Stats.add(res.Kind)
		message, category := describe(res, summary.DryRun, summary.Move)
		r.observer.OnLog(message, category)
		if res.Kind == classify.KindError {
			r.recordFailure(ctx, res)
		}
		r.record(ctx, res)
		done++
		r.observer.OnProgress(done, summary.Total)
		close(ev.done)
	}
}

func describe(res classify.Result, dryRun, move bool) (string, Category) {
	name := res.Name()
	switch res.Kind {
	case classify.KindFilename, classify.KindContent:
		verb := "Copied"
		switch {
		case dryRun && move:
			verb = "Would move"
		case dryRun:
			verb = "Would copy"
		case move:
			verb = "Moved"
		}
		return fmt.Sprintf("%s: %s → %s/%s", verb, name, res.Folder, res.DestinationName()), CategorySuccess
	case classify.KindError:
		return fmt.Sprintf("Error processing %s: %v", name, res.Err), CategoryError
	default:
		return "No match: " + name, CategoryInfo
	}
}

func (r *Runner) recordFailure(ctx context.Context, res classify.Result) {
	r.failures.Record(ctx, res.Source, res.Err)
	logging.WarnWithContext(logging.WithContext(ctx, r.logger), "file failed", "file_failed",
		logging.String(logging.FieldFile, res.Source),
		logging.String(logging.FieldErrorKind, faults.Kind(res.Err)),
		logging.Error(res.Err),
		logging.String(logging.FieldErrorHint, "check permissions on the source and destination"),
	)
}

func (r *Runner) record(ctx context.Context, res classify.Result) {
	if r.sink == nil {
		return
	}
	if err := r.sink.Record(ctx, res); err != nil {
		logging.WarnWithContext(r.logger, "result not recorded", "history_record_failed",
			logging.String(logging.FieldFile, res.Source),
			logging.Error(err),
		)
	}
}

func (r *Runner) beginRun(ctx context.Context, summary Summary) {
	rec, ok := r.sink.(RunRecorder)
	if !ok {
		return
	}
	if err := rec.BeginRun(ctx, summary); err != nil {
		logging.WarnWithContext(r.logger, "run not recorded", "history_record_failed", logging.Error(err))
	}
}

func (r *Runner) endRun(ctx context.Context, summary Summary) {
	rec, ok := r.sink.(RunRecorder)
	if !ok {
		return
	}
	if err := rec.EndRun(ctx, summary); err != nil {
		logging.WarnWithContext(r.logger, "run not recorded", "history_record_failed", logging.Error(err))
	}
}
