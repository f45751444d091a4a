// Package watch organizes documents as they arrive in the source directory.
//
// Filesystem events are collected until the tree has been quiet for the
// debounce interval, then the accepted files are handed to the batch
// handler in sorted order. A file is handed out again only if its size or
// modification time changed since it was last seen.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"clerk/internal/discover"
	"clerk/internal/logging"
)

// DefaultDebounce is the quiet period before a batch is released.
const DefaultDebounce = 2 * time.Second

// Handler processes one batch. It runs on the watcher goroutine, so events
// arriving meanwhile are buffered until it returns.
type Handler func(ctx context.Context, files []string)

// Options configures a Watcher.
type Options struct {
	Filter   *discover.Filter
	Debounce time.Duration
	// Initial hands the files already present to the handler before any
	// event is seen.
	Initial bool
	Handle  Handler
	Logger  *slog.Logger
}

// Watcher follows one source tree.
type Watcher struct {
	filter   *discover.Filter
	debounce time.Duration
	initial  bool
	handle   Handler
	logger   *slog.Logger
	seen     map[string]stamp
}

type stamp struct {
	size    int64
	modTime time.Time
}

// New validates opts.
func New(opts Options) (*Watcher, error) {
	if opts.Filter == nil {
		return nil, errors.New("watch: filter is required")
	}
	if opts.Handle == nil {
		return nil, errors.New("watch: handler is required")
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		filter:   opts.Filter,
		debounce: debounce,
		initial:  opts.Initial,
		handle:   opts.Handle,
		logger:   logging.NewComponentLogger(opts.Logger, "watch"),
		seen:     make(map[string]stamp),
	}, nil
}

// Run watches until ctx ends. Pending events are dropped on shutdown.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	pending := make(map[string]struct{})
	if err := w.addTree(fsw, w.filter.Root(), nil); err != nil {
		return err
	}
	w.logger.Info("watching source directory",
		logging.String("root", w.filter.Root()),
		logging.Duration("debounce", w.debounce),
	)

	if w.initial {
		files, err := w.filter.Walk()
		if err != nil {
			return err
		}
		for _, f := range files {
			pending[f] = struct{}{}
		}
		w.flush(ctx, pending)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(fsw, ev, pending) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "watch error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "raise fs.inotify.max_user_watches if the tree is large"),
			)
		case <-timer.C:
			w.flush(ctx, pending)
		}
	}
}

// handleEvent records interesting paths and reports whether the debounce
// timer should restart.
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event, pending map[string]struct{}) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if !ev.Has(fsnotify.Create) || w.filter.SkipDir(ev.Name) {
			return false
		}
		before := len(pending)
		if err := w.addTree(fsw, ev.Name, pending); err != nil {
			w.logger.Debug("watch new directory failed", logging.String("dir", ev.Name), logging.Error(err))
		}
		return len(pending) > before
	}
	if !info.Mode().IsRegular() || !w.filter.Accept(ev.Name) {
		return false
	}
	pending[ev.Name] = struct{}{}
	return true
}

// addTree watches dir and every directory below it the filter does not
// skip. Accepted files found on the way are added to pending when it is
// non-nil, covering directories moved in whole.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string, pending map[string]struct{}) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if w.filter.SkipDir(path) {
				return filepath.SkipDir
			}
			if err := fsw.Add(path); err != nil {
				w.logger.Debug("watch directory failed", logging.String("dir", path), logging.Error(err))
			}
			return nil
		}
		if pending != nil && d.Type().IsRegular() && w.filter.Accept(path) {
			pending[path] = struct{}{}
		}
		return nil
	})
}

// flush hands changed files to the handler and empties pending.
func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	batch := make([]string, 0, len(pending))
	for path := range pending {
		delete(pending, path)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		st := stamp{size: info.Size(), modTime: info.ModTime()}
		if prev, ok := w.seen[path]; ok && prev == st {
			continue
		}
		w.seen[path] = st
		batch = append(batch, path)
	}
	if len(batch) == 0 {
		return
	}
	sort.Strings(batch)
	w.logger.Info("batch ready", logging.Int("files", len(batch)))
	w.handle(ctx, batch)
}
