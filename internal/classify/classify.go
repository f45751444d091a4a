package classify

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"clerk/internal/clients"
	"clerk/internal/extract"
	"clerk/internal/faults"
	"clerk/internal/fileutil"
	"clerk/internal/logging"
	"clerk/internal/matcher"
	"clerk/internal/textutil"
)

// Options configures a Classifier.
type Options struct {
	Matcher *matcher.Matcher
	// Folders maps every client the matcher knows to its folder name.
	Folders   map[clients.Client]string
	DestRoot  string
	Move      bool
	DryRun    bool
	Extractor extract.Extractor
	Logger    *slog.Logger
}

// Classifier is safe for concurrent use by the workers of one run.
type Classifier struct {
	matcher   *matcher.Matcher
	folders   map[clients.Client]string
	destRoot  string
	move      bool
	dryRun    bool
	extractor extract.Extractor
	logger    *slog.Logger
	ledger    *ledger
}

// New builds a Classifier. A nil Matcher matches nothing.
func New(opts Options) *Classifier {
	m := opts.Matcher
	if m == nil {
		m = matcher.New(nil)
	}
	return &Classifier{
		matcher:   m,
		folders:   opts.Folders,
		destRoot:  opts.DestRoot,
		move:      opts.Move,
		dryRun:    opts.DryRun,
		extractor: opts.Extractor,
		logger:    logging.NewComponentLogger(opts.Logger, "classify"),
		ledger:    newLedger(),
	}
}

// DryRun reports whether placement is simulated.
func (c *Classifier) DryRun() bool { return c.dryRun }

// Moves reports whether matched files are moved rather than copied.
func (c *Classifier) Moves() bool { return c.move }

// Match decides the client for path without touching the destination.
func (c *Classifier) Match(ctx context.Context, path string) (clients.Client, Kind) {
	stem, _ := textutil.SplitName(path)
	if client, ok := c.matcher.FindMatch(stem); ok {
		return client, KindFilename
	}
	if c.extractor == nil {
		return clients.Client{}, KindNoMatch
	}
	text := c.extractor.Extract(ctx, path)
	if text == "" {
		return clients.Client{}, KindNoMatch
	}
	if client, ok := c.matcher.FindMatch(text); ok {
		return client, KindContent
	}
	return clients.Client{}, KindNoMatch
}

// Classify matches path and, on a match, copies or moves it into the
// client's folder. Failures are reported in the Result, never returned.
func (c *Classifier) Classify(ctx context.Context, path string) Result {
	res := Result{Source: path}
	logger := logging.WithContext(logging.WithFile(ctx, filepath.Base(path)), c.logger)

	client, kind := c.Match(ctx, path)
	res.Kind = kind
	if !kind.Matched() {
		logger.Debug("no client matched")
		return res
	}
	res.Client = client
	res.Folder = c.folderFor(client)

	dest, err := c.place(path, res.Folder)
	if err != nil {
		res.Kind = KindError
		res.Err = err
		logger.Debug("placement failed", logging.String("folder", res.Folder), logging.Error(err))
		return res
	}
	res.Destination = dest
	logger.Debug("file classified",
		logging.String("kind", kind.String()),
		logging.String("client", client.String()),
		logging.String("destination", dest),
		logging.Bool("dry_run", c.dryRun),
	)
	return res
}

func (c *Classifier) folderFor(client clients.Client) string {
	if folder, ok := c.folders[client]; ok && folder != "" {
		return folder
	}
	return clients.BaseFolderName(client)
}

func (c *Classifier) place(src, folder string) (string, error) {
	dir := filepath.Join(c.destRoot, folder)
	if !c.dryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", faults.Wrap(faults.ErrFileOperation, "classify", "create folder", folder, err)
		}
	}
	dest, err := c.ledger.reserve(dir, filepath.Base(src), !c.dryRun)
	if err != nil {
		return "", faults.Wrap(faults.ErrFileOperation, "classify", "reserve destination", folder, err)
	}
	if c.dryRun {
		return dest, nil
	}

	op := "copy"
	if c.move {
		op = "move"
		err = fileutil.MoveFile(src, dest)
	} else {
		err = fileutil.CopyFile(src, dest)
	}
	if err != nil {
		if rmErr := os.Remove(dest); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			logging.WarnWithContext(c.logger, "placeholder cleanup failed", "placeholder_cleanup_failed",
				logging.String("destination", dest),
				logging.Error(rmErr),
				logging.String(logging.FieldErrorHint, "remove the empty file by hand"),
			)
		}
		c.ledger.release(dest)
		return "", faults.Wrap(faults.ErrFileOperation, "classify", op, filepath.Base(src), err)
	}
	return dest, nil
}
