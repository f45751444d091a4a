package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"clerk/internal/faults"
	"clerk/internal/logging"
)

// DefaultMaxBytes caps the text read from one document.
const DefaultMaxBytes = 16 << 20

// Extractor returns the searchable text of a document, or "" when there is
// none.
type Extractor interface {
	Extract(ctx context.Context, path string) string
}

// Func adapts a function to Extractor.
type Func func(ctx context.Context, path string) string

func (f Func) Extract(ctx context.Context, path string) string { return f(ctx, path) }

// Service extracts .txt, .pdf and .docx files.
type Service struct {
	maxBytes int64
	logger   *slog.Logger
}

// New returns a Service reading at most maxBytes of text per document.
func New(maxBytes int64, logger *slog.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{maxBytes: maxBytes, logger: logging.NewComponentLogger(logger, "extract")}
}

// Extract implements Extractor.
func (s *Service) Extract(ctx context.Context, path string) string {
	if ctx.Err() != nil {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(path))
	var (
		text string
		err  error
	)
	switch ext {
	case ".txt":
		text, err = s.readText(path)
	case ".pdf":
		text, err = s.readPDF(path)
	case ".docx":
		text, err = s.readDOCX(path)
	default:
		logging.WithContext(ctx, s.logger).Debug("no extractor for file type", logging.String("extension", ext))
		return ""
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "text extraction failed; matching on filename only", "extraction_failed",
			logging.String(logging.FieldFile, path),
			logging.Error(faults.Wrap(faults.ErrExtraction, "extract", strings.TrimPrefix(ext, "."), "", err)),
			logging.String(logging.FieldErrorHint, "check the file opens in its native application"),
		)
		return ""
	}
	return normalize(text)
}

func normalize(text string) string {
	text = strings.ToValidUTF8(text, " ")
	return norm.NFC.String(strings.ToLower(text))
}

func (s *Service) readText(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return readLimited(file, s.maxBytes)
}

func readLimited(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(data), nil
}
