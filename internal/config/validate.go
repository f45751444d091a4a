package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"clerk/internal/faults"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if c.Extract.MaxTextBytes <= 0 {
		return errors.New("extract.max_text_bytes must be positive")
	}
	return c.validateLogging()
}

func (c *Config) validateOrganize() error {
	if c.Organize.Workers < 0 {
		return errors.New("organize.workers must be >= 0 (0 uses every CPU)")
	}
	if len(c.Organize.Extensions) == 0 {
		return errors.New("organize.extensions must include at least one extension")
	}
	for _, ext := range c.Organize.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("organize.extensions: invalid extension %q", ext)
		}
	}
	for _, pattern := range c.Organize.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("organize.exclude: invalid glob %q", pattern)
		}
	}
	return nil
}

func (c *Config) validateMatcher() error {
	switch c.Matcher.Mode {
	case "auto", "index", "scan":
	default:
		return fmt.Errorf("matcher.mode must be one of auto, index, scan (got %q)", c.Matcher.Mode)
	}
	if c.Matcher.IndexThreshold < 1 {
		return errors.New("matcher.index_threshold must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}

// ValidateRun checks the source and destination before an organize run.
// Every failure is a configuration error: nothing has been touched yet.
func (c *Config) ValidateRun() error {
	source := strings.TrimSpace(c.Paths.SourceDir)
	dest := strings.TrimSpace(c.Paths.DestDir)
	if source == "" {
		return configError("paths.source_dir is required (flag --source or CLERK_SOURCE_DIR)")
	}
	if dest == "" {
		return configError("paths.dest_dir is required (flag --dest or CLERK_DEST_DIR)")
	}

	info, err := os.Stat(source)
	if err != nil {
		return faults.Wrap(faults.ErrConfiguration, "config", "validate run", "source directory is not accessible", err)
	}
	if !info.IsDir() {
		return configError(fmt.Sprintf("source %q is not a directory", source))
	}
	if info, err := os.Stat(dest); err == nil && !info.IsDir() {
		return configError(fmt.Sprintf("destination %q exists and is not a directory", dest))
	}

	if samePath(source, dest) {
		return configError("destination directory must differ from the source directory")
	}
	return nil
}

func configError(message string) error {
	return faults.Wrap(faults.ErrConfiguration, "config", "validate run", message, nil)
}

// samePath compares two paths after resolving symlinks where possible.
func samePath(a, b string) bool {
	return canonical(a) == canonical(b)
}

func canonical(path string) string {
	cleaned := filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(cleaned); err == nil {
		return resolved
	}
	return cleaned
}
