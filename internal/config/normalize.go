package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrganize()
	c.normalizeMatcher()
	if c.Extract.MaxTextBytes <= 0 {
		c.Extract.MaxTextBytes = defaultMaxTextBytes
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		if value, ok := os.LookupEnv("CLERK_SOURCE_DIR"); ok {
			c.Paths.SourceDir = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.DestDir) == "" {
		if value, ok := os.LookupEnv("CLERK_DEST_DIR"); ok {
			c.Paths.DestDir = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if strings.TrimSpace(c.Paths.ClientsFile) == "" {
		c.Paths.ClientsFile = defaultClientsFile
	}

	fields := []struct {
		key   string
		value *string
	}{
		{"paths.source_dir", &c.Paths.SourceDir},
		{"paths.dest_dir", &c.Paths.DestDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.clients_file", &c.Paths.ClientsFile},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

// NormalizeExtension lowercases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func (c *Config) normalizeOrganize() {
	if c.Organize.Workers < 0 {
		c.Organize.Workers = 0
	}
	exts := make([]string, 0, len(c.Organize.Extensions))
	seen := make(map[string]struct{}, len(c.Organize.Extensions))
	for _, ext := range c.Organize.Extensions {
		normalized := NormalizeExtension(ext)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}
	c.Organize.Extensions = exts

	patterns := make([]string, 0, len(c.Organize.Exclude))
	for _, pattern := range c.Organize.Exclude {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	c.Organize.Exclude = patterns
}

func (c *Config) normalizeMatcher() {
	c.Matcher.Mode = strings.ToLower(strings.TrimSpace(c.Matcher.Mode))
	if c.Matcher.Mode == "" {
		c.Matcher.Mode = defaultMatcherMode
	}
	if c.Matcher.IndexThreshold <= 0 {
		c.Matcher.IndexThreshold = defaultIndexThreshold
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
