// Package discover finds the documents an organize run will classify.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Options narrows which files are returned.
type Options struct {
	// Extensions lists accepted extensions with their leading dot,
	// compared case-insensitively.
	Extensions []string
	// Exclude holds doublestar globs matched against slash-separated paths
	// relative to the root. A matching directory is not descended into.
	Exclude []string
	// SkipDirs are directories never descended into, typically the
	// destination when it lives inside the source.
	SkipDirs []string
}

// Filter applies Options to paths under one root.
type Filter struct {
	root       string
	extensions map[string]struct{}
	exclude    []string
	skipDirs   map[string]struct{}
}

// NewFilter validates the exclude globs and prepares a Filter for root.
func NewFilter(root string, opts Options) (*Filter, error) {
	f := &Filter{
		root:       filepath.Clean(root),
		extensions: make(map[string]struct{}, len(opts.Extensions)),
		skipDirs:   make(map[string]struct{}, len(opts.SkipDirs)),
	}
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" {
			f.extensions[ext] = struct{}{}
		}
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude glob %q", pattern)
		}
		f.exclude = append(f.exclude, pattern)
	}
	for _, dir := range opts.SkipDirs {
		if strings.TrimSpace(dir) != "" {
			f.skipDirs[filepath.Clean(dir)] = struct{}{}
		}
	}
	return f, nil
}

// Root returns the directory the filter is relative to.
func (f *Filter) Root() string {
	return f.root
}

// SkipDir reports whether the walk should not descend into dir.
func (f *Filter) SkipDir(dir string) bool {
	dir = filepath.Clean(dir)
	if dir == f.root {
		return false
	}
	if _, ok := f.skipDirs[dir]; ok {
		return true
	}
	return f.excluded(dir)
}

// Accept reports whether the file at path is a supported, non-excluded
// document. It does not touch the filesystem.
func (f *Filter) Accept(path string) bool {
	if _, ok := f.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
		return false
	}
	for dir := filepath.Dir(filepath.Clean(path)); dir != f.root && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		if _, ok := f.skipDirs[dir]; ok {
			return false
		}
	}
	return !f.excluded(path)
}

func (f *Filter) excluded(path string) bool {
	if len(f.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range f.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Discover returns every accepted regular file under root, sorted. Entries
// that cannot be read are skipped; only an unreadable root is an error.
func Discover(root string, opts Options) ([]string, error) {
	filter, err := NewFilter(root, opts)
	if err != nil {
		return nil, err
	}
	return filter.Walk()
}

// Walk runs the filter over its root.
func (f *Filter) Walk() ([]string, error) {
	info, err := os.Stat(f.root)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source directory: %s is not a directory", f.root)
	}

	var files []string
	err = filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == f.root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if f.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if f.Accept(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipDir) {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
