package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"clerk/internal/logging"
)

const (
	keyPrefix      = "client_"
	lockTimeout    = 10 * time.Second
	lockRetryDelay = 50 * time.Millisecond
)

// fileDocument is the on-disk shape: a single [clients] table.
type fileDocument struct {
	Clients map[string]string `toml:"clients"`
}

// LoadFile reads the registry stored at path. A missing file yields an
// empty registry. Entries that fail to parse or repeat an earlier client are
// skipped with a warning.
func LoadFile(path string, logger *slog.Logger) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("read clients file: %w", err)
	}
	return decode(data, path, logger)
}

func decode(data []byte, path string, logger *slog.Logger) (*Registry, error) {
	var doc fileDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse clients file %s: %w", path, err)
	}

	keys := make([]string, 0, len(doc.Clients))
	for key := range doc.Clients {
		keys = append(keys, key)
	}
	sortKeys(keys)

	logger = logging.NewComponentLogger(logger, "clients")
	reg := NewRegistry()
	for _, key := range keys {
		raw := doc.Clients[key]
		if _, err := reg.Add(raw); err != nil {
			logging.WarnWithContext(logger, "client entry skipped", "client_entry_skipped",
				logging.String("path", path),
				logging.String("key", key),
				logging.String("value", raw),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix or remove the entry in the clients file"),
			)
		}
	}
	return reg, nil
}

// sortKeys orders client_N keys by N; other keys follow in lexical order.
func sortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ni, iok := keyNumber(keys[i])
		nj, jok := keyNumber(keys[j])
		switch {
		case iok && jok:
			if ni != nj {
				return ni < nj
			}
			return keys[i] < keys[j]
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
}

func keyNumber(key string) (int, bool) {
	suffix, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}

func encode(reg *Registry) ([]byte, error) {
	list := reg.Clients()
	doc := fileDocument{Clients: make(map[string]string, len(list))}
	for i, c := range list {
		doc.Clients[fmt.Sprintf("%s%03d", keyPrefix, i+1)] = c.String()
	}

	var buf bytes.Buffer
	buf.WriteString("# clerk client registry. Values are \"first last\" or \"first middle last\".\n")
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode clients: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveFile rewrites path with the contents of reg while holding the clients
// file lock.
func SaveFile(path string, reg *Registry) error {
	unlock, err := lockFile(path)
	if err != nil {
		return err
	}
	defer unlock()
	return writeFile(path, reg)
}

// Update loads the registry, applies fn, and saves the result, holding the
// clients file lock for the whole cycle so concurrent invocations never lose
// each other's changes. The file is not rewritten when fn fails.
func Update(path string, logger *slog.Logger, fn func(*Registry) error) (*Registry, error) {
	unlock, err := lockFile(path)
	if err != nil {
		return nil, err
	}
	defer unlock()

	reg, err := LoadFile(path, logger)
	if err != nil {
		return nil, err
	}
	if err := fn(reg); err != nil {
		return reg, err
	}
	if err := writeFile(path, reg); err != nil {
		return reg, err
	}
	return reg, nil
}

func lockFile(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create clients directory: %w", err)
	}
	lock := flock.New(path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock clients file: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("lock clients file: held by another clerk process")
	}
	return func() { _ = lock.Unlock() }, nil
}

// writeFile replaces path atomically through a temp file in the same directory.
func writeFile(path string, reg *Registry) error {
	data, err := encode(reg)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp clients file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write clients file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync clients file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close clients file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod clients file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace clients file: %w", err)
	}
	return nil
}
