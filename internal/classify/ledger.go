package classify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"

	"clerk/internal/textutil"
)

const (
	ledgerStripes = 64
	maxSlots      = 10000
)

// ledger hands out destination paths. Resolution is serialised per folder
// through a striped lock; claims made during a run are remembered so a dry
// run, which never creates anything, still sees earlier decisions.
type ledger struct {
	stripes [ledgerStripes]sync.Mutex

	mu      sync.Mutex
	claimed map[string]struct{}
}

func newLedger() *ledger {
	return &ledger{claimed: make(map[string]struct{})}
}

func (l *ledger) stripe(dir string) *sync.Mutex {
	return &l.stripes[xxhash.Sum64String(filepath.Clean(dir))%ledgerStripes]
}

// reserve returns the first free name among name, stem_1.ext, stem_2.ext,
// and so on. With create set the slot is claimed by creating an empty
// placeholder that the caller must fill or remove.
func (l *ledger) reserve(dir, name string, create bool) (string, error) {
	mu := l.stripe(dir)
	mu.Lock()
	defer mu.Unlock()

	stem, ext := textutil.SplitName(name)
	for n := 0; n < maxSlots; n++ {
		candidate := name
		if n > 0 {
			candidate = textutil.NumberedName(stem, ext, n)
		}
		path := filepath.Join(dir, candidate)
		if l.isClaimed(path) {
			continue
		}
		if !create {
			_, err := os.Lstat(path)
			if err == nil {
				continue
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", err
			}
			l.claim(path)
			return path, nil
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", err
		}
		l.claim(path)
		return path, nil
	}
	return "", fmt.Errorf("no free name for %s in %s after %d attempts", name, dir, maxSlots)
}

func (l *ledger) isClaimed(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.claimed[path]
	return ok
}

func (l *ledger) claim(path string) {
	l.mu.Lock()
	l.claimed[path] = struct{}{}
	l.mu.Unlock()
}

func (l *ledger) release(path string) {
	l.mu.Lock()
	delete(l.claimed, path)
	l.mu.Unlock()
}
