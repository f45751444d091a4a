package clients

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clerk/internal/logging"
)

func TestLoadFileMissingReturnsEmpty(t *testing.T) {
	reg, err := LoadFile(filepath.Join(t.TempDir(), "clients.toml"), logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "clients.toml")
	reg := NewRegistry(MustParse("john doe"), MustParse("jane marie smith"))

	require.NoError(t, SaveFile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[clients]")
	assert.Regexp(t, `client_001 = ['"]john doe['"]`, string(data))
	assert.Regexp(t, `client_002 = ['"]jane marie smith['"]`, string(data))

	loaded, err := LoadFile(path, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, reg.Clients(), loaded.Clients())
}

func TestLoadFileOrdersKeysNumerically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.toml")
	content := strings.Join([]string{
		"[clients]",
		`client_10 = "zed ten"`,
		`client_2 = "amy two"`,
		`client_001 = "bob one"`,
		`extra = "carl extra"`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := LoadFile(path, logging.NewNop())
	require.NoError(t, err)
	var got []string
	for _, c := range reg.Clients() {
		got = append(got, c.String())
	}
	assert.Equal(t, []string{"bob one", "amy two", "zed ten", "carl extra"}, got)
}

func TestLoadFileSkipsInvalidAndDuplicateEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.toml")
	content := strings.Join([]string{
		"[clients]",
		`client_001 = "John Doe"`,
		`client_002 = "Madonna"`,
		`client_003 = "john   doe"`,
		`client_004 = "Jane Marie Smith"`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	reg, err := LoadFile(path, logger)
	require.NoError(t, err)

	assert.Equal(t, []Client{MustParse("john doe"), MustParse("jane marie smith")}, reg.Clients())
	assert.Equal(t, 2, strings.Count(buf.String(), "client entry skipped"))
	assert.Contains(t, buf.String(), `"key":"client_002"`)
}

func TestLoadFileRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.toml")
	require.NoError(t, os.WriteFile(path, []byte("[clients\nclient_001 = "), 0o644))
	_, err := LoadFile(path, logging.NewNop())
	require.Error(t, err)
}

func TestUpdateSkipsWriteOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.toml")
	require.NoError(t, SaveFile(path, NewRegistry(MustParse("john doe"))))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = Update(path, logging.NewNop(), func(reg *Registry) error {
		reg.Remove(MustParse("john doe"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestConcurrentUpdatesKeepEveryClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.toml")
	names := []string{"ann one", "bob two", "cat three", "dan four", "eve five", "fay six"}

	var wg sync.WaitGroup
	errs := make(chan error, len(names))
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Update(path, logging.NewNop(), func(reg *Registry) error {
				_, err := reg.Add(name)
				return err
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	reg, err := LoadFile(path, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, len(names), reg.Len())
}
