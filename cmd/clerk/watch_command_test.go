package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"clerk/internal/testsupport"
)

func TestWatchOrganizesExistingAndArrivingFiles(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithClients("John Doe"))
	src := env.cfg.Paths.SourceDir
	dest := env.cfg.Paths.DestDir
	testsupport.WriteText(t, src, "john_doe_before.txt", "already here")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", env.configPath, "watch", "--debounce", "30ms"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	waitFor(t, 5*time.Second, func() bool {
		return fileExists(filepath.Join(dest, "Doe_John", "john_doe_before.txt"))
	})
	testsupport.WriteText(t, src, "later/doe john after.txt", "arrived")
	waitFor(t, 5*time.Second, func() bool {
		return fileExists(filepath.Join(dest, "Doe_John", "doe john after.txt"))
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	requireContains(t, stdout.String(), "Watching "+src)
	requireContains(t, stdout.String(), "Copied: doe john after.txt → Doe_John/doe john after.txt")
	requireContains(t, stdout.String(), "Stopped watching")
}

// startWatch runs `watch` in the background and returns a stop function that
// cancels it and returns its stdout.
func startWatch(t *testing.T, env *cliTestEnv, args ...string) func() string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath, "watch"}, args...))
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()
	return func() string {
		t.Helper()
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("watch: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("watch did not stop after cancel")
		}
		return stdout.String()
	}
}

func TestWatchRestartDoesNotRecopyOrganizedFiles(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithClients("John Doe"))
	src := env.cfg.Paths.SourceDir
	folder := filepath.Join(env.cfg.Paths.DestDir, "Doe_John")
	testsupport.WriteText(t, src, "john_doe_before.txt", "already here")

	stop := startWatch(t, env, "--debounce", "30ms")
	waitFor(t, 5*time.Second, func() bool {
		return fileExists(filepath.Join(folder, "john_doe_before.txt"))
	})
	stop()

	stop = startWatch(t, env, "--debounce", "30ms")
	testsupport.WriteText(t, src, "john_doe_after.txt", "new arrival")
	waitFor(t, 5*time.Second, func() bool {
		return fileExists(filepath.Join(folder, "john_doe_after.txt"))
	})
	out := stop()

	requireMissing(t, filepath.Join(folder, "john_doe_before_1.txt"))
	requireNotContains(t, out, "Copied: john_doe_before.txt")
}

func TestWatchRequiresClients(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := env.run(t, "watch", "--debounce", "10ms"); err == nil {
		t.Fatal("expected watch to refuse an empty registry")
	}
}
