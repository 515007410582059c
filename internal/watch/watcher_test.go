package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) VaultChanged(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) has(kind Kind, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Kind == kind && e.Path == path {
			return true
		}
	}
	return false
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

// startWatcher runs a watcher over dir and stops it when the test ends.
func startWatcher(t *testing.T, dir string, ignore ...string) *recorder {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	rec := &recorder{}
	w := New(dir, ignore, logger, rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	time.Sleep(100 * time.Millisecond)
	return rec
}

func TestWatcher_CreateModifyRemove(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Run("events", func(t *testing.T) {
		dir := t.TempDir()
		rec := startWatcher(t, dir)
		p := filepath.Join(dir, "new.md")

		_ = os.WriteFile(p, []byte("- [ ] a"), 0o644)
		eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
			return rec.has(Created, "new.md")
		}, "expected created:new.md")

		_ = os.WriteFile(p, []byte("- [x] a"), 0o644)
		eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
			return rec.has(Modified, "new.md")
		}, "expected modified:new.md")

		_ = os.Remove(p)
		eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
			return rec.has(Removed, "new.md")
		}, "expected removed:new.md")
	})
}

func TestWatcher_NewDirWatched(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Run("nested", func(t *testing.T) {
		dir := t.TempDir()
		rec := startWatcher(t, dir)

		sub := filepath.Join(dir, "projects", "alpha")
		_ = os.MkdirAll(sub, 0o755)
		time.Sleep(200 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(sub, "deep.md"), []byte("# Deep"), 0o644)

		eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
			return rec.has(Created, "projects/alpha/deep.md")
		}, "file in new subdir not reported")
	})
}

func TestWatcher_RenameReportsOldPathRemoved(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Run("rename", func(t *testing.T) {
		dir := t.TempDir()
		_ = os.WriteFile(filepath.Join(dir, "old.md"), []byte("# Rename"), 0o644)
		rec := startWatcher(t, dir)

		_ = os.Rename(filepath.Join(dir, "old.md"), filepath.Join(dir, "renamed.md"))
		eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
			return rec.has(Removed, "old.md") && rec.has(Created, "renamed.md")
		}, "rename should report old removed and new created")
	})
}

func TestWatcher_IgnoresFoldersAndOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)
	t.Run("ignore", func(t *testing.T) {
		dir := t.TempDir()
		_ = os.MkdirAll(filepath.Join(dir, ".git"), 0o755)
		rec := startWatcher(t, dir, ".git")

		_ = os.WriteFile(filepath.Join(dir, ".git", "x.md"), []byte("x"), 0o644)
		_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
		_ = os.WriteFile(filepath.Join(dir, "marker.md"), []byte("x"), 0o644)

		eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
			return rec.has(Created, "marker.md")
		}, "expected created:marker.md")

		rec.mu.Lock()
		defer rec.mu.Unlock()
		for _, e := range rec.events {
			if e.Path != "marker.md" {
				t.Errorf("unexpected event %+v", e)
			}
		}
	})
}
