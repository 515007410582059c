// Package watch reports markdown file changes under the vault root. It is
// a trigger only: consumers re-read the vault when told something changed.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Kind is the type of change.
type Kind string

// Change kinds.
const (
	Created  Kind = "created"
	Modified Kind = "modified"
	Removed  Kind = "removed"
)

// Event names a changed markdown file by its slash-separated vault path.
type Event struct {
	Kind Kind
	Path string
}

// Observer receives change events on the watcher goroutine.
type Observer interface {
	VaultChanged(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// VaultChanged calls f(e).
func (f ObserverFunc) VaultChanged(e Event) { f(e) }

// Watcher follows a vault directory tree with fsnotify.
type Watcher struct {
	root   string
	ignore map[string]struct{}
	logger *slog.Logger
	obs    Observer
}

// New creates a watcher for root. Folders named in ignoreDirs are not
// watched at any depth.
func New(root string, ignoreDirs []string, logger *slog.Logger, obs Observer) *Watcher {
	ignore := make(map[string]struct{}, len(ignoreDirs))
	for _, d := range ignoreDirs {
		ignore[d] = struct{}{}
	}
	return &Watcher{root: root, ignore: ignore, logger: logger, obs: obs}
}

// Run processes file events until ctx is cancelled.
//
// Folders created at runtime are added to the watch list and the markdown
// files already inside them are reported as created. fsnotify reports a
// rename on the old path only; it is passed on as a removal, and the new
// path arrives as its own create event.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addDirsRecursive(fw, w.root); err != nil {
		return err
	}
	w.logger.Info("watcher: started", slog.String("root", w.root))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, ev)

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) {
	absPath := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Lstat(absPath); statErr == nil && info.IsDir() {
			if w.ignored(filepath.Base(absPath)) {
				return
			}
			if addErr := w.addDirsRecursive(fw, absPath); addErr != nil {
				w.logger.Warn("watcher: add new dir failed",
					slog.String("path", absPath),
					slog.String("error", addErr.Error()))
			} else {
				w.logger.Debug("watcher: watching new dir", slog.String("path", absPath))
			}
			w.reportDir(absPath)
			return
		}
	}

	if !strings.HasSuffix(absPath, ".md") {
		return
	}
	rel, ok := w.rel(absPath)
	if !ok {
		return
	}

	switch {
	case ev.Op&fsnotify.Create != 0:
		w.emit(Created, rel)
	case ev.Op&fsnotify.Write != 0:
		w.emit(Modified, rel)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.emit(Removed, rel)
	}
}

// reportDir emits a created event for every markdown file under dir.
func (w *Watcher) reportDir(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != dir && w.ignored(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(p, ".md") {
			return nil
		}
		if rel, ok := w.rel(p); ok {
			w.emit(Created, rel)
		}
		return nil
	})
}

func (w *Watcher) emit(kind Kind, rel string) {
	w.logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", string(kind)))
	if w.obs != nil {
		w.obs.VaultChanged(Event{Kind: kind, Path: rel})
	}
}

func (w *Watcher) rel(abs string) (string, bool) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) ignored(name string) bool {
	_, ok := w.ignore[name]
	return ok
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// skipping ignored folders. Symlinked folders are not followed.
func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.ignored(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}
