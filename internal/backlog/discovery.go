package backlog

import (
	"context"
	"io/fs"
	"path"
	"sort"

	"github.com/starford/vaultboard/internal/storage"
)

// DefaultIgnoreDirs are folders never searched for backlog namespaces.
var DefaultIgnoreDirs = []string{".obsidian", "templates", "node_modules", ".git", ".trash"}

const (
	backlogDir = "backlog"
	archiveDir = "archive"
)

// Backlogs walks the vault and returns every folder that has an immediate
// "backlog" child, sorted. The walk never descends into a backlog folder,
// so archive subfolders are not namespaces of their own. Symlinked folders
// are not followed.
func (r *Repository) Backlogs(ctx context.Context) ([]string, error) {
	out := []string{}
	root, err := r.store.ReadDir("")
	if err != nil {
		return nil, err
	}
	var walk func(dir string, entries []fs.DirEntry) error
	walk = func(dir string, entries []fs.DirEntry) error {
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := e.Name()
			if !e.IsDir() || name == backlogDir || r.ignored(name) {
				continue
			}
			child := path.Join(dir, name)
			if storage.IsDir(r.store, path.Join(child, backlogDir)) {
				out = append(out, child)
			}
			sub, err := r.store.ReadDir(child)
			if err != nil {
				r.log.Warn("backlog discovery: skip folder", "path", child, "error", err)
				continue
			}
			if err := walk(child, sub); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk("", root); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (r *Repository) ignored(name string) bool {
	_, ok := r.ignore[name]
	return ok
}
