package todo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/vaultboard/internal/apperr"
	"github.com/starford/vaultboard/internal/checksum"
	"github.com/starford/vaultboard/internal/models"
	"github.com/starford/vaultboard/internal/storage"
)

// DefaultExcludeDirs are skipped at any depth. Backlog folders belong to
// tickets, not todos.
var DefaultExcludeDirs = []string{".obsidian", "templates", "archive", "backlog", "node_modules", ".git", ".trash"}

const scanWorkers = 8

// Options configures a Repository. Nil slices select the defaults.
type Options struct {
	ExcludeDirs []string
	Categories  []string
}

// Repository finds and edits todos. Nothing is cached: every call scans.
type Repository struct {
	store      storage.Provider
	log        *slog.Logger
	exclude    map[string]struct{}
	categories map[string]struct{}
}

// NewRepository creates a todo repository over store.
func NewRepository(store storage.Provider, log *slog.Logger, opts Options) *Repository {
	if log == nil {
		log = slog.Default()
	}
	if opts.ExcludeDirs == nil {
		opts.ExcludeDirs = DefaultExcludeDirs
	}
	if opts.Categories == nil {
		opts.Categories = DefaultCategories
	}
	exclude := make(map[string]struct{}, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		exclude[d] = struct{}{}
	}
	return &Repository{
		store:      store,
		log:        log,
		exclude:    exclude,
		categories: CategorySet(opts.Categories),
	}
}

// Scan walks the vault and returns every todo, file by file in path order.
// A file that cannot be read is logged and contributes nothing.
func (r *Repository) Scan(ctx context.Context) ([]models.Todo, error) {
	files, err := r.markdownFiles(ctx)
	if err != nil {
		return nil, err
	}

	results := make([][]models.Todo, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanWorkers)
	for i, p := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			todos, err := r.parse(p)
			if err != nil {
				r.log.Warn("scan todos: skip file", "path", p, "error", err)
				return nil
			}
			results[i] = todos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []models.Todo{}
	for _, todos := range results {
		out = append(out, todos...)
	}
	return out, nil
}

// Get returns the todo with id from a fresh scan.
func (r *Repository) Get(ctx context.Context, id string) (*models.Todo, error) {
	todos, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	for i := range todos {
		if todos[i].ID == id {
			return &todos[i], nil
		}
	}
	return nil, fmt.Errorf("todo %s: %w", id, apperr.ErrNotFound)
}

// Update rewrites the line of the todo with id, and its description block
// when the update names one. A completion-only change flips the checkbox
// and nothing else. If the line no longer holds the todo seen by the scan,
// ErrLineMismatch is returned and the file is left alone.
func (r *Repository) Update(ctx context.Context, id string, u models.TodoUpdate) (*models.Todo, error) {
	if err := u.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}
	todo, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := r.store.Read(todo.FilePath)
	if err != nil {
		return nil, fmt.Errorf("update todo %s: %w", id, err)
	}

	lines := splitLines(string(data))
	idx := todo.LineNumber - 1
	if idx >= len(lines) {
		return nil, fmt.Errorf("todo %s at %s:%d: %w", id, todo.FilePath, todo.LineNumber, apperr.ErrLineMismatch)
	}
	raw := lines[idx]
	indent, text, completed, ok := matchLine(raw)
	if !ok || text != todo.RawText {
		return nil, fmt.Errorf("todo %s at %s:%d: %w", id, todo.FilePath, todo.LineNumber, apperr.ErrLineMismatch)
	}
	if u.Completed.Present() {
		completed = u.Completed.Value
	}

	cr := ""
	if strings.HasSuffix(raw, "\r") {
		cr = "\r"
	}
	switch {
	case u.RewritesLine():
		md := Extract(text)
		if u.Text.Present() {
			md.Text = strings.TrimSpace(u.Text.Value)
		}
		if u.DueDate.Set {
			md.DueDate = u.DueDate.Value
		}
		if u.Priority.Set {
			md.Priority = u.Priority.Value
		}
		if u.Tags.Set {
			md.Tags = normaliseTags(u.Tags.Value)
		}
		lines[idx] = formatLine(indent, completed, md.Text, md.Tags, md.Priority, md.DueDate, dailyNoteDate(path.Base(todo.FilePath))) + cr
	case u.Completed.Present():
		lines[idx] = setMarker(strings.TrimSuffix(raw, "\r"), completed) + cr
	}

	if u.Description.Set {
		block := findDescription(lines, idx, todo.IndentLevel)
		repl := descriptionLines(indent, u.Description.Value)
		for i := range repl {
			repl[i] += cr
		}
		lines = append(lines[:block.start], append(repl, lines[block.end:]...)...)
	}

	if err := r.store.Write(todo.FilePath, []byte(strings.Join(lines, "\n"))); err != nil {
		return nil, fmt.Errorf("update todo %s: %w", id, err)
	}
	r.log.Info("todo updated", "path", todo.FilePath, "line", todo.LineNumber)
	return r.Get(ctx, id)
}

// Create appends a new todo to the file picked by TargetFile, creating the
// file and its folders when needed.
func (r *Repository) Create(ctx context.Context, in models.TodoCreate) (*models.Todo, error) {
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}
	target, err := r.TargetFile(in.ProjectPath, in.DueDate)
	if err != nil {
		return nil, err
	}

	var content string
	data, err := r.store.Read(target)
	switch {
	case err == nil:
		content = strings.TrimRight(string(data), " \t\r\n")
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("create todo: %w", err)
	}

	entry := formatLine("", false, in.Text, normaliseTags(in.Tags), in.Priority, in.DueDate, dailyNoteDate(path.Base(target)))
	lineNo := 1
	if content != "" {
		lineNo = strings.Count(content, "\n") + 2
		content += "\n"
	}
	content += entry + "\n"

	if err := r.store.Write(target, []byte(content)); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	r.log.Info("todo created", "path", target, "line", lineNo)
	return r.Get(ctx, checksum.PositionID(target, lineNo))
}

// TargetFile picks where a new todo goes: <project>/<date>.md,
// <project>/inbox.md, <date>.md or inbox.md.
func (r *Repository) TargetFile(projectPath, dueDate string) (string, error) {
	dir := strings.Trim(strings.TrimSpace(projectPath), "/")
	if dir != "" {
		dir = path.Clean(dir)
		if dir == ".." || strings.HasPrefix(dir, "../") {
			return "", apperr.Validationf("projectPath: invalid path %q", projectPath)
		}
		for _, part := range strings.Split(dir, "/") {
			if _, skip := r.exclude[part]; skip {
				return "", apperr.Validationf("projectPath: folder %q is not scanned for todos", part)
			}
		}
	}
	name := "inbox.md"
	if dueDate != "" {
		name = dueDate + ".md"
	}
	return path.Join(dir, name), nil
}

// Projects returns the distinct project labels, sorted.
func (r *Repository) Projects(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, func(t *models.Todo) string { return t.Project })
}

// ProjectPaths returns the distinct project folder chains, sorted.
func (r *Repository) ProjectPaths(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, func(t *models.Todo) string { return t.ProjectPath })
}

func (r *Repository) distinct(ctx context.Context, field func(*models.Todo) string) ([]string, error) {
	todos, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for i := range todos {
		if v := field(&todos[i]); v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func (r *Repository) parse(p string) ([]models.Todo, error) {
	data, err := r.store.Read(p)
	if err != nil {
		return nil, err
	}
	info, err := r.store.Stat(p)
	if err != nil {
		return nil, err
	}
	return ParseFile(p, string(data), info.ModTime(), r.categories), nil
}

// markdownFiles lists every .md file outside excluded folders. Symlinked
// folders are not followed.
func (r *Repository) markdownFiles(ctx context.Context) ([]string, error) {
	var files []string
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := r.store.ReadDir(dir)
		if err != nil {
			if dir == "" {
				return err
			}
			r.log.Warn("scan todos: skip folder", "path", dir, "error", err)
			return nil
		}
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := path.Join(dir, e.Name())
			switch {
			case e.IsDir():
				if _, skip := r.exclude[e.Name()]; skip {
					continue
				}
				if err := walk(p); err != nil {
					return err
				}
			case strings.HasSuffix(e.Name(), ".md"):
				files = append(files, p)
			}
		}
		return nil
	}
	if err := walk(""); err != nil {
		return nil, err
	}
	return files, nil
}

func normaliseTags(tags []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
