// Package backlog discovers backlog namespaces in a vault and manages the
// ticket files inside them.
package backlog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/starford/vaultboard/internal/apperr"
	"github.com/starford/vaultboard/internal/models"
	"github.com/starford/vaultboard/internal/storage"
	"github.com/starford/vaultboard/internal/ticketdoc"
)

// now is swapped by tests.
var now = time.Now

// Repository reads and writes tickets. It holds no state between calls:
// every operation re-reads the vault.
type Repository struct {
	store  storage.Provider
	log    *slog.Logger
	ignore map[string]struct{}
}

// NewRepository creates a ticket repository. ignoreDirs are folder names
// skipped during namespace discovery; nil means DefaultIgnoreDirs.
func NewRepository(store storage.Provider, log *slog.Logger, ignoreDirs []string) *Repository {
	if log == nil {
		log = slog.Default()
	}
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}
	ignore := make(map[string]struct{}, len(ignoreDirs))
	for _, d := range ignoreDirs {
		ignore[d] = struct{}{}
	}
	return &Repository{store: store, log: log, ignore: ignore}
}

// ticketFile is a located ticket with the content it was parsed from.
type ticketFile struct {
	path    string
	content string
	ticket  *models.Ticket
}

// List returns the tickets of one namespace, or of every discovered
// namespace when backlog is empty. Files that cannot be read or parsed are
// logged and left out.
func (r *Repository) List(ctx context.Context, backlog string) ([]models.Ticket, error) {
	out := []models.Ticket{}
	err := r.each(ctx, backlog, func(f ticketFile) bool {
		out = append(out, *f.ticket)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get finds a ticket by id, optionally limited to one namespace.
func (r *Repository) Get(ctx context.Context, id, backlog string) (*models.Ticket, error) {
	f, err := r.locate(ctx, id, backlog)
	if err != nil {
		return nil, err
	}
	return f.ticket, nil
}

// Create writes a new ticket file named after the title, creating the
// namespace's backlog and archive folders first. A name already taken gets
// a -1, -2, ... suffix.
func (r *Repository) Create(ctx context.Context, in models.TicketCreate) (*models.Ticket, error) {
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}
	ns, err := cleanNamespace(in.Backlog)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := path.Join(ns, backlogDir)
	if err := r.store.MkdirAll(path.Join(dir, archiveDir)); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	name := r.freeName(dir, ticketdoc.Slug(in.Title))
	content, err := ticketdoc.Serialize(&models.Ticket{
		Title:              strings.TrimSpace(in.Title),
		Status:             in.Status,
		Priority:           in.Priority,
		Tags:               in.Tags,
		DueDate:            in.DueDate,
		Label:              in.Label,
		Source:             in.Source,
		Description:        in.Description,
		AcceptanceCriteria: in.AcceptanceCriteria,
		Order:              in.Order,
	})
	if err != nil {
		return nil, err
	}
	p := path.Join(dir, name)
	if err := r.store.Write(p, []byte(content)); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	r.log.Info("ticket created", "path", p)
	return ticketdoc.Parse(content, name, ns)
}

// Update applies a partial update to the ticket with the given id.
func (r *Repository) Update(ctx context.Context, id string, u models.TicketUpdate) (*models.Ticket, error) {
	if err := u.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}
	f, err := r.locate(ctx, id, "")
	if err != nil {
		return nil, err
	}
	return r.rewrite(f, func(content string) (string, error) {
		return ticketdoc.Patch(content, u)
	})
}

// Archive stamps archivedAt and moves the ticket into the namespace's
// backlog/archive folder. The archived copy is written before the original
// is deleted, so a failed write leaves the ticket where it was.
func (r *Repository) Archive(ctx context.Context, id string) (*models.Ticket, error) {
	f, err := r.locate(ctx, id, "")
	if err != nil {
		return nil, err
	}
	patched, err := ticketdoc.Patch(f.content, models.TicketUpdate{
		ArchivedAt: models.Some(now().Format(models.DateLayout)),
	})
	if err != nil {
		return nil, err
	}

	dir := path.Join(f.ticket.Backlog, backlogDir, archiveDir)
	name := r.freeName(dir, strings.TrimSuffix(f.ticket.Filename, ".md"))
	dst := path.Join(dir, name)
	if err := r.store.Write(dst, []byte(patched)); err != nil {
		return nil, fmt.Errorf("archive ticket %s: %w", id, err)
	}
	if err := r.store.Delete(f.path); err != nil {
		return nil, fmt.Errorf("archive ticket %s: remove original: %w", id, err)
	}
	r.log.Info("ticket archived", "from", f.path, "to", dst)
	return ticketdoc.Parse(patched, name, f.ticket.Backlog)
}

// Tags returns the distinct tags used in scope, sorted.
func (r *Repository) Tags(ctx context.Context, backlog string) ([]string, error) {
	return r.collect(ctx, backlog, func(t *models.Ticket) []string { return t.Tags })
}

// Labels returns the distinct labels used in scope, sorted.
func (r *Repository) Labels(ctx context.Context, backlog string) ([]string, error) {
	return r.collect(ctx, backlog, func(t *models.Ticket) []string {
		if t.Label == "" {
			return nil
		}
		return []string{t.Label}
	})
}

// AddComment appends a comment to a ticket.
func (r *Repository) AddComment(ctx context.Context, id string, in models.CommentCreate) (*models.Ticket, error) {
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}
	f, err := r.locate(ctx, id, "")
	if err != nil {
		return nil, err
	}
	return r.rewrite(f, func(content string) (string, error) {
		out, _, err := ticketdoc.AddComment(content, in)
		return out, err
	})
}

// DeleteComment removes one comment from a ticket.
func (r *Repository) DeleteComment(ctx context.Context, id, commentID string) (*models.Ticket, error) {
	f, err := r.locate(ctx, id, "")
	if err != nil {
		return nil, err
	}
	return r.rewrite(f, func(content string) (string, error) {
		return ticketdoc.DeleteComment(content, commentID)
	})
}

// Move places a ticket between two neighbours by giving it an order value
// halfway between theirs. afterID is the ticket it should follow, beforeID
// the one it should precede; either may be empty.
func (r *Repository) Move(ctx context.Context, id, afterID, beforeID string) (*models.Ticket, error) {
	lower, err := r.orderOf(ctx, afterID)
	if err != nil {
		return nil, err
	}
	upper, err := r.orderOf(ctx, beforeID)
	if err != nil {
		return nil, err
	}
	return r.Update(ctx, id, models.TicketUpdate{
		Order: models.Some(ticketdoc.Midpoint(lower, upper)),
	})
}

func (r *Repository) orderOf(ctx context.Context, id string) (*float64, error) {
	if id == "" {
		return nil, nil
	}
	t, err := r.Get(ctx, id, "")
	if err != nil {
		return nil, fmt.Errorf("neighbour %s: %w", id, err)
	}
	return t.Order, nil
}

func (r *Repository) rewrite(f *ticketFile, edit func(string) (string, error)) (*models.Ticket, error) {
	out, err := edit(f.content)
	if err != nil {
		return nil, err
	}
	if err := r.store.Write(f.path, []byte(out)); err != nil {
		return nil, fmt.Errorf("write ticket %s: %w", f.ticket.ID, err)
	}
	return ticketdoc.Parse(out, f.ticket.Filename, f.ticket.Backlog)
}

func (r *Repository) collect(ctx context.Context, backlog string, field func(*models.Ticket) []string) ([]string, error) {
	seen := map[string]struct{}{}
	err := r.each(ctx, backlog, func(f ticketFile) bool {
		for _, v := range field(f.ticket) {
			seen[v] = struct{}{}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// locate scans candidate namespaces until a ticket with id turns up.
func (r *Repository) locate(ctx context.Context, id, backlog string) (*ticketFile, error) {
	var found *ticketFile
	err := r.each(ctx, backlog, func(f ticketFile) bool {
		if f.ticket.ID == id {
			found = &f
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, apperr.ErrNotFound)
	}
	return found, nil
}

// each loads the tickets in scope one by one until visit returns false.
func (r *Repository) each(ctx context.Context, backlog string, visit func(ticketFile) bool) error {
	var namespaces []string
	if backlog != "" {
		ns, err := cleanNamespace(backlog)
		if err != nil {
			return err
		}
		namespaces = []string{ns}
	} else {
		var err error
		if namespaces, err = r.Backlogs(ctx); err != nil {
			return err
		}
	}

	for _, ns := range namespaces {
		dir := path.Join(ns, backlogDir)
		entries, err := r.store.ReadDir(dir)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				r.log.Warn("list tickets: skip backlog", "path", dir, "error", err)
			}
			continue
		}
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
				continue
			}
			f, err := r.load(ns, e.Name())
			if err != nil {
				r.log.Warn("list tickets: skip file", "path", path.Join(dir, e.Name()), "error", err)
				continue
			}
			if !visit(*f) {
				return nil
			}
		}
	}
	return nil
}

// load reads one ticket file, migrating it in place first if it lacks
// frontmatter identity fields.
func (r *Repository) load(ns, name string) (*ticketFile, error) {
	p := path.Join(ns, backlogDir, name)
	data, err := r.store.Read(p)
	if err != nil {
		return nil, err
	}
	m, err := ticketdoc.EnsureFrontmatter(string(data))
	if err != nil {
		return nil, err
	}
	if m.Changed {
		if err := r.store.Write(p, []byte(m.Content)); err != nil {
			return nil, fmt.Errorf("migrate frontmatter: %w", err)
		}
		r.log.Info("ticket frontmatter migrated", "path", p, "had_frontmatter", m.HadFrontmatter)
	}
	t, err := ticketdoc.Parse(m.Content, name, ns)
	if err != nil {
		return nil, err
	}
	return &ticketFile{path: p, content: m.Content, ticket: t}, nil
}

// freeName returns stem.md, or the first stem-N.md not present in dir.
func (r *Repository) freeName(dir, stem string) string {
	name := stem + ".md"
	for i := 1; storage.Exists(r.store, path.Join(dir, name)); i++ {
		name = fmt.Sprintf("%s-%d.md", stem, i)
	}
	return name
}

// cleanNamespace normalises a vault-relative namespace path and rejects
// anything that points outside the vault.
func cleanNamespace(ns string) (string, error) {
	ns = path.Clean(strings.Trim(strings.TrimSpace(ns), "/"))
	if ns == "." || ns == ".." || strings.HasPrefix(ns, "../") {
		return "", apperr.Validationf("backlog: invalid namespace %q", ns)
	}
	return ns, nil
}
