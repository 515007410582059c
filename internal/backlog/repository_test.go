package backlog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/vaultboard/internal/apperr"
	"github.com/starford/vaultboard/internal/models"
	"github.com/starford/vaultboard/internal/storage"
	"github.com/starford/vaultboard/internal/testutil"
)

func newRepo(t *testing.T, files map[string]string) (*Repository, storage.Provider) {
	t.Helper()
	_, store := testutil.TestVault(t)
	testutil.WriteFiles(t, store, files)
	return NewRepository(store, testutil.Logger(), nil), store
}

func TestBacklogsDiscovery(t *testing.T) {
	repo, store := newRepo(t, map[string]string{
		"projects/alpha/backlog/a.md":             "# A\n",
		"projects/alpha/backlog/archive/old.md":   "# Old\n",
		"projects/alpha/sub/backlog/b.md":         "# B\n",
		"projects/beta/backlog/c.md":              "# C\n",
		"areas/health/notes.md":                   "no backlog here\n",
		".git/hooks/backlog/x.md":                 "# ignored\n",
		"projects/alpha/backlog/archive/backlog/y": "nested, never a namespace\n",
	})
	require.NoError(t, store.MkdirAll("empty"))

	got, err := repo.Backlogs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"projects/alpha", "projects/alpha/sub", "projects/beta"}, got)
}

func TestBacklogsEmptyVault(t *testing.T) {
	repo, _ := newRepo(t, nil)
	got, err := repo.Backlogs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListMigratesMissingID(t *testing.T) {
	repo, store := newRepo(t, map[string]string{
		"projects/alpha/backlog/ticket1.md": "---\nstatus: todo\npriority: high\n---\n# Ticket one\n",
	})
	ctx := context.Background()

	first, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Len(t, first[0].ID, 10)
	assert.Equal(t, models.StatusTodo, first[0].Status)
	assert.Equal(t, models.PriorityHigh, first[0].Priority)
	assert.Contains(t, testutil.ReadFile(t, store, "projects/alpha/backlog/ticket1.md"), "id: "+first[0].ID)

	second, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[0].Created, second[0].Created)
}

func TestListMigratesPlainFile(t *testing.T) {
	repo, store := newRepo(t, map[string]string{
		"work/backlog/legacy.md": "# Legacy\n\nSome notes.\n",
	})
	got, err := repo.List(context.Background(), "work")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Legacy", got[0].Title)

	content := testutil.ReadFile(t, store, "work/backlog/legacy.md")
	assert.True(t, strings.HasPrefix(content, "---\n"))
	assert.True(t, strings.HasSuffix(content, "---\n# Legacy\n\nSome notes.\n"))
}

func TestListSkipsBrokenFiles(t *testing.T) {
	repo, _ := newRepo(t, map[string]string{
		"p/backlog/good.md":  "---\nid: good000001\n---\n# Good\n",
		"p/backlog/bad.md":   "---\nid: [broken\n---\n# Bad\n",
		"p/backlog/note.txt": "not markdown",
	})
	got, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "good000001", got[0].ID)
}

func TestListUnknownNamespaceIsEmpty(t *testing.T) {
	repo, _ := newRepo(t, nil)
	got, err := repo.List(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCreateFilenameCollision(t *testing.T) {
	repo, store := newRepo(t, nil)
	ctx := context.Background()
	in := models.TicketCreate{Title: "Fix login bug", Backlog: "projects/alpha"}

	a, err := repo.Create(ctx, in)
	require.NoError(t, err)
	b, err := repo.Create(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "fix-login-bug.md", a.Filename)
	assert.Equal(t, "fix-login-bug-1.md", b.Filename)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, storage.Exists(store, "projects/alpha/backlog/fix-login-bug-1.md"))
}

func TestCreateReturnsWrittenTicket(t *testing.T) {
	repo, _ := newRepo(t, nil)
	ctx := context.Background()
	created, err := repo.Create(ctx, models.TicketCreate{
		Title:              "  Spaced title ",
		Backlog:            "/work/",
		Priority:           models.PriorityUrgent,
		Tags:               []string{"ops"},
		Description:        "Details",
		AcceptanceCriteria: []string{"done"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Spaced title", created.Title)
	assert.Equal(t, "work", created.Backlog)
	assert.Equal(t, models.StatusTodo, created.Status)

	got, err := repo.Get(ctx, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreateValidation(t *testing.T) {
	repo, _ := newRepo(t, nil)
	ctx := context.Background()

	_, err := repo.Create(ctx, models.TicketCreate{Backlog: "work"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = repo.Create(ctx, models.TicketCreate{Title: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = repo.Create(ctx, models.TicketCreate{Title: "x", Backlog: "work", Status: "blocked"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = repo.Create(ctx, models.TicketCreate{Title: "x", Backlog: "../outside"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateRejectsBlankAndMultilineFields(t *testing.T) {
	repo, store := newRepo(t, nil)
	ctx := context.Background()

	for name, in := range map[string]models.TicketCreate{
		"blank title":   {Title: "   ", Backlog: "work"},
		"title heading": {Title: "Real\n## Description\nsneaky", Backlog: "work"},
		"title cr":      {Title: "Real\rmore", Backlog: "work"},
		"source":        {Title: "x", Backlog: "work", Source: "call\n# Other"},
		"label":         {Title: "x", Backlog: "work", Label: "a\nb"},
		"criteria item": {Title: "x", Backlog: "work", AcceptanceCriteria: []string{"ok", "one\n- [x] two"}},
	} {
		_, err := repo.Create(ctx, in)
		assert.ErrorIs(t, err, apperr.ErrValidation, name)
	}
	assert.False(t, storage.Exists(store, "work"))
}

func TestCreateMakesBacklogFolders(t *testing.T) {
	repo, store := newRepo(t, nil)
	_, err := repo.Create(context.Background(), models.TicketCreate{Title: "First", Backlog: "projects/new"})
	require.NoError(t, err)
	assert.True(t, storage.IsDir(store, "projects/new/backlog"))
	assert.True(t, storage.IsDir(store, "projects/new/backlog/archive"))
}

func TestUpdateRejectsMultilineFields(t *testing.T) {
	content := "---\nid: t000000001\n---\n# T\n"
	repo, store := newRepo(t, map[string]string{"work/backlog/t.md": content})
	ctx := context.Background()

	for name, u := range map[string]models.TicketUpdate{
		"blank title": {Title: models.Some(" ")},
		"title":       {Title: models.Some("T\n## Description\nsneaky")},
		"source":      {Source: models.Some("a\nb")},
		"label":       {Label: models.Some("a\nb")},
	} {
		_, err := repo.Update(ctx, "t000000001", u)
		assert.ErrorIs(t, err, apperr.ErrValidation, name)
	}
	assert.Equal(t, content, testutil.ReadFile(t, store, "work/backlog/t.md"))
}

func TestUpdate(t *testing.T) {
	repo, store := newRepo(t, map[string]string{
		"work/backlog/t.md": "---\nid: t000000001\nlabel: ops\nextra: 1\n---\n# T\n\n## Description\nold\n\n## Notes\nfoo\n",
	})
	ctx := context.Background()

	got, err := repo.Update(ctx, "t000000001", models.TicketUpdate{
		Description: models.Some("new"),
		Label:       models.Null[string](),
	})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Description)
	assert.Empty(t, got.Label)

	content := testutil.ReadFile(t, store, "work/backlog/t.md")
	assert.Contains(t, content, "extra: 1")
	assert.True(t, strings.HasSuffix(content, "# T\n\n## Description\nnew\n\n## Notes\nfoo\n"))

	_, err = repo.Update(ctx, "missing", models.TicketUpdate{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestArchive(t *testing.T) {
	prev := now
	now = func() time.Time { return time.Date(2025, 7, 4, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })

	repo, store := newRepo(t, map[string]string{
		"work/backlog/t.md":         "---\nid: t000000001\n---\n# T\n",
		"work/backlog/archive/t.md": "---\nid: older00001\n---\n# Older\n",
	})
	ctx := context.Background()

	archived, err := repo.Archive(ctx, "t000000001")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-04", archived.ArchivedAt)
	assert.Equal(t, "t-1.md", archived.Filename)

	list, err := repo.List(ctx, "work")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.False(t, storage.Exists(store, "work/backlog/t.md"))
	assert.Contains(t, testutil.ReadFile(t, store, "work/backlog/archive/t-1.md"), "2025-07-04")
	assert.Contains(t, testutil.ReadFile(t, store, "work/backlog/archive/t.md"), "older00001")

	_, err = repo.Get(ctx, "t000000001", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// failingArchive refuses writes into archive folders.
type failingArchive struct {
	storage.Provider
}

func (f failingArchive) Write(path string, content []byte) error {
	if strings.Contains(path, "/archive/") {
		return errors.New("disk full")
	}
	return f.Provider.Write(path, content)
}

func TestArchiveWriteFailureKeepsOriginal(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.WriteFiles(t, store, map[string]string{
		"work/backlog/t.md": "---\nid: t000000001\n---\n# T\n",
	})
	repo := NewRepository(failingArchive{store}, testutil.Logger(), nil)

	_, err := repo.Archive(context.Background(), "t000000001")
	require.Error(t, err)
	assert.True(t, storage.Exists(store, "work/backlog/t.md"))
	assert.False(t, storage.Exists(store, "work/backlog/archive/t.md"))
}

func TestTagsAndLabels(t *testing.T) {
	repo, _ := newRepo(t, map[string]string{
		"a/backlog/1.md": "---\nid: a1\ntags: [ui, bug]\nlabel: front\n---\n# 1\n",
		"a/backlog/2.md": "---\nid: a2\ntags: [bug]\n---\n# 2\n",
		"b/backlog/3.md": "---\nid: b3\ntags: [ops]\nlabel: back\n---\n# 3\n",
	})
	ctx := context.Background()

	tags, err := repo.Tags(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"bug", "ops", "ui"}, tags)

	tags, err = repo.Tags(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"bug", "ui"}, tags)

	labels, err := repo.Labels(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"back", "front"}, labels)
}

func TestComments(t *testing.T) {
	repo, _ := newRepo(t, map[string]string{
		"a/backlog/1.md": "---\nid: a1\n---\n# 1\n",
	})
	ctx := context.Background()

	_, err := repo.AddComment(ctx, "a1", models.CommentCreate{Text: "  "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	got, err := repo.AddComment(ctx, "a1", models.CommentCreate{Text: "first"})
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "first", got.Comments[0].Text)

	got, err = repo.DeleteComment(ctx, "a1", got.Comments[0].ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)

	_, err = repo.DeleteComment(ctx, "a1", "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMove(t *testing.T) {
	repo, _ := newRepo(t, map[string]string{
		"a/backlog/1.md": "---\nid: a1\norder: 1\n---\n# 1\n",
		"a/backlog/2.md": "---\nid: a2\norder: 2\n---\n# 2\n",
		"a/backlog/3.md": "---\nid: a3\n---\n# 3\n",
	})
	ctx := context.Background()

	got, err := repo.Move(ctx, "a3", "a1", "a2")
	require.NoError(t, err)
	require.NotNil(t, got.Order)
	assert.Equal(t, 1.5, *got.Order)

	got, err = repo.Move(ctx, "a1", "a2", "")
	require.NoError(t, err)
	assert.Equal(t, 3.0, *got.Order)

	_, err = repo.Move(ctx, "a1", "missing", "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
