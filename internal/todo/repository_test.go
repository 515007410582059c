package todo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

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
	return NewRepository(store, testutil.Logger(), Options{}), store
}

func findByText(t *testing.T, todos []models.Todo, text string) models.Todo {
	t.Helper()
	for _, td := range todos {
		if td.Text == text {
			return td
		}
	}
	t.Fatalf("todo %q not found", text)
	return models.Todo{}
}

func TestScanSkipsExcludedFolders(t *testing.T) {
	repo, _ := newRepo(t, map[string]string{
		"inbox.md":                      "- [ ] root\n",
		"projects/alpha/notes.md":       "- [ ] alpha\n",
		"projects/alpha/backlog/t.md":   "- [ ] ticket body checkbox\n",
		"archive/old.md":                "- [ ] archived\n",
		"deep/x/.obsidian/workspace.md": "- [ ] tool\n",
		"notes/readme.txt":              "- [ ] not markdown\n",
	})
	todos, err := repo.Scan(context.Background())
	require.NoError(t, err)

	var texts []string
	for _, td := range todos {
		texts = append(texts, td.Text)
	}
	assert.Equal(t, []string{"root", "alpha"}, texts)
}

func TestScanEmptyVault(t *testing.T) {
	repo, _ := newRepo(t, nil)
	todos, err := repo.Scan(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

// flakyStore fails reads of one path.
type flakyStore struct {
	storage.Provider
	bad string
}

func (f flakyStore) Read(path string) ([]byte, error) {
	if path == f.bad {
		return nil, errors.New("permission denied")
	}
	return f.Provider.Read(path)
}

func TestScanSkipsUnreadableFile(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.WriteFiles(t, store, map[string]string{
		"a.md": "- [ ] kept\n",
		"b.md": "- [ ] lost\n",
	})
	repo := NewRepository(flakyStore{Provider: store, bad: "b.md"}, testutil.Logger(), Options{})

	todos, err := repo.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "kept", todos[0].Text)
}

func TestGetNotFound(t *testing.T) {
	repo, _ := newRepo(t, map[string]string{"a.md": "- [ ] x\n"})
	_, err := repo.Get(context.Background(), "0000000000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateCompletionOnlyFlipsMarker(t *testing.T) {
	content := "# List\n  - [ ] Buy  milk #errand (2025-01-01)\n- [ ] other\n"
	repo, store := newRepo(t, map[string]string{"notes/list.md": content})
	ctx := context.Background()

	todos, err := repo.Scan(ctx)
	require.NoError(t, err)
	target := findByText(t, todos, "Buy milk")

	got, err := repo.Update(ctx, target.ID, models.TodoUpdate{Completed: models.Some(true)})
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, target.ID, got.ID)
	assert.Equal(t, "# List\n  - [x] Buy  milk #errand (2025-01-01)\n- [ ] other\n", testutil.ReadFile(t, store, "notes/list.md"))
}

func TestUpdateRewritesLineCanonically(t *testing.T) {
	repo, store := newRepo(t, map[string]string{
		"notes/list.md": "intro\n- [ ] Buy milk #shopping #errand !high (2025-03-01)\noutro\n",
	})
	ctx := context.Background()
	todos, err := repo.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1)

	got, err := repo.Update(ctx, todos[0].ID, models.TodoUpdate{Text: models.Some("Buy oat milk")})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", got.Text)
	assert.Equal(t, "intro\n- [ ] Buy oat milk #errand #shopping !high (2025-03-01)\noutro\n", testutil.ReadFile(t, store, "notes/list.md"))

	got, err = repo.Update(ctx, todos[0].ID, models.TodoUpdate{
		Priority: models.Null[models.Priority](),
		DueDate:  models.Null[string](),
		Tags:     models.Some([]string{"Home"}),
	})
	require.NoError(t, err)
	assert.Empty(t, got.Priority)
	assert.Empty(t, got.DueDate)
	assert.Equal(t, []string{"home"}, got.Tags)
	assert.Equal(t, "intro\n- [ ] Buy oat milk #home\noutro\n", testutil.ReadFile(t, store, "notes/list.md"))
}

func TestUpdateDailyNoteOmitsDate(t *testing.T) {
	repo, store := newRepo(t, map[string]string{"2025-06-01.md": "- [ ] standup\n"})
	ctx := context.Background()
	todos, err := repo.Scan(ctx)
	require.NoError(t, err)

	_, err = repo.Update(ctx, todos[0].ID, models.TodoUpdate{Text: models.Some("daily standup")})
	require.NoError(t, err)
	assert.Equal(t, "- [ ] daily standup\n", testutil.ReadFile(t, store, "2025-06-01.md"))
}

func TestUpdateDescription(t *testing.T) {
	content := "- [ ] task\n  - [ ] child\n- [ ] next\n"
	repo, store := newRepo(t, map[string]string{"n.md": content})
	ctx := context.Background()
	todos, err := repo.Scan(ctx)
	require.NoError(t, err)
	task := findByText(t, todos, "task")

	got, err := repo.Update(ctx, task.ID, models.TodoUpdate{Description: models.Some("line one\n\nline two")})
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", got.Description)
	assert.Equal(t, "- [ ] task\n  line one\n  line two\n  - [ ] child\n- [ ] next\n", testutil.ReadFile(t, store, "n.md"))

	got, err = repo.Update(ctx, task.ID, models.TodoUpdate{Description: models.Some("replaced")})
	require.NoError(t, err)
	assert.Equal(t, "replaced", got.Description)
	assert.Equal(t, "- [ ] task\n  replaced\n  - [ ] child\n- [ ] next\n", testutil.ReadFile(t, store, "n.md"))

	got, err = repo.Update(ctx, task.ID, models.TodoUpdate{Description: models.Null[string]()})
	require.NoError(t, err)
	assert.Empty(t, got.Description)
	assert.Equal(t, content, testutil.ReadFile(t, store, "n.md"))
}

// staleStore serves the scanned file, then a changed one to the writer.
type staleStore struct {
	storage.Provider
	mu    sync.Mutex
	reads int
}

func (s *staleStore) Read(path string) ([]byte, error) {
	data, err := s.Provider.Read(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.reads > 1 {
		return []byte(strings.Replace(string(data), "original", "edited elsewhere", 1)), nil
	}
	return data, nil
}

func TestUpdateLineMismatch(t *testing.T) {
	_, fsStore := testutil.TestVault(t)
	testutil.WriteFiles(t, fsStore, map[string]string{"n.md": "- [ ] original\n"})
	store := &staleStore{Provider: fsStore}
	repo := NewRepository(store, testutil.Logger(), Options{})
	ctx := context.Background()

	todos, err := repo.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 1)
	store.reads = 0

	_, err = repo.Update(ctx, todos[0].ID, models.TodoUpdate{Completed: models.Some(true)})
	assert.ErrorIs(t, err, apperr.ErrLineMismatch)
	assert.Equal(t, "- [ ] original\n", testutil.ReadFile(t, fsStore, "n.md"))
}

func TestUpdateValidation(t *testing.T) {
	repo, _ := newRepo(t, nil)
	_, err := repo.Update(context.Background(), "x", models.TodoUpdate{Text: models.Some("  ")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateRejectsLineBreaks(t *testing.T) {
	content := "- [ ] a\n- [ ] b\n"
	repo, store := newRepo(t, map[string]string{"n.md": content})
	ctx := context.Background()
	todos, err := repo.Scan(ctx)
	require.NoError(t, err)
	a := findByText(t, todos, "a")

	for name, u := range map[string]models.TodoUpdate{
		"text":             {Text: models.Some("x\n- [ ] injected")},
		"text cr":          {Text: models.Some("x\rmore")},
		"tag with newline": {Tags: models.Some([]string{"ok", "bad\n- [ ] injected"})},
		"tag with space":   {Tags: models.Some([]string{"two words"})},
		"checkbox desc":    {Description: models.Some("intro\n- [ ] not a todo")},
		"checked desc":     {Description: models.Some("  - [x] done already")},
	} {
		_, err := repo.Update(ctx, a.ID, u)
		assert.ErrorIs(t, err, apperr.ErrValidation, name)
	}

	assert.Equal(t, content, testutil.ReadFile(t, store, "n.md"))
	todos, err = repo.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestUpdateDescriptionRoundTrip(t *testing.T) {
	repo, _ := newRepo(t, map[string]string{"n.md": "- [ ] task\n"})
	ctx := context.Background()
	todos, err := repo.Scan(ctx)
	require.NoError(t, err)

	got, err := repo.Update(ctx, todos[0].ID, models.TodoUpdate{Description: models.Some("- plain bullet\nsee [x] above")})
	require.NoError(t, err)
	assert.Equal(t, "- plain bullet\nsee [x] above", got.Description)

	todos, err = repo.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, todos, 1)
}

func TestTargetFile(t *testing.T) {
	repo, _ := newRepo(t, nil)
	cases := []struct {
		project, date, want string
	}{
		{"projects/alpha", "2025-06-01", "projects/alpha/2025-06-01.md"},
		{"projects/alpha/", "", "projects/alpha/inbox.md"},
		{"", "2025-06-01", "2025-06-01.md"},
		{"", "", "inbox.md"},
	}
	for _, tc := range cases {
		got, err := repo.TargetFile(tc.project, tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := repo.TargetFile("projects/alpha/backlog", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = repo.TargetFile("../escape", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreate(t *testing.T) {
	repo, store := newRepo(t, map[string]string{
		"projects/alpha/inbox.md": "# Inbox\n- [ ] existing\n\n\n",
	})
	ctx := context.Background()

	got, err := repo.Create(ctx, models.TodoCreate{
		Text:        "Write report",
		ProjectPath: "projects/alpha",
		Priority:    models.PriorityLow,
		Tags:        []string{"Work"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Text)
	assert.Equal(t, 3, got.LineNumber)
	assert.Equal(t, []string{"work"}, got.Tags)
	assert.Equal(t, "# Inbox\n- [ ] existing\n- [ ] Write report #work !low\n", testutil.ReadFile(t, store, "projects/alpha/inbox.md"))

	got, err = repo.Create(ctx, models.TodoCreate{Text: "Standup", DueDate: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", got.DueDate)
	assert.Equal(t, "2025-06-01.md", got.FilePath)
	assert.Equal(t, "- [ ] Standup\n", testutil.ReadFile(t, store, "2025-06-01.md"))

	got, err = repo.Create(ctx, models.TodoCreate{Text: "Later", ProjectPath: "areas/home", DueDate: "2025-07-01"})
	require.NoError(t, err)
	assert.Equal(t, "areas/home/2025-07-01.md", got.FilePath)
	assert.Equal(t, "home", got.Project)

	_, err = repo.Create(ctx, models.TodoCreate{Text: "   "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateRejectsLineBreaks(t *testing.T) {
	repo, store := newRepo(t, map[string]string{"inbox.md": "- [ ] a\n"})
	ctx := context.Background()

	_, err := repo.Create(ctx, models.TodoCreate{Text: "one\n- [x] two"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = repo.Create(ctx, models.TodoCreate{Text: "one", Tags: []string{"x\n- [ ] two"}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.Equal(t, "- [ ] a\n", testutil.ReadFile(t, store, "inbox.md"))

	got, err := repo.Create(ctx, models.TodoCreate{Text: "one", Tags: []string{"#home", "side-project"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "side-project"}, got.Tags)
}

func TestProjectsAndPaths(t *testing.T) {
	repo, _ := newRepo(t, map[string]string{
		"inbox.md":                  "- [ ] a\n",
		"projects/alpha/x.md":       "- [ ] b\n",
		"projects/alpha/sub/y.md":   "- [ ] c\n",
		"areas/Health/z.md":         "- [ ] d\n",
		"projects/empty/nothing.md": "no todos\n",
	})
	ctx := context.Background()

	projects, err := repo.Projects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "alpha/sub", "health", NoProject}, projects)

	paths, err := repo.ProjectPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"areas/Health", "projects/alpha", "projects/alpha/sub"}, paths)
}
