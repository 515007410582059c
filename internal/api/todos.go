package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListTodos handles GET /api/todos. Every call is a fresh vault scan.
//
//	@Summary		List all checkbox todos in the vault
//	@Tags			todos
//	@Produce		json
//	@Success		200	{array}	Todo
//	@Security		BearerAuth
//	@Router			/todos [get]
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	items, err := h.todos.Scan(r.Context())
	if err != nil {
		writeError(w, "scan todos", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetTodo handles GET /api/todos/{id}.
//
//	@Summary		Get a single todo
//	@Tags			todos
//	@Produce		json
//	@Param			id	path		string	true	"Todo ID"
//	@Success		200	{object}	Todo
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos/{id} [get]
func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.todos.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get todo", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTodo handles POST /api/todos.
//
//	@Summary		Append a todo to the matching inbox or daily note
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateTodoRequest	true	"Todo"
//	@Success		201		{object}	Todo
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos [post]
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.todos.Create(r.Context(), req)
	if err != nil {
		writeError(w, "create todo", err, slog.String("project", req.ProjectPath))
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTodo handles PUT /api/todos/{id}.
//
//	@Summary		Partially update a todo line
//	@Description	Returns 409 when the line changed on disk since the last scan.
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Todo ID"
//	@Param			body	body		UpdateTodoRequest	true	"Changed fields"
//	@Success		200		{object}	Todo
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos/{id} [put]
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.todos.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, "update todo", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ListProjects handles GET /api/todos/projects.
//
//	@Summary		Distinct project labels
//	@Tags			todos
//	@Produce		json
//	@Success		200	{array}	string
//	@Security		BearerAuth
//	@Router			/todos/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	items, err := h.todos.Projects(r.Context())
	if err != nil {
		writeError(w, "list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListProjectPaths handles GET /api/todos/project-paths.
//
//	@Summary		Distinct project folder paths
//	@Tags			todos
//	@Produce		json
//	@Success		200	{array}	string
//	@Security		BearerAuth
//	@Router			/todos/project-paths [get]
func (h *Handler) ListProjectPaths(w http.ResponseWriter, r *http.Request) {
	items, err := h.todos.ProjectPaths(r.Context())
	if err != nil {
		writeError(w, "list project paths", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
