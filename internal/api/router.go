package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(tickets TicketService, todos TodoService, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(tickets, todos)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", h.ListTickets)
		r.Post("/", h.CreateTicket)
		r.Get("/backlogs", h.ListBacklogs)
		r.Get("/meta/tags", h.ListTags)
		r.Get("/meta/labels", h.ListLabels)

		r.Get("/{id}", h.GetTicket)
		r.Put("/{id}", h.UpdateTicket)
		r.Delete("/{id}", h.ArchiveTicket)
		r.Post("/{id}/comments", h.AddComment)
		r.Delete("/{id}/comments/{commentId}", h.DeleteComment)
		r.Post("/{id}/move", h.MoveTicket)
	})

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", h.ListTodos)
		r.Post("/", h.CreateTodo)
		r.Get("/projects", h.ListProjects)
		r.Get("/project-paths", h.ListProjectPaths)
		r.Get("/{id}", h.GetTodo)
		r.Put("/{id}", h.UpdateTodo)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
