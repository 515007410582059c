package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler holds API route handlers.
type Handler struct {
	tickets TicketService
	todos   TodoService
}

// NewHandler creates a new Handler.
func NewHandler(tickets TicketService, todos TodoService) *Handler {
	return &Handler{tickets: tickets, todos: todos}
}

// ListTickets handles GET /api/tickets.
//
//	@Summary		List tickets, optionally limited to one backlog
//	@Tags			tickets
//	@Produce		json
//	@Param			backlog	query		string	false	"Backlog namespace"
//	@Success		200		{array}		Ticket
//	@Security		BearerAuth
//	@Router			/tickets [get]
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	backlog := r.URL.Query().Get("backlog")
	items, err := h.tickets.List(r.Context(), backlog)
	if err != nil {
		writeError(w, "list tickets", err, slog.String("backlog", backlog))
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetTicket handles GET /api/tickets/{id}.
//
//	@Summary		Get a single ticket
//	@Tags			tickets
//	@Produce		json
//	@Param			id	path		string	true	"Ticket ID"
//	@Success		200	{object}	Ticket
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tickets/{id} [get]
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.tickets.Get(r.Context(), id, r.URL.Query().Get("backlog"))
	if err != nil {
		writeError(w, "get ticket", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTicket handles POST /api/tickets.
//
//	@Summary		Create a ticket in a backlog
//	@Tags			tickets
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateTicketRequest	true	"Ticket"
//	@Success		201		{object}	Ticket
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tickets [post]
func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.tickets.Create(r.Context(), req)
	if err != nil {
		writeError(w, "create ticket", err, slog.String("backlog", req.Backlog))
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTicket handles PUT /api/tickets/{id}.
//
//	@Summary		Partially update a ticket
//	@Description	Absent fields are untouched; null clears optional fields.
//	@Tags			tickets
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Ticket ID"
//	@Param			body	body		UpdateTicketRequest	true	"Changed fields"
//	@Success		200		{object}	Ticket
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tickets/{id} [put]
func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.tickets.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, "update ticket", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ArchiveTicket handles DELETE /api/tickets/{id}.
//
//	@Summary		Archive a ticket
//	@Description	Moves the file into the backlog's archive folder. Nothing is deleted.
//	@Tags			tickets
//	@Param			id	path	string	true	"Ticket ID"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tickets/{id} [delete]
func (h *Handler) ArchiveTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.tickets.Archive(r.Context(), id); err != nil {
		writeError(w, "archive ticket", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBacklogs handles GET /api/tickets/backlogs.
//
//	@Summary		List discovered backlog namespaces
//	@Tags			tickets
//	@Produce		json
//	@Success		200	{array}	string
//	@Security		BearerAuth
//	@Router			/tickets/backlogs [get]
func (h *Handler) ListBacklogs(w http.ResponseWriter, r *http.Request) {
	items, err := h.tickets.Backlogs(r.Context())
	if err != nil {
		writeError(w, "list backlogs", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListTags handles GET /api/tickets/meta/tags.
//
//	@Summary		Distinct ticket tags
//	@Tags			tickets
//	@Produce		json
//	@Param			backlog	query	string	false	"Backlog namespace"
//	@Success		200		{array}	string
//	@Security		BearerAuth
//	@Router			/tickets/meta/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	items, err := h.tickets.Tags(r.Context(), r.URL.Query().Get("backlog"))
	if err != nil {
		writeError(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListLabels handles GET /api/tickets/meta/labels.
//
//	@Summary		Distinct ticket labels
//	@Tags			tickets
//	@Produce		json
//	@Param			backlog	query	string	false	"Backlog namespace"
//	@Success		200		{array}	string
//	@Security		BearerAuth
//	@Router			/tickets/meta/labels [get]
func (h *Handler) ListLabels(w http.ResponseWriter, r *http.Request) {
	items, err := h.tickets.Labels(r.Context(), r.URL.Query().Get("backlog"))
	if err != nil {
		writeError(w, "list labels", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// AddComment handles POST /api/tickets/{id}/comments.
//
//	@Summary		Append a comment to a ticket
//	@Tags			tickets
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Ticket ID"
//	@Param			body	body		CreateCommentRequest	true	"Comment"
//	@Success		201		{object}	Ticket
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tickets/{id}/comments [post]
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.tickets.AddComment(r.Context(), id, req)
	if err != nil {
		writeError(w, "add comment", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// DeleteComment handles DELETE /api/tickets/{id}/comments/{commentId}.
//
//	@Summary		Remove a comment from a ticket
//	@Tags			tickets
//	@Produce		json
//	@Param			id			path		string	true	"Ticket ID"
//	@Param			commentId	path		string	true	"Comment ID"
//	@Success		200			{object}	Ticket
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tickets/{id}/comments/{commentId} [delete]
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	commentID := chi.URLParam(r, "commentId")
	t, err := h.tickets.DeleteComment(r.Context(), id, commentID)
	if err != nil {
		writeError(w, "delete comment", err, slog.String("id", id), slog.String("comment", commentID))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// MoveTicket handles POST /api/tickets/{id}/move.
//
//	@Summary		Reorder a ticket between two neighbours
//	@Tags			tickets
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Ticket ID"
//	@Param			body	body		MoveTicketRequest	true	"Neighbours"
//	@Success		200		{object}	Ticket
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tickets/{id}/move [post]
func (h *Handler) MoveTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req MoveTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.tickets.Move(r.Context(), id, req.AfterID, req.BeforeID)
	if err != nil {
		writeError(w, "move ticket", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}
