package api

import "github.com/starford/vaultboard/internal/models"

// Ticket is the ticket response type (aliased from the domain layer).
type Ticket = models.Ticket

// Todo is the todo response type (aliased from the domain layer).
type Todo = models.Todo

// CreateTicketRequest is the request body for creating a ticket.
type CreateTicketRequest = models.TicketCreate

// UpdateTicketRequest is a partial ticket update. Absent members are left
// alone; null clears optional fields.
type UpdateTicketRequest = models.TicketUpdate

// CreateCommentRequest is the request body for adding a comment.
type CreateCommentRequest = models.CommentCreate

// CreateTodoRequest is the request body for creating a todo.
type CreateTodoRequest = models.TodoCreate

// UpdateTodoRequest is a partial todo update.
type UpdateTodoRequest = models.TodoUpdate

// MoveTicketRequest positions a ticket between two neighbours.
type MoveTicketRequest struct {
	AfterID  string `json:"afterId,omitempty" example:"k2j4h5g6f7"`
	BeforeID string `json:"beforeId,omitempty" example:"a1b2c3d4e5"`
}
