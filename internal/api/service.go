package api

import (
	"context"

	"github.com/starford/vaultboard/internal/models"
)

// TicketService is the ticket repository as seen by the handlers.
type TicketService interface {
	Backlogs(ctx context.Context) ([]string, error)
	List(ctx context.Context, backlog string) ([]models.Ticket, error)
	Get(ctx context.Context, id, backlog string) (*models.Ticket, error)
	Create(ctx context.Context, in models.TicketCreate) (*models.Ticket, error)
	Update(ctx context.Context, id string, u models.TicketUpdate) (*models.Ticket, error)
	Archive(ctx context.Context, id string) (*models.Ticket, error)
	Tags(ctx context.Context, backlog string) ([]string, error)
	Labels(ctx context.Context, backlog string) ([]string, error)
	AddComment(ctx context.Context, id string, in models.CommentCreate) (*models.Ticket, error)
	DeleteComment(ctx context.Context, id, commentID string) (*models.Ticket, error)
	Move(ctx context.Context, id, afterID, beforeID string) (*models.Ticket, error)
}

// TodoService is the todo repository as seen by the handlers.
type TodoService interface {
	Scan(ctx context.Context) ([]models.Todo, error)
	Get(ctx context.Context, id string) (*models.Todo, error)
	Create(ctx context.Context, in models.TodoCreate) (*models.Todo, error)
	Update(ctx context.Context, id string, u models.TodoUpdate) (*models.Todo, error)
	Projects(ctx context.Context) ([]string, error)
	ProjectPaths(ctx context.Context) ([]string, error)
}
