// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes vaultboard tickets and todos for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vaultboard/internal/models"
)

const formatURI = "vault://format"

// Tickets is the subset of the ticket repository the tools use.
type Tickets interface {
	Backlogs(ctx context.Context) ([]string, error)
	List(ctx context.Context, backlog string) ([]models.Ticket, error)
	Get(ctx context.Context, id, backlog string) (*models.Ticket, error)
	Create(ctx context.Context, in models.TicketCreate) (*models.Ticket, error)
	Update(ctx context.Context, id string, u models.TicketUpdate) (*models.Ticket, error)
	Archive(ctx context.Context, id string) (*models.Ticket, error)
	AddComment(ctx context.Context, id string, in models.CommentCreate) (*models.Ticket, error)
}

// Todos is the subset of the todo repository the tools use.
type Todos interface {
	Scan(ctx context.Context) ([]models.Todo, error)
	Create(ctx context.Context, in models.TodoCreate) (*models.Todo, error)
	Update(ctx context.Context, id string, u models.TodoUpdate) (*models.Todo, error)
}

// Server wraps the MCP server with vaultboard tools.
type Server struct {
	mcp     *server.MCPServer
	tickets Tickets
	todos   Todos
}

// New creates a new MCP server with all tools registered.
func New(tickets Tickets, todos Todos) *Server {
	s := &Server{tickets: tickets, todos: todos}

	s.mcp = server.NewMCPServer(
		"vaultboard",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_backlogs",
		mcp.WithDescription("List the backlog namespaces found in the vault (folders containing a backlog/ directory)."),
	), s.listBacklogs)

	s.mcp.AddTool(mcp.NewTool("list_tickets",
		mcp.WithDescription("List tickets of one backlog, or of all backlogs."),
		mcp.WithString("backlog", mcp.Description("Backlog namespace, e.g. projects/alpha (empty for all)")),
	), s.listTickets)

	s.mcp.AddTool(mcp.NewTool("get_ticket",
		mcp.WithDescription("Read one ticket by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Ticket id from the frontmatter")),
	), s.getTicket)

	s.mcp.AddTool(mcp.NewTool("create_ticket",
		mcp.WithDescription("Create a ticket file in a backlog. See the "+formatURI+" resource for the file layout."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Ticket title")),
		mcp.WithString("backlog", mcp.Required(), mcp.Description("Backlog namespace")),
		mcp.WithString("status", mcp.Enum(string(models.StatusTodo), string(models.StatusInProgress), string(models.StatusDone))),
		mcp.WithString("priority", priorityEnum()),
		mcp.WithArray("tags", mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("label"),
		mcp.WithString("source", mcp.Description("Where the ticket came from")),
		mcp.WithString("description"),
		mcp.WithArray("acceptanceCriteria", mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("dueDate", mcp.Description("YYYY-MM-DD")),
	), s.createTicket)

	s.mcp.AddTool(mcp.NewTool("update_ticket",
		mcp.WithDescription("Change fields of a ticket. Only the arguments given are touched; "+
			"an empty string clears an optional field."),
		mcp.WithString("id", mcp.Required()),
		mcp.WithString("title"),
		mcp.WithString("status", mcp.Enum(string(models.StatusTodo), string(models.StatusInProgress), string(models.StatusDone))),
		mcp.WithString("priority", priorityEnum()),
		mcp.WithArray("tags", mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("label"),
		mcp.WithString("source"),
		mcp.WithString("description"),
		mcp.WithArray("acceptanceCriteria", mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("dueDate", mcp.Description("YYYY-MM-DD")),
	), s.updateTicket)

	s.mcp.AddTool(mcp.NewTool("archive_ticket",
		mcp.WithDescription("Move a ticket into its backlog's archive folder."),
		mcp.WithString("id", mcp.Required()),
	), s.archiveTicket)

	s.mcp.AddTool(mcp.NewTool("add_comment",
		mcp.WithDescription("Append a comment to a ticket."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Ticket id")),
		mcp.WithString("text", mcp.Required()),
		mcp.WithString("author"),
	), s.addComment)

	s.mcp.AddTool(mcp.NewTool("list_todos",
		mcp.WithDescription("Scan the vault for checkbox todos."),
		mcp.WithString("project", mcp.Description("Only todos whose project label matches")),
		mcp.WithBoolean("includeCompleted", mcp.Description("Include checked items (default false)")),
	), s.listTodos)

	s.mcp.AddTool(mcp.NewTool("create_todo",
		mcp.WithDescription("Append a todo to <projectPath>/inbox.md, or to the daily note when dueDate is set."),
		mcp.WithString("text", mcp.Required()),
		mcp.WithString("projectPath", mcp.Description("Folder, e.g. projects/alpha")),
		mcp.WithString("dueDate", mcp.Description("YYYY-MM-DD")),
		mcp.WithString("priority", priorityEnum()),
		mcp.WithArray("tags", mcp.Items(map[string]any{"type": "string"})),
	), s.createTodo)

	s.mcp.AddTool(mcp.NewTool("set_todo_completed",
		mcp.WithDescription("Check or uncheck a todo."),
		mcp.WithString("id", mcp.Required()),
		mcp.WithBoolean("completed", mcp.Required()),
	), s.setTodoCompleted)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Vault Format",
			mcp.WithResourceDescription("Markdown layout of ticket files and todo lines."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func priorityEnum() mcp.PropertyOption {
	return mcp.Enum(string(models.PriorityLow), string(models.PriorityMedium), string(models.PriorityHigh), string(models.PriorityUrgent))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listBacklogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.tickets.Backlogs(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) listTickets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.tickets.List(ctx, req.GetString("backlog", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items)
}

func (s *Server) getTicket(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.tickets.Get(ctx, id, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t)
}

func (s *Server) createTicket(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := models.TicketCreate{
		Title:              req.GetString("title", ""),
		Backlog:            req.GetString("backlog", ""),
		Status:             models.TicketStatus(req.GetString("status", "")),
		Priority:           models.Priority(req.GetString("priority", "")),
		Tags:               req.GetStringSlice("tags", nil),
		Label:              req.GetString("label", ""),
		Source:             req.GetString("source", ""),
		Description:        req.GetString("description", ""),
		AcceptanceCriteria: req.GetStringSlice("acceptanceCriteria", nil),
		DueDate:            req.GetString("dueDate", ""),
	}
	t, err := s.tickets.Create(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t)
}

func (s *Server) updateTicket(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()
	var u models.TicketUpdate
	if title := req.GetString("title", ""); title != "" {
		u.Title = models.Some(title)
	}
	u.Status = stringField[models.TicketStatus](args, "status")
	u.Priority = stringField[models.Priority](args, "priority")
	u.DueDate = stringField[string](args, "dueDate")
	u.Label = stringField[string](args, "label")
	u.Source = stringField[string](args, "source")
	u.Description = stringField[string](args, "description")
	if _, ok := args["tags"]; ok {
		u.Tags = models.Some(req.GetStringSlice("tags", []string{}))
	}
	if _, ok := args["acceptanceCriteria"]; ok {
		u.AcceptanceCriteria = models.Some(req.GetStringSlice("acceptanceCriteria", []string{}))
	}

	t, err := s.tickets.Update(ctx, id, u)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t)
}

// stringField maps a tool argument onto a Field: absent stays unset,
// null or "" becomes a clear.
func stringField[T ~string](args map[string]any, key string) models.Field[T] {
	v, ok := args[key]
	if !ok {
		return models.Field[T]{}
	}
	s, _ := v.(string)
	if v == nil || s == "" {
		return models.Null[T]()
	}
	return models.Some(T(s))
}

func (s *Server) archiveTicket(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.tickets.Archive(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("archived: %s/backlog/archive/%s", t.Backlog, t.Filename)), nil
}

func (s *Server) addComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.tickets.AddComment(ctx, id, models.CommentCreate{
		Text:   req.GetString("text", ""),
		Author: req.GetString("author", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t.Comments[len(t.Comments)-1])
}

func (s *Server) listTodos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all, err := s.todos.Scan(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	project := strings.TrimSpace(req.GetString("project", ""))
	withDone := req.GetBool("includeCompleted", false)

	out := make([]models.Todo, 0, len(all))
	for _, t := range all {
		if t.Completed && !withDone {
			continue
		}
		if project != "" && t.Project != project {
			continue
		}
		out = append(out, t)
	}
	return jsonResult(out)
}

func (s *Server) createTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := s.todos.Create(ctx, models.TodoCreate{
		Text:        req.GetString("text", ""),
		ProjectPath: req.GetString("projectPath", ""),
		DueDate:     req.GetString("dueDate", ""),
		Priority:    models.Priority(req.GetString("priority", "")),
		Tags:        req.GetStringSlice("tags", nil),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t)
}

func (s *Server) setTodoCompleted(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	completed, err := req.RequireBool("completed")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.todos.Update(ctx, id, models.TodoUpdate{Completed: models.Some(completed)})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t)
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     VaultFormatContract,
		},
	}, nil
}
