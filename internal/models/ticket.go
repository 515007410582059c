// Package models defines the domain types shared by the ticket and todo subsystems.
package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Layouts used for dates and timestamps stored in markdown.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Timestamp formats t as an ISO-8601 UTC timestamp with millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// TicketStatus is the workflow state of a ticket.
type TicketStatus string

// Ticket statuses.
const (
	StatusTodo       TicketStatus = "todo"
	StatusInProgress TicketStatus = "in-progress"
	StatusDone       TicketStatus = "done"
)

// Priority is shared by tickets and inline todo tokens.
type Priority string

// Priority levels.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Defaults applied when a ticket's frontmatter omits status or priority.
const (
	DefaultStatus   = StatusTodo
	DefaultPriority = PriorityMedium
)

var (
	statusRule   = validation.In(StatusTodo, StatusInProgress, StatusDone)
	priorityRule = validation.In(PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent)
	dateRule     = validation.Date(DateLayout)
)

// ParsePriority maps a case-insensitive priority word to a Priority.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, true
	}
	return "", false
}

// Comment is one entry of a ticket's discussion thread.
type Comment struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Author    string `json:"author,omitempty" yaml:"author,omitempty"`
}

// Ticket is one markdown file inside a backlog folder.
type Ticket struct {
	ID                 string       `json:"id"`
	Filename           string       `json:"filename"`
	Backlog            string       `json:"backlog"`
	Title              string       `json:"title"`
	Status             TicketStatus `json:"status"`
	Priority           Priority     `json:"priority"`
	Tags               []string     `json:"tags"`
	Created            string       `json:"created"`
	Updated            string       `json:"updated"`
	DueDate            string       `json:"dueDate,omitempty"`
	Label              string       `json:"label,omitempty"`
	Source             string       `json:"source,omitempty"`
	Description        string       `json:"description,omitempty"`
	AcceptanceCriteria []string     `json:"acceptanceCriteria,omitempty"`
	Comments           []Comment    `json:"comments"`
	Order              *float64     `json:"order,omitempty"`
	ArchivedAt         string       `json:"archivedAt,omitempty"`
	Body               string       `json:"body"`
}

// TicketCreate carries the fields accepted when creating a ticket.
type TicketCreate struct {
	Title              string       `json:"title"`
	Backlog            string       `json:"backlog"`
	Status             TicketStatus `json:"status,omitempty"`
	Priority           Priority     `json:"priority,omitempty"`
	Tags               []string     `json:"tags,omitempty"`
	Label              string       `json:"label,omitempty"`
	Source             string       `json:"source,omitempty"`
	Description        string       `json:"description,omitempty"`
	AcceptanceCriteria []string     `json:"acceptanceCriteria,omitempty"`
	DueDate            string       `json:"dueDate,omitempty"`
	Order              *float64     `json:"order,omitempty"`
}

// Validate checks required fields and enumerations.
func (c *TicketCreate) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required, validation.By(notBlank), validation.By(singleLine)),
		validation.Field(&c.Backlog, validation.Required),
		validation.Field(&c.Status, statusRule),
		validation.Field(&c.Priority, priorityRule),
		validation.Field(&c.DueDate, dateRule),
		validation.Field(&c.Label, validation.By(singleLine)),
		validation.Field(&c.Source, validation.By(singleLine)),
		validation.Field(&c.AcceptanceCriteria, validation.Each(validation.By(singleLine))),
	)
}

// TicketUpdate is a partial update. A Field left unset is not touched; a null
// (or empty string, for optional strings) removes the value.
type TicketUpdate struct {
	Title              Field[string]       `json:"title"`
	Status             Field[TicketStatus] `json:"status"`
	Priority           Field[Priority]     `json:"priority"`
	Tags               Field[[]string]     `json:"tags"`
	DueDate            Field[string]       `json:"dueDate"`
	Label              Field[string]       `json:"label"`
	Source             Field[string]       `json:"source"`
	Description        Field[string]       `json:"description"`
	AcceptanceCriteria Field[[]string]     `json:"acceptanceCriteria"`
	Body               Field[string]       `json:"body"`
	Order              Field[float64]      `json:"order"`
	ArchivedAt         Field[string]       `json:"archivedAt"`
}

// Validate checks the members that are present.
func (u *TicketUpdate) Validate() error {
	errs := validation.Errors{}
	if u.Title.Present() {
		errs["title"] = validation.Validate(u.Title.Value, validation.Required, validation.By(notBlank), validation.By(singleLine))
	}
	if u.Label.Present() {
		errs["label"] = validation.Validate(u.Label.Value, validation.By(singleLine))
	}
	if u.Source.Present() {
		errs["source"] = validation.Validate(u.Source.Value, validation.By(singleLine))
	}
	if u.AcceptanceCriteria.Present() {
		errs["acceptanceCriteria"] = validation.Validate(u.AcceptanceCriteria.Value, validation.Each(validation.By(singleLine)))
	}
	if u.Status.Present() {
		errs["status"] = validation.Validate(u.Status.Value, statusRule)
	}
	if u.Priority.Present() {
		errs["priority"] = validation.Validate(u.Priority.Value, priorityRule)
	}
	if u.DueDate.Present() {
		errs["dueDate"] = validation.Validate(u.DueDate.Value, dateRule)
	}
	if u.ArchivedAt.Present() {
		errs["archivedAt"] = validation.Validate(u.ArchivedAt.Value, dateRule)
	}
	return errs.Filter()
}

// CommentCreate is the payload for appending a comment.
type CommentCreate struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

// Validate requires a non-blank text.
func (c *CommentCreate) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Text, validation.Required, validation.By(notBlank)),
	)
}
