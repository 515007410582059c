// Package ticketdoc reads and writes ticket markdown files: YAML frontmatter
// plus a body with a title, an optional source line, and the Description and
// Acceptance Criteria sections.
package ticketdoc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/vaultboard/internal/apperr"
	"github.com/starford/vaultboard/internal/models"
)

// Frontmatter keys.
const (
	keyID         = "id"
	keyStatus     = "status"
	keyPriority   = "priority"
	keyTags       = "tags"
	keyCreated    = "created"
	keyUpdated    = "updated"
	keyDueDate    = "dueDate"
	keyLabel      = "label"
	keyOrder      = "order"
	keyArchivedAt = "archivedAt"
	keyComments   = "comments"
)

// now is swapped by tests.
var now = time.Now

// Parse builds a Ticket from file content. Missing fields fall back to
// defaults; only unreadable YAML is an error.
func Parse(content, filename, backlog string) (*models.Ticket, error) {
	doc, err := splitDocument(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	fm := doc.mapping()
	stamp := models.Timestamp(now())

	t := &models.Ticket{
		Filename: filename,
		Backlog:  backlog,
		Status:   models.DefaultStatus,
		Priority: models.DefaultPriority,
		Tags:     stringList(fm, keyTags),
		Created:  stamp,
		Updated:  stamp,
		Body:     doc.body,
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if v, ok := scalar(fm, keyID); ok {
		t.ID = v
	} else {
		t.ID = GenerateID()
	}
	if v, ok := scalar(fm, keyStatus); ok {
		t.Status = models.TicketStatus(v)
	}
	if v, ok := scalar(fm, keyPriority); ok {
		t.Priority = models.Priority(v)
	}
	if v, ok := scalar(fm, keyCreated); ok {
		t.Created = v
	}
	if v, ok := scalar(fm, keyUpdated); ok {
		t.Updated = v
	}
	if v, ok := scalar(fm, keyDueDate); ok {
		t.DueDate = datePart(v)
	}
	if v, ok := scalar(fm, keyLabel); ok {
		t.Label = v
	}
	if v, ok := scalar(fm, keyArchivedAt); ok {
		t.ArchivedAt = datePart(v)
	}
	if v, ok := scalar(fm, keyOrder); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			t.Order = &f
		}
	}
	t.Comments, err = comments(fm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	t.Title = parseTitle(doc.body)
	if t.Title == "" {
		t.Title = strings.TrimSuffix(filename, ".md")
	}
	t.Source = parseSource(doc.body)
	t.Description = parseDescription(doc.body)
	t.AcceptanceCriteria = parseCriteria(doc.body)
	return t, nil
}

// Serialize renders a brand-new ticket file. ID and timestamps are filled in
// when empty; the Body field is ignored in favour of the structured fields.
func Serialize(t *models.Ticket) (string, error) {
	stamp := models.Timestamp(now())
	id := t.ID
	if id == "" {
		id = GenerateID()
	}
	created := orDefault(t.Created, stamp)
	updated := orDefault(t.Updated, stamp)

	fm := newMapping()
	set(fm, keyID, stringNode(id))
	set(fm, keyStatus, stringNode(string(orDefault(t.Status, models.DefaultStatus))))
	set(fm, keyPriority, stringNode(string(orDefault(t.Priority, models.DefaultPriority))))
	set(fm, keyTags, listNode(t.Tags))
	set(fm, keyCreated, stringNode(created))
	set(fm, keyUpdated, stringNode(updated))
	setOptional(fm, keyDueDate, t.DueDate)
	setOptional(fm, keyLabel, t.Label)
	if t.Order != nil {
		set(fm, keyOrder, numberNode(*t.Order))
	}
	setOptional(fm, keyArchivedAt, t.ArchivedAt)
	if len(t.Comments) > 0 {
		if err := setComments(fm, t.Comments); err != nil {
			return "", err
		}
	}

	doc := document{fm: fm, body: renderBody(t)}
	return doc.render()
}

func renderBody(t *models.Ticket) string {
	var b strings.Builder
	b.WriteString("# " + strings.TrimSpace(t.Title) + "\n")
	if s := strings.TrimSpace(t.Source); s != "" {
		b.WriteString("\n" + sourcePrefix + s + "\n")
	}
	if d := strings.TrimSpace(t.Description); d != "" {
		b.WriteString("\n" + descriptionHeader + "\n" + d + "\n")
	}
	if items := renderCriteria(t.AcceptanceCriteria, nil); items != "" {
		b.WriteString("\n" + criteriaHeader + "\n" + items)
	}
	return b.String()
}

func comments(fm *yaml.Node) ([]models.Comment, error) {
	out := []models.Comment{}
	v := lookup(fm, keyComments)
	if v == nil || v.Kind != yaml.SequenceNode {
		return out, nil
	}
	if err := v.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: comments: %v", apperr.ErrParse, err)
	}
	return out, nil
}

func setComments(fm *yaml.Node, list []models.Comment) error {
	if len(list) == 0 {
		remove(fm, keyComments)
		return nil
	}
	var n yaml.Node
	if err := n.Encode(list); err != nil {
		return fmt.Errorf("encode comments: %w", err)
	}
	set(fm, keyComments, &n)
	return nil
}

// datePart keeps the YYYY-MM-DD prefix of a date or timestamp.
func datePart(v string) string {
	if len(v) >= len(models.DateLayout) {
		if _, err := time.Parse(models.DateLayout, v[:len(models.DateLayout)]); err == nil {
			return v[:len(models.DateLayout)]
		}
	}
	return v
}

func orDefault[T ~string](v, def T) T {
	if strings.TrimSpace(string(v)) == "" {
		return def
	}
	return v
}
