package ticketdoc

import (
	"fmt"
	"strings"

	"github.com/starford/vaultboard/internal/models"
)

// Patch applies a partial update to existing file content. Only the parts
// named by the update change: other frontmatter keys keep their order and
// value, and body text outside the touched line or section is left
// byte-for-byte as it was. The "updated" timestamp is always refreshed.
func Patch(content string, u models.TicketUpdate) (string, error) {
	doc, err := splitDocument(content)
	if err != nil {
		return "", err
	}
	fm := doc.mapping()
	set(fm, keyUpdated, stringNode(models.Timestamp(now())))

	if u.Status.Set {
		if u.Status.Null || u.Status.Value == "" {
			remove(fm, keyStatus)
		} else {
			set(fm, keyStatus, stringNode(string(u.Status.Value)))
		}
	}
	if u.Priority.Set {
		if u.Priority.Null || u.Priority.Value == "" {
			remove(fm, keyPriority)
		} else {
			set(fm, keyPriority, stringNode(string(u.Priority.Value)))
		}
	}
	if u.Tags.Set {
		set(fm, keyTags, listNode(cleanList(u.Tags.Value)))
	}
	if u.DueDate.Set {
		setOptional(fm, keyDueDate, u.DueDate.Value)
	}
	if u.Label.Set {
		setOptional(fm, keyLabel, u.Label.Value)
	}
	if u.ArchivedAt.Set {
		setOptional(fm, keyArchivedAt, u.ArchivedAt.Value)
	}
	if u.Order.Set {
		if u.Order.Null {
			remove(fm, keyOrder)
		} else {
			set(fm, keyOrder, numberNode(u.Order.Value))
		}
	}

	body := doc.body
	if u.Body.Set {
		body = u.Body.Value
	}
	if u.Title.Present() {
		body = patchTitle(body, strings.TrimSpace(u.Title.Value))
	}
	if u.Description.Set {
		body = patchDescription(body, strings.TrimSpace(u.Description.Value))
	}
	if u.Source.Set {
		body = patchSource(body, strings.TrimSpace(u.Source.Value))
	}
	if u.AcceptanceCriteria.Set {
		body = patchCriteria(body, cleanList(u.AcceptanceCriteria.Value))
	}
	doc.body = body

	out, err := doc.render()
	if err != nil {
		return "", fmt.Errorf("patch: %w", err)
	}
	return out, nil
}

func patchTitle(body, title string) string {
	loc := titleRe.FindStringIndex(body)
	if loc == nil {
		if body == "" {
			return "# " + title + "\n"
		}
		return "# " + title + "\n\n" + body
	}
	cr := ""
	if strings.HasSuffix(body[loc[0]:loc[1]], "\r") {
		cr = "\r"
	}
	return body[:loc[0]] + "# " + title + cr + body[loc[1]:]
}

func patchSource(body, source string) string {
	m := sourceRe.FindStringSubmatchIndex(body)
	switch {
	case m == nil && source == "":
		return body
	case m == nil:
		return insertAfterTitle(body, sourcePrefix+source+"\n")
	case source == "":
		return removeRange(body, m[0], lineEnd(body, m[0]))
	default:
		if strings.HasSuffix(body[m[2]:m[3]], "\r") {
			source += "\r"
		}
		return body[:m[2]] + source + body[m[3]:]
	}
}

func patchDescription(body, description string) string {
	s, ok := findSection(body, descriptionRe)
	switch {
	case !ok && description == "":
		return body
	case !ok:
		return insertAfterSource(body, descriptionHeader+"\n"+description+"\n")
	case description == "":
		return removeRange(body, s.start, s.contentEnd)
	default:
		return replaceSection(body, s, description+"\n")
	}
}

func patchCriteria(body string, items []string) string {
	s, ok := findSection(body, criteriaRe)
	switch {
	case !ok && len(items) == 0:
		return body
	case !ok:
		return appendBlock(body, criteriaHeader+"\n"+renderCriteria(items, nil))
	case len(items) == 0:
		return removeRange(body, s.start, s.contentEnd)
	default:
		return replaceSection(body, s, renderCriteria(items, checkedCriteria(body)))
	}
}

// insertAfterSource places a new block below the source line when there is
// one, otherwise below the title.
func insertAfterSource(body, block string) string {
	loc := sourceRe.FindStringIndex(body)
	if loc == nil {
		return insertAfterTitle(body, block)
	}
	at := lineEnd(body, loc[0])
	if at == len(body) && !strings.HasSuffix(body, "\n") {
		body += "\n"
		at = len(body)
	}
	return body[:at] + "\n" + block + body[at:]
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
