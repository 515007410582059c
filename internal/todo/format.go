package todo

import (
	"regexp"
	"strings"

	"github.com/starford/vaultboard/internal/models"
)

var markerRe = regexp.MustCompile(`- \[[ xX]\]`)

// formatLine renders a todo in canonical form:
//
//	<indent>- [ ] text #tag1 #tag2 !priority (YYYY-MM-DD)
//
// The date is left out when it equals dailyDate, since the file name
// already carries it.
func formatLine(indent string, completed bool, text string, tags []string, priority models.Priority, dueDate, dailyDate string) string {
	var b strings.Builder
	b.WriteString(indent)
	if completed {
		b.WriteString("- [x] ")
	} else {
		b.WriteString("- [ ] ")
	}
	b.WriteString(strings.TrimSpace(text))
	for _, t := range tags {
		if t = strings.TrimPrefix(strings.TrimSpace(t), "#"); t != "" {
			b.WriteString(" #" + t)
		}
	}
	if priority != "" {
		b.WriteString(" !" + string(priority))
	}
	if dueDate != "" && dueDate != dailyDate {
		b.WriteString(" (" + dueDate + ")")
	}
	return b.String()
}

// setMarker flips only the checkbox of line, leaving the rest untouched.
func setMarker(line string, completed bool) string {
	loc := markerRe.FindStringIndex(line)
	if loc == nil {
		return line
	}
	marker := "- [ ]"
	if completed {
		marker = "- [x]"
	}
	return line[:loc[0]] + marker + line[loc[1]:]
}

// descriptionLines indents each non-blank line of text one level below a
// todo with the given indent.
func descriptionLines(indent, text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, indent+"  "+l)
		}
	}
	return out
}
