package todo

import (
	"regexp"
	"sort"
	"strings"

	"github.com/starford/vaultboard/internal/models"
)

var (
	dateRe      = regexp.MustCompile(`\((\d{4}-\d{2}-\d{2})\)`)
	priorityRe  = regexp.MustCompile(`(?i)!(urgent|high|medium|low)\b`)
	tagRe       = regexp.MustCompile(`#([\w-]+)`)
	dailyNoteRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.md$`)
)

// Metadata is what Extract finds inside a todo's text.
type Metadata struct {
	Text     string
	DueDate  string
	Priority models.Priority
	Tags     []string
}

// Extract pulls the first (YYYY-MM-DD) date, the first !priority word and
// every #tag out of text. Each pattern is matched against the original
// text; its matches are then cut from the cleaned copy. Tags come back
// lowercased, deduplicated and sorted.
func Extract(text string) Metadata {
	var md Metadata
	clean := text

	if m := dateRe.FindStringSubmatch(text); m != nil {
		md.DueDate = m[1]
		clean = strings.Replace(clean, m[0], "", 1)
	}
	if m := priorityRe.FindStringSubmatch(text); m != nil {
		md.Priority = models.Priority(strings.ToLower(m[1]))
		clean = strings.Replace(clean, m[0], "", 1)
	}
	seen := map[string]bool{}
	for _, m := range tagRe.FindAllStringSubmatch(text, -1) {
		clean = strings.Replace(clean, m[0], "", 1)
		tag := strings.ToLower(m[1])
		if !seen[tag] {
			seen[tag] = true
			md.Tags = append(md.Tags, tag)
		}
	}
	sort.Strings(md.Tags)

	md.Text = strings.Join(strings.Fields(clean), " ")
	return md
}

// dailyNoteDate returns the date a file name encodes, if it is a daily note.
func dailyNoteDate(fileName string) string {
	if m := dailyNoteRe.FindStringSubmatch(fileName); m != nil {
		return m[1]
	}
	return ""
}
