package todo

import (
	"path"
	"strings"
	"time"

	"github.com/starford/vaultboard/internal/checksum"
	"github.com/starford/vaultboard/internal/models"
)

// ParseFile returns the todos of one file. relPath is the slash-separated
// vault-relative path; modTime becomes every todo's created stamp.
func ParseFile(relPath, content string, modTime time.Time, categories map[string]struct{}) []models.Todo {
	lines := splitLines(content)
	matches := scanLines(lines)
	if len(matches) == 0 {
		return nil
	}

	base := path.Base(relPath)
	daily := dailyNoteDate(base)
	label, projectPath := project(relPath, categories)
	created := models.Timestamp(modTime)

	ids := make([]string, len(matches))
	levels := make([]int, len(matches))
	for i, m := range matches {
		ids[i] = checksum.PositionID(relPath, m.index+1)
		levels[i] = indentLevel(m.indent)
	}
	parentIDs := parents(ids, levels)

	out := make([]models.Todo, len(matches))
	for i, m := range matches {
		md := Extract(m.text)
		due := md.DueDate
		if due == "" {
			due = daily
		}
		out[i] = models.Todo{
			ID:          ids[i],
			Text:        md.Text,
			RawText:     m.text,
			Description: findDescription(lines, m.index, levels[i]).text,
			Completed:   m.completed,
			FilePath:    relPath,
			FileName:    strings.TrimSuffix(base, ".md"),
			LineNumber:  m.index + 1,
			IndentLevel: levels[i],
			ParentID:    parentIDs[i],
			Project:     label,
			ProjectPath: projectPath,
			DueDate:     due,
			Priority:    md.Priority,
			Tags:        md.Tags,
			Created:     created,
		}
	}
	return out
}

// CategorySet lowercases names into a lookup set.
func CategorySet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}
