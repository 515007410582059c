// Package todo finds checkbox lines across a vault and edits them in place.
package todo

import (
	"regexp"
	"strings"
)

var (
	openRe = regexp.MustCompile(`^(\s*)- \[ \] (.*)$`)
	doneRe = regexp.MustCompile(`^(\s*)- \[[xX]\] (.*)$`)
	// anyCheckboxRe stops description blocks; it is looser than the todo
	// patterns so that empty checkboxes also end a block.
	anyCheckboxRe = regexp.MustCompile(`^\s*- \[[ xX]\]`)
)

const fence = "```"

// line is one checkbox match within a file.
type line struct {
	index     int // 0-based line index
	indent    string
	text      string
	completed bool
}

// splitLines splits content on "\n". A trailing "\r" stays on each line.
func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

// matchLine classifies a single line, ignoring a trailing "\r".
func matchLine(raw string) (indent, text string, completed, ok bool) {
	s := strings.TrimSuffix(raw, "\r")
	if m := openRe.FindStringSubmatch(s); m != nil {
		return m[1], m[2], false, true
	}
	if m := doneRe.FindStringSubmatch(s); m != nil {
		return m[1], m[2], true, true
	}
	return "", "", false, false
}

// scanLines makes one pass over lines and returns the checkbox lines that
// sit outside the leading frontmatter block and outside fenced code.
// Checkboxes whose text is blank are dropped.
func scanLines(lines []string) []line {
	var (
		out           []line
		inFrontmatter bool
		inCode        bool
	)
	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if i == 0 && trimmed == "---" {
			inFrontmatter = true
			continue
		}
		if inFrontmatter {
			if trimmed == "---" {
				inFrontmatter = false
			}
			continue
		}
		if strings.HasPrefix(trimmed, fence) {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		indent, text, completed, ok := matchLine(raw)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, line{index: i, indent: indent, text: text, completed: completed})
	}
	return out
}
