package todo

import "strings"

// indentLevel counts a tab as two spaces; every two spaces is one level.
func indentLevel(indent string) int {
	return len(strings.ReplaceAll(indent, "\t", "  ")) / 2
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// parents assigns each line the id of the nearest earlier line with a
// smaller indent level. ids and levels are parallel to the lines.
func parents(ids []string, levels []int) []string {
	type frame struct {
		id    string
		level int
	}
	out := make([]string, len(ids))
	var stack []frame
	for i := range ids {
		for len(stack) > 0 && stack[len(stack)-1].level >= levels[i] {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			out[i] = stack[len(stack)-1].id
		}
		stack = append(stack, frame{id: ids[i], level: levels[i]})
	}
	return out
}

// descBlock is the run of lines holding a todo's description, as a
// half-open range of line indexes. An empty block sits right below the todo.
type descBlock struct {
	start, end int
	text       string
}

// findDescription collects the lines after lines[at] that are indented
// deeper than level. Blank lines before the first collected line are
// skipped; a blank line after it ends the block, as do checkbox lines and
// lines at or above the todo's level.
func findDescription(lines []string, at, level int) descBlock {
	b := descBlock{start: at + 1, end: at + 1}
	var collected []string
	for j := at + 1; j < len(lines); j++ {
		raw := strings.TrimSuffix(lines[j], "\r")
		if strings.TrimSpace(raw) == "" {
			if len(collected) > 0 {
				break
			}
			continue
		}
		if anyCheckboxRe.MatchString(raw) || indentLevel(leadingWhitespace(raw)) <= level {
			break
		}
		collected = append(collected, strings.TrimSpace(raw))
		b.end = j + 1
	}
	b.text = strings.Join(collected, "\n")
	return b
}
