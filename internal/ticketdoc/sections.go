package ticketdoc

import (
	"regexp"
	"strings"
)

// Section headers are written in English but the Dutch spellings found in
// older vaults are accepted when reading.
var (
	titleRe       = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)
	sourceRe      = regexp.MustCompile(`(?im)^\*\*(?:source|bron):\*\*[ \t]*(.*)$`)
	descriptionRe = regexp.MustCompile(`(?im)^##[ \t]*(?:description|beschrijving)[ \t]*\r?$`)
	criteriaRe    = regexp.MustCompile(`(?im)^##[ \t]*(?:acceptance[ \t]*criteria|acceptatiecriteria)[ \t]*\r?$`)
	headingRe     = regexp.MustCompile(`(?m)^#{1,2}(?:[ \t]|\r?$)`)
	checkboxRe    = regexp.MustCompile(`^\s*-\s*\[([ xX])\]\s*(.*)$`)
)

const (
	descriptionHeader = "## Description"
	criteriaHeader    = "## Acceptance Criteria"
	sourcePrefix      = "**Source:** "
)

// section locates a "## Header" block. Content runs from the line after the
// header up to, not including, the newline before the next level 1 or 2
// heading, or to the end of the body.
type section struct {
	start        int // first byte of the header line
	contentStart int
	contentEnd   int
}

func findSection(body string, header *regexp.Regexp) (section, bool) {
	loc := header.FindStringIndex(body)
	if loc == nil {
		return section{}, false
	}
	s := section{start: loc[0], contentStart: loc[1], contentEnd: len(body)}
	if s.contentStart < len(body) && body[s.contentStart] == '\n' {
		s.contentStart++
	}
	if next := headingRe.FindStringIndex(body[s.contentStart:]); next != nil {
		end := s.contentStart + next[0]
		if end > s.contentStart {
			end-- // newline ending the previous line
		}
		s.contentEnd = end
	}
	return s, true
}

func (s section) content(body string) string {
	return body[s.contentStart:s.contentEnd]
}

func parseTitle(body string) string {
	if m := titleRe.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func parseSource(body string) string {
	if m := sourceRe.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func parseDescription(body string) string {
	s, ok := findSection(body, descriptionRe)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s.content(body))
}

func parseCriteria(body string) []string {
	s, ok := findSection(body, criteriaRe)
	if !ok {
		return nil
	}
	var items []string
	for _, line := range strings.Split(s.content(body), "\n") {
		if m := checkboxRe.FindStringSubmatch(line); m != nil {
			if item := strings.TrimSpace(m[2]); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

// checkedCriteria returns the items of the section that are ticked.
func checkedCriteria(body string) map[string]bool {
	checked := map[string]bool{}
	s, ok := findSection(body, criteriaRe)
	if !ok {
		return checked
	}
	for _, line := range strings.Split(s.content(body), "\n") {
		if m := checkboxRe.FindStringSubmatch(line); m != nil && m[1] != " " {
			checked[strings.TrimSpace(m[2])] = true
		}
	}
	return checked
}

func renderCriteria(items []string, checked map[string]bool) string {
	var b strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if checked[item] {
			b.WriteString("- [x] ")
		} else {
			b.WriteString("- [ ] ")
		}
		b.WriteString(item)
		b.WriteByte('\n')
	}
	return b.String()
}

// replaceSection swaps the inner text of s, leaving the header and
// everything around the section as it was.
func replaceSection(body string, s section, text string) string {
	return body[:s.contentStart] + text + body[s.contentEnd:]
}

// removeRange cuts body[start:end] and swallows one blank line in front of
// it, the separator written when the block was inserted.
func removeRange(body string, start, end int) string {
	if start >= 2 && body[start-1] == '\n' && body[start-2] == '\n' {
		start--
	}
	return body[:start] + body[end:]
}

// lineEnd returns the index just past the newline ending the line at i.
func lineEnd(body string, i int) int {
	if j := strings.IndexByte(body[i:], '\n'); j >= 0 {
		return i + j + 1
	}
	return len(body)
}

// insertAfterTitle places block, separated by a blank line, right below the
// "# Title" line. Without a title the block goes to the top.
func insertAfterTitle(body, block string) string {
	loc := titleRe.FindStringIndex(body)
	if loc == nil {
		if body == "" {
			return block
		}
		return block + "\n" + body
	}
	at := loc[1]
	if at < len(body) && body[at] == '\n' {
		at++
	} else {
		body = body[:at] + "\n" + body[at:]
		at++
	}
	return body[:at] + "\n" + block + body[at:]
}

// appendBlock adds block at the end of body after a blank line.
func appendBlock(body, block string) string {
	if body == "" {
		return block
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return body + "\n" + block
}
