package todo

import (
	"path"
	"regexp"
	"strings"
)

// NoProject labels todos whose folders are all organisational categories.
const NoProject = "none"

// DefaultCategories are the PARA folders ignored when naming a project.
var DefaultCategories = []string{"areas", "projects", "resources", "archive"}

var (
	slugStripRe = regexp.MustCompile(`[^\w\s-]`)
	slugSpaceRe = regexp.MustCompile(`\s+`)
	slugDashRe  = regexp.MustCompile(`-+`)
)

// project derives the display label and the folder chain of a file.
// categories holds lowercased folder names to leave out of the label.
func project(relPath string, categories map[string]struct{}) (label, projectPath string) {
	dir := path.Dir(relPath)
	if dir == "." {
		return NoProject, ""
	}
	folders := strings.Split(dir, "/")
	var meaningful []string
	for _, f := range folders {
		if _, skip := categories[strings.ToLower(f)]; !skip {
			meaningful = append(meaningful, f)
		}
	}
	if len(meaningful) == 0 {
		return NoProject, dir
	}
	if len(meaningful) > 2 {
		meaningful = meaningful[:2]
	}
	for i, f := range meaningful {
		meaningful[i] = slugify(f)
	}
	return strings.Join(meaningful, "/"), dir
}

// slugify lowercases s, drops anything that is not a word character,
// space or hyphen, turns whitespace into hyphens and collapses repeats.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
