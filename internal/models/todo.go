package models

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Todo is one checkbox line somewhere in the vault. Its identity is the
// position of the line, so it is rebuilt from scratch on every scan.
type Todo struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	RawText     string   `json:"rawText"`
	Description string   `json:"description,omitempty"`
	Completed   bool     `json:"completed"`
	FilePath    string   `json:"filePath"`
	FileName    string   `json:"fileName"`
	LineNumber  int      `json:"lineNumber"`
	IndentLevel int      `json:"indentLevel"`
	ParentID    string   `json:"parentId,omitempty"`
	Project     string   `json:"project,omitempty"`
	ProjectPath string   `json:"projectPath,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Created     string   `json:"created,omitempty"`
}

// TodoCreate carries the fields accepted when appending a new todo.
type TodoCreate struct {
	Text        string   `json:"text"`
	ProjectPath string   `json:"projectPath,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Validate requires a non-blank text and well-formed optional fields.
func (c *TodoCreate) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Text, validation.Required, validation.By(notBlank), validation.By(singleLine)),
		validation.Field(&c.DueDate, dateRule),
		validation.Field(&c.Priority, priorityRule),
		validation.Field(&c.Tags, validation.Each(validation.By(tagName))),
	)
}

// TodoUpdate is a partial update of one todo line.
type TodoUpdate struct {
	Text        Field[string]   `json:"text"`
	Description Field[string]   `json:"description"`
	Completed   Field[bool]     `json:"completed"`
	DueDate     Field[string]   `json:"dueDate"`
	Priority    Field[Priority] `json:"priority"`
	Tags        Field[[]string] `json:"tags"`
}

// Validate checks the members that are present.
func (u *TodoUpdate) Validate() error {
	errs := validation.Errors{}
	if u.Text.Present() {
		errs["text"] = validation.Validate(u.Text.Value, validation.Required, validation.By(notBlank), validation.By(singleLine))
	}
	if u.Description.Present() {
		errs["description"] = validation.Validate(u.Description.Value, validation.By(noCheckboxLines))
	}
	if u.Tags.Present() {
		errs["tags"] = validation.Validate(u.Tags.Value, validation.Each(validation.By(tagName)))
	}
	if u.DueDate.Present() {
		errs["dueDate"] = validation.Validate(u.DueDate.Value, dateRule)
	}
	if u.Priority.Present() {
		errs["priority"] = validation.Validate(u.Priority.Value, priorityRule)
	}
	return errs.Filter()
}

// RewritesLine reports whether the update changes anything beyond the checkbox.
func (u *TodoUpdate) RewritesLine() bool {
	return u.Text.Set || u.DueDate.Set || u.Priority.Set || u.Tags.Set
}

var (
	tagNameRe      = regexp.MustCompile(`^#?[\w-]+$`)
	checkboxLineRe = regexp.MustCompile(`(?m)^\s*- \[[ xX]\]`)
)

func notBlank(value any) error {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "cannot be blank")
	}
	return nil
}


// singleLine rejects values that would spill onto further lines of a
// markdown file.
func singleLine(value any) error {
	if s, ok := value.(string); ok && strings.ContainsAny(s, "\r\n") {
		return validation.NewError("validation_single_line", "must be a single line")
	}
	return nil
}

func tagName(value any) error {
	if s, ok := value.(string); ok && !tagNameRe.MatchString(strings.TrimSpace(s)) {
		return validation.NewError("validation_tag_name", "must be a single word of letters, digits, _ or -")
	}
	return nil
}

// noCheckboxLines rejects description text containing a checkbox line,
// which would be read back as a child todo.
func noCheckboxLines(value any) error {
	if s, ok := value.(string); ok && checkboxLineRe.MatchString(s) {
		return validation.NewError("validation_checkbox_line", "cannot contain checkbox lines")
	}
	return nil
}
