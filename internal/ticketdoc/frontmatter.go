package ticketdoc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/vaultboard/internal/apperr"
)

const delimiter = "---"

// document is a markdown file split at its frontmatter block. The
// frontmatter is kept as a yaml.Node mapping so that keys we do not know
// about, their order, and their comments survive a rewrite.
type document struct {
	fm   *yaml.Node // mapping node; nil when the file has no frontmatter block
	body string
}

// splitDocument separates a leading "---" delimited YAML block from the
// body. Content without an opening and closing delimiter is all body.
func splitDocument(content string) (document, error) {
	first, rest, found := strings.Cut(content, "\n")
	if !found || strings.TrimRight(first, "\r") != delimiter {
		return document{body: content}, nil
	}

	offset := 0
	for {
		line, after, more := strings.Cut(rest[offset:], "\n")
		if strings.TrimRight(line, "\r") == delimiter {
			fm, err := decodeMapping(rest[:offset])
			if err != nil {
				return document{}, err
			}
			if !more {
				after = ""
			}
			return document{fm: fm, body: after}, nil
		}
		if !more {
			// No closing delimiter: not frontmatter.
			return document{body: content}, nil
		}
		offset += len(line) + 1
	}
}

func decodeMapping(text string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: frontmatter: %v", apperr.ErrParse, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return newMapping(), nil
	}
	root := doc.Content[0]
	switch {
	case root.Kind == yaml.MappingNode:
		return root, nil
	case root.Kind == yaml.ScalarNode && root.Tag == "!!null":
		return newMapping(), nil
	default:
		return nil, fmt.Errorf("%w: frontmatter is not a mapping", apperr.ErrParse)
	}
}

// mapping returns the frontmatter, creating an empty one if absent.
func (d *document) mapping() *yaml.Node {
	if d.fm == nil {
		d.fm = newMapping()
	}
	return d.fm
}

// render joins frontmatter and body back into file content.
func (d *document) render() (string, error) {
	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	if d.fm != nil && len(d.fm.Content) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d.fm); err != nil {
			return "", fmt.Errorf("encode frontmatter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("encode frontmatter: %w", err)
		}
	}
	buf.WriteString(delimiter + "\n")
	buf.WriteString(d.body)
	return buf.String(), nil
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// lookup returns the value node for key, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// scalar returns the string value of key. Missing keys, null values and
// non-scalars report false.
func scalar(m *yaml.Node, key string) (string, bool) {
	v := lookup(m, key)
	if v == nil || v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
		return "", false
	}
	s := strings.TrimSpace(v.Value)
	return s, s != ""
}

// stringList reads a sequence of scalars. A plain scalar is read as a
// comma-separated list.
func stringList(m *yaml.Node, key string) []string {
	v := lookup(m, key)
	if v == nil {
		return nil
	}
	var raw []string
	switch v.Kind {
	case yaml.SequenceNode:
		for _, item := range v.Content {
			if item.Kind == yaml.ScalarNode {
				raw = append(raw, item.Value)
			}
		}
	case yaml.ScalarNode:
		if v.Tag != "!!null" {
			raw = strings.Split(v.Value, ",")
		}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func set(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, keyNode(key), value)
}

// setFirst sets key, moving a new key to the top of the mapping.
func setFirst(m *yaml.Node, key string, value *yaml.Node) {
	if lookup(m, key) != nil {
		set(m, key, value)
		return
	}
	m.Content = append([]*yaml.Node{keyNode(key), value}, m.Content...)
}

func remove(m *yaml.Node, key string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return
		}
	}
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

func stringNode(s string) *yaml.Node {
	n := &yaml.Node{}
	n.SetString(s)
	return n
}

func numberNode(f float64) *yaml.Node {
	tag := "!!float"
	if f == float64(int64(f)) {
		tag = "!!int"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: strconv.FormatFloat(f, 'f', -1, 64)}
}

func listNode(items []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if len(items) == 0 {
		n.Style = yaml.FlowStyle
	}
	for _, s := range items {
		n.Content = append(n.Content, stringNode(s))
	}
	return n
}

// setOptional writes a string key, or removes it when the value is empty.
func setOptional(m *yaml.Node, key, value string) {
	if strings.TrimSpace(value) == "" {
		remove(m, key)
		return
	}
	set(m, key, stringNode(value))
}
