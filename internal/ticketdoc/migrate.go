package ticketdoc

import (
	"crypto/rand"
	"regexp"
	"strings"

	"github.com/starford/vaultboard/internal/models"
)

// Migration is the outcome of EnsureFrontmatter.
type Migration struct {
	Content        string
	HadFrontmatter bool
	// Changed is true when Content differs from the input and should be
	// written back.
	Changed bool
}

// EnsureFrontmatter gives a file the identity fields every ticket needs.
// A file without frontmatter gets a full default block with the original
// text kept as its body. A file with frontmatter only gains the id,
// created and updated keys it is missing. Running it twice changes nothing
// the second time.
func EnsureFrontmatter(content string) (Migration, error) {
	doc, err := splitDocument(content)
	if err != nil {
		return Migration{}, err
	}
	stamp := models.Timestamp(now())

	if doc.fm == nil || len(doc.fm.Content) == 0 {
		fm := newMapping()
		set(fm, keyID, stringNode(GenerateID()))
		set(fm, keyStatus, stringNode(string(models.DefaultStatus)))
		set(fm, keyPriority, stringNode(string(models.DefaultPriority)))
		set(fm, keyTags, listNode(nil))
		set(fm, keyCreated, stringNode(stamp))
		set(fm, keyUpdated, stringNode(stamp))
		had := doc.fm != nil
		doc.fm = fm
		out, err := doc.render()
		if err != nil {
			return Migration{}, err
		}
		return Migration{Content: out, HadFrontmatter: had, Changed: true}, nil
	}

	changed := false
	if _, ok := scalar(doc.fm, keyID); !ok {
		setFirst(doc.fm, keyID, stringNode(GenerateID()))
		changed = true
	}
	if _, ok := scalar(doc.fm, keyCreated); !ok {
		set(doc.fm, keyCreated, stringNode(stamp))
		changed = true
	}
	if _, ok := scalar(doc.fm, keyUpdated); !ok {
		set(doc.fm, keyUpdated, stringNode(stamp))
		changed = true
	}
	if !changed {
		return Migration{Content: content, HadFrontmatter: true}, nil
	}
	out, err := doc.render()
	if err != nil {
		return Migration{}, err
	}
	return Migration{Content: out, HadFrontmatter: true, Changed: true}, nil
}

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLen      = 10
	slugMaxLen = 50
)

// GenerateID returns a random 10 character [a-z0-9] ticket id.
func GenerateID() string {
	buf := make([]byte, idLen)
	if _, err := rand.Read(buf); err != nil {
		panic("ticketdoc: crypto/rand: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a title into a file stem: lowercase, runs of anything that is
// not [a-z0-9] collapsed to "-", trimmed, at most 50 characters.
func Slug(title string) string {
	s := nonSlugRe.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > slugMaxLen {
		s = strings.TrimRight(s[:slugMaxLen], "-")
	}
	if s == "" {
		s = "ticket"
	}
	return s
}

// Midpoint returns an order value between two neighbours. A missing
// neighbour is treated as one step past the other; with neither the
// result is 0.
func Midpoint(before, after *float64) float64 {
	switch {
	case before != nil && after != nil:
		return (*before + *after) / 2
	case before != nil:
		return *before + 1
	case after != nil:
		return *after - 1
	default:
		return 0
	}
}
