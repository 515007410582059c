package ticketdoc

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/vaultboard/internal/apperr"
	"github.com/starford/vaultboard/internal/models"
)

// AddComment appends a comment to the frontmatter thread and returns the
// new content together with the stored comment.
func AddComment(content string, in models.CommentCreate) (string, models.Comment, error) {
	doc, err := splitDocument(content)
	if err != nil {
		return "", models.Comment{}, err
	}
	fm := doc.mapping()
	list, err := comments(fm)
	if err != nil {
		return "", models.Comment{}, err
	}
	stamp := models.Timestamp(now())
	c := models.Comment{
		ID:        uuid.NewString(),
		Text:      strings.TrimSpace(in.Text),
		Timestamp: stamp,
		Author:    strings.TrimSpace(in.Author),
	}
	if err := setComments(fm, append(list, c)); err != nil {
		return "", models.Comment{}, err
	}
	set(fm, keyUpdated, stringNode(stamp))
	out, err := doc.render()
	if err != nil {
		return "", models.Comment{}, err
	}
	return out, c, nil
}

// DeleteComment removes the comment with the given id.
func DeleteComment(content, commentID string) (string, error) {
	doc, err := splitDocument(content)
	if err != nil {
		return "", err
	}
	fm := doc.mapping()
	list, err := comments(fm)
	if err != nil {
		return "", err
	}
	kept := list[:0]
	for _, c := range list {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(list) {
		return "", fmt.Errorf("comment %s: %w", commentID, apperr.ErrNotFound)
	}
	if err := setComments(fm, kept); err != nil {
		return "", err
	}
	set(fm, keyUpdated, stringNode(models.Timestamp(now())))
	return doc.render()
}
