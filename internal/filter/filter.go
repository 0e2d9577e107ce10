// Package filter narrows and orders an already loaded list of posts.
// Nothing here touches storage.
package filter

import (
	"strings"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"
)

// Criteria are AND-combined. An empty field matches everything.
type Criteria struct {
	// Text matches title or description.
	Text string
	Mood string
	// Tag matches any of the post's tags.
	Tag string
}

// IsZero reports whether c filters nothing.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Text) == "" && strings.TrimSpace(c.Mood) == "" && strings.TrimSpace(c.Tag) == ""
}

// Apply returns the posts matching c, preserving order. Matching is a
// case-insensitive substring test. The input slice is not modified.
func Apply(posts []models.Post, c Criteria) []models.Post {
	text := fold(c.Text)
	mood := fold(c.Mood)
	tag := fold(c.Tag)

	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if text != "" && !contains(p.Title, text) && !contains(p.Description, text) {
			continue
		}
		if mood != "" && (p.Mood == nil || !contains(*p.Mood, mood)) {
			continue
		}
		if tag != "" && !anyContains(p.Tags, tag) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func contains(haystack, foldedNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), foldedNeedle)
}

func anyContains(values []string, foldedNeedle string) bool {
	for _, v := range values {
		if contains(v, foldedNeedle) {
			return true
		}
	}
	return false
}
