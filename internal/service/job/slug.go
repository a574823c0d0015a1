package job

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWordChars  = regexp.MustCompile(`[^\w-]+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// Slugify lowercases title, turns whitespace into hyphens, strips other non-word characters
// and collapses and trims hyphens. An empty result becomes "job".
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonWordChars.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "job"
	}
	return s
}

// newSlug appends the last 8 hex characters of a fresh uuid to the slugified title.
func newSlug(title string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return Slugify(title) + "-" + id[len(id)-8:]
}
