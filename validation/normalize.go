package validation

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	invalidChars  = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRun     = regexp.MustCompile(`-+`)
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// NormalizeName turns free text into the stored form of a category or tag
// name: lowercase, hyphen separated, only [a-z0-9-]. It is idempotent.
func NormalizeName(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = invalidChars.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ParseTags splits a comma separated tag list, normalizing each entry and
// dropping empties and duplicates. Order of first appearance is kept.
func ParseTags(s string) []string {
	var tags []string
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		name := NormalizeName(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)
	}
	return tags
}

// IsSlug reports whether s is already a valid stored name.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}
