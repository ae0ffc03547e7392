package model

import "strings"

// ParseTags splits tag box text into tag names. Tags are comma separated,
// surrounding whitespace and quotes are dropped, empty entries are skipped and
// repeats keep their first position.
func ParseTags(text string) []string {
	parts := strings.Split(text, ",")
	tags := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		tag := strings.Trim(strings.TrimSpace(p), `"`)
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
