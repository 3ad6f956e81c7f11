package feed

import (
	"regexp"
	"strings"
)

const (
	maxDescriptionLength = 500
	ellipsis             = "..."
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)

	// Only these six entities are decoded, in this order. Everything else passes through.
	entities = [][2]string{
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", `"`},
		{"&#39;", "'"},
		{"&nbsp;", " "},
	}
)

// cleanDescription turns product HTML into plain text of at most 500 code points.
// Tag stripping is a plain regexp pass, not an HTML parse.
func cleanDescription(raw string) string {
	if raw == "" {
		return ""
	}

	text := tagPattern.ReplaceAllString(raw, "")
	text = decodeEntities(text)
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) > maxDescriptionLength {
		return string(runes[:maxDescriptionLength-len(ellipsis)]) + ellipsis
	}

	return text
}

// decodeEntities replaces the entities one after another over the whole
// string, so "&amp;lt;" ends up as "<".
func decodeEntities(s string) string {
	for _, e := range entities {
		s = strings.ReplaceAll(s, e[0], e[1])
	}
	return s
}

// splitTags splits a comma separated tag list, trimming each tag and dropping
// empty ones.
func splitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}

	parts := strings.Split(tags, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			result = append(result, tag)
		}
	}

	return result
}
