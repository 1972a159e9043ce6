package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the default cut-off for task descriptions in
// table output.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the smallest usable maxLen for Truncate. Anything
// shorter has no room for content plus the ellipsis.
const MinTruncateLen = 4

// Truncate flattens s to a single line and cuts it to maxLen runes,
// appending "..." when anything was dropped. Newlines and runs of
// whitespace collapse to single spaces first, so multi-line descriptions
// stay on one table row. maxLen values below MinTruncateLen are clamped.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// ShortID returns the first n characters of an identifier, enough to tell
// UUIDs apart in table output. Short inputs come back whole.
func ShortID(id string, n int) string {
	runes := []rune(id)
	if n <= 0 || len(runes) <= n {
		return id
	}
	return string(runes[:n])
}
