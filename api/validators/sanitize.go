package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString collapses runs of whitespace to single spaces and caps the
// result at maxLen bytes without splitting a multi-byte character.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 || len(cleaned) <= maxLen {
		return cleaned
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
		cut--
	}
	return strings.TrimSpace(cleaned[:cut])
}
