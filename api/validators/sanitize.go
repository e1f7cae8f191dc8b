package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims surrounding whitespace, drops control characters and
// caps the result at maxLen runes. A maxLen of zero disables the cap.
// Free-text fields such as complaint descriptions pass through here before
// they reach the services.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)
	cleaned = strings.TrimSpace(cleaned)
	if maxLen <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= maxLen {
		return cleaned
	}
	return strings.TrimSpace(string(runes[:maxLen]))
}
