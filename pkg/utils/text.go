// Package utils provides shared helpers for text, vectors and logging.
package utils

import "unicode/utf8"

// Truncate returns s cut to maxLen runes with "..." appended if truncated.
// If maxLen is 0 or negative, s is returned unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
