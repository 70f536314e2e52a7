// Package utils provides shared utilities for text, math, and logging.
package utils

// Truncate returns s cut to at most max runes, with "..." appended when
// anything was cut. The cut counts runes so multi-byte text is never
// split mid-character. If max is 0 or negative, returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
