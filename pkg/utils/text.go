// Package utils provides shared utilities for text, math, retries, and logging.
package utils

import "strings"

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// CountTokens approximates the token count of s as its number of whitespace-separated words.
func CountTokens(s string) int {
	return len(strings.Fields(s))
}
