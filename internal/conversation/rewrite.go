// Package conversation keeps short-term dialogue memory, turns follow-ups into standalone
// queries, and drives routing and answer composition for each chat turn.
package conversation

import (
	"sort"
	"strings"
)

var vaguePhrases = map[string]bool{
	"summary":             true,
	"summarize":           true,
	"give summary":        true,
	"tell me the summary": true,
}

// RewriteIfVague expands a bare request for a summary into one naming every uploaded
// file. Matching ignores case and surrounding whitespace only. Filenames are deduplicated and sorted. Any other question, or any question asked
// with no files, is returned unchanged.
func RewriteIfVague(question string, filenames []string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	if !vaguePhrases[normalized] {
		return question
	}
	seen := make(map[string]bool, len(filenames))
	var names []string
	for _, f := range filenames {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		names = append(names, f)
	}
	if len(names) == 0 {
		return question
	}
	sort.Strings(names)
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "Give a combined summary of the following topics: " + strings.Join(quoted, ", ")
}
