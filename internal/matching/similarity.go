// Package matching provides fuzzy skill matching between candidate and
// required skill lists.
package matching

import "strings"

// Similarity score constants
const (
	exactMatchScore = 1.0
	// substringScore is the fixed score when one skill name contains the
	// other (e.g. "react" vs "react.js"). Checked before edit distance.
	substringScore = 0.8
)

// Normalize canonicalizes a skill name for comparison: lowercase, trimmed.
func Normalize(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// Similarity returns a 0-1 similarity score between two normalized skill
// names: 1.0 for equality, 0.8 when one contains the other, otherwise
// 1 - editDistance/maxLen.
func Similarity(a, b string) float64 {
	if a == b {
		return exactMatchScore
	}
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return substringScore
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(editDistance(a, b))/float64(maxLen)
}

// editDistance computes the Levenshtein distance between two strings with
// unit cost for insert, delete and substitute. Two-row rolling table.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
