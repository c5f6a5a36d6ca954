package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "javascript", Normalize("  JavaScript "))
	assert.Equal(t, "node.js", Normalize("Node.js"))
	assert.Equal(t, "", Normalize("   "))
}

func TestSimilarity_ExactMatch(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("go", "go"))
	assert.Equal(t, 1.0, Similarity("", ""))
}

func TestSimilarity_SubstringContainment(t *testing.T) {
	// Containment short-circuits ahead of edit distance, fixed at 0.8.
	assert.Equal(t, 0.8, Similarity("react", "react.js"))
	assert.Equal(t, 0.8, Similarity("java script", "java"))
}

func TestSimilarity_EditDistance(t *testing.T) {
	// "golang" vs "goland": 1 substitution over max length 6.
	assert.InDelta(t, 1.0-1.0/6.0, Similarity("golang", "goland"), 1e-9)

	// "kitten" vs "sitting": classic distance 3 over max length 7.
	assert.InDelta(t, 1.0-3.0/7.0, Similarity("kitten", "sitting"), 1e-9)
}

func TestSimilarity_EmptyOperand(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("go", ""))
	assert.Equal(t, 0.0, Similarity("", "go"))
}

func TestSimilarity_Unrelated(t *testing.T) {
	score := Similarity("javascript", "node.js")
	assert.Less(t, score, DefaultThreshold)
}

func TestEditDistance_Symmetry(t *testing.T) {
	assert.Equal(t, editDistance("abc", "yabd"), editDistance("yabd", "abc"))
	assert.Equal(t, 4, editDistance("", "four"))
	assert.Equal(t, 0, editDistance("same", "same"))
}
