package matchscore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatioIdentical(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("matrix", "matrix"))
}

func TestRatioEmpty(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("", ""))
}

func TestRatioCompletelyDifferent(t *testing.T) {
	r := Ratio("abc", "xyz")
	assert.Less(t, r, 50.0)
}

func TestRatioIndelNotLevenshtein(t *testing.T) {
	// "abc" vs "axc": LCS = "ac" (len 2) -> 2*2/6*100 = 66.67, matching
	// rapidfuzz/difflib. A plain Levenshtein ratio (substitution cost 1)
	// would instead yield (6-1)/6*100 = 83.33.
	assert.InDelta(t, 66.67, Ratio("abc", "axc"), 0.01)
}

func TestTokenSortRatioWordOrder(t *testing.T) {
	r := TokenSortRatio("Matrix, The", "The Matrix")
	assert.Greater(t, r, 90.0)
}

func TestTokenSortRatioAccentsAndCase(t *testing.T) {
	r := TokenSortRatio("Amélie", "amelie")
	assert.Greater(t, r, 95.0)
}

func TestTokenSortRatioPunctuationIgnored(t *testing.T) {
	r := TokenSortRatio("Spider-Man: Into the Spider-Verse", "Spider Man Into the Spider Verse")
	assert.Greater(t, r, 95.0)
}
