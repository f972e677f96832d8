// Package matchscore implements the token-sort-ratio string similarity
// metric used by the Matcher and Symlink Repair: normalize, sort words, and
// compare via an Indel-distance ratio, scaled 0-100.
package matchscore

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kbouchard/cineorg/internal/textnorm"
)

// normalize case-folds, expands ligatures, strips accents and invisible
// characters, and collapses whitespace.
func normalize(s string) string {
	s = textnorm.StripInvisible(s)
	s = textnorm.ExpandLigatures(s)
	s = textnorm.NormalizeAccents(s)
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// tokenSort splits into words, sorts them, and rejoins.
func tokenSort(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// Ratio returns the Indel-distance similarity ratio of a and b, scaled
// 0-100, as `2*M / (len(a)+len(b))` where `M` is the length of a longest
// common subsequence of a and b — the same metric rapidfuzz's
// `token_sort_ratio` and Python's `difflib.SequenceMatcher(None, …).ratio()`
// compute (`2*M/T`, `T` the sum of both lengths). A plain Levenshtein ratio
// (substitution cost 1) is a different, more lenient metric and is not used
// here: `indelDistance` costs a substitution as a delete+insert pair (cost
// 2), which is exactly `len(a)+len(b) - 2*M`.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 100
	}
	dist := indelDistance(ra, rb)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	twiceM := total - dist
	return float64(twiceM) / float64(total) * 100
}

// indelDistance returns the minimum number of single-character insertions
// and deletions needed to turn a into b (substitutions are not a primitive
// move; a mismatch costs 2, as a delete followed by an insert).
func indelDistance(a, b []rune) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 2
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

// TokenSortRatio normalizes both strings, sorts their words independently,
// and returns the Indel ratio between the two results, 0-100.
func TokenSortRatio(a, b string) float64 {
	na := tokenSort(normalize(a))
	nb := tokenSort(normalize(b))
	return Ratio(na, nb)
}
