// Package textnorm centralizes the title-normalization primitives shared by
// the Matcher, Organizer, Renamer and Symlink Repair: accent stripping,
// ligature folding, article stripping, sort-letter and sort-key derivation.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// IgnoredArticles lists the leading articles stripped before deriving a sort
// letter or sort key (French, English, German, Spanish).
var IgnoredArticles = map[string]bool{
	"le": true, "la": true, "les": true, "l'": true,
	"un": true, "une": true, "des": true,
	"the": true, "a": true, "an": true,
	"der": true, "die": true, "das": true, "ein": true, "eine": true,
	"el": true, "los": true, "las": true,
}

var ligatures = strings.NewReplacer(
	"œ", "oe", "Œ", "Oe",
	"æ", "ae", "Æ", "Ae",
)

// ExpandLigatures replaces œ/Œ/æ/Æ with their ASCII digraphs.
func ExpandLigatures(s string) string {
	return ligatures.Replace(s)
}

// StripInvisible removes Unicode format and control characters (BOM, LRM,
// RLM, and similar characters that sometimes leak in from catalog APIs).
func StripInvisible(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		cat := unicode.Cf
		if unicode.Is(cat, r) || unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeAccents strips diacritics via NFD decomposition followed by
// dropping Unicode Mn (non-spacing mark) runes.
func NormalizeAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NFKC applies Unicode NFKC (compatibility composition) normalization.
func NFKC(s string) string {
	return norm.NFKC.String(s)
}

// StripArticle removes a single leading article, handling both the
// apostrophe form ("l'Odyssée" -> "Odyssée") and the space-separated form
// ("The Matrix" -> "Matrix").
func StripArticle(title string) string {
	if title == "" {
		return title
	}
	lower := strings.ToLower(title)
	for article := range IgnoredArticles {
		if strings.HasSuffix(article, "'") && strings.HasPrefix(lower, article) {
			rest := title[len(article):]
			if rest != "" {
				return rest
			}
		}
	}
	fields := strings.SplitN(title, " ", 2)
	if len(fields) == 2 {
		first := strings.ToLower(fields[0])
		if IgnoredArticles[first] {
			return fields[1]
		}
	}
	return title
}

// SortLetter extracts the first significant alphabetic character of a title
// after article stripping and accent normalization; non-alphabetic first
// characters become "#".
func SortLetter(title string) string {
	if title == "" {
		return "#"
	}
	stripped := strings.TrimSpace(StripArticle(title))
	if stripped == "" {
		stripped = title
	}
	stripped = strings.TrimLeft(stripped, " ")
	if strings.TrimSpace(stripped) == "" {
		return "#"
	}
	first := []rune(stripped)[0]
	if unicode.IsLetter(first) {
		return strings.ToUpper(NormalizeAccents(string(first)))
	}
	return "#"
}

// SortKey derives the 2-character uppercase sort key used by the subdivision
// algorithm: strip article, accent-normalize, keep alphabetic characters
// only, take the first two, pad with "A" if shorter.
func SortKey(title string) string {
	stripped := strings.TrimSpace(StripArticle(title))
	stripped = NormalizeAccents(stripped)
	var letters strings.Builder
	for _, r := range stripped {
		if unicode.IsLetter(r) && r <= unicode.MaxASCII {
			letters.WriteRune(r)
		}
	}
	key := strings.ToUpper(letters.String())
	if len(key) >= 2 {
		return key[:2]
	}
	for len(key) < 2 {
		key += "A"
	}
	return key
}
