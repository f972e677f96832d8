// Package renamer implements the Renamer (spec.md §4.8): pure functions
// producing canonical, filesystem-safe filenames. Grounded on
// original_source/src/services/renamer.py's sanitize_for_filesystem/
// generate_movie_filename/generate_series_filename.
package renamer

import (
	"fmt"
	"strings"

	"github.com/kbouchard/cineorg/internal/textnorm"
)

// maxStemLength is spec.md §4.8's MAX_FILENAME_LENGTH.
const maxStemLength = 200

// ellipsisPlaceholder stands in for literal "?" (and for an "…" already in
// the input) during the sanitize pass, so NFKC cannot expand the ellipsis
// into three dots.
const ellipsisPlaceholder = "\uE000"

var illegalCharReplacer = strings.NewReplacer(
	":", "-", "/", "-", "\\", "-", "*", "-", "\"", "-", "<", "-", ">", "-", "|", "-",
)

// platformIllegal covers the remaining filesystem-illegal characters not in
// the spec's explicit list (control characters), replaced conservatively.
func platformIllegal(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// Sanitize makes name safe to use as a filesystem path segment. It is
// idempotent: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(name string) string {
	s := strings.ReplaceAll(name, "…", ellipsisPlaceholder)
	s = textnorm.NFKC(s)
	s = textnorm.ExpandLigatures(s)
	s = illegalCharReplacer.Replace(s)
	s = strings.ReplaceAll(s, "?", ellipsisPlaceholder)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if platformIllegal(r) {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()
	s = strings.ReplaceAll(s, ellipsisPlaceholder, "…")

	s = collapseSpaces(s)
	s = strings.Trim(s, " -")

	return truncateStem(s, maxStemLength)
}

func truncateStem(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimRight(string(r[:max]), " -")
}

func collapseSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// Language renders the LANG token: the uppercase ISO code for a single
// audio language, or "MULTi" when 2 or more are present.
func Language(languages []string) string {
	switch len(languages) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(languages[0])
	default:
		return "MULTi"
	}
}

// MovieParams bundles the fields needed to render a movie filename.
type MovieParams struct {
	Title      string
	Year       *int
	Languages  []string
	VideoCodec string
	Resolution string
	Ext        string
}

// MovieFilename renders `{title} ({year}) {LANG} {CODEC} {RES}{ext}`,
// dropping missing fields (and their separators) cleanly.
func MovieFilename(p MovieParams) string {
	parts := []string{titleYear(p.Title, p.Year)}
	parts = appendIfNonEmpty(parts, Language(p.Languages))
	parts = appendIfNonEmpty(parts, p.VideoCodec)
	parts = appendIfNonEmpty(parts, p.Resolution)
	stem := strings.Join(parts, " ")
	return Sanitize(stem) + p.Ext
}

// SeriesParams bundles the fields needed to render a series episode
// filename.
type SeriesParams struct {
	Title        string
	Year         *int
	Season       int
	Episode      int
	EpisodeTitle string
	Languages    []string
	VideoCodec   string
	Resolution   string
	Ext          string
}

// SeriesFilename renders
// `{title} ({year}) - S{NN}E{NN} - {episode_title} - {LANG} {CODEC} {RES}{ext}`,
// dropping missing fields (and their separators) cleanly.
func SeriesFilename(p SeriesParams) string {
	segments := []string{
		titleYear(p.Title, p.Year),
		fmt.Sprintf("S%02dE%02d", p.Season, p.Episode),
	}
	if p.EpisodeTitle != "" {
		segments = append(segments, p.EpisodeTitle)
	}
	tech := strings.Join(appendIfNonEmpty(appendIfNonEmpty(appendIfNonEmpty(nil,
		Language(p.Languages)), p.VideoCodec), p.Resolution), " ")
	if tech != "" {
		segments = append(segments, tech)
	}
	stem := strings.Join(segments, " - ")
	return Sanitize(stem) + p.Ext
}

func titleYear(title string, year *int) string {
	if year != nil {
		return fmt.Sprintf("%s (%d)", title, *year)
	}
	return title
}

func appendIfNonEmpty(parts []string, v string) []string {
	if v == "" {
		return parts
	}
	return append(parts, v)
}
