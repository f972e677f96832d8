package renamer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeIllegalChars(t *testing.T) {
	assert.Equal(t, "A- B-C", Sanitize("A: B/C"))
}

func TestSanitizeIdempotent(t *testing.T) {
	in := "Spider-Man: Into the Spider-Verse?"
	once := Sanitize(in)
	twice := Sanitize(once)
	assert.Equal(t, once, twice)
}

func TestSanitizeTruncatesLongStem(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := Sanitize(long)
	assert.LessOrEqual(t, len([]rune(got)), 200)
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "", Language(nil))
	assert.Equal(t, "FR", Language([]string{"fr"}))
	assert.Equal(t, "MULTi", Language([]string{"fr", "en"}))
}

func TestMovieFilename(t *testing.T) {
	year := 1999
	got := MovieFilename(MovieParams{
		Title: "The Matrix", Year: &year, Languages: []string{"en"},
		VideoCodec: "x264", Resolution: "1080p", Ext: ".mkv",
	})
	assert.Equal(t, "The Matrix (1999) EN x264 1080p.mkv", got)
}

func TestMovieFilenameMissingFields(t *testing.T) {
	got := MovieFilename(MovieParams{Title: "Amelie", Ext: ".mkv"})
	assert.Equal(t, "Amelie.mkv", got)
}

func TestSeriesFilename(t *testing.T) {
	got := SeriesFilename(SeriesParams{
		Title: "Breaking Bad", Season: 1, Episode: 5, EpisodeTitle: "Gray Matter",
		Languages: []string{"en"}, VideoCodec: "x264", Resolution: "720p", Ext: ".mkv",
	})
	assert.Equal(t, "Breaking Bad - S01E05 - Gray Matter - EN x264 720p.mkv", got)
}

func TestSeriesFilenameNoEpisodeTitle(t *testing.T) {
	got := SeriesFilename(SeriesParams{Title: "Breaking Bad", Season: 1, Episode: 5, Ext: ".mkv"})
	assert.Equal(t, "Breaking Bad - S01E05.mkv", got)
}
