package organizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kbouchard/cineorg/internal/model"
)

func TestGetPriorityGenre(t *testing.T) {
	assert.Equal(t, "Divers", GetPriorityGenre(nil))
	assert.Equal(t, "Action", GetPriorityGenre([]string{"Drame", "Action"}))
	assert.Equal(t, "Horreur", GetPriorityGenre([]string{"Horreur", "Action"}))
	assert.Equal(t, "Obscure", GetPriorityGenre([]string{"Obscure"}))
}

func TestGetSortLetter(t *testing.T) {
	assert.Equal(t, "M", GetSortLetter("The Matrix"))
}

func TestMovieDestinationDir(t *testing.T) {
	year := 1999
	movie := model.Movie{Title: "The Matrix", Genres: []string{"Science-Fiction"}, Year: &year}
	got := MovieDestinationDir("/storage", movie)
	assert.Equal(t, "/storage/Films/Science-Fiction/M", got)
}

func TestSeriesDestinationDirWithYear(t *testing.T) {
	year := 2008
	series := model.Series{Title: "Breaking Bad", Year: &year}
	got := SeriesDestinationDir("/storage", series, 1)
	assert.Equal(t, "/storage/Séries/B/Breaking Bad (2008)/Saison 01", got)
}

func TestSeriesDestinationDirNoYear(t *testing.T) {
	series := model.Series{Title: "Breaking Bad"}
	got := SeriesDestinationDir("/storage", series, 3)
	assert.Equal(t, "/storage/Séries/B/Breaking Bad/Saison 03", got)
}

func TestSeriesRootDir(t *testing.T) {
	series := model.Series{Title: "Breaking Bad"}
	got := SeriesRootDir("/storage", series)
	assert.Equal(t, "/storage/Séries/B/Breaking Bad", got)
}
