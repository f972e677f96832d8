// Package organizer implements the Organizer (spec.md §4.7): pure
// functions computing destination directories in the storage and symlink
// trees. Grounded on original_source/src/services/organizer.py, with
// spec.md's accented folder names ("Séries", "Comédie", "Mystère",
// "Téléfilm") overriding the original's ASCII spellings.
package organizer

import (
	"fmt"
	"path/filepath"

	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/textnorm"
)

// PriorityGenres is the fixed ordered hierarchy; the first entry present in
// a movie's genre list wins (spec.md §4.7).
var PriorityGenres = []string{
	"Animation", "Science-Fiction", "Fantastique", "Horreur", "Action",
	"Aventure", "Comédie", "Drame", "Thriller", "Crime", "Mystère",
	"Romance", "Guerre", "Histoire", "Musique", "Documentaire", "Famille",
	"Western", "Téléfilm",
}

// moviesDir and seriesDir are the two managed top-level subdirectories.
const (
	moviesDir = "Films"
	seriesDir = "Séries"
)

// GetPriorityGenre returns the highest-priority genre present in genres, or
// "Divers" when genres is empty. When genres is non-empty but none matches
// the hierarchy, the first listed genre is returned verbatim (DESIGN.md
// Open Question decision, following original_source/organizer.py).
func GetPriorityGenre(genres []string) string {
	if len(genres) == 0 {
		return "Divers"
	}
	set := make(map[string]bool, len(genres))
	for _, g := range genres {
		set[g] = true
	}
	for _, g := range PriorityGenres {
		if set[g] {
			return g
		}
	}
	return genres[0]
}

// GetSortLetter derives the bucket letter per spec.md §4.7.
func GetSortLetter(title string) string {
	return textnorm.SortLetter(title)
}

// MovieDestinationDir computes `{storage}/Films/{priority_genre}/{sort_letter}`.
func MovieDestinationDir(root string, movie model.Movie) string {
	return filepath.Join(root, moviesDir, GetPriorityGenre(movie.Genres), GetSortLetter(movie.Title))
}

// MovieSymlinkDir is the dedicated symlink-side equivalent of
// MovieDestinationDir, kept distinct so the mirror may diverge (spec.md
// §4.7).
func MovieSymlinkDir(root string, movie model.Movie) string {
	return MovieDestinationDir(root, movie)
}

// SeriesDestinationDir computes
// `{storage}/Séries/{sort_letter}/{title} ({year})/Saison {NN}`. Year is
// omitted from the title segment when unknown.
func SeriesDestinationDir(root string, series model.Series, season int) string {
	return filepath.Join(root, seriesDir, GetSortLetter(series.Title), seriesTitleSegment(series), seasonSegment(season))
}

// SeriesSymlinkDir is the dedicated symlink-side equivalent.
func SeriesSymlinkDir(root string, series model.Series, season int) string {
	return SeriesDestinationDir(root, series, season)
}

// SeriesRootDir computes the series-level directory (no season), used by
// the Cleanup Engine's misplaced/oversized scans.
func SeriesRootDir(root string, series model.Series) string {
	return filepath.Join(root, seriesDir, GetSortLetter(series.Title), seriesTitleSegment(series))
}

func seriesTitleSegment(series model.Series) string {
	if series.Year != nil {
		return fmt.Sprintf("%s (%d)", series.Title, *series.Year)
	}
	return series.Title
}

func seasonSegment(season int) string {
	return fmt.Sprintf("Saison %02d", season)
}
