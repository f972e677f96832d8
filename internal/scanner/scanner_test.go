package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbouchard/cineorg/internal/localfs"
	"github.com/kbouchard/cineorg/internal/model"
)

func writeFileOfSize(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestScanAcceptsMovieAndRejectsIgnoredNames(t *testing.T) {
	root := t.TempDir()
	writeFileOfSize(t, filepath.Join(root, "Films", "The.Matrix.1999.mkv"), 1000)
	writeFileOfSize(t, filepath.Join(root, "Films", "The.Matrix.1999.sample.mkv"), 1000)
	writeFileOfSize(t, filepath.Join(root, "Films", "readme.txt"), 10)

	s := New(localfs.New(), nil, 0)
	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "The.Matrix.1999.mkv", res.Accepted[0].VideoFile.Filename)
	assert.Equal(t, moviesSubtree, res.Accepted[0].SourceSubtree)
	assert.Equal(t, model.MediaTypeMovie, res.Accepted[0].Parsed.Type)
}

func TestScanSeparatesBelowSizeLimit(t *testing.T) {
	root := t.TempDir()
	writeFileOfSize(t, filepath.Join(root, "Films", "Small.Movie.2020.mkv"), 100)
	writeFileOfSize(t, filepath.Join(root, "Films", "Big.Movie.2020.mkv"), 10000)

	s := New(localfs.New(), nil, 5000)
	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, res.BelowSizeLimit, 1)
	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "Small.Movie.2020.mkv", res.BelowSizeLimit[0].VideoFile.Filename)
	assert.Equal(t, "Big.Movie.2020.mkv", res.Accepted[0].VideoFile.Filename)
}

func TestScanSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	real := filepath.Join(root, "Films", "Real.Movie.2020.mkv")
	writeFileOfSize(t, real, 1000)
	link := filepath.Join(root, "Films", "Linked.Movie.2020.mkv")
	require.NoError(t, os.Symlink(real, link))

	s := New(localfs.New(), nil, 0)
	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "Real.Movie.2020.mkv", res.Accepted[0].VideoFile.Filename)
}

func TestScanDetectsCorrectedLocation(t *testing.T) {
	root := t.TempDir()
	writeFileOfSize(t, filepath.Join(root, "Films", "Breaking.Bad.S01E01.mkv"), 1000)

	s := New(localfs.New(), nil, 0)
	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, res.Accepted, 1)
	assert.True(t, res.Accepted[0].CorrectedLocation)
}

func TestScanMissingSubtreeIsSkipped(t *testing.T) {
	root := t.TempDir()
	s := New(localfs.New(), nil, 0)
	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, res.Accepted)
	assert.Empty(t, res.BelowSizeLimit)
}

func TestSubtreeNames(t *testing.T) {
	assert.Equal(t, "Films", MoviesSubtree())
	assert.Equal(t, "Séries", SeriesSubtree())
}
