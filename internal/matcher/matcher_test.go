package matcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/port"
)

func y(v int) *int { return &v }

func TestScoreMovieRanksExactTitleAndYearFirst(t *testing.T) {
	m := New()
	query := Query{Title: "The Matrix", Year: y(1999)}
	hits := []model.SearchHit{
		{ID: "1", Title: "The Matrix Reloaded", Year: y(2003)},
		{ID: "2", Title: "The Matrix", Year: y(1999)},
	}
	scored := m.Score(query, hits, nil)
	require.Len(t, scored, 2)
	assert.Equal(t, "2", scored[0].ID)
	assert.Greater(t, scored[0].Score, scored[1].Score)
}

func TestScoreMovieWithDuration(t *testing.T) {
	m := New()
	query := Query{Title: "The Matrix", Year: y(1999), DurationSeconds: y(8160)}
	hits := []model.SearchHit{{ID: "1", Title: "The Matrix", Year: y(1999)}}
	scored := m.Score(query, hits, map[string]int{"1": 8160})
	require.Len(t, scored, 1)
	assert.Equal(t, 100.0, scored[0].Score)
}

func TestScoreSeriesUsesTitleOnly(t *testing.T) {
	m := New()
	query := Query{Title: "Breaking Bad", IsSeries: true}
	hits := []model.SearchHit{{ID: "1", Title: "Breaking Bad"}}
	scored := m.Score(query, hits, nil)
	require.Len(t, scored, 1)
	assert.Equal(t, 100.0, scored[0].Score)
}

type fakeCatalogClient struct {
	counts map[string]int
	err    error
}

func (f *fakeCatalogClient) Source() model.CatalogSource { return model.SourceSeries }
func (f *fakeCatalogClient) Search(ctx context.Context, title string, year *int) ([]model.SearchHit, error) {
	return nil, nil
}
func (f *fakeCatalogClient) GetDetails(ctx context.Context, id string) (*model.MediaDetails, error) {
	return nil, nil
}
func (f *fakeCatalogClient) GetEpisodeCount(ctx context.Context, seriesID string, season int) (*int, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.counts[seriesID]; ok {
		return &v, nil
	}
	return nil, nil
}

var _ port.CatalogClient = (*fakeCatalogClient)(nil)

func TestFilterByEpisodeCountEliminatesShortSeasons(t *testing.T) {
	m := New()
	cc := &fakeCatalogClient{counts: map[string]int{"1": 8, "2": 20}}
	query := Query{Season: y(1), Episode: y(10)}
	hits := []model.SearchHit{{ID: "1"}, {ID: "2"}}
	kept := m.FilterByEpisodeCount(context.Background(), cc, query, hits)
	require.Len(t, kept, 1)
	assert.Equal(t, "2", kept[0].ID)
}

func TestFilterByEpisodeCountKeepsAllOnTotalElimination(t *testing.T) {
	m := New()
	cc := &fakeCatalogClient{counts: map[string]int{"1": 2}}
	query := Query{Season: y(1), Episode: y(10)}
	hits := []model.SearchHit{{ID: "1"}}
	kept := m.FilterByEpisodeCount(context.Background(), cc, query, hits)
	assert.Equal(t, hits, kept)
}

func TestFilterByEpisodeCountKeepsOnError(t *testing.T) {
	m := New()
	cc := &fakeCatalogClient{err: errors.New("boom")}
	query := Query{Season: y(1), Episode: y(10)}
	hits := []model.SearchHit{{ID: "1"}}
	kept := m.FilterByEpisodeCount(context.Background(), cc, query, hits)
	assert.Equal(t, hits, kept)
}

func TestFilterByEpisodeCountNoOpWithoutSeasonEpisode(t *testing.T) {
	m := New()
	hits := []model.SearchHit{{ID: "1"}}
	kept := m.FilterByEpisodeCount(context.Background(), nil, Query{}, hits)
	assert.Equal(t, hits, kept)
}
