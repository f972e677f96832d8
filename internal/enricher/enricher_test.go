package enricher

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbouchard/cineorg/internal/matcher"
	"github.com/kbouchard/cineorg/internal/model"
)

type fakeCatalog struct {
	source        model.CatalogSource
	hits          []model.SearchHit
	details       map[string]*model.MediaDetails
	episodeCounts map[string]int
	err           error
}

func (f *fakeCatalog) Source() model.CatalogSource { return f.source }
func (f *fakeCatalog) Search(ctx context.Context, title string, year *int) ([]model.SearchHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}
func (f *fakeCatalog) GetDetails(ctx context.Context, id string) (*model.MediaDetails, error) {
	return f.details[id], nil
}
func (f *fakeCatalog) GetEpisodeCount(ctx context.Context, seriesID string, season int) (*int, error) {
	if f.episodeCounts == nil {
		return nil, nil
	}
	if count, ok := f.episodeCounts[seriesID]; ok {
		return &count, nil
	}
	return nil, nil
}

func TestEnrichAllSkipsItemsWithCandidates(t *testing.T) {
	e := New(&fakeCatalog{source: model.SourceMovies}, nil, matcher.New())
	pv := &model.PendingValidation{ID: uuid.New(), Candidates: []model.SearchHit{{ID: "1"}}}
	results := e.EnrichAll(context.Background(), []*model.PendingValidation{pv})
	assert.Empty(t, results)
}

func TestEnrichAllPopulatesCandidatesForMovie(t *testing.T) {
	movieCat := &fakeCatalog{
		source: model.SourceMovies,
		hits:   []model.SearchHit{{ID: "1", Title: "The Matrix", Year: intp(1999)}},
	}
	e := New(movieCat, nil, matcher.New())
	pv := &model.PendingValidation{
		ID:             uuid.New(),
		ParsedFilename: model.ParsedFilename{Type: model.MediaTypeMovie, Title: "The Matrix", Year: intp(1999)},
	}
	results := e.EnrichAll(context.Background(), []*model.PendingValidation{pv})
	require.Len(t, results, 1)
	assert.True(t, results[0].Enriched)
	assert.NotEmpty(t, pv.Candidates)
}

func TestEnrichAllNoCatalogAvailableMarksFailed(t *testing.T) {
	e := New(nil, nil, matcher.New())
	pv := &model.PendingValidation{
		ID:             uuid.New(),
		ParsedFilename: model.ParsedFilename{Type: model.MediaTypeMovie, Title: "The Matrix"},
	}
	results := e.EnrichAll(context.Background(), []*model.PendingValidation{pv})
	require.Len(t, results, 1)
	assert.True(t, results[0].Failed)
}

func TestEnrichAllEmptyHitsIsNotFailure(t *testing.T) {
	movieCat := &fakeCatalog{source: model.SourceMovies}
	e := New(movieCat, nil, matcher.New())
	pv := &model.PendingValidation{
		ID:             uuid.New(),
		ParsedFilename: model.ParsedFilename{Type: model.MediaTypeMovie, Title: "Obscure Title"},
	}
	results := e.EnrichAll(context.Background(), []*model.PendingValidation{pv})
	require.Len(t, results, 1)
	assert.False(t, results[0].Enriched)
	assert.False(t, results[0].Failed)
	assert.Empty(t, pv.Candidates)
}

func TestEnrichOneUsesBatchMaxEpisodeAsDiscriminator(t *testing.T) {
	// "Star-Crossed" S01E05 scanned alongside other episodes of the same
	// title up to E20; a same-season candidate whose real season only
	// has 13 episodes must be eliminated using the batch-wide max (20),
	// not just this file's own episode number (5), per spec.md §4.14 step 3.
	seriesCat := &fakeCatalog{
		source: model.SourceSeries,
		hits: []model.SearchHit{
			{ID: "wrong-show", Title: "Star-Crossed"},
			{ID: "correct-show", Title: "Star-Crossed"},
		},
		episodeCounts: map[string]int{"wrong-show": 13, "correct-show": 25},
	}
	e := New(nil, seriesCat, matcher.New())
	batchMax := 20
	pv := &model.PendingValidation{
		ID: uuid.New(),
		ParsedFilename: model.ParsedFilename{
			Type: model.MediaTypeSeries, Title: "Star-Crossed", Season: intp(1), Episode: intp(5),
		},
		BatchMaxEpisode: &batchMax,
	}
	results := e.EnrichAll(context.Background(), []*model.PendingValidation{pv})
	require.Len(t, results, 1)
	assert.True(t, results[0].Enriched)
	require.Len(t, pv.Candidates, 1, "the 13-episode candidate should be eliminated against the batch-wide max episode")
	assert.Equal(t, "correct-show", pv.Candidates[0].ID)
}

func intp(v int) *int { return &v }
