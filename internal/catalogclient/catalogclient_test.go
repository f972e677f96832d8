package catalogclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbouchard/cineorg/internal/model"
)

type fakeInner struct {
	failures   int
	calls      int
	source     model.CatalogSource
	searchHits []model.SearchHit
}

func (f *fakeInner) Source() model.CatalogSource { return f.source }

func (f *fakeInner) Search(ctx context.Context, title string, year *int) ([]model.SearchHit, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient")
	}
	return f.searchHits, nil
}

func (f *fakeInner) GetDetails(ctx context.Context, id string) (*model.MediaDetails, error) {
	return nil, nil
}

func (f *fakeInner) GetEpisodeCount(ctx context.Context, seriesID string, season int) (*int, error) {
	return nil, nil
}

func TestRateLimitedRetriesOnTransientFailure(t *testing.T) {
	inner := &fakeInner{failures: 2, searchHits: []model.SearchHit{{ID: "1"}}}
	rl := New(inner, time.Millisecond, 3)

	hits, err := rl.Search(context.Background(), "matrix", nil)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, 3, inner.calls)
}

func TestRateLimitedExhaustsRetries(t *testing.T) {
	inner := &fakeInner{failures: 10}
	rl := New(inner, time.Millisecond, 2)

	_, err := rl.Search(context.Background(), "matrix", nil)
	assert.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestRateLimitedDefaultsDelayWhenNonPositive(t *testing.T) {
	inner := &fakeInner{searchHits: []model.SearchHit{{ID: "1"}}}
	rl := New(inner, 0, 0)
	_, err := rl.Search(context.Background(), "matrix", nil)
	require.NoError(t, err)
}

func TestRateLimitedSourcePassesThrough(t *testing.T) {
	inner := &fakeInner{source: model.SourceMovies}
	rl := New(inner, time.Millisecond, 0)
	assert.Equal(t, model.SourceMovies, rl.Source())
}
