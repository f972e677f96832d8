package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbouchard/cineorg/internal/model"
)

func y(v int) *int { return &v }

func TestApplyBatchMaxEpisodeGroupsByTitleAndSeason(t *testing.T) {
	// Crossed.S01E05 and Star-Crossed.S01E20 are different title groups;
	// each gets its own group's max, not the batch-wide max across titles.
	crossed := &model.PendingValidation{
		ParsedFilename: model.ParsedFilename{Type: model.MediaTypeSeries, Title: "Crossed", Season: y(1), Episode: y(5)},
	}
	starCrossedEp1 := &model.PendingValidation{
		ParsedFilename: model.ParsedFilename{Type: model.MediaTypeSeries, Title: "Star-Crossed", Season: y(1), Episode: y(1)},
	}
	starCrossedEp20 := &model.PendingValidation{
		ParsedFilename: model.ParsedFilename{Type: model.MediaTypeSeries, Title: "Star-Crossed", Season: y(1), Episode: y(20)},
	}

	applyBatchMaxEpisode([]*model.PendingValidation{crossed, starCrossedEp1, starCrossedEp20})

	require.NotNil(t, crossed.BatchMaxEpisode)
	assert.Equal(t, 5, *crossed.BatchMaxEpisode)

	require.NotNil(t, starCrossedEp1.BatchMaxEpisode)
	assert.Equal(t, 20, *starCrossedEp1.BatchMaxEpisode)

	require.NotNil(t, starCrossedEp20.BatchMaxEpisode)
	assert.Equal(t, 20, *starCrossedEp20.BatchMaxEpisode)
}

func TestApplyBatchMaxEpisodeIgnoresMoviesAndIncompleteInfo(t *testing.T) {
	movie := &model.PendingValidation{ParsedFilename: model.ParsedFilename{Type: model.MediaTypeMovie, Title: "Inception"}}
	noSeason := &model.PendingValidation{ParsedFilename: model.ParsedFilename{Type: model.MediaTypeSeries, Title: "Unknown"}}

	applyBatchMaxEpisode([]*model.PendingValidation{movie, noSeason})

	assert.Nil(t, movie.BatchMaxEpisode)
	assert.Nil(t, noSeason.BatchMaxEpisode)
}
