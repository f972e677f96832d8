package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbouchard/cineorg/internal/model"
)

func TestParseMovie(t *testing.T) {
	p := Parse("The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv", model.MediaTypeUnknown)
	assert.Equal(t, model.MediaTypeMovie, p.Type)
	assert.Equal(t, "The Matrix", p.Title)
	require.NotNil(t, p.Year)
	assert.Equal(t, 1999, *p.Year)
	require.NotNil(t, p.Resolution)
	assert.Equal(t, "1080p", *p.Resolution)
	require.NotNil(t, p.VideoCodec)
	assert.Equal(t, "x264", *p.VideoCodec)
	require.NotNil(t, p.Source)
	assert.Equal(t, "BLURAY", *p.Source)
	require.NotNil(t, p.ReleaseGroup)
	assert.Equal(t, "GROUP", *p.ReleaseGroup)
}

func TestParseSeriesStandard(t *testing.T) {
	p := Parse("Breaking.Bad.S01E05.720p.WEB-DL.x264-GROUP.mkv", model.MediaTypeUnknown)
	assert.Equal(t, model.MediaTypeSeries, p.Type)
	assert.Equal(t, "Breaking Bad", p.Title)
	require.NotNil(t, p.Season)
	assert.Equal(t, 1, *p.Season)
	require.NotNil(t, p.Episode)
	assert.Equal(t, 5, *p.Episode)
	assert.Nil(t, p.EpisodeEnd)
}

func TestParseSeriesDoubleEpisode(t *testing.T) {
	p := Parse("Breaking.Bad.S01E05E06.720p.WEB-DL.mkv", model.MediaTypeUnknown)
	require.NotNil(t, p.Episode)
	require.NotNil(t, p.EpisodeEnd)
	assert.Equal(t, 5, *p.Episode)
	assert.Equal(t, 6, *p.EpisodeEnd)
}

func TestParseSeriesAltForm(t *testing.T) {
	p := Parse("The.Office.1x03.mkv", model.MediaTypeUnknown)
	assert.Equal(t, model.MediaTypeSeries, p.Type)
	require.NotNil(t, p.Season)
	require.NotNil(t, p.Episode)
	assert.Equal(t, 1, *p.Season)
	assert.Equal(t, 3, *p.Episode)
}

func TestParseHintOverridesMovie(t *testing.T) {
	p := Parse("Some.Show.S01E05.mkv", model.MediaTypeMovie)
	assert.Equal(t, model.MediaTypeMovie, p.Type)
	assert.Nil(t, p.Season)
	assert.Nil(t, p.Episode)
}

func TestDetectNaturalTypeIgnoresHint(t *testing.T) {
	assert.Equal(t, model.MediaTypeSeries, DetectNaturalType("Some.Show.S01E05.mkv"))
	assert.Equal(t, model.MediaTypeMovie, DetectNaturalType("Some.Movie.2020.mkv"))
}

func TestParseAudioAndLanguage(t *testing.T) {
	p := Parse("Leon.1994.FRENCH.1080p.BluRay.DTS.x264-GROUP.mkv", model.MediaTypeUnknown)
	require.NotNil(t, p.AudioCodec)
	assert.Equal(t, "DTS", *p.AudioCodec)
	require.NotNil(t, p.Language)
	assert.Equal(t, "FR", *p.Language)
}
