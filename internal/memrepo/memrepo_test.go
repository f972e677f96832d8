package memrepo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbouchard/cineorg/internal/model"
)

func TestVideoFileSaveAssignsID(t *testing.T) {
	r := New()
	vf := &model.VideoFile{Path: "/downloads/a.mkv"}
	require.NoError(t, r.VideoFiles().Save(vf))
	assert.NotEqual(t, uuid.Nil, vf.ID)

	got, err := r.VideoFiles().GetByPath("/downloads/a.mkv")
	require.NoError(t, err)
	assert.Equal(t, vf.ID, got.ID)
}

func TestVideoFileGetByPathNotFound(t *testing.T) {
	r := New()
	_, err := r.VideoFiles().GetByPath("/nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVideoFileGetByHash(t *testing.T) {
	r := New()
	vf := &model.VideoFile{Path: "/downloads/a.mkv", ContentHash: "abc123"}
	require.NoError(t, r.VideoFiles().Save(vf))

	got, err := r.VideoFiles().GetByHash("abc123")
	require.NoError(t, err)
	assert.Equal(t, vf.ID, got.ID)

	_, err = r.VideoFiles().GetByHash("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVideoFileUpdateSymlinkPath(t *testing.T) {
	r := New()
	old := "/library/old.mkv"
	vf := &model.VideoFile{Path: "/downloads/a.mkv", SymlinkPath: &old}
	require.NoError(t, r.VideoFiles().Save(vf))

	require.NoError(t, r.VideoFiles().UpdateSymlinkPath(old, "/library/new.mkv"))
	got, err := r.VideoFiles().Get(vf.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SymlinkPath)
	assert.Equal(t, "/library/new.mkv", *got.SymlinkPath)
}

func TestVideoFileDelete(t *testing.T) {
	r := New()
	vf := &model.VideoFile{Path: "/downloads/a.mkv"}
	require.NoError(t, r.VideoFiles().Save(vf))
	require.NoError(t, r.VideoFiles().Delete(vf.ID))
	_, err := r.VideoFiles().Get(vf.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPendingValidationListPendingFiltersByStatus(t *testing.T) {
	r := New()
	pv1 := &model.PendingValidation{ValidationStatus: model.ValidationPending}
	pv2 := &model.PendingValidation{ValidationStatus: model.ValidationValidated}
	require.NoError(t, r.PendingValidations().Save(pv1))
	require.NoError(t, r.PendingValidations().Save(pv2))

	pending, err := r.PendingValidations().ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, pv1.ID, pending[0].ID)

	validated, err := r.PendingValidations().ListValidated()
	require.NoError(t, err)
	require.Len(t, validated, 1)
	assert.Equal(t, pv2.ID, validated[0].ID)

	all, err := r.PendingValidations().ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPendingValidationGetByVideoFileID(t *testing.T) {
	r := New()
	vfID := uuid.New()
	pv := &model.PendingValidation{VideoFile: model.VideoFile{ID: vfID}}
	require.NoError(t, r.PendingValidations().Save(pv))

	got, err := r.PendingValidations().GetByVideoFileID(vfID)
	require.NoError(t, err)
	assert.Equal(t, pv.ID, got.ID)
}

func TestEpisodeGetEpisodeCount(t *testing.T) {
	r := New()
	seriesID := uuid.New()
	require.NoError(t, r.Episodes().Save(&model.Episode{SeriesID: seriesID, SeasonNumber: 1, EpisodeNumber: 1}))
	require.NoError(t, r.Episodes().Save(&model.Episode{SeriesID: seriesID, SeasonNumber: 1, EpisodeNumber: 7}))
	require.NoError(t, r.Episodes().Save(&model.Episode{SeriesID: seriesID, SeasonNumber: 2, EpisodeNumber: 2}))

	count, err := r.Episodes().GetEpisodeCount(seriesID, 1)
	require.NoError(t, err)
	require.NotNil(t, count)
	assert.Equal(t, 7, *count)

	none, err := r.Episodes().GetEpisodeCount(uuid.New(), 1)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMovieSaveAndList(t *testing.T) {
	r := New()
	require.NoError(t, r.Movies().Save(&model.Movie{Title: "The Matrix"}))
	require.NoError(t, r.Movies().Save(&model.Movie{Title: "Amelie"}))
	all, err := r.Movies().List()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSeriesSaveAndGet(t *testing.T) {
	r := New()
	s := &model.Series{Title: "Breaking Bad"}
	require.NoError(t, r.Series().Save(s))
	got, err := r.Series().Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Breaking Bad", got.Title)
}
