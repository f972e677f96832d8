// Package memrepo implements an in-memory, mutex-guarded port.Repository
// adapter. Persistence is an explicit non-goal collaborator (spec.md §1);
// this is the CLI's only wired Repository, standing in for the opaque
// embedded-SQL persistence port spec.md §6 describes.
package memrepo

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/port"
)

// ErrNotFound is returned by Get-style lookups that find nothing.
var ErrNotFound = errors.New("memrepo: not found")

// Repository bundles every per-entity in-memory store behind a single
// mutex, matching CineVault's repository-interface convention without its
// SQL backing.
type Repository struct {
	mu sync.Mutex

	videoFiles         map[uuid.UUID]*model.VideoFile
	pendingValidations map[uuid.UUID]*model.PendingValidation
	movies             map[uuid.UUID]*model.Movie
	series             map[uuid.UUID]*model.Series
	episodes           map[uuid.UUID]*model.Episode

	movieFilePath   map[string]uuid.UUID
	episodeFilePath map[string]uuid.UUID
}

// New builds an empty Repository.
func New() *Repository {
	return &Repository{
		videoFiles:         map[uuid.UUID]*model.VideoFile{},
		pendingValidations: map[uuid.UUID]*model.PendingValidation{},
		movies:             map[uuid.UUID]*model.Movie{},
		series:             map[uuid.UUID]*model.Series{},
		episodes:           map[uuid.UUID]*model.Episode{},
		movieFilePath:      map[string]uuid.UUID{},
		episodeFilePath:    map[string]uuid.UUID{},
	}
}

func (r *Repository) VideoFiles() port.VideoFileRepository                 { return videoFileRepo{r} }
func (r *Repository) PendingValidations() port.PendingValidationRepository { return pendingRepo{r} }
func (r *Repository) Movies() port.MovieRepository                         { return movieRepo{r} }
func (r *Repository) Series() port.SeriesRepository                       { return seriesRepo{r} }
func (r *Repository) Episodes() port.EpisodeRepository                     { return episodeRepo{r} }

// ──────────────────── VideoFile ────────────────────

type videoFileRepo struct{ r *Repository }

func (vr videoFileRepo) Get(id uuid.UUID) (*model.VideoFile, error) {
	vr.r.mu.Lock()
	defer vr.r.mu.Unlock()
	vf, ok := vr.r.videoFiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return vf, nil
}

func (vr videoFileRepo) GetByPath(path string) (*model.VideoFile, error) {
	vr.r.mu.Lock()
	defer vr.r.mu.Unlock()
	for _, vf := range vr.r.videoFiles {
		if vf.Path == path {
			return vf, nil
		}
	}
	return nil, ErrNotFound
}

func (vr videoFileRepo) GetBySymlinkPath(symlinkPath string) (*model.VideoFile, error) {
	vr.r.mu.Lock()
	defer vr.r.mu.Unlock()
	for _, vf := range vr.r.videoFiles {
		if vf.SymlinkPath != nil && *vf.SymlinkPath == symlinkPath {
			return vf, nil
		}
	}
	return nil, ErrNotFound
}

func (vr videoFileRepo) GetByHash(hash string) (*model.VideoFile, error) {
	vr.r.mu.Lock()
	defer vr.r.mu.Unlock()
	for _, vf := range vr.r.videoFiles {
		if hash != "" && vf.ContentHash == hash {
			return vf, nil
		}
	}
	return nil, ErrNotFound
}

func (vr videoFileRepo) Save(vf *model.VideoFile) error {
	vr.r.mu.Lock()
	defer vr.r.mu.Unlock()
	if vf.ID == uuid.Nil {
		vf.ID = uuid.New()
	}
	vr.r.videoFiles[vf.ID] = vf
	return nil
}

func (vr videoFileRepo) UpdateSymlinkPath(oldSymlinkPath, newSymlinkPath string) error {
	vr.r.mu.Lock()
	defer vr.r.mu.Unlock()
	for _, vf := range vr.r.videoFiles {
		if vf.SymlinkPath != nil && *vf.SymlinkPath == oldSymlinkPath {
			vf.SymlinkPath = &newSymlinkPath
			return nil
		}
	}
	return ErrNotFound
}

func (vr videoFileRepo) Delete(id uuid.UUID) error {
	vr.r.mu.Lock()
	defer vr.r.mu.Unlock()
	delete(vr.r.videoFiles, id)
	return nil
}

func (vr videoFileRepo) List() ([]*model.VideoFile, error) {
	vr.r.mu.Lock()
	defer vr.r.mu.Unlock()
	out := make([]*model.VideoFile, 0, len(vr.r.videoFiles))
	for _, vf := range vr.r.videoFiles {
		out = append(out, vf)
	}
	return out, nil
}

// ──────────────────── PendingValidation ────────────────────

type pendingRepo struct{ r *Repository }

func (pr pendingRepo) Get(id uuid.UUID) (*model.PendingValidation, error) {
	pr.r.mu.Lock()
	defer pr.r.mu.Unlock()
	pv, ok := pr.r.pendingValidations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return pv, nil
}

func (pr pendingRepo) GetByVideoFileID(videoFileID uuid.UUID) (*model.PendingValidation, error) {
	pr.r.mu.Lock()
	defer pr.r.mu.Unlock()
	for _, pv := range pr.r.pendingValidations {
		if pv.VideoFile.ID == videoFileID {
			return pv, nil
		}
	}
	return nil, ErrNotFound
}

func (pr pendingRepo) Save(pv *model.PendingValidation) error {
	pr.r.mu.Lock()
	defer pr.r.mu.Unlock()
	if pv.ID == uuid.Nil {
		pv.ID = uuid.New()
	}
	pr.r.pendingValidations[pv.ID] = pv
	return nil
}

func (pr pendingRepo) Delete(id uuid.UUID) error {
	pr.r.mu.Lock()
	defer pr.r.mu.Unlock()
	delete(pr.r.pendingValidations, id)
	return nil
}

func (pr pendingRepo) ListPending() ([]*model.PendingValidation, error) {
	return pr.filter(model.ValidationPending)
}

func (pr pendingRepo) ListValidated() ([]*model.PendingValidation, error) {
	return pr.filter(model.ValidationValidated)
}

func (pr pendingRepo) filter(status model.ValidationStatus) ([]*model.PendingValidation, error) {
	pr.r.mu.Lock()
	defer pr.r.mu.Unlock()
	var out []*model.PendingValidation
	for _, pv := range pr.r.pendingValidations {
		if pv.ValidationStatus == status {
			out = append(out, pv)
		}
	}
	return out, nil
}

func (pr pendingRepo) ListAll() ([]*model.PendingValidation, error) {
	pr.r.mu.Lock()
	defer pr.r.mu.Unlock()
	out := make([]*model.PendingValidation, 0, len(pr.r.pendingValidations))
	for _, pv := range pr.r.pendingValidations {
		out = append(out, pv)
	}
	return out, nil
}

// ──────────────────── Movie ────────────────────

type movieRepo struct{ r *Repository }

func (mr movieRepo) Get(id uuid.UUID) (*model.Movie, error) {
	mr.r.mu.Lock()
	defer mr.r.mu.Unlock()
	m, ok := mr.r.movies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

func (mr movieRepo) GetByFilePath(path string) (*model.Movie, error) {
	mr.r.mu.Lock()
	defer mr.r.mu.Unlock()
	id, ok := mr.r.movieFilePath[path]
	if !ok {
		return nil, ErrNotFound
	}
	return mr.r.movies[id], nil
}

func (mr movieRepo) Save(m *model.Movie) error {
	mr.r.mu.Lock()
	defer mr.r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	mr.r.movies[m.ID] = m
	return nil
}

func (mr movieRepo) List() ([]*model.Movie, error) {
	mr.r.mu.Lock()
	defer mr.r.mu.Unlock()
	out := make([]*model.Movie, 0, len(mr.r.movies))
	for _, m := range mr.r.movies {
		out = append(out, m)
	}
	return out, nil
}

// ──────────────────── Series ────────────────────

type seriesRepo struct{ r *Repository }

func (sr seriesRepo) Get(id uuid.UUID) (*model.Series, error) {
	sr.r.mu.Lock()
	defer sr.r.mu.Unlock()
	s, ok := sr.r.series[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (sr seriesRepo) Save(s *model.Series) error {
	sr.r.mu.Lock()
	defer sr.r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	sr.r.series[s.ID] = s
	return nil
}

func (sr seriesRepo) List() ([]*model.Series, error) {
	sr.r.mu.Lock()
	defer sr.r.mu.Unlock()
	out := make([]*model.Series, 0, len(sr.r.series))
	for _, s := range sr.r.series {
		out = append(out, s)
	}
	return out, nil
}

// ──────────────────── Episode ────────────────────

type episodeRepo struct{ r *Repository }

func (er episodeRepo) Get(id uuid.UUID) (*model.Episode, error) {
	er.r.mu.Lock()
	defer er.r.mu.Unlock()
	e, ok := er.r.episodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (er episodeRepo) GetByFilePath(path string) (*model.Episode, error) {
	er.r.mu.Lock()
	defer er.r.mu.Unlock()
	id, ok := er.r.episodeFilePath[path]
	if !ok {
		return nil, ErrNotFound
	}
	return er.r.episodes[id], nil
}

func (er episodeRepo) GetEpisodeCount(seriesID uuid.UUID, season int) (*int, error) {
	er.r.mu.Lock()
	defer er.r.mu.Unlock()
	count := 0
	found := false
	for _, e := range er.r.episodes {
		if e.SeriesID == seriesID && e.SeasonNumber == season {
			found = true
			if e.EpisodeNumber > count {
				count = e.EpisodeNumber
			}
		}
	}
	if !found {
		return nil, nil
	}
	return &count, nil
}

func (er episodeRepo) Save(e *model.Episode) error {
	er.r.mu.Lock()
	defer er.r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	er.r.episodes[e.ID] = e
	return nil
}

func (er episodeRepo) List() ([]*model.Episode, error) {
	er.r.mu.Lock()
	defer er.r.mu.Unlock()
	out := make([]*model.Episode, 0, len(er.r.episodes))
	for _, e := range er.r.episodes {
		out = append(out, e)
	}
	return out, nil
}
