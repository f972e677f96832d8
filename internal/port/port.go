// Package port declares the narrow interfaces the core depends on but does
// not implement: the filesystem, the movie/series catalogs, the external
// technical-metadata probe, and persistence. Concrete adapters live in
// internal/localfs, internal/tmdbclient and internal/tvdbclient (wrapped by
// internal/catalogclient), internal/mediainfo and internal/memrepo.
package port

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/kbouchard/cineorg/internal/model"
)

// Filesystem is every filesystem operation the core needs, narrowed to
// exactly what the Scanner, Transferer, Importer, Cleanup Engine and
// Subdivision Algorithm call.
type Filesystem interface {
	Exists(path string) bool
	IsDir(path string) bool
	IsSymlink(path string) bool
	Size(path string) (int64, error)
	Hash(ctx context.Context, path string, window int64) (string, error)
	ListDir(path string) ([]string, error)
	ListVideoFiles(root string) ([]string, error)
	MkdirAll(path string) error
	Rename(oldPath, newPath string) error
	Copy(src, dst string) error
	Remove(path string) error
	RemoveEmptyDir(path string) error
	ReadLink(path string) (string, error)
	ResolveLink(path string) (string, error)
	Symlink(target, linkPath string) error
	Open(path string) (io.ReadCloser, error)
}

// CatalogClient is a single catalog backend (movies or series). A concrete
// implementation talks to a TMDB/TVDB-shaped remote API; it is wrapped by
// internal/catalogclient for rate limiting and retries.
type CatalogClient interface {
	Source() model.CatalogSource
	Search(ctx context.Context, title string, year *int) ([]model.SearchHit, error)
	GetDetails(ctx context.Context, id string) (*model.MediaDetails, error)
	// GetEpisodeCount returns nil when the catalog has no data for the
	// given series/season (not an error); the Matcher treats that as
	// "unknown" and keeps the candidate.
	GetEpisodeCount(ctx context.Context, seriesID string, season int) (*int, error)
}

// MediaInfoExtractor probes a video file for technical metadata.
type MediaInfoExtractor interface {
	Extract(ctx context.Context, path string) (*model.MediaInfo, error)
}

// VideoFileRepository persists VideoFile entities.
type VideoFileRepository interface {
	Get(id uuid.UUID) (*model.VideoFile, error)
	GetByPath(path string) (*model.VideoFile, error)
	GetBySymlinkPath(symlinkPath string) (*model.VideoFile, error)
	GetByHash(hash string) (*model.VideoFile, error)
	Save(vf *model.VideoFile) error
	UpdateSymlinkPath(oldSymlinkPath, newSymlinkPath string) error
	Delete(id uuid.UUID) error
	List() ([]*model.VideoFile, error)
}

// PendingValidationRepository persists PendingValidation entities.
type PendingValidationRepository interface {
	Get(id uuid.UUID) (*model.PendingValidation, error)
	GetByVideoFileID(videoFileID uuid.UUID) (*model.PendingValidation, error)
	Save(pv *model.PendingValidation) error
	Delete(id uuid.UUID) error
	ListPending() ([]*model.PendingValidation, error)
	ListValidated() ([]*model.PendingValidation, error)
	ListAll() ([]*model.PendingValidation, error)
}

// MovieRepository persists Movie entities.
type MovieRepository interface {
	Get(id uuid.UUID) (*model.Movie, error)
	GetByFilePath(path string) (*model.Movie, error)
	Save(m *model.Movie) error
	List() ([]*model.Movie, error)
}

// SeriesRepository persists Series entities.
type SeriesRepository interface {
	Get(id uuid.UUID) (*model.Series, error)
	Save(s *model.Series) error
	List() ([]*model.Series, error)
}

// EpisodeRepository persists Episode entities.
type EpisodeRepository interface {
	Get(id uuid.UUID) (*model.Episode, error)
	GetByFilePath(path string) (*model.Episode, error)
	GetEpisodeCount(seriesID uuid.UUID, season int) (*int, error)
	Save(e *model.Episode) error
	List() ([]*model.Episode, error)
}

// Repository aggregates every per-entity sub-repository the core uses.
type Repository interface {
	VideoFiles() VideoFileRepository
	PendingValidations() PendingValidationRepository
	Movies() MovieRepository
	Series() SeriesRepository
	Episodes() EpisodeRepository
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}
