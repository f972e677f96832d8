// Package model holds the entities and value objects that flow through the
// identification, organization and transfer pipeline.
package model

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────── Enums ────────────────────

type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeSeries  MediaType = "series"
	MediaTypeUnknown MediaType = "unknown"
)

type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "pending"
	ValidationValidated ValidationStatus = "validated"
	ValidationRejected  ValidationStatus = "rejected"
)

type ResolutionLabel string

const (
	Resolution4K    ResolutionLabel = "4K"
	Resolution1080p ResolutionLabel = "1080p"
	Resolution720p  ResolutionLabel = "720p"
	ResolutionSD    ResolutionLabel = "SD"
)

// CatalogSource tags which catalog a SearchHit or detail record came from.
type CatalogSource string

const (
	SourceMovies CatalogSource = "movies"
	SourceSeries CatalogSource = "series"
)

// ──────────────────── Value objects ────────────────────

// AudioCodec is one audio track's normalized codec name and channel layout.
type AudioCodec struct {
	Name     string  `json:"name"`
	Channels *string `json:"channels,omitempty"`
}

// MediaInfo is technical metadata read from an external probe.
type MediaInfo struct {
	Width           *int            `json:"width,omitempty"`
	Height          *int            `json:"height,omitempty"`
	Resolution      ResolutionLabel `json:"resolution,omitempty"`
	VideoCodec      *string         `json:"video_codec,omitempty"`
	AudioCodecs     []AudioCodec    `json:"audio_codecs,omitempty"`
	AudioLanguages  []string        `json:"audio_languages,omitempty"`
	DurationSeconds *int            `json:"duration_seconds,omitempty"`
}

// ParsedFilename is the output of the Filename Parser.
type ParsedFilename struct {
	Title         string    `json:"title"`
	Year          *int      `json:"year,omitempty"`
	Type          MediaType `json:"type"`
	Season        *int      `json:"season,omitempty"`
	Episode       *int      `json:"episode,omitempty"`
	EpisodeEnd    *int      `json:"episode_end,omitempty"`
	EpisodeTitle  *string   `json:"episode_title,omitempty"`
	VideoCodec    *string   `json:"video_codec,omitempty"`
	AudioCodec    *string   `json:"audio_codec,omitempty"`
	Resolution    *string   `json:"resolution,omitempty"`
	Source        *string   `json:"source,omitempty"`
	ReleaseGroup  *string   `json:"release_group,omitempty"`
	Language      *string   `json:"language,omitempty"`
}

// SearchHit is a catalog search result, scored in place by the Matcher.
type SearchHit struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	OriginalTitle *string       `json:"original_title,omitempty"`
	Year          *int          `json:"year,omitempty"`
	Source        CatalogSource `json:"source"`
	Score         float64       `json:"score"`
}

// MediaDetails is the full detail record for a single catalog hit.
type MediaDetails struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	OriginalTitle   string   `json:"original_title"`
	Year            *int     `json:"year,omitempty"`
	Genres          []string `json:"genres"`
	DurationSeconds *int     `json:"duration_seconds,omitempty"`
	Overview        string   `json:"overview"`
	Director        string   `json:"director"`
	Cast            []string `json:"cast"`
	VoteAverage     float64  `json:"vote_average"`
	VoteCount       int      `json:"vote_count"`
}

// ──────────────────── Entities ────────────────────

// VideoFile is a concrete file on disk, once it has been accepted by the
// Scanner or Importer.
type VideoFile struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Path          string     `json:"path" db:"path"`
	SymlinkPath   *string    `json:"symlink_path,omitempty" db:"symlink_path"`
	Filename      string     `json:"filename" db:"filename"`
	SizeBytes     int64      `json:"size_bytes" db:"size_bytes"`
	ContentHash   string     `json:"content_hash,omitempty" db:"content_hash"`
	MediaInfo     *MediaInfo `json:"media_info,omitempty" db:"media_info"`
}

// TechnicalSnapshot records the technical details CineOrg cares about at the
// moment a Movie/Series/Episode was organized.
type TechnicalSnapshot struct {
	VideoCodec string   `json:"video_codec,omitempty"`
	Resolution string   `json:"resolution,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	SizeBytes  int64    `json:"size_bytes,omitempty"`
}

// Movie is a persisted entity enriched from a movie catalog.
type Movie struct {
	ID              uuid.UUID         `json:"id" db:"id"`
	Title           string            `json:"title" db:"title"`
	OriginalTitle   string            `json:"original_title" db:"original_title"`
	Year            *int              `json:"year,omitempty" db:"year"`
	Genres          []string          `json:"genres" db:"genres"`
	DurationSeconds *int              `json:"duration_seconds,omitempty" db:"duration_seconds"`
	Overview        string            `json:"overview" db:"overview"`
	PosterRef       *string           `json:"poster_ref,omitempty" db:"poster_ref"`
	VoteAverage     float64           `json:"vote_average" db:"vote_average"`
	VoteCount       int               `json:"vote_count" db:"vote_count"`
	IMDbID          *string           `json:"imdb_id,omitempty" db:"imdb_id"`
	IMDbRating      *float64          `json:"imdb_rating,omitempty" db:"imdb_rating"`
	IMDbVoteCount   *int              `json:"imdb_vote_count,omitempty" db:"imdb_vote_count"`
	Director        string            `json:"director" db:"director"`
	Cast            []string          `json:"cast" db:"cast"`
	Technical       TechnicalSnapshot `json:"technical" db:"technical"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
}

// Series is a persisted entity enriched from a series catalog.
type Series struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	OriginalTitle string    `json:"original_title" db:"original_title"`
	Year          *int      `json:"year,omitempty" db:"year"`
	Genres        []string  `json:"genres" db:"genres"`
	Overview      string    `json:"overview" db:"overview"`
	PosterRef     *string   `json:"poster_ref,omitempty" db:"poster_ref"`
	VoteAverage   float64   `json:"vote_average" db:"vote_average"`
	VoteCount     int       `json:"vote_count" db:"vote_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Episode carries its own technical snapshot; (SeriesID, SeasonNumber,
// EpisodeNumber) is unique.
type Episode struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	SeriesID      uuid.UUID         `json:"series_id" db:"series_id"`
	SeasonNumber  int               `json:"season_number" db:"season_number"`
	EpisodeNumber int               `json:"episode_number" db:"episode_number"`
	Title         string            `json:"title" db:"title"`
	Technical     TechnicalSnapshot `json:"technical" db:"technical"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

// PendingValidation is the hardest entity: the unresolved link between a
// VideoFile and the catalog hit it probably represents.
type PendingValidation struct {
	ID                   uuid.UUID        `json:"id" db:"id"`
	VideoFile            VideoFile        `json:"video_file" db:"-"`
	Candidates           []SearchHit      `json:"candidates" db:"candidates"`
	ValidationStatus     ValidationStatus `json:"validation_status" db:"validation_status"`
	SelectedCandidateID  *string          `json:"selected_candidate_id,omitempty" db:"selected_candidate_id"`
	AutoValidated        bool             `json:"auto_validated" db:"auto_validated"`
	Details              *MediaDetails    `json:"details,omitempty" db:"details"`
	ParsedFilename       ParsedFilename   `json:"parsed_filename" db:"-"`
	SourceSubtree        string           `json:"source_subtree" db:"source_subtree"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`

	// BatchMaxEpisode is the highest episode number seen across this scan
	// batch for this item's (title, season) pair, set by the Workflow's
	// matching step before the Matcher runs; not persisted. It lets the
	// episode-count filter discriminate between similarly-named series
	// even when this particular file's own episode number would not.
	BatchMaxEpisode *int `json:"-" db:"-"`
}

// SubdivisionPlan describes how to split an overfull directory into balanced
// alphabetic ranges.
type SubdivisionPlan struct {
	ParentDir       string
	CurrentCount    int
	MaxAllowed      int
	Ranges          []KeyRange
	ItemsToMove     []PathPair
	OutOfRangeItems []PathPair
}

// KeyRange is an inclusive [Start, End] 2-character sort-key range, along
// with the human-readable label ("Aa-Cz").
type KeyRange struct {
	Start string
	End   string
}

// Label renders the range as "Start-End", always a range, never a bare letter.
func (r KeyRange) Label() string {
	start := capitalizeKey(r.Start)
	end := capitalizeKey(r.End)
	return start + "-" + end
}

func capitalizeKey(key string) string {
	if key == "" {
		return key
	}
	b := []byte(key)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	for i := 1; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// PathPair is a (source, destination) pair used throughout the transfer and
// subdivision machinery.
type PathPair struct {
	Source      string
	Destination string
}

// ScanRecord is the Scanner's per-file output bundle.
type ScanRecord struct {
	VideoFile         VideoFile
	Parsed            ParsedFilename
	MediaInfo         *MediaInfo
	SourceSubtree     string
	CorrectedLocation bool
}

// ImportResultKind enumerates the outcomes an Importer can emit per file.
type ImportResultKind string

const (
	ImportKindImport     ImportResultKind = "IMPORT"
	ImportKindSkipKnown  ImportResultKind = "SKIP_KNOWN"
	ImportKindUpdatePath ImportResultKind = "UPDATE_PATH"
	ImportKindError      ImportResultKind = "ERROR"
)

// ImportResult is one Importer generator output.
type ImportResult struct {
	Kind    ImportResultKind
	Path    string
	Message string
}
