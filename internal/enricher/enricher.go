// Package enricher implements the Enricher (spec.md §4.5): it refills the
// candidate list of PendingValidations that still have none, re-querying
// the appropriate catalog and re-scoring through the Matcher.
package enricher

import (
	"context"
	"log"

	"github.com/kbouchard/cineorg/internal/matcher"
	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/parser"
	"github.com/kbouchard/cineorg/internal/port"
)

// topCandidatesForDuration bounds how many top hits get a GetDetails call
// to resolve duration for the movie formula's duration axis, mirroring
// original_source's pending_factory.py top-3 re-enrichment.
const topCandidatesForDuration = 3

// Enricher refills empty candidate lists.
type Enricher struct {
	MovieCatalog  port.CatalogClient
	SeriesCatalog port.CatalogClient
	Matcher       *matcher.Matcher
}

// New builds an Enricher. Either catalog may be nil when its API key is
// absent (spec.md §6); items needing that catalog stay pending.
func New(movieCatalog, seriesCatalog port.CatalogClient, m *matcher.Matcher) *Enricher {
	return &Enricher{MovieCatalog: movieCatalog, SeriesCatalog: seriesCatalog, Matcher: m}
}

// Result is the per-item outcome of an enrichment attempt.
type Result struct {
	PendingValidationID string
	Enriched            bool
	Failed              bool
	Error               error
}

// EnrichAll processes every pending validation with an empty candidate
// list; per-item failures are captured in the returned results, never
// propagated, so the batch always completes.
func (e *Enricher) EnrichAll(ctx context.Context, pendings []*model.PendingValidation) []Result {
	results := make([]Result, 0, len(pendings))
	for _, pv := range pendings {
		if len(pv.Candidates) > 0 {
			continue
		}
		results = append(results, e.enrichOne(ctx, pv))
	}
	return results
}

func (e *Enricher) enrichOne(ctx context.Context, pv *model.PendingValidation) Result {
	isSeries := detectSeries(pv)
	cc := e.MovieCatalog
	if isSeries {
		cc = e.SeriesCatalog
	}
	if cc == nil {
		log.Printf("enricher: no catalog available for %q, leaving pending", pv.VideoFile.Filename)
		return Result{PendingValidationID: pv.ID.String(), Failed: true}
	}

	title := pv.ParsedFilename.Title
	year := pv.ParsedFilename.Year

	hits, err := cc.Search(ctx, title, year)
	if err != nil {
		log.Printf("enricher: search failed for %q: %v", title, err)
		return Result{PendingValidationID: pv.ID.String(), Failed: true, Error: err}
	}
	if len(hits) == 0 {
		// Not an error per spec.md §7 — leave candidates empty.
		return Result{PendingValidationID: pv.ID.String(), Enriched: false}
	}

	q := matcher.Query{
		Title:           title,
		Year:            year,
		DurationSeconds: durationOf(pv),
		IsSeries:        isSeries,
		Season:          pv.ParsedFilename.Season,
		Episode:         discriminatorEpisode(pv),
	}

	durations := map[string]int{}
	if !isSeries {
		durations = e.resolveDurations(ctx, cc, hits)
	}

	scored := e.Matcher.Score(q, hits, durations)
	if isSeries {
		scored = e.Matcher.FilterByEpisodeCount(ctx, cc, q, scored)
	}

	pv.Candidates = scored
	return Result{PendingValidationID: pv.ID.String(), Enriched: true}
}

// resolveDurations fetches MediaDetails for the top N hits to populate the
// duration axis of the movie scoring formula.
func (e *Enricher) resolveDurations(ctx context.Context, cc port.CatalogClient, hits []model.SearchHit) map[string]int {
	durations := map[string]int{}
	limit := topCandidatesForDuration
	if limit > len(hits) {
		limit = len(hits)
	}
	for _, h := range hits[:limit] {
		details, err := cc.GetDetails(ctx, h.ID)
		if err != nil || details == nil || details.DurationSeconds == nil {
			continue
		}
		durations[h.ID] = *details.DurationSeconds
	}
	return durations
}

// discriminatorEpisode returns the episode number to use for the
// episode-count elimination filter: this file's own episode number, or the
// batch-wide max for its (title, season) group when that is higher, per
// spec.md §4.14 step 3's "additional discriminator between ambiguous
// series" (e.g. Crossed vs. Star-Crossed).
func discriminatorEpisode(pv *model.PendingValidation) *int {
	episode := pv.ParsedFilename.Episode
	if pv.BatchMaxEpisode == nil {
		return episode
	}
	if episode == nil || *pv.BatchMaxEpisode > *episode {
		return pv.BatchMaxEpisode
	}
	return episode
}

func durationOf(pv *model.PendingValidation) *int {
	if pv.VideoFile.MediaInfo == nil {
		return nil
	}
	return pv.VideoFile.MediaInfo.DurationSeconds
}

// detectSeries determines series-ness: an existing candidate's source tag
// wins; otherwise fall back to the filename-parser's detected type.
func detectSeries(pv *model.PendingValidation) bool {
	for _, c := range pv.Candidates {
		return c.Source == model.SourceSeries
	}
	if pv.ParsedFilename.Type != model.MediaTypeUnknown {
		return pv.ParsedFilename.Type == model.MediaTypeSeries
	}
	return parser.DetectNaturalType(pv.VideoFile.Filename) == model.MediaTypeSeries
}
