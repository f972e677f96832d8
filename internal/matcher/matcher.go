// Package matcher implements the Matcher (spec.md §4.4): scores catalog
// SearchHits against parsed+technical query metadata and ranks them
// deterministically. Grounded on original_source/src/services/matcher.py's
// exact scoring formulas.
package matcher

import (
	"context"
	"log"
	"math"
	"sort"

	"github.com/kbouchard/cineorg/internal/matchscore"
	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/port"
)

// Query bundles the parsed+technical metadata the Matcher scores hits
// against.
type Query struct {
	Title           string
	Year            *int
	DurationSeconds *int
	IsSeries        bool
	Season          *int
	Episode         *int
}

// Matcher scores and ranks SearchHits.
type Matcher struct{}

// New builds a Matcher. It holds no state; every method is pure apart from
// the optional episode-count catalog call.
func New() *Matcher {
	return &Matcher{}
}

// Score returns a scored copy of hits sorted stably by descending Score,
// leaving hits itself unchanged, per spec.md §4.4. candidateDurations optionally supplies a catalog hit's
// duration (in seconds) keyed by hit ID — the Matcher itself never calls
// the catalog; the caller (Enricher/pending validation re-enrichment)
// resolves durations for the top candidates before scoring, matching
// original_source's pending_factory.py top-3 duration re-enrichment.
func (m *Matcher) Score(query Query, hits []model.SearchHit, candidateDurations map[string]int) []model.SearchHit {
	scored := make([]model.SearchHit, len(hits))
	copy(scored, hits)

	for i := range scored {
		if query.IsSeries {
			scored[i].Score = seriesScore(query.Title, scored[i])
		} else {
			var dur *int
			if candidateDurations != nil {
				if d, ok := candidateDurations[scored[i].ID]; ok {
					dur = &d
				}
			}
			scored[i].Score = movieScore(query, scored[i], dur)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// FilterByEpisodeCount eliminates series candidates whose season is known
// (via cc.GetEpisodeCount) to have fewer episodes than query.Episode. Unknown
// counts and call failures keep the candidate (precautionary principle); if
// every candidate would be eliminated, the original list is kept unchanged
// and a warning logged, per spec.md §4.4.
func (m *Matcher) FilterByEpisodeCount(ctx context.Context, cc port.CatalogClient, query Query, hits []model.SearchHit) []model.SearchHit {
	if query.Season == nil || query.Episode == nil || cc == nil {
		return hits
	}

	kept := make([]model.SearchHit, 0, len(hits))
	for _, h := range hits {
		count, err := cc.GetEpisodeCount(ctx, h.ID, *query.Season)
		if err != nil || count == nil {
			kept = append(kept, h)
			continue
		}
		if *count >= *query.Episode {
			kept = append(kept, h)
		}
	}

	if len(kept) == 0 {
		log.Printf("matcher: episode-count filter eliminated every candidate for %q S%02dE%02d, keeping original list",
			query.Title, *query.Season, *query.Episode)
		return hits
	}
	return kept
}

func titleSimilarity(queryTitle string, hit model.SearchHit) float64 {
	best := matchscore.TokenSortRatio(queryTitle, hit.Title)
	if hit.OriginalTitle != nil && *hit.OriginalTitle != "" {
		if alt := matchscore.TokenSortRatio(queryTitle, *hit.OriginalTitle); alt > best {
			best = alt
		}
	}
	return best
}

func seriesScore(queryTitle string, hit model.SearchHit) float64 {
	return round2(titleSimilarity(queryTitle, hit))
}

func movieScore(query Query, hit model.SearchHit, candidateDuration *int) float64 {
	title := titleSimilarity(query.Title, hit)

	hasYear := query.Year != nil && hit.Year != nil
	hasDuration := query.DurationSeconds != nil && candidateDuration != nil

	var yearScore, durationScore float64
	if hasYear {
		yearScore = yearAxis(*query.Year, *hit.Year)
	}
	if hasDuration {
		durationScore = durationAxis(*query.DurationSeconds, *candidateDuration)
	}

	if hasDuration {
		return round2(0.50*title + 0.25*yearScore + 0.25*durationScore)
	}
	return round2(0.67*title + 0.33*yearScore)
}

func yearAxis(query, candidate int) float64 {
	delta := math.Abs(float64(query - candidate))
	if delta <= 1 {
		return 100
	}
	score := 100 - 25*(delta-1)
	return math.Max(0, score)
}

func durationAxis(query, candidate int) float64 {
	if query == 0 {
		return 0
	}
	pct := math.Abs(float64(candidate-query)) / float64(query) * 100
	if pct <= 10 {
		return 100
	}
	score := 100 - 50*((pct-10)/10)
	return math.Max(0, score)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
