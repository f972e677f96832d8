// Package validation implements the Validation Engine (spec.md §4.6): the
// pending/validated/rejected state machine, auto-validation rule, the
// manual-loop contract, and the series cascade/send-back propagation.
package validation

import (
	"context"
	"fmt"

	"github.com/kbouchard/cineorg/internal/matcher"
	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/port"
)

// ManualAction enumerates the operator's choice during the interactive
// validation loop (spec.md §4.6's "abstract interface").
type ManualAction string

const (
	ActionChoose     ManualAction = "choose"
	ActionSkip       ManualAction = "skip"
	ActionTrash      ManualAction = "trash"
	ActionExternalID ManualAction = "external_id"
	ActionFreeText   ManualAction = "free_text"
	ActionQuit       ManualAction = "quit"
)

// ManualDecision is the operator's input for one PendingValidation.
type ManualDecision struct {
	Action         ManualAction
	CandidateIndex int    // for ActionChoose: index into pv.Candidates
	ExternalID     string // for ActionExternalID
	FreeText       string // for ActionFreeText
	Year           *int   // optional override for free-text search
}

// Engine drives the validation state machine.
type Engine struct {
	Repo           port.PendingValidationRepository
	MovieCatalog   port.CatalogClient
	SeriesCatalog  port.CatalogClient
	Matcher        *matcher.Matcher
	AutoThreshold  float64
	AutoTolerance  float64
}

// New builds an Engine with the given auto-validation thresholds
// (CINEORG_MATCH_AUTO_THRESHOLD, CINEORG_MATCH_AUTO_TOLERANCE).
func New(repo port.PendingValidationRepository, movieCatalog, seriesCatalog port.CatalogClient, m *matcher.Matcher, autoThreshold, autoTolerance float64) *Engine {
	return &Engine{
		Repo:          repo,
		MovieCatalog:  movieCatalog,
		SeriesCatalog: seriesCatalog,
		Matcher:       m,
		AutoThreshold: autoThreshold,
		AutoTolerance: autoTolerance,
	}
}

// IsAutoValidatable reports whether pv's top candidate clears the
// auto-validation bar: it exists, scores >= threshold, and no other
// candidate is within tolerance of it (spec.md §4.6).
func (e *Engine) IsAutoValidatable(pv *model.PendingValidation) (model.SearchHit, bool) {
	if len(pv.Candidates) == 0 {
		return model.SearchHit{}, false
	}
	top := pv.Candidates[0]
	if top.Score < e.AutoThreshold {
		if tvdb, ok := e.refinementException(pv); ok {
			return tvdb, true
		}
		return model.SearchHit{}, false
	}
	for _, c := range pv.Candidates[1:] {
		if top.Score-c.Score < e.AutoTolerance {
			return model.SearchHit{}, false
		}
	}
	return top, true
}

// refinementException accepts a single TVDB-shaped candidate whose season
// has enough episodes even below the score bar, per spec.md §4.6.
func (e *Engine) refinementException(pv *model.PendingValidation) (model.SearchHit, bool) {
	if pv.ParsedFilename.Type != model.MediaTypeSeries {
		return model.SearchHit{}, false
	}
	seriesCandidates := 0
	var only model.SearchHit
	for _, c := range pv.Candidates {
		if c.Source == model.SourceSeries {
			seriesCandidates++
			only = c
		}
	}
	if seriesCandidates != 1 {
		return model.SearchHit{}, false
	}
	season, episode := pv.ParsedFilename.Season, pv.ParsedFilename.Episode
	if e.SeriesCatalog == nil || season == nil || episode == nil {
		return model.SearchHit{}, false
	}
	count, err := e.SeriesCatalog.GetEpisodeCount(context.Background(), only.ID, *season)
	if err != nil || count == nil || *count < *episode {
		return model.SearchHit{}, false
	}
	return only, true
}

// AutoValidate applies IsAutoValidatable to every pv in pendings, validating
// those that pass. Returns the ids validated.
func (e *Engine) AutoValidate(ctx context.Context, pendings []*model.PendingValidation) ([]string, error) {
	var validatedIDs []string
	for _, pv := range pendings {
		if pv.ValidationStatus != model.ValidationPending {
			continue
		}
		hit, ok := e.IsAutoValidatable(pv)
		if !ok {
			continue
		}
		cc := e.catalogFor(pv)
		details, err := e.detailsFor(ctx, cc, hit.ID)
		if err != nil {
			continue
		}
		if err := e.validate(pv, hit.ID, details, true); err != nil {
			continue
		}
		validatedIDs = append(validatedIDs, pv.ID.String())
	}
	return validatedIDs, nil
}

// ApplyManualDecision processes one operator decision for pv. On a
// successful ActionChoose it cascades the validation across sibling
// pendings sharing the same chosen candidate id (spec.md §4.6).
func (e *Engine) ApplyManualDecision(ctx context.Context, pv *model.PendingValidation, decision ManualDecision, allPendings []*model.PendingValidation) error {
	switch decision.Action {
	case ActionSkip, ActionQuit:
		return nil
	case ActionTrash:
		pv.ValidationStatus = model.ValidationRejected
		return e.save(pv)
	case ActionChoose:
		if decision.CandidateIndex < 0 || decision.CandidateIndex >= len(pv.Candidates) {
			return fmt.Errorf("validation: candidate index %d out of range", decision.CandidateIndex)
		}
		hit := pv.Candidates[decision.CandidateIndex]
		cc := e.catalogFor(pv)
		details, err := e.detailsFor(ctx, cc, hit.ID)
		if err != nil {
			return err
		}
		if err := e.validate(pv, hit.ID, details, false); err != nil {
			return err
		}
		e.cascade(ctx, hit.ID, details, allPendings)
		return nil
	case ActionExternalID:
		cc := e.catalogFor(pv)
		if cc == nil {
			return fmt.Errorf("validation: no catalog available for external id lookup")
		}
		details, err := e.detailsFor(ctx, cc, decision.ExternalID)
		if err != nil {
			return err
		}
		if err := e.validate(pv, decision.ExternalID, details, false); err != nil {
			return err
		}
		e.cascade(ctx, decision.ExternalID, details, allPendings)
		return nil
	case ActionFreeText:
		cc := e.catalogFor(pv)
		if cc == nil {
			return fmt.Errorf("validation: no catalog available for free-text search")
		}
		hits, err := cc.Search(ctx, decision.FreeText, decision.Year)
		if err != nil {
			return err
		}
		q := matcher.Query{
			Title:           pv.VideoFile.Filename,
			Year:            decision.Year,
			DurationSeconds: nil,
			IsSeries:        pv.ParsedFilename.Type == model.MediaTypeSeries,
		}
		pv.Candidates = e.Matcher.Score(q, hits, nil)
		return e.save(pv)
	}
	return nil
}

// SendBack reverses a validation: pv and every other pending sharing its
// selected_candidate_id return to pending, per spec.md §4.6's inverse
// cascade.
func (e *Engine) SendBack(pv *model.PendingValidation, allPendings []*model.PendingValidation) error {
	if pv.SelectedCandidateID == nil {
		return nil
	}
	target := *pv.SelectedCandidateID
	for _, other := range allPendings {
		if other.ValidationStatus == model.ValidationValidated &&
			other.SelectedCandidateID != nil && *other.SelectedCandidateID == target {
			other.ValidationStatus = model.ValidationPending
			other.SelectedCandidateID = nil
			other.AutoValidated = false
			other.Details = nil
			if err := e.save(other); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) cascade(ctx context.Context, candidateID string, details *model.MediaDetails, allPendings []*model.PendingValidation) {
	for _, other := range allPendings {
		if other.ValidationStatus != model.ValidationPending {
			continue
		}
		for _, c := range other.Candidates {
			if c.ID == candidateID {
				_ = e.validate(other, candidateID, details, true)
				break
			}
		}
	}
}

func (e *Engine) validate(pv *model.PendingValidation, candidateID string, details *model.MediaDetails, auto bool) error {
	pv.ValidationStatus = model.ValidationValidated
	id := candidateID
	pv.SelectedCandidateID = &id
	pv.AutoValidated = auto
	pv.Details = details
	return e.save(pv)
}

func (e *Engine) save(pv *model.PendingValidation) error {
	if e.Repo == nil {
		return nil
	}
	return e.Repo.Save(pv)
}

func (e *Engine) catalogFor(pv *model.PendingValidation) port.CatalogClient {
	if pv.ParsedFilename.Type == model.MediaTypeSeries {
		return e.SeriesCatalog
	}
	return e.MovieCatalog
}

func (e *Engine) detailsFor(ctx context.Context, cc port.CatalogClient, id string) (*model.MediaDetails, error) {
	if cc == nil {
		return nil, fmt.Errorf("validation: no catalog available")
	}
	return cc.GetDetails(ctx, id)
}
