// Package workflow implements the Workflow Orchestrator (spec.md §4.14):
// it sequences the full pipeline — purge orphans, scan, match,
// auto-validate, manual validate, batch transfer, summary, and (on a dry
// run) a cleanup preview — wiring together every other component package.
// Grounded on
// original_source/src/services/workflow/workflow_service.py.
package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbouchard/cineorg/internal/cleanup"
	"github.com/kbouchard/cineorg/internal/enricher"
	"github.com/kbouchard/cineorg/internal/matcher"
	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/organizer"
	"github.com/kbouchard/cineorg/internal/port"
	"github.com/kbouchard/cineorg/internal/renamer"
	"github.com/kbouchard/cineorg/internal/scanner"
	"github.com/kbouchard/cineorg/internal/transfer"
	"github.com/kbouchard/cineorg/internal/validation"
)

// systemClock is the default port.Clock when the caller injects none.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Filter selects which subtree(s) a run should scan.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterMovies Filter = "movies"
	FilterSeries Filter = "series"
)

// ManualValidator is the operator-facing hook for the manual validation
// loop (spec.md §4.6's "abstract interface"): given one pending item and
// the full batch (for cascade context), it returns the operator's decision,
// or ok=false to stop the loop early (ActionQuit).
type ManualValidator func(ctx context.Context, pv *model.PendingValidation, all []*model.PendingValidation) (decision validation.ManualDecision, ok bool)

// Summary reports what one Execute call did.
type Summary struct {
	OrphansPurged    int
	Scanned          int
	BelowSizeLimit   int
	Enriched         int
	AutoValidated    int
	ManuallyResolved int
	Transferred      int
	TransferErrors   []string
	Conflicts        []transfer.Conflict
	CleanupPreview   *cleanup.Report
}

// Workflow composes every pipeline component.
type Workflow struct {
	FS   port.Filesystem
	Repo port.Repository

	Scanner    *scanner.Scanner
	Matcher    *matcher.Matcher
	Enricher   *enricher.Enricher
	Validation *validation.Engine
	Transferer *transfer.Transferer
	Cleanup    *cleanup.Engine

	DownloadsDir string
	StorageDir   string
	VideoDir     string

	Clock port.Clock

	// Manual is invoked once per still-pending item during the manual
	// validation step; nil skips the step entirely (equivalent to a
	// dry run's config.dry_run=True behavior).
	Manual ManualValidator

	seriesByCandidate map[string]uuid.UUID
}

// New builds a Workflow. Manual may be nil (e.g. for dry runs, or a
// headless "auto-only" invocation); everything else is required.
func New(fs port.Filesystem, repo port.Repository, sc *scanner.Scanner, m *matcher.Matcher, en *enricher.Enricher, ve *validation.Engine, tr *transfer.Transferer, cl *cleanup.Engine, downloadsDir, storageDir, videoDir string, manual ManualValidator) *Workflow {
	return &Workflow{
		FS:                fs,
		Repo:              repo,
		Scanner:           sc,
		Matcher:           m,
		Enricher:          en,
		Validation:        ve,
		Transferer:        tr,
		Cleanup:           cl,
		DownloadsDir:      downloadsDir,
		StorageDir:        storageDir,
		VideoDir:          videoDir,
		Clock:             systemClock{},
		Manual:            manual,
		seriesByCandidate: map[string]uuid.UUID{},
	}
}

// Execute runs the full pipeline once.
func (w *Workflow) Execute(ctx context.Context, filter Filter, dryRun bool) (Summary, error) {
	var summary Summary

	summary.OrphansPurged = w.purgeOrphans()

	pendings, err := w.scanDownloads(ctx, filter, &summary)
	if err != nil {
		return summary, err
	}
	if len(pendings) == 0 {
		return summary, nil
	}

	summary.Enriched = w.performMatching(ctx, pendings)
	summary.AutoValidated = w.autoValidate(ctx, pendings)

	if !dryRun && w.Manual != nil {
		summary.ManuallyResolved = w.manualValidate(ctx, pendings)
	}

	w.batchTransfer(ctx, pendings, dryRun, &summary)

	if dryRun {
		report, err := w.Cleanup.Analyze(ctx)
		if err == nil {
			summary.CleanupPreview = &report
		}
		w.purgeRun(pendings)
	}

	return summary, nil
}

// purgeRun deletes every PendingValidation and VideoFile this Execute call
// created (spec.md §4.14 step 8). Movie, Series and Episode records saved by
// resolveDestination during a dry run are not removed.
func (w *Workflow) purgeRun(pendings []*model.PendingValidation) {
	for _, pv := range pendings {
		_ = w.Repo.PendingValidations().Delete(pv.ID)
		_ = w.Repo.VideoFiles().Delete(pv.VideoFile.ID)
	}
}

// purgeOrphans deletes every PendingValidation (and its VideoFile) left
// over from an interrupted previous run.
func (w *Workflow) purgeOrphans() int {
	count := 0
	pendingRepo := w.Repo.PendingValidations()

	var orphans []*model.PendingValidation
	if list, err := pendingRepo.ListPending(); err == nil {
		orphans = append(orphans, list...)
	}
	if list, err := pendingRepo.ListValidated(); err == nil {
		orphans = append(orphans, list...)
	}

	for _, pv := range orphans {
		_ = pendingRepo.Delete(pv.ID)
		if pv.VideoFile.ID != uuid.Nil {
			_ = w.Repo.VideoFiles().Delete(pv.VideoFile.ID)
		}
		count++
	}
	return count
}

func (w *Workflow) scanDownloads(ctx context.Context, filter Filter, summary *Summary) ([]*model.PendingValidation, error) {
	result, err := w.Scanner.Scan(ctx, w.DownloadsDir)
	if err != nil {
		return nil, fmt.Errorf("workflow: scan: %w", err)
	}
	summary.BelowSizeLimit = len(result.BelowSizeLimit)

	var pendings []*model.PendingValidation
	for _, rec := range result.Accepted {
		if !matchesFilter(filter, rec.Parsed.Type) {
			continue
		}

		vf := rec.VideoFile
		vf.ID = uuid.New()
		if err := w.Repo.VideoFiles().Save(&vf); err != nil {
			continue
		}

		pv := &model.PendingValidation{
			ID:               uuid.New(),
			VideoFile:        vf,
			ValidationStatus: model.ValidationPending,
			ParsedFilename:   rec.Parsed,
			SourceSubtree:    rec.SourceSubtree,
			CreatedAt:        w.Clock.Now(),
		}
		if err := w.Repo.PendingValidations().Save(pv); err != nil {
			continue
		}
		pendings = append(pendings, pv)
	}

	summary.Scanned = len(pendings)
	return pendings, nil
}

// applyBatchMaxEpisode pre-computes, per (title, season), the highest
// episode number present in this scan batch and stamps it onto every
// matching series PendingValidation, per spec.md §4.14 step 3.
func applyBatchMaxEpisode(pendings []*model.PendingValidation) {
	maxBySeries := map[string]int{}
	for _, pv := range pendings {
		if pv.ParsedFilename.Type != model.MediaTypeSeries {
			continue
		}
		key, ok := seriesBatchKey(pv.ParsedFilename)
		if !ok {
			continue
		}
		if cur, exists := maxBySeries[key]; !exists || *pv.ParsedFilename.Episode > cur {
			maxBySeries[key] = *pv.ParsedFilename.Episode
		}
	}

	for _, pv := range pendings {
		if pv.ParsedFilename.Type != model.MediaTypeSeries {
			continue
		}
		key, ok := seriesBatchKey(pv.ParsedFilename)
		if !ok {
			continue
		}
		m := maxBySeries[key]
		pv.BatchMaxEpisode = &m
	}
}

// seriesBatchKey groups a parsed filename by lowercased title and season,
// matching original_source's `(pi.title.lower(), pi.season)` batch key.
func seriesBatchKey(pf model.ParsedFilename) (string, bool) {
	if pf.Title == "" || pf.Season == nil || pf.Episode == nil {
		return "", false
	}
	return strings.ToLower(pf.Title) + "|" + strconv.Itoa(*pf.Season), true
}

func matchesFilter(filter Filter, t model.MediaType) bool {
	switch filter {
	case FilterMovies:
		return t == model.MediaTypeMovie
	case FilterSeries:
		return t == model.MediaTypeSeries
	default:
		return true
	}
}

func (w *Workflow) performMatching(ctx context.Context, pendings []*model.PendingValidation) int {
	applyBatchMaxEpisode(pendings)

	results := w.Enricher.EnrichAll(ctx, pendings)
	enriched := 0
	for _, r := range results {
		if r.Enriched {
			enriched++
		}
	}
	return enriched
}

func (w *Workflow) autoValidate(ctx context.Context, pendings []*model.PendingValidation) int {
	validated, err := w.Validation.AutoValidate(ctx, pendings)
	if err != nil {
		return 0
	}
	return len(validated)
}

func (w *Workflow) manualValidate(ctx context.Context, pendings []*model.PendingValidation) int {
	resolved := 0
	for _, pv := range pendings {
		if pv.ValidationStatus != model.ValidationPending {
			continue
		}
		decision, ok := w.Manual(ctx, pv, pendings)
		if !ok || decision.Action == validation.ActionQuit {
			break
		}
		if err := w.Validation.ApplyManualDecision(ctx, pv, decision, pendings); err != nil {
			continue
		}
		if pv.ValidationStatus != model.ValidationPending {
			resolved++
		}
	}
	return resolved
}

// batchTransfer organizes, renames and transfers every validated pending
// item. In dry-run mode it computes destinations without moving anything.
func (w *Workflow) batchTransfer(ctx context.Context, pendings []*model.PendingValidation, dryRun bool, summary *Summary) {
	for _, pv := range pendings {
		if pv.ValidationStatus != model.ValidationValidated || pv.Details == nil {
			continue
		}

		destination, symlinkDest, err := w.resolveDestination(pv)
		if err != nil {
			summary.TransferErrors = append(summary.TransferErrors, err.Error())
			continue
		}
		if dryRun {
			continue
		}

		result := w.Transferer.Transfer(ctx, pv.VideoFile.Path, destination, true, symlinkDest)
		if !result.Success {
			if result.Conflict != nil {
				summary.Conflicts = append(summary.Conflicts, *result.Conflict)
			}
			if result.Error != nil {
				summary.TransferErrors = append(summary.TransferErrors, result.Error.Error())
			}
			continue
		}

		sp := result.SymlinkPath
		vf := pv.VideoFile
		vf.Path = result.FinalPath
		vf.SymlinkPath = &sp
		_ = w.Repo.VideoFiles().Save(&vf)
		_ = w.Repo.PendingValidations().Delete(pv.ID)

		summary.Transferred++
	}
}

// resolveDestination creates/looks up the Movie or Series+Episode entity
// behind a validated pending item and computes the storage-tree path its
// physical file should move to; the symlink side is left empty so the
// Transferer mirrors it automatically.
func (w *Workflow) resolveDestination(pv *model.PendingValidation) (string, string, error) {
	ext := filepath.Ext(pv.VideoFile.Filename)
	info := pv.VideoFile.MediaInfo
	tech := technicalFrom(info, pv.VideoFile.SizeBytes)

	if pv.ParsedFilename.Type == model.MediaTypeSeries {
		series, season, err := w.resolveSeries(pv, tech)
		if err != nil {
			return "", "", err
		}
		filename := renamer.SeriesFilename(renamer.SeriesParams{
			Title:        series.Title,
			Year:         series.Year,
			Season:       season,
			Episode:      derefInt(pv.ParsedFilename.Episode),
			EpisodeTitle: derefStr(pv.ParsedFilename.EpisodeTitle),
			Languages:    tech.Languages,
			VideoCodec:   tech.VideoCodec,
			Resolution:   tech.Resolution,
			Ext:          ext,
		})
		dir := organizer.SeriesDestinationDir(w.StorageDir, *series, season)
		return filepath.Join(dir, filename), "", nil
	}

	movie := model.Movie{
		ID:              uuid.New(),
		Title:           pv.Details.Title,
		OriginalTitle:   pv.Details.OriginalTitle,
		Year:            pv.Details.Year,
		Genres:          pv.Details.Genres,
		DurationSeconds: pv.Details.DurationSeconds,
		Overview:        pv.Details.Overview,
		VoteAverage:     pv.Details.VoteAverage,
		VoteCount:       pv.Details.VoteCount,
		Director:        pv.Details.Director,
		Cast:            pv.Details.Cast,
		Technical:       tech,
		CreatedAt:       w.Clock.Now(),
	}
	if err := w.Repo.Movies().Save(&movie); err != nil {
		return "", "", fmt.Errorf("workflow: save movie: %w", err)
	}

	filename := renamer.MovieFilename(renamer.MovieParams{
		Title:      movie.Title,
		Year:       movie.Year,
		Languages:  tech.Languages,
		VideoCodec: tech.VideoCodec,
		Resolution: tech.Resolution,
		Ext:        ext,
	})
	dir := organizer.MovieDestinationDir(w.StorageDir, movie)
	return filepath.Join(dir, filename), "", nil
}

// resolveSeries finds or creates the Series entity for pv's selected
// candidate, reusing the one created earlier in this run when several
// episodes share it.
func (w *Workflow) resolveSeries(pv *model.PendingValidation, tech model.TechnicalSnapshot) (*model.Series, int, error) {
	season := derefInt(pv.ParsedFilename.Season)
	candidateID := ""
	if pv.SelectedCandidateID != nil {
		candidateID = *pv.SelectedCandidateID
	}

	var series *model.Series
	if id, ok := w.seriesByCandidate[candidateID]; ok {
		if s, err := w.Repo.Series().Get(id); err == nil {
			series = s
		}
	}

	if series == nil {
		series = &model.Series{
			ID:            uuid.New(),
			Title:         pv.Details.Title,
			OriginalTitle: pv.Details.OriginalTitle,
			Year:          pv.Details.Year,
			Genres:        pv.Details.Genres,
			Overview:      pv.Details.Overview,
			VoteAverage:   pv.Details.VoteAverage,
			VoteCount:     pv.Details.VoteCount,
			CreatedAt:     w.Clock.Now(),
		}
		if err := w.Repo.Series().Save(series); err != nil {
			return nil, 0, fmt.Errorf("workflow: save series: %w", err)
		}
		if candidateID != "" {
			w.seriesByCandidate[candidateID] = series.ID
		}
	}

	episode := &model.Episode{
		ID:            uuid.New(),
		SeriesID:      series.ID,
		SeasonNumber:  season,
		EpisodeNumber: derefInt(pv.ParsedFilename.Episode),
		Title:         derefStr(pv.ParsedFilename.EpisodeTitle),
		Technical:     tech,
		CreatedAt:     w.Clock.Now(),
	}
	if err := w.Repo.Episodes().Save(episode); err != nil {
		return nil, 0, fmt.Errorf("workflow: save episode: %w", err)
	}

	return series, season, nil
}

func technicalFrom(info *model.MediaInfo, size int64) model.TechnicalSnapshot {
	if info == nil {
		return model.TechnicalSnapshot{SizeBytes: size}
	}
	return model.TechnicalSnapshot{
		VideoCodec: derefStr(info.VideoCodec),
		Resolution: string(info.Resolution),
		Languages:  info.AudioLanguages,
		SizeBytes:  size,
	}
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
