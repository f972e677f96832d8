package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbouchard/cineorg/internal/catalogclient"
	"github.com/kbouchard/cineorg/internal/cleanup"
	"github.com/kbouchard/cineorg/internal/config"
	"github.com/kbouchard/cineorg/internal/enricher"
	"github.com/kbouchard/cineorg/internal/hashutil"
	"github.com/kbouchard/cineorg/internal/importer"
	"github.com/kbouchard/cineorg/internal/localfs"
	"github.com/kbouchard/cineorg/internal/matcher"
	"github.com/kbouchard/cineorg/internal/memrepo"
	"github.com/kbouchard/cineorg/internal/port"
	"github.com/kbouchard/cineorg/internal/repair"
	"github.com/kbouchard/cineorg/internal/scanner"
	"github.com/kbouchard/cineorg/internal/tmdbclient"
	"github.com/kbouchard/cineorg/internal/transfer"
	"github.com/kbouchard/cineorg/internal/tvdbclient"
	"github.com/kbouchard/cineorg/internal/validation"
	"github.com/kbouchard/cineorg/internal/workflow"
)

// exitUserError marks a RunE error as exit code 1 (spec.md §6): a
// user-visible problem such as a missing directory or bad config, as
// opposed to an unrecoverable internal failure (exit code 2).
type exitUserError struct{ err error }

func (e *exitUserError) Error() string { return e.err.Error() }
func (e *exitUserError) Unwrap() error { return e.err }

func userErrorf(format string, args ...any) error {
	return &exitUserError{err: fmt.Errorf(format, args...)}
}

var rootCmd = &cobra.Command{
	Use:   "cineorg",
	Short: "cineorg organizes a movie/series downloads tree into a catalogued media library",
	Long: `cineorg scans a downloads tree, identifies each video file against a
movie or series catalog, validates the match, then organizes, renames and
symlinks it into a managed library with duplicate, cleanup and repair tooling
bolted on for ongoing maintenance.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once by main().
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cineorg: %v\n", err)
		var userErr *exitUserError
		if errors.As(err, &userErr) {
			return 1
		}
		return 2
	}
	return 0
}

// app bundles every wired component a subcommand might need. Built once per
// invocation from config.Load(), following CineVault's main.go top-to-bottom
// construct-and-wire style.
type app struct {
	cfg *config.Config

	fs         port.Filesystem
	repo       port.Repository
	mediaInfo  port.MediaInfoExtractor
	movieCat   port.CatalogClient
	seriesCat  port.CatalogClient

	scanner    *scanner.Scanner
	matcher    *matcher.Matcher
	enricher   *enricher.Enricher
	validation *validation.Engine
	transferer *transfer.Transferer
	repairSvc  *repair.Service
	cleanup    *cleanup.Engine
	importer   *importer.Importer
	workflow   *workflow.Workflow
}

func buildApp(manual workflow.ManualValidator) (*app, error) {
	cfg := config.Load()

	fs := localfs.New()
	mi := scanner.MediaInfoExtractorFromProbe(cfg.MediaInfoPath)
	repo := memrepo.New()

	var movieCat, seriesCat port.CatalogClient
	if cfg.TMDBEnabled() {
		movieCat = catalogclient.New(tmdbclient.New(cfg.TMDBAPIKey), msDuration(cfg.RateLimitMS), cfg.RetryCount)
	}
	if cfg.TVDBEnabled() {
		seriesCat = catalogclient.New(tvdbclient.New(cfg.TVDBAPIKey), msDuration(cfg.RateLimitMS), cfg.RetryCount)
	}

	sc := scanner.New(fs, mi, cfg.MinFileSizeBytes)
	m := matcher.New()
	en := enricher.New(movieCat, seriesCat, m)
	ve := validation.New(repo.PendingValidations(), movieCat, seriesCat, m, cfg.MatchAutoThreshold, cfg.MatchAutoTolerance)
	tr := transfer.New(fs, cfg.StorageDir, cfg.SymlinkDir, hashutil.DefaultWindow)
	rp := repair.New(fs, cfg.StorageDir, cfg.RepairMinScore, cfg.DryRun)
	cl := cleanup.New(fs, repo, rp, cfg.StorageDir, cfg.SymlinkDir, cfg.MaxItemsPerDir)
	im := importer.New(fs, mi, repo.VideoFiles(), repo.PendingValidations(), hashutil.DefaultWindow, cfg.DryRun)
	wf := workflow.New(fs, repo, sc, m, en, ve, tr, cl, cfg.DownloadsDir, cfg.StorageDir, cfg.SymlinkDir, manual)

	return &app{
		cfg:        cfg,
		fs:         fs,
		repo:       repo,
		mediaInfo:  mi,
		movieCat:   movieCat,
		seriesCat:  seriesCat,
		scanner:    sc,
		matcher:    m,
		enricher:   en,
		validation: ve,
		transferer: tr,
		repairSvc:  rp,
		cleanup:    cl,
		importer:   im,
		workflow:   wf,
	}, nil
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(regroupCmd)
	rootCmd.AddCommand(repairLinksCmd)
	rootCmd.AddCommand(fixSymlinksCmd)
	rootCmd.AddCommand(fixBadLinksCmd)
}
