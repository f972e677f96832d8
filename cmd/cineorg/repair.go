package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kbouchard/cineorg/internal/repair"
)

var (
	repairFix      bool
	repairMinScore float64
)

var repairLinksCmd = &cobra.Command{
	Use:   "repair-links [<dir>]",
	Short: "Scan for broken symlinks and propose (or apply) repair candidates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(nil)
		if err != nil {
			return err
		}

		dir := a.cfg.SymlinkDir
		if len(args) == 1 {
			dir = args[0]
		}
		if !a.fs.Exists(dir) {
			return userErrorf("directory not found: %s", dir)
		}

		minScore := a.cfg.RepairMinScore
		if repairMinScore > 0 {
			minScore = repairMinScore
		}
		a.repairSvc.MinScore = minScore
		a.repairSvc.DryRun = !repairFix

		results, err := a.repairSvc.ScanBrokenSymlinks(context.Background(), dir)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("no broken symlinks found")
			return nil
		}

		repaired := 0
		for _, r := range results {
			if r.Decision == repair.DecisionError {
				fmt.Printf("error: %s: %v\n", r.SymlinkPath, r.Error)
				continue
			}
			if len(r.Candidates) == 0 {
				fmt.Printf("no candidate: %s -> %s\n", r.SymlinkPath, r.OriginalTarget)
				continue
			}
			best := r.Candidates[0]
			fmt.Printf("%s -> %s (score=%.1f, %s)\n", r.SymlinkPath, best.Path, best.Score, best.MatchReason)
			if repairFix && best.Score >= minScore {
				res := a.repairSvc.RepairSymlink(r.SymlinkPath, best.Path)
				if res.Decision == repair.DecisionRepaired {
					repaired++
				} else {
					fmt.Printf("  repair failed: %v\n", res.Error)
				}
			}
		}
		if repairFix {
			fmt.Printf("repaired %d symlink(s)\n", repaired)
		}
		return nil
	},
}

// fixSymlinksCmd re-points every symlink under the video tree at a relative
// target, correcting any that were created (e.g. by an external tool) as
// absolute paths (spec.md §6's "convert relative↔absolute").
var fixSymlinksCmd = &cobra.Command{
	Use:   "fix-symlinks",
	Short: "Normalize every video-tree symlink to a relative target",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(nil)
		if err != nil {
			return err
		}
		if !a.fs.Exists(a.cfg.SymlinkDir) {
			return userErrorf("directory not found: %s", a.cfg.SymlinkDir)
		}

		fixed := 0
		var walk func(dir string)
		walk = func(dir string) {
			entries, err := a.fs.ListDir(dir)
			if err != nil {
				return
			}
			for _, e := range entries {
				if a.fs.IsDir(e) && !a.fs.IsSymlink(e) {
					walk(e)
					continue
				}
				if !a.fs.IsSymlink(e) {
					continue
				}
				raw, err := a.fs.ReadLink(e)
				if err != nil || !filepath.IsAbs(raw) {
					continue
				}
				target, err := a.fs.ResolveLink(e)
				if err != nil || !a.fs.Exists(target) {
					continue
				}
				rel, err := filepath.Rel(filepath.Dir(e), target)
				if err != nil {
					continue
				}
				if err := a.fs.Remove(e); err != nil {
					continue
				}
				if err := a.fs.Symlink(rel, e); err != nil {
					continue
				}
				fixed++
			}
		}
		walk(a.cfg.SymlinkDir)
		fmt.Printf("normalized %d symlink(s) to relative targets\n", fixed)
		return nil
	},
}

// fixBadLinksCmd re-points symlinks whose resolved target doesn't match
// their expected organizer destination (a misrouted episode or movie,
// spec.md §6's "unkink misrouted episodes") by delegating to the cleanup
// engine's misplaced-symlink fixer.
var fixBadLinksCmd = &cobra.Command{
	Use:   "fix-bad-links",
	Short: "Move symlinks that do not live where the organizer expects them",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(nil)
		if err != nil {
			return err
		}

		report, err := a.cleanup.Analyze(context.Background())
		if err != nil {
			return err
		}
		if len(report.Misplaced) == 0 {
			fmt.Println("no misrouted symlinks found")
			return nil
		}

		// Re-run Execute with an empty Broken/Duplicates/OversizedPlans/EmptyDirs
		// set so only the misplaced-symlink fix applies.
		report.Broken = nil
		report.Duplicates = nil
		report.OversizedPlans = nil
		report.EmptyDirs = nil
		result := a.cleanup.Execute(report, a.cfg.RepairMinScore, false)
		fmt.Printf("moved %d misrouted symlink(s)\n", result.MovedSymlinks)
		for _, e := range result.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		return nil
	},
}

func init() {
	repairLinksCmd.Flags().BoolVar(&repairFix, "fix", false, "repair symlinks instead of only reporting")
	repairLinksCmd.Flags().Float64Var(&repairMinScore, "min-score", 0, "override CINEORG_REPAIR_MIN_SCORE for this run")
}
