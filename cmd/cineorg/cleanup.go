package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbouchard/cineorg/internal/cleanup"
)

var (
	cleanupFix       bool
	cleanupMaxPerDir int
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run or preview the cleanup engine (broken/misplaced/duplicate symlinks, oversized and empty dirs)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(nil)
		if err != nil {
			return err
		}
		if cleanupMaxPerDir > 0 {
			a.cleanup.MaxPerDir = cleanupMaxPerDir
		}

		report, err := a.cleanup.Analyze(context.Background())
		if err != nil {
			return err
		}
		printCleanupReport(report)

		if !cleanupFix {
			return nil
		}

		result := a.cleanup.Execute(report, a.cfg.RepairMinScore, true)
		fmt.Printf("\nrepaired: %d, deleted: %d, moved: %d, duplicates removed: %d, redistributed: %d, subdivisions: %d, empty dirs removed: %d\n",
			result.RepairedSymlinks, result.BrokenSymlinksDeleted, result.MovedSymlinks,
			result.DuplicateSymlinksRemoved, result.SymlinksRedistributed, result.SubdivisionsCreated, result.EmptyDirsRemoved)
		for _, e := range result.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		return nil
	},
}

func printCleanupReport(r cleanup.Report) {
	fmt.Printf("broken symlinks:    %d\n", len(r.Broken))
	fmt.Printf("misplaced symlinks: %d\n", len(r.Misplaced))
	fmt.Printf("not in db:          %d\n", r.NotInDB)
	fmt.Printf("duplicate groups:   %d\n", len(r.Duplicates))
	fmt.Printf("oversized dirs:     %d\n", len(r.OversizedPlans))
	fmt.Printf("empty dirs:         %d\n", len(r.EmptyDirs))
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupFix, "fix", false, "apply fixes instead of only reporting")
	cleanupCmd.Flags().IntVar(&cleanupMaxPerDir, "max-per-dir", 0, "override CINEORG_MAX_ITEMS_PER_DIR for this run")
}
