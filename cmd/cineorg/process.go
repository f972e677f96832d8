package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbouchard/cineorg/internal/model"
	"github.com/kbouchard/cineorg/internal/validation"
	"github.com/kbouchard/cineorg/internal/workflow"
)

var (
	processFilter string
	processDryRun bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the full workflow: scan, match, validate and transfer",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := parseFilter(processFilter)
		if err != nil {
			return userErrorf("%v", err)
		}

		a, err := buildApp(interactiveManualValidator)
		if err != nil {
			return err
		}
		if !a.fs.Exists(a.cfg.DownloadsDir) {
			return userErrorf("downloads directory not found: %s", a.cfg.DownloadsDir)
		}

		summary, err := a.workflow.Execute(context.Background(), filter, processDryRun)
		if err != nil {
			return fmt.Errorf("workflow execution failed: %w", err)
		}
		printSummary(summary)
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&processFilter, "filter", "all", "all|movies|series")
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "compute without moving files")
}

func parseFilter(s string) (workflow.Filter, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return workflow.FilterAll, nil
	case "movies":
		return workflow.FilterMovies, nil
	case "series":
		return workflow.FilterSeries, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all|movies|series)", s)
	}
}

func printSummary(s workflow.Summary) {
	fmt.Printf("orphans purged:   %d\n", s.OrphansPurged)
	fmt.Printf("scanned:          %d\n", s.Scanned)
	fmt.Printf("below size limit: %d\n", s.BelowSizeLimit)
	fmt.Printf("enriched:         %d\n", s.Enriched)
	fmt.Printf("auto-validated:   %d\n", s.AutoValidated)
	fmt.Printf("manually resolved:%d\n", s.ManuallyResolved)
	fmt.Printf("transferred:      %d\n", s.Transferred)
	if len(s.Conflicts) > 0 {
		fmt.Printf("conflicts:        %d\n", len(s.Conflicts))
	}
	if len(s.TransferErrors) > 0 {
		fmt.Printf("transfer errors:  %d\n", len(s.TransferErrors))
		for _, e := range s.TransferErrors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if s.CleanupPreview != nil {
		r := s.CleanupPreview
		fmt.Printf("cleanup preview:  %d broken, %d misplaced, %d duplicates, %d oversized, %d empty dirs\n",
			len(r.Broken), len(r.Misplaced), len(r.Duplicates), len(r.OversizedPlans), len(r.EmptyDirs))
	}
}

// interactiveManualValidator prompts the operator on stdin/stdout for each
// still-pending item, implementing spec.md §4.6's manual-loop contract.
func interactiveManualValidator(ctx context.Context, pv *model.PendingValidation, all []*model.PendingValidation) (validation.ManualDecision, bool) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("\n%s\n", pv.VideoFile.Filename)
	for i, c := range pv.Candidates {
		year := "?"
		if c.Year != nil {
			year = strconv.Itoa(*c.Year)
		}
		fmt.Printf("  [%d] %s (%s) score=%.1f\n", i, c.Title, year, c.Score)
	}
	fmt.Print("choose index, (s)kip, (t)rash, (e)xternal-id, (f)ree-text, (q)uit: ")

	line, err := reader.ReadString('\n')
	if err != nil {
		return validation.ManualDecision{Action: validation.ActionQuit}, false
	}
	line = strings.TrimSpace(line)

	switch strings.ToLower(line) {
	case "s":
		return validation.ManualDecision{Action: validation.ActionSkip}, true
	case "t":
		return validation.ManualDecision{Action: validation.ActionTrash}, true
	case "q", "":
		return validation.ManualDecision{Action: validation.ActionQuit}, false
	case "e":
		fmt.Print("catalog id: ")
		id, _ := reader.ReadString('\n')
		return validation.ManualDecision{Action: validation.ActionExternalID, ExternalID: strings.TrimSpace(id)}, true
	case "f":
		fmt.Print("search text: ")
		text, _ := reader.ReadString('\n')
		return validation.ManualDecision{Action: validation.ActionFreeText, FreeText: strings.TrimSpace(text)}, true
	default:
		idx, err := strconv.Atoi(line)
		if err != nil || idx < 0 || idx >= len(pv.Candidates) {
			fmt.Println("invalid choice, skipping")
			return validation.ManualDecision{Action: validation.ActionSkip}, true
		}
		return validation.ManualDecision{Action: validation.ActionChoose, CandidateIndex: idx}, true
	}
}
