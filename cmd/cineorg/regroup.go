package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbouchard/cineorg/internal/prefixgroup"
)

var (
	regroupFix      bool
	regroupMinCount int
)

var regroupCmd = &cobra.Command{
	Use:   "regroup [<dir>]",
	Short: "Detect and (optionally) apply recurring title-prefix grouping",
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

		minCount := a.cfg.PrefixMinCount
		if regroupMinCount > 0 {
			minCount = regroupMinCount
		}

		groups := prefixgroup.Analyze(a.fs, dir, minCount)
		for _, g := range groups {
			fmt.Printf("%s/%s: %d file(s)\n", g.ParentDir, g.Prefix, len(g.Files))
		}
		if len(groups) == 0 {
			fmt.Println("no prefix groups found")
			return nil
		}

		if !regroupFix {
			return nil
		}
		moved, err := prefixgroup.Execute(a.fs, groups, a.cfg.SymlinkDir, a.cfg.StorageDir)
		if err != nil {
			return fmt.Errorf("regroup: %w", err)
		}
		fmt.Printf("moved %d file(s)\n", moved)
		return nil
	},
}

func init() {
	regroupCmd.Flags().BoolVar(&regroupFix, "fix", false, "apply the regrouping instead of only reporting")
	regroupCmd.Flags().IntVar(&regroupMinCount, "min-count", 0, "override CINEORG_PREFIX_MIN_COUNT for this run")
}
