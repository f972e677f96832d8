package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbouchard/cineorg/internal/model"
)

var (
	importDryRun      bool
	importFromSymlink bool
)

var importCmd = &cobra.Command{
	Use:   "import [<dir>]",
	Short: "Bootstrap the catalog from an existing library tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(nil)
		if err != nil {
			return err
		}

		dir := a.cfg.StorageDir
		if importFromSymlink {
			dir = a.cfg.SymlinkDir
		}
		if len(args) == 1 {
			dir = args[0]
		}
		if !a.fs.Exists(dir) {
			return userErrorf("directory not found: %s", dir)
		}

		a.importer.DryRun = importDryRun

		ctx := context.Background()
		var results <-chan model.ImportResult
		if importFromSymlink {
			results = a.importer.ScanFromSymlinks(ctx, dir)
		} else {
			results = a.importer.ScanLibrary(ctx, dir)
		}

		counts := map[model.ImportResultKind]int{}
		for r := range results {
			counts[r.Kind]++
			if r.Kind == model.ImportKindError {
				fmt.Printf("error: %s: %s\n", r.Path, r.Message)
			}
		}

		fmt.Printf("imported:     %d\n", counts[model.ImportKindImport])
		fmt.Printf("skip known:   %d\n", counts[model.ImportKindSkipKnown])
		fmt.Printf("path updated: %d\n", counts[model.ImportKindUpdatePath])
		fmt.Printf("errors:       %d\n", counts[model.ImportKindError])
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "scan without writing records")
	importCmd.Flags().BoolVar(&importFromSymlink, "from-symlinks", false, "follow the video tree's symlinks instead of scanning storage directly")
}
