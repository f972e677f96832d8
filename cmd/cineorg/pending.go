package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbouchard/cineorg/internal/model"
)

var pendingAll bool

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List unvalidated items",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(nil)
		if err != nil {
			return err
		}

		var items []*model.PendingValidation
		if pendingAll {
			items, err = a.repo.PendingValidations().ListAll()
		} else {
			items, err = a.repo.PendingValidations().ListPending()
		}
		if err != nil {
			return err
		}

		if len(items) == 0 {
			fmt.Println("no pending items")
			return nil
		}
		for _, pv := range items {
			fmt.Printf("%s  %-10s  %s  (%d candidates)\n", pv.ID, pv.ValidationStatus, pv.VideoFile.Filename, len(pv.Candidates))
		}
		return nil
	},
}

func init() {
	pendingCmd.Flags().BoolVar(&pendingAll, "all", false, "include already-validated and rejected items")
}
