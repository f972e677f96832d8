package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Refill empty candidate lists for pending items",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(nil)
		if err != nil {
			return err
		}
		pendings, err := a.repo.PendingValidations().ListPending()
		if err != nil {
			return err
		}

		results := a.enricher.EnrichAll(context.Background(), pendings)
		enriched, failed := 0, 0
		for _, r := range results {
			if r.Enriched {
				enriched++
			}
			if r.Failed {
				failed++
				fmt.Printf("failed: %s: %v\n", r.PendingValidationID, r.Error)
			}
		}
		fmt.Printf("enriched: %d, failed: %d\n", enriched, failed)
		return nil
	},
}
