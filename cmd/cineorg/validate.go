package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbouchard/cineorg/internal/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Granular control over the validation state machine",
}

var validateAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Run auto-validation over every pending item",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(nil)
		if err != nil {
			return err
		}
		pendings, err := a.repo.PendingValidations().ListPending()
		if err != nil {
			return err
		}
		validated, err := a.validation.AutoValidate(context.Background(), pendings)
		if err != nil {
			return err
		}
		fmt.Printf("auto-validated %d item(s)\n", len(validated))
		return nil
	},
}

var validateManualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Run the interactive manual validation loop over every pending item",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(interactiveManualValidator)
		if err != nil {
			return err
		}
		pendings, err := a.repo.PendingValidations().ListPending()
		if err != nil {
			return err
		}
		ctx := context.Background()
		resolved := 0
		for _, pv := range pendings {
			if pv.ValidationStatus != model.ValidationPending {
				continue
			}
			decision, ok := interactiveManualValidator(ctx, pv, pendings)
			if !ok {
				break
			}
			if err := a.validation.ApplyManualDecision(ctx, pv, decision, pendings); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			if pv.ValidationStatus != model.ValidationPending {
				resolved++
			}
		}
		fmt.Printf("manually resolved %d item(s)\n", resolved)
		return nil
	},
}

// validateBatchCmd runs auto-validation followed by the manual loop in one
// pass, equivalent to `process`'s validation phase without scanning/transfer.
var validateBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run auto-validation then the manual loop over every pending item",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(interactiveManualValidator)
		if err != nil {
			return err
		}
		ctx := context.Background()
		pendings, err := a.repo.PendingValidations().ListPending()
		if err != nil {
			return err
		}
		validated, _ := a.validation.AutoValidate(ctx, pendings)
		fmt.Printf("auto-validated %d item(s)\n", len(validated))

		resolved := 0
		for _, pv := range pendings {
			if pv.ValidationStatus != model.ValidationPending {
				continue
			}
			decision, ok := interactiveManualValidator(ctx, pv, pendings)
			if !ok {
				break
			}
			if err := a.validation.ApplyManualDecision(ctx, pv, decision, pendings); err != nil {
				continue
			}
			if pv.ValidationStatus != model.ValidationPending {
				resolved++
			}
		}
		fmt.Printf("manually resolved %d item(s)\n", resolved)
		return nil
	},
}

var validateFileCmd = &cobra.Command{
	Use:   "file <id>",
	Short: "Run the manual validation prompt for a single pending item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return userErrorf("invalid id %q: %v", args[0], err)
		}

		a, err := buildApp(interactiveManualValidator)
		if err != nil {
			return err
		}
		pv, err := a.repo.PendingValidations().Get(id)
		if err != nil || pv == nil {
			return userErrorf("no pending item with id %s", id)
		}

		ctx := context.Background()
		decision, ok := interactiveManualValidator(ctx, pv, []*model.PendingValidation{pv})
		if !ok {
			return nil
		}
		return a.validation.ApplyManualDecision(ctx, pv, decision, []*model.PendingValidation{pv})
	},
}

func init() {
	validateCmd.AddCommand(validateAutoCmd)
	validateCmd.AddCommand(validateManualCmd)
	validateCmd.AddCommand(validateBatchCmd)
	validateCmd.AddCommand(validateFileCmd)
}
