package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forgeloop/forgeloop/internal/store"
	"github.com/forgeloop/forgeloop/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [project-dir]",
	Short: "Check the Category Contiguity Invariant without running",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir := "."
		if len(args) == 1 {
			projectDir = args[0]
		}
		return runValidate(projectDir)
	},
}

func runValidate(projectDir string) error {
	db, err := store.OpenProject(projectDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	features, err := db.AllFeatures()
	if err != nil {
		return fmt.Errorf("load features: %w", err)
	}

	if err := validator.CheckContiguity(features); err != nil {
		color.Red("contiguity violation: %v", err)
		return err
	}

	color.Green("%d feature(s) satisfy the category contiguity invariant", len(features))
	return nil
}
