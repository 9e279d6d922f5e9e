package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgeloop/forgeloop/internal/store"
)

var gcOlderThan time.Duration

var gcCmd = &cobra.Command{
	Use:   "gc [project-dir]",
	Short: "Purge old, ended session rows",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir := "."
		if len(args) == 1 {
			projectDir = args[0]
		}
		return runGC(projectDir)
	},
}

func init() {
	gcCmd.Flags().DurationVar(&gcOlderThan, "older-than", 30*24*time.Hour, "purge ended sessions older than this")
}

func runGC(projectDir string) error {
	db, err := store.OpenProject(projectDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	n, err := db.PurgeSessions(gcOlderThan)
	if err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}

	fmt.Printf("purged %d session(s) older than %s\n", n, gcOlderThan)
	return nil
}
