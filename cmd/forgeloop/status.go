package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forgeloop/forgeloop/internal/store"
	"github.com/forgeloop/forgeloop/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status [project-dir]",
	Short: "Print a read-only kanban summary",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir := "."
		if len(args) == 1 {
			projectDir = args[0]
		}
		return printStatus(projectDir)
	},
}

func printStatus(projectDir string) error {
	db, err := store.OpenProject(projectDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	stats, err := db.KanbanStats()
	if err != nil {
		return fmt.Errorf("kanban stats: %w", err)
	}

	color.Cyan("forgeloop status — %d feature(s)", stats.Total)
	fmt.Printf("  pending:     %d\n", stats.ByStatus[models.FeatureStatusPending])
	fmt.Printf("  in_progress: %d\n", stats.ByStatus[models.FeatureStatusInProgress])
	fmt.Printf("  completed:   %d\n", stats.ByStatus[models.FeatureStatusCompleted])
	fmt.Printf("  failed:      %d\n", stats.ByStatus[models.FeatureStatusFailed])

	if len(stats.ByCategory) > 0 {
		fmt.Println("\nby category:")
		for cat, cs := range stats.ByCategory {
			fmt.Printf("  %-20s pending=%d in_progress=%d completed=%d failed=%d\n",
				cat, cs.Pending, cs.InProgress, cs.Completed, cs.Failed)
		}
	}

	active, err := db.GetActiveSession()
	if err != nil {
		return fmt.Errorf("get active session: %w", err)
	}
	if active != nil {
		fmt.Printf("\nsession %d is currently running (started %s)\n", active.ID, active.StartedAt.Format("15:04:05"))
	}

	return nil
}
