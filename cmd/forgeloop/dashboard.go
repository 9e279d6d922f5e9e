package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/forgeloop/forgeloop/internal/config"
	"github.com/forgeloop/forgeloop/internal/store"
	"github.com/forgeloop/forgeloop/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [project-dir]",
	Short: "Launch the read-only TUI",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir := "."
		if len(args) == 1 {
			projectDir = args[0]
		}
		return runDashboard(projectDir)
	},
}

func runDashboard(projectDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.OpenProject(projectDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	model := tui.New(db, db, projectDir, cfg.TUI.RefreshRate)
	_, err = tea.NewProgram(model).Run()
	return err
}
